package assessment

// Kind identifies a screening instrument.
type Kind string

const (
	KindDASS21 Kind = "DASS-21"
	KindPHQ9   Kind = "PHQ-9"
)

// Item is one scored question of an instrument.
type Item struct {
	ID       int
	Prompt   string
	Subscale string
}

// Definition is the immutable description of an instrument: its ordered
// items, the shared ordinal answer domain [0..DomainMax], and the display
// labels for each ordinal value.
type Definition struct {
	Kind         Kind
	Items        []Item
	DomainMax    int
	AnswerLabels []string
}

// Size returns the number of items.
func (d *Definition) Size() int { return len(d.Items) }

// Item returns the item with the given id, or nil.
func (d *Definition) Item(id int) *Item {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return &d.Items[i]
		}
	}
	return nil
}

// Subscales groups item ids by subscale tag, used for analytics payloads.
func (d *Definition) Subscales() map[string][]int {
	groups := make(map[string][]int)
	for _, it := range d.Items {
		groups[it.Subscale] = append(groups[it.Subscale], it.ID)
	}
	return groups
}
