package assessment

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamdel-app/hamdel/internal/collab"
)

var (
	// ErrInvalidItem rejects answers for unknown items or out-of-domain values.
	ErrInvalidItem = errors.New("invalid item or answer value")
	// ErrIncomplete rejects submission before every item is answered.
	ErrIncomplete = errors.New("incomplete submission")
)

// Scorer delegates scoring to the collaborator service.
type Scorer interface {
	SubmitAssessment(ctx context.Context, kind string, responses map[int]int, subscales map[string][]int) (*collab.ScoreResult, error)
}

// Engine administers a single questionnaire instance. It holds the
// in-progress response buffer and gates submission on completeness; scoring
// itself is entirely the collaborator's job.
type Engine struct {
	def       *Definition
	responses map[int]int
	scorer    Scorer
}

func NewEngine(def *Definition, scorer Scorer) *Engine {
	return &Engine{
		def:       def,
		responses: make(map[int]int, def.Size()),
		scorer:    scorer,
	}
}

// Definition returns the instrument this engine administers.
func (e *Engine) Definition() *Definition { return e.def }

// Record stores or overwrites the answer for itemID.
func (e *Engine) Record(itemID, value int) error {
	if e.def.Item(itemID) == nil {
		return fmt.Errorf("%w: no item %d in %s", ErrInvalidItem, itemID, e.def.Kind)
	}
	if value < 0 || value > e.def.DomainMax {
		return fmt.Errorf("%w: value %d outside [0,%d]", ErrInvalidItem, value, e.def.DomainMax)
	}
	e.responses[itemID] = value
	return nil
}

// Answer returns the recorded value for itemID, if any.
func (e *Engine) Answer(itemID int) (int, bool) {
	v, ok := e.responses[itemID]
	return v, ok
}

// Answered returns how many items have a recorded answer.
func (e *Engine) Answered() int { return len(e.responses) }

// Complete reports whether every item has been answered.
func (e *Engine) Complete() bool { return len(e.responses) == e.def.Size() }

// Responses returns a copy of the response buffer.
func (e *Engine) Responses() map[int]int {
	out := make(map[int]int, len(e.responses))
	for k, v := range e.responses {
		out[k] = v
	}
	return out
}

// Submit sends the full response map to the collaborator and returns its
// result verbatim. An incomplete buffer fails before any network interaction.
func (e *Engine) Submit(ctx context.Context) (*collab.ScoreResult, error) {
	if !e.Complete() {
		return nil, fmt.Errorf("%w: %d of %d items answered", ErrIncomplete, e.Answered(), e.def.Size())
	}
	return e.scorer.SubmitAssessment(ctx, string(e.def.Kind), e.Responses(), e.def.Subscales())
}
