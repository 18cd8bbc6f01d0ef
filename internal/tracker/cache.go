package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Kind identifies a daily tracker log.
type Kind string

const (
	KindMood       Kind = "mood"
	KindSleep      Kind = "sleep"
	KindReflection Kind = "reflection"
)

// ErrValidation rejects payloads outside the kind's field domain before any
// network call is made.
var ErrValidation = errors.New("validation failed")

// Entry is one daily record. Exactly one entry exists per kind per calendar
// date; Date is the ISO calendar date (YYYY-MM-DD).
type Entry struct {
	ID        string
	Date      string
	MoodLevel int
	Hours     float64
	Quality   int
	Note      string
	Text      string
}

// Payload carries the fields of a save request; validation depends on kind.
type Payload struct {
	MoodLevel int
	Hours     float64
	Quality   int
	Note      string
	Text      string
}

// Saver sends a validated payload to the collaborator.
type Saver interface {
	SaveMood(ctx context.Context, level int, note string) error
	SaveSleep(ctx context.Context, hours float64, quality int, note string) error
	SaveReflection(ctx context.Context, text string) error
}

// Cache owns the mood, sleep, and reflection logs with an at-most-one-entry
// per calendar date invariant per kind. It is safe for concurrent use; the
// collaborator call in UpsertToday happens outside the lock, so concurrent
// saves resolve last-successful-write-wins.
type Cache struct {
	saver Saver

	mu    sync.Mutex
	epoch int
	logs  map[Kind][]Entry
	now   func() time.Time
}

func NewCache(saver Saver) *Cache {
	return &Cache{
		saver: saver,
		logs:  make(map[Kind][]Entry),
		now:   time.Now,
	}
}

// Load replaces the log for kind wholesale, normalized newest-first.
func (c *Cache) Load(kind Kind, entries []Entry) {
	log := make([]Entry, len(entries))
	copy(log, entries)
	sort.SliceStable(log, func(i, j int) bool { return log[i].Date > log[j].Date })

	c.mu.Lock()
	c.logs[kind] = log
	c.mu.Unlock()
}

// Log returns a copy of the full log for kind, newest first.
func (c *Cache) Log(kind Kind) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.logs[kind]...)
}

// UpsertToday validates the payload, sends it to the collaborator, and then
// replaces any local record for today's calendar date. A save never
// duplicates an existing entry for the same date. If Reset ran while the
// collaborator call was in flight, the local apply is skipped; the entry
// still exists server-side and comes back with the next hydration.
func (c *Cache) UpsertToday(ctx context.Context, kind Kind, p Payload) error {
	if err := validate(kind, p); err != nil {
		return err
	}

	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	switch kind {
	case KindMood:
		if err := c.saver.SaveMood(ctx, p.MoodLevel, p.Note); err != nil {
			return err
		}
	case KindSleep:
		if err := c.saver.SaveSleep(ctx, p.Hours, p.Quality, p.Note); err != nil {
			return err
		}
	case KindReflection:
		if err := c.saver.SaveReflection(ctx, p.Text); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown tracker kind %q", ErrValidation, kind)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return nil
	}

	today := c.now().UTC().Format("2006-01-02")
	entry := Entry{
		Date:      today,
		MoodLevel: p.MoodLevel,
		Hours:     p.Hours,
		Quality:   p.Quality,
		Note:      p.Note,
		Text:      p.Text,
	}

	log := c.logs[kind]
	replaced := false
	for i := range log {
		if log[i].Date == today {
			entry.ID = log[i].ID
			log[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		log = append([]Entry{entry}, log...)
	}
	c.logs[kind] = log
	return nil
}

// MostRecent returns at most n entries, newest first, without mutating the log.
func (c *Cache) MostRecent(kind Kind, n int) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.logs[kind]
	if n > len(log) {
		n = len(log)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Entry, n)
	copy(out, log[:n])
	return out
}

// Today returns today's entry for kind, if one exists.
func (c *Cache) Today(kind Kind) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	today := c.now().UTC().Format("2006-01-02")
	for _, e := range c.logs[kind] {
		if e.Date == today {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the size of the log for kind.
func (c *Cache) Len(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.logs[kind])
}

// Reset drops every log and invalidates in-flight saves so their results
// never land in the emptied cache.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.epoch++
	c.logs = make(map[Kind][]Entry)
	c.mu.Unlock()
}

func validate(kind Kind, p Payload) error {
	switch kind {
	case KindMood:
		if p.MoodLevel < 1 || p.MoodLevel > 5 {
			return fmt.Errorf("%w: mood level %d outside [1,5]", ErrValidation, p.MoodLevel)
		}
	case KindSleep:
		if p.Hours <= 0 {
			return fmt.Errorf("%w: sleep hours must be positive", ErrValidation)
		}
		if p.Quality < 1 || p.Quality > 5 {
			return fmt.Errorf("%w: sleep quality %d outside [1,5]", ErrValidation, p.Quality)
		}
	case KindReflection:
		if p.Text == "" {
			return fmt.Errorf("%w: reflection text must not be empty", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown tracker kind %q", ErrValidation, kind)
	}
	return nil
}
