package session

import (
	"sort"

	"github.com/hamdel-app/hamdel/internal/assessment"
	"github.com/hamdel-app/hamdel/internal/chat"
	"github.com/hamdel-app/hamdel/internal/collab"
	"github.com/hamdel-app/hamdel/internal/tracker"
)

// Snapshot is an immutable view of the controller published after every
// mutation. Slices and maps inside it are copies and safe to retain.
type Snapshot struct {
	State      State
	ActiveKind assessment.Kind
	User       *collab.User
	Error      string
	Busy       []string

	Answered map[assessment.Kind]int
	Results  map[assessment.Kind]*collab.ScoreResult

	MoodLog       []tracker.Entry
	SleepLog      []tracker.Entry
	ReflectionLog []tracker.Entry

	Conversation []chat.Turn
	Gamification collab.GamificationSnapshot
	Plan         *collab.Plan
	Journeys     []collab.Journey
	History      []collab.AssessmentRecord
	Memory       map[string]interface{}
}

// InFlight reports whether the named action appears in the busy set.
func (s Snapshot) InFlight(name string) bool {
	for _, b := range s.Busy {
		if b == name {
			return true
		}
	}
	return false
}

// snapshotLocked builds a Snapshot; callers must hold c.mu.
func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:         c.state,
		ActiveKind:    c.activeKind,
		Error:         c.errMsg,
		MoodLog:       c.trackers.Log(tracker.KindMood),
		SleepLog:      c.trackers.Log(tracker.KindSleep),
		ReflectionLog: c.trackers.Log(tracker.KindReflection),
		Conversation:  c.chat.Turns(),
		Gamification:  c.game.Current(),
		Plan:          c.plan,
		Journeys:      append([]collab.Journey(nil), c.journeys...),
		History:       append([]collab.AssessmentRecord(nil), c.history...),
	}
	if c.user != nil {
		u := *c.user
		snap.User = &u
	}
	if len(c.memory) > 0 {
		snap.Memory = make(map[string]interface{}, len(c.memory))
		for k, v := range c.memory {
			snap.Memory[k] = v
		}
	}
	snap.Answered = make(map[assessment.Kind]int, len(c.engines))
	for kind, eng := range c.engines {
		snap.Answered[kind] = eng.Answered()
	}
	snap.Results = make(map[assessment.Kind]*collab.ScoreResult, len(c.results))
	for kind, res := range c.results {
		snap.Results[kind] = res
	}
	for act := range c.busy {
		snap.Busy = append(snap.Busy, string(act))
	}
	sort.Strings(snap.Busy)
	return snap
}
