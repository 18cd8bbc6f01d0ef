package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hamdel-app/hamdel/internal/assessment"
	"github.com/hamdel-app/hamdel/internal/chat"
	"github.com/hamdel-app/hamdel/internal/collab"
	"github.com/hamdel-app/hamdel/internal/gamification"
	"github.com/hamdel-app/hamdel/internal/tracker"
)

// Collaborator is the remote surface the controller depends on. The HTTP
// client implements it; tests substitute stubs.
type Collaborator interface {
	assessment.Scorer
	tracker.Saver
	chat.Responder
	gamification.Fetcher

	Register(ctx context.Context, req collab.RegisterRequest) (*collab.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*collab.AuthResponse, error)
	Profile(ctx context.Context) (*collab.User, error)
	Assessments(ctx context.Context) ([]collab.AssessmentRecord, error)
	MoodEntries(ctx context.Context) ([]collab.MoodEntry, error)
	SleepEntries(ctx context.Context) ([]collab.SleepEntry, error)
	Reflections(ctx context.Context) ([]collab.ReflectionEntry, error)
	Plan(ctx context.Context) (*collab.Plan, error)
	Journeys(ctx context.Context) ([]collab.Journey, error)
	Memory(ctx context.Context) (map[string]interface{}, error)
	UpdateMemory(ctx context.Context, memory map[string]interface{}) (map[string]interface{}, error)

	SetToken(token string)
	ClearToken()
}

// TokenStore persists the access token between launches.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Controller drives the whole session: authentication, screen navigation,
// questionnaires, daily trackers, the conversation, and the gamification
// snapshot. All mutable state lives behind one mutex; network calls happen
// with the mutex released, guarded by per-action busy flags.
type Controller struct {
	api    Collaborator
	tokens TokenStore
	log    *slog.Logger

	mu         sync.Mutex
	gen        int
	state      State
	user       *collab.User
	errMsg     string
	busy       map[action]struct{}
	activeKind assessment.Kind
	engines    map[assessment.Kind]*assessment.Engine
	results    map[assessment.Kind]*collab.ScoreResult
	plan       *collab.Plan
	journeys   []collab.Journey
	history    []collab.AssessmentRecord
	memory     map[string]interface{}
	subs       []chan Snapshot

	trackers *tracker.Cache
	chat     *chat.Log
	game     *gamification.Cache
}

func NewController(api Collaborator, tokens TokenStore, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		api:      api,
		tokens:   tokens,
		log:      log,
		state:    StateLanding,
		busy:     make(map[action]struct{}),
		engines:  make(map[assessment.Kind]*assessment.Engine),
		results:  make(map[assessment.Kind]*collab.ScoreResult),
		trackers: tracker.NewCache(api),
		chat:     chat.NewLog(api),
		game:     gamification.NewCache(api),
	}
}

// Subscribe registers a snapshot channel. The channel holds only the latest
// snapshot: a slow consumer sees states skipped, never stale ones. The
// returned cancel func removes the subscription.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	c.subs = append(c.subs, ch)
	ch <- c.snapshotLocked()
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, sub := range c.subs {
			if sub == ch {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
	return ch, cancel
}

// Snapshot returns the current immutable view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) publishLocked() {
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// Start restores a previous session from the persisted token. Any failure —
// missing token, unreadable store, rejected profile fetch — lands silently on
// the landing screen with the token purged.
func (c *Controller) Start(ctx context.Context) {
	token, err := c.tokens.Load()
	if err != nil || token == "" {
		if err != nil {
			c.log.Warn("token restore failed", "error", err)
		}
		c.mu.Lock()
		c.publishLocked()
		c.mu.Unlock()
		return
	}

	c.api.SetToken(token)
	user, err := c.api.Profile(ctx)
	if err != nil {
		c.log.Info("stored token rejected, starting signed out", "error", err)
		c.api.ClearToken()
		if err := c.tokens.Clear(); err != nil {
			c.log.Warn("token purge failed", "error", err)
		}
		c.mu.Lock()
		c.publishLocked()
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.user = user
	c.state = StateDashboard
	c.publishLocked()
	c.mu.Unlock()

	go c.RefreshAll(context.Background())
}

// Login authenticates and, on success, lands on the dashboard and hydrates
// every cache in the background.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, func() (*collab.AuthResponse, error) {
		return c.api.Login(ctx, email, password)
	})
}

// Register creates an account; a successful registration signs the user in
// directly.
func (c *Controller) Register(ctx context.Context, req collab.RegisterRequest) error {
	return c.authenticate(ctx, func() (*collab.AuthResponse, error) {
		return c.api.Register(ctx, req)
	})
}

func (c *Controller) authenticate(ctx context.Context, call func() (*collab.AuthResponse, error)) error {
	c.mu.Lock()
	if _, inFlight := c.busy[actionAuth]; inFlight {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy[actionAuth] = struct{}{}
	c.state = StateAuthenticating
	c.errMsg = ""
	gen := c.gen
	c.publishLocked()
	c.mu.Unlock()

	resp, err := call()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		// The session was reset while the call was in flight; a late
		// success must not sign the fresh session in or re-persist a
		// token the user just purged.
		return err
	}
	delete(c.busy, actionAuth)
	if err != nil {
		c.state = StateLanding
		c.errMsg = messageFor(err)
		c.publishLocked()
		capture(err)
		return err
	}

	if saveErr := c.tokens.Save(resp.AccessToken); saveErr != nil {
		// The session still works for this launch; only restore is lost.
		c.log.Warn("token persist failed", "error", saveErr)
	}
	c.api.SetToken(resp.AccessToken)
	user := resp.User
	c.user = &user
	c.memory = user.Memory
	c.state = StateDashboard
	c.publishLocked()

	go c.RefreshAll(context.Background())
	return nil
}

// Logout purges the token and resets every cache, landing on the landing
// screen. It works from any state, even with requests in flight; their
// results are discarded against the fresh session.
func (c *Controller) Logout() {
	c.api.ClearToken()
	if err := c.tokens.Clear(); err != nil {
		c.log.Warn("token purge failed", "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.publishLocked()
}

// resetLocked restores the signed-out baseline. The generation bump makes
// any still-running background fetch discard its result. Callers must hold
// c.mu.
func (c *Controller) resetLocked() {
	c.gen++
	c.state = StateLanding
	c.user = nil
	c.errMsg = ""
	c.busy = make(map[action]struct{})
	c.activeKind = ""
	c.engines = make(map[assessment.Kind]*assessment.Engine)
	c.results = make(map[assessment.Kind]*collab.ScoreResult)
	c.plan = nil
	c.journeys = nil
	c.history = nil
	c.memory = nil
	c.trackers.Reset()
	c.chat.Reset()
	c.game.Reset()
}

// expireLocked handles a 401 from any call: the stored token is purged and
// the session falls back to the landing screen with an explanation.
func (c *Controller) expireLocked() {
	c.api.ClearToken()
	if err := c.tokens.Clear(); err != nil {
		c.log.Warn("token purge failed", "error", err)
	}
	c.resetLocked()
	c.errMsg = msgSessionExpired
}

// failLocked records a failed action without leaving the current screen,
// except for expired sessions which reset to landing.
func (c *Controller) failLocked(err error) {
	if errors.Is(err, collab.ErrUnauthorized) {
		c.expireLocked()
	} else {
		c.errMsg = messageFor(err)
	}
	c.publishLocked()
	capture(err)
}

// signedInLocked guards member-only operations.
func (c *Controller) signedInLocked() bool { return c.user != nil }

// navigate moves to a member screen. The dashboard is reachable from
// everywhere; member screens require a signed-in session.
func (c *Controller) navigate(to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.signedInLocked() {
		return fmt.Errorf("not signed in")
	}
	c.state = to
	c.errMsg = ""
	c.publishLocked()
	return nil
}

func (c *Controller) BackToDashboard() error  { return c.navigate(StateDashboard) }
func (c *Controller) OpenMoodTracker() error  { return c.navigate(StateTrackingMood) }
func (c *Controller) OpenSleepTracker() error { return c.navigate(StateTrackingSleep) }
func (c *Controller) OpenReflection() error   { return c.navigate(StateReflecting) }
func (c *Controller) OpenChat() error         { return c.navigate(StateChatting) }
func (c *Controller) OpenPlan() error         { return c.navigate(StateViewingPlan) }
func (c *Controller) OpenHistory() error      { return c.navigate(StateViewingHistory) }

// OpenQuestionnaire enters the questionnaire screen for kind. An in-progress
// engine for the same kind is resumed with its answers intact; a finished or
// absent one starts blank.
func (c *Controller) OpenQuestionnaire(kind assessment.Kind) error {
	def, ok := assessment.ByKind(kind)
	if !ok {
		return fmt.Errorf("unknown questionnaire %q", kind)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.signedInLocked() {
		return fmt.Errorf("not signed in")
	}
	if _, exists := c.engines[kind]; !exists {
		c.engines[kind] = assessment.NewEngine(def, c.api)
	}
	c.activeKind = kind
	c.state = StateTakingQuestionnaire
	c.errMsg = ""
	c.publishLocked()
	return nil
}

// RecordAnswer records one answer of the active questionnaire. Invalid items
// or out-of-range values are rejected without touching recorded answers.
func (c *Controller) RecordAnswer(itemID, value int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	engine := c.engines[c.activeKind]
	if c.state != StateTakingQuestionnaire || engine == nil {
		return ErrNoQuestionnaire
	}
	if err := engine.Record(itemID, value); err != nil {
		c.errMsg = msgInvalidInput
		c.publishLocked()
		return err
	}
	c.errMsg = ""
	c.publishLocked()
	return nil
}

// SubmitQuestionnaire sends the completed active questionnaire for scoring.
// Incomplete responses are rejected before any network traffic. On success
// the engine is retired, the result is cached, and the screen moves to the
// result review; on failure the questionnaire stays as it was.
func (c *Controller) SubmitQuestionnaire(ctx context.Context) (*collab.ScoreResult, error) {
	c.mu.Lock()
	engine := c.engines[c.activeKind]
	if c.state != StateTakingQuestionnaire || engine == nil {
		c.mu.Unlock()
		return nil, ErrNoQuestionnaire
	}
	kind := c.activeKind
	act := submitAction(string(kind))
	if _, inFlight := c.busy[act]; inFlight {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if !engine.Complete() {
		c.errMsg = msgIncomplete
		c.publishLocked()
		c.mu.Unlock()
		return nil, assessment.ErrIncomplete
	}
	c.busy[act] = struct{}{}
	c.errMsg = ""
	gen := c.gen
	c.publishLocked()
	c.mu.Unlock()

	result, err := engine.Submit(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		// Reset while scoring was in flight; the result belongs to the
		// old session and is dropped.
		return nil, err
	}
	delete(c.busy, act)
	if err != nil {
		c.failLocked(err)
		return nil, err
	}
	delete(c.engines, kind)
	c.results[kind] = result
	c.state = StateReviewingResult
	c.publishLocked()

	go c.refreshProgress(context.Background())
	return result, nil
}

// SaveMood upserts today's mood entry.
func (c *Controller) SaveMood(ctx context.Context, level int, note string) error {
	return c.saveEntry(ctx, tracker.KindMood, tracker.Payload{MoodLevel: level, Note: note}, actionSaveMood)
}

// SaveSleep upserts today's sleep entry.
func (c *Controller) SaveSleep(ctx context.Context, hours float64, quality int, note string) error {
	return c.saveEntry(ctx, tracker.KindSleep, tracker.Payload{Hours: hours, Quality: quality, Note: note}, actionSaveSleep)
}

// SaveReflection upserts today's reflection.
func (c *Controller) SaveReflection(ctx context.Context, text string) error {
	return c.saveEntry(ctx, tracker.KindReflection, tracker.Payload{Text: text}, actionSaveReflection)
}

func (c *Controller) saveEntry(ctx context.Context, kind tracker.Kind, p tracker.Payload, act action) error {
	c.mu.Lock()
	if !c.signedInLocked() {
		c.mu.Unlock()
		return fmt.Errorf("not signed in")
	}
	if _, inFlight := c.busy[act]; inFlight {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy[act] = struct{}{}
	c.errMsg = ""
	gen := c.gen
	c.publishLocked()
	c.mu.Unlock()

	err := c.trackers.UpsertToday(ctx, kind, p)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return err
	}
	delete(c.busy, act)
	if err != nil {
		c.failLocked(err)
		return err
	}
	c.publishLocked()

	// Sleep and reflection entries award experience on the collaborator side.
	if kind != tracker.KindMood {
		go c.refreshProgress(context.Background())
	}
	return nil
}

// SendChat appends the user's message and the collaborator's reply to the
// conversation. A failed dispatch still grows the log by two turns; the
// fallback reply already stands in for the banner, so no error message is
// raised unless the session expired.
func (c *Controller) SendChat(ctx context.Context, text string) error {
	c.mu.Lock()
	if !c.signedInLocked() {
		c.mu.Unlock()
		return fmt.Errorf("not signed in")
	}
	if _, inFlight := c.busy[actionChat]; inFlight {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy[actionChat] = struct{}{}
	c.errMsg = ""
	gen := c.gen
	c.publishLocked()
	c.mu.Unlock()

	err := c.chat.Append(ctx, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return err
	}
	delete(c.busy, actionChat)
	if err != nil {
		if errors.Is(err, collab.ErrUnauthorized) {
			c.expireLocked()
		}
		c.publishLocked()
		capture(err)
		return err
	}
	c.publishLocked()
	return nil
}

// SaveMemory pushes the chatbot memory to the collaborator and caches the
// returned merge.
func (c *Controller) SaveMemory(ctx context.Context, memory map[string]interface{}) error {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	merged, err := c.api.UpdateMemory(ctx, memory)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return err
	}
	if err != nil {
		c.failLocked(err)
		return err
	}
	c.memory = merged
	c.publishLocked()
	return nil
}

// RefreshAll fetches every member resource concurrently and applies each
// result as it arrives, last write wins. It returns once all fetches are
// done. Failures never overwrite cached data; an expired token resets the
// session.
func (c *Controller) RefreshAll(ctx context.Context) {
	c.mu.Lock()
	if !c.signedInLocked() {
		c.mu.Unlock()
		return
	}
	gen := c.gen
	c.mu.Unlock()

	fetches := []struct {
		name string
		run  func() error
	}{
		{"profile", func() error {
			user, err := c.api.Profile(ctx)
			if err != nil {
				return err
			}
			c.applyIf(gen, func() { c.user = user })
			return nil
		}},
		{"assessments", func() error {
			records, err := c.api.Assessments(ctx)
			if err != nil {
				return err
			}
			c.applyIf(gen, func() { c.history = records })
			return nil
		}},
		{"mood", func() error {
			entries, err := c.api.MoodEntries(ctx)
			if err != nil {
				return err
			}
			c.applyIf(gen, func() { c.trackers.Load(tracker.KindMood, moodEntries(entries)) })
			return nil
		}},
		{"sleep", func() error {
			entries, err := c.api.SleepEntries(ctx)
			if err != nil {
				return err
			}
			c.applyIf(gen, func() { c.trackers.Load(tracker.KindSleep, sleepEntries(entries)) })
			return nil
		}},
		{"reflections", func() error {
			entries, err := c.api.Reflections(ctx)
			if err != nil {
				return err
			}
			c.applyIf(gen, func() { c.trackers.Load(tracker.KindReflection, reflectionEntries(entries)) })
			return nil
		}},
		{"plan", func() error {
			plan, err := c.api.Plan(ctx)
			if err != nil {
				return err
			}
			c.applyIf(gen, func() { c.plan = plan })
			return nil
		}},
		{"journeys", func() error {
			journeys, err := c.api.Journeys(ctx)
			if err != nil {
				return err
			}
			c.applyIf(gen, func() { c.journeys = journeys })
			return nil
		}},
		{"gamification", func() error {
			snap, err := c.api.Gamification(ctx)
			if err != nil {
				return err
			}
			c.applyIf(gen, func() { c.game.Store(*snap) })
			return nil
		}},
		{"memory", func() error {
			memory, err := c.api.Memory(ctx)
			if err != nil {
				return err
			}
			c.applyIf(gen, func() { c.memory = memory })
			return nil
		}},
	}

	var wg sync.WaitGroup
	for _, f := range fetches {
		wg.Add(1)
		go func(name string, run func() error) {
			defer wg.Done()
			if err := run(); err != nil {
				c.backgroundErr(name, err)
			}
		}(f.name, f.run)
	}
	wg.Wait()
}

// refreshProgress re-fetches only what a submission changes: the assessment
// history, the profile, and the gamification snapshot.
func (c *Controller) refreshProgress(ctx context.Context) {
	c.mu.Lock()
	if !c.signedInLocked() {
		c.mu.Unlock()
		return
	}
	gen := c.gen
	c.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		snap, err := c.api.Gamification(ctx)
		if err != nil {
			c.backgroundErr("gamification", err)
			return
		}
		c.applyIf(gen, func() { c.game.Store(*snap) })
	}()
	go func() {
		defer wg.Done()
		records, err := c.api.Assessments(ctx)
		if err != nil {
			c.backgroundErr("assessments", err)
			return
		}
		c.applyIf(gen, func() { c.history = records })
	}()
	go func() {
		defer wg.Done()
		user, err := c.api.Profile(ctx)
		if err != nil {
			c.backgroundErr("profile", err)
			return
		}
		c.applyIf(gen, func() { c.user = user })
	}()
	wg.Wait()
}

// applyIf runs a mutation under the lock and publishes, unless the session
// was reset since the fetch started; stale results are dropped.
func (c *Controller) applyIf(gen int, mutate func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	mutate()
	c.publishLocked()
}

// backgroundErr handles a failed background fetch: expired sessions reset,
// everything else is logged and the cached value stays.
func (c *Controller) backgroundErr(name string, err error) {
	if errors.Is(err, collab.ErrUnauthorized) {
		c.mu.Lock()
		c.expireLocked()
		c.publishLocked()
		c.mu.Unlock()
		return
	}
	c.log.Warn("background refresh failed", "resource", name, "error", err)
}

func moodEntries(in []collab.MoodEntry) []tracker.Entry {
	out := make([]tracker.Entry, len(in))
	for i, e := range in {
		out[i] = tracker.Entry{
			ID:        e.EntryID,
			Date:      e.Date.UTC().Format("2006-01-02"),
			MoodLevel: e.MoodLevel,
			Note:      e.Note,
		}
	}
	return out
}

func sleepEntries(in []collab.SleepEntry) []tracker.Entry {
	out := make([]tracker.Entry, len(in))
	for i, e := range in {
		out[i] = tracker.Entry{
			ID:      e.EntryID,
			Date:    e.Date.UTC().Format("2006-01-02"),
			Hours:   e.Hours,
			Quality: e.Quality,
			Note:    e.Note,
		}
	}
	return out
}

func reflectionEntries(in []collab.ReflectionEntry) []tracker.Entry {
	out := make([]tracker.Entry, len(in))
	for i, e := range in {
		out[i] = tracker.Entry{
			ID:   e.EntryID,
			Date: e.Date.UTC().Format("2006-01-02"),
			Text: e.Text,
		}
	}
	return out
}
