package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamdel-app/hamdel/internal/assessment"
	"github.com/hamdel-app/hamdel/internal/chat"
	"github.com/hamdel-app/hamdel/internal/collab"
	"github.com/hamdel-app/hamdel/internal/tracker"
)

type stubTokens struct {
	token   string
	loadErr error
	saves   int
	clears  int
}

func (s *stubTokens) Load() (string, error) { return s.token, s.loadErr }
func (s *stubTokens) Save(token string) error {
	s.token = token
	s.saves++
	return nil
}
func (s *stubTokens) Clear() error {
	s.token = ""
	s.clears++
	return nil
}

// stubCollab answers every remote call from canned fields.
type stubCollab struct {
	mu sync.Mutex

	token string

	loginErr   error
	profileErr error
	submitErr  error
	saveErr    error
	chatErr    error

	user   collab.User
	result *collab.ScoreResult

	submitCalls int
	moodCalls   int
	loginBlock  chan struct{}
	submitBlock chan struct{}
	moodBlock   chan struct{}
	chatBlock   chan struct{}
}

func newStubCollab() *stubCollab {
	return &stubCollab{
		user: collab.User{UserID: "u-1", Email: "a@b.ir", FullName: "آرزو", XP: 30, Level: 1},
		result: &collab.ScoreResult{
			TotalScore:    4,
			SeverityLevel: "حداقل",
		},
	}
}

func (s *stubCollab) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *stubCollab) ClearToken() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

func (s *stubCollab) Register(context.Context, collab.RegisterRequest) (*collab.AuthResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &collab.AuthResponse{AccessToken: "tok-reg", TokenType: "bearer", User: s.user}, nil
}

func (s *stubCollab) Login(context.Context, string, string) (*collab.AuthResponse, error) {
	if s.loginBlock != nil {
		<-s.loginBlock
	}
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &collab.AuthResponse{AccessToken: "tok-1", TokenType: "bearer", User: s.user}, nil
}

func (s *stubCollab) Profile(context.Context) (*collab.User, error) {
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	u := s.user
	return &u, nil
}

func (s *stubCollab) SubmitAssessment(context.Context, string, map[int]int, map[string][]int) (*collab.ScoreResult, error) {
	if s.submitBlock != nil {
		<-s.submitBlock
	}
	s.mu.Lock()
	s.submitCalls++
	s.mu.Unlock()
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return s.result, nil
}

func (s *stubCollab) Assessments(context.Context) ([]collab.AssessmentRecord, error) {
	return []collab.AssessmentRecord{{AssessmentID: "as-1", Type: "PHQ-9"}}, nil
}

func (s *stubCollab) SaveMood(context.Context, int, string) error {
	if s.moodBlock != nil {
		<-s.moodBlock
	}
	s.mu.Lock()
	s.moodCalls++
	s.mu.Unlock()
	return s.saveErr
}
func (s *stubCollab) SaveSleep(context.Context, float64, int, string) error { return s.saveErr }
func (s *stubCollab) SaveReflection(context.Context, string) error          { return s.saveErr }

func (s *stubCollab) MoodEntries(context.Context) ([]collab.MoodEntry, error) {
	return []collab.MoodEntry{{EntryID: "m-1", MoodLevel: 3, Date: time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)}}, nil
}
func (s *stubCollab) SleepEntries(context.Context) ([]collab.SleepEntry, error)     { return nil, nil }
func (s *stubCollab) Reflections(context.Context) ([]collab.ReflectionEntry, error) { return nil, nil }

func (s *stubCollab) Chat(context.Context, string) (string, error) {
	if s.chatBlock != nil {
		<-s.chatBlock
	}
	if s.chatErr != nil {
		return "", s.chatErr
	}
	return "خوشحالم که حالت خوب است", nil
}

func (s *stubCollab) Plan(context.Context) (*collab.Plan, error) {
	return &collab.Plan{DailyHabits: []string{"پیاده‌روی"}}, nil
}

func (s *stubCollab) Journeys(context.Context) ([]collab.Journey, error) {
	return []collab.Journey{{ID: "sleep-hygiene", Name: "بهداشت خواب"}}, nil
}

func (s *stubCollab) Gamification(context.Context) (*collab.GamificationSnapshot, error) {
	return &collab.GamificationSnapshot{XP: 30, Level: 1, Badges: []string{}}, nil
}

func (s *stubCollab) Memory(context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"name": "آرزو"}, nil
}

func (s *stubCollab) UpdateMemory(_ context.Context, m map[string]interface{}) (map[string]interface{}, error) {
	return m, nil
}

func signedInController(t *testing.T) (*Controller, *stubCollab, *stubTokens) {
	t.Helper()
	api := newStubCollab()
	tokens := &stubTokens{}
	ctrl := NewController(api, tokens, nil)
	require.NoError(t, ctrl.Login(context.Background(), "a@b.ir", "secret"))

	// Login hydrates in the background; wait for it so tests start from a
	// settled snapshot.
	require.Eventually(t, func() bool {
		snap := ctrl.Snapshot()
		return snap.Memory != nil && snap.Plan != nil &&
			len(snap.History) == 1 && len(snap.MoodLog) == 1 &&
			len(snap.Journeys) == 1 && snap.Gamification.XP == 30
	}, time.Second, 2*time.Millisecond)
	return ctrl, api, tokens
}

func TestStartWithoutToken(t *testing.T) {
	ctrl := NewController(newStubCollab(), &stubTokens{}, nil)
	ctrl.Start(context.Background())

	snap := ctrl.Snapshot()
	assert.Equal(t, StateLanding, snap.State)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Error)
}

func TestStartWithRejectedTokenPurgesSilently(t *testing.T) {
	api := newStubCollab()
	api.profileErr = &collab.APIError{Status: 401, Message: "Unauthorized"}
	tokens := &stubTokens{token: "stale"}
	ctrl := NewController(api, tokens, nil)

	ctrl.Start(context.Background())

	snap := ctrl.Snapshot()
	assert.Equal(t, StateLanding, snap.State)
	assert.Empty(t, snap.Error)
	assert.Empty(t, tokens.token)
	assert.Equal(t, 1, tokens.clears)
	assert.Empty(t, api.token)
}

func TestStartWithValidTokenRestores(t *testing.T) {
	api := newStubCollab()
	tokens := &stubTokens{token: "good"}
	ctrl := NewController(api, tokens, nil)

	ctrl.Start(context.Background())

	snap := ctrl.Snapshot()
	assert.Equal(t, StateDashboard, snap.State)
	require.NotNil(t, snap.User)
	assert.Equal(t, "u-1", snap.User.UserID)
	assert.Equal(t, "good", api.token)
	assert.Zero(t, tokens.clears)
}

func TestLoginSuccess(t *testing.T) {
	ctrl, api, tokens := signedInController(t)

	snap := ctrl.Snapshot()
	assert.Equal(t, StateDashboard, snap.State)
	require.NotNil(t, snap.User)
	assert.Equal(t, "آرزو", snap.User.FullName)
	assert.Equal(t, "tok-1", tokens.token)
	assert.Equal(t, "tok-1", api.token)
}

func TestLoginFailureStaysSignedOut(t *testing.T) {
	api := newStubCollab()
	api.loginErr = &collab.APIError{Status: 401, Message: "ایمیل یا رمز عبور اشتباه است"}
	tokens := &stubTokens{}
	ctrl := NewController(api, tokens, nil)

	err := ctrl.Login(context.Background(), "a@b.ir", "wrong")
	require.Error(t, err)

	snap := ctrl.Snapshot()
	assert.Equal(t, StateLanding, snap.State)
	assert.Equal(t, "ایمیل یا رمز عبور اشتباه است", snap.Error)
	assert.Zero(t, tokens.saves)
}

func TestLoginBusyRejectsSecondAttempt(t *testing.T) {
	api := newStubCollab()
	api.loginBlock = make(chan struct{})
	ctrl := NewController(api, &stubTokens{}, nil)

	done := make(chan error, 1)
	go func() { done <- ctrl.Login(context.Background(), "a@b.ir", "secret") }()

	require.Eventually(t, func() bool {
		return ctrl.Snapshot().InFlight(string(actionAuth))
	}, time.Second, 5*time.Millisecond)

	err := ctrl.Login(context.Background(), "a@b.ir", "secret")
	assert.ErrorIs(t, err, ErrBusy)

	close(api.loginBlock)
	require.NoError(t, <-done)
	assert.False(t, ctrl.Snapshot().InFlight(string(actionAuth)))
}

func TestRefreshAllHydratesCaches(t *testing.T) {
	ctrl, _, _ := signedInController(t)

	ctrl.RefreshAll(context.Background())

	snap := ctrl.Snapshot()
	assert.Len(t, snap.History, 1)
	assert.Len(t, snap.MoodLog, 1)
	require.NotNil(t, snap.Plan)
	assert.Len(t, snap.Journeys, 1)
	assert.Equal(t, 30, snap.Gamification.XP)
	assert.Equal(t, "آرزو", snap.Memory["name"])
}

func TestNavigationRequiresSignIn(t *testing.T) {
	ctrl := NewController(newStubCollab(), &stubTokens{}, nil)

	assert.Error(t, ctrl.OpenChat())
	assert.Error(t, ctrl.OpenQuestionnaire(assessment.KindPHQ9))
	assert.Equal(t, StateLanding, ctrl.Snapshot().State)
}

func TestQuestionnaireFlow(t *testing.T) {
	ctrl, api, _ := signedInController(t)
	ctx := context.Background()

	require.NoError(t, ctrl.OpenQuestionnaire(assessment.KindPHQ9))
	assert.Equal(t, StateTakingQuestionnaire, ctrl.Snapshot().State)

	// Incomplete submission fails before any network call.
	_, err := ctrl.SubmitQuestionnaire(ctx)
	require.ErrorIs(t, err, assessment.ErrIncomplete)
	assert.Zero(t, api.submitCalls)
	assert.Equal(t, msgIncomplete, ctrl.Snapshot().Error)

	for id := 1; id <= 9; id++ {
		require.NoError(t, ctrl.RecordAnswer(id, 0))
	}
	assert.Equal(t, 9, ctrl.Snapshot().Answered[assessment.KindPHQ9])

	result, err := ctrl.SubmitQuestionnaire(ctx)
	require.NoError(t, err)
	assert.Equal(t, "حداقل", result.SeverityLevel)

	snap := ctrl.Snapshot()
	assert.Equal(t, StateReviewingResult, snap.State)
	assert.Contains(t, snap.Results, assessment.KindPHQ9)
	assert.Equal(t, 1, api.submitCalls)
}

func TestQuestionnaireResumesAfterNavigation(t *testing.T) {
	ctrl, _, _ := signedInController(t)

	require.NoError(t, ctrl.OpenQuestionnaire(assessment.KindDASS21))
	require.NoError(t, ctrl.RecordAnswer(1, 2))
	require.NoError(t, ctrl.BackToDashboard())
	require.NoError(t, ctrl.OpenQuestionnaire(assessment.KindDASS21))

	assert.Equal(t, 1, ctrl.Snapshot().Answered[assessment.KindDASS21])
}

func TestSubmitFailureKeepsQuestionnaire(t *testing.T) {
	ctrl, api, _ := signedInController(t)
	api.submitErr = errors.New("collaborator unreachable: dial tcp")

	require.NoError(t, ctrl.OpenQuestionnaire(assessment.KindPHQ9))
	for id := 1; id <= 9; id++ {
		require.NoError(t, ctrl.RecordAnswer(id, 1))
	}

	_, err := ctrl.SubmitQuestionnaire(context.Background())
	require.Error(t, err)

	snap := ctrl.Snapshot()
	assert.Equal(t, StateTakingQuestionnaire, snap.State)
	assert.Equal(t, msgNetwork, snap.Error)
	assert.Equal(t, 9, snap.Answered[assessment.KindPHQ9])
	assert.False(t, snap.InFlight(string(submitAction(string(assessment.KindPHQ9)))))
}

func TestRecordAnswerRejectsInvalid(t *testing.T) {
	ctrl, _, _ := signedInController(t)

	require.NoError(t, ctrl.OpenQuestionnaire(assessment.KindPHQ9))
	err := ctrl.RecordAnswer(99, 1)
	require.ErrorIs(t, err, assessment.ErrInvalidItem)
	assert.Equal(t, msgInvalidInput, ctrl.Snapshot().Error)
}

func TestSaveMoodValidationNeverHitsNetwork(t *testing.T) {
	ctrl, api, _ := signedInController(t)
	require.NoError(t, ctrl.OpenMoodTracker())

	err := ctrl.SaveMood(context.Background(), 9, "")
	require.ErrorIs(t, err, tracker.ErrValidation)

	snap := ctrl.Snapshot()
	assert.Equal(t, StateTrackingMood, snap.State)
	assert.Equal(t, msgInvalidInput, snap.Error)
	assert.Zero(t, api.moodCalls)
}

func TestSaveMoodTwiceSameDayKeepsOneEntry(t *testing.T) {
	ctrl, api, _ := signedInController(t)
	require.NoError(t, ctrl.OpenMoodTracker())
	ctx := context.Background()

	require.NoError(t, ctrl.SaveMood(ctx, 2, "صبح"))
	require.NoError(t, ctrl.SaveMood(ctx, 4, "عصر"))

	// One entry for today plus the hydrated older one; the second save
	// replaced the first instead of duplicating it.
	snap := ctrl.Snapshot()
	require.Len(t, snap.MoodLog, 2)
	assert.Equal(t, 4, snap.MoodLog[0].MoodLevel)
	assert.Equal(t, "عصر", snap.MoodLog[0].Note)
	assert.Equal(t, "m-1", snap.MoodLog[1].ID)
	assert.Equal(t, 2, api.moodCalls)
}

func TestUnauthorizedSaveExpiresSession(t *testing.T) {
	ctrl, api, tokens := signedInController(t)
	require.NoError(t, ctrl.OpenReflection())
	api.saveErr = &collab.APIError{Status: 401, Message: "Unauthorized"}

	err := ctrl.SaveReflection(context.Background(), "امروز روز سختی بود")
	require.Error(t, err)

	snap := ctrl.Snapshot()
	assert.Equal(t, StateLanding, snap.State)
	assert.Equal(t, msgSessionExpired, snap.Error)
	assert.Nil(t, snap.User)
	assert.Empty(t, tokens.token)
	assert.Empty(t, api.token)
}

func TestChatFailureKeepsBothTurns(t *testing.T) {
	ctrl, api, _ := signedInController(t)
	require.NoError(t, ctrl.OpenChat())
	api.chatErr = errors.New("collaborator unreachable: dial tcp")

	err := ctrl.SendChat(context.Background(), "سلام")
	require.Error(t, err)

	snap := ctrl.Snapshot()
	assert.Equal(t, StateChatting, snap.State)
	require.Len(t, snap.Conversation, 3)
	assert.Equal(t, "سلام", snap.Conversation[1].Text)
}

func TestLogoutResetsEverything(t *testing.T) {
	ctrl, api, tokens := signedInController(t)
	ctx := context.Background()
	ctrl.RefreshAll(ctx)
	require.NoError(t, ctrl.OpenChat())
	require.NoError(t, ctrl.SendChat(ctx, "سلام"))

	ctrl.Logout()

	snap := ctrl.Snapshot()
	assert.Equal(t, StateLanding, snap.State)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.History)
	assert.Empty(t, snap.MoodLog)
	assert.Nil(t, snap.Plan)
	assert.Len(t, snap.Conversation, 1)
	assert.Zero(t, snap.Gamification.XP)
	assert.Equal(t, 1, snap.Gamification.Level)
	assert.Empty(t, tokens.token)
	assert.Empty(t, api.token)
}

func TestLogoutDiscardsInFlightSubmit(t *testing.T) {
	ctrl, api, _ := signedInController(t)
	require.NoError(t, ctrl.OpenQuestionnaire(assessment.KindPHQ9))
	for id := 1; id <= 9; id++ {
		require.NoError(t, ctrl.RecordAnswer(id, 1))
	}

	api.submitBlock = make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctrl.SubmitQuestionnaire(context.Background())
	}()
	require.Eventually(t, func() bool {
		return ctrl.Snapshot().InFlight("submit:PHQ-9")
	}, time.Second, time.Millisecond)

	ctrl.Logout()
	close(api.submitBlock)
	<-done

	snap := ctrl.Snapshot()
	assert.Equal(t, StateLanding, snap.State)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Results)
	assert.Empty(t, snap.Busy)
}

func TestLogoutDiscardsInFlightLogin(t *testing.T) {
	api := newStubCollab()
	tokens := &stubTokens{}
	ctrl := NewController(api, tokens, nil)

	api.loginBlock = make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctrl.Login(context.Background(), "a@b.ir", "secret")
	}()
	require.Eventually(t, func() bool {
		return ctrl.Snapshot().InFlight("auth")
	}, time.Second, time.Millisecond)

	ctrl.Logout()
	close(api.loginBlock)
	<-done

	snap := ctrl.Snapshot()
	assert.Equal(t, StateLanding, snap.State)
	assert.Nil(t, snap.User)
	assert.Empty(t, tokens.token)
	assert.Empty(t, api.token)
}

func TestLogoutDiscardsInFlightMoodSave(t *testing.T) {
	ctrl, api, _ := signedInController(t)
	require.NoError(t, ctrl.OpenMoodTracker())

	api.moodBlock = make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctrl.SaveMood(context.Background(), 4, "")
	}()
	require.Eventually(t, func() bool {
		return ctrl.Snapshot().InFlight("save-mood")
	}, time.Second, time.Millisecond)

	ctrl.Logout()
	close(api.moodBlock)
	<-done

	snap := ctrl.Snapshot()
	assert.Equal(t, StateLanding, snap.State)
	assert.Empty(t, snap.MoodLog)
}

func TestLogoutDiscardsInFlightChatReply(t *testing.T) {
	ctrl, api, _ := signedInController(t)
	require.NoError(t, ctrl.OpenChat())

	api.chatBlock = make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctrl.SendChat(context.Background(), "سلام")
	}()
	require.Eventually(t, func() bool {
		return ctrl.Snapshot().InFlight("chat")
	}, time.Second, time.Millisecond)

	ctrl.Logout()
	close(api.chatBlock)
	<-done

	snap := ctrl.Snapshot()
	assert.Equal(t, StateLanding, snap.State)
	require.Len(t, snap.Conversation, 1)
	assert.Equal(t, chat.Greeting, snap.Conversation[0].Text)
}

func TestSubscribeDeliversLatestSnapshot(t *testing.T) {
	ctrl, _, _ := signedInController(t)

	ch, cancel := ctrl.Subscribe()
	defer cancel()

	// The current snapshot is delivered immediately.
	snap := <-ch
	assert.Equal(t, StateDashboard, snap.State)

	require.NoError(t, ctrl.OpenChat())
	require.NoError(t, ctrl.OpenPlan())

	// A slow consumer sees only the newest state.
	snap = <-ch
	assert.Equal(t, StateViewingPlan, snap.State)
}
