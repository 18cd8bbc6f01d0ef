package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamdel-app/hamdel/internal/assessment"
	"github.com/hamdel-app/hamdel/internal/collab"
	"github.com/hamdel-app/hamdel/internal/config"
	"github.com/hamdel-app/hamdel/internal/session"
	"github.com/hamdel-app/hamdel/internal/sim"
	"github.com/hamdel-app/hamdel/internal/tokenstore"
)

// startServer boots the simulator on a random port with a throwaway sqlite
// database and returns its base URL.
func startServer(t *testing.T) string {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:       "integration-test-secret",
		JWTAccessExpiry: time.Hour,
		DBDriver:        "sqlite",
		DBPath:          "file:" + filepath.Join(t.TempDir(), "sim.db") + "?_busy_timeout=5000&_journal_mode=WAL",
	}

	db, err := sim.Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, sim.Migrate(db))

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	sim.SetupRoutes(app, cfg, db)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String()
}

func TestFullSessionFlow(t *testing.T) {
	base := startServer(t)
	ctx := context.Background()

	client := collab.NewClient(base, 5*time.Second)
	tokens, err := tokenstore.New(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, err)
	ctrl := session.NewController(client, tokens, nil)

	// Cold start with no stored token lands on the landing screen.
	ctrl.Start(ctx)
	require.Equal(t, session.StateLanding, ctrl.Snapshot().State)

	require.NoError(t, client.Health(ctx))

	// Register signs in directly.
	err = ctrl.Register(ctx, collab.RegisterRequest{
		Email:           "arezoo@example.ir",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		FullName:        "آرزو محمدی",
		Age:             16,
		StudentLevel:    "high-school",
		ConsentGiven:    true,
	})
	require.NoError(t, err)

	snap := ctrl.Snapshot()
	require.Equal(t, session.StateDashboard, snap.State)
	require.NotNil(t, snap.User)
	assert.Equal(t, "آرزو محمدی", snap.User.FullName)

	// A full DASS-21 pass, every item answered with 1.
	require.NoError(t, ctrl.OpenQuestionnaire(assessment.KindDASS21))
	for id := 1; id <= 21; id++ {
		require.NoError(t, ctrl.RecordAnswer(id, 1))
	}
	result, err := ctrl.SubmitQuestionnaire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 14, result.DepressionScore)
	assert.Equal(t, 14, result.AnxietyScore)
	assert.Equal(t, 14, result.StressScore)
	assert.Equal(t, "عادی", result.StressLevel)
	require.Equal(t, session.StateReviewingResult, ctrl.Snapshot().State)

	// Saving the mood twice in one day leaves a single entry.
	require.NoError(t, ctrl.OpenMoodTracker())
	require.NoError(t, ctrl.SaveMood(ctx, 2, "صبح"))
	require.NoError(t, ctrl.SaveMood(ctx, 5, "عصر"))

	moods, err := client.MoodEntries(ctx)
	require.NoError(t, err)
	require.Len(t, moods, 1)
	assert.Equal(t, 5, moods[0].MoodLevel)
	assert.Equal(t, "عصر", moods[0].Note)

	// Sleep and reflection award experience.
	require.NoError(t, ctrl.OpenSleepTracker())
	require.NoError(t, ctrl.SaveSleep(ctx, 7.5, 4, ""))
	require.NoError(t, ctrl.OpenReflection())
	require.NoError(t, ctrl.SaveReflection(ctx, "امروز روز آرامی بود"))

	game, err := client.Gamification(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, game.XP)
	assert.Equal(t, 1, game.Level)

	// The chat replies through the real wire.
	require.NoError(t, ctrl.OpenChat())
	require.NoError(t, ctrl.SendChat(ctx, "سلام"))
	turns := ctrl.Snapshot().Conversation
	require.Len(t, turns, 3)
	assert.Contains(t, turns[2].Text, "سلام")

	// The history records the submitted questionnaire.
	records, err := client.Assessments(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "DASS-21", records[0].Type)
	assert.Equal(t, 14, records[0].Results.DepressionScore)

	// A second controller restores the session from the persisted token.
	ctrl2 := session.NewController(collab.NewClient(base, 5*time.Second), tokens, nil)
	ctrl2.Start(ctx)
	snap2 := ctrl2.Snapshot()
	require.Equal(t, session.StateDashboard, snap2.State)
	require.NotNil(t, snap2.User)
	assert.Equal(t, "arezoo@example.ir", snap2.User.Email)

	// Logout purges the token; a third start is signed out again.
	ctrl.Logout()
	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestMemoryRoundTripPersonalizesChat(t *testing.T) {
	base := startServer(t)
	ctx := context.Background()

	client := collab.NewClient(base, 5*time.Second)
	tokens, err := tokenstore.New(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, err)
	ctrl := session.NewController(client, tokens, nil)

	require.NoError(t, ctrl.Register(ctx, collab.RegisterRequest{
		Email:           "nika@example.ir",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		FullName:        "نیکا رضایی",
		Age:             17,
		StudentLevel:    "high-school",
		ConsentGiven:    true,
	}))

	require.NoError(t, ctrl.SaveMemory(ctx, map[string]interface{}{"name": "نیکا"}))
	assert.Equal(t, "نیکا", ctrl.Snapshot().Memory["name"])

	// The stored map stays flat; the update key never nests.
	mem, err := client.Memory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "نیکا", mem["name"])
	assert.NotContains(t, mem, "memory")

	// A second update merges instead of replacing.
	require.NoError(t, ctrl.SaveMemory(ctx, map[string]interface{}{"goal": "آرامش"}))
	mem, err = client.Memory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "نیکا", mem["name"])
	assert.Equal(t, "آرامش", mem["goal"])

	// The chatbot greets by the remembered name.
	require.NoError(t, ctrl.OpenChat())
	require.NoError(t, ctrl.SendChat(ctx, "سلام"))
	turns := ctrl.Snapshot().Conversation
	require.Len(t, turns, 3)
	assert.Contains(t, turns[2].Text, "نیکا")
}

func TestRejectedCredentialsAndTokens(t *testing.T) {
	base := startServer(t)
	ctx := context.Background()
	client := collab.NewClient(base, 5*time.Second)

	// Unknown account.
	_, err := client.Login(ctx, "nobody@example.ir", "whatever")
	require.Error(t, err)
	var apiErr *collab.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)

	// Tampered token.
	client.SetToken("not-a-jwt")
	_, err = client.Profile(ctx)
	require.ErrorIs(t, err, collab.ErrUnauthorized)
}
