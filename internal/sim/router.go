package sim

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/hamdel-app/hamdel/internal/config"
)

// JWTProtected verifies the bearer token and rejects with the standard
// error envelope.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   true,
				"message": "Unauthorized: invalid or expired token",
			})
		},
	})
}

// SetupRoutes registers every endpoint on the app.
func SetupRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	auth := NewAuthService(db, cfg)
	assessments := NewAssessmentService(db)
	trackers := NewTrackerService(db)
	chat := NewChatService(db, auth)
	h := NewHandler(auth, assessments, trackers, chat)

	api := app.Group("/api")

	// Public
	api.Get("/health", h.Health)
	api.Post("/register", h.Register)
	api.Post("/login", h.Login)

	// Protected
	protected := api.Group("", JWTProtected(cfg))
	protected.Get("/profile", h.GetProfile)

	protected.Post("/submit-dass21", h.SubmitDASS21)
	protected.Post("/submit-phq9", h.SubmitPHQ9)
	protected.Get("/assessments", h.GetAssessments)

	protected.Post("/mood-entry", h.SaveMood)
	protected.Get("/mood-entries", h.GetMoodEntries)
	protected.Post("/sleep-entry", h.SaveSleep)
	protected.Get("/sleep-entries", h.GetSleepEntries)
	protected.Post("/daily-reflection", h.SaveReflection)
	protected.Get("/daily-reflections", h.GetReflections)

	protected.Post("/chat", h.Chat)

	protected.Get("/mental-health-plan", h.GetPlan)
	protected.Get("/journeys", h.GetJourneys)
	protected.Get("/gamification", h.GetGamification)
	protected.Get("/memory", h.GetMemory)
	protected.Put("/memory", h.UpdateMemory)
}
