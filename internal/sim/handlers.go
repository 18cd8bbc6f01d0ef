package sim

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hamdel-app/hamdel/internal/collab"
)

// Handler carries every HTTP endpoint of the simulator.
type Handler struct {
	auth        *AuthService
	assessments *AssessmentService
	trackers    *TrackerService
	chat        *ChatService
}

func NewHandler(auth *AuthService, assessments *AssessmentService, trackers *TrackerService, chat *ChatService) *Handler {
	return &Handler{auth: auth, assessments: assessments, trackers: trackers, chat: chat}
}

// currentUserID extracts the user UUID from the verified JWT claims.
func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": true, "message": msg,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": true, "message": "Unauthorized",
	})
}

func serverError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": true, "message": err.Error(),
	})
}

// Health handles GET /api/health
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "time": time.Now().UTC()})
}

// Register handles POST /api/register
func (h *Handler) Register(c *fiber.Ctx) error {
	var req collab.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.auth.Register(&req)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles POST /api/login
func (h *Handler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	return c.JSON(resp)
}

// GetProfile handles GET /api/profile
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.auth.GetUser(userID)
	if err != nil {
		return unauthorized(c)
	}
	return c.JSON(Profile(user))
}

func (h *Handler) submitAssessment(c *fiber.Ctx, kind string, size int) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req struct {
		Responses map[int]int `json:"responses"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(req.Responses) != size {
		return badRequest(c, "All items must be answered")
	}

	result, err := h.assessments.Submit(userID, kind, req.Responses)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(result)
}

// SubmitDASS21 handles POST /api/submit-dass21
func (h *Handler) SubmitDASS21(c *fiber.Ctx) error {
	return h.submitAssessment(c, "DASS-21", 21)
}

// SubmitPHQ9 handles POST /api/submit-phq9
func (h *Handler) SubmitPHQ9(c *fiber.Ctx) error {
	return h.submitAssessment(c, "PHQ-9", 9)
}

// GetAssessments handles GET /api/assessments
func (h *Handler) GetAssessments(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	records, err := h.assessments.History(userID)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(records)
}

// SaveMood handles POST /api/mood-entry
func (h *Handler) SaveMood(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req struct {
		MoodLevel int    `json:"mood_level"`
		Note      string `json:"note"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	entry, err := h.trackers.UpsertMood(userID, req.MoodLevel, req.Note)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(entry)
}

// GetMoodEntries handles GET /api/mood-entries
func (h *Handler) GetMoodEntries(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	entries, err := h.trackers.MoodEntries(userID)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(entries)
}

// SaveSleep handles POST /api/sleep-entry
func (h *Handler) SaveSleep(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req struct {
		Hours   float64 `json:"hours"`
		Quality int     `json:"quality"`
		Note    string  `json:"note"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	entry, err := h.trackers.UpsertSleep(userID, req.Hours, req.Quality, req.Note)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(entry)
}

// GetSleepEntries handles GET /api/sleep-entries
func (h *Handler) GetSleepEntries(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	entries, err := h.trackers.SleepEntries(userID)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(entries)
}

// SaveReflection handles POST /api/daily-reflection
func (h *Handler) SaveReflection(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	entry, err := h.trackers.UpsertReflection(userID, req.Text)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(entry)
}

// GetReflections handles GET /api/daily-reflections
func (h *Handler) GetReflections(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	entries, err := h.trackers.Reflections(userID)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(entries)
}

// Chat handles POST /api/chat
func (h *Handler) Chat(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Message == "" {
		return badRequest(c, "Message must not be empty")
	}

	reply, err := h.chat.Respond(userID, req.Message)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{"response": reply})
}

// GetPlan handles GET /api/mental-health-plan
func (h *Handler) GetPlan(c *fiber.Ctx) error {
	if _, err := currentUserID(c); err != nil {
		return unauthorized(c)
	}
	return c.JSON(StaticPlan())
}

// GetJourneys handles GET /api/journeys
func (h *Handler) GetJourneys(c *fiber.Ctx) error {
	if _, err := currentUserID(c); err != nil {
		return unauthorized(c)
	}
	return c.JSON(StaticJourneys())
}

// GetGamification handles GET /api/gamification
func (h *Handler) GetGamification(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.auth.GetUser(userID)
	if err != nil {
		return unauthorized(c)
	}
	return c.JSON(Gamification(user))
}

// GetMemory handles GET /api/memory
func (h *Handler) GetMemory(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.auth.GetUser(userID)
	if err != nil {
		return unauthorized(c)
	}
	return c.JSON(MemoryMap(user))
}

// UpdateMemory handles PUT /api/memory
func (h *Handler) UpdateMemory(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req struct {
		Memory map[string]interface{} `json:"memory"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	merged, err := h.auth.UpdateMemory(userID, req.Memory)
	if err != nil {
		return serverError(c, err)
	}
	return c.JSON(fiber.Map{"memory": merged})
}
