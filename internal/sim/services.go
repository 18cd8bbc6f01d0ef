package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hamdel-app/hamdel/internal/collab"
	"github.com/hamdel-app/hamdel/internal/config"
)

var (
	ErrEmailTaken         = errors.New("این ایمیل قبلاً ثبت شده است")
	ErrInvalidCredentials = errors.New("ایمیل یا رمز عبور اشتباه است")
	ErrPasswordMismatch   = errors.New("رمز عبور و تکرار آن یکسان نیستند")
	ErrConsentRequired    = errors.New("برای ثبت‌نام باید رضایت‌نامه را بپذیرید")
	ErrUserNotFound       = errors.New("user not found")
)

// Experience awards per activity; levels advance every 100 XP.
const (
	xpAssessment = 10
	xpSleep      = 5
	xpReflection = 5
)

var badgeThresholds = []struct {
	xp   int
	name string
}{
	{100, "Novice"},
	{500, "Expert"},
}

// AuthService registers users and issues HS256 access tokens.
type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

func (s *AuthService) Register(req *collab.RegisterRequest) (*collab.AuthResponse, error) {
	if len(req.Email) == 0 || len(req.Password) < 6 {
		return nil, errors.New("ایمیل الزامی است و رمز عبور باید حداقل ۶ کاراکتر باشد")
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if !req.ConsentGiven {
		return nil, ErrConsentRequired
	}

	var existing User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Age:          req.Age,
		StudentLevel: req.StudentLevel,
		ConsentGiven: true,
		Level:        1,
		Badges:       datatypes.JSON([]byte("[]")),
		Memory:       datatypes.JSON([]byte("{}")),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.authResponse(&user)
}

func (s *AuthService) Login(email, password string) (*collab.AuthResponse, error) {
	var user User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.authResponse(&user)
}

func (s *AuthService) authResponse(user *User) (*collab.AuthResponse, error) {
	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}
	return &collab.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        Profile(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// GetUser loads a user by ID.
func (s *AuthService) GetUser(userID uuid.UUID) (*User, error) {
	var user User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateMemory merges the given keys into the user's chatbot memory and
// returns the merged map.
func (s *AuthService) UpdateMemory(userID uuid.UUID, update map[string]interface{}) (map[string]interface{}, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	memory := MemoryMap(user)
	for k, v := range update {
		memory[k] = v
	}

	raw, err := json.Marshal(memory)
	if err != nil {
		return nil, err
	}
	user.Memory = datatypes.JSON(raw)
	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return memory, nil
}

// Profile projects a stored user onto the wire shape.
func Profile(user *User) collab.User {
	return collab.User{
		UserID:       user.ID.String(),
		Email:        user.Email,
		FullName:     user.FullName,
		Age:          user.Age,
		StudentLevel: user.StudentLevel,
		XP:           user.XP,
		Level:        user.Level,
		Badges:       BadgeList(user),
		Memory:       MemoryMap(user),
	}
}

// BadgeList decodes the user's badge column; a broken column reads as empty.
func BadgeList(user *User) []string {
	badges := []string{}
	if len(user.Badges) > 0 {
		_ = json.Unmarshal(user.Badges, &badges)
	}
	return badges
}

// MemoryMap decodes the user's memory column; a broken column reads as empty.
func MemoryMap(user *User) map[string]interface{} {
	memory := map[string]interface{}{}
	if len(user.Memory) > 0 {
		_ = json.Unmarshal(user.Memory, &memory)
	}
	return memory
}

// awardXP adds experience, recomputes the level, and unlocks any badges the
// new total reaches. The caller's transaction persists the user.
func awardXP(db *gorm.DB, user *User, amount int) error {
	user.XP += amount
	user.Level = user.XP/100 + 1

	badges := BadgeList(user)
	for _, threshold := range badgeThresholds {
		if user.XP >= threshold.xp && !contains(badges, threshold.name) {
			badges = append(badges, threshold.name)
		}
	}
	raw, err := json.Marshal(badges)
	if err != nil {
		return err
	}
	user.Badges = datatypes.JSON(raw)
	return db.Save(user).Error
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// AssessmentService scores and stores questionnaire submissions.
type AssessmentService struct {
	db *gorm.DB
}

func NewAssessmentService(db *gorm.DB) *AssessmentService {
	return &AssessmentService{db: db}
}

// Submit scores the responses for the given instrument, persists the record,
// and awards experience.
func (s *AssessmentService) Submit(userID uuid.UUID, kind string, responses map[int]int) (*collab.ScoreResult, error) {
	var result collab.ScoreResult
	switch kind {
	case "DASS-21":
		result = ScoreDASS21(responses)
	case "PHQ-9":
		result = ScorePHQ9(responses)
	default:
		return nil, fmt.Errorf("unknown assessment type %q", kind)
	}

	rawResponses, err := json.Marshal(responses)
	if err != nil {
		return nil, err
	}
	rawResults, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	record := Assessment{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        kind,
		Responses:   datatypes.JSON(rawResponses),
		Results:     datatypes.JSON(rawResults),
		CompletedAt: time.Now().UTC(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		var user User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		return awardXP(tx, &user, xpAssessment)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// History returns the user's ten most recent assessments, newest first.
func (s *AssessmentService) History(userID uuid.UUID) ([]Assessment, error) {
	var records []Assessment
	err := s.db.Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(10).
		Find(&records).Error
	return records, err
}

// TrackerService owns the daily mood, sleep, and reflection entries with a
// one-entry-per-day upsert per kind.
type TrackerService struct {
	db *gorm.DB
}

func NewTrackerService(db *gorm.DB) *TrackerService {
	return &TrackerService{db: db}
}

func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// UpsertMood creates or replaces today's mood entry. Mood tracking awards no
// experience.
func (s *TrackerService) UpsertMood(userID uuid.UUID, level int, note string) (*MoodEntry, error) {
	if level < 1 || level > 5 {
		return nil, errors.New("mood level must be between 1 and 5")
	}

	day := today()
	var entry MoodEntry
	err := s.db.Where("user_id = ? AND entry_date = ?", userID, day).First(&entry).Error
	switch {
	case err == nil:
		entry.MoodLevel = level
		entry.Note = note
		err = s.db.Save(&entry).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry = MoodEntry{ID: uuid.New(), UserID: userID, MoodLevel: level, Note: note, EntryDate: day}
		err = s.db.Create(&entry).Error
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpsertSleep creates or replaces today's sleep entry; a first save for the
// day awards experience.
func (s *TrackerService) UpsertSleep(userID uuid.UUID, hours float64, quality int, note string) (*SleepEntry, error) {
	if hours <= 0 {
		return nil, errors.New("sleep hours must be positive")
	}
	if quality < 1 || quality > 5 {
		return nil, errors.New("sleep quality must be between 1 and 5")
	}

	day := today()
	var entry SleepEntry
	err := s.db.Where("user_id = ? AND entry_date = ?", userID, day).First(&entry).Error
	switch {
	case err == nil:
		entry.Hours = hours
		entry.Quality = quality
		entry.Note = note
		if err := s.db.Save(&entry).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry = SleepEntry{ID: uuid.New(), UserID: userID, Hours: hours, Quality: quality, Note: note, EntryDate: day}
		txErr := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			var user User
			if err := tx.First(&user, "id = ?", userID).Error; err != nil {
				return err
			}
			return awardXP(tx, &user, xpSleep)
		})
		if txErr != nil {
			return nil, txErr
		}
	default:
		return nil, err
	}
	return &entry, nil
}

// UpsertReflection creates or replaces today's reflection; a first save for
// the day awards experience.
func (s *TrackerService) UpsertReflection(userID uuid.UUID, text string) (*Reflection, error) {
	if text == "" {
		return nil, errors.New("reflection text must not be empty")
	}

	day := today()
	var entry Reflection
	err := s.db.Where("user_id = ? AND entry_date = ?", userID, day).First(&entry).Error
	switch {
	case err == nil:
		entry.Text = text
		if err := s.db.Save(&entry).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry = Reflection{ID: uuid.New(), UserID: userID, Text: text, EntryDate: day}
		txErr := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			var user User
			if err := tx.First(&user, "id = ?", userID).Error; err != nil {
				return err
			}
			return awardXP(tx, &user, xpReflection)
		})
		if txErr != nil {
			return nil, txErr
		}
	default:
		return nil, err
	}
	return &entry, nil
}

// MoodEntries returns the user's mood log, newest first.
func (s *TrackerService) MoodEntries(userID uuid.UUID) ([]MoodEntry, error) {
	var entries []MoodEntry
	err := s.db.Where("user_id = ?", userID).Order("entry_date DESC").Find(&entries).Error
	return entries, err
}

// SleepEntries returns the user's sleep log, newest first.
func (s *TrackerService) SleepEntries(userID uuid.UUID) ([]SleepEntry, error) {
	var entries []SleepEntry
	err := s.db.Where("user_id = ?", userID).Order("entry_date DESC").Find(&entries).Error
	return entries, err
}

// Reflections returns the user's reflection log, newest first.
func (s *TrackerService) Reflections(userID uuid.UUID) ([]Reflection, error) {
	var entries []Reflection
	err := s.db.Where("user_id = ?", userID).Order("entry_date DESC").Find(&entries).Error
	return entries, err
}

// ChatService stores conversation turns and produces rule-based replies.
type ChatService struct {
	db   *gorm.DB
	auth *AuthService
}

func NewChatService(db *gorm.DB, auth *AuthService) *ChatService {
	return &ChatService{db: db, auth: auth}
}

// Respond stores the user's message, generates a reply from the rule set and
// the user's memory, stores it, and returns it.
func (s *ChatService) Respond(userID uuid.UUID, message string) (string, error) {
	user, err := s.auth.GetUser(userID)
	if err != nil {
		return "", err
	}

	reply := Reply(message, MemoryMap(user))
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ChatMessage{ID: uuid.New(), UserID: userID, Sender: "user", Text: message}).Error; err != nil {
			return err
		}
		return tx.Create(&ChatMessage{ID: uuid.New(), UserID: userID, Sender: "assistant", Text: reply}).Error
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

// Gamification projects the user's progress onto the wire shape.
func Gamification(user *User) collab.GamificationSnapshot {
	return collab.GamificationSnapshot{
		XP:     user.XP,
		Level:  user.Level,
		Badges: BadgeList(user),
	}
}

// StaticPlan is the fixed mental-health plan served to every user.
func StaticPlan() collab.Plan {
	return collab.Plan{
		DailyHabits: []string{
			"۱۰ دقیقه پیاده‌روی یا نرمش",
			"نوشتن سه چیزی که بابتشان سپاسگزارید",
			"خواب منظم، حداقل ۸ ساعت",
			"ثبت روزانه حال و هوای خود",
		},
		WeeklyGoals: []string{
			"گفت‌وگو با یک دوست یا عضو خانواده",
			"انجام یک فعالیت لذت‌بخش خارج از برنامه درسی",
			"مرور یادداشت‌های هفته و شناسایی الگوها",
		},
		EmergencyContacts: map[string]string{
			"اورژانس اجتماعی":   "123",
			"صدای مشاور":        "1480",
			"اورژانس روانپزشکی": "115",
		},
	}
}

// StaticJourneys is the fixed habit-journey catalog.
func StaticJourneys() []collab.Journey {
	return []collab.Journey{
		{
			ID:   "sleep-hygiene",
			Name: "بهداشت خواب",
			Tasks: []string{
				"هر شب ساعت مشخصی بخوابید",
				"یک ساعت قبل از خواب از موبایل فاصله بگیرید",
				"اتاق را تاریک و خنک نگه دارید",
			},
		},
		{
			ID:   "mindfulness",
			Name: "ذهن‌آگاهی",
			Tasks: []string{
				"روزی ۵ دقیقه تنفس عمیق",
				"یک وعده غذا را با تمرکز کامل میل کنید",
				"پیاده‌روی کوتاه بدون موبایل",
			},
		},
		{
			ID:   "connection",
			Name: "ارتباط اجتماعی",
			Tasks: []string{
				"با یک دوست قدیمی تماس بگیرید",
				"در یک فعالیت گروهی شرکت کنید",
				"از یک نفر تشکر کنید",
			},
		},
	}
}
