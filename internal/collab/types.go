package collab

import "time"

// User is the profile record returned by the collaborator.
type User struct {
	UserID       string                 `json:"user_id"`
	Email        string                 `json:"email"`
	FullName     string                 `json:"full_name"`
	Age          int                    `json:"age"`
	StudentLevel string                 `json:"student_level"`
	XP           int                    `json:"xp"`
	Level        int                    `json:"level"`
	Badges       []string               `json:"badges"`
	Memory       map[string]interface{} `json:"memory"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// RegisterRequest carries the registration form fields.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FullName        string `json:"fullName"`
	Age             int    `json:"age"`
	StudentLevel    string `json:"studentLevel"`
	ConsentGiven    bool   `json:"consentGiven"`
}

// ScoreResult is the collaborator's verdict on a submitted questionnaire.
// DASS-21 submissions fill the three subscale fields; PHQ-9 submissions fill
// TotalScore/SeverityLevel/Analysis. The client never recomputes any of it.
type ScoreResult struct {
	DepressionScore int    `json:"depression_score,omitempty"`
	AnxietyScore    int    `json:"anxiety_score,omitempty"`
	StressScore     int    `json:"stress_score,omitempty"`
	DepressionLevel string `json:"depression_level,omitempty"`
	AnxietyLevel    string `json:"anxiety_level,omitempty"`
	StressLevel     string `json:"stress_level,omitempty"`

	TotalScore    int    `json:"total_score,omitempty"`
	SeverityLevel string `json:"severity_level,omitempty"`
	Analysis      string `json:"analysis,omitempty"`

	AIAnalysis      string   `json:"ai_analysis,omitempty"`
	Recommendations []string `json:"recommendations"`
}

// AssessmentRecord is one entry of the assessment history.
type AssessmentRecord struct {
	AssessmentID string         `json:"assessment_id"`
	Type         string         `json:"assessment_type"`
	Responses    map[string]int `json:"responses"`
	Results      ScoreResult    `json:"results"`
	CompletedAt  time.Time      `json:"completed_at"`
}

// MoodEntry is a persisted daily mood record.
type MoodEntry struct {
	EntryID   string    `json:"entry_id"`
	MoodLevel int       `json:"mood_level"`
	Note      string    `json:"note"`
	Date      time.Time `json:"date"`
}

// SleepEntry is a persisted daily sleep record.
type SleepEntry struct {
	EntryID string    `json:"entry_id"`
	Hours   float64   `json:"hours"`
	Quality int       `json:"quality"`
	Note    string    `json:"note"`
	Date    time.Time `json:"date"`
}

// ReflectionEntry is a persisted daily reflection record.
type ReflectionEntry struct {
	EntryID string    `json:"entry_id"`
	Text    string    `json:"text"`
	Date    time.Time `json:"date"`
}

// Plan is the static mental-health plan content.
type Plan struct {
	DailyHabits       []string          `json:"daily_habits"`
	WeeklyGoals       []string          `json:"weekly_goals"`
	EmergencyContacts map[string]string `json:"emergency_contacts"`
}

// Journey is a habit-building journey offered alongside the plan.
type Journey struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Tasks []string `json:"tasks"`
}

// GamificationSnapshot mirrors the collaborator's gamification state.
type GamificationSnapshot struct {
	XP     int      `json:"xp"`
	Level  int      `json:"level"`
	Badges []string `json:"badges"`
}
