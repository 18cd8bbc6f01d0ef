package sim

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is an account record. Badges and Memory live in JSON columns so the
// same schema works on sqlite and postgres.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	Email        string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	FullName     string         `gorm:"size:255" json:"full_name"`
	Age          int            `json:"age"`
	StudentLevel string         `gorm:"size:50" json:"student_level"`
	ConsentGiven bool           `json:"consent_given"`
	XP           int            `gorm:"default:0" json:"xp"`
	Level        int            `gorm:"default:1" json:"level"`
	Badges       datatypes.JSON `json:"badges"`
	Memory       datatypes.JSON `json:"memory"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Assessment is one completed questionnaire with its responses and the
// scored verdict, both stored as JSON.
type Assessment struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"assessment_id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"-"`
	Type        string         `gorm:"size:20;not null" json:"assessment_type"`
	Responses   datatypes.JSON `json:"responses"`
	Results     datatypes.JSON `json:"results"`
	CompletedAt time.Time      `json:"completed_at"`
}

func (a *Assessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// MoodEntry holds at most one mood record per user per calendar date.
type MoodEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"entry_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mood_user_date" json:"-"`
	MoodLevel int       `gorm:"not null" json:"mood_level"`
	Note      string    `gorm:"size:500" json:"note"`
	EntryDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_mood_user_date" json:"date"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (m *MoodEntry) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// SleepEntry holds at most one sleep record per user per calendar date.
type SleepEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"entry_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sleep_user_date" json:"-"`
	Hours     float64   `gorm:"not null" json:"hours"`
	Quality   int       `gorm:"not null" json:"quality"`
	Note      string    `gorm:"size:500" json:"note"`
	EntryDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_sleep_user_date" json:"date"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (s *SleepEntry) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Reflection holds at most one daily reflection per user per calendar date.
type Reflection struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"entry_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reflection_user_date" json:"-"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	EntryDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_reflection_user_date" json:"date"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (r *Reflection) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ChatMessage is one stored turn of a user's support conversation.
type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Sender    string    `gorm:"size:10;not null" json:"sender"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
