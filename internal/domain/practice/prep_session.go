package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizprep-backend/internal/domain/quiz"
	"github.com/yungbote/quizprep-backend/internal/domain/user"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// Terminal reports whether no further transitions leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

const (
	AnswerModeText  = "text"
	AnswerModeAudio = "audio"
)

func ValidAnswerMode(m string) bool {
	return m == AnswerModeText || m == AnswerModeAudio
}

type PrepSession struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
	User       *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	QuizID     uuid.UUID      `gorm:"type:uuid;index;not null;column:quiz_id" json:"quiz_id"`
	Quiz       *quiz.Quiz     `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuizID;references:ID" json:"-"`
	Status     Status         `gorm:"not null;index;column:status" json:"status"`
	StartTime  time.Time      `gorm:"not null;column:start_time" json:"start_time"`
	EndTime    *time.Time     `gorm:"column:end_time" json:"end_time,omitempty"`
	Score      *float64       `gorm:"column:score" json:"score,omitempty"`
	Language   string         `gorm:"column:language" json:"language,omitempty"`
	AnswerMode string         `gorm:"not null;default:text;column:answer_mode" json:"answer_mode"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PrepSession) TableName() string { return "prep_session" }

func (s *PrepSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
