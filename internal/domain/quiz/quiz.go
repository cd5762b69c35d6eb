package quiz

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizprep-backend/internal/domain/user"
)

const (
	TypeQuestions = "QUESTIONS"
	TypeLanguage  = "LANGUAGE"
)

// ValidType reports whether t is a known quiz type tag.
func ValidType(t string) bool {
	return t == TypeQuestions || t == TypeLanguage
}

type Quiz struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerUserID uuid.UUID      `gorm:"type:uuid;index;not null;column:owner_user_id" json:"owner_user_id"`
	Owner       *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerUserID;references:ID" json:"-"`
	Title       string         `gorm:"not null;column:title" json:"title"`
	Type        string         `gorm:"not null;default:QUESTIONS;column:type" json:"type"`
	Language    string         `gorm:"column:language" json:"language,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Quiz) TableName() string { return "quiz" }

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
