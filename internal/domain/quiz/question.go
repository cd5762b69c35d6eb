package quiz

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Question struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID          uuid.UUID      `gorm:"type:uuid;index;not null;column:quiz_id" json:"quiz_id"`
	Quiz            *Quiz          `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuizID;references:ID" json:"-"`
	PageScanID      *uuid.UUID     `gorm:"type:uuid;column:page_scan_id" json:"page_scan_id,omitempty"`
	Position        int            `gorm:"not null;column:position" json:"position"`
	Prompt          string         `gorm:"not null;column:prompt" json:"prompt"`
	ReferenceAnswer string         `gorm:"column:reference_answer" json:"reference_answer"`
	Difficulty      string         `gorm:"not null;default:medium;column:difficulty" json:"difficulty"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Question) TableName() string { return "question" }

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// NormalizeDifficulty maps unknown tiers to medium.
func NormalizeDifficulty(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d
	default:
		return DifficultyMedium
	}
}
