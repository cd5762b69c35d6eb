package quiz

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PageScan is one uploaded page image a quiz's questions were generated from.
type PageScan struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID       uuid.UUID      `gorm:"type:uuid;index;not null;column:quiz_id" json:"quiz_id"`
	Quiz         *Quiz          `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuizID;references:ID" json:"-"`
	PagePosition int            `gorm:"not null;column:page_position" json:"page_position"`
	StorageKey   string         `gorm:"not null;column:storage_key" json:"storage_key"`
	MimeType     string         `gorm:"column:mime_type" json:"mime_type"`
	OCRText      string         `gorm:"column:ocr_text" json:"ocr_text,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PageScan) TableName() string { return "page_scan" }

func (p *PageScan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
