package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizprep-backend/internal/domain/user"
)

// UserIdentity links an external identity provider subject to a User.
type UserIdentity struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	User          *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Provider      string         `gorm:"not null;column:provider" json:"provider"`
	ProviderSub   string         `gorm:"not null;column:provider_sub" json:"provider_sub"`
	Email         string         `gorm:"column:email" json:"email"`
	EmailVerified bool           `gorm:"not null;default:false;column:email_verified" json:"email_verified"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserIdentity) TableName() string { return "user_identity" }

func (ui *UserIdentity) BeforeCreate(tx *gorm.DB) error {
	if ui.ID == uuid.Nil {
		ui.ID = uuid.New()
	}
	return nil
}
