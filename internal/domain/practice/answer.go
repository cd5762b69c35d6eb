package practice

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/quizprep-backend/internal/domain/quiz"
	"github.com/yungbote/quizprep-backend/internal/domain/user"
)

// Answer is immutable once written. Several rows may exist for the same
// (question, session) pair.
type Answer struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
	User               *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	QuestionID         uuid.UUID      `gorm:"type:uuid;not null;column:question_id" json:"question_id"`
	Question           *quiz.Question `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"-"`
	PrepSessionID      uuid.UUID      `gorm:"type:uuid;not null;column:prep_session_id" json:"prep_session_id"`
	PrepSession        *PrepSession   `gorm:"constraint:OnDelete:CASCADE;foreignKey:PrepSessionID;references:ID" json:"-"`
	Content            string         `gorm:"not null;column:content" json:"content"`
	AudioKey           string         `gorm:"column:audio_key" json:"audio_key,omitempty"`
	Feedback           string         `gorm:"column:feedback" json:"feedback"`
	RawEvaluation      string         `gorm:"column:raw_evaluation" json:"-"`
	Scores             datatypes.JSON `gorm:"column:scores" json:"scores"`
	EvaluationDegraded bool           `gorm:"not null;default:false;column:evaluation_degraded" json:"evaluation_degraded"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Answer) TableName() string { return "answer" }

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ScoreMap decodes Scores. Malformed or empty JSON yields an empty map.
func (a *Answer) ScoreMap() map[string]float64 {
	out := map[string]float64{}
	if a == nil || len(a.Scores) == 0 {
		return out
	}
	_ = json.Unmarshal(a.Scores, &out)
	return out
}

// EncodeScores is the inverse of ScoreMap.
func EncodeScores(scores map[string]float64) datatypes.JSON {
	if scores == nil {
		scores = map[string]float64{}
	}
	b, err := json.Marshal(scores)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(b)
}
