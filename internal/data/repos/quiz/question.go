package quiz

import (
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quizprep-backend/internal/domain"
	"github.com/yungbote/quizprep-backend/internal/pkg/dbctx"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

type QuestionRepo interface {
	Create(dbc dbctx.Context, questions []*types.Question) ([]*types.Question, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Question, error)
	ListByQuiz(dbc dbctx.Context, quizID uuid.UUID) ([]*types.Question, error)
	MaxPosition(dbc dbctx.Context, quizID uuid.UUID) (int, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (r *questionRepo) Create(dbc dbctx.Context, questions []*types.Question) ([]*types.Question, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(questions) == 0 {
		return []*types.Question{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Question, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Question
	if err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// ListByQuiz returns the quiz's questions in presentation order.
func (r *questionRepo) ListByQuiz(dbc dbctx.Context, quizID uuid.UUID) ([]*types.Question, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Question
	if err := transaction.WithContext(dbc.Ctx).
		Where("quiz_id = ?", quizID).
		Order("position ASC, created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MaxPosition returns the highest position in the quiz, or -1 when it has
// no questions.
func (r *questionRepo) MaxPosition(dbc dbctx.Context, quizID uuid.UUID) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var maxPos sql.NullInt64
	row := transaction.WithContext(dbc.Ctx).
		Model(&types.Question{}).
		Where("quiz_id = ?", quizID).
		Select("MAX(position)").
		Row()
	if err := row.Scan(&maxPos); err != nil {
		return 0, err
	}
	if !maxPos.Valid {
		return -1, nil
	}
	return int(maxPos.Int64), nil
}
