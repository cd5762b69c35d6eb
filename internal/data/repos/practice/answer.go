package practice

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quizprep-backend/internal/domain"
	"github.com/yungbote/quizprep-backend/internal/pkg/dbctx"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

type AnswerRepo interface {
	Create(dbc dbctx.Context, a *types.Answer) (*types.Answer, error)
	DistinctQuestionIDs(dbc dbctx.Context, sessionID uuid.UUID) ([]uuid.UUID, error)
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.Answer, error)
}

type answerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return &answerRepo{db: db, log: baseLog.With("repo", "AnswerRepo")}
}

func (r *answerRepo) Create(dbc dbctx.Context, a *types.Answer) (*types.Answer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// DistinctQuestionIDs returns each answered question once, however many
// answers it has in the session.
func (r *answerRepo) DistinctQuestionIDs(dbc dbctx.Context, sessionID uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Answer{}).
		Where("prep_session_id = ?", sessionID).
		Distinct().
		Pluck("question_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListBySession orders answers by question position, then by when they
// were recorded.
func (r *answerRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.Answer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Answer
	if err := transaction.WithContext(dbc.Ctx).
		Joins("JOIN question ON question.id = answer.question_id").
		Where("answer.prep_session_id = ?", sessionID).
		Order("question.position ASC, question.created_at ASC, question.id ASC, answer.created_at ASC, answer.id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
