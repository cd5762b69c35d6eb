package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/quizprep-backend/internal/domain"
	"github.com/yungbote/quizprep-backend/internal/pkg/dbctx"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

// StatusChange is a guarded status update. It only applies while the row is
// still in From.
type StatusChange struct {
	From    types.SessionStatus
	To      types.SessionStatus
	EndTime *time.Time
	Score   *float64
}

type PrepSessionRepo interface {
	Create(dbc dbctx.Context, s *types.PrepSession) (*types.PrepSession, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PrepSession, error)
	GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.PrepSession, error)
	GetActive(dbc dbctx.Context, userID, quizID uuid.UUID) (*types.PrepSession, error)
	GetLatestActiveByQuizType(dbc dbctx.Context, userID uuid.UUID, quizType string) (*types.PrepSession, error)
	TransitionStatus(dbc dbctx.Context, id uuid.UUID, change StatusChange) (bool, error)
	UpdateAnswerMode(dbc dbctx.Context, id uuid.UUID, mode string) error
}

type prepSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPrepSessionRepo(db *gorm.DB, baseLog *logger.Logger) PrepSessionRepo {
	return &prepSessionRepo{db: db, log: baseLog.With("repo", "PrepSessionRepo")}
}

func (r *prepSessionRepo) Create(dbc dbctx.Context, s *types.PrepSession) (*types.PrepSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *prepSessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PrepSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return r.first(transaction.WithContext(dbc.Ctx).Where("id = ?", id))
}

// GetByIDForUpdate locks the row on postgres. Other dialects have no row
// locks and fall back to a plain read.
func (r *prepSessionRepo) GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.PrepSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx)
	if q.Dialector != nil && q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.first(q.Where("id = ?", id))
}

func (r *prepSessionRepo) GetActive(dbc dbctx.Context, userID, quizID uuid.UUID) (*types.PrepSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return r.first(transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND quiz_id = ? AND status = ?", userID, quizID, types.SessionInProgress))
}

func (r *prepSessionRepo) GetLatestActiveByQuizType(dbc dbctx.Context, userID uuid.UUID, quizType string) (*types.PrepSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return r.first(transaction.WithContext(dbc.Ctx).
		Joins("JOIN quiz ON quiz.id = prep_session.quiz_id AND quiz.deleted_at IS NULL").
		Where("prep_session.user_id = ? AND prep_session.status = ? AND quiz.type = ?", userID, types.SessionInProgress, quizType).
		Order("prep_session.start_time DESC, prep_session.id DESC"))
}

func (r *prepSessionRepo) first(q *gorm.DB) (*types.PrepSession, error) {
	var row types.PrepSession
	if err := q.Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// TransitionStatus reports whether the row was still in change.From and got
// updated.
func (r *prepSessionRepo) TransitionStatus(dbc dbctx.Context, id uuid.UUID, change StatusChange) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	updates := map[string]any{
		"status":     change.To,
		"updated_at": time.Now().UTC(),
	}
	if change.EndTime != nil {
		updates["end_time"] = *change.EndTime
	}
	if change.Score != nil {
		updates["score"] = *change.Score
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.PrepSession{}).
		Where("id = ? AND status = ?", id, change.From).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *prepSessionRepo) UpdateAnswerMode(dbc dbctx.Context, id uuid.UUID, mode string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.PrepSession{}).
		Where("id = ?", id).
		Update("answer_mode", mode).Error
}
