package quiz

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quizprep-backend/internal/domain"
	"github.com/yungbote/quizprep-backend/internal/pkg/dbctx"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

type PageScanRepo interface {
	Create(dbc dbctx.Context, scans []*types.PageScan) ([]*types.PageScan, error)
	ListByQuiz(dbc dbctx.Context, quizID uuid.UUID) ([]*types.PageScan, error)
}

type pageScanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPageScanRepo(db *gorm.DB, baseLog *logger.Logger) PageScanRepo {
	return &pageScanRepo{db: db, log: baseLog.With("repo", "PageScanRepo")}
}

func (r *pageScanRepo) Create(dbc dbctx.Context, scans []*types.PageScan) ([]*types.PageScan, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(scans) == 0 {
		return []*types.PageScan{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&scans).Error; err != nil {
		return nil, err
	}
	return scans, nil
}

func (r *pageScanRepo) ListByQuiz(dbc dbctx.Context, quizID uuid.UUID) ([]*types.PageScan, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.PageScan
	if err := transaction.WithContext(dbc.Ctx).
		Where("quiz_id = ?", quizID).
		Order("page_position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
