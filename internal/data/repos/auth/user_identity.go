package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/quizprep-backend/internal/domain"
	"github.com/yungbote/quizprep-backend/internal/pkg/dbctx"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

type UserIdentityRepo interface {
	Create(dbc dbctx.Context, ids []*types.UserIdentity) ([]*types.UserIdentity, error)
	Upsert(dbc dbctx.Context, id *types.UserIdentity) (*types.UserIdentity, error)
	GetByProviderSub(dbc dbctx.Context, provider, sub string) (*types.UserIdentity, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserIdentity, error)
}

type userIdentityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserIdentityRepo(db *gorm.DB, baseLog *logger.Logger) UserIdentityRepo {
	return &userIdentityRepo{
		db:  db,
		log: baseLog.With("repo", "UserIdentityRepo"),
	}
}

func (r *userIdentityRepo) Create(dbc dbctx.Context, ids []*types.UserIdentity) ([]*types.UserIdentity, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if err := txx.WithContext(dbc.Ctx).Create(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Upsert inserts the identity or refreshes email fields on the live row with
// the same (provider, provider_sub), then returns the stored row.
func (r *userIdentityRepo) Upsert(dbc dbctx.Context, id *types.UserIdentity) (*types.UserIdentity, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if id == nil {
		return nil, nil
	}
	now := time.Now().UTC()
	id.UpdatedAt = now
	if id.CreatedAt.IsZero() {
		id.CreatedAt = now
	}
	err := txx.WithContext(dbc.Ctx).Clauses(clause.OnConflict{
		Columns:     []clause.Column{{Name: "provider"}, {Name: "provider_sub"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "deleted_at IS NULL"}}},
		DoUpdates:   clause.AssignmentColumns([]string{"email", "email_verified", "updated_at"}),
	}).Create(id).Error
	if err != nil {
		return nil, err
	}
	return r.GetByProviderSub(dbc, id.Provider, id.ProviderSub)
}

func (r *userIdentityRepo) GetByProviderSub(dbc dbctx.Context, provider, sub string) (*types.UserIdentity, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var row types.UserIdentity
	if err := txx.WithContext(dbc.Ctx).
		Where("provider = ? AND provider_sub = ?", provider, sub).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *userIdentityRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserIdentity, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.UserIdentity
	if len(userIDs) == 0 {
		return out, nil
	}
	if err := txx.WithContext(dbc.Ctx).Where("user_id IN ?", userIDs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
