package services

import (
	"github.com/google/uuid"

	"github.com/yungbote/quizprep-backend/internal/data/repos"
	types "github.com/yungbote/quizprep-backend/internal/domain"
	"github.com/yungbote/quizprep-backend/internal/pkg/dbctx"
	"github.com/yungbote/quizprep-backend/internal/platform/language"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

type UserService interface {
	GetMe(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	SetPreferredLanguage(dbc dbctx.Context, userID uuid.UUID, lang string) (*types.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(baseLog *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{log: baseLog.With("service", "UserService"), userRepo: userRepo}
}

func (us *userService) GetMe(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, errUnauthorized(nil)
	}
	u, err := us.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errNotFound("user")
	}
	return u, nil
}

func (us *userService) SetPreferredLanguage(dbc dbctx.Context, userID uuid.UUID, lang string) (*types.User, error) {
	code, ok := language.Normalize(lang)
	if !ok {
		return nil, errInvalid("unsupported_language", "language "+lang+" is not supported")
	}
	u, err := us.GetMe(dbc, userID)
	if err != nil {
		return nil, err
	}
	if u.PreferredLanguage == code {
		return u, nil
	}
	if err := us.userRepo.UpdatePreferredLanguage(dbc, userID, code); err != nil {
		return nil, err
	}
	u.PreferredLanguage = code
	us.log.Debug("Preferred language updated", "user_id", userID, "language", code)
	return u, nil
}
