package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizprep-backend/internal/data/db"
	"github.com/yungbote/quizprep-backend/internal/data/repos"
	types "github.com/yungbote/quizprep-backend/internal/domain"
	"github.com/yungbote/quizprep-backend/internal/pkg/dbctx"
	"github.com/yungbote/quizprep-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizprep-backend/internal/platform/language"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
	"github.com/yungbote/quizprep-backend/internal/platform/oauth"
)

// IdentityProvider is the external login flow.
type IdentityProvider interface {
	LoginURL(state, nonce string) string
	Exchange(ctx context.Context, code string) (oauth.Identity, error)
}

// StateStore keeps login state between redirect and callback. Consume must
// succeed at most once per state.
type StateStore interface {
	Save(ctx context.Context, state, nonce string) error
	Consume(ctx context.Context, state string) (string, error)
}

type JWTClaims struct {
	jwt.RegisteredClaims
}

type LoginResult struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int64       `json:"expires_in"`
	User        *types.User `json:"user"`
}

type AuthService interface {
	LoginURL(ctx context.Context) (string, error)
	Callback(ctx context.Context, state, code string) (*LoginResult, error)
	IssueToken(user *types.User) (string, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	identityRepo repos.UserIdentityRepo
	provider     IdentityProvider
	states       StateStore
	jwtSecretKey string
	accessTTL    time.Duration
	now          func() time.Time
}

// NewAuthService wires login and token handling. provider and states may be
// nil; login endpoints then answer unavailable while token checks still work.
func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	identityRepo repos.UserIdentityRepo,
	provider IdentityProvider,
	states StateStore,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &authService{
		db:           db,
		log:          baseLog.With("service", "AuthService"),
		userRepo:     userRepo,
		identityRepo: identityRepo,
		provider:     provider,
		states:       states,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		now:          time.Now,
	}
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (as *authService) LoginURL(ctx context.Context) (string, error) {
	if as.provider == nil || as.states == nil {
		return "", errUnavailable("identity_provider")
	}
	state, err := randomToken()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken()
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	if err := as.states.Save(ctx, state, nonce); err != nil {
		return "", err
	}
	return as.provider.LoginURL(state, nonce), nil
}

func (as *authService) Callback(ctx context.Context, state, code string) (*LoginResult, error) {
	if as.provider == nil || as.states == nil {
		return nil, errUnavailable("identity_provider")
	}
	if strings.TrimSpace(state) == "" || strings.TrimSpace(code) == "" {
		return nil, errUnauthorized(errors.New("missing state or code"))
	}
	nonce, err := as.states.Consume(ctx, state)
	if err != nil {
		as.log.Warn("OAuth state rejected", "error", err)
		return nil, errUnauthorized(errors.New("unknown or expired state"))
	}
	ident, err := as.provider.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, oauth.ErrExchange) {
			return nil, errUnauthorized(err)
		}
		return nil, err
	}
	if ident.Nonce != nonce {
		return nil, errUnauthorized(errors.New("nonce mismatch"))
	}
	if ident.Subject == "" {
		return nil, errUnauthorized(errors.New("identity has no subject"))
	}

	user, err := as.linkIdentity(dbctx.Context{Ctx: ctx}, ident)
	if err != nil {
		return nil, err
	}
	token, err := as.IssueToken(user)
	if err != nil {
		return nil, err
	}
	as.log.Info("User logged in", "user_id", user.ID, "provider", ident.Provider)
	return &LoginResult{AccessToken: token, ExpiresIn: int64(as.accessTTL.Seconds()), User: user}, nil
}

// linkIdentity resolves the user for an external identity, creating the user
// on first login. A verified email links to an existing account.
func (as *authService) linkIdentity(dbc dbctx.Context, ident oauth.Identity) (*types.User, error) {
	var out *types.User
	err := db.Within(as.db, dbc, func(inner dbctx.Context) error {
		existing, err := as.identityRepo.GetByProviderSub(inner, ident.Provider, ident.Subject)
		if err != nil {
			return err
		}
		var user *types.User
		if existing != nil {
			if user, err = as.userRepo.GetByID(inner, existing.UserID); err != nil {
				return err
			}
		}
		if user == nil && ident.Email != "" && ident.EmailVerified {
			if user, err = as.userRepo.GetByEmail(inner, ident.Email); err != nil {
				return err
			}
		}
		if user == nil {
			email := ident.Email
			if email == "" {
				email = fmt.Sprintf("%s@%s.invalid", ident.Subject, ident.Provider)
			}
			lang, ok := language.Normalize(ident.Locale)
			if !ok {
				lang = language.Default
			}
			created, err := as.userRepo.Create(inner, []*types.User{{
				Email:             email,
				DisplayName:       ident.Name,
				FirstName:         ident.GivenName,
				LastName:          ident.FamilyName,
				AvatarURL:         ident.Picture,
				PreferredLanguage: lang,
			}})
			if err != nil {
				return err
			}
			user = created[0]
		} else if ident.Picture != "" && user.AvatarURL != ident.Picture {
			name := user.DisplayName
			if name == "" {
				name = ident.Name
			}
			if err := as.userRepo.UpdateProfile(inner, user.ID, name, ident.Picture); err != nil {
				return err
			}
			user.DisplayName, user.AvatarURL = name, ident.Picture
		}

		if _, err := as.identityRepo.Upsert(inner, &types.UserIdentity{
			UserID:        user.ID,
			Provider:      ident.Provider,
			ProviderSub:   ident.Subject,
			Email:         ident.Email,
			EmailVerified: ident.EmailVerified,
		}); err != nil {
			return err
		}
		out = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (as *authService) IssueToken(user *types.User) (string, error) {
	now := as.now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, errUnauthorized(errors.New("missing token"))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, errUnauthorized(fmt.Errorf("parse token: %w", err))
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, errUnauthorized(errors.New("invalid or expired token"))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, errUnauthorized(fmt.Errorf("invalid user id in token: %w", err))
	}
	sessionID, _ := uuid.Parse(claims.ID)
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		SessionID:   sessionID,
	}), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
