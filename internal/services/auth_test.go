package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/quizprep-backend/internal/domain"
	pkgerrors "github.com/yungbote/quizprep-backend/internal/pkg/errors"
	"github.com/yungbote/quizprep-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizprep-backend/internal/platform/oauth"
)

const testSecret = "test-secret"

func newAuth(s *stack, p IdentityProvider, st StateStore) AuthService {
	return NewAuthService(s.db, s.log, s.users, s.idents, p, st, testSecret, time.Hour)
}

func googleIdentity() oauth.Identity {
	return oauth.Identity{
		Provider:      oauth.ProviderGoogle,
		Subject:       "sub-123",
		Email:         "ada@example.com",
		EmailVerified: true,
		Name:          "Ada L",
		GivenName:     "Ada",
		FamilyName:    "L",
		Picture:       "https://img.test/ada.png",
		Locale:        "de-DE",
	}
}

func login(t *testing.T, as AuthService, p *fakeProvider) *LoginResult {
	t.Helper()
	ctx := context.Background()
	url, err := as.LoginURL(ctx)
	if err != nil {
		t.Fatalf("LoginURL: %v", err)
	}
	if !strings.Contains(url, "state="+p.state) {
		t.Fatalf("LoginURL: want state in url got=%s", url)
	}
	res, err := as.Callback(ctx, p.state, "code")
	if err != nil {
		t.Fatalf("Callback: %v", err)
	}
	return res
}

func TestAuth_LoginCreatesAndLinksUser(t *testing.T) {
	s := newStack(t)
	p := &fakeProvider{ident: googleIdentity()}
	as := newAuth(s, p, &memStates{})

	first := login(t, as, p)
	if first.User == nil || first.User.Email != "ada@example.com" {
		t.Fatalf("user: want ada@example.com got=%+v", first.User)
	}
	if first.User.PreferredLanguage != "de" {
		t.Fatalf("preferred language: want=de got=%s", first.User.PreferredLanguage)
	}
	if first.ExpiresIn != 3600 || first.AccessToken == "" {
		t.Fatalf("token: want 3600s non-empty got=%d %q", first.ExpiresIn, first.AccessToken)
	}

	second := login(t, as, p)
	if second.User.ID != first.User.ID {
		t.Fatalf("repeat login: want=%s got=%s", first.User.ID, second.User.ID)
	}
	ids, err := s.idents.GetByUserIDs(bg(), []uuid.UUID{first.User.ID})
	if err != nil || len(ids) != 1 {
		t.Fatalf("identities: want=1 got=%d err=%v", len(ids), err)
	}
}

func TestAuth_VerifiedEmailLinksExistingUser(t *testing.T) {
	s := newStack(t)
	existing, err := s.users.Create(bg(), []*types.User{{Email: "ada@example.com", DisplayName: "Ada"}})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	p := &fakeProvider{ident: googleIdentity()}
	res := login(t, newAuth(s, p, &memStates{}), p)
	if res.User.ID != existing[0].ID {
		t.Fatalf("linked user: want=%s got=%s", existing[0].ID, res.User.ID)
	}
	if res.User.AvatarURL != "https://img.test/ada.png" {
		t.Fatalf("avatar: want refreshed got=%s", res.User.AvatarURL)
	}
}

func TestAuth_StateIsSingleUse(t *testing.T) {
	s := newStack(t)
	p := &fakeProvider{ident: googleIdentity()}
	as := newAuth(s, p, &memStates{})
	login(t, as, p)

	_, err := as.Callback(context.Background(), p.state, "code")
	if !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("replayed state: want=ErrUnauthorized got=%v", err)
	}
	_, err = as.Callback(context.Background(), "never-issued", "code")
	if !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("unknown state: want=ErrUnauthorized got=%v", err)
	}
}

func TestAuth_NonceMismatchRejected(t *testing.T) {
	s := newStack(t)
	st := &memStates{}
	p := &fakeProvider{ident: googleIdentity()}
	as := newAuth(s, p, st)
	if _, err := as.LoginURL(context.Background()); err != nil {
		t.Fatalf("LoginURL: %v", err)
	}
	state := p.state
	p.nonce = "forged"
	if _, err := as.Callback(context.Background(), state, "code"); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("nonce mismatch: want=ErrUnauthorized got=%v", err)
	}
}

func TestAuth_TokenRoundTrip(t *testing.T) {
	s := newStack(t)
	p := &fakeProvider{ident: googleIdentity()}
	as := newAuth(s, p, &memStates{})
	res := login(t, as, p)

	ctx, err := as.SetContextFromToken(context.Background(), res.AccessToken)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID != res.User.ID {
		t.Fatalf("request data user: want=%s got=%+v", res.User.ID, rd)
	}
	if rd.SessionID == uuid.Nil || rd.TokenString != res.AccessToken {
		t.Fatalf("request data token: got=%+v", rd)
	}

	other := NewAuthService(s.db, s.log, s.users, s.idents, nil, nil, "other-secret", time.Hour)
	if _, err := other.SetContextFromToken(context.Background(), res.AccessToken); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("wrong secret: want=ErrUnauthorized got=%v", err)
	}
	if _, err := as.SetContextFromToken(context.Background(), ""); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("empty token: want=ErrUnauthorized got=%v", err)
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	s := newStack(t)
	as := newAuth(s, nil, nil).(*authService)
	as.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := as.IssueToken(&types.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	as.now = time.Now
	if _, err := as.SetContextFromToken(context.Background(), token); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("expired token: want=ErrUnauthorized got=%v", err)
	}
}

func TestAuth_NoProviderIsUnavailable(t *testing.T) {
	s := newStack(t)
	as := newAuth(s, nil, nil)
	if _, err := as.LoginURL(context.Background()); !errors.Is(err, pkgerrors.ErrUnavailable) {
		t.Fatalf("LoginURL: want=ErrUnavailable got=%v", err)
	}
	if _, err := as.Callback(context.Background(), "s", "c"); !errors.Is(err, pkgerrors.ErrUnavailable) {
		t.Fatalf("Callback: want=ErrUnavailable got=%v", err)
	}
}

func TestUser_GetMeAndLanguage(t *testing.T) {
	s := newStack(t)
	created, err := s.users.Create(bg(), []*types.User{{Email: "u@example.com"}})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	us := NewUserService(s.log, s.users)

	me, err := us.GetMe(bg(), created[0].ID)
	if err != nil || me.Email != "u@example.com" {
		t.Fatalf("GetMe: got=%+v err=%v", me, err)
	}
	if _, err := us.GetMe(bg(), uuid.New()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("GetMe missing: want=ErrNotFound got=%v", err)
	}
	updated, err := us.SetPreferredLanguage(bg(), created[0].ID, "fr-CA")
	if err != nil || updated.PreferredLanguage != "fr" {
		t.Fatalf("SetPreferredLanguage: want=fr got=%+v err=%v", updated, err)
	}
	if _, err := us.SetPreferredLanguage(bg(), created[0].ID, "tlh"); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("unsupported language: want=ErrInvalidArgument got=%v", err)
	}
}
