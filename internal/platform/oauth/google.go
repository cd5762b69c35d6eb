package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/yungbote/quizprep-backend/internal/platform/envutil"
)

const (
	ProviderGoogle = "google"

	googleIssuer = "https://accounts.google.com"
)

// ErrExchange marks a rejected authorization code or id token.
var ErrExchange = errors.New("oauth exchange failed")

// Identity is the verified subject returned by an identity provider.
type Identity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	GivenName     string
	FamilyName    string
	Picture       string
	Locale        string
	Nonce         string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func GoogleConfigFromEnv() GoogleConfig {
	return GoogleConfig{
		ClientID:     strings.TrimSpace(envutil.String("GOOGLE_CLIENT_ID", "")),
		ClientSecret: strings.TrimSpace(envutil.String("GOOGLE_CLIENT_SECRET", "")),
		RedirectURL:  strings.TrimSpace(envutil.String("GOOGLE_REDIRECT_URL", "")),
	}
}

func (c GoogleConfig) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if c.RedirectURL == "" {
		missing = append(missing, "GOOGLE_REDIRECT_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

type googleClaims struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	Verified   bool   `json:"email_verified"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
	Locale     string `json:"locale"`
}

// Google is the OpenID Connect login flow against accounts.google.com.
type Google struct {
	cfg      *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

func NewGoogle(ctx context.Context, cfg GoogleConfig) (*Google, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("new oidc provider: %w", err)
	}
	return &Google{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			Endpoint:     endpoints.Google,
		},
		verifier: p.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

func (g *Google) LoginURL(state, nonce string) string {
	return g.cfg.AuthCodeURL(state, oidc.Nonce(nonce))
}

func (g *Google) Exchange(ctx context.Context, code string) (Identity, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return Identity{}, fmt.Errorf("%w: %v", ErrExchange, err)
		}
		return Identity{}, fmt.Errorf("exchange code: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return Identity{}, fmt.Errorf("%w: token response has no id_token", ErrExchange)
	}
	idTok, err := g.verifier.Verify(ctx, raw)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: verify id token: %v", ErrExchange, err)
	}
	var claims googleClaims
	if err := idTok.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("read claims: %w", err)
	}
	return Identity{
		Provider:      ProviderGoogle,
		Subject:       claims.Sub,
		Email:         strings.ToLower(strings.TrimSpace(claims.Email)),
		EmailVerified: claims.Verified,
		Name:          claims.Name,
		GivenName:     claims.GivenName,
		FamilyName:    claims.FamilyName,
		Picture:       claims.Picture,
		Locale:        claims.Locale,
		Nonce:         idTok.Nonce,
	}, nil
}
