package oauth

import (
	"strings"
	"testing"
)

func TestGoogleConfigValidate(t *testing.T) {
	err := GoogleConfig{ClientID: "id"}.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "GOOGLE_CLIENT_SECRET") || !strings.Contains(err.Error(), "GOOGLE_REDIRECT_URL") {
		t.Fatalf("error should name missing vars: got=%v", err)
	}
	if err := (GoogleConfig{ClientID: "id", ClientSecret: "s", RedirectURL: "http://x/cb"}).Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestGoogleConfigFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", " id ")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback")
	cfg := GoogleConfigFromEnv()
	if cfg.ClientID != "id" {
		t.Fatalf("ClientID: want=%q got=%q", "id", cfg.ClientID)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
