package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsAndHashes(t *testing.T) {
	redactionOn()
	if !redactionEnabled {
		t.Skip("redaction disabled by environment")
	}

	out := sanitizeKVs([]interface{}{
		"access_token", "abc",
		"user_id", "7f1c2d",
		"state", "xyz",
		"quiz_id", "q1",
	})
	if len(out) != 8 {
		t.Fatalf("len: want=8 got=%d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("access_token: want=[REDACTED] got=%v", out[1])
	}
	if s, _ := out[3].(string); !strings.HasPrefix(s, "hash:") {
		t.Fatalf("user_id: want hash prefix got=%v", out[3])
	}
	if out[5] != "[REDACTED]" {
		t.Fatalf("state: want=[REDACTED] got=%v", out[5])
	}
	if out[7] != "q1" {
		t.Fatalf("quiz_id: want=q1 got=%v", out[7])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	if len(out) != 3 {
		t.Fatalf("len: want=3 got=%d", len(out))
	}
	if out[2] != "dangling" {
		t.Fatalf("dangling: want=dangling got=%v", out[2])
	}
}

func TestLooksLikeJWT(t *testing.T) {
	if !looksLikeJWT("eyJhbGciOiJIUzI1.eyJzdWIiOiIxMjM0NTY.sig") {
		t.Fatalf("looksLikeJWT: want=true got=false")
	}
	if looksLikeJWT("plain text") {
		t.Fatalf("looksLikeJWT: want=false got=true")
	}
}
