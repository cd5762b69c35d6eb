package envutil

import (
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("ENVUTIL_INT", "42")
	t.Setenv("ENVUTIL_BAD_INT", "forty")
	t.Setenv("ENVUTIL_BOOL", "on")
	t.Setenv("ENVUTIL_SECONDS", "90")
	t.Setenv("ENVUTIL_LIST", " a, ,b ")

	if got := Int("ENVUTIL_INT", 1); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
	if got := Int("ENVUTIL_BAD_INT", 7); got != 7 {
		t.Fatalf("Int fallback: want=7 got=%d", got)
	}
	if got := Bool("ENVUTIL_BOOL", false); !got {
		t.Fatalf("Bool: want=true got=false")
	}
	if got := Bool("ENVUTIL_MISSING", true); !got {
		t.Fatalf("Bool default: want=true got=false")
	}
	if got := Seconds("ENVUTIL_SECONDS", time.Second); got != 90*time.Second {
		t.Fatalf("Seconds: want=90s got=%s", got)
	}
	if got := String("ENVUTIL_MISSING", "def"); got != "def" {
		t.Fatalf("String: want=def got=%s", got)
	}
	got := List("ENVUTIL_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: want=[a b] got=%v", got)
	}
}
