package observability

import (
	"context"
	"testing"

	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

func TestParseRatio(t *testing.T) {
	cases := map[string]float64{
		"":     defaultSampleRatio,
		"abc":  defaultSampleRatio,
		"0.5":  0.5,
		"-1":   0,
		"3":    1,
		" 1 ":  1,
		"0.00": 0,
	}
	for in, want := range cases {
		if got := parseRatio(in); got != want {
			t.Fatalf("parseRatio(%q): want=%v got=%v", in, want, got)
		}
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" api-key = abc , broken, =x, tenant=quiz ")
	if len(got) != 2 || got["api-key"] != "abc" || got["tenant"] != "quiz" {
		t.Fatalf("parseHeaders: got=%v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("parseHeaders empty: want=nil")
	}
}

func TestInitOTelDisabled(t *testing.T) {
	shutdown := InitOTel(context.Background(), logger.Nop(), OtelConfig{Enabled: false})
	if shutdown == nil {
		t.Fatalf("shutdown: want non-nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
