package practice

import (
	"testing"

	types "github.com/yungbote/quizprep-backend/internal/domain"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to types.SessionStatus
		want     bool
	}{
		{types.SessionInProgress, types.SessionCompleted, true},
		{types.SessionInProgress, types.SessionAbandoned, true},
		{types.SessionInProgress, types.SessionInProgress, false},
		{types.SessionCompleted, types.SessionAbandoned, false},
		{types.SessionCompleted, types.SessionInProgress, false},
		{types.SessionAbandoned, types.SessionCompleted, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("%s->%s: want=%v got=%v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestEvaluate(t *testing.T) {
	done := Progress{Answered: 3, Total: 3, Percentage: 100}
	partial := Progress{Answered: 2, Total: 3}

	if next, changed := Evaluate(types.SessionInProgress, done, false); !changed || next != types.SessionCompleted {
		t.Fatalf("all answered: want completed got=%s changed=%v", next, changed)
	}
	if _, changed := Evaluate(types.SessionInProgress, done, true); changed {
		t.Fatalf("current question present: want no change")
	}
	if _, changed := Evaluate(types.SessionInProgress, partial, false); changed {
		t.Fatalf("partial progress: want no change")
	}
	if _, changed := Evaluate(types.SessionInProgress, Progress{}, false); changed {
		t.Fatalf("empty quiz: want no change")
	}
	if next, changed := Evaluate(types.SessionAbandoned, done, false); changed || next != types.SessionAbandoned {
		t.Fatalf("abandoned: want unchanged got=%s changed=%v", next, changed)
	}
}

func TestFlowFor(t *testing.T) {
	if f := FlowFor("LANGUAGE"); f.Name != FlowLanguage || len(f.Labels) != 4 {
		t.Fatalf("LANGUAGE: got=%+v", f)
	}
	if f := FlowFor("language"); f.Name != FlowLanguage {
		t.Fatalf("lowercase language: got=%s", f.Name)
	}
	for _, qt := range []string{"QUESTIONS", "", "SOMETHING_ELSE"} {
		if f := FlowFor(qt); f.Name != FlowStandard {
			t.Fatalf("%q: want standard got=%s", qt, f.Name)
		}
	}
}

func TestFlow_SessionLanguage(t *testing.T) {
	lang := FlowFor(types.QuizTypeLanguage)
	if got := lang.SessionLanguage("de", "en", "en"); got != "de" {
		t.Fatalf("language flow: want=de got=%s", got)
	}
	std := FlowFor(types.QuizTypeQuestions)
	if got := std.SessionLanguage("", "fr", "en"); got != "fr" {
		t.Fatalf("standard requested: want=fr got=%s", got)
	}
	if got := std.SessionLanguage("", "", "en"); got != "en" {
		t.Fatalf("standard default: want=en got=%s", got)
	}
}
