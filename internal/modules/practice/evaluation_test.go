package practice

import (
	"testing"
)

var standardLabels = []string{LabelCorrectness, LabelCompleteness}

func TestParseEvaluation_Standard(t *testing.T) {
	ev := ParseEvaluation("Great job!\n####\nCorrectness:7\nCompleteness:9", standardLabels)
	if ev.Feedback != "Great job!" {
		t.Fatalf("feedback: want=%q got=%q", "Great job!", ev.Feedback)
	}
	if ev.Scores[LabelCorrectness] != 7 || ev.Scores[LabelCompleteness] != 9 {
		t.Fatalf("scores: got=%v", ev.Scores)
	}
	if ev.Degraded {
		t.Fatalf("degraded: want=false")
	}
}

func TestParseEvaluation_TypoLabelDefaultsToZero(t *testing.T) {
	ev := ParseEvaluation("Nice.\n####\nCorectness:7\nCompleteness:9", standardLabels)
	if ev.Scores[LabelCorrectness] != 0 {
		t.Fatalf("correctness: want=0 got=%v", ev.Scores[LabelCorrectness])
	}
	if ev.Scores[LabelCompleteness] != 9 {
		t.Fatalf("completeness: want=9 got=%v", ev.Scores[LabelCompleteness])
	}
	if len(ev.Unknown) != 1 || ev.Unknown[0] != "corectness" {
		t.Fatalf("unknown: got=%v", ev.Unknown)
	}
	if !ev.Degraded {
		t.Fatalf("degraded: want=true")
	}
}

func TestParseEvaluation_NoDelimiter(t *testing.T) {
	raw := "The model forgot the format. Correctness:7"
	ev := ParseEvaluation(raw, standardLabels)
	if ev.Feedback != "" {
		t.Fatalf("feedback: want empty got=%q", ev.Feedback)
	}
	for _, l := range standardLabels {
		if v, ok := ev.Scores[l]; !ok || v != 0 {
			t.Fatalf("%s: want present and 0 got=%v ok=%v", l, v, ok)
		}
	}
	if !ev.Degraded || ev.Raw != raw {
		t.Fatalf("want degraded with raw preserved, got=%+v", ev)
	}
}

func TestParseEvaluation_FormattingVariants(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want map[string]float64
	}{
		{"three hashes inline", "ok ### Correctness: 6, Completeness: 5", map[string]float64{LabelCorrectness: 6, LabelCompleteness: 5}},
		{"markdown bold", "ok\n####\n**Correctness:** 8\n**Completeness:** 4", map[string]float64{LabelCorrectness: 8, LabelCompleteness: 4}},
		{"out of ten", "ok\n####\nCorrectness: 7/10; Completeness: 10/10", map[string]float64{LabelCorrectness: 7, LabelCompleteness: 10}},
		{"decimal", "ok\n####\ncorrectness:7.5\nCOMPLETENESS:3", map[string]float64{LabelCorrectness: 7.5, LabelCompleteness: 3}},
		{"clamped", "ok\n####\nCorrectness:12\nCompleteness:-1", map[string]float64{LabelCorrectness: 10, LabelCompleteness: 0}},
	}
	for _, tc := range cases {
		ev := ParseEvaluation(tc.raw, standardLabels)
		for l, want := range tc.want {
			if got := ev.Scores[l]; got != want {
				t.Fatalf("%s: %s want=%v got=%v", tc.name, l, want, got)
			}
		}
		if ev.Feedback != "ok" {
			t.Fatalf("%s: feedback want=ok got=%q", tc.name, ev.Feedback)
		}
	}
}

func TestParseEvaluation_UnparseableValue(t *testing.T) {
	ev := ParseEvaluation("fine\n####\nCorrectness: seven\nCompleteness: 4", standardLabels)
	if ev.Scores[LabelCorrectness] != 0 || ev.Scores[LabelCompleteness] != 4 {
		t.Fatalf("scores: got=%v", ev.Scores)
	}
	if !ev.Degraded {
		t.Fatalf("degraded: want=true")
	}

	for _, bad := range []string{"NaN", "inf", "-Inf", "Infinity"} {
		ev := ParseEvaluation("fine\n####\nCorrectness: "+bad+"\nCompleteness: 9", standardLabels)
		if ev.Scores[LabelCorrectness] != 0 || ev.Scores[LabelCompleteness] != 9 {
			t.Fatalf("%s scores: got=%v", bad, ev.Scores)
		}
		if !ev.Degraded {
			t.Fatalf("%s degraded: want=true", bad)
		}
	}
}

func TestParseEvaluation_LanguageFlow(t *testing.T) {
	labels := FlowFor("LANGUAGE").Labels
	raw := "Sehr gut!\n####\nPronunciation: 7\nGrammar: 6\nContent relevance: 8\nFluency: 5"
	ev := ParseEvaluation(raw, labels)
	want := map[string]float64{LabelPronunciation: 7, LabelGrammar: 6, LabelContent: 8, LabelFluency: 5}
	for l, w := range want {
		if ev.Scores[l] != w {
			t.Fatalf("%s: want=%v got=%v", l, w, ev.Scores[l])
		}
	}
	if ev.Degraded {
		t.Fatalf("degraded: want=false")
	}
}
