package practice

import (
	"errors"
	"iter"
	"strings"
	"testing"
)

func chunksOf(parts ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, p := range parts {
			if !yield(p, nil) {
				return
			}
		}
	}
}

func TestFeedbackFilter_DelimiterSplitAcrossChunks(t *testing.T) {
	var f FeedbackFilter
	var shown strings.Builder
	for _, c := range []string{"Great ", "job#", "#", "#\nCorrectness:7", "\nCompleteness:9"} {
		shown.WriteString(f.Write(c))
	}
	shown.WriteString(f.Flush())
	if shown.String() != "Great job" {
		t.Fatalf("shown: want=%q got=%q", "Great job", shown.String())
	}
	if !f.Done() {
		t.Fatalf("Done: want=true")
	}
}

func TestFeedbackFilter_LoneHashesAreReleased(t *testing.T) {
	var f FeedbackFilter
	var shown strings.Builder
	for _, c := range []string{"C# is ", "fun ##", " really"} {
		shown.WriteString(f.Write(c))
	}
	shown.WriteString(f.Flush())
	if shown.String() != "C# is fun ## really" {
		t.Fatalf("shown: got=%q", shown.String())
	}
}

func TestAccumulate(t *testing.T) {
	var feedback strings.Builder
	full, err := Accumulate(chunksOf("Good", " work##", "##\nCorrectness:8\nCompleteness:6"), func(s string) {
		feedback.WriteString(s)
	})
	if err != nil {
		t.Fatalf("Accumulate: %v", err)
	}
	if feedback.String() != "Good work" {
		t.Fatalf("feedback: want=%q got=%q", "Good work", feedback.String())
	}
	ev := ParseEvaluation(full, []string{LabelCorrectness, LabelCompleteness})
	if ev.Feedback != "Good work" || ev.Scores[LabelCorrectness] != 8 || ev.Scores[LabelCompleteness] != 6 {
		t.Fatalf("parsed: %+v", ev)
	}
}

func TestAccumulate_Error(t *testing.T) {
	boom := errors.New("boom")
	seq := func(yield func(string, error) bool) {
		if !yield("partial", nil) {
			return
		}
		yield("", boom)
	}
	got, err := Accumulate(seq, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("err: want=boom got=%v", err)
	}
	if got != "partial" {
		t.Fatalf("text: want=partial got=%q", got)
	}
}
