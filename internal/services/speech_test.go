package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/quizprep-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quizprep-backend/internal/domain"
	pkgerrors "github.com/yungbote/quizprep-backend/internal/pkg/errors"
	"github.com/yungbote/quizprep-backend/internal/platform/gcp"
)

func TestQuestionSSML(t *testing.T) {
	got := QuestionSSML("  Is 3 < 5 & 5 > 3?  ")
	want := "<speak>Is 3 &lt; 5 &amp; 5 &gt; 3?</speak>"
	if got != want {
		t.Fatalf("QuestionSSML: want=%q got=%q", want, got)
	}
}

func TestSpeech_QuestionAudioCaches(t *testing.T) {
	s := newStack(t)
	u, _, qs := seedQuiz(t, s, types.QuizTypeLanguage, "Wie geht's?")
	tts := &fakeTTS{}
	bucket := newMemBucket()
	svc := NewSpeechService(s.log, s.quizzes, s.questions, tts, bucket)

	first, err := svc.QuestionAudio(bg(), u.ID, qs[0].ID)
	if err != nil {
		t.Fatalf("first QuestionAudio: %v", err)
	}
	if tts.lang != "de" {
		t.Fatalf("voice language: want=de got=%s", tts.lang)
	}
	second, err := svc.QuestionAudio(bg(), u.ID, qs[0].ID)
	if err != nil {
		t.Fatalf("second QuestionAudio: %v", err)
	}
	if tts.calls != 1 {
		t.Fatalf("synthesize calls: want=1 got=%d", tts.calls)
	}
	if string(first) != string(second) {
		t.Fatalf("cached audio: want=%q got=%q", first, second)
	}
	if _, err := bucket.DownloadFile(context.Background(), gcp.BucketCategoryAudio, questionAudioKey(qs[0].ID)); err != nil {
		t.Fatalf("cache object: %v", err)
	}
}

func TestSpeech_QuestionAudioAccess(t *testing.T) {
	s := newStack(t)
	_, _, qs := seedQuiz(t, s, types.QuizTypeQuestions, "p1")
	stranger := testutil.SeedUser(t, context.Background(), s.db, "")

	svc := NewSpeechService(s.log, s.quizzes, s.questions, &fakeTTS{}, nil)
	if _, err := svc.QuestionAudio(bg(), stranger.ID, qs[0].ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("stranger: want=ErrNotFound got=%v", err)
	}

	owner, _, own := seedQuiz(t, s, types.QuizTypeQuestions, "p1")
	noTTS := NewSpeechService(s.log, s.quizzes, s.questions, nil, nil)
	if _, err := noTTS.QuestionAudio(bg(), owner.ID, own[0].ID); !errors.Is(err, pkgerrors.ErrUnavailable) {
		t.Fatalf("no tts: want=ErrUnavailable got=%v", err)
	}
}
