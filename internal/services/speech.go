package services

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/quizprep-backend/internal/data/repos"
	"github.com/yungbote/quizprep-backend/internal/pkg/dbctx"
	"github.com/yungbote/quizprep-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizprep-backend/internal/platform/gcp"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

// SpeechService reads questions aloud.
type SpeechService interface {
	// QuestionAudio returns MP3 bytes for the question prompt, synthesizing
	// and caching them on first use.
	QuestionAudio(dbc dbctx.Context, callerID, questionID uuid.UUID) ([]byte, error)
}

type speechService struct {
	log          *logger.Logger
	quizRepo     repos.QuizRepo
	questionRepo repos.QuestionRepo
	tts          gcp.TextToSpeech
	bucket       gcp.BucketService
}

func NewSpeechService(baseLog *logger.Logger, quizRepo repos.QuizRepo, questionRepo repos.QuestionRepo, tts gcp.TextToSpeech, bucket gcp.BucketService) SpeechService {
	return &speechService{
		log:          baseLog.With("service", "SpeechService"),
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		tts:          tts,
		bucket:       bucket,
	}
}

func questionAudioKey(questionID uuid.UUID) string {
	return fmt.Sprintf("tts/questions/%s.mp3", questionID)
}

func (s *speechService) QuestionAudio(dbc dbctx.Context, callerID, questionID uuid.UUID) ([]byte, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	q, err := s.questionRepo.GetByID(dbc, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, errNotFound("question")
	}
	quiz, err := s.quizRepo.GetByID(dbc, q.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil || quiz.OwnerUserID != callerID {
		return nil, errNotFound("question")
	}

	key := questionAudioKey(questionID)
	if s.bucket != nil {
		cached, err := s.readCached(dbc, key)
		if err != nil {
			s.log.Warn("Read cached question audio failed", "key", key, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	if s.tts == nil {
		return nil, errUnavailable("text_to_speech")
	}
	audio, err := s.tts.Synthesize(dbc.Ctx, QuestionSSML(q.Prompt), quiz.Language)
	if err != nil {
		return nil, fmt.Errorf("synthesize question: %w", err)
	}
	if s.bucket != nil {
		if err := s.bucket.UploadFile(dbc, gcp.BucketCategoryAudio, key, bytes.NewReader(audio), "audio/mpeg"); err != nil {
			s.log.Warn("Cache question audio failed", "key", key, "error", err)
		}
	}
	return audio, nil
}

// readCached returns nil, nil on a cache miss.
func (s *speechService) readCached(dbc dbctx.Context, key string) ([]byte, error) {
	rc, err := s.bucket.DownloadFile(dbc.Ctx, gcp.BucketCategoryAudio, key)
	if err != nil {
		if errors.Is(err, gcp.ErrObjectNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// QuestionSSML wraps a prompt in an escaped speak element.
func QuestionSSML(prompt string) string {
	var b strings.Builder
	b.WriteString("<speak>")
	_ = xml.EscapeText(&b, []byte(strings.TrimSpace(prompt)))
	b.WriteString("</speak>")
	return b.String()
}
