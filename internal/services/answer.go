package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizprep-backend/internal/data/db"
	"github.com/yungbote/quizprep-backend/internal/data/repos"
	types "github.com/yungbote/quizprep-backend/internal/domain"
	domainpractice "github.com/yungbote/quizprep-backend/internal/domain/practice"
	"github.com/yungbote/quizprep-backend/internal/modules/practice"
	"github.com/yungbote/quizprep-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/quizprep-backend/internal/pkg/errors"
	"github.com/yungbote/quizprep-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizprep-backend/internal/platform/gcp"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

type RecordInput struct {
	UserID     uuid.UUID
	SessionID  uuid.UUID
	QuestionID uuid.UUID
	Content    string
	AudioKey   string
	Evaluation practice.Evaluation
}

type AudioUpload struct {
	Data     []byte
	MimeType string
	Filename string
}

type AnswerService interface {
	// Record persists one answer. It never changes session status.
	Record(dbc dbctx.Context, in RecordInput) (*types.Answer, error)
	SubmitText(dbc dbctx.Context, callerID, sessionID, questionID uuid.UUID, text string) (*types.Answer, error)
	// SubmitAudio transcribes and evaluates a recording. onFeedback receives
	// feedback text while the evaluation streams.
	SubmitAudio(dbc dbctx.Context, callerID, sessionID, questionID uuid.UUID, audio AudioUpload, onFeedback func(string)) (*types.Answer, error)
	// CheckAudio runs the checks SubmitAudio applies before any upload, so
	// callers can reject a submission before streaming starts.
	CheckAudio(dbc dbctx.Context, callerID, sessionID, questionID uuid.UUID) error
}

type answerService struct {
	db           *gorm.DB
	log          *logger.Logger
	sessionRepo  repos.PrepSessionRepo
	quizRepo     repos.QuizRepo
	questionRepo repos.QuestionRepo
	answerRepo   repos.AnswerRepo
	evaluator    Evaluator
	speech       gcp.Speech
	bucket       gcp.BucketService
}

// NewAnswerService wires the recorder. evaluator, speech and bucket may be
// nil; submissions that need a missing collaborator fail as unavailable.
func NewAnswerService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sessionRepo repos.PrepSessionRepo,
	quizRepo repos.QuizRepo,
	questionRepo repos.QuestionRepo,
	answerRepo repos.AnswerRepo,
	evaluator Evaluator,
	speech gcp.Speech,
	bucket gcp.BucketService,
) AnswerService {
	return &answerService{
		db:           db,
		log:          baseLog.With("service", "AnswerService"),
		sessionRepo:  sessionRepo,
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		evaluator:    evaluator,
		speech:       speech,
		bucket:       bucket,
	}
}

type answerTarget struct {
	session  *types.PrepSession
	quiz     *types.Quiz
	question *types.Question
}

// resolve runs every check Record applies, so submissions fail before any
// remote call is made.
func (s *answerService) resolve(dbc dbctx.Context, callerID, sessionID, questionID uuid.UUID) (*answerTarget, error) {
	sess, err := s.sessionRepo.GetByID(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errNotFound("session")
	}
	if sess.UserID != callerID {
		s.log.Warn("Answer ownership mismatch", "session_id", sessionID, "user_id", callerID)
		return nil, errForbidden()
	}
	q, err := s.questionRepo.GetByID(dbc, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, errNotFound("question")
	}
	if q.QuizID != sess.QuizID {
		return nil, errIntegrity()
	}
	if sess.Status != types.SessionInProgress {
		return nil, errSessionClosed()
	}
	quiz, err := s.quizRepo.GetByID(dbc, sess.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, errNotFound("quiz")
	}
	return &answerTarget{session: sess, quiz: quiz, question: q}, nil
}

func (s *answerService) Record(dbc dbctx.Context, in RecordInput) (*types.Answer, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	var out *types.Answer
	err := db.Within(s.db, dbc, func(inner dbctx.Context) error {
		if _, err := s.resolve(inner, in.UserID, in.SessionID, in.QuestionID); err != nil {
			return err
		}
		row := &types.Answer{
			UserID:             in.UserID,
			QuestionID:         in.QuestionID,
			PrepSessionID:      in.SessionID,
			Content:            in.Content,
			AudioKey:           in.AudioKey,
			Feedback:           in.Evaluation.Feedback,
			RawEvaluation:      in.Evaluation.Raw,
			Scores:             domainpractice.EncodeScores(in.Evaluation.Scores),
			EvaluationDegraded: in.Evaluation.Degraded,
		}
		created, err := s.answerRepo.Create(inner, row)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	if in.Evaluation.Degraded {
		s.log.Warn("Answer recorded with degraded evaluation",
			"session_id", in.SessionID,
			"question_id", in.QuestionID,
			"error", pkgerrors.ErrEvaluationDegraded,
		)
	}
	if len(in.Evaluation.Unknown) > 0 {
		s.log.Info("Evaluator returned unrecognized score labels", "labels", in.Evaluation.Unknown)
	}
	return out, nil
}

func (s *answerService) evalInput(t *answerTarget, answer string) EvalInput {
	return EvalInput{
		Flow:            practice.FlowFor(t.quiz.Type),
		Question:        t.question.Prompt,
		ReferenceAnswer: t.question.ReferenceAnswer,
		Answer:          answer,
		Language:        t.session.Language,
	}
}

func (s *answerService) SubmitText(dbc dbctx.Context, callerID, sessionID, questionID uuid.UUID, text string) (*types.Answer, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errInvalid("empty_answer", "answer text is empty")
	}
	t, err := s.resolve(dbc, callerID, sessionID, questionID)
	if err != nil {
		return nil, err
	}
	if s.evaluator == nil {
		return nil, errUnavailable("evaluator")
	}

	in := s.evalInput(t, text)
	var eval practice.Evaluation
	raw, err := s.evaluator.Evaluate(dbc.Ctx, in)
	switch {
	case err != nil && (isCancellation(err) || dbc.Ctx.Err() != nil):
		return nil, err
	case err != nil:
		s.log.Warn("Evaluator failed, recording default scores", "session_id", sessionID, "error", err)
		eval = practice.ZeroEvaluation(in.Flow.Labels, raw)
	default:
		eval = practice.ParseEvaluation(raw, in.Flow.Labels)
	}

	return s.Record(dbc, RecordInput{
		UserID:     callerID,
		SessionID:  sessionID,
		QuestionID: questionID,
		Content:    text,
		Evaluation: eval,
	})
}

func (s *answerService) SubmitAudio(dbc dbctx.Context, callerID, sessionID, questionID uuid.UUID, audio AudioUpload, onFeedback func(string)) (*types.Answer, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	if len(audio.Data) == 0 {
		return nil, errInvalid("empty_audio", "audio upload is empty")
	}
	t, err := s.audioTarget(dbc, callerID, sessionID, questionID)
	if err != nil {
		return nil, err
	}

	mimeType := strings.TrimSpace(audio.MimeType)
	var audioKey string
	if s.bucket != nil {
		audioKey = answerAudioKey(sessionID, questionID, audio.Filename, mimeType)
		if err := s.bucket.UploadFile(dbc, gcp.BucketCategoryAudio, audioKey, bytes.NewReader(audio.Data), mimeType); err != nil {
			return nil, fmt.Errorf("store answer audio: %w", err)
		}
	}
	recorded := false
	defer func() {
		if !recorded {
			s.discardAudio(dbc, audioKey)
		}
	}()

	transcript, err := s.speech.Transcribe(dbc.Ctx, audio.Data, mimeType, t.session.Language)
	if err != nil {
		return nil, fmt.Errorf("transcribe answer: %w", err)
	}

	in := s.evalInput(t, transcript.Text)
	raw, err := practice.Accumulate(s.evaluator.Stream(dbc.Ctx, in), onFeedback)
	var eval practice.Evaluation
	switch {
	case dbc.Ctx.Err() != nil:
		return nil, dbc.Ctx.Err()
	case err != nil && isCancellation(err):
		return nil, err
	case err != nil:
		s.log.Warn("Evaluation stream failed, recording default scores", "session_id", sessionID, "error", err)
		eval = practice.ZeroEvaluation(in.Flow.Labels, raw)
	default:
		eval = practice.ParseEvaluation(raw, in.Flow.Labels)
	}

	ans, err := s.Record(dbc, RecordInput{
		UserID:     callerID,
		SessionID:  sessionID,
		QuestionID: questionID,
		Content:    transcript.Text,
		AudioKey:   audioKey,
		Evaluation: eval,
	})
	if err != nil {
		return nil, err
	}
	recorded = true
	return ans, nil
}

func (s *answerService) CheckAudio(dbc dbctx.Context, callerID, sessionID, questionID uuid.UUID) error {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	_, err := s.audioTarget(dbc, callerID, sessionID, questionID)
	return err
}

func (s *answerService) audioTarget(dbc dbctx.Context, callerID, sessionID, questionID uuid.UUID) (*answerTarget, error) {
	t, err := s.resolve(dbc, callerID, sessionID, questionID)
	if err != nil {
		return nil, err
	}
	if s.speech == nil {
		return nil, errUnavailable("speech")
	}
	if s.evaluator == nil {
		return nil, errUnavailable("evaluator")
	}
	return t, nil
}

// discardAudio removes an uploaded recording that no answer references.
// It runs detached from the request so a cancelled caller still cleans up.
func (s *answerService) discardAudio(dbc dbctx.Context, key string) {
	if s.bucket == nil || key == "" {
		return
	}
	ctx := context.WithoutCancel(dbc.Ctx)
	if err := s.bucket.DeleteFile(dbctx.Context{Ctx: ctx}, gcp.BucketCategoryAudio, key); err != nil {
		s.log.Warn("Answer audio cleanup failed", "key", key, "error", err)
	}
}

func answerAudioKey(sessionID, questionID uuid.UUID, filename, mimeType string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = extensionForAudio(mimeType)
	}
	return fmt.Sprintf("answers/%s/%s/%s%s", sessionID, questionID, uuid.New(), ext)
}

func extensionForAudio(mimeType string) string {
	m := strings.ToLower(mimeType)
	switch {
	case strings.Contains(m, "webm"):
		return ".webm"
	case strings.Contains(m, "ogg"), strings.Contains(m, "opus"):
		return ".ogg"
	case strings.Contains(m, "wav"):
		return ".wav"
	case strings.Contains(m, "mpeg"), strings.Contains(m, "mp3"):
		return ".mp3"
	case strings.Contains(m, "flac"):
		return ".flac"
	default:
		return ".bin"
	}
}
