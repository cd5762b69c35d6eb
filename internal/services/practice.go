package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/yungbote/quizprep-backend/internal/data/db"
	"github.com/yungbote/quizprep-backend/internal/data/repos"
	types "github.com/yungbote/quizprep-backend/internal/domain"
	"github.com/yungbote/quizprep-backend/internal/modules/practice"
	"github.com/yungbote/quizprep-backend/internal/pkg/dbctx"
	"github.com/yungbote/quizprep-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizprep-backend/internal/platform/language"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

var practiceTracer = otel.Tracer("quizprep/practice")

type StartOptions struct {
	// Language requested by the client. Language quizzes ignore it.
	Language string
	// Mode is the initial answer mode; empty means text.
	Mode string
}

// SessionState is a session plus everything a client needs to render the
// next step.
type SessionState struct {
	Session         *types.PrepSession `json:"session"`
	Quiz            *types.Quiz        `json:"quiz"`
	CurrentQuestion *types.Question    `json:"current_question"`
	Answered        int                `json:"answered"`
	Total           int                `json:"total"`
	Percentage      float64            `json:"percentage"`
}

type SessionSummary struct {
	Session    *types.PrepSession `json:"session"`
	Quiz       *types.Quiz        `json:"quiz"`
	Answered   int                `json:"answered"`
	Total      int                `json:"total"`
	Percentage float64            `json:"percentage"`
	Answers    []*types.Answer    `json:"answers"`
	Score      *float64           `json:"score"`
}

type PracticeService interface {
	StartOrResume(dbc dbctx.Context, userID, quizID uuid.UUID, opts StartOptions) (*types.PrepSession, error)
	GetCurrentState(dbc dbctx.Context, sessionID, callerID uuid.UUID) (*SessionState, error)
	Complete(dbc dbctx.Context, sessionID, callerID uuid.UUID) (*types.PrepSession, error)
	Abandon(dbc dbctx.Context, sessionID, callerID uuid.UUID) (*types.PrepSession, error)
	SetAnswerMode(dbc dbctx.Context, sessionID, callerID uuid.UUID, mode string) (*types.PrepSession, error)
	ActiveSession(dbc dbctx.Context, userID uuid.UUID, quizType string) (*types.PrepSession, error)
	Summary(dbc dbctx.Context, sessionID, callerID uuid.UUID) (*SessionSummary, error)
}

type practiceService struct {
	db           *gorm.DB
	log          *logger.Logger
	sessionRepo  repos.PrepSessionRepo
	quizRepo     repos.QuizRepo
	questionRepo repos.QuestionRepo
	answerRepo   repos.AnswerRepo
	now          func() time.Time
}

func NewPracticeService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sessionRepo repos.PrepSessionRepo,
	quizRepo repos.QuizRepo,
	questionRepo repos.QuestionRepo,
	answerRepo repos.AnswerRepo,
) PracticeService {
	return &practiceService{
		db:           db,
		log:          baseLog.With("service", "PracticeService"),
		sessionRepo:  sessionRepo,
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *practiceService) startSpan(dbc dbctx.Context, name string, sessionID uuid.UUID) (dbctx.Context, trace.Span) {
	ctx, span := practiceTracer.Start(ctxutil.Default(dbc.Ctx), name)
	if sessionID != uuid.Nil {
		span.SetAttributes(attribute.String("practice.session_id", sessionID.String()))
	}
	return dbctx.Context{Ctx: ctx, Tx: dbc.Tx}, span
}

func (s *practiceService) StartOrResume(dbc dbctx.Context, userID, quizID uuid.UUID, opts StartOptions) (*types.PrepSession, error) {
	dbc, span := s.startSpan(dbc, "practice.StartOrResume", uuid.Nil)
	defer span.End()

	mode := strings.ToLower(strings.TrimSpace(opts.Mode))
	if mode == "" {
		mode = types.AnswerModeText
	}
	if !types.ValidAnswerMode(mode) {
		return nil, errInvalid("invalid_answer_mode", fmt.Sprintf("unknown answer mode %q", opts.Mode))
	}

	var out *types.PrepSession
	err := db.Within(s.db, dbc, func(inner dbctx.Context) error {
		quiz, err := s.quizRepo.GetByID(inner, quizID)
		if err != nil {
			return err
		}
		if quiz == nil || quiz.OwnerUserID != userID {
			return errNotFound("quiz")
		}

		existing, err := s.sessionRepo.GetActive(inner, userID, quizID)
		if err != nil {
			return err
		}
		if existing != nil {
			out = existing
			return nil
		}

		lang := practice.FlowFor(quiz.Type).SessionLanguage(quiz.Language, opts.Language, language.Default)
		row := &types.PrepSession{
			UserID:     userID,
			QuizID:     quizID,
			Status:     types.SessionInProgress,
			StartTime:  s.now(),
			Language:   lang,
			AnswerMode: mode,
		}
		// The savepoint keeps the outer transaction usable on postgres when
		// the partial unique index rejects the insert.
		createErr := inner.Tx.Transaction(func(sp *gorm.DB) error {
			_, err := s.sessionRepo.Create(inner.WithTx(sp), row)
			return err
		})
		if createErr == nil {
			out = row
			s.log.Info("Practice session started", "session_id", row.ID, "user_id", userID, "quiz_id", quizID)
			return nil
		}
		if !db.IsUniqueViolation(createErr) {
			return createErr
		}
		winner, err := s.sessionRepo.GetActive(inner, userID, quizID)
		if err != nil {
			return err
		}
		if winner == nil {
			return fmt.Errorf("active session vanished after unique violation: %w", createErr)
		}
		s.log.Debug("Concurrent start resolved to existing session", "session_id", winner.ID)
		out = winner
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ownedSession loads the session and enforces that callerID owns it.
func (s *practiceService) ownedSession(dbc dbctx.Context, sessionID, callerID uuid.UUID) (*types.PrepSession, error) {
	sess, err := s.sessionRepo.GetByID(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errNotFound("session")
	}
	if sess.UserID != callerID {
		s.log.Warn("Session ownership mismatch", "session_id", sessionID, "user_id", callerID)
		return nil, errForbidden()
	}
	return sess, nil
}

func (s *practiceService) sessionQuiz(dbc dbctx.Context, sess *types.PrepSession) (*types.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(dbc, sess.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, errNotFound("quiz")
	}
	return quiz, nil
}

func (s *practiceService) GetCurrentState(dbc dbctx.Context, sessionID, callerID uuid.UUID) (*SessionState, error) {
	dbc, span := s.startSpan(dbc, "practice.GetCurrentState", sessionID)
	defer span.End()

	var out *SessionState
	err := db.Within(s.db, dbc, func(inner dbctx.Context) error {
		sess, err := s.ownedSession(inner, sessionID, callerID)
		if err != nil {
			return err
		}
		quiz, err := s.sessionQuiz(inner, sess)
		if err != nil {
			return err
		}
		questions, err := s.questionRepo.ListByQuiz(inner, quiz.ID)
		if err != nil {
			return err
		}
		answered, err := s.answerRepo.DistinctQuestionIDs(inner, sess.ID)
		if err != nil {
			return err
		}
		current, err := practice.NextQuestion(questions, answered)
		if err != nil {
			return errConfiguration(err)
		}
		progress, err := practice.ComputeProgress(questions, answered)
		if err != nil {
			return errConfiguration(err)
		}

		if next, changed := practice.Evaluate(sess.Status, progress, current != nil); changed {
			sess, err = s.commit(inner, sess, quiz, next)
			if err != nil {
				return err
			}
		}
		out = &SessionState{
			Session:         sess,
			Quiz:            quiz,
			CurrentQuestion: current,
			Answered:        progress.Answered,
			Total:           progress.Total,
			Percentage:      progress.Percentage,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// commit moves an in_progress session to `to`. Losing a race to another
// commit is not an error: the winner's row is returned.
func (s *practiceService) commit(dbc dbctx.Context, sess *types.PrepSession, quiz *types.Quiz, to types.SessionStatus) (*types.PrepSession, error) {
	ctx, span := practiceTracer.Start(dbc.Ctx, "practice.commit",
		trace.WithAttributes(attribute.String("practice.to", string(to))))
	defer span.End()
	dbc = dbctx.Context{Ctx: ctx, Tx: dbc.Tx}

	locked, err := s.sessionRepo.GetByIDForUpdate(dbc, sess.ID)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, errNotFound("session")
	}
	if locked.Status != types.SessionInProgress {
		return locked, nil
	}
	if !practice.CanTransition(locked.Status, to) {
		return nil, errInvalidTransition(locked.Status, to)
	}

	end := s.now()
	change := repos.StatusChange{From: types.SessionInProgress, To: to, EndTime: &end}
	if to == types.SessionCompleted {
		answers, err := s.answerRepo.ListBySession(dbc, sess.ID)
		if err != nil {
			return nil, err
		}
		change.Score = practice.AggregateScore(practice.FlowFor(quiz.Type), answers)
	}

	applied, err := s.sessionRepo.TransitionStatus(dbc, sess.ID, change)
	if err != nil {
		return nil, err
	}
	if applied {
		s.log.Info("Practice session status changed", "session_id", sess.ID, "from", locked.Status, "to", to)
	}
	reloaded, err := s.sessionRepo.GetByID(dbc, sess.ID)
	if err != nil {
		return nil, err
	}
	if reloaded == nil {
		return nil, errNotFound("session")
	}
	return reloaded, nil
}

func (s *practiceService) Complete(dbc dbctx.Context, sessionID, callerID uuid.UUID) (*types.PrepSession, error) {
	return s.finish(dbc, "practice.Complete", sessionID, callerID, types.SessionCompleted)
}

func (s *practiceService) Abandon(dbc dbctx.Context, sessionID, callerID uuid.UUID) (*types.PrepSession, error) {
	return s.finish(dbc, "practice.Abandon", sessionID, callerID, types.SessionAbandoned)
}

// finish applies an explicit terminal transition. Repeating the same
// transition is a no-op; crossing from the other terminal state fails.
func (s *practiceService) finish(dbc dbctx.Context, spanName string, sessionID, callerID uuid.UUID, to types.SessionStatus) (*types.PrepSession, error) {
	dbc, span := s.startSpan(dbc, spanName, sessionID)
	defer span.End()

	var out *types.PrepSession
	err := db.Within(s.db, dbc, func(inner dbctx.Context) error {
		sess, err := s.ownedSession(inner, sessionID, callerID)
		if err != nil {
			return err
		}
		if sess.Status == to {
			out = sess
			return nil
		}
		if !practice.CanTransition(sess.Status, to) {
			return errInvalidTransition(sess.Status, to)
		}
		quiz, err := s.sessionQuiz(inner, sess)
		if err != nil {
			return err
		}
		updated, err := s.commit(inner, sess, quiz, to)
		if err != nil {
			return err
		}
		if updated.Status != to {
			return errInvalidTransition(updated.Status, to)
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *practiceService) SetAnswerMode(dbc dbctx.Context, sessionID, callerID uuid.UUID, mode string) (*types.PrepSession, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if !types.ValidAnswerMode(mode) {
		return nil, errInvalid("invalid_answer_mode", fmt.Sprintf("unknown answer mode %q", mode))
	}
	var out *types.PrepSession
	err := db.Within(s.db, dbc, func(inner dbctx.Context) error {
		sess, err := s.ownedSession(inner, sessionID, callerID)
		if err != nil {
			return err
		}
		if sess.Status != types.SessionInProgress {
			return errSessionClosed()
		}
		if sess.AnswerMode != mode {
			if err := s.sessionRepo.UpdateAnswerMode(inner, sess.ID, mode); err != nil {
				return err
			}
			sess.AnswerMode = mode
		}
		out = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveSession returns nil when the user has no in-progress session for a
// quiz of quizType.
func (s *practiceService) ActiveSession(dbc dbctx.Context, userID uuid.UUID, quizType string) (*types.PrepSession, error) {
	quizType = strings.ToUpper(strings.TrimSpace(quizType))
	if !types.ValidQuizType(quizType) {
		return nil, errInvalid("invalid_quiz_type", fmt.Sprintf("unknown quiz type %q", quizType))
	}
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	return s.sessionRepo.GetLatestActiveByQuizType(dbc, userID, quizType)
}

func (s *practiceService) Summary(dbc dbctx.Context, sessionID, callerID uuid.UUID) (*SessionSummary, error) {
	dbc, span := s.startSpan(dbc, "practice.Summary", sessionID)
	defer span.End()

	var out *SessionSummary
	err := db.Within(s.db, dbc, func(inner dbctx.Context) error {
		sess, err := s.ownedSession(inner, sessionID, callerID)
		if err != nil {
			return err
		}
		quiz, err := s.sessionQuiz(inner, sess)
		if err != nil {
			return err
		}
		questions, err := s.questionRepo.ListByQuiz(inner, quiz.ID)
		if err != nil {
			return err
		}
		answered, err := s.answerRepo.DistinctQuestionIDs(inner, sess.ID)
		if err != nil {
			return err
		}
		progress, err := practice.ComputeProgress(questions, answered)
		if err != nil {
			return errConfiguration(err)
		}
		answers, err := s.answerRepo.ListBySession(inner, sess.ID)
		if err != nil {
			return err
		}
		score := sess.Score
		if score == nil {
			score = practice.AggregateScore(practice.FlowFor(quiz.Type), answers)
		}
		out = &SessionSummary{
			Session:    sess,
			Quiz:       quiz,
			Answered:   progress.Answered,
			Total:      progress.Total,
			Percentage: progress.Percentage,
			Answers:    answers,
			Score:      score,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
