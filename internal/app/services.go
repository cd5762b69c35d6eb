package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/quizprep-backend/internal/platform/logger"
	"github.com/yungbote/quizprep-backend/internal/services"
)

type Services struct {
	Auth     services.AuthService
	User     services.UserService
	Quiz     services.QuizService
	Practice services.PracticeService
	Answer   services.AnswerService
	Speech   services.SpeechService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) Services {
	log.Info("Wiring services...")

	var (
		evaluator services.Evaluator
		generator services.QuestionGenerator
		provider  services.IdentityProvider
		states    services.StateStore
	)
	if c.OpenAI != nil {
		evaluator = services.NewOpenAIEvaluator(log, c.OpenAI)
		generator = services.NewOpenAIQuestionGenerator(log, c.OpenAI, c.Vision)
	}
	// Assign only non-nil pointers so the interfaces stay nil when unset.
	if c.Google != nil {
		provider = c.Google
	}
	if c.States != nil {
		states = c.States
	}

	return Services{
		Auth:     services.NewAuthService(db, log, r.User, r.UserIdentity, provider, states, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		User:     services.NewUserService(log, r.User),
		Quiz:     services.NewQuizService(db, log, r.Quiz, r.Question, r.PageScan, generator, c.Bucket),
		Practice: services.NewPracticeService(db, log, r.PrepSession, r.Quiz, r.Question, r.Answer),
		Answer:   services.NewAnswerService(db, log, r.PrepSession, r.Quiz, r.Question, r.Answer, evaluator, c.Speech, c.Bucket),
		Speech:   services.NewSpeechService(log, r.Quiz, r.Question, c.TextToSpeech, c.Bucket),
	}
}
