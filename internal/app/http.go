package app

import (
	"github.com/yungbote/quizprep-backend/internal/http"
	httpH "github.com/yungbote/quizprep-backend/internal/http/handlers"
	httpMW "github.com/yungbote/quizprep-backend/internal/http/middleware"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	User     *httpH.UserHandler
	Quiz     *httpH.QuizHandler
	Practice *httpH.PracticeHandler
	Answer   *httpH.AnswerHandler
	Speech   *httpH.SpeechHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Auth:     httpH.NewAuthHandler(log, services.Auth),
		User:     httpH.NewUserHandler(services.User),
		Quiz:     httpH.NewQuizHandler(log, services.Quiz, cfg.MaxUploadBytes),
		Practice: httpH.NewPracticeHandler(log, services.Practice),
		Answer:   httpH.NewAnswerHandler(log, services.Answer, services.Practice, cfg.MaxUploadBytes),
		Speech:   httpH.NewSpeechHandler(services.Speech),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:             log,
		ServiceName:     cfg.ServiceName,
		AllowedOrigins:  cfg.AllowedOrigins,
		AuthMiddleware:  middleware.Auth,
		AuthHandler:     handlers.Auth,
		UserHandler:     handlers.User,
		QuizHandler:     handlers.Quiz,
		PracticeHandler: handlers.Practice,
		AnswerHandler:   handlers.Answer,
		SpeechHandler:   handlers.Speech,
		HealthHandler:   handlers.Health,
	})
}
