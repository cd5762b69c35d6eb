package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/quizprep-backend/internal/http/handlers"
	httpMW "github.com/yungbote/quizprep-backend/internal/http/middleware"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware
	AuthHandler    *httpH.AuthHandler
	UserHandler    *httpH.UserHandler

	QuizHandler     *httpH.QuizHandler
	PracticeHandler *httpH.PracticeHandler
	AnswerHandler   *httpH.AnswerHandler
	SpeechHandler   *httpH.SpeechHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.GET("/auth/google/login", cfg.AuthHandler.GoogleLogin)
			api.GET("/auth/google/callback", cfg.AuthHandler.GoogleCallback)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me/language", cfg.UserHandler.SetLanguage)
		}

		// Quizzes
		if cfg.QuizHandler != nil {
			protected.POST("/quizzes", cfg.QuizHandler.CreateQuiz)
			protected.GET("/quizzes", cfg.QuizHandler.ListQuizzes)
			protected.GET("/quizzes/:id", cfg.QuizHandler.GetQuiz)
			protected.POST("/quizzes/:id/questions", cfg.QuizHandler.AppendQuestions)
		}

		// Practice sessions
		if cfg.PracticeHandler != nil {
			protected.POST("/quizzes/:id/sessions", cfg.PracticeHandler.StartSession)
			protected.GET("/practice/active", cfg.PracticeHandler.ActiveSession)
			protected.GET("/sessions/:id", cfg.PracticeHandler.GetSession)
			protected.PATCH("/sessions/:id/mode", cfg.PracticeHandler.SetMode)
			protected.POST("/sessions/:id/complete", cfg.PracticeHandler.Complete)
			protected.POST("/sessions/:id/abandon", cfg.PracticeHandler.Abandon)
			protected.GET("/sessions/:id/summary", cfg.PracticeHandler.Summary)
		}

		// Answers
		if cfg.AnswerHandler != nil {
			protected.POST("/sessions/:id/answers", cfg.AnswerHandler.SubmitText)
			protected.POST("/sessions/:id/answers/audio", cfg.AnswerHandler.SubmitAudio)
		}

		// Read-aloud
		if cfg.SpeechHandler != nil {
			protected.GET("/questions/:id/speech", cfg.SpeechHandler.QuestionAudio)
		}
	}

	return r
}
