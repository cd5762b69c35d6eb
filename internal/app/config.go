package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/quizprep-backend/internal/platform/envutil"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

const (
	defaultJWTSecret   = "defaultsecret"
	defaultServiceName = "quizprep-api"
)

// Config holds the settings app.New needs directly. Collaborator clients
// (database, OpenAI, GCP, Redis, Google) read their own variables through
// their ConfigFromEnv helpers.
type Config struct {
	Port    string
	AppEnv  string
	LogMode string

	ServiceName string
	Version     string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	AllowedOrigins []string
	MaxUploadBytes int64

	ShutdownTimeout time.Duration
}

func (c Config) Addr() string {
	port := strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	if port == "" {
		port = "8080"
	}
	return ":" + port
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:            envutil.String("PORT", "8080"),
		AppEnv:          strings.ToLower(envutil.String("APP_ENV", "development")),
		LogMode:         envutil.String("LOG_MODE", "development"),
		ServiceName:     envutil.String("OTEL_SERVICE_NAME", defaultServiceName),
		Version:         envutil.String("APP_VERSION", "dev"),
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL:  envutil.Seconds("ACCESS_TOKEN_TTL", 24*time.Hour),
		AllowedOrigins:  envutil.List("CORS_ALLOWED_ORIGINS", nil),
		MaxUploadBytes:  int64(envutil.Int("MAX_UPLOAD_MB", 20)) << 20,
		ShutdownTimeout: envutil.Seconds("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}
	if cfg.JWTSecretKey == defaultJWTSecret && log != nil {
		log.Warn("JWT_SECRET_KEY not set; using the development default")
	}
	return cfg
}

// Validate rejects settings that are only tolerable outside production.
func (c Config) Validate() error {
	if c.IsProduction() && c.JWTSecretKey == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET_KEY must be set when APP_ENV=production")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	return nil
}
