package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/quizprep-backend/internal/platform/envutil"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

// ErrStateNotFound is returned for unknown, expired or already consumed states.
var ErrStateNotFound = errors.New("oauth state not found")

const keyPrefix = "oauth_state:"

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Addr:     strings.TrimSpace(envutil.String("REDIS_ADDR", "")),
		Password: envutil.String("REDIS_PASSWORD", ""),
		DB:       envutil.Int("REDIS_DB", 0),
		TTL:      envutil.Seconds("OAUTH_STATE_TTL", 10*time.Minute),
	}
}

// StateStore keeps OAuth state -> nonce pairs for the duration of a login
// round trip. Each state can be consumed once.
type StateStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewStateStore(log *logger.Logger, cfg Config) (*StateStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &StateStore{log: log.With("service", "RedisStateStore"), rdb: rdb, ttl: cfg.TTL}, nil
}

func (s *StateStore) Save(ctx context.Context, state, nonce string) error {
	ok, err := s.rdb.SetNX(ctx, keyPrefix+state, nonce, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("store oauth state: %w", err)
	}
	if !ok {
		return fmt.Errorf("oauth state collision")
	}
	return nil
}

func (s *StateStore) Consume(ctx context.Context, state string) (string, error) {
	nonce, err := s.rdb.GetDel(ctx, keyPrefix+state).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrStateNotFound
		}
		return "", fmt.Errorf("consume oauth state: %w", err)
	}
	return nonce, nil
}

func (s *StateStore) Close() error {
	return s.rdb.Close()
}
