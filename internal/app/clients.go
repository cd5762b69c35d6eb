package app

import (
	"context"

	"github.com/yungbote/quizprep-backend/internal/platform/gcp"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
	"github.com/yungbote/quizprep-backend/internal/platform/oauth"
	"github.com/yungbote/quizprep-backend/internal/platform/openai"
	"github.com/yungbote/quizprep-backend/internal/platform/redis"
)

// Clients holds the optional remote collaborators. A nil field means the
// collaborator is not configured; the services that need it answer 503.
type Clients struct {
	OpenAI       openai.Client
	Bucket       gcp.BucketService
	Speech       gcp.Speech
	Vision       gcp.Vision
	TextToSpeech gcp.TextToSpeech
	States       *redis.StateStore
	Google       *oauth.Google
}

func wireClients(ctx context.Context, log *logger.Logger) Clients {
	log.Info("Wiring clients...")
	var c Clients

	if client, err := openai.NewClient(log); err != nil {
		log.Warn("OpenAI client not configured; evaluation and generation disabled", "error", err)
	} else {
		c.OpenAI = client
	}

	if bucket, err := gcp.NewBucketService(log); err != nil {
		log.Warn("Bucket service not configured; uploads disabled", "error", err)
	} else {
		c.Bucket = bucket
	}

	if speech, err := gcp.NewSpeech(log); err != nil {
		log.Warn("Speech client not configured; spoken answers disabled", "error", err)
	} else {
		c.Speech = speech
	}

	if vision, err := gcp.NewVision(log); err != nil {
		log.Warn("Vision client not configured; generation runs without OCR hints", "error", err)
	} else {
		c.Vision = vision
	}

	if tts, err := gcp.NewTextToSpeech(log); err != nil {
		log.Warn("Text-to-speech client not configured; read-aloud disabled", "error", err)
	} else {
		c.TextToSpeech = tts
	}

	if states, err := redis.NewStateStore(log, redis.ConfigFromEnv()); err != nil {
		log.Warn("Redis state store not configured; Google login disabled", "error", err)
	} else {
		c.States = states
	}

	if google, err := oauth.NewGoogle(ctx, oauth.GoogleConfigFromEnv()); err != nil {
		log.Warn("Google login not configured", "error", err)
	} else {
		c.Google = google
	}

	return c
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.States != nil {
		_ = c.States.Close()
	}
	if c.TextToSpeech != nil {
		_ = c.TextToSpeech.Close()
	}
	if c.Vision != nil {
		_ = c.Vision.Close()
	}
	if c.Speech != nil {
		_ = c.Speech.Close()
	}
}
