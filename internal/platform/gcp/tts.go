package gcp

import (
	"context"
	"fmt"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

type TextToSpeech interface {
	// Synthesize renders SSML to MP3.
	Synthesize(ctx context.Context, ssml string, languageCode string) ([]byte, error)
	Close() error
}

type textToSpeech struct {
	log    *logger.Logger
	client *texttospeech.Client
}

func NewTextToSpeech(log *logger.Logger) (TextToSpeech, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	c, err := texttospeech.NewClient(context.Background(), ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("texttospeech client: %w", err)
	}
	return &textToSpeech{log: log.With("service", "TextToSpeech"), client: c}, nil
}

func (t *textToSpeech) Close() error {
	if t == nil || t.client == nil {
		return nil
	}
	return t.client.Close()
}

func (t *textToSpeech) Synthesize(ctx context.Context, ssml string, languageCode string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	resp, err := t.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Ssml{Ssml: ssml},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: RecognitionLanguage(languageCode),
			SsmlGender:   texttospeechpb.SsmlVoiceGender_NEUTRAL,
		},
		AudioConfig: &texttospeechpb.AudioConfig{AudioEncoding: texttospeechpb.AudioEncoding_MP3},
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return resp.GetAudioContent(), nil
}
