package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/yungbote/quizprep-backend/internal/platform/httpx"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

type Transcript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	// DurationSec is the end offset of the last recognized word.
	DurationSec float64 `json:"duration_sec"`
}

type Speech interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string, languageCode string) (*Transcript, error)
	Close() error
}

type speechService struct {
	log        *logger.Logger
	client     *speech.Client
	maxRetries int
}

func NewSpeech(log *logger.Logger) (Speech, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	c, err := speech.NewClient(context.Background(), ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &speechService{
		log:        log.With("service", "Speech"),
		client:     c,
		maxRetries: 4,
	}, nil
}

func (s *speechService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *speechService) Transcribe(ctx context.Context, audio []byte, mimeType string, languageCode string) (*Transcript, error) {
	if len(audio) == 0 {
		return &Transcript{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	req := &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			LanguageCode:               RecognitionLanguage(languageCode),
			Encoding:                   inferSpeechEncoding(mimeType),
			EnableAutomaticPunctuation: true,
			EnableWordTimeOffsets:      true,
		},
		Audio: &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: audio}},
	}

	resp, err := s.retryLR(ctx, func() (*speechpb.LongRunningRecognizeResponse, error) {
		op, err := s.client.LongRunningRecognize(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("speech longrunningrecognize: %w", err)
	}
	return parseTranscript(resp.GetResults()), nil
}

// RecognitionLanguage expands a bare language code to the BCP-47 region the
// recognizer expects.
func RecognitionLanguage(code string) string {
	code = strings.TrimSpace(code)
	switch strings.ToLower(code) {
	case "":
		return "en-US"
	case "en":
		return "en-US"
	case "pt":
		return "pt-PT"
	case "de", "fr", "es", "it", "nl", "pl":
		return strings.ToLower(code) + "-" + strings.ToUpper(code)
	default:
		return code
	}
}

func inferSpeechEncoding(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.Contains(m, "wav"):
		return speechpb.RecognitionConfig_LINEAR16
	case strings.Contains(m, "flac"):
		return speechpb.RecognitionConfig_FLAC
	case strings.Contains(m, "mp3"), strings.Contains(m, "mpeg"):
		return speechpb.RecognitionConfig_MP3
	case strings.Contains(m, "ogg"), strings.Contains(m, "opus"):
		return speechpb.RecognitionConfig_OGG_OPUS
	case strings.Contains(m, "webm"):
		return speechpb.RecognitionConfig_WEBM_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

func parseTranscript(results []*speechpb.SpeechRecognitionResult) *Transcript {
	out := &Transcript{}
	var (
		text    []string
		confSum float64
		confN   int
	)
	for _, r := range results {
		if r == nil || len(r.GetAlternatives()) == 0 {
			continue
		}
		alt := r.GetAlternatives()[0]
		t := strings.TrimSpace(alt.GetTranscript())
		if t == "" {
			continue
		}
		text = append(text, t)
		if c := alt.GetConfidence(); c > 0 {
			confSum += float64(c)
			confN++
		}
		for _, w := range alt.GetWords() {
			if end := durationSeconds(w.GetEndTime()); end > out.DurationSec {
				out.DurationSec = end
			}
		}
	}
	out.Text = strings.Join(text, " ")
	if confN > 0 {
		out.Confidence = confSum / float64(confN)
	}
	return out
}

func durationSeconds(d *durationpb.Duration) float64 {
	if d == nil {
		return 0
	}
	return d.AsDuration().Seconds()
}

func retryableSpeechCode(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}

func (s *speechService) retryLR(ctx context.Context, fn func() (*speechpb.LongRunningRecognizeResponse, error)) (*speechpb.LongRunningRecognizeResponse, error) {
	backoff := 750 * time.Millisecond
	var last error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		last = err
		if !retryableSpeechCode(err) || attempt == s.maxRetries {
			break
		}
		s.log.Warn("Speech request retrying", "attempt", attempt+1, "code", status.Code(err).String())
		if err := httpx.Sleep(ctx, backoff); err != nil {
			return nil, err
		}
		backoff = min(backoff*2, 10*time.Second)
	}
	return nil, last
}
