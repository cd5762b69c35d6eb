package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/quizprep-backend/internal/platform/gcp"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
	"github.com/yungbote/quizprep-backend/internal/platform/openai"
	"github.com/yungbote/quizprep-backend/internal/prompts"
)

const defaultQuizTitle = "Untitled Quiz"

type PageImage struct {
	// PageNumber is the zero-based upload order.
	PageNumber int
	Data       []byte
	MimeType   string
}

type GeneratedQuestion struct {
	PageNumber int    `json:"-" validate:"gte=0"`
	Question   string `json:"question" validate:"required,max=2000"`
	Answer     string `json:"answer" validate:"required,max=4000"`
	Difficulty string `json:"difficulty_level" validate:"omitempty,oneof=easy medium hard"`
}

// PageQuestions is the generator output for one page.
type PageQuestions struct {
	PageNumber int
	OCRText    string
	Questions  []GeneratedQuestion
}

type QuestionGenerator interface {
	// Generate returns one entry per page, in page order.
	Generate(ctx context.Context, pages []PageImage, language string) ([]PageQuestions, error)
	// Title never fails; it falls back to a default title.
	Title(ctx context.Context, questionPrompts []string) string
}

type openAIQuestionGenerator struct {
	log         *logger.Logger
	client      openai.Client
	vision      gcp.Vision
	validate    *validator.Validate
	concurrency int
}

// NewOpenAIQuestionGenerator builds the generator. vision may be nil, in
// which case no OCR hint is sent.
func NewOpenAIQuestionGenerator(baseLog *logger.Logger, client openai.Client, vision gcp.Vision) QuestionGenerator {
	return &openAIQuestionGenerator{
		log:         baseLog.With("service", "QuestionGenerator"),
		client:      client,
		vision:      vision,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		concurrency: 4,
	}
}

func generatedQuestionsSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question":         map[string]any{"type": "string"},
						"answer":           map[string]any{"type": "string"},
						"difficulty_level": map[string]any{"type": "string", "enum": []string{"easy", "medium", "hard"}},
					},
					"required":             []string{"question", "answer", "difficulty_level"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"questions"},
		"additionalProperties": false,
	}
}

func (g *openAIQuestionGenerator) Generate(ctx context.Context, pages []PageImage, language string) ([]PageQuestions, error) {
	out := make([]PageQuestions, len(pages))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for i, page := range pages {
		eg.Go(func() error {
			res, err := g.generatePage(ctx, page, language)
			if err != nil {
				return fmt.Errorf("page %d: %w", page.PageNumber, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *openAIQuestionGenerator) generatePage(ctx context.Context, page PageImage, language string) (PageQuestions, error) {
	res := PageQuestions{PageNumber: page.PageNumber}
	if g.vision != nil {
		text, err := g.vision.OCRImageBytes(ctx, page.Data)
		if err != nil {
			g.log.Warn("OCR failed, generating without text hint", "page", page.PageNumber, "error", err)
		} else {
			res.OCRText = text
		}
	}

	p, err := prompts.Build(prompts.PromptGenerateQuestions, prompts.Input{
		PageNumber: page.PageNumber + 1,
		OCRText:    res.OCRText,
		Language:   language,
	})
	if err != nil {
		return res, err
	}
	mimeType := page.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	img := openai.ImageInput{
		ImageURL: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(page.Data),
		Detail:   "high",
	}
	obj, err := g.client.GenerateJSONWithImages(ctx, p.System, p.User, []openai.ImageInput{img}, "page_questions", generatedQuestionsSchema())
	if err != nil {
		return res, err
	}
	questions, err := decodeGeneratedQuestions(obj)
	if err != nil {
		return res, err
	}
	for _, q := range questions {
		q.PageNumber = page.PageNumber
		q.Question = strings.TrimSpace(q.Question)
		q.Answer = strings.TrimSpace(q.Answer)
		q.Difficulty = strings.ToLower(strings.TrimSpace(q.Difficulty))
		if err := g.validate.Struct(q); err != nil {
			g.log.Warn("Dropping invalid generated question", "page", page.PageNumber, "error", err)
			continue
		}
		res.Questions = append(res.Questions, q)
	}
	return res, nil
}

func decodeGeneratedQuestions(obj map[string]any) ([]GeneratedQuestion, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Questions []GeneratedQuestion `json:"questions"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode generated questions: %w", err)
	}
	return payload.Questions, nil
}

func (g *openAIQuestionGenerator) Title(ctx context.Context, questionPrompts []string) string {
	if len(questionPrompts) == 0 {
		return defaultQuizTitle
	}
	var b strings.Builder
	for _, q := range questionPrompts {
		b.WriteString("- ")
		b.WriteString(q)
		b.WriteString("\n")
	}
	p, err := prompts.Build(prompts.PromptQuizTitle, prompts.Input{QuestionsList: b.String()})
	if err != nil {
		g.log.Warn("Build title prompt failed", "error", err)
		return defaultQuizTitle
	}
	title, err := g.client.GenerateText(ctx, p.System, p.User)
	if err != nil {
		g.log.Warn("Generate quiz title failed", "error", err)
		return defaultQuizTitle
	}
	return cleanTitle(title)
}

func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, "\"'*# ")
	if s == "" {
		return defaultQuizTitle
	}
	return s
}
