package services

import (
	"context"
	"fmt"
	"iter"

	"github.com/yungbote/quizprep-backend/internal/modules/practice"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
	"github.com/yungbote/quizprep-backend/internal/platform/openai"
	"github.com/yungbote/quizprep-backend/internal/prompts"
)

// EvalInput is one answer to score. Flow selects the prompt and the labels
// the evaluator is asked for.
type EvalInput struct {
	Flow            practice.Flow
	Question        string
	ReferenceAnswer string
	Answer          string
	Language        string
}

// Evaluator returns free-form feedback followed by a delimiter and a score
// block; see practice.ParseEvaluation.
type Evaluator interface {
	Evaluate(ctx context.Context, in EvalInput) (string, error)
	Stream(ctx context.Context, in EvalInput) iter.Seq2[string, error]
}

type openAIEvaluator struct {
	log    *logger.Logger
	client openai.Client
}

func NewOpenAIEvaluator(baseLog *logger.Logger, client openai.Client) Evaluator {
	return &openAIEvaluator{log: baseLog.With("service", "Evaluator"), client: client}
}

func evaluationPrompt(in EvalInput) (prompts.Prompt, error) {
	name := prompts.PromptEvaluateStandard
	if in.Flow.Name == practice.FlowLanguage {
		name = prompts.PromptEvaluateLanguage
	}
	return prompts.Build(name, prompts.Input{
		Question:        in.Question,
		ReferenceAnswer: in.ReferenceAnswer,
		Answer:          in.Answer,
		Language:        in.Language,
	})
}

func (e *openAIEvaluator) Evaluate(ctx context.Context, in EvalInput) (string, error) {
	p, err := evaluationPrompt(in)
	if err != nil {
		return "", err
	}
	out, err := e.client.GenerateText(ctx, p.System, p.User)
	if err != nil {
		return "", fmt.Errorf("evaluate answer: %w", err)
	}
	return out, nil
}

// Stream yields text deltas as they arrive. A consumer that stops early
// cancels the upstream request.
func (e *openAIEvaluator) Stream(ctx context.Context, in EvalInput) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		p, err := evaluationPrompt(in)
		if err != nil {
			yield("", err)
			return
		}
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		stopped := false
		_, err = e.client.StreamText(ctx, p.System, p.User, func(delta string) {
			if stopped {
				return
			}
			if !yield(delta, nil) {
				stopped = true
				cancel()
			}
		})
		if err != nil && !stopped {
			yield("", fmt.Errorf("stream evaluation: %w", err))
		}
	}
}
