package practice

import (
	"strings"

	types "github.com/yungbote/quizprep-backend/internal/domain"
)

const (
	FlowStandard = "standard"
	FlowLanguage = "language"
)

const (
	LabelCorrectness   = "correctness"
	LabelCompleteness  = "completeness"
	LabelPronunciation = "pronunciation"
	LabelGrammar       = "grammar"
	LabelContent       = "content"
	LabelFluency       = "fluency"
)

// Flow is the per-quiz-type behavior around the shared state machine.
type Flow struct {
	Name string
	// Labels are the score labels the evaluator is asked to produce.
	Labels []string
	// ScoreLabels feed the aggregate session score.
	ScoreLabels []string
}

var (
	standardFlow = Flow{
		Name:        FlowStandard,
		Labels:      []string{LabelCorrectness, LabelCompleteness},
		ScoreLabels: []string{LabelCorrectness},
	}
	languageFlow = Flow{
		Name:        FlowLanguage,
		Labels:      []string{LabelPronunciation, LabelGrammar, LabelContent, LabelFluency},
		ScoreLabels: []string{LabelPronunciation, LabelGrammar, LabelContent},
	}
)

// FlowFor routes LANGUAGE quizzes through the language flow and every other
// type through the standard flow.
func FlowFor(quizType string) Flow {
	if strings.EqualFold(strings.TrimSpace(quizType), types.QuizTypeLanguage) {
		return languageFlow
	}
	return standardFlow
}

// SessionLanguage picks the language stored on a new session. Language
// quizzes practice their own language; otherwise the requested language
// wins, falling back to def.
func (f Flow) SessionLanguage(quizLanguage, requested, def string) string {
	quizLanguage = strings.TrimSpace(quizLanguage)
	requested = strings.TrimSpace(requested)
	if f.Name == FlowLanguage && quizLanguage != "" {
		return quizLanguage
	}
	if requested != "" {
		return requested
	}
	if quizLanguage != "" {
		return quizLanguage
	}
	return def
}
