package practice

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	types "github.com/yungbote/quizprep-backend/internal/domain"
)

// LatestAnswers keeps the most recent answer per question.
func LatestAnswers(answers []*types.Answer) map[uuid.UUID]*types.Answer {
	out := make(map[uuid.UUID]*types.Answer, len(answers))
	for _, a := range answers {
		if a == nil {
			continue
		}
		cur, ok := out[a.QuestionID]
		if !ok || a.CreatedAt.After(cur.CreatedAt) || (a.CreatedAt.Equal(cur.CreatedAt) && a.ID.String() > cur.ID.String()) {
			out[a.QuestionID] = a
		}
	}
	return out
}

// AnswerValue is the flow's 0..10 value for one answer.
func (f Flow) AnswerValue(a *types.Answer) decimal.Decimal {
	scores := a.ScoreMap()
	if len(f.ScoreLabels) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, l := range f.ScoreLabels {
		sum = sum.Add(decimal.NewFromFloat(scores[l]))
	}
	return sum.Div(decimal.NewFromInt(int64(len(f.ScoreLabels))))
}

// AggregateScore is the mean of the latest answer values per question,
// scaled to 0..100 and rounded to one decimal. It returns nil when nothing
// has been answered.
func AggregateScore(f Flow, answers []*types.Answer) *float64 {
	latest := LatestAnswers(answers)
	if len(latest) == 0 {
		return nil
	}
	sum := decimal.Zero
	for _, a := range latest {
		sum = sum.Add(f.AnswerValue(a))
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(latest))))
	v, _ := mean.Mul(decimal.NewFromInt(10)).Round(1).Float64()
	return &v
}
