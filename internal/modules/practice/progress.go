package practice

import (
	"github.com/google/uuid"

	types "github.com/yungbote/quizprep-backend/internal/domain"
	pkgerrors "github.com/yungbote/quizprep-backend/internal/pkg/errors"
)

type Progress struct {
	Answered   int     `json:"answered"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Done reports whether every question has at least one answer.
func (p Progress) Done() bool {
	return p.Total > 0 && p.Answered == p.Total
}

// ComputeProgress counts distinct answered ids that belong to the quiz, so
// repeated attempts and stray ids never push Answered past Total.
func ComputeProgress(questions []*types.Question, answeredIDs []uuid.UUID) (Progress, error) {
	inQuiz := make(map[uuid.UUID]struct{}, len(questions))
	for _, q := range questions {
		if q != nil {
			inQuiz[q.ID] = struct{}{}
		}
	}
	total := len(inQuiz)
	if total == 0 {
		return Progress{}, pkgerrors.ErrConfiguration
	}
	seen := make(map[uuid.UUID]struct{}, len(answeredIDs))
	for _, id := range answeredIDs {
		if _, ok := inQuiz[id]; ok {
			seen[id] = struct{}{}
		}
	}
	answered := len(seen)
	return Progress{
		Answered:   answered,
		Total:      total,
		Percentage: float64(answered) / float64(total) * 100,
	}, nil
}
