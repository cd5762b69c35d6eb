package practice

import (
	"bytes"
	"sort"

	"github.com/google/uuid"

	types "github.com/yungbote/quizprep-backend/internal/domain"
	pkgerrors "github.com/yungbote/quizprep-backend/internal/pkg/errors"
)

// OrderQuestions returns a copy of questions sorted by position, then
// created_at, then id.
func OrderQuestions(questions []*types.Question) []*types.Question {
	out := make([]*types.Question, 0, len(questions))
	for _, q := range questions {
		if q != nil {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})
	return out
}

// NextQuestion returns the first question in order that has no answer among
// answeredIDs, or nil when every question has been answered. A quiz without
// questions is a configuration error, never an exhausted quiz.
func NextQuestion(questions []*types.Question, answeredIDs []uuid.UUID) (*types.Question, error) {
	ordered := OrderQuestions(questions)
	if len(ordered) == 0 {
		return nil, pkgerrors.ErrConfiguration
	}
	answered := make(map[uuid.UUID]struct{}, len(answeredIDs))
	for _, id := range answeredIDs {
		answered[id] = struct{}{}
	}
	for _, q := range ordered {
		if _, ok := answered[q.ID]; !ok {
			return q, nil
		}
	}
	return nil, nil
}
