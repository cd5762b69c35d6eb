package practice

import (
	types "github.com/yungbote/quizprep-backend/internal/domain"
)

// CanTransition reports whether a session may move from one status to
// another. Completed and abandoned are terminal.
func CanTransition(from, to types.SessionStatus) bool {
	if from != types.SessionInProgress {
		return false
	}
	return to == types.SessionCompleted || to == types.SessionAbandoned
}

// Evaluate proposes the status a session should have after a state read.
// It never touches storage; the caller commits a proposed change.
func Evaluate(status types.SessionStatus, p Progress, hasCurrent bool) (types.SessionStatus, bool) {
	if status != types.SessionInProgress || hasCurrent {
		return status, false
	}
	if !p.Done() {
		return status, false
	}
	return types.SessionCompleted, true
}
