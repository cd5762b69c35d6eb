package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrForbidden marks a caller acting on a session or answer it does not own.
	ErrForbidden = errors.New("forbidden")
	// ErrConfiguration marks a quiz that cannot be practiced, e.g. it has no questions.
	ErrConfiguration = errors.New("quiz has no questions")
	// ErrIntegrity marks an answer for a question outside the session's quiz.
	ErrIntegrity = errors.New("question does not belong to the session quiz")
	ErrInvalidTransition = errors.New("invalid session status transition")
	ErrSessionClosed     = errors.New("session is not in progress")
	// ErrEvaluationDegraded is soft: the answer is still recorded with default scores.
	ErrEvaluationDegraded = errors.New("evaluation response could not be fully parsed")
	ErrUnavailable        = errors.New("dependency not configured")
)
