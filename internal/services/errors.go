package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	types "github.com/yungbote/quizprep-backend/internal/domain"
	pkgerrors "github.com/yungbote/quizprep-backend/internal/pkg/errors"
	"github.com/yungbote/quizprep-backend/internal/platform/apierr"
)

func errNotFound(entity string) error {
	return apierr.New(http.StatusNotFound, entity+"_not_found", fmt.Errorf("%s: %w", entity, pkgerrors.ErrNotFound))
}

func errForbidden() error {
	return apierr.New(http.StatusForbidden, "forbidden", pkgerrors.ErrForbidden)
}

func errUnauthorized(err error) error {
	if err == nil {
		err = pkgerrors.ErrUnauthorized
	} else {
		err = fmt.Errorf("%w: %v", pkgerrors.ErrUnauthorized, err)
	}
	return apierr.New(http.StatusUnauthorized, "unauthorized", err)
}

func errInvalid(code, msg string) error {
	return apierr.New(http.StatusBadRequest, code, fmt.Errorf("%w: %s", pkgerrors.ErrInvalidArgument, msg))
}

func errConfiguration(err error) error {
	return apierr.New(http.StatusConflict, "quiz_has_no_questions", err)
}

func errIntegrity() error {
	return apierr.New(http.StatusUnprocessableEntity, "question_not_in_quiz", pkgerrors.ErrIntegrity)
}

func errInvalidTransition(from, to types.SessionStatus) error {
	return apierr.New(http.StatusConflict, "invalid_transition",
		fmt.Errorf("%w: %s -> %s", pkgerrors.ErrInvalidTransition, from, to))
}

func errSessionClosed() error {
	return apierr.New(http.StatusConflict, "session_closed", pkgerrors.ErrSessionClosed)
}

func errUnavailable(collaborator string) error {
	return apierr.New(http.StatusServiceUnavailable, collaborator+"_unavailable",
		fmt.Errorf("%s: %w", collaborator, pkgerrors.ErrUnavailable))
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
