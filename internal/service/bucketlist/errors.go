package bucketlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bucketlist/internal/domain"

	"github.com/google/uuid"
)

// Test seams.
var (
	now = time.Now

	newCommentID = func() (string, error) {
		id, err := uuid.NewV7()
		if err != nil {
			return "", err
		}
		return id.String(), nil
	}
)

// classify converts a collaborator failure into one of the domain kinds.
// Errors that already carry a kind pass through untouched; anything else,
// including an expired deadline, becomes a remote failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrRevisionConflict),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrUpload),
		errors.Is(err, domain.ErrRemote):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s timed out: %w: %w", op, domain.ErrRemote, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrRemote, err)
	}
}
