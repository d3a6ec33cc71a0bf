package postgres

import (
	"errors"
	"fmt"

	"bucketlist/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the document store reacts to
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// documentError maps a driver failure on one document onto the domain
// kinds. id may be empty when the statement had none yet (insert).
func documentError(op, collection, id string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return &domain.NotFoundError{Message: fmt.Sprintf("%s %s not found", collection, id)}
	case pgCode(err) == codeUniqueViolation:
		return &domain.ConflictError{
			Message:      fmt.Sprintf("%s %s already exists", collection, id),
			ResourceType: collection,
			ResourceID:   id,
		}
	case pgCode(err) == codeSerializationFailure, pgCode(err) == codeDeadlockDetected:
		return fmt.Errorf("%s %s/%s: %w: %w", op, collection, id, domain.ErrRevisionConflict, err)
	default:
		return fmt.Errorf("%s %s/%s: %w", op, collection, id, err)
	}
}
