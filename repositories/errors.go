package repositories

import (
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openbankly/consent-backend/models"
)

func IsUniqueViolationError(err error) bool {
	var pgxErr *pgconn.PgError
	return errors.As(err, &pgxErr) && pgxErr.Code == pgerrcode.UniqueViolation
}

func IsDeadlockError(err error) bool {
	var pgxErr *pgconn.PgError
	return errors.As(err, &pgxErr) && pgxErr.Code == pgerrcode.DeadlockDetected
}

// The helpers below attach the store error taxonomy while keeping the pgx
// cause in the chain, so errors.Is works on both.

func insertionError(err error, msg string) error {
	// A unique violation is a caller mistake (duplicate id or key), not a
	// store failure.
	if IsUniqueViolationError(err) {
		return errors.Mark(errors.Wrap(err, msg), models.ConflictError)
	}
	return errors.Mark(errors.Wrap(err, msg), models.ErrInsertionFailure)
}

func retrievalError(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), models.ErrRetrievalFailure)
}

func updateError(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), models.ErrUpdateFailure)
}

func deletionError(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), models.ErrDeletionFailure)
}
