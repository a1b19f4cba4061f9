// Package postgres maps PostgreSQL error codes onto the domain
// sentinel errors.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"

	domerr "github.com/aiverse/datafabric/pkg/domain/errors"
)

// Classify translates a pgx/pgconn error into a domain error.
//
// Unique violations become ErrConflict, foreign key violations become
// ErrMissing (the referenced row is absent), connection problems become
// ErrUnavailable. Anything else passes through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s", domerr.ErrConflict, pgErr.Detail)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s", domerr.ErrMissing, pgErr.Detail)
		case pgerrcode.ConnectionException, pgerrcode.ConnectionFailure,
			pgerrcode.ConnectionDoesNotExist, pgerrcode.CannotConnectNow:
			return fmt.Errorf("%w: %s", domerr.ErrUnavailable, pgErr.Message)
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if pgconn.Timeout(err) {
		return fmt.Errorf("%w: %s", domerr.ErrUnavailable, err)
	}
	return err
}
