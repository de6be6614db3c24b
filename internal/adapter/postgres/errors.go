package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/lexilens/internal/domain"
)

// SQLSTATE codes that have a domain meaning.
var constraintErrors = map[string]error{
	"23505": domain.ErrAlreadyExists, // unique_violation
	"23503": domain.ErrNotFound,      // foreign_key_violation
	"23514": domain.ErrValidation,    // check_violation
	"23502": domain.ErrValidation,    // not_null_violation
}

// MapError annotates err with the entity and its key (id or headword) and
// translates it into a domain error where one applies. Context cancellation
// and unknown driver errors keep their original chain.
func MapError(err error, entity, key string) error {
	if err == nil {
		return nil
	}

	cause := err
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
	case errors.Is(err, pgx.ErrNoRows):
		cause = domain.ErrNotFound
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if mapped, ok := constraintErrors[pgErr.Code]; ok {
				cause = mapped
			}
		}
	}
	return fmt.Errorf("%s %s: %w", entity, key, cause)
}
