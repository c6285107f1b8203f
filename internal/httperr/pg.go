package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

// IsExclusionConflict reports whether err comes from the appointments
// overlap exclusion constraint.
func IsExclusionConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
