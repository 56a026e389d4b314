package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/voltaic/energy-cms/internal/core/domain"
)

const (
	uniqueViolation = "23505"

	classDataException       = "22"
	classIntegrityConstraint = "23"
)

// wrapErr translates a driver error into the domain taxonomy. Rejected data
// (SQLSTATE classes 22 and 23) is a validation failure; anything else the
// store reports is an outage.
func wrapErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, domain.ErrConflict, pgErr.ConstraintName)
		case strings.HasPrefix(pgErr.Code, classIntegrityConstraint):
			return fmt.Errorf("%s: %w", op, constraintError(pgErr))
		case strings.HasPrefix(pgErr.Code, classDataException):
			return fmt.Errorf("%s: %w", op, domain.NewValidationError("invalid value: %s", pgErr.Message))
		}
	}

	return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
}

func constraintError(pgErr *pgconn.PgError) error {
	switch {
	case pgErr.ColumnName != "":
		return domain.NewValidationError("%s violates a constraint", pgErr.ColumnName)
	case pgErr.ConstraintName != "":
		return domain.NewValidationError("record violates constraint %s", pgErr.ConstraintName)
	}
	return domain.NewValidationError("record violates a constraint")
}
