package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgExclusionViolation  = "23P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

// FromDB classifies an error returned by gorm / pgx.
func FromDB(err error) error {
	if err == nil {
		return nil
	}

	var be BusinessError
	if errors.As(err, &be) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return BusinessError{Kind: KindNotFound, Code: "not_found", Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgExclusionViolation:
			return BusinessError{
				Kind:    KindConflict,
				Code:    "duplicate",
				Message: pgErr.ConstraintName,
				Err:     err,
			}
		case pgForeignKeyViolation:
			return BusinessError{
				Kind:    KindValidation,
				Code:    "invalid_reference",
				Message: pgErr.ConstraintName,
				Err:     err,
			}
		case pgCheckViolation:
			return BusinessError{
				Kind:    KindValidation,
				Code:    "check_violation",
				Message: pgErr.ConstraintName,
				Err:     err,
			}
		}
	}

	return ErrStorage(err)
}
