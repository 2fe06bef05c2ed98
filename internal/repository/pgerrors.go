package repository

import (
	"errors"

	"github.com/lib/pq"

	appErrors "github.com/rDingyFourFour/handybob-sub000/internal/errors"
)

// OutcomeConstraint is the check constraint guarding calls.outcome_code.
const OutcomeConstraint = "calls_outcome_code_check"

const (
	pgCheckViolation  pq.ErrorCode = "23514"
	pgUndefinedColumn pq.ErrorCode = "42703"
	pgUndefinedTable  pq.ErrorCode = "42P01"
)

// ClassifyPgError wraps a database failure in an AppError. Errors that mean
// the database lags behind the code (an outcome check constraint rejecting a
// code the code considers valid, or a missing column/table) become
// schema_out_of_date; everything else is persistence_error.
func ClassifyPgError(message string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgCheckViolation:
			if pqErr.Constraint == OutcomeConstraint {
				return appErrors.NewSchemaOutOfDate("database rejected the outcome code; run pending migrations", err)
			}
		case pgUndefinedColumn, pgUndefinedTable:
			return appErrors.NewSchemaOutOfDate("database schema is missing required columns; run pending migrations", err)
		}
	}
	return appErrors.NewPersistence(message, err)
}
