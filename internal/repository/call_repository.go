package repository

import (
	"context"
	"database/sql"
	"errors"

	appErrors "github.com/rDingyFourFour/handybob-sub000/internal/errors"
	"github.com/rDingyFourFour/handybob-sub000/internal/model"
)

type CallRepositoryInterface interface {
	GetByID(ctx context.Context, id int) (*model.Call, error)
	LatestForJob(ctx context.Context, jobID int) (*model.Call, error)
	UpdateOutcome(ctx context.Context, callID int, outcome model.Outcome) error
}

type CallRepository struct {
	DB *sql.DB
}

const callColumns = `id, job_id, customer_id, direction, summary, created_at,
        reached_customer, outcome_code, outcome_notes, outcome_recorded_at`

func scanCall(s rowScanner) (*model.Call, error) {
	var c model.Call
	err := s.Scan(&c.ID, &c.JobID, &c.CustomerID, &c.Direction, &c.Summary, &c.CreatedAt,
		&c.ReachedCustomer, &c.OutcomeCode, &c.OutcomeNotes, &c.OutcomeRecordedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CallRepository) GetByID(ctx context.Context, id int) (*model.Call, error) {
	query := `SELECT ` + callColumns + ` FROM calls WHERE id=$1`
	c, err := scanCall(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("call", id)
		}
		return nil, ClassifyPgError("failed to load call", err)
	}
	return c, nil
}

// LatestForJob returns the most recent call of a job, or nil if it has none.
func (r *CallRepository) LatestForJob(ctx context.Context, jobID int) (*model.Call, error) {
	query := `SELECT ` + callColumns + ` FROM calls WHERE job_id=$1 ORDER BY created_at DESC, id DESC LIMIT 1`
	c, err := scanCall(r.DB.QueryRowContext(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, ClassifyPgError("failed to load call", err)
	}
	return c, nil
}

func (r *CallRepository) UpdateOutcome(ctx context.Context, callID int, outcome model.Outcome) error {
	query := `
        UPDATE calls
        SET reached_customer=$1, outcome_code=$2, outcome_notes=$3, outcome_recorded_at=$4
        WHERE id=$5
    `
	var notes sql.NullString
	if outcome.Notes != "" {
		notes = sql.NullString{String: outcome.Notes, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, query,
		outcome.ReachedCustomer, string(outcome.Code), notes, outcome.RecordedAt, callID)
	if err != nil {
		return ClassifyPgError("failed to save call outcome", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ClassifyPgError("failed to save call outcome", err)
	}
	if n == 0 {
		return appErrors.NewNotFound("call", callID)
	}
	return nil
}

var _ CallRepositoryInterface = (*CallRepository)(nil)
