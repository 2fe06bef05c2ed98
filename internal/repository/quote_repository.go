package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rDingyFourFour/handybob-sub000/internal/model"
)

type QuoteRepositoryInterface interface {
	LatestForJob(ctx context.Context, jobID int) (*model.Quote, error)
}

type QuoteRepository struct {
	DB *sql.DB
}

// LatestForJob returns the most recent quote of a job, or nil if it has none.
func (r *QuoteRepository) LatestForJob(ctx context.Context, jobID int) (*model.Quote, error) {
	query := `
        SELECT id, job_id, customer_id, status, total_cents, created_at, sent_at
        FROM quotes
        WHERE job_id=$1
        ORDER BY created_at DESC, id DESC
        LIMIT 1
    `
	var q model.Quote
	err := r.DB.QueryRowContext(ctx, query, jobID).Scan(
		&q.ID, &q.JobID, &q.CustomerID, &q.Status, &q.TotalCents, &q.CreatedAt, &q.SentAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, ClassifyPgError("failed to load quote", err)
	}
	return &q, nil
}

var _ QuoteRepositoryInterface = (*QuoteRepository)(nil)
