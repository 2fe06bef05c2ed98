package repository

import (
	"context"
	"database/sql"
	"errors"

	appErrors "github.com/rDingyFourFour/handybob-sub000/internal/errors"
	"github.com/rDingyFourFour/handybob-sub000/internal/model"
)

type JobRepositoryInterface interface {
	GetByID(ctx context.Context, id int) (*model.Job, error)
	ListOpen(ctx context.Context, afterID, limit int) ([]model.Job, error)
}

type JobRepository struct {
	DB *sql.DB
}

const jobColumns = `id, customer_id, title, status, created_at, updated_at`

func scanJob(s rowScanner) (*model.Job, error) {
	var j model.Job
	if err := s.Scan(&j.ID, &j.CustomerID, &j.Title, &j.Status, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id int) (*model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id=$1`
	j, err := scanJob(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("job", id)
		}
		return nil, ClassifyPgError("failed to load job", err)
	}
	return j, nil
}

// ListOpen returns up to limit open jobs with id greater than afterID in
// ascending id order. Pass the last id of one page to fetch the next.
func (r *JobRepository) ListOpen(ctx context.Context, afterID, limit int) ([]model.Job, error) {
	if limit < 1 {
		limit = 100
	}
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE status=$1 AND id > $2 ORDER BY id ASC LIMIT $3`
	rows, err := r.DB.QueryContext(ctx, query, model.JobStatusOpen, afterID, limit)
	if err != nil {
		return nil, ClassifyPgError("failed to list jobs", err)
	}
	defer rows.Close()

	jobs := []model.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, ClassifyPgError("failed to scan job", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, ClassifyPgError("failed to list jobs", err)
	}
	return jobs, nil
}

var _ JobRepositoryInterface = (*JobRepository)(nil)
