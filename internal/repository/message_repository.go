package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	appErrors "github.com/rDingyFourFour/handybob-sub000/internal/errors"
	"github.com/rDingyFourFour/handybob-sub000/internal/model"
)

type MessageRepositoryInterface interface {
	CreateUnlessSent(ctx context.Context, msg *model.Message, since, until time.Time) (bool, error)
	GetByID(ctx context.Context, id int) (*model.Message, error)
	ListForJobSince(ctx context.Context, jobID int, since time.Time) ([]model.Message, error)
	ListForInvoiceSince(ctx context.Context, invoiceID int, since time.Time) ([]model.Message, error)
	UpdateStatus(ctx context.Context, id int, status, lastError string, sentAt *time.Time) error
}

type MessageRepository struct {
	DB *sql.DB
}

const messageColumns = `id, customer_id, job_id, quote_id, invoice_id, channel, status, body,
        last_error, retry_count, created_at, updated_at, sent_at`

func scanMessage(s rowScanner) (*model.Message, error) {
	var m model.Message
	var channel string
	err := s.Scan(&m.ID, &m.CustomerID, &m.JobID, &m.QuoteID, &m.InvoiceID, &channel, &m.Status, &m.Body,
		&m.LastError, &m.RetryCount, &m.CreatedAt, &m.UpdatedAt, &m.SentAt)
	if err != nil {
		return nil, err
	}
	m.Channel = model.Channel(channel)
	return &m, nil
}

// followupLockClass namespaces the advisory locks taken per job.
const followupLockClass = 7301

// CreateUnlessSent inserts msg unless a non-failed message on the same
// channel, linked to the same job, quote or invoice, was created in
// [since, until). It returns false when such a message exists. Callers for
// the same job are serialized by a transaction-scoped advisory lock.
func (r *MessageRepository) CreateUnlessSent(ctx context.Context, msg *model.Message, since, until time.Time) (bool, error) {
	if msg.JobID == nil {
		return false, appErrors.NewValidation("message is not linked to a job")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.UpdatedAt = msg.CreatedAt
	if msg.Status == "" {
		msg.Status = model.MessageStatusPending
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, ClassifyPgError("failed to begin message transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, followupLockClass, *msg.JobID); err != nil {
		return false, ClassifyPgError("failed to lock job messages", err)
	}

	var exists bool
	err = tx.QueryRowContext(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM messages
            WHERE channel=$1 AND status <> 'failed'
              AND created_at >= $2 AND created_at < $3
              AND (job_id=$4 OR quote_id=$5 OR invoice_id=$6)
        )`,
		string(msg.Channel), since, until, msg.JobID, msg.QuoteID, msg.InvoiceID,
	).Scan(&exists)
	if err != nil {
		return false, ClassifyPgError("failed to check existing messages", err)
	}
	if exists {
		return false, nil
	}

	query := `
        INSERT INTO messages
        (customer_id, job_id, quote_id, invoice_id, channel, status, body, last_error, retry_count, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id
    `
	err = tx.QueryRowContext(ctx, query,
		msg.CustomerID,
		msg.JobID,
		msg.QuoteID,
		msg.InvoiceID,
		string(msg.Channel),
		msg.Status,
		msg.Body,
		msg.LastError,
		msg.RetryCount,
		msg.CreatedAt,
		msg.UpdatedAt,
	).Scan(&msg.ID)
	if err != nil {
		return false, ClassifyPgError("failed to create message", err)
	}
	if err := tx.Commit(); err != nil {
		return false, ClassifyPgError("failed to commit message", err)
	}
	return true, nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id int) (*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id=$1`
	m, err := scanMessage(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("message", id)
		}
		return nil, ClassifyPgError("failed to load message", err)
	}
	return m, nil
}

func (r *MessageRepository) ListForJobSince(ctx context.Context, jobID int, since time.Time) ([]model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE job_id=$1 AND created_at >= $2
        ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, jobID, since)
}

func (r *MessageRepository) ListForInvoiceSince(ctx context.Context, invoiceID int, since time.Time) ([]model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE invoice_id=$1 AND created_at >= $2
        ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, invoiceID, since)
}

func (r *MessageRepository) list(ctx context.Context, query string, args ...any) ([]model.Message, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ClassifyPgError("failed to list messages", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, ClassifyPgError("failed to scan message", err)
		}
		messages = append(messages, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, ClassifyPgError("failed to list messages", err)
	}
	return messages, nil
}

// UpdateStatus records a delivery attempt. Failed attempts bump retry_count.
func (r *MessageRepository) UpdateStatus(ctx context.Context, id int, status, lastError string, sentAt *time.Time) error {
	query := `
        UPDATE messages
        SET status=$1,
            last_error=$2,
            sent_at=$3,
            retry_count=retry_count + CASE WHEN $1 = 'failed' THEN 1 ELSE 0 END,
            updated_at=NOW()
        WHERE id=$4
    `
	res, err := r.DB.ExecContext(ctx, query, status, lastError, sentAt, id)
	if err != nil {
		return ClassifyPgError("failed to update message status", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.NewNotFound("message", id)
	}
	return nil
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)
