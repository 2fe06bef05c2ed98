package repository

import (
	"context"
	"database/sql"
	"errors"

	appErrors "github.com/rDingyFourFour/handybob-sub000/internal/errors"
	"github.com/rDingyFourFour/handybob-sub000/internal/model"
)

type InvoiceRepositoryInterface interface {
	GetByID(ctx context.Context, id int) (*model.Invoice, error)
	LatestOpenForJob(ctx context.Context, jobID int) (*model.Invoice, error)
}

type InvoiceRepository struct {
	DB *sql.DB
}

const invoiceColumns = `id, job_id, quote_id, customer_id, status, total_cents, created_at, sent_at, due_at, paid_at`

func scanInvoice(s rowScanner) (*model.Invoice, error) {
	var i model.Invoice
	err := s.Scan(&i.ID, &i.JobID, &i.QuoteID, &i.CustomerID, &i.Status, &i.TotalCents,
		&i.CreatedAt, &i.SentAt, &i.DueAt, &i.PaidAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id int) (*model.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id=$1`
	inv, err := scanInvoice(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("invoice", id)
		}
		return nil, ClassifyPgError("failed to load invoice", err)
	}
	return inv, nil
}

// LatestOpenForJob returns the newest unpaid, non-void invoice, or nil.
func (r *InvoiceRepository) LatestOpenForJob(ctx context.Context, jobID int) (*model.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices
        WHERE job_id=$1 AND status NOT IN ('paid', 'void') AND paid_at IS NULL
        ORDER BY created_at DESC, id DESC
        LIMIT 1`
	inv, err := scanInvoice(r.DB.QueryRowContext(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, ClassifyPgError("failed to load invoice", err)
	}
	return inv, nil
}

var _ InvoiceRepositoryInterface = (*InvoiceRepository)(nil)
