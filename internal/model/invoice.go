package model

import "time"

const (
	InvoiceStatusDraft = "draft"
	InvoiceStatusSent  = "sent"
	InvoiceStatusPaid  = "paid"
	InvoiceStatusVoid  = "void"
)

type Invoice struct {
	ID         int        `db:"id" json:"id"`
	JobID      int        `db:"job_id" json:"job_id"`
	QuoteID    *int       `db:"quote_id" json:"quote_id,omitempty"`
	CustomerID int        `db:"customer_id" json:"customer_id"`
	Status     string     `db:"status" json:"status"`
	TotalCents int64      `db:"total_cents" json:"total_cents"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	SentAt     *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	DueAt      *time.Time `db:"due_at" json:"due_at,omitempty"`
	PaidAt     *time.Time `db:"paid_at" json:"paid_at,omitempty"`
}

// IsOpen reports whether the invoice still expects a payment.
func (i *Invoice) IsOpen() bool {
	return i.Status != InvoiceStatusPaid && i.Status != InvoiceStatusVoid && i.PaidAt == nil
}
