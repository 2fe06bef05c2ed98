package model

import "time"

type Quote struct {
	ID         int        `db:"id" json:"id"`
	JobID      int        `db:"job_id" json:"job_id"`
	CustomerID int        `db:"customer_id" json:"customer_id"`
	Status     string     `db:"status" json:"status"` // draft, sent, accepted, declined
	TotalCents int64      `db:"total_cents" json:"total_cents"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	SentAt     *time.Time `db:"sent_at" json:"sent_at,omitempty"`
}
