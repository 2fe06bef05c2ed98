package model

import "time"

const (
	JobStatusOpen      = "open"
	JobStatusCompleted = "completed"
	JobStatusCancelled = "cancelled"
)

type Job struct {
	ID         int        `db:"id" json:"id"`
	CustomerID int        `db:"customer_id" json:"customer_id"`
	Title      string     `db:"title" json:"title"`
	Status     string     `db:"status" json:"status"` // open, completed, cancelled
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
