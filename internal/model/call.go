package model

import "time"

type Call struct {
	ID                int        `db:"id" json:"id"`
	JobID             int        `db:"job_id" json:"job_id"`
	CustomerID        int        `db:"customer_id" json:"customer_id"`
	Direction         string     `db:"direction" json:"direction"` // inbound, outbound
	Summary           string     `db:"summary" json:"summary"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	ReachedCustomer   *bool      `db:"reached_customer" json:"reached_customer,omitempty"`
	OutcomeCode       *string    `db:"outcome_code" json:"outcome_code,omitempty"`
	OutcomeNotes      *string    `db:"outcome_notes" json:"outcome_notes,omitempty"`
	OutcomeRecordedAt *time.Time `db:"outcome_recorded_at" json:"outcome_recorded_at,omitempty"`
}

// Outcome is the fields a user edits after a call.
type Outcome struct {
	ReachedCustomer *bool
	Code            OutcomeCode
	Notes           string
	RecordedAt      time.Time
}
