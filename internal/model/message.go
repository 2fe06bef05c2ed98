package model

import (
	"strings"
	"time"
)

// Channel is the delivery channel of a follow-up message.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// ParseChannel normalizes s and reports whether it names a known channel.
func ParseChannel(s string) (Channel, bool) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case ChannelSMS:
		return ChannelSMS, true
	case ChannelEmail:
		return ChannelEmail, true
	}
	return "", false
}

const (
	MessageStatusPending = "pending"
	MessageStatusSent    = "sent"
	MessageStatusFailed  = "failed"
)

type Message struct {
	ID         int        `db:"id" json:"id"`
	CustomerID int        `db:"customer_id" json:"customer_id"`
	JobID      *int       `db:"job_id" json:"job_id,omitempty"`
	QuoteID    *int       `db:"quote_id" json:"quote_id,omitempty"`
	InvoiceID  *int       `db:"invoice_id" json:"invoice_id,omitempty"`
	Channel    Channel    `db:"channel" json:"channel"`
	Status     string     `db:"status" json:"status"` // pending, sent, failed
	Body       string     `db:"body" json:"body"`
	LastError  string     `db:"last_error" json:"last_error,omitempty"`
	RetryCount int        `db:"retry_count" json:"retry_count"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	SentAt     *time.Time `db:"sent_at" json:"sent_at,omitempty"`
}

// CanRetry reports whether a failed message may be sent again.
func (m *Message) CanRetry() bool {
	return m.Status == MessageStatusFailed && m.RetryCount < 3
}
