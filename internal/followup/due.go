package followup

import (
	"fmt"
	"time"
)

type DueStatus string

const (
	DueOverdue   DueStatus = "overdue"
	DueToday     DueStatus = "due-today"
	DueScheduled DueStatus = "scheduled"
	DueNone      DueStatus = "none"
)

// BaseKind names which timestamp anchored the due date.
type BaseKind string

const (
	BaseInvoice BaseKind = "invoice"
	BaseCall    BaseKind = "call"
	BaseQuote   BaseKind = "quote"
)

// Subject is the per-request input to ComputeDueInfo. It is never stored.
type Subject struct {
	QuoteCreatedAt       *time.Time
	CallCreatedAt        *time.Time
	InvoiceDueAt         *time.Time
	RecommendedDelayDays *int
	Now                  time.Time
}

// RawSubject is a Subject whose dates are still ISO-8601 strings.
type RawSubject struct {
	QuoteCreatedAt       string
	CallCreatedAt        string
	InvoiceDueAt         string
	RecommendedDelayDays *int
}

// ParseSubject converts raw strings, dropping any date that does not parse.
func ParseSubject(raw RawSubject, now time.Time) Subject {
	return Subject{
		QuoteCreatedAt:       parseOptional(raw.QuoteCreatedAt),
		CallCreatedAt:        parseOptional(raw.CallCreatedAt),
		InvoiceDueAt:         parseOptional(raw.InvoiceDueAt),
		RecommendedDelayDays: raw.RecommendedDelayDays,
		Now:                  now,
	}
}

type DueInfo struct {
	Status   DueStatus  `json:"due_status"`
	Label    string     `json:"due_label"`
	Base     BaseKind   `json:"base,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	DiffDays int        `json:"diff_days"`
}

var doneInfo = DueInfo{Status: DueNone, Label: "Done"}

// BaseDate picks the anchor timestamp: invoice due date, then call date,
// then quote creation date.
func BaseDate(s Subject) (time.Time, BaseKind, bool) {
	switch {
	case s.InvoiceDueAt != nil && !s.InvoiceDueAt.IsZero():
		return *s.InvoiceDueAt, BaseInvoice, true
	case s.CallCreatedAt != nil && !s.CallCreatedAt.IsZero():
		return *s.CallCreatedAt, BaseCall, true
	case s.QuoteCreatedAt != nil && !s.QuoteCreatedAt.IsZero():
		return *s.QuoteCreatedAt, BaseQuote, true
	}
	return time.Time{}, "", false
}

func (e Engine) ComputeDueInfo(s Subject) DueInfo {
	base, kind, ok := BaseDate(s)
	if !ok {
		return doneInfo
	}
	now := e.now(s.Now)

	delay := e.defaultDelay()
	if s.RecommendedDelayDays != nil {
		delay = *s.RecommendedDelayDays
	}
	if delay < 0 {
		delay = 0
	}

	due := base.In(now.Location()).AddDate(0, 0, delay)
	diff := CalendarDaysBetween(now, due)

	info := DueInfo{Base: kind, DueDate: &due, DiffDays: diff}
	switch {
	case diff < 0:
		info.Status = DueOverdue
		info.Label = fmt.Sprintf("Overdue by %s", pluralDays(-diff))
	case diff == 0:
		info.Status = DueToday
		info.Label = "Due today"
	case diff == 1:
		info.Status = DueScheduled
		info.Label = "Due tomorrow"
	default:
		info.Status = DueScheduled
		info.Label = fmt.Sprintf("Due in %s", pluralDays(diff))
	}
	return info
}

// ComputeDueInfoRaw parses raw and evaluates it at now.
func (e Engine) ComputeDueInfoRaw(raw RawSubject, now time.Time) DueInfo {
	return e.ComputeDueInfo(ParseSubject(raw, now))
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
