package followup

import (
	"time"

	"github.com/rDingyFourFour/handybob-sub000/internal/model"
)

// Window is a half-open time range [Start, End). A zero bound is open.
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow covers the calendar day of now in now's location.
func DayWindow(now time.Time) Window {
	start := StartOfDay(now)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

// MatchParams selects already-sent messages. Zero ids are ignored.
type MatchParams struct {
	Channel   model.Channel
	JobID     int
	QuoteID   int
	InvoiceID int
	Window    Window
}

// FindMatchingMessage returns the newest message on p.Channel inside
// p.Window that shares a job, quote or invoice id with p. Failed messages
// never match. It returns nil when p names no ids.
func FindMatchingMessage(messages []model.Message, p MatchParams) *model.Message {
	if p.JobID == 0 && p.QuoteID == 0 && p.InvoiceID == 0 {
		return nil
	}

	var best *model.Message
	for i := range messages {
		m := &messages[i]
		if m.Channel != p.Channel || m.Status == model.MessageStatusFailed {
			continue
		}
		if !p.Window.Contains(m.CreatedAt) || !linked(m, p) {
			continue
		}
		if best == nil || m.CreatedAt.After(best.CreatedAt) ||
			(m.CreatedAt.Equal(best.CreatedAt) && m.ID > best.ID) {
			best = m
		}
	}
	return best
}

func linked(m *model.Message, p MatchParams) bool {
	return matchID(m.JobID, p.JobID) || matchID(m.QuoteID, p.QuoteID) || matchID(m.InvoiceID, p.InvoiceID)
}

func matchID(have *int, want int) bool {
	return want != 0 && have != nil && *have == want
}
