package followup

import (
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-8601 / RFC 3339 strings, Postgres text
// timestamps and bare dates. Values without a zone are read as UTC.
// It never fails loudly: anything unparseable reports ok=false.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.IsZero() {
				return time.Time{}, false
			}
			return t, true
		}
	}
	return time.Time{}, false
}

func parseOptional(s string) *time.Time {
	t, ok := ParseTimestamp(s)
	if !ok {
		return nil
	}
	return &t
}

// CalendarDaysBetween returns the number of calendar days from `from` to
// `to`, both projected onto midnight in to's location. The result is
// negative when from falls on a later day.
func CalendarDaysBetween(from, to time.Time) int {
	loc := to.Location()
	f := from.In(loc)
	fromDay := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int((toDay.Unix() - fromDay.Unix()) / 86400)
}

// StartOfDay returns local midnight of t in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
