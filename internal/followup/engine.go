// Package followup decides when a job, quote or invoice needs a follow-up
// and how to send it. Everything here is a pure function of its inputs:
// callers pass the evaluation instant explicitly and get plain values back,
// so results can be recomputed on every request without caching.
package followup

import "time"

const (
	DefaultDelayDays    = 3
	DefaultSMSThreshold = 2
)

// Engine holds the tunable constants of the follow-up rules.
type Engine struct {
	// DefaultDelayDays is added to the base date when no override is given.
	DefaultDelayDays int
	// SMSThresholdDays is the largest elapsed-day count that still prefers sms.
	SMSThresholdDays int
	// Clock supplies "now" for subjects that leave it zero.
	Clock func() time.Time
}

func NewEngine() Engine {
	return Engine{
		DefaultDelayDays: DefaultDelayDays,
		SMSThresholdDays: DefaultSMSThreshold,
		Clock:            time.Now,
	}
}

func (e Engine) now(t time.Time) time.Time {
	if !t.IsZero() {
		return t
	}
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}

func (e Engine) defaultDelay() int {
	if e.DefaultDelayDays < 0 {
		return 0
	}
	return e.DefaultDelayDays
}
