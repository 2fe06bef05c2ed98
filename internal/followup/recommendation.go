package followup

import (
	"fmt"

	"github.com/rDingyFourFour/handybob-sub000/internal/model"
)

type RecommendationInput struct {
	// Outcome is a call outcome code, an invoice or quote status, or free text.
	Outcome string
	// DaysSince counts days since the quote was created or the invoice sent.
	DaysSince *int
	// ChannelHint is an optional "sms"/"email" suggestion from a drafting model.
	ChannelHint string
}

type Recommendation struct {
	Channel            *model.Channel `json:"recommended_channel"`
	DelayDays          *int           `json:"recommended_delay_days"`
	TimingLabel        *string        `json:"recommended_timing_label"`
	ShouldSkipFollowup bool           `json:"should_skip_followup"`
	Outcome            OutcomeClass   `json:"outcome_class"`
}

// CadenceDays is how many days after the base date a follow-up is due for
// the given outcome. ok is false when the engine default applies.
func (e Engine) CadenceDays(class OutcomeClass) (days int, ok bool) {
	switch class {
	case OutcomeNoContact:
		return 1, true
	case OutcomeReached:
		return 2, true
	}
	return e.defaultDelay(), false
}

func (e Engine) DeriveRecommendation(in RecommendationInput) Recommendation {
	class := ClassifyOutcome(in.Outcome)
	if class.Terminal() {
		return Recommendation{ShouldSkipFollowup: true, Outcome: class}
	}

	channel := e.pickChannel(in.ChannelHint, in.DaysSince)

	delay, _ := e.CadenceDays(class)
	if in.DaysSince != nil {
		elapsed := *in.DaysSince
		if elapsed < 0 {
			elapsed = 0
		}
		delay -= elapsed
	}
	if delay < 0 {
		delay = 0
	}
	label := timingLabel(delay)

	return Recommendation{
		Channel:     &channel,
		DelayDays:   &delay,
		TimingLabel: &label,
		Outcome:     class,
	}
}

func (e Engine) pickChannel(hint string, daysSince *int) model.Channel {
	if c, ok := model.ParseChannel(hint); ok {
		return c
	}
	if daysSince == nil || *daysSince <= e.SMSThresholdDays {
		return model.ChannelSMS
	}
	return model.ChannelEmail
}

func timingLabel(delay int) string {
	switch delay {
	case 0:
		return "Follow up now"
	case 1:
		return "Follow up tomorrow"
	}
	return fmt.Sprintf("Follow up in %d days", delay)
}
