package model

// OutcomeCode is the fixed vocabulary stored in calls.outcome_code. The
// database enforces the same list through calls_outcome_code_check.
type OutcomeCode string

const (
	OutcomeReachedScheduled     OutcomeCode = "reached_scheduled"
	OutcomeReachedDeclined      OutcomeCode = "reached_declined"
	OutcomeReachedNeedsFollowup OutcomeCode = "reached_needs_followup"
	OutcomeVoicemailLeft        OutcomeCode = "voicemail_left"
	OutcomeNoAnswer             OutcomeCode = "no_answer"
	OutcomeWrongNumber          OutcomeCode = "wrong_number"
	OutcomeOther                OutcomeCode = "other"
)

var OutcomeCodes = []OutcomeCode{
	OutcomeReachedScheduled,
	OutcomeReachedDeclined,
	OutcomeReachedNeedsFollowup,
	OutcomeVoicemailLeft,
	OutcomeNoAnswer,
	OutcomeWrongNumber,
	OutcomeOther,
}

func (c OutcomeCode) Valid() bool {
	for _, known := range OutcomeCodes {
		if c == known {
			return true
		}
	}
	return false
}
