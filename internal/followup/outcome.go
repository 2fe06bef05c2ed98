package followup

import (
	"strings"
	"unicode"
)

// OutcomeClass is the classification of free-text call or invoice
// outcomes. Outcome text is matched once here and the rest of the
// package switches on the class.
type OutcomeClass string

const (
	OutcomeUnknown     OutcomeClass = "unknown"
	OutcomePaid        OutcomeClass = "paid"
	OutcomeDeclined    OutcomeClass = "declined"
	OutcomeAccepted    OutcomeClass = "accepted"
	OutcomeRescheduled OutcomeClass = "rescheduled"
	OutcomeWrongNumber OutcomeClass = "wrong_number"
	OutcomeNoContact   OutcomeClass = "no_contact"
	OutcomeReached     OutcomeClass = "reached"
	OutcomePending     OutcomeClass = "pending"
)

// Terminal reports whether no further follow-up makes sense.
func (c OutcomeClass) Terminal() bool {
	switch c {
	case OutcomePaid, OutcomeDeclined, OutcomeAccepted, OutcomeRescheduled, OutcomeWrongNumber:
		return true
	}
	return false
}

var (
	declinedWords    = wordSet("declined", "decline", "rejected", "cancelled", "canceled", "void")
	acceptedWords    = wordSet("accepted", "approved")
	rescheduledWords = wordSet("rescheduled", "scheduled", "booked")
	noContactWords   = wordSet("voicemail", "vm", "unanswered", "missed", "busy", "unreachable")
	reachedWords     = wordSet("reached", "talked", "spoke", "interested", "followup", "callback")
	pendingWords     = wordSet("sent", "draft", "pending", "unpaid", "overdue", "open")
	negations        = wordSet("not", "partially", "partial", "un")
)

// ClassifyOutcome maps outcome text (an outcome code, a status string or a
// free-form summary) to an OutcomeClass. Matching is on whole words so that
// "unpaid" or "not paid" never read as paid.
func ClassifyOutcome(text string) OutcomeClass {
	words := tokenize(text)
	if len(words) == 0 {
		return OutcomeUnknown
	}

	has := func(set map[string]struct{}) bool {
		for _, w := range words {
			if _, ok := set[w]; ok {
				return true
			}
		}
		return false
	}

	switch {
	case hasUnnegated(words, "paid"):
		return OutcomePaid
	case hasAnyUnnegated(words, declinedWords) || hasPhrase(words, "not", "interested") ||
		hasUnnegatedPhrase(words, "lost", "job"):
		return OutcomeDeclined
	case hasAnyUnnegated(words, acceptedWords):
		return OutcomeAccepted
	case hasUnnegated(words, "rescheduled") || hasUnnegated(words, "scheduled") || hasUnnegated(words, "booked"):
		return OutcomeRescheduled
	case hasUnnegatedPhrase(words, "wrong", "number"):
		return OutcomeWrongNumber
	case has(noContactWords) || hasPhrase(words, "no", "answer") || hasPhrase(words, "left", "message"):
		return OutcomeNoContact
	case has(reachedWords) || hasPhrase(words, "follow", "up"):
		return OutcomeReached
	case has(pendingWords) || hasPhrase(words, "not", "paid") || hasPhrase(words, "partially", "paid"):
		return OutcomePending
	case has(rescheduledWords):
		// only negated forms reach here, e.g. "not scheduled"
		return OutcomePending
	}
	return OutcomeUnknown
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// negatedAt reports whether one of the two words before i is a negation,
// so "not paid" and "not yet paid" both read as negated.
func negatedAt(words []string, i int) bool {
	for j := i - 1; j >= 0 && j >= i-2; j-- {
		if _, ok := negations[words[j]]; ok {
			return true
		}
	}
	return false
}

func hasUnnegated(words []string, target string) bool {
	for i, w := range words {
		if w == target && !negatedAt(words, i) {
			return true
		}
	}
	return false
}

func hasAnyUnnegated(words []string, set map[string]struct{}) bool {
	for i, w := range words {
		if _, ok := set[w]; ok && !negatedAt(words, i) {
			return true
		}
	}
	return false
}

func hasUnnegatedPhrase(words []string, first, second string) bool {
	for i := 0; i+1 < len(words); i++ {
		if words[i] == first && words[i+1] == second && !negatedAt(words, i) {
			return true
		}
	}
	return false
}

func hasPhrase(words []string, first, second string) bool {
	for i := 0; i+1 < len(words); i++ {
		if words[i] == first && words[i+1] == second {
			return true
		}
	}
	return false
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
