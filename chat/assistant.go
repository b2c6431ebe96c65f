/*
assistant.go - Turn handling for the chat front end

PURPOSE:
  Resolves a free-text message into (employee, loan reason) and answers with
  an eligibility decision. The chat is strictly limited: anything it cannot
  map onto the employee sheet and the policy is handed to a human.

FLOW PER TURN:
  1. No roster                              -> escalation message
  2. Extract name and reason; newly resolved fields overwrite pending ones
  3. Strong name cue that matches nobody    -> not-found reply
  4. Turn resolved nothing and has no loan keyword -> escalation message
  5. Both fields known                      -> decision
       document policy present: eligibility.Evaluate (no amount, no answers)
       otherwise:               tenure-banded table
  6. One field known                        -> ask for the other
  7. Otherwise                              -> ask for both

SEE ALSO:
  - extract.go: name and reason heuristics
  - eligibility/bands.go: the banded table
*/
package chat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/warp/loan-assistant/eligibility"
	"github.com/warp/loan-assistant/generic"
	"github.com/warp/loan-assistant/policy"
	"github.com/warp/loan-assistant/roster"
)

var loanKeywords = regexp.MustCompile(`(?i)\b(check|eligible|eligibility|loan|apply|application)\b`)

// Assistant answers chat turns against one knowledge snapshot.
type Assistant struct {
	Roster *roster.Roster
	Policy *policy.Policy // document policy; nil falls back to Bands
	Bands  eligibility.BandTable
}

// Respond handles one user message and returns the next session state and
// the reply. Both turns are appended to the returned transcript.
func (a Assistant) Respond(s Session, msg string) (Session, string) {
	next, reply := a.respond(s, msg)
	return next.with(
		Turn{Role: RoleUser, Content: msg},
		Turn{Role: RoleAssistant, Content: reply},
	), reply
}

func (a Assistant) respond(s Session, msg string) (Session, string) {
	if a.Roster.Len() == 0 {
		return s, eligibility.HumanEscalation
	}

	name := ExtractName(msg, a.Roster.Names())
	reason := ExtractReason(msg, a.Bands.Categories())

	if name.Resolved() {
		s.PendingName = name.Name
	}
	if reason != "" {
		s.PendingReason = reason
	}

	if name.NotFound() {
		return s, notFoundReply(name.Candidate)
	}

	progressed := name.Resolved() || reason != "" || loanKeywords.MatchString(msg)
	if !progressed {
		return s, eligibility.HumanEscalation
	}

	switch {
	case s.Complete():
		return s, a.decide(s.PendingName, s.PendingReason)
	case s.PendingName != "":
		return s, fmt.Sprintf("Thanks, %s. What is the loan for? Supported reasons: %s.",
			s.PendingName, strings.Join(a.Bands.Categories(), ", "))
	case s.PendingReason != "":
		return s, fmt.Sprintf("Noted: %s. What is your name as it appears in the employee sheet?", s.PendingReason)
	default:
		return s, "To check loan eligibility, tell me your full name and the reason for the loan. I can only assess using the loan policy and the employee sheet."
	}
}

func (a Assistant) decide(name, reason string) string {
	rec, ok := a.Roster.Lookup(name)
	if !ok {
		return notFoundReply(name)
	}

	if a.Policy != nil {
		v := eligibility.Evaluate(&rec, generic.None(), nil, *a.Policy)
		return v.Message()
	}

	d := a.Bands.Decide(&rec, reason)
	return d.Message(a.Bands.RepaymentShare)
}

func notFoundReply(name string) string {
	return fmt.Sprintf("I could not find %q in the employee sheet. Please check the spelling of your full name.", name)
}
