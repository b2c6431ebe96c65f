package eligibility

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-assistant/generic"
)

// HumanEscalation is the reply whenever no safe determination can be made.
const HumanEscalation = "Would you like to speak to a human?"

// Outcome is the kind of verdict.
type Outcome string

const (
	OutcomeEligible              Outcome = "eligible"
	OutcomeConditionallyEligible Outcome = "conditionally_eligible"
	OutcomeNotEligible           Outcome = "not_eligible"
	OutcomeEscalate              Outcome = "escalate"
)

// Reason explains a NotEligible verdict.
type Reason string

const (
	ReasonTenure         Reason = "tenure"
	ReasonBaseSalary     Reason = "base_salary"
	ReasonChecklist      Reason = "checklist"
	ReasonReasonMismatch Reason = "reason_mismatch"
)

// Severity is how a front end should present the verdict.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Verdict is produced fresh per evaluation and never persisted.
type Verdict struct {
	Outcome Outcome
	Reason  Reason              // NotEligible only
	Detail  string              // NotEligible only; names the failed checklist item
	Cap     decimal.NullDecimal // ConditionallyEligible only
}

func Eligible() Verdict { return Verdict{Outcome: OutcomeEligible} }
func Escalate() Verdict { return Verdict{Outcome: OutcomeEscalate} }

func NotEligible(reason Reason, detail string) Verdict {
	return Verdict{Outcome: OutcomeNotEligible, Reason: reason, Detail: detail}
}

func ConditionallyEligible(amountCap decimal.Decimal) Verdict {
	return Verdict{Outcome: OutcomeConditionallyEligible, Cap: generic.Some(amountCap)}
}

// Message renders the verdict as the sentence shown to the employee.
func (v Verdict) Message() string {
	switch v.Outcome {
	case OutcomeEligible:
		return "Eligible per current policy and records."
	case OutcomeConditionallyEligible:
		return fmt.Sprintf("Conditionally eligible up to %s (requested exceeds policy cap).", generic.FormatMoney(v.Cap.Decimal))
	case OutcomeNotEligible:
		switch v.Reason {
		case ReasonTenure:
			return "Not eligible (tenure below minimum as per policy)."
		case ReasonBaseSalary:
			return "Not eligible (base salary below minimum as per policy)."
		case ReasonChecklist:
			return "Not eligible (failed policy checklist)."
		case ReasonReasonMismatch:
			return "Not eligible (loan reason not covered for your tenure band)."
		}
		return "Not eligible."
	default:
		return HumanEscalation
	}
}

// Severity maps the outcome onto the front end's four message styles.
func (v Verdict) Severity() Severity {
	switch v.Outcome {
	case OutcomeEligible:
		return SeveritySuccess
	case OutcomeConditionallyEligible:
		return SeverityInfo
	case OutcomeNotEligible:
		return SeverityError
	default:
		return SeverityWarning
	}
}

func (v Verdict) IsEscalation() bool {
	return v.Outcome == OutcomeEscalate
}
