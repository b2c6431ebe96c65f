/*
Package eligibility decides loan eligibility from a roster record and a
parsed policy.

PURPOSE:
  Evaluate is a pure function: the same inputs always give the same Verdict
  and nothing is mutated. It fails closed. Whenever a rule needed for a
  decision is missing, the answer is Escalate, never a silent approval or
  denial.

GATES (first failing gate ends evaluation):
  1. Record must carry salary and tenure            -> Escalate
  2. Tenure vs min_tenure_months, then min_tenure_years (both enforced)
                                                    -> NotEligible(tenure)
  3. Salary vs min_base_salary                      -> NotEligible(base_salary)
  4. Checklist: unanswered item                     -> Escalate
                answered false                      -> NotEligible(checklist)
  5. Requested amount (only if supplied):
       no cap derivable                             -> Escalate
       above cap                                    -> ConditionallyEligible(cap)
  6. Otherwise                                      -> Eligible

CAP:
  The minimum of every cap that is set: the absolute maximum, multiple x
  salary (months context only) and percent x salary / 100.

SEE ALSO:
  - bands.go: the fixed tenure-banded table used by chat
  - policy/extract.go: produces policy.Policy
*/
package eligibility

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-assistant/generic"
	"github.com/warp/loan-assistant/policy"
	"github.com/warp/loan-assistant/roster"
)

var (
	monthsPerYear = decimal.NewFromInt(12)
	hundred       = decimal.NewFromInt(100)
)

// Evaluate runs the gates in order. requested is optional; answers maps
// checklist items to the employee's confirmation.
func Evaluate(emp *roster.Record, requested decimal.NullDecimal, answers map[string]bool, p policy.Policy) Verdict {
	if emp == nil || !emp.Usable() {
		return Escalate()
	}
	salary := emp.BaseSalary.Decimal
	tenure := *emp.TenureMonths
	rules := p.Rules

	if rules.MinTenureMonths != nil && tenure < *rules.MinTenureMonths {
		return NotEligible(ReasonTenure, fmt.Sprintf("tenure %d months, minimum %d months", tenure, *rules.MinTenureMonths))
	}
	if rules.MinTenureYears.Valid {
		minMonths := rules.MinTenureYears.Decimal.Mul(monthsPerYear).RoundBank(0).IntPart()
		if int64(tenure) < minMonths {
			return NotEligible(ReasonTenure, fmt.Sprintf("tenure %d months, minimum %d months", tenure, minMonths))
		}
	}

	if rules.MinBaseSalary.Valid && salary.LessThan(rules.MinBaseSalary.Decimal) {
		return NotEligible(ReasonBaseSalary, fmt.Sprintf("base salary %s, minimum %s",
			generic.FormatMoney(salary), generic.FormatMoney(rules.MinBaseSalary.Decimal)))
	}

	for _, item := range p.Checklist {
		confirmed, answered := answers[item]
		if !answered {
			return Escalate()
		}
		if !confirmed {
			return NotEligible(ReasonChecklist, item)
		}
	}

	if requested.Valid {
		amountCap := ComputeAmountCap(salary, rules)
		if !amountCap.Valid {
			return Escalate()
		}
		if requested.Decimal.GreaterThan(amountCap.Decimal) {
			return ConditionallyEligible(amountCap.Decimal)
		}
	}

	return Eligible()
}

// ComputeAmountCap returns the smallest applicable cap, or an invalid
// NullDecimal when the policy sets none.
func ComputeAmountCap(baseSalary decimal.Decimal, rules policy.Rules) decimal.NullDecimal {
	caps := []decimal.NullDecimal{rules.MaxLoanAmount}

	if multiple, ok := rules.SalaryMultiple(); ok {
		caps = append(caps, generic.Some(multiple.Mul(baseSalary)))
	}
	if rules.MaxPercentOfSalary.Valid {
		caps = append(caps, generic.Some(baseSalary.Mul(rules.MaxPercentOfSalary.Decimal).Div(hundred)))
	}

	return generic.MinOf(caps...)
}
