package eligibility

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-assistant/generic"
	"github.com/warp/loan-assistant/roster"
)

// Loan reason categories used by the built-in band table.
const (
	ReasonMedical         = "Medical"
	ReasonOwnWedding      = "Own wedding"
	ReasonChildWedding    = "Child's wedding"
	ReasonSiblingWedding  = "Sibling's wedding"
	ReasonEducation       = "Education"
	ReasonHomeRenovation  = "Home renovation"
	ReasonVehiclePurchase = "Vehicle purchase"
	ReasonHousePurchase   = "House purchase"
)

// Band is a tenure range with its allowed reasons and salary multiplier.
// A band with no reasons or a zero multiplier is ineligible.
type Band struct {
	Name       string
	MinMonths  int // inclusive
	MaxMonths  int // exclusive; 0 means no upper bound
	Multiplier decimal.Decimal
	Reasons    []string
}

func (b Band) Contains(months int) bool {
	return months >= b.MinMonths && (b.MaxMonths == 0 || months < b.MaxMonths)
}

func (b Band) Eligible() bool {
	return len(b.Reasons) > 0 && b.Multiplier.IsPositive()
}

// Allows matches reason against the band's list, ignoring case.
func (b Band) Allows(reason string) bool {
	for _, r := range b.Reasons {
		if strings.EqualFold(r, reason) {
			return true
		}
	}
	return false
}

// BandTable is the fixed eligibility table used when no document-derived
// policy is available.
type BandTable struct {
	Bands          []Band
	RepaymentShare decimal.Decimal // monthly repayment as a share of base salary
}

// DefaultBandTable is the built-in table: <1y, 1-3y, 3-8y, 8y+.
func DefaultBandTable() BandTable {
	early := []string{ReasonMedical, ReasonOwnWedding}
	mid := append(append([]string{}, early...),
		ReasonChildWedding, ReasonSiblingWedding, ReasonEducation, ReasonHomeRenovation)
	senior := append(append([]string{}, mid...), ReasonVehiclePurchase, ReasonHousePurchase)

	return BandTable{
		Bands: []Band{
			{Name: "under 1 year", MinMonths: 0, MaxMonths: 12, Multiplier: decimal.Zero},
			{Name: "1-3 years", MinMonths: 12, MaxMonths: 36, Multiplier: decimal.NewFromInt(3), Reasons: early},
			{Name: "3-8 years", MinMonths: 36, MaxMonths: 96, Multiplier: decimal.NewFromInt(6), Reasons: mid},
			{Name: "8+ years", MinMonths: 96, Multiplier: decimal.NewFromInt(10), Reasons: senior},
		},
		RepaymentShare: decimal.RequireFromString("0.30"),
	}
}

// Validate checks the bands are ordered and do not overlap.
func (t BandTable) Validate() error {
	if len(t.Bands) == 0 {
		return errors.New("band table is empty")
	}
	if !t.RepaymentShare.IsPositive() || t.RepaymentShare.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("repayment share %s must be in (0, 1]", t.RepaymentShare)
	}
	for i, b := range t.Bands {
		if b.MinMonths < 0 || (b.MaxMonths != 0 && b.MaxMonths <= b.MinMonths) {
			return fmt.Errorf("band %q: invalid range [%d, %d)", b.Name, b.MinMonths, b.MaxMonths)
		}
		if b.Multiplier.IsNegative() {
			return fmt.Errorf("band %q: negative multiplier", b.Name)
		}
		if i == 0 {
			continue
		}
		prev := t.Bands[i-1]
		if prev.MaxMonths == 0 || b.MinMonths < prev.MaxMonths {
			return fmt.Errorf("band %q overlaps %q", b.Name, prev.Name)
		}
	}
	return nil
}

// Find returns the band containing months.
func (t BandTable) Find(months int) (Band, bool) {
	for _, b := range t.Bands {
		if b.Contains(months) {
			return b, true
		}
	}
	return Band{}, false
}

// Categories lists every reason in the table, first-seen order.
func (t BandTable) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range t.Bands {
		for _, r := range b.Reasons {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}

// BandDecision is the banded table's answer for one employee and reason.
type BandDecision struct {
	Verdict          Verdict
	Band             Band
	Reason           string
	MaxAmount        decimal.Decimal
	MonthlyRepayment decimal.Decimal
}

// Decide looks up the employee's band and checks the reason against it.
func (t BandTable) Decide(emp *roster.Record, reason string) BandDecision {
	d := BandDecision{Verdict: Escalate(), Reason: reason}
	if emp == nil || !emp.Usable() {
		return d
	}

	band, ok := t.Find(*emp.TenureMonths)
	if !ok {
		return d
	}
	d.Band = band

	if !band.Eligible() {
		d.Verdict = NotEligible(ReasonTenure, "tenure band "+band.Name+" has no loan entitlement")
		return d
	}
	if !band.Allows(reason) {
		d.Verdict = NotEligible(ReasonReasonMismatch, fmt.Sprintf("%s is not covered for tenure %s", reason, band.Name))
		return d
	}

	salary := emp.BaseSalary.Decimal
	d.Verdict = Eligible()
	d.MaxAmount = band.Multiplier.Mul(salary)
	d.MonthlyRepayment = t.RepaymentShare.Mul(salary)
	return d
}

// Message renders the decision for chat.
func (d BandDecision) Message(share decimal.Decimal) string {
	if d.Verdict.Outcome != OutcomeEligible {
		return d.Verdict.Message()
	}
	return fmt.Sprintf("Eligible for a %s loan (tenure %s): up to %s (%sx base salary). Monthly repayment: %s (%s%% of base salary).",
		d.Reason, d.Band.Name,
		generic.FormatMoney(d.MaxAmount), d.Band.Multiplier.String(),
		generic.FormatMoney(d.MonthlyRepayment), share.Mul(hundred).String())
}
