package eligibility_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-assistant/eligibility"
	"github.com/warp/loan-assistant/generic"
	"github.com/warp/loan-assistant/policy"
	"github.com/warp/loan-assistant/roster"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func employee(tenureMonths int, salary int64) *roster.Record {
	return &roster.Record{
		Name:         "Test Employee",
		Key:          "test employee",
		BaseSalary:   generic.Some(decimal.NewFromInt(salary)),
		TenureMonths: &tenureMonths,
	}
}

func money(v int64) decimal.NullDecimal { return generic.Some(decimal.NewFromInt(v)) }

func intPtr(n int) *int { return &n }

func minTenure(months int) policy.Policy {
	return policy.Policy{Rules: policy.Rules{MinTenureMonths: intPtr(months)}}
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestEvaluate_ScenarioA_Eligible(t *testing.T) {
	// GIVEN: 36 months tenure, 50,000 salary, only min_tenure_months=12
	v := eligibility.Evaluate(employee(36, 50000), generic.None(), nil, minTenure(12))

	assert.Equal(t, eligibility.OutcomeEligible, v.Outcome)
	assert.Equal(t, "Eligible per current policy and records.", v.Message())
	assert.Equal(t, eligibility.SeveritySuccess, v.Severity())
}

func TestEvaluate_ScenarioB_TenureBelowMinimum(t *testing.T) {
	v := eligibility.Evaluate(employee(6, 50000), generic.None(), nil, minTenure(12))

	assert.Equal(t, eligibility.OutcomeNotEligible, v.Outcome)
	assert.Equal(t, eligibility.ReasonTenure, v.Reason)
	assert.Equal(t, "Not eligible (tenure below minimum as per policy).", v.Message())
	assert.Equal(t, eligibility.SeverityError, v.Severity())
}

func TestEvaluate_ScenarioC_UnansweredChecklistEscalates(t *testing.T) {
	p := policy.Policy{Checklist: []string{"Confirmed by supervisor"}}

	v := eligibility.Evaluate(employee(36, 50000), generic.None(), map[string]bool{}, p)

	assert.True(t, v.IsEscalation())
	assert.Equal(t, "Would you like to speak to a human?", v.Message())
	assert.Equal(t, eligibility.SeverityWarning, v.Severity())
}

func TestEvaluate_ScenarioD_ConditionallyEligible(t *testing.T) {
	// GIVEN: cap = min(100,000 absolute, 50% of 300,000)
	p := policy.Policy{Rules: policy.Rules{
		MaxLoanAmount:      money(100000),
		MaxPercentOfSalary: money(50),
	}}

	v := eligibility.Evaluate(employee(36, 300000), money(200000), nil, p)

	assert.Equal(t, eligibility.OutcomeConditionallyEligible, v.Outcome)
	require.True(t, v.Cap.Valid)
	assert.True(t, v.Cap.Decimal.Equal(decimal.NewFromInt(100000)))
	assert.Equal(t, "Conditionally eligible up to 100,000.00 (requested exceeds policy cap).", v.Message())
	assert.Equal(t, eligibility.SeverityInfo, v.Severity())
}

// =============================================================================
// GATE PROPERTIES
// =============================================================================

func TestEvaluate_TenureFailsRegardlessOfChecklistOrAmount(t *testing.T) {
	p := minTenure(12)
	p.Checklist = []string{"Confirmed by supervisor"}

	inputs := []struct {
		amount  decimal.NullDecimal
		answers map[string]bool
	}{
		{generic.None(), nil},
		{money(1), map[string]bool{"Confirmed by supervisor": true}},
		{money(999999), map[string]bool{"Confirmed by supervisor": false}},
	}
	for tenure := 0; tenure < 12; tenure++ {
		for _, in := range inputs {
			v := eligibility.Evaluate(employee(tenure, 50000), in.amount, in.answers, p)
			assert.Equal(t, eligibility.NotEligible(eligibility.ReasonTenure, v.Detail), v)
		}
	}
}

func TestEvaluate_TenureYearsAndMonthsBothEnforced(t *testing.T) {
	// GIVEN: 12 months minimum and 1.5 years (18 months) minimum
	p := policy.Policy{Rules: policy.Rules{
		MinTenureMonths: intPtr(12),
		MinTenureYears:  generic.Some(decimal.RequireFromString("1.5")),
	}}

	assert.Equal(t, eligibility.ReasonTenure, eligibility.Evaluate(employee(15, 50000), generic.None(), nil, p).Reason)
	assert.Equal(t, eligibility.OutcomeEligible, eligibility.Evaluate(employee(18, 50000), generic.None(), nil, p).Outcome)
}

func TestEvaluate_TenureYearsRoundsHalfToEven(t *testing.T) {
	// 0.375 years = 4.5 months -> 4
	p := policy.Policy{Rules: policy.Rules{MinTenureYears: generic.Some(decimal.RequireFromString("0.375"))}}

	assert.Equal(t, eligibility.OutcomeEligible, eligibility.Evaluate(employee(4, 50000), generic.None(), nil, p).Outcome)
	assert.Equal(t, eligibility.OutcomeNotEligible, eligibility.Evaluate(employee(3, 50000), generic.None(), nil, p).Outcome)
}

func TestEvaluate_SalaryFloor(t *testing.T) {
	p := policy.Policy{Rules: policy.Rules{MinBaseSalary: money(40000)}}

	v := eligibility.Evaluate(employee(36, 39999), generic.None(), nil, p)
	assert.Equal(t, eligibility.ReasonBaseSalary, v.Reason)
	assert.Equal(t, "Not eligible (base salary below minimum as per policy).", v.Message())

	v = eligibility.Evaluate(employee(36, 40000), generic.None(), nil, p)
	assert.Equal(t, eligibility.OutcomeEligible, v.Outcome)
}

func TestEvaluate_Checklist(t *testing.T) {
	items := []string{"No outstanding loan", "Confirmed by supervisor", "Not on notice"}
	p := policy.Policy{Checklist: items}
	emp := employee(36, 50000)

	t.Run("any missing answer escalates", func(t *testing.T) {
		for skip := range items {
			answers := map[string]bool{}
			for i, item := range items {
				if i != skip {
					answers[item] = true
				}
			}
			assert.True(t, eligibility.Evaluate(emp, generic.None(), answers, p).IsEscalation())
		}
	})

	t.Run("false answer names the item", func(t *testing.T) {
		answers := map[string]bool{items[0]: true, items[1]: false, items[2]: true}
		v := eligibility.Evaluate(emp, generic.None(), answers, p)

		assert.Equal(t, eligibility.ReasonChecklist, v.Reason)
		assert.Equal(t, "Confirmed by supervisor", v.Detail)
		assert.Equal(t, "Not eligible (failed policy checklist).", v.Message())
	})

	t.Run("missing before false escalates", func(t *testing.T) {
		answers := map[string]bool{items[1]: false}
		assert.True(t, eligibility.Evaluate(emp, generic.None(), answers, p).IsEscalation())
	})

	t.Run("all true passes", func(t *testing.T) {
		answers := map[string]bool{items[0]: true, items[1]: true, items[2]: true, "extra": false}
		assert.Equal(t, eligibility.OutcomeEligible, eligibility.Evaluate(emp, generic.None(), answers, p).Outcome)
	})
}

func TestEvaluate_AmountWithoutCapEscalates(t *testing.T) {
	v := eligibility.Evaluate(employee(36, 50000), money(1000), nil, minTenure(12))
	assert.True(t, v.IsEscalation())
}

func TestEvaluate_AmountWithinCapEligible(t *testing.T) {
	p := policy.Policy{Rules: policy.Rules{MaxLoanAmount: money(100000)}}

	v := eligibility.Evaluate(employee(36, 50000), money(100000), nil, p)
	assert.Equal(t, eligibility.OutcomeEligible, v.Outcome)
}

func TestEvaluate_MissingRecordFieldsEscalate(t *testing.T) {
	assert.True(t, eligibility.Evaluate(nil, generic.None(), nil, minTenure(12)).IsEscalation())

	noTenure := &roster.Record{Name: "X", BaseSalary: money(1)}
	assert.True(t, eligibility.Evaluate(noTenure, generic.None(), nil, minTenure(12)).IsEscalation())

	months := 24
	noSalary := &roster.Record{Name: "X", TenureMonths: &months}
	assert.True(t, eligibility.Evaluate(noSalary, generic.None(), nil, minTenure(12)).IsEscalation())
}

func TestEvaluate_Idempotent(t *testing.T) {
	p := policy.Policy{
		Rules:     policy.Rules{MaxLoanAmount: money(100000), MinTenureMonths: intPtr(6)},
		Checklist: []string{"Confirmed by supervisor"},
	}
	emp := employee(36, 80000)
	answers := map[string]bool{"Confirmed by supervisor": true}

	first := eligibility.Evaluate(emp, money(150000), answers, p)
	second := eligibility.Evaluate(emp, money(150000), answers, p)

	assert.Equal(t, first, second)
	assert.Equal(t, 36, *emp.TenureMonths)
	assert.Equal(t, map[string]bool{"Confirmed by supervisor": true}, answers)
}

// =============================================================================
// CAP
// =============================================================================

func TestComputeAmountCap(t *testing.T) {
	salary := decimal.NewFromInt(100000)

	t.Run("no caps", func(t *testing.T) {
		assert.False(t, eligibility.ComputeAmountCap(salary, policy.Rules{}).Valid)
	})

	t.Run("multiple ignored without months context", func(t *testing.T) {
		rules := policy.Rules{MaxSalaryMultiple: money(3)}
		assert.False(t, eligibility.ComputeAmountCap(salary, rules).Valid)
	})

	t.Run("minimum of all set caps", func(t *testing.T) {
		rules := policy.Rules{
			MaxLoanAmount:      money(500000),
			MaxSalaryMultiple:  money(3),
			MultipleContext:    policy.MultipleContextMonths,
			MaxPercentOfSalary: money(250),
		}
		got := eligibility.ComputeAmountCap(salary, rules)
		require.True(t, got.Valid)
		assert.True(t, got.Decimal.Equal(decimal.NewFromInt(250000)))
	})
}

func TestComputeAmountCap_Monotonic(t *testing.T) {
	multiple := policy.Rules{MaxSalaryMultiple: money(3), MultipleContext: policy.MultipleContextMonths}
	percent := policy.Rules{MaxPercentOfSalary: generic.Some(decimal.RequireFromString("37.5"))}
	absolute := policy.Rules{MaxLoanAmount: money(100000)}

	prev := map[string]decimal.Decimal{}
	for s := int64(0); s <= 500000; s += 25000 {
		salary := decimal.NewFromInt(s)
		for name, rules := range map[string]policy.Rules{"multiple": multiple, "percent": percent} {
			got := eligibility.ComputeAmountCap(salary, rules)
			require.True(t, got.Valid)
			if p, ok := prev[name]; ok {
				assert.False(t, got.Decimal.LessThan(p), "%s cap decreased at salary %d", name, s)
			}
			prev[name] = got.Decimal
		}
		got := eligibility.ComputeAmountCap(salary, absolute)
		assert.True(t, got.Decimal.Equal(decimal.NewFromInt(100000)))
	}
}
