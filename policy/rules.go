package policy

import (
	"github.com/shopspring/decimal"
)

// MultipleContext records how a salary multiple was phrased. Only
// MultipleContextMonths ("N months of salary") is trusted.
type MultipleContext string

const (
	MultipleContextNone   MultipleContext = ""
	MultipleContextMonths MultipleContext = "months"
)

// Rules are the numeric thresholds found in a policy document. An invalid
// (unset) field means the rule was not found: it is neither enforced nor
// inferred from another rule.
type Rules struct {
	MinTenureMonths    *int
	MinTenureYears     decimal.NullDecimal
	MaxLoanAmount      decimal.NullDecimal
	MaxSalaryMultiple  decimal.NullDecimal
	MultipleContext    MultipleContext
	MaxPercentOfSalary decimal.NullDecimal
	MinBaseSalary      decimal.NullDecimal
}

// SalaryMultiple returns the multiple only when it was stated as months of
// salary. A bare number near "salary" may be a count of applications or
// instalments, so any other context is ignored.
func (r Rules) SalaryMultiple() (decimal.Decimal, bool) {
	if r.MultipleContext != MultipleContextMonths || !r.MaxSalaryMultiple.Valid {
		return decimal.Zero, false
	}
	return r.MaxSalaryMultiple.Decimal, true
}

// Any reports whether at least one rule was found.
func (r Rules) Any() bool {
	return r.MinTenureMonths != nil ||
		r.MinTenureYears.Valid ||
		r.MaxLoanAmount.Valid ||
		r.MaxSalaryMultiple.Valid ||
		r.MaxPercentOfSalary.Valid ||
		r.MinBaseSalary.Valid
}

// Policy is a parsed policy document: numeric rules plus the checklist of
// conditions the applicant must confirm.
type Policy struct {
	Rules     Rules
	Checklist []string
}

// HasAnyRule reports whether the document yielded anything enforceable.
func (p Policy) HasAnyRule() bool {
	return len(p.Checklist) > 0 || p.Rules.Any()
}

// RulesDoc is a flat, serializable view of Rules. Unset rules are nil.
type RulesDoc struct {
	MinTenureMonths    *int     `json:"min_tenure_months" yaml:"min_tenure_months"`
	MinTenureYears     *float64 `json:"min_tenure_years" yaml:"min_tenure_years"`
	MaxLoanAmount      *float64 `json:"max_loan_amount" yaml:"max_loan_amount"`
	MaxSalaryMultiple  *float64 `json:"max_salary_multiple" yaml:"max_salary_multiple"`
	MultipleContext    *string  `json:"multiple_context" yaml:"multiple_context"`
	MaxPercentOfSalary *float64 `json:"max_percent_of_salary" yaml:"max_percent_of_salary"`
	MinBaseSalary      *float64 `json:"min_base_salary" yaml:"min_base_salary"`
}

// Doc converts Rules to its serializable view.
func (r Rules) Doc() RulesDoc {
	doc := RulesDoc{
		MinTenureMonths:    r.MinTenureMonths,
		MinTenureYears:     floatPtr(r.MinTenureYears),
		MaxLoanAmount:      floatPtr(r.MaxLoanAmount),
		MaxSalaryMultiple:  floatPtr(r.MaxSalaryMultiple),
		MaxPercentOfSalary: floatPtr(r.MaxPercentOfSalary),
		MinBaseSalary:      floatPtr(r.MinBaseSalary),
	}
	if r.MultipleContext != MultipleContextNone {
		ctx := string(r.MultipleContext)
		doc.MultipleContext = &ctx
	}
	return doc
}

func floatPtr(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f, _ := d.Decimal.Float64()
	return &f
}
