/*
Package policy extracts eligibility rules from policy document text.

PURPOSE:
  Loan policies arrive as prose. This package turns the extracted text into
  a Rules struct and a checklist. It is deliberately conservative: a rule
  that cannot be read unambiguously stays unset. Nothing is inferred across
  rules (a percentage cap is never derived from a multiple, and so on).

PIPELINE:
  1. Normalize: collapse spaces/tabs, map bullet glyphs (including the
     mojibake left by PDF text layers) to "- ", split and trim lines.
  2. Checklist: bullets under short capitalized headings mentioning
     checklist / eligibility / qualifications / criteria (checklist.go).
  3. Numeric rules: independent patterns over the joined text. Each one
     produces an optional value; one failing never affects another.

MONTHS-OF-SALARY GATE:
  max_salary_multiple is only recorded together with
  multiple_context = "months", and only for the explicit phrasing
  "N months [of] [base] salary". Rules.SalaryMultiple() refuses any other
  context.

MATCH ORDER:
  The salary multiple takes the last match in the text. Every other rule
  takes the first.

SEE ALSO:
  - rules.go: Rules, Policy
  - eligibility/evaluate.go: consumes Policy
*/
package policy

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-assistant/generic"
)

// Extraction is the result of parsing one document.
type Extraction struct {
	Policy

	// Skipped holds *generic.RuleError values for rules that matched but
	// could not be read. They are for logs only.
	Skipped []error
}

// =============================================================================
// NORMALIZATION
// =============================================================================

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)

	glyphReplacer = strings.NewReplacer(
		"â€¢", "- ", // bullet read as cp1252
		"â–ª", "- ",
		"â€\u201c", "- ", // en dash read as cp1252
		"ï‚§", "- ",
		"ï‚·", "- ",
		"\uf0b7", "- ", // Symbol font bullets
		"\uf0a7", "- ",
		"•", "- ",
		"▪", "- ",
		"–", "- ",
	)
)

func normalizeLines(text string) []string {
	norm := horizontalSpace.ReplaceAllString(text, " ")
	norm = glyphReplacer.Replace(norm)
	norm = strings.ReplaceAll(norm, "\r\n", "\n")
	norm = strings.ReplaceAll(norm, "\r", "\n")

	lines := strings.Split(norm, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// =============================================================================
// NUMERIC RULES
// =============================================================================

// rulePattern is one independent extraction rule.
type rulePattern struct {
	name    string
	pattern *regexp.Regexp
	last    bool // use the last match instead of the first
	apply   func(r *Rules, capture string) error
}

const (
	tenurePrefix = `(?:min(?:imum)?\s+tenure(?:\s+of|\s*[:\-])?|at\s+least)\s*`
	currency     = `(?:\$|rs\.?|pkr|usd)?\s*`
)

var rulePatterns = []rulePattern{
	{
		name:    "min_tenure_years",
		pattern: regexp.MustCompile(`(?i)` + tenurePrefix + `(\d+(?:\.\d+)?)\s*(?:years?|yrs?)\b`),
		apply: func(r *Rules, s string) error {
			d, err := decimal.NewFromString(s)
			r.MinTenureYears = decimal.NullDecimal{Decimal: d, Valid: err == nil}
			return err
		},
	},
	{
		name:    "min_tenure_months",
		pattern: regexp.MustCompile(`(?i)` + tenurePrefix + `(\d+)\s*(?:months?|mths?)\b`),
		apply: func(r *Rules, s string) error {
			n, err := strconv.Atoi(s)
			if err != nil {
				return err
			}
			r.MinTenureMonths = &n
			return nil
		},
	},
	{
		name:    "max_salary_multiple",
		pattern: regexp.MustCompile(`(?i)(?:up\s+to|maximum\s+of)?\s*(\d+(?:\.\d+)?)\s*(?:months?['’]?|months?\s+of)\s+(?:base\s+)?salary`),
		last:    true,
		apply:   applySalaryMultiple,
	},
	{
		name:    "max_percent_of_salary",
		pattern: regexp.MustCompile(`(?i)(?:max(?:imum)?\s*)?(\d+(?:\.\d+)?)\s*%\s*(?:of\s+)?(?:base\s+)?salary`),
		apply: func(r *Rules, s string) error {
			d, err := decimal.NewFromString(s)
			r.MaxPercentOfSalary = decimal.NullDecimal{Decimal: d, Valid: err == nil}
			return err
		},
	},
	{
		name:    "max_loan_amount",
		pattern: regexp.MustCompile(`(?i)(?:max(?:imum)?\s*loan\s*amount|\bcap)\s*[:\-]?\s*` + currency + `([0-9][0-9,.]*)`),
		apply: func(r *Rules, s string) error {
			d, err := parseAmount(s)
			r.MaxLoanAmount = decimal.NullDecimal{Decimal: d, Valid: err == nil}
			return err
		},
	},
	{
		name:    "min_base_salary",
		pattern: regexp.MustCompile(`(?i)min(?:imum)?\s*base\s*salary\s*[:\-]?\s*` + currency + `([0-9][0-9,.]*)`),
		apply: func(r *Rules, s string) error {
			d, err := parseAmount(s)
			r.MinBaseSalary = decimal.NullDecimal{Decimal: d, Valid: err == nil}
			return err
		},
	},
}

// applySalaryMultiple is the only place a salary multiple is recorded, and it
// always records the months context with it.
func applySalaryMultiple(r *Rules, s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	r.MaxSalaryMultiple = generic.Some(d)
	r.MultipleContext = MultipleContextMonths
	return nil
}

// parseAmount strips thousands separators and a trailing sentence period.
// "1.000.000" style values stay unreadable.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimRight(strings.ReplaceAll(s, ",", ""), ".")
	return decimal.NewFromString(s)
}

func (rp rulePattern) capture(text string) (string, bool) {
	if !rp.last {
		m := rp.pattern.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return m[1], true
	}
	all := rp.pattern.FindAllStringSubmatch(text, -1)
	if len(all) == 0 {
		return "", false
	}
	return all[len(all)-1][1], true
}

// =============================================================================
// EXTRACT
// =============================================================================

// Extract parses policy text. Empty text yields an empty Extraction.
func Extract(text string) Extraction {
	var out Extraction
	if strings.TrimSpace(text) == "" {
		return out
	}

	lines := normalizeLines(text)
	out.Checklist = extractChecklist(lines)

	joined := strings.Join(lines, " ")
	for _, rp := range rulePatterns {
		raw, ok := rp.capture(joined)
		if !ok {
			continue
		}
		var rules Rules
		if err := rp.apply(&rules, raw); err != nil {
			out.Skipped = append(out.Skipped, &generic.RuleError{Rule: rp.name, Raw: raw})
			continue
		}
		out.Rules = merge(out.Rules, rules)
	}
	return out
}

// merge copies the fields set in src over dst.
func merge(dst, src Rules) Rules {
	if src.MinTenureMonths != nil {
		dst.MinTenureMonths = src.MinTenureMonths
	}
	if src.MinTenureYears.Valid {
		dst.MinTenureYears = src.MinTenureYears
	}
	if src.MaxLoanAmount.Valid {
		dst.MaxLoanAmount = src.MaxLoanAmount
	}
	if src.MaxSalaryMultiple.Valid {
		dst.MaxSalaryMultiple = src.MaxSalaryMultiple
		dst.MultipleContext = src.MultipleContext
	}
	if src.MaxPercentOfSalary.Valid {
		dst.MaxPercentOfSalary = src.MaxPercentOfSalary
	}
	if src.MinBaseSalary.Valid {
		dst.MinBaseSalary = src.MinBaseSalary
	}
	return dst
}
