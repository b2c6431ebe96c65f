package generic

import (
	"errors"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - decimal values, absence modelled as decimal.NullDecimal
// =============================================================================

var numberPattern = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

// ErrNoNumber is returned by ParseMoney when the input holds no digits.
var ErrNoNumber = errors.New("no number found")

// Some wraps a value as a present NullDecimal.
func Some(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// None is the absent NullDecimal.
func None() decimal.NullDecimal {
	return decimal.NullDecimal{}
}

// NewMoney converts a float, typically from JSON or a CLI flag.
func NewMoney(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// ParseMoney drops thousands separators and returns the first decimal number
// in s. Currency symbols and surrounding text are ignored.
func ParseMoney(s string) (decimal.Decimal, error) {
	m := numberPattern.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return decimal.Zero, ErrNoNumber
	}
	return decimal.NewFromString(m)
}

// FormatMoney renders d with thousands separators and two decimals,
// e.g. 100000 -> "100,000.00".
func FormatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return humanize.FormatFloat("#,###.##", f)
}

// MinOf returns the smallest of the present values, or None if none is set.
func MinOf(values ...decimal.NullDecimal) decimal.NullDecimal {
	out := None()
	for _, v := range values {
		if !v.Valid {
			continue
		}
		if !out.Valid || v.Decimal.LessThan(out.Decimal) {
			out = v
		}
	}
	return out
}
