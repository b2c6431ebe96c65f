package roster

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-assistant/generic"
)

var (
	yearsPattern  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:year|yr|y)s?`)
	monthsPattern = regexp.MustCompile(`(\d+)\s*(?:month|mth|mo)s?`)
)

// fractionalYearsLimit is the largest bare number read as years. A bare
// "3.5" is 3.5 years; a bare "36" is 36 months.
const fractionalYearsLimit = 10

// TenureMonths converts a raw tenure cell into whole months.
//
// Accepted forms:
//
//	"2 years 3 months" -> 27
//	"4 yrs"            -> 48
//	"18 months"        -> 18
//	"36"               -> 36 (bare integers are months)
//	"3.5"              -> 42 (bare fractional values up to 10 are years)
//
// Anything else is reported as unusable rather than guessed.
func TenureMonths(raw string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}

	y := yearsPattern.FindStringSubmatch(s)
	m := monthsPattern.FindStringSubmatch(s)

	switch {
	case y != nil && m != nil:
		years, _ := strconv.ParseFloat(y[1], 64)
		months, _ := strconv.Atoi(m[1])
		return int(math.RoundToEven(years*12 + float64(months))), true
	case y != nil:
		years, _ := strconv.ParseFloat(y[1], 64)
		return int(math.RoundToEven(years * 12)), true
	case m != nil:
		months, err := strconv.Atoi(m[1])
		return months, err == nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	if v > 0 && v <= fractionalYearsLimit && v != math.Trunc(v) {
		return int(math.RoundToEven(v * 12)), true
	}
	return int(v), true
}

// BaseSalary reads the first decimal number in a salary cell, ignoring
// thousands separators and currency symbols.
func BaseSalary(raw string) (decimal.Decimal, bool) {
	d, err := generic.ParseMoney(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
