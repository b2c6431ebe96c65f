package roster_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/loan-assistant/roster"
)

func TestTenureMonths(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   int
		wantOK bool
	}{
		{"years and months", "2 years 3 months", 27, true},
		{"abbreviated", "1 yr 6 mths", 18, true},
		{"years only", "4 Years", 48, true},
		{"fractional years text", "2.5 years", 30, true},
		{"months only", "18 months", 18, true},
		{"mo suffix", "7 mo", 7, true},
		{"bare integer is months", "36", 36, true},
		{"bare float integer is months", "36.0", 36, true},
		{"bare fractional small is years", "3.5", 42, true},
		{"bare fractional above limit is months", "14.5", 14, true},
		{"ten is months", "10", 10, true},
		{"zero", "0", 0, true},
		{"empty", "", 0, false},
		{"garbage", "since forever", 0, false},
		{"negative", "-3", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := roster.TenureMonths(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestBaseSalary(t *testing.T) {
	got, ok := roster.BaseSalary("$50,000.00")
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(50000)))

	got, ok = roster.BaseSalary("PKR 120,500")
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(120500)))

	_, ok = roster.BaseSalary("confidential")
	assert.False(t, ok)
}
