package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSplitIntoInstallments(t *testing.T) {
	tests := []struct {
		name          string
		total         decimal.Decimal
		months        int
		expectedFirst decimal.Decimal
		expectedLast  decimal.Decimal
	}{
		{
			name:          "even split",
			total:         decimal.NewFromInt(11000),
			months:        10,
			expectedFirst: decimal.NewFromInt(1100),
			expectedLast:  decimal.NewFromInt(1100),
		},
		{
			name:          "last month absorbs remainder",
			total:         decimal.NewFromInt(100),
			months:        3,
			expectedFirst: decimal.RequireFromString("33.33"),
			expectedLast:  decimal.RequireFromString("33.34"),
		},
		{
			name:          "single month",
			total:         decimal.RequireFromString("250.50"),
			months:        1,
			expectedFirst: decimal.RequireFromString("250.50"),
			expectedLast:  decimal.RequireFromString("250.50"),
		},
		{
			name:          "inflated quotient runs the tail down to zero",
			total:         decimal.RequireFromString("0.50"),
			months:        60,
			expectedFirst: decimal.RequireFromString("0.01"),
			expectedLast:  decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amounts := SplitIntoInstallments(tt.total, tt.months)
			assert.Len(t, amounts, tt.months)
			assert.True(t, amounts[0].Equal(tt.expectedFirst),
				"first amount: expected %v, got %v", tt.expectedFirst, amounts[0])
			assert.True(t, amounts[len(amounts)-1].Equal(tt.expectedLast),
				"last amount: expected %v, got %v", tt.expectedLast, amounts[len(amounts)-1])

			sum := decimal.Zero
			for _, a := range amounts {
				sum = sum.Add(a)
			}
			assert.True(t, sum.Equal(tt.total), "schedule must sum to total exactly: %v != %v", sum, tt.total)
		})
	}
}

func TestSplitIntoInstallmentsNeverNegative(t *testing.T) {
	// Penny totals over long terms round the monthly quotient up, which
	// previously drove the remainder-absorbing final entry below zero.
	totals := []string{"0.50", "0.01", "0.59", "1.10", "0"}
	for _, raw := range totals {
		total := decimal.RequireFromString(raw)
		for months := 1; months <= 60; months++ {
			amounts := SplitIntoInstallments(total, months)
			sum := decimal.Zero
			for i, a := range amounts {
				assert.False(t, a.IsNegative(),
					"total=%s months=%d: entry %d is negative (%v)", raw, months, i, a)
				sum = sum.Add(a)
			}
			assert.True(t, sum.Equal(total),
				"total=%s months=%d: schedule sums to %v", raw, months, sum)
		}
	}
}

func TestSplitIntoInstallmentsRemainderBound(t *testing.T) {
	// The remainder absorbed by the last month stays within one currency
	// unit of the regular monthly amount.
	total := decimal.RequireFromString("9999.97")
	for months := 1; months <= 36; months++ {
		amounts := SplitIntoInstallments(total, months)
		monthly := amounts[0]
		last := amounts[len(amounts)-1]
		diff := last.Sub(monthly).Abs()
		assert.True(t, diff.LessThanOrEqual(decimal.NewFromInt(1)),
			"months=%d: remainder %v exceeds one currency unit", months, diff)
	}
}

func TestSplitIntoInstallmentsInvalidMonths(t *testing.T) {
	assert.Nil(t, SplitIntoInstallments(decimal.NewFromInt(100), 0))
	assert.Nil(t, SplitIntoInstallments(decimal.NewFromInt(100), -5))
}

func TestCalculateDueDate(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		monthNumber int
		expected    time.Time
	}{
		{"first month", 1, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)},
		{"sixth month", 6, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)},
		{"crosses year boundary", 12, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateDueDate(start, tt.monthNumber))
		})
	}
}
