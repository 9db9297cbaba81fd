package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitIntoInstallments divides total into months currency-rounded amounts
// where the final amount absorbs the rounding remainder, so the slice always
// sums back to total exactly. Each amount is capped at what is still owed:
// when half-up rounding inflates the monthly quotient, the tail of the
// schedule runs down to zero instead of the final entry going negative.
func SplitIntoInstallments(total decimal.Decimal, months int) []decimal.Decimal {
	if months < 1 {
		return nil
	}
	monthly := total.DivRound(decimal.NewFromInt(int64(months)), 2)
	amounts := make([]decimal.Decimal, months)
	remaining := total
	for i := 0; i < months-1; i++ {
		amount := monthly
		if amount.GreaterThan(remaining) {
			amount = remaining
		}
		amounts[i] = amount
		remaining = remaining.Sub(amount)
	}
	amounts[months-1] = remaining
	return amounts
}

// CalculateDueDate returns the due date for a month number, counted in
// calendar months from the contract start. Month 1 is due one month in.
func CalculateDueDate(startDate time.Time, monthNumber int) time.Time {
	return startDate.AddDate(0, monthNumber, 0)
}
