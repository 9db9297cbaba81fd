package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmahadybd/installment-engine/internal/domain"
	customError "github.com/fmahadybd/installment-engine/pkg/errors"
)

func mustTerms(t *testing.T, principal, otherCost, advance string, months int, rate string) domain.InstallmentTerms {
	t.Helper()
	terms, err := domain.NewInstallmentTerms(
		decimal.RequireFromString(principal),
		decimal.RequireFromString(otherCost),
		decimal.RequireFromString(advance),
		months,
		decimal.RequireFromString(rate),
	)
	require.NoError(t, err)
	return terms
}

func TestNewInstallmentTermsReportsEveryViolation(t *testing.T) {
	_, err := domain.NewInstallmentTerms(
		decimal.NewFromInt(-1),
		decimal.NewFromInt(-2),
		decimal.NewFromInt(-3),
		0,
		decimal.NewFromInt(-4),
	)
	require.Error(t, err)

	var verr *customError.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, customError.ErrInvalidTerms)
	assert.Len(t, verr.Violations, 5)

	fields := make([]string, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, fields, []string{
		"principal", "other_cost", "advance_paid", "term_months", "interest_rate_percent",
	})
}

func TestNewInstallmentTermsTermCap(t *testing.T) {
	_, err := domain.NewInstallmentTerms(
		decimal.NewFromInt(10000), decimal.Zero, decimal.Zero,
		61, decimal.NewFromInt(10),
	)
	require.Error(t, err)

	var verr *customError.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Violations, 1)
	assert.Equal(t, "term_months", verr.Violations[0].Field)
}

func TestTotalWithInterest(t *testing.T) {
	tests := []struct {
		name     string
		terms    domain.InstallmentTerms
		expected string
	}{
		{
			name:     "ten percent on principal only",
			terms:    mustTerms(t, "10000", "0", "0", 10, "10"),
			expected: "11000",
		},
		{
			name:     "interest applies to principal plus other cost",
			terms:    mustTerms(t, "10000", "2000", "0", 10, "10"),
			expected: "13200",
		},
		{
			name:     "zero rate is exactly the base",
			terms:    mustTerms(t, "10000", "500", "0", 10, "0"),
			expected: "10500",
		},
		{
			name:     "fractional result rounds half-up to currency unit",
			terms:    mustTerms(t, "99.99", "0", "0", 3, "12.5"),
			expected: "112.49", // 99.99 * 1.125 = 112.48875
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.terms.TotalWithInterest()
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"expected %s, got %v", tt.expected, got)
		})
	}
}

func TestTotalWithInterestNeverBelowBase(t *testing.T) {
	rates := []string{"0", "0.5", "7.25", "15", "100"}
	for _, rate := range rates {
		terms := mustTerms(t, "12345.67", "89.10", "0", 12, rate)
		base := terms.Principal.Add(terms.OtherCost)
		assert.True(t, terms.TotalWithInterest().GreaterThanOrEqual(base.Round(2)),
			"rate %s: total %v fell below base %v", rate, terms.TotalWithInterest(), base)
	}
}

func TestMonthlyInstallmentAmount(t *testing.T) {
	tests := []struct {
		name     string
		terms    domain.InstallmentTerms
		expected string
	}{
		{
			name:     "no advance",
			terms:    mustTerms(t, "10000", "0", "0", 10, "10"),
			expected: "1100",
		},
		{
			name:     "advance reduces the monthly amount",
			terms:    mustTerms(t, "10000", "0", "1000", 10, "10"),
			expected: "1000",
		},
		{
			name:     "advance above total floors at zero",
			terms:    mustTerms(t, "100", "0", "500", 6, "0"),
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.terms.MonthlyInstallmentAmount()
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"expected %s, got %v", tt.expected, got)
		})
	}
}

func TestMonthlyTimesTermWithinOneRoundingUnit(t *testing.T) {
	terms := mustTerms(t, "1000", "0", "0", 7, "13")
	remaining := terms.RemainingAfterAdvance()
	reconstructed := terms.MonthlyInstallmentAmount().Mul(decimal.NewFromInt(int64(terms.TermMonths)))
	diff := reconstructed.Sub(remaining).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.RequireFromString("0.07")),
		"cumulative rounding drift %v exceeds half a unit per month", diff)
	assert.True(t, diff.LessThanOrEqual(decimal.NewFromInt(1)),
		"cumulative rounding drift %v exceeds one currency unit", diff)
}

func TestQueryFunctionsAreIdempotent(t *testing.T) {
	account := domain.NewInstallmentAccount("INST-001", mustTerms(t, "10000", "0", "0", 10, "10"))
	_, err := account.RecordPayment(decimal.NewFromInt(1100), "agent-1", "", time.Now())
	require.NoError(t, err)

	assert.True(t, account.TotalWithInterest().Equal(account.TotalWithInterest()))
	assert.True(t, account.RemainingBalance().Equal(account.RemainingBalance()))
	assert.True(t, account.ProgressPercentage().Equal(account.ProgressPercentage()))
}

func TestRecordPaymentScenarios(t *testing.T) {
	// Scenario C: one payment of 1100 against 10000 @ 10% over 10 months.
	account := domain.NewInstallmentAccount("INST-C", mustTerms(t, "10000", "0", "0", 10, "10"))
	_, err := account.RecordPayment(decimal.NewFromInt(1100), "agent-1", "first collection", time.Now())
	require.NoError(t, err)
	assert.True(t, account.RemainingBalance().Equal(decimal.NewFromInt(9900)),
		"remaining: %v", account.RemainingBalance())
	assert.True(t, account.ProgressPercentage().Equal(decimal.NewFromInt(10)),
		"progress: %v", account.ProgressPercentage())

	// Scenario D: a 20000 payment is rejected, balance untouched.
	fresh := domain.NewInstallmentAccount("INST-D", mustTerms(t, "10000", "0", "0", 10, "10"))
	_, err = fresh.RecordPayment(decimal.NewFromInt(20000), "agent-1", "", time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrExceedsRemainingBalance)
	assert.True(t, fresh.RemainingBalance().Equal(decimal.NewFromInt(11000)))
	assert.Empty(t, fresh.Payments)

	// Scenario E: zero and negative amounts are rejected.
	for _, bad := range []string{"0", "-50"} {
		_, err = fresh.RecordPayment(decimal.RequireFromString(bad), "agent-1", "", time.Now())
		require.Error(t, err, "amount %s", bad)
		assert.ErrorIs(t, err, customError.ErrInvalidPaymentAmount)
	}
	assert.Empty(t, fresh.Payments)

	// Scenario F: paying the full 11000 lands exactly on zero.
	full := domain.NewInstallmentAccount("INST-F", mustTerms(t, "10000", "0", "0", 10, "10"))
	for i := 0; i < 10; i++ {
		_, err = full.RecordPayment(decimal.NewFromInt(1100), "agent-1", "", time.Now())
		require.NoError(t, err)
	}
	assert.True(t, full.RemainingBalance().IsZero())
	assert.True(t, full.ProgressPercentage().Equal(decimal.NewFromInt(100)))
	assert.True(t, full.FullyPaid())
}

func TestRecordPaymentMonotonicity(t *testing.T) {
	account := domain.NewInstallmentAccount("INST-M", mustTerms(t, "5000", "0", "0", 5, "20"))
	prevRemaining := account.RemainingBalance()
	prevProgress := account.ProgressPercentage()

	for _, amount := range []string{"600", "1200", "0.01", "999.99"} {
		paid := decimal.RequireFromString(amount)
		_, err := account.RecordPayment(paid, "agent-2", "", time.Now())
		require.NoError(t, err)

		remaining := account.RemainingBalance()
		assert.True(t, remaining.Equal(prevRemaining.Sub(paid)),
			"remaining must drop by exactly the recorded amount: %v -> %v after %v",
			prevRemaining, remaining, paid)

		progress := account.ProgressPercentage()
		assert.True(t, progress.GreaterThanOrEqual(prevProgress))

		prevRemaining = remaining
		prevProgress = progress
	}
}

func TestRemainingBalanceZeroExactlyWhenFullyPaid(t *testing.T) {
	account := domain.NewInstallmentAccount("INST-B", mustTerms(t, "10000", "0", "1000", 10, "10"))
	assert.False(t, account.FullyPaid())

	// totalPaid = advance 1000 + 10000 = 11000 = totalWithInterest.
	_, err := account.RecordPayment(decimal.NewFromInt(10000), "agent-1", "", time.Now())
	require.NoError(t, err)
	assert.True(t, account.TotalPaid().Equal(account.TotalWithInterest()))
	assert.True(t, account.RemainingBalance().IsZero())
}

func TestProgressPercentageZeroTotal(t *testing.T) {
	account := domain.NewInstallmentAccount("INST-Z", mustTerms(t, "0", "0", "0", 12, "15"))
	assert.True(t, account.ProgressPercentage().IsZero())
	assert.True(t, account.RemainingBalance().IsZero())
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    domain.InstallmentStatus
		to      domain.InstallmentStatus
		allowed bool
	}{
		{domain.StatusPending, domain.StatusActive, true},
		{domain.StatusPending, domain.StatusCancelled, true},
		// A full first payment completes a pending account without passing
		// through ACTIVE; the sweep can default one that never activated.
		{domain.StatusPending, domain.StatusCompleted, true},
		{domain.StatusPending, domain.StatusDefaulted, true},
		{domain.StatusPending, domain.StatusOverdue, true},
		{domain.StatusActive, domain.StatusOverdue, true},
		{domain.StatusActive, domain.StatusCompleted, true},
		{domain.StatusOverdue, domain.StatusActive, true},
		{domain.StatusOverdue, domain.StatusDefaulted, true},
		{domain.StatusCompleted, domain.StatusActive, false},
		{domain.StatusDefaulted, domain.StatusActive, false},
		{domain.StatusCancelled, domain.StatusPending, false},
		{domain.StatusActive, domain.StatusActive, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, domain.StatusCompleted.Terminal())
	assert.True(t, domain.StatusDefaulted.Terminal())
	assert.True(t, domain.StatusCancelled.Terminal())
	assert.False(t, domain.StatusPending.Terminal())
	assert.False(t, domain.StatusActive.Terminal())
	assert.False(t, domain.StatusOverdue.Terminal())
}
