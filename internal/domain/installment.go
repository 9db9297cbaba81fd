package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/fmahadybd/installment-engine/pkg/errors"
)

// InstallmentStatus is the lifecycle state of an installment account.
type InstallmentStatus string

const (
	StatusPending   InstallmentStatus = "PENDING"
	StatusActive    InstallmentStatus = "ACTIVE"
	StatusCompleted InstallmentStatus = "COMPLETED"
	StatusOverdue   InstallmentStatus = "OVERDUE"
	StatusDefaulted InstallmentStatus = "DEFAULTED"
	StatusCancelled InstallmentStatus = "CANCELLED"
)

// MaxTermMonths caps the contract length, matching the longest plan the
// business sells.
const MaxTermMonths = 60

var hundred = decimal.NewFromInt(100)

// Terminal reports whether no further transitions are allowed from s.
func (s InstallmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusDefaulted || s == StatusCancelled
}

// CanTransitionTo reports whether the move from s to next is legal.
//
// PENDING -> ACTIVE -> {COMPLETED | DEFAULTED | CANCELLED},
// ACTIVE <-> OVERDUE, OVERDUE -> {COMPLETED | DEFAULTED | CANCELLED}.
// PENDING may also reach any other status directly: a full first payment
// completes the account, and the overdue sweep can flag or default an
// account that never activated.
func (s InstallmentStatus) CanTransitionTo(next InstallmentStatus) bool {
	if s.Terminal() || s == next {
		return false
	}
	switch s {
	case StatusPending:
		return next == StatusActive || next == StatusCompleted ||
			next == StatusCancelled || next == StatusDefaulted || next == StatusOverdue
	case StatusActive:
		return next == StatusOverdue || next == StatusCompleted ||
			next == StatusDefaulted || next == StatusCancelled
	case StatusOverdue:
		return next == StatusActive || next == StatusCompleted ||
			next == StatusDefaulted || next == StatusCancelled
	}
	return false
}

// InstallmentTerms are the contract figures fixed when a sale is financed.
// They never change afterwards; only the account status moves.
type InstallmentTerms struct {
	Principal           decimal.Decimal `json:"principal" db:"principal"`
	OtherCost           decimal.Decimal `json:"other_cost" db:"other_cost"`
	AdvancePaid         decimal.Decimal `json:"advance_paid" db:"advance_paid"`
	TermMonths          int             `json:"term_months" db:"term_months"`
	InterestRatePercent decimal.Decimal `json:"interest_rate_percent" db:"interest_rate_percent"`
}

// NewInstallmentTerms validates and builds contract terms. Every violated
// constraint is reported, not just the first.
func NewInstallmentTerms(principal, otherCost, advancePaid decimal.Decimal, termMonths int, interestRatePercent decimal.Decimal) (InstallmentTerms, error) {
	verr := &customError.ValidationError{}
	if principal.IsNegative() {
		verr.Add("principal", "must not be negative")
	}
	if otherCost.IsNegative() {
		verr.Add("other_cost", "must not be negative")
	}
	if advancePaid.IsNegative() {
		verr.Add("advance_paid", "must not be negative")
	}
	if termMonths < 1 {
		verr.Add("term_months", "must be at least 1")
	} else if termMonths > MaxTermMonths {
		verr.Add("term_months", "must not exceed 60")
	}
	if interestRatePercent.IsNegative() {
		verr.Add("interest_rate_percent", "must not be negative")
	}
	if verr.HasViolations() {
		return InstallmentTerms{}, verr
	}
	return InstallmentTerms{
		Principal:           principal,
		OtherCost:           otherCost,
		AdvancePaid:         advancePaid,
		TermMonths:          termMonths,
		InterestRatePercent: interestRatePercent,
	}, nil
}

// TotalWithInterest returns the full amount due over the contract:
// (principal + otherCost) plus simple interest on that combined base,
// rounded to the smallest currency unit.
func (t InstallmentTerms) TotalWithInterest() decimal.Decimal {
	base := t.Principal.Add(t.OtherCost)
	return base.Add(base.Mul(t.InterestRatePercent).Div(hundred)).Round(2)
}

// RemainingAfterAdvance is the amount left to spread across the term once the
// up-front payment is subtracted, floored at zero.
func (t InstallmentTerms) RemainingAfterAdvance() decimal.Decimal {
	remaining := t.TotalWithInterest().Sub(t.AdvancePaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// MonthlyInstallmentAmount is the per-month payment, rounded half-up to the
// smallest currency unit. The final month of the generated schedule absorbs
// the rounding remainder so the schedule sums back to RemainingAfterAdvance
// exactly.
func (t InstallmentTerms) MonthlyInstallmentAmount() decimal.Decimal {
	return t.RemainingAfterAdvance().DivRound(decimal.NewFromInt(int64(t.TermMonths)), 2)
}

// InstallmentAccount is a single financed purchase: immutable terms, a status,
// and the chronological payment history. Payments are append-only.
type InstallmentAccount struct {
	ID         uuid.UUID `json:"id" db:"id"`
	AccountRef string    `json:"account_ref" db:"account_ref"`
	InstallmentTerms
	MonthlyAmount decimal.Decimal   `json:"monthly_amount" db:"monthly_amount"`
	Status        InstallmentStatus `json:"status" db:"status"`
	Payments      []*PaymentRecord  `json:"payments,omitempty" db:"-"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}

// NewInstallmentAccount builds a fresh PENDING account from validated terms.
func NewInstallmentAccount(accountRef string, terms InstallmentTerms) *InstallmentAccount {
	return &InstallmentAccount{
		ID:               uuid.New(),
		AccountRef:       accountRef,
		InstallmentTerms: terms,
		MonthlyAmount:    terms.MonthlyInstallmentAmount(),
		Status:           StatusPending,
	}
}

// TotalPaid is the advance plus every recorded payment. It never decreases.
func (a *InstallmentAccount) TotalPaid() decimal.Decimal {
	total := a.AdvancePaid
	for _, p := range a.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// RemainingBalance is the amount still owed, floored at zero. Zero exactly
// when the account is fully paid; callers use that as the COMPLETED trigger.
func (a *InstallmentAccount) RemainingBalance() decimal.Decimal {
	remaining := a.TotalWithInterest().Sub(a.TotalPaid())
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// ProgressPercentage is how much of the total has been paid, in [0, 100].
func (a *InstallmentAccount) ProgressPercentage() decimal.Decimal {
	total := a.TotalWithInterest()
	if !total.IsPositive() {
		return decimal.Zero
	}
	progress := a.TotalPaid().Mul(hundred).DivRound(total, 2)
	if progress.GreaterThan(hundred) {
		return hundred
	}
	return progress
}

// ValidatePayment checks a proposed amount against the business rules without
// touching state. Amounts above the remaining balance are rejected, never
// clamped.
func (a *InstallmentAccount) ValidatePayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return customError.WrapInvalidPaymentAmount(amount.String())
	}
	if remaining := a.RemainingBalance(); amount.GreaterThan(remaining) {
		return customError.WrapExceedsRemainingBalance(amount.String(), remaining.String())
	}
	return nil
}

// RecordPayment validates the amount and appends a new payment record.
// On failure the account is unchanged and the business error is returned.
// Durably persisting the record belongs to the repository layer.
func (a *InstallmentAccount) RecordPayment(amount decimal.Decimal, recordedBy, notes string, paidAt time.Time) (*PaymentRecord, error) {
	if err := a.ValidatePayment(amount); err != nil {
		return nil, err
	}
	record := &PaymentRecord{
		ID:         uuid.New(),
		AccountRef: a.AccountRef,
		Amount:     amount,
		RecordedBy: recordedBy,
		Notes:      notes,
		PaidAt:     paidAt,
	}
	a.Payments = append(a.Payments, record)
	return record, nil
}

// FullyPaid reports whether the remaining balance has reached zero.
func (a *InstallmentAccount) FullyPaid() bool {
	return a.RemainingBalance().IsZero()
}
