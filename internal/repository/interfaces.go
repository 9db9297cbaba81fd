package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fmahadybd/installment-engine/internal/domain"
)

// InstallmentRepository defines the interface for installment account data operations
type InstallmentRepository interface {
	// Create persists a new installment account together with its monthly
	// due schedule in one transaction, so a failed schedule insert never
	// leaves an account row behind
	Create(ctx context.Context, account *domain.InstallmentAccount, entries []*domain.ScheduleEntry) error

	// GetByAccountRef retrieves an account by its business reference
	GetByAccountRef(ctx context.Context, accountRef string) (*domain.InstallmentAccount, error)

	// UpdateStatus moves an account to a new lifecycle status
	UpdateStatus(ctx context.Context, accountRef string, status domain.InstallmentStatus) error

	// GetScheduleByAccountRef retrieves the due schedule ordered by month
	GetScheduleByAccountRef(ctx context.Context, accountRef string) ([]*domain.ScheduleEntry, error)

	// UpdateScheduleStatus updates the status of a specific schedule entry
	UpdateScheduleStatus(ctx context.Context, accountRef string, monthNumber int, status string) error

	// ListRefsByStatus returns the references of every account in one of the given statuses
	ListRefsByStatus(ctx context.Context, statuses ...domain.InstallmentStatus) ([]string, error)

	// GetOverdueEntries returns unpaid schedule entries whose due date has passed
	GetOverdueEntries(ctx context.Context, accountRef string, asOf time.Time) ([]*domain.ScheduleEntry, error)
}

// PaymentRepository defines the interface for payment record data operations
type PaymentRepository interface {
	// Append durably appends a payment record. The balance check and the
	// insert happen inside one transaction that locks the account row, so
	// two concurrent payments cannot jointly overpay. Returns the remaining
	// balance after the append.
	Append(ctx context.Context, record *domain.PaymentRecord) (decimal.Decimal, error)

	// GetByAccountRef retrieves all payments for an account in chronological order
	GetByAccountRef(ctx context.Context, accountRef string) ([]*domain.PaymentRecord, error)

	// GetTotalPaid sums the recorded payment amounts for an account
	GetTotalPaid(ctx context.Context, accountRef string) (decimal.Decimal, error)

	// GetLatestPayment gets the most recent payment for an account
	GetLatestPayment(ctx context.Context, accountRef string) (*domain.PaymentRecord, error)
}
