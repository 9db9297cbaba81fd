package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ScheduleStatusPending = "pending"
	ScheduleStatusPaid    = "paid"
	ScheduleStatusOverdue = "overdue"
)

// PaymentRecord is one payment collected by an agent against an account.
// Records are immutable once appended.
type PaymentRecord struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	AccountRef string          `json:"account_ref" db:"account_ref"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	RecordedBy string          `json:"recorded_by" db:"recorded_by"`
	Notes      string          `json:"notes" db:"notes"`
	PaidAt     time.Time       `json:"paid_at" db:"paid_at"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// ScheduleEntry is one month's expected payment for an account.
type ScheduleEntry struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	AccountRef  string          `json:"account_ref" db:"account_ref"`
	MonthNumber int             `json:"month_number" db:"month_number"`
	DueAmount   decimal.Decimal `json:"due_amount" db:"due_amount"`
	DueDate     time.Time       `json:"due_date" db:"due_date"`
	Status      string          `json:"status" db:"status"` // pending, paid, overdue
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// DTOs for requests and responses

type CreateInstallmentRequest struct {
	AccountRef          string          `json:"account_ref" validate:"required"`
	Principal           decimal.Decimal `json:"principal" validate:"dgte=0"`
	OtherCost           decimal.Decimal `json:"other_cost" validate:"dgte=0"`
	AdvancePaid         decimal.Decimal `json:"advance_paid" validate:"dgte=0"`
	TermMonths          int             `json:"term_months" validate:"required,gte=1,lte=60"`
	InterestRatePercent decimal.Decimal `json:"interest_rate_percent" validate:"dgte=0"`
}

type CreateInstallmentResponse struct {
	Account  *InstallmentAccount `json:"account"`
	Schedule []*ScheduleEntry    `json:"schedule"`
}

type RecordPaymentRequest struct {
	Amount     decimal.Decimal `json:"amount" validate:"dgt=0"`
	RecordedBy string          `json:"recorded_by" validate:"required"`
	Notes      string          `json:"notes"`
}

type UpdateStatusRequest struct {
	Status InstallmentStatus `json:"status" validate:"required,oneof=PENDING ACTIVE COMPLETED OVERDUE DEFAULTED CANCELLED"`
}

type BalanceResponse struct {
	AccountRef         string            `json:"account_ref"`
	TotalWithInterest  decimal.Decimal   `json:"total_with_interest"`
	MonthlyAmount      decimal.Decimal   `json:"monthly_amount"`
	TotalPaid          decimal.Decimal   `json:"total_paid"`
	RemainingBalance   decimal.Decimal   `json:"remaining_balance"`
	ProgressPercentage decimal.Decimal   `json:"progress_percentage"`
	PaymentsCount      int               `json:"payments_count"`
	LastPaymentAt      *time.Time        `json:"last_payment_at,omitempty"`
	Status             InstallmentStatus `json:"status"`
}

type ScheduleResponse struct {
	AccountRef string           `json:"account_ref"`
	Schedule   []*ScheduleEntry `json:"schedule"`
}

type PaymentsResponse struct {
	AccountRef string           `json:"account_ref"`
	Payments   []*PaymentRecord `json:"payments"`
}
