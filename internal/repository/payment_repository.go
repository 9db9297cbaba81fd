package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/fmahadybd/installment-engine/internal/domain"
	customError "github.com/fmahadybd/installment-engine/pkg/errors"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Append validates the payment against the live balance and inserts it in one
// transaction. The account row is locked for the duration, so a concurrent
// append observes this one's effect before its own balance check runs.
func (r *paymentRepository) Append(ctx context.Context, record *domain.PaymentRecord) (decimal.Decimal, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback()

	var terms domain.InstallmentTerms
	lockQuery := `
		SELECT principal, other_cost, advance_paid, term_months, interest_rate_percent
		FROM installments
		WHERE account_ref = $1
		FOR UPDATE
	`
	if err := tx.GetContext(ctx, &terms, lockQuery, record.AccountRef); err != nil {
		return decimal.Zero, err
	}

	var paid decimal.Decimal
	sumQuery := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payment_records
		WHERE account_ref = $1
	`
	if err := tx.GetContext(ctx, &paid, sumQuery, record.AccountRef); err != nil {
		return decimal.Zero, err
	}

	remaining := terms.TotalWithInterest().Sub(terms.AdvancePaid).Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	if !record.Amount.IsPositive() {
		return decimal.Zero, customError.WrapInvalidPaymentAmount(record.Amount.String())
	}
	if record.Amount.GreaterThan(remaining) {
		return decimal.Zero, customError.WrapExceedsRemainingBalance(record.Amount.String(), remaining.String())
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	insertQuery := `
		INSERT INTO payment_records (id, account_ref, amount, recorded_by, notes, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(ctx, insertQuery,
		record.ID,
		record.AccountRef,
		record.Amount,
		record.RecordedBy,
		record.Notes,
		record.PaidAt,
		record.CreatedAt,
	)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, err
	}

	return remaining.Sub(record.Amount), nil
}

func (r *paymentRepository) GetByAccountRef(ctx context.Context, accountRef string) ([]*domain.PaymentRecord, error) {
	query := `
		SELECT id, account_ref, amount, recorded_by, notes, paid_at, created_at
		FROM payment_records
		WHERE account_ref = $1
		ORDER BY created_at, id
	`

	var records []*domain.PaymentRecord
	if err := r.db.SelectContext(ctx, &records, query, accountRef); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *paymentRepository) GetTotalPaid(ctx context.Context, accountRef string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payment_records
		WHERE account_ref = $1
	`

	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, accountRef); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

func (r *paymentRepository) GetLatestPayment(ctx context.Context, accountRef string) (*domain.PaymentRecord, error) {
	query := `
		SELECT id, account_ref, amount, recorded_by, notes, paid_at, created_at
		FROM payment_records
		WHERE account_ref = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var record domain.PaymentRecord
	if err := r.db.GetContext(ctx, &record, query, accountRef); err != nil {
		return nil, err
	}

	return &record, nil
}
