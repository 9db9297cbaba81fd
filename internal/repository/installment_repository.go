package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fmahadybd/installment-engine/internal/domain"
)

type installmentRepository struct {
	db *sqlx.DB
}

func NewInstallmentRepository(db *sqlx.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) Create(ctx context.Context, account *domain.InstallmentAccount, entries []*domain.ScheduleEntry) error {
	accountQuery := `
		INSERT INTO installments (id, account_ref, principal, other_cost, advance_paid, term_months, interest_rate_percent, monthly_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	entryQuery := `
		INSERT INTO installment_schedule (id, account_ref, month_number, due_amount, due_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, accountQuery,
		account.ID,
		account.AccountRef,
		account.Principal,
		account.OtherCost,
		account.AdvancePaid,
		account.TermMonths,
		account.InterestRatePercent,
		account.MonthlyAmount,
		account.Status,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		_, err = tx.ExecContext(ctx, entryQuery,
			entry.ID,
			entry.AccountRef,
			entry.MonthNumber,
			entry.DueAmount,
			entry.DueDate,
			entry.Status,
			entry.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *installmentRepository) GetByAccountRef(ctx context.Context, accountRef string) (*domain.InstallmentAccount, error) {
	query := `
		SELECT id, account_ref, principal, other_cost, advance_paid, term_months, interest_rate_percent, monthly_amount, status, created_at, updated_at
		FROM installments
		WHERE account_ref = $1
	`

	var account domain.InstallmentAccount
	if err := r.db.GetContext(ctx, &account, query, accountRef); err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *installmentRepository) UpdateStatus(ctx context.Context, accountRef string, status domain.InstallmentStatus) error {
	query := `
		UPDATE installments
		SET status = $2, updated_at = $3
		WHERE account_ref = $1
	`

	_, err := r.db.ExecContext(ctx, query, accountRef, status, time.Now())
	return err
}

func (r *installmentRepository) GetScheduleByAccountRef(ctx context.Context, accountRef string) ([]*domain.ScheduleEntry, error) {
	query := `
		SELECT id, account_ref, month_number, due_amount, due_date, status, created_at
		FROM installment_schedule
		WHERE account_ref = $1
		ORDER BY month_number
	`

	var entries []*domain.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, accountRef); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *installmentRepository) UpdateScheduleStatus(ctx context.Context, accountRef string, monthNumber int, status string) error {
	query := `
		UPDATE installment_schedule
		SET status = $3
		WHERE account_ref = $1 AND month_number = $2
	`

	_, err := r.db.ExecContext(ctx, query, accountRef, monthNumber, status)
	return err
}

func (r *installmentRepository) ListRefsByStatus(ctx context.Context, statuses ...domain.InstallmentStatus) ([]string, error) {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}

	query, args, err := sqlx.In(`SELECT account_ref FROM installments WHERE status IN (?) ORDER BY account_ref`, values)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var refs []string
	if err := r.db.SelectContext(ctx, &refs, query, args...); err != nil {
		return nil, err
	}

	return refs, nil
}

func (r *installmentRepository) GetOverdueEntries(ctx context.Context, accountRef string, asOf time.Time) ([]*domain.ScheduleEntry, error) {
	query := `
		SELECT id, account_ref, month_number, due_amount, due_date, status, created_at
		FROM installment_schedule
		WHERE account_ref = $1 AND status <> 'paid' AND due_date < $2
		ORDER BY month_number
	`

	var entries []*domain.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, accountRef, asOf); err != nil {
		return nil, err
	}

	return entries, nil
}
