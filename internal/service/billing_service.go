package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fmahadybd/installment-engine/internal/config"
	"github.com/fmahadybd/installment-engine/internal/domain"
	"github.com/fmahadybd/installment-engine/internal/repository"
	customError "github.com/fmahadybd/installment-engine/pkg/errors"
	"github.com/fmahadybd/installment-engine/pkg/utils"
)

type BillingService struct {
	InstallmentRepo repository.InstallmentRepository
	PaymentRepo     repository.PaymentRepository
	redis           *redis.Client
	config          *config.Config
	log             *logrus.Logger
}

func NewBillingService(
	installmentRepo repository.InstallmentRepository,
	paymentRepo repository.PaymentRepository,
	redisClient *redis.Client,
	cfg *config.Config,
	log *logrus.Logger,
) *BillingService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BillingService{
		InstallmentRepo: installmentRepo,
		PaymentRepo:     paymentRepo,
		redis:           redisClient,
		config:          cfg,
		log:             log,
	}
}

// CreateInstallment validates the terms, derives the monthly amount and the
// monthly due schedule, and persists both. New accounts start PENDING.
func (s *BillingService) CreateInstallment(ctx context.Context, request *domain.CreateInstallmentRequest) (*domain.InstallmentAccount, []*domain.ScheduleEntry, error) {
	existing, err := s.InstallmentRepo.GetByAccountRef(ctx, request.AccountRef)
	if err == nil && existing != nil {
		return nil, nil, customError.WrapAccountAlreadyExists(request.AccountRef)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	terms, err := domain.NewInstallmentTerms(
		request.Principal,
		request.OtherCost,
		request.AdvancePaid,
		request.TermMonths,
		request.InterestRatePercent,
	)
	if err != nil {
		return nil, nil, err
	}

	account := domain.NewInstallmentAccount(request.AccountRef, terms)

	// One due entry per month; the split hands the final entry the
	// rounding remainder so the schedule sums to the remaining total.
	startDate := time.Now().Truncate(24 * time.Hour)
	amounts := utils.SplitIntoInstallments(terms.RemainingAfterAdvance(), terms.TermMonths)
	entries := make([]*domain.ScheduleEntry, 0, terms.TermMonths)
	for month := 1; month <= terms.TermMonths; month++ {
		entries = append(entries, &domain.ScheduleEntry{
			ID:          uuid.New(),
			AccountRef:  request.AccountRef,
			MonthNumber: month,
			DueAmount:   amounts[month-1],
			DueDate:     utils.CalculateDueDate(startDate, month),
			Status:      domain.ScheduleStatusPending,
		})
	}

	if err = s.InstallmentRepo.Create(ctx, account, entries); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	s.log.WithFields(logrus.Fields{
		"account_ref":    account.AccountRef,
		"term_months":    terms.TermMonths,
		"monthly_amount": account.MonthlyAmount,
	}).Info("installment account created")

	return account, entries, nil
}

// RecordPayment validates and durably appends a payment, then applies the
// resulting status transitions: PENDING -> ACTIVE on first payment,
// OVERDUE -> ACTIVE on catch-up, -> COMPLETED at zero balance.
func (s *BillingService) RecordPayment(ctx context.Context, accountRef string, request *domain.RecordPaymentRequest) (*domain.PaymentRecord, error) {
	account, err := s.loadAccount(ctx, accountRef)
	if err != nil {
		return nil, err
	}

	if account.Status.Terminal() {
		return nil, customError.WrapAccountClosed(accountRef, string(account.Status))
	}

	record, err := account.RecordPayment(request.Amount, request.RecordedBy, request.Notes, time.Now())
	if err != nil {
		return nil, err
	}

	// The repository re-checks the balance under a row lock; the in-memory
	// validation above can race with a concurrent collector, this cannot.
	remaining, err := s.PaymentRepo.Append(ctx, record)
	if err != nil {
		var bizErr *customError.BusinessError
		if errors.As(err, &bizErr) {
			return nil, err
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.applyPostPaymentTransitions(ctx, account, remaining); err != nil {
		return nil, err
	}

	s.invalidateBalanceCache(ctx, accountRef)

	s.log.WithFields(logrus.Fields{
		"account_ref": accountRef,
		"amount":      record.Amount,
		"recorded_by": record.RecordedBy,
		"remaining":   remaining,
	}).Info("payment recorded")

	return record, nil
}

func (s *BillingService) applyPostPaymentTransitions(ctx context.Context, account *domain.InstallmentAccount, remaining decimal.Decimal) error {
	entries, err := s.InstallmentRepo.GetScheduleByAccountRef(ctx, account.AccountRef)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	totalPaid, err := s.PaymentRepo.GetTotalPaid(ctx, account.AccountRef)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	if err := s.reconcileSchedule(ctx, entries, totalPaid); err != nil {
		return err
	}

	next := account.Status
	switch {
	case remaining.IsZero():
		next = domain.StatusCompleted
	case account.Status == domain.StatusPending:
		next = domain.StatusActive
	case account.Status == domain.StatusOverdue && !hasUnpaidOverdue(entries):
		next = domain.StatusActive
	}

	if next != account.Status && account.Status.CanTransitionTo(next) {
		if err := s.InstallmentRepo.UpdateStatus(ctx, account.AccountRef, next); err != nil {
			return customError.WrapDatabaseError(err)
		}
		s.log.WithFields(logrus.Fields{
			"account_ref": account.AccountRef,
			"from":        account.Status,
			"to":          next,
		}).Info("installment status changed")
		account.Status = next
	}

	return nil
}

// reconcileSchedule marks every schedule entry fully covered by the money
// collected so far as paid. Entries are covered strictly in month order.
func (s *BillingService) reconcileSchedule(ctx context.Context, entries []*domain.ScheduleEntry, totalPaid decimal.Decimal) error {
	covered := totalPaid
	for _, entry := range entries {
		if covered.LessThan(entry.DueAmount) {
			break
		}
		covered = covered.Sub(entry.DueAmount)
		if entry.Status == domain.ScheduleStatusPaid {
			continue
		}
		if err := s.InstallmentRepo.UpdateScheduleStatus(ctx, entry.AccountRef, entry.MonthNumber, domain.ScheduleStatusPaid); err != nil {
			return customError.WrapDatabaseError(err)
		}
		entry.Status = domain.ScheduleStatusPaid
	}
	return nil
}

func hasUnpaidOverdue(entries []*domain.ScheduleEntry) bool {
	for _, entry := range entries {
		if entry.Status == domain.ScheduleStatusOverdue {
			return true
		}
	}
	return false
}

// GetBalance returns the derived balance summary, read through the Redis
// cache when one is configured. Cache failures degrade to a database read.
func (s *BillingService) GetBalance(ctx context.Context, accountRef string) (*domain.BalanceResponse, error) {
	cacheKey := balanceCacheKey(accountRef)

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var balance domain.BalanceResponse
			if jsonErr := json.Unmarshal([]byte(cached), &balance); jsonErr == nil {
				return &balance, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.WithError(err).Warn("balance cache read failed")
		}
	}

	account, err := s.loadAccount(ctx, accountRef)
	if err != nil {
		return nil, err
	}

	balance := &domain.BalanceResponse{
		AccountRef:         account.AccountRef,
		TotalWithInterest:  account.TotalWithInterest(),
		MonthlyAmount:      account.MonthlyAmount,
		TotalPaid:          account.TotalPaid(),
		RemainingBalance:   account.RemainingBalance(),
		ProgressPercentage: account.ProgressPercentage(),
		PaymentsCount:      len(account.Payments),
		Status:             account.Status,
	}

	latest, err := s.PaymentRepo.GetLatestPayment(ctx, accountRef)
	switch {
	case err == nil && latest != nil:
		balance.LastPaymentAt = &latest.PaidAt
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return nil, customError.WrapDatabaseError(err)
	}

	if s.redis != nil {
		if payload, err := json.Marshal(balance); err == nil {
			if err := s.redis.Set(ctx, cacheKey, payload, s.config.Redis.BalanceCacheTTL).Err(); err != nil {
				s.log.WithError(err).Warn("balance cache write failed")
			}
		}
	}

	return balance, nil
}

// GetSchedule returns the monthly due schedule for an account.
func (s *BillingService) GetSchedule(ctx context.Context, accountRef string) ([]*domain.ScheduleEntry, error) {
	if _, err := s.getAccountRow(ctx, accountRef); err != nil {
		return nil, err
	}

	entries, err := s.InstallmentRepo.GetScheduleByAccountRef(ctx, accountRef)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return entries, nil
}

// GetPayments returns the chronological payment history for an account.
func (s *BillingService) GetPayments(ctx context.Context, accountRef string) ([]*domain.PaymentRecord, error) {
	if _, err := s.getAccountRow(ctx, accountRef); err != nil {
		return nil, err
	}

	records, err := s.PaymentRepo.GetByAccountRef(ctx, accountRef)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return records, nil
}

// UpdateStatus applies an administrative transition (cancel, default,
// reactivate) after checking it against the lifecycle state machine.
func (s *BillingService) UpdateStatus(ctx context.Context, accountRef string, next domain.InstallmentStatus) (*domain.InstallmentAccount, error) {
	account, err := s.getAccountRow(ctx, accountRef)
	if err != nil {
		return nil, err
	}

	if !account.Status.CanTransitionTo(next) {
		return nil, customError.WrapInvalidStatusTransition(string(account.Status), string(next))
	}

	if err := s.InstallmentRepo.UpdateStatus(ctx, accountRef, next); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateBalanceCache(ctx, accountRef)

	s.log.WithFields(logrus.Fields{
		"account_ref": accountRef,
		"from":        account.Status,
		"to":          next,
	}).Info("installment status changed")

	account.Status = next
	return account, nil
}

// SweepOverdue marks past-due unpaid schedule entries overdue and moves the
// affected accounts to OVERDUE, or to DEFAULTED once the number of
// consecutive missed months reaches the configured threshold. Returns how
// many accounts changed status.
func (s *BillingService) SweepOverdue(ctx context.Context, asOf time.Time) (int, error) {
	refs, err := s.InstallmentRepo.ListRefsByStatus(ctx, domain.StatusPending, domain.StatusActive, domain.StatusOverdue)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	threshold := s.config.Business.DefaultThresholdMonths
	changed := 0

	for _, ref := range refs {
		overdue, err := s.InstallmentRepo.GetOverdueEntries(ctx, ref, asOf)
		if err != nil {
			return changed, customError.WrapDatabaseError(err)
		}
		if len(overdue) == 0 {
			continue
		}

		consecutive := 0
		lastMonth := 0
		for _, entry := range overdue {
			if entry.Status != domain.ScheduleStatusOverdue {
				if err := s.InstallmentRepo.UpdateScheduleStatus(ctx, ref, entry.MonthNumber, domain.ScheduleStatusOverdue); err != nil {
					return changed, customError.WrapDatabaseError(err)
				}
			}
			if lastMonth == 0 || entry.MonthNumber == lastMonth+1 {
				consecutive++
			} else {
				consecutive = 1
			}
			lastMonth = entry.MonthNumber
		}

		account, err := s.getAccountRow(ctx, ref)
		if err != nil {
			return changed, err
		}

		next := domain.StatusOverdue
		if consecutive >= threshold {
			next = domain.StatusDefaulted
		}
		if next == account.Status || !account.Status.CanTransitionTo(next) {
			continue
		}

		if err := s.InstallmentRepo.UpdateStatus(ctx, ref, next); err != nil {
			return changed, customError.WrapDatabaseError(err)
		}
		s.invalidateBalanceCache(ctx, ref)
		changed++

		s.log.WithFields(logrus.Fields{
			"account_ref":        ref,
			"overdue_entries":    len(overdue),
			"consecutive_missed": consecutive,
			"status":             next,
		}).Warn("installment flagged by overdue sweep")
	}

	return changed, nil
}

// loadAccount fetches the account row and attaches its payment history.
func (s *BillingService) loadAccount(ctx context.Context, accountRef string) (*domain.InstallmentAccount, error) {
	account, err := s.getAccountRow(ctx, accountRef)
	if err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.GetByAccountRef(ctx, accountRef)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	account.Payments = payments

	return account, nil
}

func (s *BillingService) getAccountRow(ctx context.Context, accountRef string) (*domain.InstallmentAccount, error) {
	account, err := s.InstallmentRepo.GetByAccountRef(ctx, accountRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapAccountNotFound(accountRef)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return account, nil
}

func (s *BillingService) invalidateBalanceCache(ctx context.Context, accountRef string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, balanceCacheKey(accountRef)).Err(); err != nil {
		s.log.WithError(err).Warn("balance cache invalidation failed")
	}
}

func balanceCacheKey(accountRef string) string {
	return fmt.Sprintf("installment:balance:%s", accountRef)
}
