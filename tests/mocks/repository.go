package mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/fmahadybd/installment-engine/internal/domain"
)

type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) Create(ctx context.Context, account *domain.InstallmentAccount, entries []*domain.ScheduleEntry) error {
	args := m.Called(ctx, account, entries)
	return args.Error(0)
}

func (m *MockInstallmentRepository) GetByAccountRef(ctx context.Context, accountRef string) (*domain.InstallmentAccount, error) {
	args := m.Called(ctx, accountRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentAccount), args.Error(1)
}

func (m *MockInstallmentRepository) UpdateStatus(ctx context.Context, accountRef string, status domain.InstallmentStatus) error {
	args := m.Called(ctx, accountRef, status)
	return args.Error(0)
}

func (m *MockInstallmentRepository) GetScheduleByAccountRef(ctx context.Context, accountRef string) ([]*domain.ScheduleEntry, error) {
	args := m.Called(ctx, accountRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScheduleEntry), args.Error(1)
}

func (m *MockInstallmentRepository) UpdateScheduleStatus(ctx context.Context, accountRef string, monthNumber int, status string) error {
	args := m.Called(ctx, accountRef, monthNumber, status)
	return args.Error(0)
}

func (m *MockInstallmentRepository) ListRefsByStatus(ctx context.Context, statuses ...domain.InstallmentStatus) ([]string, error) {
	callArgs := make([]interface{}, 0, len(statuses)+1)
	callArgs = append(callArgs, ctx)
	for _, s := range statuses {
		callArgs = append(callArgs, s)
	}
	args := m.Called(callArgs...)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockInstallmentRepository) GetOverdueEntries(ctx context.Context, accountRef string, asOf time.Time) ([]*domain.ScheduleEntry, error) {
	args := m.Called(ctx, accountRef, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScheduleEntry), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Append(ctx context.Context, record *domain.PaymentRecord) (decimal.Decimal, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) GetByAccountRef(ctx context.Context, accountRef string) ([]*domain.PaymentRecord, error) {
	args := m.Called(ctx, accountRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRepository) GetTotalPaid(ctx context.Context, accountRef string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountRef)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) GetLatestPayment(ctx context.Context, accountRef string) (*domain.PaymentRecord, error) {
	args := m.Called(ctx, accountRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentRecord), args.Error(1)
}
