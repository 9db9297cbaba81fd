package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fmahadybd/installment-engine/internal/domain"
)

type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) CreateInstallment(ctx context.Context, request *domain.CreateInstallmentRequest) (*domain.InstallmentAccount, []*domain.ScheduleEntry, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.InstallmentAccount), args.Get(1).([]*domain.ScheduleEntry), args.Error(2)
}

func (m *MockBillingService) RecordPayment(ctx context.Context, accountRef string, request *domain.RecordPaymentRequest) (*domain.PaymentRecord, error) {
	args := m.Called(ctx, accountRef, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentRecord), args.Error(1)
}

func (m *MockBillingService) GetBalance(ctx context.Context, accountRef string) (*domain.BalanceResponse, error) {
	args := m.Called(ctx, accountRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceResponse), args.Error(1)
}

func (m *MockBillingService) GetSchedule(ctx context.Context, accountRef string) ([]*domain.ScheduleEntry, error) {
	args := m.Called(ctx, accountRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScheduleEntry), args.Error(1)
}

func (m *MockBillingService) GetPayments(ctx context.Context, accountRef string) ([]*domain.PaymentRecord, error) {
	args := m.Called(ctx, accountRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PaymentRecord), args.Error(1)
}

func (m *MockBillingService) UpdateStatus(ctx context.Context, accountRef string, next domain.InstallmentStatus) (*domain.InstallmentAccount, error) {
	args := m.Called(ctx, accountRef, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentAccount), args.Error(1)
}
