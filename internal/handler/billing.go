package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/fmahadybd/installment-engine/internal/domain"
	customError "github.com/fmahadybd/installment-engine/pkg/errors"
	"github.com/fmahadybd/installment-engine/pkg/response"
)

// BillingService is the slice of the service layer the HTTP handlers consume.
type BillingService interface {
	CreateInstallment(ctx context.Context, request *domain.CreateInstallmentRequest) (*domain.InstallmentAccount, []*domain.ScheduleEntry, error)
	RecordPayment(ctx context.Context, accountRef string, request *domain.RecordPaymentRequest) (*domain.PaymentRecord, error)
	GetBalance(ctx context.Context, accountRef string) (*domain.BalanceResponse, error)
	GetSchedule(ctx context.Context, accountRef string) ([]*domain.ScheduleEntry, error)
	GetPayments(ctx context.Context, accountRef string) ([]*domain.PaymentRecord, error)
	UpdateStatus(ctx context.Context, accountRef string, next domain.InstallmentStatus) (*domain.InstallmentAccount, error)
}

type BillingHandler struct {
	service   BillingService
	validator *validator.Validate
}

func NewBillingHandler(service BillingService) *BillingHandler {
	v := validator.New()
	registerDecimalValidations(v)
	return &BillingHandler{
		service:   service,
		validator: v,
	}
}

// registerDecimalValidations adds dgt / dgte tags so shopspring decimals can
// be compared against a literal in struct tags.
func registerDecimalValidations(v *validator.Validate) {
	_ = v.RegisterValidation("dgt", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return d.GreaterThan(bound)
	})
	_ = v.RegisterValidation("dgte", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return d.GreaterThanOrEqual(bound)
	})
}

// CreateInstallment handles POST /api/v1/installments
func (h *BillingHandler) CreateInstallment(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateInstallmentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Request validation failed", err)
		return
	}

	account, schedule, err := h.service.CreateInstallment(r.Context(), &request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, &domain.CreateInstallmentResponse{
		Account:  account,
		Schedule: schedule,
	})
}

// RecordPayment handles POST /api/v1/installments/{accountRef}/payments
func (h *BillingHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	accountRef := mux.Vars(r)["accountRef"]

	var request domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Request validation failed", err)
		return
	}

	record, err := h.service.RecordPayment(r.Context(), accountRef, &request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, record)
}

// GetBalance handles GET /api/v1/installments/{accountRef}/balance
func (h *BillingHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountRef := mux.Vars(r)["accountRef"]

	balance, err := h.service.GetBalance(r.Context(), accountRef)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, balance)
}

// GetSchedule handles GET /api/v1/installments/{accountRef}/schedule
func (h *BillingHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	accountRef := mux.Vars(r)["accountRef"]

	schedule, err := h.service.GetSchedule(r.Context(), accountRef)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, &domain.ScheduleResponse{
		AccountRef: accountRef,
		Schedule:   schedule,
	})
}

// GetPayments handles GET /api/v1/installments/{accountRef}/payments
func (h *BillingHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	accountRef := mux.Vars(r)["accountRef"]

	payments, err := h.service.GetPayments(r.Context(), accountRef)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, &domain.PaymentsResponse{
		AccountRef: accountRef,
		Payments:   payments,
	})
}

// UpdateStatus handles PATCH /api/v1/installments/{accountRef}/status
func (h *BillingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	accountRef := mux.Vars(r)["accountRef"]

	var request domain.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Request validation failed", err)
		return
	}

	account, err := h.service.UpdateStatus(r.Context(), accountRef, request.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, account)
}

// writeServiceError maps the business error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *customError.ValidationError
	if errors.As(err, &verr) {
		response.ErrorWithDetails(w, http.StatusBadRequest, "Invalid installment terms", err, verr.Violations)
		return
	}

	switch {
	case errors.Is(err, customError.ErrAccountNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, customError.ErrAccountAlreadyExists):
		response.Conflict(w, "Installment account already exists", err)
	case errors.Is(err, customError.ErrInvalidPaymentAmount):
		response.BadRequest(w, "Invalid payment amount", err)
	case errors.Is(err, customError.ErrExceedsRemainingBalance):
		response.UnprocessableEntity(w, "Payment exceeds remaining balance", err)
	case errors.Is(err, customError.ErrAccountClosed):
		response.UnprocessableEntity(w, "Account no longer accepts payments", err)
	case errors.Is(err, customError.ErrInvalidStatusTransition):
		response.UnprocessableEntity(w, "Status transition not allowed", err)
	default:
		response.InternalServerError(w, "Internal server error", err)
	}
}
