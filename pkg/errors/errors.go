package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	ErrAccountNotFound         = errors.New("installment account not found")
	ErrAccountAlreadyExists    = errors.New("installment account already exists")
	ErrInvalidTerms            = errors.New("invalid installment terms")
	ErrInvalidPaymentAmount    = errors.New("payment amount must be greater than zero")
	ErrExceedsRemainingBalance = errors.New("payment amount exceeds remaining balance")
	ErrAccountClosed           = errors.New("installment account is in a terminal status")
	ErrInvalidStatusTransition = errors.New("status transition not allowed")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeAccountNotFound         = "ACCOUNT_NOT_FOUND"
	ErrCodeAccountAlreadyExists    = "ACCOUNT_ALREADY_EXISTS"
	ErrCodeInvalidTerms            = "INVALID_TERMS"
	ErrCodeInvalidPaymentAmount    = "INVALID_PAYMENT_AMOUNT"
	ErrCodeExceedsRemainingBalance = "EXCEEDS_REMAINING_BALANCE"
	ErrCodeAccountClosed           = "ACCOUNT_CLOSED"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeDatabaseError           = "DATABASE_ERROR"
	ErrCodeCacheError              = "CACHE_ERROR"
)

// FieldViolation is a single constraint violation on a named field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every violated constraint found while validating
// installment terms, not just the first one.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return fmt.Sprintf("%s: %s", ErrCodeInvalidTerms, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidTerms
}

// Add records a violation and returns the receiver so checks can chain.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: message})
	return e
}

// HasViolations reports whether any constraint failed.
func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

// Wrap common errors with business context
func WrapAccountNotFound(accountRef string) *BusinessError {
	return NewBusinessError(
		ErrCodeAccountNotFound,
		fmt.Sprintf("Installment account %s not found", accountRef),
		ErrAccountNotFound,
	)
}

func WrapAccountAlreadyExists(accountRef string) *BusinessError {
	return NewBusinessError(
		ErrCodeAccountAlreadyExists,
		fmt.Sprintf("Installment account %s already exists", accountRef),
		ErrAccountAlreadyExists,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapExceedsRemainingBalance(amount, remaining string) *BusinessError {
	return NewBusinessError(
		ErrCodeExceedsRemainingBalance,
		fmt.Sprintf("Payment amount %s exceeds remaining balance %s", amount, remaining),
		ErrExceedsRemainingBalance,
	)
}

func WrapAccountClosed(accountRef, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeAccountClosed,
		fmt.Sprintf("Installment account %s is %s and accepts no further payments", accountRef, status),
		ErrAccountClosed,
	)
}

func WrapInvalidStatusTransition(from, to string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidStatusTransition,
		fmt.Sprintf("Cannot transition installment from %s to %s", from, to),
		ErrInvalidStatusTransition,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
