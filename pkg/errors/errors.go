package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrAdvanceNotFound         = errors.New("advance not found")
	ErrInvalidStatusTransition = errors.New("operation not allowed in current status")
	ErrAmountExceedsRequested  = errors.New("approved amount exceeds requested amount")
	ErrCannotCancel            = errors.New("only a pending advance can be cancelled")
	ErrMissingRejectionReason  = errors.New("rejection reason is required")
	ErrInstallmentNotFound     = errors.New("installment not found")
	ErrInstallmentNotPending   = errors.New("installment is not pending")
	ErrValidationFailed        = errors.New("request failed policy validation")
	ErrStaleState              = errors.New("advance was modified concurrently")
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
	ErrCodeAdvanceNotFound         = "ADVANCE_NOT_FOUND"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeAmountExceedsRequested  = "AMOUNT_EXCEEDS_REQUESTED"
	ErrCodeCannotCancel            = "CANNOT_CANCEL"
	ErrCodeMissingRejectionReason  = "MISSING_REJECTION_REASON"
	ErrCodeInstallmentNotFound     = "INSTALLMENT_NOT_FOUND"
	ErrCodeInstallmentNotPending   = "INSTALLMENT_NOT_PENDING"
	ErrCodeValidationFailed        = "VALIDATION_FAILED"
	ErrCodeStaleState              = "STALE_STATE"
	ErrCodeDatabaseError           = "DATABASE_ERROR"
	ErrCodeCacheError              = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapAdvanceNotFound(advanceID string) *BusinessError {
	return NewBusinessError(
		ErrCodeAdvanceNotFound,
		fmt.Sprintf("Advance with ID %s not found", advanceID),
		ErrAdvanceNotFound,
	)
}

func WrapInvalidStatusTransition(advanceID, current, operation string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidStatusTransition,
		fmt.Sprintf("Advance %s is %s; %s is not allowed", advanceID, current, operation),
		ErrInvalidStatusTransition,
	)
}

func WrapAmountExceedsRequested(approved, requested string) *BusinessError {
	return NewBusinessError(
		ErrCodeAmountExceedsRequested,
		fmt.Sprintf("Approved amount %s exceeds requested amount %s", approved, requested),
		ErrAmountExceedsRequested,
	)
}

func WrapCannotCancel(advanceID, current string) *BusinessError {
	return NewBusinessError(
		ErrCodeCannotCancel,
		fmt.Sprintf("Advance %s is %s and can no longer be cancelled", advanceID, current),
		ErrCannotCancel,
	)
}

func WrapMissingRejectionReason(advanceID string) *BusinessError {
	return NewBusinessError(
		ErrCodeMissingRejectionReason,
		fmt.Sprintf("Rejecting advance %s requires a reason", advanceID),
		ErrMissingRejectionReason,
	)
}

func WrapInstallmentNotFound(advanceID string, number int) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("Installment %d of advance %s not found", number, advanceID),
		ErrInstallmentNotFound,
	)
}

func WrapInstallmentNotPending(advanceID string, number int) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotPending,
		fmt.Sprintf("Installment %d of advance %s has already been processed", number, advanceID),
		ErrInstallmentNotPending,
	)
}

func WrapStaleState(advanceID, expected string) *BusinessError {
	return NewBusinessError(
		ErrCodeStaleState,
		fmt.Sprintf("Advance %s no longer in status %s; retry with fresh state", advanceID, expected),
		ErrStaleState,
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
		"Cache operation failed",
		err,
	)
}
