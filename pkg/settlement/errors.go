package settlement

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the settlement service.
var (
	ErrDuplicateBooking         = errors.New("duplicate booking")
	ErrConflict                 = errors.New("booking version conflict")
	ErrInvalidTransition        = errors.New("invalid state transition")
	ErrCancellationWindowClosed = errors.New("cancellation window closed")
	ErrForbidden                = errors.New("forbidden")
	ErrPaymentDeclined          = errors.New("payment declined")
	ErrExternalServiceTimeout   = errors.New("external service timeout")
	ErrGatewayUnavailable       = errors.New("payment gateway unavailable")
	ErrLedgerUnavailable        = errors.New("ledger unavailable")
	ErrUnknownBooking           = errors.New("unknown booking")
	ErrDuplicateEntry           = errors.New("duplicate ledger entry")
	ErrHoldActive               = errors.New("hold window still active")
	ErrInvalidBookingID         = errors.New("invalid booking id")
	ErrInvalidActor             = errors.New("invalid actor")
	ErrInvalidParty             = errors.New("invalid party id")
	ErrInvalidVertical          = errors.New("invalid vertical")
	ErrInvalidState             = errors.New("invalid booking state")
	ErrInvalidResolution        = errors.New("invalid dispute resolution")
	ErrInvalidRequest           = errors.New("invalid request")
	ErrInvalidPolicy            = errors.New("invalid vertical policy")
	ErrInvalidServiceConfig     = errors.New("invalid service config")
)

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}

// IsTransient reports whether an error may succeed when retried with the same idempotency token.
func IsTransient(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrExternalServiceTimeout) ||
		errors.Is(err, ErrGatewayUnavailable) ||
		errors.Is(err, ErrLedgerUnavailable)
}
