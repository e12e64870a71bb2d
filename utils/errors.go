package utils

import (
	"errors"
	"fmt"
)

// Sentinel errors for the ledger and reconciliation paths.
var (
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrOrderNotPayable means the order status already advanced; the
	// operation must not be re-applied.
	ErrOrderNotPayable  = errors.New("order is not payable")
	ErrNotFound         = errors.New("record not found")
	ErrSignatureInvalid = errors.New("invalid callback signature")
	ErrPromoInvalid     = errors.New("promo code is invalid or expired")
	ErrNoPermission     = errors.New("you do not have permission")
)

// ValidationError is bad input with no side effects; safe to retry
// immediately with a corrected request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// GatewayError carries the raw bank diagnostic for support triage.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("bank gateway error (status %d): %s", e.StatusCode, e.Body)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
