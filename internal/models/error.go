package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrConflictData       = errors.New("data conflicts with existing data")
	ErrDataNotFound       = errors.New("data not found")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidReceipt     = errors.New("receipt is required")
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	ErrInvalidChannel     = errors.New("unknown payment channel")
	ErrAmountMismatch     = errors.New("amount does not match order total")
	ErrSessionNotFound    = errors.New("no payment session for order")
	ErrSessionTerminal    = errors.New("payment session already finished")
	ErrSessionActive      = errors.New("another payment session is in flight")
	ErrPaymentTimeout     = errors.New("payment not confirmed before deadline")
	ErrPaymentCancelled   = errors.New("cancelled by caller")
	ErrInternalError      = errors.New("internal error")
)

// GatewayError is a failure reported by a payment gateway at initiation.
// The order is already created when it occurs; callers may retry.
type GatewayError struct {
	Gateway string
	Reason  string
}

func (e GatewayError) Error() string {
	return fmt.Sprintf("%s gateway: %s", e.Gateway, e.Reason)
}

// TooManyRequestsError tells the poller to back off for RetryAfter
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

func NewTooManyRequestsError(d time.Duration) TooManyRequestsError {
	return TooManyRequestsError{RetryAfter: d}
}
