package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPurchase       = errors.New("invalid event id or quantity")
	ErrMissingPaymentDetails = errors.New("missing payment details")
	ErrEventNotFound         = errors.New("event not found")
	ErrIdentityMismatch      = errors.New("session identity mismatch")
	ErrVerificationFailed    = errors.New("payment verification failed")
	ErrAlreadyRecorded       = errors.New("booking already recorded")
	ErrRateLimited           = errors.New("rate limited")
)

// PersistenceError marks the one partial failure in the flow: the
// gateway captured the payment but the booking insert failed. It must
// never be conflated with a verification failure: the money moved.
type PersistenceError struct {
	OrderID   string
	PaymentID string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf(
		"payment captured but booking failed (order %s, payment %s): %v",
		e.OrderID, e.PaymentID, e.Err,
	)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
