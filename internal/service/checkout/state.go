package checkout

import (
	"errors"
	"fmt"
)

// Stage is the explicit state of one checkout attempt. An attempt moves
// strictly forward; every stage after GatewayPaid is terminal.
type Stage string

const (
	StageCreated     Stage = "created"
	StageGatewayPaid Stage = "gateway_paid"
	StagePersisted   Stage = "persisted"
	StageRejected    Stage = "rejected"
	StageOrphaned    Stage = "orphaned"
)

// Terminal reports whether no further transition exists out of s.
// StageOrphaned is terminal from this flow's point of view: recovery
// is external reconciliation, not a state transition here.
func (s Stage) Terminal() bool {
	switch s {
	case StagePersisted, StageRejected, StageOrphaned:
		return true
	}
	return false
}

var ErrInvalidTransition = errors.New("invalid checkout transition")

// Attempt tracks one order through the order-then-verify handshake.
type Attempt struct {
	Stage     Stage
	OrderID   string
	PaymentID string
}

func NewAttempt(orderID string) Attempt {
	return Attempt{Stage: StageCreated, OrderID: orderID}
}

func (a Attempt) transition(from, to Stage) (Attempt, error) {
	if a.Stage != from {
		return a, fmt.Errorf("%w: %s -> %s (attempt in %s)", ErrInvalidTransition, from, to, a.Stage)
	}
	a.Stage = to
	return a, nil
}

// CapturePayment records that the gateway returned a payment result for
// this order.
func (a Attempt) CapturePayment(paymentID string) (Attempt, error) {
	next, err := a.transition(StageCreated, StageGatewayPaid)
	if err != nil {
		return a, err
	}
	next.PaymentID = paymentID
	return next, nil
}

// Persist records a successful signature check followed by a durable
// booking write.
func (a Attempt) Persist() (Attempt, error) {
	return a.transition(StageGatewayPaid, StagePersisted)
}

// Reject records a signature mismatch. No booking exists.
func (a Attempt) Reject() (Attempt, error) {
	return a.transition(StageGatewayPaid, StageRejected)
}

// Orphan records a valid payment whose booking write failed. The charge
// stands and needs external reconciliation.
func (a Attempt) Orphan() (Attempt, error) {
	return a.transition(StageGatewayPaid, StageOrphaned)
}
