// Package gateway defines the contract the checkout flow requires from
// an upstream payment provider. Amounts are in minor currency units.
package gateway

import "context"

type CreateOrderParams struct {
	Amount   int64
	Currency string
	Receipt  string
	// Notes travel opaquely on the gateway order for reconciliation
	// and audit; they play no role in verification.
	Notes map[string]any
}

type Order struct {
	ID       string
	Amount   int64
	Currency string
}

type Client interface {
	// CreateOrder opens exactly one order on the gateway per call.
	CreateOrder(ctx context.Context, p CreateOrderParams) (*Order, error)
	// VerifySignature reports whether sig is the gateway's HMAC over
	// the (orderID, paymentID) pair under the shared secret.
	VerifySignature(orderID, paymentID, sig string) bool
}
