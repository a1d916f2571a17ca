package razorpay

import (
	"context"
	"errors"
	"fmt"

	"github.com/gigpass/gigpass/internal/gateway"
	razorpay "github.com/razorpay/razorpay-go"
)

// Client wraps the Razorpay SDK behind the gateway contract. Build it
// once at startup and share it; the SDK client is safe for concurrent
// use and the key pair never changes at runtime.
type Client struct {
	rz     *razorpay.Client
	secret string
}

func New(keyID, keySecret string) (*Client, error) {
	if keyID == "" || keySecret == "" {
		return nil, errors.New("razorpay: missing key id or secret")
	}

	return &Client{
		rz:     razorpay.NewClient(keyID, keySecret),
		secret: keySecret,
	}, nil
}

func (c *Client) CreateOrder(ctx context.Context, p gateway.CreateOrderParams) (*gateway.Order, error) {
	const op = "razorpay.Client.CreateOrder"

	data := map[string]any{
		"amount":   p.Amount,
		"currency": p.Currency,
		"receipt":  p.Receipt,
	}
	if len(p.Notes) > 0 {
		data["notes"] = p.Notes
	}

	body, err := c.rz.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("%s: order response missing id", op)
	}

	out := &gateway.Order{
		ID:       id,
		Amount:   p.Amount,
		Currency: p.Currency,
	}

	// The SDK decodes numbers as float64; prefer the gateway's echo of
	// the amount when present.
	if amt, ok := body["amount"].(float64); ok {
		out.Amount = int64(amt)
	}
	if cur, ok := body["currency"].(string); ok && cur != "" {
		out.Currency = cur
	}

	return out, nil
}

func (c *Client) VerifySignature(orderID, paymentID, sig string) bool {
	return VerifySignature(c.secret, orderID, paymentID, sig)
}
