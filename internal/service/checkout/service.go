package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/gigpass/gigpass/internal/domain"
	"github.com/gigpass/gigpass/internal/gateway"
	redisx "github.com/gigpass/gigpass/internal/redis"
	"github.com/gigpass/gigpass/internal/repository"
	redisrepo "github.com/gigpass/gigpass/internal/repository/redis"
	"github.com/google/uuid"
)

const (
	minQuantity = 1
	maxQuantity = 5
	currency    = "INR"
)

// EventStore supplies the authoritative price for amount computation.
type EventStore interface {
	GetPricing(ctx context.Context, eventID string) (*domain.EventPricing, error)
}

// BookingStore persists verified bookings. Insert returns
// repository.ErrConflict when the (orderID, paymentID) pair was already
// consumed.
type BookingStore interface {
	Insert(ctx context.Context, b *domain.Booking) error
}

// Service implements the order-then-verify payment handshake: it
// creates gateway orders from server-computed amounts and commits a
// booking only after the gateway signature checks out.
type Service struct {
	events   EventStore
	bookings BookingStore
	gw       gateway.Client
	limiter  *redisrepo.SlidingWindowLimiter
	pubsub   *redisx.PubSub
	logger   *slog.Logger
}

func New(
	events EventStore,
	bookings BookingStore,
	gw gateway.Client,
	limiter *redisrepo.SlidingWindowLimiter,
	pubsub *redisx.PubSub,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		events:   events,
		bookings: bookings,
		gw:       gw,
		limiter:  limiter,
		pubsub:   pubsub,
		logger:   logger,
	}
}

// OrderSummary is what the client needs to open the hosted payment
// widget. Amount is in minor currency units.
type OrderSummary struct {
	OrderID   string
	Amount    int64
	Currency  string
	EventName string
}

// CreateOrder validates the purchase intent, computes the charge from
// the event's authoritative price and opens exactly one gateway order.
// No local state is written.
//
// Returns:
//   - error: checkout.ErrInvalidPurchase on a bad event id or quantity
//     (checked before any gateway traffic).
//   - error: checkout.ErrEventNotFound if the event does not exist.
//   - error: checkout.ErrRateLimited when the caller exceeds the window.
func (s *Service) CreateOrder(
	ctx context.Context,
	userID, eventID string,
	quantity int,
	rlKey string,
) (*OrderSummary, error) {
	const op = "service.checkout.CreateOrder"

	if eventID == "" || quantity < minQuantity || quantity > maxQuantity {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidPurchase)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s:%w, retry in %s", op, ErrRateLimited, retry)
		}
	}

	pricing, err := s.events.GetPricing(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	amount := computeAmountMinor(pricing.Price, quantity)

	order, err := s.gw.CreateOrder(ctx, gateway.CreateOrderParams{
		Amount:   amount,
		Currency: currency,
		Receipt:  newReceiptID(time.Now()),
		Notes: map[string]any{
			"eventId":  eventID,
			"quantity": quantity,
			"userId":   userID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &OrderSummary{
		OrderID:   order.ID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		EventName: pricing.Title,
	}, nil
}

// VerifyInput is the gateway callback payload plus the original
// purchase intent, all client-supplied and all re-validated here.
type VerifyInput struct {
	OrderID   string
	PaymentID string
	Signature string
	EventID   string
	Quantity  int
	UserID    string
}

// VerifyPayment checks the gateway signature for the (order, payment)
// pair and, only on a match, persists the booking. The caller identity
// must equal the intent's user id so one session cannot complete
// another user's purchase.
//
// Returns:
//   - error: checkout.ErrMissingPaymentDetails if any field is absent.
//   - error: checkout.ErrIdentityMismatch on a caller/intent mismatch.
//   - error: checkout.ErrVerificationFailed on a bad signature; nothing
//     is written.
//   - error: checkout.ErrEventNotFound if the event vanished.
//   - error: checkout.ErrAlreadyRecorded if this payment result was
//     consumed before; the original booking stands.
//   - error: *checkout.PersistenceError if the booking write failed
//     after a valid signature.
func (s *Service) VerifyPayment(ctx context.Context, callerID string, in VerifyInput) (*domain.Booking, error) {
	const op = "service.checkout.VerifyPayment"

	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" ||
		in.EventID == "" || in.Quantity < 1 || in.UserID == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrMissingPaymentDetails)
	}

	if callerID != in.UserID {
		return nil, fmt.Errorf("%s:%w", op, ErrIdentityMismatch)
	}

	// Reaching this point means the gateway handed the client a payment
	// result for the order.
	attempt, err := NewAttempt(in.OrderID).CapturePayment(in.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if !s.gw.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		if attempt, err = attempt.Reject(); err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}

		s.logger.Warn("payment signature rejected",
			"order_id", in.OrderID,
			"payment_id", in.PaymentID,
			"user_id", in.UserID,
		)

		return nil, fmt.Errorf("%s:%w", op, ErrVerificationFailed)
	}

	pricing, err := s.events.GetPricing(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	userID, err := uuid.Parse(in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, ErrMissingPaymentDetails)
	}

	booking := &domain.Booking{
		UserID:         userID,
		EventID:        in.EventID,
		Quantity:       in.Quantity,
		PricePerTicket: pricing.Price,
		Amount:         pricing.Price * float64(in.Quantity),
		Status:         domain.BookingPaid,
		OrderID:        in.OrderID,
		PaymentID:      in.PaymentID,
		Signature:      in.Signature,
	}

	if err := s.bookings.Insert(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// The pair was consumed by an earlier verify call; the
			// charge is accounted for and no second booking appears.
			return nil, fmt.Errorf("%s:%w", op, ErrAlreadyRecorded)
		}

		if attempt, err2 := attempt.Orphan(); err2 == nil {
			s.logger.Error("payment captured but booking write failed",
				"order_id", attempt.OrderID,
				"payment_id", attempt.PaymentID,
				"user_id", in.UserID,
				"error", err,
			)
		}

		return nil, fmt.Errorf("%s:%w", op, &PersistenceError{
			OrderID:   in.OrderID,
			PaymentID: in.PaymentID,
			Err:       err,
		})
	}

	if _, err := attempt.Persist(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if s.pubsub != nil {
		_ = s.pubsub.PublishBookingRecorded(ctx, booking.ID.String(), in.OrderID, in.PaymentID)
	}

	return booking, nil
}

// computeAmountMinor converts price * quantity into minor currency
// units with round-half-up semantics. The verifier recomputes the same
// product, so the rounding here is the single source of truth for
// reconciliation.
func computeAmountMinor(price float64, quantity int) int64 {
	return int64(math.Round(price * float64(quantity) * 100))
}

// newReceiptID builds the gateway receipt: a time-based prefix plus a
// random suffix. Used for gateway-side bookkeeping only.
func newReceiptID(now time.Time) string {
	ms := fmt.Sprintf("%d", now.UnixMilli())
	if len(ms) > 10 {
		ms = ms[len(ms)-10:]
	}
	return fmt.Sprintf("rcpt_%s_%d", ms, rand.Intn(1000))
}
