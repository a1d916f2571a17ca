package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigpass/gigpass/internal/domain"
	"github.com/gigpass/gigpass/internal/gateway"
	"github.com/gigpass/gigpass/internal/gateway/razorpay"
	"github.com/gigpass/gigpass/internal/repository"
)

const testSecret = "rzp_test_secret"

type fakeEvents struct {
	pricing map[string]domain.EventPricing
	calls   int
}

func (f *fakeEvents) GetPricing(_ context.Context, eventID string) (*domain.EventPricing, error) {
	f.calls++
	p, ok := f.pricing[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

type fakeBookings struct {
	inserted  []*domain.Booking
	insertErr error
}

func (f *fakeBookings) Insert(_ context.Context, b *domain.Booking) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, b)
	return nil
}

type fakeGateway struct {
	orders []gateway.CreateOrderParams
	err    error
}

func (f *fakeGateway) CreateOrder(_ context.Context, p gateway.CreateOrderParams) (*gateway.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.orders = append(f.orders, p)
	return &gateway.Order{
		ID:       "order_test_1",
		Amount:   p.Amount,
		Currency: p.Currency,
	}, nil
}

func (f *fakeGateway) VerifySignature(orderID, paymentID, sig string) bool {
	return razorpay.VerifySignature(testSecret, orderID, paymentID, sig)
}

func newTestService(events *fakeEvents, bookings *fakeBookings, gw gateway.Client) *Service {
	return New(events, bookings, gw, nil, nil, nil)
}

func TestCreateOrderComputesAmountFromStoredPrice(t *testing.T) {
	events := &fakeEvents{pricing: map[string]domain.EventPricing{
		"evt-1": {Price: 25.00, Title: "Indie Night"},
	}}
	gw := &fakeGateway{}
	svc := newTestService(events, &fakeBookings{}, gw)

	order, err := svc.CreateOrder(context.Background(), "user-1", "evt-1", 2, "")
	require.NoError(t, err)

	require.Len(t, gw.orders, 1)
	assert.Equal(t, int64(5000), gw.orders[0].Amount, "25.00 x 2 in minor units")
	assert.Equal(t, "INR", gw.orders[0].Currency)
	assert.Equal(t, "evt-1", gw.orders[0].Notes["eventId"])
	assert.Equal(t, 2, gw.orders[0].Notes["quantity"])
	assert.Equal(t, "user-1", gw.orders[0].Notes["userId"])

	assert.Equal(t, "order_test_1", order.OrderID)
	assert.Equal(t, int64(5000), order.Amount)
	assert.Equal(t, "Indie Night", order.EventName)
}

func TestCreateOrderRejectsBadIntentBeforeGateway(t *testing.T) {
	events := &fakeEvents{pricing: map[string]domain.EventPricing{
		"evt-1": {Price: 25.00},
	}}

	tests := []struct {
		name     string
		eventID  string
		quantity int
	}{
		{"zero quantity", "evt-1", 0},
		{"negative quantity", "evt-1", -2},
		{"quantity above limit", "evt-1", 6},
		{"empty event id", "", 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gw := &fakeGateway{}
			svc := newTestService(events, &fakeBookings{}, gw)

			_, err := svc.CreateOrder(context.Background(), "user-1", tc.eventID, tc.quantity, "")
			assert.ErrorIs(t, err, ErrInvalidPurchase)
			assert.Empty(t, gw.orders, "no gateway order for an invalid intent")
		})
	}
}

func TestCreateOrderUnknownEvent(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestService(&fakeEvents{}, &fakeBookings{}, gw)

	_, err := svc.CreateOrder(context.Background(), "user-1", "missing", 1, "")
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.Empty(t, gw.orders)
}

func validVerifyInput(userID string) VerifyInput {
	return VerifyInput{
		OrderID:   "order_test_1",
		PaymentID: "pay_test_1",
		Signature: razorpay.ComputeSignature(testSecret, "order_test_1", "pay_test_1"),
		EventID:   "evt-1",
		Quantity:  2,
		UserID:    userID,
	}
}

func TestVerifyPaymentPersistsBooking(t *testing.T) {
	userID := "2a9f6a1e-1111-4222-8333-444455556666"
	events := &fakeEvents{pricing: map[string]domain.EventPricing{
		"evt-1": {Price: 25.00, Title: "Indie Night"},
	}}
	bookings := &fakeBookings{}
	svc := newTestService(events, bookings, &fakeGateway{})

	b, err := svc.VerifyPayment(context.Background(), userID, validVerifyInput(userID))
	require.NoError(t, err)

	require.Len(t, bookings.inserted, 1)
	assert.Equal(t, domain.BookingPaid, b.Status)
	assert.Equal(t, userID, b.UserID.String())
	assert.Equal(t, "evt-1", b.EventID)
	assert.Equal(t, 2, b.Quantity)
	assert.Equal(t, 25.00, b.PricePerTicket)
	assert.Equal(t, 50.00, b.Amount, "amount recomputed from the stored price")
	assert.Equal(t, "order_test_1", b.OrderID)
	assert.Equal(t, "pay_test_1", b.PaymentID)
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	userID := "2a9f6a1e-1111-4222-8333-444455556666"
	events := &fakeEvents{pricing: map[string]domain.EventPricing{
		"evt-1": {Price: 25.00},
	}}
	bookings := &fakeBookings{}
	svc := newTestService(events, bookings, &fakeGateway{})

	in := validVerifyInput(userID)
	in.Signature = razorpay.ComputeSignature("wrong_secret", in.OrderID, in.PaymentID)

	_, err := svc.VerifyPayment(context.Background(), userID, in)
	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.Empty(t, bookings.inserted, "nothing written on a bad signature")
	assert.Zero(t, events.calls, "price is not even read for a rejected payment")
}

func TestVerifyPaymentMissingDetails(t *testing.T) {
	userID := "2a9f6a1e-1111-4222-8333-444455556666"
	svc := newTestService(&fakeEvents{}, &fakeBookings{}, &fakeGateway{})

	mutations := map[string]func(*VerifyInput){
		"no order id":   func(in *VerifyInput) { in.OrderID = "" },
		"no payment id": func(in *VerifyInput) { in.PaymentID = "" },
		"no signature":  func(in *VerifyInput) { in.Signature = "" },
		"no event id":   func(in *VerifyInput) { in.EventID = "" },
		"no quantity":   func(in *VerifyInput) { in.Quantity = 0 },
		"no user id":    func(in *VerifyInput) { in.UserID = "" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := validVerifyInput(userID)
			mutate(&in)

			_, err := svc.VerifyPayment(context.Background(), userID, in)
			assert.ErrorIs(t, err, ErrMissingPaymentDetails)
		})
	}
}

func TestVerifyPaymentIdentityMismatch(t *testing.T) {
	userID := "2a9f6a1e-1111-4222-8333-444455556666"
	bookings := &fakeBookings{}
	svc := newTestService(&fakeEvents{}, bookings, &fakeGateway{})

	// A perfectly valid signature does not help a different caller.
	_, err := svc.VerifyPayment(context.Background(), "someone-else", validVerifyInput(userID))
	assert.ErrorIs(t, err, ErrIdentityMismatch)
	assert.Empty(t, bookings.inserted)
}

func TestVerifyPaymentDuplicate(t *testing.T) {
	userID := "2a9f6a1e-1111-4222-8333-444455556666"
	events := &fakeEvents{pricing: map[string]domain.EventPricing{
		"evt-1": {Price: 25.00},
	}}
	bookings := &fakeBookings{insertErr: repository.ErrConflict}
	svc := newTestService(events, bookings, &fakeGateway{})

	_, err := svc.VerifyPayment(context.Background(), userID, validVerifyInput(userID))
	assert.ErrorIs(t, err, ErrAlreadyRecorded)
}

func TestVerifyPaymentPersistenceFailure(t *testing.T) {
	userID := "2a9f6a1e-1111-4222-8333-444455556666"
	events := &fakeEvents{pricing: map[string]domain.EventPricing{
		"evt-1": {Price: 25.00},
	}}
	bookings := &fakeBookings{insertErr: errors.New("connection reset")}
	svc := newTestService(events, bookings, &fakeGateway{})

	_, err := svc.VerifyPayment(context.Background(), userID, validVerifyInput(userID))

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe, "a write failure after capture is not a verification failure")
	assert.Equal(t, "order_test_1", pe.OrderID)
	assert.Equal(t, "pay_test_1", pe.PaymentID)
	assert.NotErrorIs(t, err, ErrVerificationFailed)
}

func TestNewReceiptID(t *testing.T) {
	now := time.UnixMilli(1756600000123)

	for i := 0; i < 20; i++ {
		id := newReceiptID(now)
		assert.Regexp(t, `^rcpt_\d{10}_\d{1,3}$`, id)
		assert.Contains(t, id, "6600000123", "suffix of the millisecond timestamp")
	}
}

func TestComputeAmountMinor(t *testing.T) {
	tests := []struct {
		price    float64
		quantity int
		want     int64
	}{
		{25.00, 2, 5000},
		{19.99, 1, 1999},
		{19.99, 3, 5997},
		{0.1, 3, 30}, // float noise must round away
		{100, 5, 50000},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, computeAmountMinor(tc.price, tc.quantity),
			"price=%v quantity=%d", tc.price, tc.quantity)
	}
}
