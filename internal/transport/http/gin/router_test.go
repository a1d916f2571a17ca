package httpgin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigpass/gigpass/internal/domain"
	"github.com/gigpass/gigpass/internal/gateway"
	"github.com/gigpass/gigpass/internal/gateway/razorpay"
	"github.com/gigpass/gigpass/internal/repository"
	"github.com/gigpass/gigpass/internal/service"
	"github.com/gigpass/gigpass/internal/service/checkout"
)

const (
	testJWTSecret = "test-jwt-secret"
	testGWSecret  = "rzp_test_secret"
	testUserID    = "2a9f6a1e-1111-4222-8333-444455556666"
)

type stubEvents struct {
	pricing map[string]domain.EventPricing
}

func (s *stubEvents) GetPricing(_ context.Context, eventID string) (*domain.EventPricing, error) {
	p, ok := s.pricing[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

type stubBookings struct {
	insertErr error
}

func (s *stubBookings) Insert(_ context.Context, b *domain.Booking) error {
	return s.insertErr
}

type stubGateway struct{}

func (stubGateway) CreateOrder(_ context.Context, p gateway.CreateOrderParams) (*gateway.Order, error) {
	return &gateway.Order{ID: "order_test_1", Amount: p.Amount, Currency: p.Currency}, nil
}

func (stubGateway) VerifySignature(orderID, paymentID, sig string) bool {
	return razorpay.VerifySignature(testGWSecret, orderID, paymentID, sig)
}

func newTestRouter(t *testing.T, bookings *stubBookings) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	events := &stubEvents{pricing: map[string]domain.EventPricing{
		"evt-1": {Price: 25.00, Title: "Indie Night"},
	}}

	svcs := &service.Services{
		Checkout: checkout.New(events, bookings, stubGateway{}, nil, nil, slog.New(slog.DiscardHandler)),
	}

	return NewRouter(svcs, nil, testJWTSecret, slog.New(slog.DiscardHandler))
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()

	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": "user",
		"exp":  time.Now().Add(time.Minute).Unix(),
	})
	token, err := raw.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	return "Bearer " + token
}

func postPayments(t *testing.T, r *gin.Engine, authHeader string, body any) *httptest.ResponseRecorder {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t, &stubBookings{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPaymentsRequiresAuth(t *testing.T) {
	r := newTestRouter(t, &stubBookings{})

	w := postPayments(t, r, "", PaymentRequest{Action: "create", EventID: "evt-1", Quantity: 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postPayments(t, r, "Bearer nonsense", PaymentRequest{Action: "create", EventID: "evt-1", Quantity: 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateOrder(t *testing.T) {
	r := newTestRouter(t, &stubBookings{})
	token := bearerToken(t, testUserID)

	w := postPayments(t, r, token, PaymentRequest{Action: "create", EventID: "evt-1", Quantity: 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp CreateOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "order_test_1", resp.OrderID)
	assert.Equal(t, int64(5000), resp.Amount)
	assert.Equal(t, "INR", resp.Currency)
	assert.Equal(t, "Indie Night", resp.EventName)
}

func TestCreateOrderInvalidQuantity(t *testing.T) {
	r := newTestRouter(t, &stubBookings{})
	token := bearerToken(t, testUserID)

	w := postPayments(t, r, token, PaymentRequest{Action: "create", EventID: "evt-1", Quantity: 6})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid event ID or quantity", resp.Error)
}

func verifyRequest(userID string) PaymentRequest {
	return PaymentRequest{
		Action:    "verify",
		EventID:   "evt-1",
		Quantity:  2,
		UserID:    userID,
		OrderID:   "order_test_1",
		PaymentID: "pay_test_1",
		Signature: razorpay.ComputeSignature(testGWSecret, "order_test_1", "pay_test_1"),
	}
}

func TestVerifyPayment(t *testing.T) {
	r := newTestRouter(t, &stubBookings{})
	token := bearerToken(t, testUserID)

	w := postPayments(t, r, token, verifyRequest(testUserID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp VerifyPaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Booking)
	assert.Equal(t, 2, resp.Booking.Quantity)
}

func TestVerifyPaymentStatusMapping(t *testing.T) {
	token := bearerToken(t, testUserID)

	t.Run("missing details", func(t *testing.T) {
		r := newTestRouter(t, &stubBookings{})
		req := verifyRequest(testUserID)
		req.PaymentID = ""

		w := postPayments(t, r, token, req)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Missing payment details", resp.Error)
	})

	t.Run("session mismatch", func(t *testing.T) {
		r := newTestRouter(t, &stubBookings{})

		w := postPayments(t, r, token, verifyRequest("2a9f6a1e-9999-4222-8333-444455556666"))
		require.Equal(t, http.StatusUnauthorized, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Session mismatch: Unauthorized", resp.Error)
	})

	t.Run("bad signature", func(t *testing.T) {
		r := newTestRouter(t, &stubBookings{})
		req := verifyRequest(testUserID)
		req.Signature = razorpay.ComputeSignature("wrong_secret", req.OrderID, req.PaymentID)

		w := postPayments(t, r, token, req)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Payment verification failed", resp.Error)
	})

	t.Run("duplicate payment", func(t *testing.T) {
		r := newTestRouter(t, &stubBookings{insertErr: repository.ErrConflict})

		w := postPayments(t, r, token, verifyRequest(testUserID))
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("booking write failure", func(t *testing.T) {
		r := newTestRouter(t, &stubBookings{insertErr: errors.New("connection reset")})

		w := postPayments(t, r, token, verifyRequest(testUserID))
		require.Equal(t, http.StatusInternalServerError, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Payment successful but booking failed.", resp.Error)
		assert.Equal(t, "BOOKING_PERSISTENCE_FAILED", resp.Code)
		assert.Contains(t, resp.Details, "order_test_1")
	})
}

func TestUnknownAction(t *testing.T) {
	r := newTestRouter(t, &stubBookings{})
	token := bearerToken(t, testUserID)

	w := postPayments(t, r, token, map[string]any{"action": "refund"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
