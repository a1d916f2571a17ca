package httpgin

import (
	"time"

	"github.com/gigpass/gigpass/internal/domain"
)

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type SessionResponse struct {
	UserID       string    `json:"user_id"`
	Role         string    `json:"role"`
	AccessToken  string    `json:"access_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	RefreshToken string    `json:"refresh_token"`
}

// PaymentRequest is the single payment endpoint payload. Action picks
// the branch: "create" opens a gateway order, "verify" completes it.
type PaymentRequest struct {
	Action    string `json:"action" binding:"required,oneof=create verify"`
	EventID   string `json:"eventId"`
	Quantity  int    `json:"quantity"`
	UserID    string `json:"userId"`
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type CreateOrderResponse struct {
	OrderID   string `json:"orderId"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	EventName string `json:"eventName"`
}

type VerifyPaymentResponse struct {
	Success bool            `json:"success"`
	Booking *domain.Booking `json:"booking"`
}

type UpdateProfileRequest struct {
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url"`
}

type CreateEventRequest struct {
	Title       string  `json:"name" binding:"required"`
	Date        string  `json:"date" binding:"required"`
	Time        string  `json:"time" binding:"required"`
	City        string  `json:"city" binding:"required"`
	Genre       string  `json:"genre" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	ImageURL    string  `json:"image"`
	IsTrending  bool    `json:"isTrending"`
	Description string  `json:"description"`
}

type CreateEventResponse struct {
	EventID string `json:"event_id"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}
