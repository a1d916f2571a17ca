package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPaid BookingStatus = "paid"
)

type Event struct {
	ID          string  `json:"id"`
	Title       string  `json:"name"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	City        string  `json:"city"`
	Genre       string  `json:"genre"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image"`
	IsTrending  bool    `json:"isTrending"`
	Description string  `json:"description,omitempty"`
}

// EventPricing is the authoritative price snapshot used for amount
// computation. The client-declared amount is never trusted.
type EventPricing struct {
	Price float64
	Title string
}

// EventFilter carries the catalog filter parameters. Zero values and
// the literal "All" mean "no constraint".
type EventFilter struct {
	Genre  string
	City   string
	Period string // "today", "weekend" or empty
	Price  string // "0-20", "20-50", "50-100", "100+" or empty
}

// Facets are the distinct filterable values across the catalog.
type Facets struct {
	Genres []string `json:"genres"`
	Cities []string `json:"cities"`
}

type Booking struct {
	ID             uuid.UUID     `json:"id"`
	UserID         uuid.UUID     `json:"user_id"`
	EventID        string        `json:"event_id"`
	Quantity       int           `json:"quantity"`
	PricePerTicket float64       `json:"price_per_ticket"`
	Amount         float64       `json:"amount"`
	Status         BookingStatus `json:"status"`
	OrderID        string        `json:"razorpay_order_id"`
	PaymentID      string        `json:"razorpay_payment_id"`
	Signature      string        `json:"razorpay_signature"`
	CreatedAt      time.Time     `json:"created_at"`
}

// EventSummary is the slice of event data shown next to a booking.
type EventSummary struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	City     string `json:"city"`
	ImageURL string `json:"image_url"`
}

type BookingWithEvent struct {
	Booking
	Event EventSummary `json:"event"`
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type Profile struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	AvatarURL string    `json:"avatar_url"`
	UpdatedAt time.Time `json:"updated_at"`
}
