package postgresrepo

import (
	"context"
	"fmt"

	"github.com/gigpass/gigpass/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Insert persists a verified booking. Bookings are append-only; there
// is no update or delete path.
//
// The bookings table carries a unique index on (razorpay_order_id,
// razorpay_payment_id), so replaying an already-consumed payment result
// surfaces as repository.ErrConflict rather than a duplicate row.
func (r *BookingRepo) Insert(ctx context.Context, b *domain.Booking) error {
	const op = "postgresrepo.BookingRepo.Insert"

	db := r.handle()

	err := db.QueryRow(ctx,
		`INSERT INTO bookings
		   (user_id, event_id, quantity, price_per_ticket, amount, status,
		    razorpay_order_id, razorpay_payment_id, razorpay_signature)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		b.UserID, b.EventID, b.Quantity, b.PricePerTicket, b.Amount, b.Status,
		b.OrderID, b.PaymentID, b.Signature,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// ListByUser returns the user's bookings joined with the event summary,
// newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]domain.BookingWithEvent, error) {
	const op = "postgresrepo.BookingRepo.ListByUser"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT b.id, b.user_id, b.event_id, b.quantity, b.price_per_ticket,
		        b.amount, b.status, b.razorpay_order_id, b.razorpay_payment_id,
		        b.razorpay_signature, b.created_at,
		        e.title, e.date::text, e.time, e.city, e.image_url
		 FROM bookings b
		 JOIN events e ON e.id = b.event_id
		 WHERE b.user_id = $1
		 ORDER BY b.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.BookingWithEvent
	for rows.Next() {
		var bwe domain.BookingWithEvent

		if err := rows.Scan(
			&bwe.ID,
			&bwe.UserID,
			&bwe.EventID,
			&bwe.Quantity,
			&bwe.PricePerTicket,
			&bwe.Amount,
			&bwe.Status,
			&bwe.OrderID,
			&bwe.PaymentID,
			&bwe.Signature,
			&bwe.CreatedAt,
			&bwe.Event.Title,
			&bwe.Event.Date,
			&bwe.Event.Time,
			&bwe.Event.City,
			&bwe.Event.ImageURL,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, bwe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}
