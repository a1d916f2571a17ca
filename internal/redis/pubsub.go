package redisx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// PubSub fans out catalog invalidations and the booking-recorded feed.
// The booking feed is the hook for an external reconciler that diffs
// gateway captures against recorded bookings.
type PubSub struct {
	rdb *redis.Client
}

func NewPubSub(rdb *redis.Client) *PubSub {
	return &PubSub{rdb: rdb}
}

type catalogChangedMsg struct {
	Type    string `json:"type"`
	EventID string `json:"event_id"`
	TsUnix  int64  `json:"ts_unix"`
}

type bookingRecordedMsg struct {
	Type      string `json:"type"`
	BookingID string `json:"booking_id"`
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	TsUnix    int64  `json:"ts_unix"`
}

func (p *PubSub) PublishCatalogChanged(ctx context.Context, eventID string) error {
	msg := catalogChangedMsg{
		Type:    "catalog_changed",
		EventID: eventID,
		TsUnix:  time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, ChannelCatalogChanged(), b).Err()
}

func (p *PubSub) PublishBookingRecorded(ctx context.Context, bookingID, orderID, paymentID string) error {
	msg := bookingRecordedMsg{
		Type:      "booking_recorded",
		BookingID: bookingID,
		OrderID:   orderID,
		PaymentID: paymentID,
		TsUnix:    time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, ChannelBookingRecorded(), b).Err()
}

func (p *PubSub) SubscribeBookings(ctx context.Context, handler func(ctx context.Context, bookingID, orderID, paymentID string)) error {
	sub := p.rdb.Subscribe(ctx, ChannelBookingRecorded())
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev bookingRecordedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.BookingID != "" {
				handler(ctx, ev.BookingID, ev.OrderID, ev.PaymentID)
			}
		}
	}
}
