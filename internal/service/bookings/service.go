package bookings

import (
	"context"
	"fmt"

	"github.com/gigpass/gigpass/internal/domain"
	postgresrepo "github.com/gigpass/gigpass/internal/repository/postgres"
)

type Service struct {
	store *postgresrepo.Store
}

func New(store *postgresrepo.Store) *Service {
	return &Service{store: store}
}

// ListForUser returns the caller's bookings with event summaries,
// newest first. An empty history is a valid, empty slice.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.BookingWithEvent, error) {
	const op = "service.bookings.ListForUser"

	out, err := s.store.Bookings().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}
