package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/gigpass/gigpass/internal/domain"
	"github.com/gigpass/gigpass/internal/repository"
	postgresrepo "github.com/gigpass/gigpass/internal/repository/postgres"
	"github.com/google/uuid"
)

type Service struct {
	store *postgresrepo.Store
}

func New(store *postgresrepo.Store) *Service {
	return &Service{store: store}
}

// Get retrieves the caller's profile.
//
// Returns:
//   - error: profile.ErrProfileNotFound if no profile row exists.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	const op = "service.profile.Get"

	p, err := s.store.Profiles().Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrProfileNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return p, nil
}

// Update upserts the caller's editable profile fields.
func (s *Service) Update(ctx context.Context, userID, fullName, phone, avatarURL string) error {
	const op = "service.profile.Update"

	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("%s: invalid user id: %w", op, err)
	}

	p := &domain.Profile{
		ID:        id,
		FullName:  fullName,
		Phone:     phone,
		AvatarURL: avatarURL,
	}

	if err := s.store.Profiles().Upsert(ctx, p); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
