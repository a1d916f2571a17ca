package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/gigpass/gigpass/internal/domain"
	redisx "github.com/gigpass/gigpass/internal/redis"
	"github.com/gigpass/gigpass/internal/repository"
	postgresrepo "github.com/gigpass/gigpass/internal/repository/postgres"
	redisrepo "github.com/gigpass/gigpass/internal/repository/redis"
	"github.com/gigpass/gigpass/internal/uow"
)

type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	pubsub *redisx.PubSub
	uow    *uow.UoW
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, pubsub *redisx.PubSub) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
		uow:    uow.NewUoW(store),
	}
}

// CreateEvent inserts a catalog event inside a transactional Unit of
// Work. After commit the cached facets are invalidated and a
// catalog-changed message is published.
//
// Returns:
//   - string: the created event ID.
//   - error: admin.ErrEventConflict on a duplicate (title, date, city).
func (s *Service) CreateEvent(ctx context.Context, e *domain.Event) (string, error) {
	const op = "service.admin.CreateEvent"

	var id string
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		id, err = s.store.Events().With(tx).Create(ctx, e)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrEventConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateCatalog(ctx, id)
			_ = s.pubsub.PublishCatalogChanged(ctx, id)
		})
		return nil
	})

	return id, err
}
