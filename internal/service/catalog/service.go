package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gigpass/gigpass/internal/domain"
	redisx "github.com/gigpass/gigpass/internal/redis"
	"github.com/gigpass/gigpass/internal/repository"
	postgresrepo "github.com/gigpass/gigpass/internal/repository/postgres"
	redisrepo "github.com/gigpass/gigpass/internal/repository/redis"
)

type Config struct {
	EventSummaryTTL time.Duration
	FacetsTTL       time.Duration
	SearchLimit     int
}

type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	cfg   Config
	now   func() time.Time
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.EventSummaryTTL <= 0 {
		cfg.EventSummaryTTL = 60 * time.Second
	}

	if cfg.FacetsTTL <= 0 {
		cfg.FacetsTTL = 60 * time.Second
	}

	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 6
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
		now:   time.Now,
	}
}

// ListEvents returns catalog events matching the filter. "All" in genre
// or city means no constraint; period and price are resolved to
// concrete date and price-range conditions here.
func (s *Service) ListEvents(ctx context.Context, f domain.EventFilter) ([]domain.Event, error) {
	const op = "service.catalog.ListEvents"

	p := postgresrepo.ListParams{}

	if f.Genre != "" && f.Genre != "All" {
		p.Genre = f.Genre
	}

	if f.City != "" && f.City != "All" {
		p.City = f.City
	}

	switch f.Period {
	case "today":
		p.Dates = []string{s.now().Format("2006-01-02")}
	case "weekend":
		sat, sun := nextWeekend(s.now())
		p.Dates = []string{sat, sun}
	}

	if f.Price != "" && f.Price != "All" {
		min, max, ok := parsePriceBucket(f.Price)
		if ok {
			p.PriceMin = min
			p.PriceMax = max
		}
	}

	events, err := s.store.Events().List(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return events, nil
}

// SearchEvents matches the term across title, description, genre and
// city. An empty term yields an empty result, not an error.
func (s *Service) SearchEvents(ctx context.Context, term string) ([]domain.Event, error) {
	const op = "service.catalog.SearchEvents"

	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	events, err := s.store.Events().Search(ctx, term, s.cfg.SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return events, nil
}

// GetEvent retrieves one event, served from the Redis summary cache
// when warm.
//
// Returns:
//   - error: catalog.ErrEventNotFound if the event is not found.
func (s *Service) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	const op = "service.catalog.GetEvent"

	key := redisx.KeyEventSummary(id)

	event, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.EventSummaryTTL,
		func(ctx context.Context) (domain.Event, error) {
			e, err := s.store.Events().Get(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.Event{}, ErrEventNotFound
				}

				return domain.Event{}, err
			}

			return *e, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &event, nil
}

// Facets returns the distinct filterable genres and cities, cached.
func (s *Service) Facets(ctx context.Context) (*domain.Facets, error) {
	const op = "service.catalog.Facets"

	key := redisx.KeyCatalogFacets()

	facets, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.FacetsTTL,
		func(ctx context.Context) (domain.Facets, error) {
			f, err := s.store.Events().Facets(ctx)
			if err != nil {
				return domain.Facets{}, err
			}

			return *f, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &facets, nil
}

// nextWeekend returns the dates of the next Saturday and the Sunday
// after it. A Saturday "now" counts as this weekend.
func nextWeekend(now time.Time) (string, string) {
	daysUntilSaturday := (int(time.Saturday) - int(now.Weekday()) + 7) % 7
	sat := now.AddDate(0, 0, daysUntilSaturday)
	sun := sat.AddDate(0, 0, 1)
	return sat.Format("2006-01-02"), sun.Format("2006-01-02")
}

// parsePriceBucket maps the UI's price buckets ("0-20", "20-50",
// "50-100", "100+") to an inclusive range.
func parsePriceBucket(s string) (min, max *float64, ok bool) {
	if strings.HasSuffix(s, "+") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "+"), 64)
		if err != nil {
			return nil, nil, false
		}
		return &v, nil, true
	}

	lo, hi, found := strings.Cut(s, "-")
	if !found {
		return nil, nil, false
	}

	vLo, errLo := strconv.ParseFloat(lo, 64)
	vHi, errHi := strconv.ParseFloat(hi, 64)
	if errLo != nil || errHi != nil {
		return nil, nil, false
	}

	return &vLo, &vHi, true
}
