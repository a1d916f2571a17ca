package postgresrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/gigpass/gigpass/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *EventRepo) With(db DB) *EventRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *EventRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const eventColumns = `id, title, date::text, time, city, genre, price, image_url, is_trending, COALESCE(description, '')`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Date,
		&e.Time,
		&e.City,
		&e.Genre,
		&e.Price,
		&e.ImageURL,
		&e.IsTrending,
		&e.Description,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Get retrieves a catalog event by its ID.
//
// Returns:
//   - *domain.Event: the event when found.
//   - error: repository.ErrNotFound if the event is not found.
func (r *EventRepo) Get(ctx context.Context, id string) (*domain.Event, error) {
	const op = "postgresrepo.EventRepo.Get"

	db := r.handle()

	e, err := scanEvent(db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return e, nil
}

// GetPricing retrieves the authoritative price and title for an event.
// This is the only value trusted for amount computation.
func (r *EventRepo) GetPricing(ctx context.Context, id string) (*domain.EventPricing, error) {
	const op = "postgresrepo.EventRepo.GetPricing"

	db := r.handle()

	var p domain.EventPricing
	err := db.QueryRow(ctx,
		`SELECT price, title FROM events WHERE id = $1`,
		id,
	).Scan(&p.Price, &p.Title)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &p, nil
}

// ListParams are the resolved filter conditions produced by the catalog
// service from a domain.EventFilter.
type ListParams struct {
	Genre    string
	City     string
	Dates    []string // exact dates (YYYY-MM-DD); empty means any
	PriceMin *float64
	PriceMax *float64
}

// List returns catalog events matching the resolved filter, ordered by
// date then time.
func (r *EventRepo) List(ctx context.Context, p ListParams) ([]domain.Event, error) {
	const op = "postgresrepo.EventRepo.List"

	db := r.handle()

	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.Genre != "" {
		conds = append(conds, "genre = "+arg(p.Genre))
	}
	if p.City != "" {
		conds = append(conds, "city ILIKE "+arg("%"+strings.TrimSpace(p.City)+"%"))
	}
	if len(p.Dates) > 0 {
		conds = append(conds, "date::text = ANY("+arg(p.Dates)+")")
	}
	if p.PriceMin != nil {
		conds = append(conds, "price >= "+arg(*p.PriceMin))
	}
	if p.PriceMax != nil {
		conds = append(conds, "price <= "+arg(*p.PriceMax))
	}

	q := `SELECT ` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY date, time"

	rows, err := db.Query(ctx, q, args...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// Search matches the term case-insensitively across title, description,
// genre and city.
func (r *EventRepo) Search(ctx context.Context, term string, limit int) ([]domain.Event, error) {
	const op = "postgresrepo.EventRepo.Search"

	db := r.handle()

	pattern := "%" + term + "%"

	rows, err := db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE title ILIKE $1
		    OR description ILIKE $1
		    OR genre ILIKE $1
		    OR city ILIKE $1
		 ORDER BY date, time
		 LIMIT $2`,
		pattern, limit,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// Facets returns the distinct non-empty genres and cities, sorted.
func (r *EventRepo) Facets(ctx context.Context) (*domain.Facets, error) {
	const op = "postgresrepo.EventRepo.Facets"

	db := r.handle()

	var f domain.Facets

	rows, err := db.Query(ctx,
		`SELECT DISTINCT genre FROM events WHERE genre <> '' ORDER BY genre`)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, wrapDBErr(op, err)
		}
		f.Genres = append(f.Genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	rows, err = db.Query(ctx,
		`SELECT DISTINCT city FROM events WHERE city <> '' ORDER BY city`)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, wrapDBErr(op, err)
		}
		f.Cities = append(f.Cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &f, nil
}

// Create inserts a catalog event and returns its generated ID.
//
// Returns:
//   - error: repository.ErrConflict on a duplicate (title, date, city).
func (r *EventRepo) Create(ctx context.Context, e *domain.Event) (string, error) {
	const op = "postgresrepo.EventRepo.Create"

	db := r.handle()

	var id string
	err := db.QueryRow(ctx,
		`INSERT INTO events (title, date, time, city, genre, price, image_url, is_trending, description)
		 VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		e.Title, e.Date, e.Time, e.City, e.Genre, e.Price, e.ImageURL, e.IsTrending, e.Description,
	).Scan(&id)
	if err != nil {
		return "", wrapDBErr(op, err)
	}

	return id, nil
}
