package postgresrepo

import (
	"context"

	"github.com/gigpass/gigpass/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ProfileRepo) With(db DB) *ProfileRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ProfileRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Get retrieves a profile by user ID.
//
// Returns:
//   - error: repository.ErrNotFound if the profile does not exist.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	const op = "postgresrepo.ProfileRepo.Get"

	db := r.handle()

	var p domain.Profile
	err := db.QueryRow(ctx,
		`SELECT id, COALESCE(full_name, ''), COALESCE(phone, ''),
		        COALESCE(avatar_url, ''), updated_at
		 FROM profiles WHERE id = $1`,
		userID,
	).Scan(&p.ID, &p.FullName, &p.Phone, &p.AvatarURL, &p.UpdatedAt)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &p, nil
}

// Upsert creates or updates the profile row keyed by user ID.
func (r *ProfileRepo) Upsert(ctx context.Context, p *domain.Profile) error {
	const op = "postgresrepo.ProfileRepo.Upsert"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO profiles (id, full_name, phone, avatar_url, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (id) DO UPDATE
		 SET full_name = EXCLUDED.full_name,
		     phone = EXCLUDED.phone,
		     avatar_url = EXCLUDED.avatar_url,
		     updated_at = now()`,
		p.ID, p.FullName, p.Phone, p.AvatarURL,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}
