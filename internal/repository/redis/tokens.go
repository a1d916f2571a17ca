package redisrepo

import (
	"context"
	"time"

	redisx "github.com/gigpass/gigpass/internal/redis"
	"github.com/redis/go-redis/v9"
)

// TokenStore keeps refresh tokens by hash. Only the SHA-256 hash of the
// raw token ever reaches Redis; the value is the owning user ID.
type TokenStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTokenStore(rdb *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{rdb: rdb, ttl: ttl}
}

func (s *TokenStore) Save(ctx context.Context, hash, userID string) error {
	return s.rdb.Set(ctx, redisx.KeyRefreshToken(hash), userID, s.ttl).Err()
}

// Consume atomically fetches and deletes the token, returning the owner.
// Rotation therefore invalidates the old token even on concurrent use.
func (s *TokenStore) Consume(ctx context.Context, hash string) (string, bool, error) {
	userID, err := s.rdb.GetDel(ctx, redisx.KeyRefreshToken(hash)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return userID, true, nil
}

func (s *TokenStore) Delete(ctx context.Context, hash string) error {
	return s.rdb.Del(ctx, redisx.KeyRefreshToken(hash)).Err()
}
