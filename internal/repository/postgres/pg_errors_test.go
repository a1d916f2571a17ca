package postgresrepo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/gigpass/gigpass/internal/repository"
)

func TestWrapDBErr(t *testing.T) {
	assert.NoError(t, wrapDBErr("op", nil))

	err := wrapDBErr("op", pgx.ErrNoRows)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = wrapDBErr("op", &pgconn.PgError{Code: "23505"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	wrapped := fmt.Errorf("query: %w", &pgconn.PgError{Code: "23505"})
	assert.ErrorIs(t, wrapDBErr("op", wrapped), repository.ErrConflict,
		"unique violations survive wrapping")

	plain := errors.New("boom")
	err = wrapDBErr("op", plain)
	assert.ErrorIs(t, err, plain)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}), "serialization failure")
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40P01"}), "deadlock")
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.False(t, IsRetryable(nil))
}
