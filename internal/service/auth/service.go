package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gigpass/gigpass/internal/domain"
	"github.com/gigpass/gigpass/internal/repository"
	postgresrepo "github.com/gigpass/gigpass/internal/repository/postgres"
	redisrepo "github.com/gigpass/gigpass/internal/repository/redis"
	"github.com/gigpass/gigpass/internal/uow"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	BcryptCost int
}

type Service struct {
	store  *postgresrepo.Store
	tokens *redisrepo.TokenStore
	uow    *uow.UoW
	cfg    Config
}

func New(store *postgresrepo.Store, tokens *redisrepo.TokenStore, cfg Config) *Service {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}

	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}

	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	return &Service{
		store:  store,
		tokens: tokens,
		uow:    uow.NewUoW(store),
		cfg:    cfg,
	}
}

// Session is the token pair handed to a client after signup, login or
// refresh.
type Session struct {
	UserID       string
	Role         string
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
}

// Signup registers a user and creates the empty profile row in the same
// transaction, then opens a session.
//
// Returns:
//   - error: auth.ErrEmailTaken if the email is already registered.
func (s *Service) Signup(ctx context.Context, email, password, fullName string) (*Session, error) {
	const op = "service.auth.Signup"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         "user",
	}

	err = s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.store.Users().With(tx).Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s:%w", op, ErrEmailTaken)
			}

			return fmt.Errorf("%s:%w", op, err)
		}

		profile := &domain.Profile{ID: user.ID, FullName: fullName}
		if err := s.store.Profiles().With(tx).Upsert(ctx, profile); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.openSession(ctx, user)
}

// Login verifies the password and opens a session.
//
// Returns:
//   - error: auth.ErrInvalidCredentials on unknown email or wrong
//     password (indistinguishable on purpose).
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	const op = "service.auth.Login"

	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrInvalidCredentials)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidCredentials)
	}

	return s.openSession(ctx, user)
}

// Refresh rotates the refresh token and issues a new access token. The
// old refresh token is consumed even if issuing fails.
//
// Returns:
//   - error: auth.ErrInvalidRefreshToken if the token is unknown,
//     expired or already rotated.
func (s *Service) Refresh(ctx context.Context, rawRefresh string) (*Session, error) {
	const op = "service.auth.Refresh"

	userID, ok, err := s.tokens.Consume(ctx, hashRefreshToken(rawRefresh))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidRefreshToken)
	}

	user, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrInvalidRefreshToken)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return s.openSession(ctx, user)
}

// Logout discards the refresh token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, rawRefresh string) error {
	const op = "service.auth.Logout"

	if err := s.tokens.Delete(ctx, hashRefreshToken(rawRefresh)); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (s *Service) openSession(ctx context.Context, user *domain.User) (*Session, error) {
	const op = "service.auth.openSession"

	access, exp, err := signAccessToken(s.cfg.JWTSecret, user.ID.String(), user.Role, s.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	refresh, err := newRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.tokens.Save(ctx, hashRefreshToken(refresh), user.ID.String()); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &Session{
		UserID:       user.ID.String(),
		Role:         user.Role,
		AccessToken:  access,
		AccessExp:    exp,
		RefreshToken: refresh,
	}, nil
}
