package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gigpass/gigpass/internal/config"
	"github.com/gigpass/gigpass/internal/gateway/razorpay"
	"github.com/gigpass/gigpass/internal/postgres"
	redisx "github.com/gigpass/gigpass/internal/redis"
	postgresrepo "github.com/gigpass/gigpass/internal/repository/postgres"
	redisrepo "github.com/gigpass/gigpass/internal/repository/redis"
	"github.com/gigpass/gigpass/internal/service"
	"github.com/gigpass/gigpass/internal/service/auth"
	httpgin "github.com/gigpass/gigpass/internal/transport/http/gin"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	pubsub     *redisx.PubSub
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redisx.New(context.Background(), redisx.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// The gateway client is validated here so bad credentials stop the
	// process before it takes traffic.
	gw, err := razorpay.New(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment gateway: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisx.NewPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "rl:orders", 10, 1*time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)
	tokenStore := redisrepo.NewTokenStore(rdb, cfg.Auth.RefreshTTL)

	// Initialize services
	services := service.NewServices(store, cache, pubsub, limiter, tokenStore, gw, logger, service.Config{
		Auth: auth.Config{
			JWTSecret:  cfg.Auth.JWTSecret,
			AccessTTL:  cfg.Auth.AccessTTL,
			RefreshTTL: cfg.Auth.RefreshTTL,
		},
	})

	// Initialize Gin router
	router := httpgin.NewRouter(services, idempotencyStore, cfg.Auth.JWTSecret, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
		pubsub: pubsub,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Mirror the booking-recorded feed into the log so captures can be
	// audited even without an external reconciler attached.
	g.Go(func() error {
		err := a.pubsub.SubscribeBookings(gCtx, func(_ context.Context, bookingID, orderID, paymentID string) {
			a.logger.Info("booking recorded",
				"booking_id", bookingID,
				"order_id", orderID,
				"payment_id", paymentID,
			)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("booking feed: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
