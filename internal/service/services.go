package service

import (
	"log/slog"

	"github.com/gigpass/gigpass/internal/gateway"
	redisx "github.com/gigpass/gigpass/internal/redis"
	postgresrepo "github.com/gigpass/gigpass/internal/repository/postgres"
	redisrepo "github.com/gigpass/gigpass/internal/repository/redis"
	"github.com/gigpass/gigpass/internal/service/admin"
	"github.com/gigpass/gigpass/internal/service/auth"
	"github.com/gigpass/gigpass/internal/service/bookings"
	"github.com/gigpass/gigpass/internal/service/catalog"
	"github.com/gigpass/gigpass/internal/service/checkout"
	"github.com/gigpass/gigpass/internal/service/profile"
)

type Services struct {
	Auth     *auth.Service
	Catalog  *catalog.Service
	Checkout *checkout.Service
	Bookings *bookings.Service
	Profile  *profile.Service
	Admin    *admin.Service
}

type Config struct {
	Auth    auth.Config
	Catalog catalog.Config
}

func NewServices(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	pubsub *redisx.PubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	tokens *redisrepo.TokenStore,
	gw gateway.Client,
	logger *slog.Logger,
	cfg Config,
) *Services {
	return &Services{
		Auth:     auth.New(store, tokens, cfg.Auth),
		Catalog:  catalog.New(store, cache, cfg.Catalog),
		Checkout: checkout.New(store.Events(), store.Bookings(), gw, limiter, pubsub, logger),
		Bookings: bookings.New(store),
		Profile:  profile.New(store),
		Admin:    admin.New(store, cache, pubsub),
	}
}
