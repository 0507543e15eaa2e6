package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	_ "github.com/joho/godotenv/autoload"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authkit/modules/user"
	"github.com/dmitrymomot/authkit/pkg/httpserver"
	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/passreset"
	"github.com/dmitrymomot/authkit/pkg/pg"
	"github.com/dmitrymomot/authkit/pkg/redis"
	"github.com/dmitrymomot/authkit/pkg/session"
)

type appConfig struct {
	ServiceName string        `env:"SERVICE_NAME" envDefault:"authd"`
	LogFormat   string        `env:"LOG_FORMAT" envDefault:"json"`
	Development bool          `env:"DEV_MODE" envDefault:"false"`
	DateWindow  time.Duration `env:"HMAC_DATE_WINDOW" envDefault:"15m"` // Max X-Date drift on signed requests

	// Backing stores are optional: with neither URL set the service runs on
	// in-memory stores, which is only useful for local development.
	RedisURL    string `env:"REDIS_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	HTTP    httpserver.Config
	Session session.Config
	Reset   passreset.Config
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("authd exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	logOpts := []logger.Option{
		logger.WithFormat(logger.Format(cfg.LogFormat)),
		logger.WithService(cfg.ServiceName),
	}
	if cfg.Development {
		logOpts = append(logOpts, logger.WithDevelopment())
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	var checks []func(context.Context) error

	var redisClient *goredis.Client
	sessionStore := session.Store(session.NewMemoryStore())
	if cfg.RedisURL != "" {
		var rcfg redis.Config
		if err := env.Parse(&rcfg); err != nil {
			return fmt.Errorf("failed to parse redis config: %w", err)
		}
		client, err := redis.Connect(ctx, rcfg)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		redisClient = client
		sessionStore = session.NewRedisStore(client, cfg.Session.Retention)
		checks = append(checks, redis.Healthcheck(client))
	}

	sessions := session.NewManager(sessionStore,
		session.WithTTL(cfg.Session.TTL),
		session.WithLogger(log),
	)

	memStore := passreset.NewMemoryStore()
	users := passreset.UserStorage(memStore)
	codes := passreset.CodeStorage(memStore)
	if cfg.DatabaseURL != "" {
		var pcfg pg.Config
		if err := env.Parse(&pcfg); err != nil {
			return fmt.Errorf("failed to parse postgres config: %w", err)
		}
		pool, err := pg.Connect(ctx, pcfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := passreset.NewPostgresStore(pool)
		users, codes = store, store
		checks = append(checks, pg.Healthcheck(pool))
	}
	if redisClient != nil {
		// Redis expires codes on its own; the service-level TTL check stays
		// on as well so both drivers behave identically.
		codes = passreset.NewRedisCodeStore(redisClient, cfg.Reset.CodeTTL)
	}

	reset := passreset.NewService(users, codes,
		passreset.WithLogger(log),
		passreset.WithBcryptCost(cfg.Reset.BcryptCost),
		passreset.WithCodeTTL(cfg.Reset.CodeTTL),
	)

	api := user.NewService(sessions, reset,
		user.WithLogger(log),
		user.WithDateWindow(cfg.DateWindow),
	)

	r := chi.NewRouter()
	r.Get("/health", httpserver.HealthCheckHandler(ctx, log, checks...))
	r.Mount("/api/v1/user", api.Handle())

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("server listening", slog.String("addr", cfg.HTTP.Addr))
		}),
		httpserver.WithStopHook(func(l *slog.Logger) {
			l.Info("server stopped")
		}),
	)

	if err := srv.Run(ctx, r); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
