package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/frahmantamala/store-management/internal"
	"github.com/frahmantamala/store-management/internal/auth"
	"github.com/frahmantamala/store-management/internal/cache"
	"github.com/frahmantamala/store-management/internal/core/events"
	"github.com/frahmantamala/store-management/internal/database"
	"github.com/frahmantamala/store-management/internal/repository"
	"github.com/frahmantamala/store-management/internal/store"
	"github.com/frahmantamala/store-management/internal/user"
	"github.com/frahmantamala/store-management/pkg/logger"
	"gorm.io/gorm"
)

// App is everything a command needs, built once from the config.
type App struct {
	Config   *internal.Config
	Logger   *slog.Logger
	DB       *gorm.DB
	Executor *database.Executor
	Cache    cache.Backend
	Events   *events.EventBus
	Repo     *repository.Repository

	Users  *user.Service
	Stores *store.Service
	Auth   *auth.Service
	Tokens *auth.JWTTokenGenerator
}

func newApp(ctx context.Context, cfg *internal.Config) (*App, error) {
	logger.InitWithOptions(logger.Options{
		Env:    cfg.Env,
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
	})
	lg := logger.LoggerWrapper()

	db, err := database.OpenWithLogger(cfg.Database, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	backend, err := cache.NewBackend(ctx, cfg.Cache)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	exec := database.NewExecutor(database.ExecutorConfig{
		Workers:   cfg.Executor.Workers,
		QueueSize: cfg.Executor.QueueSize,
	}, lg)

	repo := repository.New(db, exec, backend, repository.Config{
		CacheTTL: cfg.Cache.TTL,
		Driver:   cfg.Database.Driver,
	}, lg)

	bus := events.NewEventBus(lg)
	events.RegisterAuditLog(bus, lg)

	users := user.NewService(repo.Users(), cfg.Security.BCryptCost, bus, lg)
	stores := store.NewService(repo.Stores(), repo.Users(), repo.Inventories(), repo, bus, lg)
	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)

	return &App{
		Config:   cfg,
		Logger:   lg,
		DB:       db,
		Executor: exec,
		Cache:    backend,
		Events:   bus,
		Repo:     repo,
		Users:    users,
		Stores:   stores,
		Auth:     auth.NewService(repo.Users(), users, tokens, lg),
		Tokens:   tokens,
	}, nil
}

// bootstrap creates missing tables and upserts the administrator.
func (a *App) bootstrap(ctx context.Context) error {
	if err := a.Repo.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := a.Repo.SeedAdmin(ctx, a.Config.Security.AdminLogin, a.Config.Security.AdminPassword, a.Config.Security.BCryptCost); err != nil {
		return err
	}
	// warm the collections in the background
	a.Executor.Go(func(ctx context.Context) error {
		if _, err := a.Repo.Users().GetAll(ctx); err != nil {
			return err
		}
		_, err := a.Repo.Stores().GetAll(ctx)
		return err
	})
	return nil
}

// Close waits for queued work and releases the connection and cache.
func (a *App) Close() error {
	a.Events.Wait()
	a.Executor.Shutdown()

	var errs []error
	if closer, ok := a.Cache.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	errs = append(errs, database.Close(a.DB))
	return errors.Join(errs...)
}

func mustApp(ctx context.Context) *App {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fatal("failed to load config", err)
	}
	app, err := newApp(ctx, cfg)
	if err != nil {
		fatal("failed to initialize dependencies", err)
	}
	return app
}
