// Package repository composes the entity stores, the executor and the cache
// into the single entry point the controllers use.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/store-management/internal/cache"
	"github.com/frahmantamala/store-management/internal/database"
	"github.com/frahmantamala/store-management/internal/inventory"
	inventoryPostgres "github.com/frahmantamala/store-management/internal/inventory/postgres"
	"github.com/frahmantamala/store-management/internal/store"
	storePostgres "github.com/frahmantamala/store-management/internal/store/postgres"
	"github.com/frahmantamala/store-management/internal/user"
	userPostgres "github.com/frahmantamala/store-management/internal/user/postgres"
	"gorm.io/gorm"
)

type Config struct {
	CacheTTL time.Duration
	// Driver names the SQL dialect for raw statements (postgres, mysql, sqlite).
	Driver string
}

type Repository struct {
	db     *gorm.DB
	exec   database.Runner
	driver string
	logger *slog.Logger

	userStore      *userPostgres.UserRepository
	storeStore     *storePostgres.StoreRepository
	inventoryStore *inventoryPostgres.InventoryRepository

	users       *user.CachedRepository
	stores      *store.CachedRepository
	inventories *inventory.InvalidatingRepository
}

func New(db *gorm.DB, exec database.Runner, backend cache.Backend, cfg Config, logger *slog.Logger) *Repository {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	inventoryStore := inventoryPostgres.NewInventoryRepository(db, exec)
	storeStore := storePostgres.NewStoreRepository(db, exec, inventoryStore)
	userStore := userPostgres.NewUserRepository(db, exec)

	stores := store.NewCachedRepository(storeStore, backend, ttl, logger)

	return &Repository{
		db:             db,
		exec:           exec,
		driver:         cfg.Driver,
		logger:         logger,
		userStore:      userStore,
		storeStore:     storeStore,
		inventoryStore: inventoryStore,
		users:          user.NewCachedRepository(userStore, backend, ttl, logger, stores),
		stores:         stores,
		inventories:    inventory.NewInvalidatingRepository(inventoryStore, stores),
	}
}

func (r *Repository) Users() user.RepositoryAPI {
	return r.users
}

func (r *Repository) Stores() store.RepositoryAPI {
	return r.stores
}

func (r *Repository) Inventories() inventory.RepositoryAPI {
	return r.inventories
}

// EnsureSchema creates every missing table. Safe to run on each start.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if err := r.userStore.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	if err := r.storeStore.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure stores schema: %w", err)
	}
	if err := r.inventoryStore.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure inventory schema: %w", err)
	}
	return nil
}

// RunInTx runs fn as one executor task inside one transaction, against
// uncached stores bound to that transaction. Every cached collection is
// dropped afterwards, also when the caller gave up waiting.
func (r *Repository) RunInTx(ctx context.Context, fn func(stores store.RepositoryAPI, inventories inventory.RepositoryAPI) error) error {
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			inline := database.Inline{Logger: r.logger}
			inventories := inventoryPostgres.NewInventoryRepository(tx, inline)
			stores := storePostgres.NewStoreRepository(tx, inline, inventories)
			return fn(stores, inventories)
		})
	})
	return errors.Join(err, r.InvalidateAll(context.WithoutCancel(ctx)))
}

func (r *Repository) InvalidateAll(ctx context.Context) error {
	return errors.Join(r.users.Invalidate(ctx), r.stores.Invalidate(ctx))
}
