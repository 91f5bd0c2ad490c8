package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/store-management/internal/cache"
	"github.com/frahmantamala/store-management/internal/user"
)

const CollectionKey = "stores"

// CachedRepository serves store lookups from a cached list of all stores.
// Employee and permission listings bypass the cache.
type CachedRepository struct {
	repo   RepositoryAPI
	stores *cache.Collection[*Store]
}

func NewCachedRepository(repo RepositoryAPI, backend cache.Backend, ttl time.Duration, logger *slog.Logger) *CachedRepository {
	return &CachedRepository{
		repo:   repo,
		stores: cache.NewCollection[*Store](backend, CollectionKey, ttl, repo.GetAll, logger),
	}
}

func (r *CachedRepository) Create(ctx context.Context, s *Store) (*Store, error) {
	created, err := r.repo.Create(ctx, s)
	if err = errors.Join(err, r.invalidateAfterWrite(ctx)); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *CachedRepository) GetByName(ctx context.Context, name string) (*Store, error) {
	stores, err := r.stores.Get(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range stores {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, nil
}

func (r *CachedRepository) GetByID(ctx context.Context, id int64) (*Store, error) {
	stores, err := r.stores.Get(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range stores {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *CachedRepository) GetAll(ctx context.Context) ([]*Store, error) {
	return r.stores.Get(ctx)
}

func (r *CachedRepository) Delete(ctx context.Context, s *Store) error {
	err := r.repo.Delete(ctx, s)
	return errors.Join(err, r.invalidateAfterWrite(ctx))
}

func (r *CachedRepository) AddEmployee(ctx context.Context, s *Store, u *user.User) error {
	err := r.repo.AddEmployee(ctx, s, u)
	return errors.Join(err, r.invalidateAfterWrite(ctx))
}

func (r *CachedRepository) RemoveEmployee(ctx context.Context, s *Store, u *user.User) error {
	err := r.repo.RemoveEmployee(ctx, s, u)
	return errors.Join(err, r.invalidateAfterWrite(ctx))
}

// IsEmployeeAlreadyAdded answers from the cached employee list of s.
func (r *CachedRepository) IsEmployeeAlreadyAdded(ctx context.Context, u *user.User, s *Store) (bool, error) {
	cached, err := r.GetByName(ctx, s.Name)
	if err != nil {
		return false, err
	}
	if cached == nil {
		return false, nil
	}
	return cached.HasEmployee(u.ID), nil
}

func (r *CachedRepository) GetEmployees(ctx context.Context, s *Store) ([]*user.User, error) {
	return r.repo.GetEmployees(ctx, s)
}

func (r *CachedRepository) GetEmployeesPermissions(ctx context.Context, s *Store) ([]*user.User, error) {
	return r.repo.GetEmployeesPermissions(ctx, s)
}

func (r *CachedRepository) AddPermission(ctx context.Context, s *Store, u *user.User) error {
	err := r.repo.AddPermission(ctx, s, u)
	return errors.Join(err, r.invalidateAfterWrite(ctx))
}

func (r *CachedRepository) RemovePermission(ctx context.Context, s *Store, u *user.User) error {
	err := r.repo.RemovePermission(ctx, s, u)
	return errors.Join(err, r.invalidateAfterWrite(ctx))
}

func (r *CachedRepository) HasPermission(ctx context.Context, s *Store, u *user.User) (bool, error) {
	return r.repo.HasPermission(ctx, s, u)
}

func (r *CachedRepository) Invalidate(ctx context.Context) error {
	return r.stores.Invalidate(ctx)
}

// invalidateAfterWrite runs even when the write failed or ctx was cancelled:
// the write may have committed before the error surfaced.
func (r *CachedRepository) invalidateAfterWrite(ctx context.Context) error {
	return r.Invalidate(context.WithoutCancel(ctx))
}
