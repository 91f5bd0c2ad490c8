package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/store-management/internal/cache"
)

const CollectionKey = "users"

// CachedRepository serves user reads from a cached list of all users. Every
// write goes to the wrapped store first and then drops the list, together
// with any dependent collection that embeds users.
type CachedRepository struct {
	repo       RepositoryAPI
	users      *cache.Collection[*User]
	dependents []cache.Invalidator
}

func NewCachedRepository(repo RepositoryAPI, backend cache.Backend, ttl time.Duration, logger *slog.Logger, dependents ...cache.Invalidator) *CachedRepository {
	return &CachedRepository{
		repo:       repo,
		users:      cache.NewCollection[*User](backend, CollectionKey, ttl, repo.GetAll, logger),
		dependents: dependents,
	}
}

func (r *CachedRepository) Create(ctx context.Context, u *User) (*User, error) {
	created, err := r.repo.Create(ctx, u)
	if err = errors.Join(err, r.invalidateAfterWrite(ctx)); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *CachedRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	users, err := r.users.Get(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *CachedRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	users, err := r.users.Get(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *CachedRepository) GetByIDUncached(ctx context.Context, id int64) (*User, error) {
	return r.repo.GetByIDUncached(ctx, id)
}

func (r *CachedRepository) GetAll(ctx context.Context) ([]*User, error) {
	return r.users.Get(ctx)
}

func (r *CachedRepository) Update(ctx context.Context, u *User) error {
	err := r.repo.Update(ctx, u)
	return errors.Join(err, r.invalidateAfterWrite(ctx))
}

func (r *CachedRepository) Delete(ctx context.Context, u *User) error {
	err := r.repo.Delete(ctx, u)
	return errors.Join(err, r.invalidateAfterWrite(ctx))
}

// Invalidate drops the users list and every dependent collection.
func (r *CachedRepository) Invalidate(ctx context.Context) error {
	errs := []error{r.users.Invalidate(ctx)}
	for _, d := range r.dependents {
		errs = append(errs, d.Invalidate(ctx))
	}
	return errors.Join(errs...)
}

// invalidateAfterWrite runs even when the write failed or ctx was cancelled:
// the write may have committed before the error surfaced.
func (r *CachedRepository) invalidateAfterWrite(ctx context.Context) error {
	return r.Invalidate(context.WithoutCancel(ctx))
}
