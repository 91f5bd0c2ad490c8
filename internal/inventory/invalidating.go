package inventory

import (
	"context"
	"errors"

	"github.com/frahmantamala/store-management/internal/cache"
)

// InvalidatingRepository is the uncached inventory store with one addition:
// stores embed their inventory, so every write drops the collections listed
// as dependents, whether or not it reported an error.
type InvalidatingRepository struct {
	repo       RepositoryAPI
	dependents []cache.Invalidator
}

func NewInvalidatingRepository(repo RepositoryAPI, dependents ...cache.Invalidator) *InvalidatingRepository {
	return &InvalidatingRepository{repo: repo, dependents: dependents}
}

func (r *InvalidatingRepository) Create(ctx context.Context, inv *Inventory) (*Inventory, error) {
	created, err := r.repo.Create(ctx, inv)
	if err = errors.Join(err, r.invalidate(ctx)); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *InvalidatingRepository) GetByStoreID(ctx context.Context, storeID int64) (*Inventory, error) {
	return r.repo.GetByStoreID(ctx, storeID)
}

func (r *InvalidatingRepository) Update(ctx context.Context, inv *Inventory) error {
	err := r.repo.Update(ctx, inv)
	return errors.Join(err, r.invalidate(ctx))
}

func (r *InvalidatingRepository) Delete(ctx context.Context, inv *Inventory) error {
	err := r.repo.Delete(ctx, inv)
	return errors.Join(err, r.invalidate(ctx))
}

func (r *InvalidatingRepository) AddItem(ctx context.Context, inv *Inventory, item *Item) error {
	err := r.repo.AddItem(ctx, inv, item)
	return errors.Join(err, r.invalidate(ctx))
}

func (r *InvalidatingRepository) UpdateItem(ctx context.Context, inv *Inventory, item *Item) error {
	err := r.repo.UpdateItem(ctx, inv, item)
	return errors.Join(err, r.invalidate(ctx))
}

func (r *InvalidatingRepository) DeleteItem(ctx context.Context, inv *Inventory, item *Item) error {
	err := r.repo.DeleteItem(ctx, inv, item)
	return errors.Join(err, r.invalidate(ctx))
}

func (r *InvalidatingRepository) invalidate(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	errs := make([]error, 0, len(r.dependents))
	for _, d := range r.dependents {
		errs = append(errs, d.Invalidate(ctx))
	}
	return errors.Join(errs...)
}
