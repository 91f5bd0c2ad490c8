package auth

import (
	"context"
	"fmt"

	"github.com/frahmantamala/store-management/internal"
	"github.com/frahmantamala/store-management/internal/store"
	"github.com/frahmantamala/store-management/internal/user"
)

type StorePermissions interface {
	HasPermission(ctx context.Context, s *store.Store, u *user.User) (bool, error)
	IsEmployeeAlreadyAdded(ctx context.Context, u *user.User, s *store.Store) (bool, error)
}

// PermissionChecker decides what an actor may do. Admins may do everything.
// A permission grant on a store lets a user manage that store's employees
// and inventory, and employees may view their store's inventory.
type PermissionChecker struct {
	stores StorePermissions
}

func NewPermissionChecker(stores StorePermissions) *PermissionChecker {
	return &PermissionChecker{stores: stores}
}

func (c *PermissionChecker) IsAdmin(actor internal.Actor) bool {
	return actor.IsAdmin()
}

func (c *PermissionChecker) CanManageUsers(actor internal.Actor) bool {
	return actor.IsAdmin()
}

func (c *PermissionChecker) CanManageStore(ctx context.Context, actor internal.Actor, st *store.Store) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	granted, err := c.stores.HasPermission(ctx, st, &user.User{ID: actor.UserID})
	if err != nil {
		return false, fmt.Errorf("check store permission: %w", err)
	}
	return granted, nil
}

func (c *PermissionChecker) CanViewStore(ctx context.Context, actor internal.Actor, st *store.Store) (bool, error) {
	allowed, err := c.CanManageStore(ctx, actor, st)
	if err != nil || allowed {
		return allowed, err
	}
	employed, err := c.stores.IsEmployeeAlreadyAdded(ctx, &user.User{ID: actor.UserID}, st)
	if err != nil {
		return false, fmt.Errorf("check employment: %w", err)
	}
	return employed, nil
}
