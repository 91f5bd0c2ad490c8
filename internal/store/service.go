package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/store-management/internal"
	"github.com/frahmantamala/store-management/internal/core/common/validation"
	"github.com/frahmantamala/store-management/internal/core/events"
	"github.com/frahmantamala/store-management/internal/inventory"
	"github.com/frahmantamala/store-management/internal/user"
)

// UserFinder is the part of the user repository the store controller needs.
type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByIDUncached(ctx context.Context, id int64) (*user.User, error)
}

// TxRunner runs fn against transaction-bound stores and commits when fn
// returns nil.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(stores RepositoryAPI, inventories inventory.RepositoryAPI) error) error
}

type Service struct {
	stores      RepositoryAPI
	users       UserFinder
	inventories inventory.RepositoryAPI
	tx          TxRunner
	events      *events.EventBus
	logger      *slog.Logger
}

func NewService(stores RepositoryAPI, users UserFinder, inventories inventory.RepositoryAPI, tx TxRunner, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		stores:      stores,
		users:       users,
		inventories: inventories,
		tx:          tx,
		events:      bus,
		logger:      logger,
	}
}

// CreateStore creates the store and its empty inventory in one transaction.
func (s *Service) CreateStore(ctx context.Context, name string) (Response, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return fail(MsgStoreNameEmpty), nil
	}

	existing, err := s.stores.GetByName(ctx, name)
	if err != nil {
		return Response{}, fmt.Errorf("failed to look up store: %w", err)
	}
	if existing != nil {
		return fail(MsgStoreExists), nil
	}

	err = s.tx.RunInTx(ctx, func(stores RepositoryAPI, inventories inventory.RepositoryAPI) error {
		created, err := stores.Create(ctx, New(name))
		if err != nil {
			return err
		}
		if created == nil {
			return fmt.Errorf("store %q missing after insert", name)
		}
		_, err = inventories.Create(ctx, inventory.New(created.ID))
		return err
	})
	if err != nil {
		return Response{}, fmt.Errorf("failed to create store: %w", err)
	}

	s.logger.Info("store created", "store", name)
	s.events.Publish(ctx, events.NewStoreCreatedEvent(name))
	return ok(MsgStoreCreated), nil
}

// DeleteStore removes the store, its relation rows and its inventory in one
// transaction.
func (s *Service) DeleteStore(ctx context.Context, st *Store) (Response, error) {
	existing, err := s.stores.GetByName(ctx, st.Name)
	if err != nil {
		return Response{}, fmt.Errorf("failed to look up store: %w", err)
	}
	if existing == nil {
		return fail(MsgStoreNotFound), nil
	}

	err = s.tx.RunInTx(ctx, func(stores RepositoryAPI, inventories inventory.RepositoryAPI) error {
		inv, err := inventories.GetByStoreID(ctx, existing.ID)
		if err != nil {
			return err
		}
		if err := stores.Delete(ctx, existing); err != nil {
			return err
		}
		if inv != nil {
			return inventories.Delete(ctx, inv)
		}
		return nil
	})
	if err != nil {
		return Response{}, fmt.Errorf("failed to delete store: %w", err)
	}

	s.logger.Info("store deleted", "store", existing.Name)
	s.events.Publish(ctx, events.NewStoreDeletedEvent(existing.ID, existing.Name))
	return ok(MsgStoreDeleted), nil
}

func (s *Service) GetStore(ctx context.Context, name string) (*Store, error) {
	return s.stores.GetByName(ctx, name)
}

func (s *Service) GetAllStores(ctx context.Context) ([]*Store, error) {
	return s.stores.GetAll(ctx)
}

// SearchStores matches text as a case-insensitive substring of the name.
func (s *Service) SearchStores(ctx context.Context, text string) ([]*Store, error) {
	stores, err := s.stores.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(text)
	matched := make([]*Store, 0, len(stores))
	for _, st := range stores {
		if strings.Contains(strings.ToLower(st.Name), needle) {
			matched = append(matched, st)
		}
	}
	return matched, nil
}

func (s *Service) GetEmployees(ctx context.Context, st *Store) ([]*user.User, error) {
	return s.stores.GetEmployees(ctx, st)
}

func (s *Service) AddEmployee(ctx context.Context, st *Store, email string) (Response, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return Response{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if u == nil {
		return fail(MsgUserNotFound), nil
	}

	existing, err := s.stores.GetByName(ctx, st.Name)
	if err != nil {
		return Response{}, fmt.Errorf("failed to look up store: %w", err)
	}
	if existing == nil {
		return fail(MsgStoreNotFound), nil
	}

	added, err := s.stores.IsEmployeeAlreadyAdded(ctx, u, existing)
	if err != nil {
		return Response{}, fmt.Errorf("failed to check employment: %w", err)
	}
	if added {
		return fail(MsgUserAlreadyAdded), nil
	}

	if err := s.stores.AddEmployee(ctx, existing, u); err != nil {
		return Response{}, fmt.Errorf("failed to add employee: %w", err)
	}

	s.events.Publish(ctx, events.NewEmployeeAddedEvent(existing.Name, u.Email))
	return ok(MsgUserAdded), nil
}

func (s *Service) RemoveEmployee(ctx context.Context, st *Store, u *user.User) (Response, error) {
	byEmail, err := s.users.GetByEmail(ctx, u.Email)
	if err != nil {
		return Response{}, fmt.Errorf("failed to look up user: %w", err)
	}
	existing, err := s.stores.GetByName(ctx, st.Name)
	if err != nil {
		return Response{}, fmt.Errorf("failed to look up store: %w", err)
	}
	if byEmail == nil || existing == nil {
		return fail(MsgUserOrStoreNotFound), nil
	}

	fresh, err := s.users.GetByIDUncached(ctx, byEmail.ID)
	if err != nil {
		return Response{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if fresh == nil {
		return fail(MsgUserOrStoreNotFound), nil
	}

	if err := s.stores.RemoveEmployee(ctx, existing, fresh); err != nil {
		return Response{}, fmt.Errorf("failed to remove employee: %w", err)
	}

	s.events.Publish(ctx, events.NewEmployeeRemovedEvent(existing.Name, fresh.Email))
	return ok(MsgUserRemoved), nil
}

func (s *Service) GetInventory(ctx context.Context, st *Store) (*inventory.Inventory, error) {
	existing, err := s.stores.GetByName(ctx, st.Name)
	if err != nil || existing == nil {
		return nil, err
	}
	return s.inventories.GetByStoreID(ctx, existing.ID)
}

// currentInventory returns the store and its inventory as stored right now,
// or a rejection message.
func (s *Service) currentInventory(ctx context.Context, st *Store) (*Store, *inventory.Inventory, string, error) {
	existing, err := s.stores.GetByName(ctx, st.Name)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to look up store: %w", err)
	}
	if existing == nil {
		return nil, nil, MsgStoreNotFound, nil
	}
	inv, err := s.inventories.GetByStoreID(ctx, existing.ID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to load inventory: %w", err)
	}
	if inv == nil {
		return nil, nil, MsgInventoryNotFound, nil
	}
	return existing, inv, "", nil
}

func (s *Service) CreateInventoryItem(ctx context.Context, st *Store, name string, price, quantity int64) (Response, error) {
	existing, inv, msg, err := s.currentInventory(ctx, st)
	if err != nil {
		return Response{}, err
	}
	if msg != "" {
		return fail(msg), nil
	}

	name = strings.TrimSpace(name)
	v := validation.NewValidator()
	v.Field("name").Required(name, MsgItemNameEmpty, errors.ErrCodeInvalidName)
	v.Field("price").NonNegative(price, MsgInvalidPrice, errors.ErrCodeInvalidPrice)
	v.Field("quantity").NonNegative(quantity, MsgInvalidQuantity, errors.ErrCodeInvalidQuantity)
	if appErr := v.Validate(); appErr != nil {
		return fail(appErr.Message), nil
	}

	if inv.FindItem(name) != nil {
		return fail(MsgItemExists), nil
	}

	if err := s.inventories.AddItem(ctx, inv, inventory.NewItem(name, price, quantity)); err != nil {
		return Response{}, fmt.Errorf("failed to add item: %w", err)
	}

	s.events.Publish(ctx, events.NewItemChangedEvent(existing.Name, name, "created", quantity))
	return ok(MsgItemCreated), nil
}

// UpdateInventoryItem changes only the quantity of the item named like item.
func (s *Service) UpdateInventoryItem(ctx context.Context, st *Store, item *inventory.Item, quantity int64) (Response, error) {
	existing, inv, msg, err := s.currentInventory(ctx, st)
	if err != nil {
		return Response{}, err
	}
	if msg != "" {
		return fail(msg), nil
	}
	if quantity < 0 {
		return fail(MsgInvalidQuantity), nil
	}

	current := inv.FindItem(item.Name)
	if current == nil {
		return fail(MsgItemNotFound), nil
	}

	updated := *current
	updated.Quantity = quantity
	if err := s.inventories.UpdateItem(ctx, inv, &updated); err != nil {
		return Response{}, fmt.Errorf("failed to update item: %w", err)
	}

	s.events.Publish(ctx, events.NewItemChangedEvent(existing.Name, current.Name, "updated", quantity))
	return ok(MsgItemUpdated), nil
}

func (s *Service) RemoveInventoryItem(ctx context.Context, st *Store, item *inventory.Item) (Response, error) {
	existing, inv, msg, err := s.currentInventory(ctx, st)
	if err != nil {
		return Response{}, err
	}
	if msg != "" {
		return fail(msg), nil
	}

	current := inv.FindItem(item.Name)
	if current == nil {
		return fail(MsgItemNotFound), nil
	}

	if err := s.inventories.DeleteItem(ctx, inv, current); err != nil {
		return Response{}, fmt.Errorf("failed to delete item: %w", err)
	}

	s.events.Publish(ctx, events.NewItemChangedEvent(existing.Name, current.Name, "deleted", 0))
	return ok(MsgItemDeleted), nil
}

func (s *Service) GetEmployeesPermissions(ctx context.Context, st *Store) ([]*user.User, error) {
	return s.stores.GetEmployeesPermissions(ctx, st)
}

func (s *Service) HasPermission(ctx context.Context, st *Store, u *user.User) (bool, error) {
	return s.stores.HasPermission(ctx, st, u)
}

func (s *Service) IsEmployee(ctx context.Context, st *Store, u *user.User) (bool, error) {
	return s.stores.IsEmployeeAlreadyAdded(ctx, u, st)
}

func (s *Service) AddPermission(ctx context.Context, st *Store, u *user.User) (Response, error) {
	existing, target, msg, err := s.permissionTarget(ctx, st, u)
	if err != nil {
		return Response{}, err
	}
	if msg != "" {
		return fail(msg), nil
	}

	granted, err := s.stores.HasPermission(ctx, existing, target)
	if err != nil {
		return Response{}, fmt.Errorf("failed to check permission: %w", err)
	}
	if granted {
		return fail(MsgPermissionGranted), nil
	}

	if err := s.stores.AddPermission(ctx, existing, target); err != nil {
		return Response{}, fmt.Errorf("failed to grant permission: %w", err)
	}
	s.logger.Info("store permission granted", "store", existing.Name, "user_id", target.ID)
	return ok(MsgUserAdded), nil
}

func (s *Service) RemovePermission(ctx context.Context, st *Store, u *user.User) (Response, error) {
	existing, target, msg, err := s.permissionTarget(ctx, st, u)
	if err != nil {
		return Response{}, err
	}
	if msg != "" {
		return fail(msg), nil
	}

	if err := s.stores.RemovePermission(ctx, existing, target); err != nil {
		return Response{}, fmt.Errorf("failed to revoke permission: %w", err)
	}
	s.logger.Info("store permission revoked", "store", existing.Name, "user_id", target.ID)
	return ok(MsgUserRemoved), nil
}

func (s *Service) permissionTarget(ctx context.Context, st *Store, u *user.User) (*Store, *user.User, string, error) {
	existing, err := s.stores.GetByName(ctx, st.Name)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to look up store: %w", err)
	}
	if existing == nil {
		return nil, nil, MsgStoreNotFound, nil
	}
	target, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if target == nil {
		return nil, nil, MsgUserNotFound, nil
	}
	return existing, target, "", nil
}
