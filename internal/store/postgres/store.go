package postgres

import (
	"context"
	"errors"
	"fmt"

	storeDatamodel "github.com/frahmantamala/store-management/internal/core/datamodel/store"
	userDatamodel "github.com/frahmantamala/store-management/internal/core/datamodel/user"
	"github.com/frahmantamala/store-management/internal/database"
	"github.com/frahmantamala/store-management/internal/inventory"
	"github.com/frahmantamala/store-management/internal/store"
	"github.com/frahmantamala/store-management/internal/user"
	"gorm.io/gorm"
)

// InventoryReader supplies the inventory assembled into each store.
type InventoryReader interface {
	GetByStoreID(ctx context.Context, storeID int64) (*inventory.Inventory, error)
}

type StoreRepository struct {
	db          *gorm.DB
	exec        database.Runner
	inventories InventoryReader
}

func NewStoreRepository(db *gorm.DB, exec database.Runner, inventories InventoryReader) *StoreRepository {
	return &StoreRepository{db: db, exec: exec, inventories: inventories}
}

func (r *StoreRepository) EnsureSchema(ctx context.Context) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).AutoMigrate(
			&storeDatamodel.Store{},
			&storeDatamodel.StoreEmployee{},
			&storeDatamodel.UserPermission{},
		)
	})
}

func (r *StoreRepository) Create(ctx context.Context, s *store.Store) (*store.Store, error) {
	row := &storeDatamodel.Store{Name: s.Name}
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(row).Error
	})
	if err != nil {
		return nil, fmt.Errorf("insert store %q: %w", s.Name, err)
	}
	return r.GetByName(ctx, s.Name)
}

func (r *StoreRepository) GetByName(ctx context.Context, name string) (*store.Store, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *StoreRepository) GetByID(ctx context.Context, id int64) (*store.Store, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *StoreRepository) first(ctx context.Context, query string, arg any) (*store.Store, error) {
	var row storeDatamodel.Store
	if err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("select store: %w", err)
	}
	return r.assemble(ctx, &row)
}

// GetAll returns every store with its inventory and employees.
func (r *StoreRepository) GetAll(ctx context.Context) ([]*store.Store, error) {
	var rows []storeDatamodel.Store
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select stores: %w", err)
	}
	stores := make([]*store.Store, 0, len(rows))
	for i := range rows {
		s, err := r.assemble(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, nil
}

func (r *StoreRepository) assemble(ctx context.Context, row *storeDatamodel.Store) (*store.Store, error) {
	employees, err := r.employeesOf(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	inv, err := r.inventories.GetByStoreID(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return store.FromDataModel(row, employees, inv), nil
}

// Delete removes the store and its employment and permission rows. The
// inventory is owned by the inventory store and is not touched here.
func (r *StoreRepository) Delete(ctx context.Context, s *store.Store) error {
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("store_id = ?", s.ID).Delete(&storeDatamodel.StoreEmployee{}).Error; err != nil {
				return err
			}
			if err := tx.Where("store_id = ?", s.ID).Delete(&storeDatamodel.UserPermission{}).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", s.ID).Delete(&storeDatamodel.Store{}).Error
		})
	})
	if err != nil {
		return fmt.Errorf("delete store %d: %w", s.ID, err)
	}
	return nil
}

func (r *StoreRepository) AddEmployee(ctx context.Context, s *store.Store, u *user.User) error {
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(&storeDatamodel.StoreEmployee{StoreID: s.ID, EmployeeID: u.ID}).Error
	})
	if err != nil {
		return fmt.Errorf("add employee %d to store %d: %w", u.ID, s.ID, err)
	}
	return nil
}

func (r *StoreRepository) RemoveEmployee(ctx context.Context, s *store.Store, u *user.User) error {
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).
			Where("store_id = ? AND employee_id = ?", s.ID, u.ID).
			Delete(&storeDatamodel.StoreEmployee{}).Error
	})
	if err != nil {
		return fmt.Errorf("remove employee %d from store %d: %w", u.ID, s.ID, err)
	}
	return nil
}

func (r *StoreRepository) IsEmployeeAlreadyAdded(ctx context.Context, u *user.User, s *store.Store) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&storeDatamodel.StoreEmployee{}).
		Where("store_id = ? AND employee_id = ?", s.ID, u.ID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check employee %d of store %d: %w", u.ID, s.ID, err)
	}
	return count > 0, nil
}

func (r *StoreRepository) GetEmployees(ctx context.Context, s *store.Store) ([]*user.User, error) {
	return r.employeesOf(ctx, s.ID)
}

func (r *StoreRepository) employeesOf(ctx context.Context, storeID int64) ([]*user.User, error) {
	var rows []userDatamodel.User
	err := r.db.WithContext(ctx).
		Joins("JOIN stores_employee ON stores_employee.employee_id = users.id").
		Where("stores_employee.store_id = ?", storeID).
		Order("users.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select employees of store %d: %w", storeID, err)
	}
	return toUsers(rows), nil
}

func (r *StoreRepository) GetEmployeesPermissions(ctx context.Context, s *store.Store) ([]*user.User, error) {
	var rows []userDatamodel.User
	err := r.db.WithContext(ctx).
		Joins("JOIN users_permission ON users_permission.user_id = users.id").
		Where("users_permission.store_id = ?", s.ID).
		Order("users.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select permission holders of store %d: %w", s.ID, err)
	}
	return toUsers(rows), nil
}

func (r *StoreRepository) AddPermission(ctx context.Context, s *store.Store, u *user.User) error {
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(&storeDatamodel.UserPermission{StoreID: s.ID, UserID: u.ID}).Error
	})
	if err != nil {
		return fmt.Errorf("grant store %d to user %d: %w", s.ID, u.ID, err)
	}
	return nil
}

func (r *StoreRepository) RemovePermission(ctx context.Context, s *store.Store, u *user.User) error {
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).
			Where("store_id = ? AND user_id = ?", s.ID, u.ID).
			Delete(&storeDatamodel.UserPermission{}).Error
	})
	if err != nil {
		return fmt.Errorf("revoke store %d from user %d: %w", s.ID, u.ID, err)
	}
	return nil
}

func (r *StoreRepository) HasPermission(ctx context.Context, s *store.Store, u *user.User) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&storeDatamodel.UserPermission{}).
		Where("store_id = ? AND user_id = ?", s.ID, u.ID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check permission of user %d on store %d: %w", u.ID, s.ID, err)
	}
	return count > 0, nil
}

func toUsers(rows []userDatamodel.User) []*user.User {
	users := make([]*user.User, 0, len(rows))
	for i := range rows {
		users = append(users, user.FromDataModel(&rows[i]))
	}
	return users
}
