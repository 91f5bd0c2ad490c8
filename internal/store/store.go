package store

import (
	"context"

	storeDatamodel "github.com/frahmantamala/store-management/internal/core/datamodel/store"
	"github.com/frahmantamala/store-management/internal/inventory"
	"github.com/frahmantamala/store-management/internal/user"
)

type Store struct {
	ID        int64                `json:"id"`
	Name      string               `json:"name"`
	Employees []*user.User         `json:"employees"`
	Inventory *inventory.Inventory `json:"inventory,omitempty"`
}

func New(name string) *Store {
	return &Store{Name: name, Employees: []*user.User{}}
}

func (s *Store) HasEmployee(userID int64) bool {
	for _, e := range s.Employees {
		if e.ID == userID {
			return true
		}
	}
	return false
}

func (s *Store) ToResponse() StoreResponse {
	employees := make([]user.UserResponse, 0, len(s.Employees))
	for _, e := range s.Employees {
		employees = append(employees, e.ToResponse())
	}
	resp := StoreResponse{ID: s.ID, Name: s.Name, Employees: employees}
	if s.Inventory != nil {
		inv := s.Inventory.ToResponse()
		resp.Inventory = &inv
	}
	return resp
}

// RepositoryAPI is implemented by the entity store and by its caching
// decorator. Employee and permission reads always hit the entity store.
type RepositoryAPI interface {
	Create(ctx context.Context, s *Store) (*Store, error)
	GetByName(ctx context.Context, name string) (*Store, error)
	GetByID(ctx context.Context, id int64) (*Store, error)
	GetAll(ctx context.Context) ([]*Store, error)
	Delete(ctx context.Context, s *Store) error

	AddEmployee(ctx context.Context, s *Store, u *user.User) error
	RemoveEmployee(ctx context.Context, s *Store, u *user.User) error
	IsEmployeeAlreadyAdded(ctx context.Context, u *user.User, s *Store) (bool, error)
	GetEmployees(ctx context.Context, s *Store) ([]*user.User, error)

	GetEmployeesPermissions(ctx context.Context, s *Store) ([]*user.User, error)
	AddPermission(ctx context.Context, s *Store, u *user.User) error
	RemovePermission(ctx context.Context, s *Store, u *user.User) error
	HasPermission(ctx context.Context, s *Store, u *user.User) (bool, error)
}

func ToDataModel(s *Store) *storeDatamodel.Store {
	return &storeDatamodel.Store{ID: s.ID, Name: s.Name}
}

func FromDataModel(row *storeDatamodel.Store, employees []*user.User, inv *inventory.Inventory) *Store {
	if employees == nil {
		employees = []*user.User{}
	}
	return &Store{
		ID:        row.ID,
		Name:      row.Name,
		Employees: employees,
		Inventory: inv,
	}
}
