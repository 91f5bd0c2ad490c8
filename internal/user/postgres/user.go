package postgres

import (
	"context"
	"errors"
	"fmt"

	storeDatamodel "github.com/frahmantamala/store-management/internal/core/datamodel/store"
	userDatamodel "github.com/frahmantamala/store-management/internal/core/datamodel/user"
	"github.com/frahmantamala/store-management/internal/database"
	"github.com/frahmantamala/store-management/internal/user"
	"gorm.io/gorm"
)

// UserRepository is the entity store for users. Writes go through the
// runner; reads run on the caller.
type UserRepository struct {
	db   *gorm.DB
	exec database.Runner
}

func NewUserRepository(db *gorm.DB, exec database.Runner) *UserRepository {
	return &UserRepository{db: db, exec: exec}
}

func (r *UserRepository) EnsureSchema(ctx context.Context) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).AutoMigrate(&userDatamodel.User{})
	})
}

// Create inserts u and returns the stored row, identity included.
func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	row := user.ToDataModel(u)
	row.ID = 0
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(row).Error
	})
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return r.GetByEmail(ctx, u.Email)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) GetByIDUncached(ctx context.Context, id int64) (*user.User, error) {
	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) first(ctx context.Context, query string, arg any) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) GetAll(ctx context.Context) ([]*user.User, error) {
	var rows []userDatamodel.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	users := make([]*user.User, 0, len(rows))
	for i := range rows {
		users = append(users, user.FromDataModel(&rows[i]))
	}
	return users, nil
}

// Update overwrites every column of the row identified by u.ID.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Model(&userDatamodel.User{}).
			Where("id = ?", u.ID).
			Updates(map[string]any{
				"email":         u.Email,
				"password_hash": u.PasswordHash,
				"role":          string(u.Role),
				"is_verified":   u.IsVerified,
			}).Error
	})
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return nil
}

// Delete removes the user together with its employment and permission rows.
func (r *UserRepository) Delete(ctx context.Context, u *user.User) error {
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("employee_id = ?", u.ID).Delete(&storeDatamodel.StoreEmployee{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", u.ID).Delete(&storeDatamodel.UserPermission{}).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", u.ID).Delete(&userDatamodel.User{}).Error
		})
	})
	if err != nil {
		return fmt.Errorf("delete user %d: %w", u.ID, err)
	}
	return nil
}
