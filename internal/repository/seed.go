package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/frahmantamala/store-management/internal/database"
	"github.com/frahmantamala/store-management/internal/user"
	"github.com/jmoiron/sqlx"
)

// SeedAdmin makes sure the administrator account exists, is verified, has
// the ADMIN role and carries a fresh hash of password.
func (r *Repository) SeedAdmin(ctx context.Context, login, password string, bcryptCost int) error {
	hash, err := user.HashPassword(password, bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql handle: %w", err)
	}
	db := sqlx.NewDb(sqlDB, database.SQLXDriverName(r.driver))

	err = r.exec.Do(ctx, func(ctx context.Context) error {
		var id int64
		err := db.GetContext(ctx, &id, db.Rebind("SELECT id FROM users WHERE email = ?"), login)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = db.ExecContext(ctx,
				db.Rebind("INSERT INTO users (email, password_hash, role, is_verified) VALUES (?, ?, ?, ?)"),
				login, hash, string(user.RoleAdmin), true)
			return err
		case err != nil:
			return err
		}
		_, err = db.ExecContext(ctx,
			db.Rebind("UPDATE users SET password_hash = ?, role = ?, is_verified = ? WHERE id = ?"),
			hash, string(user.RoleAdmin), true, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert admin %s: %w", login, err)
	}

	r.logger.Info("admin account seeded", "login", login)
	return r.InvalidateAll(ctx)
}
