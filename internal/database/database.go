// Package database owns the single shared connection and the executor that
// serializes writes onto it.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/store-management/internal"
	"github.com/frahmantamala/store-management/pkg/logger"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured backend with exactly one open connection,
// logging through the process logger.
func Open(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	return OpenWithLogger(cfg, logger.LoggerWrapper())
}

func OpenWithLogger(cfg internal.DatabaseConfig, lg *slog.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Driver, cfg.Source)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(lg, cfg.LogQueries),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(driver, source string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(source), nil
	case "mysql":
		return mysql.Open(source), nil
	case "sqlite":
		return sqlite.Open(source), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// SQLXDriverName maps a configured driver to the name sqlx uses to pick
// its bind variable style.
func SQLXDriverName(driver string) string {
	switch driver {
	case "postgres":
		return "pgx"
	case "sqlite":
		return "sqlite3"
	default:
		return driver
	}
}

const slowQueryThreshold = 200 * time.Millisecond

// NewGormLogger routes gorm's statement, slow query and error lines to lg.
// Statements are only traced when logQueries is set.
func NewGormLogger(lg *slog.Logger, logQueries bool) gormlogger.Interface {
	level := gormlogger.Warn
	if logQueries {
		level = gormlogger.Info
	}
	return gormlogger.New(slogWriter{logger: lg.With("component", "gorm")}, gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...interface{}) {
	w.logger.Info(fmt.Sprintf(format, args...))
}
