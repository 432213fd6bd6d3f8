package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/tigerroll/vacationspots/internal/support/exception"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

const migrationsTable = "schema_migrations"

// Migrate applies all pending up migrations from migrationFS under path.
func Migrate(db *gorm.DB, dbType string, migrationFS fs.FS, path string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return exception.NewBatchError(moduleName, "failed to get underlying sql.DB", err, false, false)
	}

	sourceDriver, err := iofs.New(migrationFS, path)
	if err != nil {
		return exception.NewBatchError(moduleName, fmt.Sprintf("failed to create iofs source driver for path %s", path), err, false, false)
	}

	dbDriver, err := databaseDriver(sqlDB, dbType)
	if err != nil {
		return exception.NewBatchError(moduleName, "failed to create migration database driver", err, false, false)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, dbType, dbDriver)
	if err != nil {
		return exception.NewBatchError(moduleName, "failed to create migrate instance", err, false, false)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return exception.NewBatchError(moduleName, fmt.Sprintf("migration failed (DB: %s, Path: %s)", dbType, path), err, false, false)
	}

	logger.Infof("Schema migrations applied (DB: %s)", dbType)
	return nil
}

func databaseDriver(sqlDB *sql.DB, dbType string) (migratedb.Driver, error) {
	switch dbType {
	case "postgres":
		return migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{MigrationsTable: migrationsTable})
	case "mysql":
		return migratemysql.WithInstance(sqlDB, &migratemysql.Config{MigrationsTable: migrationsTable})
	case "sqlite":
		return migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{MigrationsTable: migrationsTable})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", dbType)
	}
}
