// Package database opens gorm connections for the configured database type
// and applies schema migrations.
package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tigerroll/vacationspots/internal/config"
	"github.com/tigerroll/vacationspots/internal/support/exception"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

const moduleName = "database"

// dialectorFactory builds a gorm.Dialector from connection settings.
type dialectorFactory func(cfg config.DatabaseConfig) (gorm.Dialector, error)

var dialectorFactories = map[string]dialectorFactory{
	"postgres": func(cfg config.DatabaseConfig) (gorm.Dialector, error) {
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.Sslmode)
		return postgres.Open(dsn), nil
	},
	"mysql": func(cfg config.DatabaseConfig) (gorm.Dialector, error) {
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
		return mysql.Open(dsn), nil
	},
	"sqlite": func(cfg config.DatabaseConfig) (gorm.Dialector, error) {
		return sqlite.Open(cfg.Database), nil
	},
}

// Open connects to the database described by cfg and verifies the connection.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	factory, ok := dialectorFactories[cfg.Type]
	if !ok {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("unsupported database type: '%s'", cfg.Type), nil, false, false)
	}
	dialector, err := factory(cfg)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to build dialector", err, false, false)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("failed to open %s database", cfg.Type), err, false, true)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to obtain underlying sql.DB", err, false, false)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, exception.NewBatchError(moduleName, "database ping failed", err, false, true)
	}

	logger.Infof("Connected to %s database '%s'", cfg.Type, cfg.Database)
	return db, nil
}
