package postgres

import (
	"fmt"
	"log"
	"log/slog"

	"github.com/LavaJover/agro-escrow-service/internal/config"
	"github.com/LavaJover/agro-escrow-service/internal/infrastructure/postgres/models"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func MustInitDB(cfg *config.EscrowConfig) *gorm.DB {
	db, err := OpenDB(cfg.EscrowDB)
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}
	return db
}

// OpenDB connects with the configured driver. The sqlite driver is for local
// runs and migrates its schema itself; postgres schemas come from the SQL
// migrations.
func OpenDB(cfg config.EscrowDB) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case DriverPostgres, "":
		db, err = gorm.Open(postgres.Open(cfg.Dsn), gormCfg)
	case DriverSQLite:
		db, err = gorm.Open(sqlite.Open(cfg.Dsn), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.Driver == DriverSQLite {
		// a single writer keeps sqlite from reporting "database is locked"
		sqlDB.SetMaxOpenConns(1)
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		slog.Info("sqlite schema migrated", "dsn", cfg.Dsn)
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.EscrowContractModel{}, &models.EscrowEventModel{})
}
