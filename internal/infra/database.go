package infra

import (
	"fmt"

	"warungpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial indexes in particular).
//
// TranslateError is on so unique-violation errors surface as
// gorm.ErrDuplicatedKey, which the shift service relies on to turn a lost
// open race into a conflict.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates the schema. Shared with integration tests so they
// start from the same DDL as the server.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.StockRecord{},
		&model.StockMovement{},
		&model.ShiftSession{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SalePayment{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement guards itself with an existence check so re-running on an
// already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one OPEN session per (company, cashier, register). The
		// partial unique index is the arbiter for concurrent opens; losers
		// get a unique violation translated to gorm.ErrDuplicatedKey.
		{"partial unique index on open shift sessions", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_shift_open_register') THEN
    CREATE UNIQUE INDEX idx_shift_open_register
        ON shift_sessions (company_id, cashier_id, register_id)
        WHERE status = 'open';
  END IF;
END $$`},
		// Movement listings read newest-first per stock key.
		{"movement listing index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_movements_created_at') THEN
    CREATE INDEX idx_movements_created_at
        ON stock_movements (company_id, created_at DESC);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
