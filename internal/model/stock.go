package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement types. IN and OUT carry a positive quantity; ADJUSTMENT carries a
// signed quantity (positive = correction up, negative = correction down).
const (
	MovementIn         = "in"
	MovementOut        = "out"
	MovementAdjustment = "adjustment"
)

// StockRecord is the current on-hand quantity for one (product, warehouse)
// key inside a company. Mutated exclusively through the movement ledger —
// never written directly by handlers or other services.
type StockRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_key,priority:1"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_key,priority:2"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_key,priority:3"`
	Quantity    int64     `gorm:"not null;default:0"`
	LastUpdated time.Time
}

// StockMovement is an immutable fact in the inventory ledger. Movements are
// NEVER modified or deleted; the projection quantity is always derivable as
// the signed sum of the movements recorded against its key.
type StockMovement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index:idx_movement_key,priority:1"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index:idx_movement_key,priority:2"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;index:idx_movement_key,priority:3"`
	Type        string    `gorm:"type:varchar(20);not null"` // in | out | adjustment
	// Quantity as submitted: > 0 for in/out, signed for adjustment.
	Quantity       int64 `gorm:"not null"`
	QuantityBefore int64 `gorm:"not null"`
	QuantityAfter  int64 `gorm:"not null"`
	Reference      string
	CreatedBy      uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt      time.Time
}

// TableName overrides GORM's default pluralization.
func (StockMovement) TableName() string { return "stock_movements" }
