package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods accepted at the register. A split-tender sale is stored as
// one SalePayment row per component method, so "split" never appears as a
// row value itself.
const (
	PayCash     = "cash"
	PayCard     = "card"
	PayTransfer = "transfer"
	PayEwallet  = "ewallet"
	PayCredit   = "credit"
)

// Sale is one completed POS transaction recorded against an open shift.
// The shift summary is recomputed from these rows on every request.
type Sale struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ShiftSessionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	CashierID      uuid.UUID       `gorm:"type:uuid;not null"`
	Total          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt      time.Time

	Items    []SaleItem    `gorm:"foreignKey:SaleID"`
	Payments []SalePayment `gorm:"foreignKey:SaleID"`
}

type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

type SalePayment struct {
	ID     uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Method string          `gorm:"type:varchar(20);not null"`
	Amount decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}
