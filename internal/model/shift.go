package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shift session states. Closed is terminal — there is no suspended or
// cancelled state; reopening requires a brand-new session.
const (
	ShiftOpen   = "open"
	ShiftClosed = "closed"
)

// ShiftSession represents one cash-drawer session for a cashier at a
// register. At most one OPEN session may exist per (company, cashier,
// register) — enforced by a partial unique index, not just the service-level
// pre-check. The record is created on open and mutated exactly once at close.
type ShiftSession struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CashierID   uuid.UUID       `gorm:"type:uuid;not null"`
	RegisterID  int             `gorm:"not null"`
	OpeningCash decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	// ClosingCash is the expected cash computed at close time:
	// opening_cash + cash-method sales recorded during the shift.
	ClosingCash *decimal.Decimal `gorm:"type:decimal(14,2)"`
	ActualCash  *decimal.Decimal `gorm:"type:decimal(14,2)"`
	// Variance = actual_cash - closing_cash. Non-zero variance requires Notes.
	Variance *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Notes    *string
	Status   string `gorm:"type:varchar(20);not null;default:'open'"`
	OpenedAt time.Time
	ClosedAt *time.Time

	Sales []Sale `gorm:"foreignKey:ShiftSessionID"`
}
