package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles: kasir operates a register, supervisor adjusts stock and reviews
// shifts, pemilik (owner) manages users and sees everything.
const (
	RoleCashier    = "cashier"
	RoleSupervisor = "supervisor"
	RoleOwner      = "owner"
)

// User is an application account scoped to one company (tenant).
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(20);not null"`
	// RegisterID is the register this cashier usually operates; nil for
	// supervisors and owners.
	RegisterID *int
	Active     bool `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
