// Package operator manages console operators and their sessions.
package operator

import (
	"context"
	"errors"
	"time"

	"github.com/tair/mediops/internal/schema"
)

// Role types
const (
	RoleAdmin      = "admin"
	RolePharmacist = "pharmacist"
)

var (
	ErrNotFound           = errors.New("operator not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("account is deactivated")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// Operator represents a console user (domain model)
type Operator struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	FirstName    *string
	LastName     *string
	Email        *string
	Role         string `gorm:"not null;default:'admin'"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Operator) TableName() string { return "operators" }

// Public returns the wire view without credentials
func (o *Operator) Public() schema.Operator {
	return schema.Operator{
		ID:        o.ID,
		Username:  o.Username,
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Email:     o.Email,
		Role:      o.Role,
	}
}

// Repository defines the contract for operator data access
type Repository interface {
	Create(ctx context.Context, op *Operator) error
	FindByID(ctx context.Context, id uint) (*Operator, error)
	FindByUsername(ctx context.Context, username string) (*Operator, error)
}

func strPtr(s string) *string { return &s }

// Demo is the operator shown when the console runs on demo data
var Demo = schema.Operator{
	ID:        0,
	Username:  "demo_user",
	FirstName: strPtr("Demo"),
	LastName:  strPtr("User"),
	Email:     strPtr("demo@mediops.com"),
	Role:      RoleAdmin,
}
