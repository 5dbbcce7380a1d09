package entity

import "time"

// Roles válidos para User.
const (
	RolePending   = "assujetti_en_attente" // cuenta creada, identificación pendiente
	RoleAssujetti = "assujetti"
	RoleAgent     = "agent" // agente de control en terreno
	RoleAdmin     = "admin"
)

// Estados de la cuenta.
const (
	UserStatusPending   = "pending"
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// User cuenta de acceso al sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // ver constantes Role*
	Status       string // pending, active, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
