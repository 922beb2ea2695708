package entity

import "github.com/google/uuid"

type UserRole string

const (
	RoleOwner UserRole = "owner"
	RoleStaff UserRole = "staff"
)

type User struct {
	BaseNoDelete
	TenantID     uuid.UUID `db:"tenant_id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password"`
	Role         UserRole  `db:"role"`
	IsActive     bool      `db:"is_active"`
}
