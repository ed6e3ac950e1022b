package entity

import "time"

// Roles válidos para User. RoleAdmin ve todos los hubs y omite los chequeos de rol.
const (
	RoleAdmin    = "ADMIN"
	RoleHub      = "HUB"
	RoleRetail   = "RETAIL"
	RoleSupplier = "SUPPLIER"
)

// IsValidRole indica si role es uno de los roles conocidos.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleHub, RoleRetail, RoleSupplier:
		return true
	}
	return false
}

// User representa un usuario del sistema. HubID vacío = sin hub asignado.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string
	HubID        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin indica si el usuario tiene privilegios de superusuario.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
