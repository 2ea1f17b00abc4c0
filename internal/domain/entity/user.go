package entity

import "time"

// Role rol de autorización de un usuario.
type Role string

// Roles válidos para User.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	// RoleGuest no se persiste: identifica a un llamante sin token (rate limiting).
	RoleGuest Role = "guest"
)

// Valid indica si el rol puede asignarse a un usuario.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User representa una cuenta registrada.
type User struct {
	ID           int64
	Name         string
	Email        string // siempre normalizado (trim + minúsculas)
	PasswordHash string // bcrypt hash, nunca plano
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserChanges cambios parciales de un usuario; nil significa "sin cambio".
type UserChanges struct {
	Name  *string
	Email *string
	Role  *Role
}

// Empty indica que no se pidió ningún cambio.
func (c UserChanges) Empty() bool {
	return c.Name == nil && c.Email == nil && c.Role == nil
}
