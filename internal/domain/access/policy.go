// Package access evalúa las reglas de autorización sobre cuentas de usuario.
//
// Las reglas confían en la identidad tal como viene en el token: no se vuelve a
// consultar el rol almacenado, por lo que un cambio de rol se aplica cuando el
// token anterior expira o se reemplaza.
package access

import (
	"github.com/jhoicas/accounts-api/internal/domain"
	"github.com/jhoicas/accounts-api/internal/domain/entity"
)

// Subject identidad autenticada del llamante.
type Subject struct {
	UserID int64
	Email  string
	Role   entity.Role
}

// IsAdmin indica si el llamante tiene rol admin.
func (s Subject) IsAdmin() bool {
	return s.Role == entity.RoleAdmin
}

// Action operación sobre un registro de usuario.
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Authorize decide si subject puede ejecutar action sobre el usuario targetID con los cambios indicados.
//
//   - read: cualquier llamante autenticado.
//   - update: self-or-admin; además solo un admin puede enviar role, aunque coincida con el actual.
//   - delete: self-or-admin.
func Authorize(subject Subject, action Action, targetID int64, changes entity.UserChanges) error {
	switch action {
	case ActionRead:
		return nil
	case ActionUpdate:
		if !subject.IsAdmin() && subject.UserID != targetID {
			return domain.ErrNotOwner
		}
		if changes.Role != nil && !subject.IsAdmin() {
			return domain.ErrRoleChange
		}
		return nil
	case ActionDelete:
		if !subject.IsAdmin() && subject.UserID != targetID {
			return domain.ErrNotOwner
		}
		return nil
	default:
		return domain.ErrInsufficientRole
	}
}

// RequireRole exige que el llamante tenga exactamente el rol indicado.
func RequireRole(subject Subject, role entity.Role) error {
	if subject.Role != role {
		return domain.ErrInsufficientRole
	}
	return nil
}
