package repository

import (
	"context"

	"github.com/jhoicas/accounts-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
//
// Los métodos devuelven domain.ErrUserNotFound cuando la fila no existe y
// domain.ErrEmailAlreadyExists ante una violación de unicidad del email.
// Cada llamada es atómica por sí misma; no hay transacciones entre llamadas.
type UserRepository interface {
	// Create persiste el usuario y completa ID, CreatedAt y UpdatedAt.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	// Update aplica los cambios no nulos y devuelve el registro resultante.
	Update(ctx context.Context, id int64, changes entity.UserChanges) (*entity.User, error)
	Delete(ctx context.Context, id int64) error
}
