package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/accounts-api/internal/application/dto"
	"github.com/jhoicas/accounts-api/internal/domain"
	"github.com/jhoicas/accounts-api/internal/domain/access"
	"github.com/jhoicas/accounts-api/internal/domain/entity"
	"github.com/jhoicas/accounts-api/internal/domain/repository"
	"github.com/jhoicas/accounts-api/pkg/logger"
)

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo repository.UserRepository
	log  *logger.Logger
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, log *logger.Logger) *UserUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UserUseCase{repo: repo, log: log}
}

// List devuelve todos los usuarios (sin paginación).
func (uc *UserUseCase) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar usuarios: %w", err)
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewUserResponse(u))
	}
	return out, nil
}

// GetByID obtiene un usuario por ID. Devuelve domain.ErrUserNotFound si no existe.
func (uc *UserUseCase) GetByID(ctx context.Context, subject access.Subject, id int64) (*dto.UserResponse, error) {
	if err := access.Authorize(subject, access.ActionRead, id, entity.UserChanges{}); err != nil {
		return nil, err
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr("obtener usuario", err)
	}
	out := dto.NewUserResponse(user)
	return &out, nil
}

// Update aplica cambios tras evaluar la política self-or-admin y la guarda de rol.
func (uc *UserUseCase) Update(ctx context.Context, subject access.Subject, id int64, changes entity.UserChanges) (*dto.UserResponse, error) {
	if err := access.Authorize(subject, access.ActionUpdate, id, changes); err != nil {
		return nil, err
	}
	user, err := uc.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, wrapRepoErr("actualizar usuario", err)
	}
	uc.log.Info().Int64("user_id", user.ID).Str("email", user.Email).Str("by", subject.Email).Msg("usuario actualizado")
	out := dto.NewUserResponse(user)
	return &out, nil
}

// Delete elimina un usuario tras evaluar la política self-or-admin.
func (uc *UserUseCase) Delete(ctx context.Context, subject access.Subject, id int64) error {
	if err := access.Authorize(subject, access.ActionDelete, id, entity.UserChanges{}); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return wrapRepoErr("eliminar usuario", err)
	}
	uc.log.Info().Int64("user_id", id).Str("by", subject.Email).Msg("usuario eliminado")
	return nil
}

// wrapRepoErr deja pasar los errores tipados del repositorio y envuelve el resto.
func wrapRepoErr(op string, err error) error {
	if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrEmailAlreadyExists) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
