package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/accounts-api/internal/application/validation"
	"github.com/jhoicas/accounts-api/internal/domain"
	"github.com/jhoicas/accounts-api/internal/domain/entity"
)

// SeedResult qué hizo EnsureAdmin.
type SeedResult string

const (
	SeedCreated   SeedResult = "created"
	SeedPromoted  SeedResult = "promoted"
	SeedUnchanged SeedResult = "unchanged"
)

// EnsureAdmin garantiza que exista un admin con el email indicado.
// Si el usuario ya existe se promueve a admin sin tocar su contraseña.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, in validation.SignUpInput) (SeedResult, error) {
	existing, err := uc.userRepo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		if existing.Role == entity.RoleAdmin {
			return SeedUnchanged, nil
		}
		admin := entity.RoleAdmin
		if _, err := uc.userRepo.Update(ctx, existing.ID, entity.UserChanges{Role: &admin}); err != nil {
			return "", fmt.Errorf("seed: promover %s: %w", in.Email, err)
		}
		uc.log.Info().Int64("user_id", existing.ID).Str("email", in.Email).Msg("usuario promovido a admin")
		return SeedPromoted, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return "", fmt.Errorf("seed: buscar email: %w", err)
	}

	in.Role = entity.RoleAdmin
	if _, err := uc.SignUp(ctx, in); err != nil {
		return "", fmt.Errorf("seed: crear admin: %w", err)
	}
	return SeedCreated, nil
}
