package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/accounts-api/internal/application/dto"
	"github.com/jhoicas/accounts-api/internal/application/validation"
	"github.com/jhoicas/accounts-api/internal/domain"
	"github.com/jhoicas/accounts-api/internal/domain/entity"
	"github.com/jhoicas/accounts-api/internal/domain/repository"
	"github.com/jhoicas/accounts-api/pkg/jwt"
	"github.com/jhoicas/accounts-api/pkg/logger"
)

// timingPassword se hashea una vez al construir el use case; SignIn lo compara
// cuando el email no existe para que ambos rechazos cuesten lo mismo.
const timingPassword = "timing-equalizer-password"

// PasswordHasher hash y verificación de contraseñas (lo implementa *password.Hasher).
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

// TokenIssuer emisión de tokens de sesión (lo implementa *jwt.Service).
type TokenIssuer interface {
	Issue(id jwt.Identity) (string, error)
}

// Result usuario público más el token que el handler pone en la cookie.
type Result struct {
	User  dto.UserResponse
	Token string
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	userRepo  repository.UserRepository
	hasher    PasswordHasher
	tokens    TokenIssuer
	log       *logger.Logger
	dummyHash string
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, log *logger.Logger) *AuthUseCase {
	if log == nil {
		log = logger.Nop()
	}
	uc := &AuthUseCase{userRepo: userRepo, hasher: hasher, tokens: tokens, log: log}
	if h, err := hasher.Hash(timingPassword); err == nil {
		uc.dummyHash = h
	}
	return uc
}

// SignUp crea un usuario: hashea password con bcrypt, persiste y emite el token.
// Devuelve domain.ErrEmailAlreadyExists si el email normalizado ya existe.
func (uc *AuthUseCase) SignUp(ctx context.Context, in validation.SignUpInput) (*Result, error) {
	_, err := uc.userRepo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, domain.ErrEmailAlreadyExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("signup: buscar email: %w", err)
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		uc.log.Error().Err(err).Str("op", "signup").Str("email", in.Email).Msg("hash de password")
		return nil, fmt.Errorf("%w: %v", domain.ErrHashing, err)
	}

	role := in.Role
	if !role.Valid() {
		role = entity.RoleUser
	}
	user := &entity.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	}
	// La unicidad final la garantiza el índice: dos registros concurrentes terminan en ErrEmailAlreadyExists.
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("signup: crear usuario: %w", err)
	}
	uc.log.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("usuario creado")

	token, err := uc.issue(user)
	if err != nil {
		return nil, err
	}
	return &Result{User: dto.NewUserResponse(user), Token: token}, nil
}

// SignIn verifica email/password y emite un token nuevo.
// Email inexistente y password incorrecto devuelven el mismo domain.ErrInvalidCredentials.
func (uc *AuthUseCase) SignIn(ctx context.Context, in validation.SignInInput) (*Result, error) {
	user, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			if uc.dummyHash != "" {
				_, _ = uc.hasher.Verify(in.Password, uc.dummyHash)
			}
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("signin: buscar email: %w", err)
	}

	ok, err := uc.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		uc.log.Error().Err(err).Str("op", "signin").Int64("user_id", user.ID).Msg("hash almacenado inválido")
		return nil, fmt.Errorf("%w: %v", domain.ErrHashing, err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := uc.issue(user)
	if err != nil {
		return nil, err
	}
	return &Result{User: dto.NewUserResponse(user), Token: token}, nil
}

func (uc *AuthUseCase) issue(user *entity.User) (string, error) {
	token, err := uc.tokens.Issue(jwt.Identity{ID: user.ID, Email: user.Email, Role: string(user.Role)})
	if err != nil {
		uc.log.Error().Err(err).Int64("user_id", user.ID).Msg("firma de token")
		return "", fmt.Errorf("%w: %v", domain.ErrToken, err)
	}
	return token, nil
}
