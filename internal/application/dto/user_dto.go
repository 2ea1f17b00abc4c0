package dto

import (
	"time"

	"github.com/jhoicas/accounts-api/internal/domain/entity"
)

// SignUpRequest entrada de registro (password en texto, se hashea en el use case).
type SignUpRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// SignInRequest entrada de login.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest cambios parciales; los campos ausentes quedan en nil.
type UpdateUserRequest struct {
	Name  *string `json:"name" validate:"omitnil,min=2,max=255"`
	Email *string `json:"email" validate:"omitnil,email,max=255"`
	Role  *string `json:"role" validate:"omitnil,oneof=user admin"`
}

// UserResponse salida de un usuario (sin password ni hash).
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthUser vista pública mínima devuelta por sign-up y sign-in.
type AuthUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthResponse cuerpo de sign-up y sign-in (el token viaja en la cookie).
type AuthResponse struct {
	Message string   `json:"message"`
	User    AuthUser `json:"user"`
}

// UserListResponse cuerpo de GET /users.
type UserListResponse struct {
	Message string         `json:"message"`
	Data    []UserResponse `json:"data"`
}

// UserDataResponse cuerpo de GET/PUT /users/:id.
type UserDataResponse struct {
	Message string       `json:"message"`
	Data    UserResponse `json:"data"`
}

// NewUserResponse vista pública de un usuario (sin hash).
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
