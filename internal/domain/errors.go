package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("user with email exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingToken       = errors.New("access token required")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("forbidden")
	ErrHashing            = errors.New("password hashing failed")
	ErrToken              = errors.New("token signing failed")
)

// Variantes de ErrForbidden con el mensaje que recibe el cliente.
var (
	ErrNotOwner         = fmt.Errorf("%w: you can only modify your own account", ErrForbidden)
	ErrRoleChange       = fmt.Errorf("%w: only admins can change user roles", ErrForbidden)
	ErrInsufficientRole = fmt.Errorf("%w: insufficient permissions", ErrForbidden)
)

// FieldError describe un campo rechazado por la validación.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError agrupa los rechazos de un payload. Nunca es parcialmente válido.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + ": " + strings.Join(parts, ", ")
}

// NewValidationError construye un ValidationError con un único campo.
func NewValidationError(message, field, fieldMsg string) *ValidationError {
	return &ValidationError{Message: message, Fields: []FieldError{{Field: field, Message: fieldMsg}}}
}

// AsValidationError extrae un *ValidationError de la cadena de errores.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
