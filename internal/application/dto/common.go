package dto

import "github.com/jhoicas/accounts-api/internal/domain"

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string              `json:"code"`
	Error   string              `json:"error"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// MessageResponse cuerpo con solo un mensaje.
type MessageResponse struct {
	Message string `json:"message"`
}
