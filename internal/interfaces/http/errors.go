package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/jhoicas/accounts-api/internal/application/dto"
	"github.com/jhoicas/accounts-api/internal/domain"
	"github.com/jhoicas/accounts-api/pkg/logger"
)

// Mensajes públicos. Los 500 nunca exponen el error interno.
const (
	msgInternal      = "Internal server error"
	msgTimeout       = "Request timed out"
	msgUserNotFound  = "User not found"
	msgEmailExists   = "User with email exists"
	msgInvalidCreds  = "Invalid email or password"
	msgMissingToken  = "Access token required"
	msgInvalidToken  = "Invalid or expired token"
	msgNotOwner      = "Forbidden: You can only modify your own account"
	msgRoleChange    = "Forbidden: Only admins can change user roles"
	msgInsufficient  = "Forbidden: Insufficient permissions"
	msgBotForbidden  = "Bot traffic is not allowed"
	msgRouteNotFound = "Route not found"
)

// statusFor traduce un error de dominio a status HTTP, código y mensaje público.
func statusFor(err error) (int, dto.ErrorResponse) {
	if ve, ok := domain.AsValidationError(err); ok {
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Error: ve.Message, Details: ve.Fields}
	}
	switch {
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "EMAIL_EXISTS", Error: msgEmailExists}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "INVALID_CREDENTIALS", Error: msgInvalidCreds}
	case errors.Is(err, domain.ErrMissingToken):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "MISSING_TOKEN", Error: msgMissingToken}
	case errors.Is(err, domain.ErrInvalidToken):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "INVALID_TOKEN", Error: msgInvalidToken}
	case errors.Is(err, domain.ErrRoleChange):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Error: msgRoleChange}
	case errors.Is(err, domain.ErrNotOwner):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Error: msgNotOwner}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Error: msgInsufficient}
	case errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "USER_NOT_FOUND", Error: msgUserNotFound}
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, dto.ErrorResponse{Code: "TIMEOUT", Error: msgTimeout}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Error: msgInternal}
	}
}

// respondError escribe la respuesta de error y la registra con la operación y el
// campo que la identifica (pares clave/valor en fields).
func respondError(c *fiber.Ctx, log *logger.Logger, op string, err error, fields ...any) error {
	status, body := statusFor(err)

	ev := log.Warn()
	if status >= fiber.StatusInternalServerError {
		ev = log.Error()
	}
	ev = ev.Err(err).Str("op", op).Int("status", status).Str("request_id", requestID(c))
	if id := GetUserID(c); id != 0 {
		ev = ev.Int64("caller_id", id)
	}
	if len(fields) > 0 {
		ev = ev.Fields(fields)
	}
	ev.Msg("petición rechazada")

	return c.Status(status).JSON(body)
}

// ErrorHandler captura lo que llega sin manejar desde handlers y middleware.
// Los *fiber.Error conservan su status; el resto es un 500 genérico.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			msg := fe.Message
			if fe.Code == fiber.StatusNotFound {
				msg = msgRouteNotFound
			}
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: codeFor(fe.Code), Error: msg})
		}
		return respondError(c, log, "unhandled", err, "path", c.Path(), "method", c.Method())
	}
}

// codeFor convierte 405 en METHOD_NOT_ALLOWED, etc.
func codeFor(status int) string {
	return strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(status), " ", "_"))
}
