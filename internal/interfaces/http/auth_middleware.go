package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/accounts-api/internal/domain"
	"github.com/jhoicas/accounts-api/internal/domain/access"
	"github.com/jhoicas/accounts-api/internal/domain/entity"
	"github.com/jhoicas/accounts-api/pkg/jwt"
	"github.com/jhoicas/accounts-api/pkg/logger"
)

// CookieName cookie de sesión que transporta el JWT.
const CookieName = "token"

// Locals keys para la identidad autenticada en Fiber.
const (
	LocalUserID  = "user_id"
	LocalSubject = "subject"
)

// TokenVerifier verificación de tokens de sesión (lo implementa *jwt.Service).
type TokenVerifier interface {
	Verify(token string) (jwt.Identity, error)
}

// AuthMiddleware exige una cookie de sesión válida y deja el Subject en c.Locals.
func AuthMiddleware(tokens TokenVerifier, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(CookieName)
		if raw == "" {
			return respondError(c, log, "authenticate", domain.ErrMissingToken, "path", c.Path())
		}
		subject, err := subjectFromToken(tokens, raw)
		if err != nil {
			return respondError(c, log, "authenticate", err, "path", c.Path())
		}
		setSubject(c, subject)
		return c.Next()
	}
}

// OptionalAuth carga la identidad si hay una cookie válida y nunca rechaza.
// El rate limiter la usa para elegir el límite del rol.
func OptionalAuth(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := c.Cookies(CookieName); raw != "" {
			if subject, err := subjectFromToken(tokens, raw); err == nil {
				setSubject(c, subject)
			}
		}
		return c.Next()
	}
}

// RequireRole exige el rol indicado; va siempre después de AuthMiddleware.
func RequireRole(role entity.Role, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject, ok := GetSubject(c)
		if !ok {
			return respondError(c, log, "require_role", domain.ErrMissingToken)
		}
		if err := access.RequireRole(subject, role); err != nil {
			return respondError(c, log, "require_role", err, "role", string(subject.Role), "required", string(role))
		}
		return c.Next()
	}
}

// GetSubject devuelve la identidad del contexto (después del middleware de auth).
func GetSubject(c *fiber.Ctx) (access.Subject, bool) {
	s, ok := c.Locals(LocalSubject).(access.Subject)
	return s, ok
}

// GetUserID devuelve el ID del llamante o 0 si no está autenticado.
func GetUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(LocalUserID).(int64)
	return id
}

func setSubject(c *fiber.Ctx, s access.Subject) {
	c.Locals(LocalSubject, s)
	c.Locals(LocalUserID, s.UserID)
}

// subjectFromToken verifica el token y rechaza roles que no pueden asignarse a un usuario.
func subjectFromToken(tokens TokenVerifier, raw string) (access.Subject, error) {
	id, err := tokens.Verify(raw)
	if err != nil {
		return access.Subject{}, domain.ErrInvalidToken
	}
	role := entity.Role(id.Role)
	if !role.Valid() {
		return access.Subject{}, domain.ErrInvalidToken
	}
	return access.Subject{UserID: id.ID, Email: id.Email, Role: role}, nil
}
