package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/accounts-api/internal/application/auth"
	"github.com/jhoicas/accounts-api/internal/application/dto"
	"github.com/jhoicas/accounts-api/internal/application/validation"
	"github.com/jhoicas/accounts-api/internal/domain"
	"github.com/jhoicas/accounts-api/internal/infrastructure/metrics"
	"github.com/jhoicas/accounts-api/pkg/logger"
)

// CookieConfig atributos de la cookie de sesión.
type CookieConfig struct {
	Secure bool
	TTL    time.Duration
}

// AuthHandler maneja registro, login y logout.
type AuthHandler struct {
	uc      *auth.AuthUseCase
	val     *validation.Validator
	cookie  CookieConfig
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, val *validation.Validator, cookie CookieConfig, log *logger.Logger, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{uc: uc, val: val, cookie: cookie, log: log, metrics: m}
}

// SignUp godoc
// @Summary      Registrar usuario
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignUpRequest  true  "name, email, password, role"
// @Success      201   {object}  dto.AuthResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/sign-up [post]
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	in, err := h.val.SignUp(c.Body())
	if err != nil {
		h.metrics.AuthEvent("signup", "invalid")
		return respondError(c, h.log, "signup", err)
	}
	res, err := h.uc.SignUp(c.UserContext(), in)
	if err != nil {
		h.metrics.AuthEvent("signup", outcome(err))
		return respondError(c, h.log, "signup", err, "email", in.Email)
	}
	h.setSession(c, res.Token)
	h.metrics.AuthEvent("signup", "ok")
	h.log.Info().Str("email", res.User.Email).Str("role", res.User.Role).Msg("usuario registrado")
	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{
		Message: "User signed up successfully",
		User:    authUser(res.User),
	})
}

// SignIn godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignInRequest  true  "email, password"
// @Success      200   {object}  dto.AuthResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/sign-in [post]
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	in, err := h.val.SignIn(c.Body())
	if err != nil {
		h.metrics.AuthEvent("signin", "invalid")
		return respondError(c, h.log, "signin", err)
	}
	res, err := h.uc.SignIn(c.UserContext(), in)
	if err != nil {
		h.metrics.AuthEvent("signin", outcome(err))
		return respondError(c, h.log, "signin", err, "email", in.Email)
	}
	h.setSession(c, res.Token)
	h.metrics.AuthEvent("signin", "ok")
	h.log.Info().Str("email", res.User.Email).Msg("usuario autenticado")
	return c.JSON(dto.AuthResponse{
		Message: "User signed in successfully",
		User:    authUser(res.User),
	})
}

// SignOut godoc
// @Summary      Cerrar sesión
// @Tags         auth
// @Produce      json
// @Success      200   {object}  dto.MessageResponse
// @Router       /api/auth/sign-out [post]
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	h.clearSession(c)
	h.metrics.AuthEvent("signout", "ok")
	h.log.Info().Int64("user_id", GetUserID(c)).Msg("usuario cerró sesión")
	return c.JSON(dto.MessageResponse{Message: "User signed out successfully"})
}

func (h *AuthHandler) setSession(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func authUser(u dto.UserResponse) dto.AuthUser {
	return dto.AuthUser{Name: u.Name, Email: u.Email, Role: u.Role}
}

// outcome etiqueta de métrica para un error de auth.
func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid"
	default:
		return "error"
	}
}
