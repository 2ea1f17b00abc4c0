package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/accounts-api/internal/application/dto"
	"github.com/jhoicas/accounts-api/internal/application/usecase"
	"github.com/jhoicas/accounts-api/internal/application/validation"
	"github.com/jhoicas/accounts-api/internal/domain"
	"github.com/jhoicas/accounts-api/pkg/logger"
)

// UserHandler maneja el directorio de usuarios. Todas las rutas requieren sesión.
type UserHandler struct {
	uc  *usecase.UserUseCase
	val *validation.Validator
	log *logger.Logger
}

// NewUserHandler construye el handler de usuarios.
func NewUserHandler(uc *usecase.UserUseCase, val *validation.Validator, log *logger.Logger) *UserHandler {
	return &UserHandler{uc: uc, val: val, log: log}
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Produce      json
// @Success      200  {object}  dto.UserListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.uc.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "list_users", err)
	}
	return c.JSON(dto.UserListResponse{Message: "Users fetched successfully", Data: users})
}

// GetByID godoc
// @Summary      Obtener usuario por ID
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  dto.UserDataResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id, err := h.val.UserID(c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "get_user", err, "id", c.Params("id"))
	}
	subject, ok := GetSubject(c)
	if !ok {
		return respondError(c, h.log, "get_user", domain.ErrMissingToken)
	}
	user, err := h.uc.GetByID(c.UserContext(), subject, id)
	if err != nil {
		return respondError(c, h.log, "get_user", err, "id", id)
	}
	return c.JSON(dto.UserDataResponse{Message: "User fetched successfully", Data: *user})
}

// Update godoc
// @Summary      Actualizar usuario (self-or-admin; solo admin cambia role)
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path  int                    true  "User ID"
// @Param        body  body  dto.UpdateUserRequest  true  "name, email, role"
// @Success      200   {object}  dto.UserDataResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := h.val.UserID(c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "update_user", err, "id", c.Params("id"))
	}
	changes, err := h.val.Update(c.Body())
	if err != nil {
		return respondError(c, h.log, "update_user", err, "id", id)
	}
	subject, ok := GetSubject(c)
	if !ok {
		return respondError(c, h.log, "update_user", domain.ErrMissingToken)
	}
	user, err := h.uc.Update(c.UserContext(), subject, id, changes)
	if err != nil {
		return respondError(c, h.log, "update_user", err, "id", id)
	}
	return c.JSON(dto.UserDataResponse{Message: "User updated successfully", Data: *user})
}

// Delete godoc
// @Summary      Eliminar usuario (solo admin)
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  dto.MessageResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := h.val.UserID(c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "delete_user", err, "id", c.Params("id"))
	}
	subject, ok := GetSubject(c)
	if !ok {
		return respondError(c, h.log, "delete_user", domain.ErrMissingToken)
	}
	if err := h.uc.Delete(c.UserContext(), subject, id); err != nil {
		return respondError(c, h.log, "delete_user", err, "id", id)
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted successfully"})
}
