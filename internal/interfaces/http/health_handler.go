package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthResponse cuerpo de GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"` // segundos
}

// Health godoc
// @Summary      Estado del servicio
// @Tags         system
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func Health(startedAt time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		return c.JSON(HealthResponse{
			Status:    "OK",
			Timestamp: now.UTC(),
			Uptime:    now.Sub(startedAt).Seconds(),
		})
	}
}

// Info godoc
// @Summary      Mensaje de bienvenida
// @Tags         system
// @Produce      json
// @Success      200  {object}  dto.MessageResponse
// @Router       /api [get]
func Info(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Accounts API is running!"})
}
