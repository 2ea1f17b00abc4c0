package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/accounts-api/internal/infrastructure/metrics"
	"github.com/jhoicas/accounts-api/pkg/logger"
)

// RequestLogger escribe una línea por petición y alimenta las métricas HTTP.
func RequestLogger(log *logger.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			// El ErrorHandler todavía no escribió la respuesta: se invoca aquí para registrar el status real.
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		elapsed := time.Since(start)
		status := c.Response().StatusCode()

		route := c.Route().Path
		m.ObserveRequest(c.Method(), route, status, elapsed)

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev = ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", elapsed).
			Str("ip", c.IP()).
			Str("request_id", requestID(c))
		if id := GetUserID(c); id != 0 {
			ev = ev.Int64("user_id", id)
		}
		ev.Msg("http")
		return nil
	}
}

func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
