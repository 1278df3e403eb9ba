package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/costeo-api/pkg/logger"
)

// RequestLogger registra método, ruta, status y latencia de cada petición.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Msg("request")
		return err
	}
}
