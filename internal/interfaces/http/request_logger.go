package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// RequestLogger registra cada request con zerolog: método, ruta, status, latencia y actor.
// El nivel sube a warn en 4xx y a error en 5xx.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Deja que el ErrorHandler escriba la respuesta antes de leer el status.
			if hErr := c.App().ErrorHandler(c, err); hErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()

		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error()
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP())
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ev.Str("request_id", rid)
		}
		if uid := GetUserID(c); uid != "" {
			ev.Str("actor", uid)
		}
		ev.Msg("request")
		return nil
	}
}
