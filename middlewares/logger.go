package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RequestLogger attaches a request-scoped logger to the user context and
// logs one line per request. Errors are rendered here so that the logged
// status matches the response.
func RequestLogger(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqLogger := logger.With().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("remote_ip", c.IP()).
			Logger()
		c.SetUserContext(reqLogger.WithContext(c.UserContext()))

		chainErr := c.Next()
		if chainErr != nil {
			if err := ErrorHandler(c, chainErr); err != nil {
				return err
			}
		}

		status := c.Response().StatusCode()
		event := reqLogger.Info()
		if status >= fiber.StatusInternalServerError {
			event = reqLogger.Error().Err(chainErr)
		} else if status >= fiber.StatusBadRequest {
			event = reqLogger.Warn()
		}
		event.Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return nil
	}
}
