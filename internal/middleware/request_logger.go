package middleware

import (
	"time"

	"github.com/ebetcoin/backend/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags the request context with a request id and logs the
// outcome of every request.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}
		c.Set(RequestIDHeader, requestID)

		ctx := logger.WithRequestID(c.UserContext(), requestID)
		c.SetUserContext(ctx)

		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the app's error handler write the response before reading the status
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		ev := logger.Info(ctx)
		if status >= fiber.StatusInternalServerError {
			ev = logger.Error(ctx)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Int("status", status).
			Int64("user_id", GetUserID(c)).
			Dur("duration", time.Since(start)).
			Msg("request completed")

		return nil
	}
}
