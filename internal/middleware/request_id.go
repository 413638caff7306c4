package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderRequestID carries the request id in and out
const HeaderRequestID = "X-Request-Id"

// RequestID tags each request with an id, echoed in the response header, and
// puts a logger carrying it in the request's user context
func RequestID(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Locals("requestID", id)
		c.Set(HeaderRequestID, id)

		reqLogger := logger.With().
			Str("request_id", id).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Logger()
		c.SetUserContext(reqLogger.WithContext(c.UserContext()))

		return c.Next()
	}
}
