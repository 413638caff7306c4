package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/livros/internal/models"
	"github.com/localnerve/livros/internal/services"
	"github.com/localnerve/livros/internal/utils"
	"github.com/rs/zerolog"
)

const (
	localUser  = "user"
	localToken = "token"
)

// Auth requires a valid bearer token. The token row and its user are stored
// in c.Locals for the handlers.
func Auth(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bearer := bearerToken(c.Get(fiber.HeaderAuthorization))
		if bearer == "" {
			return utils.UnauthenticatedResponse(c)
		}

		pat, err := auth.VerifyToken(c.UserContext(), bearer)
		if err != nil {
			if errors.Is(err, services.ErrInvalidToken) {
				zerolog.Ctx(c.UserContext()).Debug().Msg("bearer token rejected")
				return utils.UnauthenticatedResponse(c)
			}
			return err
		}

		c.Locals(localUser, pat.User)
		c.Locals(localToken, pat)

		logger := zerolog.Ctx(c.UserContext()).With().Uint64("user_id", pat.UserID).Logger()
		c.SetUserContext(logger.WithContext(c.UserContext()))

		return c.Next()
	}
}

// CurrentUser returns the authenticated user, nil outside Auth
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

// CurrentToken returns the token row the request authenticated with
func CurrentToken(c *fiber.Ctx) *models.PersonalAccessToken {
	pat, _ := c.Locals(localToken).(*models.PersonalAccessToken)
	return pat
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
