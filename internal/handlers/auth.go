package handlers

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/livros/internal/middleware"
	"github.com/localnerve/livros/internal/services"
	"github.com/localnerve/livros/internal/types"
	"github.com/localnerve/livros/internal/utils"
	"github.com/rs/zerolog"
)

// AuthHandler handles token routes
type AuthHandler struct {
	Auth *services.AuthService
}

// TokenRequest is the body of POST /v1/auth/token
type TokenRequest struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	DeviceName string `json:"device_name" form:"device_name"`
}

// Validate implements validation.Validatable
func (r TokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("The email field is required."),
			is.EmailFormat.Error("The email field must be a valid email address."),
		),
		validation.Field(&r.Password,
			validation.Required.Error("The password field is required."),
		),
		validation.Field(&r.DeviceName,
			validation.Required.Error("The device name field is required."),
		),
	)
}

// TokenResponse is the body of a successful token request
type TokenResponse struct {
	Token string `json:"token"`
}

// IssueToken handles POST /api/v1/auth/token
// @Summary Issue an API token
// @Description Exchange user credentials for a bearer token bound to a device name
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body TokenRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.FieldValidationResponseStruct
// @Router /v1/auth/token [post]
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req TokenRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return types.NewError(fiber.StatusBadRequest, err.Error(), types.ErrTypeRequest)
		}
	}

	fields, err := fieldErrors(req.Validate())
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return utils.FieldValidationResponse(c, fields)
	}

	token, err := h.Auth.IssueToken(c.UserContext(), req.Email, req.Password, req.DeviceName)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			zerolog.Ctx(c.UserContext()).Info().Str("email", req.Email).Msg("token request rejected")
			return utils.FieldValidationResponse(c, map[string][]string{
				"email": {"As credenciais fornecidas estão incorretas."},
			})
		}
		return err
	}

	return utils.SuccessResponse(c, TokenResponse{Token: token}, fiber.StatusOK)
}

// RevokeToken handles DELETE /api/v1/auth/token
// @Summary Revoke the current API token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} utils.MessageResponseStruct
// @Router /v1/auth/token [delete]
func (h *AuthHandler) RevokeToken(c *fiber.Ctx) error {
	pat := middleware.CurrentToken(c)
	if pat == nil {
		return utils.UnauthenticatedResponse(c)
	}

	if err := h.Auth.RevokeToken(c.UserContext(), pat.TokenID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
