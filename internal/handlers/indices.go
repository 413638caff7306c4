package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/livros/internal/services"
	"github.com/localnerve/livros/internal/tree"
	"github.com/localnerve/livros/internal/utils"
	"gorm.io/gorm"
)

// IndiceHandler handles single index entry routes
type IndiceHandler struct {
	DB *gorm.DB
}

// Show handles GET /api/v1/indices/:id
// @Summary Get one index entry
// @Description An entry with a parent is returned with its parent under "pai". A root entry is
// @Description returned with its direct children under "subindices".
// @Tags Indices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Indice ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /v1/indices/{id} [get]
func (h *IndiceHandler) Show(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Indice")
	if err != nil {
		return err
	}

	indice, children, err := services.GetIndice(c.UserContext(), h.DB, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("Indice '%d' not found", id))
		}
		return err
	}

	return utils.DataResponse(c, tree.View(*indice, children), fiber.StatusOK)
}
