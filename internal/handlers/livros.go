// livros.go
//
// Book outline service: books with nested index trees, JSON and XML import
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of livros.
// livros is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// livros is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with livros.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/livros/internal/indices"
	"github.com/localnerve/livros/internal/jobs"
	"github.com/localnerve/livros/internal/middleware"
	"github.com/localnerve/livros/internal/queue"
	"github.com/localnerve/livros/internal/services"
	"github.com/localnerve/livros/internal/tree"
	"github.com/localnerve/livros/internal/types"
	"github.com/localnerve/livros/internal/utils"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	saveFailedMessage = "Erro ao salvar o livro e índices."
	importedMessage   = "A importação dos índices XML com sucesso!"
)

// LivroHandler handles book routes
type LivroHandler struct {
	DB       *gorm.DB
	Queue    *queue.Queue
	MaxDepth int
}

// StoreLivroRequest is the body of POST /v1/livros. Fields are kept loosely
// typed so type mismatches are reported as validation errors.
type StoreLivroRequest struct {
	Titulo  interface{}     `json:"titulo" swaggertype:"string"`
	Indices json.RawMessage `json:"indices" swaggertype:"array,object"`
}

// LivroCollectionResponse is the body of the book listing
type LivroCollectionResponse struct {
	Data []tree.Livro `json:"data"`
}

// LivroResponse is the body of a single book match
type LivroResponse struct {
	Data tree.Livro `json:"data"`
}

// Index handles GET /api/v1/livros
// @Summary List books
// @Description titulo filters books by title substring. Otherwise titulo_do_indice finds the first
// @Description entry with that exact title and returns its book with only the entry's ancestor chain.
// @Description With no filter, or no match, every book is listed.
// @Tags Livros
// @Produce json
// @Security BearerAuth
// @Param titulo query string false "Book title substring"
// @Param titulo_do_indice query string false "Exact index entry title"
// @Success 200 {object} LivroCollectionResponse "collection, or LivroResponse for an index title match"
// @Failure 401 {object} utils.MessageResponseStruct
// @Router /v1/livros [get]
func (h *LivroHandler) Index(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if titulo := c.Query("titulo"); titulo != "" {
		livros, err := services.ListLivros(ctx, h.DB, titulo)
		if err != nil {
			return err
		}
		return utils.DataResponse(c, tree.LivroCollection(livros), fiber.StatusOK)
	}

	if tituloDoIndice := c.Query("titulo_do_indice"); tituloDoIndice != "" {
		livro, err := services.FindLivroByIndiceTitle(ctx, h.DB, tituloDoIndice, h.MaxDepth)
		switch {
		case err == nil:
			return utils.DataResponse(c, tree.LivroResource(*livro), fiber.StatusOK)
		case errors.Is(err, services.ErrNotFound):
			zerolog.Ctx(ctx).Debug().Str("titulo_do_indice", tituloDoIndice).Msg("no index entry matched")
		default:
			return err
		}
	}

	livros, err := services.ListLivros(ctx, h.DB, "")
	if err != nil {
		return err
	}
	return utils.DataResponse(c, tree.LivroCollection(livros), fiber.StatusOK)
}

// Store handles POST /api/v1/livros
// @Summary Create a book with its index tree
// @Description The book and every index entry are written in one transaction. Any invalid entry
// @Description rejects the whole request with one error key per invalid entry.
// @Tags Livros
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StoreLivroRequest true "Book and nested indices"
// @Success 201 {object} models.Livro
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.MessageResponseStruct
// @Failure 422 {object} utils.TreeValidationResponseStruct
// @Failure 500 {object} utils.SaveErrorResponseStruct
// @Router /v1/livros [post]
func (h *LivroHandler) Store(c *fiber.Ctx) error {
	var req StoreLivroRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return types.NewError(fiber.StatusBadRequest, err.Error(), types.ErrTypeJSON)
		}
	}

	nodes, fields, err := h.validateStore(req)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return utils.FieldValidationResponse(c, fields)
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.UnauthenticatedResponse(c)
	}

	ctx := c.UserContext()
	livro, err := services.CreateLivro(ctx, h.DB, user.ID, req.Titulo.(string), nodes, h.MaxDepth)
	if err != nil {
		var verr *indices.ValidationError
		if errors.As(err, &verr) {
			return utils.ValidationResponse(c, verr.Errors.Map())
		}
		zerolog.Ctx(ctx).Error().Err(err).Msg("create livro failed")
		return c.Status(fiber.StatusInternalServerError).JSON(utils.SaveErrorResponseStruct{
			Message: saveFailedMessage,
			Error:   err.Error(),
		})
	}

	return utils.SuccessResponse(c, livro, fiber.StatusCreated)
}

// validateStore checks the book fields and decodes the index tree. The tree
// itself is validated inside the write transaction.
func (h *LivroHandler) validateStore(req StoreLivroRequest) ([]indices.Node, map[string][]string, error) {
	nodes, listErr := indices.DecodeJSON(req.Indices, h.MaxDepth)

	errs := validation.Errors{
		"titulo": validation.Validate(req.Titulo, indices.TitleRules("titulo")...),
	}
	if errors.Is(listErr, indices.ErrNotList) {
		errs["indices"] = validation.NewError("validation_is_array", "The indices field must be an array.")
	} else if listErr != nil {
		return nil, nil, listErr
	}

	fields, err := fieldErrors(errs.Filter())
	if err != nil {
		return nil, nil, err
	}
	return nodes, fields, nil
}

// ImportXML handles POST /api/v1/livros/:id/importar-indices-xml
// @Summary Import an index tree from XML
// @Description The body is an XML document whose root holds nested item elements with titulo and
// @Description pagina attributes. It is validated now and written later by a queue worker.
// @Tags Livros
// @Accept xml
// @Produce json
// @Security BearerAuth
// @Param id path int true "Livro ID"
// @Param body body string true "XML outline"
// @Success 202 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ImportValidationResponseStruct
// @Router /v1/livros/{id}/importar-indices-xml [post]
func (h *LivroHandler) ImportXML(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Livro")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	if _, err := services.GetLivro(ctx, h.DB, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("Livro '%d' not found", id))
		}
		return err
	}

	content := string(c.Body())
	nodes, err := indices.ParseXML(content, h.MaxDepth)
	if err != nil {
		return types.NewError(fiber.StatusBadRequest, err.Error(), types.ErrTypeXML)
	}

	if errs := indices.Validate(nodes, indices.XMLPaths, h.MaxDepth); len(errs) > 0 {
		return utils.ValidationResponse(c, errs.List())
	}

	job, err := jobs.Enqueue(ctx, h.Queue, id, content)
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Uint64("livro_id", id).
		Uint64("job_id", job.ID).
		Int("indices", indices.Count(nodes)).
		Msg("xml import queued")

	return utils.MessageResponse(c, importedMessage, fiber.StatusAccepted)
}
