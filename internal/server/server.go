// server.go
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

package server

import (
	"errors"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/livros/internal/config"
	"github.com/localnerve/livros/internal/handlers"
	"github.com/localnerve/livros/internal/middleware"
	"github.com/localnerve/livros/internal/queue"
	"github.com/localnerve/livros/internal/services"
	"github.com/localnerve/livros/internal/types"
	"github.com/localnerve/livros/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	_ "github.com/localnerve/livros/docs/api" // Swagger docs
)

// Deps are the collaborators the HTTP app is built from
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Queue  *queue.Queue
	Auth   *services.AuthService
	Logger zerolog.Logger

	// Registry receives the HTTP metrics; nil uses the default registerer
	Registry prometheus.Registerer
	// AccessLog enables the per-request access log line
	AccessLog bool
}

// New builds the Fiber app with middleware and every route mounted
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID(d.Logger))
	if d.AccessLog {
		app.Use(logger.New())
	}
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Config.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-Id",
	}))

	var prom *fiberprometheus.FiberPrometheus
	if d.Registry != nil {
		prom = fiberprometheus.NewWithRegistry(d.Registry, "livros", "http", "", nil)
	} else {
		prom = fiberprometheus.New("livros")
	}
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	app.Get("/swagger/*", swagger.HandlerDefault)

	healthHandler := &handlers.HealthHandler{Config: d.Config, DB: d.DB}
	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")
	v1 := api.Group("/v1")

	authHandler := &handlers.AuthHandler{Auth: d.Auth}
	livroHandler := &handlers.LivroHandler{DB: d.DB, Queue: d.Queue, MaxDepth: d.Config.MaxIndexDepth}
	indiceHandler := &handlers.IndiceHandler{DB: d.DB}

	v1.Post("/auth/token", authHandler.IssueToken)

	authed := v1.Group("", middleware.Auth(d.Auth))
	authed.Delete("/auth/token", authHandler.RevokeToken)
	authed.Get("/livros", livroHandler.Index)
	authed.Post("/livros", livroHandler.Store)
	authed.Post("/livros/:id/importar-indices-xml", livroHandler.ImportXML)
	authed.Get("/indices/:id", indiceHandler.Show)

	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	return app
}

// ErrorHandler renders errors returned from handlers and middleware
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var customErr *types.CustomError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &customErr):
		code = customErr.Code
		message = customErr.Message
		errorType = customErr.Type
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	event := zerolog.Ctx(c.UserContext()).Warn()
	if code >= fiber.StatusInternalServerError {
		event = zerolog.Ctx(c.UserContext()).Error()
	}
	event.Err(err).Int("status", code).Msg("request failed")

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
