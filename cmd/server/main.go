package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localnerve/livros/internal/config"
	"github.com/localnerve/livros/internal/database"
	"github.com/localnerve/livros/internal/jobs"
	"github.com/localnerve/livros/internal/logging"
	"github.com/localnerve/livros/internal/queue"
	"github.com/localnerve/livros/internal/server"
	"github.com/localnerve/livros/internal/services"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// @title Livros API
// @version 1.0.0
// @description Books with nested index trees, JSON creation and asynchronous XML import
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/livros
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	importQueue := queue.New(db, cfg.ImportQueue, cfg.ImportMaxAttempts)
	app := server.New(server.Deps{
		Config:    cfg,
		DB:        db,
		Queue:     importQueue,
		Auth:      &services.AuthService{DB: db, Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL},
		Logger:    logger,
		AccessLog: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.ImportInProcess {
		worker := queue.NewWorker(db, queue.Options{
			Queue:             cfg.ImportQueue,
			Concurrency:       cfg.ImportWorkers,
			Backoff:           cfg.ImportBackoff,
			PollInterval:      cfg.ImportPollInterval,
			VisibilityTimeout: cfg.ImportVisibilityTimeout,
		})
		(&jobs.Importer{DB: db, MaxDepth: cfg.MaxIndexDepth}).Register(worker)
		g.Go(func() error {
			return worker.Run(ctx)
		})
	} else {
		logger.Info().Msg("import workers disabled, run livrosctl worker")
	}

	g.Go(func() error {
		logger.Info().Str("port", cfg.Port).Msg("starting server")
		return app.Listen(":" + cfg.Port)
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("gracefully shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("server stopped with error")
		return
	}
	logger.Info().Msg("server stopped")
}
