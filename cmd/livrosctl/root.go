package main

import (
	"context"

	"github.com/localnerve/livros/internal/config"
	"github.com/localnerve/livros/internal/database"
	"github.com/localnerve/livros/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// env is what every subcommand needs once the root has connected
type env struct {
	cfg    *config.Config
	db     *gorm.DB
	logger zerolog.Logger
}

type envKey struct{}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "livrosctl",
		Short:        "Administer the livros book outline service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

			db, err := database.Connect(cfg)
			if err != nil {
				return err
			}

			ctx := logger.WithContext(cmd.Context())
			ctx = context.WithValue(ctx, envKey{}, &env{cfg: cfg, db: db, logger: logger})
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e := envFrom(cmd); e != nil {
				return database.Close(e.db)
			}
			return nil
		},
	}

	root.AddCommand(
		newMigrateCmd(),
		newUserCmd(),
		newWorkerCmd(),
		newImportCmd(),
		newJobsCmd(),
	)
	return root
}

func envFrom(cmd *cobra.Command) *env {
	e, _ := cmd.Context().Value(envKey{}).(*env)
	return e
}
