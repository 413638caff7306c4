package main

import (
	"github.com/localnerve/livros/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			if err := database.AutoMigrate(e.db); err != nil {
				return err
			}
			e.logger.Info().Msg("schema migrated")
			return nil
		},
	}
}
