package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/localnerve/livros/internal/jobs"
	"github.com/localnerve/livros/internal/queue"
	"github.com/spf13/cobra"
)

func newWorkerCmd() *cobra.Command {
	var concurrency int
	var drain bool

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the XML import worker",
		Long: "Run the XML import worker until interrupted. Use it when the API runs with\n" +
			"IMPORT_IN_PROCESS=false, or with --drain to process the backlog once and exit.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			if concurrency < 1 {
				concurrency = e.cfg.ImportWorkers
			}

			worker := queue.NewWorker(e.db, queue.Options{
				Queue:             e.cfg.ImportQueue,
				Concurrency:       concurrency,
				Backoff:           e.cfg.ImportBackoff,
				PollInterval:      e.cfg.ImportPollInterval,
				VisibilityTimeout: e.cfg.ImportVisibilityTimeout,
			})
			(&jobs.Importer{DB: e.db, MaxDepth: e.cfg.MaxIndexDepth}).Register(worker)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if drain {
				count, err := worker.Drain(ctx)
				e.logger.Info().Int("jobs", count).Msg("queue drained")
				return err
			}
			return worker.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "worker goroutines (default IMPORT_WORKERS)")
	cmd.Flags().BoolVar(&drain, "drain", false, "process ready jobs and exit")
	return cmd
}
