package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/localnerve/livros/internal/queue"
	"github.com/spf13/cobra"
)

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and retry failed import jobs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "failed",
		Short: "List dead-lettered jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			failed, err := queue.New(e.db, e.cfg.ImportQueue, e.cfg.ImportMaxAttempts).Failed(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tATTEMPTS\tUPDATED\tERROR")
			for _, job := range failed {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", job.ID, job.Kind, job.Attempts, job.UpdatedAt.Format(time.RFC3339), job.LastError)
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "retry [job-id]",
		Short: "Requeue a dead-lettered job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q: %w", args[0], err)
			}
			e := envFrom(cmd)
			if err := queue.New(e.db, e.cfg.ImportQueue, e.cfg.ImportMaxAttempts).Retry(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %d requeued\n", id)
			return nil
		},
	})

	return cmd
}
