package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/localnerve/livros/internal/indices"
	"github.com/localnerve/livros/internal/jobs"
	"github.com/localnerve/livros/internal/queue"
	"github.com/localnerve/livros/internal/services"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var sync bool

	cmd := &cobra.Command{
		Use:   "import [livro-id] [file.xml]",
		Short: "Validate an XML outline and queue its import into a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			livroID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid livro id %q: %w", args[0], err)
			}
			content, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read xml: %w", err)
			}

			e := envFrom(cmd)
			ctx := cmd.Context()

			if _, err := services.GetLivro(ctx, e.db, livroID); err != nil {
				return fmt.Errorf("livro %d: %w", livroID, err)
			}

			nodes, err := indices.ParseXML(string(content), e.cfg.MaxIndexDepth)
			if err != nil {
				return err
			}
			if errs := indices.Validate(nodes, indices.XMLPaths, e.cfg.MaxIndexDepth); len(errs) > 0 {
				out, _ := json.MarshalIndent(map[string]interface{}{"errors": errs.List()}, "", "  ")
				fmt.Fprintln(cmd.ErrOrStderr(), string(out))
				return &indices.ValidationError{Errors: errs}
			}

			if sync {
				if err := services.ImportIndices(ctx, e.db, livroID, nodes); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d indices into livro %d\n", indices.Count(nodes), livroID)
				return nil
			}

			q := queue.New(e.db, e.cfg.ImportQueue, e.cfg.ImportMaxAttempts)
			job, err := jobs.Enqueue(ctx, q, livroID, string(content))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued job %d for livro %d\n", job.ID, livroID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&sync, "sync", false, "write the outline now instead of queueing it")
	return cmd
}
