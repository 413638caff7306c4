// Package jobs holds the deferred units of work run by the queue workers.
package jobs

import (
	"context"
	"fmt"

	"github.com/localnerve/livros/internal/indices"
	"github.com/localnerve/livros/internal/models"
	"github.com/localnerve/livros/internal/queue"
	"github.com/localnerve/livros/internal/services"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// KindImportIndicesXML identifies XML outline imports on the queue
const KindImportIndicesXML = "import_indices_xml"

// ImportIndicesXML is the queued message. The raw document travels with the
// job and is parsed again by the worker.
type ImportIndicesXML struct {
	LivroID uint64 `json:"livro_id"`
	XML     string `json:"xml"`
}

// Importer writes queued XML outlines into their books
type Importer struct {
	DB       *gorm.DB
	MaxDepth int
}

// Enqueue schedules an import of content into livroID
func Enqueue(ctx context.Context, q *queue.Queue, livroID uint64, content string) (*models.Job, error) {
	return q.Enqueue(ctx, KindImportIndicesXML, ImportIndicesXML{LivroID: livroID, XML: content})
}

// Register binds the importer to its job kind on w
func (im *Importer) Register(w *queue.Worker) {
	w.Handle(KindImportIndicesXML, im.Handle)
}

// Handle runs one import. The whole outline is written in a single
// transaction so a failed attempt leaves nothing behind for the retry.
func (im *Importer) Handle(ctx context.Context, payload models.JSON) error {
	var msg ImportIndicesXML
	if err := payload.Decode(&msg); err != nil {
		return fmt.Errorf("decode import payload: %w", err)
	}

	logger := zerolog.Ctx(ctx).With().Uint64("livro_id", msg.LivroID).Logger()

	nodes, err := indices.ParseXML(msg.XML, im.MaxDepth)
	if err != nil {
		logger.Error().Err(err).Msg("import xml unreadable")
		return err
	}
	if errs := indices.Validate(nodes, indices.XMLPaths, im.MaxDepth); len(errs) > 0 {
		err := &indices.ValidationError{Errors: errs}
		logger.Error().Err(err).Interface("errors", errs.List()).Msg("import xml invalid")
		return err
	}

	if err := services.ImportIndices(ctx, im.DB, msg.LivroID, nodes); err != nil {
		logger.Error().Err(err).Msg("import indices failed")
		return err
	}

	logger.Info().Int("indices", indices.Count(nodes)).Msg("import indices done")
	return nil
}
