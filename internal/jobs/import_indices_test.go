package jobs

import (
	"context"
	"testing"

	"github.com/localnerve/livros/internal/indices"
	"github.com/localnerve/livros/internal/models"
	"github.com/localnerve/livros/internal/queue"
	"github.com/localnerve/livros/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const outline = `<indice>
	<item pagina="1" titulo="Seção 1">
		<item pagina="1" titulo="Seção 1.1"/>
	</item>
</indice>`

func TestImportRunsThroughQueue(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Ana", "ana@example.com", "secret")
	livro := testutil.CreateLivro(t, db, user, "Livro A")

	q := queue.New(db, "", 3)
	job, err := Enqueue(ctx, q, livro.ID, outline)
	require.NoError(t, err)

	var msg ImportIndicesXML
	require.NoError(t, job.Payload.Decode(&msg))
	assert.Equal(t, livro.ID, msg.LivroID)
	assert.Equal(t, outline, msg.XML)

	w := queue.NewWorker(db, queue.Options{})
	(&Importer{DB: db, MaxDepth: indices.DefaultMaxDepth}).Register(w)

	count, err := w.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rows := testutil.Indices(t, db, livro.ID)
	require.Len(t, rows, 2)
	assert.Equal(t, "Seção 1", rows[0].Titulo)
	assert.Nil(t, rows[0].IndicePaiID)
	assert.Equal(t, "Seção 1.1", rows[1].Titulo)
	require.NotNil(t, rows[1].IndicePaiID)
	assert.Equal(t, rows[0].ID, *rows[1].IndicePaiID)
}

func TestImportMissingLivroDeadLetters(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	q := queue.New(db, "", 2)
	job, err := Enqueue(ctx, q, 999, outline)
	require.NoError(t, err)

	w := queue.NewWorker(db, queue.Options{})
	(&Importer{DB: db}).Register(w)

	count, err := w.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var stored models.Job
	require.NoError(t, db.First(&stored, job.ID).Error)
	assert.Equal(t, models.JobFailed, stored.Status)
	assert.Contains(t, stored.LastError, "not found")

	var total int64
	require.NoError(t, db.Model(&models.Indice{}).Count(&total).Error)
	assert.Zero(t, total)
}

func TestImportRejectsInvalidPayload(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "Ana", "ana@example.com", "secret")
	livro := testutil.CreateLivro(t, db, user, "Livro A")
	im := &Importer{DB: db, MaxDepth: indices.DefaultMaxDepth}

	payload, err := models.NewJSON(ImportIndicesXML{LivroID: livro.ID, XML: `<indice><item titulo="x"/></indice>`})
	require.NoError(t, err)

	err = im.Handle(context.Background(), payload)
	var verr *indices.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, testutil.Indices(t, db, livro.ID))

	payload, err = models.NewJSON(ImportIndicesXML{LivroID: livro.ID, XML: `<indice>`})
	require.NoError(t, err)
	assert.ErrorIs(t, im.Handle(context.Background(), payload), indices.ErrMalformedXML)
}
