package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/localnerve/livros/internal/indices"
	"github.com/localnerve/livros/internal/models"
	"github.com/localnerve/livros/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodes(t *testing.T, body string) []indices.Node {
	t.Helper()
	out, err := indices.DecodeJSON(json.RawMessage(body), indices.DefaultMaxDepth)
	require.NoError(t, err)
	return out
}

func TestCreateLivroMirrorsNesting(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Ana", "ana@example.com", "secret")

	livro, err := CreateLivro(ctx, db, user.ID, "Livro A", nodes(t, `[
		{"titulo": "1", "pagina": 1, "subindices": [
			{"titulo": "1.1", "pagina": 2, "subindices": [{"titulo": "1.1.1", "pagina": 3}]},
			{"titulo": "1.2", "pagina": 4}
		]},
		{"titulo": "2", "pagina": 5}
	]`), indices.DefaultMaxDepth)
	require.NoError(t, err)

	rows := testutil.Indices(t, db, livro.ID)
	require.Len(t, rows, 5)

	byTitle := make(map[string]models.Indice, len(rows))
	for _, row := range rows {
		byTitle[row.Titulo] = row
		assert.Equal(t, livro.ID, row.LivroID)
	}

	parentOf := func(title string) string {
		row := byTitle[title]
		if row.IndicePaiID == nil {
			return ""
		}
		for _, candidate := range rows {
			if candidate.ID == *row.IndicePaiID {
				return candidate.Titulo
			}
		}
		return "?"
	}
	assert.Equal(t, "", parentOf("1"))
	assert.Equal(t, "1", parentOf("1.1"))
	assert.Equal(t, "1.1", parentOf("1.1.1"))
	assert.Equal(t, "1", parentOf("1.2"))
	assert.Equal(t, "", parentOf("2"))

	for _, row := range rows {
		if row.IndicePaiID != nil {
			assert.NotEqual(t, row.ID, *row.IndicePaiID)
			assert.Less(t, *row.IndicePaiID, row.ID, "parents are written before children")
		}
	}
}

func TestCreateLivroRejectsInvalidTree(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Ana", "ana@example.com", "secret")

	_, err := CreateLivro(ctx, db, user.ID, "Livro A", nodes(t, `[
		{"titulo": "1", "pagina": 1},
		{"titulo": "2", "pagina": "x"}
	]`), indices.DefaultMaxDepth)

	var verr *indices.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string][]string{
		"indices[1]": {"The pagina field must be a number."},
	}, verr.Errors.Map())

	var livros, rows int64
	require.NoError(t, db.Model(&models.Livro{}).Count(&livros).Error)
	require.NoError(t, db.Model(&models.Indice{}).Count(&rows).Error)
	assert.Zero(t, livros)
	assert.Zero(t, rows)
}

func TestImportIndicesAppends(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Ana", "ana@example.com", "secret")
	livro := testutil.CreateLivro(t, db, user, "Livro A")
	testutil.CreateIndice(t, db, livro, nil, "Existente", 1)

	require.NoError(t, ImportIndices(ctx, db, livro.ID, nodes(t, `[{"titulo": "Novo", "pagina": 2}]`)))
	assert.Len(t, testutil.Indices(t, db, livro.ID), 2)

	err := ImportIndices(ctx, db, 999, nodes(t, `[{"titulo": "Novo", "pagina": 2}]`))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentImportsIntoSameLivro(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Ana", "ana@example.com", "secret")
	livro := testutil.CreateLivro(t, db, user, "Livro A")

	outlines := make([][]indices.Node, 4)
	for i := range outlines {
		outlines[i] = nodes(t, fmt.Sprintf(`[
			{"titulo": "Raiz %d", "pagina": 1, "subindices": [{"titulo": "Filho %d", "pagina": 2}]}
		]`, i, i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(outlines))
	for _, outline := range outlines {
		wg.Add(1)
		go func(outline []indices.Node) {
			defer wg.Done()
			errs <- ImportIndices(ctx, db, livro.ID, outline)
		}(outline)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rows := testutil.Indices(t, db, livro.ID)
	require.Len(t, rows, 8)

	ids := make(map[uint64]models.Indice, len(rows))
	for _, row := range rows {
		ids[row.ID] = row
	}
	for _, row := range rows {
		if row.IndicePaiID == nil {
			continue
		}
		parent, ok := ids[*row.IndicePaiID]
		require.True(t, ok)
		assert.Equal(t, "Raiz "+row.Titulo[len("Filho "):], parent.Titulo, "each child links to the root of its own import")
	}
}

func TestDeletingParentNullsChildren(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "Ana", "ana@example.com", "secret")
	livro := testutil.CreateLivro(t, db, user, "Livro A")
	parent := testutil.CreateIndice(t, db, livro, nil, "Pai", 1)
	child := testutil.CreateIndice(t, db, livro, &parent, "Filho", 2)

	require.NoError(t, db.Delete(&models.Indice{}, parent.ID).Error)

	var reloaded models.Indice
	require.NoError(t, db.First(&reloaded, child.ID).Error)
	assert.Nil(t, reloaded.IndicePaiID)
}

func TestFindLivroByIndiceTitle(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Ana", "ana@example.com", "secret")

	first := testutil.CreateLivro(t, db, user, "Primeiro")
	a := testutil.CreateIndice(t, db, first, nil, "A", 1)
	b := testutil.CreateIndice(t, db, first, &a, "B", 2)
	testutil.CreateIndice(t, db, first, &a, "Irmão", 3)
	c := testutil.CreateIndice(t, db, first, &b, "Alvo", 4)

	second := testutil.CreateLivro(t, db, user, "Segundo")
	testutil.CreateIndice(t, db, second, nil, "Alvo", 1)

	livro, err := FindLivroByIndiceTitle(ctx, db, "Alvo", indices.DefaultMaxDepth)
	require.NoError(t, err)
	assert.Equal(t, first.ID, livro.ID, "lowest id wins")
	require.NotNil(t, livro.UsuarioPublicador)
	assert.Equal(t, "Ana", livro.UsuarioPublicador.Name)

	got := make([]uint64, 0, len(livro.Indices))
	for _, indice := range livro.Indices {
		got = append(got, indice.ID)
	}
	assert.Equal(t, []uint64{a.ID, b.ID, c.ID}, got)

	_, err = FindLivroByIndiceTitle(ctx, db, "alvo", indices.DefaultMaxDepth)
	assert.ErrorIs(t, err, ErrNotFound, "match is exact")
}

func TestFirstExactIgnoresCollationMatches(t *testing.T) {
	// rows as a case and accent folding collation would return them
	candidates := []models.Indice{
		{ID: 1, Titulo: "ÍNDICE 1"},
		{ID: 2, Titulo: "indice 1"},
		{ID: 3, Titulo: "Índice 1"},
		{ID: 4, Titulo: "Índice 1"},
	}

	got, ok := firstExact(candidates, "Índice 1")
	require.True(t, ok)
	assert.EqualValues(t, 3, got.ID)

	_, ok = firstExact(candidates, "Indice 1")
	assert.False(t, ok)
}

func TestAncestorChainGuards(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Ana", "ana@example.com", "secret")
	livro := testutil.CreateLivro(t, db, user, "Livro A")

	root := testutil.CreateIndice(t, db, livro, nil, "0", 1)
	prev := root
	for i := 1; i < 5; i++ {
		prev = testutil.CreateIndice(t, db, livro, &prev, fmt.Sprint(i), float64(i))
	}

	chain, err := AncestorChain(ctx, db, prev, indices.DefaultMaxDepth)
	require.NoError(t, err)
	assert.Len(t, chain, 5)
	assert.Equal(t, prev.ID, chain[0])
	assert.Equal(t, root.ID, chain[4])

	_, err = AncestorChain(ctx, db, prev, 3)
	assert.ErrorIs(t, err, ErrBrokenChain)

	// close the loop: root now points at the deepest entry
	require.NoError(t, db.Model(&models.Indice{}).Where("id = ?", root.ID).Update("indice_pai_id", prev.ID).Error)
	_, err = AncestorChain(ctx, db, prev, indices.DefaultMaxDepth)
	assert.ErrorIs(t, err, ErrBrokenChain)
}

func TestGetIndice(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Ana", "ana@example.com", "secret")
	livro := testutil.CreateLivro(t, db, user, "Livro A")
	root := testutil.CreateIndice(t, db, livro, nil, "Raiz", 1)
	first := testutil.CreateIndice(t, db, livro, &root, "Primeiro", 2)
	testutil.CreateIndice(t, db, livro, &root, "Segundo", 3)
	testutil.CreateIndice(t, db, livro, &first, "Neto", 4)

	indice, children, err := GetIndice(ctx, db, root.ID)
	require.NoError(t, err)
	assert.Equal(t, "Raiz", indice.Titulo)
	require.Len(t, children, 2, "only direct children")
	assert.Equal(t, "Primeiro", children[0].Titulo)

	indice, children, err = GetIndice(ctx, db, first.ID)
	require.NoError(t, err)
	assert.Nil(t, children)
	require.NotNil(t, indice.IndicePai)
	assert.Equal(t, "Raiz", indice.IndicePai.Titulo)

	_, _, err = GetIndice(ctx, db, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListLivros(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Ana", "ana@example.com", "secret")
	ruby := testutil.CreateLivro(t, db, user, "Aprendendo Ruby")
	testutil.CreateIndice(t, db, ruby, nil, "Introdução", 1)
	testutil.CreateLivro(t, db, user, "Go na prática")

	all, err := ListLivros(ctx, db, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Len(t, all[0].Indices, 1)
	require.NotNil(t, all[0].UsuarioPublicador)

	filtered, err := ListLivros(ctx, db, "prática")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Go na prática", filtered[0].Titulo)
}
