package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/localnerve/livros/internal/config"
	"github.com/localnerve/livros/internal/database"
	"github.com/localnerve/livros/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_TYPE", "sqlite-pure")
	t.Setenv("DB_DATABASE", filepath.Join(dir, "livros.db"))
	t.Setenv("DB_CONNECTION_LIMIT", "1")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("IMPORT_MAX_ATTEMPTS", "1")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestImportWorkflow(t *testing.T) {
	dir := setupEnv(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)

	out, err := run(t, "user", "create", "--name", "Ana", "--email", "ana@example.com", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "<ana@example.com>")

	_, err = run(t, "user", "create", "--name", "Ana", "--email", "not-an-email", "--password", "short")
	assert.Error(t, err)

	xmlPath := filepath.Join(dir, "outline.xml")
	require.NoError(t, os.WriteFile(xmlPath, []byte(`<indice>
		<item titulo="Seção 1" pagina="1"><item titulo="Seção 1.1" pagina="2"/></item>
	</indice>`), 0o600))

	_, err = run(t, "import", "1", xmlPath)
	assert.Error(t, err, "livro 1 does not exist yet")
}

func TestImportQueueAndDrain(t *testing.T) {
	dir := setupEnv(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)
	_, err = run(t, "user", "create", "--name", "Ana", "--email", "ana@example.com", "--password", "secret123")
	require.NoError(t, err)

	seedLivro(t)

	valid := filepath.Join(dir, "valid.xml")
	require.NoError(t, os.WriteFile(valid, []byte(`<indice><item titulo="A" pagina="1"/></indice>`), 0o600))
	invalid := filepath.Join(dir, "invalid.xml")
	require.NoError(t, os.WriteFile(invalid, []byte(`<indice><item pagina="1"/></indice>`), 0o600))

	out, err := run(t, "import", "1", invalid)
	require.Error(t, err)
	assert.Contains(t, out, "índice > item 0")

	out, err = run(t, "import", "1", valid, "--sync")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 indices")

	out, err = run(t, "import", "1", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "queued job 1")

	_, err = run(t, "worker", "--drain")
	require.NoError(t, err)

	out, err = run(t, "jobs", "failed")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.NotContains(t, out, "import_indices_xml")

	_, err = run(t, "jobs", "retry", "1")
	assert.Error(t, err, "job 1 succeeded, nothing to retry")
}

// seedLivro creates livro 1 for publisher 1 in the configured database
func seedLivro(t *testing.T) {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, db.Create(&models.Livro{Titulo: "Livro A", UsuarioPublicadorID: 1}).Error)
}
