package database

import (
	"path/filepath"
	"testing"

	"github.com/localnerve/livros/internal/config"
	"github.com/localnerve/livros/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	for dbType, name := range map[string]string{
		"mysql":       "mysql",
		"mariadb":     "mysql",
		"postgres":    "postgres",
		"postgresql":  "postgres",
		"sqlite":      "sqlite",
		"sqlite-pure": "sqlite",
		"sqlserver":   "sqlserver",
		"mssql":       "sqlserver",
	} {
		t.Run(dbType, func(t *testing.T) {
			dialector, err := Dialector(&config.Config{
				DBType:     dbType,
				DBHost:     "localhost",
				DBPort:     "3306",
				DBDatabase: "livros",
				DBUser:     "livros",
				DBPassword: "secret",
			})
			require.NoError(t, err)
			assert.Equal(t, name, dialector.Name())
		})
	}

	_, err := Dialector(&config.Config{DBType: "oracle"})
	assert.Error(t, err)
}

func TestWithForeignKeys(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"livros.db", "file:livros.db?_foreign_keys=1"},
		{":memory:", "file::memory:?_foreign_keys=1"},
		{"file:x.db?cache=shared", "file:x.db?cache=shared&_foreign_keys=1"},
		{"file:x.db", "file:x.db?_foreign_keys=1"},
		{"x.db?_foreign_keys=0", "x.db?_foreign_keys=0"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, withForeignKeys(tc.path, "_foreign_keys=1"), tc.path)
	}
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, logLevel("SILENT"))
	assert.Equal(t, logger.Error, logLevel("error"))
	assert.Equal(t, logger.Info, logLevel("info"))
	assert.Equal(t, logger.Warn, logLevel(""))
}

func TestConnectPureSQLite(t *testing.T) {
	cfg := &config.Config{
		DBType:            "sqlite-pure",
		DBDatabase:        filepath.Join(t.TempDir(), "livros.db"),
		DBConnectionLimit: 2,
		DBLogLevel:        "silent",
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, AutoMigrate(db))

	user := models.User{Name: "Ana", Email: "ana@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	livro := models.Livro{Titulo: "Livro", UsuarioPublicadorID: user.ID}
	require.NoError(t, db.Create(&livro).Error)
	parent := models.Indice{LivroID: livro.ID, Titulo: "Pai", Pagina: 1}
	require.NoError(t, db.Create(&parent).Error)
	child := models.Indice{LivroID: livro.ID, Titulo: "Filho", Pagina: 2, IndicePaiID: &parent.ID}
	require.NoError(t, db.Create(&child).Error)

	require.NoError(t, db.Delete(&parent).Error)
	var reloaded models.Indice
	require.NoError(t, db.First(&reloaded, child.ID).Error)
	assert.Nil(t, reloaded.IndicePaiID, "foreign keys are enforced")
}
