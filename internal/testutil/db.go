// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/localnerve/livros/internal/database"
	"github.com/localnerve/livros/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB creates a migrated, isolated in-memory SQLite database with foreign keys on.
// The pool is pinned to one connection so every statement sees the same memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared&_foreign_keys=1", dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = database.Close(db)
	})

	return db
}

// CreateUser inserts a user with a bcrypt hashed password
func CreateUser(t *testing.T, db *gorm.DB, name, email, password string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{Name: name, Email: email, Password: string(hash)}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// CreateLivro inserts a book with no indices
func CreateLivro(t *testing.T, db *gorm.DB, publisher models.User, titulo string) models.Livro {
	t.Helper()

	livro := models.Livro{Titulo: titulo, UsuarioPublicadorID: publisher.ID}
	if err := db.Create(&livro).Error; err != nil {
		t.Fatalf("Failed to create livro: %v", err)
	}
	return livro
}

// CreateIndice inserts a single index row
func CreateIndice(t *testing.T, db *gorm.DB, livro models.Livro, parent *models.Indice, titulo string, pagina float64) models.Indice {
	t.Helper()

	indice := models.Indice{LivroID: livro.ID, Titulo: titulo, Pagina: pagina}
	if parent != nil {
		indice.IndicePaiID = &parent.ID
	}
	if err := db.Create(&indice).Error; err != nil {
		t.Fatalf("Failed to create indice: %v", err)
	}
	return indice
}

// Indices returns all index rows of a book ordered by id
func Indices(t *testing.T, db *gorm.DB, livroID uint64) []models.Indice {
	t.Helper()

	var rows []models.Indice
	if err := db.Where("livro_id = ?", livroID).Order("id").Find(&rows).Error; err != nil {
		t.Fatalf("Failed to load indices: %v", err)
	}
	return rows
}
