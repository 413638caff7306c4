// livro_service.go
//
// Book outline service: books with nested index trees, JSON and XML import
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of livros.
// livros is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// livros is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with livros.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/localnerve/livros/internal/indices"
	"github.com/localnerve/livros/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// ErrBrokenChain is returned when parent links loop or exceed the depth limit
var ErrBrokenChain = errors.New("index parent chain is broken")

// SaveIndices writes nodes depth-first in array order. Each row is created
// before its children so they can reference its generated id.
func SaveIndices(tx *gorm.DB, nodes []indices.Node, parentID *uint64, livroID uint64) error {
	for _, node := range nodes {
		indice := models.Indice{
			Titulo:      node.Title(),
			Pagina:      node.Page(),
			LivroID:     livroID,
			IndicePaiID: parentID,
		}
		if err := tx.Create(&indice).Error; err != nil {
			return fmt.Errorf("create indice %q: %w", indice.Titulo, err)
		}

		if len(node.Subindices) > 0 {
			id := indice.ID
			if err := SaveIndices(tx, node.Subindices, &id, livroID); err != nil {
				return err
			}
		}
	}
	return nil
}

// CreateLivro creates a book and its whole outline in one transaction.
// Any invalid node rolls the book back and yields *indices.ValidationError.
func CreateLivro(ctx context.Context, db *gorm.DB, userID uint64, titulo string, nodes []indices.Node, maxDepth int) (*models.Livro, error) {
	livro := models.Livro{
		Titulo:              titulo,
		UsuarioPublicadorID: userID,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&livro).Error; err != nil {
			return fmt.Errorf("create livro: %w", err)
		}

		if errs := indices.Validate(nodes, indices.JSONPaths, maxDepth); len(errs) > 0 {
			return &indices.ValidationError{Errors: errs}
		}

		return SaveIndices(tx, nodes, nil, livro.ID)
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Uint64("livro_id", livro.ID).
		Int("indices", indices.Count(nodes)).
		Msg("livro created")

	return &livro, nil
}

// ImportIndices writes an already validated outline into an existing book as
// one atomic unit
func ImportIndices(ctx context.Context, db *gorm.DB, livroID uint64, nodes []indices.Node) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Livro{}).Where("id = ?", livroID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("livro %d: %w", livroID, ErrNotFound)
		}
		return SaveIndices(tx, nodes, nil, livroID)
	})
}

// GetLivro loads a book without relations
func GetLivro(ctx context.Context, db *gorm.DB, id uint64) (*models.Livro, error) {
	var livro models.Livro
	if err := db.WithContext(ctx).First(&livro, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &livro, nil
}

// ListLivros returns books with publisher and full outline. A non-empty
// titulo filters by substring.
func ListLivros(ctx context.Context, db *gorm.DB, titulo string) ([]models.Livro, error) {
	query := db.WithContext(ctx).
		Preload("UsuarioPublicador").
		Preload("Indices", orderByID).
		Order("id")

	if titulo != "" {
		query = query.Where("titulo LIKE ?", "%"+titulo+"%")
	}

	var livros []models.Livro
	if err := query.Find(&livros).Error; err != nil {
		return nil, err
	}
	return livros, nil
}

// FindLivroByIndiceTitle finds the first entry titled exactly titulo (lowest
// id wins) and returns its book with only the entries on the path from that
// entry up to its root. ErrNotFound when nothing matches.
func FindLivroByIndiceTitle(ctx context.Context, db *gorm.DB, titulo string, maxDepth int) (*models.Livro, error) {
	db = db.WithContext(ctx)

	query := db.Where("titulo = ?", titulo).Order("id")
	if db.Dialector.Name() == "mysql" {
		query = query.Clauses(hints.UseIndex("idx_indices_titulo"))
	}

	// mysql and sqlserver default collations fold case and accents, so the
	// rows are rechecked byte for byte
	var candidates []models.Indice
	if err := query.Find(&candidates).Error; err != nil {
		return nil, err
	}
	leaf, ok := firstExact(candidates, titulo)
	if !ok {
		return nil, ErrNotFound
	}

	chain, err := AncestorChain(ctx, db, leaf, maxDepth)
	if err != nil {
		return nil, err
	}

	var livro models.Livro
	err = db.Preload("UsuarioPublicador").
		Preload("Indices", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("id IN ?", chain).Order("id")
		}).
		First(&livro, leaf.LivroID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &livro, nil
}

func firstExact(candidates []models.Indice, titulo string) (models.Indice, bool) {
	for _, c := range candidates {
		if c.Titulo == titulo {
			return c, true
		}
	}
	return models.Indice{}, false
}

// AncestorChain follows parent links from leaf and returns ids ordered
// [leaf, ..., root]
func AncestorChain(ctx context.Context, db *gorm.DB, leaf models.Indice, maxDepth int) ([]uint64, error) {
	if maxDepth < 1 {
		maxDepth = indices.DefaultMaxDepth
	}

	chain := []uint64{leaf.ID}
	seen := map[uint64]bool{leaf.ID: true}
	current := leaf

	for current.IndicePaiID != nil {
		parentID := *current.IndicePaiID
		if seen[parentID] || len(chain) >= maxDepth {
			return nil, fmt.Errorf("indice %d: %w", leaf.ID, ErrBrokenChain)
		}

		var parent models.Indice
		err := db.WithContext(ctx).
			Select("id", "livro_id", "indice_pai_id").
			First(&parent, parentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		if parent.LivroID != leaf.LivroID {
			return nil, fmt.Errorf("indice %d has a parent in livro %d: %w", current.ID, parent.LivroID, ErrBrokenChain)
		}

		chain = append(chain, parent.ID)
		seen[parent.ID] = true
		current = parent
	}

	return chain, nil
}

// GetIndice loads an entry with its parent, or its direct children when it is a root
func GetIndice(ctx context.Context, db *gorm.DB, id uint64) (*models.Indice, []models.Indice, error) {
	db = db.WithContext(ctx)

	var indice models.Indice
	if err := db.Preload("IndicePai").First(&indice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	if indice.IndicePaiID != nil {
		return &indice, nil, nil
	}

	var children []models.Indice
	if err := db.Where("indice_pai_id = ?", indice.ID).Order("id").Find(&children).Error; err != nil {
		return nil, nil, err
	}
	return &indice, children, nil
}

func orderByID(tx *gorm.DB) *gorm.DB {
	return tx.Order("id")
}
