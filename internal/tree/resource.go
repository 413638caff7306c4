package tree

import (
	"github.com/localnerve/livros/internal/models"
)

// IndiceView is the serialized shape of a single index entry.
// An entry with a parent is shown with that parent, a root entry with its
// direct children; never both.
type IndiceView interface {
	indiceView()
}

// WithParent is the view of an entry that has a parent
type WithParent struct {
	ID     uint64     `json:"id"`
	Titulo string     `json:"titulo"`
	Pagina float64    `json:"pagina"`
	Pai    IndiceView `json:"pai"`
}

// WithChildren is the view of a root-level entry
type WithChildren struct {
	ID         uint64       `json:"id"`
	Titulo     string       `json:"titulo"`
	Pagina     float64      `json:"pagina"`
	Subindices []IndiceView `json:"subindices"`
}

func (WithParent) indiceView()   {}
func (WithChildren) indiceView() {}

// View renders one entry. For an entry with a parent, indice.IndicePai should be
// loaded; for a root entry, children holds its loaded direct children.
func View(indice models.Indice, children []models.Indice) IndiceView {
	if indice.IndicePaiID != nil {
		var pai IndiceView
		if indice.IndicePai != nil {
			pai = View(*indice.IndicePai, nil)
		}
		return WithParent{
			ID:     indice.ID,
			Titulo: indice.Titulo,
			Pagina: indice.Pagina,
			Pai:    pai,
		}
	}

	subindices := make([]IndiceView, 0, len(children))
	for _, child := range children {
		subindices = append(subindices, View(child, nil))
	}
	return WithChildren{
		ID:         indice.ID,
		Titulo:     indice.Titulo,
		Pagina:     indice.Pagina,
		Subindices: subindices,
	}
}

// Publicador is the publisher summary embedded in a book resource
type Publicador struct {
	ID   uint64 `json:"id"`
	Nome string `json:"nome"`
}

// Livro is the API representation of a book with its outline
type Livro struct {
	ID                uint64      `json:"id"`
	Titulo            string      `json:"titulo"`
	UsuarioPublicador *Publicador `json:"usuario_publicador"`
	Indices           []Node      `json:"indices"`
}

// LivroResource renders a book and nests whatever index rows were loaded with it
func LivroResource(livro models.Livro) Livro {
	out := Livro{
		ID:      livro.ID,
		Titulo:  livro.Titulo,
		Indices: BuildHierarchy(Flatten(livro.Indices), nil),
	}
	if livro.UsuarioPublicador != nil {
		out.UsuarioPublicador = &Publicador{
			ID:   livro.UsuarioPublicador.ID,
			Nome: livro.UsuarioPublicador.Name,
		}
	}
	return out
}

// LivroCollection renders a list of books
func LivroCollection(livros []models.Livro) []Livro {
	out := make([]Livro, 0, len(livros))
	for _, livro := range livros {
		out = append(out, LivroResource(livro))
	}
	return out
}
