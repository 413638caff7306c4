// Package tree converts between flat parent-linked index rows and nested outlines.
package tree

import (
	"github.com/localnerve/livros/internal/models"
)

// FlatNode is one index row reduced to the fields the outline needs
type FlatNode struct {
	ID          uint64  `json:"id"`
	Titulo      string  `json:"titulo"`
	Pagina      float64 `json:"pagina"`
	IndicePaiID *uint64 `json:"indice_pai_id"`
}

// Node is a nested outline entry. Subindices is never nil.
type Node struct {
	ID         uint64  `json:"id"`
	Titulo     string  `json:"titulo"`
	Pagina     float64 `json:"pagina"`
	Subindices []Node  `json:"subindices"`
}

// Flatten reduces the index rows of a book to flat nodes
func Flatten(indices []models.Indice) []FlatNode {
	flat := make([]FlatNode, 0, len(indices))
	for _, indice := range indices {
		flat = append(flat, FlatNode{
			ID:          indice.ID,
			Titulo:      indice.Titulo,
			Pagina:      indice.Pagina,
			IndicePaiID: indice.IndicePaiID,
		})
	}
	return flat
}

// BuildHierarchy nests the flat nodes whose parent is parentID (nil for roots).
// Sibling order follows input order. Nodes whose parent is not reachable from
// parentID are left out.
func BuildHierarchy(flat []FlatNode, parentID *uint64) []Node {
	children := make(map[uint64][]int, len(flat))
	var roots []int
	for i, n := range flat {
		if n.IndicePaiID == nil {
			roots = append(roots, i)
			continue
		}
		children[*n.IndicePaiID] = append(children[*n.IndicePaiID], i)
	}

	start := roots
	if parentID != nil {
		start = children[*parentID]
	}

	// visited guards against cycles in corrupted input
	visited := make(map[uint64]bool, len(flat))
	return build(flat, children, start, visited)
}

func build(flat []FlatNode, children map[uint64][]int, level []int, visited map[uint64]bool) []Node {
	out := make([]Node, 0, len(level))
	for _, i := range level {
		n := flat[i]
		if visited[n.ID] {
			continue
		}
		visited[n.ID] = true
		out = append(out, Node{
			ID:         n.ID,
			Titulo:     n.Titulo,
			Pagina:     n.Pagina,
			Subindices: build(flat, children, children[n.ID], visited),
		})
	}
	return out
}

// FlattenTree is the inverse of BuildHierarchy: it walks the nested nodes
// depth-first and restores each node's parent id.
func FlattenTree(nodes []Node, parentID *uint64) []FlatNode {
	var flat []FlatNode
	for _, n := range nodes {
		flat = append(flat, FlatNode{
			ID:          n.ID,
			Titulo:      n.Titulo,
			Pagina:      n.Pagina,
			IndicePaiID: parentID,
		})
		id := n.ID
		flat = append(flat, FlattenTree(n.Subindices, &id)...)
	}
	return flat
}
