package indices

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedXML wraps every XML syntax failure
var ErrMalformedXML = errors.New("malformed XML")

const itemElement = "item"

// ParseXML reads a document whose root element holds nested <item titulo=".." pagina=".."/>
// elements. Only item elements directly under the root or under another item
// count; anything else is skipped. Items deeper than maxDepth keep their
// attributes but their children are dropped and flagged for validation.
func ParseXML(content string, maxDepth int) ([]Node, error) {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	d := xml.NewDecoder(strings.NewReader(content))

	var (
		roots   []Node
		stack   []*Node
		inRoot  bool
		rootEnd bool
	)

	// appendChild attaches n to the current parent and returns its address
	appendChild := func(n Node) *Node {
		if len(stack) == 0 {
			roots = append(roots, n)
			return &roots[len(roots)-1]
		}
		parent := stack[len(stack)-1]
		parent.Subindices = append(parent.Subindices, n)
		return &parent.Subindices[len(parent.Subindices)-1]
	}

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootEnd {
				return nil, fmt.Errorf("%w: extra content at the end of the document", ErrMalformedXML)
			}
			if !inRoot {
				inRoot = true
				continue
			}
			if t.Name.Local != itemElement {
				if err := d.Skip(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
				}
				continue
			}

			node := Node{Titulo: attr(t, "titulo"), Pagina: attr(t, "pagina")}
			if len(stack) >= maxDepth {
				// stack[len-1] is at maxDepth; mark it and drop this subtree
				stack[len(stack)-1].tooDeep = true
				if err := d.Skip(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
				}
				continue
			}
			stack = append(stack, appendChild(node))

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
				continue
			}
			rootEnd = true

		case xml.CharData:
			if rootEnd || !inRoot {
				if len(strings.TrimSpace(string(t))) > 0 {
					return nil, fmt.Errorf("%w: text outside the root element", ErrMalformedXML)
				}
			}
		}
	}

	if !inRoot {
		return nil, fmt.Errorf("%w: document is empty", ErrMalformedXML)
	}
	if !rootEnd {
		return nil, fmt.Errorf("%w: root element is not closed", ErrMalformedXML)
	}

	return roots, nil
}

// attr returns the attribute value, or nil when the attribute is absent
func attr(el xml.StartElement, name string) interface{} {
	for _, a := range el.Attr {
		if a.Name.Local == name && a.Name.Space == "" {
			return a.Value
		}
	}
	return nil
}
