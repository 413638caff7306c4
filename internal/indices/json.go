package indices

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrNotList is returned when the top-level indices value is not a JSON array
var ErrNotList = errors.New("indices must be a list")

// DecodeJSON decodes a JSON array of {titulo, pagina, subindices} objects.
// A missing or null value yields no nodes. Elements that are not objects
// become empty nodes so validation reports them. Nodes below maxDepth keep
// their fields but their children are not decoded.
func DecodeJSON(raw json.RawMessage, maxDepth int) ([]Node, error) {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	if isNull(raw) {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ErrNotList
	}

	return decodeItems(items, 1, maxDepth), nil
}

func decodeItems(items []json.RawMessage, depth, maxDepth int) []Node {
	nodes := make([]Node, 0, len(items))
	for _, item := range items {
		nodes = append(nodes, decodeNode(item, depth, maxDepth))
	}
	return nodes
}

func decodeNode(raw json.RawMessage, depth, maxDepth int) Node {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Node{}
	}

	var node Node
	if v, ok := fields["titulo"]; ok {
		node.Titulo = decodeScalar(v)
	}
	if v, ok := fields["pagina"]; ok {
		node.Pagina = decodeScalar(v)
	}

	sub, ok := fields["subindices"]
	if !ok || isNull(sub) {
		return node
	}

	var items []json.RawMessage
	if err := json.Unmarshal(sub, &items); err != nil {
		node.badSubindices = true
		return node
	}
	if len(items) > 0 && depth >= maxDepth {
		node.tooDeep = true
		return node
	}
	node.Subindices = decodeItems(items, depth+1, maxDepth)
	return node
}

// decodeScalar keeps numbers as json.Number so out of range literals reach
// the validator instead of failing here
func decodeScalar(raw json.RawMessage) interface{} {
	d := json.NewDecoder(bytes.NewReader(raw))
	d.UseNumber()
	var v interface{}
	if err := d.Decode(&v); err != nil {
		return nil
	}
	return v
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
