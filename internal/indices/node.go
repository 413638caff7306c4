// Package indices holds the submitted shape of an index tree, its JSON and XML
// decoders and the recursive validator.
package indices

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultMaxDepth bounds nesting when no explicit limit is configured
const DefaultMaxDepth = 64

// Node is one submitted index entry, decoded once from JSON or XML.
// Titulo and Pagina keep the raw decoded values so the validator can report
// type errors; use Title and Page after validation.
type Node struct {
	Titulo     interface{}
	Pagina     interface{}
	Subindices []Node

	// subindices was present but not a list
	badSubindices bool
	// children were not decoded because the depth limit was reached
	tooDeep bool
}

// Title returns the validated title
func (n Node) Title() string {
	s, _ := n.Titulo.(string)
	return s
}

// Page returns the validated page number
func (n Node) Page() float64 {
	f, _ := toFloat(n.Pagina)
	return f
}

// Count returns the total number of nodes in the forest
func Count(nodes []Node) int {
	total := 0
	for _, n := range nodes {
		total += 1 + Count(n.Subindices)
	}
	return total
}

// decimal accepts plain decimal and exponent forms only; ParseFloat alone
// would also take Inf, NaN, hex and underscores
var decimal = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// toFloat reports whether v is a finite number or a string holding one
func toFloat(v interface{}) (float64, bool) {
	switch p := v.(type) {
	case float64:
		return p, finite(p)
	case int:
		return float64(p), true
	case json.Number:
		return parseDecimal(p.String())
	case string:
		return parseDecimal(strings.TrimSpace(p))
	}
	return 0, false
}

func parseDecimal(s string) (float64, bool) {
	if !decimal.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(f) {
		return 0, false
	}
	return f, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
