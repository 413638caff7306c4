package indices

import (
	"fmt"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxTitleLength matches the titulo column size
const MaxTitleLength = 255

// PathFormat names nodes in error reports
type PathFormat struct {
	Root     string
	Index    func(parent string, i int) string
	Children func(path string) string
}

// JSONPaths produces indices[0].subindices[1]
var JSONPaths = PathFormat{
	Root:     "indices",
	Index:    func(parent string, i int) string { return fmt.Sprintf("%s[%d]", parent, i) },
	Children: func(path string) string { return path + ".subindices" },
}

// XMLPaths produces índice > item 0 > item 1
var XMLPaths = PathFormat{
	Root:     "índice",
	Index:    func(parent string, i int) string { return fmt.Sprintf("%s > item %d", parent, i) },
	Children: func(path string) string { return path },
}

// PathError lists the problems found on one node
type PathError struct {
	Path     string
	Messages []string
}

// Errors is the ordered, path-qualified result of a validation pass
type Errors []PathError

// Map groups messages by path, the shape used for JSON submissions
func (e Errors) Map() map[string][]string {
	out := make(map[string][]string, len(e))
	for _, pe := range e {
		out[pe.Path] = append(out[pe.Path], pe.Messages...)
	}
	return out
}

// List emits one {path: message} entry per message, the shape used for XML imports
func (e Errors) List() []map[string]string {
	var out []map[string]string
	for _, pe := range e {
		for _, msg := range pe.Messages {
			out = append(out, map[string]string{pe.Path: msg})
		}
	}
	return out
}

// ValidationError carries every node error of a rejected tree
type ValidationError struct {
	Errors Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("index tree has %d invalid node(s)", len(e.Errors))
}

// Validate checks every node of the forest, never stopping at the first
// failure, and returns one entry per invalid node.
func Validate(nodes []Node, format PathFormat, maxDepth int) Errors {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	var errs Errors
	validateLevel(nodes, format.Root, format, 1, maxDepth, &errs)
	return errs
}

func validateLevel(nodes []Node, parentPath string, format PathFormat, depth, maxDepth int, errs *Errors) {
	for i, node := range nodes {
		path := format.Index(parentPath, i)

		messages := validateNode(node)
		tooDeep := node.tooDeep || (depth >= maxDepth && len(node.Subindices) > 0)
		if tooDeep {
			messages = append(messages, fmt.Sprintf("The subindices field must not be nested more than %d levels deep.", maxDepth))
		}
		if len(messages) > 0 {
			*errs = append(*errs, PathError{Path: path, Messages: messages})
		}

		if !tooDeep && len(node.Subindices) > 0 {
			validateLevel(node.Subindices, format.Children(path), format, depth+1, maxDepth, errs)
		}
	}
}

// validateNode returns the messages for the node's own fields
func validateNode(node Node) []string {
	fieldErrs := validation.Errors{
		"titulo": validation.Validate(node.Titulo, TitleRules("titulo")...),
		"pagina": validation.Validate(node.Pagina,
			validation.NotNil.Error("The pagina field is required."),
			validation.By(notBlank("pagina")),
			validation.By(isNumeric("pagina")),
		),
	}

	var messages []string
	for _, field := range []string{"titulo", "pagina"} {
		if err := fieldErrs[field]; err != nil {
			messages = append(messages, err.Error())
		}
	}
	if node.badSubindices {
		messages = append(messages, "The subindices field must be an array.")
	}
	return messages
}

// TitleRules validates a required string title of at most MaxTitleLength characters
func TitleRules(field string) []validation.Rule {
	return []validation.Rule{
		validation.NotNil.Error(fmt.Sprintf("The %s field is required.", field)),
		validation.By(isString(field)),
		validation.By(notBlank(field)),
		validation.By(maxRunes(field, MaxTitleLength)),
	}
}

func isString(field string) validation.RuleFunc {
	return func(value interface{}) error {
		if _, ok := value.(string); !ok {
			return validation.NewError("validation_is_string", fmt.Sprintf("The %s field must be a string.", field))
		}
		return nil
	}
}

func notBlank(field string) validation.RuleFunc {
	return func(value interface{}) error {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return validation.NewError("validation_required", fmt.Sprintf("The %s field is required.", field))
		}
		return nil
	}
}

func maxRunes(field string, max int) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if utf8.RuneCountInString(s) > max {
			return validation.NewError("validation_max", fmt.Sprintf("The %s field must not be greater than %d characters.", field, max))
		}
		return nil
	}
}

func isNumeric(field string) validation.RuleFunc {
	return func(value interface{}) error {
		if _, ok := toFloat(value); !ok {
			return validation.NewError("validation_numeric", fmt.Sprintf("The %s field must be a number.", field))
		}
		return nil
	}
}
