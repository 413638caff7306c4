package types

import "fmt"

// Error types carried by CustomError
const (
	ErrTypeAuth     = "auth"
	ErrTypeJSON     = "json.parse"
	ErrTypeXML      = "xml.parse"
	ErrTypeNotFound = "not_found"
	ErrTypeRequest  = "request"
)

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// NewError returns a CustomError rendered by the global error handler
func NewError(code int, message, errorType string) *CustomError {
	return &CustomError{Code: code, Message: message, Type: errorType}
}
