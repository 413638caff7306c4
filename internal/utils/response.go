package utils

import (
	"fmt"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// DataResponse wraps a resource or collection in {"data": ...}
func DataResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(fiber.Map{"data": data})
}

// MessageResponse sends {"message": ...}
func MessageResponse(c *fiber.Ctx, message string, status int) error {
	return c.Status(status).JSON(fiber.Map{"message": message})
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}

// UnauthenticatedResponse sends the 401 body for a missing or rejected token
func UnauthenticatedResponse(c *fiber.Ctx) error {
	return MessageResponse(c, "Unauthenticated.", fiber.StatusUnauthorized)
}

// ValidationResponse sends a 422 with only the errors member. errors is a
// path map for JSON submissions or a list of {path: message} for XML imports.
func ValidationResponse(c *fiber.Ctx, errors interface{}) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": errors})
}

// FieldValidationResponse sends a 422 for request field failures with a
// summary message and per-field messages
func FieldValidationResponse(c *fiber.Ctx, fieldErrors map[string][]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"message": SummaryMessage(fieldErrors),
		"errors":  fieldErrors,
	})
}

// SummaryMessage is the first message in field order followed by a count of the rest
func SummaryMessage(fieldErrors map[string][]string) string {
	fields := make([]string, 0, len(fieldErrors))
	total := 0
	for field, messages := range fieldErrors {
		if len(messages) > 0 {
			fields = append(fields, field)
			total += len(messages)
		}
	}
	if total == 0 {
		return "The given data was invalid."
	}
	sort.Strings(fields)

	first := fieldErrors[fields[0]][0]
	switch rest := total - 1; rest {
	case 0:
		return first
	case 1:
		return fmt.Sprintf("%s (and 1 more error)", first)
	default:
		return fmt.Sprintf("%s (and %d more errors)", first, rest)
	}
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}

// MessageResponseStruct defines the schema for {"message"} responses
type MessageResponseStruct struct {
	Message string `json:"message"`
}

// SaveErrorResponseStruct defines the schema for a failed book save
type SaveErrorResponseStruct struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// FieldValidationResponseStruct defines the schema for request field failures
type FieldValidationResponseStruct struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// TreeValidationResponseStruct defines the schema for index tree failures
type TreeValidationResponseStruct struct {
	Errors map[string][]string `json:"errors"`
}

// ImportValidationResponseStruct defines the schema for XML import failures
type ImportValidationResponseStruct struct {
	Errors []map[string]string `json:"errors"`
}
