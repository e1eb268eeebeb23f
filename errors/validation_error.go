// errors/validation_error.go
package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries a field -> message map so callers can report
// exactly which input field was rejected.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func NewValidationError(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// FieldError builds a ValidationError for a single offending field.
func FieldError(field, message string) *ValidationError {
	return &ValidationError{
		Message: message,
		Fields:  map[string]string{field: message},
	}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(names, ", "))
}
