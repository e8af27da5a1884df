package assembly

import (
	"fmt"
	"strings"

	"github.com/jonathan/formation-kit/internal/types"
)

// FieldError describes one missing or invalid questionnaire field
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every field that must be corrected before a document can be assembled
type ValidationError struct {
	DocumentType types.DocumentType
	Fields       []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s %s", f.Field, f.Reason))
	}
	return fmt.Sprintf("invalid fields for %s: %s", e.DocumentType, strings.Join(parts, "; "))
}

// UnknownTypeError is returned when no strategy is registered for a document type
type UnknownTypeError struct {
	DocumentType types.DocumentType
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("no assembly strategy for document type %q", e.DocumentType)
}
