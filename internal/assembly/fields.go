package assembly

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/formation-kit/internal/types"
)

// field declares one questionnaire input of a document type
type field struct {
	Name  string
	Label string
	// Rules is a validator tag applied to the trimmed value; empty means optional
	Rules string
	List  bool
}

func required(name, label string) field { return field{Name: name, Label: label, Rules: "required"} }
func optional(name, label string) field { return field{Name: name, Label: label} }
func numeric(name, label string) field {
	return field{Name: name, Label: label, Rules: "required,numeric"}
}
func number(name, label string) field {
	return field{Name: name, Label: label, Rules: "omitempty,numeric"}
}
func list(name, label string) field {
	return field{Name: name, Label: label, Rules: "required,min=1", List: true}
}
func optionalList(name, label string) field {
	return field{Name: name, Label: label, List: true}
}

var validate = validator.New()

// validateFields checks every declared field and reports all failures together
func validateFields(dt types.DocumentType, specs []field, values types.FieldValues) error {
	var errs []FieldError
	for _, spec := range specs {
		if spec.Rules == "" {
			continue
		}
		var err error
		if spec.List {
			err = validate.Var(values.List(spec.Name), spec.Rules)
		} else {
			err = validate.Var(values.String(spec.Name), spec.Rules)
		}
		if err != nil {
			errs = append(errs, FieldError{Field: spec.Name, Reason: reasonFor(err, spec.List)})
		}
	}
	if len(errs) > 0 {
		return &ValidationError{DocumentType: dt, Fields: errs}
	}
	return nil
}

func reasonFor(err error, isList bool) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return "is invalid"
	}
	fe := validationErrors[0]
	switch fe.Tag() {
	case "required":
		return "is required"
	case "numeric":
		return "must be a number"
	case "min":
		if isList {
			return fmt.Sprintf("must list at least %s entry", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// writeFacts serializes the supplied fields as labelled prose lines, skipping blanks.
// List values are filtered of blank entries before being joined.
func writeFacts(sb *strings.Builder, specs []field, values types.FieldValues, clean func(string) string) {
	if clean == nil {
		clean = func(s string) string { return s }
	}
	for _, spec := range specs {
		if spec.List {
			items := values.List(spec.Name)
			if len(items) == 0 {
				continue
			}
			for i := range items {
				items[i] = clean(items[i])
			}
			sb.WriteString(fmt.Sprintf("%s: %s\n", spec.Label, strings.Join(items, "; ")))
			continue
		}
		if v := clean(values.String(spec.Name)); v != "" {
			sb.WriteString(fmt.Sprintf("%s: %s\n", spec.Label, v))
		}
	}
}
