// Package server provides the HTTP API for document generation and the equity calculator.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/formation-kit/internal/assembly"
	"github.com/jonathan/formation-kit/internal/entitlement"
	"github.com/jonathan/formation-kit/internal/equity"
	"github.com/jonathan/formation-kit/internal/pipeline"
)

// ErrNotFound indicates a resource does not exist or is not visible to the caller
type ErrNotFound struct {
	Resource string
	ID       uuid.UUID
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		denied      *pipeline.DeniedError
		invalid     *assembly.ValidationError
		unknownType *assembly.UnknownTypeError
		failure     *pipeline.Failure
		computation *equity.ComputationError
		notFound    *ErrNotFound
		validation  *ErrValidation
	)
	switch {
	case errors.As(err, &denied):
		if denied.Decision.Denial == entitlement.DenialEligibility {
			return http.StatusForbidden
		}
		return http.StatusPaymentRequired
	case errors.As(err, &invalid), errors.As(err, &computation):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unknownType), errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrUnknownRequester):
		return http.StatusUnauthorized
	case errors.As(err, &failure):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON body of every error response
type ErrorBody struct {
	Error          string                `json:"error"`
	Code           string                `json:"code,omitempty"`
	Reason         string                `json:"reason,omitempty"`
	DocumentType   string                `json:"document_type,omitempty"`
	RequiredTier   string                `json:"required_tier,omitempty"`
	RetryAfterDays int                   `json:"retry_after_days,omitempty"`
	Fields         []assembly.FieldError `json:"fields,omitempty"`
}

// errorBody builds the user-facing body for err. Internal causes are never included.
func errorBody(err error) ErrorBody {
	var (
		denied  *pipeline.DeniedError
		invalid *assembly.ValidationError
	)
	switch {
	case errors.As(err, &denied):
		d := denied.Decision
		return ErrorBody{
			Error:          d.Reason,
			Code:           string(d.Denial) + "_denied",
			Reason:         d.Reason,
			DocumentType:   string(d.DocumentType),
			RequiredTier:   string(d.RequiredTier),
			RetryAfterDays: d.RetryAfterDays,
		}
	case errors.As(err, &invalid):
		return ErrorBody{
			Error:        "some answers need attention",
			Code:         "invalid_fields",
			DocumentType: string(invalid.DocumentType),
			Fields:       invalid.Fields,
		}
	}

	switch status := HTTPStatus(err); status {
	case http.StatusBadGateway:
		return ErrorBody{Error: pipeline.PublicFailureMessage, Code: "generation_failed"}
	case http.StatusInternalServerError, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrorBody{Error: http.StatusText(status), Code: "internal"}
	case http.StatusUnauthorized:
		return ErrorBody{Error: "account not found", Code: "unknown_account"}
	default:
		return ErrorBody{Error: err.Error()}
	}
}
