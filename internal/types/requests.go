package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate is shared; validator caches struct metadata per type
var validate = validator.New()

// MaxBatchSize bounds the number of documents in one batch request
const MaxBatchSize = 5

// GenerateRequest is the body of a generation call from a UI form
type GenerateRequest struct {
	DocumentType string      `json:"document_type" validate:"required"`
	FieldValues  FieldValues `json:"field_values" validate:"required"`
}

// GenerateResponse is returned on successful generation
type GenerateResponse struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
}

// BatchGenerateRequest generates several documents in one call
type BatchGenerateRequest struct {
	Documents []GenerateRequest `json:"documents" validate:"required,min=1,max=5,dive"`
}

// BatchItemResult is the outcome of one document in a batch
type BatchItemResult struct {
	DocumentType string            `json:"document_type"`
	Document     *GenerateResponse `json:"document,omitempty"`
	Error        string            `json:"error,omitempty"`
	Reason       string            `json:"reason,omitempty"`
}

// EquityRequest is the body of an equity split calculation
type EquityRequest struct {
	Founders []FounderContribution `json:"founders" validate:"required,min=1"`
}

// EquityResponse carries the computed split
type EquityResponse struct {
	Allocations []Allocation `json:"allocations"`
	Total       float64      `json:"total"`
}

// Validate validates the GenerateRequest using the validator.
func (r *GenerateRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the BatchGenerateRequest using the validator.
func (r *BatchGenerateRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the EquityRequest using the validator.
func (r *EquityRequest) Validate() error {
	return validate.Struct(r)
}
