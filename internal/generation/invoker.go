// Package generation sends assembled requests to the text-completion oracle.
// Every failure surfaces as a *Failure; partial content is never returned.
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/formation-kit/internal/assembly"
	"github.com/jonathan/formation-kit/internal/llm"
	"github.com/jonathan/formation-kit/internal/schemas"
	"github.com/jonathan/formation-kit/internal/types"
)

// Failure is an oracle, network, or response-shape fault for one document
type Failure struct {
	DocumentType types.DocumentType
	Message      string
	Cause        error
}

func (e *Failure) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed for %s: %s: %v", e.DocumentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation failed for %s: %s", e.DocumentType, e.Message)
}

func (e *Failure) Unwrap() error {
	return e.Cause
}

// Invoker performs one oracle call per request. Failures are returned, never retried.
type Invoker struct {
	client llm.Client
	logger *zap.Logger
}

// NewInvoker creates an invoker over an LLM client
func NewInvoker(client llm.Client, logger *zap.Logger) *Invoker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invoker{client: client, logger: logger}
}

// Invoke returns the raw text response for a request.
// The call is bounded by the profile's token-proportional timeout.
func (i *Invoker) Invoke(ctx context.Context, req assembly.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, req.Profile.Timeout())
	defer cancel()

	model := i.client.GetModel(req.Profile.Tier)
	i.logger.Debug("invoking oracle",
		zap.String("document_type", string(req.DocumentType)),
		zap.String("model", model),
		zap.Float32("temperature", req.Profile.Temperature),
		zap.Int32("max_output_tokens", req.Profile.MaxOutputTokens),
	)

	text, err := i.client.Complete(ctx, req.LLMRequest())
	if err != nil {
		return "", &Failure{DocumentType: req.DocumentType, Message: "oracle call failed", Cause: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &Failure{DocumentType: req.DocumentType, Message: "oracle returned empty content"}
	}
	return text, nil
}

// InvokeStructured returns the parsed JSON object for a structured request after validating it
// against the document type's response schema.
func (i *Invoker) InvokeStructured(ctx context.Context, req assembly.Request) (map[string]any, error) {
	if !req.Structured {
		return nil, &Failure{DocumentType: req.DocumentType, Message: "document type does not use a structured response"}
	}

	text, err := i.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	text = llm.CleanJSONBlock(text)

	if err := schemas.ValidateResponse(string(req.DocumentType), text); err != nil {
		return nil, &Failure{DocumentType: req.DocumentType, Message: "response does not match schema", Cause: err}
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, &Failure{DocumentType: req.DocumentType, Message: "failed to parse response", Cause: err}
	}
	return parsed, nil
}
