// Package pipeline orchestrates one document generation end to end:
// entitlement, prompt assembly, the oracle call, normalization and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/formation-kit/internal/assembly"
	"github.com/jonathan/formation-kit/internal/db"
	"github.com/jonathan/formation-kit/internal/entitlement"
	"github.com/jonathan/formation-kit/internal/generation"
	"github.com/jonathan/formation-kit/internal/llm"
	"github.com/jonathan/formation-kit/internal/normalize"
	"github.com/jonathan/formation-kit/internal/observability"
	"github.com/jonathan/formation-kit/internal/pipeline/steps"
	"github.com/jonathan/formation-kit/internal/types"
)

// PublicFailureMessage is the only failure text shown to users
const PublicFailureMessage = "document generation failed, please try again"

// DefaultBatchConcurrency bounds concurrent oracle calls within one batch
const DefaultBatchConcurrency = 3

// ErrUnknownRequester is returned when no entitlement context exists for the caller
var ErrUnknownRequester = errors.New("no entitlement context for user")

// ProgressEvent represents a progress update during a generation
type ProgressEvent struct {
	Step         string             `json:"step"`
	Category     string             `json:"category"`
	Message      string             `json:"message"`
	DocumentType types.DocumentType `json:"document_type"`
	ArtifactID   string             `json:"artifact_id,omitempty"`
	Content      any                `json:"content,omitempty"`
}

// ProgressCallback is called when a generation stage completes
type ProgressCallback func(event ProgressEvent)

// DeniedError is returned when the entitlement resolver denies a generation
type DeniedError struct {
	Decision entitlement.Decision
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("generation denied for %s: %s", e.Decision.DocumentType, e.Decision.Reason)
}

// Failure is an oracle, normalization or storage fault. Error returns the uniform public
// message; the cause is logged and available through Unwrap.
type Failure struct {
	DocumentType types.DocumentType
	Stage        string
	Cause        error
}

func (e *Failure) Error() string {
	return PublicFailureMessage
}

func (e *Failure) Unwrap() error {
	return e.Cause
}

// Input is one generation request
type Input struct {
	UserID       uuid.UUID
	DocumentType types.DocumentType
	Fields       types.FieldValues
	// Requester overrides the entitlement provider lookup when set
	Requester  *types.Requester
	OnProgress ProgressCallback
}

// Output is a persisted artifact
type Output struct {
	ArtifactID uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
}

// Options configures an Orchestrator. Zero values get defaults.
type Options struct {
	Registry         *assembly.Registry
	Logger           *zap.Logger
	Metrics          *observability.Metrics
	BatchConcurrency int
	Now              func() time.Time
}

// Orchestrator runs generations. It holds no per-request state and is safe for concurrent use.
type Orchestrator struct {
	registry     *assembly.Registry
	invoker      *generation.Invoker
	store        db.Store
	entitlements db.EntitlementProvider
	logger       *zap.Logger
	metrics      *observability.Metrics
	batchLimit   int
	now          func() time.Time
}

// New creates an orchestrator over an oracle client, a document store and an entitlement provider
func New(client llm.Client, store db.Store, entitlements db.EntitlementProvider, opts Options) *Orchestrator {
	if opts.Registry == nil {
		opts.Registry = assembly.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = DefaultBatchConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		registry:     opts.Registry,
		invoker:      generation.NewInvoker(client, opts.Logger),
		store:        store,
		entitlements: entitlements,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		batchLimit:   opts.BatchConcurrency,
		now:          opts.Now,
	}
}

// emitProgress marks a stage complete and calls the progress callback if configured
func emitProgress(in *Input, tracker *steps.Tracker, step, message string, content any) error {
	if err := tracker.Complete(step); err != nil {
		return err
	}
	if in.OnProgress != nil {
		event := ProgressEvent{
			Step:         step,
			Category:     steps.Category(step),
			Message:      message,
			DocumentType: in.DocumentType,
			Content:      content,
		}
		if out, ok := content.(*Output); ok {
			event.ArtifactID = out.ArtifactID.String()
			event.Content = nil
		}
		in.OnProgress(event)
	}
	return nil
}

// Requester resolves the caller's tier context from the entitlement provider
func (o *Orchestrator) Requester(ctx context.Context, userID uuid.UUID) (types.Requester, error) {
	if o.entitlements == nil {
		return types.Requester{}, ErrUnknownRequester
	}
	ec, err := o.entitlements.GetEntitlementContext(ctx, userID)
	if err != nil {
		return types.Requester{}, fmt.Errorf("failed to load entitlement context: %w", err)
	}
	if ec == nil {
		return types.Requester{}, ErrUnknownRequester
	}
	return ec.Requester(o.now()), nil
}

// Generate runs one generation and persists the artifact.
// Denials return *DeniedError, bad answers *assembly.ValidationError, and faults *Failure.
// When ctx is done before persistence the result is discarded and ctx.Err() is returned.
func (o *Orchestrator) Generate(ctx context.Context, in Input) (*Output, error) {
	start := time.Now()
	dt := string(in.DocumentType)
	if !in.DocumentType.Valid() {
		return nil, &assembly.UnknownTypeError{DocumentType: in.DocumentType}
	}
	logger := o.logger.With(zap.String("document_type", dt), zap.String("user_id", in.UserID.String()))
	tracker := steps.NewTracker()

	var requester types.Requester
	if in.Requester != nil {
		requester = *in.Requester
	} else {
		r, err := o.Requester(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		requester = r
	}

	decision, err := entitlement.Resolve(in.DocumentType, entitlement.ActionGenerate, requester)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		logger.Info("generation denied", zap.String("denial", string(decision.Denial)), zap.String("reason", decision.Reason))
		o.metrics.ObserveDenial(dt, string(decision.Denial))
		o.metrics.ObserveGeneration(dt, observability.OutcomeDenied, time.Since(start))
		return nil, &DeniedError{Decision: decision}
	}
	if err := emitProgress(&in, tracker, steps.StepEntitled, "Access granted", nil); err != nil {
		return nil, err
	}

	req, err := o.registry.Assemble(in.DocumentType, in.Fields)
	if err != nil {
		var verr *assembly.ValidationError
		if errors.As(err, &verr) {
			o.metrics.ObserveGeneration(dt, observability.OutcomeInvalid, time.Since(start))
			return nil, err
		}
		return nil, o.fail(logger, in.DocumentType, "assemble", err, start)
	}
	if err := emitProgress(&in, tracker, steps.StepAssembled, "Prompt assembled", nil); err != nil {
		return nil, err
	}

	raw, err := o.complete(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, o.discard(logger, dt, ctx.Err(), start)
		}
		return nil, o.fail(logger, in.DocumentType, "generate", err, start)
	}

	result, err := normalize.Normalize(raw, in.DocumentType, in.Fields)
	if err != nil {
		return nil, o.fail(logger, in.DocumentType, "normalize", err, start)
	}
	if err := emitProgress(&in, tracker, steps.StepGenerated, "Document generated", nil); err != nil {
		return nil, err
	}

	// the caller may have gone away while the oracle was working
	if err := ctx.Err(); err != nil {
		return nil, o.discard(logger, dt, err, start)
	}

	artifact := &types.Artifact{
		UserID:       in.UserID,
		DocumentType: in.DocumentType,
		Title:        result.Title,
		Content:      result.Content,
		Status:       types.StatusGenerated,
	}
	id, err := o.store.SaveDocument(ctx, artifact)
	if err != nil {
		o.metrics.ObserveGeneration(dt, observability.OutcomeStoreError, time.Since(start))
		logger.Error("failed to save document", zap.Error(err))
		return nil, &Failure{DocumentType: in.DocumentType, Stage: "persist", Cause: err}
	}

	out := &Output{ArtifactID: id, Title: result.Title, Content: result.Content}
	if err := emitProgress(&in, tracker, steps.StepSaved, "Document saved", out); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	o.metrics.ObserveGeneration(dt, observability.OutcomeSuccess, elapsed)
	logger.Info("document generated", zap.String("artifact_id", id.String()), zap.Duration("elapsed", elapsed))
	return out, nil
}

// complete calls the oracle, rendering structured responses to plain text
func (o *Orchestrator) complete(ctx context.Context, req assembly.Request) (string, error) {
	if !req.Structured {
		return o.invoker.Invoke(ctx, req)
	}
	obj, err := o.invoker.InvokeStructured(ctx, req)
	if err != nil {
		return "", err
	}
	return normalize.RenderStructured(obj, assembly.KeyOrder(req.DocumentType)), nil
}

func (o *Orchestrator) fail(logger *zap.Logger, dt types.DocumentType, stage string, cause error, start time.Time) error {
	logger.Error("generation failed", zap.String("stage", stage), zap.Error(cause))
	o.metrics.ObserveGeneration(string(dt), observability.OutcomeFailed, time.Since(start))
	return &Failure{DocumentType: dt, Stage: stage, Cause: cause}
}

func (o *Orchestrator) discard(logger *zap.Logger, dt string, cause error, start time.Time) error {
	logger.Info("generation discarded", zap.Error(cause))
	o.metrics.ObserveGeneration(dt, observability.OutcomeDiscarded, time.Since(start))
	return fmt.Errorf("generation discarded: %w", cause)
}

// BatchResult is the outcome of one item in a batch
type BatchResult struct {
	DocumentType types.DocumentType
	Output       *Output
	Err          error
}

// GenerateBatch runs independent generations concurrently. Each item succeeds or fails on its own;
// results are returned in input order.
func (o *Orchestrator) GenerateBatch(ctx context.Context, inputs []Input) []BatchResult {
	results := make([]BatchResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.batchLimit)
	for i := range inputs {
		in := inputs[i]
		g.Go(func() error {
			out, err := o.Generate(gctx, in)
			results[i] = BatchResult{DocumentType: in.DocumentType, Output: out, Err: err}
			return nil
		})
	}
	// items never return an error, so Wait only joins
	_ = g.Wait()
	return results
}
