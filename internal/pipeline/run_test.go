package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/formation-kit/internal/assembly"
	"github.com/jonathan/formation-kit/internal/db"
	"github.com/jonathan/formation-kit/internal/entitlement"
	"github.com/jonathan/formation-kit/internal/llm"
	"github.com/jonathan/formation-kit/internal/normalize"
	"github.com/jonathan/formation-kit/internal/observability"
	"github.com/jonathan/formation-kit/internal/pipeline/steps"
	"github.com/jonathan/formation-kit/internal/types"
)

// fakeClient answers every request through respond; it is safe for concurrent use
type fakeClient struct {
	respond func(ctx context.Context, req llm.Request) (string, error)
	calls   atomic.Int32
}

func (f *fakeClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.calls.Add(1)
	return f.respond(ctx, req)
}

func (f *fakeClient) GetModel(tier llm.ModelTier) string { return llm.DefaultConfig().GetModel(tier) }
func (f *fakeClient) Close() error                       { return nil }

func textClient(text string) *fakeClient {
	return &fakeClient{respond: func(context.Context, llm.Request) (string, error) { return text, nil }}
}

const agreementMarkdown = "# Operating Agreement\n\n## FORMATION\n\nThe **Members** form the Company.\n\n* Item one\n"

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func operatingAgreementFields() types.FieldValues {
	return types.FieldValues{
		"llc_name":             "Acme LLC",
		"state":                "Delaware",
		"members":              []any{"Ada Lovelace", "Alan Turing"},
		"management_structure": "member-managed",
	}
}

func newTestOrchestrator(t *testing.T, client llm.Client) (*Orchestrator, *db.MemoryStore) {
	t.Helper()
	store := db.NewMemoryStore()
	o := New(client, store, store, Options{Now: func() time.Time { return fixedNow }})
	return o, store
}

func addUser(store *db.MemoryStore, tier types.Tier, ageDays int) uuid.UUID {
	id := uuid.New()
	store.PutUser(types.EntitlementContext{
		UserID:           id,
		Email:            "founder@example.com",
		Tier:             tier,
		AccountCreatedAt: fixedNow.Add(-time.Duration(ageDays) * 24 * time.Hour),
	})
	return id
}

func TestGenerate_OperatingAgreementEndToEnd(t *testing.T) {
	client := textClient(agreementMarkdown)
	o, store := newTestOrchestrator(t, client)
	userID := addUser(store, types.TierPro, 30)

	var events []ProgressEvent
	out, err := o.Generate(context.Background(), Input{
		UserID:       userID,
		DocumentType: types.DocOperatingAgreement,
		Fields:       operatingAgreementFields(),
		OnProgress:   func(e ProgressEvent) { events = append(events, e) },
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme LLC Operating Agreement", out.Title)
	assert.True(t, strings.HasSuffix(out.Content, normalize.Disclaimer))
	assert.Equal(t, 1, strings.Count(out.Content, "DISCLAIMER"))
	assert.NotContains(t, out.Content, "**")
	assert.NotContains(t, out.Content, "#")
	assert.Equal(t, int32(1), client.calls.Load())

	stored, err := store.GetDocument(context.Background(), out.ArtifactID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, userID, stored.UserID)
	assert.Equal(t, types.StatusGenerated, stored.Status)
	assert.Equal(t, out.Content, stored.Content)

	require.Len(t, events, len(steps.Order()))
	for i, name := range steps.Order() {
		assert.Equal(t, name, events[i].Step)
		assert.Equal(t, steps.Category(name), events[i].Category)
		assert.Equal(t, types.DocOperatingAgreement, events[i].DocumentType)
	}
	assert.Equal(t, out.ArtifactID.String(), events[len(events)-1].ArtifactID)
}

func TestGenerate_EINDeniedForNewAccount(t *testing.T) {
	client := textClient("should not be called")
	o, store := newTestOrchestrator(t, client)
	userID := addUser(store, types.TierPremium, 2)

	_, err := o.Generate(context.Background(), Input{
		UserID:       userID,
		DocumentType: types.DocEINForm,
		Fields:       types.FieldValues{"legal_name": "Acme LLC"},
	})

	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, entitlement.DenialEligibility, denied.Decision.Denial)
	assert.Contains(t, denied.Decision.Reason, "5")
	assert.Contains(t, denied.Decision.Reason, "2")
	assert.Equal(t, 3, denied.Decision.RetryAfterDays)
	assert.Equal(t, int32(0), client.calls.Load())
	assert.Equal(t, 0, store.Len())
}

func TestGenerate_TierTooLow(t *testing.T) {
	client := textClient("unused")
	o, store := newTestOrchestrator(t, client)
	userID := addUser(store, types.TierFree, 100)

	_, err := o.Generate(context.Background(), Input{
		UserID:       userID,
		DocumentType: types.DocOperatingAgreement,
		Fields:       operatingAgreementFields(),
	})

	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, entitlement.DenialEntitlement, denied.Decision.Denial)
	assert.Equal(t, types.TierPro, denied.Decision.RequiredTier)
	assert.Equal(t, int32(0), client.calls.Load())
}

func TestGenerate_RequesterOverride(t *testing.T) {
	o, store := newTestOrchestrator(t, textClient(agreementMarkdown))

	// no user registered; the explicit requester is trusted
	out, err := o.Generate(context.Background(), Input{
		UserID:       uuid.New(),
		DocumentType: types.DocOperatingAgreement,
		Fields:       operatingAgreementFields(),
		Requester:    &types.Requester{Tier: types.TierPremium, AccountAgeDays: 1},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, out.ArtifactID)
	assert.Equal(t, 1, store.Len())
}

func TestGenerate_UnknownRequester(t *testing.T) {
	o, _ := newTestOrchestrator(t, textClient("unused"))

	_, err := o.Generate(context.Background(), Input{
		UserID:       uuid.New(),
		DocumentType: types.DocOperatingAgreement,
		Fields:       operatingAgreementFields(),
	})
	assert.ErrorIs(t, err, ErrUnknownRequester)
}

func TestGenerate_UnknownDocumentType(t *testing.T) {
	o, _ := newTestOrchestrator(t, textClient("unused"))

	_, err := o.Generate(context.Background(), Input{
		DocumentType: "press_release",
		Requester:    &types.Requester{Tier: types.TierPremium},
	})
	var unknown *assembly.UnknownTypeError
	assert.ErrorAs(t, err, &unknown)
}

func TestGenerate_ValidationListsFields(t *testing.T) {
	client := textClient("unused")
	o, store := newTestOrchestrator(t, client)
	userID := addUser(store, types.TierPro, 30)

	_, err := o.Generate(context.Background(), Input{
		UserID:       userID,
		DocumentType: types.DocOperatingAgreement,
		Fields:       types.FieldValues{"llc_name": "Acme LLC"},
	})

	var verr *assembly.ValidationError
	require.ErrorAs(t, err, &verr)
	var names []string
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	assert.Contains(t, names, "state")
	assert.Contains(t, names, "members")
	assert.Equal(t, int32(0), client.calls.Load())
}

func TestGenerate_OracleFailureIsUniform(t *testing.T) {
	client := &fakeClient{respond: func(context.Context, llm.Request) (string, error) {
		return "", errors.New("googleapi: Error 500: backend exploded at 10.0.0.7")
	}}
	o, store := newTestOrchestrator(t, client)
	userID := addUser(store, types.TierPro, 30)

	_, err := o.Generate(context.Background(), Input{
		UserID:       userID,
		DocumentType: types.DocOperatingAgreement,
		Fields:       operatingAgreementFields(),
	})

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, PublicFailureMessage, err.Error())
	assert.NotContains(t, err.Error(), "10.0.0.7")
	assert.Equal(t, "generate", failure.Stage)
	assert.Equal(t, 0, store.Len())
}

func TestGenerate_CancelledDuringOracleCallIsDiscarded(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &fakeClient{respond: func(context.Context, llm.Request) (string, error) {
		// the caller disconnects while the oracle works, but the oracle still answers
		cancel()
		return agreementMarkdown, nil
	}}
	o, store := newTestOrchestrator(t, client)
	userID := addUser(store, types.TierPro, 30)

	var saved bool
	_, err := o.Generate(ctx, Input{
		UserID:       userID,
		DocumentType: types.DocOperatingAgreement,
		Fields:       operatingAgreementFields(),
		OnProgress: func(e ProgressEvent) {
			if e.Step == steps.StepSaved {
				saved = true
			}
		},
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, saved)
	assert.Equal(t, 0, store.Len())
}

func TestGenerate_StructuredChecklist(t *testing.T) {
	client := &fakeClient{respond: func(_ context.Context, req llm.Request) (string, error) {
		if !req.JSON {
			return "", errors.New("expected a JSON request")
		}
		return "```json\n" + `{"phases":[{"name":"Formation","tasks":[{"task":"File articles","timing":"Week 1"}]}]}` + "\n```", nil
	}}
	o, store := newTestOrchestrator(t, client)
	userID := addUser(store, types.TierFree, 0)

	out, err := o.Generate(context.Background(), Input{
		UserID:       userID,
		DocumentType: types.DocStartupChecklist,
		Fields:       types.FieldValues{"business_name": "Acme LLC", "state": "Texas"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme LLC Startup Checklist", out.Title)
	assert.Contains(t, out.Content, "1. PHASES")
	assert.Contains(t, out.Content, "File articles")
	assert.NotContains(t, out.Content, "{")
}

func TestGenerate_StructuredSchemaMismatchFails(t *testing.T) {
	o, store := newTestOrchestrator(t, textClient(`{"steps": []}`))
	userID := addUser(store, types.TierFree, 0)

	_, err := o.Generate(context.Background(), Input{
		UserID:       userID,
		DocumentType: types.DocStartupChecklist,
		Fields:       types.FieldValues{"business_name": "Acme LLC", "state": "Texas"},
	})
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 0, store.Len())
}

func TestGenerate_RegenerationAccumulates(t *testing.T) {
	o, store := newTestOrchestrator(t, textClient(agreementMarkdown))
	userID := addUser(store, types.TierPro, 30)

	in := Input{UserID: userID, DocumentType: types.DocOperatingAgreement, Fields: operatingAgreementFields()}
	first, err := o.Generate(context.Background(), in)
	require.NoError(t, err)
	second, err := o.Generate(context.Background(), in)
	require.NoError(t, err)

	assert.NotEqual(t, first.ArtifactID, second.ArtifactID)
	docs, err := store.ListDocuments(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestGenerate_ConcurrentCallsAreIndependent(t *testing.T) {
	client := &fakeClient{respond: func(_ context.Context, req llm.Request) (string, error) {
		// echo the company name back so each result can be traced to its request
		for _, line := range strings.Split(req.UserContent, "\n") {
			if strings.HasPrefix(line, "Company name: ") {
				return "FORMATION\n" + strings.TrimPrefix(line, "Company name: "), nil
			}
		}
		return "", errors.New("company name missing")
	}}
	o, store := newTestOrchestrator(t, client)

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	outs := make([]*Output, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fields := operatingAgreementFields()
			fields["llc_name"] = fmt.Sprintf("Company %02d LLC", i)
			outs[i], errs[i] = o.Generate(context.Background(), Input{
				UserID:       addUser(store, types.TierPro, 30),
				DocumentType: types.DocOperatingAgreement,
				Fields:       fields,
			})
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		name := fmt.Sprintf("Company %02d LLC", i)
		assert.Equal(t, name+" Operating Agreement", outs[i].Title)
		assert.Contains(t, outs[i].Content, name)
	}
	assert.Equal(t, n, store.Len())
}

func TestGenerateBatch(t *testing.T) {
	o, store := newTestOrchestrator(t, textClient(agreementMarkdown))
	userID := addUser(store, types.TierPro, 30)

	results := o.GenerateBatch(context.Background(), []Input{
		{UserID: userID, DocumentType: types.DocOperatingAgreement, Fields: operatingAgreementFields()},
		{UserID: userID, DocumentType: types.DocBusinessPlan, Fields: types.FieldValues{"business_name": "Acme LLC"}},
		{UserID: userID, DocumentType: types.DocOperatingAgreement, Fields: types.FieldValues{}},
	})
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, types.DocOperatingAgreement, results[0].DocumentType)
	require.NotNil(t, results[0].Output)

	var denied *DeniedError
	assert.ErrorAs(t, results[1].Err, &denied)

	var verr *assembly.ValidationError
	assert.ErrorAs(t, results[2].Err, &verr)

	assert.Equal(t, 1, store.Len())
}

func TestGenerate_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	store := db.NewMemoryStore()
	o := New(textClient(agreementMarkdown), store, store, Options{Metrics: metrics, Now: func() time.Time { return fixedNow }})
	userID := addUser(store, types.TierPremium, 1)

	_, err := o.Generate(context.Background(), Input{UserID: userID, DocumentType: types.DocOperatingAgreement, Fields: operatingAgreementFields()})
	require.NoError(t, err)
	_, err = o.Generate(context.Background(), Input{UserID: userID, DocumentType: types.DocEINForm, Fields: types.FieldValues{}})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Generations.WithLabelValues("operating_agreement", observability.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Denials.WithLabelValues("ein_form", "eligibility")))
}
