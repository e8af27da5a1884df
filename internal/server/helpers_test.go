package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/formation-kit/internal/config"
	"github.com/jonathan/formation-kit/internal/db"
	"github.com/jonathan/formation-kit/internal/llm"
	"github.com/jonathan/formation-kit/internal/observability"
	"github.com/jonathan/formation-kit/internal/pipeline"
	"github.com/jonathan/formation-kit/internal/server/ratelimit"
	"github.com/jonathan/formation-kit/internal/types"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// fakeClient answers every oracle call with respond
type fakeClient struct {
	respond func(req llm.Request) (string, error)
}

func (f *fakeClient) Complete(_ context.Context, req llm.Request) (string, error) {
	return f.respond(req)
}
func (f *fakeClient) GetModel(tier llm.ModelTier) string { return llm.DefaultConfig().GetModel(tier) }
func (f *fakeClient) Close() error                       { return nil }

func textClient(text string) *fakeClient {
	return &fakeClient{respond: func(llm.Request) (string, error) { return text, nil }}
}

type testServer struct {
	server  *Server
	store   *db.MemoryStore
	jwt     *JWTService
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, client llm.Client) *testServer {
	t.Helper()
	return newTestServerWithLimits(t, client, &ratelimit.Config{Enabled: false})
}

func newTestServerWithLimits(t *testing.T, client llm.Client, limits *ratelimit.Config) *testServer {
	t.Helper()
	store := db.NewMemoryStore()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	orch := pipeline.New(client, store, store, pipeline.Options{
		Metrics: metrics,
		Now:     func() time.Time { return testNow },
	})
	jwtService := NewJWTService(&config.JWTConfig{Secret: testJWTSecret, ExpirationHours: 24})

	s, err := New(Config{RateLimit: limits}, Deps{
		Orchestrator: orch,
		Store:        store,
		JWT:          jwtService,
		Metrics:      metrics,
		Gatherer:     reg,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	return &testServer{server: s, store: store, jwt: jwtService, metrics: metrics}
}

// addUser registers a user and returns a bearer token for them
func (ts *testServer) addUser(t *testing.T, tier types.Tier, ageDays int) (uuid.UUID, string) {
	t.Helper()
	id := uuid.New()
	ts.store.PutUser(types.EntitlementContext{
		UserID:           id,
		Email:            "founder@example.com",
		Tier:             tier,
		AccountCreatedAt: testNow.Add(-time.Duration(ageDays) * 24 * time.Hour),
	})
	token, err := ts.jwt.GenerateToken(id)
	require.NoError(t, err)
	return id, token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func operatingAgreementRequest() types.GenerateRequest {
	return types.GenerateRequest{
		DocumentType: "operating_agreement",
		FieldValues: types.FieldValues{
			"llc_name":             "Acme LLC",
			"state":                "Delaware",
			"members":              []any{"Ada Lovelace", "Alan Turing"},
			"management_structure": "member-managed",
		},
	}
}

const agreementText = "FORMATION\nThe Members form the Company under the laws of Delaware."
