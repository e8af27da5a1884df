package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gax "github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

// callWithRESTRetry issues one POST the way the generated REST client does,
// under the same 503 retry policy it installs for GenerateContent.
func callWithRESTRetry(ctx context.Context, client *http.Client, url string) error {
	return gax.Invoke(ctx, func(ctx context.Context, _ gax.CallSettings) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		return googleapi.CheckResponse(resp)
	}, gax.WithRetry(func() gax.Retryer {
		return gax.OnHTTPCodes(gax.Backoff{Initial: 5 * time.Millisecond, Max: 10 * time.Millisecond}, http.StatusServiceUnavailable)
	}))
}

func unavailableServer(t *testing.T, hits *int32, keys chan<- string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if keys != nil {
			select {
			case keys <- r.Header.Get(apiKeyHeader):
			default:
			}
		}
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSingleAttemptTransport_UnavailableIsNotRetried(t *testing.T) {
	var hits int32
	keys := make(chan string, 1)
	srv := unavailableServer(t, &hits, keys)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := callWithRESTRetry(ctx, newHTTPClient("test-key"), srv.URL)
	require.Error(t, err)

	var unavailable *UnavailableError
	assert.True(t, errors.As(err, &unavailable), "got %v", err)
	assert.NoError(t, ctx.Err(), "failure surfaces before the deadline")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, "test-key", <-keys)
}

func TestDefaultTransport_UnavailableIsRetried(t *testing.T) {
	var hits int32
	srv := unavailableServer(t, &hits, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := callWithRESTRetry(ctx, &http.Client{}, srv.URL)
	require.Error(t, err)
	assert.Greater(t, atomic.LoadInt32(&hits), int32(1))
}

func TestSingleAttemptTransport_PassesOtherStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := callWithRESTRetry(context.Background(), newHTTPClient("k"), srv.URL)
	var gerr *googleapi.Error
	require.True(t, errors.As(err, &gerr), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, gerr.Code)
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), DefaultGeminiConfig(), "")
	assert.Error(t, err)
}
