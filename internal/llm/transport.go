package llm

import (
	"fmt"
	"io"
	"net/http"
)

// apiKeyHeader carries the key when a custom HTTP client replaces the default transport
const apiKeyHeader = "x-goog-api-key"

// UnavailableError reports a 503 from the provider as a transport failure
type UnavailableError struct {
	Status string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("provider unavailable: %s", e.Status)
}

// singleAttemptTransport authenticates requests and turns 503 responses into transport
// errors, so the generated REST client never sees a status its retry policy matches.
type singleAttemptTransport struct {
	base   http.RoundTripper
	apiKey string
}

func newHTTPClient(apiKey string) *http.Client {
	return &http.Client{Transport: &singleAttemptTransport{base: http.DefaultTransport, apiKey: apiKey}}
}

func (t *singleAttemptTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(apiKeyHeader, t.apiKey)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, &UnavailableError{Status: resp.Status}
	}
	return resp, nil
}
