package relay_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"io.winapps.snapquip/internal/config"
	"io.winapps.snapquip/internal/relay"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type capturedRequest struct {
	path    string
	apiKey  string
	version string
	body    []byte
	calls   int
}

func newUpstream(t *testing.T, status int, contentType, respBody string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.calls++
		captured.path = r.URL.Path
		captured.apiKey = r.Header.Get("x-api-key")
		captured.version = r.Header.Get("anthropic-version")
		captured.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

// relayHTTPClient gives each test its own transport so idle keep-alive
// connections are closed before goleak runs.
func relayHTTPClient(t *testing.T) option.RequestOption {
	t.Helper()
	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)
	return option.WithHTTPClient(&http.Client{Transport: transport})
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		APIKey:     "sk-ant-api03-test",
		BaseURL:    baseURL,
		APIVersion: config.DefaultAPIVersion,
	}
}

func TestForwardSuccess(t *testing.T) {
	upstreamBody := `{"id":"msg_1","content":[{"type":"text","text":"Nice hat."}],"usage":{"input_tokens":10}}`
	srv, captured := newUpstream(t, http.StatusOK, "application/json", upstreamBody)

	r := relay.New(testConfig(srv.URL), relayHTTPClient(t))
	reqBody := []byte(`{"model":"m","max_tokens":8,"messages":[{"role":"user","content":[{"type":"text","text":"hi"}]}]}`)

	got, err := r.Forward(context.Background(), reqBody)
	require.NoError(t, err)

	assert.Equal(t, upstreamBody, string(got))
	assert.Equal(t, "/v1/messages", captured.path)
	assert.Equal(t, "sk-ant-api03-test", captured.apiKey)
	assert.Equal(t, "2023-06-01", captured.version)
	assert.JSONEq(t, string(reqBody), string(captured.body))
	assert.Equal(t, 1, captured.calls)
}

func TestForwardUpstreamRejection(t *testing.T) {
	errBody := `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`
	srv, captured := newUpstream(t, http.StatusUnauthorized, "application/json", errBody)

	r := relay.New(testConfig(srv.URL), relayHTTPClient(t))
	_, err := r.Forward(context.Background(), []byte(`{}`))
	require.Error(t, err)

	var upstreamErr *relay.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusUnauthorized, upstreamErr.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, upstreamErr.ReportedStatus())
	assert.Equal(t, "Unauthorized", upstreamErr.Status)
	assert.JSONEq(t, errBody, string(upstreamErr.Body))
	assert.Equal(t, "API request failed: 401 - request failed with status code 401", upstreamErr.Message())

	details, ok := upstreamErr.Details().(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "error", details["type"])
	assert.Equal(t, 1, captured.calls)
}

func TestForwardServerErrorIsNotRetried(t *testing.T) {
	srv, captured := newUpstream(t, http.StatusServiceUnavailable, "application/json", `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`)

	r := relay.New(testConfig(srv.URL), relayHTTPClient(t))
	_, err := r.Forward(context.Background(), []byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, 1, captured.calls)
}

func TestForwardTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	r := relay.New(testConfig(baseURL))
	_, err := r.Forward(context.Background(), []byte(`{}`))
	require.Error(t, err)

	var upstreamErr *relay.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Zero(t, upstreamErr.StatusCode)
	assert.Empty(t, upstreamErr.Body)
	assert.Equal(t, http.StatusInternalServerError, upstreamErr.ReportedStatus())
	assert.Equal(t, upstreamErr.Err.Error(), upstreamErr.Details())
	assert.Contains(t, upstreamErr.Message(), "API request failed: 500 - ")
}

func TestUpstreamErrorDetailsFallsBackToRawBody(t *testing.T) {
	e := &relay.UpstreamError{StatusCode: 502, Body: []byte("<html>bad gateway</html>"), Err: errors.New("request failed with status code 502")}
	assert.Equal(t, "<html>bad gateway</html>", e.Details())
	assert.Equal(t, "API request failed: 502 - request failed with status code 502", e.Message())
}

func TestCredentialReport(t *testing.T) {
	cases := []struct {
		name string
		key  string
		want relay.CredentialCheck
		fmt  string
	}{
		{"missing", "", relay.CredentialCheck{}, "incorrect"},
		{"well formed", "sk-ant-api03-xyz", relay.CredentialCheck{Exists: true, KeyLength: 16, StartsWithCorrectPrefix: true}, "correct"},
		{"wrong prefix", "sk-proj-123", relay.CredentialCheck{Exists: true, KeyLength: 11}, "incorrect"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := relay.CredentialReport(tc.key)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.fmt, got.Format())
		})
	}
}
