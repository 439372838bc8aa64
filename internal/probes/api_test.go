// internal/probes/api_test.go
package probes

import (
    "context"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "aidiag/internal/diag"
)

func probeServer(t *testing.T, code int, body string) (*APIProbe, *httptest.Server) {
    t.Helper()
    server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(code)
        if body != "" {
            w.Write([]byte(body))
        }
    }))
    t.Cleanup(server.Close)
    return NewAPIProbe("provider.test", server.URL, server.Client()), server
}

func TestAPIProbeAvailable(t *testing.T) {
    probe, _ := probeServer(t, http.StatusOK, `{"object":"list"}`)

    result, err := probe.Execute(context.Background())
    require.NoError(t, err)

    assert.Equal(t, diag.StatusOK, result.Status)
    assert.Equal(t, "AVAILABLE", result.Headline)
    assert.Empty(t, result.Error)

    require.Len(t, result.Detail, 3)
    assert.Equal(t, diag.Field{Key: "HOST", Value: "provider.test"}, result.Detail[0])
    assert.Equal(t, diag.Field{Key: "CODE", Value: "200"}, result.Detail[1])
}

func TestAPIProbeRateLimited(t *testing.T) {
    probe, _ := probeServer(t, http.StatusTooManyRequests,
        `{"error":{"type":"rate_limit_error","message":"rate limit exceeded"}}`)

    result, err := probe.Execute(context.Background())
    require.NoError(t, err)

    assert.Equal(t, diag.StatusWarning, result.Status)
    assert.Equal(t, "RATE_LIMITED", result.Headline)
    assert.Equal(t, "rate limit exceeded", result.Error)
}

func TestAPIProbeOverloaded(t *testing.T) {
    probe, _ := probeServer(t, http.StatusServiceUnavailable,
        `{"error":{"type":"overloaded_error","message":"server at capacity"}}`)

    result, err := probe.Execute(context.Background())
    require.NoError(t, err)

    assert.Equal(t, diag.StatusCritical, result.Status)
    assert.Equal(t, "OVERLOADED", result.Headline)
    assert.Equal(t, "server at capacity", result.Error)
}

func TestAPIProbeServerError(t *testing.T) {
    probe, _ := probeServer(t, http.StatusBadGateway, "")

    result, err := probe.Execute(context.Background())
    require.NoError(t, err)

    assert.Equal(t, diag.StatusCritical, result.Status)
    assert.Equal(t, "DOWN", result.Headline)
}

func TestAPIProbeUnexpectedStatus(t *testing.T) {
    probe, _ := probeServer(t, http.StatusTeapot, "")

    result, err := probe.Execute(context.Background())
    require.NoError(t, err)

    assert.Equal(t, diag.StatusUnknown, result.Status)
    assert.Equal(t, "UNEXPECTED_STATUS", result.Headline)
}

func TestAPIProbeTransportFailure(t *testing.T) {
    server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
    url := server.URL
    server.Close()

    probe := NewAPIProbe("provider.test", url, &http.Client{})
    result, err := probe.Execute(context.Background())
    require.NoError(t, err)

    assert.Equal(t, diag.StatusCritical, result.Status)
    assert.Equal(t, "DOWN", result.Headline)
    assert.NotEmpty(t, result.Error)
}

func TestAPIProbeTimeout(t *testing.T) {
    server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        <-r.Context().Done()
    }))
    t.Cleanup(server.Close)

    probe := NewAPIProbe("provider.test", server.URL, server.Client())

    ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
    defer cancel()

    result, err := probe.Execute(ctx)
    require.NoError(t, err)

    assert.Equal(t, diag.StatusCritical, result.Status)
    assert.Equal(t, "DOWN", result.Headline)
    assert.Equal(t, "request timed out", result.Error)
}

func TestClassifyStatusCode(t *testing.T) {
    cases := []struct {
        code     int
        status   diag.Status
        headline string
    }{
        {200, diag.StatusOK, "AVAILABLE"},
        {204, diag.StatusOK, "AVAILABLE"},
        {429, diag.StatusWarning, "RATE_LIMITED"},
        {503, diag.StatusCritical, "OVERLOADED"},
        {529, diag.StatusCritical, "OVERLOADED"},
        {500, diag.StatusCritical, "DOWN"},
        {502, diag.StatusCritical, "DOWN"},
        {301, diag.StatusUnknown, "UNEXPECTED_STATUS"},
        {404, diag.StatusUnknown, "UNEXPECTED_STATUS"},
        {401, diag.StatusUnknown, "UNEXPECTED_STATUS"},
    }
    for _, c := range cases {
        status, headline := classifyStatusCode(c.code)
        assert.Equal(t, c.status, status, "code %d", c.code)
        assert.Equal(t, c.headline, headline, "code %d", c.code)
    }
}

func TestExtractErrorMessage(t *testing.T) {
    assert.Equal(t, "server at capacity",
        extractErrorMessage([]byte(`{"error":{"message":"server at capacity"}}`)))
    assert.Equal(t, "plain error",
        extractErrorMessage([]byte(`{"error":"plain error"}`)))
    assert.Equal(t, "top level",
        extractErrorMessage([]byte(`{"message":"top level"}`)))
    assert.Empty(t, extractErrorMessage([]byte(`{"detail":"nothing useful"}`)))
    assert.Empty(t, extractErrorMessage([]byte(`not json`)))
    assert.Empty(t, extractErrorMessage(nil))
}
