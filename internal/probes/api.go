// internal/probes/api.go - AI provider availability probe
package probes

import (
    "context"
    "errors"
    "fmt"
    "io"
    "net/http"
    "time"

    "github.com/buger/jsonparser"
    "aidiag/internal/diag"
)

const bodyExcerptLimit = 512

// APIProbe checks one AI provider endpoint over HTTPS. Status mapping:
// transport failure or timeout means the service is unreachable (CRITICAL
// DOWN), 429 is RATE_LIMITED, 503/529 is OVERLOADED, other 5xx DOWN, 2xx
// AVAILABLE, anything else UNKNOWN. One bounded attempt per pass, no
// retries.
type APIProbe struct {
    host   string
    url    string
    client *http.Client
}

func NewAPIProbe(host, url string, client *http.Client) *APIProbe {
    return &APIProbe{
        host:   host,
        url:    url,
        client: client,
    }
}

func (p *APIProbe) Execute(ctx context.Context) (*diag.CheckResult, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
    if err != nil {
        return nil, fmt.Errorf("failed to build request: %w", err)
    }

    start := time.Now()
    resp, err := p.client.Do(req)
    latency := time.Since(start)

    if err != nil {
        result := &diag.CheckResult{
            Status:   diag.StatusCritical,
            Headline: "DOWN",
        }
        if errors.Is(err, context.DeadlineExceeded) {
            result.Error = "request timed out"
        } else {
            result.Error = err.Error()
        }
        result.AddDetail("HOST", p.host)
        result.AddDetail("LATENCY", fmt.Sprintf("%dms", latency.Milliseconds()))
        return result, nil
    }
    defer resp.Body.Close()

    excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, bodyExcerptLimit))

    result := &diag.CheckResult{}
    result.Status, result.Headline = classifyStatusCode(resp.StatusCode)
    result.AddDetail("HOST", p.host)
    result.AddDetail("CODE", fmt.Sprintf("%d", resp.StatusCode))
    result.AddDetail("LATENCY", fmt.Sprintf("%dms", latency.Milliseconds()))

    if result.Status != diag.StatusOK {
        if msg := extractErrorMessage(excerpt); msg != "" {
            result.Error = msg
        }
    }

    return result, nil
}

func classifyStatusCode(code int) (diag.Status, string) {
    switch {
    case code >= 200 && code < 300:
        return diag.StatusOK, "AVAILABLE"
    case code == http.StatusTooManyRequests:
        return diag.StatusWarning, "RATE_LIMITED"
    case code == http.StatusServiceUnavailable || code == 529:
        return diag.StatusCritical, "OVERLOADED"
    case code >= 500 && code < 600:
        return diag.StatusCritical, "DOWN"
    default:
        return diag.StatusUnknown, "UNEXPECTED_STATUS"
    }
}

// extractErrorMessage pulls a human-readable message out of the provider
// error body. Anthropic and OpenAI nest it under error.message; some
// providers use a top-level message.
func extractErrorMessage(body []byte) string {
    if msg, err := jsonparser.GetString(body, "error", "message"); err == nil {
        return msg
    }
    if msg, err := jsonparser.GetString(body, "error"); err == nil {
        return msg
    }
    if msg, err := jsonparser.GetString(body, "message"); err == nil {
        return msg
    }
    return ""
}
