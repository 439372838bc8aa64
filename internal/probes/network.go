// internal/probes/network.go - internet reachability probe
package probes

import (
    "context"
    "fmt"
    "net/http"
    "time"

    "aidiag/internal/diag"
)

const slowThreshold = 2 * time.Second

// InternetProbe confirms outbound HTTPS reachability: primary endpoint
// first, a fallback if the primary is down. A timeout means the network is
// degraded, not that the probe is broken, so it maps to CRITICAL.
type InternetProbe struct {
    client   *http.Client
    primary  string
    fallback string
}

func NewInternetProbe(client *http.Client) *InternetProbe {
    return &InternetProbe{
        client:   client,
        primary:  "https://www.google.com",
        fallback: "https://1.1.1.1",
    }
}

func (p *InternetProbe) Execute(ctx context.Context) (*diag.CheckResult, error) {
    start := time.Now()
    primaryUp := p.reachable(ctx, p.primary)
    latency := time.Since(start)

    result := &diag.CheckResult{}

    switch {
    case primaryUp && latency > slowThreshold:
        result.Status = diag.StatusWarning
        result.Headline = "SLOW"
    case primaryUp:
        result.Status = diag.StatusOK
        result.Headline = "ONLINE"
    case p.reachable(ctx, p.fallback):
        result.Status = diag.StatusWarning
        result.Headline = "DEGRADED"
        result.Error = "primary endpoint unreachable, fallback OK"
    default:
        result.Status = diag.StatusCritical
        result.Headline = "OFFLINE"
        result.Error = "no endpoint reachable"
    }

    result.AddDetail("PING", fmt.Sprintf("%dms", latency.Milliseconds()))
    result.AddDetail("PRIMARY", reachLabel(primaryUp))

    return result, nil
}

func (p *InternetProbe) reachable(ctx context.Context, url string) bool {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
    if err != nil {
        return false
    }
    resp, err := p.client.Do(req)
    if err != nil {
        return false
    }
    resp.Body.Close()
    return resp.StatusCode < 500
}

func reachLabel(up bool) string {
    if up {
        return "reachable"
    }
    return "unreachable"
}
