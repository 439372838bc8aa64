// internal/metrics/prometheus.go
package metrics

import (
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
    "aidiag/internal/diag"
)

// Prometheus metrics
var (
    ProbeDuration = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "aidiag_probe_duration_seconds",
            Help:    "Time spent executing probes",
            Buckets: prometheus.DefBuckets,
        },
        []string{"check", "status"},
    )

    ChecksTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "aidiag_checks_total",
            Help: "Total number of check results produced",
        },
        []string{"check", "status"},
    )

    CheckStatus = promauto.NewGaugeVec(
        prometheus.GaugeOpts{
            Name: "aidiag_check_status",
            Help: "Current status per check (0=OK, 1=Unknown, 2=Warning, 3=Critical)",
        },
        []string{"check", "category"},
    )

    PassesTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "aidiag_passes_total",
            Help: "Total number of sealed diagnostic passes",
        },
        []string{"overall"},
    )

    PassDuration = promauto.NewHistogram(
        prometheus.HistogramOpts{
            Name:    "aidiag_pass_duration_seconds",
            Help:    "Wall-clock time of a full diagnostic pass",
            Buckets: prometheus.DefBuckets,
        },
    )

    ErrorLogEntries = promauto.NewGauge(
        prometheus.GaugeOpts{
            Name: "aidiag_error_log_entries",
            Help: "Number of live deduplicated error log entries",
        },
    )

    WebSocketConnections = promauto.NewGauge(
        prometheus.GaugeOpts{
            Name: "aidiag_websocket_connections_active",
            Help: "Number of active WebSocket connections",
        },
    )
)

type Collector struct{}

func NewCollector() *Collector {
    return &Collector{}
}

// RecordPass updates every pass-level and per-check metric from a sealed
// pass.
func (c *Collector) RecordPass(pass *diag.DiagnosticPass) {
    PassesTotal.WithLabelValues(statusLabel(pass.Overall)).Inc()
    PassDuration.Observe(pass.FinishedAt.Sub(pass.StartedAt).Seconds())

    categories := make(map[string]diag.Category, len(pass.Checks))
    for _, def := range pass.Checks {
        categories[def.ID] = def.Category
    }

    for i := range pass.Results {
        result := &pass.Results[i]
        label := statusLabel(result.Status)
        ChecksTotal.WithLabelValues(result.CheckID, label).Inc()
        ProbeDuration.WithLabelValues(result.CheckID, label).Observe(result.Latency.Seconds())
        CheckStatus.WithLabelValues(result.CheckID, string(categories[result.CheckID])).Set(float64(result.Status))
    }
}

func (c *Collector) SetErrorLogSize(n int) {
    ErrorLogEntries.Set(float64(n))
}

func (c *Collector) RecordWebSocketConnection(delta int) {
    WebSocketConnections.Add(float64(delta))
}

func statusLabel(status diag.Status) string {
    switch status {
    case diag.StatusOK:
        return "ok"
    case diag.StatusWarning:
        return "warning"
    case diag.StatusCritical:
        return "critical"
    default:
        return "unknown"
    }
}
