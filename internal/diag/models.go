// internal/diag/models.go
package diag

import (
    "time"
)

// CheckDefinition is the registry's view of a check: identity, category and
// whether the next pass should include it. Definitions are never mutated
// while a pass is in flight; the orchestrator works from a snapshot.
type CheckDefinition struct {
    ID          string   `json:"id"`
    Category    Category `json:"category"`
    DisplayName string   `json:"display_name"`
    Enabled     bool     `json:"enabled"`
}

// Field is one KEY/VALUE pair of free-form probe detail. A slice keeps the
// insertion order, which a map would not.
type Field struct {
    Key   string `json:"key"`
    Value string `json:"value"`
}

// CheckResult is the outcome of a single probe invocation. Immutable once
// the orchestrator has collected it.
type CheckResult struct {
    CheckID   string        `json:"check_id"`
    Status    Status        `json:"status"`
    Headline  string        `json:"headline"`
    Detail    []Field       `json:"detail,omitempty"`
    Timestamp time.Time     `json:"timestamp"`
    Latency   time.Duration `json:"latency_ns"`
    Error     string        `json:"error,omitempty"`
}

// AddDetail appends a KEY/VALUE pair preserving insertion order.
func (r *CheckResult) AddDetail(key, value string) {
    r.Detail = append(r.Detail, Field{Key: key, Value: value})
}

// DiagnosticPass is one sealed diagnostic run: the checks that were enabled
// when it started, one result per check in registry order, and the
// aggregated overall status.
type DiagnosticPass struct {
    ID         string            `json:"id"`
    StartedAt  time.Time         `json:"started_at"`
    FinishedAt time.Time         `json:"finished_at"`
    Checks     []CheckDefinition `json:"checks"`
    Results    []CheckResult     `json:"results"`
    Overall    Status            `json:"overall_status"`
}

// ErrorLogEntry is one live grouped failure: a check that is currently
// non-OK, with first/last-seen timestamps and how many consecutive passes
// it has been failing.
type ErrorLogEntry struct {
    CheckID     string    `json:"check_id"`
    Status      Status    `json:"status"`
    LastMessage string    `json:"last_message"`
    FirstSeen   time.Time `json:"first_seen"`
    LastSeen    time.Time `json:"last_seen"`
    Occurrences int       `json:"occurrence_count"`
}
