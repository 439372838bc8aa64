// internal/diag/probe.go
package diag

import (
    "context"
    "fmt"
)

// Probe is a single unit of diagnostic work. Execute must honor ctx (the
// orchestrator passes one bounded by the per-probe timeout) and must map
// timeouts and transport failures into the returned result's Status rather
// than blocking past the deadline. A returned error means the probe could
// not run at all; the orchestrator absorbs it into an UNKNOWN result, it
// never aborts the pass.
type Probe interface {
    Execute(ctx context.Context) (*CheckResult, error)
}

// ProbeFunc adapts a plain function to the Probe interface.
type ProbeFunc func(ctx context.Context) (*CheckResult, error)

func (f ProbeFunc) Execute(ctx context.Context) (*CheckResult, error) {
    return f(ctx)
}

// safeExecute runs a probe, converting panics into errors so a misbehaving
// probe cannot take the whole pass down.
func safeExecute(ctx context.Context, p Probe) (result *CheckResult, err error) {
    defer func() {
        if r := recover(); r != nil {
            result = nil
            err = fmt.Errorf("probe panicked: %v", r)
        }
    }()
    return p.Execute(ctx)
}
