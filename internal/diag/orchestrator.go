// internal/diag/orchestrator.go - concurrent pass execution with preemption
package diag

import (
    "context"
    "time"

    "github.com/google/uuid"
    "github.com/sirupsen/logrus"
)

const (
    DefaultProbeTimeout = 10 * time.Second
    // Run deadline bounds the whole fan-out even if every probe misbehaves.
    runDeadlineFactor = 2
)

// Orchestrator runs one diagnostic pass at a time. Triggering while a pass
// is in flight preempts it: the old run is cancelled and its pass is
// discarded unseen, so consumers only ever observe whole passes in start
// order.
type Orchestrator struct {
    registry     *Registry
    probeTimeout time.Duration
    runDeadline  time.Duration

    mu     chan struct{} // exclusive run-slot bookkeeping
    gen    uint64
    cancel context.CancelFunc
}

func NewOrchestrator(registry *Registry, probeTimeout time.Duration) *Orchestrator {
    if probeTimeout <= 0 {
        probeTimeout = DefaultProbeTimeout
    }
    o := &Orchestrator{
        registry:     registry,
        probeTimeout: probeTimeout,
        runDeadline:  probeTimeout * runDeadlineFactor,
        mu:           make(chan struct{}, 1),
    }
    o.mu <- struct{}{}
    return o
}

// Trigger starts a new pass, preempting any pass already in flight. The
// sealed pass is handed to publish on the run's own goroutine; a preempted
// run never publishes. Publish calls hold the run-slot, so they happen in
// run start order and never overlap a Trigger.
func (o *Orchestrator) Trigger(parent context.Context, publish func(*DiagnosticPass)) {
    <-o.mu
    if o.cancel != nil {
        // Cancel the in-flight run. We do not wait for it: its publish is
        // gated on the generation counter, so it just drains and exits.
        o.cancel()
        logrus.Debug("Preempting in-flight diagnostic pass")
    }
    o.gen++
    gen := o.gen
    ctx, cancel := context.WithCancel(parent)
    o.cancel = cancel
    o.mu <- struct{}{}

    go func() {
        defer cancel()
        pass := o.execute(ctx)

        // The run-slot is held across both the generation check and the
        // publish call: a newer Trigger cannot slip in between them, so
        // passes always publish in the order their runs started.
        <-o.mu
        if gen != o.gen {
            o.mu <- struct{}{}
            logrus.WithField("pass", pass.ID).Debug("Discarding preempted pass")
            return
        }
        o.cancel = nil
        publish(pass)
        o.mu <- struct{}{}
    }()
}

// execute snapshots the enabled checks and fans out one goroutine per
// probe. Results come back in any order but are collected into registry
// order. Probes still outstanding when the run deadline (or a preemption)
// hits get an UNKNOWN "timed out" placeholder.
func (o *Orchestrator) execute(ctx context.Context) *DiagnosticPass {
    checks := o.registry.ListEnabled()

    pass := &DiagnosticPass{
        ID:        uuid.New().String(),
        StartedAt: time.Now(),
        Checks:    checks,
    }

    logrus.WithFields(logrus.Fields{
        "pass":   pass.ID,
        "checks": len(checks),
    }).Debug("Starting diagnostic pass")

    type slot struct {
        idx    int
        result *CheckResult
    }

    collected := make([]*CheckResult, len(checks))
    done := make(chan slot, len(checks))

    for i, def := range checks {
        go func(i int, def CheckDefinition) {
            probe := o.registry.Probe(def.ID)
            probeCtx, cancel := context.WithTimeout(ctx, o.probeTimeout)
            defer cancel()

            start := time.Now()
            result, err := safeExecute(probeCtx, probe)
            if err != nil || result == nil {
                result = &CheckResult{
                    Status:   StatusUnknown,
                    Headline: "UNAVAILABLE",
                }
                if err != nil {
                    result.Error = err.Error()
                }
            }
            result.CheckID = def.ID
            result.Latency = time.Since(start)
            if result.Timestamp.IsZero() {
                result.Timestamp = time.Now()
            }
            done <- slot{idx: i, result: result}
        }(i, def)
    }

    deadline := time.NewTimer(o.runDeadline)
    defer deadline.Stop()

    remaining := len(checks)
collect:
    for remaining > 0 {
        select {
        case s := <-done:
            collected[s.idx] = s.result
            remaining--
        case <-deadline.C:
            logrus.WithField("outstanding", remaining).Warn("Run deadline reached, abandoning outstanding probes")
            break collect
        case <-ctx.Done():
            break collect
        }
    }

    pass.FinishedAt = time.Now()
    pass.Results = make([]CheckResult, len(checks))
    pass.Overall = StatusUnknown

    overall := StatusOK
    for i, def := range checks {
        if collected[i] == nil {
            collected[i] = &CheckResult{
                CheckID:   def.ID,
                Status:    StatusUnknown,
                Headline:  "TIMED_OUT",
                Timestamp: pass.FinishedAt,
                Latency:   o.runDeadline,
                Error:     "timed out",
            }
        }
        pass.Results[i] = *collected[i]
        overall = maxStatus(overall, collected[i].Status)
    }
    if len(checks) > 0 {
        pass.Overall = overall
    }

    logrus.WithFields(logrus.Fields{
        "pass":     pass.ID,
        "overall":  pass.Overall.String(),
        "duration": pass.FinishedAt.Sub(pass.StartedAt),
    }).Debug("Sealed diagnostic pass")

    return pass
}
