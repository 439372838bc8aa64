// internal/diag/engine.go - facade tying registry, orchestrator, error log
// and scheduler together for the presentation layer
package diag

import (
    "context"
    "sync"
    "time"

    "github.com/sirupsen/logrus"
)

// PassSink receives every sealed pass after the engine's own state has been
// updated. Sinks run on the publishing goroutine, serialized in publication
// order.
type PassSink func(*DiagnosticPass)

// Engine owns the last-pass cell and wires the core components together.
// It is the single writer of pass state; readers get immutable snapshots.
type Engine struct {
    registry     *Registry
    orchestrator *Orchestrator
    errorLog     *ErrorLog
    scheduler    *Scheduler

    publishMu sync.Mutex
    sinks     []PassSink

    cellMu  sync.RWMutex
    last    *DiagnosticPass
    version uint64

    ctx     context.Context
    startMu sync.Mutex
    started bool
}

func NewEngine(registry *Registry, probeTimeout, refreshInterval time.Duration) *Engine {
    e := &Engine{
        registry:     registry,
        orchestrator: NewOrchestrator(registry, probeTimeout),
        errorLog:     NewErrorLog(),
    }
    e.scheduler = NewScheduler(refreshInterval, e.RunNow)
    return e
}

// AddSink registers a consumer of sealed passes. Must be called before
// Start.
func (e *Engine) AddSink(sink PassSink) {
    e.sinks = append(e.sinks, sink)
}

// Start launches the scheduler. The engine stops when ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
    e.startMu.Lock()
    defer e.startMu.Unlock()

    if e.started {
        return
    }
    e.started = true
    e.ctx = ctx

    logrus.Info("Starting diagnostic engine")
    e.scheduler.Start(ctx)
}

// RunNow triggers a pass immediately, preempting any pass in flight.
func (e *Engine) RunNow() {
    e.startMu.Lock()
    ctx := e.ctx
    e.startMu.Unlock()
    if ctx == nil {
        ctx = context.Background()
    }
    e.scheduler.MarkRun()
    e.orchestrator.Trigger(ctx, e.publish)
}

// publish is the single point where a sealed pass becomes visible: error
// log first, then the last-pass cell, then the sinks. Serialized so
// concurrent publications cannot interleave.
func (e *Engine) publish(pass *DiagnosticPass) {
    e.publishMu.Lock()
    defer e.publishMu.Unlock()

    e.errorLog.Apply(pass)

    e.cellMu.Lock()
    e.last = pass
    e.version++
    e.cellMu.Unlock()

    logrus.WithFields(logrus.Fields{
        "pass":    pass.ID,
        "overall": pass.Overall.String(),
        "errors":  e.errorLog.Len(),
    }).Info("Published diagnostic pass")

    for _, sink := range e.sinks {
        sink(pass)
    }
}

// CurrentPass returns the last sealed pass, or nil before the first run.
func (e *Engine) CurrentPass() *DiagnosticPass {
    e.cellMu.RLock()
    defer e.cellMu.RUnlock()
    return e.last
}

// PassVersion increments with every publication; cheap change detection for
// polling readers.
func (e *Engine) PassVersion() uint64 {
    e.cellMu.RLock()
    defer e.cellMu.RUnlock()
    return e.version
}

// RestoreLastPass seeds the last-pass cell, typically from the store on
// startup. It does not feed the error log: entries describe the current
// process lifetime.
func (e *Engine) RestoreLastPass(pass *DiagnosticPass) {
    if pass == nil {
        return
    }
    e.cellMu.Lock()
    if e.last == nil {
        e.last = pass
        e.version++
    }
    e.cellMu.Unlock()
}

// ErrorLogEntries returns the live error log, last-seen descending.
func (e *Engine) ErrorLogEntries() []ErrorLogEntry {
    return e.errorLog.Entries()
}

// RenderReport renders a pass; with includeLog it appends the error log
// section.
func (e *Engine) RenderReport(pass *DiagnosticPass, includeLog bool) string {
    if includeLog {
        return RenderReportWithLog(pass, e.errorLog.Entries())
    }
    return RenderReport(pass)
}

// SetCheckEnabled toggles a check for subsequent passes.
func (e *Engine) SetCheckEnabled(id string, enabled bool) error {
    return e.registry.SetEnabled(id, enabled)
}

// SetRefreshInterval changes the auto-refresh interval (0 disables).
func (e *Engine) SetRefreshInterval(d time.Duration) error {
    return e.scheduler.SetInterval(d)
}

// RefreshInterval returns the current auto-refresh interval.
func (e *Engine) RefreshInterval() time.Duration {
    return e.scheduler.Interval()
}

// Registry exposes check definitions to the presentation layer.
func (e *Engine) Registry() *Registry {
    return e.registry
}
