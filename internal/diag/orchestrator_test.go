// internal/diag/orchestrator_test.go
package diag

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func statusProbe(status Status, headline string) Probe {
    return ProbeFunc(func(ctx context.Context) (*CheckResult, error) {
        return &CheckResult{Status: status, Headline: headline}, nil
    })
}

// collectPasses runs Trigger and waits for the published pass.
func runPass(t *testing.T, o *Orchestrator) *DiagnosticPass {
    t.Helper()
    sealed := make(chan *DiagnosticPass, 1)
    o.Trigger(context.Background(), func(pass *DiagnosticPass) {
        sealed <- pass
    })
    select {
    case pass := <-sealed:
        return pass
    case <-time.After(5 * time.Second):
        t.Fatal("pass did not publish in time")
        return nil
    }
}

func TestOverallIsMaxOfResults(t *testing.T) {
    registry := NewRegistry()
    require.NoError(t, registry.Register(
        CheckDefinition{ID: "a", Category: CategorySystem, DisplayName: "A", Enabled: true},
        statusProbe(StatusOK, "FINE")))
    require.NoError(t, registry.Register(
        CheckDefinition{ID: "b", Category: CategoryNetwork, DisplayName: "B", Enabled: true},
        statusProbe(StatusWarning, "SLOW")))
    require.NoError(t, registry.Register(
        CheckDefinition{ID: "c", Category: CategoryAPIProvider, DisplayName: "C", Enabled: true},
        statusProbe(StatusCritical, "DOWN")))

    pass := runPass(t, NewOrchestrator(registry, time.Second))

    require.Len(t, pass.Results, 3)
    assert.Equal(t, StatusCritical, pass.Overall)

    // One WARNING and nothing worse caps the pass at WARNING.
    require.NoError(t, registry.SetEnabled("c", false))
    pass = runPass(t, NewOrchestrator(registry, time.Second))
    assert.Equal(t, StatusWarning, pass.Overall)
}

func TestEmptyEnabledSetYieldsUnknown(t *testing.T) {
    registry := NewRegistry()
    require.NoError(t, registry.Register(
        CheckDefinition{ID: "a", Category: CategorySystem, DisplayName: "A", Enabled: false},
        statusProbe(StatusOK, "FINE")))

    pass := runPass(t, NewOrchestrator(registry, time.Second))

    assert.Empty(t, pass.Results)
    assert.Equal(t, StatusUnknown, pass.Overall)
}

func TestResultsFollowRegistryOrder(t *testing.T) {
    // The middle probe finishes last; its slot must still be the middle one.
    release := make(chan struct{})
    registry := NewRegistry()
    require.NoError(t, registry.Register(
        CheckDefinition{ID: "first", Category: CategorySystem, DisplayName: "First", Enabled: true},
        statusProbe(StatusOK, "FAST")))
    require.NoError(t, registry.Register(
        CheckDefinition{ID: "second", Category: CategoryNetwork, DisplayName: "Second", Enabled: true},
        ProbeFunc(func(ctx context.Context) (*CheckResult, error) {
            select {
            case <-release:
            case <-ctx.Done():
            }
            return &CheckResult{Status: StatusOK, Headline: "SLOW"}, nil
        })))
    require.NoError(t, registry.Register(
        CheckDefinition{ID: "third", Category: CategoryProcess, DisplayName: "Third", Enabled: true},
        statusProbe(StatusOK, "FAST")))

    sealed := make(chan *DiagnosticPass, 1)
    o := NewOrchestrator(registry, time.Second)
    o.Trigger(context.Background(), func(pass *DiagnosticPass) {
        sealed <- pass
    })
    time.Sleep(50 * time.Millisecond)
    close(release)

    pass := <-sealed
    require.Len(t, pass.Results, 3)
    assert.Equal(t, "first", pass.Results[0].CheckID)
    assert.Equal(t, "second", pass.Results[1].CheckID)
    assert.Equal(t, "third", pass.Results[2].CheckID)
}

func TestHungProbeFilledWithinRunDeadline(t *testing.T) {
    registry := NewRegistry()
    require.NoError(t, registry.Register(
        CheckDefinition{ID: "ok", Category: CategorySystem, DisplayName: "OK", Enabled: true},
        statusProbe(StatusOK, "FINE")))
    require.NoError(t, registry.Register(
        CheckDefinition{ID: "stuck", Category: CategoryNetwork, DisplayName: "Stuck", Enabled: true},
        ProbeFunc(func(ctx context.Context) (*CheckResult, error) {
            // Ignores its context entirely.
            <-make(chan struct{})
            return nil, nil
        })))

    o := NewOrchestrator(registry, 100*time.Millisecond)

    start := time.Now()
    pass := runPass(t, o)
    elapsed := time.Since(start)

    // Sealed no later than the run deadline plus scheduling slack.
    assert.Less(t, elapsed, time.Second)

    require.Len(t, pass.Results, 2)
    assert.Equal(t, StatusOK, pass.Results[0].Status)
    assert.Equal(t, StatusUnknown, pass.Results[1].Status)
    assert.Equal(t, "TIMED_OUT", pass.Results[1].Headline)
    assert.Equal(t, "timed out", pass.Results[1].Error)
    assert.Equal(t, StatusUnknown, pass.Overall)
}

func TestContextAwareProbeTimesOutAsUnavailable(t *testing.T) {
    registry := NewRegistry()
    require.NoError(t, registry.Register(
        CheckDefinition{ID: "slow", Category: CategoryNetwork, DisplayName: "Slow", Enabled: true},
        ProbeFunc(func(ctx context.Context) (*CheckResult, error) {
            <-ctx.Done()
            return nil, ctx.Err()
        })))

    pass := runPass(t, NewOrchestrator(registry, 50*time.Millisecond))

    require.Len(t, pass.Results, 1)
    assert.Equal(t, StatusUnknown, pass.Results[0].Status)
    assert.Equal(t, "UNAVAILABLE", pass.Results[0].Headline)
}

func TestProbeErrorAbsorbedAsUnknown(t *testing.T) {
    registry := NewRegistry()
    require.NoError(t, registry.Register(
        CheckDefinition{ID: "broken", Category: CategorySystem, DisplayName: "Broken", Enabled: true},
        ProbeFunc(func(ctx context.Context) (*CheckResult, error) {
            return nil, errors.New("probe exploded")
        })))

    pass := runPass(t, NewOrchestrator(registry, time.Second))

    require.Len(t, pass.Results, 1)
    assert.Equal(t, StatusUnknown, pass.Results[0].Status)
    assert.Equal(t, "UNAVAILABLE", pass.Results[0].Headline)
    assert.Equal(t, "probe exploded", pass.Results[0].Error)
}

func TestProbePanicAbsorbedAsUnknown(t *testing.T) {
    registry := NewRegistry()
    require.NoError(t, registry.Register(
        CheckDefinition{ID: "panicky", Category: CategorySystem, DisplayName: "Panicky", Enabled: true},
        ProbeFunc(func(ctx context.Context) (*CheckResult, error) {
            panic("boom")
        })))

    pass := runPass(t, NewOrchestrator(registry, time.Second))

    require.Len(t, pass.Results, 1)
    assert.Equal(t, StatusUnknown, pass.Results[0].Status)
}

func TestPreemptionPublishesOnlyNewerPass(t *testing.T) {
    started := make(chan struct{}, 1)
    registry := NewRegistry()
    require.NoError(t, registry.Register(
        CheckDefinition{ID: "net", Category: CategoryNetwork, DisplayName: "Net", Enabled: true},
        ProbeFunc(func(ctx context.Context) (*CheckResult, error) {
            select {
            case started <- struct{}{}:
            default:
            }
            select {
            case <-ctx.Done():
                // First run parks here until preempted.
            case <-time.After(10 * time.Millisecond):
            }
            return &CheckResult{Status: StatusOK, Headline: "ONLINE"}, nil
        })))

    o := NewOrchestrator(registry, 5*time.Second)

    var (
        mu        sync.Mutex
        published []*DiagnosticPass
    )
    publish := func(pass *DiagnosticPass) {
        mu.Lock()
        published = append(published, pass)
        mu.Unlock()
    }

    o.Trigger(context.Background(), publish)
    <-started
    o.Trigger(context.Background(), publish)

    require.Eventually(t, func() bool {
        mu.Lock()
        defer mu.Unlock()
        return len(published) >= 1
    }, 5*time.Second, 10*time.Millisecond)

    // Give a discarded first pass every chance to surface before asserting.
    time.Sleep(200 * time.Millisecond)

    mu.Lock()
    defer mu.Unlock()
    require.Len(t, published, 1)
    assert.Equal(t, StatusOK, published[0].Overall)
}

func TestPassesPublishInRunStartOrder(t *testing.T) {
    registry := NewRegistry()
    require.NoError(t, registry.Register(
        CheckDefinition{ID: "quick", Category: CategorySystem, DisplayName: "Quick", Enabled: true},
        statusProbe(StatusOK, "FINE")))

    o := NewOrchestrator(registry, time.Second)

    var (
        mu        sync.Mutex
        published []*DiagnosticPass
    )
    publish := func(pass *DiagnosticPass) {
        mu.Lock()
        published = append(published, pass)
        mu.Unlock()
    }

    var wg sync.WaitGroup
    for w := 0; w < 4; w++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            for i := 0; i < 25; i++ {
                o.Trigger(context.Background(), publish)
            }
        }()
    }
    wg.Wait()

    // Let the last run seal and publish.
    time.Sleep(300 * time.Millisecond)

    mu.Lock()
    defer mu.Unlock()
    require.NotEmpty(t, published)

    // An older pass must never publish after a newer one: publish order is
    // run start order, so sealed StartedAt values are non-decreasing.
    for i := 1; i < len(published); i++ {
        assert.False(t, published[i].StartedAt.Before(published[i-1].StartedAt),
            "pass %d started before pass %d but published after it", i, i-1)
    }

    seen := make(map[string]bool, len(published))
    for _, pass := range published {
        assert.False(t, seen[pass.ID], "pass %s published twice", pass.ID)
        seen[pass.ID] = true
    }
}
