// internal/diag/registry.go
package diag

import (
    "fmt"
    "sync"

    "github.com/sirupsen/logrus"
)

// Registry holds every known check with its probe implementation. Iteration
// order is registration order; ListEnabled snapshots are what the
// orchestrator runs against, so enable/disable toggles only affect the next
// pass, never one already in flight.
type Registry struct {
    mu     sync.RWMutex
    order  []string
    defs   map[string]*CheckDefinition
    probes map[string]Probe
}

func NewRegistry() *Registry {
    return &Registry{
        defs:   make(map[string]*CheckDefinition),
        probes: make(map[string]Probe),
    }
}

// Register adds a check. Duplicate IDs are a programming error.
func (r *Registry) Register(def CheckDefinition, probe Probe) error {
    r.mu.Lock()
    defer r.mu.Unlock()

    if def.ID == "" {
        return fmt.Errorf("check definition missing id")
    }
    if _, exists := r.defs[def.ID]; exists {
        return fmt.Errorf("check %q already registered", def.ID)
    }
    if probe == nil {
        return fmt.Errorf("check %q registered without probe", def.ID)
    }

    d := def
    r.order = append(r.order, def.ID)
    r.defs[def.ID] = &d
    r.probes[def.ID] = probe

    logrus.WithFields(logrus.Fields{
        "check":    def.ID,
        "category": def.Category,
        "enabled":  def.Enabled,
    }).Debug("Registered check")

    return nil
}

// List returns every definition in registration order.
func (r *Registry) List() []CheckDefinition {
    r.mu.RLock()
    defer r.mu.RUnlock()

    out := make([]CheckDefinition, 0, len(r.order))
    for _, id := range r.order {
        out = append(out, *r.defs[id])
    }
    return out
}

// ListEnabled returns the enabled definitions in registration order. The
// returned slice is a copy; it stays valid as the registry mutates.
func (r *Registry) ListEnabled() []CheckDefinition {
    r.mu.RLock()
    defer r.mu.RUnlock()

    out := make([]CheckDefinition, 0, len(r.order))
    for _, id := range r.order {
        if r.defs[id].Enabled {
            out = append(out, *r.defs[id])
        }
    }
    return out
}

// SetEnabled toggles a check. Unknown IDs are a configuration error and
// leave the registry untouched. Idempotent; takes effect on the next pass.
func (r *Registry) SetEnabled(id string, enabled bool) error {
    r.mu.Lock()
    defer r.mu.Unlock()

    def, ok := r.defs[id]
    if !ok {
        return fmt.Errorf("unknown check id %q", id)
    }
    if def.Enabled != enabled {
        def.Enabled = enabled
        logrus.WithFields(logrus.Fields{
            "check":   id,
            "enabled": enabled,
        }).Info("Check toggled")
    }
    return nil
}

// Probe returns the probe registered for id, or nil.
func (r *Registry) Probe(id string) Probe {
    r.mu.RLock()
    defer r.mu.RUnlock()
    return r.probes[id]
}
