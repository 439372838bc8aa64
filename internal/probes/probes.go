// internal/probes/probes.go - built-in check set and registry assembly
package probes

import (
    "fmt"
    "net/http"
    "time"

    "github.com/sirupsen/logrus"
    "aidiag/internal/diag"
)

// Check IDs, stable across config files and the error log.
const (
    CheckLocalResources = "local_resources"
    CheckInternet       = "internet"
    CheckVPN            = "vpn"
    CheckClaudeAPI      = "claude_api"
    CheckOpenAIAPI      = "openai_api"
    CheckGoogleAPI      = "google_api"
    CheckOpenCode       = "opencode"
    CheckTerminals      = "terminals"
)

type builtin struct {
    def   diag.CheckDefinition
    probe diag.Probe
}

// BuildRegistry registers the built-in checks in their canonical order.
// overrides (from the settings file) flip the per-check enabled defaults; an
// override naming an unknown check is a configuration error and the whole
// load is rejected so the caller keeps its previous configuration.
func BuildRegistry(overrides map[string]bool) (*diag.Registry, error) {
    client := &http.Client{
        // The orchestrator bounds every probe by context; this is a backstop
        // for probes run outside it.
        Timeout: 30 * time.Second,
    }

    builtins := []builtin{
        {
            def:   diag.CheckDefinition{ID: CheckLocalResources, Category: diag.CategorySystem, DisplayName: "LOCAL RESOURCES", Enabled: true},
            probe: NewSystemProbe(),
        },
        {
            def:   diag.CheckDefinition{ID: CheckInternet, Category: diag.CategoryNetwork, DisplayName: "INTERNET", Enabled: true},
            probe: NewInternetProbe(client),
        },
        {
            def:   diag.CheckDefinition{ID: CheckVPN, Category: diag.CategoryNetwork, DisplayName: "VPN", Enabled: false},
            probe: NewVPNProbe(client),
        },
        {
            def:   diag.CheckDefinition{ID: CheckClaudeAPI, Category: diag.CategoryAPIProvider, DisplayName: "CLAUDE API", Enabled: true},
            probe: NewAPIProbe("api.anthropic.com", "https://api.anthropic.com", client),
        },
        {
            def:   diag.CheckDefinition{ID: CheckOpenAIAPI, Category: diag.CategoryAPIProvider, DisplayName: "OPENAI API", Enabled: false},
            probe: NewAPIProbe("api.openai.com", "https://api.openai.com/v1/models", client),
        },
        {
            def:   diag.CheckDefinition{ID: CheckGoogleAPI, Category: diag.CategoryAPIProvider, DisplayName: "GOOGLE AI", Enabled: false},
            probe: NewAPIProbe("generativelanguage.googleapis.com", "https://generativelanguage.googleapis.com/v1beta/models", client),
        },
        {
            def:   diag.CheckDefinition{ID: CheckOpenCode, Category: diag.CategoryProcess, DisplayName: "OPENCODE", Enabled: true},
            probe: NewProcessProbe("opencode", 2000),
        },
        {
            def:   diag.CheckDefinition{ID: CheckTerminals, Category: diag.CategoryProcess, DisplayName: "TERMINALS", Enabled: false},
            probe: NewTerminalsProbe(10),
        },
    }

    known := make(map[string]bool, len(builtins))
    for _, b := range builtins {
        known[b.def.ID] = true
    }
    for id := range overrides {
        if !known[id] {
            return nil, fmt.Errorf("unknown check id %q in settings", id)
        }
    }

    registry := diag.NewRegistry()
    for _, b := range builtins {
        if enabled, ok := overrides[b.def.ID]; ok {
            b.def.Enabled = enabled
        }
        if err := registry.Register(b.def, b.probe); err != nil {
            return nil, err
        }
    }

    logrus.WithField("checks", len(builtins)).Debug("Built check registry")
    return registry, nil
}
