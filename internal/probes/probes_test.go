// internal/probes/probes_test.go
package probes

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestBuildRegistryDefaults(t *testing.T) {
    registry, err := BuildRegistry(nil)
    require.NoError(t, err)

    all := registry.List()
    require.Len(t, all, 8)

    // Canonical order.
    ids := make([]string, len(all))
    for i, def := range all {
        ids[i] = def.ID
    }
    assert.Equal(t, []string{
        CheckLocalResources, CheckInternet, CheckVPN,
        CheckClaudeAPI, CheckOpenAIAPI, CheckGoogleAPI,
        CheckOpenCode, CheckTerminals,
    }, ids)

    enabled := registry.ListEnabled()
    require.Len(t, enabled, 4)
    assert.Equal(t, CheckLocalResources, enabled[0].ID)
    assert.Equal(t, CheckInternet, enabled[1].ID)
    assert.Equal(t, CheckClaudeAPI, enabled[2].ID)
    assert.Equal(t, CheckOpenCode, enabled[3].ID)
}

func TestBuildRegistryOverrides(t *testing.T) {
    registry, err := BuildRegistry(map[string]bool{
        CheckVPN:      true,
        CheckInternet: false,
    })
    require.NoError(t, err)

    ids := make(map[string]bool)
    for _, def := range registry.ListEnabled() {
        ids[def.ID] = true
    }
    assert.True(t, ids[CheckVPN])
    assert.False(t, ids[CheckInternet])
}

func TestBuildRegistryRejectsUnknownOverride(t *testing.T) {
    _, err := BuildRegistry(map[string]bool{"gpu": true})
    require.Error(t, err)
    assert.Contains(t, err.Error(), "unknown check id")
}
