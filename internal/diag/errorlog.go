// internal/diag/errorlog.go - deduplicated failure history
package diag

import (
    "sort"
    "sync"
)

// ErrorLog folds published passes into one live entry per failing check.
// A non-OK result opens or extends the check's entry; an OK result removes
// it. Memory stays bounded by the number of registered checks regardless of
// how many passes run. A check missing from a pass (toggled off) keeps its
// entry until it next reports OK.
type ErrorLog struct {
    mu      sync.Mutex
    entries map[string]*ErrorLogEntry
}

func NewErrorLog() *ErrorLog {
    return &ErrorLog{
        entries: make(map[string]*ErrorLogEntry),
    }
}

// Apply folds one sealed pass into the log. Callers serialize Apply with
// pass publication order.
func (l *ErrorLog) Apply(pass *DiagnosticPass) {
    l.mu.Lock()
    defer l.mu.Unlock()

    for i := range pass.Results {
        result := &pass.Results[i]

        if result.Status == StatusOK {
            delete(l.entries, result.CheckID)
            continue
        }

        message := result.Headline
        if result.Error != "" {
            message = result.Error
        }

        entry, exists := l.entries[result.CheckID]
        if !exists {
            l.entries[result.CheckID] = &ErrorLogEntry{
                CheckID:     result.CheckID,
                Status:      result.Status,
                LastMessage: message,
                FirstSeen:   result.Timestamp,
                LastSeen:    result.Timestamp,
                Occurrences: 1,
            }
            continue
        }

        entry.Status = result.Status
        entry.LastMessage = message
        entry.LastSeen = result.Timestamp
        entry.Occurrences++
    }
}

// Entries returns the live entries ordered by last-seen descending, ties
// broken by check ID for stable output.
func (l *ErrorLog) Entries() []ErrorLogEntry {
    l.mu.Lock()
    defer l.mu.Unlock()

    out := make([]ErrorLogEntry, 0, len(l.entries))
    for _, entry := range l.entries {
        out = append(out, *entry)
    }
    sort.Slice(out, func(i, j int) bool {
        if !out[i].LastSeen.Equal(out[j].LastSeen) {
            return out[i].LastSeen.After(out[j].LastSeen)
        }
        return out[i].CheckID < out[j].CheckID
    })
    return out
}

// Len returns the number of live entries.
func (l *ErrorLog) Len() int {
    l.mu.Lock()
    defer l.mu.Unlock()
    return len(l.entries)
}

// Clear drops every entry.
func (l *ErrorLog) Clear() {
    l.mu.Lock()
    defer l.mu.Unlock()
    l.entries = make(map[string]*ErrorLogEntry)
}
