// internal/diag/report.go - deterministic text rendering of a sealed pass
package diag

import (
    "fmt"
    "strings"
)

const (
    reportHeader    = "=== AI Stack Diagnostics Report ==="
    reportTimeFmt   = "2006-01-02 15:04:05"
    reportClockFmt  = "15:04"
    detailSeparator = " :: "
    allClearLine    = "All systems operational."
)

// RenderReport renders one sealed pass as text. Output is a pure function
// of the pass: no wall-clock reads, so rendering the same pass twice yields
// byte-identical text.
func RenderReport(pass *DiagnosticPass) string {
    var b strings.Builder

    b.WriteString(reportHeader)
    b.WriteByte('\n')
    fmt.Fprintf(&b, "Time: %s\n\n", pass.FinishedAt.Format(reportTimeFmt))

    for i := range pass.Results {
        result := &pass.Results[i]
        fmt.Fprintf(&b, "%s %s\n", result.Status.Glyph(), displayName(pass, result.CheckID))

        if len(result.Detail) > 0 {
            pairs := make([]string, 0, len(result.Detail))
            for _, field := range result.Detail {
                pairs = append(pairs, fmt.Sprintf("%s: %s", field.Key, field.Value))
            }
            fmt.Fprintf(&b, "     %s\n", strings.Join(pairs, detailSeparator))
        }
        if result.Error != "" {
            fmt.Fprintf(&b, "     Message: %q\n", result.Error)
        }
        b.WriteByte('\n')
    }

    fmt.Fprintf(&b, "DIAGNOSIS: %s\n", Diagnosis(pass))
    return b.String()
}

// RenderReportWithLog appends the error log section to the standard report.
// Entry timestamps come from the entries themselves, keeping the rendering
// reproducible.
func RenderReportWithLog(pass *DiagnosticPass, entries []ErrorLogEntry) string {
    report := RenderReport(pass)
    if len(entries) == 0 {
        return report
    }

    var b strings.Builder
    b.WriteString(report)
    b.WriteString("\nERROR LOG:\n")
    for _, entry := range entries {
        fmt.Fprintf(&b, "  %s%s%s%s%dx%sfirst %s last %s%s%s\n",
            entry.CheckID, detailSeparator,
            entry.Status.String(), detailSeparator,
            entry.Occurrences, detailSeparator,
            entry.FirstSeen.Format(reportClockFmt),
            entry.LastSeen.Format(reportClockFmt),
            detailSeparator, entry.LastMessage)
    }
    return b.String()
}

// Diagnosis derives the single verdict line: the headline of the highest
// severity non-OK result, first in registry order on ties.
func Diagnosis(pass *DiagnosticPass) string {
    if pass.Overall == StatusOK {
        return allClearLine
    }

    var culprit *CheckResult
    for i := range pass.Results {
        if pass.Results[i].Status == pass.Overall {
            culprit = &pass.Results[i]
            break
        }
    }
    if culprit == nil {
        // Empty enabled set seals as UNKNOWN with no results.
        return "No checks enabled."
    }

    line := fmt.Sprintf("%s: %s", displayName(pass, culprit.CheckID), culprit.Headline)
    if culprit.Error != "" {
        line += fmt.Sprintf(" (%s)", culprit.Error)
    }
    return line
}

func displayName(pass *DiagnosticPass, checkID string) string {
    for i := range pass.Checks {
        if pass.Checks[i].ID == checkID {
            return pass.Checks[i].DisplayName
        }
    }
    return checkID
}
