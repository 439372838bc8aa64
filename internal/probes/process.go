// internal/probes/process.go - local process presence probes over procfs
package probes

import (
    "context"
    "fmt"
    "strings"

    "github.com/prometheus/procfs"
    "aidiag/internal/diag"
)

// ProcessProbe looks for a named local process. Absence is OK (presence
// check policy): the tool diagnoses the chain, a client that simply is not
// running is information, not a fault. High memory use warns.
type ProcessProbe struct {
    name      string
    warnMemMB uint64
    procs     func() (procfs.Procs, error)
}

func NewProcessProbe(name string, warnMemMB uint64) *ProcessProbe {
    return &ProcessProbe{
        name:      name,
        warnMemMB: warnMemMB,
        procs:     procfs.AllProcs,
    }
}

func (p *ProcessProbe) Execute(ctx context.Context) (*diag.CheckResult, error) {
    procs, err := p.procs()
    if err != nil {
        return nil, fmt.Errorf("failed to list processes: %w", err)
    }

    var (
        firstPID  int
        instances int
        totalRSS  uint64
    )

    for _, proc := range procs {
        if ctx.Err() != nil {
            return unavailable("process scan interrupted"), nil
        }
        if !p.matches(proc) {
            continue
        }
        instances++
        if firstPID == 0 {
            firstPID = proc.PID
        }
        if stat, err := proc.Stat(); err == nil {
            totalRSS += uint64(stat.ResidentMemory())
        }
    }

    result := &diag.CheckResult{}

    if instances == 0 {
        result.Status = diag.StatusOK
        result.Headline = "NOT_DETECTED"
        result.AddDetail("PROCESS", p.name)
        result.AddDetail("STATE", "not running")
        return result, nil
    }

    memMB := totalRSS / (1024 * 1024)

    result.Status = diag.StatusOK
    result.Headline = "RUNNING"
    if memMB > p.warnMemMB {
        result.Status = diag.StatusWarning
        result.Headline = "HIGH_MEMORY"
    }

    result.AddDetail("PID", fmt.Sprintf("%d", firstPID))
    result.AddDetail("MEM", fmt.Sprintf("%dMB", memMB))
    if instances > 1 {
        result.AddDetail("INSTANCES", fmt.Sprintf("%d", instances))
    }

    return result, nil
}

func (p *ProcessProbe) matches(proc procfs.Proc) bool {
    if comm, err := proc.Comm(); err == nil {
        if strings.Contains(strings.ToLower(comm), p.name) {
            return true
        }
    }
    if cmdline, err := proc.CmdLine(); err == nil && len(cmdline) > 0 {
        if strings.Contains(strings.ToLower(cmdline[0]), p.name) {
            return true
        }
    }
    return false
}

var terminalNames = []string{
    "gnome-terminal", "konsole", "xterm", "alacritty", "kitty",
    "terminator", "wezterm", "tmux",
}

// TerminalsProbe counts terminal emulator processes. Many open terminals
// can mean many concurrent agents chewing the same API quota.
type TerminalsProbe struct {
    warnCount int
    procs     func() (procfs.Procs, error)
}

func NewTerminalsProbe(warnCount int) *TerminalsProbe {
    return &TerminalsProbe{
        warnCount: warnCount,
        procs:     procfs.AllProcs,
    }
}

func (p *TerminalsProbe) Execute(ctx context.Context) (*diag.CheckResult, error) {
    procs, err := p.procs()
    if err != nil {
        return nil, fmt.Errorf("failed to list processes: %w", err)
    }

    counts := make(map[string]int)
    var totalRSS uint64

    for _, proc := range procs {
        if ctx.Err() != nil {
            return unavailable("process scan interrupted"), nil
        }
        comm, err := proc.Comm()
        if err != nil {
            continue
        }
        name := strings.ToLower(comm)
        for _, terminal := range terminalNames {
            if strings.Contains(name, terminal) {
                counts[terminal]++
                if stat, err := proc.Stat(); err == nil {
                    totalRSS += uint64(stat.ResidentMemory())
                }
                break
            }
        }
    }

    total := 0
    var parts []string
    for _, terminal := range terminalNames {
        if n := counts[terminal]; n > 0 {
            total += n
            parts = append(parts, fmt.Sprintf("%s:%d", terminal, n))
        }
    }

    result := &diag.CheckResult{}

    if total == 0 {
        result.Status = diag.StatusOK
        result.Headline = "NOT_DETECTED"
        result.AddDetail("TERMINALS", "none")
        return result, nil
    }

    result.Status = diag.StatusOK
    result.Headline = "RUNNING"
    if total > p.warnCount {
        result.Status = diag.StatusWarning
        result.Headline = "MANY_TERMINALS"
    }

    result.AddDetail("TERMINALS", strings.Join(parts, " "))
    result.AddDetail("MEM", fmt.Sprintf("%dMB", totalRSS/(1024*1024)))

    return result, nil
}
