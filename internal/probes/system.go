// internal/probes/system.go - CPU/RAM/disk probe over procfs
package probes

import (
    "context"
    "fmt"
    "time"

    "github.com/prometheus/procfs"
    "golang.org/x/sys/unix"
    "aidiag/internal/diag"
)

const cpuSampleGap = 200 * time.Millisecond

// SystemProbe reads local resource utilisation. CPU needs two /proc/stat
// samples a short interval apart; the gap honors the probe context.
type SystemProbe struct {
    procPath string
    diskPath string
}

func NewSystemProbe() *SystemProbe {
    return &SystemProbe{
        procPath: procfs.DefaultMountPoint,
        diskPath: "/",
    }
}

func (p *SystemProbe) Execute(ctx context.Context) (*diag.CheckResult, error) {
    fs, err := procfs.NewFS(p.procPath)
    if err != nil {
        return nil, fmt.Errorf("procfs unavailable: %w", err)
    }

    first, err := fs.Stat()
    if err != nil {
        return nil, fmt.Errorf("failed to read cpu stat: %w", err)
    }

    select {
    case <-ctx.Done():
        return unavailable("system probe interrupted"), nil
    case <-time.After(cpuSampleGap):
    }

    second, err := fs.Stat()
    if err != nil {
        return nil, fmt.Errorf("failed to read cpu stat: %w", err)
    }

    cpuPct := cpuPercent(first.CPUTotal, second.CPUTotal)

    meminfo, err := fs.Meminfo()
    if err != nil {
        return nil, fmt.Errorf("failed to read meminfo: %w", err)
    }
    ramPct := memPercent(meminfo)

    diskState, diskPct := p.diskState()

    result := &diag.CheckResult{
        Status:   diag.StatusOK,
        Headline: "RESOURCES_OK",
    }
    switch {
    case cpuPct > 90 || ramPct > 95:
        result.Status = diag.StatusCritical
        result.Headline = "RESOURCES_CRITICAL"
    case cpuPct > 70 || ramPct > 85:
        result.Status = diag.StatusWarning
        result.Headline = "RESOURCES_HIGH"
    }

    result.AddDetail("CPU", fmt.Sprintf("%.0f%%", cpuPct))
    result.AddDetail("RAM", fmt.Sprintf("%.0f%%", ramPct))
    result.AddDetail("DISK", fmt.Sprintf("%s (%.0f%% used)", diskState, diskPct))

    return result, nil
}

func cpuPercent(first, second procfs.CPUStat) float64 {
    totalFirst := first.User + first.Nice + first.System + first.Idle +
        first.Iowait + first.IRQ + first.SoftIRQ + first.Steal
    totalSecond := second.User + second.Nice + second.System + second.Idle +
        second.Iowait + second.IRQ + second.SoftIRQ + second.Steal

    totalDelta := totalSecond - totalFirst
    if totalDelta <= 0 {
        return 0
    }
    idleDelta := (second.Idle + second.Iowait) - (first.Idle + first.Iowait)
    return (totalDelta - idleDelta) / totalDelta * 100
}

func memPercent(meminfo procfs.Meminfo) float64 {
    if meminfo.MemTotal == nil || *meminfo.MemTotal == 0 {
        return 0
    }
    total := float64(*meminfo.MemTotal)
    available := 0.0
    if meminfo.MemAvailable != nil {
        available = float64(*meminfo.MemAvailable)
    }
    return (total - available) / total * 100
}

func (p *SystemProbe) diskState() (string, float64) {
    var stat unix.Statfs_t
    if err := unix.Statfs(p.diskPath, &stat); err != nil || stat.Blocks == 0 {
        return "unknown", 0
    }
    used := float64(stat.Blocks-stat.Bavail) / float64(stat.Blocks) * 100
    if used > 90 {
        return "low", used
    }
    return "ok", used
}

func unavailable(message string) *diag.CheckResult {
    return &diag.CheckResult{
        Status:   diag.StatusUnknown,
        Headline: "UNAVAILABLE",
        Error:    message,
    }
}
