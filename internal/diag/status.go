// internal/diag/status.go
package diag

// Status is the severity of a check result. The numeric order drives
// aggregation: a pass's overall status is the maximum across its results.
type Status int

const (
    StatusOK Status = iota
    StatusUnknown
    StatusWarning
    StatusCritical
)

func (s Status) String() string {
    switch s {
    case StatusOK:
        return "OK"
    case StatusWarning:
        return "WARNING"
    case StatusCritical:
        return "CRITICAL"
    default:
        return "UNKNOWN"
    }
}

// Glyph returns the short marker used in rendered reports.
func (s Status) Glyph() string {
    switch s {
    case StatusOK:
        return "[OK]"
    case StatusWarning:
        return "[!!]"
    case StatusCritical:
        return "[XX]"
    default:
        return "[??]"
    }
}

// Category groups checks by what part of the dependency chain they probe.
type Category string

const (
    CategorySystem      Category = "system"
    CategoryNetwork     Category = "network"
    CategoryAPIProvider Category = "api_provider"
    CategoryProcess     Category = "process"
)

func maxStatus(a, b Status) Status {
    if b > a {
        return b
    }
    return a
}
