// internal/probes/vpn.go - VPN presence probe
package probes

import (
    "context"
    "net"
    "net/http"
    "strings"

    "aidiag/internal/diag"
)

var vpnPrefixes = []string{"tun", "tap", "wg", "ppp", "utun"}

// VPNProbe is a presence check: no VPN interface is a normal state, not an
// error. A VPN only escalates when it is up and traffic demonstrably does
// not get through.
type VPNProbe struct {
    client     *http.Client
    interfaces func() ([]net.Interface, error)
    probeURL   string
}

func NewVPNProbe(client *http.Client) *VPNProbe {
    return &VPNProbe{
        client:     client,
        interfaces: net.Interfaces,
        probeURL:   "https://1.1.1.1",
    }
}

func (p *VPNProbe) Execute(ctx context.Context) (*diag.CheckResult, error) {
    ifaces, err := p.interfaces()
    if err != nil {
        return nil, err
    }

    var active []string
    for _, iface := range ifaces {
        if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
            continue
        }
        for _, prefix := range vpnPrefixes {
            if strings.HasPrefix(iface.Name, prefix) {
                active = append(active, iface.Name)
                break
            }
        }
    }

    result := &diag.CheckResult{}

    if len(active) == 0 {
        result.Status = diag.StatusOK
        result.Headline = "NOT_DETECTED"
        result.AddDetail("INTERFACE", "none")
        return result, nil
    }

    result.AddDetail("INTERFACE", strings.Join(active, ","))

    if p.trafficFlows(ctx) {
        result.Status = diag.StatusOK
        result.Headline = "ACTIVE"
        result.AddDetail("TRAFFIC", "flowing")
    } else {
        result.Status = diag.StatusCritical
        result.Headline = "VPN_BLOCKING"
        result.AddDetail("TRAFFIC", "blocked")
        result.Error = "VPN interface up but HTTPS traffic does not get through"
    }

    return result, nil
}

func (p *VPNProbe) trafficFlows(ctx context.Context) bool {
    req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.probeURL, nil)
    if err != nil {
        return false
    }
    resp, err := p.client.Do(req)
    if err != nil {
        return false
    }
    resp.Body.Close()
    return true
}
