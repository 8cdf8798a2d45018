package uptime

import (
	"context"
	"fmt"
	"strings"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// payloadSize matches the classic 32-byte ping payload.
const payloadSize = 32

// Prober performs a single reachability check against address. The context
// carries the per-probe deadline.
type Prober interface {
	Probe(ctx context.Context, address string) ProbeResult
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, address string) ProbeResult

func (f ProberFunc) Probe(ctx context.Context, address string) ProbeResult {
	return f(ctx, address)
}

// NewProber returns the prober registered under kind: "ping" (pro-bing) or
// "icmp" (raw echo over golang.org/x/net/icmp).
func NewProber(kind string, privileged bool) (Prober, error) {
	switch strings.ToLower(kind) {
	case "", "ping":
		return NewPingProber(privileged), nil
	case "icmp", "echo":
		return NewEchoProber(privileged), nil
	}
	return nil, fmt.Errorf("unknown prober %q", kind)
}

// PingProber sends one echo request per probe with pro-bing.
type PingProber struct {
	Privileged bool
	Size       int
}

func NewPingProber(privileged bool) *PingProber {
	return &PingProber{Privileged: privileged, Size: payloadSize}
}

func (p *PingProber) Probe(ctx context.Context, address string) ProbeResult {
	pinger, err := probing.NewPinger(address)
	if err != nil {
		return ProbeResult{Err: fmt.Errorf("failed to create pinger for %s: %w", address, err)}
	}

	pinger.Count = 1
	pinger.Size = p.Size
	pinger.SetPrivileged(p.Privileged)

	timeout := DefaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		return ProbeResult{}
	}
	pinger.Timeout = timeout

	runErr := pinger.RunWithContext(ctx)
	stats := pinger.Statistics()
	if stats.PacketsRecv > 0 {
		return ProbeResult{Success: true, Latency: stats.AvgRtt}
	}
	// A run cut short by the deadline is a missing reply, not a send failure.
	if runErr != nil && ctx.Err() == nil {
		return ProbeResult{Err: fmt.Errorf("failed to ping %s: %w", address, runErr)}
	}
	return ProbeResult{}
}
