package uptime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const protocolICMP = 1

var echoPayload = bytes.Repeat([]byte("a"), payloadSize)

// EchoProber sends a single ICMP echo request and waits for the matching
// reply. Unprivileged mode uses a datagram ICMP socket ("udp4"), which on
// Linux requires net.ipv4.ping_group_range to include the process group.
type EchoProber struct {
	Privileged bool

	id  int
	seq atomic.Uint32
}

func NewEchoProber(privileged bool) *EchoProber {
	return &EchoProber{Privileged: privileged, id: os.Getpid() & 0xffff}
}

func (p *EchoProber) Probe(ctx context.Context, address string) ProbeResult {
	dst, err := net.ResolveIPAddr("ip4", address)
	if err != nil {
		return ProbeResult{Err: fmt.Errorf("failed to resolve %s: %w", address, err)}
	}

	network := "udp4"
	if p.Privileged {
		network = "ip4:icmp"
	}
	conn, err := icmp.ListenPacket(network, "0.0.0.0")
	if err != nil {
		return ProbeResult{Err: fmt.Errorf("failed to open ICMP listener: %w", err)}
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return ProbeResult{Err: fmt.Errorf("failed to set deadline: %w", err)}
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	seq := int(p.seq.Add(1) & 0xffff)
	wb, err := (&icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{ID: p.id, Seq: seq, Data: echoPayload},
	}).Marshal(nil)
	if err != nil {
		return ProbeResult{Err: fmt.Errorf("failed to build echo request: %w", err)}
	}

	var peer net.Addr = dst
	if !p.Privileged {
		peer = &net.UDPAddr{IP: dst.IP}
	}

	start := time.Now()
	if _, err := conn.WriteTo(wb, peer); err != nil {
		return ProbeResult{Err: fmt.Errorf("failed to send echo to %s: %w", address, err)}
	}

	packet := make([]byte, 1500)
	for {
		n, from, err := conn.ReadFrom(packet)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return ProbeResult{}
			}
			return ProbeResult{Err: fmt.Errorf("failed to read ICMP reply: %w", err)}
		}

		if p.isReply(packet[:n], from, dst.IP, seq) {
			return ProbeResult{Success: true, Latency: time.Since(start)}
		}
	}
}

// isReply reports whether packet is the echo reply to request seq sent to dst.
func (p *EchoProber) isReply(packet []byte, from net.Addr, dst net.IP, seq int) bool {
	msg, err := icmp.ParseMessage(protocolICMP, packet)
	if err != nil || msg.Type != ipv4.ICMPTypeEchoReply {
		return false
	}
	echo, ok := msg.Body.(*icmp.Echo)
	if !ok || echo.Seq != seq || !sameHost(from, dst) {
		return false
	}
	// Datagram sockets rewrite the identifier, so only raw sockets check it.
	return !p.Privileged || echo.ID == p.id
}

func sameHost(addr net.Addr, ip net.IP) bool {
	switch a := addr.(type) {
	case *net.IPAddr:
		return a.IP.Equal(ip)
	case *net.UDPAddr:
		return a.IP.Equal(ip)
	}
	return false
}
