package probe

import (
	"context"
	"net"
	"time"
)

// TCPChecker opens a plain TCP connection and closes it straight away.
// No bytes are written or read.
type TCPChecker struct {
	Dialer *net.Dialer
}

func NewTCPChecker() *TCPChecker {
	return &TCPChecker{Dialer: &net.Dialer{}}
}

// Check dials target. A DNS failure, a refusal and a timeout all come back as
// an unsuccessful result; the caller's ctx deadline is the only time bound, so
// an already expired deadline fails without dialing.
func (c *TCPChecker) Check(ctx context.Context, target string) CheckResult {
	d := c.Dialer
	if d == nil {
		d = &net.Dialer{}
	}

	start := time.Now()
	conn, err := d.DialContext(ctx, "tcp", target)
	latency := time.Since(start).Seconds() * 1000 // ms
	if err != nil {
		return CheckResult{Name: "TCP", Success: false, Message: err.Error(), LatencyMS: latency}
	}
	_ = conn.Close()

	return CheckResult{Name: "TCP", Success: true, LatencyMS: latency}
}

// CheckWithTimeout is Check bounded by timeout. A zero timeout fails at once.
func CheckWithTimeout(c Checker, target string, timeout time.Duration) CheckResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.Check(ctx, target)
}
