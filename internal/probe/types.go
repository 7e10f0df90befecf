package probe

import "context"

// CheckResult is the unified result of a single probe.
//
// Message carries the dial error text on failure and is empty on success.
type CheckResult struct {
	Success   bool    `json:"success"`
	LatencyMS float64 `json:"latency_ms"`
	Message   string  `json:"message,omitempty"`
	Name      string  `json:"name"` // check kind, e.g. "TCP"
}

// Checker performs a single check for a given host:port target.
// The deadline on ctx bounds the attempt.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}
