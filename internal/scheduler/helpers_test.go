package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/portwatch/internal/probe"
)

// --- fakes ---

type probeFunc func(ctx context.Context, target string) probe.CheckResult

func (f probeFunc) Check(ctx context.Context, target string) probe.CheckResult { return f(ctx, target) }

func alwaysUp() probe.Checker {
	return probeFunc(func(ctx context.Context, target string) probe.CheckResult {
		return probe.CheckResult{Name: "TCP", Success: true, LatencyMS: 1}
	})
}

func alwaysDown(msg string) probe.Checker {
	return probeFunc(func(ctx context.Context, target string) probe.CheckResult {
		return probe.CheckResult{Name: "TCP", Success: false, Message: msg}
	})
}

type sample struct {
	name  string
	value float64
	dims  map[string]string
	at    time.Time
}

type captureReporter struct {
	mu      sync.Mutex
	samples []sample
	ch      chan sample
	err     error
}

func newCapture() *captureReporter {
	return &captureReporter{ch: make(chan sample, 64)}
}

func (c *captureReporter) Report(ctx context.Context, name string, value float64, dims map[string]string) error {
	s := sample{name: name, value: value, dims: dims, at: time.Now()}
	c.mu.Lock()
	c.samples = append(c.samples, s)
	err := c.err
	c.mu.Unlock()
	select {
	case c.ch <- s:
	default:
	}
	return err
}

func (c *captureReporter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.samples)
}
