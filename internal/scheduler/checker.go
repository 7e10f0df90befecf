package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/portwatch/internal/domain"
	"github.com/hamed0406/portwatch/internal/probe"
	"github.com/hamed0406/portwatch/internal/sink"
)

// Checker probes one endpoint on its own goroutine until stopped.
//
// A cycle is probe, report, log. Cycles never overlap. Between cycles the
// goroutine waits on either the interval timer or the stop channel, so a
// stop request is observed as soon as the in-flight probe (bounded by the
// spec timeout) returns.
type Checker struct {
	id       string
	spec     domain.EndpointSpec
	probe    probe.Checker
	reporter sink.Reporter
	logger   *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	startOnce sync.Once
	cycleMu   sync.Mutex // serializes probe, report and log of one cycle

	mu        sync.RWMutex
	startedAt time.Time
	last      *domain.ProbeResult
}

func NewChecker(spec domain.EndpointSpec, p probe.Checker, r sink.Reporter, logger *zap.Logger) *Checker {
	id := uuid.NewString()
	return &Checker{
		id:       id,
		spec:     spec,
		probe:    p,
		reporter: r,
		logger: logger.With(
			zap.String("checker_id", id),
			zap.String("host", spec.Host),
			zap.Int("port", spec.Port),
		),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (c *Checker) ID() string                { return c.id }
func (c *Checker) Spec() domain.EndpointSpec { return c.spec }

// Start launches the loop and returns immediately. Later calls are no-ops.
func (c *Checker) Start() {
	c.startOnce.Do(func() {
		c.mu.Lock()
		c.startedAt = time.Now().UTC()
		c.mu.Unlock()
		go c.run()
	})
}

// Stop asks the loop to exit. Safe to call repeatedly and from any goroutine.
func (c *Checker) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Alive reports whether the loop has been started and has not exited yet.
func (c *Checker) Alive() bool {
	if c.StartedAt().IsZero() {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Done is closed when the loop exits.
func (c *Checker) Done() <-chan struct{} { return c.done }

// Wait blocks until the loop exits or ctx ends.
func (c *Checker) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return nil
	default:
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Checker) StartedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.startedAt
}

// LastResult returns the most recent cycle's outcome, or nil before the first.
func (c *Checker) LastResult() *domain.ProbeResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return nil
	}
	r := *c.last
	return &r
}

func (c *Checker) run() {
	defer close(c.done)
	c.logger.Info("checker_started",
		zap.Duration("interval", c.spec.Interval),
		zap.Duration("timeout", c.spec.Timeout),
	)

	for {
		select {
		case <-c.stop:
			c.logger.Info("checker_stopped")
			return
		default:
		}

		c.cycle()

		timer := time.NewTimer(c.spec.Interval)
		select {
		case <-c.stop:
			timer.Stop()
			c.logger.Info("checker_stopped")
			return
		case <-timer.C:
		}
	}
}

func (c *Checker) cycle() {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.spec.Timeout)
	out := c.probe.Check(ctx, c.spec.Address())
	cancel()

	res := domain.ProbeResult{
		Key:       c.spec.Key(),
		Available: out.Success,
		LatencyMS: out.LatencyMS,
		CheckedAt: time.Now().UTC(),
	}
	if !out.Success {
		res.Error = out.Message
		c.logger.Error("probe_failed", zap.String("error", out.Message))
	}
	c.mu.Lock()
	c.last = &res
	c.mu.Unlock()

	if err := c.report(res); err != nil {
		c.logger.Warn("report_failed", zap.Error(err))
	}

	c.logger.Info("probe_result",
		zap.String("status", res.Status()),
		zap.Float64("latency_ms", res.LatencyMS),
	)
}

// report calls the sink. A panicking sink is turned into an error so the
// loop keeps running.
func (c *Checker) report(res domain.ProbeResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reporter panic: %v", r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()
	return c.reporter.Report(ctx, domain.MetricName, res.Value(), res.Dimensions())
}

var reportTimeout = 10 * time.Second
