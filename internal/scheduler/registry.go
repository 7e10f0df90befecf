package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/portwatch/internal/domain"
	"github.com/hamed0406/portwatch/internal/probe"
	"github.com/hamed0406/portwatch/internal/sink"
)

// Factory builds an unstarted Checker for spec.
type Factory func(spec domain.EndpointSpec) *Checker

// Registry keeps at most one live Checker per endpoint key.
//
// Keys that disappear from the configured list keep their Checker; only
// Shutdown stops checkers.
type Registry struct {
	Logger *zap.Logger
	newFn  Factory

	mu       sync.Mutex
	checkers map[domain.Key]*Checker
	closed   bool
}

func NewRegistry(logger *zap.Logger, p probe.Checker, r sink.Reporter) *Registry {
	return NewRegistryWithFactory(logger, func(spec domain.EndpointSpec) *Checker {
		return NewChecker(spec, p, r, logger)
	})
}

func NewRegistryWithFactory(logger *zap.Logger, f Factory) *Registry {
	return &Registry{
		Logger:   logger,
		newFn:    f,
		checkers: make(map[domain.Key]*Checker),
	}
}

// Reconcile starts a Checker for every spec whose key has none, or whose
// Checker has exited. Live checkers are left alone, so repeated calls with the
// same list start nothing. Specs that fail validation never get a Checker.
// It returns how many checkers were started.
func (r *Registry) Reconcile(specs []domain.EndpointSpec) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.Logger.Warn("reconcile_after_shutdown", zap.Int("endpoints", len(specs)))
		return 0
	}

	started := 0
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			r.Logger.Error("endpoint_rejected",
				zap.String("endpoint", spec.Key().String()),
				zap.Error(err),
			)
			continue
		}
		key := spec.Key()
		if cur, ok := r.checkers[key]; ok && cur.Alive() {
			continue
		} else if ok {
			r.Logger.Info("checker_replaced",
				zap.String("endpoint", key.String()),
				zap.String("old_checker_id", cur.ID()),
			)
		}

		c := r.newFn(spec)
		r.checkers[key] = c
		c.Start()
		started++
	}
	return started
}

// Shutdown signals every checker, then waits for them until ctx ends.
// Checkers still running at the deadline are named in the returned error.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	checkers := r.checkers
	r.checkers = make(map[domain.Key]*Checker)
	r.mu.Unlock()

	for _, c := range checkers {
		c.Stop()
	}

	var errs error
	for key, c := range checkers {
		if err := c.Wait(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("checker %s did not exit: %w", key, err))
		}
	}
	r.Logger.Info("registry_shutdown", zap.Int("checkers", len(checkers)), zap.Error(errs))
	return errs
}

// Lookup returns the registered checker for key, alive or not.
func (r *Registry) Lookup(key domain.Key) (*Checker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.checkers[key]
	return c, ok
}

// Live counts registered checkers whose loop is still running.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.checkers {
		if c.Alive() {
			n++
		}
	}
	return n
}

type Status struct {
	ID         string              `json:"id"`
	Endpoint   domain.EndpointSpec `json:"endpoint"`
	Alive      bool                `json:"alive"`
	StartedAt  time.Time           `json:"started_at"`
	LastResult *domain.ProbeResult `json:"last_result,omitempty"`
}

// Snapshot lists every registered checker, ordered by host then port.
func (r *Registry) Snapshot() []Status {
	r.mu.Lock()
	out := make([]Status, 0, len(r.checkers))
	for _, c := range r.checkers {
		out = append(out, Status{
			ID:         c.ID(),
			Endpoint:   c.Spec(),
			Alive:      c.Alive(),
			StartedAt:  c.StartedAt(),
			LastResult: c.LastResult(),
		})
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Endpoint, out[j].Endpoint
		if a.Host != b.Host {
			return a.Host < b.Host
		}
		return a.Port < b.Port
	})
	return out
}
