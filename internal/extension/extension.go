// Package extension exposes the monitor to its host as three callbacks:
// Query (reconcile against the configured endpoints), FastCheck and Shutdown.
package extension

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/portwatch/internal/domain"
	"github.com/hamed0406/portwatch/internal/scheduler"
)

// Source yields the currently configured endpoints. A non-nil error together
// with a non-empty list means some entries were rejected.
type Source interface {
	Endpoints(ctx context.Context) ([]domain.EndpointSpec, error)
}

type StaticSource []domain.EndpointSpec

func (s StaticSource) Endpoints(ctx context.Context) ([]domain.EndpointSpec, error) {
	return s, nil
}

type Status string

const (
	StatusOK    Status = "OK"
	StatusError Status = "ERROR"
)

type Extension struct {
	Logger   *zap.Logger
	Source   Source
	Registry *scheduler.Registry

	closers      []func(context.Context) error
	shutdownOnce sync.Once
	shutdownErr  error
}

func New(logger *zap.Logger, src Source, reg *scheduler.Registry) *Extension {
	return &Extension{Logger: logger, Source: src, Registry: reg}
}

// OnShutdown registers f to run after every checker has been stopped,
// e.g. flushing a metrics exporter.
func (e *Extension) OnShutdown(f func(context.Context) error) {
	e.closers = append(e.closers, f)
}

// Query reads the endpoint list and reconciles the registry with it. Rejected
// entries are logged and never get a checker; the valid rest still do.
func (e *Extension) Query(ctx context.Context) (int, error) {
	e.Logger.Info("reconcile_start")
	specs, err := e.Source.Endpoints(ctx)
	if err != nil {
		for _, one := range multierr.Errors(err) {
			e.Logger.Error("endpoint_rejected", zap.Error(one))
		}
		if len(specs) == 0 {
			return 0, err
		}
	}
	started := e.Registry.Reconcile(specs)
	e.Logger.Info("reconcile_done",
		zap.Int("endpoints", len(specs)),
		zap.Int("started", started),
		zap.Int("live", e.Registry.Live()),
	)
	return started, err
}

// FastCheck reports the health of the monitor itself. Endpoint outages are
// reported as metrics, never here.
func (e *Extension) FastCheck() Status {
	return StatusOK
}

// Shutdown stops every checker, waiting until ctx ends, then runs the
// registered closers. Only the first call does any work.
func (e *Extension) Shutdown(ctx context.Context) error {
	e.shutdownOnce.Do(func() {
		err := e.Registry.Shutdown(ctx)
		for _, f := range e.closers {
			err = multierr.Append(err, f(ctx))
		}
		e.shutdownErr = err
	})
	return e.shutdownErr
}
