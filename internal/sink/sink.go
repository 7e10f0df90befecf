// Package sink holds the metrics-sink collaborators a checker reports to.
package sink

import (
	"context"

	"go.uber.org/multierr"
)

// Reporter receives one metric sample. Implementations must be safe for
// concurrent use; every checker calls Report from its own goroutine.
type Reporter interface {
	Report(ctx context.Context, name string, value float64, dims map[string]string) error
}

// Multi fans a sample out to every reporter and returns all their errors.
type Multi []Reporter

func (m Multi) Report(ctx context.Context, name string, value float64, dims map[string]string) error {
	var errs error
	for _, r := range m {
		if r == nil {
			continue
		}
		errs = multierr.Append(errs, r.Report(ctx, name, value, dims))
	}
	return errs
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(ctx context.Context, name string, value float64, dims map[string]string) error

func (f ReporterFunc) Report(ctx context.Context, name string, value float64, dims map[string]string) error {
	return f(ctx, name, value, dims)
}
