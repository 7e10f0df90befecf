package sink

import (
	"context"

	"go.uber.org/zap"
)

// LogReporter writes samples to the log at debug level.
type LogReporter struct {
	Logger *zap.Logger
}

func (l LogReporter) Report(ctx context.Context, name string, value float64, dims map[string]string) error {
	l.Logger.Debug("metric_sample",
		zap.String("metric", name),
		zap.Float64("value", value),
		zap.Any("dimensions", dims),
	)
	return nil
}
