package extension

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner drives Query on a cron schedule until its context ends, then shuts
// the extension down. Overlapping runs are skipped, so reconcile never runs
// concurrently with itself.
type Runner struct {
	Ext      *Extension
	Schedule string // e.g. "@every 1m"
	Logger   *zap.Logger
}

func (r *Runner) Run(ctx context.Context, shutdown func() (context.Context, context.CancelFunc)) error {
	clog := cronLogger{r.Logger}
	c := cron.New(
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)
	if _, err := c.AddFunc(r.Schedule, func() { r.query(ctx) }); err != nil {
		return err
	}

	// immediate pass
	r.query(ctx)
	c.Start()
	r.Logger.Info("runner_started", zap.String("schedule", r.Schedule))

	<-ctx.Done()
	<-c.Stop().Done()

	sctx, cancel := shutdown()
	defer cancel()
	err := r.Ext.Shutdown(sctx)
	r.Logger.Info("runner_stopped", zap.Error(err))
	return err
}

func (r *Runner) query(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := r.Ext.Query(ctx); err != nil {
		r.Logger.Warn("reconcile_error", zap.Error(err))
	}
}

type cronLogger struct {
	l *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron_"+msg, zap.Any("kv", keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron_"+msg, zap.Error(err), zap.Any("kv", keysAndValues))
}
