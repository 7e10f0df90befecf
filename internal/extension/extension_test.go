package extension

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/portwatch/internal/domain"
	"github.com/hamed0406/portwatch/internal/probe"
	"github.com/hamed0406/portwatch/internal/scheduler"
	"github.com/hamed0406/portwatch/internal/sink"
)

type upProbe struct{}

func (upProbe) Check(ctx context.Context, target string) probe.CheckResult {
	return probe.CheckResult{Success: true}
}

type countingSource struct {
	calls atomic.Int32
	specs []domain.EndpointSpec
	err   error
}

func (c *countingSource) Endpoints(ctx context.Context) ([]domain.EndpointSpec, error) {
	c.calls.Add(1)
	return c.specs, c.err
}

func nopSink() sink.Reporter {
	return sink.ReporterFunc(func(context.Context, string, float64, map[string]string) error { return nil })
}

func testSpecs() []domain.EndpointSpec {
	return []domain.EndpointSpec{
		{Host: "127.0.0.1", Port: 9, Timeout: time.Second, Interval: time.Hour},
		{Host: "127.0.0.1", Port: 10, Timeout: time.Second, Interval: time.Hour},
	}
}

func TestExtension_QueryStartsCheckersOnce(t *testing.T) {
	reg := scheduler.NewRegistry(zap.NewNop(), upProbe{}, nopSink())
	ext := New(zap.NewNop(), StaticSource(testSpecs()), reg)
	defer ext.Shutdown(context.Background())

	n, err := ext.Query(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = ext.Query(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.Equal(t, 2, reg.Live())
}

func TestExtension_QueryRejectedEntriesStillStartsValidOnes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	reg := scheduler.NewRegistry(zap.NewNop(), upProbe{}, nopSink())
	src := &countingSource{
		specs: testSpecs()[:1],
		err:   multierr.Combine(domain.ErrEmptyHost, domain.ErrInvalidPort),
	}
	ext := New(zap.New(core), src, reg)
	defer ext.Shutdown(context.Background())

	n, err := ext.Query(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 2, logs.FilterMessage("endpoint_rejected").Len())
}

func TestExtension_QuerySourceFailure(t *testing.T) {
	reg := scheduler.NewRegistry(zap.NewNop(), upProbe{}, nopSink())
	ext := New(zap.NewNop(), &countingSource{err: errors.New("read failed")}, reg)

	n, err := ext.Query(context.Background())
	require.Error(t, err)
	require.Equal(t, 0, n)
}

func TestExtension_FastCheckAlwaysOK(t *testing.T) {
	ext := New(zap.NewNop(), StaticSource(nil), scheduler.NewRegistry(zap.NewNop(), upProbe{}, nopSink()))
	require.Equal(t, StatusOK, ext.FastCheck())
}

func TestExtension_ShutdownRunsClosersOnce(t *testing.T) {
	reg := scheduler.NewRegistry(zap.NewNop(), upProbe{}, nopSink())
	ext := New(zap.NewNop(), StaticSource(testSpecs()), reg)
	_, _ = ext.Query(context.Background())

	var closed int
	ext.OnShutdown(func(context.Context) error {
		closed++
		require.Equal(t, 0, reg.Live(), "closers run after checkers stopped")
		return nil
	})
	ext.OnShutdown(func(context.Context) error { return errors.New("flush failed") })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := ext.Shutdown(ctx)
	require.Error(t, err)
	require.Equal(t, err, ext.Shutdown(ctx))
	require.Equal(t, 1, closed)
}

func TestRunner_QueriesImmediatelyAndShutsDown(t *testing.T) {
	reg := scheduler.NewRegistry(zap.NewNop(), upProbe{}, nopSink())
	src := &countingSource{specs: testSpecs()}
	ext := New(zap.NewNop(), src, reg)
	r := &Runner{Ext: ext, Schedule: "@every 1h", Logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var runErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = r.Run(ctx, func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 2*time.Second)
		})
	}()

	require.Eventually(t, func() bool { return reg.Live() == 2 }, time.Second, 5*time.Millisecond)
	require.Equal(t, int32(1), src.calls.Load())

	cancel()
	wg.Wait()
	require.NoError(t, runErr)
	require.Equal(t, 0, reg.Live())
}

func TestRunner_CronCadence(t *testing.T) {
	reg := scheduler.NewRegistry(zap.NewNop(), upProbe{}, nopSink())
	src := &countingSource{specs: testSpecs()}
	r := &Runner{Ext: New(zap.NewNop(), src, reg), Schedule: "@every 1s", Logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx, func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 2*time.Second)
		})
	}()

	require.Eventually(t, func() bool { return src.calls.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
	require.Equal(t, 2, reg.Live(), "repeated reconciles start nothing new")
	cancel()
	<-done
}

func TestRunner_BadSchedule(t *testing.T) {
	reg := scheduler.NewRegistry(zap.NewNop(), upProbe{}, nopSink())
	r := &Runner{Ext: New(zap.NewNop(), StaticSource(nil), reg), Schedule: "every minute please", Logger: zap.NewNop()}
	err := r.Run(context.Background(), func() (context.Context, context.CancelFunc) {
		return context.WithCancel(context.Background())
	})
	require.Error(t, err)
}
