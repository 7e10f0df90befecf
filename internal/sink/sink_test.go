package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	calls int
	err   error
}

func (r *recorder) Report(ctx context.Context, name string, value float64, dims map[string]string) error {
	r.calls++
	return r.err
}

func TestMulti_FansOutAndCollectsErrors(t *testing.T) {
	a := &recorder{}
	b := &recorder{err: errors.New("b down")}
	c := &recorder{err: errors.New("c down")}

	err := Multi{a, nil, b, c}.Report(context.Background(), "m", 1, nil)

	require.Equal(t, 1, a.calls)
	require.Equal(t, 1, b.calls)
	require.Equal(t, 1, c.calls)
	require.Len(t, multierr.Errors(err), 2)
}

func TestMulti_AllOK(t *testing.T) {
	require.NoError(t, Multi{&recorder{}, &recorder{}}.Report(context.Background(), "m", 0, nil))
}

func TestReporterFunc(t *testing.T) {
	var got string
	f := ReporterFunc(func(ctx context.Context, name string, value float64, dims map[string]string) error {
		got = name
		return nil
	})
	require.NoError(t, f.Report(context.Background(), "custom.port.availability", 1, nil))
	require.Equal(t, "custom.port.availability", got)
}

func TestLogReporter_WritesSample(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := LogReporter{Logger: zap.New(core)}

	require.NoError(t, r.Report(context.Background(), "custom.port.availability", 1,
		map[string]string{"host": "h", "port": "1"}))

	entries := logs.FilterMessage("metric_sample").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "custom.port.availability", fields["metric"])
	require.Equal(t, float64(1), fields["value"])
}
