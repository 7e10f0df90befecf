package sink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestOTelReporter_RecordsGaugeWithDimensions(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(ctx) }()

	r := NewOTelReporter(mp)
	require.NoError(t, r.Report(ctx, "custom.port.availability", 1, map[string]string{"host": "a", "port": "80"}))
	require.NoError(t, r.Report(ctx, "custom.port.availability", 0, map[string]string{"host": "b", "port": "443"}))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	m := rm.ScopeMetrics[0].Metrics[0]
	require.Equal(t, "custom.port.availability", m.Name)
	g, ok := m.Data.(metricdata.Gauge[float64])
	require.True(t, ok, "want float64 gauge, got %T", m.Data)
	require.Len(t, g.DataPoints, 2)

	byHost := map[string]float64{}
	for _, dp := range g.DataPoints {
		host, ok := dp.Attributes.Value("host")
		require.True(t, ok)
		port, ok := dp.Attributes.Value("port")
		require.True(t, ok)
		require.NotEmpty(t, port.AsString())
		byHost[host.AsString()] = dp.Value
	}
	require.Equal(t, map[string]float64{"a": 1, "b": 0}, byHost)
}

func TestOTelReporter_ReusesGauge(t *testing.T) {
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	r := NewOTelReporter(mp)
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Report(context.Background(), "x", 1, nil))
	}
	require.Len(t, r.gauges, 1)
}
