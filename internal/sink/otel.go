package sink

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/hamed0406/portwatch"

// OTelReporter records each sample on a Float64Gauge named after the metric,
// with the dimensions as attributes.
type OTelReporter struct {
	meter metric.Meter

	mu     sync.Mutex
	gauges map[string]metric.Float64Gauge
}

func NewOTelReporter(mp metric.MeterProvider) *OTelReporter {
	return &OTelReporter{
		meter:  mp.Meter(meterName),
		gauges: make(map[string]metric.Float64Gauge),
	}
}

func (o *OTelReporter) Report(ctx context.Context, name string, value float64, dims map[string]string) error {
	g, err := o.gauge(name)
	if err != nil {
		return err
	}
	g.Record(ctx, value, metric.WithAttributes(attributes(dims)...))
	return nil
}

func (o *OTelReporter) gauge(name string) (metric.Float64Gauge, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if g, ok := o.gauges[name]; ok {
		return g, nil
	}
	g, err := o.meter.Float64Gauge(name,
		metric.WithDescription("TCP port availability, 1 when a connection could be established"),
	)
	if err != nil {
		return nil, err
	}
	o.gauges[name] = g
	return g, nil
}

func attributes(dims map[string]string) []attribute.KeyValue {
	keys := make([]string, 0, len(dims))
	for k := range dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		kv = append(kv, attribute.String(k, dims[k]))
	}
	return kv
}

// NewOTLPProvider builds a meter provider exporting over OTLP/HTTP to
// endpointURL every interval. Callers must Shutdown it to flush.
func NewOTLPProvider(ctx context.Context, endpointURL string, interval time.Duration) (*sdkmetric.MeterProvider, error) {
	exp, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(endpointURL))
	if err != nil {
		return nil, err
	}
	reader := sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), nil
}
