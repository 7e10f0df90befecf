package domain

import (
	"strconv"
	"time"
)

// MetricName is the name every availability sample is reported under.
const MetricName = "custom.port.availability"

// ProbeResult is the outcome of one probe cycle. It is never persisted.
type ProbeResult struct {
	Key       Key       `json:"key"`
	Available bool      `json:"available"`
	LatencyMS float64   `json:"latency_ms"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Value is the availability as reported to the sink: 1 or 0.
func (r ProbeResult) Value() float64 {
	if r.Available {
		return 1
	}
	return 0
}

func (r ProbeResult) Status() string {
	if r.Available {
		return "available"
	}
	return "unavailable"
}

// Dimensions are the sample tags; the port is serialized as decimal text.
func (r ProbeResult) Dimensions() map[string]string {
	return map[string]string{
		"host": r.Key.Host,
		"port": strconv.Itoa(r.Key.Port),
	}
}
