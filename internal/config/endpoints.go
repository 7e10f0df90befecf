package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/portwatch/internal/domain"
)

// EndpointRecord is one entry of the endpoint file as written by an operator.
type EndpointRecord struct {
	Host             string    `yaml:"host"`
	Port             PortValue `yaml:"port"`
	Timeout          *int      `yaml:"timeout"`           // seconds, default 5
	ScheduleInterval *int      `yaml:"schedule_interval"` // minutes, default 1
}

// Entries are kept as raw nodes so one malformed entry cannot fail the rest.
type endpointFile struct {
	Endpoints []yaml.Node `yaml:"endpoints"`
}

// PortValue accepts either an integer or a numeric string.
type PortValue int

func (p *PortValue) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: port must be a scalar", n.Line)
	}
	v, err := strconv.Atoi(strings.TrimSpace(n.Value))
	if err != nil {
		return fmt.Errorf("line %d: port %q is not a number", n.Line, n.Value)
	}
	*p = PortValue(v)
	return nil
}

// Spec converts the record, applying the documented defaults.
func (r EndpointRecord) Spec() (domain.EndpointSpec, error) {
	timeout := int(domain.DefaultTimeout.Seconds())
	if r.Timeout != nil {
		timeout = *r.Timeout
	}
	minutes := 1
	if r.ScheduleInterval != nil {
		minutes = *r.ScheduleInterval
		if minutes <= 0 {
			return domain.EndpointSpec{}, fmt.Errorf("%w: schedule_interval %d", domain.ErrInvalidInterval, minutes)
		}
	}
	return domain.NewEndpointSpec(r.Host, int(r.Port), timeout, minutes)
}

// ParseEndpoints decodes an endpoint document. Entries that fail validation
// are left out of the returned list and reported together in the error, so a
// caller may still use the valid ones.
func ParseEndpoints(data []byte) ([]domain.EndpointSpec, error) {
	var f endpointFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode endpoints: %w", err)
	}

	specs := make([]domain.EndpointSpec, 0, len(f.Endpoints))
	var errs error
	for i := range f.Endpoints {
		var rec EndpointRecord
		if err := f.Endpoints[i].Decode(&rec); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("endpoint %d (line %d): %w", i, f.Endpoints[i].Line, err))
			continue
		}
		s, err := rec.Spec()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("endpoint %d (%s:%d): %w", i, rec.Host, rec.Port, err))
			continue
		}
		specs = append(specs, s)
	}
	return specs, errs
}

func LoadEndpoints(path string) ([]domain.EndpointSpec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseEndpoints(b)
}

// FileSource re-reads the endpoint file on every call.
type FileSource struct {
	Path string
}

func (f FileSource) Endpoints(ctx context.Context) ([]domain.EndpointSpec, error) {
	return LoadEndpoints(f.Path)
}
