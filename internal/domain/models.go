package domain

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTimeout  = 5 * time.Second
	DefaultInterval = time.Minute
)

var (
	ErrEmptyHost       = errors.New("host is required")
	ErrInvalidPort     = errors.New("port must be in 1-65535")
	ErrInvalidTimeout  = errors.New("timeout must be >= 0")
	ErrInvalidInterval = errors.New("interval must be > 0")
)

// Key identifies a monitored target. Two specs with the same key are the same
// target even if their timeout or interval differ.
type Key struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func (k Key) String() string {
	return net.JoinHostPort(k.Host, strconv.Itoa(k.Port))
}

// EndpointSpec is the immutable configuration of one monitored target.
type EndpointSpec struct {
	Host     string        `json:"host"`
	Port     int           `json:"port"`
	Timeout  time.Duration `json:"timeout"`
	Interval time.Duration `json:"interval"`
}

// NewEndpointSpec builds a spec from the configured units: timeout in seconds,
// interval in minutes. Zero interval minutes falls back to DefaultInterval.
func NewEndpointSpec(host string, port, timeoutSeconds, intervalMinutes int) (EndpointSpec, error) {
	if intervalMinutes == 0 {
		intervalMinutes = int(DefaultInterval / time.Minute)
	}
	s := EndpointSpec{
		Host:     strings.TrimSpace(host),
		Port:     port,
		Timeout:  time.Duration(timeoutSeconds) * time.Second,
		Interval: time.Duration(intervalMinutes) * time.Minute,
	}
	if err := s.Validate(); err != nil {
		return EndpointSpec{}, err
	}
	return s, nil
}

func (s EndpointSpec) Key() Key {
	return Key{Host: s.Host, Port: s.Port}
}

// Address is the dial address, host:port (IPv6 hosts are bracketed).
func (s EndpointSpec) Address() string {
	return s.Key().String()
}

func (s EndpointSpec) Validate() error {
	switch {
	case s.Host == "":
		return ErrEmptyHost
	case s.Port < 1 || s.Port > 65535:
		return fmt.Errorf("%w: got %d", ErrInvalidPort, s.Port)
	case s.Timeout < 0:
		return fmt.Errorf("%w: got %s", ErrInvalidTimeout, s.Timeout)
	case s.Interval <= 0:
		return fmt.Errorf("%w: got %s", ErrInvalidInterval, s.Interval)
	}
	return nil
}
