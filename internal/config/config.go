package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr              string        // admin API bind address, e.g. "127.0.0.1:8080" or ":8080" in Docker
	AdminAPIKeys      []string      // keys accepted by POST /api/reconcile; empty allows all
	LogDir            string        // logs directory
	LogLevel          string        // debug | info | warn | error
	LogConsole        bool          // tee logs to stderr
	EndpointsFile     string        // YAML endpoint list, re-read on every reconcile
	ReconcileSchedule string        // cron spec for the reconcile cadence
	ShutdownTimeout   time.Duration // bounded wait for checkers to exit
	OTLPEndpoint      string        // OTLP/HTTP metrics URL; empty disables the exporter
	OTLPInterval      time.Duration // export interval of the periodic reader
	RedisURL          string        // redis://...; empty disables the redis sink
	RedisChannel      string
}

func FromEnv() Config {
	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}
	logLevel := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if logLevel == "" {
		logLevel = "info"
	}
	logConsole, _ := strconv.ParseBool(os.Getenv("LOG_CONSOLE"))

	endpoints := os.Getenv("ENDPOINTS_FILE")
	if endpoints == "" {
		endpoints = "endpoints.yaml"
	}

	schedule := strings.TrimSpace(os.Getenv("RECONCILE_SCHEDULE"))
	if schedule == "" {
		schedule = "@every 1m"
	}

	redisChannel := os.Getenv("REDIS_CHANNEL")
	if redisChannel == "" {
		redisChannel = "custom.port.availability"
	}

	return Config{
		Addr:              addr,
		AdminAPIKeys:      splitList(os.Getenv("ADMIN_API_KEYS")),
		LogDir:            logDir,
		LogLevel:          logLevel,
		LogConsole:        logConsole,
		EndpointsFile:     endpoints,
		ReconcileSchedule: schedule,
		ShutdownTimeout:   envMillis("SHUTDOWN_TIMEOUT_MS", 5*time.Second),
		OTLPEndpoint:      os.Getenv("OTLP_ENDPOINT"),
		OTLPInterval:      envMillis("OTLP_INTERVAL_MS", 10*time.Second),
		RedisURL:          os.Getenv("REDIS_URL"),
		RedisChannel:      redisChannel,
	}
}

func envMillis(name string, def time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
