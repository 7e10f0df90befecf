// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"

	"github.com/hamed0406/portwatch/internal/config"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg := config.FromEnv()

	specs, err := config.LoadEndpoints(cfg.EndpointsFile)
	switch {
	case os.IsNotExist(err):
		fail("ENDPOINTS_FILE " + cfg.EndpointsFile + " does not exist.")
	case err != nil && len(specs) == 0 && len(multierr.Errors(err)) <= 1:
		fail("ENDPOINTS_FILE unreadable: " + err.Error())
	case err != nil:
		for _, e := range multierr.Errors(err) {
			warn("rejected: " + e.Error())
		}
	}
	if len(specs) == 0 {
		warn("no valid endpoints — nothing will be monitored until the file changes.")
	} else {
		ok(fmt.Sprintf("%d endpoint(s) in %s", len(specs), cfg.EndpointsFile))
	}

	if _, err := cron.ParseStandard(cfg.ReconcileSchedule); err != nil {
		fail("RECONCILE_SCHEDULE invalid: " + err.Error())
	}
	ok("RECONCILE_SCHEDULE=" + cfg.ReconcileSchedule)

	if cfg.Addr == "" {
		warn("API_ADDR is empty; the admin API is disabled.")
	} else {
		ok("API_ADDR=" + cfg.Addr)
		if len(cfg.AdminAPIKeys) == 0 && !strings.HasPrefix(cfg.Addr, "127.0.0.1") && !strings.HasPrefix(cfg.Addr, "localhost") {
			warn("ADMIN_API_KEYS empty on a non-loopback address — anyone can trigger a reconcile.")
		}
	}

	if cfg.OTLPEndpoint == "" && cfg.RedisURL == "" {
		warn("no OTLP_ENDPOINT or REDIS_URL — samples only go to the log.")
	}
	if cfg.OTLPEndpoint != "" {
		ok("OTLP_ENDPOINT=" + cfg.OTLPEndpoint)
	}
	if cfg.RedisURL != "" {
		ok("REDIS_URL present, channel " + cfg.RedisChannel)
	}

	ok("preflight passed")
}
