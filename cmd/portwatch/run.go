package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/portwatch/internal/config"
	"github.com/hamed0406/portwatch/internal/extension"
	"github.com/hamed0406/portwatch/internal/httpapi"
	"github.com/hamed0406/portwatch/internal/logging"
	"github.com/hamed0406/portwatch/internal/probe"
	"github.com/hamed0406/portwatch/internal/scheduler"
	"github.com/hamed0406/portwatch/internal/sink"
)

var runCfg = config.FromEnv()

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitor until interrupted",
	Long: `Run the monitor. The endpoint file is re-read on every reconcile, so new
endpoints are picked up without a restart. Endpoints removed from the file keep
being probed until the process exits.

Examples:
  portwatch run --endpoints endpoints.yaml
  portwatch run --otlp-endpoint http://localhost:4318/v1/metrics --schedule "@every 30s"`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVar(&runCfg.EndpointsFile, "endpoints", runCfg.EndpointsFile, "YAML endpoint file")
	f.StringVar(&runCfg.Addr, "addr", runCfg.Addr, "admin API listen address (empty disables it)")
	f.StringVar(&runCfg.LogDir, "log-dir", runCfg.LogDir, "log directory")
	f.StringVar(&runCfg.LogLevel, "log-level", runCfg.LogLevel, "debug, info, warn or error")
	f.BoolVar(&runCfg.LogConsole, "log-console", runCfg.LogConsole, "also log to stderr")
	f.StringVar(&runCfg.ReconcileSchedule, "schedule", runCfg.ReconcileSchedule, "cron spec for reconciling the endpoint list")
	f.DurationVar(&runCfg.ShutdownTimeout, "shutdown-timeout", runCfg.ShutdownTimeout, "how long to wait for checkers to exit")
	f.StringVar(&runCfg.OTLPEndpoint, "otlp-endpoint", runCfg.OTLPEndpoint, "OTLP/HTTP metrics URL (empty disables)")
	f.DurationVar(&runCfg.OTLPInterval, "otlp-interval", runCfg.OTLPInterval, "OTLP export interval")
	f.StringVar(&runCfg.RedisURL, "redis-url", runCfg.RedisURL, "publish samples to redis (empty disables)")
	f.StringVar(&runCfg.RedisChannel, "redis-channel", runCfg.RedisChannel, "redis pub/sub channel")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg := runCfg
	logger, err := logging.NewLogger(logging.Options{Dir: cfg.LogDir, Level: cfg.LogLevel, Console: cfg.LogConsole})
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporters := sink.Multi{sink.LogReporter{Logger: logger}}
	var closers []func(context.Context) error

	if cfg.OTLPEndpoint != "" {
		mp, err := sink.NewOTLPProvider(ctx, cfg.OTLPEndpoint, cfg.OTLPInterval)
		if err != nil {
			return err
		}
		reporters = append(reporters, sink.NewOTelReporter(mp))
		closers = append(closers, mp.Shutdown)
		logger.Info("sink_otlp_enabled", zap.String("endpoint", cfg.OTLPEndpoint))
	}
	if cfg.RedisURL != "" {
		client, err := sink.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		reporters = append(reporters, sink.NewRedisReporter(client, cfg.RedisChannel))
		closers = append(closers, func(context.Context) error { return client.Close() })
		logger.Info("sink_redis_enabled", zap.String("channel", cfg.RedisChannel))
	}

	reg := scheduler.NewRegistry(logger, probe.NewTCPChecker(), reporters)
	ext := extension.New(logger, config.FileSource{Path: cfg.EndpointsFile}, reg)
	for _, c := range closers {
		ext.OnShutdown(c)
	}

	var srv *http.Server
	if cfg.Addr != "" {
		srv = &http.Server{
			Addr:              cfg.Addr,
			Handler:           httpapi.NewServer(logger, ext, cfg.AdminAPIKeys).Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("api_listen", zap.String("addr", cfg.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("api_listen_error", zap.Error(err))
			}
		}()
	}

	runner := &extension.Runner{Ext: ext, Schedule: cfg.ReconcileSchedule, Logger: logger}
	runErr := runner.Run(ctx, func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	})

	if srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}
	return runErr
}
