package main

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/karstloch/dnspin/internal/health"
	"github.com/karstloch/dnspin/internal/metrics"
	"github.com/karstloch/dnspin/internal/reconciler"
	"github.com/karstloch/dnspin/internal/updater"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the update loop until signalled",
	Long: `Run the update loop: resolve the public IP, reconcile the record, sleep
for the interval, repeat. The loop exits cleanly on SIGINT or SIGTERM.

Startup fails, with a non-zero exit, when the API token is unresolvable or
the zone for the domain cannot be found. Failures during steady-state
cycles are logged and retried at the next interval.`,
	RunE: runDaemon,
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	metrics.SetBuildInfo(Version, runtime.Version())

	logger.Info("dnspin starting",
		slog.String("version", Version),
		slog.String("build_date", BuildDate),
		slog.String("go_version", runtime.Version()),
		slog.String("domain", cfg.Domain),
		slog.String("ip_strategy", cfg.IPStrategy),
	)

	httpClient := newHTTPClient(cfg, logger)

	prov, err := buildProvider(cfg, httpClient, logger)
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}

	resolver, err := buildResolver(cfg, httpClient, logger)
	if err != nil {
		return fmt.Errorf("creating ip resolver: %w", err)
	}

	rec := reconciler.New(prov, reconciler.WithLogger(logger))

	upd := updater.New(prov, resolver, rec, updater.Config{
		Domain:   cfg.Domain,
		Proxied:  cfg.Proxied,
		Interval: cfg.Interval,
		Timeout:  cfg.Timeout,
	}, updater.WithLogger(logger))

	var healthServer *health.Server
	if cfg.HealthAddr != "" {
		healthServer = health.New(cfg.HealthAddr, health.WithLogger(logger))
		healthServer.RegisterChecker("updater", upd.Ready)
		healthServer.RegisterChecker("provider:"+prov.Name(), prov.Ping)
		healthServer.RegisterDegradedChecker("update_loop", func(_ context.Context) (bool, string) {
			if err := upd.Healthy(); err != nil {
				return true, err.Error()
			}
			return false, ""
		})

		if err := healthServer.Start(); err != nil {
			return fmt.Errorf("starting health server: %w", err)
		}
	}

	runErr := upd.Run(ctx)

	if healthServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown error", slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		return runErr
	}

	logger.Info("dnspin shutdown complete")
	return nil
}
