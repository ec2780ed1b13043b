package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/karstloch/dnspin/internal/reconciler"
	"github.com/karstloch/dnspin/internal/updater"
	"github.com/karstloch/dnspin/pkg/ipresolve"
)

var (
	flagIP string

	updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Update the record once and exit",
		Long: `Perform a single update cycle: resolve the public IP (or take it from
--ip), locate the zone, and create or update the record. Exits non-zero on
any failure.`,
		RunE: runUpdate,
	}
)

func init() {
	updateCmd.Flags().StringVar(&flagIP, "ip", "", "publish this IPv4 address instead of discovering it")
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	httpClient := newHTTPClient(cfg, logger)

	prov, err := buildProvider(cfg, httpClient, logger)
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}

	var resolver ipresolve.Resolver
	if flagIP != "" {
		resolver, err = ipresolve.NewStaticResolver(flagIP)
		if err != nil {
			return fmt.Errorf("invalid --ip value: %w", err)
		}
	} else {
		resolver, err = buildResolver(cfg, httpClient, logger)
		if err != nil {
			return fmt.Errorf("creating ip resolver: %w", err)
		}
	}

	rec := reconciler.New(prov, reconciler.WithLogger(logger))

	upd := updater.New(prov, resolver, rec, updater.Config{
		Domain:  cfg.Domain,
		Proxied: cfg.Proxied,
		Timeout: cfg.Timeout,
	}, updater.WithLogger(logger))

	if err := upd.RunOnce(ctx); err != nil {
		return err
	}

	logger.Info("update complete", slog.String("domain", cfg.Domain))
	return nil
}
