// dnspin keeps a DNS A record pointed at the host's current public IPv4
// address. It discovers the address on an interval, locates the Cloudflare
// zone for the configured domain, and creates or updates the record so the
// name keeps resolving to the host across address changes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/karstloch/dnspin/internal/config"
	"github.com/karstloch/dnspin/pkg/httputil"
	"github.com/karstloch/dnspin/pkg/ipresolve"
	"github.com/karstloch/dnspin/pkg/provider"
	"github.com/karstloch/dnspin/providers/cloudflare"
)

// Version and BuildDate are set via ldflags during build.
// Example: -ldflags="-X main.Version=v1.0.0 -X main.BuildDate=2026-08-22"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

var (
	flagConfig     string
	flagDomain     string
	flagToken      string
	flagNoProxy    bool
	flagInterval   time.Duration
	flagTimeout    time.Duration
	flagIPStrategy string
	flagIPSource   string
	flagHealthAddr string
	flagLogLevel   string
	flagLogFormat  string

	rootCmd = &cobra.Command{
		Use:   "dnspin",
		Short: "Pin a DNS A record to this host's public IP",
		Long: `dnspin keeps a single DNS A record pointed at the host's current public
IPv4 address. Each cycle discovers the address, locates the Cloudflare zone
for the configured domain, and creates or updates the record in place.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	// A .env file is optional; ignore when absent.
	_ = godotenv.Load()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to a YAML or TOML config file")
	pf.StringVarP(&flagDomain, "domain", "d", "", "fully qualified record name to manage")
	pf.StringVar(&flagToken, "token", "", "Cloudflare API token (prefer DNSPIN_API_TOKEN)")
	pf.BoolVar(&flagNoProxy, "no-proxy", false, "publish the origin IP instead of proxying through the edge")
	pf.DurationVar(&flagInterval, "interval", config.DefaultInterval, "time between update cycles")
	pf.DurationVar(&flagTimeout, "timeout", config.DefaultTimeout, "network timeout for one update cycle")
	pf.StringVar(&flagIPStrategy, "ip-strategy", "", "public IP discovery strategy (web or dns)")
	pf.StringVar(&flagIPSource, "ip-source", "", "IP service URL (web) or echo service name (dns)")
	pf.StringVar(&flagHealthAddr, "health-addr", "", "listen address for health and metrics endpoints")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "", "log format (json or text)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadConfig layers flag values over the loaded configuration and validates
// the result. Flags win over environment variables and file values.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("domain") {
		cfg.Domain = flagDomain
	}
	if flags.Changed("token") {
		cfg.APIToken = flagToken
	}
	if flags.Changed("no-proxy") {
		cfg.Proxied = !flagNoProxy
	}
	if flags.Changed("interval") {
		cfg.Interval = flagInterval
	}
	if flags.Changed("timeout") {
		cfg.Timeout = flagTimeout
	}
	if flags.Changed("ip-strategy") {
		cfg.IPStrategy = strings.ToLower(flagIPStrategy)
	}
	if flags.Changed("ip-source") {
		cfg.IPSource = flagIPSource
	}
	if flags.Changed("health-addr") {
		cfg.HealthAddr = flagHealthAddr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = strings.ToLower(flagLogLevel)
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = strings.ToLower(flagLogFormat)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setupLogger(level, format string) *slog.Logger {
	logLevel := parseLogLevel(level)

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}

	return slog.New(handler)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newHTTPClient builds the process-wide HTTP client shared by the provider
// and the web IP resolver.
func newHTTPClient(cfg *config.Config, logger *slog.Logger) *http.Client {
	return httputil.NewClient(&httputil.ClientConfig{
		Timeout:   cfg.Timeout,
		UserAgent: "dnspin/" + Version,
		Logger:    logger,
	})
}

func buildProvider(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (provider.Provider, error) {
	return cloudflare.New(&cloudflare.Config{
		APIToken:    cfg.APIToken,
		APIEndpoint: cfg.APIEndpoint,
	},
		cloudflare.WithHTTPClient(httpClient),
		cloudflare.WithLogger(logger),
	)
}

func buildResolver(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (ipresolve.Resolver, error) {
	switch cfg.IPStrategy {
	case config.IPStrategyDNS:
		service := ipresolve.ServiceOpenDNS
		if cfg.IPSource != "" {
			service = ipresolve.DNSService(cfg.IPSource)
		}
		return ipresolve.NewDNSResolver(service,
			ipresolve.WithDNSTimeout(cfg.Timeout),
			ipresolve.WithDNSLogger(logger),
		)
	default:
		return ipresolve.NewWebResolver(cfg.IPSource,
			ipresolve.WithHTTPClient(httpClient),
			ipresolve.WithLogger(logger),
		), nil
	}
}
