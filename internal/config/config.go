// Package config handles loading and validation of dnspin configuration.
//
// Settings are layered: built-in defaults, then an optional config file
// (YAML or TOML), then DNSPIN_* environment variables. Command-line flags
// are applied on top by the caller.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/karstloch/dnspin/pkg/dnsname"
)

// Public IP lookup strategies.
const (
	// IPStrategyWeb asks an HTTPS endpoint that echoes the caller's address.
	IPStrategyWeb = "web"
	// IPStrategyDNS asks a resolver service that answers with the caller's
	// address (OpenDNS or Cloudflare).
	IPStrategyDNS = "dns"
)

// Configuration defaults.
const (
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	DefaultProxied    = true
	DefaultInterval   = 5 * time.Minute
	DefaultTimeout    = 10 * time.Second
	DefaultIPStrategy = IPStrategyWeb
)

// Config holds the complete runtime configuration.
type Config struct {
	// Domain is the fully qualified record name kept pointed at the
	// current public IP.
	Domain string

	// Proxied routes the record through Cloudflare's proxy layer.
	Proxied bool

	// Interval is the sleep between update cycles.
	Interval time.Duration

	// Timeout bounds each network call: one IP lookup or one provider
	// API request.
	Timeout time.Duration

	// IPStrategy selects how the public IP is discovered: "web" or "dns".
	IPStrategy string

	// IPSource refines the strategy: an endpoint URL for "web", a service
	// name ("opendns" or "cloudflare") for "dns". Empty selects the
	// built-in default.
	IPSource string

	// APIToken authenticates against the Cloudflare API.
	APIToken string

	// APIEndpoint overrides the Cloudflare API base URL.
	APIEndpoint string

	// HealthAddr is the listen address for /health, /ready, and /metrics.
	// Empty disables the server.
	HealthAddr string

	// Logging configuration
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Proxied:    DefaultProxied,
		Interval:   DefaultInterval,
		Timeout:    DefaultTimeout,
		IPStrategy: DefaultIPStrategy,
		LogLevel:   DefaultLogLevel,
		LogFormat:  DefaultLogFormat,
	}
}

// ValidationError aggregates every problem found in a configuration.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration error: %s", e.Errors[0])
	}
	return fmt.Sprintf("configuration errors:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks the complete configuration, collecting every error rather
// than stopping at the first.
func (c *Config) Validate() error {
	var errs []string

	if c.Domain == "" {
		errs = append(errs, "domain is required")
	} else if err := dnsname.Validate(c.Domain); err != nil {
		errs = append(errs, err.Error())
	}

	if c.APIToken == "" {
		errs = append(errs, "api token is required (set DNSPIN_API_TOKEN or DNSPIN_API_TOKEN_FILE)")
	}

	if c.Interval < time.Second {
		errs = append(errs, fmt.Sprintf("interval must be at least 1s, got %s", c.Interval))
	}
	if c.Timeout < time.Second {
		errs = append(errs, fmt.Sprintf("timeout must be at least 1s, got %s", c.Timeout))
	}

	switch c.IPStrategy {
	case IPStrategyWeb:
		if c.IPSource != "" {
			u, err := url.Parse(c.IPSource)
			if err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, fmt.Sprintf("ip source %q is not an absolute URL", c.IPSource))
			}
		}
	case IPStrategyDNS:
		switch c.IPSource {
		case "", "opendns", "cloudflare":
			// Valid
		default:
			errs = append(errs, fmt.Sprintf("ip source %q unknown for the dns strategy (use opendns or cloudflare)", c.IPSource))
		}
	default:
		errs = append(errs, fmt.Sprintf("ip strategy %q invalid (must be web or dns)", c.IPStrategy))
	}

	if c.APIEndpoint != "" {
		u, err := url.Parse(c.APIEndpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("api endpoint %q is not an absolute URL", c.APIEndpoint))
		}
	}

	if c.HealthAddr != "" {
		if _, _, err := net.SplitHostPort(c.HealthAddr); err != nil {
			errs = append(errs, fmt.Sprintf("health addr %q is not a host:port listen address", c.HealthAddr))
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		errs = append(errs, fmt.Sprintf("log level %q invalid (must be debug, info, warn, or error)", c.LogLevel))
	}

	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
		// Valid
	default:
		errs = append(errs, fmt.Sprintf("log format %q invalid (must be json or text)", c.LogFormat))
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}
