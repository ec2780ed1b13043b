package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Load builds the runtime configuration: defaults first, then the config
// file at path (falling back to DNSPIN_CONFIG when path is empty), then
// DNSPIN_* environment variables on top.
//
// The result is not validated; callers overlay flag values first and then
// call Validate.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var errs []string

	if path == "" {
		path = getEnv("CONFIG")
	}
	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		slog.Debug("loaded configuration from file", slog.String("path", path))
		errs = append(errs, fileCfg.apply(cfg)...)
	}

	errs = append(errs, applyEnv(cfg)...)

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return cfg, nil
}

// applyEnv overlays DNSPIN_* environment variables onto cfg. Set variables
// always win over file values.
func applyEnv(cfg *Config) []string {
	var errs []string

	if v := getEnv("DOMAIN"); v != "" {
		cfg.Domain = v
	}
	if v := getEnv("PROXIED"); v != "" {
		cfg.Proxied = parseBool(v, cfg.Proxied)
	}

	if v := getEnv("INTERVAL"); v != "" {
		if interval, err := time.ParseDuration(v); err == nil {
			cfg.Interval = interval
		} else {
			errs = append(errs, fmt.Sprintf("DNSPIN_INTERVAL: invalid duration %q (use format like 60s, 5m)", v))
		}
	}
	if v := getEnv("TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = timeout
		} else {
			errs = append(errs, fmt.Sprintf("DNSPIN_TIMEOUT: invalid duration %q", v))
		}
	}

	if v := getEnv("IP_STRATEGY"); v != "" {
		cfg.IPStrategy = strings.ToLower(v)
	}
	if v := getEnv("IP_SOURCE"); v != "" {
		cfg.IPSource = v
	}

	if v := getEnvWithFileFallback("API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := getEnv("API_ENDPOINT"); v != "" {
		cfg.APIEndpoint = v
	}

	if v := getEnv("HEALTH_ADDR"); v != "" {
		cfg.HealthAddr = v
	}

	if v := getEnv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getEnv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}

	return errs
}
