package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileConfig represents the configuration file structure. Files may be YAML
// (.yaml, .yml) or TOML (.toml); the format is detected by extension.
type FileConfig struct {
	// Record settings
	Record *FileRecordConfig `yaml:"record,omitempty" toml:"record"`

	// Update loop settings
	Update *FileUpdateConfig `yaml:"update,omitempty" toml:"update"`

	// Public IP lookup settings
	IP *FileIPConfig `yaml:"ip,omitempty" toml:"ip"`

	// Cloudflare API settings
	Cloudflare *FileCloudflareConfig `yaml:"cloudflare,omitempty" toml:"cloudflare"`

	// Health and metrics server
	Server *FileServerConfig `yaml:"server,omitempty" toml:"server"`

	// Logging configuration
	Logging *FileLoggingConfig `yaml:"logging,omitempty" toml:"logging"`
}

// FileRecordConfig holds the managed record settings.
type FileRecordConfig struct {
	Domain  string `yaml:"domain" toml:"domain"`
	Proxied *bool  `yaml:"proxied,omitempty" toml:"proxied"` // Pointer to distinguish unset from false
}

// FileUpdateConfig holds update loop settings.
type FileUpdateConfig struct {
	Interval string `yaml:"interval,omitempty" toml:"interval"` // Go duration format (e.g., "5m")
	Timeout  string `yaml:"timeout,omitempty" toml:"timeout"`   // Per network call (e.g., "10s")
}

// FileIPConfig holds public IP lookup settings.
type FileIPConfig struct {
	Strategy string `yaml:"strategy,omitempty" toml:"strategy"` // web, dns
	Source   string `yaml:"source,omitempty" toml:"source"`     // endpoint URL or service name
}

// FileCloudflareConfig holds Cloudflare API settings.
type FileCloudflareConfig struct {
	APIToken    string `yaml:"api_token,omitempty" toml:"api_token"`
	APIEndpoint string `yaml:"api_endpoint,omitempty" toml:"api_endpoint"`
}

// FileServerConfig holds health/metrics server settings.
type FileServerConfig struct {
	Addr string `yaml:"addr,omitempty" toml:"addr"` // Listen address, e.g. ":8080"
}

// FileLoggingConfig holds logging settings.
type FileLoggingConfig struct {
	Level  string `yaml:"level,omitempty" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format,omitempty" toml:"format"` // json, text
}

// envVarPattern matches ${VAR} or ${VAR:-default} syntax.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// InterpolateEnvVars replaces ${VAR} patterns with environment variable
// values. Supports ${VAR:-default} syntax for default values.
func InterpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultValue := ""
		if len(groups) >= 3 {
			defaultValue = groups[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// interpolateEnvVars interpolates environment variables in all string
// fields of the config structure.
func (c *FileConfig) interpolateEnvVars() {
	if c.Record != nil {
		c.Record.Domain = InterpolateEnvVars(c.Record.Domain)
	}
	if c.Update != nil {
		c.Update.Interval = InterpolateEnvVars(c.Update.Interval)
		c.Update.Timeout = InterpolateEnvVars(c.Update.Timeout)
	}
	if c.IP != nil {
		c.IP.Strategy = InterpolateEnvVars(c.IP.Strategy)
		c.IP.Source = InterpolateEnvVars(c.IP.Source)
	}
	if c.Cloudflare != nil {
		c.Cloudflare.APIToken = InterpolateEnvVars(c.Cloudflare.APIToken)
		c.Cloudflare.APIEndpoint = InterpolateEnvVars(c.Cloudflare.APIEndpoint)
	}
	if c.Server != nil {
		c.Server.Addr = InterpolateEnvVars(c.Server.Addr)
	}
	if c.Logging != nil {
		c.Logging.Level = InterpolateEnvVars(c.Logging.Level)
		c.Logging.Format = InterpolateEnvVars(c.Logging.Format)
	}
}

// LoadFile reads and parses a configuration file, detecting format by
// extension. Supports YAML (.yml, .yaml) and TOML (.toml); unknown
// extensions are tried as YAML. Environment variables in ${VAR} format are
// interpolated after parsing.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing TOML config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	}

	cfg.interpolateEnvVars()

	return &cfg, nil
}

// apply overlays the file values onto cfg. Empty file fields leave cfg
// untouched. Malformed durations are reported as errors.
func (c *FileConfig) apply(cfg *Config) []string {
	var errs []string

	if c.Record != nil {
		if c.Record.Domain != "" {
			cfg.Domain = c.Record.Domain
		}
		if c.Record.Proxied != nil {
			cfg.Proxied = *c.Record.Proxied
		}
	}

	if c.Update != nil {
		if c.Update.Interval != "" {
			if interval, err := time.ParseDuration(c.Update.Interval); err == nil {
				cfg.Interval = interval
			} else {
				errs = append(errs, fmt.Sprintf("update.interval: invalid duration %q (use format like 60s, 5m)", c.Update.Interval))
			}
		}
		if c.Update.Timeout != "" {
			if timeout, err := time.ParseDuration(c.Update.Timeout); err == nil {
				cfg.Timeout = timeout
			} else {
				errs = append(errs, fmt.Sprintf("update.timeout: invalid duration %q", c.Update.Timeout))
			}
		}
	}

	if c.IP != nil {
		if c.IP.Strategy != "" {
			cfg.IPStrategy = strings.ToLower(c.IP.Strategy)
		}
		if c.IP.Source != "" {
			cfg.IPSource = c.IP.Source
		}
	}

	if c.Cloudflare != nil {
		if c.Cloudflare.APIToken != "" {
			cfg.APIToken = c.Cloudflare.APIToken
		}
		if c.Cloudflare.APIEndpoint != "" {
			cfg.APIEndpoint = c.Cloudflare.APIEndpoint
		}
	}

	if c.Server != nil && c.Server.Addr != "" {
		cfg.HealthAddr = c.Server.Addr
	}

	if c.Logging != nil {
		if c.Logging.Level != "" {
			cfg.LogLevel = strings.ToLower(c.Logging.Level)
		}
		if c.Logging.Format != "" {
			cfg.LogFormat = strings.ToLower(c.Logging.Format)
		}
	}

	return errs
}
