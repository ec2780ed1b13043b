package cloudflare

import (
	"errors"
	"net/url"

	"github.com/karstloch/dnspin/pkg/provider"
)

// Config holds Cloudflare-specific configuration. The token is sourced by
// the caller (flag, environment, or secret file) and is read-only after
// startup.
type Config struct {
	// APIToken authenticates every request (Bearer authentication). It needs
	// Zone.Zone:Read and Zone.DNS:Edit permissions on the target zone.
	APIToken string

	// APIEndpoint overrides the API base URL. Defaults to DefaultAPIEndpoint.
	APIEndpoint string
}

// Validate checks that all required configuration is present. Failures are
// reported as provider.ConfigError values, joined when more than one field
// is wrong.
func (c *Config) Validate() error {
	var errs []error

	if c.APIToken == "" {
		errs = append(errs, provider.ErrConfigMissing("api_token"))
	}
	if c.APIEndpoint != "" {
		u, err := url.Parse(c.APIEndpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, provider.ErrConfigInvalid("api_endpoint", c.APIEndpoint, "must be an absolute URL"))
		}
	}

	return errors.Join(errs...)
}
