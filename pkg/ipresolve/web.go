package ipresolve

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/karstloch/dnspin/pkg/httputil"
)

// DefaultEndpoint is the public-IP service queried when none is configured.
const DefaultEndpoint = "https://api.ipify.org"

// maxBodyBytes bounds how much of the response body is read. A dotted-quad
// address needs 15 bytes; anything much larger is not an IP service.
const maxBodyBytes = 256

// WebResolver fetches the public IPv4 address from a plain-text HTTP service
// (api.ipify.org and friends). Only the first line of the body is considered.
type WebResolver struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// WebOption is a functional option for configuring the WebResolver.
type WebOption func(*WebResolver)

// WithHTTPClient sets the HTTP client used for lookups. The shared
// process-wide client should be passed here.
func WithHTTPClient(client *http.Client) WebOption {
	return func(r *WebResolver) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithLogger sets a custom logger for the resolver.
func WithLogger(logger *slog.Logger) WebOption {
	return func(r *WebResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewWebResolver creates a resolver against the given plain-text IP service.
// An empty endpoint selects DefaultEndpoint.
func NewWebResolver(endpoint string, opts ...WebOption) *WebResolver {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	r := &WebResolver{
		endpoint:   endpoint,
		httpClient: httputil.DefaultClient(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

var _ Resolver = (*WebResolver)(nil)

// Resolve performs a single GET against the configured endpoint and parses
// the first line of the body as an IPv4 address.
func (r *WebResolver) Resolve(ctx context.Context) (netip.Addr, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("building request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: GET %s: %v", ErrLookup, r.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return netip.Addr{}, fmt.Errorf("%w: GET %s: unexpected status %d", ErrLookup, r.endpoint, resp.StatusCode)
	}

	line, err := bufio.NewReader(io.LimitReader(resp.Body, maxBodyBytes)).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return netip.Addr{}, fmt.Errorf("%w: reading response from %s: %v", ErrLookup, r.endpoint, err)
	}

	addr, err := ParseIPv4(line)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("GET %s: %w", r.endpoint, err)
	}

	r.logger.Debug("resolved public ip",
		slog.String("ip", addr.String()),
		slog.String("endpoint", r.endpoint),
	)

	return addr, nil
}
