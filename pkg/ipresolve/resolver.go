// Package ipresolve discovers the host's current public IPv4 address.
//
// A Resolver performs exactly one lookup per call: no internal retries, no
// caching, no side effects. Retry policy belongs to the update loop. Lookup
// responses are untrusted text and must parse as a dotted-quad IPv4 address
// before use; transport failures and malformed responses are distinct error
// classes so callers can treat them differently.
package ipresolve

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

// Common resolver errors.
var (
	// ErrLookup indicates the lookup itself failed: connection error,
	// timeout, or an unexpected status from the IP service.
	ErrLookup = errors.New("public ip lookup failed")

	// ErrBadAddress indicates the service responded, but the body did not
	// parse as an IPv4 address.
	ErrBadAddress = errors.New("response is not an IPv4 address")
)

// Resolver discovers the host's current public IPv4 address.
type Resolver interface {
	Resolve(ctx context.Context) (netip.Addr, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context) (netip.Addr, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context) (netip.Addr, error) {
	return f(ctx)
}

// ParseIPv4 parses untrusted text as a dotted-quad IPv4 address. Surrounding
// whitespace is tolerated; IPv6 addresses (including 4-in-6 forms) are
// rejected, since only A records are in scope.
func ParseIPv4(s string) (netip.Addr, error) {
	trimmed := strings.TrimSpace(s)

	addr, err := netip.ParseAddr(trimmed)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %q", ErrBadAddress, truncate(trimmed, 64))
	}
	if !addr.Is4() {
		return netip.Addr{}, fmt.Errorf("%w: %q is not IPv4", ErrBadAddress, trimmed)
	}
	return addr, nil
}

// truncate shortens untrusted text before it lands in an error message.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
