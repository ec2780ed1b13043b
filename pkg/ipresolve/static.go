package ipresolve

import (
	"context"
	"net/netip"
)

// StaticResolver always returns a fixed address. It backs the manual IP
// override flag, where the caller already knows the address to publish.
type StaticResolver struct {
	addr netip.Addr
}

// NewStaticResolver creates a resolver pinned to the given IPv4 literal.
func NewStaticResolver(ip string) (*StaticResolver, error) {
	addr, err := ParseIPv4(ip)
	if err != nil {
		return nil, err
	}
	return &StaticResolver{addr: addr}, nil
}

var _ Resolver = (*StaticResolver)(nil)

// Resolve returns the fixed address.
func (r *StaticResolver) Resolve(_ context.Context) (netip.Addr, error) {
	return r.addr, nil
}
