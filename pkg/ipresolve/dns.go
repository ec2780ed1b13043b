package ipresolve

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"time"

	"github.com/miekg/dns"
)

// DNSService identifies a resolver service that echoes the querying address
// over the DNS protocol itself. Useful when outbound HTTP is filtered or the
// usual IP services are unreachable.
type DNSService string

const (
	// ServiceOpenDNS asks resolver1.opendns.com for myip.opendns.com (A/IN).
	ServiceOpenDNS DNSService = "opendns"

	// ServiceCloudflare asks one.one.one.one for whoami.cloudflare (TXT/CH).
	ServiceCloudflare DNSService = "cloudflare"
)

// Query targets per service.
const (
	openDNSServer    = "resolver1.opendns.com:53"
	openDNSName      = "myip.opendns.com."
	cloudflareServer = "one.one.one.one:53"
	cloudflareName   = "whoami.cloudflare."
)

// DefaultDNSTimeout bounds a single DNS exchange.
const DefaultDNSTimeout = 10 * time.Second

// DNSResolver fetches the public IPv4 address by querying a DNS service that
// answers with the client's own address.
type DNSResolver struct {
	service DNSService
	server  string
	client  *dns.Client
	logger  *slog.Logger
}

// DNSOption is a functional option for configuring the DNSResolver.
type DNSOption func(*DNSResolver)

// WithDNSTimeout sets the timeout for one DNS exchange.
func WithDNSTimeout(timeout time.Duration) DNSOption {
	return func(r *DNSResolver) {
		if timeout > 0 {
			r.client.Timeout = timeout
		}
	}
}

// WithDNSServer overrides the server queried for the service. Mostly useful
// in tests.
func WithDNSServer(server string) DNSOption {
	return func(r *DNSResolver) {
		if server != "" {
			r.server = server
		}
	}
}

// WithDNSLogger sets a custom logger for the resolver.
func WithDNSLogger(logger *slog.Logger) DNSOption {
	return func(r *DNSResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewDNSResolver creates a resolver backed by the given echo service.
func NewDNSResolver(service DNSService, opts ...DNSOption) (*DNSResolver, error) {
	r := &DNSResolver{
		service: service,
		client:  &dns.Client{Net: "udp", Timeout: DefaultDNSTimeout},
		logger:  slog.Default(),
	}

	switch service {
	case ServiceOpenDNS:
		r.server = openDNSServer
	case ServiceCloudflare:
		r.server = cloudflareServer
	default:
		return nil, fmt.Errorf("unknown dns ip service %q", service)
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

var _ Resolver = (*DNSResolver)(nil)

// Resolve performs one DNS exchange against the service and extracts the
// echoed address from the answer section.
func (r *DNSResolver) Resolve(ctx context.Context) (netip.Addr, error) {
	msg := new(dns.Msg)
	switch r.service {
	case ServiceOpenDNS:
		msg.SetQuestion(openDNSName, dns.TypeA)
	case ServiceCloudflare:
		msg.SetQuestion(cloudflareName, dns.TypeTXT)
		msg.Question[0].Qclass = dns.ClassCHAOS
	}

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: querying %s: %v", ErrLookup, r.server, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return netip.Addr{}, fmt.Errorf("%w: %s answered %s", ErrLookup, r.server, dns.RcodeToString[resp.Rcode])
	}

	addr, err := addrFromAnswer(r.service, resp)
	if err != nil {
		return netip.Addr{}, err
	}

	r.logger.Debug("resolved public ip",
		slog.String("ip", addr.String()),
		slog.String("service", string(r.service)),
		slog.String("server", r.server),
	)

	return addr, nil
}

// addrFromAnswer extracts the echoed IPv4 address from a response message.
func addrFromAnswer(service DNSService, resp *dns.Msg) (netip.Addr, error) {
	switch service {
	case ServiceOpenDNS:
		for _, rr := range resp.Answer {
			a, ok := rr.(*dns.A)
			if !ok {
				continue
			}
			ip4 := a.A.To4()
			if ip4 == nil {
				continue
			}
			return netip.AddrFrom4([4]byte(ip4)), nil
		}
	case ServiceCloudflare:
		for _, rr := range resp.Answer {
			if txt, ok := rr.(*dns.TXT); ok && len(txt.Txt) > 0 {
				return ParseIPv4(txt.Txt[0])
			}
		}
	}
	return netip.Addr{}, fmt.Errorf("%w: answer contained no IPv4 address", ErrBadAddress)
}
