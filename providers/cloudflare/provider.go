package cloudflare

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/karstloch/dnspin/pkg/dnsname"
	"github.com/karstloch/dnspin/pkg/provider"
)

// Name identifies this provider in logs and wrapped errors.
const Name = "cloudflare"

// Provider implements provider.Provider for Cloudflare DNS.
//
// Zone lookup is uncached: callers re-resolve the zone every reconciliation
// cycle, so a renamed or migrated zone is noticed without a restart.
type Provider struct {
	client *Client
	logger *slog.Logger
}

// New creates a Cloudflare provider. Client options (shared HTTP client,
// logger, endpoint override) are applied to the underlying API client; an
// endpoint set in config takes effect before the options.
func New(config *Config, opts ...ClientOption) (*Provider, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientOpts := make([]ClientOption, 0, len(opts)+1)
	clientOpts = append(clientOpts, WithAPIEndpoint(config.APIEndpoint))
	clientOpts = append(clientOpts, opts...)

	client := NewClient(config.APIToken, clientOpts...)

	return &Provider{
		client: client,
		logger: client.logger,
	}, nil
}

// Name returns "cloudflare".
func (p *Provider) Name() string {
	return Name
}

// Ping verifies the API is reachable and the token is valid.
func (p *Provider) Ping(ctx context.Context) error {
	return provider.WrapError(Name, "verify token", p.client.VerifyToken(ctx))
}

// LocateZone resolves the zone responsible for fqdn: derive the apex domain,
// list every zone visible to the token, and require exactly one zone with
// that name. Zero and more-than-one both fail; zone names are unique by
// provider contract, so a duplicate is surfaced rather than resolved to the
// first match.
func (p *Provider) LocateZone(ctx context.Context, fqdn string) (provider.Zone, error) {
	apex := dnsname.Apex(fqdn)

	zones, err := p.client.ListZones(ctx)
	if err != nil {
		return provider.Zone{}, provider.WrapError(Name, "list zones", err)
	}

	var matches []zone
	for _, z := range zones {
		if dnsname.Normalize(z.Name) == apex {
			matches = append(matches, z)
		}
	}

	switch len(matches) {
	case 1:
		// exactly one owner
	case 0:
		return provider.Zone{}, provider.WrapError(Name, "locate zone",
			fmt.Errorf("%w: no zone named %q (apex of %q) among %d visible zones",
				provider.ErrZoneNotFound, apex, fqdn, len(zones)))
	default:
		return provider.Zone{}, provider.WrapError(Name, "locate zone",
			fmt.Errorf("%w: %d zones named %q, expected exactly one",
				provider.ErrZoneNotFound, len(matches), apex))
	}

	located := provider.Zone{
		ID:   matches[0].ID,
		Name: dnsname.Normalize(matches[0].Name),
	}

	p.logger.Debug("located zone",
		slog.String("domain", fqdn),
		slog.String("zone", located.Name),
		slog.String("zone_id", located.ID),
	)

	return located, nil
}

// ListRecords returns the records in the zone matching name and type.
func (p *Provider) ListRecords(ctx context.Context, zoneID, name string, recordType provider.RecordType) ([]provider.Record, error) {
	records, err := p.client.ListRecords(ctx, zoneID, dnsname.Normalize(name), string(recordType))
	if err != nil {
		return nil, provider.WrapError(Name, "list records", err)
	}

	out := make([]provider.Record, 0, len(records))
	for _, r := range records {
		out = append(out, toRecord(r))
	}

	return out, nil
}

// CreateRecord adds a record to the zone.
func (p *Provider) CreateRecord(ctx context.Context, zoneID string, spec provider.RecordSpec) (provider.Record, error) {
	created, err := p.client.CreateRecord(ctx, zoneID, toRequest(spec))
	if err != nil {
		return provider.Record{}, provider.WrapError(Name, "create record", err)
	}
	return toRecord(created), nil
}

// UpdateRecord replaces the record identified by recordID.
func (p *Provider) UpdateRecord(ctx context.Context, zoneID, recordID string, spec provider.RecordSpec) (provider.Record, error) {
	updated, err := p.client.UpdateRecord(ctx, zoneID, recordID, toRequest(spec))
	if err != nil {
		return provider.Record{}, provider.WrapError(Name, "update record", err)
	}
	return toRecord(updated), nil
}

// toRecord maps an API record to the provider-neutral shape.
func toRecord(r dnsRecord) provider.Record {
	return provider.Record{
		ID:      r.ID,
		ZoneID:  r.ZoneID,
		Name:    r.Name,
		Type:    provider.RecordType(r.Type),
		Content: r.Content,
		Proxied: r.Proxied,
		TTL:     r.TTL,
	}
}

// toRequest maps a desired spec to the API request shape.
func toRequest(spec provider.RecordSpec) recordRequest {
	return recordRequest{
		Type:    string(spec.Type),
		Name:    spec.Name,
		Content: spec.Content,
		TTL:     spec.TTL,
		Proxied: spec.Proxied,
	}
}

// Ensure Provider implements provider.Provider at compile time.
var _ provider.Provider = (*Provider)(nil)
