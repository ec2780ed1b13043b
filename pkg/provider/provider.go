// Package provider defines the interface a DNS provider must implement for
// record reconciliation, plus the zone and record types exchanged with it.
package provider

import "context"

// RecordType represents the type of DNS record.
type RecordType string

const (
	RecordTypeA RecordType = "A"
)

// TTLAuto is the provider sentinel for "automatic" TTL, the minimum value
// Cloudflare-style APIs accept. Record TTL is pinned to this value; it is not
// caller-configurable.
const TTLAuto = 1

// Zone is a provider-managed namespace for one apex domain.
type Zone struct {
	// ID is the provider's opaque zone identifier.
	ID string

	// Name is the apex domain the zone serves (e.g. "example.com").
	Name string
}

// Record represents a DNS record as stored by the provider.
type Record struct {
	// ID is the provider's opaque record identifier. Empty for a record that
	// does not exist yet.
	ID string

	// ZoneID is the identifier of the zone holding the record.
	ZoneID string

	// Name is the fully qualified record name.
	Name string

	// Type is the record type.
	Type RecordType

	// Content is the record value; an IPv4 literal for A records.
	Content string

	// Proxied routes traffic through the provider's edge proxy instead of
	// directly to the origin IP.
	Proxied bool

	// TTL is the record time-to-live in seconds; TTLAuto means the provider
	// chooses.
	TTL int
}

// RecordSpec is the desired shape of a record for create and update calls.
type RecordSpec struct {
	Name    string
	Type    RecordType
	Content string
	Proxied bool
	TTL     int
}

// Provider defines the operations record reconciliation needs from a DNS
// provider.
type Provider interface {
	// Name returns the provider name (e.g. "cloudflare").
	Name() string

	// Ping verifies connectivity and credentials.
	Ping(ctx context.Context) error

	// LocateZone resolves the zone responsible for a fully qualified domain
	// name. It fails with ErrZoneNotFound when zero zones, or more than one
	// zone, match the domain's apex.
	LocateZone(ctx context.Context, fqdn string) (Zone, error)

	// ListRecords returns the records in a zone matching name and type
	// exactly, exhausting pagination.
	ListRecords(ctx context.Context, zoneID, name string, recordType RecordType) ([]Record, error)

	// CreateRecord adds a new record to a zone and returns it as stored.
	CreateRecord(ctx context.Context, zoneID string, spec RecordSpec) (Record, error)

	// UpdateRecord replaces the record identified by recordID and returns it
	// as stored.
	UpdateRecord(ctx context.Context, zoneID, recordID string, spec RecordSpec) (Record, error)
}

// SpecEquals returns true if a stored record already matches a desired spec.
// Provider-specific IDs are not compared.
func SpecEquals(r Record, spec RecordSpec) bool {
	return r.Name == spec.Name &&
		r.Type == spec.Type &&
		r.Content == spec.Content &&
		r.Proxied == spec.Proxied &&
		r.TTL == spec.TTL
}
