// Package reconciler converges a single DNS A record on a desired public IP
// through a provider. Each run looks up the authoritative zone, inspects the
// current record set for the exact name, and issues exactly one create or
// update.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"time"

	"github.com/karstloch/dnspin/internal/metrics"
	"github.com/karstloch/dnspin/pkg/dnsname"
	"github.com/karstloch/dnspin/pkg/provider"
)

// DesiredState describes the record a reconciliation run converges on.
type DesiredState struct {
	// Domain is the fully qualified record name, e.g. "home.example.com".
	Domain string

	// IP is the IPv4 address the record should point at.
	IP netip.Addr

	// Proxied routes the record through the provider's proxy layer.
	Proxied bool
}

// Reconciler drives a single A record to the desired state.
//
// Runs are stateless with respect to each other: the zone is located and the
// record set listed fresh on every run, so zone migrations and out-of-band
// record edits between runs are observed without a restart.
type Reconciler struct {
	provider provider.Provider
	logger   *slog.Logger
}

// Option is a functional option for configuring the Reconciler.
type Option func(*Reconciler)

// WithLogger sets a custom logger for the reconciler.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// New creates a Reconciler that applies changes through p.
func New(p provider.Provider, opts ...Option) *Reconciler {
	r := &Reconciler{
		provider: p,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Reconcile makes the A record for desired.Domain carry desired.IP.
//
// The decision depends only on the records the provider reports for the
// exact name and type A:
//   - no record: create one
//   - exactly one record: rewrite it in place, keyed by its id, including
//     when the stored content already matches
//   - more than one record: fail with provider.ErrRecordAmbiguous and leave
//     every record untouched
func (r *Reconciler) Reconcile(ctx context.Context, desired DesiredState) (*Result, error) {
	if !desired.IP.Is4() {
		return nil, fmt.Errorf("desired address %q is not IPv4", desired.IP)
	}
	domain := dnsname.Normalize(desired.Domain)

	result := NewResult(domain)

	start := time.Now()
	zone, err := r.provider.LocateZone(ctx, domain)
	observeAPICall("locate_zone", start, err)
	if err != nil {
		return nil, fmt.Errorf("locating zone for %q: %w", domain, err)
	}
	result.Zone = zone

	start = time.Now()
	records, err := r.provider.ListRecords(ctx, zone.ID, domain, provider.RecordTypeA)
	observeAPICall("list_records", start, err)
	if err != nil {
		return nil, fmt.Errorf("listing records for %q: %w", domain, err)
	}

	spec := provider.RecordSpec{
		Name:    domain,
		Type:    provider.RecordTypeA,
		Content: desired.IP.String(),
		Proxied: desired.Proxied,
		TTL:     provider.TTLAuto,
	}

	switch len(records) {
	case 0:
		if err := r.create(ctx, zone, spec, result); err != nil {
			return nil, err
		}
	case 1:
		if err := r.update(ctx, zone, records[0], spec, result); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %d A records named %q in zone %q",
			provider.ErrRecordAmbiguous, len(records), domain, zone.Name)
	}

	result.Complete()
	return result, nil
}

func (r *Reconciler) create(ctx context.Context, zone provider.Zone, spec provider.RecordSpec, result *Result) error {
	start := time.Now()
	created, err := r.provider.CreateRecord(ctx, zone.ID, spec)
	observeAPICall("create_record", start, err)
	if err != nil {
		return fmt.Errorf("creating record %q: %w", spec.Name, err)
	}

	metrics.RecordsCreatedTotal.Inc()

	result.Action = ActionCreate
	result.RecordID = created.ID
	result.IP = spec.Content
	result.Changed = true

	r.logger.Info("created record",
		slog.String("domain", spec.Name),
		slog.String("zone", zone.Name),
		slog.String("record_id", created.ID),
		slog.String("ip", spec.Content),
		slog.Bool("proxied", spec.Proxied),
	)

	return nil
}

func (r *Reconciler) update(ctx context.Context, zone provider.Zone, current provider.Record, spec provider.RecordSpec, result *Result) error {
	changed := !provider.SpecEquals(current, spec)

	start := time.Now()
	updated, err := r.provider.UpdateRecord(ctx, zone.ID, current.ID, spec)
	observeAPICall("update_record", start, err)
	if err != nil {
		return fmt.Errorf("updating record %q: %w", spec.Name, err)
	}

	metrics.RecordsUpdatedTotal.Inc()

	result.Action = ActionUpdate
	result.RecordID = updated.ID
	result.PreviousIP = current.Content
	result.IP = spec.Content
	result.Changed = changed

	if changed {
		r.logger.Info("updated record",
			slog.String("domain", spec.Name),
			slog.String("zone", zone.Name),
			slog.String("record_id", updated.ID),
			slog.String("previous_ip", current.Content),
			slog.String("ip", spec.Content),
			slog.Bool("proxied", spec.Proxied),
		)
	} else {
		r.logger.Debug("record already current, rewrote in place",
			slog.String("domain", spec.Name),
			slog.String("zone", zone.Name),
			slog.String("record_id", updated.ID),
			slog.String("ip", spec.Content),
		)
	}

	return nil
}

// observeAPICall records Prometheus metrics for a single provider API call.
func observeAPICall(operation string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.ProviderRequestsTotal.WithLabelValues(operation, result).Inc()
	metrics.ProviderRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
