// Package metrics provides Prometheus metrics for dnspin.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric exposed by this package.
const Namespace = "dnspin"

var (
	// BuildInfo is a constant gauge carrying version labels.
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "build_info",
		Help:      "Build information. Always 1, with version and go_version labels.",
	}, []string{"version", "go_version"})

	// UpdateCyclesTotal counts update cycles by outcome.
	UpdateCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "update_cycles_total",
		Help:      "Number of update cycles, labeled by result (success or error).",
	}, []string{"result"})

	// UpdateCycleDuration observes the wall time of a full update cycle.
	UpdateCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "update_cycle_duration_seconds",
		Help:      "Duration of a full update cycle (IP lookup plus record reconciliation).",
		Buckets:   prometheus.DefBuckets,
	})

	// RecordsCreatedTotal counts DNS records created.
	RecordsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "records_created_total",
		Help:      "Number of DNS records created.",
	})

	// RecordsUpdatedTotal counts DNS records rewritten in place.
	RecordsUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "records_updated_total",
		Help:      "Number of DNS records updated.",
	})

	// IPLookupsTotal counts public IP lookups by outcome.
	IPLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "ip_lookups_total",
		Help:      "Number of public IP lookups, labeled by result (success or error).",
	}, []string{"result"})

	// ProviderRequestsTotal counts provider API calls by operation and outcome.
	ProviderRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "provider_api_requests_total",
		Help:      "Number of provider API calls, labeled by operation and result.",
	}, []string{"operation", "result"})

	// ProviderRequestDuration observes provider API call latency by operation.
	ProviderRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "provider_api_request_duration_seconds",
		Help:      "Latency of provider API calls, labeled by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// LastSuccessTimestamp is the Unix time of the last successful update cycle.
	LastSuccessTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful update cycle.",
	})
)

// SetBuildInfo records build metadata on the BuildInfo gauge.
func SetBuildInfo(version, goVersion string) {
	BuildInfo.WithLabelValues(version, goVersion).Set(1)
}
