package reconciler

import (
	"fmt"
	"time"

	"github.com/karstloch/dnspin/pkg/provider"
)

// ActionType represents the mutation a reconciliation run issued.
type ActionType string

const (
	// ActionCreate indicates a record was created.
	ActionCreate ActionType = "create"
	// ActionUpdate indicates an existing record was rewritten in place.
	ActionUpdate ActionType = "update"
)

// Result holds the outcome of a single reconciliation run.
type Result struct {
	// Domain is the normalized record name the run converged.
	Domain string

	// Zone is the authoritative zone the record lives in.
	Zone provider.Zone

	// Action is the mutation that was issued.
	Action ActionType

	// RecordID is the provider-assigned id of the affected record.
	RecordID string

	// PreviousIP is the record content before an update. Empty for creates.
	PreviousIP string

	// IP is the record content after the run.
	IP string

	// Changed reports whether the run wrote values that differ from what
	// the provider stored before. An update can complete with Changed
	// false when the record was already current.
	Changed bool

	// StartTime is when the run started.
	StartTime time.Time

	// EndTime is when the run completed.
	EndTime time.Time
}

// NewResult creates a Result with the start time set to now.
func NewResult(domain string) *Result {
	return &Result{
		Domain:    domain,
		StartTime: time.Now(),
	}
}

// Complete marks the result as complete with the end time set to now.
func (r *Result) Complete() {
	r.EndTime = time.Now()
}

// Duration returns the total run duration.
func (r *Result) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// Summary returns a human-readable one-line summary of the run.
func (r *Result) Summary() string {
	elapsed := r.Duration().Round(time.Millisecond)

	switch {
	case r.Action == ActionCreate:
		return fmt.Sprintf("created %s -> %s (record %s, zone %s) in %s",
			r.Domain, r.IP, r.RecordID, r.Zone.Name, elapsed)
	case r.Changed:
		return fmt.Sprintf("updated %s: %s -> %s (record %s, zone %s) in %s",
			r.Domain, r.PreviousIP, r.IP, r.RecordID, r.Zone.Name, elapsed)
	default:
		return fmt.Sprintf("refreshed %s -> %s, already current (record %s, zone %s) in %s",
			r.Domain, r.IP, r.RecordID, r.Zone.Name, elapsed)
	}
}
