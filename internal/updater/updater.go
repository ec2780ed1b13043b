// Package updater runs the periodic convergence loop that keeps a DNS A
// record pointed at the host's current public IP.
//
// The loop is a single goroutine: resolve the public IP, reconcile the
// record, sleep for the interval, repeat. Ticks never overlap. A failed
// startup probe is fatal; a failed steady-state tick is logged, counted, and
// retried at the next scheduled interval.
package updater

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/karstloch/dnspin/internal/metrics"
	"github.com/karstloch/dnspin/internal/reconciler"
	"github.com/karstloch/dnspin/pkg/ipresolve"
	"github.com/karstloch/dnspin/pkg/provider"
)

const (
	// DefaultInterval is the time between convergence passes.
	DefaultInterval = 5 * time.Minute

	// DefaultTimeout bounds the network work of a single pass.
	DefaultTimeout = 10 * time.Second

	// unhealthyThreshold is the consecutive-failure count at which Healthy
	// starts reporting an error.
	unhealthyThreshold = 3
)

// Config holds update loop settings.
type Config struct {
	// Domain is the fully qualified record name to manage.
	Domain string

	// Proxied routes the record through the provider's edge proxy.
	Proxied bool

	// Interval is the time between convergence passes.
	// Default: 5 minutes
	Interval time.Duration

	// Timeout bounds the network work of a single pass.
	// Default: 10 seconds
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults. Domain must still
// be set by the caller.
func DefaultConfig() Config {
	return Config{
		Proxied:  true,
		Interval: DefaultInterval,
		Timeout:  DefaultTimeout,
	}
}

// Reconciler converges the managed record toward a desired state.
type Reconciler interface {
	Reconcile(ctx context.Context, desired reconciler.DesiredState) (*reconciler.Result, error)
}

var _ Reconciler = (*reconciler.Reconciler)(nil)

// Updater drives the resolve-then-reconcile loop for one domain.
type Updater struct {
	provider   provider.Provider
	resolver   ipresolve.Resolver
	reconciler Reconciler
	config     Config
	logger     *slog.Logger

	mu           sync.Mutex
	zone         provider.Zone
	probed       bool
	failureCount int
	lastErr      error
}

// Option is a functional option for configuring the Updater.
type Option func(*Updater)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(u *Updater) {
		if logger != nil {
			u.logger = logger
		}
	}
}

// New creates an Updater for cfg.Domain.
func New(p provider.Provider, resolver ipresolve.Resolver, rec Reconciler, cfg Config, opts ...Option) *Updater {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	u := &Updater{
		provider:   p,
		resolver:   resolver,
		reconciler: rec,
		config:     cfg,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// Run executes the startup probe and then loops until ctx is cancelled.
// The first convergence pass happens immediately, not one interval in.
// Cancellation is the normal shutdown path and returns nil; only a failed
// startup probe returns an error.
func (u *Updater) Run(ctx context.Context) error {
	if err := u.startup(ctx); err != nil {
		return err
	}

	u.logger.Info("update loop started",
		slog.String("domain", u.config.Domain),
		slog.Duration("interval", u.config.Interval),
		slog.Bool("proxied", u.config.Proxied),
	)

	u.runTick(ctx)

	ticker := time.NewTicker(u.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			u.logger.Info("update loop stopped")
			return nil
		case <-ticker.C:
			u.runTick(ctx)
		}
	}
}

// RunOnce executes the startup probe and a single convergence pass. Unlike
// the loop, tick errors are returned, so one-shot invocations exit non-zero
// on failure.
func (u *Updater) RunOnce(ctx context.Context) error {
	if err := u.startup(ctx); err != nil {
		return err
	}

	err := u.tick(ctx)
	u.observeTick(err)
	return err
}

// startup verifies credentials and resolves the zone before any record work.
// Every later cycle would repeat the same failure, so there is no point
// entering the loop without a zone.
func (u *Updater) startup(ctx context.Context) error {
	if err := u.ping(ctx); err != nil {
		return fmt.Errorf("verifying provider credentials: %w", err)
	}

	zone, err := u.locateZone(ctx)
	if err != nil {
		return fmt.Errorf("resolving zone for %q: %w", u.config.Domain, err)
	}

	u.logger.Info("zone resolved",
		slog.String("domain", u.config.Domain),
		slog.String("zone", zone.Name),
		slog.String("zone_id", zone.ID),
	)

	u.mu.Lock()
	u.zone = zone
	u.probed = true
	u.mu.Unlock()

	return nil
}

func (u *Updater) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, u.config.Timeout)
	defer cancel()
	return u.provider.Ping(ctx)
}

func (u *Updater) locateZone(ctx context.Context) (provider.Zone, error) {
	ctx, cancel := context.WithTimeout(ctx, u.config.Timeout)
	defer cancel()
	return u.provider.LocateZone(ctx, u.config.Domain)
}

// runTick executes one convergence pass and folds its outcome into loop
// state. Tick errors stop here; the loop always continues.
func (u *Updater) runTick(runCtx context.Context) {
	err := u.tick(runCtx)
	failures := u.observeTick(err)

	if err != nil {
		u.logger.Error("update cycle failed",
			slog.String("domain", u.config.Domain),
			slog.String("error", err.Error()),
			slog.Int("consecutive_failures", failures),
		)
	}
}

// tick performs one resolve-then-reconcile pass. The pass runs on a context
// detached from loop cancellation: shutdown must not sever an issued
// create or update mid-flight. The timeout still bounds the whole pass, and
// the loop observes cancellation at the next select.
func (u *Updater) tick(runCtx context.Context) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(runCtx), u.config.Timeout)
	defer cancel()

	ip, err := u.resolver.Resolve(ctx)
	if err != nil {
		metrics.IPLookupsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("resolving public ip: %w", err)
	}
	metrics.IPLookupsTotal.WithLabelValues("success").Inc()

	result, err := u.reconciler.Reconcile(ctx, reconciler.DesiredState{
		Domain:  u.config.Domain,
		IP:      ip,
		Proxied: u.config.Proxied,
	})
	if err != nil {
		return fmt.Errorf("reconciling %q: %w", u.config.Domain, err)
	}

	metrics.UpdateCycleDuration.Observe(time.Since(start).Seconds())

	u.logger.Debug("update cycle complete",
		slog.String("summary", result.Summary()),
		slog.Duration("took", result.Duration()),
	)

	return nil
}

// observeTick updates failure tracking and cycle metrics. It returns the
// current consecutive-failure count.
func (u *Updater) observeTick(err error) int {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err != nil {
		u.failureCount++
		u.lastErr = err
		metrics.UpdateCyclesTotal.WithLabelValues("error").Inc()
		return u.failureCount
	}

	u.failureCount = 0
	u.lastErr = nil
	metrics.UpdateCyclesTotal.WithLabelValues("success").Inc()
	metrics.LastSuccessTimestamp.SetToCurrentTime()
	return 0
}

// Ready reports whether the startup probe has succeeded. The signature
// matches the health server's checker type so it can be registered directly.
func (u *Updater) Ready(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.probed {
		return fmt.Errorf("zone not resolved yet")
	}
	return nil
}

// Healthy reports an error once unhealthyThreshold consecutive ticks have
// failed. A single transient failure does not trip it.
func (u *Updater) Healthy() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.failureCount >= unhealthyThreshold {
		return fmt.Errorf("%d consecutive update cycles failed, last error: %v", u.failureCount, u.lastErr)
	}
	return nil
}

// Zone returns the zone resolved by the startup probe. The zero Zone is
// returned before the probe has run.
func (u *Updater) Zone() provider.Zone {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.zone
}
