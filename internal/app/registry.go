package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/neomorfeo/contractiq/internal/domain"
)

const meterName = "github.com/neomorfeo/contractiq/internal/app"

// Registry resolves a tenant id to its full configuration, caching per
// tenant. It is the single read path for configuration: the workflow
// engine, billing service, and schema service all consult it.
//
// Configuration sits on every contract read and write path, so the
// registry never propagates store failures. An unreachable store or a
// malformed document degrades to an empty configuration (every accessor
// falls back to defaults) and the incident is reported through slog and
// a counter metric.
type Registry struct {
	store  domain.ConfigurationStore
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]domain.TenantConfiguration

	group    singleflight.Group
	degrades metric.Int64Counter
}

// NewRegistry creates a registry with an empty cache.
func NewRegistry(store domain.ConfigurationStore, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	meter := otel.Meter(meterName)
	degrades, err := meter.Int64Counter("config.registry.degraded_resolves",
		metric.WithDescription("Configuration resolves served as empty because the store failed"),
	)
	if err != nil {
		// A broken meter should not take configuration down with it.
		logger.Warn("creating degrade counter", "error", err)
	}

	return &Registry{
		store:    store,
		logger:   logger,
		cache:    make(map[string]domain.TenantConfiguration),
		degrades: degrades,
	}
}

// Resolve returns the tenant's full configuration, reading through the
// cache. An empty tenant id resolves the well-known root tenant.
// Concurrent calls for the same uncached tenant share one store read.
// Resolve never fails: store errors degrade to an empty configuration.
func (r *Registry) Resolve(ctx context.Context, tenantID string) domain.TenantConfiguration {
	if tenantID == "" {
		tenantID = domain.DefaultTenantID
	}

	r.mu.RLock()
	cfg, ok := r.cache[tenantID]
	r.mu.RUnlock()
	if ok {
		return cfg
	}

	v, _, _ := r.group.Do(tenantID, func() (any, error) {
		return r.load(ctx, tenantID), nil
	})
	return v.(domain.TenantConfiguration)
}

func (r *Registry) load(ctx context.Context, tenantID string) domain.TenantConfiguration {
	values, err := r.store.Load(ctx, tenantID)
	switch {
	case err == nil:
		// Loaded.
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// The caller went away; serve empty without caching so the next
		// request retries the store.
		return domain.EmptyConfiguration()
	case errors.Is(err, domain.ErrConfigurationNotFound):
		// No stored document yet: a legitimate empty configuration,
		// cached like any other.
		values = nil
	default:
		r.logger.WarnContext(ctx, "configuration store unavailable, serving empty configuration",
			"tenant_id", tenantID,
			"error", err,
		)
		if r.degrades != nil {
			r.degrades.Add(ctx, 1, metric.WithAttributes(attribute.String("tenant.id", tenantID)))
		}
		return domain.EmptyConfiguration()
	}

	cfg := domain.NewTenantConfiguration(values)

	r.mu.Lock()
	r.cache[tenantID] = cfg
	r.mu.Unlock()

	return cfg
}

// GetString returns the tenant's string value for key, or fallback.
func (r *Registry) GetString(ctx context.Context, tenantID, key, fallback string) string {
	return r.Resolve(ctx, tenantID).GetString(key, fallback)
}

// GetStringList returns the tenant's string list for key, or fallback.
func (r *Registry) GetStringList(ctx context.Context, tenantID, key string, fallback []string) []string {
	return r.Resolve(ctx, tenantID).GetStringList(key, fallback)
}

// Invalidate drops the tenant's cache entry. The next Resolve re-reads
// the store.
func (r *Registry) Invalidate(tenantID string) {
	if tenantID == "" {
		tenantID = domain.DefaultTenantID
	}
	r.mu.Lock()
	delete(r.cache, tenantID)
	r.mu.Unlock()
}

// Save writes the tenant's configuration document through the store and
// invalidates the cache entry so readers see the new document.
func (r *Registry) Save(ctx context.Context, tenantID string, values map[string]any) error {
	if tenantID == "" {
		tenantID = domain.DefaultTenantID
	}
	if err := r.store.Save(ctx, tenantID, values); err != nil {
		return err
	}
	r.Invalidate(tenantID)
	return nil
}
