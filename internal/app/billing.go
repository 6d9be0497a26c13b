package app

import (
	"context"

	"github.com/neomorfeo/contractiq/internal/domain"
)

// BillingService resolves unit rates and totals from a tenant's stored
// rule tables. The arithmetic lives on domain.BillingContext; this
// service only fetches the right context through the registry.
type BillingService struct {
	registry *Registry
}

// NewBillingService creates a billing service backed by the registry.
func NewBillingService(registry *Registry) *BillingService {
	return &BillingService{registry: registry}
}

// Rate resolves the unit rate for one dimension key.
func (s *BillingService) Rate(ctx context.Context, tenantID string, dimension domain.BillingDimension, key string) float64 {
	cfg := s.registry.Resolve(ctx, tenantID)
	return cfg.BillingContextFor(dimension).Rate(key)
}

// Total aggregates quantities into a charge using the tenant's rule
// table for the dimension. Unknown keys resolve through the default
// rate / zero chain; partial rule tables are an expected state.
func (s *BillingService) Total(ctx context.Context, tenantID string, dimension domain.BillingDimension, quantities map[string]int) float64 {
	cfg := s.registry.Resolve(ctx, tenantID)
	return cfg.BillingContextFor(dimension).Total(quantities)
}

// Capabilities reports which billing features the tenant's configured
// billing models support.
type Capabilities struct {
	AssetBilling   bool `json:"asset_billing"`
	ContactBilling bool `json:"contact_billing"`
	TieredBilling  bool `json:"tiered_billing"`
}

// Capabilities derives billing feature support from the tenant's billing
// model catalog.
func (s *BillingService) Capabilities(ctx context.Context, tenantID string) Capabilities {
	catalog := s.registry.Resolve(ctx, tenantID).BillingModels()
	return Capabilities{
		AssetBilling:   catalog.SupportsAssetBilling(),
		ContactBilling: catalog.SupportsContactBilling(),
		TieredBilling:  catalog.SupportsTieredBilling(),
	}
}
