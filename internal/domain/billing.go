package domain

import "strings"

// BillingDimension is the axis a rule table prices along.
type BillingDimension string

const (
	DimensionAsset   BillingDimension = "asset"
	DimensionContact BillingDimension = "contact"
	DimensionUsage   BillingDimension = "usage"
)

// BillingRule is a single unit rate for one dimension key.
type BillingRule struct {
	Rate float64 `json:"rate"`
}

// BillingRuleTable maps a billing dimension key (asset type name,
// contact tier name, usage unit) to its unit rate. Partial tables are a
// normal tenant state; missing keys fall through to the default rate.
type BillingRuleTable map[string]BillingRule

// BillingContext pairs a rule table with an optional tenant-level
// default rate.
type BillingContext struct {
	Table       BillingRuleTable
	DefaultRate *float64
}

// Rate resolves the unit rate for a dimension key: the table entry if
// present, else the default rate, else zero. Zero is a valid outcome,
// never an error; a nil never propagates into a sum.
func (bc BillingContext) Rate(key string) float64 {
	if rule, ok := bc.Table[key]; ok {
		return rule.Rate
	}
	if bc.DefaultRate != nil {
		return *bc.DefaultRate
	}
	return 0
}

// Total aggregates quantities into a charge: sum of resolved rate times
// count over every supplied key. Totals are never negative; negative
// counts (corrections entered upstream) are clamped to zero.
func (bc BillingContext) Total(quantities map[string]int) float64 {
	var total float64
	for key, count := range quantities {
		if count <= 0 {
			continue
		}
		total += bc.Rate(key) * float64(count)
	}
	return total
}

// BillingModel is one entry of a tenant's billing model catalog. Legacy
// tenants carry only a name; newer configuration adds a structured
// capabilities list that takes precedence over name matching.
type BillingModel struct {
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// BillingCatalog is a tenant's full list of billing models.
type BillingCatalog []BillingModel

// Capability names used by the structured form.
const (
	CapabilityAssetBilling   = "asset_billing"
	CapabilityContactBilling = "contact_billing"
	CapabilityTieredBilling  = "tiered_billing"
)

// SupportsAssetBilling reports whether any configured billing model
// covers per-asset billing.
func (c BillingCatalog) SupportsAssetBilling() bool {
	return c.supports(CapabilityAssetBilling, "asset")
}

// SupportsContactBilling reports whether any configured billing model
// covers per-contact billing.
func (c BillingCatalog) SupportsContactBilling() bool {
	return c.supports(CapabilityContactBilling, "contact")
}

// SupportsTieredBilling reports whether any configured billing model
// covers tiered billing.
func (c BillingCatalog) SupportsTieredBilling() bool {
	return c.supports(CapabilityTieredBilling, "tiered")
}

// supports checks the structured capabilities list first. Models without
// one fall back to the legacy name shim: a model name containing the
// feature keyword, or the literal word "hybrid", implies support. The
// shim exists for compatibility with tenant configuration text written
// before capabilities were introduced; keep its matching rules frozen.
func (c BillingCatalog) supports(capability, keyword string) bool {
	for _, model := range c {
		if len(model.Capabilities) > 0 {
			for _, cap := range model.Capabilities {
				if cap == capability {
					return true
				}
			}
			continue
		}
		name := strings.ToLower(model.Name)
		if strings.Contains(name, keyword) || strings.Contains(name, "hybrid") {
			return true
		}
	}
	return false
}
