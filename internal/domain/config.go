package domain

// DefaultTenantID is the well-known root tenant used when no tenant
// context is supplied. Falling back explicitly keeps configuration
// lookups working for unauthenticated or system-internal callers.
const DefaultTenantID = "root"

// Configuration keys shared across the system. All of them are read
// through the same GetString/GetStringList path; none is required to
// exist in a tenant's stored document.
const (
	KeyContractTypes     = "contract_types"
	KeyStatuses          = "statuses"
	KeyRenewalTypes      = "renewal_types"
	KeySignatureStatuses = "signature_statuses"

	KeyDefaultSignedStatus     = "default_signed_status"
	KeyDefaultActiveStatus     = "default_active_status"
	KeyDefaultTerminatedStatus = "default_terminated_status"
	KeyDefaultSuspendedStatus  = "default_suspended_status"
	KeyDefaultExpiredStatus    = "default_expired_status"

	KeyDefaultSignatureStatus       = "default_signature_status"
	KeyDefaultSignedSignatureStatus = "default_signed_signature_status"

	KeyBillingModels       = "billing_models"
	KeyAssetBillingRates   = "asset_billing_rates"
	KeyContactBillingRates = "contact_billing_rates"
	KeyUsageBillingRates   = "usage_billing_rates"
	KeyDefaultBillingRate  = "default_billing_rate"
)

// English fallback labels applied when a tenant has not configured its own.
const (
	FallbackSignedStatus     = "signed"
	FallbackActiveStatus     = "active"
	FallbackTerminatedStatus = "terminated"
	FallbackSuspendedStatus  = "suspended"
	FallbackExpiredStatus    = "expired"

	FallbackSignatureStatus       = "pending"
	FallbackSignedSignatureStatus = "fully_executed"
)

// TenantConfiguration is a tenant's full configuration document. It wraps
// a generic key/value map behind typed accessors that always return a
// usable value: the tenant's stored override, the caller's default, or a
// hard-coded English fallback. A missing key never fails a lookup.
type TenantConfiguration struct {
	values map[string]any
}

// NewTenantConfiguration wraps the given values. A nil map yields an
// empty but fully usable configuration.
func NewTenantConfiguration(values map[string]any) TenantConfiguration {
	if values == nil {
		values = map[string]any{}
	}
	return TenantConfiguration{values: values}
}

// EmptyConfiguration is the degraded configuration served when the
// backing store is unreachable. Every accessor falls back to defaults.
func EmptyConfiguration() TenantConfiguration {
	return NewTenantConfiguration(nil)
}

// Get returns the raw stored value for key, if any.
func (c TenantConfiguration) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Len returns the number of stored keys.
func (c TenantConfiguration) Len() int {
	return len(c.values)
}

// Values returns a copy of the underlying document, suitable for
// serialization. Mutating the copy does not affect the configuration.
func (c TenantConfiguration) Values() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// GetString returns the stored string for key, or fallback when the key
// is absent, empty, or not a string.
func (c TenantConfiguration) GetString(key, fallback string) string {
	if v, ok := c.values[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// GetFloat returns the stored numeric value for key. JSON decoding
// produces float64, but stored documents written programmatically may
// hold ints, so both are accepted.
func (c TenantConfiguration) GetFloat(key string, fallback float64) float64 {
	switch v := c.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return fallback
}

// GetStringList returns the stored list of strings for key. Lists decoded
// from JSON arrive as []any; non-string elements are skipped.
func (c TenantConfiguration) GetStringList(key string, fallback []string) []string {
	v, ok := c.values[key]
	if !ok {
		return fallback
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return fallback
		}
		return out
	}
	return fallback
}

// GetMap returns the stored map for key, or nil when absent or of the
// wrong shape.
func (c TenantConfiguration) GetMap(key string) map[string]any {
	if v, ok := c.values[key].(map[string]any); ok {
		return v
	}
	return nil
}

// ContractTypes returns the tenant's contract type catalog.
func (c TenantConfiguration) ContractTypes() []string {
	return c.GetStringList(KeyContractTypes, nil)
}

// Statuses returns the tenant's full status label catalog.
func (c TenantConfiguration) Statuses() []string {
	return c.GetStringList(KeyStatuses, nil)
}

// RenewalTypes returns the tenant's renewal type catalog.
func (c TenantConfiguration) RenewalTypes() []string {
	return c.GetStringList(KeyRenewalTypes, nil)
}

// SignatureStatuses returns the tenant's signature status catalog.
func (c TenantConfiguration) SignatureStatuses() []string {
	return c.GetStringList(KeySignatureStatuses, nil)
}

// StatusFor resolves the tenant's status label for a lifecycle event,
// falling back to the English default when unconfigured.
func (c TenantConfiguration) StatusFor(event Event) string {
	switch event {
	case EventSign:
		return c.GetString(KeyDefaultSignedStatus, FallbackSignedStatus)
	case EventActivate, EventReactivate:
		return c.GetString(KeyDefaultActiveStatus, FallbackActiveStatus)
	case EventTerminate:
		return c.GetString(KeyDefaultTerminatedStatus, FallbackTerminatedStatus)
	case EventSuspend:
		return c.GetString(KeyDefaultSuspendedStatus, FallbackSuspendedStatus)
	case EventExpire:
		return c.GetString(KeyDefaultExpiredStatus, FallbackExpiredStatus)
	}
	return ""
}

// SignedSignatureStatus resolves the signature status applied on signing.
func (c TenantConfiguration) SignedSignatureStatus() string {
	return c.GetString(KeyDefaultSignedSignatureStatus, FallbackSignedSignatureStatus)
}

// BillingModels returns the tenant's billing model catalog. Entries may
// be plain name strings (legacy form) or maps with "name" and optional
// "capabilities" (structured form).
func (c TenantConfiguration) BillingModels() BillingCatalog {
	v, ok := c.values[KeyBillingModels]
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	catalog := make(BillingCatalog, 0, len(list))
	for _, item := range list {
		switch entry := item.(type) {
		case string:
			catalog = append(catalog, BillingModel{Name: entry})
		case map[string]any:
			m := BillingModel{}
			if name, ok := entry["name"].(string); ok {
				m.Name = name
			}
			if caps, ok := entry["capabilities"].([]any); ok {
				for _, c := range caps {
					if s, ok := c.(string); ok {
						m.Capabilities = append(m.Capabilities, s)
					}
				}
			}
			if m.Name != "" {
				catalog = append(catalog, m)
			}
		}
	}
	return catalog
}

// BillingContextFor assembles the tenant's billing context for one
// dimension. The rule table lives under the dimension's configuration
// key; an absent or malformed table yields an empty one, so totals fall
// through to the default rate or zero.
func (c TenantConfiguration) BillingContextFor(dimension BillingDimension) BillingContext {
	var key string
	switch dimension {
	case DimensionAsset:
		key = KeyAssetBillingRates
	case DimensionContact:
		key = KeyContactBillingRates
	case DimensionUsage:
		key = KeyUsageBillingRates
	}

	table := BillingRuleTable{}
	for name, raw := range c.GetMap(key) {
		switch entry := raw.(type) {
		case map[string]any:
			if rate, ok := entry["rate"].(float64); ok {
				table[name] = BillingRule{Rate: rate}
			}
		case float64:
			// Legacy flat form: dimension key straight to rate.
			table[name] = BillingRule{Rate: entry}
		}
	}

	ctx := BillingContext{Table: table}
	if v, ok := c.values[KeyDefaultBillingRate]; ok {
		if rate, ok := v.(float64); ok {
			ctx.DefaultRate = &rate
		}
	}
	return ctx
}
