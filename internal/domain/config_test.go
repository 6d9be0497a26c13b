package domain_test

import (
	"testing"

	"github.com/neomorfeo/contractiq/internal/domain"
)

func TestTenantConfiguration_GetString(t *testing.T) {
	cfg := domain.NewTenantConfiguration(map[string]any{
		"default_active_status": "live",
		"blank":                 "",
		"not_a_string":          42,
	})

	if got := cfg.GetString("default_active_status", "active"); got != "live" {
		t.Errorf("got %q, want stored override %q", got, "live")
	}
	if got := cfg.GetString("missing", "fallback"); got != "fallback" {
		t.Errorf("got %q, want fallback", got)
	}
	if got := cfg.GetString("blank", "fallback"); got != "fallback" {
		t.Errorf("empty string should fall back, got %q", got)
	}
	if got := cfg.GetString("not_a_string", "fallback"); got != "fallback" {
		t.Errorf("non-string should fall back, got %q", got)
	}
}

func TestTenantConfiguration_GetStringList(t *testing.T) {
	cfg := domain.NewTenantConfiguration(map[string]any{
		"contract_types": []any{"msp", "project", 7},
	})

	got := cfg.GetStringList("contract_types", nil)
	if len(got) != 2 || got[0] != "msp" || got[1] != "project" {
		t.Errorf("got %v, want [msp project] with non-strings skipped", got)
	}

	if got := cfg.GetStringList("missing", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Errorf("missing key should return fallback, got %v", got)
	}
}

func TestTenantConfiguration_StatusFor_Defaults(t *testing.T) {
	cfg := domain.EmptyConfiguration()

	tests := []struct {
		event domain.Event
		want  string
	}{
		{domain.EventSign, "signed"},
		{domain.EventActivate, "active"},
		{domain.EventReactivate, "active"},
		{domain.EventTerminate, "terminated"},
		{domain.EventSuspend, "suspended"},
		{domain.EventExpire, "expired"},
	}

	for _, tt := range tests {
		if got := cfg.StatusFor(tt.event); got != tt.want {
			t.Errorf("StatusFor(%q) = %q, want %q", tt.event, got, tt.want)
		}
	}

	if got := cfg.SignedSignatureStatus(); got != "fully_executed" {
		t.Errorf("SignedSignatureStatus = %q, want %q", got, "fully_executed")
	}
}

func TestTenantConfiguration_StatusFor_Overrides(t *testing.T) {
	cfg := domain.NewTenantConfiguration(map[string]any{
		domain.KeyDefaultTerminatedStatus: "cancelled",
	})

	if got := cfg.StatusFor(domain.EventTerminate); got != "cancelled" {
		t.Errorf("StatusFor(terminate) = %q, want tenant override %q", got, "cancelled")
	}
	// Unconfigured events still get English defaults.
	if got := cfg.StatusFor(domain.EventSign); got != "signed" {
		t.Errorf("StatusFor(sign) = %q, want %q", got, "signed")
	}
}

func TestTenantConfiguration_BillingModels(t *testing.T) {
	cfg := domain.NewTenantConfiguration(map[string]any{
		domain.KeyBillingModels: []any{
			"Per-Asset Billing",
			map[string]any{
				"name":         "modern plan",
				"capabilities": []any{"tiered_billing"},
			},
		},
	})

	catalog := cfg.BillingModels()
	if len(catalog) != 2 {
		t.Fatalf("got %d models, want 2", len(catalog))
	}
	if catalog[0].Name != "Per-Asset Billing" || len(catalog[0].Capabilities) != 0 {
		t.Errorf("legacy entry = %+v", catalog[0])
	}
	if catalog[1].Name != "modern plan" || len(catalog[1].Capabilities) != 1 {
		t.Errorf("structured entry = %+v", catalog[1])
	}
}

func TestTenantConfiguration_BillingContextFor(t *testing.T) {
	cfg := domain.NewTenantConfiguration(map[string]any{
		domain.KeyAssetBillingRates: map[string]any{
			"server": map[string]any{"rate": 25.0},
			"legacy": 12.5,
			"junk":   "nope",
		},
		domain.KeyDefaultBillingRate: 10.0,
	})

	ctx := cfg.BillingContextFor(domain.DimensionAsset)
	if got := ctx.Rate("server"); got != 25.0 {
		t.Errorf("Rate(server) = %v, want 25.0", got)
	}
	if got := ctx.Rate("legacy"); got != 12.5 {
		t.Errorf("Rate(legacy flat form) = %v, want 12.5", got)
	}
	if got := ctx.Rate("junk"); got != 10.0 {
		t.Errorf("malformed entry should fall to default, got %v", got)
	}
	if got := ctx.Rate("unknown"); got != 10.0 {
		t.Errorf("Rate(unknown) = %v, want default 10.0", got)
	}
}

func TestTenantConfiguration_ValuesIsACopy(t *testing.T) {
	cfg := domain.NewTenantConfiguration(map[string]any{"k": "v"})

	values := cfg.Values()
	values["k"] = "mutated"

	if got, _ := cfg.Get("k"); got != "v" {
		t.Errorf("mutating Values() copy leaked into configuration: %v", got)
	}
}
