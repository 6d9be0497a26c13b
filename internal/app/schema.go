package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/neomorfeo/contractiq/internal/domain"
)

// Catalog references usable in "in:" rules. They expand to the tenant's
// configured value lists when the schema is built.
var catalogRules = map[string]string{
	"statuses":           domain.KeyStatuses,
	"contract_types":     domain.KeyContractTypes,
	"renewal_types":      domain.KeyRenewalTypes,
	"signature_statuses": domain.KeySignatureStatuses,
}

// SchemaService combines a tenant's stored form configuration with the
// configuration registry and the condition evaluator into one resolved
// schema. Rendering a form and validating its submission both go through
// Schema, so the two can never diverge.
type SchemaService struct {
	forms    domain.FormConfigStore
	registry *Registry
}

// NewSchemaService creates a schema service.
func NewSchemaService(forms domain.FormConfigStore, registry *Registry) *SchemaService {
	return &SchemaService{forms: forms, registry: registry}
}

// SaveFormConfig stores a tenant's form configuration document for one
// contract type.
func (s *SchemaService) SaveFormConfig(ctx context.Context, tenantID string, cfg domain.FormConfig) error {
	if tenantID == "" {
		tenantID = domain.DefaultTenantID
	}
	return s.forms.SaveFormConfig(ctx, tenantID, cfg)
}

// Schema resolves the form schema for a tenant + contract type against
// the given input record: catalog rules expanded, visibility decided.
func (s *SchemaService) Schema(ctx context.Context, tenantID, contractType string, record map[string]any) (domain.FormSchema, error) {
	cfg, err := s.forms.LoadFormConfig(ctx, tenantID, contractType)
	if err != nil {
		return domain.FormSchema{}, err
	}

	tenant := s.registry.Resolve(ctx, tenantID)

	schema := domain.FormSchema{ContractType: contractType}
	for _, group := range cfg.Groups {
		groupVisible := domain.Evaluate(group.Conditions, record)
		for _, field := range group.Fields {
			visible := groupVisible && domain.Evaluate(field.Conditions, record)
			schema.Fields = append(schema.Fields, domain.SchemaField{
				Key:     field.Key,
				Label:   field.Label,
				Type:    field.Type,
				Group:   group.Key,
				Rules:   expandRules(field.Rules, tenant),
				Visible: visible,
			})
		}
	}
	return schema, nil
}

// Validate checks a submission against the exact schema that rendered
// the form. Hidden fields are not validated; their values are simply
// ignored.
func (s *SchemaService) Validate(ctx context.Context, tenantID, contractType string, submission map[string]any) ([]domain.ValidationError, error) {
	schema, err := s.Schema(ctx, tenantID, contractType, submission)
	if err != nil {
		return nil, err
	}

	var errs []domain.ValidationError
	for _, field := range schema.Fields {
		if !field.Visible {
			continue
		}
		value, present := submission[field.Key]
		for _, rule := range field.Rules {
			if msg, ok := checkRule(rule, value, present); !ok {
				errs = append(errs, domain.ValidationError{
					Field:   field.Key,
					Rule:    rule,
					Message: msg,
				})
			}
		}
	}
	return errs, nil
}

// expandRules resolves catalog references in "in:" rules against the
// tenant's configuration. A reference to an unconfigured catalog drops
// the rule: no catalog means no restriction.
func expandRules(rules []string, cfg domain.TenantConfiguration) []string {
	out := make([]string, 0, len(rules))
	for _, rule := range rules {
		name, arg, hasArg := strings.Cut(rule, ":")
		if name != "in" || !hasArg {
			out = append(out, rule)
			continue
		}
		key, ok := catalogRules[arg]
		if !ok {
			// Already a literal value list.
			out = append(out, rule)
			continue
		}
		values := cfg.GetStringList(key, nil)
		if len(values) == 0 {
			continue
		}
		out = append(out, "in:"+strings.Join(values, ","))
	}
	return out
}

// checkRule evaluates one compact rule string against a submitted value.
// Unknown rule names pass: configuration may be written against a newer
// rule vocabulary than this build understands.
func checkRule(rule string, value any, present bool) (string, bool) {
	name, arg, _ := strings.Cut(rule, ":")

	switch name {
	case "required":
		if !present || isBlank(value) {
			return "field is required", false
		}
	case "in":
		if !present || isBlank(value) {
			return "", true
		}
		for _, option := range strings.Split(arg, ",") {
			if fmt.Sprintf("%v", value) == option {
				return "", true
			}
		}
		return fmt.Sprintf("value must be one of: %s", arg), false
	case "numeric":
		if !present || isBlank(value) {
			return "", true
		}
		if _, ok := asNumber(value); !ok {
			return "value must be numeric", false
		}
	case "min":
		if !present || isBlank(value) {
			return "", true
		}
		if !boundOK(value, arg, false) {
			return fmt.Sprintf("value must be at least %s", arg), false
		}
	case "max":
		if !present || isBlank(value) {
			return "", true
		}
		if !boundOK(value, arg, true) {
			return fmt.Sprintf("value must be at most %s", arg), false
		}
	}
	return "", true
}

// boundOK checks min/max the way form validators usually do: string
// length for strings, magnitude for numbers.
func boundOK(value any, arg string, isMax bool) bool {
	bound, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return true
	}

	var measured float64
	if s, ok := value.(string); ok {
		if n, isNum := asNumber(s); isNum {
			measured = n
		} else {
			measured = float64(len(s))
		}
	} else if n, ok := asNumber(value); ok {
		measured = n
	} else {
		return true
	}

	if isMax {
		return measured <= bound
	}
	return measured >= bound
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func isBlank(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(s) == ""
	}
	return false
}
