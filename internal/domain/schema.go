package domain

// FormConfig is a tenant's stored form configuration document for one
// contract type: ordered field groups, per-field validation rule
// strings, and the conditions gating visibility.
type FormConfig struct {
	ContractType string       `json:"contract_type"`
	Groups       []FieldGroup `json:"groups"`
}

// FieldGroup is a titled section of a form. Group-level conditions gate
// every field in the group.
type FieldGroup struct {
	Key        string      `json:"key"`
	Label      string      `json:"label"`
	Conditions []Condition `json:"conditions,omitempty"`
	Fields     []FieldSpec `json:"fields"`
}

// FieldSpec describes one form field. Rules use the compact "name" or
// "name:argument" string form ("required", "max:255", "in:statuses");
// catalog references in "in:" rules are expanded against the tenant's
// configuration when the schema is built.
type FieldSpec struct {
	Key        string      `json:"key"`
	Label      string      `json:"label"`
	Type       string      `json:"type"`
	Rules      []string    `json:"rules,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
}

// FormSchema is the fully resolved schema for one tenant + contract type
// + input record: the single source of truth used both to render a form
// and to validate its submission.
type FormSchema struct {
	ContractType string        `json:"contract_type"`
	Fields       []SchemaField `json:"fields"`
}

// SchemaField is one resolved field: rules expanded, visibility decided.
type SchemaField struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Group   string   `json:"group,omitempty"`
	Rules   []string `json:"rules,omitempty"`
	Visible bool     `json:"visible"`
}

// ValidationError describes one failed rule for one submitted field.
type ValidationError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}
