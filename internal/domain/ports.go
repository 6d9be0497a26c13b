package domain

import "context"

// ConfigurationStore defines the persistence contract for per-tenant
// configuration documents. Load returns ErrConfigurationNotFound for a
// tenant with no stored document; the registry treats that as an empty
// configuration, not a failure.
type ConfigurationStore interface {
	Load(ctx context.Context, tenantID string) (map[string]any, error)
	Save(ctx context.Context, tenantID string, values map[string]any) error
}

// ContractRepository defines the persistence contract for contract-like
// entities. UpdateWithAudit persists the entity's fields and its full
// audit trail in one transaction: either both land or neither does.
type ContractRepository interface {
	CreateContract(ctx context.Context, c *Contract) error
	GetContract(ctx context.Context, id string) (*Contract, error)
	ListContracts(ctx context.Context, filter ContractFilter) ([]*Contract, error)
	CreateTemplate(ctx context.Context, t *Template) error
	GetTemplate(ctx context.Context, id string) (*Template, error)
	GetEntity(ctx context.Context, kind EntityKind, id string) (StatusEntity, error)
	UpdateWithAudit(ctx context.Context, entity StatusEntity) error
}

// ContractFilter holds optional criteria for listing contracts.
type ContractFilter struct {
	Tenant       string
	ContractType string
	Phase        *Phase
	Limit        int
	Offset       int
}

// FormConfigStore defines the persistence contract for stored form
// configuration documents.
type FormConfigStore interface {
	LoadFormConfig(ctx context.Context, tenantID, contractType string) (FormConfig, error)
	SaveFormConfig(ctx context.Context, tenantID string, cfg FormConfig) error
}

// TransitionValidator checks whether a lifecycle event is valid from the
// current phase and returns the destination phase.
type TransitionValidator interface {
	Apply(ctx context.Context, current Phase, event Event) (Phase, error)
}

// TransitionRecord is the snapshot published after a successful
// transition, carried by the async event pipeline.
type TransitionRecord struct {
	EntityKind EntityKind
	EntityID   string
	Tenant     string
	Event      Event
	Phase      Phase
	Status     string
	ActorID    string
}

// EventPublisher defines the contract for emitting transition events.
type EventPublisher interface {
	Publish(ctx context.Context, record TransitionRecord) error
}
