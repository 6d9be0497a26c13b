package domain

import "time"

// Phase is the canonical lifecycle position of a contract-like entity.
// Tenants rename what each phase is called (via default_*_status keys);
// the phase itself is fixed so transition validity can be checked
// uniformly across tenants.
type Phase string

const (
	PhaseDraft      Phase = "draft"
	PhaseSigned     Phase = "signed"
	PhaseActive     Phase = "active"
	PhaseSuspended  Phase = "suspended"
	PhaseTerminated Phase = "terminated"
	PhaseExpired    Phase = "expired"
)

// Event is a lifecycle action that drives a phase transition.
type Event string

const (
	EventSign       Event = "sign"
	EventActivate   Event = "activate"
	EventTerminate  Event = "terminate"
	EventSuspend    Event = "suspend"
	EventReactivate Event = "reactivate"
	EventExpire     Event = "expire"
)

// Transition defines a valid phase change: an event moves an entity from
// Src to Dst.
type Transition struct {
	Event Event
	Src   Phase
	Dst   Phase
}

// Transitions defines all valid phase changes in the contract lifecycle.
// This is domain knowledge consumed by the FSM adapter.
var Transitions = []Transition{
	{Event: EventSign, Src: PhaseDraft, Dst: PhaseSigned},
	{Event: EventActivate, Src: PhaseSigned, Dst: PhaseActive},
	{Event: EventActivate, Src: PhaseDraft, Dst: PhaseActive},
	{Event: EventSuspend, Src: PhaseActive, Dst: PhaseSuspended},
	{Event: EventReactivate, Src: PhaseSuspended, Dst: PhaseActive},
	{Event: EventTerminate, Src: PhaseActive, Dst: PhaseTerminated},
	{Event: EventTerminate, Src: PhaseSuspended, Dst: PhaseTerminated},
	{Event: EventTerminate, Src: PhaseSigned, Dst: PhaseTerminated},
	{Event: EventExpire, Src: PhaseActive, Dst: PhaseExpired},
}

// EntityKind identifies which contract-like table an entity lives in.
type EntityKind string

const (
	KindContract EntityKind = "contract"
	KindTemplate EntityKind = "template"
)

// StatusEntity is the minimal surface the workflow engine needs from any
// contract-like entity. Optional lifecycle fields are exposed through the
// capability interfaces below; the engine checks capability by interface
// satisfaction instead of probing the storage schema at runtime.
type StatusEntity interface {
	EntityID() string
	EntityKind() EntityKind
	TenantID() string
	CurrentPhase() Phase
	SetPhase(Phase)
	SetStatus(label string)
	Meta() map[string]any
	SetMeta(key string, value any)
	DeleteMeta(key string)
	Trail() *AuditTrail
}

// Signable entities record when and how they were signed.
type Signable interface {
	SetSignedAt(time.Time)
	SetSignatureStatus(string)
}

// Executable entities record an execution timestamp on activation.
type Executable interface {
	SetExecutedAt(time.Time)
}

// Terminable entities record termination time and reason as first-class
// fields. Entities without this capability still terminate; the reason
// survives only in the audit trail.
type Terminable interface {
	SetTerminatedAt(time.Time)
	SetTerminationReason(string)
}

// Contract is a concrete agreement owned by a tenant. It carries the
// full set of lifecycle fields and implements every workflow capability.
type Contract struct {
	ID              string
	Tenant          string
	ContractType    string
	Phase           Phase
	Status          string
	SignatureStatus string

	SignedAt          *time.Time
	ExecutedAt        *time.Time
	TerminatedAt      *time.Time
	TerminationReason string

	Metadata   map[string]any
	AuditTrail AuditTrail

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewContract creates a contract in the initial draft phase with the
// given tenant-facing status label.
func NewContract(id, tenant, contractType, status string) *Contract {
	now := time.Now().UTC()
	return &Contract{
		ID:              id,
		Tenant:          tenant,
		ContractType:    contractType,
		Phase:           PhaseDraft,
		Status:          status,
		SignatureStatus: FallbackSignatureStatus,
		Metadata:        map[string]any{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (c *Contract) EntityID() string          { return c.ID }
func (c *Contract) EntityKind() EntityKind    { return KindContract }
func (c *Contract) TenantID() string          { return c.Tenant }
func (c *Contract) CurrentPhase() Phase       { return c.Phase }
func (c *Contract) SetPhase(p Phase)          { c.Phase = p }
func (c *Contract) SetStatus(label string)    { c.Status = label }
func (c *Contract) Trail() *AuditTrail        { return &c.AuditTrail }
func (c *Contract) SetSignedAt(t time.Time)   { c.SignedAt = &t }
func (c *Contract) SetExecutedAt(t time.Time) { c.ExecutedAt = &t }

func (c *Contract) SetSignatureStatus(s string) { c.SignatureStatus = s }

func (c *Contract) SetTerminatedAt(t time.Time)   { c.TerminatedAt = &t }
func (c *Contract) SetTerminationReason(r string) { c.TerminationReason = r }

func (c *Contract) Meta() map[string]any {
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	return c.Metadata
}

func (c *Contract) SetMeta(key string, value any) { c.Meta()[key] = value }
func (c *Contract) DeleteMeta(key string)         { delete(c.Meta(), key) }

// Template is a reusable contract blueprint. It shares the status
// workflow with Contract but has none of the execution or termination
// timestamp fields, so the engine skips those writes for templates.
type Template struct {
	ID           string
	Tenant       string
	ContractType string
	Phase        Phase
	Status       string

	Metadata   map[string]any
	AuditTrail AuditTrail

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTemplate creates a template in the initial draft phase.
func NewTemplate(id, tenant, contractType, status string) *Template {
	now := time.Now().UTC()
	return &Template{
		ID:           id,
		Tenant:       tenant,
		ContractType: contractType,
		Phase:        PhaseDraft,
		Status:       status,
		Metadata:     map[string]any{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (t *Template) EntityID() string       { return t.ID }
func (t *Template) EntityKind() EntityKind { return KindTemplate }
func (t *Template) TenantID() string       { return t.Tenant }
func (t *Template) CurrentPhase() Phase    { return t.Phase }
func (t *Template) SetPhase(p Phase)       { t.Phase = p }
func (t *Template) SetStatus(label string) { t.Status = label }
func (t *Template) Trail() *AuditTrail     { return &t.AuditTrail }

func (t *Template) Meta() map[string]any {
	if t.Metadata == nil {
		t.Metadata = map[string]any{}
	}
	return t.Metadata
}

func (t *Template) SetMeta(key string, value any) { t.Meta()[key] = value }
func (t *Template) DeleteMeta(key string)         { delete(t.Meta(), key) }

// Compile-time checks: Contract carries every capability, Template only
// the base workflow surface.
var (
	_ StatusEntity = (*Contract)(nil)
	_ Signable     = (*Contract)(nil)
	_ Executable   = (*Contract)(nil)
	_ Terminable   = (*Contract)(nil)
	_ StatusEntity = (*Template)(nil)
)
