package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/contractiq/internal/app"
	"github.com/neomorfeo/contractiq/internal/domain"
)

// Services bundles the application services the API exposes.
type Services struct {
	Registry  *app.Registry
	Contracts *app.ContractService
	Workflow  *app.WorkflowService
	Billing   *app.BillingService
	Schema    *app.SchemaService
}

// ContractResponse is the API representation of a contract.
type ContractResponse struct {
	ID                string         `json:"id" doc:"Unique identifier"`
	TenantID          string         `json:"tenant_id" doc:"Owning tenant"`
	ContractType      string         `json:"contract_type" doc:"Tenant-defined contract type"`
	Phase             string         `json:"phase" doc:"Canonical lifecycle phase"`
	Status            string         `json:"status" doc:"Tenant-facing status label"`
	SignatureStatus   string         `json:"signature_status" doc:"Signature progress"`
	SignedAt          string         `json:"signed_at,omitempty" doc:"Signing timestamp (RFC 3339)"`
	ExecutedAt        string         `json:"executed_at,omitempty" doc:"Execution timestamp (RFC 3339)"`
	TerminatedAt      string         `json:"terminated_at,omitempty" doc:"Termination timestamp (RFC 3339)"`
	TerminationReason string         `json:"termination_reason,omitempty" doc:"Why the contract was terminated"`
	Metadata          map[string]any `json:"metadata,omitempty" doc:"Free-form lifecycle metadata"`
	CreatedAt         string         `json:"created_at" doc:"Creation timestamp (RFC 3339)"`
	UpdatedAt         string         `json:"updated_at" doc:"Last update timestamp (RFC 3339)"`
}

func toContractResponse(c *domain.Contract) ContractResponse {
	resp := ContractResponse{
		ID:                c.ID,
		TenantID:          c.Tenant,
		ContractType:      c.ContractType,
		Phase:             string(c.Phase),
		Status:            c.Status,
		SignatureStatus:   c.SignatureStatus,
		TerminationReason: c.TerminationReason,
		Metadata:          c.Metadata,
		CreatedAt:         c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         c.UpdatedAt.Format(time.RFC3339),
	}
	if c.SignedAt != nil {
		resp.SignedAt = c.SignedAt.Format(time.RFC3339)
	}
	if c.ExecutedAt != nil {
		resp.ExecutedAt = c.ExecutedAt.Format(time.RFC3339)
	}
	if c.TerminatedAt != nil {
		resp.TerminatedAt = c.TerminatedAt.Format(time.RFC3339)
	}
	return resp
}

// TemplateResponse is the API representation of a contract template.
type TemplateResponse struct {
	ID           string         `json:"id" doc:"Unique identifier"`
	TenantID     string         `json:"tenant_id" doc:"Owning tenant"`
	ContractType string         `json:"contract_type" doc:"Tenant-defined contract type"`
	Phase        string         `json:"phase" doc:"Canonical lifecycle phase"`
	Status       string         `json:"status" doc:"Tenant-facing status label"`
	Metadata     map[string]any `json:"metadata,omitempty" doc:"Free-form lifecycle metadata"`
	CreatedAt    string         `json:"created_at" doc:"Creation timestamp (RFC 3339)"`
	UpdatedAt    string         `json:"updated_at" doc:"Last update timestamp (RFC 3339)"`
}

func toTemplateResponse(t *domain.Template) TemplateResponse {
	return TemplateResponse{
		ID:           t.ID,
		TenantID:     t.Tenant,
		ContractType: t.ContractType,
		Phase:        string(t.Phase),
		Status:       t.Status,
		Metadata:     t.Metadata,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    t.UpdatedAt.Format(time.RFC3339),
	}
}

// AuditEntryResponse is the API representation of one audit entry.
type AuditEntryResponse struct {
	Action    string         `json:"action" doc:"Recorded action name"`
	Timestamp string         `json:"timestamp" doc:"Server-side timestamp (RFC 3339)"`
	ActorID   string         `json:"actor_id,omitempty" doc:"Who performed the action"`
	Data      map[string]any `json:"data,omitempty" doc:"Action context"`
}

func toAuditResponses(entries []domain.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = AuditEntryResponse{
			Action:    e.Action,
			Timestamp: e.Timestamp.Format(time.RFC3339),
			ActorID:   e.ActorID,
			Data:      e.Data,
		}
	}
	return out
}

// --- Tenant configuration ---

type GetConfigInput struct {
	Tenant string `path:"tenant" doc:"Tenant ID"`
}

type GetConfigOutput struct {
	Body map[string]any
}

type PutConfigInput struct {
	Tenant string `path:"tenant" doc:"Tenant ID"`
	Body   map[string]any
}

type PutConfigOutput struct {
	Body struct {
		Saved bool `json:"saved"`
	}
}

type InvalidateConfigInput struct {
	Tenant string `path:"tenant" doc:"Tenant ID"`
}

type InvalidateConfigOutput struct {
	Body struct {
		Invalidated bool `json:"invalidated"`
	}
}

// --- Billing ---

type BillingTotalInput struct {
	Tenant string `path:"tenant" doc:"Tenant ID"`
	Body   struct {
		Dimension  string         `json:"dimension" enum:"asset,contact,usage" doc:"Billing dimension"`
		Quantities map[string]int `json:"quantities" doc:"Dimension key to count"`
	}
}

type BillingTotalOutput struct {
	Body struct {
		Total float64 `json:"total" doc:"Aggregated charge"`
	}
}

type BillingCapabilitiesInput struct {
	Tenant string `path:"tenant" doc:"Tenant ID"`
}

type BillingCapabilitiesOutput struct {
	Body app.Capabilities
}

// --- Dynamic form schema ---

type SchemaInput struct {
	Tenant       string `path:"tenant" doc:"Tenant ID"`
	ContractType string `path:"type" doc:"Contract type"`
	Body         struct {
		Record map[string]any `json:"record,omitempty" doc:"Current field values driving visibility"`
	}
}

type SchemaOutput struct {
	Body domain.FormSchema
}

type ValidateInput struct {
	Tenant       string `path:"tenant" doc:"Tenant ID"`
	ContractType string `path:"type" doc:"Contract type"`
	Body         struct {
		Submission map[string]any `json:"submission" doc:"Submitted field values"`
	}
}

type ValidateOutput struct {
	Body struct {
		Valid  bool                     `json:"valid"`
		Errors []domain.ValidationError `json:"errors,omitempty"`
	}
}

type PutFormConfigInput struct {
	Tenant       string `path:"tenant" doc:"Tenant ID"`
	ContractType string `path:"type" doc:"Contract type"`
	Body         domain.FormConfig
}

type PutFormConfigOutput struct {
	Body struct {
		Saved bool `json:"saved"`
	}
}

// --- Contracts ---

type CreateContractInput struct {
	Body struct {
		TenantID     string `json:"tenant_id,omitempty" doc:"Owning tenant (defaults to root)"`
		ContractType string `json:"contract_type" minLength:"1" maxLength:"100" doc:"Tenant-defined contract type"`
	}
}

type CreateContractOutput struct {
	Body ContractResponse
}

type GetContractInput struct {
	ID string `path:"id" doc:"Contract ID"`
}

type GetContractOutput struct {
	Body ContractResponse
}

type ListContractsInput struct {
	Tenant       string `query:"tenant" required:"false" doc:"Filter by tenant"`
	ContractType string `query:"contract_type" required:"false" doc:"Filter by contract type"`
	Phase        string `query:"phase" required:"false" doc:"Filter by lifecycle phase"`
	Limit        int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset       int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListContractsOutput struct {
	Body []ContractResponse
}

type CreateTemplateInput struct {
	Body struct {
		TenantID     string `json:"tenant_id,omitempty" doc:"Owning tenant (defaults to root)"`
		ContractType string `json:"contract_type" minLength:"1" maxLength:"100" doc:"Tenant-defined contract type"`
	}
}

type CreateTemplateOutput struct {
	Body TemplateResponse
}

type GetTemplateInput struct {
	ID string `path:"id" doc:"Template ID"`
}

type GetTemplateOutput struct {
	Body TemplateResponse
}

// --- Lifecycle events ---

type TransitionInput struct {
	ID   string `path:"id" doc:"Entity ID"`
	Body struct {
		Event       string         `json:"event" doc:"Lifecycle event to trigger" enum:"sign,activate,terminate,suspend,reactivate"`
		ActorID     string         `json:"actor_id,omitempty" doc:"Who drives the transition"`
		Reason      string         `json:"reason,omitempty" doc:"Termination or suspension reason"`
		SignedAt    string         `json:"signed_at,omitempty" doc:"Signing timestamp override (RFC 3339)"`
		AuditAction string         `json:"audit_action,omitempty" doc:"Audit action name override"`
		Extra       map[string]any `json:"extra,omitempty" doc:"Additional audit data"`
	}
}

type TransitionContractOutput struct {
	Body ContractResponse
}

type TransitionTemplateOutput struct {
	Body TemplateResponse
}

type AuditInput struct {
	ID string `path:"id" doc:"Entity ID"`
}

type AuditOutput struct {
	Body []AuditEntryResponse
}

// Register adds all API routes to the Huma API.
func Register(api huma.API, svc Services) {
	registerConfig(api, svc)
	registerBilling(api, svc)
	registerSchema(api, svc)
	registerContracts(api, svc)
	registerEvents(api, svc)
}

func registerConfig(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "get-tenant-config",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{tenant}/config",
		Summary:     "Get a tenant's resolved configuration",
		Tags:        []string{"Configuration"},
	}, func(ctx context.Context, input *GetConfigInput) (*GetConfigOutput, error) {
		cfg := svc.Registry.Resolve(ctx, input.Tenant)
		return &GetConfigOutput{Body: cfg.Values()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "put-tenant-config",
		Method:      http.MethodPut,
		Path:        "/api/v1/tenants/{tenant}/config",
		Summary:     "Replace a tenant's configuration document",
		Tags:        []string{"Configuration"},
	}, func(ctx context.Context, input *PutConfigInput) (*PutConfigOutput, error) {
		if err := svc.Registry.Save(ctx, input.Tenant, input.Body); err != nil {
			return nil, toHumaError(err)
		}
		out := &PutConfigOutput{}
		out.Body.Saved = true
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "invalidate-tenant-config",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants/{tenant}/config/invalidate",
		Summary:     "Drop a tenant's cached configuration",
		Tags:        []string{"Configuration"},
	}, func(ctx context.Context, input *InvalidateConfigInput) (*InvalidateConfigOutput, error) {
		svc.Registry.Invalidate(input.Tenant)
		out := &InvalidateConfigOutput{}
		out.Body.Invalidated = true
		return out, nil
	})
}

func registerBilling(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "billing-total",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants/{tenant}/billing/total",
		Summary:     "Compute a billing total from quantities",
		Tags:        []string{"Billing"},
	}, func(ctx context.Context, input *BillingTotalInput) (*BillingTotalOutput, error) {
		total := svc.Billing.Total(ctx, input.Tenant,
			domain.BillingDimension(input.Body.Dimension), input.Body.Quantities)
		out := &BillingTotalOutput{}
		out.Body.Total = total
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "billing-capabilities",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{tenant}/billing/capabilities",
		Summary:     "Report which billing features the tenant supports",
		Tags:        []string{"Billing"},
	}, func(ctx context.Context, input *BillingCapabilitiesInput) (*BillingCapabilitiesOutput, error) {
		return &BillingCapabilitiesOutput{Body: svc.Billing.Capabilities(ctx, input.Tenant)}, nil
	})
}

func registerSchema(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "resolve-form-schema",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants/{tenant}/contract-types/{type}/schema",
		Summary:     "Resolve the dynamic form schema for a record",
		Tags:        []string{"Forms"},
	}, func(ctx context.Context, input *SchemaInput) (*SchemaOutput, error) {
		schema, err := svc.Schema.Schema(ctx, input.Tenant, input.ContractType, input.Body.Record)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &SchemaOutput{Body: schema}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "validate-submission",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants/{tenant}/contract-types/{type}/validate",
		Summary:     "Validate a submission against the same schema that rendered it",
		Tags:        []string{"Forms"},
	}, func(ctx context.Context, input *ValidateInput) (*ValidateOutput, error) {
		errs, err := svc.Schema.Validate(ctx, input.Tenant, input.ContractType, input.Body.Submission)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &ValidateOutput{}
		out.Body.Valid = len(errs) == 0
		out.Body.Errors = errs
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "put-form-config",
		Method:      http.MethodPut,
		Path:        "/api/v1/tenants/{tenant}/contract-types/{type}/form",
		Summary:     "Store a form configuration document",
		Tags:        []string{"Forms"},
	}, func(ctx context.Context, input *PutFormConfigInput) (*PutFormConfigOutput, error) {
		cfg := input.Body
		cfg.ContractType = input.ContractType
		if err := svc.Schema.SaveFormConfig(ctx, input.Tenant, cfg); err != nil {
			return nil, toHumaError(err)
		}
		out := &PutFormConfigOutput{}
		out.Body.Saved = true
		return out, nil
	})
}

func registerContracts(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "create-contract",
		Method:      http.MethodPost,
		Path:        "/api/v1/contracts",
		Summary:     "Create a draft contract",
		Tags:        []string{"Contracts"},
	}, func(ctx context.Context, input *CreateContractInput) (*CreateContractOutput, error) {
		contract, err := svc.Contracts.CreateContract(ctx, input.Body.TenantID, input.Body.ContractType)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateContractOutput{Body: toContractResponse(contract)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-contract",
		Method:      http.MethodGet,
		Path:        "/api/v1/contracts/{id}",
		Summary:     "Get a contract by ID",
		Tags:        []string{"Contracts"},
	}, func(ctx context.Context, input *GetContractInput) (*GetContractOutput, error) {
		contract, err := svc.Contracts.GetContract(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetContractOutput{Body: toContractResponse(contract)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-contracts",
		Method:      http.MethodGet,
		Path:        "/api/v1/contracts",
		Summary:     "List contracts",
		Tags:        []string{"Contracts"},
	}, func(ctx context.Context, input *ListContractsInput) (*ListContractsOutput, error) {
		filter := domain.ContractFilter{
			Tenant:       input.Tenant,
			ContractType: input.ContractType,
			Limit:        input.Limit,
			Offset:       input.Offset,
		}
		if input.Phase != "" {
			p := domain.Phase(input.Phase)
			filter.Phase = &p
		}

		contracts, err := svc.Contracts.ListContracts(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]ContractResponse, len(contracts))
		for i, c := range contracts {
			resp[i] = toContractResponse(c)
		}
		return &ListContractsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-template",
		Method:      http.MethodPost,
		Path:        "/api/v1/templates",
		Summary:     "Create a draft contract template",
		Tags:        []string{"Templates"},
	}, func(ctx context.Context, input *CreateTemplateInput) (*CreateTemplateOutput, error) {
		template, err := svc.Contracts.CreateTemplate(ctx, input.Body.TenantID, input.Body.ContractType)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateTemplateOutput{Body: toTemplateResponse(template)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-template",
		Method:      http.MethodGet,
		Path:        "/api/v1/templates/{id}",
		Summary:     "Get a template by ID",
		Tags:        []string{"Templates"},
	}, func(ctx context.Context, input *GetTemplateInput) (*GetTemplateOutput, error) {
		template, err := svc.Contracts.GetTemplate(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetTemplateOutput{Body: toTemplateResponse(template)}, nil
	})
}

func registerEvents(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "transition-contract",
		Method:      http.MethodPost,
		Path:        "/api/v1/contracts/{id}/events",
		Summary:     "Trigger a lifecycle event on a contract",
		Tags:        []string{"Contracts"},
	}, func(ctx context.Context, input *TransitionInput) (*TransitionContractOutput, error) {
		entity, err := applyTransition(ctx, svc, domain.KindContract, input)
		if err != nil {
			return nil, err
		}
		return &TransitionContractOutput{Body: toContractResponse(entity.(*domain.Contract))}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-template",
		Method:      http.MethodPost,
		Path:        "/api/v1/templates/{id}/events",
		Summary:     "Trigger a lifecycle event on a template",
		Tags:        []string{"Templates"},
	}, func(ctx context.Context, input *TransitionInput) (*TransitionTemplateOutput, error) {
		entity, err := applyTransition(ctx, svc, domain.KindTemplate, input)
		if err != nil {
			return nil, err
		}
		return &TransitionTemplateOutput{Body: toTemplateResponse(entity.(*domain.Template))}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-contract-audit",
		Method:      http.MethodGet,
		Path:        "/api/v1/contracts/{id}/audit",
		Summary:     "Get a contract's audit trail",
		Tags:        []string{"Contracts"},
	}, func(ctx context.Context, input *AuditInput) (*AuditOutput, error) {
		entries, err := svc.Contracts.AuditTrail(ctx, domain.KindContract, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AuditOutput{Body: toAuditResponses(entries)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-template-audit",
		Method:      http.MethodGet,
		Path:        "/api/v1/templates/{id}/audit",
		Summary:     "Get a template's audit trail",
		Tags:        []string{"Templates"},
	}, func(ctx context.Context, input *AuditInput) (*AuditOutput, error) {
		entries, err := svc.Contracts.AuditTrail(ctx, domain.KindTemplate, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AuditOutput{Body: toAuditResponses(entries)}, nil
	})
}

func applyTransition(ctx context.Context, svc Services, kind domain.EntityKind, input *TransitionInput) (domain.StatusEntity, error) {
	opts := app.TransitionOptions{
		ActorID:     input.Body.ActorID,
		Reason:      input.Body.Reason,
		AuditAction: input.Body.AuditAction,
		Extra:       input.Body.Extra,
	}
	if input.Body.SignedAt != "" {
		at, err := time.Parse(time.RFC3339, input.Body.SignedAt)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("signed_at must be RFC 3339")
		}
		opts.SignedAt = at
	}

	entity, err := svc.Workflow.Apply(ctx, kind, input.ID, domain.Event(input.Body.Event), opts)
	if err != nil {
		return nil, toHumaError(err)
	}
	return entity, nil
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	switch {
	case errors.Is(err, domain.ErrContractNotFound):
		return huma.Error404NotFound("contract not found")
	case errors.Is(err, domain.ErrTemplateNotFound):
		return huma.Error404NotFound("template not found")
	case errors.Is(err, domain.ErrFormConfigNotFound):
		return huma.Error404NotFound("form configuration not found")
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	var failedErr *domain.TransitionFailedError
	if errors.As(err, &failedErr) {
		return huma.Error500InternalServerError(failedErr.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
