package app

import (
	"context"
	"fmt"
	"time"

	"github.com/neomorfeo/contractiq/internal/domain"
)

// Metadata keys written into the entity's JSON metadata blob by the
// suspend/reactivate events.
const (
	metaSuspensionReason = "suspension_reason"
	metaSuspendedAt      = "suspended_at"
	metaReactivatedAt    = "reactivated_at"
)

// TransitionOptions carries the caller-supplied context for a lifecycle
// event. Every field is optional.
type TransitionOptions struct {
	// ActorID identifies who drove the transition, recorded in audit.
	ActorID string
	// Reason is the termination or suspension reason.
	Reason string
	// SignedAt overrides the signing timestamp; zero means now.
	SignedAt time.Time
	// AuditAction overrides the default "<status>_status_set" action.
	AuditAction string
	// Extra is merged into the audit entry's data.
	Extra map[string]any
}

// WorkflowService drives status transitions on contract-like entities.
// It is the only writer of status: each event resolves the tenant's
// status label through the registry, applies lifecycle metadata gated by
// the entity's capabilities, appends one audit entry, and persists the
// whole change atomically. On persistence failure nothing is applied and
// the caller receives a typed TransitionFailedError.
type WorkflowService struct {
	repo      domain.ContractRepository
	registry  *Registry
	validator domain.TransitionValidator
	publisher domain.EventPublisher
	recorder  *AuditRecorder
	now       func() time.Time
}

// NewWorkflowService creates a workflow service with the given adapters.
func NewWorkflowService(repo domain.ContractRepository, registry *Registry, validator domain.TransitionValidator, publisher domain.EventPublisher) *WorkflowService {
	return &WorkflowService{
		repo:      repo,
		registry:  registry,
		validator: validator,
		publisher: publisher,
		recorder:  NewAuditRecorder(repo),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Sign marks the entity as signed: tenant signed label, signature status,
// and signing timestamp (for entities that carry one).
func (s *WorkflowService) Sign(ctx context.Context, kind domain.EntityKind, id string, opts TransitionOptions) (domain.StatusEntity, error) {
	return s.Apply(ctx, kind, id, domain.EventSign, opts)
}

// Activate moves the entity to the tenant's active label and records the
// execution timestamp on entities that carry one.
func (s *WorkflowService) Activate(ctx context.Context, kind domain.EntityKind, id string, opts TransitionOptions) (domain.StatusEntity, error) {
	return s.Apply(ctx, kind, id, domain.EventActivate, opts)
}

// Terminate moves the entity to the tenant's terminated label. The
// reason lands in the termination fields when the entity has them and in
// the audit entry regardless.
func (s *WorkflowService) Terminate(ctx context.Context, kind domain.EntityKind, id string, opts TransitionOptions) (domain.StatusEntity, error) {
	return s.Apply(ctx, kind, id, domain.EventTerminate, opts)
}

// Suspend moves the entity to the tenant's suspended label and merges
// the suspension context into the metadata blob.
func (s *WorkflowService) Suspend(ctx context.Context, kind domain.EntityKind, id string, opts TransitionOptions) (domain.StatusEntity, error) {
	return s.Apply(ctx, kind, id, domain.EventSuspend, opts)
}

// Reactivate returns a suspended entity to the tenant's active label and
// clears the suspension metadata.
func (s *WorkflowService) Reactivate(ctx context.Context, kind domain.EntityKind, id string, opts TransitionOptions) (domain.StatusEntity, error) {
	return s.Apply(ctx, kind, id, domain.EventReactivate, opts)
}

// Apply drives one lifecycle event end to end.
func (s *WorkflowService) Apply(ctx context.Context, kind domain.EntityKind, id string, event domain.Event, opts TransitionOptions) (domain.StatusEntity, error) {
	entity, err := s.repo.GetEntity(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	phase, err := s.validator.Apply(ctx, entity.CurrentPhase(), event)
	if err != nil {
		return nil, err
	}

	cfg := s.registry.Resolve(ctx, entity.TenantID())
	status := cfg.StatusFor(event)

	entity.SetPhase(phase)
	entity.SetStatus(status)

	data := map[string]any{"status": status}
	for k, v := range opts.Extra {
		data[k] = v
	}

	s.applyEventMetadata(entity, event, cfg, opts, data)

	action := opts.AuditAction
	if action == "" {
		action = status + "_status_set"
	}
	s.recorder.Record(entity, action, opts.ActorID, data)

	if err := s.repo.UpdateWithAudit(ctx, entity); err != nil {
		return nil, &domain.TransitionFailedError{Event: event, Cause: err}
	}

	if s.publisher != nil {
		record := domain.TransitionRecord{
			EntityKind: kind,
			EntityID:   id,
			Tenant:     entity.TenantID(),
			Event:      event,
			Phase:      phase,
			Status:     status,
			ActorID:    opts.ActorID,
		}
		if err := s.publisher.Publish(ctx, record); err != nil {
			return nil, fmt.Errorf("publishing transition %q: %w", event, err)
		}
	}

	return entity, nil
}

// applyEventMetadata applies the per-event lifecycle writes. Optional
// timestamp fields are gated by capability interface: entities without
// the capability skip the write and the transition still succeeds.
func (s *WorkflowService) applyEventMetadata(entity domain.StatusEntity, event domain.Event, cfg domain.TenantConfiguration, opts TransitionOptions, data map[string]any) {
	now := s.now()

	switch event {
	case domain.EventSign:
		signedAt := opts.SignedAt
		if signedAt.IsZero() {
			signedAt = now
		}
		sigStatus := cfg.SignedSignatureStatus()
		if sig, ok := entity.(domain.Signable); ok {
			sig.SetSignedAt(signedAt)
			sig.SetSignatureStatus(sigStatus)
		}
		data["signature_status"] = sigStatus
		data["signed_at"] = signedAt.Format(time.RFC3339)

	case domain.EventActivate:
		if exec, ok := entity.(domain.Executable); ok {
			exec.SetExecutedAt(now)
			data["executed_at"] = now.Format(time.RFC3339)
		}

	case domain.EventTerminate:
		if term, ok := entity.(domain.Terminable); ok {
			term.SetTerminatedAt(now)
			if opts.Reason != "" {
				term.SetTerminationReason(opts.Reason)
			}
		}
		if opts.Reason != "" {
			data["termination_reason"] = opts.Reason
		}
		data["terminated_at"] = now.Format(time.RFC3339)

	case domain.EventSuspend:
		entity.SetMeta(metaSuspendedAt, now.Format(time.RFC3339))
		if opts.Reason != "" {
			entity.SetMeta(metaSuspensionReason, opts.Reason)
			data["suspension_reason"] = opts.Reason
		}

	case domain.EventReactivate:
		entity.DeleteMeta(metaSuspensionReason)
		entity.DeleteMeta(metaSuspendedAt)
		entity.SetMeta(metaReactivatedAt, now.Format(time.RFC3339))
	}
}
