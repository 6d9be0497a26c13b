package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/contractiq/internal/domain"
)

// TracingRepository wraps a domain.ContractRepository with OpenTelemetry
// tracing. Each method creates a span with semantic attributes and
// records errors.
type TracingRepository struct {
	next   domain.ContractRepository
	tracer trace.Tracer
}

// Compile-time check: TracingRepository implements domain.ContractRepository.
var _ domain.ContractRepository = (*TracingRepository)(nil)

// NewTracingRepository creates a tracing decorator around the given repository.
func NewTracingRepository(next domain.ContractRepository) *TracingRepository {
	return &TracingRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingRepository) CreateContract(ctx context.Context, c *domain.Contract) error {
	ctx, span := r.tracer.Start(ctx, "ContractRepository.CreateContract",
		trace.WithAttributes(
			attribute.String("contract.id", c.ID),
			attribute.String("tenant.id", c.Tenant),
			attribute.String("contract.type", c.ContractType),
		),
	)
	defer span.End()

	err := r.next.CreateContract(ctx, c)
	recordError(span, err)
	return err
}

func (r *TracingRepository) GetContract(ctx context.Context, id string) (*domain.Contract, error) {
	ctx, span := r.tracer.Start(ctx, "ContractRepository.GetContract",
		trace.WithAttributes(attribute.String("contract.id", id)),
	)
	defer span.End()

	c, err := r.next.GetContract(ctx, id)
	if err != nil && err != domain.ErrContractNotFound {
		recordError(span, err)
	}
	return c, err
}

func (r *TracingRepository) ListContracts(ctx context.Context, filter domain.ContractFilter) ([]*domain.Contract, error) {
	ctx, span := r.tracer.Start(ctx, "ContractRepository.ListContracts",
		trace.WithAttributes(attribute.String("tenant.id", filter.Tenant)),
	)
	defer span.End()

	contracts, err := r.next.ListContracts(ctx, filter)
	recordError(span, err)
	span.SetAttributes(attribute.Int("contracts.count", len(contracts)))
	return contracts, err
}

func (r *TracingRepository) CreateTemplate(ctx context.Context, t *domain.Template) error {
	ctx, span := r.tracer.Start(ctx, "ContractRepository.CreateTemplate",
		trace.WithAttributes(
			attribute.String("template.id", t.ID),
			attribute.String("tenant.id", t.Tenant),
		),
	)
	defer span.End()

	err := r.next.CreateTemplate(ctx, t)
	recordError(span, err)
	return err
}

func (r *TracingRepository) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	ctx, span := r.tracer.Start(ctx, "ContractRepository.GetTemplate",
		trace.WithAttributes(attribute.String("template.id", id)),
	)
	defer span.End()

	t, err := r.next.GetTemplate(ctx, id)
	if err != nil && err != domain.ErrTemplateNotFound {
		recordError(span, err)
	}
	return t, err
}

func (r *TracingRepository) GetEntity(ctx context.Context, kind domain.EntityKind, id string) (domain.StatusEntity, error) {
	ctx, span := r.tracer.Start(ctx, "ContractRepository.GetEntity",
		trace.WithAttributes(
			attribute.String("entity.kind", string(kind)),
			attribute.String("entity.id", id),
		),
	)
	defer span.End()

	e, err := r.next.GetEntity(ctx, kind, id)
	if err != nil && err != domain.ErrContractNotFound && err != domain.ErrTemplateNotFound {
		recordError(span, err)
	}
	return e, err
}

func (r *TracingRepository) UpdateWithAudit(ctx context.Context, entity domain.StatusEntity) error {
	ctx, span := r.tracer.Start(ctx, "ContractRepository.UpdateWithAudit",
		trace.WithAttributes(
			attribute.String("entity.kind", string(entity.EntityKind())),
			attribute.String("entity.id", entity.EntityID()),
			attribute.Int("audit.entries", entity.Trail().Len()),
		),
	)
	defer span.End()

	err := r.next.UpdateWithAudit(ctx, entity)
	recordError(span, err)
	return err
}

func recordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
