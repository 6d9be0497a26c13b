package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/contractiq/internal/domain"
)

const tracerName = "github.com/neomorfeo/contractiq/internal/adapter/otel"

// TracingConfigStore wraps a domain.ConfigurationStore with OpenTelemetry
// tracing. Configuration reads sit on every request path, so spans here
// make cache misses and store latency visible.
type TracingConfigStore struct {
	next   domain.ConfigurationStore
	tracer trace.Tracer
}

// Compile-time check: TracingConfigStore implements domain.ConfigurationStore.
var _ domain.ConfigurationStore = (*TracingConfigStore)(nil)

// NewTracingConfigStore creates a tracing decorator around the given store.
func NewTracingConfigStore(next domain.ConfigurationStore) *TracingConfigStore {
	return &TracingConfigStore{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (s *TracingConfigStore) Load(ctx context.Context, tenantID string) (map[string]any, error) {
	ctx, span := s.tracer.Start(ctx, "ConfigurationStore.Load",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
	)
	defer span.End()

	values, err := s.next.Load(ctx, tenantID)
	if err != nil && err != domain.ErrConfigurationNotFound {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return values, err
}

func (s *TracingConfigStore) Save(ctx context.Context, tenantID string, values map[string]any) error {
	ctx, span := s.tracer.Start(ctx, "ConfigurationStore.Save",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.Int("config.keys", len(values)),
		),
	)
	defer span.End()

	err := s.next.Save(ctx, tenantID, values)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
