package otel_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	adapter "github.com/neomorfeo/contractiq/internal/adapter/otel"
	"github.com/neomorfeo/contractiq/internal/domain"
)

// --- Test tracer setup ---

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter
}

// --- Mock repository ---

type mockRepo struct {
	contracts map[string]*domain.Contract
	templates map[string]*domain.Template
	updateErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		contracts: make(map[string]*domain.Contract),
		templates: make(map[string]*domain.Template),
	}
}

func (m *mockRepo) CreateContract(_ context.Context, c *domain.Contract) error {
	m.contracts[c.ID] = c
	return nil
}

func (m *mockRepo) GetContract(_ context.Context, id string) (*domain.Contract, error) {
	c, ok := m.contracts[id]
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	return c, nil
}

func (m *mockRepo) ListContracts(_ context.Context, _ domain.ContractFilter) ([]*domain.Contract, error) {
	out := make([]*domain.Contract, 0, len(m.contracts))
	for _, c := range m.contracts {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockRepo) CreateTemplate(_ context.Context, t *domain.Template) error {
	m.templates[t.ID] = t
	return nil
}

func (m *mockRepo) GetTemplate(_ context.Context, id string) (*domain.Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	return t, nil
}

func (m *mockRepo) GetEntity(ctx context.Context, kind domain.EntityKind, id string) (domain.StatusEntity, error) {
	if kind == domain.KindTemplate {
		return m.GetTemplate(ctx, id)
	}
	return m.GetContract(ctx, id)
}

func (m *mockRepo) UpdateWithAudit(_ context.Context, entity domain.StatusEntity) error {
	return m.updateErr
}

// --- Tests ---

func TestTracingRepository_CreateContract_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockRepo()
	repo := adapter.NewTracingRepository(inner)

	contract := domain.NewContract("c-1", "acme", "service", "draft")
	if err := repo.CreateContract(context.Background(), contract); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "ContractRepository.CreateContract" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "ContractRepository.CreateContract")
	}

	assertAttribute(t, spans[0], "contract.id", "c-1")
	assertAttribute(t, spans[0], "tenant.id", "acme")
	assertAttribute(t, spans[0], "contract.type", "service")
}

func TestTracingRepository_GetContract_NotFoundIsNotASpanError(t *testing.T) {
	exporter := setupTestTracer(t)
	repo := adapter.NewTracingRepository(newMockRepo())

	_, err := repo.GetContract(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrContractNotFound) {
		t.Fatalf("expected ErrContractNotFound, got %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	// Not-found is an expected outcome, not a repository failure.
	if spans[0].Status.Code == codes.Error {
		t.Error("not-found should not mark the span as errored")
	}
}

func TestTracingRepository_ListContracts_RecordsResultCount(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockRepo()
	repo := adapter.NewTracingRepository(inner)

	inner.contracts["c-1"] = domain.NewContract("c-1", "acme", "service", "draft")
	inner.contracts["c-2"] = domain.NewContract("c-2", "acme", "nda", "draft")

	contracts, err := repo.ListContracts(context.Background(), domain.ContractFilter{Tenant: "acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contracts) != 2 {
		t.Errorf("got %d contracts, want 2", len(contracts))
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	assertAttribute(t, spans[0], "contracts.count", "2")
}

func TestTracingRepository_GetEntity_RecordsKind(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockRepo()
	repo := adapter.NewTracingRepository(inner)

	inner.templates["t-1"] = domain.NewTemplate("t-1", "acme", "nda", "draft")

	if _, err := repo.GetEntity(context.Background(), domain.KindTemplate, "t-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "ContractRepository.GetEntity" {
		t.Errorf("span name = %q", spans[0].Name)
	}
	assertAttribute(t, spans[0], "entity.kind", "template")
	assertAttribute(t, spans[0], "entity.id", "t-1")
}

func TestTracingRepository_UpdateWithAudit_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockRepo()
	inner.updateErr = errors.New("disk full")
	repo := adapter.NewTracingRepository(inner)

	contract := domain.NewContract("c-1", "acme", "service", "draft")
	contract.AuditTrail.Append(domain.AuditEntry{Action: "signed_status_set"})

	if err := repo.UpdateWithAudit(context.Background(), contract); err == nil {
		t.Fatal("expected error")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected error event on span")
	}
	assertAttribute(t, spans[0], "audit.entries", "1")
}

// assertAttribute checks that a span has an attribute with the given key and string value.
func assertAttribute(t *testing.T, span tracetest.SpanStub, key, want string) {
	t.Helper()
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			got := attr.Value.Emit()
			if got != want {
				t.Errorf("attribute %q = %q, want %q", key, got, want)
			}
			return
		}
	}
	t.Errorf("attribute %q not found on span %q", key, span.Name)
}
