package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/neomorfeo/contractiq/internal/adapter/sqlite"
	"github.com/neomorfeo/contractiq/internal/domain"
)

func mustCreateContract(t *testing.T, store *sqlite.Store, c *domain.Contract) {
	t.Helper()
	if err := store.CreateContract(context.Background(), c); err != nil {
		t.Fatalf("mustCreateContract failed: %v", err)
	}
}

func TestCreateContract_And_GetContract(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	contract := domain.NewContract("c-1", "acme", "service", "draft")
	contract.Metadata["source"] = "import"
	mustCreateContract(t, store, contract)

	got, err := store.GetContract(ctx, "c-1")
	if err != nil {
		t.Fatalf("GetContract failed: %v", err)
	}
	if got.ID != "c-1" {
		t.Errorf("ID = %q, want %q", got.ID, "c-1")
	}
	if got.Tenant != "acme" {
		t.Errorf("Tenant = %q, want %q", got.Tenant, "acme")
	}
	if got.ContractType != "service" {
		t.Errorf("ContractType = %q, want %q", got.ContractType, "service")
	}
	if got.Phase != domain.PhaseDraft {
		t.Errorf("Phase = %q, want %q", got.Phase, domain.PhaseDraft)
	}
	if got.Status != "draft" {
		t.Errorf("Status = %q, want %q", got.Status, "draft")
	}
	if got.SignedAt != nil || got.ExecutedAt != nil || got.TerminatedAt != nil {
		t.Error("lifecycle timestamps should be nil on a fresh contract")
	}
	if got.Metadata["source"] != "import" {
		t.Errorf("Metadata = %#v", got.Metadata)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}
}

func TestGetContract_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetContract(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrContractNotFound) {
		t.Errorf("expected ErrContractNotFound, got %v", err)
	}
}

func TestUpdateWithAudit_Contract(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	contract := domain.NewContract("c-1", "acme", "service", "draft")
	mustCreateContract(t, store, contract)

	signedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	contract.Phase = domain.PhaseSigned
	contract.Status = "executed"
	contract.SignatureStatus = "fully_executed"
	contract.SignedAt = &signedAt
	contract.AuditTrail.Append(domain.AuditEntry{
		Action:    "executed_status_set",
		Timestamp: signedAt,
		ActorID:   "user-7",
		Data:      map[string]any{"status": "executed"},
	})

	if err := store.UpdateWithAudit(ctx, contract); err != nil {
		t.Fatalf("UpdateWithAudit failed: %v", err)
	}

	got, err := store.GetContract(ctx, "c-1")
	if err != nil {
		t.Fatalf("GetContract failed: %v", err)
	}
	if got.Phase != domain.PhaseSigned || got.Status != "executed" {
		t.Errorf("phase/status = %q/%q", got.Phase, got.Status)
	}
	if got.SignedAt == nil || !got.SignedAt.Equal(signedAt) {
		t.Errorf("SignedAt = %v, want %v", got.SignedAt, signedAt)
	}
	if got.AuditTrail.Len() != 1 {
		t.Fatalf("audit entries = %d, want 1", got.AuditTrail.Len())
	}
	entry := got.AuditTrail.Entries()[0]
	if entry.Action != "executed_status_set" || entry.ActorID != "user-7" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Data["status"] != "executed" {
		t.Errorf("entry data = %#v", entry.Data)
	}
}

func TestUpdateWithAudit_ContractNotFound(t *testing.T) {
	store := newTestStore(t)

	contract := domain.NewContract("nonexistent", "acme", "service", "draft")
	err := store.UpdateWithAudit(context.Background(), contract)
	if !errors.Is(err, domain.ErrContractNotFound) {
		t.Errorf("expected ErrContractNotFound, got %v", err)
	}
}

func TestUpdateWithAudit_AccumulatesTrail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	contract := domain.NewContract("c-1", "acme", "service", "draft")
	mustCreateContract(t, store, contract)

	for i := 0; i < 3; i++ {
		got, err := store.GetContract(ctx, "c-1")
		if err != nil {
			t.Fatalf("GetContract failed: %v", err)
		}
		got.AuditTrail.Append(domain.AuditEntry{
			Action:    fmt.Sprintf("step_%d", i),
			Timestamp: time.Now().UTC(),
		})
		if err := store.UpdateWithAudit(ctx, got); err != nil {
			t.Fatalf("UpdateWithAudit failed: %v", err)
		}
	}

	got, _ := store.GetContract(ctx, "c-1")
	if got.AuditTrail.Len() != 3 {
		t.Fatalf("audit entries = %d, want 3", got.AuditTrail.Len())
	}
	for i, entry := range got.AuditTrail.Entries() {
		if entry.Action != fmt.Sprintf("step_%d", i) {
			t.Errorf("entry %d action = %q, insertion order lost", i, entry.Action)
		}
	}
}

func TestListContracts_Filters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreateContract(t, store, domain.NewContract("c-1", "acme", "service", "draft"))
	mustCreateContract(t, store, domain.NewContract("c-2", "acme", "nda", "draft"))
	mustCreateContract(t, store, domain.NewContract("c-3", "globex", "service", "draft"))

	active := domain.NewContract("c-4", "acme", "service", "active")
	active.Phase = domain.PhaseActive
	mustCreateContract(t, store, active)

	all, err := store.ListContracts(ctx, domain.ContractFilter{})
	if err != nil {
		t.Fatalf("ListContracts failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("got %d contracts, want 4", len(all))
	}

	acme, err := store.ListContracts(ctx, domain.ContractFilter{Tenant: "acme"})
	if err != nil {
		t.Fatalf("ListContracts failed: %v", err)
	}
	if len(acme) != 3 {
		t.Errorf("got %d acme contracts, want 3", len(acme))
	}

	service, err := store.ListContracts(ctx, domain.ContractFilter{Tenant: "acme", ContractType: "service"})
	if err != nil {
		t.Fatalf("ListContracts failed: %v", err)
	}
	if len(service) != 2 {
		t.Errorf("got %d acme service contracts, want 2", len(service))
	}

	phase := domain.PhaseActive
	byPhase, err := store.ListContracts(ctx, domain.ContractFilter{Phase: &phase})
	if err != nil {
		t.Fatalf("ListContracts failed: %v", err)
	}
	if len(byPhase) != 1 || byPhase[0].ID != "c-4" {
		t.Errorf("phase filter returned %d contracts", len(byPhase))
	}
}

func TestListContracts_Pagination(t *testing.T) {
	store := newTestStore(t)

	for i := range 5 {
		id := fmt.Sprintf("c-%d", i)
		mustCreateContract(t, store, domain.NewContract(id, "acme", "service", "draft"))
	}

	contracts, err := store.ListContracts(context.Background(), domain.ContractFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("ListContracts failed: %v", err)
	}
	if len(contracts) != 2 {
		t.Errorf("got %d contracts, want 2", len(contracts))
	}
}

func TestCreateTemplate_And_GetTemplate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tpl := domain.NewTemplate("t-1", "acme", "nda", "draft")
	if err := store.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	got, err := store.GetTemplate(ctx, "t-1")
	if err != nil {
		t.Fatalf("GetTemplate failed: %v", err)
	}
	if got.ID != "t-1" || got.Tenant != "acme" || got.ContractType != "nda" {
		t.Errorf("template = %+v", got)
	}
	if got.Phase != domain.PhaseDraft {
		t.Errorf("Phase = %q, want draft", got.Phase)
	}
}

func TestGetTemplate_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetTemplate(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestUpdateWithAudit_Template(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tpl := domain.NewTemplate("t-1", "acme", "nda", "draft")
	if err := store.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	tpl.Phase = domain.PhaseActive
	tpl.Status = "active"
	tpl.Metadata["approved_by"] = "legal"
	tpl.AuditTrail.Append(domain.AuditEntry{Action: "active_status_set", Timestamp: time.Now().UTC()})

	if err := store.UpdateWithAudit(ctx, tpl); err != nil {
		t.Fatalf("UpdateWithAudit failed: %v", err)
	}

	got, err := store.GetTemplate(ctx, "t-1")
	if err != nil {
		t.Fatalf("GetTemplate failed: %v", err)
	}
	if got.Phase != domain.PhaseActive || got.Status != "active" {
		t.Errorf("phase/status = %q/%q", got.Phase, got.Status)
	}
	if got.Metadata["approved_by"] != "legal" {
		t.Errorf("metadata = %#v", got.Metadata)
	}
	if got.AuditTrail.Len() != 1 {
		t.Errorf("audit entries = %d, want 1", got.AuditTrail.Len())
	}
}

func TestGetEntity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreateContract(t, store, domain.NewContract("c-1", "acme", "service", "draft"))
	if err := store.CreateTemplate(ctx, domain.NewTemplate("t-1", "acme", "nda", "draft")); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	entity, err := store.GetEntity(ctx, domain.KindContract, "c-1")
	if err != nil {
		t.Fatalf("GetEntity contract failed: %v", err)
	}
	if _, ok := entity.(*domain.Contract); !ok {
		t.Errorf("got %T, want *domain.Contract", entity)
	}

	entity, err = store.GetEntity(ctx, domain.KindTemplate, "t-1")
	if err != nil {
		t.Fatalf("GetEntity template failed: %v", err)
	}
	if _, ok := entity.(*domain.Template); !ok {
		t.Errorf("got %T, want *domain.Template", entity)
	}
}

func TestContract_TerminationFieldsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	contract := domain.NewContract("c-1", "acme", "service", "active")
	contract.Phase = domain.PhaseActive
	mustCreateContract(t, store, contract)

	terminatedAt := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	contract.Phase = domain.PhaseTerminated
	contract.Status = "terminated"
	contract.TerminatedAt = &terminatedAt
	contract.TerminationReason = "non-payment"

	if err := store.UpdateWithAudit(ctx, contract); err != nil {
		t.Fatalf("UpdateWithAudit failed: %v", err)
	}

	got, _ := store.GetContract(ctx, "c-1")
	if got.TerminatedAt == nil || !got.TerminatedAt.Equal(terminatedAt) {
		t.Errorf("TerminatedAt = %v, want %v", got.TerminatedAt, terminatedAt)
	}
	if got.TerminationReason != "non-payment" {
		t.Errorf("TerminationReason = %q", got.TerminationReason)
	}
}
