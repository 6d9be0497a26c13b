package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/contractiq/internal/domain"
)

// ContractService owns contract and template creation and reads. Status
// is never set through this service: creation fixes the draft phase and
// all later changes go through the workflow service.
type ContractService struct {
	repo     domain.ContractRepository
	registry *Registry
}

// NewContractService creates a contract service.
func NewContractService(repo domain.ContractRepository, registry *Registry) *ContractService {
	return &ContractService{repo: repo, registry: registry}
}

// CreateContract persists a new draft contract. The initial status label
// is the tenant's draft convention: the literal phase name, since the
// default_*_status keys only cover post-draft phases.
func (s *ContractService) CreateContract(ctx context.Context, tenantID, contractType string) (*domain.Contract, error) {
	id, err := generateID()
	if err != nil {
		return nil, fmt.Errorf("generating contract id: %w", err)
	}
	if tenantID == "" {
		tenantID = domain.DefaultTenantID
	}

	contract := domain.NewContract(id, tenantID, contractType, string(domain.PhaseDraft))
	if err := s.repo.CreateContract(ctx, contract); err != nil {
		return nil, fmt.Errorf("creating contract: %w", err)
	}
	return contract, nil
}

// CreateTemplate persists a new draft template.
func (s *ContractService) CreateTemplate(ctx context.Context, tenantID, contractType string) (*domain.Template, error) {
	id, err := generateID()
	if err != nil {
		return nil, fmt.Errorf("generating template id: %w", err)
	}
	if tenantID == "" {
		tenantID = domain.DefaultTenantID
	}

	template := domain.NewTemplate(id, tenantID, contractType, string(domain.PhaseDraft))
	if err := s.repo.CreateTemplate(ctx, template); err != nil {
		return nil, fmt.Errorf("creating template: %w", err)
	}
	return template, nil
}

// GetContract returns a contract by id.
func (s *ContractService) GetContract(ctx context.Context, id string) (*domain.Contract, error) {
	return s.repo.GetContract(ctx, id)
}

// GetTemplate returns a template by id.
func (s *ContractService) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	return s.repo.GetTemplate(ctx, id)
}

// ListContracts returns contracts matching the given filter.
func (s *ContractService) ListContracts(ctx context.Context, filter domain.ContractFilter) ([]*domain.Contract, error) {
	return s.repo.ListContracts(ctx, filter)
}

// AuditTrail returns the entity's audit entries in insertion order.
func (s *ContractService) AuditTrail(ctx context.Context, kind domain.EntityKind, id string) ([]domain.AuditEntry, error) {
	entity, err := s.repo.GetEntity(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return entity.Trail().Entries(), nil
}
