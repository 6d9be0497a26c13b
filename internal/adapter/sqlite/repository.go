package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neomorfeo/contractiq/internal/domain"
)

// CreateContract inserts a new contract row.
func (s *Store) CreateContract(ctx context.Context, c *domain.Contract) error {
	metadata, auditTrail, err := encodeBlobs(c.Metadata, c.AuditTrail)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contracts
		 (id, tenant_id, contract_type, phase, status, signature_status,
		  signed_at, executed_at, terminated_at, termination_reason,
		  metadata, audit_trail, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Tenant, c.ContractType, string(c.Phase), c.Status, c.SignatureStatus,
		nullTime(c.SignedAt), nullTime(c.ExecutedAt), nullTime(c.TerminatedAt), nullString(c.TerminationReason),
		metadata, auditTrail,
		c.CreatedAt.Format(timeFormat), c.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting contract: %w", err)
	}
	return nil
}

// GetContract returns a contract by id.
func (s *Store) GetContract(ctx context.Context, id string) (*domain.Contract, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, contract_type, phase, status, signature_status,
		        signed_at, executed_at, terminated_at, termination_reason,
		        metadata, audit_trail, created_at, updated_at
		 FROM contracts WHERE id = ?`, id,
	)
	return scanContract(row)
}

// ListContracts returns contracts matching the filter, newest first.
func (s *Store) ListContracts(ctx context.Context, filter domain.ContractFilter) ([]*domain.Contract, error) {
	query := `SELECT id, tenant_id, contract_type, phase, status, signature_status,
	                 signed_at, executed_at, terminated_at, termination_reason,
	                 metadata, audit_trail, created_at, updated_at
	          FROM contracts WHERE 1=1`
	var args []any

	if filter.Tenant != "" {
		query += ` AND tenant_id = ?`
		args = append(args, filter.Tenant)
	}
	if filter.ContractType != "" {
		query += ` AND contract_type = ?`
		args = append(args, filter.ContractType)
	}
	if filter.Phase != nil {
		query += ` AND phase = ?`
		args = append(args, string(*filter.Phase))
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*domain.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}

	return contracts, rows.Err()
}

// CreateTemplate inserts a new template row.
func (s *Store) CreateTemplate(ctx context.Context, t *domain.Template) error {
	metadata, auditTrail, err := encodeBlobs(t.Metadata, t.AuditTrail)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contract_templates
		 (id, tenant_id, contract_type, phase, status, metadata, audit_trail, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Tenant, t.ContractType, string(t.Phase), t.Status,
		metadata, auditTrail,
		t.CreatedAt.Format(timeFormat), t.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}
	return nil
}

// GetTemplate returns a template by id.
func (s *Store) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	var t domain.Template
	var phase, metadata, auditTrail, createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, contract_type, phase, status, metadata, audit_trail, created_at, updated_at
		 FROM contract_templates WHERE id = ?`, id,
	).Scan(&t.ID, &t.Tenant, &t.ContractType, &phase, &t.Status, &metadata, &auditTrail, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("scanning template: %w", err)
	}

	t.Phase = domain.Phase(phase)
	if err := decodeBlobs(metadata, auditTrail, &t.Metadata, &t.AuditTrail); err != nil {
		return nil, err
	}
	t.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	t.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return &t, nil
}

// GetEntity returns a contract or template by kind+id as the workflow
// engine's StatusEntity surface.
func (s *Store) GetEntity(ctx context.Context, kind domain.EntityKind, id string) (domain.StatusEntity, error) {
	switch kind {
	case domain.KindTemplate:
		return s.GetTemplate(ctx, id)
	default:
		return s.GetContract(ctx, id)
	}
}

// UpdateWithAudit persists an entity's fields together with its full
// audit trail in one transaction. Status and audit either land together
// or not at all.
func (s *Store) UpdateWithAudit(ctx context.Context, entity domain.StatusEntity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var result sql.Result
	switch e := entity.(type) {
	case *domain.Contract:
		metadata, auditTrail, encErr := encodeBlobs(e.Metadata, e.AuditTrail)
		if encErr != nil {
			return encErr
		}
		result, err = tx.ExecContext(ctx,
			`UPDATE contracts SET
			   phase = ?, status = ?, signature_status = ?,
			   signed_at = ?, executed_at = ?, terminated_at = ?, termination_reason = ?,
			   metadata = ?, audit_trail = ?, updated_at = ?
			 WHERE id = ?`,
			string(e.Phase), e.Status, e.SignatureStatus,
			nullTime(e.SignedAt), nullTime(e.ExecutedAt), nullTime(e.TerminatedAt), nullString(e.TerminationReason),
			metadata, auditTrail, now(), e.ID,
		)
	case *domain.Template:
		metadata, auditTrail, encErr := encodeBlobs(e.Metadata, e.AuditTrail)
		if encErr != nil {
			return encErr
		}
		result, err = tx.ExecContext(ctx,
			`UPDATE contract_templates SET
			   phase = ?, status = ?, metadata = ?, audit_trail = ?, updated_at = ?
			 WHERE id = ?`,
			string(e.Phase), e.Status, metadata, auditTrail, now(), e.ID,
		)
	default:
		return fmt.Errorf("unsupported entity kind %q", entity.EntityKind())
	}
	if err != nil {
		return fmt.Errorf("updating %s: %w", entity.EntityKind(), err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		if entity.EntityKind() == domain.KindTemplate {
			return domain.ErrTemplateNotFound
		}
		return domain.ErrContractNotFound
	}

	return tx.Commit()
}

// scanContract scans one contract row from either QueryRow or Rows.
func scanContract(row interface{ Scan(...any) error }) (*domain.Contract, error) {
	var c domain.Contract
	var phase, metadata, auditTrail, createdAt, updatedAt string
	var signedAt, executedAt, terminatedAt, terminationReason sql.NullString

	err := row.Scan(&c.ID, &c.Tenant, &c.ContractType, &phase, &c.Status, &c.SignatureStatus,
		&signedAt, &executedAt, &terminatedAt, &terminationReason,
		&metadata, &auditTrail, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrContractNotFound
		}
		return nil, fmt.Errorf("scanning contract: %w", err)
	}

	c.Phase = domain.Phase(phase)
	c.SignedAt = parseNullTime(signedAt)
	c.ExecutedAt = parseNullTime(executedAt)
	c.TerminatedAt = parseNullTime(terminatedAt)
	if terminationReason.Valid {
		c.TerminationReason = terminationReason.String
	}
	if err := decodeBlobs(metadata, auditTrail, &c.Metadata, &c.AuditTrail); err != nil {
		return nil, err
	}
	c.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	c.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return &c, nil
}

// encodeBlobs serializes the metadata map and audit trail for storage.
func encodeBlobs(metadata map[string]any, trail domain.AuditTrail) (string, string, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return "", "", fmt.Errorf("encoding metadata: %w", err)
	}
	audit, err := json.Marshal(trail.Entries())
	if err != nil {
		return "", "", fmt.Errorf("encoding audit trail: %w", err)
	}
	return string(meta), string(audit), nil
}

func decodeBlobs(metadata, auditTrail string, metaOut *map[string]any, trailOut *domain.AuditTrail) error {
	if err := json.Unmarshal([]byte(metadata), metaOut); err != nil {
		return fmt.Errorf("decoding metadata: %w", err)
	}
	var entries []domain.AuditEntry
	if err := json.Unmarshal([]byte(auditTrail), &entries); err != nil {
		return fmt.Errorf("decoding audit trail: %w", err)
	}
	*trailOut = domain.NewAuditTrail(entries)
	return nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeFormat)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse(timeFormat, v.String)
	if err != nil {
		return nil
	}
	return &t
}
