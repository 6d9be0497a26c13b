package app

import (
	"context"
	"fmt"
	"time"

	"github.com/neomorfeo/contractiq/internal/domain"
)

// TimestampField names an optional lifecycle timestamp an entity may
// carry. Whether a given entity actually has the field is decided by
// capability interface, not by probing storage.
type TimestampField string

const (
	FieldSignedAt     TimestampField = "signed_at"
	FieldExecutedAt   TimestampField = "executed_at"
	FieldTerminatedAt TimestampField = "terminated_at"
)

// AuditRecorder appends entries to an entity's audit trail and persists
// entity and trail together. It is consumed by the workflow service and
// usable standalone for non-transition actions.
type AuditRecorder struct {
	repo domain.ContractRepository
	now  func() time.Time
}

// NewAuditRecorder creates a recorder using the repository's atomic
// update path.
func NewAuditRecorder(repo domain.ContractRepository) *AuditRecorder {
	return &AuditRecorder{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Record appends one entry to the entity's in-memory trail with a
// server-side timestamp. It does not persist; callers that need
// persistence use Append or the workflow service's transactional path.
func (r *AuditRecorder) Record(entity domain.StatusEntity, action, actorID string, data map[string]any) domain.AuditEntry {
	entry := domain.AuditEntry{
		Action:    action,
		Timestamp: r.now(),
		ActorID:   actorID,
		Data:      data,
	}
	entity.Trail().Append(entry)
	return entry
}

// Append records one entry and persists the entity with its trail.
func (r *AuditRecorder) Append(ctx context.Context, entity domain.StatusEntity, action, actorID string, data map[string]any) error {
	r.Record(entity, action, actorID, data)
	if err := r.repo.UpdateWithAudit(ctx, entity); err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

// UpdateWithTimestampAndAudit sets one lifecycle timestamp and appends
// an entry describing it, persisting both in one write. It is a thin
// composition of the timestamp write and Append, not a separate code
// path. Entities lacking the field's capability keep the audit entry but
// skip the field, matching the workflow engine's gating.
func (r *AuditRecorder) UpdateWithTimestampAndAudit(ctx context.Context, entity domain.StatusEntity, field TimestampField, at time.Time, action, actorID string, extra map[string]any) error {
	applyTimestamp(entity, field, at)

	data := map[string]any{string(field): at.Format(time.RFC3339)}
	for k, v := range extra {
		data[k] = v
	}
	return r.Append(ctx, entity, action, actorID, data)
}

// applyTimestamp writes the named timestamp when the entity has the
// matching capability and silently skips it otherwise.
func applyTimestamp(entity domain.StatusEntity, field TimestampField, at time.Time) {
	switch field {
	case FieldSignedAt:
		if s, ok := entity.(domain.Signable); ok {
			s.SetSignedAt(at)
		}
	case FieldExecutedAt:
		if e, ok := entity.(domain.Executable); ok {
			e.SetExecutedAt(at)
		}
	case FieldTerminatedAt:
		if t, ok := entity.(domain.Terminable); ok {
			t.SetTerminatedAt(at)
		}
	}
}
