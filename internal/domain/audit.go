package domain

import "time"

// AuditEntry is one record in an entity's append-only audit trail.
type AuditEntry struct {
	Action    string         `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
	ActorID   string         `json:"actor_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// AuditTrail is the ordered list of actions taken on an entity. Entries
// are only ever appended; there is no update or delete operation.
type AuditTrail struct {
	entries []AuditEntry
}

// NewAuditTrail builds a trail from previously persisted entries.
func NewAuditTrail(entries []AuditEntry) AuditTrail {
	return AuditTrail{entries: entries}
}

// Append adds one entry to the end of the trail.
func (t *AuditTrail) Append(entry AuditEntry) {
	t.entries = append(t.entries, entry)
}

// Entries returns a copy of the trail in insertion order.
func (t *AuditTrail) Entries() []AuditEntry {
	out := make([]AuditEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of recorded entries.
func (t *AuditTrail) Len() int {
	return len(t.entries)
}

// Last returns the most recent entry, if any.
func (t *AuditTrail) Last() (AuditEntry, bool) {
	if len(t.entries) == 0 {
		return AuditEntry{}, false
	}
	return t.entries[len(t.entries)-1], true
}
