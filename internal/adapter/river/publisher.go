package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/contractiq/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// TransitionJobArgs carries the data needed to process a status
// transition asynchronously. River serializes this as JSON into its job
// queue table. It is a snapshot taken when the transition committed, so
// the worker never needs to query the database.
type TransitionJobArgs struct {
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id"`
	TenantID   string `json:"tenant_id"`
	Event      string `json:"event"`
	Phase      string `json:"phase"`
	Status     string `json:"status"`
	ActorID    string `json:"actor_id,omitempty"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (TransitionJobArgs) Kind() string { return "transition.recorded" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a transition record as an async job in River.
func (p *Publisher) Publish(ctx context.Context, record domain.TransitionRecord) error {
	_, err := p.client.Insert(ctx, TransitionJobArgs{
		EntityKind: string(record.EntityKind),
		EntityID:   record.EntityID,
		TenantID:   record.Tenant,
		Event:      string(record.Event),
		Phase:      string(record.Phase),
		Status:     record.Status,
		ActorID:    record.ActorID,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing transition job: %w", err)
	}
	return nil
}
