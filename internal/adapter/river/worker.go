package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// TransitionWorker processes transition jobs from the River queue.
// For now it logs the transition; future versions will dispatch to
// renewal scheduling, notification, or billing-sync systems.
type TransitionWorker struct {
	river.WorkerDefaults[TransitionJobArgs]
}

// Work processes a single transition job.
func (w *TransitionWorker) Work(ctx context.Context, job *river.Job[TransitionJobArgs]) error {
	slog.InfoContext(ctx, "processing transition",
		"event", job.Args.Event,
		"entity_kind", job.Args.EntityKind,
		"entity_id", job.Args.EntityID,
		"tenant_id", job.Args.TenantID,
		"status", job.Args.Status,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}
