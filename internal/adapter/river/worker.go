package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// EventWorker processes domain event jobs from the River queue.
// For now it logs the event; future versions will dispatch to
// receipt printing, Gift Aid export, or notification systems.
type EventWorker struct {
	river.WorkerDefaults[EventJobArgs]
}

// Work processes a single event job.
func (w *EventWorker) Work(ctx context.Context, job *river.Job[EventJobArgs]) error {
	slog.InfoContext(ctx, "processing event",
		"event", job.Args.Event,
		"campaign_id", job.Args.CampaignID,
		"campaign_slug", job.Args.Slug,
		"status", job.Args.Status,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}

// Reconciler re-derives the status of every campaign and reports how
// many changed.
type Reconciler interface {
	ReconcileAll(ctx context.Context) (int, error)
}

// ReconcileWorker runs the periodic full-table status sweep.
type ReconcileWorker struct {
	river.WorkerDefaults[ReconcileJobArgs]

	reconciler Reconciler
}

// Work runs a single reconcile sweep.
func (w *ReconcileWorker) Work(ctx context.Context, job *river.Job[ReconcileJobArgs]) error {
	changed, err := w.reconciler.ReconcileAll(ctx)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "reconcile sweep finished",
		"changed", changed,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}
