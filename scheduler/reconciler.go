package scheduler

import (
	"context"
	"encoding/json"
	"time"

	"SlackArchive/db"

	log "github.com/inconshreveable/log15/v3"
	"github.com/robfig/cron/v3"
)

const (
	reconcileSchedule = "@every 1m"
	reconcileTimeout  = 2 * time.Minute
	batchSize         = 50
	maxAttempts       = 10
	baseRetryDelay    = time.Minute
	maxRetryDelay     = time.Hour
)

// Reprocessor re-runs a buffered sub-event. Satisfied by *ingest.Pipeline.
type Reprocessor interface {
	ReprocessEvent(ctx context.Context, raw json.RawMessage) error
}

// Reconciler drains the pending-event table: replies that arrived before
// their parent, profile lookups that failed, store writes that failed after
// the webhook was already acknowledged. Events are retried with exponential
// backoff and dropped after maxAttempts.
type Reconciler struct {
	store    db.Store
	pipeline Reprocessor
	cron     *cron.Cron
	logger   log.Logger
}

func NewReconciler(store db.Store, pipeline Reprocessor) *Reconciler {
	return &Reconciler{
		store:    store,
		pipeline: pipeline,
		cron:     cron.New(),
		logger:   log.New("module", "reconciler"),
	}
}

func (r *Reconciler) Start() error {
	_, err := r.cron.AddFunc(reconcileSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()
		r.RunOnce(ctx, time.Now().UTC())
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("reconciler started", "schedule", reconcileSchedule)
	return nil
}

func (r *Reconciler) Stop() {
	r.cron.Stop()
}

// RunOnce retries every pending event that is due at now.
func (r *Reconciler) RunOnce(ctx context.Context, now time.Time) {
	events, err := r.store.DuePendingEvents(ctx, now, batchSize)
	if err != nil {
		r.logger.Error("failed to load pending events", "err", err)
		return
	}

	for _, event := range events {
		if err := r.pipeline.ReprocessEvent(ctx, json.RawMessage(event.Payload)); err != nil {
			r.retryLater(ctx, event, now, err)
			continue
		}

		if err := r.store.DeletePending(ctx, event.ID); err != nil {
			r.logger.Error("failed to remove reprocessed event", "id", event.ID, "err", err)
			continue
		}
		r.logger.Info("reprocessed pending event", "id", event.ID, "team", event.TeamID, "reason", event.Reason)
	}
}

func (r *Reconciler) retryLater(ctx context.Context, event db.PendingEvent, now time.Time, cause error) {
	attempts := event.Attempts + 1
	if attempts >= maxAttempts {
		r.logger.Error("giving up on pending event",
			"id", event.ID, "team", event.TeamID, "reason", event.Reason, "attempts", attempts, "err", cause)
		if err := r.store.DeletePending(ctx, event.ID); err != nil {
			r.logger.Error("failed to drop exhausted event", "id", event.ID, "err", err)
		}
		return
	}

	delay := baseRetryDelay << attempts
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	if err := r.store.RequeuePending(ctx, event.ID, attempts, now.Add(delay)); err != nil {
		r.logger.Error("failed to requeue pending event", "id", event.ID, "err", err)
		return
	}
	r.logger.Warn("pending event retry failed, backing off",
		"id", event.ID, "attempts", attempts, "next_retry_in", delay, "err", cause)
}
