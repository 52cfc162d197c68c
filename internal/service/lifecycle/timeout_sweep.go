package lifecycle

import (
	"context"
	"log/slog"
	"time"

	models "auditcore/internal/domain/models/lifecycle"
	lifecycleRepo "auditcore/internal/domain/repositories/lifecycle"
	"auditcore/internal/metrics"
)

// TimeoutSweeper is the external clock for workflow deadlines. It
// periodically expires in-progress workflows whose timeout_at has passed;
// the engine itself never mutates state on a read path.
type TimeoutSweeper struct {
	workflowRepo lifecycleRepo.WorkflowRepository
	events       EventPublisher
	metrics      *metrics.Metrics
	interval     time.Duration
	logger       *slog.Logger
}

// NewTimeoutSweeper creates a sweeper that runs every interval.
func NewTimeoutSweeper(
	workflowRepo lifecycleRepo.WorkflowRepository,
	events EventPublisher,
	m *metrics.Metrics,
	interval time.Duration,
	logger *slog.Logger,
) *TimeoutSweeper {
	return &TimeoutSweeper{
		workflowRepo: workflowRepo,
		events:       events,
		metrics:      m,
		interval:     interval,
		logger:       logger,
	}
}

// Run sweeps until the context is cancelled.
func (s *TimeoutSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("timeout sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce expires everything currently overdue. Idempotent: the update
// only matches in-progress rows, so an already-expired workflow is never
// touched twice.
func (s *TimeoutSweeper) SweepOnce(ctx context.Context) error {
	ids, err := s.workflowRepo.MarkTimedOut(ctx, time.Now().UTC())
	if err != nil {
		return err
	}

	for _, id := range ids {
		workflow, err := s.workflowRepo.GetByID(ctx, id)
		if err != nil {
			s.logger.Error("failed to load timed-out workflow", "workflow_id", id, "error", err)
			continue
		}

		s.metrics.WorkflowsTimedOutTotal.Inc()
		s.events.Publish(models.Event{
			Type:       models.EventWorkflowTimedOut,
			DocumentID: workflow.DocumentID,
			Payload:    workflow,
		})
		s.logger.Info("workflow timed out", "workflow_id", id, "document_id", workflow.DocumentID)
	}

	return nil
}
