package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	models "auditcore/internal/domain/models/lifecycle"
	"auditcore/internal/metrics"
)

func TestSweepOnceExpiresOverdueWorkflows(t *testing.T) {
	repo := newFakeWorkflowRepo()
	events := &fakeEvents{}
	sweeper := NewTimeoutSweeper(repo, events, metrics.NewWith(prometheus.NewRegistry()), time.Minute, testLogger())
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)

	repo.put(models.DocumentWorkflow{
		ID: "wf-overdue", DocumentID: "doc-1", TemplateID: "standard-audit",
		CurrentStep: 2, Status: models.WorkflowInProgress, TimeoutAt: &past,
	})
	repo.put(models.DocumentWorkflow{
		ID: "wf-live", DocumentID: "doc-2", TemplateID: "standard-audit",
		CurrentStep: 1, Status: models.WorkflowInProgress, TimeoutAt: &future,
	})
	repo.put(models.DocumentWorkflow{
		ID: "wf-done", DocumentID: "doc-3", TemplateID: "standard-audit",
		CurrentStep: 4, Status: models.WorkflowCompleted, TimeoutAt: &past,
	})

	if err := sweeper.SweepOnce(ctx); err != nil {
		t.Fatalf("SweepOnce() unexpected error: %v", err)
	}

	overdue, _ := repo.GetByID(ctx, "wf-overdue")
	if overdue.Status != models.WorkflowTimedOut {
		t.Errorf("wf-overdue status = %s, want timed_out", overdue.Status)
	}
	if overdue.CompletedAt == nil {
		t.Error("wf-overdue completed_at not set")
	}

	live, _ := repo.GetByID(ctx, "wf-live")
	if live.Status != models.WorkflowInProgress {
		t.Errorf("wf-live status = %s, want in_progress", live.Status)
	}
	done, _ := repo.GetByID(ctx, "wf-done")
	if done.Status != models.WorkflowCompleted {
		t.Errorf("wf-done status = %s, want completed", done.Status)
	}

	published := events.published()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	if published[0].Type != models.EventWorkflowTimedOut || published[0].DocumentID != "doc-1" {
		t.Errorf("event = %+v, want workflow_timed_out for doc-1", published[0])
	}

	// Sweeping again is a no-op.
	if err := sweeper.SweepOnce(ctx); err != nil {
		t.Fatalf("second SweepOnce() unexpected error: %v", err)
	}
	if got := len(events.published()); got != 1 {
		t.Errorf("published %d events after second sweep, want 1", got)
	}
}
