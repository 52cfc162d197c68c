package lifecycle

import (
	"context"
	"time"

	"auditcore/internal/domain/models/lifecycle"
)

// WorkflowEngine exposes the current workflow state for a document and
// enforces step-sequencing invariants. It never creates workflows on read
// paths and owns no clock: deadlines are evaluated by the timeout sweep.
type WorkflowEngine interface {
	// GetActiveWorkflow returns the document's in-progress workflow, or
	// nil when none exists. More than one active workflow is a data
	// anomaly; the engine logs it and deterministically picks the most
	// recently started.
	GetActiveWorkflow(ctx context.Context, documentID string) (*lifecycle.DocumentWorkflow, error)

	// StartWorkflow instantiates a template as an in-progress workflow at
	// step 1. Fails with a conflict when the document already has one.
	StartWorkflow(ctx context.Context, req *StartWorkflowRequest) (*lifecycle.DocumentWorkflow, error)

	// IsActionable reports whether actions may be submitted: only an
	// in-progress workflow at the caller's step boundary accepts them.
	IsActionable(w *lifecycle.DocumentWorkflow, stepNumber int) bool

	// IsOverdue reports whether the workflow's deadline has elapsed. The
	// engine only reports the condition; the sweep applies it.
	IsOverdue(w *lifecycle.DocumentWorkflow, now time.Time) bool
}

// StartWorkflowRequest carries a review kickoff.
type StartWorkflowRequest struct {
	DocumentID string     `json:"-"`
	TemplateID string     `json:"template_id"`
	TimeoutAt  *time.Time `json:"timeout_at,omitempty"`
}

// ActionProcessor validates and applies a single approve/reject action,
// producing exactly one new history entry and an updated workflow. The
// application is atomic: a history append without the matching transition
// (or vice versa) is never observable.
type ActionProcessor interface {
	SubmitAction(ctx context.Context, req *SubmitActionRequest) (*ActionResult, error)
}

// SubmitActionRequest carries one reviewer decision. StepNumber must equal
// the workflow's current step; anything else is a stale view and is refused.
type SubmitActionRequest struct {
	WorkflowID  string                   `json:"-"`
	PerformedBy string                   `json:"-"`
	Action      lifecycle.WorkflowAction `json:"action"`
	StepNumber  int                      `json:"step_number"`
	Notes       *string                  `json:"notes,omitempty"`
}

// ActionResult is the outcome of an accepted action.
type ActionResult struct {
	Workflow *lifecycle.DocumentWorkflow `json:"workflow"`
	Entry    *lifecycle.HistoryEntry     `json:"entry"`
}
