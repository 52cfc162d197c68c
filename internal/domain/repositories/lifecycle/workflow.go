package lifecycle

import (
	"context"
	"time"

	"auditcore/internal/domain/models/lifecycle"
)

// WorkflowRepository defines data access for document workflows and their
// execution history. History rows are append-only; workflow rows mutate only
// through ApplyTransition and the timeout sweep.
type WorkflowRepository interface {
	// Create persists a new workflow instance. Fails with a conflict when
	// the document already has an in-progress workflow (partial unique
	// index on document_id).
	Create(ctx context.Context, w *lifecycle.DocumentWorkflow) error

	// ListByDocument retrieves all workflows for a document, most recently
	// started first, without history.
	ListByDocument(ctx context.Context, documentID string) ([]lifecycle.DocumentWorkflow, error)

	// GetByID retrieves one workflow without history.
	GetByID(ctx context.Context, workflowID string) (*lifecycle.DocumentWorkflow, error)

	// ListHistory retrieves the execution history of a workflow in
	// ascending performed_at order.
	ListHistory(ctx context.Context, workflowID string) ([]lifecycle.HistoryEntry, error)

	// AppendHistory persists one immutable history entry.
	AppendHistory(ctx context.Context, entry *lifecycle.HistoryEntry) error

	// ApplyTransition updates a workflow's step and status, guarded by the
	// state the caller observed: the row is only touched when it is still
	// in progress at fromStep. Returns false when the guard missed, which
	// means a concurrent actor got there first.
	ApplyTransition(ctx context.Context, workflowID string, fromStep int, t lifecycle.Transition) (bool, error)

	// MarkTimedOut transitions every in-progress workflow whose deadline
	// passed to timed_out, returning the affected workflow IDs.
	MarkTimedOut(ctx context.Context, now time.Time) ([]string, error)
}
