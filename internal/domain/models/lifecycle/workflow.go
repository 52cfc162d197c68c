package lifecycle

import "time"

// WorkflowStatus is the state of a document's review workflow.
type WorkflowStatus string

const (
	WorkflowNotStarted WorkflowStatus = "not_started"
	WorkflowInProgress WorkflowStatus = "in_progress"
	WorkflowCompleted  WorkflowStatus = "completed"
	WorkflowRejected   WorkflowStatus = "rejected"
	WorkflowTimedOut   WorkflowStatus = "timed_out"
)

// IsTerminal reports whether the status accepts no further actions.
func (s WorkflowStatus) IsTerminal() bool {
	return s == WorkflowCompleted || s == WorkflowRejected || s == WorkflowTimedOut
}

// WorkflowAction is a reviewer decision on the current step.
type WorkflowAction string

const (
	ActionApprove WorkflowAction = "approve"
	ActionReject  WorkflowAction = "reject"
)

// HistoryStatus is the recorded outcome of one execution history entry.
type HistoryStatus string

const (
	HistoryCompleted HistoryStatus = "completed"
	HistoryRejected  HistoryStatus = "rejected"
	HistoryPending   HistoryStatus = "pending"
)

// DocumentWorkflow is the review/approval process instance attached to a
// document. CurrentStep only increases, and only through a successful
// approve action. Terminal statuses are final.
type DocumentWorkflow struct {
	ID          string         `json:"id" db:"id"`
	DocumentID  string         `json:"document_id" db:"document_id"`
	TemplateID  string         `json:"workflow_id" db:"template_id"`
	CurrentStep int            `json:"current_step" db:"current_step"`
	Status      WorkflowStatus `json:"status" db:"status"`
	StartedAt   time.Time      `json:"started_at" db:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty" db:"completed_at"`
	TimeoutAt   *time.Time     `json:"timeout_at,omitempty" db:"timeout_at"`

	// History is the ordered, append-only execution record. Populated on
	// reads that request the full view; nil otherwise.
	History []HistoryEntry `json:"execution_history,omitempty"`
}

// Transition is the workflow-row change produced by one accepted action:
// either an advance to the next step, or entry into a terminal status.
type Transition struct {
	ToStep      int
	Status      WorkflowStatus
	CompletedAt *time.Time
}

// HistoryEntry is an immutable audit record of one approve/reject action
// taken against a workflow step. Entries are never edited or removed.
type HistoryEntry struct {
	ID          string         `json:"id" db:"id"`
	WorkflowID  string         `json:"workflow_id" db:"workflow_id"`
	StepNumber  int            `json:"step_number" db:"step_number"`
	Action      WorkflowAction `json:"action" db:"action"`
	PerformedBy string         `json:"performed_by" db:"performed_by"`
	PerformedAt time.Time      `json:"performed_at" db:"performed_at"`
	Notes       *string        `json:"notes,omitempty" db:"notes"`
	Status      HistoryStatus  `json:"status" db:"status"`
}
