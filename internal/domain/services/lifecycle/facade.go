package lifecycle

import (
	"context"

	"auditcore/internal/domain/models/lifecycle"
)

// LifecycleService is the single entry point consumed by presentation
// collaborators. It composes the version store, workflow engine and action
// processor, performing no business logic beyond delegation and input
// shaping (defaulting a missing step number to the workflow's current step).
type LifecycleService interface {
	CreateVersion(ctx context.Context, req *CreateVersionRequest) (*lifecycle.DocumentVersion, error)
	ListVersions(ctx context.Context, documentID string) ([]lifecycle.DocumentVersion, error)
	SelectVersion(ctx context.Context, documentID, versionID string) (*lifecycle.DocumentVersion, error)
	GetVersion(ctx context.Context, documentID, versionID string) (*lifecycle.DocumentVersion, error)
	NavigateVersion(ctx context.Context, documentID string, dir NavigationDirection, fromVersionID string) (*lifecycle.DocumentVersion, error)
	FetchVersionPayload(ctx context.Context, documentID, versionID string) (lifecycle.Payload, error)

	// GetWorkflowView returns the read-only projection the console renders:
	// the workflow, its derived steps and its full execution history.
	GetWorkflowView(ctx context.Context, documentID string) (*WorkflowView, error)

	// SubmitWorkflowAction applies a reviewer decision to the document's
	// active workflow. A zero StepNumber is defaulted to the current step.
	SubmitWorkflowAction(ctx context.Context, documentID string, req *SubmitActionRequest) (*ActionResult, error)

	StartWorkflow(ctx context.Context, req *StartWorkflowRequest) (*lifecycle.DocumentWorkflow, error)
}

// WorkflowView is the composed read model for one document's workflow panel.
type WorkflowView struct {
	Workflow *lifecycle.DocumentWorkflow `json:"workflow,omitempty"`
	Steps    []lifecycle.DerivedStep     `json:"steps,omitempty"`
	History  []lifecycle.HistoryEntry    `json:"history,omitempty"`
}
