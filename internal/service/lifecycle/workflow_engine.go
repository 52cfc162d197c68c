package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"auditcore/internal/domain"
	models "auditcore/internal/domain/models/lifecycle"
	lifecycleRepo "auditcore/internal/domain/repositories/lifecycle"
	lifecycleSvc "auditcore/internal/domain/services/lifecycle"
	"auditcore/internal/workflowdef"
)

// workflowEngine implements the WorkflowEngine interface
type workflowEngine struct {
	docRepo      lifecycleRepo.DocumentRepository
	workflowRepo lifecycleRepo.WorkflowRepository
	templates    *workflowdef.Registry
	logger       *slog.Logger
}

// NewWorkflowEngine creates a new workflow engine service
func NewWorkflowEngine(
	docRepo lifecycleRepo.DocumentRepository,
	workflowRepo lifecycleRepo.WorkflowRepository,
	templates *workflowdef.Registry,
	logger *slog.Logger,
) lifecycleSvc.WorkflowEngine {
	return &workflowEngine{
		docRepo:      docRepo,
		workflowRepo: workflowRepo,
		templates:    templates,
		logger:       logger,
	}
}

// GetActiveWorkflow returns the document's in-progress workflow, or nil.
// The storage layer enforces uniqueness of active workflows; if legacy data
// still carries more than one, the most recently started wins and the
// anomaly is logged rather than silently resolved.
func (e *workflowEngine) GetActiveWorkflow(ctx context.Context, documentID string) (*models.DocumentWorkflow, error) {
	if _, err := e.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	workflows, err := e.workflowRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	var active []models.DocumentWorkflow
	for _, w := range workflows {
		if w.Status == models.WorkflowInProgress {
			active = append(active, w)
		}
	}

	switch len(active) {
	case 0:
		return nil, nil
	case 1:
	default:
		e.logger.Warn("data anomaly: multiple active workflows, picking most recent",
			"document_id", documentID,
			"count", len(active),
		)
	}

	// ListByDocument orders by started_at descending.
	w := active[0]
	return &w, nil
}

// StartWorkflow instantiates a template as an in-progress workflow at step 1
func (e *workflowEngine) StartWorkflow(ctx context.Context, req *lifecycleSvc.StartWorkflowRequest) (*models.DocumentWorkflow, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.DocumentID, validation.Required),
		validation.Field(&req.TemplateID, validation.Required),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := e.docRepo.GetByID(ctx, req.DocumentID); err != nil {
		return nil, err
	}

	template, err := e.templates.Get(req.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now().UTC()
	timeoutAt := req.TimeoutAt
	if timeoutAt == nil && template.DefaultTimeout > 0 {
		t := now.Add(time.Duration(template.DefaultTimeout))
		timeoutAt = &t
	}

	workflow := &models.DocumentWorkflow{
		ID:          uuid.New().String(),
		DocumentID:  req.DocumentID,
		TemplateID:  template.ID,
		CurrentStep: 1,
		Status:      models.WorkflowInProgress,
		StartedAt:   now,
		TimeoutAt:   timeoutAt,
	}

	if err := e.workflowRepo.Create(ctx, workflow); err != nil {
		return nil, err
	}

	e.logger.Info("workflow started",
		"document_id", req.DocumentID,
		"workflow_id", workflow.ID,
		"template_id", template.ID,
	)

	return workflow, nil
}

// IsActionable reports whether actions may be submitted at the given step
func (e *workflowEngine) IsActionable(w *models.DocumentWorkflow, stepNumber int) bool {
	return w != nil && w.Status == models.WorkflowInProgress && stepNumber == w.CurrentStep
}

// IsOverdue reports whether the workflow's deadline has elapsed. The engine
// does not own a clock; the timeout sweep applies the transition.
func (e *workflowEngine) IsOverdue(w *models.DocumentWorkflow, now time.Time) bool {
	return w != nil &&
		w.Status == models.WorkflowInProgress &&
		w.TimeoutAt != nil &&
		!now.Before(*w.TimeoutAt)
}
