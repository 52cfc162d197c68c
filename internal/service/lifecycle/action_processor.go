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
	"auditcore/internal/domain/repositories"
	lifecycleRepo "auditcore/internal/domain/repositories/lifecycle"
	lifecycleSvc "auditcore/internal/domain/services/lifecycle"
	"auditcore/internal/workflowdef"
)

// actionProcessor implements the ActionProcessor interface
type actionProcessor struct {
	workflowRepo lifecycleRepo.WorkflowRepository
	txManager    repositories.TransactionManager
	templates    *workflowdef.Registry
	logger       *slog.Logger
	now          func() time.Time
}

// NewActionProcessor creates a new action processor service
func NewActionProcessor(
	workflowRepo lifecycleRepo.WorkflowRepository,
	txManager repositories.TransactionManager,
	templates *workflowdef.Registry,
	logger *slog.Logger,
) lifecycleSvc.ActionProcessor {
	return &actionProcessor{
		workflowRepo: workflowRepo,
		txManager:    txManager,
		templates:    templates,
		logger:       logger,
		now:          time.Now,
	}
}

func validateSubmitAction(req *lifecycleSvc.SubmitActionRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.WorkflowID, validation.Required),
		validation.Field(&req.PerformedBy, validation.Required),
		validation.Field(&req.Action, validation.Required, validation.In(models.ActionApprove, models.ActionReject)),
		validation.Field(&req.StepNumber, validation.Required, validation.Min(1)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// SubmitAction validates and applies one approve/reject action. The history
// append and the workflow transition commit in a single transaction, and the
// transition is guarded by the step the caller observed - if a concurrent
// actor moved the workflow first, the whole application rolls back and the
// caller gets the typed failure for the state that now holds.
func (p *actionProcessor) SubmitAction(ctx context.Context, req *lifecycleSvc.SubmitActionRequest) (*lifecycleSvc.ActionResult, error) {
	if err := validateSubmitAction(req); err != nil {
		return nil, err
	}

	workflow, err := p.workflowRepo.GetByID(ctx, req.WorkflowID)
	if err != nil {
		return nil, err
	}

	if workflow.Status != models.WorkflowInProgress {
		return nil, &domain.InvalidStateError{WorkflowID: workflow.ID, Status: string(workflow.Status)}
	}
	if req.StepNumber != workflow.CurrentStep {
		return nil, &domain.StepMismatchError{
			WorkflowID: workflow.ID,
			Submitted:  req.StepNumber,
			Current:    workflow.CurrentStep,
		}
	}

	template, err := p.templates.Get(workflow.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("workflow %s references %v: %w", workflow.ID, err, domain.ErrNotFound)
	}

	now := p.now().UTC()
	transition := buildTransition(workflow, template, req.Action, now)

	entry := &models.HistoryEntry{
		ID:          uuid.New().String(),
		WorkflowID:  workflow.ID,
		StepNumber:  req.StepNumber,
		Action:      req.Action,
		PerformedBy: req.PerformedBy,
		PerformedAt: now,
		Notes:       req.Notes,
		Status:      historyStatusFor(req.Action),
	}

	err = p.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := p.workflowRepo.AppendHistory(txCtx, entry); err != nil {
			return err
		}

		applied, err := p.workflowRepo.ApplyTransition(txCtx, workflow.ID, req.StepNumber, transition)
		if err != nil {
			return err
		}
		if !applied {
			// Someone else acted between our read and this write.
			// Re-read so the caller learns which guard now fails.
			current, err := p.workflowRepo.GetByID(txCtx, workflow.ID)
			if err != nil {
				return err
			}
			if current.Status != models.WorkflowInProgress {
				return &domain.InvalidStateError{WorkflowID: current.ID, Status: string(current.Status)}
			}
			return &domain.StepMismatchError{
				WorkflowID: current.ID,
				Submitted:  req.StepNumber,
				Current:    current.CurrentStep,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated := *workflow
	updated.CurrentStep = transition.ToStep
	updated.Status = transition.Status
	updated.CompletedAt = transition.CompletedAt

	p.logger.Info("workflow action applied",
		"workflow_id", workflow.ID,
		"action", req.Action,
		"step", req.StepNumber,
		"status", updated.Status,
		"performed_by", req.PerformedBy,
	)

	return &lifecycleSvc.ActionResult{Workflow: &updated, Entry: entry}, nil
}

// buildTransition maps one accepted action onto the state machine:
// approve on the last step completes the workflow, approve elsewhere
// advances one step, reject terminates it where it stands.
func buildTransition(w *models.DocumentWorkflow, template *workflowdef.Template, action models.WorkflowAction, now time.Time) models.Transition {
	if action == models.ActionReject {
		return models.Transition{
			ToStep:      w.CurrentStep,
			Status:      models.WorkflowRejected,
			CompletedAt: &now,
		}
	}

	if w.CurrentStep >= template.LastStep() {
		return models.Transition{
			ToStep:      w.CurrentStep,
			Status:      models.WorkflowCompleted,
			CompletedAt: &now,
		}
	}

	return models.Transition{
		ToStep: w.CurrentStep + 1,
		Status: models.WorkflowInProgress,
	}
}

func historyStatusFor(action models.WorkflowAction) models.HistoryStatus {
	if action == models.ActionReject {
		return models.HistoryRejected
	}
	return models.HistoryCompleted
}
