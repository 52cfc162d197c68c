package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"auditcore/internal/domain"
	models "auditcore/internal/domain/models/lifecycle"
	lifecycleRepo "auditcore/internal/domain/repositories/lifecycle"
	lifecycleSvc "auditcore/internal/domain/services/lifecycle"
	"auditcore/internal/metrics"
	"auditcore/internal/workflowdef"
)

// EventPublisher pushes lifecycle events to connected console clients.
// The hub satisfies this; tests use a recording stub.
type EventPublisher interface {
	Publish(evt models.Event)
}

// lifecycleService is the facade the handlers consume. It delegates to the
// version store, workflow engine and action processor, shaping inputs and
// publishing events after successful writes - no business logic of its own.
type lifecycleService struct {
	versions  lifecycleSvc.VersionStore
	engine    lifecycleSvc.WorkflowEngine
	processor lifecycleSvc.ActionProcessor

	workflowRepo lifecycleRepo.WorkflowRepository
	templates    *workflowdef.Registry
	events       EventPublisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewLifecycleService creates the facade
func NewLifecycleService(
	versions lifecycleSvc.VersionStore,
	engine lifecycleSvc.WorkflowEngine,
	processor lifecycleSvc.ActionProcessor,
	workflowRepo lifecycleRepo.WorkflowRepository,
	templates *workflowdef.Registry,
	events EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) lifecycleSvc.LifecycleService {
	return &lifecycleService{
		versions:     versions,
		engine:       engine,
		processor:    processor,
		workflowRepo: workflowRepo,
		templates:    templates,
		events:       events,
		metrics:      m,
		logger:       logger,
	}
}

func (s *lifecycleService) CreateVersion(ctx context.Context, req *lifecycleSvc.CreateVersionRequest) (*models.DocumentVersion, error) {
	version, err := s.versions.CreateVersion(ctx, req)
	if err != nil {
		return nil, err
	}

	s.metrics.VersionsCreatedTotal.Inc()
	s.events.Publish(models.Event{
		Type:       models.EventVersionCreated,
		DocumentID: version.DocumentID,
		Payload:    version,
	})

	return version, nil
}

func (s *lifecycleService) ListVersions(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	return s.versions.ListVersions(ctx, documentID)
}

func (s *lifecycleService) SelectVersion(ctx context.Context, documentID, versionID string) (*models.DocumentVersion, error) {
	return s.versions.SelectVersion(ctx, documentID, versionID)
}

func (s *lifecycleService) GetVersion(ctx context.Context, documentID, versionID string) (*models.DocumentVersion, error) {
	return s.versions.GetVersion(ctx, documentID, versionID)
}

func (s *lifecycleService) NavigateVersion(ctx context.Context, documentID string, dir lifecycleSvc.NavigationDirection, fromVersionID string) (*models.DocumentVersion, error) {
	return s.versions.Navigate(ctx, documentID, dir, fromVersionID)
}

func (s *lifecycleService) FetchVersionPayload(ctx context.Context, documentID, versionID string) (models.Payload, error) {
	return s.versions.FetchPayload(ctx, documentID, versionID)
}

// GetWorkflowView composes the read model for the workflow panel: the active
// workflow, its derived steps and its full execution history. A document
// without an active workflow yields an empty view, not an error.
func (s *lifecycleService) GetWorkflowView(ctx context.Context, documentID string) (*lifecycleSvc.WorkflowView, error) {
	workflow, err := s.engine.GetActiveWorkflow(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if workflow == nil {
		return &lifecycleSvc.WorkflowView{}, nil
	}

	template, err := s.templates.Get(workflow.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("workflow %s references %v: %w", workflow.ID, err, domain.ErrNotFound)
	}

	history, err := s.workflowRepo.ListHistory(ctx, workflow.ID)
	if err != nil {
		return nil, err
	}
	workflow.History = history

	return &lifecycleSvc.WorkflowView{
		Workflow: workflow,
		Steps:    models.DeriveSteps(workflow, template.Steps),
		History:  history,
	}, nil
}

// SubmitWorkflowAction resolves the document's active workflow, defaults a
// missing step number to the current step, and delegates to the processor.
func (s *lifecycleService) SubmitWorkflowAction(ctx context.Context, documentID string, req *lifecycleSvc.SubmitActionRequest) (*lifecycleSvc.ActionResult, error) {
	workflow, err := s.engine.GetActiveWorkflow(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if workflow == nil {
		return nil, fmt.Errorf("document %s has no active workflow: %w", documentID, domain.ErrNotFound)
	}

	req.WorkflowID = workflow.ID
	if req.StepNumber == 0 {
		req.StepNumber = workflow.CurrentStep
	}

	result, err := s.processor.SubmitAction(ctx, req)
	if err != nil {
		s.metrics.WorkflowActionsTotal.WithLabelValues(string(req.Action), "refused").Inc()
		return nil, err
	}

	s.metrics.WorkflowActionsTotal.WithLabelValues(string(req.Action), "applied").Inc()
	s.events.Publish(models.Event{
		Type:       models.EventWorkflowAction,
		DocumentID: documentID,
		Payload:    result,
	})

	return result, nil
}

func (s *lifecycleService) StartWorkflow(ctx context.Context, req *lifecycleSvc.StartWorkflowRequest) (*models.DocumentWorkflow, error) {
	workflow, err := s.engine.StartWorkflow(ctx, req)
	if err != nil {
		return nil, err
	}

	s.metrics.WorkflowsStartedTotal.Inc()
	s.events.Publish(models.Event{
		Type:       models.EventWorkflowStarted,
		DocumentID: workflow.DocumentID,
		Payload:    workflow,
	})

	return workflow, nil
}
