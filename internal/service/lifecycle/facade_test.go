package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"auditcore/internal/domain"
	models "auditcore/internal/domain/models/lifecycle"
	lifecycleSvc "auditcore/internal/domain/services/lifecycle"
	"auditcore/internal/metrics"
)

type facadeFixture struct {
	service      lifecycleSvc.LifecycleService
	workflowRepo *fakeWorkflowRepo
	events       *fakeEvents
}

func newFacadeFixture(t *testing.T, docs ...models.Document) *facadeFixture {
	t.Helper()

	docRepo := newFakeDocumentRepo(docs...)
	versionRepo := newFakeVersionRepo()
	workflowRepo := newFakeWorkflowRepo()
	templates := testTemplates(t)
	events := &fakeEvents{}
	logger := testLogger()

	versions := NewVersionStore(docRepo, versionRepo, fakeTxManager{}, NewSessionCache(time.Minute), logger)
	engine := NewWorkflowEngine(docRepo, workflowRepo, templates, logger)
	processor := NewActionProcessor(workflowRepo, fakeTxManager{}, templates, logger)

	service := NewLifecycleService(
		versions,
		engine,
		processor,
		workflowRepo,
		templates,
		events,
		metrics.NewWith(prometheus.NewRegistry()),
		logger,
	)
	return &facadeFixture{service: service, workflowRepo: workflowRepo, events: events}
}

func TestGetWorkflowViewWithoutWorkflow(t *testing.T) {
	f := newFacadeFixture(t, testDocument("doc-1"))

	view, err := f.service.GetWorkflowView(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetWorkflowView() unexpected error: %v", err)
	}
	if view.Workflow != nil || view.Steps != nil || view.History != nil {
		t.Errorf("GetWorkflowView() = %+v, want empty view", view)
	}
}

func TestGetWorkflowViewProjection(t *testing.T) {
	f := newFacadeFixture(t, testDocument("doc-1"))
	ctx := context.Background()

	if _, err := f.service.StartWorkflow(ctx, &lifecycleSvc.StartWorkflowRequest{
		DocumentID: "doc-1",
		TemplateID: "standard-audit",
	}); err != nil {
		t.Fatalf("StartWorkflow() unexpected error: %v", err)
	}

	// Approve step 1 so the view shows one complete step and step 2 current.
	if _, err := f.service.SubmitWorkflowAction(ctx, "doc-1", &lifecycleSvc.SubmitActionRequest{
		PerformedBy: "reviewer-1",
		Action:      models.ActionApprove,
		StepNumber:  1,
	}); err != nil {
		t.Fatalf("SubmitWorkflowAction() unexpected error: %v", err)
	}

	view, err := f.service.GetWorkflowView(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetWorkflowView() unexpected error: %v", err)
	}
	if view.Workflow == nil {
		t.Fatal("view has no workflow")
	}
	if view.Workflow.CurrentStep != 2 {
		t.Errorf("current step = %d, want 2", view.Workflow.CurrentStep)
	}

	wantStates := []models.StepState{models.StepComplete, models.StepCurrent, models.StepUpcoming, models.StepUpcoming}
	if len(view.Steps) != len(wantStates) {
		t.Fatalf("steps len = %d, want %d", len(view.Steps), len(wantStates))
	}
	for i, want := range wantStates {
		if view.Steps[i].State != want {
			t.Errorf("steps[%d].State = %s, want %s", i, view.Steps[i].State, want)
		}
	}

	if len(view.History) != 1 {
		t.Fatalf("history len = %d, want 1", len(view.History))
	}
	if view.History[0].Action != models.ActionApprove || view.History[0].StepNumber != 1 {
		t.Errorf("history[0] = %+v, want approve at step 1", view.History[0])
	}
}

func TestSubmitWorkflowActionDefaultsStepNumber(t *testing.T) {
	f := newFacadeFixture(t, testDocument("doc-1"))
	ctx := context.Background()

	if _, err := f.service.StartWorkflow(ctx, &lifecycleSvc.StartWorkflowRequest{
		DocumentID: "doc-1",
		TemplateID: "expedited-review",
	}); err != nil {
		t.Fatalf("StartWorkflow() unexpected error: %v", err)
	}

	// Zero step number means "the current step".
	result, err := f.service.SubmitWorkflowAction(ctx, "doc-1", &lifecycleSvc.SubmitActionRequest{
		PerformedBy: "reviewer-1",
		Action:      models.ActionApprove,
	})
	if err != nil {
		t.Fatalf("SubmitWorkflowAction() unexpected error: %v", err)
	}
	if result.Entry.StepNumber != 1 {
		t.Errorf("entry step = %d, want 1", result.Entry.StepNumber)
	}
	if result.Workflow.CurrentStep != 2 {
		t.Errorf("current step = %d, want 2", result.Workflow.CurrentStep)
	}
}

func TestSubmitWorkflowActionWithoutActiveWorkflow(t *testing.T) {
	f := newFacadeFixture(t, testDocument("doc-1"))

	_, err := f.service.SubmitWorkflowAction(context.Background(), "doc-1", &lifecycleSvc.SubmitActionRequest{
		PerformedBy: "reviewer-1",
		Action:      models.ActionApprove,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SubmitWorkflowAction() error = %v, want ErrNotFound", err)
	}
}

func TestFacadePublishesEvents(t *testing.T) {
	f := newFacadeFixture(t, testDocument("doc-1"))
	ctx := context.Background()

	if _, err := f.service.CreateVersion(ctx, &lifecycleSvc.CreateVersionRequest{
		DocumentID: "doc-1",
		CreatedBy:  "user-1",
		Content:    strPtr("draft"),
	}); err != nil {
		t.Fatalf("CreateVersion() unexpected error: %v", err)
	}
	if _, err := f.service.StartWorkflow(ctx, &lifecycleSvc.StartWorkflowRequest{
		DocumentID: "doc-1",
		TemplateID: "expedited-review",
	}); err != nil {
		t.Fatalf("StartWorkflow() unexpected error: %v", err)
	}
	if _, err := f.service.SubmitWorkflowAction(ctx, "doc-1", &lifecycleSvc.SubmitActionRequest{
		PerformedBy: "reviewer-1",
		Action:      models.ActionApprove,
	}); err != nil {
		t.Fatalf("SubmitWorkflowAction() unexpected error: %v", err)
	}

	published := f.events.published()
	wantTypes := []models.EventType{
		models.EventVersionCreated,
		models.EventWorkflowStarted,
		models.EventWorkflowAction,
	}
	if len(published) != len(wantTypes) {
		t.Fatalf("published %d events, want %d", len(published), len(wantTypes))
	}
	for i, want := range wantTypes {
		if published[i].Type != want {
			t.Errorf("events[%d].Type = %s, want %s", i, published[i].Type, want)
		}
		if published[i].DocumentID != "doc-1" {
			t.Errorf("events[%d].DocumentID = %s, want doc-1", i, published[i].DocumentID)
		}
	}

	// Refused actions publish nothing.
	if _, err := f.service.SubmitWorkflowAction(ctx, "doc-1", &lifecycleSvc.SubmitActionRequest{
		PerformedBy: "reviewer-1",
		Action:      models.ActionApprove,
		StepNumber:  1,
	}); err == nil {
		t.Fatal("SubmitWorkflowAction() with stale step succeeded, want error")
	}
	if got := len(f.events.published()); got != len(wantTypes) {
		t.Errorf("published %d events after refused action, want %d", got, len(wantTypes))
	}
}
