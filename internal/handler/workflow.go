package handler

import (
	"log/slog"
	"net/http"

	lifecycleSvc "auditcore/internal/domain/services/lifecycle"
	"auditcore/internal/httputil"
	"auditcore/internal/workflowdef"
)

// WorkflowHandler handles approval workflow HTTP requests
type WorkflowHandler struct {
	lifecycle lifecycleSvc.LifecycleService
	templates *workflowdef.Registry
	logger    *slog.Logger
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(lifecycle lifecycleSvc.LifecycleService, templates *workflowdef.Registry, logger *slog.Logger) *WorkflowHandler {
	return &WorkflowHandler{lifecycle: lifecycle, templates: templates, logger: logger}
}

// GetWorkflowView returns the workflow panel projection for a document
// GET /api/documents/{id}/workflow
func (h *WorkflowHandler) GetWorkflowView(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	view, err := h.lifecycle.GetWorkflowView(r.Context(), documentID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// StartWorkflow starts an approval workflow for a document
// POST /api/documents/{id}/workflows
func (h *WorkflowHandler) StartWorkflow(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	var req lifecycleSvc.StartWorkflowRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.DocumentID = documentID

	workflow, err := h.lifecycle.StartWorkflow(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, workflow)
}

// SubmitAction applies an approve or reject decision to the active workflow
// POST /api/documents/{id}/workflow/actions
func (h *WorkflowHandler) SubmitAction(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	var req lifecycleSvc.SubmitActionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.PerformedBy = httputil.GetUserID(r)

	result, err := h.lifecycle.SubmitWorkflowAction(r.Context(), documentID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// ListTemplates returns the workflow templates available to start
// GET /api/workflow-templates
func (h *WorkflowHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.templates.List())
}
