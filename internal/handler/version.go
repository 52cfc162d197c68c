package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	models "auditcore/internal/domain/models/lifecycle"
	lifecycleSvc "auditcore/internal/domain/services/lifecycle"
	"auditcore/internal/httputil"
)

// VersionHandler handles version history HTTP requests
type VersionHandler struct {
	lifecycle lifecycleSvc.LifecycleService
	logger    *slog.Logger
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(lifecycle lifecycleSvc.LifecycleService, logger *slog.Logger) *VersionHandler {
	return &VersionHandler{lifecycle: lifecycle, logger: logger}
}

// ListVersions returns a document's versions, newest first
// GET /api/documents/{id}/versions
func (h *VersionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	versions, err := h.lifecycle.ListVersions(r.Context(), documentID)
	if err != nil {
		handleError(w, err)
		return
	}
	if versions == nil {
		versions = []models.DocumentVersion{}
	}

	httputil.RespondJSON(w, http.StatusOK, models.VersionListResponse{
		Versions: versions,
		Total:    len(versions),
	})
}

// CreateVersion appends a new version
// POST /api/documents/{id}/versions
func (h *VersionHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	var req lifecycleSvc.CreateVersionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.DocumentID = documentID
	req.CreatedBy = httputil.GetUserID(r)

	version, err := h.lifecycle.CreateVersion(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, version)
}

// SelectVersion moves the navigation pointer to the given version
// POST /api/documents/{id}/versions/{vid}/select
func (h *VersionHandler) SelectVersion(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")
	versionID := r.PathValue("vid")
	if documentID == "" || versionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document and version IDs are required")
		return
	}

	version, err := h.lifecycle.SelectVersion(r.Context(), documentID, versionID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, version)
}

type navigateRequest struct {
	Direction     string `json:"direction"`
	FromVersionID string `json:"from_version_id"`
}

// NavigateVersion moves the selection one version older or newer
// POST /api/documents/{id}/versions/navigate
func (h *VersionHandler) NavigateVersion(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	var req navigateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	version, err := h.lifecycle.NavigateVersion(r.Context(), documentID,
		lifecycleSvc.NavigationDirection(req.Direction), req.FromVersionID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, version)
}

// FetchVersionContent returns the version's payload
// GET /api/documents/{id}/versions/{vid}/content
func (h *VersionHandler) FetchVersionContent(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")
	versionID := r.PathValue("vid")
	if documentID == "" || versionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document and version IDs are required")
		return
	}

	payload, err := h.lifecycle.FetchVersionPayload(r.Context(), documentID, versionID)
	if err != nil {
		handleError(w, err)
		return
	}

	switch p := payload.(type) {
	case models.TextPayload:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(p.Text))
	default:
		httputil.RespondJSON(w, http.StatusOK, p)
	}
}

// DownloadVersion returns the payload with a suggested filename
// GET /api/documents/{id}/versions/{vid}/download
func (h *VersionHandler) DownloadVersion(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")
	versionID := r.PathValue("vid")
	if documentID == "" || versionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document and version IDs are required")
		return
	}

	// Downloads are read-only: resolve the version without moving the
	// session's navigation pointer.
	version, err := h.lifecycle.GetVersion(r.Context(), documentID, versionID)
	if err != nil {
		handleError(w, err)
		return
	}

	payload, err := h.lifecycle.FetchVersionPayload(r.Context(), documentID, versionID)
	if err != nil {
		handleError(w, err)
		return
	}

	filename := models.SuggestedFilename(version)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	switch p := payload.(type) {
	case models.TextPayload:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(p.Text))
	case models.FilePayload:
		// The blob itself lives in external storage; hand the console
		// the pointer it needs to stream it.
		httputil.RespondJSON(w, http.StatusOK, p)
	default:
		httputil.RespondJSON(w, http.StatusOK, p)
	}
}
