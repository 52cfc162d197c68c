package handler

import (
	"log/slog"
	"net/http"
	"time"

	lifecycleSvc "auditcore/internal/domain/services/lifecycle"
	"auditcore/internal/httputil"
)

// DocumentHandler handles document registry HTTP requests
type DocumentHandler struct {
	registry lifecycleSvc.DocumentRegistry
	logger   *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(registry lifecycleSvc.DocumentRegistry, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{registry: registry, logger: logger}
}

// RegisterDocument registers a document for lifecycle tracking
// POST /api/documents
func (h *DocumentHandler) RegisterDocument(w http.ResponseWriter, r *http.Request) {
	var req lifecycleSvc.RegisterDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.OwnerID = httputil.GetUserID(r)

	doc, err := h.registry.RegisterDocument(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument retrieves a registered document
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	doc, err := h.registry.GetDocument(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// ListDocuments retrieves all registered documents
// GET /api/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.registry.ListDocuments(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// HealthCheck is a simple health check endpoint
// GET /health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
