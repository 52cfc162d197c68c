package handler

import (
	"log/slog"
	"net/http"

	"auditcore/internal/httputil"
	"auditcore/internal/socket"
)

// EventsHandler upgrades console connections to the lifecycle event stream
type EventsHandler struct {
	hub    *socket.Hub
	logger *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *socket.Hub, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, logger: logger}
}

// Subscribe streams lifecycle events for one document over a websocket
// GET /api/events?document_id=...
func (h *EventsHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	documentID := r.URL.Query().Get("document_id")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document_id query parameter is required")
		return
	}

	userID := httputil.GetUserID(r)
	socket.ServeWs(h.hub, w, r, documentID, userID, h.logger)
}
