// Package socket pushes lifecycle events to console clients over WebSocket.
// Clients subscribe to one document; every version or workflow change for
// that document is broadcast to its room.
package socket

import (
	"encoding/json"
	"log/slog"
	"sync"

	models "auditcore/internal/domain/models/lifecycle"
	"auditcore/internal/metrics"
)

// Hub maintains per-document rooms of connected clients.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan models.Event

	mu    sync.Mutex
	rooms map[string]map[*Client]bool

	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewHub creates the hub. Run must be started on its own goroutine.
func NewHub(m *metrics.Metrics, logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.Event, 64),
		rooms:      make(map[string]map[*Client]bool),
		metrics:    m,
		logger:     logger,
	}
}

// Publish queues an event for broadcast to the document's room. Non-blocking:
// when the hub is saturated the event is dropped - clients refetch on
// reconnect, so a lost invalidation hint costs a render, not correctness.
func (h *Hub) Publish(evt models.Event) {
	select {
	case h.broadcast <- evt:
	default:
		h.logger.Warn("event hub saturated, dropping event",
			"type", evt.Type,
			"document_id", evt.DocumentID,
		)
	}
}

// Run dispatches registrations and broadcasts until the channels close.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.documentID] == nil {
				h.rooms[client.documentID] = make(map[*Client]bool)
			}
			h.rooms[client.documentID][client] = true
			h.mu.Unlock()
			h.logger.Debug("client subscribed", "document_id", client.documentID, "user_id", client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.documentID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.documentID)
					}
				}
			}
			h.mu.Unlock()

		case evt := <-h.broadcast:
			payload, err := json.Marshal(evt)
			if err != nil {
				h.logger.Error("failed to marshal event", "type", evt.Type, "error", err)
				continue
			}

			// Collect recipients under the lock, write outside it.
			h.mu.Lock()
			clients := make([]*Client, 0, len(h.rooms[evt.DocumentID]))
			for client := range h.rooms[evt.DocumentID] {
				clients = append(clients, client)
			}
			h.mu.Unlock()

			h.metrics.EventsPublishedTotal.WithLabelValues(string(evt.Type)).Inc()
			for _, client := range clients {
				select {
				case client.send <- payload:
				default:
					// Lagging client; drop it rather than block the hub.
					h.logger.Warn("client send buffer full, unregistering", "user_id", client.userID)
					h.unregisterAsync(client)
				}
			}
		}
	}
}

func (h *Hub) unregisterAsync(client *Client) {
	go func() { h.unregister <- client }()
}
