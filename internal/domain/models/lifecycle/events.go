package lifecycle

// EventType tags a lifecycle change pushed to console clients.
type EventType string

const (
	EventVersionCreated   EventType = "version_created"
	EventWorkflowStarted  EventType = "workflow_started"
	EventWorkflowAction   EventType = "workflow_action"
	EventWorkflowTimedOut EventType = "workflow_timed_out"
)

// Event is a lifecycle change notification. Clients use these to invalidate
// their view of a document instead of re-fetching on every render.
type Event struct {
	Type       EventType   `json:"type"`
	DocumentID string      `json:"document_id"`
	Payload    interface{} `json:"payload,omitempty"`
}
