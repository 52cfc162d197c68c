package socket

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	models "auditcore/internal/domain/models/lifecycle"
	"auditcore/internal/metrics"
)

func newTestHub() *Hub {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHub(metrics.NewWith(prometheus.NewRegistry()), logger)
}

func newTestClient(hub *Hub, documentID string) *Client {
	return &Client{
		hub:        hub,
		documentID: documentID,
		userID:     "user-1",
		send:       make(chan []byte, 16),
	}
}

func receive(t *testing.T, c *Client) models.Event {
	t.Helper()
	select {
	case payload := <-c.send:
		var evt models.Event
		if err := json.Unmarshal(payload, &evt); err != nil {
			t.Fatalf("broadcast payload is not JSON: %v", err)
		}
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
		return models.Event{}
	}
}

func expectSilence(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.send:
		t.Fatalf("unexpected broadcast: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastsToDocumentRoom(t *testing.T) {
	hub := newTestHub()
	go hub.Run()

	subscriber := newTestClient(hub, "doc-1")
	bystander := newTestClient(hub, "doc-2")
	hub.register <- subscriber
	hub.register <- bystander

	hub.Publish(models.Event{Type: models.EventVersionCreated, DocumentID: "doc-1"})

	evt := receive(t, subscriber)
	if evt.Type != models.EventVersionCreated || evt.DocumentID != "doc-1" {
		t.Errorf("event = %+v, want version_created for doc-1", evt)
	}
	expectSilence(t, bystander)
}

func TestHubFansOutWithinRoom(t *testing.T) {
	hub := newTestHub()
	go hub.Run()

	first := newTestClient(hub, "doc-1")
	second := newTestClient(hub, "doc-1")
	hub.register <- first
	hub.register <- second

	hub.Publish(models.Event{Type: models.EventWorkflowAction, DocumentID: "doc-1"})

	for _, c := range []*Client{first, second} {
		evt := receive(t, c)
		if evt.Type != models.EventWorkflowAction {
			t.Errorf("event type = %s, want workflow_action", evt.Type)
		}
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := newTestHub()
	go hub.Run()

	client := newTestClient(hub, "doc-1")
	hub.register <- client
	hub.unregister <- client

	select {
	case _, open := <-client.send:
		if open {
			t.Error("send channel received a value instead of closing")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed after unregister")
	}

	// Events to the now-empty room go nowhere and do not block.
	hub.Publish(models.Event{Type: models.EventVersionCreated, DocumentID: "doc-1"})
}
