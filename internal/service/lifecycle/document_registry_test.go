package lifecycle

import (
	"context"
	"errors"
	"strings"
	"testing"

	"auditcore/internal/domain"
	lifecycleSvc "auditcore/internal/domain/services/lifecycle"
)

func TestRegisterDocument(t *testing.T) {
	registry := NewDocumentRegistry(newFakeDocumentRepo(), testLogger())
	ctx := context.Background()

	doc, err := registry.RegisterDocument(ctx, &lifecycleSvc.RegisterDocumentRequest{
		Title:   "Q2 Controls Review",
		OwnerID: "owner-1",
	})
	if err != nil {
		t.Fatalf("RegisterDocument() unexpected error: %v", err)
	}
	if doc.ID == "" {
		t.Error("RegisterDocument() assigned no ID")
	}
	if doc.Title != "Q2 Controls Review" || doc.OwnerID != "owner-1" {
		t.Errorf("RegisterDocument() = %+v", doc)
	}

	got, err := registry.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument() unexpected error: %v", err)
	}
	if got.ID != doc.ID {
		t.Errorf("GetDocument() ID = %s, want %s", got.ID, doc.ID)
	}
}

func TestRegisterDocumentValidation(t *testing.T) {
	registry := NewDocumentRegistry(newFakeDocumentRepo(), testLogger())
	ctx := context.Background()

	tests := []struct {
		name string
		req  *lifecycleSvc.RegisterDocumentRequest
	}{
		{name: "missing title", req: &lifecycleSvc.RegisterDocumentRequest{OwnerID: "owner-1"}},
		{name: "missing owner", req: &lifecycleSvc.RegisterDocumentRequest{Title: "Report"}},
		{name: "title too long", req: &lifecycleSvc.RegisterDocumentRequest{Title: strings.Repeat("x", 513), OwnerID: "owner-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := registry.RegisterDocument(ctx, tt.req); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("RegisterDocument() error = %v, want ErrValidation", err)
			}
		})
	}
}
