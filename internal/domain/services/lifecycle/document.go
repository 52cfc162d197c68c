package lifecycle

import (
	"context"

	"auditcore/internal/domain/models/lifecycle"
)

// DocumentRegistry manages the documents the lifecycle service knows about.
// Content never lives here - only identity; everything else is versions.
type DocumentRegistry interface {
	// RegisterDocument registers a document for lifecycle tracking.
	RegisterDocument(ctx context.Context, req *RegisterDocumentRequest) (*lifecycle.Document, error)

	// GetDocument retrieves a registered document.
	GetDocument(ctx context.Context, documentID string) (*lifecycle.Document, error)

	// ListDocuments retrieves all registered documents, newest first.
	ListDocuments(ctx context.Context) ([]lifecycle.Document, error)
}

// RegisterDocumentRequest carries a document registration.
type RegisterDocumentRequest struct {
	Title   string `json:"title"`
	OwnerID string `json:"-"` // from auth context
}
