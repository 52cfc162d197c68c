package lifecycle

import (
	"context"

	"auditcore/internal/domain/models/lifecycle"
)

// DocumentRepository is the registry of documents known to the lifecycle
// service. Version and workflow operations consult it so that an unknown
// document surfaces as a typed not-found failure rather than an empty list.
type DocumentRepository interface {
	// Create registers a document.
	Create(ctx context.Context, doc *lifecycle.Document) error

	// GetByID retrieves a document by ID.
	GetByID(ctx context.Context, id string) (*lifecycle.Document, error)

	// List retrieves all registered documents, newest first.
	List(ctx context.Context) ([]lifecycle.Document, error)
}
