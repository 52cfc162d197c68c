package lifecycle

import (
	"context"

	"auditcore/internal/domain/models/lifecycle"
)

// VersionRepository defines data access for the append-only version history.
// There is no update or delete: versions are immutable once created.
type VersionRepository interface {
	// Create persists a new version. The caller assigns VersionNumber;
	// the unique (document_id, version_number) index is the backstop
	// against duplicate numbers slipping past serialization.
	Create(ctx context.Context, v *lifecycle.DocumentVersion) error

	// ListByDocument retrieves all versions of a document, newest first.
	ListByDocument(ctx context.Context, documentID string) ([]lifecycle.DocumentVersion, error)

	// GetByID retrieves one version, scoped to its document.
	GetByID(ctx context.Context, documentID, versionID string) (*lifecycle.DocumentVersion, error)

	// MaxVersionNumber returns the highest assigned version number for a
	// document, or 0 when no versions exist.
	MaxVersionNumber(ctx context.Context, documentID string) (int, error)
}
