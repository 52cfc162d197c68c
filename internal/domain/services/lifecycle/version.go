package lifecycle

import (
	"context"
	"encoding/json"

	"auditcore/internal/domain/models/lifecycle"
)

// NavigationDirection moves the selection pointer through version history.
type NavigationDirection string

const (
	NavigatePrev NavigationDirection = "prev" // toward lower version numbers
	NavigateNext NavigationDirection = "next" // toward higher version numbers
)

// VersionStore maintains the append-only version list for a document and the
// currently selected pointer used for navigation (distinct from "latest").
type VersionStore interface {
	// ListVersions retrieves a document's versions, newest first.
	ListVersions(ctx context.Context, documentID string) ([]lifecycle.DocumentVersion, error)

	// CreateVersion appends a new version. At least one of content, file
	// reference or notes must be non-empty. Calls for the same document
	// are serialized so concurrent submissions never compute the same
	// version number.
	CreateVersion(ctx context.Context, req *CreateVersionRequest) (*lifecycle.DocumentVersion, error)

	// SelectVersion moves the navigation pointer to the given version.
	SelectVersion(ctx context.Context, documentID, versionID string) (*lifecycle.DocumentVersion, error)

	// GetVersion retrieves a single version without touching the
	// navigation pointer.
	GetVersion(ctx context.Context, documentID, versionID string) (*lifecycle.DocumentVersion, error)

	// Navigate moves the pointer one version toward older (prev) or newer
	// (next). Past either boundary it returns the current selection
	// unchanged - a no-op, not an error.
	Navigate(ctx context.Context, documentID string, dir NavigationDirection, fromVersionID string) (*lifecycle.DocumentVersion, error)

	// FetchPayload resolves the retrievable content of a version. Fails
	// with not-found when the version carries no payload.
	FetchPayload(ctx context.Context, documentID, versionID string) (lifecycle.Payload, error)
}

// CreateVersionRequest carries a version submission. FileReference is raw
// JSON: clients post back the same object the version listing returns.
type CreateVersionRequest struct {
	DocumentID    string          `json:"-"` // from the URL, not the body
	CreatedBy     string          `json:"-"` // from auth context
	Content       *string         `json:"content,omitempty"`
	FileReference json.RawMessage `json:"file_reference,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
}
