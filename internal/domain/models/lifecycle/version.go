package lifecycle

import (
	"encoding/json"
	"time"
)

// DocumentVersion is an immutable, numbered snapshot of a document's content
// or attached file. Versions are append-only: created once, never edited or
// deleted. The version with the highest VersionNumber is the current version
// by default; the selected version is whatever the navigation pointer
// references and is tracked outside the model.
type DocumentVersion struct {
	ID            string          `json:"id" db:"id"`
	DocumentID    string          `json:"document_id" db:"document_id"`
	VersionNumber int             `json:"version_number" db:"version_number"`
	Content       *string         `json:"content,omitempty" db:"content"`
	FileReference json.RawMessage `json:"file_reference,omitempty" db:"file_reference"`
	Notes         *string         `json:"notes,omitempty" db:"notes"`
	CreatedBy     string          `json:"created_by" db:"created_by"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// HasPayload reports whether the version carries any retrievable payload.
func (v *DocumentVersion) HasPayload() bool {
	return (v.Content != nil && *v.Content != "") || len(v.FileReference) > 0
}

// VersionListResponse wraps a newest-first version listing.
type VersionListResponse struct {
	Versions []DocumentVersion `json:"versions"`
	Total    int               `json:"total"`
}
