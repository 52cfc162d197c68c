package lifecycle

import (
	"encoding/json"
	"fmt"
)

// Payload is the decoded content carried by a version. The remote console
// historically stored heterogeneous JSON here, so decoding goes through a
// tagged union of the known shapes with an unstructured fallback instead of
// map[string]any leaking past the model layer.
type Payload interface {
	payloadKind() string
}

// TextPayload is free-form note or document text.
type TextPayload struct {
	Text string `json:"text"`
}

// FilePayload points at a binary attachment held in the blob store.
type FilePayload struct {
	StorageKey  string `json:"storage_key"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
}

// UnstructuredPayload preserves shapes this code does not recognize. Raw is
// kept verbatim so nothing is lost on round-trips.
type UnstructuredPayload struct {
	Raw json.RawMessage `json:"raw"`
}

func (TextPayload) payloadKind() string         { return "text" }
func (FilePayload) payloadKind() string         { return "file" }
func (UnstructuredPayload) payloadKind() string { return "unstructured" }

// DecodeVersionPayload resolves a version's payload. Text content wins when
// present; otherwise the file reference is decoded, falling back to the
// unstructured variant when it does not look like a file pointer.
func DecodeVersionPayload(v *DocumentVersion) (Payload, error) {
	if v.Content != nil && *v.Content != "" {
		return TextPayload{Text: *v.Content}, nil
	}

	if len(v.FileReference) == 0 {
		return nil, fmt.Errorf("version %s carries no payload", v.ID)
	}

	var file FilePayload
	if err := json.Unmarshal(v.FileReference, &file); err == nil && file.StorageKey != "" {
		return file, nil
	}

	return UnstructuredPayload{Raw: v.FileReference}, nil
}

// SuggestedFilename returns the download filename for a version. File
// payloads keep their original name; everything else gets a numbered
// text-file name.
func SuggestedFilename(v *DocumentVersion) string {
	if p, err := DecodeVersionPayload(v); err == nil {
		if file, ok := p.(FilePayload); ok && file.Filename != "" {
			return file.Filename
		}
	}
	return fmt.Sprintf("version-%d.txt", v.VersionNumber)
}
