package lifecycle

import (
	"encoding/json"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestDecodeVersionPayload(t *testing.T) {
	tests := []struct {
		name     string
		version  *DocumentVersion
		wantKind string
		wantErr  bool
	}{
		{
			name:     "text content wins",
			version:  &DocumentVersion{ID: "v1", Content: strPtr("report body")},
			wantKind: "text",
		},
		{
			name: "content beats file reference",
			version: &DocumentVersion{
				ID:            "v2",
				Content:       strPtr("inline text"),
				FileReference: json.RawMessage(`{"storage_key":"blobs/a","filename":"a.pdf"}`),
			},
			wantKind: "text",
		},
		{
			name: "file reference",
			version: &DocumentVersion{
				ID:            "v3",
				FileReference: json.RawMessage(`{"storage_key":"blobs/a","filename":"a.pdf","content_type":"application/pdf"}`),
			},
			wantKind: "file",
		},
		{
			name: "unrecognized shape falls back to unstructured",
			version: &DocumentVersion{
				ID:            "v4",
				FileReference: json.RawMessage(`{"legacy_field":42}`),
			},
			wantKind: "unstructured",
		},
		{
			name: "invalid json falls back to unstructured",
			version: &DocumentVersion{
				ID:            "v5",
				FileReference: json.RawMessage(`not json at all`),
			},
			wantKind: "unstructured",
		},
		{
			name:    "no payload",
			version: &DocumentVersion{ID: "v6", Notes: strPtr("notes only")},
			wantErr: true,
		},
		{
			name:    "empty content and no file",
			version: &DocumentVersion{ID: "v7", Content: strPtr("")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeVersionPayload(tt.version)

			if tt.wantErr {
				if err == nil {
					t.Errorf("DecodeVersionPayload() expected error, got %T", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeVersionPayload() unexpected error: %v", err)
			}
			if got.payloadKind() != tt.wantKind {
				t.Errorf("DecodeVersionPayload() kind = %s, want %s", got.payloadKind(), tt.wantKind)
			}
		})
	}
}

func TestDecodeVersionPayloadPreservesUnstructured(t *testing.T) {
	raw := json.RawMessage(`{"legacy_field":42,"nested":{"a":[1,2]}}`)
	got, err := DecodeVersionPayload(&DocumentVersion{ID: "v1", FileReference: raw})
	if err != nil {
		t.Fatalf("DecodeVersionPayload() unexpected error: %v", err)
	}
	unstructured, ok := got.(UnstructuredPayload)
	if !ok {
		t.Fatalf("DecodeVersionPayload() type = %T, want UnstructuredPayload", got)
	}
	if string(unstructured.Raw) != string(raw) {
		t.Errorf("Raw = %s, want %s (verbatim)", unstructured.Raw, raw)
	}
}

func TestSuggestedFilename(t *testing.T) {
	tests := []struct {
		name    string
		version *DocumentVersion
		want    string
	}{
		{
			name: "file payload keeps original name",
			version: &DocumentVersion{
				VersionNumber: 3,
				FileReference: json.RawMessage(`{"storage_key":"blobs/a","filename":"audit-evidence.pdf"}`),
			},
			want: "audit-evidence.pdf",
		},
		{
			name:    "text payload gets numbered name",
			version: &DocumentVersion{VersionNumber: 5, Content: strPtr("text")},
			want:    "version-5.txt",
		},
		{
			name: "file payload without filename gets numbered name",
			version: &DocumentVersion{
				VersionNumber: 2,
				FileReference: json.RawMessage(`{"storage_key":"blobs/a"}`),
			},
			want: "version-2.txt",
		},
		{
			name:    "no payload still names the download",
			version: &DocumentVersion{VersionNumber: 1},
			want:    "version-1.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SuggestedFilename(tt.version); got != tt.want {
				t.Errorf("SuggestedFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}
