package uploads

import "time"

// Status describes the document processing lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
)

// Document is the stored metadata for one uploaded project file.
//
// Invariants:
// - FileName is always the sanitized form; the raw client filename is
//   never persisted or echoed.
// - WorkspaceID is required; all reads are workspace-scoped.
// - FileSize has already passed the safety filter.
type Document struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	FileName    string    `json:"file_name" db:"file_name"`
	FileSize    int64     `json:"file_size" db:"file_size"`
	ContentType string    `json:"content_type,omitempty" db:"content_type"`
	Status      Status    `json:"status" db:"status"`
	UploadedBy  string    `json:"uploaded_by,omitempty" db:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at" db:"uploaded_at"`
}
