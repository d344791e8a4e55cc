package audit

import "time"

// Event is an immutable, append-only security audit record.
//
// Invariants:
// - Events are never updated or deleted.
// - workspace_id is best-effort: authentication failures often happen
//   before a tenant is known, so it may be empty for those.
// - actor and ip capture are best-effort; never block critical flows on
//   audit failures.
type Event struct {
	ID          string `json:"id" db:"id"`
	WorkspaceID string `json:"workspace_id,omitempty" db:"workspace_id"`

	// Type indicates the security category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the token subject, when one could be decoded. For
	// expired or stale tokens this identifies who presented them even
	// though access was denied.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`

	// IPAddress should capture the original client IP when available.
	// Prefer X-Forwarded-For processing at the edge; store the resolved
	// client IP here.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// DocumentID targets the uploaded document for upload events.
	DocumentID string `json:"document_id,omitempty" db:"document_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeAuthFailure    EventType = "auth_failure"
	EventTypeCSRFRejected   EventType = "csrf_rejected"
	EventTypeUploadAccepted EventType = "upload_accepted"
	EventTypeUploadRejected EventType = "upload_rejected"
)
