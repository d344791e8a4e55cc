package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal security audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to tenant users.
// - Callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s == nil || s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogAuthFailure records a denied authentication attempt. actorUserID and
// workspaceID come from the decoded claims when the token was readable but
// invalid, and are empty otherwise.
func (s *Service) LogAuthFailure(ctx context.Context, workspaceID, actorUserID, ip, reason string) error {
	return s.Append(ctx, Event{
		WorkspaceID: workspaceID,
		Type:        EventTypeAuthFailure,
		ActorUserID: actorUserID,
		IPAddress:   ip,
		Message:     reason,
	})
}

// LogCSRFRejected records a state-changing request that failed the
// anti-forgery check after authenticating successfully.
func (s *Service) LogCSRFRejected(ctx context.Context, workspaceID, actorUserID, ip, method, path string) error {
	return s.Append(ctx, Event{
		WorkspaceID: workspaceID,
		Type:        EventTypeCSRFRejected,
		ActorUserID: actorUserID,
		IPAddress:   ip,
		Message:     method + " " + path,
	})
}

// LogUpload records the outcome of an upload attempt.
func (s *Service) LogUpload(ctx context.Context, workspaceID, actorUserID, ip, documentID string, accepted bool, message string) error {
	t := EventTypeUploadAccepted
	if !accepted {
		t = EventTypeUploadRejected
	}
	return s.Append(ctx, Event{
		WorkspaceID: workspaceID,
		Type:        t,
		ActorUserID: actorUserID,
		IPAddress:   ip,
		DocumentID:  documentID,
		Message:     message,
	})
}
