package audit

import (
	"context"
	"errors"
	"testing"
)

func TestService_AppendFillsDefaults(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	err := svc.Append(context.Background(), Event{Type: EventTypeAuthFailure, IPAddress: "203.0.113.7"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	events := repo.Events()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].ID == "" || events[0].CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp to be filled, got %+v", events[0])
	}
}

func TestService_RejectsMissingType(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.Append(context.Background(), Event{}); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected invalid-event error, got %v", err)
	}
}

func TestService_AuthFailureAllowsUnknownWorkspace(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	// Malformed tokens never reveal a tenant; the failure is still recorded.
	if err := svc.LogAuthFailure(context.Background(), "", "", "203.0.113.7", "Invalid token format"); err != nil {
		t.Fatalf("log: %v", err)
	}
	events := repo.Events()
	if len(events) != 1 || events[0].Message != "Invalid token format" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestService_LogUploadSetsType(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	svc.LogUpload(ctx, "ws-1", "user-1", "ip", "doc-1", true, "a.pdf")
	svc.LogUpload(ctx, "ws-1", "user-1", "ip", "", false, "File type not allowed")

	events := repo.Events()
	if len(events) != 2 {
		t.Fatalf("expected two events, got %d", len(events))
	}
	if events[0].Type != EventTypeUploadAccepted || events[1].Type != EventTypeUploadRejected {
		t.Fatalf("unexpected event types: %+v", events)
	}
}
