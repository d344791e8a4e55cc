package uploads

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("uploads: document not found")
	ErrInvalidRequest = errors.New("uploads: invalid request")
)

// Repository is the persistence contract for document metadata.
//
// Implementations must enforce workspace filtering on every read and
// delete: a document is only visible inside its own workspace.
type Repository interface {
	Insert(ctx context.Context, d Document) error
	Get(ctx context.Context, workspaceID, id string) (Document, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]Document, error)
	Delete(ctx context.Context, workspaceID, id string) error
}
