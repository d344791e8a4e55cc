package uploads

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is a simple in-memory document repository for tests and early
// development. It enforces workspace isolation on reads.
type MemoryRepo struct {
	mu   sync.Mutex
	docs map[string]Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{docs: map[string]Document{}}
}

func (r *MemoryRepo) Insert(ctx context.Context, d Document) error {
	if d.ID == "" || d.WorkspaceID == "" {
		return ErrInvalidRequest
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[d.ID] = d
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, workspaceID, id string) (Document, error) {
	if workspaceID == "" || id == "" {
		return Document{}, ErrInvalidRequest
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.WorkspaceID != workspaceID {
		return Document{}, ErrNotFound
	}
	return d, nil
}

func (r *MemoryRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]Document, error) {
	if workspaceID == "" {
		return nil, ErrInvalidRequest
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Document, 0)
	for _, d := range r.docs {
		if d.WorkspaceID == workspaceID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, workspaceID, id string) error {
	if workspaceID == "" || id == "" {
		return ErrInvalidRequest
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.WorkspaceID != workspaceID {
		return ErrNotFound
	}
	delete(r.docs, id)
	return nil
}
