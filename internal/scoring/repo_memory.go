package scoring

import (
	"context"
	"errors"
	"sync"
)

// MemoryRepo is a simple in-memory scoring repository for tests and early
// development. It enforces workspace isolation on reads.
type MemoryRepo struct {
	mu sync.Mutex

	// key: workspace_id|project_id
	Scores    map[string][]CategoryScore
	Documents map[string]int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		Scores:    map[string][]CategoryScore{},
		Documents: map[string]int{},
	}
}

func key(workspaceID, projectID string) string {
	return workspaceID + "|" + projectID
}

// SetProject seeds a project's category scores and document count.
func (r *MemoryRepo) SetProject(workspaceID, projectID string, cats []CategoryScore, docs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(workspaceID, projectID)
	r.Scores[k] = cats
	r.Documents[k] = docs
}

func (r *MemoryRepo) ListCategoryScores(ctx context.Context, workspaceID, projectID string) ([]CategoryScore, error) {
	if workspaceID == "" {
		return nil, errors.New("workspace_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cats := r.Scores[key(workspaceID, projectID)]
	out := make([]CategoryScore, len(cats))
	copy(out, cats)
	return out, nil
}

func (r *MemoryRepo) CountDocuments(ctx context.Context, workspaceID, projectID string) (int, error) {
	if workspaceID == "" {
		return 0, errors.New("workspace_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Documents[key(workspaceID, projectID)], nil
}
