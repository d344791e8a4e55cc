package scoring

import (
	"context"
	"errors"
	"math"
	"time"
)

var (
	ErrInvalidRequest = errors.New("scoring: invalid request")
	ErrNotFound       = errors.New("scoring: project not scored")
)

// Repository abstracts data access for score summaries.
//
// IMPORTANT:
// - Methods must enforce workspace filtering.
// - Scoring itself happens in the assessment pipeline; this layer only
//   reads its output.
type Repository interface {
	ListCategoryScores(ctx context.Context, workspaceID, projectID string) ([]CategoryScore, error)
	CountDocuments(ctx context.Context, workspaceID, projectID string) (int, error)
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// ProjectScore aggregates the weighted category scores of one project.
func (s *Service) ProjectScore(ctx context.Context, req ScoreRequest) (Score, error) {
	if req.WorkspaceID == "" || req.ProjectID == "" {
		return Score{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return Score{}, errors.New("scoring: repository not configured")
	}

	cats, err := s.repo.ListCategoryScores(ctx, req.WorkspaceID, req.ProjectID)
	if err != nil {
		return Score{}, err
	}
	if len(cats) == 0 {
		return Score{}, ErrNotFound
	}

	docs, err := s.repo.CountDocuments(ctx, req.WorkspaceID, req.ProjectID)
	if err != nil {
		return Score{}, err
	}

	out := Score{
		WorkspaceID:   req.WorkspaceID,
		ProjectID:     req.ProjectID,
		Categories:    cats,
		DocumentCount: docs,
		GeneratedAt:   s.clock().UTC(),
	}

	var weighted, weights float64
	for _, c := range cats {
		w := c.Weight
		if w <= 0 {
			w = 1
		}
		weighted += float64(c.Score) * w
		weights += w
	}
	if weights > 0 {
		out.Total = int(math.Round(weighted / weights))
	}
	return out, nil
}
