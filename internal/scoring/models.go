package scoring

import "time"

// CategoryScore is one scored readiness category of a project, e.g.
// "Permitting" or "Interconnection".
type CategoryScore struct {
	Name   string  `json:"name"`
	Score  int     `json:"score"`
	Weight float64 `json:"weight"`
}

// ScoreRequest requests the CEARTscore summary of one project.
// Workspace isolation: WorkspaceID is required.
type ScoreRequest struct {
	WorkspaceID string `json:"workspace_id"`
	ProjectID   string `json:"project_id"`
}

// Score is the aggregated CEARTscore for a project: the weighted total of
// its category scores plus how many documents backed the assessment.
type Score struct {
	WorkspaceID string `json:"workspace_id"`
	ProjectID   string `json:"project_id"`

	Total      int             `json:"total"`
	Categories []CategoryScore `json:"categories"`

	DocumentCount int       `json:"document_count"`
	GeneratedAt   time.Time `json:"generated_at"`
}
