// internal/workers/data-access/search-evaluations/models.go
package searchevaluations

import (
	"formquali-workers/internal/evaluation/records"
	"formquali-workers/internal/models"
)

// Input carries the search filter as top-level process variables.
type Input struct {
	records.Filter
}

type Output struct {
	Total   int64               `json:"total"`
	Page    int                 `json:"page"`
	Size    int                 `json:"size"`
	Results []*models.Monitoria `json:"results"`
	Source  string              `json:"source"`
}
