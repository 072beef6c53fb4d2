// internal/workers/evaluation/create-evaluation-record/models.go
package createevaluationrecord

import "formquali-workers/internal/evaluation"

type Input struct {
	FormData map[string]interface{}  `json:"formData"`
	Score    *evaluation.ScoreResult `json:"score,omitempty"`
}

type Output struct {
	RecordID          string  `json:"recordId"`
	NotaFinal         float64 `json:"notaFinal"`
	IsCriticalFailure bool    `json:"isCriticalFailure"`
	Indexed           bool    `json:"indexed"`
	CreatedAt         string  `json:"createdAt"` // ISO 8601
}
