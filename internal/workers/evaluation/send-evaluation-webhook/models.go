// internal/workers/evaluation/send-evaluation-webhook/models.go
package sendevaluationwebhook

import "formquali-workers/internal/evaluation"

type Input struct {
	FormData    map[string]interface{}  `json:"formData"`
	Score       *evaluation.ScoreResult `json:"score,omitempty"`
	SubmittedAt string                  `json:"submittedAt,omitempty"` // RFC 3339
}

type Output struct {
	Delivered bool   `json:"delivered"`
	SentAt    string `json:"sentAt"`
}
