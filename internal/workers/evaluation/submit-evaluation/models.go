// internal/workers/evaluation/submit-evaluation/models.go
package submitevaluation

import "formquali-workers/internal/evaluation/submission"

type Input struct {
	FormData map[string]interface{} `json:"formData"`
}

// Output flattens the submission outcome into the process variables.
type Output struct {
	Success bool `json:"success"`
	submission.Outcome
}
