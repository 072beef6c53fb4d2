// internal/workers/evaluation/validate-evaluation/models.go
package validateevaluation

import "formquali-workers/internal/evaluation"

// Input is the form to check. With FailOnInvalid an incomplete form throws
// EVALUATION_INVALID instead of completing the job.
type Input struct {
	FormData      map[string]interface{} `json:"formData"`
	FailOnInvalid bool                   `json:"failOnInvalid"`
}

type Output struct {
	IsValid       bool                 `json:"isValid"`
	Message       string               `json:"message"`
	InvalidFields []evaluation.FieldID `json:"invalidFields"`
	FocusField    evaluation.FieldID   `json:"focusField"`
	Progress      evaluation.Progress  `json:"progress"`
}
