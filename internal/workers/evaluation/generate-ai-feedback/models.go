// internal/workers/evaluation/generate-ai-feedback/models.go
package generateaifeedback

import "encoding/json"

const (
	ModeCoaching   = "coaching"
	ModeStructured = "structured"
)

// Input carries the form, or for structured mode the already rendered
// question and answer text.
type Input struct {
	Mode               string                 `json:"mode"`
	FormData           map[string]interface{} `json:"formData,omitempty"`
	QuestionAnswerText string                 `json:"questionAnswerText,omitempty"`
}

type Output struct {
	Mode        string                     `json:"mode"`
	Generated   bool                       `json:"generated"`
	Feedback    string                     `json:"feedback,omitempty"`
	AvaliacaoIA string                     `json:"avaliacaoIA,omitempty"`
	SugestaoIA  string                     `json:"sugestaoIA,omitempty"`
	Answers     map[string]json.RawMessage `json:"answers,omitempty"`
}
