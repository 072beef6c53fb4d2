package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/gemini"
	"formquali-workers/internal/evaluation"
)

const msgMissingAnswerText = "Texto de perguntas e respostas não enviado."

type FeedbackGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateStructured(ctx context.Context, prompt string) (*gemini.StructuredFeedback, error)
}

// feedbackRequest asks for the structured summary of perguntasRespostasTexto,
// or with mode "coaching" for a coaching paragraph built from formData.
type feedbackRequest struct {
	Mode                    string                 `json:"mode"`
	PerguntasRespostasTexto string                 `json:"perguntasRespostasTexto"`
	FormData                map[string]interface{} `json:"formData"`
}

func (s *Server) handleAIFeedback(w http.ResponseWriter, r *http.Request) {
	if s.deps.Feedback == nil {
		s.writeError(w, r, errUnavailable)
		return
	}

	var req feedbackRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	switch req.Mode {
	case "coaching":
		s.coachingFeedback(w, r, req)
	case "", "structured":
		s.structuredFeedback(w, r, req)
	default:
		s.writeError(w, r, commonerrors.NewInvalidInputError("unknown mode: "+req.Mode))
	}
}

func (s *Server) coachingFeedback(w http.ResponseWriter, r *http.Request, req feedbackRequest) {
	form, err := evaluation.ParseForm(req.FormData)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	prompt, ok := evaluation.CoachingPrompt(form)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"generated": false,
			"feedback":  evaluation.MsgNoImprovementPoints,
		})
		return
	}

	text, err := s.deps.Feedback.Generate(r.Context(), prompt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"generated": true,
		"feedback":  strings.TrimSpace(text),
	})
}

func (s *Server) structuredFeedback(w http.ResponseWriter, r *http.Request, req feedbackRequest) {
	text := strings.TrimSpace(req.PerguntasRespostasTexto)
	if text == "" && req.FormData != nil {
		form, err := evaluation.ParseForm(req.FormData)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		text = evaluation.QuestionAnswerText(form)
	}
	if text == "" {
		writeMessage(w, http.StatusBadRequest, msgMissingAnswerText)
		return
	}

	fb, err := s.deps.Feedback.GenerateStructured(r.Context(), evaluation.StructuredPrompt(text))
	if err != nil {
		if stdErr, ok := commonerrors.AsStandardError(err); ok && stdErr.Code == commonerrors.ErrCodeAIResponseInvalid {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error": stdErr.Message,
				"raw":   stdErr.Details,
			})
			return
		}
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"payloadIA": payloadIA(fb),
	})
}

// payloadIA reassembles the model's JSON object from the parsed feedback.
func payloadIA(fb *gemini.StructuredFeedback) map[string]interface{} {
	out := make(map[string]interface{}, len(fb.Answers)+2)
	for key, raw := range fb.Answers {
		out[key] = json.RawMessage(raw)
	}
	out["avaliacao_ia"] = fb.AvaliacaoIA
	out["sugestao_ia"] = fb.SugestaoIA
	return out
}
