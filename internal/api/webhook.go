package api

import (
	"encoding/json"
	"net/http"
)

// handleSendWebhook forwards the request body unchanged to the automation
// endpoint and echoes its response.
func (s *Server) handleSendWebhook(w http.ResponseWriter, r *http.Request) {
	if s.deps.Webhook == nil {
		s.writeError(w, r, errUnavailable)
		return
	}

	var body json.RawMessage
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	data, err := s.deps.Webhook.Forward(r.Context(), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}
