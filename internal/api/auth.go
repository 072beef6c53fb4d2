package api

import (
	"net/http"
	"strings"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/validation"
	"formquali-workers/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success   bool             `json:"success"`
	SessionID string           `json:"sessionId"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Evaluator models.Evaluator `json:"evaluator"`
}

type logoutRequest struct {
	Email     string `json:"email"`
	SessionID string `json:"sessionId"`
	LogoutAll bool   `json:"logoutAll"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.Credentials == nil || s.deps.Sessions == nil {
		s.writeError(w, r, errUnavailable)
		return
	}

	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ev, err := s.deps.Credentials.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.deps.Sessions.Create(r.Context(), *ev)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("evaluator logged in", map[string]interface{}{"email": ev.Email})
	writeJSON(w, http.StatusOK, loginResponse{
		Success:   true,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
		Evaluator: *ev,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.deps.Sessions == nil {
		s.writeError(w, r, errUnavailable)
		return
	}

	var req logoutRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if !validation.ValidateEmail(req.Email) {
		s.writeError(w, r, commonerrors.NewInvalidInputError("a valid email is required"))
		return
	}
	if req.SessionID == "" && !req.LogoutAll {
		s.writeError(w, r, commonerrors.NewInvalidInputError("sessionId or logoutAll is required"))
		return
	}

	sessionID := req.SessionID
	if req.LogoutAll {
		sessionID = ""
	}
	ended, err := s.deps.Sessions.Delete(r.Context(), req.Email, sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"ended":   ended,
	})
}
