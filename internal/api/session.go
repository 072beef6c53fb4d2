package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"formquali-workers/internal/common/auth"
	commonerrors "formquali-workers/internal/common/errors"
)

// Session headers returned by /api/login and sent back on every form call.
const (
	HeaderSessionID = "X-Session-Id"
	HeaderEvaluator = "X-Evaluator-Email"
)

// requireSession admits a request only with a live evaluator session. On
// draft routes the {evaluator} path value must be the session's e-mail.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Sessions == nil {
			s.writeError(w, r, errUnavailable)
			return
		}

		email := strings.TrimSpace(r.Header.Get(HeaderEvaluator))
		sessionID := strings.TrimSpace(r.Header.Get(HeaderSessionID))
		if email == "" || sessionID == "" {
			s.writeError(w, r, commonerrors.NewSessionRequiredError("missing session headers"))
			return
		}

		sess, err := s.deps.Sessions.Get(r.Context(), email, sessionID)
		switch {
		case errors.Is(err, auth.ErrSessionNotFound), errors.Is(err, auth.ErrSessionExpired):
			s.writeError(w, r, commonerrors.NewSessionRequiredError(err.Error()))
			return
		case err != nil:
			s.writeError(w, r, err)
			return
		}
		if !sess.ExpiresAt.IsZero() && !time.Now().Before(sess.ExpiresAt) {
			s.writeError(w, r, commonerrors.NewSessionRequiredError(auth.ErrSessionExpired.Error()))
			return
		}

		if evaluator := strings.TrimSpace(r.PathValue("evaluator")); evaluator != "" &&
			!strings.EqualFold(evaluator, sess.Evaluator.Email) {
			s.logger.Warn("draft access denied", map[string]interface{}{
				"evaluator": evaluator,
				"session":   sess.Evaluator.Email,
			})
			s.writeError(w, r, commonerrors.NewDraftAccessDeniedError(evaluator))
			return
		}

		next(w, r)
	}
}
