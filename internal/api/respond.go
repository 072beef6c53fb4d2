package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	commonerrors "formquali-workers/internal/common/errors"
)

const maxBodyBytes = 1 << 20

var errUnavailable = errors.New("service not configured")

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// writeError answers with the status mapped from err and its user-facing
// message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}
	if stdErr, ok := commonerrors.AsStandardError(err); ok {
		body.Error = stdErr.Message
		body.Code = string(stdErr.Code)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": status,
			"error":  err,
		})
	}
	writeJSON(w, status, body)
}

func statusFor(err error) int {
	if errors.Is(err, errUnavailable) {
		return http.StatusServiceUnavailable
	}
	stdErr, ok := commonerrors.AsStandardError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch stdErr.Code {
	case commonerrors.ErrCodeInvalidInput,
		commonerrors.ErrCodeInvalidFilterFormat,
		commonerrors.ErrCodeTicketNumberRequired:
		return http.StatusBadRequest
	case commonerrors.ErrCodeInvalidCredentials,
		commonerrors.ErrCodeSessionRequired:
		return http.StatusUnauthorized
	case commonerrors.ErrCodeDraftAccessDenied:
		return http.StatusForbidden
	case commonerrors.ErrCodeTicketNotFound, "RESOURCE_NOT_FOUND":
		return http.StatusNotFound
	case commonerrors.ErrCodeSubmissionInProgress:
		return http.StatusConflict
	case commonerrors.ErrCodeTicketLookupFailed:
		if upstream, ok := stdErr.Metadata["status"].(int); ok && upstream >= 400 {
			return upstream
		}
		return http.StatusBadGateway
	case commonerrors.ErrCodeTicketLookupTimeout,
		commonerrors.ErrCodeAITimeout,
		commonerrors.ErrCodeSearchTimeout,
		commonerrors.ErrCodeQueryTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// decodeBody reads a JSON body of at most maxBodyBytes into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return commonerrors.NewInvalidInputError(err.Error())
	}
	return unmarshalBody(data, dst)
}

// decodeOptionalBody is decodeBody that leaves dst untouched on an empty body.
func decodeOptionalBody(r *http.Request, dst interface{}) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return commonerrors.NewInvalidInputError(err.Error())
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return unmarshalBody(data, dst)
}

func unmarshalBody(data []byte, dst interface{}) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return commonerrors.NewInvalidInputError("body is not valid JSON: " + err.Error())
	}
	return nil
}
