package api

import (
	"errors"
	"net/http"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/evaluation"
	"formquali-workers/internal/evaluation/drafts"
	"formquali-workers/internal/evaluation/submission"
)

type draftView struct {
	Evaluator     string               `json:"evaluator"`
	FormData      evaluation.FormData  `json:"formData"`
	InvalidFields []evaluation.FieldID `json:"invalidFields"`
	Progress      evaluation.Progress  `json:"progress"`
	Submission    submissionView       `json:"submission"`
}

type submissionView struct {
	State       submission.State    `json:"state"`
	LastOutcome *submission.Outcome `json:"lastOutcome,omitempty"`
}

// fieldChange sets a field value, a checklist or NCG justification, or both.
// Changes apply in order so dependent-field resets behave as in the form.
type fieldChange struct {
	Field         evaluation.FieldID `json:"field"`
	Value         *string            `json:"value,omitempty"`
	Justification *string            `json:"justification,omitempty"`
}

type patchFieldsRequest struct {
	Changes []fieldChange `json:"changes"`
}

type putDraftRequest struct {
	FormData map[string]interface{} `json:"formData"`
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request) (*drafts.Session, bool) {
	if s.deps.Drafts == nil {
		s.writeError(w, r, errUnavailable)
		return nil, false
	}
	sess, err := s.deps.Drafts.Open(r.Context(), r.PathValue("evaluator"))
	if errors.Is(err, drafts.ErrEvaluatorRequired) {
		s.writeError(w, r, commonerrors.NewInvalidInputError("evaluator is required"))
		return nil, false
	}
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

func viewOf(sess *drafts.Session) draftView {
	form := sess.Store.Snapshot()
	invalid := sess.Store.InvalidFields()
	if invalid == nil {
		invalid = []evaluation.FieldID{}
	}
	return draftView{
		Evaluator:     sess.Evaluator,
		FormData:      form,
		InvalidFields: invalid,
		Progress:      evaluation.SectionProgress(form),
		Submission: submissionView{
			State:       sess.Submission.State(),
			LastOutcome: sess.Submission.LastOutcome(),
		},
	}
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.openSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

// handlePutDraft replaces the whole form.
func (s *Server) handlePutDraft(w http.ResponseWriter, r *http.Request) {
	var req putDraftRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	form, err := evaluation.ParseForm(req.FormData)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, ok := s.openSession(w, r)
	if !ok {
		return
	}
	sess.Store.Load(form)
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) handlePatchFields(w http.ResponseWriter, r *http.Request) {
	var req patchFieldsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Changes) == 0 {
		s.writeError(w, r, commonerrors.NewInvalidInputError("changes is required"))
		return
	}

	sess, ok := s.openSession(w, r)
	if !ok {
		return
	}
	for _, change := range req.Changes {
		if err := applyChange(sess.Store, change); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error": err.Error(),
				"field": change.Field,
				"draft": viewOf(sess),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func applyChange(store *evaluation.Store, change fieldChange) error {
	if change.Value == nil && change.Justification == nil {
		return commonerrors.NewInvalidInputError("value or justification is required")
	}
	if change.Value != nil {
		if err := store.SetField(change.Field, *change.Value); err != nil {
			return err
		}
	}
	if change.Justification == nil {
		return nil
	}
	if key, ok := evaluation.ParseChecklistKey(string(change.Field)); ok {
		return store.SetChecklistJustification(key, *change.Justification)
	}
	if key, ok := evaluation.ParseNcgKey(string(change.Field)); ok {
		return store.SetNcgJustification(key, *change.Justification)
	}
	return commonerrors.NewInvalidInputError("only checklist and NCG items take a justification: " + string(change.Field))
}

func (s *Server) handleSubmitDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.openSession(w, r)
	if !ok {
		return
	}

	outcome, err := sess.Submission.Submit(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	switch outcome.Failure {
	case submission.FailureValidation:
		status = http.StatusUnprocessableEntity
	case submission.FailurePersistence:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, outcome)
}

func (s *Server) handleDraftProgress(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.openSession(w, r)
	if !ok {
		return
	}
	progress := evaluation.SectionProgress(sess.Store.Snapshot())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"progress": progress,
		"complete": progress.Complete(),
	})
}

// handleDeleteDraft closes the session and discards the saved draft.
func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	if s.deps.Drafts == nil {
		s.writeError(w, r, errUnavailable)
		return
	}
	if err := s.deps.Drafts.Close(r.Context(), r.PathValue("evaluator"), true); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
