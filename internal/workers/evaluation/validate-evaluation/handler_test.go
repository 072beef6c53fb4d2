// internal/workers/evaluation/validate-evaluation/handler_test.go
package validateevaluation

import (
	"context"
	"encoding/json"
	"testing"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/evaluation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{}
}

func completeForm() evaluation.FormData {
	form := evaluation.NewFormData()
	form.GeneralInfo = evaluation.GeneralInfo{
		TicketNumber: "4521",
		Casa:         "Casa Centro",
		ServiceDate:  "2026-10-01",
		Monitor:      "Marina",
		Analista:     "Rafael",
	}
	for _, key := range evaluation.ChecklistKeys {
		form.ChecklistItems[key] = evaluation.ChecklistItem{Rating: evaluation.Rating(evaluation.RatingConforme)}
	}
	for _, key := range evaluation.NcgKeys {
		form.NcgItems[key] = evaluation.NcgItem{Occurred: evaluation.Rating(evaluation.RatingConforme)}
	}
	form.CustomerExperience = evaluation.CustomerExperience{
		FCR:                          evaluation.AnswerSim,
		DissatisfactionDuringContact: evaluation.AnswerNao,
		CustomerPraisedService:       evaluation.AnswerSim,
		ComplaintPreviousService:     evaluation.AnswerNao,
		ComplaintAnalystPosture:      evaluation.AnswerNao,
		ComplaintIncorrectInfo:       evaluation.AnswerNao,
		DissatisfactionWithIA:        evaluation.AnswerNA,
		ThreatenLegalAction:          evaluation.AnswerNao,
	}
	return form
}

func toDocument(t *testing.T, form evaluation.FormData) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(form)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_CompleteForm(t *testing.T) {
	handler := NewHandler(createTestConfig(), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{FormData: toDocument(t, completeForm())})

	require.NoError(t, err)
	assert.True(t, output.IsValid)
	assert.Empty(t, output.InvalidFields)
	assert.Empty(t, output.Message)
	assert.True(t, output.Progress.Complete())
}

func TestHandler_Execute_MissingGeneralInfo(t *testing.T) {
	handler := NewHandler(createTestConfig(), logger.NewTestLogger(t))
	form := completeForm()
	form.GeneralInfo.TicketNumber = "  "
	form.GeneralInfo.Analista = ""

	output, err := handler.Execute(context.Background(), &Input{FormData: toDocument(t, form)})

	require.NoError(t, err)
	assert.False(t, output.IsValid)
	assert.Equal(t, evaluation.MsgGeneralInfoRequired, output.Message)
	assert.Equal(t, []evaluation.FieldID{evaluation.FieldTicketNumber, evaluation.FieldAnalista}, output.InvalidFields)
	assert.Equal(t, evaluation.FieldTicketNumber, output.FocusField)
	assert.False(t, output.Progress.GeneralInfo)
}

func TestHandler_Execute_UnansweredChecklist(t *testing.T) {
	handler := NewHandler(createTestConfig(), logger.NewTestLogger(t))
	form := completeForm()
	form.ChecklistItems[evaluation.Item4] = evaluation.ChecklistItem{}

	output, err := handler.Execute(context.Background(), &Input{FormData: toDocument(t, form)})

	require.NoError(t, err)
	assert.False(t, output.IsValid)
	assert.Equal(t, evaluation.MsgChecklistRequired, output.Message)
	assert.Contains(t, output.InvalidFields, evaluation.FieldID(evaluation.Item4))
	assert.Equal(t, 11, output.Progress.AnsweredChecklist)
}

func TestHandler_Execute_FailOnInvalid(t *testing.T) {
	handler := NewHandler(createTestConfig(), logger.NewTestLogger(t))
	form := completeForm()
	form.NcgItems[evaluation.Ncg16] = evaluation.NcgItem{}

	output, err := handler.Execute(context.Background(), &Input{FormData: toDocument(t, form), FailOnInvalid: true})

	require.Error(t, err)
	assert.Nil(t, output)
	stdErr, ok := commonerrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeEvaluationValidationFailed, stdErr.Code)
	assert.Equal(t, evaluation.MsgNcgRequired, stdErr.Message)
	assert.Equal(t, []string{"ncg16"}, stdErr.Metadata["invalidFields"])
	assert.Equal(t, "EVALUATION_INVALID", commonerrors.ConvertToBPMNError(stdErr).Code)

	output, err = handler.Execute(context.Background(), &Input{FormData: toDocument(t, completeForm()), FailOnInvalid: true})
	require.NoError(t, err)
	assert.True(t, output.IsValid)
}

// ==========================
// Input Errors
// ==========================

func TestHandler_Execute_MalformedDocument(t *testing.T) {
	handler := NewHandler(createTestConfig(), logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{FormData: map[string]interface{}{
		"generalInfo": map[string]interface{}{"ticketNumber": 4521},
	}})

	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeInvalidInput))
}

func TestHandler_Execute_MissingFormData(t *testing.T) {
	handler := NewHandler(createTestConfig(), logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{})

	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeInvalidInput))
}
