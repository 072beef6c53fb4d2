// internal/workers/evaluation/notify-evaluation-result/handler_test.go
package notifyevaluationresult

import (
	"context"
	"errors"
	"testing"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/evaluation"
	"formquali-workers/internal/evaluation/notify"
	"formquali-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockRecordReader struct {
	mock.Mock
}

func (m *MockRecordReader) Get(ctx context.Context, id string) (*models.Monitoria, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Monitoria), args.Error(1)
}

type MockEmail struct {
	mock.Mock
}

func (m *MockEmail) SendEmail(ctx context.Context, to, subject, text, html string) (string, error) {
	args := m.Called(ctx, to, subject, text, html)
	return args.String(0), args.Error(1)
}

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) PostResult(ctx context.Context, result models.EvaluationResult) (string, error) {
	args := m.Called(ctx, result)
	return args.String(0), args.Error(1)
}

// ==========================
// Test Helper Functions
// ==========================

func strPtr(s string) *string { return &s }

func storedRecord() *models.Monitoria {
	return &models.Monitoria{
		ID:              "rec-1",
		TicketNumber:    "4521",
		DataAtendimento: "2026-10-01",
		Analista:        "Rafael",
		Casa:            "Casa Norte",
		RespostasNcg: map[string]models.NcgAnswer{
			evaluation.NcgQuestions[evaluation.Ncg15]: {Occurred: strPtr("Não conforme")},
			evaluation.NcgQuestions[evaluation.Ncg13]: {Occurred: strPtr("Conforme")},
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_CriticalResultFromRecord(t *testing.T) {
	records := new(MockRecordReader)
	email := new(MockEmail)
	channel := new(MockChannel)
	records.On("Get", mock.Anything, "rec-1").Return(storedRecord(), nil)
	email.On("SendEmail", mock.Anything, "rafael@acme.com", mock.Anything, mock.Anything, mock.Anything).Return("ses-1", nil)
	channel.On("PostResult", mock.Anything, mock.MatchedBy(func(r models.EvaluationResult) bool {
		return r.FalhaCritica && len(r.FailedNcg) == 1 && r.DataAtendimento == "2026-10-01"
	})).Return("msg-1", nil)

	sender := notify.New(logger.NewTestLogger(t), notify.WithEmail(email, ""), notify.WithChannel(channel))
	handler := NewHandler(&Config{}, sender, records, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		RecordID:      "rec-1",
		AnalistaEmail: "rafael@acme.com",
		Score:         &evaluation.ScoreResult{IsCriticalFailure: true},
	})

	require.NoError(t, err)
	assert.Equal(t, string(models.NotificationSent), output.Status)
	assert.Equal(t, 2, output.Channels)
	assert.Zero(t, output.Failed)
	records.AssertExpectations(t)
	email.AssertExpectations(t)
	channel.AssertExpectations(t)
}

func TestHandler_Execute_FallsBackToVariables(t *testing.T) {
	records := new(MockRecordReader)
	channel := new(MockChannel)
	records.On("Get", mock.Anything, "rec-2").Return(nil, errors.New("RECORD_NOT_FOUND"))
	channel.On("PostResult", mock.Anything, mock.MatchedBy(func(r models.EvaluationResult) bool {
		return r.TicketNumber == "9000" && r.Analista == "Bia" && r.FalhaCritica
	})).Return("", errors.New("discord down"))

	sender := notify.New(logger.NewTestLogger(t), notify.WithChannel(channel))
	handler := NewHandler(&Config{}, sender, records, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		RecordID:     "rec-2",
		TicketNumber: "9000",
		Analista:     "Bia",
		Score:        &evaluation.ScoreResult{IsCriticalFailure: true},
	})

	require.NoError(t, err)
	assert.Equal(t, string(models.NotificationFailed), output.Status)
	assert.Equal(t, 1, output.Failed)
}

func TestHandler_Execute_NoChannels(t *testing.T) {
	handler := NewHandler(&Config{}, notify.New(logger.NewTestLogger(t)), nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{TicketNumber: "4521"})

	require.NoError(t, err)
	assert.Equal(t, string(models.NotificationDisabled), output.Status)
}

func TestHandler_Execute_RequiresIdentity(t *testing.T) {
	handler := NewHandler(&Config{}, notify.New(logger.NewTestLogger(t)), nil, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{})

	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeInvalidInput))
}
