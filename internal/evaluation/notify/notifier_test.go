package notify

import (
	"context"
	"errors"
	"testing"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/evaluation"
	"formquali-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type MockEmail struct {
	mock.Mock
}

func (m *MockEmail) SendEmail(ctx context.Context, to, subject, text, html string) (string, error) {
	args := m.Called(ctx, to, subject, text, html)
	return args.String(0), args.Error(1)
}

type MockAlerts struct {
	mock.Mock
}

func (m *MockAlerts) Publish(ctx context.Context, subject, message string, attrs map[string]string) (string, error) {
	args := m.Called(ctx, subject, message, attrs)
	return args.String(0), args.Error(1)
}

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) PostResult(ctx context.Context, result models.EvaluationResult) (string, error) {
	args := m.Called(ctx, result)
	return args.String(0), args.Error(1)
}

func criticalRecord() *models.Monitoria {
	occurred := string(evaluation.RatingNaoConforme)
	conforme := string(evaluation.RatingConforme)
	return &models.Monitoria{
		ID:           "rec-1",
		TicketNumber: "4521",
		TicketLink:   "https://acme.zendesk.com/agent/tickets/4521",
		Casa:         "Casa Norte",
		Monitor:      "Joana",
		Analista:     "Rafael Lima",
		RespostasNcg: map[string]models.NcgAnswer{
			evaluation.NcgQuestions[evaluation.Ncg15]: {Occurred: &occurred},
			evaluation.NcgQuestions[evaluation.Ncg13]: {Occurred: &occurred},
			evaluation.NcgQuestions[evaluation.Ncg14]: {Occurred: &conforme},
		},
	}
}

// ==========================
// Tests
// ==========================

func TestResultFromRecord_OrdersFailedNcg(t *testing.T) {
	result := ResultFromRecord(criticalRecord())

	assert.True(t, result.FalhaCritica)
	assert.Equal(t, []string{
		evaluation.NcgQuestions[evaluation.Ncg13],
		evaluation.NcgQuestions[evaluation.Ncg15],
	}, result.FailedNcg)
}

func TestSend_CriticalFailureUsesAllChannels(t *testing.T) {
	email := new(MockEmail)
	alerts := new(MockAlerts)
	channel := new(MockChannel)

	email.On("SendEmail", mock.Anything, "rafael@acme.com", "Resultado", mock.MatchedBy(func(text string) bool {
		return assert.Contains(t, text, "Nota final: 0.00%") && assert.Contains(t, text, "13 - NCG")
	}), mock.Anything).Return("ses-1", nil)
	alerts.On("Publish", mock.Anything, "Falha crítica NCG - ticket #4521", mock.Anything,
		map[string]string{"casa": "Casa Norte", "analista": "Rafael Lima"}).Return("sns-1", nil)
	channel.On("PostResult", mock.Anything, mock.Anything).Return("dc-1", nil)

	n := New(logger.NewTestLogger(t),
		WithEmail(email, "Resultado"),
		WithAlerts(alerts),
		WithChannel(channel),
		WithRecipientResolver(func(ctx context.Context, ticket string) (string, error) {
			assert.Equal(t, "4521", ticket)
			return "rafael@acme.com", nil
		}),
	)

	report := n.Send(context.Background(), ResultFromRecord(criticalRecord()))

	assert.Equal(t, models.NotificationSent, report.Status)
	require.Len(t, report.Channels, 3)
	assert.Equal(t, models.ChannelEmail, report.Channels[0].Channel)
	assert.Equal(t, "ses-1", report.Channels[0].MessageID)
	assert.Equal(t, models.ChannelSNS, report.Channels[1].Channel)
	assert.Equal(t, models.ChannelDiscord, report.Channels[2].Channel)
	assert.NotEmpty(t, report.NotificationID)
	email.AssertExpectations(t)
	alerts.AssertExpectations(t)
	channel.AssertExpectations(t)
}

func TestSend_RegularResultOnlyEmails(t *testing.T) {
	email := new(MockEmail)
	alerts := new(MockAlerts)
	email.On("SendEmail", mock.Anything, "rafael@acme.com", DefaultSubject, mock.Anything, mock.Anything).Return("ses-1", nil)

	n := New(logger.NewTestLogger(t), WithEmail(email, ""), WithAlerts(alerts))
	report := n.Send(context.Background(), models.EvaluationResult{
		RecordID: "rec-2", AnalistaEmail: "rafael@acme.com", NotaFinal: 91.67,
	})

	assert.Equal(t, models.NotificationSent, report.Status)
	assert.Len(t, report.Channels, 1)
	alerts.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSend_NoChannelsIsDisabled(t *testing.T) {
	report := New(logger.NewTestLogger(t)).Send(context.Background(), models.EvaluationResult{FalhaCritica: true})
	assert.Equal(t, models.NotificationDisabled, report.Status)
	assert.Empty(t, report.Channels)
}

func TestSend_EmailWithoutRecipientIsSkipped(t *testing.T) {
	email := new(MockEmail)
	n := New(logger.NewTestLogger(t), WithEmail(email, ""),
		WithRecipientResolver(func(ctx context.Context, ticket string) (string, error) {
			return "", errors.New("ticket not found")
		}))

	report := n.Send(context.Background(), models.EvaluationResult{TicketNumber: "1"})
	assert.Equal(t, models.NotificationDisabled, report.Status)
	email.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOnSubmitted_ReportsFailure(t *testing.T) {
	channel := new(MockChannel)
	channel.On("PostResult", mock.Anything, mock.MatchedBy(func(r models.EvaluationResult) bool {
		return r.RecordID == "rec-1" && r.FalhaCritica && r.NotaFinal == 0
	})).Return("", errors.New("discord down"))

	n := New(logger.NewTestLogger(t), WithChannel(channel))
	assert.Equal(t, "result-notification", n.Name())

	err := n.OnSubmitted(context.Background(), criticalRecord(), evaluation.ScoreResult{
		FinalScore: 0, IsCriticalFailure: true, ApplicableCriteriaCount: 10,
	})
	require.Error(t, err)
	stdErr, ok := commonerrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeNotificationSendFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "discord down")
	channel.AssertExpectations(t)
}

func TestRenderAlert(t *testing.T) {
	text := RenderAlert(ResultFromRecord(criticalRecord()))
	assert.Contains(t, text, "monitoria rec-1")
	assert.Contains(t, text, "Casa: Casa Norte")
	assert.Contains(t, text, "- 15 - NCG")
}
