// internal/workers/auth/end-evaluator-session/handler_test.go
package endevaluatorsession

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"formquali-workers/internal/common/auth"
	"formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Delete(ctx context.Context, email, sessionID string) (int, error) {
	args := m.Called(ctx, email, sessionID)
	return args.Int(0), args.Error(1)
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "evaluator-logout",
		ElementId:          "Activity_EndSession",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func newTestHandler(t *testing.T, sessions SessionDeleter) *Handler {
	h, err := NewHandler(HandlerOptions{Sessions: sessions, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)
	return h
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, new(MockSessions))

	input, err := h.parseInput(createMockJob(1, map[string]interface{}{
		"email":     "joana@acme.com",
		"logoutAll": true,
	}))
	require.NoError(t, err)
	assert.True(t, input.LogoutAll)
	assert.Empty(t, input.SessionID)

	_, err = h.parseInput(createMockJob(2, map[string]interface{}{"email": 12}))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}

// ==========================
// Service Tests
// ==========================

func TestService_Execute_SingleSession(t *testing.T) {
	sessions := new(MockSessions)
	sessions.On("Delete", mock.Anything, "joana@acme.com", "s-1").Return(1, nil)

	output, err := newTestHandler(t, sessions).service.Execute(context.Background(), &Input{
		Email:     "joana@acme.com",
		SessionID: "s-1",
	})

	require.NoError(t, err)
	assert.True(t, output.Success)
	assert.Equal(t, 1, output.SessionsInvalidated)
	assert.Equal(t, "Session ended", output.Message)
}

func TestService_Execute_LogoutAllIgnoresSessionID(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	store := auth.NewSessionStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)

	ev := models.Evaluator{ID: "7", Email: "joana@acme.com"}
	for i := 0; i < 3; i++ {
		_, err := store.Create(context.Background(), ev)
		require.NoError(t, err)
	}

	output, err := newTestHandler(t, store).service.Execute(context.Background(), &Input{
		Email:     "joana@acme.com",
		SessionID: "ignored",
		LogoutAll: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, output.SessionsInvalidated)
	assert.Equal(t, "All sessions ended", output.Message)
	assert.Empty(t, mr.Keys())
}

func TestService_Execute_RequiresTarget(t *testing.T) {
	sessions := new(MockSessions)

	_, err := newTestHandler(t, sessions).service.Execute(context.Background(), &Input{Email: "joana@acme.com"})

	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
	sessions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}
