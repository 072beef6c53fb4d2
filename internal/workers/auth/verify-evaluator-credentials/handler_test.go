// internal/workers/auth/verify-evaluator-credentials/handler_test.go
package verifyevaluatorcredentials

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"formquali-workers/internal/common/auth"
	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Job Helper
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "evaluator-login",
		ElementId:          "Activity_VerifyCredentials",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

// ==========================
// Test Helper Functions
// ==========================

type fixture struct {
	handler *Handler
	mock    sqlmock.Sqlmock
	redis   *miniredis.Miniredis
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	log := logger.NewTestLogger(t)
	handler, err := NewHandler(HandlerOptions{
		Credentials: auth.NewCredentialStore(db, log),
		Sessions:    auth.NewSessionStore(rdb, time.Hour),
		Logger:      log,
	})
	require.NoError(t, err)
	return &fixture{handler: handler, mock: mock, redis: mr}
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	f := setup(t)

	input, err := f.handler.parseInput(createMockJob(1, map[string]interface{}{
		"email":    "joana@acme.com",
		"password": "s3nha",
	}))
	require.NoError(t, err)
	assert.Equal(t, "joana@acme.com", input.Email)

	_, err = f.handler.parseInput(createMockJob(2, map[string]interface{}{"email": "joana@acme.com"}))
	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeInvalidInput))
}

// ==========================
// Service Tests
// ==========================

func TestService_Execute_OpensSession(t *testing.T) {
	f := setup(t)
	f.mock.ExpectQuery("SELECT id, nome, email FROM avaliadores").
		WithArgs("joana@acme.com", "s3nha").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "email"}).AddRow("7", "Joana", "joana@acme.com"))

	output, err := f.handler.service.Execute(context.Background(), &Input{Email: "joana@acme.com", Password: "s3nha"})

	require.NoError(t, err)
	assert.True(t, output.Authenticated)
	assert.Equal(t, "Joana", output.Evaluator.Nome)
	require.NotEmpty(t, output.SessionID)
	require.NotNil(t, output.ExpiresAt)
	assert.True(t, f.redis.Exists(auth.SessionKey("joana@acme.com", output.SessionID)))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestService_Execute_WrongPassword(t *testing.T) {
	f := setup(t)
	f.mock.ExpectQuery("SELECT id, nome, email FROM avaliadores").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "email"}))

	output, err := f.handler.service.Execute(context.Background(), &Input{Email: "joana@acme.com", Password: "x"})

	require.NoError(t, err)
	assert.False(t, output.Authenticated)
	assert.Equal(t, "Usuário ou senha inválidos.", output.Message)
	assert.Empty(t, f.redis.Keys())
}

func TestService_Execute_DatabaseDown(t *testing.T) {
	f := setup(t)
	f.mock.ExpectQuery("SELECT id, nome, email FROM avaliadores").
		WillReturnError(assert.AnError)

	_, err := f.handler.service.Execute(context.Background(), &Input{Email: "joana@acme.com", Password: "x"})

	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeLoginFailed))
}

func TestNewHandler_RequiresCredentialStore(t *testing.T) {
	_, err := NewHandler(HandlerOptions{Logger: logger.NewTestLogger(t)})
	assert.Error(t, err)
}
