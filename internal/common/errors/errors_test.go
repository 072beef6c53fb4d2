// internal/common/errors/errors_test.go
package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name            string
		err             *StandardError
		expectedCode    string
		expectedRetries int
	}{
		{
			name:            "validation failure maps to boundary code",
			err:             NewEvaluationValidationError("Por favor, responda a todas as questões NCG (13-18).", []string{"ncg13"}),
			expectedCode:    "EVALUATION_INVALID",
			expectedRetries: 0,
		},
		{
			name:            "insert failure is retried",
			err:             NewDatabaseInsertFailedError(fmt.Errorf("connection reset")),
			expectedCode:    "EVALUATION_NOT_SAVED",
			expectedRetries: 3,
		},
		{
			name:            "unmapped code passes through",
			err:             NewSearchTimeoutError("monitorias"),
			expectedCode:    "SEARCH_TIMEOUT",
			expectedRetries: 2,
		},
		{
			name:            "non retryable lookup status",
			err:             NewTicketLookupError(404, fmt.Errorf("not found")),
			expectedCode:    "TICKET_LOOKUP_FAILED",
			expectedRetries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.expectedCode, bpmnErr.Code)
			assert.Equal(t, tt.expectedRetries, bpmnErr.Retries)
			assert.Equal(t, string(tt.err.Code), bpmnErr.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_CarriesMetadata(t *testing.T) {
	stdErr := NewEvaluationValidationError("msg", []string{"item1", "fcr"})

	vars := ConvertToBPMNError(stdErr).ToErrorVariables()

	assert.Equal(t, []string{"item1", "fcr"}, vars["invalidFields"])
	assert.Equal(t, "msg", vars["errorMessage"])
	assert.Equal(t, false, vars["retryable"])
}

func TestAsStandardError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("saving: %w", NewLoginFailedError(fmt.Errorf("timeout")))

	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeLoginFailed, stdErr.Code)
	assert.Equal(t, "Erro ao tentar logar.", stdErr.Message)
	assert.True(t, HasCode(wrapped, ErrCodeLoginFailed))
	assert.False(t, HasCode(fmt.Errorf("plain"), ErrCodeLoginFailed))
}

func TestNormalize_UnknownError(t *testing.T) {
	stdErr := Normalize(fmt.Errorf("boom"))

	assert.Equal(t, ErrorCode("INTERNAL_ERROR"), stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.Equal(t, "boom", stdErr.Details)
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeInvalidCredentials:         "AUTH",
		ErrCodeSessionStoreFailed:         "AUTH",
		ErrCodeTicketNotFound:             "LOOKUP",
		ErrCodeWebhookDeliveryFailed:      "NOTIFICATION",
		ErrCodeNotificationSendFailed:     "NOTIFICATION",
		ErrCodeDatabaseInsertFailed:       "PERSISTENCE",
		ErrCodeSearchQueryFailed:          "SEARCH",
		ErrCodeIndexNotFound:              "SEARCH",
		ErrCodeAITimeout:                  "AI",
		ErrCodeEvaluationValidationFailed: "VALIDATION",
		ErrCodeInvalidInput:               "VALIDATION",
		"SOMETHING_ELSE":                  "OTHER",
	}
	for code, expected := range tests {
		assert.Equal(t, expected, GetErrorCategory(code), string(code))
	}
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeWebhookDeliveryFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeAITimeout))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidCredentials))
	assert.False(t, IsRetryableErrorCode(ErrCodeSubmissionInProgress))
}

func TestRemainingRetries(t *testing.T) {
	left, retry := RemainingRetries(NewWebhookDeliveryError(fmt.Errorf("502")), 5)
	assert.True(t, retry)
	assert.Equal(t, int32(3), left)

	left, retry = RemainingRetries(NewWebhookDeliveryError(fmt.Errorf("502")), 2)
	assert.True(t, retry)
	assert.Equal(t, int32(1), left)

	_, retry = RemainingRetries(NewWebhookDeliveryError(fmt.Errorf("502")), 0)
	assert.False(t, retry)

	_, retry = RemainingRetries(NewInvalidCredentialsError(), 3)
	assert.False(t, retry)
}
