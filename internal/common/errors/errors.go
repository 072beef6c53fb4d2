// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput               ErrorCode = "INVALID_INPUT"
	ErrCodeEvaluationValidationFailed ErrorCode = "EVALUATION_VALIDATION_FAILED"
	ErrCodeSubmissionInProgress       ErrorCode = "SUBMISSION_IN_PROGRESS"
	ErrCodeWebhookDeliveryFailed      ErrorCode = "WEBHOOK_DELIVERY_FAILED"
	ErrCodeWebhookNotConfigured       ErrorCode = "WEBHOOK_NOT_CONFIGURED"
	ErrCodeNotificationSendFailed     ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeTicketNumberRequired ErrorCode = "TICKET_NUMBER_REQUIRED"
	ErrCodeTicketNotFound       ErrorCode = "TICKET_NOT_FOUND"
	ErrCodeTicketLookupFailed   ErrorCode = "TICKET_LOOKUP_FAILED"
	ErrCodeTicketLookupTimeout  ErrorCode = "TICKET_LOOKUP_TIMEOUT"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeLoginFailed        ErrorCode = "LOGIN_FAILED"
	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeSessionRequired    ErrorCode = "SESSION_REQUIRED"
	ErrCodeDraftAccessDenied  ErrorCode = "DRAFT_ACCESS_DENIED"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"
	ErrCodeInvalidFilterFormat           ErrorCode = "INVALID_FILTER_FORMAT"

	ErrCodeAIFeedbackFailed  ErrorCode = "AI_FEEDBACK_FAILED"
	ErrCodeAITimeout         ErrorCode = "AI_TIMEOUT"
	ErrCodeAIResponseInvalid ErrorCode = "AI_RESPONSE_INVALID"
	ErrCodeAINotConfigured   ErrorCode = "AI_NOT_CONFIGURED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError unwraps err into a StandardError when one is in its chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidInputError creates a non-retryable job input error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid job input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEvaluationValidationError carries the user facing validation message
// and the invalid fields of a rejected submission.
func NewEvaluationValidationError(message string, invalidFields []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEvaluationValidationFailed,
		Message:   message,
		Details:   strings.Join(invalidFields, ","),
		Retryable: false,
		Metadata:  map[string]interface{}{"invalidFields": invalidFields},
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionInProgressError is returned when a submission is already running.
func NewSubmissionInProgressError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionInProgress,
		Message:   "Submission already in progress",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebhookDeliveryError creates a retryable webhook relay error.
func NewWebhookDeliveryError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWebhookDeliveryFailed,
		Message:   "Webhook delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebhookNotConfiguredError is returned when no webhook URL is set.
func NewWebhookNotConfiguredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeWebhookNotConfigured,
		Message:   "Webhook URL not configured",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable persistence error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTicketNumberRequiredError mirrors the lookup's 400 response.
func NewTicketNumberRequiredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeTicketNumberRequired,
		Message:   "ticketNumber é obrigatório",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTicketNotFoundError creates a non-retryable lookup error.
func NewTicketNotFoundError(ticketNumber string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTicketNotFound,
		Message:   "Ticket not found",
		Details:   fmt.Sprintf("ticketNumber: %s", ticketNumber),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTicketLookupError keeps the upstream status so callers can propagate it.
func NewTicketLookupError(status int, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTicketLookupFailed,
		Message:   "Ticket lookup failed",
		Details:   err.Error(),
		Retryable: status == 0 || status >= 500 || status == 429,
		Metadata:  map[string]interface{}{"status": status},
		Timestamp: time.Now().UTC(),
	}
}

// NewTicketLookupTimeoutError creates a retryable lookup timeout error.
func NewTicketLookupTimeoutError(ticketNumber string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTicketLookupTimeout,
		Message:   "Ticket lookup timeout",
		Details:   fmt.Sprintf("ticketNumber: %s", ticketNumber),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidCredentialsError is the login rejection shown to the evaluator.
func NewInvalidCredentialsError() *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCredentials,
		Message:   "Usuário ou senha inválidos.",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLoginFailedError wraps a storage failure during login.
func NewLoginFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLoginFailed,
		Message:   "Erro ao tentar logar.",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreFailedError creates a retryable session storage error.
func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionRequiredError rejects a request without a live session.
func NewSessionRequiredError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionRequired,
		Message:   "Sessão inválida ou expirada. Faça login novamente.",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewDraftAccessDeniedError(evaluator string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftAccessDenied,
		Message:   "Acesso negado à avaliação de outro avaliador.",
		Details:   fmt.Sprintf("evaluator: %s", evaluator),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError(index string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Elasticsearch query timeout",
		Details:   fmt.Sprintf("index: %s", index),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidFilterFormatError creates a non-retryable filter format error.
func NewInvalidFilterFormatError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFilterFormat,
		Message:   "Invalid filter format",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIFeedbackFailedError creates a retryable model call error.
func NewAIFeedbackFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAIFeedbackFailed,
		Message:   "AI feedback generation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAITimeoutError creates a retryable model timeout error.
func NewAITimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeAITimeout,
		Message:   "AI feedback timeout",
		Details:   "model call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIResponseInvalidError is returned when the model text is not the JSON we asked for.
func NewAIResponseInvalidError(raw string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAIResponseInvalid,
		Message:   "Erro ao interpretar resposta da IA",
		Details:   raw,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAINotConfiguredError is returned when no model API key is set.
func NewAINotConfiguredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeAINotConfigured,
		Message:   "Gemini API key not configured",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      "AUTHENTICATION_ERROR",
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal codes to the error codes modelled on the
// BPMN boundary events. Codes not listed are thrown unchanged.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeEvaluationValidationFailed: "EVALUATION_INVALID",
	ErrCodeInvalidCredentials:         "LOGIN_REJECTED",
	ErrCodeTicketNotFound:             "TICKET_NOT_FOUND",
	ErrCodeTicketNumberRequired:       "TICKET_NOT_FOUND",
	ErrCodeDatabaseInsertFailed:       "EVALUATION_NOT_SAVED",
	ErrCodeWebhookDeliveryFailed:      "WEBHOOK_DELIVERY_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeWebhookDeliveryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeTicketLookupFailed,
		ErrCodeLoginFailed,
		ErrCodeSessionStoreFailed,
		ErrCodeAIFeedbackFailed:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout,
		ErrCodeTicketLookupTimeout:
		return 2 // Partial retry for timeouts

	case ErrCodeAITimeout:
		return 1

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CREDENTIALS") || strings.Contains(codeStr, "LOGIN") ||
		strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "AUTHENTICATION"):
		return "AUTH"
	case strings.Contains(codeStr, "TICKET"):
		return "LOOKUP"
	case strings.Contains(codeStr, "WEBHOOK") || strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.HasPrefix(codeStr, "AI_"):
		return "AI"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
