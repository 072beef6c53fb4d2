// internal/workers/auth/verify-evaluator-credentials/models.go
package verifyevaluatorcredentials

import (
	"context"
	"time"

	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/models"
)

type Input struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Output struct {
	Authenticated bool              `json:"authenticated"`
	Message       string            `json:"message,omitempty"`
	Evaluator     *models.Evaluator `json:"evaluator,omitempty"`
	SessionID     string            `json:"sessionId,omitempty"`
	ExpiresAt     *time.Time        `json:"expiresAt,omitempty"`
}

type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (*models.Evaluator, error)
}

type SessionCreator interface {
	Create(ctx context.Context, ev models.Evaluator) (*models.EvaluatorSession, error)
}

type ServiceDependencies struct {
	Credentials CredentialVerifier
	Sessions    SessionCreator
	Logger      logger.Logger
}
