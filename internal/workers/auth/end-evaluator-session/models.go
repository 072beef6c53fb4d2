// internal/workers/auth/end-evaluator-session/models.go
package endevaluatorsession

import (
	"context"
	"time"

	"formquali-workers/internal/common/logger"
)

type Input struct {
	Email     string `json:"email"`
	SessionID string `json:"sessionId,omitempty"`
	LogoutAll bool   `json:"logoutAll,omitempty"`
}

type Output struct {
	Success             bool      `json:"success"`
	Message             string    `json:"message"`
	SessionsInvalidated int       `json:"sessionsInvalidated"`
	LogoutAt            time.Time `json:"logoutAt"`
}

type SessionDeleter interface {
	Delete(ctx context.Context, email, sessionID string) (int, error)
}

type ServiceDependencies struct {
	Sessions SessionDeleter
	Logger   logger.Logger
}
