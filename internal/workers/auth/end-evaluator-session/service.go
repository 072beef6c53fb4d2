// internal/workers/auth/end-evaluator-session/service.go
package endevaluatorsession

import (
	"context"
	"time"

	"formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
)

type Service struct {
	sessions SessionDeleter
	logger   logger.Logger
	now      func() time.Time
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{sessions: deps.Sessions, logger: deps.Logger, now: time.Now}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validateTarget(input); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}

	sessionID := input.SessionID
	if input.LogoutAll {
		sessionID = ""
	}

	count, err := s.sessions.Delete(ctx, input.Email, sessionID)
	if err != nil {
		return nil, err
	}

	message := "Session ended"
	switch {
	case input.LogoutAll:
		message = "All sessions ended"
	case count == 0:
		message = "Session already ended"
	}

	s.logger.Info("evaluator signed out", map[string]interface{}{
		"email":               input.Email,
		"logoutAll":           input.LogoutAll,
		"sessionsInvalidated": count,
	})
	return &Output{
		Success:             true,
		Message:             message,
		SessionsInvalidated: count,
		LogoutAt:            s.now().UTC(),
	}, nil
}
