// internal/workers/auth/verify-evaluator-credentials/service.go
package verifyevaluatorcredentials

import (
	"context"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
)

type Service struct {
	credentials CredentialVerifier
	sessions    SessionCreator
	logger      logger.Logger
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{
		credentials: deps.Credentials,
		sessions:    deps.Sessions,
		logger:      deps.Logger,
	}
}

// Execute checks the credentials and opens a session. Wrong credentials are
// an outcome, not an error, so the process can show the message.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	ev, err := s.credentials.Verify(ctx, input.Email, input.Password)
	if commonerrors.HasCode(err, commonerrors.ErrCodeInvalidCredentials) {
		stdErr, _ := commonerrors.AsStandardError(err)
		return &Output{Authenticated: false, Message: stdErr.Message}, nil
	}
	if err != nil {
		return nil, err
	}

	output := &Output{Authenticated: true, Evaluator: ev}
	if s.sessions != nil {
		session, err := s.sessions.Create(ctx, *ev)
		if err != nil {
			return nil, err
		}
		output.SessionID = session.ID
		if !session.ExpiresAt.IsZero() {
			expires := session.ExpiresAt
			output.ExpiresAt = &expires
		}
	}

	s.logger.Info("evaluator signed in", map[string]interface{}{
		"evaluatorId": ev.ID,
		"sessionId":   output.SessionID,
	})
	return output, nil
}
