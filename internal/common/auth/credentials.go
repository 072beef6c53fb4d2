// Package auth checks evaluator credentials against the avaliadores table
// and keeps login sessions in Redis.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/models"
)

const credentialQuery = `SELECT id, nome, email FROM avaliadores WHERE email = $1 AND senha = $2 LIMIT 1`

type CredentialStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewCredentialStore(db *sql.DB, log logger.Logger) *CredentialStore {
	return &CredentialStore{db: db, logger: log}
}

// Verify returns the evaluator matching email and password. An unknown
// pair yields InvalidCredentials, a query failure LoginFailed.
func (s *CredentialStore) Verify(ctx context.Context, email, password string) (*models.Evaluator, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, commonerrors.NewInvalidCredentialsError()
	}

	var (
		ev   models.Evaluator
		nome sql.NullString
	)
	err := s.db.QueryRowContext(ctx, credentialQuery, email, password).Scan(&ev.ID, &nome, &ev.Email)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Info("login rejected", map[string]interface{}{"email": email})
		return nil, commonerrors.NewInvalidCredentialsError()
	}
	if err != nil {
		s.logger.Error("credential query failed", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return nil, commonerrors.NewLoginFailedError(err)
	}
	ev.Nome = nome.String
	return &ev, nil
}
