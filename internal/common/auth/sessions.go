// internal/common/auth/sessions.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("SESSION_NOT_FOUND")
	ErrSessionExpired  = errors.New("SESSION_EXPIRED")
)

type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func SessionKey(email, sessionID string) string {
	return fmt.Sprintf("session:%s:%s", email, sessionID)
}

// Create stores a new session for ev.
func (s *SessionStore) Create(ctx context.Context, ev models.Evaluator) (*models.EvaluatorSession, error) {
	now := s.now().UTC()
	session := &models.EvaluatorSession{
		ID:        uuid.New().String(),
		Evaluator: ev,
		CreatedAt: now,
	}
	if s.ttl > 0 {
		session.ExpiresAt = now.Add(s.ttl)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, commonerrors.NewSessionStoreFailedError(err)
	}
	if err := s.rdb.Set(ctx, SessionKey(ev.Email, session.ID), data, s.ttl).Err(); err != nil {
		return nil, commonerrors.NewSessionStoreFailedError(err)
	}
	return session, nil
}

// Get returns a live session. Redis drops sessions at their TTL; one read
// past ExpiresAt before that happens is reported as ErrSessionExpired.
func (s *SessionStore) Get(ctx context.Context, email, sessionID string) (*models.EvaluatorSession, error) {
	data, err := s.rdb.Get(ctx, SessionKey(email, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, commonerrors.NewSessionStoreFailedError(err)
	}

	var session models.EvaluatorSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, commonerrors.NewSessionStoreFailedError(err)
	}
	if !session.ExpiresAt.IsZero() && !s.now().Before(session.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Delete ends one session, or every session of email when sessionID is
// empty. It returns how many were removed.
func (s *SessionStore) Delete(ctx context.Context, email, sessionID string) (int, error) {
	if sessionID != "" {
		n, err := s.rdb.Del(ctx, SessionKey(email, sessionID)).Result()
		if err != nil {
			return 0, commonerrors.NewSessionStoreFailedError(err)
		}
		return int(n), nil
	}

	keys, err := s.rdb.Keys(ctx, SessionKey(email, "*")).Result()
	if err != nil {
		return 0, commonerrors.NewSessionStoreFailedError(err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := s.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, commonerrors.NewSessionStoreFailedError(err)
	}
	return int(n), nil
}
