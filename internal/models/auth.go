// internal/models/auth.go
package models

import "time"

// Evaluator is a row of the avaliadores table. The password never leaves
// the credential check.
type Evaluator struct {
	ID    string `json:"id" db:"id"`
	Nome  string `json:"nome" db:"nome"`
	Email string `json:"email" db:"email"`
}

// EvaluatorSession is the login session kept in Redis.
type EvaluatorSession struct {
	ID        string    `json:"id"`
	Evaluator Evaluator `json:"evaluator"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsExpired checks if session has expired
func (s *EvaluatorSession) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
