// internal/common/auth/auth_test.go
package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Credential Store Tests
// ==========================

func TestCredentialStore_Verify(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, nome, email FROM avaliadores").
		WithArgs("joana@acme.com", "s3nha").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "email"}).AddRow("7", "Joana", "joana@acme.com"))

	store := NewCredentialStore(db, logger.NewTestLogger(t))
	ev, err := store.Verify(context.Background(), " joana@acme.com ", "s3nha")
	require.NoError(t, err)
	assert.Equal(t, &models.Evaluator{ID: "7", Nome: "Joana", Email: "joana@acme.com"}, ev)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialStore_Verify_Rejections(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewCredentialStore(db, logger.NewTestLogger(t))

	mock.ExpectQuery("SELECT id, nome, email FROM avaliadores").
		WithArgs("joana@acme.com", "errada").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "email"}))
	_, err = store.Verify(context.Background(), "joana@acme.com", "errada")
	stdErr, ok := commonerrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeInvalidCredentials, stdErr.Code)
	assert.Equal(t, "Usuário ou senha inválidos.", stdErr.Message)

	mock.ExpectQuery("SELECT id, nome, email FROM avaliadores").
		WillReturnError(errors.New("connection refused"))
	_, err = store.Verify(context.Background(), "joana@acme.com", "s3nha")
	stdErr, ok = commonerrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, "Erro ao tentar logar.", stdErr.Message)

	_, err = store.Verify(context.Background(), "", "")
	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeInvalidCredentials))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Session Store Tests
// ==========================

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestSessionStore_Lifecycle(t *testing.T) {
	mr, rdb := setupRedis(t)
	store := NewSessionStore(rdb, time.Hour)
	ctx := context.Background()
	ev := models.Evaluator{ID: "7", Nome: "Joana", Email: "joana@acme.com"}

	session, err := store.Create(ctx, ev)
	require.NoError(t, err)
	key := SessionKey(ev.Email, session.ID)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))

	got, err := store.Get(ctx, ev.Email, session.ID)
	require.NoError(t, err)
	assert.Equal(t, ev, got.Evaluator)

	n, err := store.Delete(ctx, ev.Email, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = store.Get(ctx, ev.Email, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_DeleteAll(t *testing.T) {
	_, rdb := setupRedis(t)
	store := NewSessionStore(rdb, 0)
	ctx := context.Background()
	ev := models.Evaluator{ID: "7", Email: "joana@acme.com"}

	for i := 0; i < 2; i++ {
		_, err := store.Create(ctx, ev)
		require.NoError(t, err)
	}
	_, err := store.Create(ctx, models.Evaluator{ID: "8", Email: "pedro@acme.com"})
	require.NoError(t, err)

	n, err := store.Delete(ctx, ev.Email, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.Delete(ctx, ev.Email, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSessionStore_Expiry(t *testing.T) {
	mr, rdb := setupRedis(t)
	store := NewSessionStore(rdb, time.Hour)
	clock := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	ctx := context.Background()
	ev := models.Evaluator{ID: "7", Email: "joana@acme.com"}

	session, err := store.Create(ctx, ev)
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	_, err = store.Get(ctx, ev.Email, session.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)

	mr.FastForward(time.Hour)
	_, err = store.Get(ctx, ev.Email, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
