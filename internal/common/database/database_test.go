// internal/common/database/database_test.go
package database

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"formquali-workers/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// PostgreSQL Tests
// ==========================

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range Schema {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	client := &PostgresClient{DB: db}
	require.NoError(t, client.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_StopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(Schema[0])).WillReturnError(errors.New("permission denied"))

	err = (&PostgresClient{DB: db}).EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Redis Tests
// ==========================

func TestRedisClient_JSON(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()
	ctx := context.Background()

	require.NoError(t, client.Ping(ctx))

	type ticket struct {
		Subject string `json:"subject"`
	}
	require.NoError(t, client.SetJSON(ctx, "ticket:1", ticket{Subject: "Pedido"}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("ticket:1"))

	var got ticket
	require.NoError(t, client.GetJSON(ctx, "ticket:1", &got))
	assert.Equal(t, "Pedido", got.Subject)

	require.NoError(t, client.Del(ctx, "ticket:1"))
	assert.ErrorIs(t, client.GetJSON(ctx, "ticket:1", &got), ErrCacheMiss)
}

func TestNewSessionRedis_SharesServer(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := NewSessionRedis(config.RedisConfig{Address: mr.Addr()})
	defer rdb.Close()

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	assert.True(t, mr.Exists("k"))
}

// ==========================
// Elasticsearch Tests
// ==========================

func esServer(t *testing.T, indexExists bool) (*ElasticsearchClient, *[]string) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodHead && !indexExists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)
	return client, &calls
}

func TestEnsureIndex_CreatesMissingIndex(t *testing.T) {
	client, calls := esServer(t, false)

	require.NoError(t, client.EnsureIndex(context.Background(), "monitorias", MonitoriasMapping))
	assert.Equal(t, []string{"HEAD /monitorias", "PUT /monitorias"}, *calls)
}

func TestEnsureIndex_KeepsExistingIndex(t *testing.T) {
	client, calls := esServer(t, true)

	require.NoError(t, client.EnsureIndex(context.Background(), "monitorias", MonitoriasMapping))
	assert.Equal(t, []string{"HEAD /monitorias"}, *calls)
}

func TestElasticsearchPing(t *testing.T) {
	client, _ := esServer(t, true)
	assert.NoError(t, client.Ping())
}
