// internal/evaluation/records/records_test.go
package records

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/evaluation"
	"formquali-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Helpers
// ==========================

var createdAt = time.Date(2026, 10, 2, 14, 30, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func sampleRecord() *models.Monitoria {
	return &models.Monitoria{
		TicketNumber:    "4521",
		TicketLink:      "https://acme.zendesk.com/agent/tickets/4521",
		Tabulacao:       "cobranca",
		Casa:            "Casa Norte",
		DataAtendimento: "2026-10-01",
		Monitor:         "Marina",
		Analista:        "Rafael",
		RespostasChecklist: map[string]models.ChecklistAnswer{
			"q1": {Rating: strPtr("Conforme")},
			"q2": {Rating: strPtr("N/A")},
			"q3": {Rating: strPtr("Não conforme"), Justification: "sem saudação"},
		},
		RespostasNcg: map[string]models.NcgAnswer{
			"n1": {Occurred: strPtr("Conforme")},
		},
		ExperienciaCliente: map[string]models.CustomerAnswer{
			"FCR": {Resposta: strPtr("Sim")},
		},
		NotaFinal: 50,
		CreatedAt: createdAt,
	}
}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewPostgresStore(db, logger.NewTestLogger(t))
	store.newID = func() string { return "9b2f0c1e-0000-4000-8000-000000000001" }
	return store, mock
}

func recordColumns() []string {
	return []string{"id", "ticket_number", "ticket_link", "tabulacao", "casa", "data_atendimento",
		"monitor", "analista", "respostas_checklist", "respostas_ncg", "experiencia_cliente",
		"nota_final", "created_at"}
}

func recordRow(t *testing.T, r *models.Monitoria, id string) []driver.Value {
	t.Helper()
	checklist, _ := json.Marshal(r.RespostasChecklist)
	ncg, _ := json.Marshal(r.RespostasNcg)
	cx, _ := json.Marshal(r.ExperienciaCliente)
	return []driver.Value{id, r.TicketNumber, r.TicketLink, r.Tabulacao, r.Casa, r.DataAtendimento,
		r.Monitor, r.Analista, checklist, ncg, cx, r.NotaFinal, r.CreatedAt}
}

// ==========================
// PostgresStore Tests
// ==========================

func TestPostgresStore_Save(t *testing.T) {
	store, mock := newMockStore(t)
	record := sampleRecord()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO monitorias")).
		WithArgs("9b2f0c1e-0000-4000-8000-000000000001", "4521", record.TicketLink, "cobranca", "Casa Norte",
			"2026-10-01", "Marina", "Rafael", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			50.0, createdAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_log")).
		WithArgs("monitoria_created", "monitoria", "9b2f0c1e-0000-4000-8000-000000000001", sqlmock.AnyArg(), createdAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := store.Save(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, "9b2f0c1e-0000-4000-8000-000000000001", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Save_InsertFails(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO monitorias")).
		WillReturnError(errors.New("connection refused"))

	_, err := store.Save(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeDatabaseInsertFailed))

	stdErr, _ := commonerrors.AsStandardError(err)
	assert.Equal(t, "connection refused", stdErr.Details)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Save_AuditFailureIsNotFatal(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO monitorias")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_log")).
		WillReturnError(errors.New("relation audit_log does not exist"))

	id, err := store.Save(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get(t *testing.T) {
	store, mock := newMockStore(t)
	record := sampleRecord()

	rows := sqlmock.NewRows(recordColumns()).AddRow(recordRow(t, record, "rec-1")...)
	mock.ExpectQuery(regexp.QuoteMeta("FROM monitorias WHERE id = $1")).
		WithArgs("rec-1").
		WillReturnRows(rows)

	got, err := store.Get(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", got.ID)
	assert.Equal(t, "Casa Norte", got.Casa)
	assert.Equal(t, "sem saudação", got.RespostasChecklist["q3"].Justification)
	assert.Equal(t, 2, got.CriteriosAplicaveis)
	assert.Equal(t, 1, got.PontosObtidos)
	assert.False(t, got.FalhaCritica)
}

func TestPostgresStore_Get_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM monitorias WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(recordColumns()))

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestPostgresStore_Search(t *testing.T) {
	store, mock := newMockStore(t)
	record := sampleRecord()
	record.RespostasNcg["n1"] = models.NcgAnswer{Occurred: strPtr("Não conforme"), Justification: "dado sensível"}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM monitorias WHERE analista = $1 AND data_atendimento >= $2")).
		WithArgs("Rafael", "2026-10-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $3 OFFSET $4")).
		WithArgs("Rafael", "2026-10-01", 10, 10).
		WillReturnRows(sqlmock.NewRows(recordColumns()).AddRow(recordRow(t, record, "rec-2")...))

	result, err := store.Search(context.Background(), Filter{Analista: "Rafael", From: "2026-10-01", Page: 2, Size: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, 2, result.Page)
	require.Len(t, result.Results, 1)
	assert.True(t, result.Results[0].FalhaCritica)
	assert.Equal(t, 3, result.Results[0].CriteriosAplicaveis)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Search_Errors(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM monitorias")).
		WillReturnError(context.DeadlineExceeded)
	_, err := store.Search(context.Background(), Filter{})
	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeQueryTimeout))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM monitorias")).
		WillReturnError(errors.New("relation does not exist"))
	_, err = store.Search(context.Background(), Filter{})
	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeQueryExecutionFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Filter Tests
// ==========================

func TestFilter_Normalized(t *testing.T) {
	tests := []struct {
		name     string
		in       Filter
		wantPage int
		wantSize int
	}{
		{"defaults", Filter{}, 1, DefaultPageSize},
		{"clamped size", Filter{Page: 3, Size: 500}, 3, MaxPageSize},
		{"kept", Filter{Page: 2, Size: 5}, 2, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalized()
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantSize, got.Size)
		})
	}
}

func TestFilter_Validate(t *testing.T) {
	assert.NoError(t, Filter{From: "2026-01-01", To: "2026-01-31"}.Validate())
	assert.Error(t, Filter{From: "01/01/2026"}.Validate())
	assert.Error(t, Filter{From: "2026-02-01", To: "2026-01-01"}.Validate())
}

func TestBuildQuery(t *testing.T) {
	critical := true
	q := BuildQuery(Filter{Analista: "Rafael", From: "2026-10-01", CriticalFailure: &critical})

	raw, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"query": {"bool": {"filter": [
			{"term": {"analista": "Rafael"}},
			{"range": {"data_atendimento": {"gte": "2026-10-01"}}},
			{"term": {"falha_critica": true}}
		]}},
		"sort": [{"created_at": {"order": "desc"}}]
	}`, string(raw))

	all, _ := json.Marshal(BuildQuery(Filter{}))
	assert.Contains(t, string(all), "match_all")
}

// ==========================
// Index Tests
// ==========================

func newTestIndex(t *testing.T, handler http.HandlerFunc) *Index {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewIndex(client, "monitorias")
}

func TestIndex_OnSubmitted(t *testing.T) {
	var indexed map[string]interface{}
	var path string
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &indexed)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	record := sampleRecord()
	record.ID = "rec-1"
	score := evaluation.ScoreResult{FinalScore: 0, AchievedPoints: 0, ApplicableCriteriaCount: 12, IsCriticalFailure: true}

	require.NoError(t, idx.OnSubmitted(context.Background(), record, score))
	assert.Equal(t, "/monitorias/_doc/rec-1", path)
	assert.Equal(t, true, indexed["falha_critica"])
	assert.Equal(t, float64(12), indexed["criterios_aplicaveis"])
}

func TestIndex_Put_Error(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"mapper_parsing_exception"}`))
	})

	record := sampleRecord()
	record.ID = "rec-1"
	err := idx.Put(context.Background(), record)
	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeSearchQueryFailed))
}

func TestIndex_Search(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/monitorias/_search", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("from"))
		assert.Equal(t, "20", r.URL.Query().Get("size"))
		_, _ = w.Write([]byte(`{
			"hits": {
				"total": {"value": 1},
				"hits": [{"_source": {"id": "rec-1", "ticket_number": "4521", "nota_final": 80, "falha_critica": false}}]
			}
		}`))
	})

	result, err := idx.Search(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "4521", result.Results[0].TicketNumber)
	assert.Equal(t, 80.0, result.Results[0].NotaFinal)
}

func TestIndex_Search_IndexMissing(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"}}`))
	})

	_, err := idx.Search(context.Background(), Filter{})
	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeIndexNotFound))
}

// ==========================
// FallbackSearcher Tests
// ==========================

type stubSearcher struct {
	result *models.MonitoriaSearchResult
	err    error
	calls  int
}

func (s *stubSearcher) Search(ctx context.Context, filter Filter) (*models.MonitoriaSearchResult, error) {
	s.calls++
	return s.result, s.err
}

func TestFallbackSearcher_PrefersIndex(t *testing.T) {
	index := &stubSearcher{result: &models.MonitoriaSearchResult{Total: 3}}
	db := &stubSearcher{}

	result, source, err := NewFallbackSearcher(index, db, logger.NewTestLogger(t)).
		SearchWithSource(context.Background(), Filter{Analista: "Rafael"})

	require.NoError(t, err)
	assert.Equal(t, SourceIndex, source)
	assert.Equal(t, int64(3), result.Total)
	assert.Zero(t, db.calls)
}

func TestFallbackSearcher_FallsBackWhenIndexMissing(t *testing.T) {
	index := &stubSearcher{err: commonerrors.NewIndexNotFoundError("monitorias")}
	db := &stubSearcher{result: &models.MonitoriaSearchResult{Total: 1}}

	result, source, err := NewFallbackSearcher(index, db, logger.NewTestLogger(t)).
		SearchWithSource(context.Background(), Filter{})

	require.NoError(t, err)
	assert.Equal(t, SourceDatabase, source)
	assert.Equal(t, int64(1), result.Total)
}

func TestFallbackSearcher_QueryErrorIsReturned(t *testing.T) {
	index := &stubSearcher{err: commonerrors.NewSearchQueryFailedError("monitorias", errors.New("parse"))}
	db := &stubSearcher{}

	_, _, err := NewFallbackSearcher(index, db, logger.NewTestLogger(t)).
		SearchWithSource(context.Background(), Filter{})

	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeSearchQueryFailed))
	assert.Zero(t, db.calls)
}

func TestFallbackSearcher_RejectsBadFilter(t *testing.T) {
	db := &stubSearcher{}

	_, err := NewFallbackSearcher(nil, db, logger.NewTestLogger(t)).
		Search(context.Background(), Filter{From: "01/10/2026"})

	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeInvalidFilterFormat))
	assert.Zero(t, db.calls)
}
