// Package records persists submitted evaluations and searches them.
package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/evaluation"
	"formquali-workers/internal/models"

	"github.com/google/uuid"
)

var ErrRecordNotFound = errors.New("RECORD_NOT_FOUND")

const selectColumns = `id, ticket_number, ticket_link, tabulacao, casa, data_atendimento,
	monitor, analista, respostas_checklist, respostas_ncg, experiencia_cliente,
	nota_final, created_at`

// PostgresStore writes evaluations to the monitorias table.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
	newID  func() string
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log,
		newID:  func() string { return uuid.New().String() },
	}
}

// Save inserts record and returns its generated id. A failed audit_log
// insert is logged and does not fail the save.
func (s *PostgresStore) Save(ctx context.Context, record *models.Monitoria) (string, error) {
	id := s.newID()
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	checklist, err := json.Marshal(record.RespostasChecklist)
	if err != nil {
		return "", commonerrors.NewDatabaseInsertFailedError(fmt.Errorf("marshal respostas_checklist: %w", err))
	}
	ncg, err := json.Marshal(record.RespostasNcg)
	if err != nil {
		return "", commonerrors.NewDatabaseInsertFailedError(fmt.Errorf("marshal respostas_ncg: %w", err))
	}
	cx, err := json.Marshal(record.ExperienciaCliente)
	if err != nil {
		return "", commonerrors.NewDatabaseInsertFailedError(fmt.Errorf("marshal experiencia_cliente: %w", err))
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO monitorias (
			id, ticket_number, ticket_link, tabulacao, casa, data_atendimento,
			monitor, analista, respostas_checklist, respostas_ncg, experiencia_cliente,
			nota_final, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		id,
		record.TicketNumber,
		record.TicketLink,
		record.Tabulacao,
		record.Casa,
		record.DataAtendimento,
		record.Monitor,
		record.Analista,
		checklist,
		ncg,
		cx,
		record.NotaFinal,
		createdAt,
	)
	if err != nil {
		return "", commonerrors.NewDatabaseInsertFailedError(err)
	}

	details, _ := json.Marshal(map[string]interface{}{
		"ticketNumber": record.TicketNumber,
		"monitor":      record.Monitor,
		"analista":     record.Analista,
		"notaFinal":    record.NotaFinal,
	})
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"monitoria_created", "monitoria", id, details, createdAt,
	); err != nil {
		s.logger.Warn("audit log insert failed", map[string]interface{}{
			"recordId": id,
			"error":    err,
		})
	}

	return id, nil
}

// Get loads one evaluation by id.
func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Monitoria, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM monitorias WHERE id = $1`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, queryError("get_monitoria", err)
	}
	return record, nil
}

// Search is the SQL fallback used when no search index is configured.
// The critical failure flag is not stored as a column and is ignored here.
func (s *PostgresStore) Search(ctx context.Context, filter Filter) (*models.MonitoriaSearchResult, error) {
	filter = filter.Normalized()

	var (
		where []string
		args  []interface{}
	)
	add := func(clause string, value interface{}) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filter.TicketNumber != "" {
		add("ticket_number = $%d", filter.TicketNumber)
	}
	if filter.Analista != "" {
		add("analista = $%d", filter.Analista)
	}
	if filter.Monitor != "" {
		add("monitor = $%d", filter.Monitor)
	}
	if filter.Casa != "" {
		add("casa = $%d", filter.Casa)
	}
	if filter.From != "" {
		add("data_atendimento >= $%d", filter.From)
	}
	if filter.To != "" {
		add("data_atendimento <= $%d", filter.To)
	}
	if filter.MaxScore != nil {
		add("nota_final <= $%d", *filter.MaxScore)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM monitorias`+clause, args...).Scan(&total); err != nil {
		return nil, queryError("count_monitorias", err)
	}

	args = append(args, filter.Size, filter.offset())
	query := fmt.Sprintf(`SELECT %s FROM monitorias%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		selectColumns, clause, len(args)-1, len(args))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError("search_monitorias", err)
	}
	defer rows.Close()

	result := &models.MonitoriaSearchResult{
		Total:   total,
		Page:    filter.Page,
		Size:    filter.Size,
		Results: []*models.Monitoria{},
	}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, queryError("search_monitorias", err)
		}
		result.Results = append(result.Results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("search_monitorias", err)
	}
	return result, nil
}

// queryError keeps deadline failures distinguishable from broken queries.
func queryError(queryType string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return commonerrors.NewQueryTimeoutError(queryType)
	}
	return commonerrors.NewQueryExecutionFailedError(queryType, err)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*models.Monitoria, error) {
	var (
		r                  models.Monitoria
		link, tab, casa    sql.NullString
		checklist, ncg, cx []byte
	)
	err := row.Scan(&r.ID, &r.TicketNumber, &link, &tab, &casa, &r.DataAtendimento,
		&r.Monitor, &r.Analista, &checklist, &ncg, &cx, &r.NotaFinal, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.TicketLink = link.String
	r.Tabulacao = tab.String
	r.Casa = casa.String

	if err := json.Unmarshal(checklist, &r.RespostasChecklist); err != nil {
		return nil, fmt.Errorf("decode respostas_checklist: %w", err)
	}
	if err := json.Unmarshal(ncg, &r.RespostasNcg); err != nil {
		return nil, fmt.Errorf("decode respostas_ncg: %w", err)
	}
	if err := json.Unmarshal(cx, &r.ExperienciaCliente); err != nil {
		return nil, fmt.Errorf("decode experiencia_cliente: %w", err)
	}
	deriveScore(&r)
	return &r, nil
}

// deriveScore fills the score details that are not stored as columns.
func deriveScore(r *models.Monitoria) {
	for _, a := range r.RespostasNcg {
		if a.Occurred != nil && *a.Occurred == string(evaluation.RatingNaoConforme) {
			r.FalhaCritica = true
			r.PontosObtidos = 0
			r.CriteriosAplicaveis = len(r.RespostasChecklist)
			return
		}
	}
	for _, a := range r.RespostasChecklist {
		if a.Rating == nil || *a.Rating != string(evaluation.RatingNA) {
			r.CriteriosAplicaveis++
		}
		if a.Rating != nil && *a.Rating == string(evaluation.RatingConforme) {
			r.PontosObtidos++
		}
	}
}
