// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"formquali-workers/internal/common/config"
	commonerrors "formquali-workers/internal/common/errors"

	_ "github.com/lib/pq"
)

// Schema creates the tables the evaluation workers read and write. Every
// statement is idempotent so it can run on each start.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS monitorias (
		id UUID PRIMARY KEY,
		ticket_number TEXT NOT NULL,
		ticket_link TEXT,
		tabulacao TEXT,
		casa TEXT,
		data_atendimento TEXT NOT NULL,
		monitor TEXT NOT NULL,
		analista TEXT NOT NULL,
		respostas_checklist JSONB NOT NULL,
		respostas_ncg JSONB NOT NULL,
		experiencia_cliente JSONB NOT NULL,
		nota_final NUMERIC(5,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_monitorias_ticket_number ON monitorias (ticket_number)`,
	`CREATE TABLE IF NOT EXISTS avaliadores (
		id UUID PRIMARY KEY,
		nome TEXT,
		email TEXT NOT NULL UNIQUE,
		senha TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id BIGSERIAL PRIMARY KEY,
		event_type TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		details JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

type PostgresClient struct {
	DB *sql.DB
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, commonerrors.NewDatabaseConnectionFailedError(err)
	}

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// EnsureSchema applies Schema in order.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	for _, stmt := range Schema {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func (c *PostgresClient) GetDB() *sql.DB {
	return c.DB
}
