// Package postgres stores submission rows in a PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
)

// Sink は submissions テーブルへ 1 行ずつ INSERT する。
type Sink struct {
	db          *sql.DB
	table       string
	insertQuery string
}

// Open は DSN で接続プールを作成し、疎通確認とテーブル作成を行う。
func Open(ctx context.Context, dsn, table string) (*Sink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	sink, err := New(db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := sink.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := sink.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return sink, nil
}

// New は既存の *sql.DB を利用して Sink を構築する。
func New(db *sql.DB, table string) (*Sink, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, errors.New("postgres: table name is empty")
	}
	quoted := pq.QuoteIdentifier(table)
	return &Sink{
		db:    db,
		table: quoted,
		insertQuery: fmt.Sprintf(`INSERT INTO %s
			(submission_id, catalog_key, submitted_at, name, email, company_name, industry, employees, role, score, recommendation, follow_up)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`, quoted),
	}, nil
}

// EnsureSchema は submissions テーブルが無ければ作成する。
func (s *Sink) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		submission_id  UUID PRIMARY KEY,
		catalog_key    TEXT NOT NULL,
		submitted_at   TIMESTAMPTZ NOT NULL,
		name           TEXT NOT NULL DEFAULT '',
		email          TEXT NOT NULL DEFAULT '',
		company_name   TEXT NOT NULL DEFAULT '',
		industry       TEXT NOT NULL DEFAULT '',
		employees      TEXT NOT NULL DEFAULT '',
		role           TEXT NOT NULL DEFAULT '',
		score          INTEGER NOT NULL,
		recommendation TEXT NOT NULL,
		follow_up      TEXT NOT NULL
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

// AppendRow は 1 行 INSERT する。
func (s *Sink) AppendRow(ctx context.Context, row domain.SubmissionRow) error {
	_, err := s.db.ExecContext(ctx, s.insertQuery,
		row.ID,
		row.CatalogKey,
		row.SubmittedAt,
		row.Name,
		row.Email,
		row.CompanyName,
		row.Industry,
		row.Employees,
		row.Role,
		row.Score,
		row.Recommendation,
		row.FollowUp,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert submission: %w", err)
	}
	return nil
}

// Ping は接続を確認する。
func (s *Sink) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

// Close は接続プールを閉じる。
func (s *Sink) Close() error {
	return s.db.Close()
}
