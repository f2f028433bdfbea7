package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/debemdeboas/folio/internal/config"
	_ "github.com/mattn/go-sqlite3"
)

const MemoryPath = ":memory:"

type SQLite struct { // implements DB
	path string
	conn *sql.DB
}

func NewSQLite(path string) *SQLite {
	return &SQLite{
		path: path,
		conn: nil,
	}
}

func (s *SQLite) dsn() string {
	params := []string{"_foreign_keys=on", "_busy_timeout=5000"}
	if s.path != MemoryPath {
		params = append(params, "_journal_mode=WAL")
	}
	return "file:" + s.path + "?" + strings.Join(params, "&")
}

// Init opens the database and applies pending migrations.
func (s *SQLite) Init(ctx context.Context) error {
	conn, err := sql.Open("sqlite3", s.dsn())
	if err != nil {
		return err
	}
	if s.path == MemoryPath {
		// every connection to :memory: is a separate database
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return err
	}
	s.conn = conn

	applied, err := runMigrations(ctx, conn)
	if err != nil {
		return fmt.Errorf(config.ErrMigrateDatabaseFmt, err)
	}

	dbLogger.Info().Str("path", s.path).Int("migrations_applied", applied).Msg("Database initialized")
	return nil
}

func (s *SQLite) Get() *sql.DB {
	return s.conn
}

func (s *SQLite) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *SQLite) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	dbLogger.Trace().Str("query", query).Msg("Query")
	return s.conn.QueryContext(ctx, query, args...)
}

func (s *SQLite) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	dbLogger.Trace().Str("query", query).Msg("QueryRow")
	return s.conn.QueryRowContext(ctx, query, args...)
}

func (s *SQLite) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	dbLogger.Trace().Str("query", query).Msg("Exec")
	return s.conn.ExecContext(ctx, query, args...)
}

// SchemaVersion returns the highest applied migration.
func (s *SQLite) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.conn.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return v, nil
}
