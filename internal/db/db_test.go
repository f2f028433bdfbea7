package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func openMemory(t *testing.T) *SQLite {
	t.Helper()
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))

	db := NewSQLite(MemoryPath)
	if err := db.Init(context.Background()); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func columns(t *testing.T, db *SQLite, table string) map[string]bool {
	t.Helper()
	rows, err := db.QueryContext(context.Background(), "PRAGMA table_info("+table+")")
	if err != nil {
		t.Fatalf("Failed to get %s table info: %v", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var cid, notNull, pk int
		var name, dataType string
		var defaultValue sql.NullString
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			t.Fatalf("Failed to scan column info: %v", err)
		}
		cols[name] = true
	}
	return cols
}

func TestNewSQLite(t *testing.T) {
	db := NewSQLite(MemoryPath)
	if db.Get() != nil {
		t.Error("Expected connection to be nil before Init")
	}
	if err := db.Close(); err != nil {
		t.Errorf("Close before Init should be a no-op, got %v", err)
	}
}

func TestInitCreatesSchema(t *testing.T) {
	db := openMemory(t)

	for table, want := range map[string][]string{
		"users": {"id", "google_id", "email", "name", "picture", "created_at", "updated_at"},
		"posts": {"id", "title", "slug", "content", "content_hash", "owner_id", "created_at", "updated_at"},
	} {
		cols := columns(t, db, table)
		for _, col := range want {
			if !cols[col] {
				t.Errorf("Expected %s table to have column %s", table, col)
			}
		}
	}

	version, err := db.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("Expected schema version %d, got %d", len(migrations), version)
	}
}

func TestForeignKeysEnabled(t *testing.T) {
	db := openMemory(t)

	var enabled int
	if err := db.QueryRowContext(context.Background(), "PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("Failed to check foreign keys: %v", err)
	}
	if enabled != 1 {
		t.Error("Expected foreign keys to be enabled")
	}
}

func TestSlugUnique(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	now := time.Now().UTC()

	insert := `INSERT INTO posts (id, title, slug, content, content_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, insert, "p1", "Hello", "hello", []byte("x"), "h", now, now); err != nil {
		t.Fatalf("First insert: %v", err)
	}
	if _, err := db.ExecContext(ctx, insert, "p2", "Hello!", "hello", []byte("y"), "h", now, now); err == nil {
		t.Error("Expected unique constraint violation on slug")
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
	path := filepath.Join(t.TempDir(), "folio.db")
	ctx := context.Background()

	first := NewSQLite(path)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("First Init: %v", err)
	}
	if _, err := first.ExecContext(ctx,
		`INSERT INTO users (id, google_id, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		"u1", "g1", "ada@example.com", time.Now(), time.Now()); err != nil {
		t.Fatalf("Insert user: %v", err)
	}
	first.Close()

	second := NewSQLite(path)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("Second Init: %v", err)
	}
	defer second.Close()

	var count int
	if err := second.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected data to survive reopening, got %d users", count)
	}

	var recorded int
	if err := second.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&recorded); err != nil {
		t.Fatalf("Count migrations: %v", err)
	}
	if recorded != len(migrations) {
		t.Errorf("Expected %d recorded migrations, got %d", len(migrations), recorded)
	}
}
