package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dailymile/internal/modules/progress/domain"
	progressout "dailymile/internal/modules/progress/port/out"
	apperrors "dailymile/internal/platform/errors"

	_ "modernc.org/sqlite"
)

const snapshotKey = "progress_snapshot"

// SQLiteBackend keeps the snapshot as a single JSON envelope under one key,
// so a write replaces every field in one statement.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(dbPath string) (progressout.SnapshotBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	backend := &SQLiteBackend{db: db}
	if err := backend.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return backend, nil
}

func (b *SQLiteBackend) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS kv_store (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	if _, err := b.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create kv_store table: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Read(ctx context.Context) (domain.Snapshot, error) {
	var raw string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, snapshotKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: read snapshot row: %v", apperrors.ErrDataAccessUnavailable, err)
	}
	return decodeEnvelope([]byte(raw))
}

func (b *SQLiteBackend) Write(ctx context.Context, snapshot domain.Snapshot) error {
	payload, err := json.Marshal(domain.Envelope{SchemaVersion: domain.SchemaVersion, Snapshot: snapshot})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	const stmt = `
INSERT INTO kv_store (key, value)
VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value;
`
	if _, err := b.db.ExecContext(ctx, stmt, snapshotKey, string(payload)); err != nil {
		return fmt.Errorf("write snapshot row: %w", err)
	}
	return nil
}
