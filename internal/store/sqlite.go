package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/corazon/gymtrack/internal/db"
)

// SQLiteFileName is the database file created inside the data directory.
const SQLiteFileName = "gymtrack.db"

// SQLite keeps every collection as a row of the documents table.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, dir string) (*SQLite, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	sqldb, err := db.Open(ctx, filepath.Join(dir, SQLiteFileName))
	if err != nil {
		return nil, err
	}
	if err := db.ApplyMigrations(ctx, sqldb); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return &SQLite{db: sqldb}, nil
}

func (s *SQLite) Read(ctx context.Context, name string) (Document, error) {
	var doc Document
	var body, checksum string
	err := s.db.QueryRowContext(ctx, `SELECT schema_version, body, checksum FROM documents WHERE name = ?`, name).
		Scan(&doc.Version, &body, &checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotExist
	}
	if err != nil {
		return Document{}, fmt.Errorf("read document %q: %w", name, err)
	}
	if checksum != "" && checksum != bodyChecksum(body) {
		return Document{}, fmt.Errorf("document %q checksum mismatch: %w", name, ErrCorrupt)
	}
	doc.Body = []byte(body)
	return doc, nil
}

func (s *SQLite) Write(ctx context.Context, name string, doc Document) error {
	body := string(doc.Body)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO documents(name, schema_version, body, checksum, updated_at)
VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(name) DO UPDATE SET
  schema_version=excluded.schema_version,
  body=excluded.body,
  checksum=excluded.checksum,
  updated_at=excluded.updated_at
`, name, doc.Version, body, bodyChecksum(body))
	if err != nil {
		return fmt.Errorf("write document %q: %w", name, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func bodyChecksum(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}
