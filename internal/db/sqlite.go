package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/jonathan/cv-consolidator/internal/ingestion"
	"github.com/jonathan/cv-consolidator/internal/types"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS ` + cvTable + ` (
	session_id   TEXT PRIMARY KEY,
	cv           TEXT NOT NULL,
	filename     TEXT NOT NULL DEFAULT '',
	format       TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL DEFAULT '',
	chars        INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
)`

// SQLite stores CVs in a local SQLite file
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create %s table: %w", cvTable, err)
	}

	return &SQLite{db: db, path: path}, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *SQLite) Path() string {
	return s.path
}

// UpsertCV stores cv under sessionID, replacing any earlier record for the
// same session. meta may be nil.
func (s *SQLite) UpsertCV(ctx context.Context, sessionID string, cv *types.CanonicalCV, meta *ingestion.Metadata) error {
	r, err := newRow(sessionID, cv, meta)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+cvTable+` (session_id, cv, filename, format, content_hash, chars, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (session_id) DO UPDATE SET
			cv = excluded.cv,
			filename = excluded.filename,
			format = excluded.format,
			content_hash = excluded.content_hash,
			chars = excluded.chars,
			updated_at = excluded.updated_at`,
		r.sessionID, string(r.cvJSON), r.filename, r.format, r.hash, r.chars, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cv %s: %w", r.sessionID, err)
	}
	return nil
}

// GetCV retrieves the record for sessionID. Returns nil if none exists.
func (s *SQLite) GetCV(ctx context.Context, sessionID string) (*Record, error) {
	var (
		rec                  Record
		cvJSON, format       string
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, cv, filename, format, content_hash, chars, created_at, updated_at
		 FROM `+cvTable+` WHERE session_id = ?`,
		sessionID,
	).Scan(&rec.SessionID, &cvJSON, &rec.Filename, &format, &rec.Hash, &rec.Chars, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cv %s: %w", sessionID, err)
	}

	rec.Format = types.Format(format)
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	if rec.CV, err = decodeCV([]byte(cvJSON)); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteCV removes the record for sessionID. Deleting a missing record is not an error.
func (s *SQLite) DeleteCV(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+cvTable+` WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete cv %s: %w", sessionID, err)
	}
	return nil
}
