// Package db stores consolidated CVs in PostgreSQL or SQLite with upsert semantics.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/cv-consolidator/internal/ingestion"
	"github.com/jonathan/cv-consolidator/internal/types"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS ` + cvTable + ` (
	session_id   TEXT PRIMARY KEY,
	cv           JSONB NOT NULL,
	filename     TEXT NOT NULL DEFAULT '',
	format       TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL DEFAULT '',
	chars        INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database and creates the
// cv_records table if it is missing
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create %s table: %w", cvTable, err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// UpsertCV stores cv under sessionID, replacing any earlier record for the
// same session. meta may be nil.
func (db *DB) UpsertCV(ctx context.Context, sessionID string, cv *types.CanonicalCV, meta *ingestion.Metadata) error {
	r, err := newRow(sessionID, cv, meta)
	if err != nil {
		return err
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO `+cvTable+` (session_id, cv, filename, format, content_hash, chars)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (session_id) DO UPDATE SET
			cv = EXCLUDED.cv,
			filename = EXCLUDED.filename,
			format = EXCLUDED.format,
			content_hash = EXCLUDED.content_hash,
			chars = EXCLUDED.chars,
			updated_at = NOW()`,
		r.sessionID, r.cvJSON, r.filename, r.format, r.hash, r.chars,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cv %s: %w", r.sessionID, err)
	}
	return nil
}

// GetCV retrieves the record for sessionID. Returns nil if none exists.
func (db *DB) GetCV(ctx context.Context, sessionID string) (*Record, error) {
	var (
		rec    Record
		cvJSON []byte
		format string
	)
	err := db.pool.QueryRow(ctx,
		`SELECT session_id, cv, filename, format, content_hash, chars, created_at, updated_at
		 FROM `+cvTable+` WHERE session_id = $1`,
		sessionID,
	).Scan(&rec.SessionID, &cvJSON, &rec.Filename, &format, &rec.Hash, &rec.Chars, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cv %s: %w", sessionID, err)
	}

	rec.Format = types.Format(format)
	if rec.CV, err = decodeCV(cvJSON); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteCV removes the record for sessionID. Deleting a missing record is not an error.
func (db *DB) DeleteCV(ctx context.Context, sessionID string) error {
	if _, err := db.pool.Exec(ctx, `DELETE FROM `+cvTable+` WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to delete cv %s: %w", sessionID, err)
	}
	return nil
}
