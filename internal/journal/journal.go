// Package journal records consumed broadcast artifacts in DuckDB so
// the display layer can show reception history.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// Config holds journal database configuration.
type Config struct {
	DataDir string
	DBName  string
}

// Journal is an append-mostly log of artifact receptions.
type Journal struct {
	db *sql.DB
}

// Entry is one recorded artifact reception.
type Entry struct {
	ReceivedAt time.Time `json:"receivedAt" doc:"When the artifact was consumed"`
	Kind       string    `json:"kind" doc:"Artifact kind" example:"radar_overlay"`
	Filename   string    `json:"filename" doc:"Source filename in the dump directory"`
	Bytes      int64     `json:"bytes" doc:"Artifact size in bytes"`
}

// Open creates the journal database under <dataDir>/duckdb and ensures
// its schema.
func Open(ctx context.Context, cfg Config) (*Journal, error) {
	dbDir := filepath.Join(cfg.DataDir, "duckdb")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("creating duckdb directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(dbDir, cfg.DBName+".duckdb"))
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) ensureSchema(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS artifacts (
			received_at TIMESTAMP NOT NULL,
			kind        VARCHAR NOT NULL,
			filename    VARCHAR NOT NULL,
			bytes       BIGINT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensuring journal schema: %w", err)
	}
	return nil
}

// Record logs one consumed artifact.
func (j *Journal) Record(ctx context.Context, kind, filename string, size int64, receivedAt time.Time) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO artifacts (received_at, kind, filename, bytes) VALUES (?, ?, ?, ?)",
		receivedAt, kind, filename, size)
	if err != nil {
		return fmt.Errorf("recording artifact: %w", err)
	}
	return nil
}

// Recent returns the most recently received artifacts, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT received_at, kind, filename, bytes FROM artifacts ORDER BY received_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying artifacts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ReceivedAt, &e.Kind, &e.Filename, &e.Bytes); err != nil {
			return nil, fmt.Errorf("scanning artifact row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
