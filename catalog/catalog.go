// Package catalog is the SQLite registry of processed snapshot files. The
// ETL registers each month's outputs here; the running service watches the
// registry and reloads its in-memory datasets when a new period lands.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Schema is the registry DDL. Apply via dbopen.WithSchema or Init.
const Schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    snapshot_id TEXT PRIMARY KEY,
    period TEXT NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('current','december','changes','contracts')),
    path TEXT NOT NULL,
    total_enrollment INTEGER NOT NULL DEFAULT 0,
    record_count INTEGER NOT NULL DEFAULT 0,
    county_count INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_snapshots_kind_time
    ON snapshots(kind, created_at DESC);
`

// Init applies the schema. Idempotent.
func Init(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}

// Entry is one registered snapshot file.
type Entry struct {
	ID              string
	Period          string // e.g. "2026-08"
	Kind            string // current | december | changes | contracts
	Path            string
	TotalEnrollment int
	RecordCount     int
	CountyCount     int
	CreatedAt       time.Time
}

// Register records a snapshot file. Registering bumps SQLite's data_version,
// which is what the reload watcher keys on.
func Register(ctx context.Context, db *sql.DB, e Entry) (string, error) {
	if e.ID == "" {
		e.ID = "snap_" + uuid.NewString()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO snapshots (snapshot_id, period, kind, path,
			total_enrollment, record_count, county_count, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		e.ID, e.Period, e.Kind, e.Path,
		e.TotalEnrollment, e.RecordCount, e.CountyCount, time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("catalog: register %s/%s: %w", e.Kind, e.Period, err)
	}
	return e.ID, nil
}

// Latest returns the most recently registered entry of the given kind.
func Latest(ctx context.Context, db *sql.DB, kind string) (Entry, error) {
	row := db.QueryRowContext(ctx, `
		SELECT snapshot_id, period, kind, path,
			total_enrollment, record_count, county_count, created_at
		FROM snapshots WHERE kind = ?
		ORDER BY created_at DESC, snapshot_id LIMIT 1`, kind)
	return scanEntry(row)
}

// History lists registered entries of a kind, newest first.
func History(ctx context.Context, db *sql.DB, kind string, limit int) ([]Entry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT snapshot_id, period, kind, path,
			total_enrollment, record_count, county_count, created_at
		FROM snapshots WHERE kind = ?
		ORDER BY created_at DESC, snapshot_id LIMIT ?`, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var created int64
	err := row.Scan(&e.ID, &e.Period, &e.Kind, &e.Path,
		&e.TotalEnrollment, &e.RecordCount, &e.CountyCount, &created)
	if err != nil {
		return Entry{}, fmt.Errorf("catalog: scan: %w", err)
	}
	e.CreatedAt = time.Unix(created, 0)
	return e, nil
}
