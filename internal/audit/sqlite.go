package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_entries (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	layer      TEXT NOT NULL DEFAULT '',
	from_actor TEXT NOT NULL,
	to_actor   TEXT NOT NULL,
	summary    TEXT NOT NULL,
	details    TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_entries_run ON audit_entries(run_id);
`

// SQLiteSink persists entries to a SQLite database so trails survive
// across runs and are queryable by the audit command.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (creating if needed) the database at path with
// WAL journaling and runs the schema migration.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	// WAL allows concurrent reads but SQLite still has a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit schema: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// Append inserts the entry.
func (s *SQLiteSink) Append(ctx context.Context, e Entry) error {
	details := "{}"
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		details = string(raw)
	}

	const q = `INSERT INTO audit_entries (id, run_id, layer, from_actor, to_actor, summary, details, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		e.ID,
		e.RunID,
		e.Layer,
		string(e.FromActor),
		string(e.ToActor),
		e.Summary,
		details,
		e.Time.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// List returns a run's entries in append order. Entries within the
// same second keep insertion order via rowid.
func (s *SQLiteSink) List(ctx context.Context, runID string) ([]Entry, error) {
	const q = `SELECT id, run_id, layer, from_actor, to_actor, summary, details, created_at
FROM audit_entries
WHERE run_id = ?
ORDER BY created_at ASC, rowid ASC`

	rows, err := s.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			from, to  string
			details   string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Layer, &from, &to, &e.Summary, &details, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		e.FromActor = Actor(from)
		e.ToActor = Actor(to)

		if details != "" && details != "{}" {
			if err := json.Unmarshal([]byte(details), &e.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}

		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse audit timestamp: %w", err)
		}
		e.Time = t

		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
