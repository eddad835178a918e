package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const timeFormat = time.RFC3339

var migrations = []string{
	`CREATE TABLE deliveries (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		event_kind TEXT NOT NULL,
		project TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		priority INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	);
	CREATE INDEX idx_deliveries_created_at ON deliveries(created_at);
	CREATE INDEX idx_deliveries_session ON deliveries(session_id);`,
}

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, zero CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database and runs migrations.
// The database file is created with 0600 permissions and its parent directory with 0700.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0600)
			if err != nil {
				return nil, fmt.Errorf("creating database file: %w", err)
			}
			_ = f.Close()
		}
	}

	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		slog.Debug("applying migration", "version", i+1)
		if _, err := s.db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", i+1); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Record persists one dispatched notification.
func (s *SQLiteStore) Record(d *Delivery) error {
	outcome, err := json.Marshal(d.Outcome)
	if err != nil {
		return fmt.Errorf("encoding outcome: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO deliveries (id, session_id, event_kind, project, title, priority, outcome, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.SessionID, d.EventKind, d.Project, d.Title, d.Priority,
		string(outcome), d.CreatedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("inserting delivery: %w", err)
	}
	return nil
}

// List returns the most recent deliveries, newest first.
func (s *SQLiteStore) List(limit int) ([]Delivery, error) {
	query := "SELECT id, session_id, event_kind, project, title, priority, outcome, created_at FROM deliveries ORDER BY created_at DESC"
	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Delivery
	for rows.Next() {
		var d Delivery
		var outcome, createdAt string
		if err := rows.Scan(&d.ID, &d.SessionID, &d.EventKind, &d.Project, &d.Title, &d.Priority, &outcome, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning delivery: %w", err)
		}
		if err := json.Unmarshal([]byte(outcome), &d.Outcome); err != nil {
			d.Outcome = nil
		}
		if ts, err := time.Parse(timeFormat, createdAt); err == nil {
			d.CreatedAt = ts
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Cleanup deletes deliveries older than the retention window.
func (s *SQLiteStore) Cleanup(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format(timeFormat)
	res, err := s.db.Exec("DELETE FROM deliveries WHERE created_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up deliveries: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.Info("pruned old deliveries", "count", n, "retention_days", retentionDays)
	}
	return nil
}
