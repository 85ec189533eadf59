package sessionlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)
)

// SQLiteStore keeps session logs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and runs
// migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; the device appends a few rows a day.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS session_logs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		pattern_id INTEGER NOT NULL,
		total_seconds INTEGER NOT NULL,
		aborted INTEGER NOT NULL DEFAULT 0,
		body TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_session_logs_date ON session_logs(date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, l Log) error {
	body, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal session log: %w", err)
	}

	query := `
	INSERT INTO session_logs (id, date, start_time, pattern_id, total_seconds, aborted, body)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, l.ID, l.Date, l.StartTime, l.PatternID, l.TotalSeconds, l.Aborted, string(body)); err != nil {
		return fmt.Errorf("insert session log: %w", err)
	}
	return nil
}

// List returns up to limit logs, oldest first. limit <= 0 returns all.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Log, error) {
	query := `SELECT body FROM session_logs ORDER BY seq`
	args := []any{}
	if limit > 0 {
		query = `SELECT body FROM (SELECT seq, body FROM session_logs ORDER BY seq DESC LIMIT ?) ORDER BY seq`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var logs []Log
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var l Log
		if err := json.Unmarshal([]byte(body), &l); err != nil {
			return nil, fmt.Errorf("decode session log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// Get returns the log with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Log, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM session_logs WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return Log{}, ErrNotFound
	}
	if err != nil {
		return Log{}, fmt.Errorf("query session log: %w", err)
	}
	var l Log
	if err := json.Unmarshal([]byte(body), &l); err != nil {
		return Log{}, fmt.Errorf("decode session log: %w", err)
	}
	return l, nil
}

// Delete removes one log by id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every log and returns how many were removed.
func (s *SQLiteStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session_logs`)
	if err != nil {
		return 0, fmt.Errorf("delete session logs: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored logs.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM session_logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count session logs: %w", err)
	}
	return n, nil
}
