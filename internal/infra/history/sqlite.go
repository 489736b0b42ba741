package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/csdewars/ewars/internal/domain/alert"
	"github.com/csdewars/ewars/internal/domain/forecast"
	apperrors "github.com/csdewars/ewars/pkg/errors"
)

// sortableTime keeps lexical order equal to chronological order for UTC values.
const sortableTime = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository is the single-node history store.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and migrates it.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error { return r.db.Close() }

func (r *SQLiteRepository) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forecast_runs (
			id TEXT PRIMARY KEY,
			session TEXT,
			target_month TEXT,
			started_at TIMESTAMP,
			payload_json TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS alert_log (
			id TEXT PRIMARY KEY,
			run_id TEXT,
			status TEXT,
			sent_at TIMESTAMP,
			payload_json TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_alert_log_sent_at ON alert_log(sent_at);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun upserts a run.
func (r *SQLiteRepository) SaveRun(ctx context.Context, run forecast.Run) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO forecast_runs (id, session, target_month, started_at, payload_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload_json = excluded.payload_json
	`, run.ID.String(), run.Session, run.TargetMonth.Code, run.StartedAt.UTC().Format(sortableTime), string(payload))
	return err
}

// GetRun fetches a run by id.
func (r *SQLiteRepository) GetRun(ctx context.Context, id uuid.UUID) (forecast.Run, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload_json FROM forecast_runs WHERE id = ?`, id.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return forecast.Run{}, apperrors.New(apperrors.CodeNotFound, "forecast run not found")
	}
	if err != nil {
		return forecast.Run{}, err
	}
	var run forecast.Run
	if err := json.Unmarshal([]byte(payload), &run); err != nil {
		return forecast.Run{}, err
	}
	return run, nil
}

// SaveAlert records one dispatch attempt.
func (r *SQLiteRepository) SaveAlert(ctx context.Context, entry alert.LogEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO alert_log (id, run_id, status, sent_at, payload_json)
		VALUES (?, ?, ?, ?, ?)
	`, entry.ID.String(), entry.RunID, entry.Status, entry.SentAt.UTC().Format(sortableTime), string(payload))
	return err
}

// ListAlerts returns the newest entries first.
func (r *SQLiteRepository) ListAlerts(ctx context.Context, limit int) ([]alert.LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT payload_json FROM alert_log
		ORDER BY sent_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]alert.LogEntry, 0, limit)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var entry alert.LogEntry
		if err := json.Unmarshal([]byte(payload), &entry); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

var (
	_ forecast.RunRepository = (*SQLiteRepository)(nil)
	_ alert.LogRepository    = (*SQLiteRepository)(nil)
)
