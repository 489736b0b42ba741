package history

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/csdewars/ewars/internal/domain/alert"
	"github.com/csdewars/ewars/internal/domain/forecast"
	apperrors "github.com/csdewars/ewars/pkg/errors"
)

// PostgresRepository stores runs and alert entries as jsonb payloads.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the history tables when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forecast_runs (
			id UUID PRIMARY KEY,
			session TEXT NOT NULL,
			target_month TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			payload JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS alert_log (
			id UUID PRIMARY KEY,
			run_id TEXT,
			status TEXT NOT NULL,
			sent_at TIMESTAMPTZ NOT NULL,
			payload JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alert_log_sent_at ON alert_log (sent_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun upserts a run.
func (r *PostgresRepository) SaveRun(ctx context.Context, run forecast.Run) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO forecast_runs (id, session, target_month, started_at, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload
	`, run.ID, run.Session, run.TargetMonth.Code, run.StartedAt, payload)
	return err
}

// GetRun fetches a run by id.
func (r *PostgresRepository) GetRun(ctx context.Context, id uuid.UUID) (forecast.Run, error) {
	row := r.pool.QueryRow(ctx, `SELECT payload FROM forecast_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return forecast.Run{}, apperrors.New(apperrors.CodeNotFound, "forecast run not found")
	}
	return run, err
}

// SaveAlert records one dispatch attempt.
func (r *PostgresRepository) SaveAlert(ctx context.Context, entry alert.LogEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO alert_log (id, run_id, status, sent_at, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ID, entry.RunID, entry.Status, entry.SentAt, payload)
	return err
}

// ListAlerts returns the newest entries first.
func (r *PostgresRepository) ListAlerts(ctx context.Context, limit int) ([]alert.LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT payload FROM alert_log
		ORDER BY sent_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]alert.LogEntry, 0, limit)
	for rows.Next() {
		entry, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (forecast.Run, error) {
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		return forecast.Run{}, err
	}
	var run forecast.Run
	if err := json.Unmarshal(payload, &run); err != nil {
		return forecast.Run{}, err
	}
	return run, nil
}

func scanAlert(row rowScanner) (alert.LogEntry, error) {
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		return alert.LogEntry{}, err
	}
	var entry alert.LogEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return alert.LogEntry{}, err
	}
	return entry, nil
}

var (
	_ forecast.RunRepository = (*PostgresRepository)(nil)
	_ alert.LogRepository    = (*PostgresRepository)(nil)
)
