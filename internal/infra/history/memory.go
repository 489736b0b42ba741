package history

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/csdewars/ewars/internal/domain/alert"
	"github.com/csdewars/ewars/internal/domain/forecast"
	apperrors "github.com/csdewars/ewars/pkg/errors"
)

// MemoryRepository keeps runs and alert entries in process memory for tests/dev.
type MemoryRepository struct {
	mu     sync.RWMutex
	runs   map[uuid.UUID]forecast.Run
	alerts []alert.LogEntry
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{runs: make(map[uuid.UUID]forecast.Run)}
}

// SaveRun implements forecast.RunRepository.
func (r *MemoryRepository) SaveRun(_ context.Context, run forecast.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run
	return nil
}

// GetRun implements forecast.RunRepository.
func (r *MemoryRepository) GetRun(_ context.Context, id uuid.UUID) (forecast.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return forecast.Run{}, apperrors.New(apperrors.CodeNotFound, "forecast run not found")
	}
	return run, nil
}

// SaveAlert implements alert.LogRepository.
func (r *MemoryRepository) SaveAlert(_ context.Context, entry alert.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, entry)
	return nil
}

// ListAlerts returns the newest entries first.
func (r *MemoryRepository) ListAlerts(_ context.Context, limit int) ([]alert.LogEntry, error) {
	r.mu.RLock()
	out := make([]alert.LogEntry, len(r.alerts))
	copy(out, r.alerts)
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SentAt.After(out[j].SentAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var (
	_ forecast.RunRepository = (*MemoryRepository)(nil)
	_ alert.LogRepository    = (*MemoryRepository)(nil)
)
