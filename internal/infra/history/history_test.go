package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/csdewars/ewars/internal/domain/alert"
	"github.com/csdewars/ewars/internal/domain/forecast"
	apperrors "github.com/csdewars/ewars/pkg/errors"
)

type repository interface {
	forecast.RunRepository
	alert.LogRepository
}

func exerciseRepository(t *testing.T, repo repository) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.GetRun(ctx, uuid.New())
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	empty, err := repo.ListAlerts(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	cases := 42.0
	run := forecast.Run{
		ID:          uuid.New(),
		Session:     "s1",
		Generation:  3,
		TargetMonth: forecast.Month{Code: "2025-02-01", Label: "February 2025"},
		Regions:     []string{"Alikadam"},
		Threshold:   100,
		Results:     []forecast.Record{{Region: "Alikadam", Month: "2025-02-01", PredictedCases: &cases}},
		StartedAt:   time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.SaveRun(ctx, run))
	run.Generation = 4
	require.NoError(t, repo.SaveRun(ctx, run))

	got, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(4), got.Generation)
	require.Equal(t, "February 2025", got.TargetMonth.Label)
	require.Len(t, got.Results, 1)
	require.InDelta(t, 42.0, *got.Results[0].PredictedCases, 1e-9)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.SaveAlert(ctx, alert.LogEntry{
			ID:      uuid.New(),
			Emails:  []string{"ops@example.org"},
			Subject: "alert",
			Status:  alert.StatusSent,
			SentAt:  base.Add(time.Duration(i) * time.Hour),
		}))
	}
	entries, err := repo.ListAlerts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.True(t, entries[0].SentAt.After(entries[1].SentAt))
	require.Equal(t, base.Add(2*time.Hour), entries[0].SentAt.UTC())
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestSQLiteRepository(t *testing.T) {
	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	exerciseRepository(t, repo)
}
