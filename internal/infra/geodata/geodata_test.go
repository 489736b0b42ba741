package geodata

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/csdewars/ewars/internal/infra/objectstore"
)

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"FeatureCollection","features":[]}`), 0o644))

	data, err := NewFileSource(path).LoadBoundaries(context.Background())
	require.NoError(t, err)
	require.Contains(t, string(data), "FeatureCollection")

	_, err = NewFileSource(filepath.Join(t.TempDir(), "none.json")).LoadBoundaries(context.Background())
	require.Error(t, err)
}

func TestObjectSourceDefaultsKey(t *testing.T) {
	store, err := objectstore.NewDirStore(t.TempDir())
	require.NoError(t, err)
	_, err = store.Put(context.Background(), DefaultObjectKey, []byte(`{}`), "application/json")
	require.NoError(t, err)

	data, err := NewObjectSource(store, "").LoadBoundaries(context.Background())
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	var calls atomic.Int32
	w := NewWatcher(path, 20*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		return nil
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o644))

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}
