package geodata

import (
	"context"
	"fmt"
	"os"

	"github.com/csdewars/ewars/internal/domain/riskmap"
	"github.com/csdewars/ewars/internal/infra/objectstore"
)

// DefaultObjectKey is the boundary file name used by the dashboard.
const DefaultObjectKey = "upazila_simplified5.json"

// FileSource reads the boundary FeatureCollection from disk.
type FileSource struct {
	Path string
}

// NewFileSource constructs a file-backed source.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// LoadBoundaries implements riskmap.BoundarySource.
func (s *FileSource) LoadBoundaries(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read boundaries: %w", err)
	}
	return data, nil
}

// ObjectSource reads the boundary FeatureCollection from an object store.
type ObjectSource struct {
	store objectstore.Store
	key   string
}

// NewObjectSource constructs an object-backed source.
func NewObjectSource(store objectstore.Store, key string) *ObjectSource {
	if key == "" {
		key = DefaultObjectKey
	}
	return &ObjectSource{store: store, key: key}
}

// LoadBoundaries implements riskmap.BoundarySource.
func (s *ObjectSource) LoadBoundaries(ctx context.Context) ([]byte, error) {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("fetch boundaries %s: %w", s.key, err)
	}
	return data, nil
}

var (
	_ riskmap.BoundarySource = (*FileSource)(nil)
	_ riskmap.BoundarySource = (*ObjectSource)(nil)
)
