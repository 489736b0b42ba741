package surveillance

import (
	"context"
	"io"
	"time"

	"github.com/csdewars/ewars/internal/domain/filter"
	"github.com/csdewars/ewars/internal/domain/hierarchy"
	"github.com/csdewars/ewars/internal/domain/metrics"
	"github.com/csdewars/ewars/internal/domain/selection"
	"github.com/csdewars/ewars/internal/domain/submission"
)

// Config tunes the surveillance service.
type Config struct {
	CacheKey string
	CacheTTL time.Duration
}

// SubmissionSource fetches raw survey submissions.
type SubmissionSource interface {
	FetchSubmissions(ctx context.Context) ([]map[string]any, error)
}

// SnapshotCache stores the raw submission payload between loads.
type SnapshotCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RecordWriter renders records to an export format.
type RecordWriter interface {
	ContentType() string
	WriteRecords(w io.Writer, records []submission.FlatRecord) error
}

// HierarchyView is the hierarchy plus the initial full selection.
type HierarchyView struct {
	Levels   []hierarchy.Level                       `json:"levels"`
	Options  map[hierarchy.Level][]string            `json:"options"`
	Children map[hierarchy.Level]map[string][]string `json:"children"`
	Facets   filter.Options                          `json:"facets"`
	Initial  selection.State                         `json:"initial"`
	Total    int                                     `json:"total"`
	LoadedAt time.Time                               `json:"loadedAt"`
}

// ActionRequest applies one reducer action to a state.
type ActionRequest struct {
	State  selection.State  `json:"state"`
	Action selection.Action `json:"action"`
	Policy selection.Policy `json:"policy,omitempty"`
}

// ActionResult is the reduced state with the option lists it was reconciled against.
type ActionResult struct {
	State   selection.State `json:"state"`
	Options filter.Options  `json:"options"`
}

// Dashboard is everything the dashboard renders for one selection.
type Dashboard struct {
	State    selection.State `json:"state"`
	Options  filter.Options  `json:"options"`
	Metrics  metrics.Bundle  `json:"metrics"`
	Points   []filter.Point  `json:"points"`
	Total    int             `json:"total"`
	Filtered int             `json:"filtered"`
}

// Summary describes the loaded dataset.
type Summary struct {
	Total    int       `json:"total"`
	MinDay   string    `json:"minDay,omitempty"`
	MaxDay   string    `json:"maxDay,omitempty"`
	LoadedAt time.Time `json:"loadedAt"`
	Cached   bool      `json:"cached"`
}
