package riskmap

import (
	"context"
	"time"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/csdewars/ewars/internal/domain/forecast"
	"github.com/csdewars/ewars/internal/domain/geojoin"
	"github.com/csdewars/ewars/internal/domain/hierarchy"
	"github.com/csdewars/ewars/internal/domain/selection"
)

// Config tunes the risk map service.
type Config struct {
	DefaultThreshold float64
}

// BoundarySource loads the raw upazila FeatureCollection.
type BoundarySource interface {
	LoadBoundaries(ctx context.Context) ([]byte, error)
}

// ActualSource fetches reported monthly case counts.
type ActualSource interface {
	FetchActuals(ctx context.Context) ([]geojoin.ActualRecord, error)
}

// Generator runs the forecast fan-out.
type Generator interface {
	Generate(ctx context.Context, session string, regions []string, target time.Time) (forecast.Run, error)
}

// BoundarySummary describes the loaded boundaries.
type BoundarySummary struct {
	Features  int       `json:"features"`
	Divisions int       `json:"divisions"`
	Districts int       `json:"districts"`
	Upazilas  int       `json:"upazilas"`
	LoadedAt  time.Time `json:"loadedAt"`
}

// HierarchyView is the boundary hierarchy plus the initial full selection.
type HierarchyView struct {
	Levels   []hierarchy.Level                       `json:"levels"`
	Options  map[hierarchy.Level][]string            `json:"options"`
	Children map[hierarchy.Level]map[string][]string `json:"children"`
	Initial  selection.State                         `json:"initial"`
}

// SelectRequest applies a full-cascade action to a boundary selection.
type SelectRequest struct {
	State  selection.State  `json:"state"`
	Action selection.Action `json:"action"`
}

// GenerateRequest asks for a forecast window over upazilas.
type GenerateRequest struct {
	Session   string   `json:"session"`
	Upazilas  []string `json:"upazilas"`
	Month     string   `json:"month"`
	Threshold float64  `json:"threshold,omitempty"`
}

// GenerateResult is a completed run and its chart series.
type GenerateResult struct {
	Run    forecast.Run           `json:"run"`
	Series []forecast.SeriesPoint `json:"series"`
}

// View kinds accepted by Classify.
const (
	ViewForecast = "forecast"
	ViewActual   = "actual"
)

// ClassifyRequest selects the features, data view, month and scale to classify.
type ClassifyRequest struct {
	View      string            `json:"view"`
	RunID     string            `json:"runId,omitempty"`
	Records   []forecast.Record `json:"records,omitempty"`
	Month     string            `json:"month"`
	Scale     string            `json:"scale,omitempty"`
	Threshold float64           `json:"threshold,omitempty"`
	Divisions []string          `json:"divisions,omitempty"`
	Districts []string          `json:"districts,omitempty"`
	Upazilas  []string          `json:"upazilas,omitempty"`
}

// ClassifyResult is the classified map layer.
type ClassifyResult struct {
	View       string                     `json:"view"`
	Month      string                     `json:"month"`
	Scale      string                     `json:"scale"`
	Features   *geojson.FeatureCollection `json:"features"`
	Markers    []geojoin.Marker           `json:"markers"`
	TierCounts map[geojoin.Tier]int       `json:"tierCounts"`
}
