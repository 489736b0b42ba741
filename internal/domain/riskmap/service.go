package riskmap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/csdewars/ewars/internal/domain/forecast"
	"github.com/csdewars/ewars/internal/domain/geojoin"
	"github.com/csdewars/ewars/internal/domain/hierarchy"
	"github.com/csdewars/ewars/internal/domain/selection"
	apperrors "github.com/csdewars/ewars/pkg/errors"
	"github.com/csdewars/ewars/pkg/util"
)

// Service exposes the upazila risk map.
type Service interface {
	Reload(ctx context.Context) (BoundarySummary, error)
	Hierarchy(ctx context.Context) (HierarchyView, error)
	Select(ctx context.Context, req SelectRequest) (selection.State, error)
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	Run(ctx context.Context, id uuid.UUID) (forecast.Run, error)
	Classify(ctx context.Context, req ClassifyRequest) (ClassifyResult, error)
}

type boundaries struct {
	features  []geojoin.Feature
	hierarchy *hierarchy.Hierarchy
	loadedAt  time.Time
}

type service struct {
	cfg       Config
	source    BoundarySource
	actuals   ActualSource
	generator Generator
	runs      forecast.RunRepository
	logger    *slog.Logger
	now       func() time.Time

	mu   sync.RWMutex
	data *boundaries
}

// NewService wires the risk map domain.
func NewService(cfg Config, source BoundarySource, actuals ActualSource, generator Generator, runs forecast.RunRepository, logger *slog.Logger) Service {
	if cfg.DefaultThreshold <= 0 {
		cfg.DefaultThreshold = geojoin.DefaultThreshold
	}
	return &service{
		cfg:       cfg,
		source:    source,
		actuals:   actuals,
		generator: generator,
		runs:      runs,
		logger:    logger.With("component", "riskmap.service"),
		now:       util.NowUTC,
	}
}

// Reload replaces the boundary set. On failure the previous set stays in place.
func (s *service) Reload(ctx context.Context) (BoundarySummary, error) {
	raw, err := s.source.LoadBoundaries(ctx)
	if err != nil {
		s.logger.Error("boundary load failed", "error", err)
		return BoundarySummary{}, apperrors.Wrap(apperrors.CodeNotLoaded, "boundary data unavailable", err)
	}
	features, err := geojoin.DecodeFeatureCollection(raw)
	if err != nil {
		s.logger.Error("boundary decode failed", "error", err)
		return BoundarySummary{}, apperrors.Wrap(apperrors.CodeNotLoaded, "boundary data unreadable", err)
	}
	data := &boundaries{
		features:  features,
		hierarchy: hierarchy.Build(hierarchy.BoundaryLevels, features),
		loadedAt:  s.now(),
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()

	sum := summarize(data)
	s.logger.Info("boundaries loaded", "features", sum.Features, "upazilas", sum.Upazilas)
	return sum, nil
}

func (s *service) Hierarchy(ctx context.Context) (HierarchyView, error) {
	data, err := s.boundaries(ctx)
	if err != nil {
		return HierarchyView{}, err
	}
	h := data.hierarchy
	view := HierarchyView{
		Levels:   h.Levels(),
		Options:  make(map[hierarchy.Level][]string),
		Children: make(map[hierarchy.Level]map[string][]string),
		Initial:  selection.Initial(h),
	}
	for _, level := range h.Levels() {
		view.Options[level] = h.Options(level)
		if _, ok := h.Child(level); ok {
			view.Children[level] = h.ChildMap(level)
		}
	}
	return view, nil
}

func (s *service) Select(ctx context.Context, req SelectRequest) (selection.State, error) {
	data, err := s.boundaries(ctx)
	if err != nil {
		return selection.State{}, err
	}
	return selection.Reduce(data.hierarchy, selection.PolicyFullCascade, req.State, req.Action)
}

func (s *service) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	target, err := forecast.ParseMonthCode(req.Month)
	if err != nil {
		return GenerateResult{}, err
	}
	session := strings.TrimSpace(req.Session)
	if session == "" {
		session = "default"
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = s.cfg.DefaultThreshold
	}

	run, err := s.generator.Generate(ctx, session, req.Upazilas, target)
	if err != nil {
		return GenerateResult{}, err
	}
	run.Threshold = threshold
	if err := s.runs.SaveRun(ctx, run); err != nil {
		s.logger.Error("failed to persist forecast run", "run_id", run.ID, "error", err)
	}
	return GenerateResult{
		Run:    run,
		Series: forecast.Series(run.Results, run.Months, run.Regions, threshold),
	}, nil
}

func (s *service) Run(ctx context.Context, id uuid.UUID) (forecast.Run, error) {
	run, err := s.runs.GetRun(ctx, id)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return forecast.Run{}, err
		}
		return forecast.Run{}, apperrors.Wrap(apperrors.CodeStore, "failed to load forecast run", err)
	}
	return run, nil
}

func (s *service) Classify(ctx context.Context, req ClassifyRequest) (ClassifyResult, error) {
	data, err := s.boundaries(ctx)
	if err != nil {
		return ClassifyResult{}, err
	}
	if _, _, err := forecast.SplitMonthKey(req.Month); err != nil {
		return ClassifyResult{}, err
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = s.cfg.DefaultThreshold
	}
	scale := geojoin.ScaleByName(req.Scale, threshold)

	view, err := s.view(ctx, data, req)
	if err != nil {
		return ClassifyResult{}, err
	}

	features := data.features
	if len(req.Divisions) > 0 || len(req.Districts) > 0 || len(req.Upazilas) > 0 {
		features = geojoin.SelectFeatures(features, req.Divisions, req.Districts, req.Upazilas)
	}

	classified := geojoin.ClassifyAll(features, view, req.Month, scale)
	counts := make(map[geojoin.Tier]int)
	for _, c := range classified {
		counts[c.Classification.Tier]++
	}
	return ClassifyResult{
		View:       view.Kind(),
		Month:      req.Month,
		Scale:      scale.Name(),
		Features:   geojoin.FeatureCollection(classified),
		Markers:    geojoin.Markers(classified, threshold),
		TierCounts: counts,
	}, nil
}

func (s *service) view(ctx context.Context, data *boundaries, req ClassifyRequest) (geojoin.View, error) {
	switch req.View {
	case ViewForecast, "":
		records := req.Records
		if strings.TrimSpace(req.RunID) != "" {
			id, err := uuid.Parse(req.RunID)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid run id", err)
			}
			run, err := s.Run(ctx, id)
			if err != nil {
				return nil, err
			}
			records = run.Results
		}
		return geojoin.ForecastView{Records: records}, nil
	case ViewActual:
		rows, err := s.actuals.FetchActuals(ctx)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeUpstream, "failed to fetch actual case data", err)
		}
		return geojoin.ActualView{Records: geojoin.FilterActualsByBoundary(rows, data.features)}, nil
	default:
		return nil, apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf("unknown view %q", req.View))
	}
}

// boundaries returns the loaded set, attempting a load when none is present yet.
func (s *service) boundaries(ctx context.Context) (*boundaries, error) {
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()
	if data != nil {
		return data, nil
	}
	if _, err := s.Reload(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data, nil
}

func summarize(data *boundaries) BoundarySummary {
	return BoundarySummary{
		Features:  len(data.features),
		Divisions: len(data.hierarchy.Options(hierarchy.Division)),
		Districts: len(data.hierarchy.Options(hierarchy.District)),
		Upazilas:  len(data.hierarchy.Options(hierarchy.Upazila)),
		LoadedAt:  data.loadedAt,
	}
}
