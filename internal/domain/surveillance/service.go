package surveillance

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/csdewars/ewars/internal/domain/filter"
	"github.com/csdewars/ewars/internal/domain/hierarchy"
	"github.com/csdewars/ewars/internal/domain/metrics"
	"github.com/csdewars/ewars/internal/domain/selection"
	"github.com/csdewars/ewars/internal/domain/submission"
	apperrors "github.com/csdewars/ewars/pkg/errors"
	"github.com/csdewars/ewars/pkg/util"
)

// Service exposes the community health worker dashboard.
type Service interface {
	Hierarchy(ctx context.Context) (HierarchyView, error)
	ApplyAction(ctx context.Context, req ActionRequest) (ActionResult, error)
	Dashboard(ctx context.Context, state selection.State) (Dashboard, error)
	Export(ctx context.Context, state selection.State, w io.Writer) (int, error)
	ExportContentType() string
	Refresh(ctx context.Context) (Summary, error)
}

type dataset struct {
	records   []submission.FlatRecord
	hierarchy *hierarchy.Hierarchy
	days      []string
	loadedAt  time.Time
	cached    bool
}

type service struct {
	cfg       Config
	source    SubmissionSource
	cache     SnapshotCache
	flattener *submission.Flattener
	writer    RecordWriter
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.RWMutex
	data  *dataset
	loads singleflight.Group
}

// NewService wires the surveillance domain.
func NewService(cfg Config, source SubmissionSource, cache SnapshotCache, writer RecordWriter, logger *slog.Logger) Service {
	if cfg.CacheKey == "" {
		cfg.CacheKey = "ewars:submissions"
	}
	return &service{
		cfg:       cfg,
		source:    source,
		cache:     cache,
		flattener: submission.NewFlattener(submission.DefaultSchema),
		writer:    writer,
		logger:    logger.With("component", "surveillance.service"),
		now:       util.NowUTC,
	}
}

func (s *service) Hierarchy(ctx context.Context) (HierarchyView, error) {
	data, err := s.dataset(ctx)
	if err != nil {
		return HierarchyView{}, err
	}
	h := data.hierarchy
	view := HierarchyView{
		Levels:   h.Levels(),
		Options:  make(map[hierarchy.Level][]string),
		Children: make(map[hierarchy.Level]map[string][]string),
		Initial:  s.initialState(data),
		Total:    len(data.records),
		LoadedAt: data.loadedAt,
	}
	for _, level := range h.Levels() {
		view.Options[level] = h.Options(level)
		if _, ok := h.Child(level); ok {
			view.Children[level] = h.ChildMap(level)
		}
	}
	view.Facets = filter.BuildOptions(data.records, hierarchy.SurveyLevels, view.Initial)
	return view, nil
}

func (s *service) ApplyAction(ctx context.Context, req ActionRequest) (ActionResult, error) {
	data, err := s.dataset(ctx)
	if err != nil {
		return ActionResult{}, err
	}
	policy := req.Policy
	if policy == "" {
		policy = selection.PolicyCascadeResetFacets
	}
	state := req.State.Clone()
	next, err := selection.Reduce(data.hierarchy, policy, state, req.Action)
	if err != nil {
		return ActionResult{}, err
	}
	if req.Action.Kind == selection.KindSetDateRange {
		next.DateRange = s.clamp(data, next.DateRange)
	}
	opts := filter.BuildOptions(data.records, hierarchy.SurveyLevels, next)
	next = selection.ReconcileFacets(next, opts.Organizations, opts.Diseases)
	return ActionResult{State: next, Options: opts}, nil
}

func (s *service) Dashboard(ctx context.Context, state selection.State) (Dashboard, error) {
	data, err := s.dataset(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	state = state.Clone()
	state.DateRange = s.clamp(data, state.DateRange)

	filtered := filter.Apply(data.records, state)
	return Dashboard{
		State:    state,
		Options:  filter.BuildOptions(data.records, hierarchy.SurveyLevels, state),
		Metrics:  metrics.Compute(filtered),
		Points:   filter.Points(filtered),
		Total:    len(data.records),
		Filtered: len(filtered),
	}, nil
}

func (s *service) Export(ctx context.Context, state selection.State, w io.Writer) (int, error) {
	data, err := s.dataset(ctx)
	if err != nil {
		return 0, err
	}
	state = state.Clone()
	state.DateRange = s.clamp(data, state.DateRange)
	filtered := filter.Apply(data.records, state)
	if err := s.writer.WriteRecords(w, filtered); err != nil {
		return 0, apperrors.Wrap(apperrors.CodeStore, "failed to write export", err)
	}
	s.logger.Info("records exported", "records", len(filtered))
	return len(filtered), nil
}

func (s *service) ExportContentType() string {
	return s.writer.ContentType()
}

func (s *service) Refresh(ctx context.Context) (Summary, error) {
	data, err := s.load(ctx, true)
	if err != nil {
		return Summary{}, err
	}
	return summarize(data), nil
}

func (s *service) dataset(ctx context.Context) (*dataset, error) {
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()
	if data != nil {
		return data, nil
	}
	return s.load(ctx, false)
}

// load builds a fresh dataset. The hierarchy is always recomputed from the full
// record set. Concurrent loads of the same kind share one fetch, and readers
// keep the previous dataset until the swap.
func (s *service) load(ctx context.Context, bypassCache bool) (*dataset, error) {
	key := "load"
	if bypassCache {
		key = "refresh"
	}
	v, err, _ := s.loads.Do(key, func() (any, error) {
		if !bypassCache {
			s.mu.RLock()
			data := s.data
			s.mu.RUnlock()
			if data != nil {
				return data, nil
			}
		}

		raws, cached, err := s.fetch(ctx, bypassCache)
		if err != nil {
			return nil, err
		}
		records := s.flattener.FlattenAll(raws)
		data := &dataset{
			records:   records,
			hierarchy: hierarchy.Build(hierarchy.SurveyLevels, records),
			days:      filter.Days(records),
			loadedAt:  s.now(),
			cached:    cached,
		}

		s.mu.Lock()
		s.data = data
		s.mu.Unlock()
		s.logger.Info("submissions loaded", "raw", len(raws), "records", len(records), "cached", cached)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dataset), nil
}

func (s *service) fetch(ctx context.Context, bypassCache bool) ([]map[string]any, bool, error) {
	if !bypassCache && s.cache != nil {
		payload, ok, err := s.cache.Get(ctx, s.cfg.CacheKey)
		if err != nil {
			s.logger.Warn("snapshot cache read failed", "error", err)
		} else if ok {
			var raws []map[string]any
			if err := json.Unmarshal(payload, &raws); err == nil {
				return raws, true, nil
			}
			s.logger.Warn("discarding corrupt submission snapshot")
		}
	}

	raws, err := s.source.FetchSubmissions(ctx)
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.CodeUpstream, "failed to fetch submissions", err)
	}
	if s.cache != nil {
		if payload, err := json.Marshal(raws); err == nil {
			if err := s.cache.Set(ctx, s.cfg.CacheKey, payload, s.cfg.CacheTTL); err != nil {
				s.logger.Warn("snapshot cache write failed", "error", err)
			}
		}
	}
	return raws, false, nil
}

func (s *service) initialState(data *dataset) selection.State {
	state := selection.Initial(data.hierarchy)
	opts := filter.BuildOptions(data.records, hierarchy.SurveyLevels, state)
	state = selection.ReconcileFacets(state, opts.Organizations, opts.Diseases)
	state.DateRange = s.clamp(data, selection.DateRange{})
	return state
}

func (s *service) clamp(data *dataset, r selection.DateRange) selection.DateRange {
	if len(data.days) == 0 {
		return r
	}
	return selection.ClampDateRange(r, data.days[0], data.days[len(data.days)-1])
}

func summarize(data *dataset) Summary {
	sum := Summary{Total: len(data.records), LoadedAt: data.loadedAt, Cached: data.cached}
	if len(data.days) > 0 {
		sum.MinDay = data.days[0]
		sum.MaxDay = data.days[len(data.days)-1]
	}
	return sum
}
