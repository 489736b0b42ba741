package forecast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/csdewars/ewars/internal/domain/hierarchy"
	apperrors "github.com/csdewars/ewars/pkg/errors"
	"github.com/csdewars/ewars/pkg/util"
)

// Config tunes the orchestrator.
type Config struct {
	RequestTimeout time.Duration
	MaxRegions     int
}

// Orchestrator fans out one prediction per region and month. Runs are grouped
// by session; starting a run cancels the session's previous run, and a run
// finishing after it was superseded is discarded. Generations are unique across
// sessions so a session can be dropped once its latest run ends.
type Orchestrator struct {
	cfg       Config
	predictor Predictor
	logger    *slog.Logger
	now       func() time.Time

	mu         sync.Mutex
	generation uint64
	sessions   map[string]*session
}

type session struct {
	generation uint64
	cancel     context.CancelFunc
}

// NewOrchestrator wires an orchestrator around predictor.
func NewOrchestrator(cfg Config, predictor Predictor, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		predictor: predictor,
		logger:    logger.With("component", "forecast.orchestrator"),
		now:       util.NowUTC,
		sessions:  make(map[string]*session),
	}
}

// Generate requests the {previous, target, next} window for every region.
// Individual failures are collected in Run.Failures and never abort siblings.
func (o *Orchestrator) Generate(ctx context.Context, sessionKey string, regions []string, target time.Time) (Run, error) {
	regions = hierarchy.Unique(regions)
	if len(regions) == 0 {
		return Run{}, apperrors.New(apperrors.CodeInvalidInput, "at least one region is required")
	}
	if o.cfg.MaxRegions > 0 && len(regions) > o.cfg.MaxRegions {
		return Run{}, apperrors.New(apperrors.CodeInvalidInput, "too many regions requested")
	}

	runCtx, generation := o.begin(ctx, sessionKey)
	defer o.finish(sessionKey, generation)

	months := Window(target)
	run := Run{
		ID:          uuid.New(),
		Session:     sessionKey,
		Generation:  generation,
		TargetMonth: months[1],
		Months:      months,
		Regions:     regions,
		StartedAt:   o.now(),
	}

	type slot struct {
		record Record
		err    error
	}
	slots := make([]slot, len(regions)*len(months))

	g, gctx := errgroup.WithContext(runCtx)
	for i, region := range regions {
		for j, month := range months {
			idx := i*len(months) + j
			req := Request{Region: region, Month: month.Code}
			g.Go(func() error {
				reqCtx := gctx
				if o.cfg.RequestTimeout > 0 {
					var cancel context.CancelFunc
					reqCtx, cancel = context.WithTimeout(gctx, o.cfg.RequestTimeout)
					defer cancel()
				}
				rec, err := o.predictor.Predict(reqCtx, req)
				slots[idx] = slot{record: rec, err: err}
				return nil
			})
		}
	}
	_ = g.Wait()

	if !o.current(sessionKey, generation) {
		o.logger.Info("forecast run superseded", "session", sessionKey, "generation", generation)
		return Run{}, apperrors.New(apperrors.CodeSuperseded, "forecast run superseded by a newer request")
	}

	run.Results = make([]Record, 0, len(slots))
	run.Failures = make([]Failure, 0)
	for i, region := range regions {
		for j, month := range months {
			s := slots[i*len(months)+j]
			if s.err != nil {
				o.logger.Warn("forecast request failed", "region", region, "month", month.Code, "error", s.err)
				run.Failures = append(run.Failures, Failure{Region: region, Month: month.Code, Error: s.err.Error()})
				continue
			}
			s.record.Region = region
			s.record.Month = month.Code
			run.Results = append(run.Results, s.record)
		}
	}
	run.FinishedAt = o.now()
	o.logger.Info("forecast run completed",
		"session", sessionKey,
		"generation", generation,
		"regions", len(regions),
		"results", len(run.Results),
		"failures", len(run.Failures),
	)
	return run, nil
}

func (o *Orchestrator) begin(ctx context.Context, key string) (context.Context, uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.sessions[key]
	if !ok {
		s = &session{}
		o.sessions[key] = s
	}
	if s.cancel != nil {
		s.cancel()
	}
	o.generation++
	s.generation = o.generation
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return runCtx, s.generation
}

// finish releases the session when generation is still its latest run.
func (o *Orchestrator) finish(key string, generation uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.sessions[key]
	if !ok || s.generation != generation {
		return
	}
	s.cancel()
	delete(o.sessions, key)
}

func (o *Orchestrator) current(key string, generation uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.sessions[key]
	return ok && s.generation == generation
}

// Generation returns the generation of the run in flight for key, or 0.
func (o *Orchestrator) Generation(key string) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.sessions[key]; ok {
		return s.generation
	}
	return 0
}
