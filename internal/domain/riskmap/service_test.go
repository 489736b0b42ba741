package riskmap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/csdewars/ewars/internal/domain/forecast"
	"github.com/csdewars/ewars/internal/domain/geojoin"
	"github.com/csdewars/ewars/internal/domain/hierarchy"
	"github.com/csdewars/ewars/internal/domain/selection"
	apperrors "github.com/csdewars/ewars/pkg/errors"
)

const boundaryFixture = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"DIV_NAME":"Chattogram","DIS_NAME":"Cox's Bazar","UPA_NAME":"Teknaf","UpazilaID":202290},
  "geometry":{"type":"Polygon","coordinates":[[[92.0,21.0],[92.2,21.0],[92.2,21.2],[92.0,21.2],[92.0,21.0]]]}},
 {"type":"Feature","properties":{"DIV_NAME":"Chattogram","DIS_NAME":"Cox's Bazar","UPA_NAME":"Ukhia","UpazilaID":202294},
  "geometry":{"type":"Polygon","coordinates":[[[92.0,21.2],[92.2,21.2],[92.2,21.4],[92.0,21.4],[92.0,21.2]]]}},
 {"type":"Feature","properties":{"DIV_NAME":"Chattogram","DIS_NAME":"Bandarban","UPA_NAME":"Lama","UpazilaID":200351},
  "geometry":{"type":"Polygon","coordinates":[[[92.1,21.7],[92.3,21.7],[92.3,21.9],[92.1,21.9],[92.1,21.7]]]}}
]}`

type stubBoundaries struct {
	loadFn func(ctx context.Context) ([]byte, error)
}

func (s stubBoundaries) LoadBoundaries(ctx context.Context) ([]byte, error) { return s.loadFn(ctx) }

type stubActuals struct {
	fetchFn func(ctx context.Context) ([]geojoin.ActualRecord, error)
}

func (s stubActuals) FetchActuals(ctx context.Context) ([]geojoin.ActualRecord, error) {
	return s.fetchFn(ctx)
}

type stubGenerator struct {
	generateFn func(ctx context.Context, session string, regions []string, target time.Time) (forecast.Run, error)
}

func (s stubGenerator) Generate(ctx context.Context, session string, regions []string, target time.Time) (forecast.Run, error) {
	return s.generateFn(ctx, session, regions, target)
}

type memRuns struct {
	runs map[uuid.UUID]forecast.Run
}

func (m *memRuns) SaveRun(_ context.Context, run forecast.Run) error {
	m.runs[run.ID] = run
	return nil
}

func (m *memRuns) GetRun(_ context.Context, id uuid.UUID) (forecast.Run, error) {
	run, ok := m.runs[id]
	if !ok {
		return forecast.Run{}, apperrors.New(apperrors.CodeNotFound, "run not found")
	}
	return run, nil
}

func v(f float64) *float64 { return &f }

func okBoundaries() BoundarySource {
	return stubBoundaries{loadFn: func(context.Context) ([]byte, error) { return []byte(boundaryFixture), nil }}
}

func newTestService(src BoundarySource, actuals ActualSource, gen Generator, runs forecast.RunRepository) Service {
	return NewService(Config{}, src, actuals, gen, runs, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHierarchyAndSelect(t *testing.T) {
	svc := newTestService(okBoundaries(), nil, nil, &memRuns{runs: map[uuid.UUID]forecast.Run{}})

	view, err := svc.Hierarchy(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Cox's Bazar", "Bandarban"}, view.Children[hierarchy.Division]["Chattogram"])
	require.Equal(t, []string{"Teknaf", "Ukhia", "Lama"}, view.Initial.Selected(hierarchy.Upazila))

	state, err := svc.Select(context.Background(), SelectRequest{
		State:  view.Initial,
		Action: selection.SetLevel(hierarchy.District, "Bandarban"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Lama"}, state.Selected(hierarchy.Upazila))
}

func TestBoundaryFailureIsNotLoadedAndRetried(t *testing.T) {
	fail := true
	src := stubBoundaries{loadFn: func(context.Context) ([]byte, error) {
		if fail {
			return nil, errors.New("404")
		}
		return []byte(boundaryFixture), nil
	}}
	svc := newTestService(src, nil, nil, &memRuns{runs: map[uuid.UUID]forecast.Run{}})

	_, err := svc.Hierarchy(context.Background())
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotLoaded))

	fail = false
	sum, err := svc.Reload(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, sum.Features)
	require.Equal(t, 2, sum.Districts)

	fail = true
	_, err = svc.Reload(context.Background())
	require.Error(t, err)
	_, err = svc.Hierarchy(context.Background())
	require.NoError(t, err)
}

func TestGeneratePersistsRunAndSeries(t *testing.T) {
	runs := &memRuns{runs: map[uuid.UUID]forecast.Run{}}
	gen := stubGenerator{generateFn: func(_ context.Context, session string, regions []string, target time.Time) (forecast.Run, error) {
		require.Equal(t, "default", session)
		require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), target)
		months := forecast.Window(target)
		return forecast.Run{
			ID:      uuid.New(),
			Months:  months,
			Regions: regions,
			Results: []forecast.Record{{Region: "Teknaf", Month: "2025-01-01", PredictedCases: v(130.2)}},
		}, nil
	}}
	svc := newTestService(okBoundaries(), nil, gen, runs)

	res, err := svc.Generate(context.Background(), GenerateRequest{Upazilas: []string{"Teknaf"}, Month: "2025-01"})
	require.NoError(t, err)
	require.Equal(t, 100.0, res.Run.Threshold)
	require.Len(t, res.Series, 3)
	require.Equal(t, 130.0, *res.Series[1].Values["Teknaf"])

	stored, err := svc.Run(context.Background(), res.Run.ID)
	require.NoError(t, err)
	require.Equal(t, res.Run.ID, stored.ID)

	_, err = svc.Run(context.Background(), uuid.New())
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = svc.Generate(context.Background(), GenerateRequest{Upazilas: []string{"Teknaf"}, Month: "soon"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestClassifyForecastFromStoredRun(t *testing.T) {
	runID := uuid.New()
	runs := &memRuns{runs: map[uuid.UUID]forecast.Run{runID: {ID: runID, Results: []forecast.Record{
		{Region: " teknaf ", Month: "2025-01-01", PredictedCases: v(250)},
		{Region: "Ukhia", Month: "2025-01-01", PredictedCases: v(60)},
	}}}}
	svc := newTestService(okBoundaries(), nil, nil, runs)

	res, err := svc.Classify(context.Background(), ClassifyRequest{View: ViewForecast, RunID: runID.String(), Month: "2025-01-01"})
	require.NoError(t, err)
	require.Equal(t, "bins", res.Scale)
	require.Len(t, res.Features.Features, 3)
	require.Equal(t, map[geojoin.Tier]int{geojoin.Tier6: 1, geojoin.Tier4: 1, geojoin.NoData: 1}, res.TierCounts)
	require.Len(t, res.Markers, 1)
	require.Equal(t, "Teknaf", res.Markers[0].UpazilaName)

	res, err = svc.Classify(context.Background(), ClassifyRequest{
		RunID: runID.String(), Month: "2025-01-01", Scale: "threshold", Threshold: 50,
		Divisions: []string{"Chattogram"}, Districts: []string{"Cox's Bazar"}, Upazilas: []string{"Ukhia"},
	})
	require.NoError(t, err)
	require.Len(t, res.Features.Features, 1)
	require.Equal(t, map[geojoin.Tier]int{geojoin.TierHigh: 1}, res.TierCounts)
}

func TestClassifyUpazilasWithoutAncestors(t *testing.T) {
	svc := newTestService(okBoundaries(), nil, nil, &memRuns{runs: map[uuid.UUID]forecast.Run{}})

	res, err := svc.Classify(context.Background(), ClassifyRequest{
		View:     ViewForecast,
		Records:  []forecast.Record{{Region: "Lama", Month: "2025-01-01", PredictedCases: v(30)}},
		Month:    "2025-01-01",
		Upazilas: []string{"Lama", "Teknaf"},
	})
	require.NoError(t, err)
	require.Len(t, res.Features.Features, 2)
	require.Equal(t, map[geojoin.Tier]int{geojoin.Tier3: 1, geojoin.NoData: 1}, res.TierCounts)
}

func TestClassifyActualFiltersUnknownIDs(t *testing.T) {
	actuals := stubActuals{fetchFn: func(context.Context) ([]geojoin.ActualRecord, error) {
		return []geojoin.ActualRecord{
			{UpazilaID: "200351", ReportYear: "2024", ReportMonth: "December", Cases: v(12)},
			{UpazilaID: "999999", ReportYear: "2024", ReportMonth: "December", Cases: v(500)},
		}, nil
	}}
	svc := newTestService(okBoundaries(), actuals, nil, &memRuns{runs: map[uuid.UUID]forecast.Run{}})

	res, err := svc.Classify(context.Background(), ClassifyRequest{View: ViewActual, Month: "2024-12"})
	require.NoError(t, err)
	require.Equal(t, "actual", res.View)
	require.Equal(t, map[geojoin.Tier]int{geojoin.Tier3: 1, geojoin.NoData: 2}, res.TierCounts)
	require.Empty(t, res.Markers)

	_, err = svc.Classify(context.Background(), ClassifyRequest{View: "satellite", Month: "2024-12"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	_, err = svc.Classify(context.Background(), ClassifyRequest{View: ViewActual, Month: "December"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}
