package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/csdewars/ewars/internal/domain/alert"
	"github.com/csdewars/ewars/internal/domain/forecast"
	"github.com/csdewars/ewars/internal/domain/hierarchy"
	"github.com/csdewars/ewars/internal/domain/riskmap"
	"github.com/csdewars/ewars/internal/domain/selection"
	"github.com/csdewars/ewars/internal/domain/surveillance"
	"github.com/csdewars/ewars/internal/infra/config"
	apperrors "github.com/csdewars/ewars/pkg/errors"
)

func TestRouter_Health(t *testing.T) {
	rec := performRequest(http.MethodGet, "/api/v1/healthz", "", newRouterUnderTest(t, stubs{}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_DashboardPassesState(t *testing.T) {
	svc := &stubSurveillance{
		dashboardFn: func(_ context.Context, state selection.State) (surveillance.Dashboard, error) {
			require.Equal(t, []string{"Chattogram"}, state.Selected(hierarchy.Division))
			require.Equal(t, "2025-01-01", state.DateRange.Start)
			return surveillance.Dashboard{Total: 10, Filtered: 4}, nil
		},
	}
	body := `{"levels":{"division":["Chattogram"]},"dateRange":{"start":"2025-01-01"}}`
	rec := performRequest(http.MethodPost, "/api/v1/surveillance/dashboard", body, newRouterUnderTest(t, stubs{surveillance: svc}))
	require.Equal(t, http.StatusOK, rec.Code)

	var got surveillance.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 4, got.Filtered)
}

func TestRouter_DashboardInvalidJSON(t *testing.T) {
	rec := performRequest(http.MethodPost, "/api/v1/surveillance/dashboard", `{"levels":7}`, newRouterUnderTest(t, stubs{}))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_ExportWritesAttachment(t *testing.T) {
	svc := &stubSurveillance{
		exportFn: func(_ context.Context, _ selection.State, w io.Writer) (int, error) {
			_, err := w.Write([]byte("xlsx-bytes"))
			return 3, err
		},
		contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
	rec := performRequest(http.MethodPost, "/api/v1/surveillance/export", `{}`, newRouterUnderTest(t, stubs{surveillance: svc}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, svc.contentType, rec.Header().Get("Content-Type"))
	require.Equal(t, "3", rec.Header().Get("X-Record-Count"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "attachment;")
	require.Equal(t, "xlsx-bytes", rec.Body.String())
}

func TestRouter_ErrorCodesMapToStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", apperrors.New(apperrors.CodeInvalidInput, "month required"), http.StatusBadRequest, apperrors.CodeInvalidInput},
		{"not loaded", apperrors.New(apperrors.CodeNotLoaded, "boundary data unavailable"), http.StatusServiceUnavailable, apperrors.CodeNotLoaded},
		{"upstream", apperrors.New(apperrors.CodeUpstream, "lmis down"), http.StatusBadGateway, apperrors.CodeUpstream},
		{"superseded", apperrors.New(apperrors.CodeSuperseded, "newer run"), http.StatusConflict, apperrors.CodeSuperseded},
		{"store", apperrors.New(apperrors.CodeStore, "history unavailable"), http.StatusInternalServerError, apperrors.CodeStore},
		{"plain", io.ErrUnexpectedEOF, http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubRiskMap{
				classifyFn: func(context.Context, riskmap.ClassifyRequest) (riskmap.ClassifyResult, error) {
					return riskmap.ClassifyResult{}, tc.err
				},
			}
			rec := performRequest(http.MethodPost, "/api/v1/riskmap/classify", `{"view":"forecast","month":"2025-01"}`, newRouterUnderTest(t, stubs{riskmap: svc}))
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.code, decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
		})
	}
}

func TestRouter_GetForecastRun(t *testing.T) {
	id := uuid.New()
	svc := &stubRiskMap{
		runFn: func(_ context.Context, got uuid.UUID) (forecast.Run, error) {
			if got == id {
				return forecast.Run{ID: id, Session: "s"}, nil
			}
			return forecast.Run{}, apperrors.New(apperrors.CodeNotFound, "forecast run not found")
		},
	}
	server := newRouterUnderTest(t, stubs{riskmap: svc})

	rec := performRequest(http.MethodGet, "/api/v1/riskmap/forecasts/"+id.String(), "", server)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(http.MethodGet, "/api/v1/riskmap/forecasts/"+uuid.NewString(), "", server)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = performRequest(http.MethodGet, "/api/v1/riskmap/forecasts/not-a-uuid", "", server)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_AlertHistoryLimit(t *testing.T) {
	svc := &stubAlert{
		historyFn: func(_ context.Context, limit int) ([]alert.LogEntry, error) {
			require.Equal(t, 5, limit)
			return []alert.LogEntry{{Subject: "x", Status: alert.StatusSent}}, nil
		},
	}
	server := newRouterUnderTest(t, stubs{alert: svc})

	rec := performRequest(http.MethodGet, "/api/v1/alerts/history?limit=5", "", server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"alerts"`)

	rec = performRequest(http.MethodGet, "/api/v1/alerts/history?limit=-1", "", server)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_RetriesTransientGet(t *testing.T) {
	calls := 0
	svc := &stubRiskMap{
		hierarchyFn: func(context.Context) (riskmap.HierarchyView, error) {
			calls++
			if calls == 1 {
				return riskmap.HierarchyView{}, apperrors.New(apperrors.CodeNotLoaded, "boundary data unavailable")
			}
			return riskmap.HierarchyView{Levels: hierarchy.BoundaryLevels}, nil
		},
	}
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}
	server := newRouterWithConfig(t, cfg, stubs{riskmap: svc})

	rec := performRequest(http.MethodGet, "/api/v1/riskmap/hierarchy", "", server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, calls)
}

func TestRouter_SendAlertIsNotRetried(t *testing.T) {
	calls := 0
	svc := &stubAlert{
		sendFn: func(context.Context, alert.Request) (alert.LogEntry, error) {
			calls++
			return alert.LogEntry{}, apperrors.New(apperrors.CodeUpstream, "mail gateway down")
		},
	}
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond, Exclude: []string{"/api/v1/alerts/send"}}
	server := newRouterWithConfig(t, cfg, stubs{alert: svc})

	rec := performRequest(http.MethodPost, "/api/v1/alerts/send", `{"upazilas":["A"],"emails":["a@example.org"]}`, server)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, 1, calls)
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	server := newRouterWithConfig(t, cfg, stubs{})

	rec := performRequest(http.MethodGet, "/api/v1/riskmap/hierarchy", "", server)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = performRequest(http.MethodGet, "/api/v1/riskmap/hierarchy", "", server)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))

	rec = performRequest(http.MethodGet, "/api/v1/healthz", "", server)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.CORSOrigins = []string{"https://dash.example.org"}
	server := newRouterWithConfig(t, cfg, stubs{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/surveillance/dashboard", nil)
	req.Header.Set("Origin", "https://dash.example.org")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://dash.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-Record-Count")
	require.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestRouter_CORSRejectsUnlistedOrigin(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.CORSOrigins = []string{"https://dash.example.org/"}
	server := newRouterWithConfig(t, cfg, stubs{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/surveillance/export", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, rec.Header().Get("Access-Control-Expose-Headers"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/surveillance/export", nil)
	req.Header.Set("Origin", "https://DASH.example.org")
	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, "https://DASH.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_CORSWithoutOriginsAllowsAny(t *testing.T) {
	server := newRouterWithConfig(t, testConfig(), stubs{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

type stubs struct {
	surveillance surveillance.Service
	riskmap      riskmap.Service
	alert        alert.Service
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
}

func newRouterUnderTest(t *testing.T, s stubs) *http.Server {
	t.Helper()
	return newRouterWithConfig(t, testConfig(), s)
}

func newRouterWithConfig(t *testing.T, cfg *config.Config, s stubs) *http.Server {
	t.Helper()
	if s.surveillance == nil {
		s.surveillance = &stubSurveillance{}
	}
	if s.riskmap == nil {
		s.riskmap = &stubRiskMap{}
	}
	if s.alert == nil {
		s.alert = &stubAlert{}
	}
	handler := NewHandler(s.surveillance, s.riskmap, s.alert, newTestLogger())
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

type stubSurveillance struct {
	dashboardFn func(ctx context.Context, state selection.State) (surveillance.Dashboard, error)
	exportFn    func(ctx context.Context, state selection.State, w io.Writer) (int, error)
	contentType string
}

func (s *stubSurveillance) Hierarchy(context.Context) (surveillance.HierarchyView, error) {
	return surveillance.HierarchyView{}, nil
}

func (s *stubSurveillance) ApplyAction(_ context.Context, req surveillance.ActionRequest) (surveillance.ActionResult, error) {
	return surveillance.ActionResult{State: req.State}, nil
}

func (s *stubSurveillance) Dashboard(ctx context.Context, state selection.State) (surveillance.Dashboard, error) {
	if s.dashboardFn != nil {
		return s.dashboardFn(ctx, state)
	}
	return surveillance.Dashboard{}, nil
}

func (s *stubSurveillance) Export(ctx context.Context, state selection.State, w io.Writer) (int, error) {
	if s.exportFn != nil {
		return s.exportFn(ctx, state, w)
	}
	return 0, nil
}

func (s *stubSurveillance) ExportContentType() string {
	return s.contentType
}

func (s *stubSurveillance) Refresh(context.Context) (surveillance.Summary, error) {
	return surveillance.Summary{}, nil
}

type stubRiskMap struct {
	hierarchyFn func(ctx context.Context) (riskmap.HierarchyView, error)
	runFn       func(ctx context.Context, id uuid.UUID) (forecast.Run, error)
	classifyFn  func(ctx context.Context, req riskmap.ClassifyRequest) (riskmap.ClassifyResult, error)
}

func (s *stubRiskMap) Reload(context.Context) (riskmap.BoundarySummary, error) {
	return riskmap.BoundarySummary{}, nil
}

func (s *stubRiskMap) Hierarchy(ctx context.Context) (riskmap.HierarchyView, error) {
	if s.hierarchyFn != nil {
		return s.hierarchyFn(ctx)
	}
	return riskmap.HierarchyView{}, nil
}

func (s *stubRiskMap) Select(_ context.Context, req riskmap.SelectRequest) (selection.State, error) {
	return req.State, nil
}

func (s *stubRiskMap) Generate(context.Context, riskmap.GenerateRequest) (riskmap.GenerateResult, error) {
	return riskmap.GenerateResult{}, nil
}

func (s *stubRiskMap) Run(ctx context.Context, id uuid.UUID) (forecast.Run, error) {
	if s.runFn != nil {
		return s.runFn(ctx, id)
	}
	return forecast.Run{}, nil
}

func (s *stubRiskMap) Classify(ctx context.Context, req riskmap.ClassifyRequest) (riskmap.ClassifyResult, error) {
	if s.classifyFn != nil {
		return s.classifyFn(ctx, req)
	}
	return riskmap.ClassifyResult{}, nil
}

type stubAlert struct {
	sendFn    func(ctx context.Context, req alert.Request) (alert.LogEntry, error)
	historyFn func(ctx context.Context, limit int) ([]alert.LogEntry, error)
}

func (s *stubAlert) Preview(_ context.Context, req alert.Request) (alert.Message, error) {
	return alert.Message{Emails: req.Emails, Subject: req.Subject}, nil
}

func (s *stubAlert) Send(ctx context.Context, req alert.Request) (alert.LogEntry, error) {
	if s.sendFn != nil {
		return s.sendFn(ctx, req)
	}
	return alert.LogEntry{}, nil
}

func (s *stubAlert) History(ctx context.Context, limit int) ([]alert.LogEntry, error) {
	if s.historyFn != nil {
		return s.historyFn(ctx, limit)
	}
	return nil, nil
}
