package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/csdewars/ewars/internal/domain/alert"
	"github.com/csdewars/ewars/internal/domain/riskmap"
	"github.com/csdewars/ewars/internal/domain/selection"
	"github.com/csdewars/ewars/internal/domain/surveillance"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	surveillanceSvc surveillance.Service
	riskmapSvc      riskmap.Service
	alertSvc        alert.Service
	logger          *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(surveillanceSvc surveillance.Service, riskmapSvc riskmap.Service, alertSvc alert.Service, logger *slog.Logger) *Handler {
	return &Handler{
		surveillanceSvc: surveillanceSvc,
		riskmapSvc:      riskmapSvc,
		alertSvc:        alertSvc,
		logger:          logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SurveillanceHierarchy returns the submission hierarchy and the initial selection.
func (h *Handler) SurveillanceHierarchy(c *gin.Context) {
	view, err := h.surveillanceSvc.Hierarchy(c.Request.Context())
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

// SurveillanceSelection applies one selection action.
func (h *Handler) SurveillanceSelection(c *gin.Context) {
	var req surveillance.ActionRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.surveillanceSvc.ApplyAction(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// SurveillanceDashboard returns metrics, points and options for a selection.
func (h *Handler) SurveillanceDashboard(c *gin.Context) {
	var state selection.State
	if !bindJSON(c, &state) {
		return
	}
	dashboard, err := h.surveillanceSvc.Dashboard(c.Request.Context(), state)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// SurveillanceExport streams the filtered records as a spreadsheet.
func (h *Handler) SurveillanceExport(c *gin.Context) {
	var state selection.State
	if !bindJSON(c, &state) {
		return
	}
	var buf bytes.Buffer
	n, err := h.surveillanceSvc.Export(c.Request.Context(), state, &buf)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	filename := fmt.Sprintf("ewars-submissions-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header(headerContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Header(headerRecordCount, strconv.Itoa(n))
	c.Data(http.StatusOK, h.surveillanceSvc.ExportContentType(), buf.Bytes())
}

// SurveillanceRefresh refetches submissions, bypassing the cache.
func (h *Handler) SurveillanceRefresh(c *gin.Context) {
	summary, err := h.surveillanceSvc.Refresh(c.Request.Context())
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RiskMapHierarchy returns the boundary hierarchy.
func (h *Handler) RiskMapHierarchy(c *gin.Context) {
	view, err := h.riskmapSvc.Hierarchy(c.Request.Context())
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

// RiskMapSelection applies a full-cascade action over the boundary hierarchy.
func (h *Handler) RiskMapSelection(c *gin.Context) {
	var req riskmap.SelectRequest
	if !bindJSON(c, &req) {
		return
	}
	state, err := h.riskmapSvc.Select(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, state)
}

// GenerateForecasts runs the prediction fan-out.
func (h *Handler) GenerateForecasts(c *gin.Context) {
	var req riskmap.GenerateRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.riskmapSvc.Generate(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetForecastRun returns a stored run.
func (h *Handler) GetForecastRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("runID"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "runID must be a UUID", err))
		return
	}
	run, err := h.riskmapSvc.Run(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, run)
}

// Classify returns the classified map layer.
func (h *Handler) Classify(c *gin.Context) {
	var req riskmap.ClassifyRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.riskmapSvc.Classify(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReloadGeoData reloads the boundary file.
func (h *Handler) ReloadGeoData(c *gin.Context) {
	summary, err := h.riskmapSvc.Reload(c.Request.Context())
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// PreviewAlert composes an alert without sending it.
func (h *Handler) PreviewAlert(c *gin.Context) {
	var req alert.Request
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.alertSvc.Preview(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, msg)
}

// SendAlert dispatches an alert and returns the recorded entry.
func (h *Handler) SendAlert(c *gin.Context) {
	var req alert.Request
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.alertSvc.Send(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, entry)
}

// AlertHistory lists recent dispatches.
func (h *Handler) AlertHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer", err))
			return
		}
		limit = parsed
	}
	entries, err := h.alertSvc.History(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": entries})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return false
	}
	return true
}
