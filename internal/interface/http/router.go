package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/csdewars/ewars/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.CORSOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	api := router.Group("/api/v1")
	{
		api.GET("/healthz", handler.Health)

		surv := api.Group("/surveillance")
		surv.GET("/hierarchy", handler.SurveillanceHierarchy)
		surv.POST("/selection", handler.SurveillanceSelection)
		surv.POST("/dashboard", handler.SurveillanceDashboard)
		surv.POST("/export", handler.SurveillanceExport)
		surv.POST("/refresh", handler.SurveillanceRefresh)

		risk := api.Group("/riskmap")
		risk.GET("/hierarchy", handler.RiskMapHierarchy)
		risk.POST("/selection", handler.RiskMapSelection)
		risk.POST("/forecasts", handler.GenerateForecasts)
		risk.GET("/forecasts/:runID", handler.GetForecastRun)
		risk.POST("/classify", handler.Classify)

		alerts := api.Group("/alerts")
		alerts.POST("/preview", handler.PreviewAlert)
		alerts.POST("/send", handler.SendAlert)
		alerts.GET("/history", handler.AlertHistory)

		api.POST("/geodata/reload", handler.ReloadGeoData)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
