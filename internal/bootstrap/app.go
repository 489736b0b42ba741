package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/csdewars/ewars/internal/domain/riskmap"
	"github.com/csdewars/ewars/internal/infra/config"
	"github.com/csdewars/ewars/internal/infra/geodata"
)

// App encapsulates the HTTP server lifecycle and the boundary watcher.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	server  *http.Server
	riskmap riskmap.Service
	watcher *geodata.Watcher
}

// NewApp is used by Wire to build the runnable app. watcher may be nil.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, riskmapSvc riskmap.Service, watcher *geodata.Watcher) *App {
	return &App{
		cfg:     cfg,
		logger:  logger.With("component", "bootstrap"),
		server:  server,
		riskmap: riskmapSvc,
		watcher: watcher,
	}
}

// Run loads boundaries, starts the HTTP server and blocks until shutdown.
// A failed boundary load is not fatal: risk map endpoints answer not_loaded
// until a reload succeeds.
func (a *App) Run(ctx context.Context) error {
	if summary, err := a.riskmap.Reload(ctx); err != nil {
		a.logger.Warn("initial boundary load failed", "error", err)
	} else {
		a.logger.Info("boundaries loaded", "features", summary.Features, "upazilas", summary.Upazilas)
	}

	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			a.logger.Warn("boundary watcher not started", "error", err)
		}
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
