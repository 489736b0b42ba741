//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/csdewars/ewars/internal/bootstrap"
	"github.com/csdewars/ewars/internal/domain/alert"
	"github.com/csdewars/ewars/internal/domain/forecast"
	"github.com/csdewars/ewars/internal/domain/riskmap"
	"github.com/csdewars/ewars/internal/domain/surveillance"
	"github.com/csdewars/ewars/internal/infra/config"
	httpiface "github.com/csdewars/ewars/internal/interface/http"
	"github.com/csdewars/ewars/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideSurveillanceConfig,
		provideSubmissionSource,
		provideSnapshotCache,
		provideRecordWriter,
		provideObjectStore,
		provideBoundarySource,
		provideActualSource,
		provideForecastConfig,
		providePredictor,
		provideGenerator,
		provideHistory,
		provideRunRepository,
		provideLogRepository,
		provideRiskMapConfig,
		provideAlertConfig,
		provideMailer,
		provideBoundaryWatcher,
		forecast.NewOrchestrator,
		surveillance.NewService,
		riskmap.NewService,
		alert.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
