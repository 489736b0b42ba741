package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/csdewars/ewars/internal/domain/alert"
	"github.com/csdewars/ewars/internal/domain/forecast"
	"github.com/csdewars/ewars/internal/domain/riskmap"
	"github.com/csdewars/ewars/internal/domain/surveillance"
	"github.com/csdewars/ewars/internal/infra/config"
	"github.com/csdewars/ewars/internal/infra/export"
	"github.com/csdewars/ewars/internal/infra/geodata"
	"github.com/csdewars/ewars/internal/infra/history"
	"github.com/csdewars/ewars/internal/infra/objectstore"
	"github.com/csdewars/ewars/internal/infra/snapshotcache"
	"github.com/csdewars/ewars/internal/infra/upstream/lmis"
	"github.com/csdewars/ewars/internal/infra/upstream/mailer"
	"github.com/csdewars/ewars/internal/infra/upstream/predictor"
	"github.com/csdewars/ewars/internal/infra/upstream/survey"
)

// historyRepository is satisfied by every history backend.
type historyRepository interface {
	forecast.RunRepository
	alert.LogRepository
}

func provideSurveillanceConfig(cfg *config.Config) surveillance.Config {
	return surveillance.Config{
		CacheKey: "submissions:" + cfg.Survey.FormID,
		CacheTTL: cfg.Survey.CacheTTL,
	}
}

func provideSubmissionSource(cfg *config.Config) surveillance.SubmissionSource {
	return survey.NewClient(survey.Config{
		BaseURL: cfg.Survey.BaseURL,
		FormID:  cfg.Survey.FormID,
		Token:   cfg.Survey.Token,
		Timeout: cfg.Survey.Timeout,
	})
}

func provideSnapshotCache(cfg *config.Config, logger *slog.Logger) surveillance.SnapshotCache {
	if cfg.Cache.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return snapshotcache.NewMemoryCache()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return snapshotcache.NewMemoryCache()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("valkey snapshot cache enabled", "addr", cfg.Cache.Addr)
			return snapshotcache.NewValkeyCache(client, cfg.Cache.Prefix)
		}
	}
	return snapshotcache.NewMemoryCache()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideRecordWriter() surveillance.RecordWriter {
	return export.NewXLSXWriter()
}

func provideObjectStore(cfg *config.Config, logger *slog.Logger) (objectstore.Store, error) {
	oc := cfg.ObjectStore
	if strings.TrimSpace(oc.Endpoint) != "" {
		store, err := objectstore.NewMinioStore(objectstore.MinioConfig{
			Endpoint:  oc.Endpoint,
			AccessKey: oc.AccessKey,
			SecretKey: oc.SecretKey,
			Bucket:    oc.Bucket,
			Region:    oc.Region,
		}, logger)
		if err == nil {
			logger.Info("object store enabled", "endpoint", oc.Endpoint, "bucket", oc.Bucket)
			return store, nil
		}
		logger.Error("object store init failed, using local directory", "error", err)
	}
	return objectstore.NewDirStore(oc.Dir)
}

func provideBoundarySource(cfg *config.Config, store objectstore.Store) riskmap.BoundarySource {
	if key := strings.TrimSpace(cfg.GeoData.ObjectKey); key != "" {
		return geodata.NewObjectSource(store, key)
	}
	return geodata.NewFileSource(cfg.GeoData.Path)
}

func provideActualSource(cfg *config.Config, logger *slog.Logger) riskmap.ActualSource {
	return lmis.NewClient(cfg.Actuals.BaseURL, cfg.Actuals.Path, cfg.Actuals.Timeout, logger)
}

func provideForecastConfig(cfg *config.Config) forecast.Config {
	return forecast.Config{
		RequestTimeout: cfg.Forecast.RequestTimeout,
		MaxRegions:     cfg.Forecast.MaxRegions,
	}
}

func providePredictor(cfg *config.Config) forecast.Predictor {
	return predictor.NewClient(cfg.Forecast.PredictURL, cfg.Forecast.RequestTimeout)
}

func provideGenerator(o *forecast.Orchestrator) riskmap.Generator {
	return o
}

func provideHistory(cfg *config.Config, logger *slog.Logger) historyRepository {
	if repo := openPostgresHistory(cfg, logger); repo != nil {
		return repo
	}
	if path := strings.TrimSpace(cfg.Storage.SQLitePath); path != "" {
		repo, err := history.OpenSQLite(path)
		if err == nil {
			logger.Info("sqlite history enabled", "path", path)
			return repo
		}
		logger.Error("failed to open sqlite history, using memory repository", "error", err)
	}
	logger.Info("history store not configured, using memory repository")
	return history.NewMemoryRepository()
}

func openPostgresHistory(cfg *config.Config, logger *slog.Logger) *history.PostgresRepository {
	dsn := strings.TrimSpace(cfg.Storage.Postgres.DSN)
	if dsn == "" {
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, skipping postgres history", "error", err)
		return nil
	}
	if cfg.Storage.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Storage.Postgres.MaxConns
	}
	if cfg.Storage.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Storage.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, skipping postgres history", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, skipping postgres history", "error", err)
		pool.Close()
		return nil
	}
	repo := history.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("postgres schema setup failed, skipping postgres history", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres history enabled")
	return repo
}

func provideRunRepository(repo historyRepository) forecast.RunRepository {
	return repo
}

func provideLogRepository(repo historyRepository) alert.LogRepository {
	return repo
}

func provideRiskMapConfig(cfg *config.Config) riskmap.Config {
	return riskmap.Config{DefaultThreshold: cfg.Alert.Threshold}
}

func provideAlertConfig(cfg *config.Config) alert.Config {
	return alert.Config{
		DefaultRecipients: cfg.Alert.DefaultRecipients,
		DefaultSubject:    cfg.Alert.DefaultSubject,
		RiskThreshold:     cfg.Alert.Threshold,
	}
}

func provideMailer(cfg *config.Config) alert.Mailer {
	return mailer.NewClient(cfg.Alert.MailURL, cfg.Alert.Timeout)
}

// provideBoundaryWatcher returns nil when boundaries do not come from a local
// file or watching is disabled.
func provideBoundaryWatcher(cfg *config.Config, svc riskmap.Service, logger *slog.Logger) *geodata.Watcher {
	if !cfg.GeoData.Watch || strings.TrimSpace(cfg.GeoData.ObjectKey) != "" {
		return nil
	}
	reload := func(ctx context.Context) error {
		_, err := svc.Reload(ctx)
		return err
	}
	return geodata.NewWatcher(cfg.GeoData.Path, cfg.GeoData.Debounce, reload, logger)
}
