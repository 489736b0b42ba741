package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	GeoData     GeoDataConfig     `yaml:"geodata"`
	Survey      SurveyConfig      `yaml:"survey"`
	Forecast    ForecastConfig    `yaml:"forecast"`
	Actuals     ActualsConfig     `yaml:"actuals"`
	Alert       AlertConfig       `yaml:"alert"`
	Storage     StorageConfig     `yaml:"storage"`
	Cache       CacheConfig       `yaml:"cache"`
	ObjectStore ObjectStoreConfig `yaml:"objectStore"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	CORSOrigins  []string        `yaml:"corsOrigins"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	Retry        RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// GeoDataConfig locates the upazila boundary FeatureCollection. When ObjectKey
// is set the file is read from the object store instead of Path.
type GeoDataConfig struct {
	Path      string        `yaml:"path"`
	ObjectKey string        `yaml:"objectKey"`
	Watch     bool          `yaml:"watch"`
	Debounce  time.Duration `yaml:"debounce"`
}

// SurveyConfig locates the CHW survey form API.
type SurveyConfig struct {
	BaseURL  string        `yaml:"baseUrl"`
	FormID   string        `yaml:"formId"`
	Token    string        `yaml:"token"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cacheTtl"`
}

// ForecastConfig points at the prediction service.
type ForecastConfig struct {
	PredictURL     string        `yaml:"predictUrl"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	MaxRegions     int           `yaml:"maxRegions"`
}

// ActualsConfig points at the LMIS reported-case feed.
type ActualsConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"`
}

// AlertConfig drives alert composition and the mail gateway.
type AlertConfig struct {
	MailURL           string        `yaml:"mailUrl"`
	Timeout           time.Duration `yaml:"timeout"`
	DefaultRecipients []string      `yaml:"defaultRecipients"`
	DefaultSubject    string        `yaml:"defaultSubject"`
	Threshold         float64       `yaml:"threshold"`
}

// StorageConfig selects the history store. Postgres wins over SQLite; both
// empty means in-memory.
type StorageConfig struct {
	Postgres   PostgresConfig `yaml:"postgres"`
	SQLitePath string         `yaml:"sqlitePath"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// CacheConfig contains connection information for the submission cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// ObjectStoreConfig locates the S3-compatible bucket. An empty endpoint uses
// the local directory store rooted at Dir.
type ObjectStoreConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Dir       string `yaml:"dir"`
}

// Load reads configuration from a YAML file, an optional .env file and
// environment variables, in that order of increasing precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString("HTTP_ADDRESS", &cfg.HTTP.Address)
	setList("HTTP_CORS_ORIGINS", &cfg.HTTP.CORSOrigins)
	setBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	setInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	setInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	setBool("HTTP_RETRY_ENABLED", &cfg.HTTP.Retry.Enabled)
	setInt("HTTP_RETRY_MAX_ATTEMPTS", &cfg.HTTP.Retry.MaxAttempts)
	setDuration("HTTP_RETRY_BASE_BACKOFF", &cfg.HTTP.Retry.BaseBackoff)

	setString("GEODATA_PATH", &cfg.GeoData.Path)
	setString("GEODATA_OBJECT_KEY", &cfg.GeoData.ObjectKey)
	setBool("GEODATA_WATCH", &cfg.GeoData.Watch)

	setString("SURVEY_BASE_URL", &cfg.Survey.BaseURL)
	setString("SURVEY_FORM_ID", &cfg.Survey.FormID)
	setString("SURVEY_TOKEN", &cfg.Survey.Token)
	setDuration("SURVEY_CACHE_TTL", &cfg.Survey.CacheTTL)

	setString("FORECAST_PREDICT_URL", &cfg.Forecast.PredictURL)
	setDuration("FORECAST_REQUEST_TIMEOUT", &cfg.Forecast.RequestTimeout)
	setInt("FORECAST_MAX_REGIONS", &cfg.Forecast.MaxRegions)

	setString("ACTUALS_BASE_URL", &cfg.Actuals.BaseURL)
	setString("ACTUALS_PATH", &cfg.Actuals.Path)

	setString("ALERT_MAIL_URL", &cfg.Alert.MailURL)
	setList("ALERT_DEFAULT_RECIPIENTS", &cfg.Alert.DefaultRecipients)
	setString("ALERT_DEFAULT_SUBJECT", &cfg.Alert.DefaultSubject)
	setFloat("ALERT_THRESHOLD", &cfg.Alert.Threshold)

	setString("POSTGRES_DSN", &cfg.Storage.Postgres.DSN)
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.MaxConns = int32(parsed)
		}
	}
	setString("SQLITE_PATH", &cfg.Storage.SQLitePath)

	setBool("VALKEY_ENABLED", &cfg.Cache.Enabled)
	setString("VALKEY_ADDR", &cfg.Cache.Addr)

	setString("OBJECT_STORE_ENDPOINT", &cfg.ObjectStore.Endpoint)
	setString("OBJECT_STORE_ACCESS_KEY", &cfg.ObjectStore.AccessKey)
	setString("OBJECT_STORE_SECRET_KEY", &cfg.ObjectStore.SecretKey)
	setString("OBJECT_STORE_BUCKET", &cfg.ObjectStore.Bucket)
	setString("OBJECT_STORE_REGION", &cfg.ObjectStore.Region)
	setString("OBJECT_STORE_DIR", &cfg.ObjectStore.Dir)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setList(key string, dst *[]string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             40,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/riskmap/forecasts",
					"/api/v1/alerts/send",
					"/api/v1/surveillance/refresh",
					"/api/v1/geodata/reload",
				},
			},
		},
		GeoData: GeoDataConfig{
			Path:     "data/upazila_simplified5.json",
			Watch:    true,
			Debounce: 500 * time.Millisecond,
		},
		Survey: SurveyConfig{
			BaseURL:  "https://admin2.commicplan.com/api/api",
			FormID:   "1079",
			Timeout:  30 * time.Second,
			CacheTTL: 10 * time.Minute,
		},
		Forecast: ForecastConfig{
			PredictURL:     "http://localhost:8000",
			RequestTimeout: 20 * time.Second,
			MaxRegions:     100,
		},
		Actuals: ActualsConfig{
			BaseURL: "http://localhost:8000",
			Path:    "/lmis/admin/mis-api-data",
			Timeout: 20 * time.Second,
		},
		Alert: AlertConfig{
			MailURL:        "http://localhost:5000",
			Timeout:        15 * time.Second,
			DefaultSubject: "Malaria Prediction Alert",
			Threshold:      100,
		},
		Storage: StorageConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Cache: CacheConfig{
			Prefix: "ewars",
		},
		ObjectStore: ObjectStoreConfig{
			Bucket: "ewars",
			Dir:    "data/objects",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if strings.TrimSpace(c.GeoData.Path) == "" && strings.TrimSpace(c.GeoData.ObjectKey) == "" {
		return errors.New("geodata.path or geodata.objectKey must be set")
	}
	if strings.TrimSpace(c.Survey.BaseURL) == "" {
		return errors.New("survey.baseUrl cannot be empty")
	}
	if c.Survey.CacheTTL < 0 {
		return errors.New("survey.cacheTtl cannot be negative")
	}
	if strings.TrimSpace(c.Forecast.PredictURL) == "" {
		return errors.New("forecast.predictUrl cannot be empty")
	}
	if c.Forecast.RequestTimeout <= 0 {
		return errors.New("forecast.requestTimeout must be positive")
	}
	if c.Forecast.MaxRegions < 0 {
		return errors.New("forecast.maxRegions cannot be negative")
	}
	if strings.TrimSpace(c.Actuals.BaseURL) == "" {
		return errors.New("actuals.baseUrl cannot be empty")
	}
	if strings.TrimSpace(c.Alert.MailURL) == "" {
		return errors.New("alert.mailUrl cannot be empty")
	}
	if c.Alert.Threshold <= 0 {
		return errors.New("alert.threshold must be positive")
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Addr) == "" {
		return errors.New("cache.addr cannot be empty when valkey cache is enabled")
	}
	if c.ObjectStore.Endpoint != "" && strings.TrimSpace(c.ObjectStore.Bucket) == "" {
		return errors.New("objectStore.bucket cannot be empty when an endpoint is set")
	}
	if c.ObjectStore.Endpoint == "" && strings.TrimSpace(c.ObjectStore.Dir) == "" {
		return errors.New("objectStore.dir cannot be empty without an endpoint")
	}
	return nil
}
