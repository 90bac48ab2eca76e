package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/AntonStoeckl/synthetic-sales-generator/sales"
)

// Adapter types selectable through DB_ADAPTER.
const (
	AdapterPGXPool = "pgx.pool"
	AdapterSQLDB   = "sql.db"
	AdapterSQLXDB  = "sqlx.db"
	AdapterSQLite  = "sqlite"
)

// Metrics backends selectable through METRICS_BACKEND.
const (
	MetricsBackendPrometheus = "prometheus"
	MetricsBackendOTel       = "otel"
)

// Log formats selectable through LOG_FORMAT.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
	LogFormatOTel = "otel"
)

// Config holds every setting of the sales generator.
type Config struct {
	DBHost           string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort           int           `envconfig:"DB_PORT" default:"5432"`
	DBUser           string        `envconfig:"DB_USER" default:"electrored"`
	DBPassword       string        `envconfig:"DB_PASSWORD" default:"electrored123"`
	DBName           string        `envconfig:"DB_NAME" default:"electrored"`
	DBSSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	DBAdapter        string        `envconfig:"DB_ADAPTER" default:"pgx.pool"`
	DBConnectTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`
	SQLitePath       string        `envconfig:"SQLITE_PATH" default:"sales.db"`

	NotifyHost    string        `envconfig:"SOAP_HOST" default:"soap-service"`
	NotifyPort    int           `envconfig:"SOAP_PORT" default:"8080"`
	NotifyTimeout time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"5s"`

	InitialBurst int           `envconfig:"GENERATOR_INITIAL_BURST" default:"100"`
	Interval     time.Duration `envconfig:"GENERATOR_INTERVAL" default:"5s"`
	MinBatchSize int           `envconfig:"GENERATOR_MIN_BATCH" default:"1"`
	MaxBatchSize int           `envconfig:"GENERATOR_MAX_BATCH" default:"5"`

	MetricsAddr    string `envconfig:"METRICS_ADDR"`
	MetricsBackend string `envconfig:"METRICS_BACKEND" default:"prometheus"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat      string `envconfig:"LOG_FORMAT" default:"text"`
}

// SinkConfig holds the settings of the mock notification sink.
type SinkConfig struct {
	Addr        string  `envconfig:"SINK_ADDR" default:":8080"`
	FailureRate float64 `envconfig:"SINK_FAILURE_RATE" default:"0"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Join(sales.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports every invalid setting, each joined with sales.ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error

	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", sales.ErrInvalidConfig, fmt.Sprintf(format, args...)))
	}

	switch c.DBAdapter {
	case AdapterPGXPool, AdapterSQLDB, AdapterSQLXDB:
		if c.DBHost == "" {
			invalid("DB_HOST must not be empty")
		}

		if c.DBPort <= 0 || c.DBPort > 65535 {
			invalid("DB_PORT %d is out of range", c.DBPort)
		}

	case AdapterSQLite:
		if c.SQLitePath == "" {
			invalid("SQLITE_PATH must not be empty")
		}

	default:
		invalid("unknown DB_ADAPTER %q", c.DBAdapter)
	}

	if c.DBConnectTimeout <= 0 {
		invalid("DB_CONNECT_TIMEOUT must be positive")
	}

	if c.NotifyHost == "" {
		invalid("SOAP_HOST must not be empty")
	}

	if c.NotifyPort <= 0 || c.NotifyPort > 65535 {
		invalid("SOAP_PORT %d is out of range", c.NotifyPort)
	}

	if c.NotifyTimeout <= 0 {
		invalid("NOTIFY_TIMEOUT must be positive")
	}

	if c.InitialBurst < 0 {
		invalid("GENERATOR_INITIAL_BURST must not be negative")
	}

	if c.Interval <= 0 {
		invalid("GENERATOR_INTERVAL must be positive")
	}

	if c.MinBatchSize < 1 {
		invalid("GENERATOR_MIN_BATCH must be at least 1")
	}

	if c.MaxBatchSize < c.MinBatchSize {
		invalid("GENERATOR_MAX_BATCH %d is below GENERATOR_MIN_BATCH %d", c.MaxBatchSize, c.MinBatchSize)
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		invalid("LOG_LEVEL %q: %v", c.LogLevel, err)
	}

	if c.MetricsBackend != MetricsBackendPrometheus && c.MetricsBackend != MetricsBackendOTel {
		invalid("unknown METRICS_BACKEND %q", c.MetricsBackend)
	}

	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatOTel {
		invalid("unknown LOG_FORMAT %q", c.LogFormat)
	}

	return errors.Join(errs...)
}

// LoadSink reads the notification sink configuration from the environment and validates it.
func LoadSink() (SinkConfig, error) {
	var cfg SinkConfig

	if err := envconfig.Process("", &cfg); err != nil {
		return SinkConfig{}, errors.Join(sales.ErrInvalidConfig, err)
	}

	if cfg.Addr == "" {
		return SinkConfig{}, fmt.Errorf("%w: SINK_ADDR must not be empty", sales.ErrInvalidConfig)
	}

	if cfg.FailureRate < 0 || cfg.FailureRate > 1 {
		return SinkConfig{}, fmt.Errorf("%w: SINK_FAILURE_RATE %v is outside [0,1]", sales.ErrInvalidConfig, cfg.FailureRate)
	}

	return cfg, nil
}

// NotificationBaseURL returns the base URL of the payment notification endpoint.
func (c Config) NotificationBaseURL() string {
	return "http://" + net.JoinHostPort(c.NotifyHost, strconv.Itoa(c.NotifyPort))
}
