package config

import (
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    Server    `yaml:"server"`
	Log       Log       `yaml:"log"`
	Database  Database  `yaml:"database"`
	Analytics Analytics `yaml:"analytics"`
	Pipeline  Pipeline  `yaml:"pipeline"`
	Instagram Instagram `yaml:"instagram"`
	S3        S3        `yaml:"s3"`
	Metrics   Metrics   `yaml:"metrics"`
}

// Server holds HTTP server configuration
type Server struct {
	Host           string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port           string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"150s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" env-default:"30s"`
}

// Address returns the full server address
func (s Server) Address() string {
	return s.Host + ":" + s.Port
}

// Log holds logging configuration
type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// SlogLevel maps the configured level to slog; unknown values mean info
func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Database holds database configuration.
// An empty DSN selects the in-memory repository seeded with sample posts.
type Database struct {
	PostgresDSN string `yaml:"postgres_dsn" env:"DATABASE_URL"`

	// Connection pool settings
	MaxConns     int32         `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"25"`
	MinConns     int32         `yaml:"min_conns" env:"DB_MIN_CONNS" env-default:"5"`
	ConnLifetime time.Duration `yaml:"conn_lifetime" env:"DB_CONN_LIFETIME" env-default:"5m"`
}

// Analytics holds analytics engine configuration
type Analytics struct {
	// Margin is the relative threshold for strengths and weaknesses (0.10 = 10%)
	Margin float64 `yaml:"margin" env:"ANALYTICS_MARGIN" env-default:"0.10"`
	// ExcludeSubject drops the analyzed post from its own baselines
	ExcludeSubject bool `yaml:"exclude_subject" env:"ANALYTICS_EXCLUDE_SUBJECT" env-default:"false"`
	// BatchLimit bounds concurrent analyses in a batch request
	BatchLimit int `yaml:"batch_limit" env:"ANALYTICS_BATCH_LIMIT" env-default:"8"`
}

// Pipeline holds content pipeline runtime configuration.
// An empty BaseURL disables content generation.
type Pipeline struct {
	BaseURL     string        `yaml:"base_url" env:"PIPELINE_BASE_URL"`
	APIVersion  string        `yaml:"api_version" env:"PIPELINE_API_VERSION" env-default:"v1"`
	APIKey      string        `yaml:"api_key" env:"PIPELINE_API_KEY"`
	Timeout     time.Duration `yaml:"timeout" env:"PIPELINE_TIMEOUT" env-default:"120s"`
	RPS         float64       `yaml:"rps" env:"PIPELINE_RPS" env-default:"1"`
	Burst       int           `yaml:"burst" env:"PIPELINE_BURST" env-default:"2"`
	MaxFailures uint32        `yaml:"max_failures" env:"PIPELINE_MAX_FAILURES" env-default:"3"`
	OpenTimeout time.Duration `yaml:"open_timeout" env:"PIPELINE_OPEN_TIMEOUT" env-default:"60s"`
}

// Enabled reports whether a pipeline runtime is configured
func (p Pipeline) Enabled() bool {
	return p.BaseURL != ""
}

// Instagram holds Instagram Graph API configuration for post imports
type Instagram struct {
	BaseURL    string        `yaml:"base_url" env:"INSTAGRAM_BASE_URL" env-default:"https://graph.instagram.com"`
	APIVersion string        `yaml:"api_version" env:"INSTAGRAM_API_VERSION" env-default:"v21.0"`
	Timeout    time.Duration `yaml:"timeout" env:"INSTAGRAM_TIMEOUT" env-default:"30s"`
}

// S3 holds S3/MinIO storage configuration for generated assets
type S3 struct {
	Enabled         bool   `yaml:"enabled" env:"S3_ENABLED" env-default:"false"`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET" env-default:"assets"`
	Region          string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	PublicURL       string `yaml:"public_url" env:"S3_PUBLIC_URL" env-default:"http://localhost:9000/assets"`
	Prefix          string `yaml:"prefix" env:"S3_PREFIX" env-default:"generated"`
}

// Metrics holds Prometheus configuration
type Metrics struct {
	Namespace string `yaml:"namespace" env:"METRICS_NAMESPACE" env-default:"social_insights"`
}

// MustLoad loads configuration from environment and exits on error
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Load reads configuration from the environment, loading .env first if present
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
