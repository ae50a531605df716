package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Matrix MatrixConfig `yaml:"matrix"`
	Upload UploadConfig `yaml:"upload"`
	ZipRef ZipRefConfig `yaml:"zipref"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// StoreConfig holds dataset session store configuration
type StoreConfig struct {
	Type              string `yaml:"type"` // "memory" or "redis"
	RedisURL          string `yaml:"redis_url"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
}

// SessionTTL returns the configured session lifetime as a duration
func (c StoreConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// MatrixConfig holds scoring and classification defaults.
// Thresholds are fixed constants, not dataset-relative; requests may
// override them per evaluation but never mutate these defaults.
type MatrixConfig struct {
	AdoptionWeight float64 `yaml:"adoption_weight"`
	StageWeight    float64 `yaml:"stage_weight"`
	ScoreThreshold float64 `yaml:"score_threshold"` // fraction of the scale maximum
	StageThreshold float64 `yaml:"stage_threshold"`
	ScaleMax       float64 `yaml:"scale_max"` // 1 or 100
}

// UploadConfig holds dataset upload limits
type UploadConfig struct {
	MaxFileSizeMB int `yaml:"max_file_size_mb"`
	MaxRows       int `yaml:"max_rows"`
	MaxColumns    int `yaml:"max_columns"`
}

// MaxFileSize returns the upload size limit in bytes
func (c UploadConfig) MaxFileSize() int64 {
	return int64(c.MaxFileSizeMB) << 20
}

// ZipRefConfig holds ZIP reference scraper configuration
type ZipRefConfig struct {
	BaseURL        string `yaml:"base_url"`
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
}

// Timeout returns the configured timeout as a duration
func (c ZipRefConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the built-in configuration, the same values Load
// applies when a field is absent from the file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8051
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "memory"
	}
	if cfg.Store.SessionTTLMinutes == 0 {
		cfg.Store.SessionTTLMinutes = 60
	}
	if cfg.Matrix.AdoptionWeight == 0 && cfg.Matrix.StageWeight == 0 {
		cfg.Matrix.AdoptionWeight = 0.5
		cfg.Matrix.StageWeight = 0.5
	}
	if cfg.Matrix.ScoreThreshold == 0 {
		cfg.Matrix.ScoreThreshold = 0.65
	}
	if cfg.Matrix.StageThreshold == 0 {
		cfg.Matrix.StageThreshold = 2.0
	}
	if cfg.Matrix.ScaleMax == 0 {
		cfg.Matrix.ScaleMax = 1.0
	}
	if cfg.Upload.MaxFileSizeMB == 0 {
		cfg.Upload.MaxFileSizeMB = 25
	}
	if cfg.Upload.MaxRows == 0 {
		cfg.Upload.MaxRows = 50000
	}
	if cfg.Upload.MaxColumns == 0 {
		cfg.Upload.MaxColumns = 256
	}
	if cfg.ZipRef.BaseURL == "" {
		cfg.ZipRef.BaseURL = "https://www.zipdatamaps.com/en/us/zip-list/msa"
	}
	if cfg.ZipRef.UserAgent == "" {
		cfg.ZipRef.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	}
	if cfg.ZipRef.TimeoutSeconds == 0 {
		cfg.ZipRef.TimeoutSeconds = 15
	}
	if cfg.ZipRef.MaxRetries == 0 {
		cfg.ZipRef.MaxRetries = 3
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so local settings can live in .env and real env vars win in containers.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		// A missing file is fine; the CLIs run far from any config dir.
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = Default()
	}

	// Override with environment variables if present
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Store.RedisURL = v
		cfg.Store.Type = "redis"
	}
	if v := os.Getenv("STORE_TYPE"); v != "" {
		cfg.Store.Type = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("UPLOAD_MAX_FILE_SIZE_MB"); v != "" {
		if mb, err := strconv.Atoi(v); err == nil && mb > 0 {
			cfg.Upload.MaxFileSizeMB = mb
		}
	}
	if v := os.Getenv("ZIPREF_BASE_URL"); v != "" {
		cfg.ZipRef.BaseURL = v
	}
	if v := os.Getenv("ZIPREF_USER_AGENT"); v != "" {
		cfg.ZipRef.UserAgent = v
	}

	return cfg, nil
}
