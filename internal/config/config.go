// Package config provides configuration loading and structs for the recommender.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Recommend RecommendConfig `yaml:"recommend"`
	Chart     ChartConfig     `yaml:"chart"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host               string   `yaml:"host"`
	Port               int      `yaml:"port"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	// RateLimitPerMinute caps recommendation requests per client IP. Zero disables the limit.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

// Snapshot sources accepted in storage.source.
const (
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
	SourceFile     = "file"
)

// StorageConfig selects where the recipe snapshot is loaded from.
type StorageConfig struct {
	Source       string `yaml:"source"`
	DatabasePath string `yaml:"database_path"`
	// PostgresDSNEnv names the environment variable holding the PostgreSQL connection string.
	PostgresDSNEnv string `yaml:"postgres_dsn_env"`
	// SnapshotPath is the embedding file used by the file source and written by export.
	SnapshotPath string `yaml:"snapshot_path"`
}

// EmbeddingConfig holds text encoder settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`

	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RecommendConfig holds request and enrichment limits.
type RecommendConfig struct {
	DefaultK int `yaml:"default_k"`
	MaxK     int `yaml:"max_k"`
	// RenderWorkers bounds chart rendering within one request.
	RenderWorkers int `yaml:"render_workers"`
	// MaxConcurrentRenders bounds chart rendering across all requests.
	MaxConcurrentRenders int `yaml:"max_concurrent_renders"`
}

// ChartConfig holds nutrition chart settings.
type ChartConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.SnapshotPath = expandPath(cfg.Storage.SnapshotPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)

	return &cfg, nil
}

// Validate rejects settings that defaults cannot repair.
func Validate(cfg *Config) error {
	switch cfg.Storage.Source {
	case SourceSQLite, SourcePostgres, SourceFile:
	default:
		return fmt.Errorf("invalid storage.source %q (supported: sqlite, postgres, file)", cfg.Storage.Source)
	}
	if cfg.Storage.Source == SourcePostgres && cfg.Storage.PostgresDSNEnv == "" {
		return fmt.Errorf("storage.postgres_dsn_env is required for the postgres source")
	}
	if cfg.Recommend.DefaultK > cfg.Recommend.MaxK {
		return fmt.Errorf("recommend.default_k (%d) exceeds recommend.max_k (%d)", cfg.Recommend.DefaultK, cfg.Recommend.MaxK)
	}
	return nil
}

// Save writes the config to path. Used by the init command to write a starter file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
