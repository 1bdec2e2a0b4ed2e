package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
  rate_limit_per_minute: 120
storage:
  database_path: "test.db"
embedding:
  provider: http
  base_url: "http://localhost:11434/api"
  model: "nomic-embed-text"
  dimensions: 768
recommend:
  default_k: 3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 || cfg.Server.RateLimitPerMinute != 120 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Embedding.Provider != "http" || cfg.Embedding.Dimensions != 768 || cfg.Embedding.Model != "nomic-embed-text" {
		t.Errorf("unexpected embedding config: %+v", cfg.Embedding)
	}
	if cfg.Recommend.DefaultK != 3 || cfg.Recommend.MaxK != 50 {
		t.Errorf("unexpected recommend config: %+v", cfg.Recommend)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	path := writeConfig(t, "debug: true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: "./data/recipes.db"
  snapshot_path: "./data/embeddings.bin"
embedding:
  model_path: "./models/model.onnx"
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "data", "recipes.db"); cfg.Storage.DatabasePath != want {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, want)
	}
	if want := filepath.Join(dir, "data", "embeddings.bin"); cfg.Storage.SnapshotPath != want {
		t.Errorf("snapshot_path = %s, want %s", cfg.Storage.SnapshotPath, want)
	}
	if want := filepath.Join(dir, "models", "model.onnx"); cfg.Embedding.ModelPath != want {
		t.Errorf("model_path = %s, want %s", cfg.Embedding.ModelPath, want)
	}
}

func TestLoad_invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown source", "storage:\n  source: mongo\n", "storage.source"},
		{"default_k above max_k", "recommend:\n  default_k: 10\n  max_k: 5\n", "default_k"},
		{"bad yaml", "server: [", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 1 || cfg.Server.CORSAllowedOrigins[0] != "*" {
		t.Errorf("default cors origins: got %v", cfg.Server.CORSAllowedOrigins)
	}
	if cfg.Storage.Source != SourceSQLite {
		t.Errorf("default source: got %s", cfg.Storage.Source)
	}
	if cfg.Embedding.Provider != "onnx" || cfg.Embedding.Dimensions != 384 {
		t.Errorf("default embedding: got %+v", cfg.Embedding)
	}
	if cfg.Recommend.DefaultK != 5 {
		t.Errorf("default k: got %d", cfg.Recommend.DefaultK)
	}
	if cfg.Recommend.RenderWorkers != runtime.NumCPU() {
		t.Errorf("default render workers: got %d", cfg.Recommend.RenderWorkers)
	}
	if cfg.Chart.Title != "Nutritional Breakdown" {
		t.Errorf("default chart title: got %q", cfg.Chart.Title)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DatabasePath: "/tmp/db"},
	}
	ApplyDefaults(cfg)
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if loaded.Storage.DatabasePath != "/tmp/db" {
		t.Errorf("loaded database_path: got %s", loaded.Storage.DatabasePath)
	}
}
