package config

import "runtime"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.CORSAllowedOrigins == nil {
		cfg.Server.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.Storage.Source == "" {
		cfg.Storage.Source = SourceSQLite
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/ryori/data/recipes.db"
	}
	if cfg.Storage.PostgresDSNEnv == "" {
		cfg.Storage.PostgresDSNEnv = "DATABASE_URL"
	}
	if cfg.Storage.SnapshotPath == "" {
		cfg.Storage.SnapshotPath = "/usr/local/var/ryori/data/embeddings.bin"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "onnx"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/ryori/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "EMBEDDING_API_KEY"
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}
	if cfg.Recommend.DefaultK == 0 {
		cfg.Recommend.DefaultK = 5
	}
	if cfg.Recommend.MaxK == 0 {
		cfg.Recommend.MaxK = 50
	}
	if cfg.Recommend.RenderWorkers == 0 {
		cfg.Recommend.RenderWorkers = runtime.NumCPU()
	}
	if cfg.Recommend.MaxConcurrentRenders == 0 {
		cfg.Recommend.MaxConcurrentRenders = 2 * runtime.NumCPU()
	}
	if cfg.Chart.Width == 0 {
		cfg.Chart.Width = 512
	}
	if cfg.Chart.Height == 0 {
		cfg.Chart.Height = 512
	}
	if cfg.Chart.Title == "" {
		cfg.Chart.Title = "Nutritional Breakdown"
	}
}
