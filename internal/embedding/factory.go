package embedding

import (
	"fmt"
	"os"
	"time"

	"github.com/hyperjump/ryori/internal/config"
	"github.com/hyperjump/ryori/pkg/utils"
	"go.uber.org/zap"
)

// Provider names accepted in embedding.provider.
const (
	ProviderONNX = "onnx"
	ProviderHTTP = "http"
	ProviderMock = "mock"
)

// NewFactory returns a Factory for the configured provider. For onnx, a model that
// fails to load falls back to the mock embedder with a warning, so a development
// machine without onnxruntime can still serve.
func NewFactory(cfg config.EmbeddingConfig, logger *zap.Logger) (Factory, error) {
	logger = utils.OrNop(logger)
	switch cfg.Provider {
	case ProviderONNX, "":
		return func() (Embedder, error) {
			emb, err := NewONNXEmbedder(ONNXConfig{
				ModelPath:  cfg.ModelPath,
				Dimensions: cfg.Dimensions,
				MaxTokens:  cfg.MaxTokens,
				CacheSize:  cfg.CacheSize,
			})
			if err != nil {
				logger.Warn("onnx embedder unavailable, using mock embedder",
					zap.String("model_path", cfg.ModelPath), zap.Error(err))
				return NewMockEmbedder(cfg.Dimensions), nil
			}
			return emb, nil
		}, nil
	case ProviderHTTP:
		return func() (Embedder, error) {
			return NewHTTPEmbedder(HTTPConfig{
				BaseURL:    cfg.BaseURL,
				Model:      cfg.Model,
				APIKey:     os.Getenv(cfg.APIKeyEnv),
				Dimensions: cfg.Dimensions,
				Timeout:    time.Duration(cfg.TimeoutSecs) * time.Second,
				CacheSize:  cfg.CacheSize,
			}, logger)
		}, nil
	case ProviderMock:
		return func() (Embedder, error) {
			return NewMockEmbedder(cfg.Dimensions), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: onnx, http, mock)", cfg.Provider)
	}
}
