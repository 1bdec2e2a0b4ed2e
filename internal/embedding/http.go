package embedding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hyperjump/ryori/internal/models"
	"github.com/hyperjump/ryori/pkg/utils"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// HTTPConfig configures an OpenAI- or Ollama-compatible embeddings endpoint.
type HTTPConfig struct {
	BaseURL    string
	Model      string
	APIKey     string
	Dimensions int
	Timeout    time.Duration
	CacheSize  int
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// HTTPEmbedder calls a remote embeddings API. Requests are not retried; a circuit
// breaker fails fast while the endpoint is unhealthy.
type HTTPEmbedder struct {
	url        string
	model      string
	apiKey     string
	dimensions int
	client     *http.Client
	cache      *EmbeddingCache
	breaker    *gobreaker.CircuitBreaker[[]float32]
	logger     *zap.Logger
}

// NewHTTPEmbedder creates a client for cfg.BaseURL + "/embeddings".
func NewHTTPEmbedder(cfg HTTPConfig, logger *zap.Logger) (*HTTPEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("embedding base_url is required for the http provider")
	}
	if cfg.Dimensions <= 0 {
		return nil, errors.New("embedding dimensions must be positive")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	logger = utils.OrNop(logger)
	e := &HTTPEmbedder{
		url:        strings.TrimRight(cfg.BaseURL, "/") + "/embeddings",
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: cfg.Timeout},
		cache:      NewEmbeddingCache(cfg.CacheSize),
		logger:     logger,
	}
	e.breaker = gobreaker.NewCircuitBreaker[[]float32](gobreaker.Settings{
		Name:    "embedding-http",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Caller cancellations say nothing about endpoint health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("embedding circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return e, nil
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Input  string `json:"input"`
	Prompt string `json:"prompt"`
}

// embeddingResponse accepts both the OpenAI shape {"data":[{"embedding":[...]}]}
// and the Ollama shape {"embedding":[...]}.
type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Embedding []float32 `json:"embedding"`
}

// Embed returns the L2-normalized embedding for text.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := CheckText(text); err != nil {
		return nil, err
	}
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	vec, err := e.breaker.Execute(func() ([]float32, error) {
		return e.call(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: embedding service unavailable: %v", models.ErrEncoding, err)
		}
		return nil, err
	}
	utils.NormalizeL2(vec)
	e.cache.Set(text, vec)
	return vec, nil
}

func (e *HTTPEmbedder) call(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: e.model, Input: text, Prompt: text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", models.ErrEncoding, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", models.ErrEncoding, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: server returned %d: %s", models.ErrEncoding, resp.StatusCode, utils.Truncate(string(payload), 200))
	}
	var out embeddingResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", models.ErrEncoding, err)
	}
	vec := out.Embedding
	if len(out.Data) > 0 {
		vec = out.Data[0].Embedding
	}
	if len(vec) != e.dimensions {
		return nil, fmt.Errorf("%w: got %d-dimensional embedding, expected %d", models.ErrEncoding, len(vec), e.dimensions)
	}
	return vec, nil
}

// EmbedBatch calls Embed for each text.
func (e *HTTPEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, e.Embed)
}

// Dimensions returns the configured embedding dimension.
func (e *HTTPEmbedder) Dimensions() int {
	return e.dimensions
}

// Close releases idle connections.
func (e *HTTPEmbedder) Close() error {
	e.client.CloseIdleConnections()
	return nil
}
