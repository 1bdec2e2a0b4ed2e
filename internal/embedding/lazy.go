package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/ryori/internal/models"
	"github.com/hyperjump/ryori/pkg/utils"
	"go.uber.org/zap"
)

// Factory constructs an Embedder. It is called at most once successfully per Lazy.
type Factory func() (Embedder, error)

// Lazy defers constructing an Embedder until the first Embed call. Concurrent first
// calls wait on the same construction. A failed construction is not remembered, so a
// later call may try again; a successful one is reused until Close.
type Lazy struct {
	factory    Factory
	dimensions int
	logger     *zap.Logger

	mu       sync.Mutex
	embedder Embedder
	closed   bool
}

// NewLazy wraps factory. dimensions is reported by Dimensions before the model loads.
func NewLazy(factory Factory, dimensions int, logger *zap.Logger) *Lazy {
	logger = utils.OrNop(logger)
	return &Lazy{factory: factory, dimensions: dimensions, logger: logger}
}

func (l *Lazy) get() (Embedder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, fmt.Errorf("%w: embedder closed", models.ErrEncoding)
	}
	if l.embedder != nil {
		return l.embedder, nil
	}
	emb, err := l.factory()
	if err != nil {
		l.logger.Error("embedder initialization failed", zap.Error(err))
		return nil, fmt.Errorf("%w: load embedder: %v", models.ErrEncoding, err)
	}
	l.logger.Info("embedder initialized", zap.Int("dimensions", emb.Dimensions()))
	l.embedder = emb
	return emb, nil
}

// Embed validates text, then delegates to the underlying embedder, creating it on first use.
func (l *Lazy) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := CheckText(text); err != nil {
		return nil, err
	}
	emb, err := l.get()
	if err != nil {
		return nil, err
	}
	return emb.Embed(ctx, text)
}

// EmbedBatch delegates to the underlying embedder, creating it on first use.
func (l *Lazy) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for _, text := range texts {
		if err := CheckText(text); err != nil {
			return nil, err
		}
	}
	emb, err := l.get()
	if err != nil {
		return nil, err
	}
	return emb.EmbedBatch(ctx, texts)
}

// Dimensions returns the configured dimension, or the loaded embedder's once available.
func (l *Lazy) Dimensions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.embedder != nil {
		return l.embedder.Dimensions()
	}
	return l.dimensions
}

// Loaded reports whether the underlying embedder has been constructed.
func (l *Lazy) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.embedder != nil
}

// Close tears down the underlying embedder, if any. Later calls to Embed fail.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	if l.embedder == nil {
		return nil
	}
	err := l.embedder.Close()
	l.embedder = nil
	return err
}
