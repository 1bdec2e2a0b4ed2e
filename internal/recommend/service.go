package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/ryori/internal/config"
	"github.com/hyperjump/ryori/internal/embedding"
	"github.com/hyperjump/ryori/internal/models"
	"github.com/hyperjump/ryori/internal/ranking"
	"github.com/hyperjump/ryori/internal/vector"
	"go.uber.org/zap"
)

// Service runs Validate, Encode, Rank and Enrich for a preference text.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	encoder  embedding.Embedder
	store    *vector.Store
	enricher *Enricher
	maxK     int
	logger   *zap.Logger
}

// NewService creates a Service over an immutable store and catalog.
func NewService(encoder embedding.Embedder, store *vector.Store, enricher *Enricher, cfg *config.RecommendConfig, opts ...Option) *Service {
	o := buildOptions(opts)
	maxK := 0
	if cfg != nil {
		maxK = cfg.MaxK
	}
	return &Service{
		encoder:  encoder,
		store:    store,
		enricher: enricher,
		maxK:     maxK,
		logger:   o.logger,
	}
}

// Recommend returns up to k recipes closest to text, best first.
// Blank text or k outside [1, max_k] is ErrValidation; encoder failures are ErrEncoding.
// Items that cannot be enriched come back degraded instead of failing the call.
func (s *Service) Recommend(ctx context.Context, text string, k int) ([]models.Recommendation, error) {
	recs, err := s.recommend(ctx, text, k)
	RequestsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		s.logger.Debug("recommendation failed", zap.Int("k", k), zap.Error(err))
	}
	return recs, err
}

func (s *Service) recommend(ctx context.Context, text string, k int) ([]models.Recommendation, error) {
	start := time.Now()
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: preferences not provided", models.ErrValidation)
	}
	if k <= 0 || (s.maxK > 0 && k > s.maxK) {
		return nil, fmt.Errorf("%w: k must be between 1 and %d, got %d", models.ErrValidation, s.maxK, k)
	}
	observeStage(stageValidate, start)

	start = time.Now()
	query, err := s.encoder.Embed(ctx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, models.ErrEncoding) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", models.ErrEncoding, err)
	}
	if len(query) != s.store.Dimensions() {
		return nil, fmt.Errorf("%w: encoder produced %d dimensions, store holds %d",
			models.ErrEncoding, len(query), s.store.Dimensions())
	}
	observeStage(stageEncode, start)

	start = time.Now()
	matches, err := ranking.Rank(query, s.store, k)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	observeStage(stageRank, start)

	start = time.Now()
	recs := s.enricher.Enrich(ctx, matches)
	observeStage(stageEnrich, start)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// Item returns the catalog entry for key.
func (s *Service) Item(key string) (models.Item, error) {
	return s.enricher.repo.Get(key)
}

// Chart renders the nutrition chart for key.
func (s *Service) Chart(ctx context.Context, key string) ([]byte, error) {
	return s.enricher.Chart(ctx, key)
}

// Status reports the sizes of the loaded snapshot and whether the encoder is loaded.
func (s *Service) Status() models.Status {
	st := models.Status{
		Embeddings: s.store.Len(),
		Items:      s.enricher.repo.Len(),
		Dimensions: s.store.Dimensions(),
		MaxK:       s.maxK,
	}
	if l, ok := s.encoder.(interface{ Loaded() bool }); ok {
		st.EncoderLoaded = l.Loaded()
	} else {
		st.EncoderLoaded = true
	}
	return st
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrValidation):
		return "validation_error"
	case errors.Is(err, models.ErrEncoding):
		return "encoding_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
