// Package recommend joins ranked recipes to their attributes and runs the
// recommendation pipeline.
package recommend

import (
	"context"
	"runtime"

	"github.com/hyperjump/ryori/internal/catalog"
	"github.com/hyperjump/ryori/internal/chart"
	"github.com/hyperjump/ryori/internal/config"
	"github.com/hyperjump/ryori/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Option configures an Enricher or Service.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Enricher attaches descriptions and nutrition charts to ranked matches.
type Enricher struct {
	repo     *catalog.Repository
	renderer chart.Renderer
	workers  int
	// renders is shared by every request served by this Enricher.
	renders *semaphore.Weighted
	logger  *zap.Logger
}

// NewEnricher creates an Enricher. cfg.RenderWorkers bounds rendering within one call
// and cfg.MaxConcurrentRenders bounds it across concurrent calls.
func NewEnricher(repo *catalog.Repository, renderer chart.Renderer, cfg *config.RecommendConfig, opts ...Option) *Enricher {
	o := buildOptions(opts)
	workers, limit := runtime.NumCPU(), int64(2*runtime.NumCPU())
	if cfg != nil {
		if cfg.RenderWorkers > 0 {
			workers = cfg.RenderWorkers
		}
		if cfg.MaxConcurrentRenders > 0 {
			limit = int64(cfg.MaxConcurrentRenders)
		}
	}
	return &Enricher{
		repo:     repo,
		renderer: renderer,
		workers:  workers,
		renders:  semaphore.NewWeighted(limit),
		logger:   o.logger,
	}
}

// Enrich returns one recommendation per match, in match order. A match whose key is
// missing from the catalog, or whose chart fails to render, is returned degraded
// rather than failing the whole call.
func (e *Enricher) Enrich(ctx context.Context, matches []models.RankedMatch) []models.Recommendation {
	out := make([]models.Recommendation, len(matches))
	var g errgroup.Group
	g.SetLimit(e.workers)

	for i, m := range matches {
		out[i] = models.Recommendation{Name: m.Key, Similarity: m.Score}
		item, err := e.repo.Get(m.Key)
		if err != nil {
			e.logger.Warn("ranked recipe missing from catalog, store and catalog disagree",
				zap.String("key", m.Key), zap.Error(err))
			out[i].Degraded = "recipe attributes not found"
			DegradedItemsTotal.WithLabelValues(reasonNotFound).Inc()
			continue
		}
		out[i].Description = item.Description
		g.Go(func() error {
			out[i].Chart, out[i].Degraded = e.render(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// render returns the chart for item, or a nil chart and the degraded reason.
func (e *Enricher) render(ctx context.Context, item models.Item) ([]byte, string) {
	if err := e.renders.Acquire(ctx, 1); err != nil {
		DegradedItemsTotal.WithLabelValues(reasonCanceled).Inc()
		return nil, "chart rendering canceled"
	}
	defer e.renders.Release(1)
	RendersInFlight.Inc()
	defer RendersInFlight.Dec()

	png, err := e.renderer.Render(item.Nutrition)
	if err != nil {
		e.logger.Warn("chart rendering failed", zap.String("key", item.Name), zap.Error(err))
		DegradedItemsTotal.WithLabelValues(reasonRender).Inc()
		return nil, "chart unavailable"
	}
	return png, ""
}

// Chart renders the chart for a single catalog entry.
func (e *Enricher) Chart(ctx context.Context, key string) ([]byte, error) {
	item, err := e.repo.Get(key)
	if err != nil {
		return nil, err
	}
	if err := e.renders.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.renders.Release(1)
	return e.renderer.Render(item.Nutrition)
}
