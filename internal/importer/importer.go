package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/ryori/internal/catalog"
	"github.com/hyperjump/ryori/internal/embedding"
	"github.com/hyperjump/ryori/internal/models"
	"go.uber.org/zap"
)

const batchSize = 32

// Writer persists recipes with their embeddings.
type Writer interface {
	SaveRecipe(ctx context.Context, item models.Item, embedding []float32) (string, error)
	DeleteRecipe(ctx context.Context, name string) error
}

// Result summarizes an import.
type Result struct {
	Imported int
	Replaced int
}

// Importer embeds recipes and writes them through a Writer.
type Importer struct {
	embedder embedding.Embedder
	writer   Writer
	logger   *zap.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.logger = l
		}
	}
}

// New creates an Importer.
func New(embedder embedding.Embedder, writer Writer, opts ...Option) *Importer {
	im := &Importer{embedder: embedder, writer: writer, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// EmbeddingText is the text embedded for item: its name followed by its description.
func EmbeddingText(item models.Item) string {
	if item.Description == "" {
		return item.Name
	}
	return item.Name + ". " + item.Description
}

// Import embeds items in batches and saves each one. An existing recipe with the same
// name is replaced. The first failure stops the import; recipes already saved stay saved.
func (im *Importer) Import(ctx context.Context, items []models.Item) (Result, error) {
	var res Result
	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))
		batch := make([]models.Item, 0, end-start)
		texts := make([]string, 0, end-start)
		for _, item := range items[start:end] {
			item = catalog.Normalize(item)
			item.Name = strings.TrimSpace(item.Name)
			if item.Name == "" {
				continue
			}
			batch = append(batch, item)
			texts = append(texts, EmbeddingText(item))
		}
		if len(batch) == 0 {
			continue
		}
		vectors, err := im.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return res, fmt.Errorf("embed recipes %d-%d: %w", start+1, end, err)
		}
		for i, item := range batch {
			replaced := true
			if err := im.writer.DeleteRecipe(ctx, item.Name); err != nil {
				if !errors.Is(err, models.ErrNotFound) {
					return res, err
				}
				replaced = false
			}
			id, err := im.writer.SaveRecipe(ctx, item, vectors[i])
			if err != nil {
				return res, err
			}
			res.Imported++
			if replaced {
				res.Replaced++
			}
			im.logger.Debug("recipe imported", zap.String("name", item.Name), zap.String("id", id), zap.Bool("replaced", replaced))
		}
	}
	return res, nil
}
