// Package vector provides the immutable in-memory embedding store used for ranking.
package vector

import (
	"fmt"
	"iter"

	"github.com/hyperjump/ryori/internal/models"
	"go.uber.org/zap"
)

// Store maps item keys to fixed-dimension embeddings. It is built once and is
// read-only afterwards, so concurrent reads need no locking.
type Store struct {
	dimensions int
	keys       []string
	vectors    [][]float32
	index      map[string]int
}

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	logger *zap.Logger
}

// WithLogger sets a logger for duplicate-key warnings.
func WithLogger(l *zap.Logger) Option {
	return func(o *buildOptions) { o.logger = l }
}

// Build consumes records in order and returns an immutable store. The dimension
// is taken from the first record. A duplicate key replaces the earlier vector
// (last write wins) but keeps the first position, and is logged as a warning.
func Build(records []models.EmbeddingRecord, opts ...Option) (*Store, error) {
	o := buildOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty embedding snapshot", models.ErrData)
	}
	dim := len(records[0].Embedding)
	if dim == 0 {
		return nil, fmt.Errorf("%w: first embedding %q has zero length", models.ErrData, records[0].Key)
	}
	s := &Store{
		dimensions: dim,
		keys:       make([]string, 0, len(records)),
		vectors:    make([][]float32, 0, len(records)),
		index:      make(map[string]int, len(records)),
	}
	for _, rec := range records {
		if len(rec.Embedding) != dim {
			return nil, fmt.Errorf("%w: embedding %q has dimension %d, expected %d",
				models.ErrData, rec.Key, len(rec.Embedding), dim)
		}
		vec := make([]float32, dim)
		copy(vec, rec.Embedding)
		if i, ok := s.index[rec.Key]; ok {
			o.logger.Warn("duplicate embedding key, keeping last", zap.String("key", rec.Key))
			s.vectors[i] = vec
			continue
		}
		s.index[rec.Key] = len(s.keys)
		s.keys = append(s.keys, rec.Key)
		s.vectors = append(s.vectors, vec)
	}
	return s, nil
}

// Get returns a copy of the embedding for key.
func (s *Store) Get(key string) ([]float32, error) {
	i, ok := s.index[key]
	if !ok {
		return nil, fmt.Errorf("%w: embedding %q", models.ErrNotFound, key)
	}
	out := make([]float32, s.dimensions)
	copy(out, s.vectors[i])
	return out, nil
}

// Entries yields (key, embedding) pairs in insertion order. The sequence can be
// ranged over any number of times. Yielded slices are shared with the store and
// must not be modified.
func (s *Store) Entries() iter.Seq2[string, []float32] {
	return func(yield func(string, []float32) bool) {
		for i, key := range s.keys {
			if !yield(key, s.vectors[i]) {
				return
			}
		}
	}
}

// Len returns the number of distinct keys.
func (s *Store) Len() int {
	return len(s.keys)
}

// Dimensions returns the embedding length D shared by every entry.
func (s *Store) Dimensions() int {
	return s.dimensions
}
