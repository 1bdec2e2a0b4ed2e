// Package ranking selects the top-k embeddings for a query by cosine similarity.
package ranking

import (
	"fmt"
	"sort"

	"github.com/hyperjump/ryori/internal/models"
	"github.com/hyperjump/ryori/internal/vector"
)

// Rank scores every entry of store against query and returns the k best as
// RankedMatch values, min(k, store.Len()) of them. Order is score descending;
// equal scores keep the store's insertion order.
func Rank(query []float32, store *vector.Store, k int) ([]models.RankedMatch, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", models.ErrInvalidArgument, k)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: nil vector store", models.ErrInvalidArgument)
	}
	if len(query) != store.Dimensions() {
		return nil, fmt.Errorf("%w: query dimension %d, store dimension %d",
			models.ErrInvalidArgument, len(query), store.Dimensions())
	}

	scorer := vector.NewScorer(query)
	scored := make([]models.RankedMatch, 0, store.Len())
	for key, vec := range store.Entries() {
		scored = append(scored, models.RankedMatch{Key: key, Score: scorer.Score(vec)})
	}
	// scored is in store order, so a stable sort breaks ties by that order.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k:k], nil
}
