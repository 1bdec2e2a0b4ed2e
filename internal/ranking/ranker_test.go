package ranking

import (
	"errors"
	"math"
	"testing"

	"github.com/hyperjump/ryori/internal/models"
	"github.com/hyperjump/ryori/internal/vector"
)

func buildStore(t *testing.T, records ...models.EmbeddingRecord) *vector.Store {
	t.Helper()
	s, err := vector.Build(records)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRank_Scenario(t *testing.T) {
	store := buildStore(t,
		models.EmbeddingRecord{Key: "A", Embedding: []float32{1, 0}},
		models.EmbeddingRecord{Key: "B", Embedding: []float32{0, 1}},
		models.EmbeddingRecord{Key: "C", Embedding: []float32{0.9, 0.1}},
	)
	got, err := Rank([]float32{1, 0}, store, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Key != "A" || math.Abs(got[0].Score-1.0) > 1e-9 {
		t.Errorf("first = %+v, want A(1.0)", got[0])
	}
	if got[1].Key != "C" || math.Abs(got[1].Score-0.994) > 1e-3 {
		t.Errorf("second = %+v, want C(~0.994)", got[1])
	}
}

func TestRank_LengthIsMinKN(t *testing.T) {
	store := buildStore(t,
		models.EmbeddingRecord{Key: "a", Embedding: []float32{1, 0}},
		models.EmbeddingRecord{Key: "b", Embedding: []float32{0, 1}},
		models.EmbeddingRecord{Key: "c", Embedding: []float32{1, 1}},
	)
	for k := 1; k <= 5; k++ {
		got, err := Rank([]float32{0.3, 0.7}, store, k)
		if err != nil {
			t.Fatal(err)
		}
		want := k
		if want > 3 {
			want = 3
		}
		if len(got) != want {
			t.Errorf("k=%d: len=%d, want %d", k, len(got), want)
		}
		for i := 1; i < len(got); i++ {
			if got[i].Score > got[i-1].Score {
				t.Errorf("k=%d: not sorted descending at %d: %v", k, i, got)
			}
		}
	}
}

func TestRank_TiesKeepStoreOrder(t *testing.T) {
	store := buildStore(t,
		models.EmbeddingRecord{Key: "z", Embedding: []float32{0, 1}},
		models.EmbeddingRecord{Key: "m", Embedding: []float32{1, 0}},
		models.EmbeddingRecord{Key: "b", Embedding: []float32{1, 0}},
		models.EmbeddingRecord{Key: "a", Embedding: []float32{2, 0}},
	)
	for i := 0; i < 20; i++ {
		got, err := Rank([]float32{1, 0}, store, 4)
		if err != nil {
			t.Fatal(err)
		}
		keys := []string{got[0].Key, got[1].Key, got[2].Key, got[3].Key}
		want := []string{"m", "b", "a", "z"}
		for j := range want {
			if keys[j] != want[j] {
				t.Fatalf("run %d: order %v, want %v", i, keys, want)
			}
		}
	}
}

func TestRank_ZeroVectors(t *testing.T) {
	store := buildStore(t,
		models.EmbeddingRecord{Key: "zero", Embedding: []float32{0, 0}},
		models.EmbeddingRecord{Key: "x", Embedding: []float32{1, 0}},
	)
	got, err := Rank([]float32{1, 0}, store, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got[1].Key != "zero" || got[1].Score != 0 {
		t.Errorf("zero vector should score 0, got %+v", got[1])
	}

	got, err = Rank([]float32{0, 0}, store, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range got {
		if m.Score != 0 {
			t.Errorf("zero query should score 0, got %+v", m)
		}
	}
	if got[0].Key != "zero" {
		t.Errorf("all-zero scores should keep store order, got %v", got)
	}
}

func TestRank_InvalidArguments(t *testing.T) {
	store := buildStore(t, models.EmbeddingRecord{Key: "a", Embedding: []float32{1, 0}})
	tests := []struct {
		name  string
		query []float32
		store *vector.Store
		k     int
	}{
		{"zero k", []float32{1, 0}, store, 0},
		{"negative k", []float32{1, 0}, store, -3},
		{"dimension mismatch", []float32{1, 0, 0}, store, 1},
		{"nil store", []float32{1, 0}, nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Rank(tt.query, tt.store, tt.k); !errors.Is(err, models.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}
