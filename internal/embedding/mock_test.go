package embedding

import (
	"context"
	"math"
	"testing"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(16)
	ctx := context.Background()
	a, err := e.Embed(ctx, "chicken curry")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(ctx, "chicken curry")
	c, _ := e.Embed(ctx, "chocolate cake")
	if len(a) != 16 {
		t.Fatalf("len=%d", len(a))
	}
	same := true
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same text should give same embedding")
		}
		if a[i] != c[i] {
			same = false
		}
	}
	if same {
		t.Error("different text should give different embeddings")
	}
	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-5 {
		t.Errorf("embedding should be unit length, got %v", math.Sqrt(norm))
	}
}

func TestMockEmbedder_Batch(t *testing.T) {
	e := NewMockEmbedder(0)
	if e.Dimensions() != 384 {
		t.Errorf("default dimensions = %d", e.Dimensions())
	}
	out, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || len(out[1]) != 384 {
		t.Errorf("batch shape: %d x %d", len(out), len(out[1]))
	}
}
