package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/ryori/internal/config"
	"github.com/hyperjump/ryori/internal/models"
	"github.com/hyperjump/ryori/internal/vector"
)

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "recipes.db")
	snapPath := filepath.Join(dir, "embeddings.bin")
	ctx := context.Background()

	db, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.SaveRecipe(ctx, models.Item{Name: "Salad"}, []float32{0.5, 0.5}); err != nil {
		t.Fatal(err)
	}
	snap, err := db.LoadSnapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	store, err := vector.Build(snap.Embeddings)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(snapPath); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	src, err := Open(ctx, config.StorageConfig{Source: config.SourceFile, DatabasePath: dbPath, SnapshotPath: snapPath})
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	got, err := src.LoadSnapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 1 || got.Items[0].Name != "Salad" {
		t.Errorf("items = %+v", got.Items)
	}
	if len(got.Embeddings) != 1 || got.Embeddings[0].Key != "Salad" || got.Embeddings[0].Embedding[1] != 0.5 {
		t.Errorf("embeddings = %+v", got.Embeddings)
	}

	missing := NewFileSource(filepath.Join(dir, "missing.bin"), db, nil)
	if _, err := missing.LoadSnapshot(ctx); err == nil {
		t.Error("expected error for missing snapshot file")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	src, err := Open(ctx, config.StorageConfig{DatabasePath: filepath.Join(t.TempDir(), "r.db")})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*SQLiteStore); !ok {
		t.Errorf("default source should be SQLite, got %T", src)
	}
	_ = src.Close()

	t.Setenv("RYORI_TEST_DSN", "")
	if _, err := Open(ctx, config.StorageConfig{Source: config.SourcePostgres, PostgresDSNEnv: "RYORI_TEST_DSN"}); err == nil {
		t.Error("expected error when the DSN variable is empty")
	}
	if _, err := Open(ctx, config.StorageConfig{Source: "mongo"}); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestNewPostgresSource_EmptyDSN(t *testing.T) {
	if _, err := NewPostgresSource(context.Background(), ""); err == nil {
		t.Error("expected error for empty DSN")
	}
}

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "r.db")
	if err := os.WriteFile(db, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(db+"-wal", []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := DiskUsageBytes(db, filepath.Join(dir, "missing.bin"), "")
	if err != nil {
		t.Fatal(err)
	}
	if got != 8 {
		t.Errorf("got %d bytes, want 8", got)
	}
}

func TestDecodeEmbedding(t *testing.T) {
	rec, err := decodeEmbedding("x", vector.EncodeHex([]float32{1.5}))
	if err != nil || rec.Embedding[0] != 1.5 {
		t.Errorf("got %+v, %v", rec, err)
	}
	if _, err := decodeEmbedding("x", "zz"); !errors.Is(err, models.ErrData) {
		t.Errorf("expected ErrData, got %v", err)
	}
}
