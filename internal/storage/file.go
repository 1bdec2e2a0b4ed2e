package storage

import (
	"context"
	"fmt"

	"github.com/hyperjump/ryori/internal/models"
	"github.com/hyperjump/ryori/internal/vector"
)

// FileSource reads embeddings from a binary snapshot file written by export, and
// recipe attributes from items. It skips decoding the hex embedding table at startup.
type FileSource struct {
	path  string
	items ItemSource
	close func() error
}

// NewFileSource reads embeddings from path and attributes from items. closeFn, if not
// nil, is called by Close to release items.
func NewFileSource(path string, items ItemSource, closeFn func() error) *FileSource {
	return &FileSource{path: path, items: items, close: closeFn}
}

// LoadSnapshot reads the snapshot file and the attribute rows.
func (f *FileSource) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	records, err := vector.ReadRecords(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file %s: %w", f.path, err)
	}
	items, err := f.items.LoadItems(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Snapshot{Items: items, Embeddings: records}, nil
}

// Close releases the attribute source.
func (f *FileSource) Close() error {
	if f.close == nil {
		return nil
	}
	return f.close()
}
