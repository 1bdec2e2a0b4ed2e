package vector

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hyperjump/ryori/internal/models"
)

// Save writes the store to path. Directory is created if needed. Format: dimension (4), n (4),
// then per vector: idLen (4), id bytes, vector (dimension*4 bytes). All little-endian.
func (s *Store) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, uint32(s.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.keys))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for i, key := range s.keys {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(key))); err != nil {
			return fmt.Errorf("write id len: %w", err)
		}
		if _, err := w.WriteString(key); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if _, err := w.Write(float32SliceToBytes(s.vectors[i])); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}
	return f.Close()
}

// ReadRecords reads the records of a snapshot file written by Save, in file order.
func ReadRecords(path string) ([]models.EmbeddingRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)
	var dim, n uint32
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("%w: read dimensions: %v", models.ErrData, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("%w: read count: %v", models.ErrData, err)
	}
	records := make([]models.EmbeddingRecord, 0, n)
	buf := make([]byte, int(dim)*4)
	for i := uint32(0); i < n; i++ {
		var idLen uint32
		if err := binary.Read(r, binary.LittleEndian, &idLen); err != nil {
			return nil, fmt.Errorf("%w: read id len: %v", models.ErrData, err)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(r, idBytes); err != nil {
			return nil, fmt.Errorf("%w: read id: %v", models.ErrData, err)
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%w: read vector: %v", models.ErrData, err)
		}
		records = append(records, models.EmbeddingRecord{
			Key:       string(idBytes),
			Embedding: bytesToFloat32Slice(buf),
		})
	}
	return records, nil
}

// Load reads a snapshot file and builds a store from it.
func Load(path string, opts ...Option) (*Store, error) {
	records, err := ReadRecords(path)
	if err != nil {
		return nil, err
	}
	return Build(records, opts...)
}
