package index

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Aryan4717/media-mind-ai/internal/domain"
	"github.com/Aryan4717/media-mind-ai/internal/port"
)

// Snapshot artifacts living next to each other under the index base
// path. They are written and read as a pair; one without the other is
// treated as no snapshot at all.
const (
	vectorsFile = "vectors.bin"
	mappingFile = "mapping.json"
)

var vectorsMagic = [4]byte{'m', 'm', 'v', '1'}

// FlatIndex is an exact nearest-neighbor index over chunk embeddings:
// a dense float32 matrix searched brute-force with squared L2 distance.
// It is a rebuildable cache over the embedding store, so losing the
// snapshot is never fatal. Writes take the exclusive lock; searches
// share a read lock.
type FlatIndex struct {
	mu       sync.RWMutex
	dim      int
	vectors  [][]float32
	chunkIDs []string
	dir      string
}

// NewFlatIndex creates an empty index persisting under dir.
func NewFlatIndex(dir string) *FlatIndex {
	return &FlatIndex{dir: dir}
}

// Score converts a squared L2 distance into a display similarity in
// (0, 1]. Monotonically decreasing in distance; not a probability.
func Score(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}

// Rebuild fully replaces index state from a complete embedding set.
// An empty input yields an empty index, which is success, not failure.
func (x *FlatIndex) Rebuild(items []port.IndexItem) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if len(items) == 0 {
		x.dim = 0
		x.vectors = nil
		x.chunkIDs = nil
		return nil
	}

	dim := len(items[0].Vector)
	vectors := make([][]float32, 0, len(items))
	chunkIDs := make([]string, 0, len(items))
	for _, item := range items {
		if len(item.Vector) != dim {
			return fmt.Errorf("chunk %s has dimension %d, index has %d: %w",
				item.ChunkID, len(item.Vector), dim, domain.ErrDimensionMismatch)
		}
		vectors = append(vectors, item.Vector)
		chunkIDs = append(chunkIDs, item.ChunkID)
	}

	x.dim = dim
	x.vectors = vectors
	x.chunkIDs = chunkIDs
	return nil
}

// Add appends one vector. The first insertion into an empty index
// establishes the dimension; later mismatches fail without mutating
// index state.
func (x *FlatIndex) Add(chunkID string, vector []float32) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if len(x.vectors) == 0 {
		x.dim = len(vector)
	} else if len(vector) != x.dim {
		return fmt.Errorf("vector for chunk %s has dimension %d, index has %d: %w",
			chunkID, len(vector), x.dim, domain.ErrDimensionMismatch)
	}

	x.vectors = append(x.vectors, vector)
	x.chunkIDs = append(x.chunkIDs, chunkID)
	return nil
}

// Search returns up to topK matches ordered by ascending squared L2
// distance. An empty index returns no matches.
func (x *FlatIndex) Search(query []float32, topK int) ([]port.Match, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.vectors) == 0 {
		return nil, nil
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("query has dimension %d, index has %d: %w",
			len(query), x.dim, domain.ErrDimensionMismatch)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d: %w", topK, domain.ErrInvalidInput)
	}

	matches := make([]port.Match, len(x.vectors))
	for i, v := range x.vectors {
		matches[i] = port.Match{ChunkID: x.chunkIDs[i], Distance: squaredL2(query, v)}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	if topK > len(matches) {
		topK = len(matches)
	}
	return matches[:topK], nil
}

// Size returns the number of indexed vectors.
func (x *FlatIndex) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

// Persist writes the vector matrix and the position to chunk-id
// mapping as co-located snapshot files.
func (x *FlatIndex) Persist() error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if err := os.MkdirAll(x.dir, 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	var buf []byte
	buf = append(buf, vectorsMagic[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(x.dim))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(x.vectors)))
	for _, v := range x.vectors {
		for _, f := range v {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	if err := os.WriteFile(filepath.Join(x.dir, vectorsFile), buf, 0644); err != nil {
		return fmt.Errorf("write vector matrix: %w", err)
	}

	mapping, err := json.Marshal(x.chunkIDs)
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}
	if err := os.WriteFile(filepath.Join(x.dir, mappingFile), mapping, 0644); err != nil {
		return fmt.Errorf("write mapping: %w", err)
	}
	return nil
}

// Load restores the snapshot pair. Missing, corrupt or inconsistent
// artifacts leave the index empty and return false so the caller can
// rebuild from the embedding store; only failing to read an existing
// file is an error.
func (x *FlatIndex) Load() (bool, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.dim = 0
	x.vectors = nil
	x.chunkIDs = nil

	raw, err := os.ReadFile(filepath.Join(x.dir, vectorsFile))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read vector matrix: %w", err)
	}

	mappingRaw, err := os.ReadFile(filepath.Join(x.dir, mappingFile))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read mapping: %w", err)
	}

	dim, vectors, err := decodeMatrix(raw)
	if err != nil {
		// A snapshot that will not decode is no snapshot at all.
		return false, nil
	}

	var chunkIDs []string
	if err := json.Unmarshal(mappingRaw, &chunkIDs); err != nil {
		return false, nil
	}
	if len(chunkIDs) != len(vectors) {
		// Mapping and matrix disagree: treat as no snapshot.
		return false, nil
	}

	x.dim = dim
	x.vectors = vectors
	x.chunkIDs = chunkIDs
	return true, nil
}

func decodeMatrix(raw []byte) (int, [][]float32, error) {
	if len(raw) < 12 || [4]byte(raw[:4]) != vectorsMagic {
		return 0, nil, io.ErrUnexpectedEOF
	}
	dim := int(binary.LittleEndian.Uint32(raw[4:8]))
	count := int(binary.LittleEndian.Uint32(raw[8:12]))
	body := raw[12:]
	if len(body) != dim*count*4 {
		return 0, nil, io.ErrUnexpectedEOF
	}

	vectors := make([][]float32, count)
	off := 0
	for i := range vectors {
		v := make([]float32, dim)
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(body[off:]))
			off += 4
		}
		vectors[i] = v
	}
	return dim, vectors, nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
