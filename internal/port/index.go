package port

// IndexItem is one (chunk id, vector) pair fed into a rebuild.
type IndexItem struct {
	ChunkID string
	Vector  []float32
}

// Match is one nearest-neighbor hit. Distance is squared Euclidean;
// smaller means more similar.
type Match struct {
	ChunkID  string
	Distance float64
}

// VectorIndex is the nearest-neighbor index over all chunk embeddings.
// It is a derived, rebuildable cache: losing it is safe because it can
// always be reconstructed from the embedding store. Rebuild, Add and
// Persist must be serialized against each other; Search may run
// concurrently once writes have completed.
type VectorIndex interface {
	// Rebuild fully replaces index state from a complete embedding set.
	// The dimension is fixed by the first item. An empty input yields an
	// empty index, not an error.
	Rebuild(items []IndexItem) error

	// Add appends one vector. On an empty index this establishes the
	// dimension; otherwise a mismatched vector is rejected without
	// mutating the index.
	Add(chunkID string, vector []float32) error

	// Search returns up to topK matches ordered by ascending distance.
	// An empty index returns no results, not an error.
	Search(query []float32, topK int) ([]Match, error)

	// Size returns the number of indexed vectors.
	Size() int

	// Persist snapshots the vector matrix and the position to chunk-id
	// mapping together.
	Persist() error

	// Load restores a snapshot. A missing or partial snapshot is not an
	// error; it yields an empty index and returns false so the caller
	// can trigger a rebuild.
	Load() (bool, error)
}
