package port

import "context"

// Embedder converts text into fixed-dimension vectors. It is the single
// point that knows the embedding dimension for a given model; callers
// must not assume a fixed dimension across models.
type Embedder interface {
	// Embed generates embeddings for the given texts, batched against
	// the provider. The result has the same length and order as the
	// input. A failure in any batch aborts the whole call; partial
	// results are never returned.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query text.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
