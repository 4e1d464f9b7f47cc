package port

import "github.com/Aryan4717/media-mind-ai/internal/domain"

// DocumentStore persists documents and their chunks.
type DocumentStore interface {
	PutDocument(doc domain.Document) error

	GetDocument(id string) (domain.Document, error)

	ListDocuments() ([]domain.Document, error)

	// DeleteDocument removes the document along with its chunks,
	// embeddings and transcript.
	DeleteDocument(id string) error

	// ReplaceChunks atomically invalidates all prior chunks (and their
	// embeddings) for the document and stores the new sequence. A
	// concurrent reader never observes a mix of old and new chunks.
	ReplaceChunks(documentID string, chunks []domain.Chunk) error

	GetChunk(id string) (domain.Chunk, error)

	// GetChunksByDocument returns chunks ordered by Index. A limit of 0
	// means no limit.
	GetChunksByDocument(documentID string, limit, offset int) ([]domain.Chunk, error)
}

// EmbeddingStore persists chunk embeddings, the durable source the
// vector index is rebuilt from.
type EmbeddingStore interface {
	// PutEmbedding stores or overwrites the embedding for a chunk.
	PutEmbedding(emb domain.Embedding) error

	GetEmbedding(chunkID string) (domain.Embedding, error)

	// AllEmbeddings returns every stored embedding in a stable order.
	AllEmbeddings() ([]domain.Embedding, error)
}

// TranscriptStore persists time-coded transcription results.
type TranscriptStore interface {
	PutTranscript(tr domain.Transcript) error

	GetTranscript(documentID string) (domain.Transcript, error)
}
