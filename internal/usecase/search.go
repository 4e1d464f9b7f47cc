package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Aryan4717/media-mind-ai/internal/adapter/index"
	"github.com/Aryan4717/media-mind-ai/internal/domain"
	"github.com/Aryan4717/media-mind-ai/internal/port"
)

// SearchUseCase runs semantic search across chunk embeddings and
// generates the embeddings it searches over. Index writes (generation,
// lazy rebuild) are serialized; searches only read.
type SearchUseCase struct {
	store      port.DocumentStore
	embeddings port.EmbeddingStore
	embedder   port.Embedder
	index      port.VectorIndex
	logger     *slog.Logger

	mu sync.Mutex // guards index mutation
}

func NewSearchUseCase(
	store port.DocumentStore,
	embeddings port.EmbeddingStore,
	embedder port.Embedder,
	idx port.VectorIndex,
	logger *slog.Logger,
) *SearchUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchUseCase{
		store:      store,
		embeddings: embeddings,
		embedder:   embedder,
		index:      idx,
		logger:     logger,
	}
}

// GenerateResult contains the outcome of embedding one document.
type GenerateResult struct {
	DocumentID string
	Embedded   int
	Model      string
}

// Generate embeds every chunk of the document, stores the vectors and
// adds them to the index. Each vector is stored before it is indexed,
// so a crash mid-way leaves the index rebuildable from the store. The
// optional progress callback reports (done, total) after each chunk.
func (u *SearchUseCase) Generate(ctx context.Context, documentID string, progress func(done, total int)) (*GenerateResult, error) {
	chunks, err := u.store.GetChunksByDocument(documentID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %s has no chunks: %w", documentID, domain.ErrNotFound)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := u.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed document %s: %w", documentID, err)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	model := u.embedder.ModelName()
	for i, c := range chunks {
		emb := domain.Embedding{
			ChunkID:   c.ID,
			Model:     model,
			Vector:    vectors[i],
			Dimension: len(vectors[i]),
		}
		if err := u.embeddings.PutEmbedding(emb); err != nil {
			return nil, fmt.Errorf("store embedding for chunk %s: %w", c.ID, err)
		}
		if err := u.index.Add(c.ID, vectors[i]); err != nil {
			return nil, fmt.Errorf("index chunk %s: %w", c.ID, err)
		}
		if progress != nil {
			progress(i+1, len(chunks))
		}
	}

	if err := u.index.Persist(); err != nil {
		return nil, fmt.Errorf("persist index: %w", err)
	}

	u.logger.Info("embeddings generated",
		"document_id", documentID,
		"chunks", len(chunks),
		"model", model)

	return &GenerateResult{DocumentID: documentID, Embedded: len(chunks), Model: model}, nil
}

// GenerateChunks embeds a specific set of chunks, for re-embedding
// after a model change or a partial earlier failure. Unknown chunk ids
// fail the whole call before any provider traffic.
func (u *SearchUseCase) GenerateChunks(ctx context.Context, chunkIDs []string, progress func(done, total int)) (*GenerateResult, error) {
	if len(chunkIDs) == 0 {
		return nil, fmt.Errorf("no chunk ids given: %w", domain.ErrInvalidInput)
	}

	chunks := make([]domain.Chunk, len(chunkIDs))
	for i, id := range chunkIDs {
		c, err := u.store.GetChunk(id)
		if err != nil {
			return nil, fmt.Errorf("load chunk %s: %w", id, err)
		}
		chunks[i] = c
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := u.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	model := u.embedder.ModelName()
	for i, c := range chunks {
		emb := domain.Embedding{
			ChunkID:   c.ID,
			Model:     model,
			Vector:    vectors[i],
			Dimension: len(vectors[i]),
		}
		if err := u.embeddings.PutEmbedding(emb); err != nil {
			return nil, fmt.Errorf("store embedding for chunk %s: %w", c.ID, err)
		}
		if err := u.index.Add(c.ID, vectors[i]); err != nil {
			return nil, fmt.Errorf("index chunk %s: %w", c.ID, err)
		}
		if progress != nil {
			progress(i+1, len(chunks))
		}
	}
	if err := u.index.Persist(); err != nil {
		return nil, fmt.Errorf("persist index: %w", err)
	}

	return &GenerateResult{Embedded: len(chunks), Model: model}, nil
}

// Search embeds the query and returns the closest chunks, best first.
// When documentID is non-empty, hits from other documents are filtered
// out after ranking, so fewer than topK results may come back. An
// empty index is rebuilt from stored embeddings before searching.
func (u *SearchUseCase) Search(ctx context.Context, query string, topK int, documentID string) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("top_k must be positive: %w", domain.ErrInvalidInput)
	}

	if err := u.ensureIndex(); err != nil {
		return nil, err
	}
	if u.index.Size() == 0 {
		return nil, nil
	}

	vector, err := u.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := u.index.Search(vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(matches))
	for _, m := range matches {
		chunk, err := u.store.GetChunk(m.ChunkID)
		if err != nil {
			// The index may briefly hold entries for chunks that were
			// replaced; skip them rather than fail the search.
			u.logger.Warn("indexed chunk missing from store", "chunk_id", m.ChunkID)
			continue
		}
		if documentID != "" && chunk.DocumentID != documentID {
			continue
		}
		results = append(results, domain.SearchResult{
			ChunkID:    chunk.ID,
			DocumentID: chunk.DocumentID,
			ChunkIndex: chunk.Index,
			Text:       chunk.Text,
			Score:      index.Score(m.Distance),
			Distance:   m.Distance,
			CharCount:  chunk.CharCount,
			PageNumber: chunk.PageNumber,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results, nil
}

// Rebuild reconstructs the index from all stored embeddings and
// persists the fresh snapshot.
func (u *SearchUseCase) Rebuild() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.rebuildLocked()
}

// ensureIndex lazily fills an empty index from the embedding store.
func (u *SearchUseCase) ensureIndex() error {
	if u.index.Size() > 0 {
		return nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.index.Size() > 0 {
		return nil
	}
	return u.rebuildLocked()
}

func (u *SearchUseCase) rebuildLocked() error {
	all, err := u.embeddings.AllEmbeddings()
	if err != nil {
		return fmt.Errorf("load embeddings: %w", err)
	}

	items := make([]port.IndexItem, len(all))
	for i, emb := range all {
		items[i] = port.IndexItem{ChunkID: emb.ChunkID, Vector: emb.Vector}
	}
	if err := u.index.Rebuild(items); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	if err := u.index.Persist(); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}

	u.logger.Info("index rebuilt", "vectors", len(items))
	return nil
}
