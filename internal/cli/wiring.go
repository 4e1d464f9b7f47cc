package cli

import (
	"fmt"
	"os"

	"github.com/Aryan4717/media-mind-ai/config"
	"github.com/Aryan4717/media-mind-ai/internal/adapter/embedding"
	"github.com/Aryan4717/media-mind-ai/internal/adapter/index"
	"github.com/Aryan4717/media-mind-ai/internal/adapter/store"
	"github.com/Aryan4717/media-mind-ai/internal/port"
)

// openStore opens the document database under the data directory,
// creating the directory layout on first use.
func openStore() (*store.BoltStore, error) {
	if err := config.EnsureDataDir(rootDir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.NewBoltStore(config.StorePath(rootDir))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

// requireStore opens the store but refuses to create it, for commands
// that only make sense after ingestion.
func requireStore() (*store.BoltStore, error) {
	path := config.StorePath(rootDir)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no data found. Run 'mediamind ingest' first")
	}
	st, err := store.NewBoltStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

// loadIndex opens the vector index, restoring any persisted snapshot.
func loadIndex() (*index.FlatIndex, error) {
	idx := index.NewFlatIndex(config.IndexDir(rootDir))
	if _, err := idx.Load(); err != nil {
		return nil, fmt.Errorf("failed to load index snapshot: %w", err)
	}
	return idx, nil
}

// newEmbedder builds the configured embedding provider.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	case "openai", "":
		if cfg.Embedding.BaseURL != "" {
			key := os.Getenv(cfg.Embedding.APIKeyEnv)
			return embedding.NewOpenAICompatibleEmbedder(key, cfg.Embedding.Model, cfg.Embedding.BaseURL, cfg.Embedding.BatchSize)
		}
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BatchSize)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
	}
}
