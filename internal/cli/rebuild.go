package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aryan4717/media-mind-ai/internal/adapter/embedding"
	"github.com/Aryan4717/media-mind-ai/internal/usecase"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the vector index from stored embeddings",
	Long: `Reconstruct the search index from the embedding store and persist
a fresh snapshot. Use after deleting documents or if the snapshot on
disk was lost or corrupted.`,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	st, err := requireStore()
	if err != nil {
		return err
	}
	defer st.Close()

	idx, err := loadIndex()
	if err != nil {
		return err
	}
	// Rebuilding only reads stored vectors, so no provider credential
	// is needed.
	embedder := embedding.NewMockEmbedder(cfg.Embedding.Dimension)

	search := usecase.NewSearchUseCase(st, st, embedder, idx, logger)
	if err := search.Rebuild(); err != nil {
		return err
	}

	fmt.Printf("Index rebuilt with %d vectors.\n", idx.Size())
	return nil
}
