package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Aryan4717/media-mind-ai/internal/usecase"
)

var embedChunks []string

var embedCmd = &cobra.Command{
	Use:   "embed <document-id>",
	Short: "Generate embeddings for a document's chunks",
	Long: `Embed every chunk of a processed document and add the vectors
to the search index. Re-running overwrites previous embeddings.
With --chunk, only the named chunks are (re-)embedded.

Examples:
  mediamind embed 4f3c2a...
  mediamind embed 4f3c2a... --chunk 8c1d... --chunk 9e2f...`,
	Args: cobra.ExactArgs(1),
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)
	embedCmd.Flags().StringArrayVar(&embedChunks, "chunk", nil, "re-embed only this chunk id (repeatable)")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	documentID := args[0]
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
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	search := usecase.NewSearchUseCase(st, st, embedder, idx, logger)

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Embedding chunks"),
				progressbar.OptionShowCount(),
			)
		}
		bar.Set(done)
	}

	var res *usecase.GenerateResult
	if len(embedChunks) > 0 {
		res, err = search.GenerateChunks(cmd.Context(), embedChunks, progress)
	} else {
		res, err = search.Generate(cmd.Context(), documentID, progress)
	}
	if err != nil {
		return err
	}
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}

	fmt.Printf("Embedded %d chunks with %s.\n", res.Embedded, res.Model)
	return nil
}
