package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aryan4717/media-mind-ai/internal/usecase"
)

var (
	searchQuery    string
	searchTopK     int
	searchDocument string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Semantic search across embedded chunks",
	Long: `Embed the query and return the closest chunks, best match first.

Examples:
  mediamind search -q "gradient descent"
  mediamind search -q "gradient descent" --top-k 10 --document 4f3c2a... --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search query (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	searchCmd.Flags().StringVar(&searchDocument, "document", "", "restrict results to one document")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	topK := cfg.Search.TopK
	if searchTopK > 0 {
		topK = searchTopK
	}

	search := usecase.NewSearchUseCase(st, st, embedder, idx, logger)
	results, err := search.Search(cmd.Context(), searchQuery, topK, searchDocument)
	if err != nil {
		return err
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%d. [%.4f] doc %s chunk %d\n", i+1, r.Score, r.DocumentID, r.ChunkIndex)
		fmt.Printf("   %s\n", preview(r.Text, 160))
	}
	return nil
}

func preview(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n] + "..."
}
