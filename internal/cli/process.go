package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aryan4717/media-mind-ai/internal/adapter/fs"
	"github.com/Aryan4717/media-mind-ai/internal/adapter/segmenter"
	"github.com/Aryan4717/media-mind-ai/internal/usecase"
)

var (
	processChunkSize int
	processOverlap   int
	processStrategy  string
)

var processCmd = &cobra.Command{
	Use:   "process <document-id> <text-file>",
	Short: "Re-segment a document from a text file",
	Long: `Segment the given text into chunks for an already-registered
document, replacing any previous chunks. Useful for reprocessing with a
different strategy or chunk size.

Examples:
  mediamind process 4f3c2a... extracted.txt --strategy paragraph
  mediamind process 4f3c2a... extracted.txt --chunk-size 512 --overlap 64`,
	Args: cobra.ExactArgs(2),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().IntVar(&processChunkSize, "chunk-size", 0, "chunk size in characters (default from config)")
	processCmd.Flags().IntVar(&processOverlap, "overlap", -1, "overlap in characters (default from config)")
	processCmd.Flags().StringVar(&processStrategy, "strategy", "", "segmentation strategy: fixed, sentence, paragraph (default from config)")
}

func runProcess(cmd *cobra.Command, args []string) error {
	documentID := args[0]
	cfg := GetConfig()

	chunkSize := cfg.Segment.ChunkSize
	if processChunkSize > 0 {
		chunkSize = processChunkSize
	}
	overlap := cfg.Segment.Overlap
	if processOverlap >= 0 {
		overlap = processOverlap
	}
	strategyName := cfg.Segment.Strategy
	if processStrategy != "" {
		strategyName = processStrategy
	}
	strategy, err := segmenter.ParseStrategy(strategyName)
	if err != nil {
		return err
	}

	text, err := fs.ReadText(args[1])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[1], err)
	}

	st, err := requireStore()
	if err != nil {
		return err
	}
	defer st.Close()

	proc := usecase.NewProcessUseCase(st, st, logger)
	res, err := proc.Process(documentID, text, chunkSize, overlap, strategy)
	if err != nil {
		return err
	}

	fmt.Printf("Segmented %s into %d chunks (%s).\n", documentID, res.Chunks, res.Strategy)
	fmt.Println("Run 'mediamind embed' to refresh its embeddings.")
	return nil
}
