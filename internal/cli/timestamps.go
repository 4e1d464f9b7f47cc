package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aryan4717/media-mind-ai/internal/adapter/aligner"
	"github.com/Aryan4717/media-mind-ai/internal/adapter/store"
	"github.com/Aryan4717/media-mind-ai/internal/usecase"
)

var (
	timestampsQuery  string
	timestampsJSON   bool
	timestampsChunks bool
)

var timestampsCmd = &cobra.Command{
	Use:   "timestamps <document-id>",
	Short: "Find where text is spoken in a media document",
	Long: `Map text back onto the transcript timeline of an audio or video
document. Requires a completed transcript (see 'mediamind transcript').

Examples:
  mediamind timestamps 4f3c2a... -q "neural networks"
  mediamind timestamps 4f3c2a... -q "neural networks" --json`,
	Args: cobra.ExactArgs(1),
	RunE: runTimestamps,
}

func init() {
	rootCmd.AddCommand(timestampsCmd)
	timestampsCmd.Flags().StringVarP(&timestampsQuery, "query", "q", "", "text to locate")
	timestampsCmd.Flags().BoolVar(&timestampsJSON, "json", false, "output as JSON")
	timestampsCmd.Flags().BoolVar(&timestampsChunks, "chunks", false, "align the document's chunks instead of a query")
}

func runTimestamps(cmd *cobra.Command, args []string) error {
	documentID := args[0]

	st, err := requireStore()
	if err != nil {
		return err
	}
	defer st.Close()

	uc := usecase.NewTimestampUseCase(st, st, logger)

	if timestampsChunks {
		return alignDocumentChunks(uc, st, documentID)
	}
	if timestampsQuery == "" {
		return fmt.Errorf("either --query or --chunks is required")
	}

	ranges, err := uc.FindTimestamps(documentID, timestampsQuery)
	if err != nil {
		return err
	}

	if timestampsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ranges)
	}

	if len(ranges) == 0 {
		fmt.Println("No matches in the transcript.")
		return nil
	}
	for _, r := range ranges {
		fmt.Printf("%s - %s  %s\n",
			aligner.FormatTimestamp(r.Start),
			aligner.FormatTimestamp(r.End),
			preview(r.Text, 120))
	}
	return nil
}

func alignDocumentChunks(uc *usecase.TimestampUseCase, st *store.BoltStore, documentID string) error {
	chunks, err := st.GetChunksByDocument(documentID, 0, 0)
	if err != nil {
		return err
	}
	alignments, err := uc.AlignChunks(documentID, chunks)
	if err != nil {
		return err
	}

	if timestampsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(alignments)
	}

	if len(alignments) == 0 {
		fmt.Println("No chunks aligned to the transcript.")
		return nil
	}
	for _, a := range alignments {
		fmt.Printf("%s\n", a.ChunkText)
		for _, r := range a.Ranges {
			fmt.Printf("  %s - %s\n", aligner.FormatTimestamp(r.Start), aligner.FormatTimestamp(r.End))
		}
	}
	return nil
}
