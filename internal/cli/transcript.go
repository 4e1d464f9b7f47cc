package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aryan4717/media-mind-ai/internal/adapter/segmenter"
	"github.com/Aryan4717/media-mind-ai/internal/domain"
	"github.com/Aryan4717/media-mind-ai/internal/usecase"
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript <document-id> <transcript.json>",
	Short: "Import a transcript for an audio or video document",
	Long: `Import a time-coded transcript (JSON with start/end/text segments)
for a media document, and segment its text into searchable chunks.

The JSON file holds either a segments array or a full transcript object:
  {"segments": [{"start": 0.0, "end": 4.2, "text": "..."}], "language": "en"}

Examples:
  mediamind transcript 4f3c2a... talk.json`,
	Args: cobra.ExactArgs(2),
	RunE: runTranscript,
}

func init() {
	rootCmd.AddCommand(transcriptCmd)
}

func runTranscript(cmd *cobra.Command, args []string) error {
	documentID := args[0]

	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read transcript file: %w", err)
	}
	var tr domain.Transcript
	if err := json.Unmarshal(data, &tr); err != nil {
		return fmt.Errorf("invalid transcript JSON: %w", err)
	}
	if tr.Status == "" {
		tr.Status = domain.TranscriptCompleted
	}

	cfg := GetConfig()
	strategy, err := segmenter.ParseStrategy(cfg.Segment.Strategy)
	if err != nil {
		return err
	}

	st, err := requireStore()
	if err != nil {
		return err
	}
	defer st.Close()

	proc := usecase.NewProcessUseCase(st, st, logger)
	res, err := proc.ImportTranscript(documentID, tr, cfg.Segment.ChunkSize, cfg.Segment.Overlap, strategy)
	if err != nil {
		return err
	}

	fmt.Printf("Imported transcript for %s, segmented into %d chunks.\n", documentID, res.Chunks)
	fmt.Println("Run 'mediamind embed' to make it searchable.")
	return nil
}
