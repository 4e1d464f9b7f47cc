package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Aryan4717/media-mind-ai/internal/adapter/fs"
	"github.com/Aryan4717/media-mind-ai/internal/adapter/segmenter"
	"github.com/Aryan4717/media-mind-ai/internal/domain"
	"github.com/Aryan4717/media-mind-ai/internal/usecase"
)

var (
	ingestChunkSize int
	ingestOverlap   int
	ingestStrategy  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Register documents and segment their text",
	Long: `Scan a directory for documents, register each one, and segment
text documents into chunks. Audio and video files are registered only;
their text becomes searchable once a transcript is imported.

Examples:
  mediamind ingest ./docs
  mediamind ingest ./docs --strategy sentence --chunk-size 512`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "chunk size in characters (default from config)")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", -1, "overlap in characters (default from config)")
	ingestCmd.Flags().StringVar(&ingestStrategy, "strategy", "", "segmentation strategy: fixed, sentence, paragraph (default from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()

	chunkSize := cfg.Segment.ChunkSize
	if ingestChunkSize > 0 {
		chunkSize = ingestChunkSize
	}
	overlap := cfg.Segment.Overlap
	if ingestOverlap >= 0 {
		overlap = ingestOverlap
	}
	strategyName := cfg.Segment.Strategy
	if ingestStrategy != "" {
		strategyName = ingestStrategy
	}
	strategy, err := segmenter.ParseStrategy(strategyName)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
	files, err := walker.Walk(path)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", path, err)
	}
	if len(files) == 0 {
		fmt.Println("No documents found.")
		return nil
	}

	proc := usecase.NewProcessUseCase(st, st, logger)

	registered, segmented := 0, 0
	for _, f := range files {
		doc := domain.Document{
			ID:        uuid.NewString(),
			Name:      f.Name,
			Kind:      f.Kind,
			CreatedAt: time.Now(),
		}
		if err := st.PutDocument(doc); err != nil {
			return fmt.Errorf("failed to register %s: %w", f.Name, err)
		}
		registered++
		fmt.Printf("  %s  %s (%s)\n", doc.ID, f.Name, f.Kind)

		if !f.Kind.HasText() || f.Kind == domain.KindPDF {
			// PDF text extraction and media transcription happen in
			// separate pipelines; only plain text is segmented here.
			continue
		}

		text, err := fs.ReadText(f.Path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.Path, err)
		}
		res, err := proc.Process(doc.ID, text, chunkSize, overlap, strategy)
		if err != nil {
			return fmt.Errorf("failed to process %s: %w", f.Name, err)
		}
		segmented++
		fmt.Printf("    segmented into %d chunks (%s)\n", res.Chunks, res.Strategy)
	}

	fmt.Printf("Registered %d documents, segmented %d.\n", registered, segmented)
	return nil
}
