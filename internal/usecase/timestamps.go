package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Aryan4717/media-mind-ai/internal/adapter/aligner"
	"github.com/Aryan4717/media-mind-ai/internal/domain"
	"github.com/Aryan4717/media-mind-ai/internal/port"
)

// previewLen caps the chunk text carried in an alignment result.
const previewLen = 100

// TimestampUseCase maps text back onto the transcript timeline of an
// audio or video document.
type TimestampUseCase struct {
	store       port.DocumentStore
	transcripts port.TranscriptStore
	logger      *slog.Logger
}

func NewTimestampUseCase(store port.DocumentStore, transcripts port.TranscriptStore, logger *slog.Logger) *TimestampUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &TimestampUseCase{store: store, transcripts: transcripts, logger: logger}
}

// FindTimestamps returns the merged time ranges where the given text
// is spoken in the document. The document must be audio or video and
// its transcription must have completed.
func (u *TimestampUseCase) FindTimestamps(documentID, text string) ([]domain.TimeRange, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("find timestamps: text is empty: %w", domain.ErrInvalidInput)
	}
	segments, err := u.completedSegments(documentID)
	if err != nil {
		return nil, err
	}
	return aligner.FindMatches(text, segments), nil
}

// AlignChunks recovers time ranges for each of the given chunks,
// keeping only a short text preview per chunk.
func (u *TimestampUseCase) AlignChunks(documentID string, chunks []domain.Chunk) ([]domain.ChunkAlignment, error) {
	segments, err := u.completedSegments(documentID)
	if err != nil {
		return nil, err
	}

	alignments := make([]domain.ChunkAlignment, 0, len(chunks))
	for _, chunk := range chunks {
		ranges := aligner.FindMatches(chunk.Text, segments)
		if len(ranges) == 0 {
			continue
		}
		alignments = append(alignments, domain.ChunkAlignment{
			ChunkText: truncatePreview(chunk.Text, previewLen),
			Ranges:    ranges,
		})
	}

	u.logger.Debug("chunks aligned",
		"document_id", documentID,
		"chunks", len(chunks),
		"aligned", len(alignments))

	return alignments, nil
}

func (u *TimestampUseCase) completedSegments(documentID string) ([]domain.TranscriptSegment, error) {
	doc, err := u.store.GetDocument(documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if !doc.Kind.IsMedia() {
		return nil, fmt.Errorf("document %s kind %q has no timeline: %w", documentID, doc.Kind, domain.ErrInvalidInput)
	}

	tr, err := u.transcripts.GetTranscript(documentID)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	if tr.Status != domain.TranscriptCompleted {
		return nil, fmt.Errorf("transcript for document %s is %q: %w", documentID, tr.Status, domain.ErrInvalidInput)
	}
	return tr.Segments, nil
}

func truncatePreview(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n] + "..."
}
