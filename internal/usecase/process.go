package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Aryan4717/media-mind-ai/internal/adapter/segmenter"
	"github.com/Aryan4717/media-mind-ai/internal/domain"
	"github.com/Aryan4717/media-mind-ai/internal/port"
)

// ProcessUseCase segments a document's extracted text into chunks and
// replaces any prior chunks for that document.
type ProcessUseCase struct {
	store       port.DocumentStore
	transcripts port.TranscriptStore
	logger      *slog.Logger
}

func NewProcessUseCase(store port.DocumentStore, transcripts port.TranscriptStore, logger *slog.Logger) *ProcessUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessUseCase{store: store, transcripts: transcripts, logger: logger}
}

// ProcessResult contains the outcome of segmenting one document.
type ProcessResult struct {
	DocumentID string
	Chunks     int
	Strategy   segmenter.Strategy
}

// Process splits the given text into chunks for the document and
// stores them, invalidating any chunks from a previous run. Only
// documents with extractable text can be processed.
func (u *ProcessUseCase) Process(documentID, text string, chunkSize, overlap int, strategy segmenter.Strategy) (*ProcessResult, error) {
	doc, err := u.store.GetDocument(documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if !doc.Kind.HasText() {
		return nil, fmt.Errorf("document %s kind %q has no extractable text: %w", documentID, doc.Kind, domain.ErrInvalidInput)
	}

	splitter, err := segmenter.New(chunkSize, overlap, strategy, nil)
	if err != nil {
		return nil, err
	}

	segments, err := splitter.Segment(text)
	if err != nil {
		return nil, fmt.Errorf("segment document %s: %w", documentID, err)
	}

	chunks := make([]domain.Chunk, 0, len(segments))
	for i, seg := range segments {
		chunks = append(chunks, domain.Chunk{
			ID:         chunkID(documentID, i, seg.Text),
			DocumentID: documentID,
			Index:      i,
			Text:       seg.Text,
			CharCount:  len(seg.Text),
			TokenCount: seg.TokenCount,
			StartChar:  seg.StartChar,
			EndChar:    seg.EndChar,
		})
	}

	if err := u.store.ReplaceChunks(documentID, chunks); err != nil {
		return nil, fmt.Errorf("store chunks for document %s: %w", documentID, err)
	}

	u.logger.Info("document processed",
		"document_id", documentID,
		"strategy", string(strategy),
		"chunks", len(chunks))

	return &ProcessResult{
		DocumentID: documentID,
		Chunks:     len(chunks),
		Strategy:   strategy,
	}, nil
}

// ImportTranscript stores a completed transcript for a media document
// and segments its full text into chunks, making the document
// searchable. The transcript text is assembled from the segments when
// FullText is empty.
func (u *ProcessUseCase) ImportTranscript(documentID string, tr domain.Transcript, chunkSize, overlap int, strategy segmenter.Strategy) (*ProcessResult, error) {
	doc, err := u.store.GetDocument(documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if !doc.Kind.IsMedia() {
		return nil, fmt.Errorf("document %s kind %q takes no transcript: %w", documentID, doc.Kind, domain.ErrInvalidInput)
	}
	if tr.Status != domain.TranscriptCompleted {
		return nil, fmt.Errorf("transcript status %q is not importable: %w", tr.Status, domain.ErrInvalidInput)
	}
	if len(tr.Segments) == 0 {
		return nil, fmt.Errorf("transcript has no segments: %w", domain.ErrInvalidInput)
	}

	if tr.FullText == "" {
		parts := make([]string, 0, len(tr.Segments))
		for _, seg := range tr.Segments {
			parts = append(parts, strings.TrimSpace(seg.Text))
		}
		tr.FullText = strings.Join(parts, " ")
	}
	if tr.Duration == 0 {
		for _, seg := range tr.Segments {
			if seg.End > tr.Duration {
				tr.Duration = seg.End
			}
		}
	}
	tr.DocumentID = documentID

	if err := u.transcripts.PutTranscript(tr); err != nil {
		return nil, fmt.Errorf("store transcript: %w", err)
	}

	splitter, err := segmenter.New(chunkSize, overlap, strategy, nil)
	if err != nil {
		return nil, err
	}
	segments, err := splitter.Segment(tr.FullText)
	if err != nil {
		return nil, fmt.Errorf("segment transcript for document %s: %w", documentID, err)
	}

	chunks := make([]domain.Chunk, 0, len(segments))
	for i, seg := range segments {
		chunks = append(chunks, domain.Chunk{
			ID:         chunkID(documentID, i, seg.Text),
			DocumentID: documentID,
			Index:      i,
			Text:       seg.Text,
			CharCount:  len(seg.Text),
			TokenCount: seg.TokenCount,
			StartChar:  seg.StartChar,
			EndChar:    seg.EndChar,
		})
	}
	if err := u.store.ReplaceChunks(documentID, chunks); err != nil {
		return nil, fmt.Errorf("store chunks for document %s: %w", documentID, err)
	}

	u.logger.Info("transcript imported",
		"document_id", documentID,
		"segments", len(tr.Segments),
		"chunks", len(chunks))

	return &ProcessResult{DocumentID: documentID, Chunks: len(chunks), Strategy: strategy}, nil
}

// chunkID derives a stable chunk identifier from the document, the
// chunk position and its content.
func chunkID(documentID string, index int, text string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", documentID, index, text)))
	return hex.EncodeToString(h[:])[:16]
}
