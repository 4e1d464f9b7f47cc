package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Aryan4717/media-mind-ai/internal/adapter/embedding"
	"github.com/Aryan4717/media-mind-ai/internal/adapter/index"
	"github.com/Aryan4717/media-mind-ai/internal/adapter/segmenter"
	"github.com/Aryan4717/media-mind-ai/internal/adapter/store"
	"github.com/Aryan4717/media-mind-ai/internal/domain"
)

func newTestStore(t *testing.T) *store.BoltStore {
	t.Helper()
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// buildText produces deterministic prose of at least n bytes.
func buildText(n int) string {
	var b strings.Builder
	words := []string{"signal", "motion", "river", "amber", "copper", "lantern", "meadow", "harbor"}
	for i := 0; b.Len() < n; i++ {
		b.WriteString(words[i%len(words)])
		b.WriteByte(' ')
	}
	return b.String()[:n]
}

func TestProcessStoresOrderedChunks(t *testing.T) {
	s := newTestStore(t)
	if err := s.PutDocument(domain.Document{ID: "doc-1", Name: "notes.txt", Kind: domain.KindText}); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}

	uc := NewProcessUseCase(s, s, nil)
	res, err := uc.Process("doc-1", buildText(2500), 1000, 200, segmenter.StrategyFixed)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Chunks != 3 {
		t.Fatalf("got %d chunks, want 3", res.Chunks)
	}

	chunks, err := s.GetChunksByDocument("doc-1", 0, 0)
	if err != nil {
		t.Fatalf("GetChunksByDocument: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("stored %d chunks, want 3", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if c.CharCount != len(c.Text) {
			t.Errorf("chunk %d char count %d != len(text) %d", i, c.CharCount, len(c.Text))
		}
		if c.ID == "" {
			t.Errorf("chunk %d has empty id", i)
		}
	}
}

func TestProcessReplacesPreviousChunks(t *testing.T) {
	s := newTestStore(t)
	if err := s.PutDocument(domain.Document{ID: "doc-1", Name: "notes.txt", Kind: domain.KindText}); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}

	uc := NewProcessUseCase(s, s, nil)
	if _, err := uc.Process("doc-1", buildText(2500), 1000, 200, segmenter.StrategyFixed); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, err := uc.Process("doc-1", buildText(800), 1000, 200, segmenter.StrategyFixed); err != nil {
		t.Fatalf("Process (second): %v", err)
	}

	chunks, err := s.GetChunksByDocument("doc-1", 0, 0)
	if err != nil {
		t.Fatalf("GetChunksByDocument: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks after reprocess, want 1", len(chunks))
	}
}

func TestProcessRejectsMediaDocuments(t *testing.T) {
	s := newTestStore(t)
	if err := s.PutDocument(domain.Document{ID: "doc-1", Name: "talk.mp3", Kind: domain.KindAudio}); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}

	uc := NewProcessUseCase(s, s, nil)
	_, err := uc.Process("doc-1", "transcribed text", 1000, 200, segmenter.StrategyFixed)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestProcessUnknownDocument(t *testing.T) {
	s := newTestStore(t)
	uc := NewProcessUseCase(s, s, nil)
	_, err := uc.Process("missing", "text", 1000, 200, segmenter.StrategyFixed)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestImportTranscriptChunksFullText(t *testing.T) {
	s := newTestStore(t)
	if err := s.PutDocument(domain.Document{ID: "vid", Name: "talk.mp4", Kind: domain.KindVideo}); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}

	uc := NewProcessUseCase(s, s, nil)
	tr := domain.Transcript{
		Status: domain.TranscriptCompleted,
		Segments: []domain.TranscriptSegment{
			{Start: 0, End: 4, Text: "hello there"},
			{Start: 4, End: 9, Text: "general observations"},
		},
	}
	res, err := uc.ImportTranscript("vid", tr, 1000, 200, segmenter.StrategyFixed)
	if err != nil {
		t.Fatalf("ImportTranscript: %v", err)
	}
	if res.Chunks != 1 {
		t.Fatalf("got %d chunks, want 1", res.Chunks)
	}

	stored, err := s.GetTranscript("vid")
	if err != nil {
		t.Fatalf("GetTranscript: %v", err)
	}
	if stored.FullText != "hello there general observations" {
		t.Errorf("full text = %q", stored.FullText)
	}
	if stored.Duration != 9 {
		t.Errorf("duration = %v, want 9", stored.Duration)
	}

	chunks, err := s.GetChunksByDocument("vid", 0, 0)
	if err != nil {
		t.Fatalf("GetChunksByDocument: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Text != "hello there general observations" {
		t.Errorf("chunks = %+v", chunks)
	}
}

func TestImportTranscriptRejectsPendingAndTextDocs(t *testing.T) {
	s := newTestStore(t)
	uc := NewProcessUseCase(s, s, nil)

	if err := s.PutDocument(domain.Document{ID: "txt", Name: "a.txt", Kind: domain.KindText}); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}
	tr := domain.Transcript{
		Status:   domain.TranscriptCompleted,
		Segments: []domain.TranscriptSegment{{Start: 0, End: 1, Text: "x"}},
	}
	if _, err := uc.ImportTranscript("txt", tr, 1000, 200, segmenter.StrategyFixed); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("text document: got %v, want ErrInvalidInput", err)
	}

	if err := s.PutDocument(domain.Document{ID: "vid", Name: "a.mp4", Kind: domain.KindVideo}); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}
	tr.Status = domain.TranscriptPending
	if _, err := uc.ImportTranscript("vid", tr, 1000, 200, segmenter.StrategyFixed); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("pending transcript: got %v, want ErrInvalidInput", err)
	}
}

func TestGenerateAndSearchEndToEnd(t *testing.T) {
	s := newTestStore(t)
	idx := index.NewFlatIndex(t.TempDir())
	emb := embedding.NewMockEmbedder(32)

	if err := s.PutDocument(domain.Document{ID: "doc-1", Name: "notes.txt", Kind: domain.KindText}); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}
	proc := NewProcessUseCase(s, s, nil)
	if _, err := proc.Process("doc-1", buildText(2500), 1000, 200, segmenter.StrategyFixed); err != nil {
		t.Fatalf("Process: %v", err)
	}

	search := NewSearchUseCase(s, s, emb, idx, nil)

	var lastDone, lastTotal int
	res, err := search.Generate(context.Background(), "doc-1", func(done, total int) {
		lastDone, lastTotal = done, total
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Embedded != 3 {
		t.Fatalf("embedded %d chunks, want 3", res.Embedded)
	}
	if lastDone != 3 || lastTotal != 3 {
		t.Errorf("progress ended at %d/%d, want 3/3", lastDone, lastTotal)
	}
	if idx.Size() != 3 {
		t.Fatalf("index holds %d vectors, want 3", idx.Size())
	}

	chunks, err := s.GetChunksByDocument("doc-1", 0, 0)
	if err != nil {
		t.Fatalf("GetChunksByDocument: %v", err)
	}

	// A verbatim chunk text embeds to an identical vector, so that
	// chunk must rank first at distance zero.
	results, err := search.Search(context.Background(), chunks[1].Text, 3, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no search results")
	}
	if results[0].ChunkID != chunks[1].ID {
		t.Errorf("top hit is %s, want %s", results[0].ChunkID, chunks[1].ID)
	}
	if results[0].Distance != 0 {
		t.Errorf("top hit distance %v, want 0", results[0].Distance)
	}
	if results[0].Score != 1 {
		t.Errorf("top hit score %v, want 1", results[0].Score)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted by score at %d", i)
		}
	}
}

func TestSearchDocumentFilterCanUnderfill(t *testing.T) {
	s := newTestStore(t)
	idx := index.NewFlatIndex(t.TempDir())
	emb := embedding.NewMockEmbedder(32)
	proc := NewProcessUseCase(s, s, nil)
	search := NewSearchUseCase(s, s, emb, idx, nil)

	for _, id := range []string{"doc-1", "doc-2"} {
		if err := s.PutDocument(domain.Document{ID: id, Name: id + ".txt", Kind: domain.KindText}); err != nil {
			t.Fatalf("PutDocument: %v", err)
		}
		if _, err := proc.Process(id, buildText(1500), 1000, 200, segmenter.StrategyFixed); err != nil {
			t.Fatalf("Process: %v", err)
		}
		if _, err := search.Generate(context.Background(), id, nil); err != nil {
			t.Fatalf("Generate: %v", err)
		}
	}

	results, err := search.Search(context.Background(), "river amber copper", 4, "doc-2")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) >= 4 {
		t.Fatalf("filter returned %d results, want fewer than top_k", len(results))
	}
	for _, r := range results {
		if r.DocumentID != "doc-2" {
			t.Errorf("result from %s leaked through filter", r.DocumentID)
		}
	}
}

func TestSearchLazyRebuildFromStore(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()
	emb := embedding.NewMockEmbedder(32)
	proc := NewProcessUseCase(s, s, nil)

	if err := s.PutDocument(domain.Document{ID: "doc-1", Name: "n.txt", Kind: domain.KindText}); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}
	if _, err := proc.Process("doc-1", buildText(1500), 1000, 200, segmenter.StrategyFixed); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, err := NewSearchUseCase(s, s, emb, index.NewFlatIndex(dir), nil).Generate(context.Background(), "doc-1", nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Fresh, empty index: the first search must rebuild it from the
	// embedding store.
	fresh := index.NewFlatIndex(t.TempDir())
	search := NewSearchUseCase(s, s, emb, fresh, nil)

	results, err := search.Search(context.Background(), "river amber", 2, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no results after lazy rebuild")
	}
	if fresh.Size() == 0 {
		t.Error("index still empty after lazy rebuild")
	}
}

func TestGenerateChunksOverwritesStoredEmbedding(t *testing.T) {
	s := newTestStore(t)
	idx := index.NewFlatIndex(t.TempDir())
	emb := embedding.NewMockEmbedder(16)
	proc := NewProcessUseCase(s, s, nil)
	search := NewSearchUseCase(s, s, emb, idx, nil)

	if err := s.PutDocument(domain.Document{ID: "doc-1", Name: "n.txt", Kind: domain.KindText}); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}
	if _, err := proc.Process("doc-1", buildText(1500), 1000, 200, segmenter.StrategyFixed); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, err := search.Generate(context.Background(), "doc-1", nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	chunks, err := s.GetChunksByDocument("doc-1", 1, 0)
	if err != nil {
		t.Fatalf("GetChunksByDocument: %v", err)
	}

	res, err := search.GenerateChunks(context.Background(), []string{chunks[0].ID}, nil)
	if err != nil {
		t.Fatalf("GenerateChunks: %v", err)
	}
	if res.Embedded != 1 {
		t.Errorf("embedded %d, want 1", res.Embedded)
	}

	stored, err := s.GetEmbedding(chunks[0].ID)
	if err != nil {
		t.Fatalf("GetEmbedding: %v", err)
	}
	if stored.Dimension != 16 {
		t.Errorf("dimension = %d, want 16", stored.Dimension)
	}

	if _, err := search.GenerateChunks(context.Background(), []string{"nope"}, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown chunk: got %v, want ErrNotFound", err)
	}
	if _, err := search.GenerateChunks(context.Background(), nil, nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("empty ids: got %v, want ErrInvalidInput", err)
	}
}

func TestSearchRejectsBlankQuery(t *testing.T) {
	s := newTestStore(t)
	search := NewSearchUseCase(s, s, embedding.NewMockEmbedder(8), index.NewFlatIndex(t.TempDir()), nil)

	if _, err := search.Search(context.Background(), "   ", 5, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("blank query: got %v, want ErrInvalidInput", err)
	}
	if _, err := search.Search(context.Background(), "ok", 0, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("zero top_k: got %v, want ErrInvalidInput", err)
	}
}

func TestGenerateWithoutChunks(t *testing.T) {
	s := newTestStore(t)
	search := NewSearchUseCase(s, s, embedding.NewMockEmbedder(8), index.NewFlatIndex(t.TempDir()), nil)

	_, err := search.Generate(context.Background(), "doc-1", nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestFindTimestampsGating(t *testing.T) {
	s := newTestStore(t)
	uc := NewTimestampUseCase(s, s, nil)

	if err := s.PutDocument(domain.Document{ID: "text-doc", Name: "a.txt", Kind: domain.KindText}); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}
	if _, err := uc.FindTimestamps("text-doc", "hello"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("text document: got %v, want ErrInvalidInput", err)
	}

	if err := s.PutDocument(domain.Document{ID: "vid", Name: "a.mp4", Kind: domain.KindVideo}); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}
	if _, err := uc.FindTimestamps("vid", "hello"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("no transcript: got %v, want ErrNotFound", err)
	}

	pending := domain.Transcript{DocumentID: "vid", Status: domain.TranscriptPending}
	if err := s.PutTranscript(pending); err != nil {
		t.Fatalf("PutTranscript: %v", err)
	}
	if _, err := uc.FindTimestamps("vid", "hello"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("pending transcript: got %v, want ErrInvalidInput", err)
	}

	done := domain.Transcript{
		DocumentID: "vid",
		Status:     domain.TranscriptCompleted,
		Segments:   []domain.TranscriptSegment{{Start: 0, End: 2, Text: "hello there"}},
	}
	if err := s.PutTranscript(done); err != nil {
		t.Fatalf("PutTranscript: %v", err)
	}
	if _, err := uc.FindTimestamps("vid", "   "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("blank text: got %v, want ErrInvalidInput", err)
	}
}

func TestFindTimestampsReturnsMergedRanges(t *testing.T) {
	s := newTestStore(t)
	uc := NewTimestampUseCase(s, s, nil)

	if err := s.PutDocument(domain.Document{ID: "vid", Name: "talk.mp4", Kind: domain.KindVideo}); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}
	tr := domain.Transcript{
		DocumentID: "vid",
		Status:     domain.TranscriptCompleted,
		Segments: []domain.TranscriptSegment{
			{Start: 0, End: 4, Text: "neural networks learn representations"},
			{Start: 5, End: 9, Text: "neural networks generalize well"},
			{Start: 30, End: 34, Text: "completely unrelated closing remarks"},
		},
	}
	if err := s.PutTranscript(tr); err != nil {
		t.Fatalf("PutTranscript: %v", err)
	}

	ranges, err := uc.FindTimestamps("vid", "neural networks learn")
	if err != nil {
		t.Fatalf("FindTimestamps: %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, want 1 merged range: %+v", len(ranges), ranges)
	}
	if ranges[0].Start != 0 || ranges[0].End != 9 {
		t.Errorf("merged range [%v,%v], want [0,9]", ranges[0].Start, ranges[0].End)
	}
}

func TestAlignChunksTruncatesPreview(t *testing.T) {
	s := newTestStore(t)
	uc := NewTimestampUseCase(s, s, nil)

	if err := s.PutDocument(domain.Document{ID: "vid", Name: "talk.mp4", Kind: domain.KindVideo}); err != nil {
		t.Fatalf("PutDocument: %v", err)
	}
	long := strings.Repeat("neural networks learn representations ", 5)
	tr := domain.Transcript{
		DocumentID: "vid",
		Status:     domain.TranscriptCompleted,
		Segments: []domain.TranscriptSegment{
			{Start: 0, End: 4, Text: "neural networks learn representations"},
		},
	}
	if err := s.PutTranscript(tr); err != nil {
		t.Fatalf("PutTranscript: %v", err)
	}

	chunks := []domain.Chunk{
		{ID: "c1", DocumentID: "vid", Text: long},
		{ID: "c2", DocumentID: "vid", Text: "nothing matching whatsoever here"},
	}
	alignments, err := uc.AlignChunks("vid", chunks)
	if err != nil {
		t.Fatalf("AlignChunks: %v", err)
	}
	if len(alignments) != 1 {
		t.Fatalf("got %d alignments, want 1", len(alignments))
	}
	if got := alignments[0].ChunkText; len(got) != previewLen+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("preview %q not truncated to %d chars + ellipsis", got, previewLen)
	}
}
