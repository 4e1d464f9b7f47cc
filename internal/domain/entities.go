package domain

import "time"

// DocumentKind classifies a source document for operation gating.
type DocumentKind string

const (
	KindPDF   DocumentKind = "pdf"
	KindText  DocumentKind = "text"
	KindAudio DocumentKind = "audio"
	KindVideo DocumentKind = "video"
)

// HasText reports whether the document kind carries extractable text
// suitable for segmentation.
func (k DocumentKind) HasText() bool {
	return k == KindPDF || k == KindText
}

// IsMedia reports whether the document kind has a playable timeline.
func (k DocumentKind) IsMedia() bool {
	return k == KindAudio || k == KindVideo
}

type Document struct {
	ID        string
	Name      string
	Kind      DocumentKind
	CreatedAt time.Time
}

// Chunk is a contiguous, possibly overlapping slice of a document's
// extracted text. Chunks for a document are totally ordered by Index.
type Chunk struct {
	ID         string
	DocumentID string
	Index      int
	Text       string
	CharCount  int
	TokenCount int // estimated; 0 when unknown
	PageNumber int // 0 when not applicable
	StartChar  int
	EndChar    int
	Metadata   map[string]string
}

// Embedding is the vector representation of one chunk. At most one
// embedding exists per chunk; regenerating overwrites.
type Embedding struct {
	ChunkID   string
	Model     string
	Vector    []float32
	Dimension int
}

// TranscriptSegment is one time-coded piece of a transcription.
// Segments are immutable once produced and not guaranteed pre-sorted.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript statuses as reported by the transcription pipeline.
const (
	TranscriptPending   = "pending"
	TranscriptCompleted = "completed"
	TranscriptFailed    = "failed"
)

type Transcript struct {
	DocumentID string              `json:"document_id"`
	FullText   string              `json:"full_text"`
	Language   string              `json:"language,omitempty"`
	Duration   float64             `json:"duration,omitempty"`
	Status     string              `json:"status"`
	Segments   []TranscriptSegment `json:"segments"`
}

// SearchResult is one ranked hit from semantic search.
type SearchResult struct {
	ChunkID    string
	DocumentID string
	ChunkIndex int
	Text       string
	Score      float64
	Distance   float64
	CharCount  int
	PageNumber int
}

// TimeRange is a merged span of transcript time matching some text.
type TimeRange struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
}

// ChunkAlignment groups the time ranges recovered for one chunk's text.
type ChunkAlignment struct {
	ChunkText string      `json:"chunk_text"`
	Ranges    []TimeRange `json:"timestamps"`
}
