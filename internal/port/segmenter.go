package port

// Segment is one raw piece emitted by a Segmenter, before the caller
// assigns chunk identity and order. StartChar and EndChar are rune
// offsets into the source text.
type Segment struct {
	Text       string
	StartChar  int
	EndChar    int
	TokenCount int
}

// Segmenter splits a document's full text into an ordered sequence of
// overlapping segments. Emission order is the chunk order.
type Segmenter interface {
	Segment(text string) ([]Segment, error)
}

// TokenCounter estimates the token count of a text. Implementations
// may wrap a precise tokenizer; a deterministic heuristic is the
// default.
type TokenCounter interface {
	Count(text string) int
}
