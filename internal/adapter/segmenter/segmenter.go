package segmenter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Aryan4717/media-mind-ai/internal/domain"
	"github.com/Aryan4717/media-mind-ai/internal/port"
)

// boundaryRatio is how far back from the naive window edge the fixed
// strategy is allowed to trim to a whitespace boundary. A boundary
// earlier than 70% of the window is kept intact to avoid degenerate
// short chunks.
const boundaryRatio = 0.7

// EstimateCounter approximates tokens as one per four characters, the
// deterministic fallback used when no precise tokenizer is configured.
type EstimateCounter struct{}

func (EstimateCounter) Count(text string) int {
	return utf8.RuneCountInString(text) / 4
}

// Splitter segments document text into overlapping chunks under one of
// the closed strategies. Sizes, overlap and offsets all count
// characters (runes), not bytes, so multi-byte text never gets cut
// mid-rune and a chunk size means the same thing in any script.
type Splitter struct {
	chunkSize int
	overlap   int
	strategy  Strategy
	counter   port.TokenCounter
}

func New(chunkSize, overlap int, strategy Strategy, counter port.TokenCounter) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d: %w", chunkSize, domain.ErrInvalidInput)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("overlap %d must be in [0, %d): %w", overlap, chunkSize, domain.ErrInvalidInput)
	}
	switch strategy {
	case StrategyFixed, StrategySentence, StrategyParagraph:
	default:
		return nil, fmt.Errorf("unknown chunking strategy %q: %w", strategy, domain.ErrInvalidInput)
	}
	if counter == nil {
		counter = EstimateCounter{}
	}
	return &Splitter{
		chunkSize: chunkSize,
		overlap:   overlap,
		strategy:  strategy,
		counter:   counter,
	}, nil
}

// Segment splits text into ordered segments. Empty input is a usage
// error; an empty result from non-empty input indicates a boundary bug
// and is surfaced as such rather than silently truncated.
func (s *Splitter) Segment(text string) ([]port.Segment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("segment: text is empty: %w", domain.ErrInvalidInput)
	}

	var segs []port.Segment
	switch s.strategy {
	case StrategySentence:
		segs = s.bySentence(text)
	case StrategyParagraph:
		segs = s.byParagraph(text)
	default:
		segs = s.byFixedWindow(text)
	}

	if len(segs) == 0 {
		return nil, fmt.Errorf("segment: %d chars in, zero chunks out: %w", len(text), domain.ErrEmptySegmentation)
	}
	return segs, nil
}

// byFixedWindow walks the text in windows of chunkSize runes. When the
// right edge falls mid-text the window is trimmed back to the last
// space, but only if that boundary lies in the trailing 30% of the
// window. The next window starts overlap runes before the previous
// window's actual end.
func (s *Splitter) byFixedWindow(text string) []port.Segment {
	runes := []rune(text)
	var segs []port.Segment
	start := 0

	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			segs = s.appendSegment(segs, string(runes[start:]), start, len(runes))
			break
		}

		window := runes[start:end]
		if last := lastSpace(window); float64(last) > float64(s.chunkSize)*boundaryRatio {
			window = window[:last]
			end = start + last
		}
		segs = s.appendSegment(segs, string(window), start, end)

		next := end - s.overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return segs
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}

// bySentence accumulates sentences until the next one would exceed
// chunkSize, then closes the chunk and seeds the next one with the
// trailing overlap runes of the closed text.
func (s *Splitter) bySentence(text string) []port.Segment {
	sentences := splitSentences(text)

	var segs []port.Segment
	var current []string
	size := 0
	startChar := 0

	for _, sentence := range sentences {
		sentenceLen := utf8.RuneCountInString(sentence)
		if size+sentenceLen > s.chunkSize && len(current) > 0 {
			chunkText := strings.Join(current, " ")
			chunkLen := utf8.RuneCountInString(chunkText)
			segs = s.appendSegment(segs, chunkText, startChar, startChar+chunkLen)
			prevEnd := startChar + chunkLen

			seed := ""
			if s.overlap > 0 {
				seed = chunkText
				if r := []rune(chunkText); s.overlap < len(r) {
					seed = string(r[len(r)-s.overlap:])
				}
			}
			if seed != "" {
				current = []string{seed, sentence}
				startChar = prevEnd - utf8.RuneCountInString(seed)
			} else {
				current = []string{sentence}
				startChar = prevEnd
			}
			size = utf8.RuneCountInString(strings.Join(current, " "))
		} else {
			current = append(current, sentence)
			size += sentenceLen + 1
		}
	}

	if len(current) > 0 {
		chunkText := strings.Join(current, " ")
		segs = s.appendSegment(segs, chunkText, startChar, startChar+utf8.RuneCountInString(chunkText))
	}
	return segs
}

// byParagraph uses the same accumulation as bySentence over blank-line
// separated blocks, but applies no overlap seeding between chunks.
// The asymmetry with bySentence is deliberate, observable behavior.
func (s *Splitter) byParagraph(text string) []port.Segment {
	var segs []port.Segment
	var current []string
	size := 0
	startChar := 0

	for _, block := range strings.Split(text, "\n\n") {
		para := strings.TrimSpace(block)
		if para == "" {
			continue
		}

		paraLen := utf8.RuneCountInString(para)
		if size+paraLen > s.chunkSize && len(current) > 0 {
			chunkText := strings.Join(current, "\n\n")
			chunkLen := utf8.RuneCountInString(chunkText)
			segs = s.appendSegment(segs, chunkText, startChar, startChar+chunkLen)
			startChar += chunkLen
			current = []string{para}
			size = paraLen
		} else {
			current = append(current, para)
			size += paraLen + 2
		}
	}

	if len(current) > 0 {
		chunkText := strings.Join(current, "\n\n")
		segs = s.appendSegment(segs, chunkText, startChar, startChar+utf8.RuneCountInString(chunkText))
	}
	return segs
}

// appendSegment records a window unless it is blank. Fixed windows are
// stored stripped; sentence and paragraph chunks keep their text
// verbatim since their boundaries are already word-aligned. end is the
// rune offset of the actual window end, not the naive edge.
func (s *Splitter) appendSegment(segs []port.Segment, window string, start, end int) []port.Segment {
	text := window
	if s.strategy == StrategyFixed {
		text = strings.TrimSpace(window)
	}
	if strings.TrimSpace(text) == "" {
		return segs
	}
	return append(segs, port.Segment{
		Text:       text,
		StartChar:  start,
		EndChar:    end,
		TokenCount: s.counter.Count(text),
	})
}

// splitSentences cuts text after runs of sentence-terminal punctuation
// followed by whitespace. The terminator stays with its sentence; the
// separating whitespace is dropped.
func splitSentences(text string) []string {
	var out []string
	start := 0
	i := 0

	for i < len(text) {
		if !isTerminal(text[i]) {
			i++
			continue
		}
		j := i + 1
		for j < len(text) && isTerminal(text[j]) {
			j++
		}
		if j < len(text) && isSpace(text[j]) {
			out = append(out, text[start:j])
			for j < len(text) && isSpace(text[j]) {
				j++
			}
			start = j
		}
		i = j
	}

	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func isTerminal(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
