package segmenter

import (
	"fmt"

	"github.com/Aryan4717/media-mind-ai/internal/domain"
)

// Strategy selects how document text is split into chunks. Unknown
// values are rejected at the boundary rather than falling through to a
// default.
type Strategy string

const (
	StrategyFixed     Strategy = "fixed"
	StrategySentence  Strategy = "sentence"
	StrategyParagraph Strategy = "paragraph"
)

// ParseStrategy validates a strategy name from config or a request.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyFixed, StrategySentence, StrategyParagraph:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown chunking strategy %q: %w", s, domain.ErrInvalidInput)
	}
}
