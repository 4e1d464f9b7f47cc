// Package aligner maps arbitrary text back onto time-coded transcript
// segments. It is pure computation: no state, no I/O.
package aligner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Aryan4717/media-mind-ai/internal/domain"
)

const (
	// MatchThreshold is the minimum Jaccard token-set similarity for a
	// segment to count as containing the text.
	MatchThreshold = 0.3

	// MergeGap is the maximum silence, in seconds, bridged when merging
	// adjacent matching segments.
	MergeGap = 2.0
)

// FindMatches returns the merged time ranges whose segments plausibly
// contain the given text, sorted by ascending start. Input segments
// need not be pre-sorted.
func FindMatches(text string, segments []domain.TranscriptSegment) []domain.TimeRange {
	if strings.TrimSpace(text) == "" || len(segments) == 0 {
		return nil
	}

	needle := strings.ToLower(strings.TrimSpace(text))

	var hits []domain.TimeRange
	for _, seg := range segments {
		if textOverlap(needle, strings.ToLower(seg.Text), MatchThreshold) {
			hits = append(hits, domain.TimeRange{
				Start:    seg.Start,
				End:      seg.End,
				Text:     seg.Text,
				Duration: seg.End - seg.Start,
			})
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Start < hits[j].Start })
	return mergeRanges(hits, MergeGap)
}

// textOverlap reports whether the Jaccard similarity between the two
// texts' whitespace token sets reaches the threshold. Empty token sets
// never match; there is no division by zero.
func textOverlap(a, b string, threshold float64) bool {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return false
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return false
	}
	return float64(intersection)/float64(union) >= threshold
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(text) {
		set[tok] = struct{}{}
	}
	return set
}

// mergeRanges merges ranges sorted by start: a range is folded into the
// running one when its start falls within gap seconds of the running
// end. Text is concatenated with a single space and duration is
// recomputed.
func mergeRanges(ranges []domain.TimeRange, gap float64) []domain.TimeRange {
	if len(ranges) == 0 {
		return nil
	}

	merged := []domain.TimeRange{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End+gap {
			if r.End > last.End {
				last.End = r.End
			}
			last.Text += " " + r.Text
			last.Duration = last.End - last.Start
		} else {
			merged = append(merged, r)
		}
	}
	return merged
}

// FormatTimestamp renders seconds as MM:SS.mmm, switching to
// HH:MM:SS.mmm at one hour. Zero-padded, milliseconds always three
// digits.
func FormatTimestamp(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int(seconds/60) % 60
	secs := int(seconds) % 60
	millis := int((seconds - float64(int(seconds))) * 1000)

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
	}
	return fmt.Sprintf("%02d:%02d.%03d", minutes, secs, millis)
}
