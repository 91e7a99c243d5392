package bpe

import (
	"fmt"
	"sync"

	"github.com/dlclark/regexp2"
)

// Span is a half-open byte-offset range into the string a Segmenter was
// asked to split.
type Span struct{ Start, End int }

// Segmenter applies an encoding's Unicode-aware regex to split a string into
// ordinary, non-overlapping, left-to-right match spans.
type Segmenter interface {
	Segments(s string) ([]Span, error)
}

// The three distinct pattern families behind the seven named encodings.
// gpt2/r50k_base/p50k_base/p50k_edit share one pattern; cl100k_base has its
// own; o200k_base/o200k_harmony share one. Go's stdlib regexp (RE2) cannot
// express the `(?!\S)` trailing-whitespace lookahead these patterns rely
// on, so segmentation is built on dlclark/regexp2 instead, the same
// library reached for by the tiktoken ports in the retrieval pack
// (ardanlabs-ai-training, nanoschnack).
const (
	PatternLegacy  = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`
	PatternCl100k  = `(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+(?!\S)|\s+`
	PatternO200k   = `[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]*[\p{Ll}\p{Lm}\p{Lo}\p{M}]+(?i:'s|'t|'re|'ve|'m|'ll|'d)?|[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]+[\p{Ll}\p{Lm}\p{Lo}\p{M}]*(?i:'s|'t|'re|'ve|'m|'ll|'d)?|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n/]*|\s*[\r\n]+|\s+(?!\S)|\s+`
)

var (
	segCacheMu sync.Mutex
	segCache   = map[string]*regexp2Segmenter{}
)

// NewSegmenter compiles (or reuses a cached compilation of) pattern and
// returns a Segmenter for it. Encoders of the same kind constructed
// repeatedly share one compiled regexp2.Regexp.
func NewSegmenter(pattern string) (Segmenter, error) {
	segCacheMu.Lock()
	defer segCacheMu.Unlock()
	if s, ok := segCache[pattern]; ok {
		return s, nil
	}
	re, err := regexp2.Compile(pattern, regexp2.Unicode)
	if err != nil {
		return nil, fmt.Errorf("bpe: compile segmenter pattern: %w", err)
	}
	re.MatchTimeout = 0
	s := &regexp2Segmenter{re: re}
	segCache[pattern] = s
	return s, nil
}

type regexp2Segmenter struct {
	re *regexp2.Regexp
}

// Segments runs the compiled pattern over s and returns non-overlapping,
// left-to-right match spans as byte offsets. Matching happens over runes
// (regexp2's native unit), then rune positions are translated back to byte
// offsets via a prefix table built once per call.
func (s *regexp2Segmenter) Segments(str string) ([]Span, error) {
	if str == "" {
		return nil, nil
	}
	runes := []rune(str)
	byteOffsets := make([]int, len(runes)+1)
	off := 0
	for i, r := range runes {
		byteOffsets[i] = off
		off += len(string(r))
	}
	byteOffsets[len(runes)] = off

	var spans []Span
	m, err := s.re.FindStringMatch(str)
	if err != nil {
		return nil, fmt.Errorf("bpe: segment match: %w", err)
	}
	for m != nil {
		start := m.Index
		end := m.Index + m.Length
		if end > len(runes) {
			end = len(runes)
		}
		spans = append(spans, Span{Start: byteOffsets[start], End: byteOffsets[end]})
		m, err = s.re.FindNextMatch(m)
		if err != nil {
			return nil, fmt.Errorf("bpe: segment next match: %w", err)
		}
	}
	return spans, nil
}
