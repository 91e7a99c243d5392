package bpe

import "testing"

func segmentStrings(t *testing.T, seg Segmenter, text string) []string {
	t.Helper()
	spans, err := seg.Segments(text)
	if err != nil {
		t.Fatalf("segments: %v", err)
	}
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = text[sp.Start:sp.End]
	}
	return out
}

func TestLegacySegmenterBasics(t *testing.T) {
	seg, err := NewSegmenter(PatternLegacy)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	cases := []struct {
		text   string
		expect []string
	}{
		{"hello world", []string{"hello", " world"}},
		{"don't stop", []string{"don", "'t", " stop"}},
		{"a1b2", []string{"a", "1", "b", "2"}},
		{"", nil},
	}
	for _, tc := range cases {
		got := segmentStrings(t, seg, tc.text)
		if len(got) != len(tc.expect) {
			t.Fatalf("%q: got %v want %v", tc.text, got, tc.expect)
		}
		for i := range got {
			if got[i] != tc.expect[i] {
				t.Fatalf("%q: segment %d = %q want %q", tc.text, i, got[i], tc.expect[i])
			}
		}
	}
}

func TestCl100kSegmenterTrailingWhitespaceLookahead(t *testing.T) {
	seg, err := NewSegmenter(PatternCl100k)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	// "\s+(?!\S)" stops a whitespace run one space short of the next word,
	// so the run is "  " and the last space opens the " bar" segment.
	got := segmentStrings(t, seg, "foo   bar")
	want := []string{"foo", "  ", " bar"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("segment %d = %q want %q", i, got[i], want[i])
		}
	}
	joined := ""
	for _, s := range got {
		joined += s
	}
	if joined != "foo   bar" {
		t.Fatalf("segments do not reconstruct original text: %v", got)
	}
}

func TestSegmenterReconstructsOriginalText(t *testing.T) {
	for _, pattern := range []string{PatternLegacy, PatternCl100k, PatternO200k} {
		seg, err := NewSegmenter(pattern)
		if err != nil {
			t.Fatalf("compile %s: %v", pattern, err)
		}
		texts := []string{
			"The quick brown fox jumps over 13 lazy dogs!",
			"  leading and trailing  ",
			"line one\nline two\r\n\r\nline four",
			"héllo wörld 你好",
		}
		for _, text := range texts {
			spans, err := seg.Segments(text)
			if err != nil {
				t.Fatalf("segments: %v", err)
			}
			var rebuilt []byte
			for _, sp := range spans {
				rebuilt = append(rebuilt, text[sp.Start:sp.End]...)
			}
			if string(rebuilt) != text {
				t.Fatalf("pattern %q: rebuilt %q != original %q", pattern, rebuilt, text)
			}
		}
	}
}

func TestNewSegmenterCachesCompilation(t *testing.T) {
	s1, err := NewSegmenter(PatternLegacy)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	s2, err := NewSegmenter(PatternLegacy)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if s1 != s2 {
		t.Fatal("expected cached segmenter instance to be reused")
	}
}

func TestNewSegmenterInvalidPattern(t *testing.T) {
	if _, err := NewSegmenter("(unterminated"); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}
