package bpe

import (
	"strings"
	"testing"
)

func allowAll(e *Encoder) Policy {
	return e.ResolvePolicy(PolicyAll, nil, PolicyNone, nil)
}

func allowNone(e *Encoder) Policy {
	return e.ResolvePolicy(PolicyNone, nil, PolicyAutomatic, nil)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	enc := newTestEncoder()
	texts := []string{
		"",
		"hello world",
		"hello fant",
		"hello fantastic day",
		"a b c d e f g",
		"punctuation!! and, more.",
		"\t\n  mixed   whitespace\n",
	}
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			tokens, _, err := enc.Encode(text, allowNone(enc))
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got := enc.DecodeString(tokens)
			if got != text {
				t.Fatalf("round trip mismatch: got %q want %q", got, text)
			}
		})
	}
}

func TestTokenCountMatchesEncodeLength(t *testing.T) {
	enc := newTestEncoder()
	texts := []string{
		"",
		"hello world",
		"<|endoftext|>hello",
		"a b c d e f g h i j",
	}
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			tokens, _, err := enc.Encode(text, allowAll(enc))
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			count, err := enc.TokenCount(text, allowAll(enc))
			if err != nil {
				t.Fatalf("token count: %v", err)
			}
			if count != len(tokens) {
				t.Fatalf("token count=%d len(tokens)=%d", count, len(tokens))
			}
		})
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	enc := newTestEncoder()
	text := "hello fantastic world, hello again!"
	first, _, err := enc.Encode(text, allowNone(enc))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _, err := enc.Encode(text, allowNone(enc))
		if err != nil {
			t.Fatalf("encode rerun %d: %v", i, err)
		}
		if len(again) != len(first) {
			t.Fatalf("rerun %d: length changed: %v vs %v", i, again, first)
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("rerun %d: token %d differs: %v vs %v", i, j, again, first)
			}
		}
	}
}

func TestSpecialTokenStrictness(t *testing.T) {
	enc := newTestEncoder()
	text := "hello <|endoftext|> world"

	// Disallowed (automatic, nothing allowed): must error.
	_, _, err := enc.Encode(text, allowNone(enc))
	if err == nil {
		t.Fatal("expected disallowed special error, got nil")
	}
	bpeErr, ok := err.(*Error)
	if !ok || bpeErr.Kind != KindDisallowedSpecial {
		t.Fatalf("expected KindDisallowedSpecial, got %v", err)
	}

	// Explicitly allowed: must succeed and contain the special id.
	policy := enc.ResolvePolicy(PolicyOnly, map[string]struct{}{"<|endoftext|>": {}}, PolicyAutomatic, nil)
	tokens, _, err := enc.Encode(text, policy)
	if err != nil {
		t.Fatalf("encode with allowed special: %v", err)
	}
	found := false
	for _, tok := range tokens {
		if tok == enc.specials.enc["<|endoftext|>"] {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected special token id in output, got %v", tokens)
	}
}

func TestEncodeSingleTokenAndBack(t *testing.T) {
	enc := newTestEncoder()
	id, err := enc.EncodeSingleToken(" fantastic")
	if err != nil {
		t.Fatalf("encode single token: %v", err)
	}
	bs, err := enc.DecodeSingleTokenBytes(id)
	if err != nil {
		t.Fatalf("decode single token: %v", err)
	}
	if string(bs) != " fantastic" {
		t.Fatalf("got %q want %q", bs, " fantastic")
	}

	if _, err := enc.EncodeSingleToken("not-a-token-xyz"); err == nil {
		t.Fatal("expected error for unknown single token")
	}
	if _, err := enc.DecodeSingleTokenBytes(999999); err == nil {
		t.Fatal("expected error for unknown token id")
	}
}

func TestMergeFallbackOnUnknownWord(t *testing.T) {
	enc := newTestEncoder()
	// "lol" isn't a whole-piece entry; the merge engine must fall back to
	// the "lo" and single-byte entries to cover every byte.
	tokens, _, err := enc.Encode("lol", allowNone(enc))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(tokens) == 0 {
		t.Fatal("expected at least one token")
	}
	if got := enc.DecodeString(tokens); got != "lol" {
		t.Fatalf("got %q want %q", got, "lol")
	}
}

func TestIsSpecialToken(t *testing.T) {
	enc := newTestEncoder()
	id := enc.specials.enc["<|pad|>"]
	if !enc.IsSpecialToken(id) {
		t.Fatal("expected pad token to be reported special")
	}
	if enc.IsSpecialToken(0) {
		t.Fatal("byte-rank 0 must not be reported special")
	}
}

func TestExplicitNVocabValidation(t *testing.T) {
	// A dense vocabulary: |ranks| + |specials| equals max id + 1, which an
	// explicit n_vocab must satisfy alongside max id == n_vocab - 1.
	ranks := make(RankMap, 256)
	for i := 0; i < 256; i++ {
		ranks[string([]byte{byte(i)})] = Rank(i)
	}
	specials := map[string]Rank{"<|endoftext|>": 256}
	seg, err := NewSegmenter(PatternLegacy)
	if err != nil {
		t.Fatalf("compile segmenter: %v", err)
	}

	maxRank := Rank(0)
	for _, r := range ranks {
		if r > maxRank {
			maxRank = r
		}
	}
	for _, r := range specials {
		if r > maxRank {
			maxRank = r
		}
	}
	want := int(maxRank) + 1

	if _, err := New("test", ranks, specials, seg, &want); err != nil {
		t.Fatalf("valid explicit n_vocab rejected: %v", err)
	}
	bad := want + 1
	if _, err := New("test", ranks, specials, seg, &bad); err == nil {
		t.Fatal("expected error for mismatched explicit n_vocab")
	}
}

func TestNewRejectsRankSpecialCollision(t *testing.T) {
	ranks, _ := testVocab()
	specials := map[string]Rank{"<|weird|>": 0} // collides with byte rank 0
	seg, err := NewSegmenter(PatternLegacy)
	if err != nil {
		t.Fatalf("compile segmenter: %v", err)
	}
	if _, err := New("test", ranks, specials, seg, nil); err == nil {
		t.Fatal("expected collision error")
	} else if !strings.Contains(err.Error(), "collides") {
		t.Fatalf("unexpected error: %v", err)
	}
}
