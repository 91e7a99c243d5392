package bpe

// testVocab builds a small, hand-rolled rank table exercising both the
// whole-piece fast path and the byte-pair merge fallback, plus a handful of
// special tokens. It is shared across this package's tests so each test
// doesn't have to restate the same fixture.
func testVocab() (RankMap, map[string]Rank) {
	ranks := make(RankMap, 256+16)
	for i := 0; i < 256; i++ {
		ranks[string([]byte{byte(i)})] = Rank(i)
	}

	next := Rank(1000)
	add := func(s string) {
		ranks[s] = next
		next++
	}

	// Whole-word entries hit the encoder's fast path directly.
	add("hello")
	add(" hello")
	add(" world")
	add(" fant")
	add(" fanta")
	add(" fantail")
	add(" fantastic")
	add(" lo")
	add("lo")

	specials := map[string]Rank{
		"<|endoftext|>": 50000,
		"<|pad|>":        50001,
	}
	return ranks, specials
}

func newTestEncoder() *Encoder {
	ranks, specials := testVocab()
	seg, err := NewSegmenter(PatternLegacy)
	if err != nil {
		panic(err)
	}
	enc, err := New("test", ranks, specials, seg, nil)
	if err != nil {
		panic(err)
	}
	return enc
}
