package bpe

import (
	"sort"
	"unicode/utf8"
)

// EncodeWithUnstable implements spec.md §4.5's unstable-completion mode: it
// runs the ordinary encode loop, then retracts the trailing "unstable"
// tokens and enumerates plausible completions for them.
func (e *Encoder) EncodeWithUnstable(text string, policy Policy) (stable []Rank, completions [][]Rank, err error) {
	var tokens []Rank
	lastPieceLen, err := e.walk(text, policy,
		func(piece string, toks []Rank, charStart, charEnd int) { tokens = append(tokens, toks...) },
		func(lit string, id Rank, charPos int) { tokens = append(tokens, id) },
	)
	if err != nil {
		return nil, nil, err
	}
	if lastPieceLen == 0 || len(tokens) == 0 {
		return tokens, nil, nil
	}

	lastPieceLen = e.extendUnstableForWhitespace(tokens, lastPieceLen)

	splitIdx := len(tokens) - lastPieceLen
	stable = append([]Rank(nil), tokens[:splitIdx]...)
	unstableTokens := tokens[splitIdx:]

	var unstableBytes []byte
	for _, t := range unstableTokens {
		bs, derr := e.DecodeSingleTokenBytes(t)
		if derr != nil {
			continue
		}
		unstableBytes = append(unstableBytes, bs...)
	}
	if len(unstableBytes) == 0 {
		return stable, nil, nil
	}

	seen := map[string]struct{}{}
	var out [][]Rank
	add := func(seq []Rank) {
		key := string(ranksToBytesKey(seq))
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, seq)
	}

	unstableStr := string(unstableBytes)
	for _, kv := range e.ranks.prefixSearch(unstableStr) {
		add([]Rank{kv.Rank})
	}

	for i := 1; i < len(unstableBytes); i++ {
		prefix := unstableBytes[:i]
		suffix := string(unstableBytes[i:])
		for _, kv := range e.ranks.prefixSearch(suffix) {
			possibility := append(append([]byte(nil), prefix...), kv.Bytes...)
			var seq []Rank
			if utf8.Valid(possibility) {
				toks, perr := e.EncodeOrdinaryPiece(string(possibility))
				if perr != nil {
					continue
				}
				seq = toks
			} else {
				seq = e.RawMerge(string(possibility))
			}
			seq = takeUntilLength(e, seq, len(unstableBytes))
			if len(seq) > 0 {
				add(seq)
			}
		}
	}

	if endsWithWhitespaceScalar(unstableBytes) {
		lastScalarStart := lastScalarStart(unstableBytes)
		head := e.RawMerge(string(unstableBytes[:lastScalarStart]))
		tail := e.RawMerge(string(unstableBytes[lastScalarStart:]))
		combined := append(append([]Rank(nil), head...), tail...)
		add(combined)
	}

	sort.Slice(out, func(i, j int) bool {
		return lessRankSeq(out[i], out[j])
	})
	return stable, out, nil
}

// extendUnstableForWhitespace implements the whitespace-extension walk:
// while the token at the boundary of the last ordinary piece decodes to
// all-whitespace bytes, extend lastPieceLen leftward.
func (e *Encoder) extendUnstableForWhitespace(tokens []Rank, lastPieceLen int) int {
	boundary := len(tokens) - lastPieceLen
	if boundary < 0 || boundary >= len(tokens) {
		return lastPieceLen
	}
	if !e.isAllWhitespaceToken(tokens[boundary]) {
		return lastPieceLen
	}
	for boundary > 0 && e.isAllWhitespaceToken(tokens[boundary-1]) {
		boundary--
		lastPieceLen++
	}
	return lastPieceLen
}

func (e *Encoder) isAllWhitespaceToken(id Rank) bool {
	bs, err := e.DecodeSingleTokenBytes(id)
	if err != nil || len(bs) == 0 {
		return false
	}
	for _, b := range bs {
		if b != 0x20 && b != 0x09 && b != 0x0A {
			return false
		}
	}
	return true
}

// takeUntilLength takes tokens from the front of seq, accumulating decoded
// byte length, until the accumulated length is >= targetLen.
func takeUntilLength(e *Encoder, seq []Rank, targetLen int) []Rank {
	acc := 0
	for i, t := range seq {
		bs, err := e.DecodeSingleTokenBytes(t)
		if err != nil {
			return seq[:i]
		}
		acc += len(bs)
		if acc >= targetLen {
			return seq[:i+1]
		}
	}
	return seq
}

func ranksToBytesKey(seq []Rank) []byte {
	out := make([]byte, 0, len(seq)*4)
	for _, r := range seq {
		out = append(out, byte(r>>24), byte(r>>16), byte(r>>8), byte(r))
	}
	return out
}

func lessRankSeq(a, b []Rank) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func endsWithWhitespaceScalar(bs []byte) bool {
	r, _ := utf8.DecodeLastRune(bs)
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func lastScalarStart(bs []byte) int {
	_, size := utf8.DecodeLastRune(bs)
	if size <= 0 {
		return len(bs)
	}
	return len(bs) - size
}
