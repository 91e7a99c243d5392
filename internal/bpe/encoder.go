package bpe

import (
	"fmt"
	"unicode/utf8"
)

// Encoder aggregates everything needed to encode and decode text for one
// named vocabulary: the compiled regex segmenter, rank table, special-token
// table, and reverse decoder. It is immutable after construction and safe
// for concurrent use.
type Encoder struct {
	Name string

	ranks    *rankTable
	merge    *mergeEngine
	seg      Segmenter
	specials *specialTable
	store    tokenStore

	maxTokenValue uint32
	nVocab        int
}

// New builds an Encoder from a finalized rank map, special-token map, and
// compiled segmenter. If explicitNVocab is non-nil, construction validates
// that |ranks|+|specials| == *explicitNVocab and the max token id equals
// explicitNVocab-1, per spec.md §4.5.
func New(name string, ranks RankMap, specials map[string]Rank, seg Segmenter, explicitNVocab *int) (*Encoder, error) {
	for bs, r := range ranks {
		for lit, sid := range specials {
			if r == sid {
				return nil, fmt.Errorf("bpe: rank %d (for %q) collides with special token %q", r, bs, lit)
			}
		}
	}

	rt := newRankTable(ranks)
	st := newSpecialTable(specials)
	store := newTokenStore(ranks)

	maxTok := rt.maxRank
	for _, id := range specials {
		if id > maxTok {
			maxTok = id
		}
	}

	e := &Encoder{
		Name:          name,
		ranks:         rt,
		merge:         newMergeEngine(rt),
		seg:           seg,
		specials:      st,
		store:         store,
		maxTokenValue: maxTok,
		nVocab:        int(maxTok) + 1,
	}

	if explicitNVocab != nil {
		want := *explicitNVocab
		if len(ranks)+len(specials) != want {
			return nil, fmt.Errorf("bpe: encoding %s: ranks+specials=%d does not match explicit n_vocab=%d", name, len(ranks)+len(specials), want)
		}
		if int(maxTok) != want-1 {
			return nil, fmt.Errorf("bpe: encoding %s: max token id=%d does not match explicit n_vocab-1=%d", name, maxTok, want-1)
		}
		e.nVocab = want
	}
	return e, nil
}

// NVocab returns max_token_id + 1 (or the validated explicit vocab size).
func (e *Encoder) NVocab() int { return e.nVocab }

// MaxTokenValue returns the largest token id the encoder can ever emit.
func (e *Encoder) MaxTokenValue() uint32 { return e.maxTokenValue }

// ResolvePolicy resolves the caller's two policy selections into concrete
// allowed/disallowed literal sets (spec.md §4.4).
func (e *Encoder) ResolvePolicy(allowedVal PolicyValue, allowedOnly map[string]struct{}, disallowedVal PolicyValue, disallowedOnly map[string]struct{}) Policy {
	return e.specials.ResolvePolicy(allowedVal, allowedOnly, disallowedVal, disallowedOnly)
}

// ordinaryPiece encodes one regex-segment piece, preferring the direct
// whole-piece rank lookup (the "fast path" in spec.md §4.2) before falling
// back to the merge engine.
func (e *Encoder) ordinaryPiece(piece string) ([]Rank, func()) {
	if r, ok := e.ranks.lookup(piece); ok {
		buf, release := e.merge.acquireTokens(1)
		buf = append(buf[:0], r)
		return buf, release
	}
	return e.merge.merge(piece)
}

// walk is the single cursor-based state machine shared by Encode,
// EncodeWithUnstable, and Stream (spec.md §4.5). onOrdinary is called once
// per regex-segmented piece with its resolved tokens and character-offset
// range in the original text; onSpecial is called once per accepted
// special token with its id and character position.
func (e *Encoder) walk(
	text string,
	policy Policy,
	onOrdinary func(piece string, tokens []Rank, charStart, charEnd int),
	onSpecial func(lit string, id Rank, charPos int),
) (lastPieceLen int, err error) {
	cursor := 0
	charPos := 0
	for cursor < len(text) {
		if lit, ok := e.specials.matchAtAny(text, cursor); ok {
			if _, dis := policy.Disallowed[lit]; dis {
				return 0, errDisallowedSpecial(lit)
			}
			if _, al := policy.Allowed[lit]; al {
				id := e.specials.enc[lit]
				if onSpecial != nil {
					onSpecial(lit, id, charPos)
				}
				cursor += len(lit)
				charPos += utf8.RuneCountInString(lit)
				lastPieceLen = 0
				continue
			}
			// neither allowed nor disallowed: falls through to the
			// next-special-start check below, which will equal cursor.
		}

		next := e.specials.nextOccurrence(text, cursor)
		if next < 0 {
			next = len(text)
		}
		if next == cursor {
			_, sz := utf8.DecodeRuneInString(text[cursor:])
			if sz == 0 {
				sz = 1
			}
			piece := text[cursor : cursor+sz]
			toks, release := e.ordinaryPiece(piece)
			tokCopy := append([]Rank(nil), toks...)
			release()
			if onOrdinary != nil {
				onOrdinary(piece, tokCopy, charPos, charPos+utf8.RuneCountInString(piece))
			}
			lastPieceLen = len(tokCopy)
			cursor += sz
			charPos += utf8.RuneCountInString(piece)
			continue
		}

		chunk := text[cursor:next]
		spans, serr := e.seg.Segments(chunk)
		if serr != nil {
			return 0, serr
		}
		for _, sp := range spans {
			piece := chunk[sp.Start:sp.End]
			toks, release := e.ordinaryPiece(piece)
			tokCopy := append([]Rank(nil), toks...)
			release()
			pieceCharStart := charPos
			pieceCharEnd := pieceCharStart + utf8.RuneCountInString(piece)
			if onOrdinary != nil {
				onOrdinary(piece, tokCopy, pieceCharStart, pieceCharEnd)
			}
			lastPieceLen = len(tokCopy)
			charPos = pieceCharEnd
		}
		cursor = next
	}
	return lastPieceLen, nil
}

// EncodeWalkCollect exposes the shared walk state machine to external
// packages (the stream adapter) that need per-piece callbacks instead of a
// flat token slice. Semantics match Encode's.
func (e *Encoder) EncodeWalkCollect(
	text string,
	policy Policy,
	onOrdinary func(piece string, tokens []Rank, charStart, charEnd int),
	onSpecial func(lit string, id Rank, charPos int),
) (lastPieceLen int, err error) {
	return e.walk(text, policy, onOrdinary, onSpecial)
}

// Encode implements spec.md §4.5's primary mode.
func (e *Encoder) Encode(text string, policy Policy) ([]Rank, int, error) {
	var out []Rank
	lastLen, err := e.walk(text, policy,
		func(piece string, tokens []Rank, charStart, charEnd int) { out = append(out, tokens...) },
		func(lit string, id Rank, charPos int) { out = append(out, id) },
	)
	if err != nil {
		return nil, 0, err
	}
	return out, lastLen, nil
}

// TokenCount implements spec.md §4.5's count-only mode: it never
// materializes a token slice for ordinary pieces.
func (e *Encoder) TokenCount(text string, policy Policy) (int, error) {
	count := 0
	cursor := 0
	for cursor < len(text) {
		if lit, ok := e.specials.matchAtAny(text, cursor); ok {
			if _, dis := policy.Disallowed[lit]; dis {
				return 0, errDisallowedSpecial(lit)
			}
			if _, al := policy.Allowed[lit]; al {
				count++
				cursor += len(lit)
				continue
			}
		}
		next := e.specials.nextOccurrence(text, cursor)
		if next < 0 {
			next = len(text)
		}
		if next == cursor {
			_, sz := utf8.DecodeRuneInString(text[cursor:])
			if sz == 0 {
				sz = 1
			}
			count += e.countPiece(text[cursor : cursor+sz])
			cursor += sz
			continue
		}
		chunk := text[cursor:next]
		spans, err := e.seg.Segments(chunk)
		if err != nil {
			return 0, err
		}
		for _, sp := range spans {
			count += e.countPiece(chunk[sp.Start:sp.End])
		}
		cursor = next
	}
	return count, nil
}

func (e *Encoder) countPiece(piece string) int {
	if _, ok := e.ranks.lookup(piece); ok {
		return 1
	}
	return e.merge.mergeCount(piece)
}

// EncodeSingleToken returns the token id for a string that is exactly one
// known special literal or one rank-table entry, per spec.md §4.5.
func (e *Encoder) EncodeSingleToken(s string) (Rank, error) {
	if id, ok := e.specials.enc[s]; ok {
		return id, nil
	}
	if r, ok := e.ranks.lookup(s); ok {
		return r, nil
	}
	return 0, errSingleTokenNotFound(s)
}

// DecodeSingleTokenBytes returns the bytes for a single token id, per
// spec.md §4.5.
func (e *Encoder) DecodeSingleTokenBytes(id Rank) ([]byte, error) {
	if lit, ok := e.specials.dec[id]; ok {
		return []byte(lit), nil
	}
	if bs, ok := e.ranks.reverse(id); ok {
		return []byte(bs), nil
	}
	return nil, errTokenBytesNotFound(id)
}

// IsSpecialToken reports whether id is a reserved special-token id.
func (e *Encoder) IsSpecialToken(id Rank) bool {
	_, ok := e.specials.dec[id]
	return ok
}

// PrefixSearch exposes the rank table's prefix search for the unstable-
// completion algorithm and for external callers that want completion hints.
func (e *Encoder) PrefixSearch(prefix string) []struct {
	Bytes string
	Rank  Rank
} {
	return e.ranks.prefixSearch(prefix)
}

// RawMerge runs the merge engine directly on bytes, bypassing regex
// segmentation. Used by unstable-completion reconstruction (spec.md §4.5)
// and by encoding possibilities that are not valid UTF-8.
func (e *Encoder) RawMerge(piece string) []Rank {
	toks, release := e.merge.merge(piece)
	out := append([]Rank(nil), toks...)
	release()
	return out
}

// EncodeOrdinaryPiece runs regex segmentation plus merge on piece, used by
// unstable-completion reconstruction for possibilities that are valid UTF-8.
func (e *Encoder) EncodeOrdinaryPiece(piece string) ([]Rank, error) {
	spans, err := e.seg.Segments(piece)
	if err != nil {
		return nil, err
	}
	var out []Rank
	for _, sp := range spans {
		toks, release := e.ordinaryPiece(piece[sp.Start:sp.End])
		out = append(out, toks...)
		release()
	}
	return out, nil
}
