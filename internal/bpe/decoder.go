package bpe

import "unicode/utf8"

// DecodeBytes concatenates the reverse-lookup bytes for tokens, silently
// skipping any token id that doesn't resolve (spec.md §4.6).
func (e *Encoder) DecodeBytes(tokens []Rank) []byte {
	var out []byte
	e.DecodeBytesInto(&out, tokens)
	return out
}

// DecodeBytesInto appends into dst, avoiding an intermediate allocation when
// the caller reuses a buffer across calls.
func (e *Encoder) DecodeBytesInto(dst *[]byte, tokens []Rank) {
	buf := *dst
	for _, t := range tokens {
		if e.store.AppendInto(&buf, t) {
			continue
		}
		if lit, ok := e.specials.dec[t]; ok {
			buf = append(buf, lit...)
		}
	}
	*dst = buf
}

// DecodeString decodes tokens and converts to a Go string, substituting one
// Unicode replacement character for each byte that is not part of a valid
// UTF-8 sequence (a plain string(bytes) conversion would keep such bytes).
func (e *Encoder) DecodeString(tokens []Rank) string {
	bs := e.DecodeBytes(tokens)
	if utf8.Valid(bs) {
		return string(bs)
	}
	return toValidUTF8Lossy(bs)
}

func toValidUTF8Lossy(bs []byte) string {
	out := make([]rune, 0, len(bs))
	for i := 0; i < len(bs); {
		r, size := utf8.DecodeRune(bs[i:])
		out = append(out, r)
		i += size
	}
	return string(out)
}

// DecodeWithOffsets decodes tokens to text and reports, per token, the
// character offset at which it begins in the decoded text. A token whose
// first byte is a UTF-8 continuation byte (it begins mid-scalar) attaches
// to the preceding scalar: its offset is max(0, charLen-1).
//
// This counts characters as Unicode scalars via non-continuation-byte
// classification, per spec.md §9's intentional parity divergence from the
// UTF-16-code-unit counting some upstream implementations use — surrogate-
// pair emoji may report different offsets there than here.
func (e *Encoder) DecodeWithOffsets(tokens []Rank) (string, []int) {
	var buf []byte
	offsets := make([]int, len(tokens))
	charLen := 0
	for i, t := range tokens {
		start := len(buf)
		if !e.store.AppendInto(&buf, t) {
			if lit, ok := e.specials.dec[t]; ok {
				buf = append(buf, lit...)
			}
		}
		tokBytes := buf[start:]
		if len(tokBytes) > 0 && isContinuationByte(tokBytes[0]) {
			off := charLen - 1
			if off < 0 {
				off = 0
			}
			offsets[i] = off
		} else {
			offsets[i] = charLen
		}
		charLen += countScalarStarts(tokBytes)
	}
	return string(buf), offsets
}

func isContinuationByte(b byte) bool { return b&0xC0 == 0x80 }

func countScalarStarts(bs []byte) int {
	n := 0
	for _, b := range bs {
		if !isContinuationByte(b) {
			n++
		}
	}
	return n
}

// TokenByteValues returns, for every integer in [0, MaxTokenValue], the
// decoded bytes if the token resolves. Non-dense tokens are omitted.
func (e *Encoder) TokenByteValues() [][]byte {
	var out [][]byte
	for id := Rank(0); id <= e.maxTokenValue; id++ {
		if bs, err := e.DecodeSingleTokenBytes(id); err == nil {
			out = append(out, bs)
		}
	}
	return out
}
