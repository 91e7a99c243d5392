package bpe

import "testing"

func TestDecodeWithOffsetsProperties(t *testing.T) {
	enc := newTestEncoder()
	texts := []string{
		"hello world",
		"hello 👋 world",
		"héllo wörld",
		"a",
		"",
	}
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			tokens, _, err := enc.Encode(text, allowNone(enc))
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			decoded, offsets := enc.DecodeWithOffsets(tokens)
			if decoded != text {
				t.Fatalf("decoded text = %q want %q", decoded, text)
			}
			if len(offsets) != len(tokens) {
				t.Fatalf("len(offsets)=%d want %d", len(offsets), len(tokens))
			}
			if len(offsets) > 0 && offsets[0] != 0 {
				t.Fatalf("offsets[0] = %d want 0", offsets[0])
			}
			for i := 1; i < len(offsets); i++ {
				if offsets[i] < offsets[i-1] {
					t.Fatalf("offsets not monotonic at %d: %v", i, offsets)
				}
			}
		})
	}
}

func TestDecodeBytesSkipsUnknownTokens(t *testing.T) {
	enc := newTestEncoder()
	tokens := []Rank{Rank('h'), Rank('i'), 424242}
	got := enc.DecodeBytes(tokens)
	if string(got) != "hi" {
		t.Fatalf("got %q want %q", got, "hi")
	}
}

func TestDecodeStringInvalidUTF8Lossy(t *testing.T) {
	enc := newTestEncoder()
	// 0x80 alone is a lone continuation byte: not valid UTF-8 on its own.
	tokens := []Rank{Rank('a'), 0x80, Rank('b')}
	got := enc.DecodeString(tokens)
	if len(got) == 0 {
		t.Fatal("expected non-empty lossy decode")
	}
}

func TestTokenByteValuesDense(t *testing.T) {
	enc := newTestEncoder()
	values := enc.TokenByteValues()
	if len(values) == 0 {
		t.Fatal("expected non-empty token byte values")
	}
	for _, bs := range values {
		if bs == nil {
			t.Fatal("expected no nil entries")
		}
	}
}
