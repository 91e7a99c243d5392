package tiktoken

import (
	"context"
	"strings"
	"testing"

	"github.com/corebpe/tiktoken/internal/bpe"
)

// registerFixture registers a small in-memory vocab under a unique name so
// tests never depend on network access or the real built-in encodings, and
// cleans it up afterward so the process-wide registry stays pristine.
func registerFixture(t *testing.T, name string) *Encoding {
	t.Helper()
	ranks := make(map[string]Rank, 256+4)
	for i := 0; i < 256; i++ {
		ranks[string([]byte{byte(i)})] = Rank(i)
	}
	ranks["hello"] = 1000
	ranks[" world"] = 1001
	specials := map[string]Rank{"<|endoftext|>": 2000}

	if err := RegisterMergeableRanks(name, bpe.PatternLegacy, ranks, specials, nil); err != nil {
		t.Fatalf("register fixture: %v", err)
	}
	t.Cleanup(func() { _ = Unregister(name) })

	enc, err := GetEncoding(context.Background(), name)
	if err != nil {
		t.Fatalf("get encoding: %v", err)
	}
	return enc
}

func TestGetEncodingUnknownName(t *testing.T) {
	if _, err := GetEncoding(context.Background(), "not-a-real-encoding"); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}

func TestGetEncodingBuildIsCached(t *testing.T) {
	enc1 := registerFixture(t, "fixture-cached")
	enc2, err := GetEncoding(context.Background(), "fixture-cached")
	if err != nil {
		t.Fatalf("get encoding: %v", err)
	}
	if enc1.enc != enc2.enc {
		t.Fatal("expected the same underlying *bpe.Encoder to be reused")
	}
}

func TestEncodingEncodeDecodeRoundTrip(t *testing.T) {
	enc := registerFixture(t, "fixture-roundtrip")
	text := "hello world, hello again"
	tokens, err := enc.Encode(text, AllowNone())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := enc.Decode(tokens); got != text {
		t.Fatalf("got %q want %q", got, text)
	}
}

func TestEncodingTokenCountMatchesEncode(t *testing.T) {
	enc := registerFixture(t, "fixture-count")
	text := "hello world"
	tokens, err := enc.Encode(text, AllowNone())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	count, err := enc.TokenCount(text, AllowNone())
	if err != nil {
		t.Fatalf("token count: %v", err)
	}
	if count != len(tokens) {
		t.Fatalf("count=%d len(tokens)=%d", count, len(tokens))
	}
}

func TestSpecialTokenPolicies(t *testing.T) {
	enc := registerFixture(t, "fixture-specials")
	text := "hello<|endoftext|>"

	if _, err := enc.Encode(text, AllowNone()); err == nil {
		t.Fatal("expected error under AllowNone")
	}
	if _, err := enc.Encode(text, AllowAll()); err != nil {
		t.Fatalf("AllowAll: %v", err)
	}
	if _, err := enc.Encode(text, AllowOnly("<|endoftext|>")); err != nil {
		t.Fatalf("AllowOnly: %v", err)
	}
	if _, err := enc.Encode(text, DisallowOnly("<|endoftext|>")); err == nil {
		t.Fatal("expected error under DisallowOnly naming the only special present")
	}
}

func TestEncodeBatchAndDecodeBatchPreserveOrder(t *testing.T) {
	enc := registerFixture(t, "fixture-batch")
	texts := []string{"hello", " world", "hello world", "abc"}
	tokenSeqs, err := enc.EncodeBatch(context.Background(), texts, AllowNone(), 2)
	if err != nil {
		t.Fatalf("encode batch: %v", err)
	}
	decoded := enc.DecodeBatch(tokenSeqs, 2)
	for i, text := range texts {
		if decoded[i] != text {
			t.Fatalf("slot %d: got %q want %q", i, decoded[i], text)
		}
	}
}

func TestEncodeBatchPropagatesError(t *testing.T) {
	enc := registerFixture(t, "fixture-batch-err")
	texts := []string{"hello", "hello<|endoftext|>"}
	if _, err := enc.EncodeBatch(context.Background(), texts, AllowNone(), 2); err == nil {
		t.Fatal("expected an error")
	}
}

func TestStreamEmitsAllTokens(t *testing.T) {
	enc := registerFixture(t, "fixture-stream")
	chunks, errs := enc.Stream(context.Background(), "hello world", AllowNone(), 1)
	var total int
	for c := range chunks {
		total += len(c.Tokens)
	}
	if err := <-errs; err != nil {
		t.Fatalf("stream error: %v", err)
	}
	tokens, err := enc.Encode("hello world", AllowNone())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if total != len(tokens) {
		t.Fatalf("streamed %d tokens, encode produced %d", total, len(tokens))
	}
}

func TestEncodeSingleTokenAndDecodeSingleTokenBytes(t *testing.T) {
	enc := registerFixture(t, "fixture-single")
	id, err := enc.EncodeSingleToken("hello")
	if err != nil {
		t.Fatalf("encode single token: %v", err)
	}
	bs, err := enc.DecodeSingleTokenBytes(id)
	if err != nil {
		t.Fatalf("decode single token: %v", err)
	}
	if string(bs) != "hello" {
		t.Fatalf("got %q want %q", bs, "hello")
	}
}

func TestNVocabAndMaxTokenValue(t *testing.T) {
	enc := registerFixture(t, "fixture-nvocab")
	if enc.NVocab() <= 0 {
		t.Fatalf("expected positive NVocab, got %d", enc.NVocab())
	}
	if enc.MaxTokenValue() == 0 {
		t.Fatalf("expected non-zero MaxTokenValue")
	}
}

func TestEncodingForModelUsesAliasTable(t *testing.T) {
	registerFixture(t, "fixture-for-alias")
	RegisterAlias("my-custom-model", "fixture-for-alias")
	t.Cleanup(func() { ResetRegistry() })

	enc, err := EncodingForModel(context.Background(), "my-custom-model")
	if err != nil {
		t.Fatalf("encoding for model: %v", err)
	}
	if enc.Name() != "fixture-for-alias" {
		t.Fatalf("got %q want fixture-for-alias", enc.Name())
	}
}

func TestErrorKindsRoundTripThroughPublicAPI(t *testing.T) {
	enc := registerFixture(t, "fixture-error-kind")
	_, err := enc.Encode("hello<|endoftext|>", AllowNone())
	if err == nil {
		t.Fatal("expected error")
	}
	var bpeErr *Error
	if e, ok := err.(*Error); ok {
		bpeErr = e
	} else {
		t.Fatalf("expected *Error, got %T", err)
	}
	if bpeErr.Kind != KindDisallowedSpecial {
		t.Fatalf("got kind %v want KindDisallowedSpecial", bpeErr.Kind)
	}
	if !strings.Contains(bpeErr.Error(), "<|endoftext|>") {
		t.Fatalf("expected error message to mention the literal, got %q", bpeErr.Error())
	}
}
