// Package tiktoken is a byte-pair-encoding tokenizer compatible with the
// OpenAI encoding family (gpt2, r50k_base, p50k_base, p50k_edit,
// cl100k_base, o200k_base, o200k_harmony). It exposes encode, decode,
// token counting, unstable-suffix completion, streaming, and batch
// operations over a pluggable vocabulary registry.
package tiktoken

import (
	"context"
	"fmt"
	"sync"

	"github.com/corebpe/tiktoken/internal/batch"
	"github.com/corebpe/tiktoken/internal/bpe"
	"github.com/corebpe/tiktoken/internal/registry"
	"github.com/corebpe/tiktoken/internal/stream"
)

// Rank is a token id / merge priority. It doubles as the wire type for
// encoded tokens.
type Rank = bpe.Rank

// Encoding wraps a constructed Encoder for one named vocabulary, adding
// the registry-facing conveniences (model resolution, batch, streaming).
type Encoding struct {
	name string
	enc  *bpe.Encoder
}

// Name returns the encoding's registered name.
func (e *Encoding) Name() string { return e.name }

// NVocab returns max_token_id + 1 (or the validated explicit vocab size).
func (e *Encoding) NVocab() int { return e.enc.NVocab() }

// MaxTokenValue returns the largest token id the encoding can ever emit.
func (e *Encoding) MaxTokenValue() uint32 { return e.enc.MaxTokenValue() }

// Encode tokenizes text under the given special-token policy.
func (e *Encoding) Encode(text string, policy SpecialTokenPolicy) ([]Rank, error) {
	toks, _, err := e.enc.Encode(text, policy.resolve(e.enc))
	return toks, err
}

// TokenCount counts tokens without materializing them.
func (e *Encoding) TokenCount(text string, policy SpecialTokenPolicy) (int, error) {
	return e.enc.TokenCount(text, policy.resolve(e.enc))
}

// EncodeWithUnstable returns the stable token prefix plus a deduplicated,
// sorted set of plausible completions for the unstable suffix.
func (e *Encoding) EncodeWithUnstable(text string, policy SpecialTokenPolicy) (stable []Rank, completions [][]Rank, err error) {
	return e.enc.EncodeWithUnstable(text, policy.resolve(e.enc))
}

// Decode reconstructs text from tokens, substituting the Unicode
// replacement character for each byte that isn't part of valid UTF-8.
func (e *Encoding) Decode(tokens []Rank) string {
	return e.enc.DecodeString(tokens)
}

// DecodeBytes reconstructs the raw byte sequence from tokens.
func (e *Encoding) DecodeBytes(tokens []Rank) []byte {
	return e.enc.DecodeBytes(tokens)
}

// DecodeWithOffsets reconstructs text and reports, per token, the
// Unicode-scalar character offset at which it begins.
func (e *Encoding) DecodeWithOffsets(tokens []Rank) (string, []int) {
	return e.enc.DecodeWithOffsets(tokens)
}

// EncodeSingleToken resolves a string that is exactly one known token
// (special literal or rank-table entry) to its id.
func (e *Encoding) EncodeSingleToken(s string) (Rank, error) {
	return e.enc.EncodeSingleToken(s)
}

// DecodeSingleTokenBytes resolves one token id to its bytes.
func (e *Encoding) DecodeSingleTokenBytes(id Rank) ([]byte, error) {
	return e.enc.DecodeSingleTokenBytes(id)
}

// TokenByteValues enumerates bytes for every resolvable token id.
func (e *Encoding) TokenByteValues() [][]byte {
	return e.enc.TokenByteValues()
}

// EncodeBatch encodes every input under policy with up to maxConcurrency
// workers, preserving input order. The first encoding error cancels
// remaining work and is returned.
func (e *Encoding) EncodeBatch(ctx context.Context, texts []string, policy SpecialTokenPolicy, maxConcurrency int) ([][]Rank, error) {
	resolved := policy.resolve(e.enc)
	return batch.EncodeBatch(ctx, texts, maxConcurrency, func(text string) ([]Rank, error) {
		toks, _, err := e.enc.Encode(text, resolved)
		return toks, err
	})
}

// DecodeBatch decodes every token sequence with up to maxConcurrency
// workers, preserving input order.
func (e *Encoding) DecodeBatch(tokenSeqs [][]Rank, maxConcurrency int) []string {
	return batch.DecodeBatch(tokenSeqs, maxConcurrency, e.enc.DecodeString)
}

// StreamChunk tags provenance the same way stream.Chunk does; re-exported
// here so callers of the public package don't import internal/stream.
type StreamChunk = stream.Chunk

// Stream encodes text under policy and emits StreamChunks on the returned
// channel, splitting each ordinary segment's tokens into runs of at most
// chunkSize. Cancelling ctx stops chunk emission at the next yield point;
// the rest of the text is still walked, emitting nothing, before the
// channels close.
func (e *Encoding) Stream(ctx context.Context, text string, policy SpecialTokenPolicy, chunkSize int) (<-chan StreamChunk, <-chan error) {
	return stream.Run(ctx, e.enc, text, policy.resolve(e.enc), chunkSize)
}

var (
	buildMu sync.Mutex
	built   = map[*registry.Vocab]*bpe.Encoder{}
)

func buildEncoding(ctx context.Context, v *registry.Vocab) (*Encoding, error) {
	buildMu.Lock()
	cached, ok := built[v]
	buildMu.Unlock()
	if ok {
		return &Encoding{name: v.Name, enc: cached}, nil
	}

	if v.Loader == nil {
		return nil, fmt.Errorf("tiktoken: encoding %q has no loader configured", v.Name)
	}
	ranks, err := v.Loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("tiktoken: load %q: %w", v.Name, err)
	}
	seg, err := bpe.NewSegmenter(v.Pattern)
	if err != nil {
		return nil, fmt.Errorf("tiktoken: compile pattern for %q: %w", v.Name, err)
	}
	enc, err := bpe.New(v.Name, ranks, v.Specials, seg, v.ExplicitNVocab)
	if err != nil {
		return nil, err
	}

	buildMu.Lock()
	built[v] = enc
	buildMu.Unlock()
	return &Encoding{name: v.Name, enc: enc}, nil
}

// GetEncoding resolves name (exact, alias, or prefix) against the default
// registry and builds an Encoding, loading its rank map if this is the
// first resolution of that vocab.
func GetEncoding(ctx context.Context, name string) (*Encoding, error) {
	v, ok := registry.Default().Resolve(name)
	if !ok {
		return nil, fmt.Errorf("tiktoken: unknown encoding %q", name)
	}
	return buildEncoding(ctx, v)
}

// MustGetEncoding is GetEncoding but panics on error, for package-level
// initialization call sites that already know the name is valid.
func MustGetEncoding(ctx context.Context, name string) *Encoding {
	e, err := GetEncoding(ctx, name)
	if err != nil {
		panic(err)
	}
	return e
}

// EncodingForModel resolves a model name (e.g. "gpt-4o") to its Encoding
// via the registry's alias/prefix tables.
func EncodingForModel(ctx context.Context, model string) (*Encoding, error) {
	return GetEncoding(ctx, model)
}
