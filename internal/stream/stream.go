// Package stream adapts the encoder pipeline's single-pass walk into a
// channel of StreamChunks, per spec.md §4.10. The single-producer
// goroutine writing to a channel, cancelled via context.Context, follows
// the same worker shape euforicio-harmony-go uses for its bounded
// conversation-rendering pool; chunk segmentation by a target size mirrors
// the incremental push/flush split in
// adiu19-bpetok-go/internal/tokenizer/streaming_encoder_incremental.
package stream

import (
	"context"

	"github.com/corebpe/tiktoken/internal/bpe"
)

// Origin tags the provenance of a StreamChunk.
type Origin int

const (
	OriginText Origin = iota
	OriginSpecial
)

// Chunk is one unit of streamed output: a non-empty token run plus its
// provenance, per spec.md §3.
type Chunk struct {
	Tokens  []bpe.Rank
	Origin  Origin
	CharLo  int // Text origin: half-open [CharLo, CharHi) into the source.
	CharHi  int
	Literal string // Special origin: the matched literal.
	CharPos int    // Special origin: character position of the match.
}

// walkEmission is what the encoder's walk callbacks hand to the producer
// before it is split/tagged into Chunks.
type walkEmission struct {
	tokens  []bpe.Rank
	origin  Origin
	charLo  int
	charHi  int
	literal string
	charPos int
}

// Run streams text through enc under policy, emitting Chunks on the
// returned channel. chunk_size is clamped to >= 1 (spec.md §4.10): each
// ordinary segment's tokens are split into contiguous runs of at most
// chunkSize. Cancelling ctx stops chunk emission at the next yield point;
// the encoder walk still runs over the rest of the text, emitting nothing,
// before the producer goroutine exits. Both returned channels are closed
// when it exits; at most one encoding error is sent on the error channel
// first, and cancellation itself is not reported there.
func Run(ctx context.Context, enc *bpe.Encoder, text string, policy bpe.Policy, chunkSize int) (<-chan Chunk, <-chan error) {
	if chunkSize < 1 {
		chunkSize = 1
	}
	chunks := make(chan Chunk)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		emit := func(e walkEmission) bool {
			if e.origin == OriginSpecial {
				select {
				case <-ctx.Done():
					return false
				case chunks <- Chunk{Tokens: e.tokens, Origin: OriginSpecial, Literal: e.literal, CharPos: e.charPos}:
					return true
				}
			}
			for i := 0; i < len(e.tokens); i += chunkSize {
				end := i + chunkSize
				if end > len(e.tokens) {
					end = len(e.tokens)
				}
				select {
				case <-ctx.Done():
					return false
				case chunks <- Chunk{Tokens: e.tokens[i:end], Origin: OriginText, CharLo: e.charLo, CharHi: e.charHi}:
				}
			}
			return true
		}

		var walkErr error
		_, err := enc.EncodeWalkCollect(text, policy,
			func(piece string, tokens []bpe.Rank, charStart, charEnd int) {
				if walkErr != nil {
					return
				}
				if !emit(walkEmission{tokens: tokens, origin: OriginText, charLo: charStart, charHi: charEnd}) {
					walkErr = context.Canceled
				}
			},
			func(lit string, id bpe.Rank, charPos int) {
				if walkErr != nil {
					return
				}
				if !emit(walkEmission{tokens: []bpe.Rank{id}, origin: OriginSpecial, literal: lit, charPos: charPos}) {
					walkErr = context.Canceled
				}
			},
		)
		if err != nil {
			errs <- err
			return
		}
		if walkErr != nil && walkErr != context.Canceled {
			errs <- walkErr
		}
	}()

	return chunks, errs
}
