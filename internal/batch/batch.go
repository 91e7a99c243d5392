// Package batch runs encode/decode over a collection of texts with a
// bounded worker pool, preserving input order, per spec.md §4.9. The
// worker-pool shape (semaphore channel, WaitGroup, sync.Once first-error
// capture) is adapted from euforicio-harmony-go's parallel conversation
// renderer.
package batch

import (
	"context"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/corebpe/tiktoken/internal/bpe"
	"github.com/corebpe/tiktoken/internal/obslog"
)

// EncodeFunc encodes one text under a shared encoder and policy.
type EncodeFunc func(text string) ([]bpe.Rank, error)

// DecodeFunc decodes one token sequence under a shared encoder.
type DecodeFunc func(tokens []bpe.Rank) string

// EncodeBatch runs encodeFn over values with up to maxConcurrency workers,
// preserving input order in the result slice. The first worker error
// cancels the remaining workers and is returned; partial results are
// discarded, per spec.md §4.9/§5.
func EncodeBatch(ctx context.Context, values []string, maxConcurrency int, encodeFn EncodeFunc) ([][]bpe.Rank, error) {
	if len(values) == 0 {
		return nil, nil
	}
	workers := clampWorkers(maxConcurrency, len(values))
	corrID := NewCorrelationID()
	log := obslog.FromContext(ctx).With("correlation_id", corrID)
	log.Debug("batch encode started", "items", len(values), "workers", workers)

	results := make([][]bpe.Rank, len(values))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var errOnce sync.Once
	var firstErr error

	for i, v := range values {
		wg.Add(1)
		sem <- struct{}{}
		go func(slot int, text string) {
			defer wg.Done()
			defer func() { <-sem }()
			select {
			case <-ctx.Done():
				return
			default:
			}
			toks, err := encodeFn(text)
			if err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}
			results[slot] = toks
		}(i, v)
	}
	wg.Wait()
	if firstErr != nil {
		log.Error("batch encode failed", "error", firstErr)
		return nil, firstErr
	}
	log.Debug("batch encode completed", "items", len(values))
	return results, nil
}

// DecodeBatch runs decodeFn over every token sequence with up to
// maxConcurrency workers, preserving input order. Decoding is infallible
// per spec.md §4.9, so there is no cancellation path.
func DecodeBatch(tokenSeqs [][]bpe.Rank, maxConcurrency int, decodeFn DecodeFunc) []string {
	if len(tokenSeqs) == 0 {
		return nil
	}
	workers := clampWorkers(maxConcurrency, len(tokenSeqs))
	corrID := NewCorrelationID()
	log := obslog.Default().With("correlation_id", corrID)
	log.Debug("batch decode started", "items", len(tokenSeqs), "workers", workers)

	results := make([]string, len(tokenSeqs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, toks := range tokenSeqs {
		wg.Add(1)
		sem <- struct{}{}
		go func(slot int, t []bpe.Rank) {
			defer wg.Done()
			defer func() { <-sem }()
			results[slot] = decodeFn(t)
		}(i, toks)
	}
	wg.Wait()
	log.Debug("batch decode completed", "items", len(tokenSeqs))
	return results
}

// NewCorrelationID mints a correlation id for batch-job logging.
func NewCorrelationID() string {
	return uuid.NewString()
}

func clampWorkers(maxConcurrency, n int) int {
	avail := runtime.GOMAXPROCS(0)
	if avail < 1 {
		avail = 1
	}
	w := maxConcurrency
	if w <= 0 || w > avail {
		w = avail
	}
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}
