package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/corebpe/tiktoken/internal/bpe"
)

func TestEncodeBatchPreservesInputOrder(t *testing.T) {
	values := []string{"a", "bb", "ccc", "d", "ee"}
	encode := func(text string) ([]bpe.Rank, error) {
		toks := make([]bpe.Rank, len(text))
		for i := range text {
			toks[i] = bpe.Rank(text[i])
		}
		return toks, nil
	}
	out, err := EncodeBatch(context.Background(), values, 3, encode)
	if err != nil {
		t.Fatalf("encode batch: %v", err)
	}
	if len(out) != len(values) {
		t.Fatalf("got %d results, want %d", len(out), len(values))
	}
	for i, v := range values {
		if len(out[i]) != len(v) {
			t.Fatalf("slot %d: got %v want length of %q", i, out[i], v)
		}
	}
}

func TestEncodeBatchEmptyInput(t *testing.T) {
	out, err := EncodeBatch(context.Background(), nil, 4, func(string) ([]bpe.Rank, error) { return nil, nil })
	if err != nil || out != nil {
		t.Fatalf("got %v, %v", out, err)
	}
}

func TestEncodeBatchPropagatesFirstError(t *testing.T) {
	values := []string{"ok1", "bad", "ok2", "ok3"}
	wantErr := errors.New("boom")
	encode := func(text string) ([]bpe.Rank, error) {
		if text == "bad" {
			return nil, wantErr
		}
		return []bpe.Rank{bpe.Rank(len(text))}, nil
	}
	_, err := EncodeBatch(context.Background(), values, 2, encode)
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Error() != wantErr.Error() {
		t.Fatalf("got %v want %v", err, wantErr)
	}
}

func TestDecodeBatchPreservesInputOrder(t *testing.T) {
	seqs := make([][]bpe.Rank, 10)
	for i := range seqs {
		seqs[i] = []bpe.Rank{bpe.Rank(i)}
	}
	decode := func(toks []bpe.Rank) string {
		return fmt.Sprintf("tok-%d", toks[0])
	}
	out := DecodeBatch(seqs, 4, decode)
	for i := range seqs {
		want := fmt.Sprintf("tok-%d", i)
		if out[i] != want {
			t.Fatalf("slot %d: got %q want %q", i, out[i], want)
		}
	}
}

func TestDecodeBatchEmptyInput(t *testing.T) {
	if out := DecodeBatch(nil, 4, func([]bpe.Rank) string { return "x" }); out != nil {
		t.Fatalf("expected nil, got %v", out)
	}
}

func TestClampWorkersBounds(t *testing.T) {
	if w := clampWorkers(0, 10); w < 1 {
		t.Fatalf("got %d, want >= 1", w)
	}
	if w := clampWorkers(2, 1); w != 1 {
		t.Fatalf("got %d, want 1 (cannot exceed item count)", w)
	}
	if w := clampWorkers(-5, 10); w < 1 {
		t.Fatalf("got %d, want >= 1 for non-positive maxConcurrency", w)
	}
}

func TestNewCorrelationIDIsUnique(t *testing.T) {
	a := NewCorrelationID()
	b := NewCorrelationID()
	if a == b {
		t.Fatal("expected distinct correlation ids")
	}
	if a == "" {
		t.Fatal("expected non-empty correlation id")
	}
}
