package registry

import (
	"strconv"

	"github.com/corebpe/tiktoken/internal/bpe"
	"github.com/corebpe/tiktoken/internal/loader"
)

const (
	patternLegacy = bpe.PatternLegacy
	patternCl100k = bpe.PatternCl100k
	patternO200k  = bpe.PatternO200k

	blobEndpoint = "https://openaipublic.blob.core.windows.net/"
)

func intPtr(v int) *int { return &v }

func tiktokenFileLoaderAt(url string) loader.Loader {
	return &loader.TiktokenFileLoader{URL: url}
}

// builtinVocabs seeds the registry's seven named encodings, per spec.md
// §4.8. Pattern strings and special-token ids are copied verbatim from the
// spec's table; vocabulary sizes are validated against loaded rank counts
// at Encoder construction, not here.
func builtinVocabs() map[string]*Vocab {
	o200kBaseSpecials := map[string]bpe.Rank{
		"<|endoftext|>":   199999,
		"<|endofprompt|>": 200018,
	}

	o200kHarmonySpecials := map[string]bpe.Rank{
		"<|endoftext|>":   199999,
		"<|endofprompt|>": 200018,
		"<|startoftext|>": 199998,
		"<|return|>":      200002,
		"<|constrain|>":   200003,
		"<|channel|>":     200005,
		"<|start|>":       200006,
		"<|end|>":         200007,
		"<|message|>":     200008,
		"<|call|>":        200012,
	}
	for _, n := range []int{200000, 200001, 200004, 200009, 200010, 200011} {
		o200kHarmonySpecials[reservedLiteral(n)] = bpe.Rank(n)
	}
	for n := 200013; n <= 201087; n++ {
		o200kHarmonySpecials[reservedLiteral(n)] = bpe.Rank(n)
	}

	vocabs := map[string]*Vocab{
		"gpt2": {
			Name:           "gpt2",
			Pattern:        patternLegacy,
			ExplicitNVocab: intPtr(50257),
			Specials:       map[string]bpe.Rank{"<|endoftext|>": 50256},
			Loader: &loader.DataGymLoader{
				EncoderJSONURL: blobEndpoint + "gpt-2/encodings/main/encoder.json",
				VocabBPEURL:    blobEndpoint + "gpt-2/encodings/main/vocab.bpe",
			},
		},
		"r50k_base": {
			Name:           "r50k_base",
			Pattern:        patternLegacy,
			ExplicitNVocab: intPtr(50257),
			Specials:       map[string]bpe.Rank{"<|endoftext|>": 50256},
			Loader:         tiktokenFileLoaderAt(blobEndpoint + "encodings/r50k_base.tiktoken"),
		},
		"p50k_base": {
			Name:           "p50k_base",
			Pattern:        patternLegacy,
			ExplicitNVocab: intPtr(50281),
			Specials:       map[string]bpe.Rank{"<|endoftext|>": 50256},
			Loader:         tiktokenFileLoaderAt(blobEndpoint + "encodings/p50k_base.tiktoken"),
		},
		"p50k_edit": {
			Name:    "p50k_edit",
			Pattern: patternLegacy,
			Specials: map[string]bpe.Rank{
				"<|endoftext|>":  50256,
				"<|fim_prefix|>": 50281,
				"<|fim_middle|>": 50282,
				"<|fim_suffix|>": 50283,
			},
			Loader: tiktokenFileLoaderAt(blobEndpoint + "encodings/p50k_base.tiktoken"),
		},
		"cl100k_base": {
			Name:    "cl100k_base",
			Pattern: patternCl100k,
			Specials: map[string]bpe.Rank{
				"<|endoftext|>":   100257,
				"<|fim_prefix|>":  100258,
				"<|fim_middle|>":  100259,
				"<|fim_suffix|>":  100260,
				"<|endofprompt|>": 100276,
			},
			Loader: tiktokenFileLoaderAt(blobEndpoint + "encodings/cl100k_base.tiktoken"),
		},
		"o200k_base": {
			Name:     "o200k_base",
			Pattern:  patternO200k,
			Specials: o200kBaseSpecials,
			Loader:   tiktokenFileLoaderAt(blobEndpoint + "encodings/o200k_base.tiktoken"),
		},
		"o200k_harmony": {
			Name:     "o200k_harmony",
			Pattern:  patternO200k,
			Specials: o200kHarmonySpecials,
			Loader:   tiktokenFileLoaderAt(blobEndpoint + "encodings/o200k_base.tiktoken"),
		},
	}
	return vocabs
}

func reservedLiteral(n int) string {
	return "<|reserved_" + strconv.Itoa(n) + "|>"
}
