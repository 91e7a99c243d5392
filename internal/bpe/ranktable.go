// Package bpe implements the byte-pair-encoding core: rank table, merge
// engine, regex segmenter, special-token matcher, encoder pipeline and
// decoder. None of it reaches outside the package for I/O — callers hand it
// a finalized rank map and a pattern string.
package bpe

import "sort"

// Rank is both a BPE merge priority and, for non-special tokens, a token id.
type Rank = uint32

// RankMap is an immutable mapping from raw byte sequence (represented as a
// Go string, which is just an immutable byte slice) to a unique rank.
type RankMap map[string]Rank

// rankTable derives the reverse map, a lexicographically sorted key index,
// and the max rank from a RankMap, eagerly, at construction.
type rankTable struct {
	byBytes    RankMap
	byRank     map[Rank]string
	sortedKeys []string
	maxRank    Rank
}

func newRankTable(ranks RankMap) *rankTable {
	byRank := make(map[Rank]string, len(ranks))
	sortedKeys := make([]string, 0, len(ranks))
	var maxRank Rank
	first := true
	for k, v := range ranks {
		byRank[v] = k
		sortedKeys = append(sortedKeys, k)
		if first || v > maxRank {
			maxRank = v
			first = false
		}
	}
	sort.Strings(sortedKeys)
	return &rankTable{
		byBytes:    ranks,
		byRank:     byRank,
		sortedKeys: sortedKeys,
		maxRank:    maxRank,
	}
}

func (t *rankTable) lookup(piece string) (Rank, bool) {
	r, ok := t.byBytes[piece]
	return r, ok
}

func (t *rankTable) reverse(rank Rank) (string, bool) {
	b, ok := t.byRank[rank]
	return b, ok
}

// prefixSearch returns every (bytes, rank) pair whose key begins with
// prefix, via binary search for the lower bound followed by a linear walk
// while keys continue to match.
func (t *rankTable) prefixSearch(prefix string) []struct {
	Bytes string
	Rank  Rank
} {
	lo := sort.SearchStrings(t.sortedKeys, prefix)
	var out []struct {
		Bytes string
		Rank  Rank
	}
	for i := lo; i < len(t.sortedKeys); i++ {
		k := t.sortedKeys[i]
		if len(k) < len(prefix) || k[:len(prefix)] != prefix {
			break
		}
		out = append(out, struct {
			Bytes string
			Rank  Rank
		}{k, t.byBytes[k]})
	}
	return out
}
