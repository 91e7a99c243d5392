package bpe

import "sync"

// part is one element of the flat merge-candidate list: the byte offset
// where a token starts, and the rank of merging it with its successor.
type part struct {
	start int
	rank  Rank
}

const noRank = ^Rank(0)

// mergeEngine runs the array-based, priority-queue-free BPE merge algorithm
// from spec.md §4.2 over a single encoding's rank table. It keeps sync.Pool
// scratch buffers because merges run on every ordinary regex piece.
type mergeEngine struct {
	ranks     *rankTable
	partsPool sync.Pool
	tokenPool sync.Pool
}

func newMergeEngine(ranks *rankTable) *mergeEngine {
	return &mergeEngine{
		ranks:     ranks,
		partsPool: sync.Pool{New: func() any { b := make([]part, 0, 64); return &b }},
		tokenPool: sync.Pool{New: func() any { b := make([]Rank, 0, 32); return &b }},
	}
}

// merge returns the token ids for piece, using the single-byte fallback
// (documented in spec.md §9) for any emitted subslice that fails lookup.
func (m *mergeEngine) merge(piece string) ([]Rank, func()) {
	if len(piece) == 1 {
		buf, release := m.acquireTokens(1)
		if r, ok := m.ranks.lookup(piece); ok {
			buf = append(buf[:0], r)
		} else {
			buf = buf[:0]
		}
		return buf, release
	}
	parts, releaseParts := m.bytePairMerge(piece)
	toks, releaseTokens := m.acquireTokens(len(parts))
	toks = toks[:0]
	for w := 0; w+1 < len(parts); w++ {
		sub := piece[parts[w].start:parts[w+1].start]
		if r, ok := m.ranks.lookup(sub); ok {
			toks = append(toks, r)
			continue
		}
		// Single-byte fallback: built-in rank tables cover all 256 byte
		// values, so this path is only reachable with a custom encoding.
		for i := 0; i < len(sub); i++ {
			if r, ok := m.ranks.lookup(sub[i : i+1]); ok {
				toks = append(toks, r)
			}
		}
	}
	release := func() {
		releaseParts()
		releaseTokens()
	}
	return toks, release
}

// mergeCount is the count-only variant used by TokenCount: it runs the same
// merge loop but never materializes a token slice, returning the number of
// tokens merge would emit. Merged spans are always in the table, so only a
// single byte the table lacks is left uncounted, as merge drops it.
func (m *mergeEngine) mergeCount(piece string) int {
	if len(piece) == 1 {
		if _, ok := m.ranks.lookup(piece); ok {
			return 1
		}
		return 0
	}
	parts, release := m.bytePairMerge(piece)
	defer release()
	n := 0
	for w := 0; w+1 < len(parts); w++ {
		if _, ok := m.ranks.lookup(piece[parts[w].start:parts[w+1].start]); ok {
			n++
		}
	}
	return n
}

func (m *mergeEngine) getRank(piece string, parts []part, i int) Rank {
	if i+3 < len(parts) {
		if r, ok := m.ranks.lookup(piece[parts[i].start:parts[i+3].start]); ok {
			return r
		}
	}
	return noRank
}

func (m *mergeEngine) bytePairMerge(piece string) ([]part, func()) {
	parts, release := m.acquireParts(len(piece) + 2)
	parts = parts[:0]

	minRank := struct {
		rank Rank
		idx  int
	}{rank: noRank, idx: -1}

	for i := 0; i < len(piece)-1; i++ {
		r, ok := m.ranks.lookup(piece[i : i+2])
		if !ok {
			r = noRank
		}
		if r < minRank.rank {
			minRank = struct {
				rank Rank
				idx  int
			}{r, i}
		}
		parts = append(parts, part{start: i, rank: r})
	}
	parts = append(parts, part{start: len(piece) - 1, rank: noRank})
	parts = append(parts, part{start: len(piece), rank: noRank})

	for minRank.rank != noRank {
		i := minRank.idx
		if i > 0 {
			parts[i-1].rank = m.getRank(piece, parts, i-1)
		}
		parts[i].rank = m.getRank(piece, parts, i)
		parts = append(parts[:i+1], parts[i+2:]...)

		minRank = struct {
			rank Rank
			idx  int
		}{rank: noRank, idx: -1}
		for j := 0; j < len(parts)-1; j++ {
			if parts[j].rank < minRank.rank {
				minRank = struct {
					rank Rank
					idx  int
				}{parts[j].rank, j}
			}
		}
	}
	return parts, release
}

func (m *mergeEngine) acquireParts(capHint int) ([]part, func()) {
	var p *[]part
	if v := m.partsPool.Get(); v != nil {
		p = v.(*[]part)
		if cap(*p) < capHint {
			buf := make([]part, 0, capHint)
			p = &buf
		} else {
			*p = (*p)[:0]
		}
	} else {
		buf := make([]part, 0, capHint)
		p = &buf
	}
	release := func() {
		if cap(*p) > 1<<12 {
			return
		}
		*p = (*p)[:0]
		m.partsPool.Put(p)
	}
	return *p, release
}

func (m *mergeEngine) acquireTokens(capHint int) ([]Rank, func()) {
	var p *[]Rank
	if v := m.tokenPool.Get(); v != nil {
		p = v.(*[]Rank)
		if cap(*p) < capHint {
			buf := make([]Rank, 0, capHint)
			p = &buf
		} else {
			*p = (*p)[:0]
		}
	} else {
		buf := make([]Rank, 0, capHint)
		p = &buf
	}
	release := func() {
		if cap(*p) > 1<<12 {
			return
		}
		*p = (*p)[:0]
		m.tokenPool.Put(p)
	}
	return *p, release
}
