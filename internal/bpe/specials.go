package bpe

import "strings"

// specialTable holds the literal->id and id->literal special-token maps,
// plus the literals sorted by descending length for greedy longest-match
// checks at a cursor position.
type specialTable struct {
	enc    map[string]Rank
	dec    map[Rank]string
	sorted []string // by descending length, for matchAt
}

func newSpecialTable(specials map[string]Rank) *specialTable {
	enc := make(map[string]Rank, len(specials))
	dec := make(map[Rank]string, len(specials))
	sorted := make([]string, 0, len(specials))
	for lit, id := range specials {
		enc[lit] = id
		dec[id] = lit
		sorted = append(sorted, lit)
	}
	// insertion sort by descending length; the special-token set is small.
	for i := 1; i < len(sorted); i++ {
		j := i
		for j > 0 && len(sorted[j]) > len(sorted[j-1]) {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
			j--
		}
	}
	return &specialTable{enc: enc, dec: dec, sorted: sorted}
}

// matchAt checks, in descending-length order, whether any special literal
// starts exactly at s[i:]. allowed (if non-nil) restricts which literals are
// considered at all.
func (t *specialTable) matchAt(s string, i int, allowed map[string]struct{}) (lit string, id Rank, ok bool) {
	for _, l := range t.sorted {
		if allowed != nil {
			if _, in := allowed[l]; !in {
				continue
			}
		}
		if len(l) > len(s)-i {
			continue
		}
		if s[i:i+len(l)] == l {
			return l, t.enc[l], true
		}
	}
	return "", 0, false
}

// matchAtAny is like matchAt but considers every registered special,
// regardless of policy — used to detect "forbidden special that is neither
// allowed nor disallowed" per spec.md §4.5's forced-progress branch.
func (t *specialTable) matchAtAny(s string, i int) (lit string, ok bool) {
	for _, l := range t.sorted {
		if len(l) > len(s)-i {
			continue
		}
		if s[i:i+len(l)] == l {
			return l, true
		}
	}
	return "", false
}

// nextOccurrence scans from `from` for the earliest-starting special literal
// and returns its start offset, or -1 if none occur in s[from:].
func (t *specialTable) nextOccurrence(s string, from int) int {
	best := -1
	for _, l := range t.sorted {
		idx := indexFrom(s, l, from)
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best {
			best = idx
		}
	}
	return best
}

func indexFrom(s, sub string, from int) int {
	if from > len(s) {
		return -1
	}
	i := strings.Index(s[from:], sub)
	if i < 0 {
		return -1
	}
	return from + i
}

// PolicyValue is one of the four SpecialTokenSet variants from spec.md §9.
type PolicyValue int

const (
	PolicyNone PolicyValue = iota
	PolicyAll
	PolicyOnly
	PolicyAutomatic
)

// Policy is a resolved {allowed, disallowed} pair of literal sets, built
// from the caller's two PolicyValue selections per spec.md §4.4's
// resolution table.
type Policy struct {
	Allowed    map[string]struct{}
	Disallowed map[string]struct{}
}

// ResolvePolicy implements spec.md §4.4's table. only is used when value is
// PolicyOnly (for either side).
func (t *specialTable) ResolvePolicy(allowedVal PolicyValue, allowedOnly map[string]struct{}, disallowedVal PolicyValue, disallowedOnly map[string]struct{}) Policy {
	all := func() map[string]struct{} {
		m := make(map[string]struct{}, len(t.sorted))
		for _, l := range t.sorted {
			m[l] = struct{}{}
		}
		return m
	}

	var allowed map[string]struct{}
	switch allowedVal {
	case PolicyNone:
		allowed = map[string]struct{}{}
	case PolicyAll:
		allowed = all()
	case PolicyOnly:
		allowed = allowedOnly
	case PolicyAutomatic:
		allowed = map[string]struct{}{}
	}

	var disallowed map[string]struct{}
	switch disallowedVal {
	case PolicyNone:
		disallowed = map[string]struct{}{}
	case PolicyAll:
		disallowed = all()
	case PolicyOnly:
		disallowed = disallowedOnly
	case PolicyAutomatic:
		disallowed = map[string]struct{}{}
		for _, l := range t.sorted {
			if _, inAllowed := allowed[l]; !inAllowed {
				disallowed[l] = struct{}{}
			}
		}
	}

	return Policy{Allowed: allowed, Disallowed: disallowed}
}
