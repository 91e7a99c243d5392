package tiktoken

import "github.com/corebpe/tiktoken/internal/bpe"

// SpecialTokenPolicy selects which special-token literals are allowed or
// disallowed during encode, per spec.md §4.4's four-variant tagged union.
type SpecialTokenPolicy struct {
	allowed        bpe.PolicyValue
	allowedOnly    map[string]struct{}
	disallowed     bpe.PolicyValue
	disallowedOnly map[string]struct{}
}

// AllowNone allows no special tokens: every registered special is
// disallowed, so encoding text that contains one is an error.
func AllowNone() SpecialTokenPolicy {
	return SpecialTokenPolicy{allowed: bpe.PolicyNone, disallowed: bpe.PolicyAutomatic}
}

// AllowAll permits every registered special token to match.
func AllowAll() SpecialTokenPolicy {
	return SpecialTokenPolicy{allowed: bpe.PolicyAll}
}

// AllowOnly permits exactly the named literals, disallowing every other
// registered special (automatic disallow), matching Python tiktoken's
// default "allowed_special" ergonomics.
func AllowOnly(literals ...string) SpecialTokenPolicy {
	set := make(map[string]struct{}, len(literals))
	for _, l := range literals {
		set[l] = struct{}{}
	}
	return SpecialTokenPolicy{allowed: bpe.PolicyOnly, allowedOnly: set, disallowed: bpe.PolicyAutomatic}
}

// DisallowOnly permits every registered special except the named literals.
func DisallowOnly(literals ...string) SpecialTokenPolicy {
	set := make(map[string]struct{}, len(literals))
	for _, l := range literals {
		set[l] = struct{}{}
	}
	return SpecialTokenPolicy{allowed: bpe.PolicyAll, disallowed: bpe.PolicyOnly, disallowedOnly: set}
}

func (p SpecialTokenPolicy) resolve(enc *bpe.Encoder) bpe.Policy {
	return enc.ResolvePolicy(p.allowed, p.allowedOnly, p.disallowed, p.disallowedOnly)
}
