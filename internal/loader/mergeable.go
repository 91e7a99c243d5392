package loader

import (
	"context"
	"fmt"

	"github.com/corebpe/tiktoken/internal/bpe"
)

// MergeableRanksLoader wraps a caller-supplied rank map, used as-is with no
// parsing or fetching. This is the escape hatch spec.md §4.7 describes for
// registering an encoding built entirely in memory (tests, embedded
// vocabularies, or a format this package has no native parser for).
type MergeableRanksLoader struct {
	Ranks bpe.RankMap
}

func (l *MergeableRanksLoader) Load(ctx context.Context) (bpe.RankMap, error) {
	if len(l.Ranks) == 0 {
		return nil, fmt.Errorf("loader: MergeableRanksLoader has no ranks")
	}
	out := make(bpe.RankMap, len(l.Ranks))
	for k, v := range l.Ranks {
		out[k] = v
	}
	return out, nil
}
