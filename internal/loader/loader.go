// Package loader produces a rank map from an abstract byte source — a
// .tiktoken file, GPT-2 vocab+merges, or a caller-supplied map — per
// spec.md §4.7. Remote fetching, disk caching, and checksum verification
// live here as external collaborators; the bpe package never imports this
// one.
package loader

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/corebpe/tiktoken/internal/bpe"
)

// Loader produces a finalized rank map from its configured source.
type Loader interface {
	Load(ctx context.Context) (bpe.RankMap, error)
}

// ParseTiktokenFile parses the `.tiktoken` line format described in
// spec.md §6: each valid line is `<base64-of-token-bytes> <rank>`,
// whitespace-separated by a single space. Malformed or blank lines are
// skipped silently; duplicate ranks are overwritten by the last line that
// declares them.
func ParseTiktokenFile(r io.Reader) (bpe.RankMap, error) {
	ranks := make(bpe.RankMap)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		sp := strings.IndexByte(line, ' ')
		if sp <= 0 {
			continue
		}
		b64, rankStr := line[:sp], line[sp+1:]
		tok, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			continue
		}
		rank, err := strconv.ParseUint(rankStr, 10, 32)
		if err != nil {
			continue
		}
		ranks[string(tok)] = bpe.Rank(rank)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("loader: scan tiktoken file: %w", err)
	}
	if len(ranks) == 0 {
		return nil, errors.New("loader: no valid rank entries found")
	}
	return ranks, nil
}
