package loader

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/corebpe/tiktoken/internal/bpe"
)

// TiktokenFileLoader loads a rank map from the `.tiktoken` line format,
// either from a local Path or by fetching URL into the disk cache first.
// This generalizes the teacher's encoding-specific download helper to any
// named encoding file, per spec.md §4.7/§6.
type TiktokenFileLoader struct {
	// Path, if set, is read directly and URL/ExpectedSHA256 are ignored.
	Path string
	// URL is fetched into the disk cache on a cache miss.
	URL string
	// ExpectedSHA256, if non-empty, is verified against the freshly
	// downloaded file's hex SHA-256 digest.
	ExpectedSHA256 string
	// HTTPTimeout bounds the download; zero uses a 30s default.
	HTTPTimeout time.Duration
}

func (l *TiktokenFileLoader) Load(ctx context.Context) (bpe.RankMap, error) {
	path := l.Path
	if path == "" {
		if l.URL == "" {
			return nil, fmt.Errorf("loader: TiktokenFileLoader has neither Path nor URL set")
		}
		cached, err := fetchToCache(ctx, l.URL, l.ExpectedSHA256, l.HTTPTimeout)
		if err != nil {
			return nil, err
		}
		path = cached
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ParseTiktokenFile(f)
}
