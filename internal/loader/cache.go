package loader

import (
	"context"
	"fmt"
	"io"
	"os"
)

// fileOrURL opens a local path directly or fetches a URL through the disk
// cache first, sharing the same cache-or-fetch resolution used by
// TiktokenFileLoader and DataGymLoader.
type fileOrURL struct {
	path, url      string
	expectedSHA256 string
}

func (f *fileOrURL) open(ctx context.Context) (io.ReadCloser, error) {
	path := f.path
	if path == "" {
		if f.url == "" {
			return nil, fmt.Errorf("loader: neither path nor url set")
		}
		cached, err := fetchToCache(ctx, f.url, f.expectedSHA256, 0)
		if err != nil {
			return nil, err
		}
		path = cached
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", path, err)
	}
	return fh, nil
}
