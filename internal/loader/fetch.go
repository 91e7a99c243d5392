package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/corebpe/tiktoken/internal/obslog"
)

// EnvCacheDir is the environment variable spec.md §6 says callers may use
// to override the on-disk cache directory.
const EnvCacheDir = "TIKTOKEN_CACHE_DIR"

// fetchLimiter throttles outbound encoding downloads so resolving many
// encodings concurrently doesn't hammer the CDN. One token per second with
// a small burst is generous for files fetched at most once per cache miss.
var fetchLimiter = rate.NewLimiter(rate.Limit(1), 2)

// resolveCacheDir returns (and creates) the cache directory: the env var
// override if set, otherwise a predictable temp subdirectory.
func resolveCacheDir() (string, error) {
	if d := os.Getenv(EnvCacheDir); d != "" {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return "", err
		}
		return d, nil
	}
	dir := filepath.Join(os.TempDir(), "tiktoken-go-cache")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// cachePathForURL returns the cache file path keyed by the hex SHA-256 of
// the source URL, per spec.md §6.
func cachePathForURL(cacheDir, url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(cacheDir, hex.EncodeToString(sum[:]))
}

// fetchToCache returns the local path to url's contents, downloading into
// the cache directory on a miss. If expectedSHA256 is non-empty, the
// download is rejected with ChecksumMismatch on mismatch. Concurrent
// writers of the same cache file race benignly — the last writer wins, per
// spec.md §5.
func fetchToCache(ctx context.Context, url, expectedSHA256 string, httpTimeout time.Duration) (string, error) {
	log := obslog.FromContext(ctx)

	cacheDir, err := resolveCacheDir()
	if err != nil {
		return "", err
	}
	dest := cachePathForURL(cacheDir, url)
	if _, err := os.Stat(dest); err == nil {
		log.Debug("cache hit", "url", url, "path", dest)
		return dest, nil
	}
	if os.Getenv("TIKTOKEN_OFFLINE") == "1" {
		log.Error("cache miss while offline", "url", url)
		return "", fmt.Errorf("loader: offline and %s not cached (TIKTOKEN_OFFLINE=1)", url)
	}
	if err := fetchLimiter.Wait(ctx); err != nil {
		return "", err
	}
	log.Info("downloading", "url", url)

	if httpTimeout <= 0 {
		httpTimeout = 30 * time.Second
	}
	client := &http.Client{Timeout: httpTimeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("loader: fetch %s: unexpected status %s", url, resp.Status)
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	_, copyErr := io.Copy(io.MultiWriter(f, h), resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(tmp)
		return "", copyErr
	}
	if closeErr != nil {
		_ = os.Remove(tmp)
		return "", closeErr
	}
	sum := hex.EncodeToString(h.Sum(nil))
	if expectedSHA256 != "" && !strings.EqualFold(sum, expectedSHA256) {
		_ = os.Remove(tmp)
		log.Error("checksum mismatch", "url", url, "expected", expectedSHA256, "actual", sum)
		return "", &ChecksumError{Expected: expectedSHA256, Actual: sum}
	}
	if err := os.Rename(tmp, dest); err != nil {
		return "", err
	}
	log.Info("cached download", "url", url, "path", dest)
	return dest, nil
}

// ChecksumError reports spec.md §7's ChecksumMismatch{expected, actual}.
type ChecksumError struct {
	Expected, Actual string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("loader: checksum mismatch: expected %s, got %s", e.Expected, e.Actual)
}
