package tiktoken

import "github.com/corebpe/tiktoken/internal/bpe"

// Error kinds re-exported from internal/bpe for callers that want to
// switch on spec.md §7's taxonomy without importing an internal package.
const (
	KindDisallowedSpecial   = bpe.KindDisallowedSpecial
	KindSingleTokenNotFound = bpe.KindSingleTokenNotFound
	KindTokenBytesNotFound  = bpe.KindTokenBytesNotFound
)

// Error is the concrete error type encode/decode calls return for
// taxonomy-classified failures.
type Error = bpe.Error
