package loader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/corebpe/tiktoken/internal/bpe"
)

// DataGymLoader loads the original GPT-2 "data-gym" vocabulary format: an
// encoder.json mapping byte-encoded-as-unicode strings to ranks, plus a
// vocab.bpe merge-priority list, per spec.md §4.7/§6. Either field may be a
// local Path or a remote URL, matched the same way TiktokenFileLoader does.
type DataGymLoader struct {
	EncoderJSONPath string
	EncoderJSONURL  string
	VocabBPEPath    string
	VocabBPEURL     string
}

func (l *DataGymLoader) Load(ctx context.Context) (bpe.RankMap, error) {
	encReader, err := l.open(ctx, l.EncoderJSONPath, l.EncoderJSONURL, "encoder.json")
	if err != nil {
		return nil, err
	}
	defer func() { _ = encReader.Close() }()

	var rawEncoder map[string]int
	dec := json.NewDecoder(encReader)
	if err := dec.Decode(&rawEncoder); err != nil {
		return nil, fmt.Errorf("loader: decode encoder.json: %w", err)
	}

	bpeReader, err := l.open(ctx, l.VocabBPEPath, l.VocabBPEURL, "vocab.bpe")
	if err != nil {
		return nil, err
	}
	defer func() { _ = bpeReader.Close() }()

	merges, err := parseVocabBPE(bpeReader)
	if err != nil {
		return nil, err
	}

	byteOrder, byteDecoder := bytesToUnicode()

	decodeToken := func(encoded string) (string, bool) {
		var out []byte
		for _, r := range encoded {
			b, ok := byteDecoder[string(r)]
			if !ok {
				return "", false
			}
			out = append(out, b)
		}
		return string(out), true
	}

	// Ranks are derived from position, never trusted from encoder.json's
	// integer values: 0..255 for the single-byte tokens in byte-permutation
	// order, then 256+i for each merge pair in vocab.bpe's file order, per
	// spec.md §6. encoder.json is only used below as a sanity cross-check —
	// some checkpoints' encoder.json omits a handful of merged tokens
	// entirely, which is fine, but a rank mismatch means the two files
	// disagree about vocabulary and the load should fail loudly.
	ranks := make(bpe.RankMap, len(byteOrder)+len(merges))
	for i, b := range byteOrder {
		ranks[string([]byte{b})] = bpe.Rank(i)
	}

	for i, m := range merges {
		left, ok1 := decodeToken(m.left)
		right, ok2 := decodeToken(m.right)
		if !ok1 || !ok2 {
			continue
		}
		merged := left + right
		if _, exists := ranks[merged]; exists {
			continue
		}
		ranks[merged] = bpe.Rank(len(byteOrder) + i)
	}

	for encoded, wantRank := range rawEncoder {
		decoded, ok := decodeToken(encoded)
		if !ok {
			continue
		}
		gotRank, ok := ranks[decoded]
		if !ok {
			continue
		}
		if bpe.Rank(wantRank) != gotRank {
			return nil, fmt.Errorf("loader: encoder.json rank %d for token %q disagrees with vocab.bpe-derived rank %d", wantRank, decoded, gotRank)
		}
	}

	if len(ranks) == 0 {
		return nil, fmt.Errorf("loader: datagym vocabulary produced zero entries")
	}
	return ranks, nil
}

type bpeMergePair struct{ left, right string }

func parseVocabBPE(r io.Reader) ([]bpeMergePair, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var merges []bpeMergePair
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if first {
			first = false
			// vocab.bpe's first line is a version comment (e.g. "#version: 0.2").
			if strings.HasPrefix(line, "#") {
				continue
			}
		}
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			continue
		}
		merges = append(merges, bpeMergePair{left: parts[0], right: parts[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("loader: scan vocab.bpe: %w", err)
	}
	return merges, nil
}

// bytesToUnicode reproduces the canonical GPT-2 byte<->unicode permutation:
// printable Latin-1 bytes map to themselves, the remaining 68 bytes map to
// code points starting at 256. Adapted from the map-pair shape in
// samcharles93-mantle/internal/tokenizer/gpt2.go into the rank-assignment
// order spec.md §6 requires. The returned slice is byte value in
// permutation order — byteOrder[i] is the byte that occupies rank i.
func bytesToUnicode() (byteOrder []byte, byteDecoder map[string]byte) {
	var bs []int
	for i := int('!'); i <= int('~'); i++ {
		bs = append(bs, i)
	}
	for i := int('¡'); i <= int('¬'); i++ {
		bs = append(bs, i)
	}
	for i := int('®'); i <= int('ÿ'); i++ {
		bs = append(bs, i)
	}

	cs := make([]int, len(bs))
	copy(cs, bs)
	n := 0
	present := make(map[int]bool, len(bs))
	for _, v := range bs {
		present[v] = true
	}
	for b := 0; b < 256; b++ {
		if present[b] {
			continue
		}
		bs = append(bs, b)
		cs = append(cs, 256+n)
		n++
	}

	byteOrder = make([]byte, len(bs))
	byteDecoder = make(map[string]byte, len(bs))
	for i := range bs {
		b := byte(bs[i])
		s := string(rune(cs[i]))
		byteOrder[i] = b
		byteDecoder[s] = b
	}
	return byteOrder, byteDecoder
}

func (l *DataGymLoader) open(ctx context.Context, path, url, name string) (io.ReadCloser, error) {
	if path == "" && url == "" {
		return nil, fmt.Errorf("loader: DataGymLoader missing both path and URL for %s", name)
	}
	fl := &fileOrURL{path: path, url: url}
	return fl.open(ctx)
}
