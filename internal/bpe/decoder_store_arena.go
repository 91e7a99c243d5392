//go:build goexperiment.arenas

package bpe

import "arena"

// arenaStore is an arena-backed token store. All storage lives in a
// dedicated arena; AppendInto copies from the arena blob into the
// destination to avoid leaking arena-backed slices to the heap.
type arenaStore struct {
	a    *arena.Arena
	blob []byte
	off  []uint32
}

func newTokenStore(ranks RankMap) tokenStore {
	a := arena.NewArena()
	var maxID Rank
	first := true
	for _, id := range ranks {
		if first || id > maxID {
			maxID = id
			first = false
		}
	}
	size := int(maxID) + 1
	lens := arena.MakeSlice[uint32](a, size, size)
	byID := make([]string, size)
	total := 0
	for bs, id := range ranks {
		if lens[int(id)] == 0 {
			lens[int(id)] = uint32(len(bs))
			byID[int(id)] = bs
			total += len(bs)
		}
	}
	blob := arena.MakeSlice[byte](a, total, total)
	off := arena.MakeSlice[uint32](a, size+1, size+1)
	pos := 0
	for i := 0; i < size; i++ {
		off[i] = uint32(pos)
		if n := int(lens[i]); n > 0 {
			copy(blob[pos:pos+n], byID[i])
			pos += n
		}
	}
	off[size] = uint32(pos)
	return &arenaStore{a: a, blob: blob, off: off}
}

func (s *arenaStore) AppendInto(dst *[]byte, id Rank) bool {
	if int(id) >= len(s.off)-1 {
		return false
	}
	a := s.off[id]
	b := s.off[id+1]
	if a == b {
		return false
	}
	*dst = append(*dst, s.blob[a:b]...)
	return true
}

func (s *arenaStore) Close() { s.a.Free() }
