package store

import "iter"

// HashStore keeps counts in a Go map. Iteration order is unspecified.
type HashStore struct {
	frozenGuard
	counts map[string]uint64
	total  uint64
}

func NewHash() *HashStore {
	return &HashStore{
		counts: make(map[string]uint64),
	}
}

func (h *HashStore) Insert(word string) {
	h.checkWritable(word)
	h.counts[word]++
	h.total++
}

func (h *HashStore) Count(word string) uint64 {
	return h.counts[word]
}

func (h *HashStore) Entries() iter.Seq2[string, uint64] {
	return func(yield func(string, uint64) bool) {
		for word, count := range h.counts {
			if !yield(word, count) {
				return
			}
		}
	}
}

func (h *HashStore) Len() int {
	return len(h.counts)
}

func (h *HashStore) Total() uint64 {
	return h.total
}
