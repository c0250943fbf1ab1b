// Package store accumulates word counts. Two realizations share the Store
// contract: a flat hash map and a 26-ary trie. Callers pick one with New and
// never depend on which is active.
package store

import (
	"fmt"
	"iter"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

// Entry is one word and the number of times it occurred.
type Entry struct {
	Word  string `json:"word"`
	Count uint64 `json:"count"`
}

// Store maps words to occurrence counts.
type Store interface {
	// Insert increments the count for word, creating it with 1 if absent.
	// It panics once the store has been frozen.
	Insert(word string)
	// Count returns the accumulated count, or 0 for an unknown word.
	Count(word string) uint64
	// Entries yields every word exactly once in a realization-defined order.
	Entries() iter.Seq2[string, uint64]
	// Len is the number of distinct words.
	Len() int
	// Total is the sum of all counts.
	Total() uint64
	// Freeze makes the store read-only.
	Freeze()
	Frozen() bool
}

// Kind names a Store realization.
type Kind string

const (
	KindHash Kind = "hash"
	KindTrie Kind = "trie"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindHash, KindTrie:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown store kind %q: %w", s, apperrors.ErrInvalidInput)
	}
}

func New(kind Kind) (Store, error) {
	switch kind {
	case KindHash:
		return NewHash(), nil
	case KindTrie:
		return NewTrie(), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q: %w", kind, apperrors.ErrInvalidInput)
	}
}

// Collect copies every entry of s into a slice.
func Collect(s Store) []Entry {
	entries := make([]Entry, 0, s.Len())
	for word, count := range s.Entries() {
		entries = append(entries, Entry{Word: word, Count: count})
	}
	return entries
}

// frozenGuard is embedded by both realizations.
type frozenGuard struct {
	frozen bool
}

func (g *frozenGuard) Freeze() { g.frozen = true }

func (g *frozenGuard) Frozen() bool { return g.frozen }

func (g *frozenGuard) checkWritable(word string) {
	if g.frozen {
		panic(fmt.Errorf("insert %q: %w", word, apperrors.ErrStoreFrozen))
	}
}
