package store

import (
	"fmt"
	"iter"
	"math"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

const alphabetSize = 26

// rootIndex is the arena slot of the root. No node ever points back at it, so
// a zero child slot means "no child".
const rootIndex uint32 = 0

// maxNodes is the arena capacity addressable by a uint32 child index.
var maxNodes uint64 = math.MaxUint32

type trieNode struct {
	children [alphabetSize]uint32
	count    uint64
	terminal bool
}

// TrieStore is a 26-ary prefix tree over lower-case ASCII words. All nodes
// live in one arena slice and refer to their children by index, so the whole
// tree is released with the slice.
type TrieStore struct {
	frozenGuard
	nodes    []trieNode
	distinct int
	total    uint64
}

func NewTrie() *TrieStore {
	return &TrieStore{
		nodes: make([]trieNode, 1, 1024),
	}
}

// Insert walks or extends the path for word and bumps the count at its last
// node. word must be a non-empty run of 'a'-'z'.
func (t *TrieStore) Insert(word string) {
	t.checkWritable(word)
	if word == "" {
		panic(fmt.Errorf("insert empty word: %w", apperrors.ErrInvalidInput))
	}
	cur := rootIndex
	for i := 0; i < len(word); i++ {
		slot := letterSlot(word, i)
		next := t.nodes[cur].children[slot]
		if next == rootIndex {
			if uint64(len(t.nodes)) >= maxNodes {
				panic(fmt.Errorf("trie arena full at %d nodes: %w", len(t.nodes), apperrors.ErrInternal))
			}
			next = uint32(len(t.nodes))
			t.nodes = append(t.nodes, trieNode{})
			t.nodes[cur].children[slot] = next
		}
		cur = next
	}
	n := &t.nodes[cur]
	if !n.terminal {
		n.terminal = true
		t.distinct++
	}
	n.count++
	t.total++
}

func (t *TrieStore) Count(word string) uint64 {
	idx, ok := t.find(word)
	if !ok || word == "" {
		return 0
	}
	return t.nodes[idx].count
}

// HasPrefix reports whether any stored word starts with prefix. The empty
// prefix matches whenever the store is non-empty.
func (t *TrieStore) HasPrefix(prefix string) bool {
	if t.distinct == 0 {
		return false
	}
	_, ok := t.find(prefix)
	return ok
}

// Entries yields words in depth-first pre-order: a word is produced before
// any longer word sharing its prefix, and siblings go from 'a' to 'z'.
func (t *TrieStore) Entries() iter.Seq2[string, uint64] {
	return func(yield func(string, uint64) bool) {
		path := make([]byte, 0, 32)
		var walk func(idx uint32) bool
		walk = func(idx uint32) bool {
			n := &t.nodes[idx]
			if n.count > 0 {
				if !yield(string(path), n.count) {
					return false
				}
			}
			for slot, child := range n.children {
				if child == rootIndex {
					continue
				}
				path = append(path, byte('a'+slot))
				if !walk(child) {
					return false
				}
				path = path[:len(path)-1]
			}
			return true
		}
		walk(rootIndex)
	}
}

func (t *TrieStore) Len() int {
	return t.distinct
}

func (t *TrieStore) Total() uint64 {
	return t.total
}

// Nodes returns the number of allocated nodes, root included.
func (t *TrieStore) Nodes() int {
	return len(t.nodes)
}

func (t *TrieStore) find(word string) (uint32, bool) {
	cur := rootIndex
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c < 'a' || c > 'z' {
			return 0, false
		}
		next := t.nodes[cur].children[c-'a']
		if next == rootIndex {
			return 0, false
		}
		cur = next
	}
	return cur, true
}

func letterSlot(word string, i int) int {
	c := word[i]
	if c < 'a' || c > 'z' {
		panic(fmt.Errorf("insert %q: byte %q is not a lower-case letter: %w", word, c, apperrors.ErrInvalidInput))
	}
	return int(c - 'a')
}
