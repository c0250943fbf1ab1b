package store

import (
	"errors"
	"maps"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

var kinds = []Kind{KindHash, KindTrie}

func newStore(t testing.TB, kind Kind) Store {
	t.Helper()
	s, err := New(kind)
	if err != nil {
		t.Fatalf("New(%q): %v", kind, err)
	}
	return s
}

func randomCorpus(seed uint64, size int) []byte {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	const alphabet = "abcdefghijKLMNOP ,.;\n"
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = alphabet[rng.IntN(len(alphabet))]
	}
	return buf
}

func TestInsertAndCount(t *testing.T) {
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			s := newStore(t, kind)
			for _, w := range []string{"cat", "ca", "cat", "dog", "cat"} {
				s.Insert(w)
			}
			tests := map[string]uint64{
				"cat":  3,
				"ca":   1,
				"dog":  1,
				"c":    0,
				"cats": 0,
				"bird": 0,
			}
			for word, want := range tests {
				if got := s.Count(word); got != want {
					t.Errorf("Count(%q) = %d, want %d", word, got, want)
				}
			}
			if s.Len() != 3 {
				t.Errorf("Len = %d, want 3", s.Len())
			}
			if s.Total() != 5 {
				t.Errorf("Total = %d, want 5", s.Total())
			}
		})
	}
}

func TestEntriesEachOnce(t *testing.T) {
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			s := newStore(t, kind)
			for _, w := range []string{"b", "a", "ab", "b", "abc"} {
				s.Insert(w)
			}
			got := make(map[string]uint64)
			for w, c := range s.Entries() {
				if _, dup := got[w]; dup {
					t.Fatalf("word %q yielded twice", w)
				}
				got[w] = c
			}
			want := map[string]uint64{"a": 1, "ab": 1, "abc": 1, "b": 2}
			if !maps.Equal(got, want) {
				t.Errorf("entries = %v, want %v", got, want)
			}
		})
	}
}

func TestTrieEntriesPreOrder(t *testing.T) {
	s := NewTrie()
	for _, w := range []string{"zoo", "b", "abc", "a", "ab", "ba"} {
		s.Insert(w)
	}
	var got []string
	for w := range s.Entries() {
		got = append(got, w)
	}
	want := []string{"a", "ab", "abc", "b", "ba", "zoo"}
	if !slices.Equal(got, want) {
		t.Errorf("pre-order = %q, want %q", got, want)
	}
}

func TestTrieEntriesEarlyStop(t *testing.T) {
	s := NewTrie()
	for _, w := range []string{"a", "b", "c"} {
		s.Insert(w)
	}
	n := 0
	for range s.Entries() {
		n++
		break
	}
	if n != 1 {
		t.Errorf("iterated %d entries after break", n)
	}
}

func TestTrieSharesPrefixes(t *testing.T) {
	s := NewTrie()
	s.Insert("car")
	s.Insert("cart")
	s.Insert("care")
	// root + c,a,r + t + e
	if s.Nodes() != 6 {
		t.Errorf("Nodes = %d, want 6", s.Nodes())
	}
	if !s.HasPrefix("ca") || !s.HasPrefix("cart") || s.HasPrefix("cb") {
		t.Error("HasPrefix mismatch")
	}
	if s.Count("ca") != 0 {
		t.Error("inner prefix node must not count as a word")
	}
}

func TestTrieRejectsInvalidWords(t *testing.T) {
	for _, word := range []string{"", "Cat", "a1"} {
		t.Run(word, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, apperrors.ErrInvalidInput) {
					t.Errorf("recover() = %v, want ErrInvalidInput", r)
				}
			}()
			NewTrie().Insert(word)
		})
	}
}

func TestTrieArenaLimit(t *testing.T) {
	old := maxNodes
	maxNodes = 4
	t.Cleanup(func() { maxNodes = old })

	s := NewTrie()
	s.Insert("abc")
	s.Insert("ab")
	if s.Nodes() != 4 {
		t.Fatalf("Nodes() = %d, want 4", s.Nodes())
	}
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, apperrors.ErrInternal) {
			t.Errorf("recover() = %v, want ErrInternal", r)
		}
	}()
	s.Insert("abd")
}

func TestFreezeBlocksInsert(t *testing.T) {
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			s := newStore(t, kind)
			s.Insert("word")
			s.Freeze()
			if !s.Frozen() {
				t.Fatal("Frozen() = false after Freeze")
			}
			if s.Count("word") != 1 {
				t.Error("reads must keep working after Freeze")
			}
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, apperrors.ErrStoreFrozen) {
					t.Errorf("recover() = %v, want ErrStoreFrozen", r)
				}
			}()
			s.Insert("word")
		})
	}
}

func TestCountConservation(t *testing.T) {
	corpus := randomCorpus(7, 1<<16)
	words := tokenizer.Collect(tokenizer.Words(corpus))
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			s := newStore(t, kind)
			for _, w := range words {
				s.Insert(w)
			}
			var sum uint64
			for _, c := range s.Entries() {
				sum += c
			}
			if sum != uint64(len(words)) {
				t.Errorf("sum of counts = %d, tokenized words = %d", sum, len(words))
			}
			if s.Total() != sum {
				t.Errorf("Total = %d, sum = %d", s.Total(), sum)
			}
		})
	}
}

func TestStoreEquivalence(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		corpus := randomCorpus(seed, 1<<14)
		hash := NewHash()
		trie := NewTrie()
		for w := range tokenizer.Words(corpus) {
			hash.Insert(w)
			trie.Insert(w)
		}
		if !maps.Equal(maps.Collect(hash.Entries()), maps.Collect(trie.Entries())) {
			t.Fatalf("seed %d: hash and trie entries differ", seed)
		}
		if hash.Len() != trie.Len() {
			t.Fatalf("seed %d: Len hash=%d trie=%d", seed, hash.Len(), trie.Len())
		}
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("trie"); err != nil || k != KindTrie {
		t.Errorf("ParseKind(trie) = %q, %v", k, err)
	}
	if _, err := ParseKind("btree"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("ParseKind(btree) err = %v", err)
	}
	if _, err := New("btree"); err == nil {
		t.Error("New(btree) should fail")
	}
}

func TestCollect(t *testing.T) {
	s := NewTrie()
	s.Insert("b")
	s.Insert("a")
	s.Insert("b")
	got := Collect(s)
	want := []Entry{{"a", 1}, {"b", 2}}
	if !slices.Equal(got, want) {
		t.Errorf("Collect = %v, want %v", got, want)
	}
}

func BenchmarkInsert(b *testing.B) {
	words := tokenizer.Collect(tokenizer.Words(randomCorpus(3, 1<<16)))
	for _, kind := range kinds {
		b.Run(string(kind), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				s := newStore(b, kind)
				for _, w := range words {
					s.Insert(w)
				}
			}
		})
	}
}
