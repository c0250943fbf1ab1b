// Package sketch estimates the most frequent words in bounded memory with the
// Space-Saving top-k algorithm. It is an alternative to a full store when the
// vocabulary is too large to hold and only the head of the report matters.
package sketch

import (
	"github.com/dgryski/go-topk"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/ranker"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/store"
)

type Sketch struct {
	n      int
	stream *topk.Stream
	total  uint64
}

// New tracks the n most frequent words. n must be positive.
func New(n int) *Sketch {
	return &Sketch{n: n, stream: topk.New(n)}
}

func (s *Sketch) Insert(word string) {
	s.stream.Insert(word, 1)
	s.total++
}

// Total is the number of words inserted.
func (s *Sketch) Total() uint64 {
	return s.total
}

// Report returns the estimated top entries in report order. Counts are upper
// bounds; they are exact while fewer than n distinct words have been seen.
func (s *Sketch) Report() ranker.Report {
	keys := s.stream.Keys()
	entries := make([]store.Entry, 0, len(keys))
	for _, k := range keys {
		if k.Count <= 0 {
			continue
		}
		entries = append(entries, store.Entry{Word: k.Key, Count: uint64(k.Count)})
	}
	return ranker.RankEntries(entries)
}
