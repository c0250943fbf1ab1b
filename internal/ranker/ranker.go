// Package ranker orders a completed frequency store into a report: most
// frequent word first, ties broken by ascending word.
package ranker

import (
	"cmp"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/store"
)

// Report is a ranked, read-only sequence of entries: count descending, then
// word ascending byte-wise.
type Report []store.Entry

// Rank freezes s and returns its entries in report order. The order depends
// only on the counts, never on how s iterates.
func Rank(s store.Store) Report {
	s.Freeze()
	return RankEntries(store.Collect(s))
}

// RankEntries sorts entries in place into report order.
func RankEntries(entries []store.Entry) Report {
	slices.SortFunc(entries, compare)
	return Report(entries)
}

func compare(a, b store.Entry) int {
	if c := cmp.Compare(b.Count, a.Count); c != 0 {
		return c
	}
	return cmp.Compare(a.Word, b.Word)
}

// Top returns the first n entries, or the whole report when n <= 0.
func (r Report) Top(n int) Report {
	if n > 0 && len(r) > n {
		return r[:n]
	}
	return r
}

// Total is the sum of all counts in the report.
func (r Report) Total() uint64 {
	var total uint64
	for _, e := range r {
		total += e.Count
	}
	return total
}
