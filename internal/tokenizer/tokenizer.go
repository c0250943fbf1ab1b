// Package tokenizer turns raw corpus bytes into normalised words. A word is a
// maximal run of ASCII letters, lower-cased as it is accumulated; every other
// byte is a separator and is discarded.
package tokenizer

import "iter"

// IsLetter reports whether c is an ASCII letter.
func IsLetter(c byte) bool {
	c |= 0x20
	return c >= 'a' && c <= 'z'
}

// Lower maps an ASCII letter to its lower-case form. Other bytes are returned
// unchanged.
func Lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// Words lazily yields the words of buf in order. The sequence is single-pass
// and holds no state beyond the word being accumulated.
func Words(buf []byte) iter.Seq[string] {
	return func(yield func(string) bool) {
		var t Tokenizer
		if !t.Feed(buf, yield) {
			return
		}
		t.Flush(yield)
	}
}

// Tokenizer is the streaming form of Words. It carries a partially scanned
// word across Feed calls so chunk boundaries never split a word. The zero
// value is ready to use.
type Tokenizer struct {
	acc []byte
}

// Feed scans chunk and yields every word completed inside it. It returns false
// if yield asked to stop.
func (t *Tokenizer) Feed(chunk []byte, yield func(string) bool) bool {
	for _, c := range chunk {
		if IsLetter(c) {
			t.acc = append(t.acc, Lower(c))
			continue
		}
		if len(t.acc) == 0 {
			continue
		}
		word := string(t.acc)
		t.acc = t.acc[:0]
		if !yield(word) {
			return false
		}
	}
	return true
}

// Flush yields the word still being accumulated, if any. Call it once after
// the final chunk.
func (t *Tokenizer) Flush(yield func(string) bool) bool {
	if len(t.acc) == 0 {
		return true
	}
	word := string(t.acc)
	t.acc = t.acc[:0]
	return yield(word)
}

// Reset discards any partial word so the Tokenizer can scan a new input.
func (t *Tokenizer) Reset() {
	t.acc = t.acc[:0]
}

// Normalize applies word normalisation to an already delimited token: letters
// are lower-cased and everything else is dropped. It returns "" when no letter
// survives.
func Normalize(token []byte) string {
	out := make([]byte, 0, len(token))
	for _, c := range token {
		if IsLetter(c) {
			out = append(out, Lower(c))
		}
	}
	return string(out)
}

// Collect drains seq into a slice.
func Collect(seq iter.Seq[string]) []string {
	var words []string
	for w := range seq {
		words = append(words, w)
	}
	return words
}
