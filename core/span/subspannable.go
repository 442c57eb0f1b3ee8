package span

import (
	"sync"
	"unicode/utf8"

	"github.com/FocuswithJustin/nespan/core/errors"
	"github.com/FocuswithJustin/nespan/core/tokenize"
)

// Subspannable is anything that has text and can be sliced into spans.
// It is implemented by exactly two types: *Document and *Span.
type Subspannable interface {
	// Text returns the text covered by the receiver.
	Text() string

	// Doc returns the owner of a Span, or the Document itself.
	Doc() Subspannable

	// WordLength returns the number of words in Text.
	WordLength() int

	// Subspan returns a new span owned by the receiver. Offsets are runes
	// relative to the receiver's text.
	Subspan(b Bounds, label Label) *Span

	// SubspanByWordIndices returns the span covering words [start, end)
	// of the receiver's text.
	SubspanByWordIndices(b Bounds) (*Span, error)

	// root returns the Document at the end of the ownership chain.
	root() *Document
}

// base implements the operations shared by Document and Span against the
// Subspannable it is embedded in.
type base struct {
	self  Subspannable
	words func() []tokenize.Token
}

func newBase(self Subspannable) base {
	return base{
		self: self,
		words: sync.OnceValue(func() []tokenize.Token {
			return tokenize.Words(self.root().tokenizer, self.Text())
		}),
	}
}

// WordLength returns the number of non-space tokens in the text.
func (b *base) WordLength() int {
	return len(b.words())
}

// Words returns the rune offsets of each word in the text. The returned
// slice must not be modified.
func (b *base) Words() []tokenize.Token {
	return b.words()
}

// Subspan returns a span over [start, end) of the text. An open start is 0
// and an open end is the length of the text in runes. Offsets are stored
// as given; see the package documentation for how out-of-range offsets read.
func (b *base) Subspan(bounds Bounds, label Label) *Span {
	start, hasStart := bounds.Start()
	if !hasStart {
		start = 0
	}
	end, hasEnd := bounds.End()
	if !hasEnd {
		end = utf8.RuneCountInString(b.self.Text())
	}
	return newSpan(b.self, start, end, label)
}

// SubspanByWordIndices returns the span from the first character of word
// start through the last character of word end-1. Word indices follow the
// same open-end and negative-index rules as Bounds.
//
// When the selection is empty, a start index past the word count is an
// error (*errors.RangeError). Any other empty selection yields the
// zero-length span [0, 0).
func (b *base) SubspanByWordIndices(bounds Bounds) (*Span, error) {
	words := b.words()
	first, last := bounds.resolve(len(words))

	if first >= last {
		if start, ok := bounds.Start(); ok && start > len(words) {
			return nil, errors.NewRange(bounds.String(), len(words))
		}
		return b.Subspan(Between(0, 0), nil), nil
	}

	return b.Subspan(Between(words[first].Start, words[last-1].End), nil), nil
}

// sliceRunes returns the runes [start, end) of s. Offsets are resolved
// against the rune length of s the way Bounds.resolve resolves word
// indices: negative offsets count back from the end and offsets past
// either end are clamped.
func sliceRunes(s string, start, end int) string {
	start, end = Between(start, end).resolve(utf8.RuneCountInString(s))
	if end <= start {
		return ""
	}

	i := 0
	from := -1
	for pos := range s {
		if i == start {
			from = pos
		}
		if i == end {
			return s[from:pos]
		}
		i++
	}
	return s[from:]
}
