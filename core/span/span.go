package span

import "fmt"

// Span is a view [start, end) over the text of its owner, which is either
// a Document or another Span. The owner reference is navigational: it
// keeps the owner reachable for as long as the span is, and nothing more.
type Span struct {
	base
	owner      Subspannable
	start, end int
	label      Label
}

func newSpan(owner Subspannable, start, end int, label Label) *Span {
	s := &Span{
		owner: owner,
		start: start,
		end:   end,
		label: label,
	}
	s.base = newBase(s)
	return s
}

// Text returns the owner's text sliced by the span's range. It is
// recomputed on every call.
func (s *Span) Text() string {
	return sliceRunes(s.owner.Text(), s.start, s.end)
}

// Doc returns the span's immediate owner.
func (s *Span) Doc() Subspannable {
	return s.owner
}

// Label returns the span's label, or nil when it has none.
func (s *Span) Label() Label {
	return s.label
}

// Range returns the span's offsets relative to its immediate owner.
func (s *Span) Range() (start, end int) {
	return s.start, s.end
}

// RangeRelativeToDoc returns the span's offsets relative to the root
// Document, adding the start of every Span between s and the root.
func (s *Span) RangeRelativeToDoc() (start, end int) {
	start, end = s.start, s.end
	// Subspannable is sealed by root(), so an owner that is not a *Span is
	// the *Document.
	for p, ok := s.owner.(*Span); ok; p, ok = p.owner.(*Span) {
		start += p.start
		end += p.start
	}
	return start, end
}

// WithLabel returns a copy of s, with the same owner and range, labeled l.
func (s *Span) WithLabel(l Label) *Span {
	return newSpan(s.owner, s.start, s.end, l)
}

// Key identifies a span for equality and deduplication. It is comparable
// and may be used as a map key.
//
// Two spans share a Key when their root documents have the same text,
// their ranges relative to their immediate owners are equal, and their
// labels are equal. Spans under different owners can therefore share a
// Key if those owners happen to be at different positions of the same text.
type Key struct {
	DocText    string
	Start, End int
	Label      Label
}

// Key returns the identity of s.
func (s *Span) Key() Key {
	return Key{
		DocText: s.root().text,
		Start:   s.start,
		End:     s.end,
		Label:   s.label,
	}
}

// Equal reports whether s and other have the same Key.
func (s *Span) Equal(other *Span) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Key() == other.Key()
}

// Hash returns a BLAKE3 fingerprint of the span's Key. Spans with equal
// keys have equal hashes.
func (s *Span) Hash() string {
	return hashKey(s.Key())
}

// String returns a debug representation of the span.
func (s *Span) String() string {
	label, _ := labelString(s.label)
	return fmt.Sprintf("Span(text=%q, label=%q, range=(%d, %d))", s.Text(), label, s.start, s.end)
}

func (s *Span) root() *Document {
	return s.owner.root()
}
