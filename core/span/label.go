package span

// Label tags a span with what it refers to. labels.NamedEntityType and
// labels.RefPartType satisfy it, as does Tag for free-form strings.
//
// Two labels are equal when they have the same dynamic type and value, so
// Tag("citation") and labels.Citation are different labels. Implementations
// must be comparable.
type Label interface {
	String() string
}

// Tag is a free-form label, typically a raw classifier string.
type Tag string

// String returns the tag itself.
func (t Tag) String() string {
	return string(t)
}

// labelString returns the label text and whether a label is present.
func labelString(l Label) (string, bool) {
	if l == nil {
		return "", false
	}
	return l.String(), true
}
