package span

import (
	"fmt"

	"github.com/FocuswithJustin/nespan/core/errors"
)

// Serialized is the primitive form of a span, meant to be embedded in the
// serialized output of a larger document.
//
//	{"range": [start, end], "label": "citation", "text": "Berakhot 2a"}
//
// Range is relative to the span's immediate owner. Label is null for an
// unlabeled span. Text is present only when requested.
type Serialized struct {
	Range [2]int  `json:"range"`
	Label *string `json:"label"`
	Text  *string `json:"text,omitempty"`
}

// Serialize returns the primitive form of s. The text is included only
// when withText is true.
func (s *Span) Serialize(withText bool) Serialized {
	out := Serialized{Range: [2]int{s.start, s.end}}
	if label, ok := labelString(s.label); ok {
		out.Label = &label
	}
	if withText {
		text := s.Text()
		out.Text = &text
	}
	return out
}

// LabelDecoder turns a serialized label back into a Label.
type LabelDecoder func(value string) (Label, error)

// Restore rebuilds a span from its serialized form. owner must be the span's
// immediate owner at serialization time. decode converts the label; a nil
// decode restores labels as Tag values.
//
// When the serialized form carries text, Restore checks it against the
// owner and fails with a *errors.ValidationError on mismatch.
func Restore(owner Subspannable, s Serialized, decode LabelDecoder) (*Span, error) {
	var label Label
	if s.Label != nil {
		if decode == nil {
			label = Tag(*s.Label)
		} else {
			l, err := decode(*s.Label)
			if err != nil {
				return nil, errors.Wrapf(err, "restoring span label %q", *s.Label)
			}
			label = l
		}
	}

	sp := newSpan(owner, s.Range[0], s.Range[1], label)
	if s.Text != nil {
		if got := sp.Text(); got != *s.Text {
			return nil, &errors.ValidationError{
				Field:   "text",
				Value:   *s.Text,
				Message: fmt.Sprintf("owner text at [%d:%d] is %q", s.Range[0], s.Range[1], got),
			}
		}
	}
	return sp, nil
}
