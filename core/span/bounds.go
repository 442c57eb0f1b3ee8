package span

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/nespan/core/errors"
)

// Bounds is a half-open interval [start, end) whose ends may be left open.
// An open start means 0; an open end means "through the end of the text".
type Bounds struct {
	start, end       int
	hasStart, hasEnd bool
}

// Between returns the bounds [start, end).
func Between(start, end int) Bounds {
	return Bounds{start: start, end: end, hasStart: true, hasEnd: true}
}

// From returns the bounds [start, len).
func From(start int) Bounds {
	return Bounds{start: start, hasStart: true}
}

// Until returns the bounds [0, end).
func Until(end int) Bounds {
	return Bounds{end: end, hasEnd: true}
}

// All returns the bounds covering the whole text.
func All() Bounds {
	return Bounds{}
}

// Start returns the start offset and whether it was given.
func (b Bounds) Start() (int, bool) {
	return b.start, b.hasStart
}

// End returns the end offset and whether it was given.
func (b Bounds) End() (int, bool) {
	return b.end, b.hasEnd
}

// String returns the bounds in slice notation, e.g. "[2:5]" or "[5:]".
func (b Bounds) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	if b.hasStart {
		sb.WriteString(strconv.Itoa(b.start))
	}
	sb.WriteString(":")
	if b.hasEnd {
		sb.WriteString(strconv.Itoa(b.end))
	}
	sb.WriteString("]")
	return sb.String()
}

// resolve applies sequence slicing rules to b for a sequence of length n:
// open ends take 0 and n, negative offsets count back from n, and both
// ends are clamped to [0, n].
func (b Bounds) resolve(n int) (int, int) {
	clamp := func(i int) int {
		if i < 0 {
			i += n
			if i < 0 {
				return 0
			}
		}
		if i > n {
			return n
		}
		return i
	}

	start, end := 0, n
	if b.hasStart {
		start = clamp(b.start)
	}
	if b.hasEnd {
		end = clamp(b.end)
	}
	return start, end
}

// boundsGrammar is the participle grammar for slice notation.
// Examples: "2:5", "[2:5]", ":3", "2:", ":", "[-2:]"
//
//nolint:govet // participle grammar tags are not standard struct tags
type boundsGrammar struct {
	Open  bool      `parser:"@\"[\"?"`
	Start *int      `parser:"@Int?"`
	Sep   string    `parser:"@\":\""`
	End   *int      `parser:"@Int?"`
	Step  *stepPart `parser:"@@?"`
	Close bool      `parser:"@\"]\"?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type stepPart struct {
	Sep   string `parser:"@\":\""`
	Value *int   `parser:"@Int?"`
}

// boundsLexer defines the lexer for slice notation.
var boundsLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Punct", Pattern: `[\[\]:]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// boundsParser is the participle parser for slice notation.
var boundsParser = participle.MustBuild[boundsGrammar](
	participle.Lexer(boundsLexer),
	participle.Elide("Whitespace"),
)

// ParseBounds parses slice notation into Bounds.
// Supported forms:
//   - "2:5" or "[2:5]" (both ends)
//   - "2:" (open end)
//   - ":5" (open start)
//   - ":" (everything)
//
// A bare index, a step component or unbalanced brackets are rejected with
// a *errors.ParseError.
func ParseBounds(s string) (Bounds, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Bounds{}, errors.NewParse("bounds", s, "empty bounds")
	}

	parsed, err := boundsParser.ParseString("", s)
	if err != nil {
		return Bounds{}, errors.NewParse("bounds", s, err.Error())
	}
	if parsed.Step != nil {
		return Bounds{}, errors.NewParse("bounds", s, "a step is not allowed in span bounds")
	}
	if parsed.Open != parsed.Close {
		return Bounds{}, errors.NewParse("bounds", s, "unbalanced brackets")
	}

	var b Bounds
	if parsed.Start != nil {
		b.start, b.hasStart = *parsed.Start, true
	}
	if parsed.End != nil {
		b.end, b.hasEnd = *parsed.End, true
	}
	return b, nil
}

// MarshalText implements encoding.TextMarshaler.
func (b Bounds) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseBounds.
func (b *Bounds) UnmarshalText(text []byte) error {
	parsed, err := ParseBounds(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
