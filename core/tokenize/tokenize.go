// Package tokenize provides the word segmenters behind span word indexing.
//
// A Tokenizer turns a string into an ordered sequence of tokens that covers
// the whole input. Offsets are rune (code point) offsets, so they line up
// with the character offsets classifiers report for Hebrew and English text.
// Whitespace-only tokens are flagged rather than dropped; Words filters them.
package tokenize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/FocuswithJustin/nespan/core/errors"
)

// Token is a single segment of the input.
type Token struct {
	// Start is the rune offset where the token starts.
	Start int `json:"start"`

	// End is the rune offset where the token ends (exclusive).
	End int `json:"end"`

	// Space is true for whitespace-only tokens.
	Space bool `json:"space,omitempty"`
}

// Len returns the length of the token in runes.
func (t Token) Len() int {
	return t.End - t.Start
}

// Tokenizer segments text into tokens. Implementations must be safe for
// concurrent use.
type Tokenizer interface {
	Tokenize(text string) []Token
}

// Func adapts an ordinary function to the Tokenizer interface.
type Func func(text string) []Token

// Tokenize calls f(text).
func (f Func) Tokenize(text string) []Token {
	return f(text)
}

// Words returns the non-space tokens of text.
func Words(t Tokenizer, text string) []Token {
	tokens := t.Tokenize(text)
	words := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if !tok.Space {
			words = append(words, tok)
		}
	}
	return words
}

// Segmenter names accepted by ByName.
const (
	NameWhitespace = "whitespace"
	NameUAX29      = "uax29"
)

var registry = map[string]Tokenizer{
	NameWhitespace: Whitespace{},
	NameUAX29:      UAX29{},
}

// ByName returns the built-in tokenizer registered under name.
// Names are matched case-insensitively.
func ByName(name string) (Tokenizer, error) {
	t, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.NewUnsupported("segmenter",
			fmt.Sprintf("%q (available: %s)", name, strings.Join(Names(), ", ")))
	}
	return t, nil
}

// Names returns the registered tokenizer names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
