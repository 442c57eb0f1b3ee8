package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// UAX29 segments text on Unicode Standard Annex #29 word boundaries.
// Unlike Whitespace, punctuation is split into tokens of its own, so
// "Gen. 1:3" yields the words "Gen", ".", "1", ":", "3". Letters joined by
// a hyphen, as in Hebrew labels like "סימן-טווח", become three words.
type UAX29 struct{}

// Tokenize implements Tokenizer.
func (UAX29) Tokenize(text string) []Token {
	var tokens []Token
	state := -1
	pos := 0
	rest := text

	for len(rest) > 0 {
		var segment string
		segment, rest, state = uniseg.FirstWordInString(rest, state)
		n := utf8.RuneCountInString(segment)
		tokens = append(tokens, Token{
			Start: pos,
			End:   pos + n,
			Space: isBlank(segment),
		})
		pos += n
	}

	return tokens
}

func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
