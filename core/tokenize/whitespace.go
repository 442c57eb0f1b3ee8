package tokenize

import "unicode"

// Whitespace splits text into alternating runs of whitespace and
// non-whitespace. Every non-whitespace run is one word, whatever script
// or punctuation it contains.
type Whitespace struct{}

// Tokenize implements Tokenizer.
func (Whitespace) Tokenize(text string) []Token {
	var tokens []Token
	start := 0
	pos := 0
	inToken := false
	space := false

	finishToken := func(end int) {
		if inToken && end > start {
			tokens = append(tokens, Token{Start: start, End: end, Space: space})
		}
	}

	for _, r := range text {
		isSpace := unicode.IsSpace(r)
		if !inToken {
			start = pos
			space = isSpace
			inToken = true
		} else if isSpace != space {
			finishToken(pos)
			start = pos
			space = isSpace
		}
		pos++
	}

	finishToken(pos)
	return tokens
}
