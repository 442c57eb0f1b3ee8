package span

import (
	"sync"
	"unicode/utf8"

	"github.com/FocuswithJustin/nespan/core/tokenize"
)

var (
	defaultMu        sync.RWMutex
	defaultTokenizer tokenize.Tokenizer = tokenize.Whitespace{}
)

// SetDefaultTokenizer replaces the tokenizer given to documents created
// without WithTokenizer. Documents that already exist keep their tokenizer.
func SetDefaultTokenizer(t tokenize.Tokenizer) {
	if t == nil {
		t = tokenize.Whitespace{}
	}
	defaultMu.Lock()
	defaultTokenizer = t
	defaultMu.Unlock()
}

// DefaultTokenizer returns the tokenizer new documents use by default.
func DefaultTokenizer() tokenize.Tokenizer {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultTokenizer
}

// Option configures a Document.
type Option func(*Document)

// WithTokenizer sets the tokenizer used for word indexing of the document
// and every span cut from it.
func WithTokenizer(t tokenize.Tokenizer) Option {
	return func(d *Document) {
		if t != nil {
			d.tokenizer = t
		}
	}
}

// Document is the root of a span chain. It owns the full source text.
type Document struct {
	base
	text      string
	tokenizer tokenize.Tokenizer
}

// NewDocument creates a Document over text.
func NewDocument(text string, opts ...Option) *Document {
	d := &Document{
		text:      text,
		tokenizer: DefaultTokenizer(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.base = newBase(d)
	return d
}

// Text returns the document text verbatim.
func (d *Document) Text() string {
	return d.text
}

// Doc returns d. A Document is its own root.
func (d *Document) Doc() Subspannable {
	return d
}

// Len returns the length of the text in runes.
func (d *Document) Len() int {
	return utf8.RuneCountInString(d.text)
}

// Tokenizer returns the tokenizer used for word indexing.
func (d *Document) Tokenizer() tokenize.Tokenizer {
	return d.tokenizer
}

// Hash returns the BLAKE3 fingerprint of the document text.
func (d *Document) Hash() string {
	return hashText(d.text)
}

func (d *Document) root() *Document {
	return d
}
