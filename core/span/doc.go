// Package span models named entity spans over a text document.
//
// A span is an immutable view over the text of its owner. Owners form a
// chain that always ends at a Document:
//
//	doc := span.NewDocument("see Berakhot 2a:5 and Shabbat 31a")
//	cite := doc.Subspan(span.Between(4, 17), labels.Citation)
//	title := cite.Subspan(span.Until(8), labels.Named)
//	title.Text()               // "Berakhot"
//	title.Range()              // (0, 8), relative to cite
//	title.RangeRelativeToDoc() // (4, 12), relative to doc
//
// # Offsets
//
// Offsets count Unicode code points (runes), not bytes, so they agree with
// the character offsets classifiers report for Hebrew and English text.
//
// # Permissive slicing
//
// Subspan never validates offsets. When a span's text is read, its offsets
// are resolved against the owner's text with the same rules word indices
// use: a negative offset counts back from the end of the text, offsets
// past the end are truncated, and a start at or after the end reads as the
// empty string. The stored range is exactly what the caller passed.
//
// # Word slicing
//
// SubspanByWordIndices selects words produced by the document's Tokenizer
// (see package tokenize) and converts them to a character span. Word
// offsets are computed once per span or document and then reused.
//
// # Concurrency
//
// Documents and spans are never mutated after construction and their word
// offsets are computed under sync.Once, so a tree of spans may be read from
// any number of goroutines.
package span
