package span

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	nserrors "github.com/FocuswithJustin/nespan/core/errors"
	"github.com/FocuswithJustin/nespan/core/labels"
	"github.com/FocuswithJustin/nespan/core/tokenize"
)

func assertRange(t *testing.T, what string, gotStart, gotEnd, wantStart, wantEnd int) {
	t.Helper()
	if gotStart != wantStart || gotEnd != wantEnd {
		t.Errorf("%s = (%d, %d), want (%d, %d)", what, gotStart, gotEnd, wantStart, wantEnd)
	}
}

func TestDocument(t *testing.T) {
	for _, text := range []string{"", "hello", "ראה ברכות ב א"} {
		d := NewDocument(text)
		if d.Text() != text {
			t.Errorf("Text() = %q, want %q", d.Text(), text)
		}
		if d.Doc() != Subspannable(d) {
			t.Errorf("Doc() of %q is not the document itself", text)
		}
	}
}

func TestSubspan(t *testing.T) {
	const text = "In the beginning God created the heaven and the earth."
	d := NewDocument(text)

	tests := []struct {
		name      string
		bounds    Bounds
		wantText  string
		wantStart int
		wantEnd   int
	}{
		{"both ends", Between(7, 16), "beginning", 7, 16},
		{"open start", Until(6), "In the", 0, 6},
		{"open end", From(48), "earth.", 48, 54},
		{"whole", All(), text, 0, 54},
		{"empty", Between(3, 3), "", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := d.Subspan(tt.bounds, nil)
			if s.Text() != tt.wantText {
				t.Errorf("Text() = %q, want %q", s.Text(), tt.wantText)
			}
			start, end := s.Range()
			assertRange(t, "Range()", start, end, tt.wantStart, tt.wantEnd)
			if s.Doc() != Subspannable(d) {
				t.Errorf("Doc() is not the owning document")
			}
			if s.Label() != nil {
				t.Errorf("Label() = %v, want nil", s.Label())
			}
		})
	}
}

func TestSubspanRuneOffsets(t *testing.T) {
	d := NewDocument("עיין שבת לא א")
	s := d.Subspan(Between(5, 8), labels.Named)
	if s.Text() != "שבת" {
		t.Errorf("Text() = %q, want %q", s.Text(), "שבת")
	}
	whole := d.Subspan(From(5), nil)
	assertRange(t, "Range()", whole.start, whole.end, 5, 13)
	if d.Len() != 13 {
		t.Errorf("Len() = %d, want 13", d.Len())
	}
}

func TestSubspanOutOfRangeIsPermissive(t *testing.T) {
	d := NewDocument("hello")

	tests := []struct {
		name      string
		bounds    Bounds
		wantText  string
		wantStart int
		wantEnd   int
	}{
		{"end past text", Between(2, 50), "llo", 2, 50},
		{"start past text", Between(10, 20), "", 10, 20},
		{"start past end", Between(4, 1), "", 4, 1},
		{"negative start past end", Between(-3, 2), "", -3, 2},
		{"negative start", From(-3), "llo", -3, 5},
		{"negative end", Between(0, -1), "hell", 0, -1},
		{"negative both", Between(-4, -2), "el", -4, -2},
		{"negative before text", Between(-50, 2), "he", -50, 2},
		{"start at len", From(5), "", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := d.Subspan(tt.bounds, nil)
			if s.Text() != tt.wantText {
				t.Errorf("Text() = %q, want %q", s.Text(), tt.wantText)
			}
			start, end := s.Range()
			assertRange(t, "Range()", start, end, tt.wantStart, tt.wantEnd)
		})
	}
}

func TestNegativeCharsMatchNegativeWords(t *testing.T) {
	d := NewDocument("hello world")

	byChars := d.Subspan(From(-5), nil)
	byWords, err := d.SubspanByWordIndices(From(-1))
	if err != nil {
		t.Fatalf("SubspanByWordIndices() error = %v", err)
	}
	if byChars.Text() != "world" || byWords.Text() != "world" {
		t.Errorf("Text() = %q and %q, want both %q", byChars.Text(), byWords.Text(), "world")
	}
	if got := d.Subspan(Between(0, -1), nil).Text(); got != "hello worl" {
		t.Errorf("Subspan([0:-1]).Text() = %q, want %q", got, "hello worl")
	}

	nested := byChars.Subspan(Until(-2), nil)
	if nested.Text() != "wor" {
		t.Errorf("nested Text() = %q, want %q", nested.Text(), "wor")
	}
}

func TestSpanTextIsNotCached(t *testing.T) {
	d := NewDocument("abcdef")
	outer := d.Subspan(Between(1, 5), nil)
	inner := outer.Subspan(Between(1, 3), nil)
	if inner.Text() != "cd" {
		t.Errorf("inner.Text() = %q, want %q", inner.Text(), "cd")
	}
	if got := inner.Text(); got != outer.Text()[1:3] {
		t.Errorf("inner.Text() = %q, want owner slice %q", got, outer.Text()[1:3])
	}
}

func TestRangeRelativeToDoc(t *testing.T) {
	const text = "Rashi on Berakhot 2a:5 says so"
	d := NewDocument(text)

	s1 := d.Subspan(Between(9, 22), labels.Citation)
	s2 := s1.Subspan(Between(9, 13), nil)
	s3 := s2.Subspan(Between(0, 2), labels.Numbered)
	s4 := s3.Subspan(Between(1, 2), nil)

	tests := []struct {
		name      string
		span      *Span
		wantText  string
		wantStart int
		wantEnd   int
	}{
		{"level 1", s1, "Berakhot 2a:5", 9, 22},
		{"level 2", s2, "2a:5", 18, 22},
		{"level 3", s3, "2a", 18, 20},
		{"level 4", s4, "a", 19, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.span.Text() != tt.wantText {
				t.Errorf("Text() = %q, want %q", tt.span.Text(), tt.wantText)
			}
			start, end := tt.span.RangeRelativeToDoc()
			assertRange(t, "RangeRelativeToDoc()", start, end, tt.wantStart, tt.wantEnd)
			if got := []rune(text)[start:end]; string(got) != tt.wantText {
				t.Errorf("doc text at relative range = %q, want %q", string(got), tt.wantText)
			}
		})
	}

	// the owner-relative range is unchanged by nesting
	start, end := s3.Range()
	assertRange(t, "s3.Range()", start, end, 0, 2)
}

func TestRangeRelativeToDocNestedSum(t *testing.T) {
	d := NewDocument(strings.Repeat("x", 100))
	a, b, c, e := 10, 60, 5, 30
	s1 := d.Subspan(Between(a, b), nil)
	s2 := s1.Subspan(Between(c, e), nil)
	start, end := s2.RangeRelativeToDoc()
	assertRange(t, "RangeRelativeToDoc()", start, end, a+c, a+e)
}

func TestWordLength(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"hello world  foo", 3},
		{"", 0},
		{"   ", 0},
		{"single", 1},
		{" ראה   שבת\tלא א ", 4},
	}

	for _, tt := range tests {
		if got := NewDocument(tt.text).WordLength(); got != tt.want {
			t.Errorf("WordLength(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

// countingTokenizer counts how many times it is asked to tokenize.
type countingTokenizer struct {
	calls atomic.Int64
}

func (c *countingTokenizer) Tokenize(text string) []tokenize.Token {
	c.calls.Add(1)
	return tokenize.Whitespace{}.Tokenize(text)
}

func TestWordLengthMemoizedPerInstance(t *testing.T) {
	tok := &countingTokenizer{}
	d := NewDocument("one two three four", WithTokenizer(tok))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := d.WordLength(); got != 4 {
				t.Errorf("WordLength() = %d, want 4", got)
			}
		}()
	}
	wg.Wait()
	if _, err := d.SubspanByWordIndices(Between(0, 1)); err != nil {
		t.Fatal(err)
	}
	if got := tok.calls.Load(); got != 1 {
		t.Errorf("tokenizer called %d times for one document, want 1", got)
	}

	s := d.Subspan(Between(4, 13), nil)
	if got := s.WordLength(); got != 2 {
		t.Errorf("span WordLength() = %d, want 2", got)
	}
	s.WordLength()
	if got := tok.calls.Load(); got != 2 {
		t.Errorf("tokenizer called %d times after a span, want 2", got)
	}

	// identical spans do not share the cache
	d.Subspan(Between(4, 13), nil).WordLength()
	if got := tok.calls.Load(); got != 3 {
		t.Errorf("tokenizer called %d times after a second span, want 3", got)
	}
}

func TestSpansUseDocumentTokenizer(t *testing.T) {
	d := NewDocument("see Gen. 1:3, and more", WithTokenizer(tokenize.UAX29{}))
	s := d.Subspan(Between(4, 13), nil)
	if s.Text() != "Gen. 1:3," {
		t.Fatalf("Text() = %q", s.Text())
	}
	// UAX29 splits punctuation: Gen . 1 : 3 ,
	if got := s.WordLength(); got != 6 {
		t.Errorf("WordLength() = %d, want 6", got)
	}
	if got := NewDocument("Gen. 1:3,").WordLength(); got != 2 {
		t.Errorf("WordLength() with default tokenizer = %d, want 2", got)
	}
}

func TestSubspanByWordIndices(t *testing.T) {
	d := NewDocument("hello world foo")

	tests := []struct {
		name      string
		bounds    Bounds
		wantText  string
		wantStart int
		wantEnd   int
	}{
		{"first word", Between(0, 1), "hello", 0, 5},
		{"last two", Between(1, 3), "world foo", 6, 15},
		{"open end", From(1), "world foo", 6, 15},
		{"open start", Until(2), "hello world", 0, 11},
		{"all", All(), "hello world foo", 0, 15},
		{"end past count", Between(2, 10), "foo", 12, 15},
		{"negative start", From(-1), "foo", 12, 15},
		{"empty in range", Between(2, 2), "", 0, 0},
		{"reversed", Between(2, 1), "", 0, 0},
		{"start at count", From(3), "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := d.SubspanByWordIndices(tt.bounds)
			if err != nil {
				t.Fatalf("SubspanByWordIndices(%s) error = %v", tt.bounds, err)
			}
			if s.Text() != tt.wantText {
				t.Errorf("Text() = %q, want %q", s.Text(), tt.wantText)
			}
			start, end := s.Range()
			assertRange(t, "Range()", start, end, tt.wantStart, tt.wantEnd)
		})
	}
}

func TestSubspanByWordIndicesOutOfRange(t *testing.T) {
	d := NewDocument("hello world foo")

	for _, b := range []Bounds{From(5), Between(5, 7), Between(4, 2)} {
		s, err := d.SubspanByWordIndices(b)
		if err == nil {
			t.Errorf("SubspanByWordIndices(%s) = %v, want error", b, s)
			continue
		}
		if !errors.Is(err, nserrors.ErrOutOfRange) {
			t.Errorf("SubspanByWordIndices(%s) error = %v, want ErrOutOfRange", b, err)
		}
		var rangeErr *nserrors.RangeError
		if !errors.As(err, &rangeErr) {
			t.Fatalf("error %v is not a *RangeError", err)
		}
		if rangeErr.Count != 3 {
			t.Errorf("RangeError.Count = %d, want 3", rangeErr.Count)
		}
	}

	_, err := d.SubspanByWordIndices(From(5))
	if msg := err.Error(); !strings.Contains(msg, "5") || !strings.Contains(msg, "3 words") {
		t.Errorf("error %q does not name the indices and word count", msg)
	}
}

func TestSubspanByWordIndicesOnSpan(t *testing.T) {
	d := NewDocument("see Mishnah Berakhot 1:1 there")
	cite := d.Subspan(Between(4, 24), labels.Citation)
	title, err := cite.SubspanByWordIndices(Between(0, 2))
	if err != nil {
		t.Fatal(err)
	}
	if title.Text() != "Mishnah Berakhot" {
		t.Errorf("Text() = %q, want %q", title.Text(), "Mishnah Berakhot")
	}
	start, end := title.RangeRelativeToDoc()
	assertRange(t, "RangeRelativeToDoc()", start, end, 4, 20)

	labeled := title.WithLabel(labels.Named)
	if labeled.Label() != labels.Named || labeled.Doc() != Subspannable(cite) {
		t.Errorf("WithLabel() = %v, want same owner labeled %q", labeled, labels.Named)
	}
	if title.Label() != nil {
		t.Errorf("WithLabel() modified the original span")
	}
}

func TestSerialize(t *testing.T) {
	d := NewDocument("quoted in Shabbat 31a by Hillel")
	s := d.Subspan(Between(10, 21), labels.Citation)

	data, err := json.Marshal(s.Serialize(false))
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	if want := `{"range":[10,21],"label":"citation"}`; string(data) != want {
		t.Errorf("Serialize(false) = %s, want %s", data, want)
	}

	data, err = json.Marshal(s.Serialize(true))
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	if want := `{"range":[10,21],"label":"citation","text":"Shabbat 31a"}`; string(data) != want {
		t.Errorf("Serialize(true) = %s, want %s", data, want)
	}

	unlabeled := d.Subspan(Between(0, 0), nil)
	data, err = json.Marshal(unlabeled.Serialize(true))
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	if want := `{"range":[0,0],"label":null,"text":""}`; string(data) != want {
		t.Errorf("Serialize(true) = %s, want %s", data, want)
	}
}

func TestSerializeRangeIsOwnerRelative(t *testing.T) {
	d := NewDocument("abc Berakhot 2a")
	outer := d.Subspan(From(4), labels.Citation)
	inner := outer.Subspan(Between(9, 11), labels.Numbered)
	got := inner.Serialize(true)
	if got.Range != [2]int{9, 11} {
		t.Errorf("Range = %v, want [9 11]", got.Range)
	}

	// rebuilding the text from the immediate owner reproduces it
	owner := []rune(inner.Doc().Text())
	if rebuilt := string(owner[got.Range[0]:got.Range[1]]); rebuilt != *got.Text {
		t.Errorf("owner text at range = %q, want %q", rebuilt, *got.Text)
	}
}

func TestRestore(t *testing.T) {
	d := NewDocument("abc Berakhot 2a")
	outer := d.Subspan(From(4), labels.Citation)
	inner := outer.Subspan(Between(9, 11), labels.Numbered)

	data, err := json.Marshal(inner.Serialize(true))
	if err != nil {
		t.Fatal(err)
	}
	var decoded Serialized
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	decode := func(v string) (Label, error) {
		return labels.ParseRefPartType(v)
	}
	restored, err := Restore(outer, decoded, decode)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if !restored.Equal(inner) {
		t.Errorf("Restore() = %v, want %v", restored, inner)
	}

	asTag, err := Restore(outer, decoded, nil)
	if err != nil {
		t.Fatal(err)
	}
	if asTag.Label() != Tag("numbered") {
		t.Errorf("Label() = %#v, want Tag(numbered)", asTag.Label())
	}

	if _, err := Restore(d, decoded, decode); !errors.Is(err, nserrors.ErrInvalidInput) {
		t.Errorf("Restore() against the wrong owner error = %v, want ErrInvalidInput", err)
	}

	bad := decoded
	bad.Text = nil
	bad.Label = new(string)
	*bad.Label = "numbered!"
	if _, err := Restore(outer, bad, decode); err == nil {
		t.Error("Restore() accepted an invalid label")
	}
}

func TestKeyAndHash(t *testing.T) {
	d := NewDocument("see Berakhot 2a and Berakhot 2a")
	a := d.Subspan(Between(4, 15), labels.Citation)
	b := d.Subspan(Between(4, 15), labels.Citation)

	if !a.Equal(b) || a.Key() != b.Key() {
		t.Errorf("identically built spans are not equal: %v vs %v", a, b)
	}
	if a.Hash() != b.Hash() {
		t.Errorf("Hash() differs for identically built spans")
	}
	if len(a.Hash()) != 64 {
		t.Errorf("len(Hash()) = %d, want 64", len(a.Hash()))
	}

	relabeled := d.Subspan(Between(4, 15), labels.Person)
	if a.Equal(relabeled) || a.Hash() == relabeled.Hash() {
		t.Errorf("changing only the label did not change identity")
	}

	unlabeled := d.Subspan(Between(4, 15), nil)
	if a.Hash() == unlabeled.Hash() {
		t.Errorf("labeled and unlabeled spans share a hash")
	}

	tagged := d.Subspan(Between(4, 15), Tag("citation"))
	if a.Equal(tagged) || a.Hash() == tagged.Hash() {
		t.Errorf("Tag(citation) and labels.Citation share an identity")
	}

	moved := d.Subspan(Between(20, 31), labels.Citation)
	if a.Equal(moved) {
		t.Errorf("spans at different ranges are equal")
	}

	other := NewDocument("see Berakhot 2a and Berakhot 2a").Subspan(Between(4, 15), labels.Citation)
	if !a.Equal(other) {
		t.Errorf("spans over equal document text are not equal")
	}

	seen := map[Key]bool{a.Key(): true}
	if !seen[b.Key()] {
		t.Errorf("Key is not usable for deduplication")
	}
}

func TestKeyUsesOwnerRelativeRange(t *testing.T) {
	d := NewDocument("aaaa bbbb")
	first := d.Subspan(Between(0, 4), nil).Subspan(Between(0, 2), nil)
	second := d.Subspan(Between(5, 9), nil).Subspan(Between(0, 2), nil)
	if !first.Equal(second) {
		t.Errorf("spans with equal owner-relative ranges under one document are not equal")
	}
	s1, _ := first.RangeRelativeToDoc()
	s2, _ := second.RangeRelativeToDoc()
	if s1 == s2 {
		t.Errorf("test setup: spans should sit at different document positions")
	}
}

func TestEqualNil(t *testing.T) {
	var a, b *Span
	if !a.Equal(b) {
		t.Error("nil.Equal(nil) = false")
	}
	s := NewDocument("x").Subspan(All(), nil)
	if s.Equal(nil) {
		t.Error("s.Equal(nil) = true")
	}
}

func TestSpanString(t *testing.T) {
	d := NewDocument("see Berakhot 2a")
	s := d.Subspan(Between(4, 12), labels.Named)
	want := `Span(text="Berakhot", label="named", range=(4, 12))`
	if s.String() != want {
		t.Errorf("String() = %s, want %s", s.String(), want)
	}
}

func TestDocumentHash(t *testing.T) {
	a := NewDocument("text")
	b := NewDocument("text", WithTokenizer(tokenize.UAX29{}))
	if a.Hash() != b.Hash() {
		t.Errorf("Hash() depends on more than the text")
	}
	if a.Hash() == NewDocument("text.").Hash() {
		t.Errorf("Hash() collides for different text")
	}
}

func TestDefaultTokenizer(t *testing.T) {
	orig := DefaultTokenizer()
	t.Cleanup(func() { SetDefaultTokenizer(orig) })

	SetDefaultTokenizer(tokenize.UAX29{})
	d := NewDocument("a,b")
	if got := d.WordLength(); got != 3 {
		t.Errorf("WordLength() = %d, want 3", got)
	}

	SetDefaultTokenizer(nil)
	if _, ok := DefaultTokenizer().(tokenize.Whitespace); !ok {
		t.Errorf("SetDefaultTokenizer(nil) left %T", DefaultTokenizer())
	}
	if got := d.WordLength(); got != 3 {
		t.Errorf("existing document changed tokenizer: WordLength() = %d", got)
	}
}

func TestSliceRunes(t *testing.T) {
	tests := []struct {
		s          string
		start, end int
		want       string
	}{
		{"hello", 0, 5, "hello"},
		{"hello", 1, 3, "el"},
		{"hello", 3, 99, "lo"},
		{"hello", 5, 6, ""},
		{"hello", -2, 1, ""},
		{"hello", -2, 5, "lo"},
		{"hello", -9, 2, "he"},
		{"שלום", -3, -1, "לו"},
		{"שלום", 1, 3, "לו"},
		{"", 0, 1, ""},
	}
	for _, tt := range tests {
		if got := sliceRunes(tt.s, tt.start, tt.end); got != tt.want {
			t.Errorf("sliceRunes(%q, %d, %d) = %q, want %q", tt.s, tt.start, tt.end, got, tt.want)
		}
	}
}

func TestWords(t *testing.T) {
	d := NewDocument("a  bc d")
	want := []tokenize.Token{{Start: 0, End: 1}, {Start: 3, End: 5}, {Start: 6, End: 7}}
	if diff := cmp.Diff(want, d.Words()); diff != "" {
		t.Errorf("Words() mismatch (-want +got):\n%s", diff)
	}
}

func BenchmarkRangeRelativeToDoc(b *testing.B) {
	d := NewDocument(strings.Repeat("word ", 1000))
	var s Subspannable = d
	for i := 0; i < 20; i++ {
		s = s.Subspan(From(1), nil)
	}
	leaf := s.(*Span)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		leaf.RangeRelativeToDoc()
	}
}

func BenchmarkSubspanByWordIndices(b *testing.B) {
	text := strings.Repeat("In the beginning God created the heaven and the earth. ", 50)
	for i := 0; i < b.N; i++ {
		d := NewDocument(text)
		if _, err := d.SubspanByWordIndices(Between(10, 20)); err != nil {
			b.Fatal(err)
		}
	}
}
