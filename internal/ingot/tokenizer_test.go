package ingot

import (
	"strings"
	"testing"
)

func tokenize(s string) []RawToken {
	return NewTokenizer([]rune(s)).All()
}

func mustLen(t *testing.T, toks []RawToken, n int) {
	t.Helper()
	if len(toks) != n {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), n, toks)
	}
}

func TestTokenizer_Basic(t *testing.T) {
	toks := tokenize("aaa:bbb")
	mustLen(t, toks, 3)

	want := []RawToken{
		{Pos: 0, Kind: TokenSimpleString, Text: "aaa"},
		{Pos: 3, Kind: TokenSeparator, Sep: SepColon},
		{Pos: 4, Kind: TokenSimpleString, Text: "bbb"},
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Errorf("token %d = %+v, want %+v", i, toks[i], want[i])
		}
	}
}

func TestTokenizer_Brackets(t *testing.T) {
	toks := tokenize("aaa: {bbb: ccc}")
	mustLen(t, toks, 9)

	open := toks[3]
	if open.Pos != 5 || open.Kind != TokenBracket || open.Role != BracketStart || open.Bracket != BracketCurly {
		t.Errorf("open = %+v", open)
	}
	closing := toks[8]
	if closing.Pos != 14 || closing.Role != BracketEnd || closing.Bracket != BracketCurly {
		t.Errorf("close = %+v", closing)
	}

	kinds := map[rune]BracketKind{'[': BracketSquare, '(': BracketNormal, '<': BracketAngle}
	for c, want := range kinds {
		if got := tokenize(string(c))[0].Bracket; got != want {
			t.Errorf("bracket %q = %v, want %v", c, got, want)
		}
	}
}

func TestTokenizer_NewLines(t *testing.T) {
	toks := tokenize("a\r\nb\rc\nd")
	mustLen(t, toks, 7)

	if !toks[1].IsSep(SepNewLine) || toks[1].Text != "\r\n" {
		t.Errorf("CRLF token = %+v", toks[1])
	}
	if toks[2].Pos != 3 {
		t.Errorf("pos after CRLF = %d, want 3", toks[2].Pos)
	}
	if !toks[3].IsSep(SepNewLine) || toks[3].Text != "\r" {
		t.Errorf("CR token = %+v", toks[3])
	}
	if !toks[5].IsSep(SepNewLine) {
		t.Errorf("LF token = %+v", toks[5])
	}
}

func TestTokenizer_Whitespace(t *testing.T) {
	toks := tokenize("a \t  b")
	mustLen(t, toks, 3)
	want := RawToken{Pos: 1, Kind: TokenSeparator, Sep: SepWhitespace, Text: " \t  "}
	if toks[1] != want {
		t.Errorf("whitespace = %+v, want %+v", toks[1], want)
	}
}

func TestTokenizer_Comments(t *testing.T) {
	var marks []CommentMark
	for _, tok := range tokenize("// x /* y */") {
		if tok.Kind == TokenComment {
			marks = append(marks, tok.Comment)
		}
	}
	want := []CommentMark{CommentLineBegin, CommentBlockBegin, CommentBlockEnd}
	if len(marks) != len(want) {
		t.Fatalf("marks = %v, want %v", marks, want)
	}
	for i := range want {
		if marks[i] != want[i] {
			t.Errorf("mark %d = %v, want %v", i, marks[i], want[i])
		}
	}
}

func TestTokenizer_SlashAndAsterisk(t *testing.T) {
	toks := tokenize("a/b*c")
	mustLen(t, toks, 3)
	if toks[0].Text != "a" || toks[2].Text != "b*c" {
		t.Errorf("words = %q, %q", toks[0].Text, toks[2].Text)
	}
	if want := (RawToken{Pos: 1, Kind: TokenSimpleString, Text: "/"}); toks[1] != want {
		t.Errorf("slash = %+v, want %+v", toks[1], want)
	}

	toks = tokenize("a*/")
	mustLen(t, toks, 2)
	if toks[0].Text != "a" || toks[1].Kind != TokenComment || toks[1].Comment != CommentBlockEnd {
		t.Errorf("tokens = %+v", toks)
	}

	toks = tokenize("* x")
	if want := (RawToken{Pos: 0, Kind: TokenSimpleString, Text: "*"}); toks[0] != want {
		t.Errorf("asterisk = %+v, want %+v", toks[0], want)
	}
}

func TestTokenizer_Escape(t *testing.T) {
	toks := tokenize(`a\,b c`)
	mustLen(t, toks, 3)
	if toks[0].Text != `a\,b` {
		t.Errorf("escaped word = %q, want %q", toks[0].Text, `a\,b`)
	}

	toks = tokenize(`\:key`)
	mustLen(t, toks, 1)
	if toks[0].Text != `\:key` {
		t.Errorf("escaped word = %q, want %q", toks[0].Text, `\:key`)
	}
}

func TestTokenizer_Quotes(t *testing.T) {
	toks := tokenize(`'a';"b"`)
	mustLen(t, toks, 7)
	if toks[0].Quote != QuoteSingle || toks[4].Quote != QuoteDouble {
		t.Errorf("quotes = %v, %v", toks[0].Quote, toks[4].Quote)
	}
	if want := (RawToken{Pos: 3, Kind: TokenSimpleString, Text: ";"}); toks[3] != want {
		t.Errorf("semicolon = %+v, want %+v", toks[3], want)
	}
}

func TestTokenizer_SemicolonStartsWord(t *testing.T) {
	toks := tokenize("a;b c")
	mustLen(t, toks, 4)
	if toks[0].Text != "a" {
		t.Errorf("first word = %q, want %q", toks[0].Text, "a")
	}
	if want := (RawToken{Pos: 1, Kind: TokenSimpleString, Text: ";b"}); toks[1] != want {
		t.Errorf("second word = %+v, want %+v", toks[1], want)
	}

	toks = tokenize(";;")
	mustLen(t, toks, 2)
	if toks[0].Text != ";" || toks[1].Text != ";" || toks[1].Pos != 1 {
		t.Errorf("tokens = %+v", toks)
	}
}

func TestTokenizer_EOSForever(t *testing.T) {
	tz := NewTokenizer([]rune("x"))
	tz.Next()
	for i := 0; i < 3; i++ {
		tok := tz.Next()
		if tok.Kind != TokenEOS || tok.String() != "" {
			t.Errorf("call %d = %+v, want EOS", i, tok)
		}
	}
}

func TestTokenizer_Rest(t *testing.T) {
	tz := NewTokenizer([]rune("key: v\n\nbody"))
	for i := 0; i < 5; i++ {
		tz.Next()
	}
	pos, rest := tz.Rest()
	if pos != 7 || string(rest) != "\nbody" {
		t.Errorf("Rest = %d, %q; want 7, %q", pos, string(rest), "\nbody")
	}

	tz = NewTokenizer([]rune("x"))
	tz.Next()
	if _, rest = tz.Rest(); len(rest) != 0 {
		t.Errorf("Rest after input = %q, want empty", string(rest))
	}
}

func TestTokenizer_RoundTrip(t *testing.T) {
	inputs := []string{
		"title: Hello World\r\n\r\nbody",
		`tags: [a, 'b', "c"] // note`,
		"/* block */ *a*b/c\\d;e\tf\r",
		"日本語: テキスト, (x) <y>",
		"",
	}
	for _, in := range inputs {
		var b strings.Builder
		for _, tok := range tokenize(in) {
			b.WriteString(tok.String())
		}
		if got := b.String(); got != in {
			t.Errorf("round trip = %q, want %q", got, in)
		}
	}
}
