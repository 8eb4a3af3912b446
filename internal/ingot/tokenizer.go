package ingot

import "strings"

// symbolChars terminate a plain word run.
const symbolChars = "{}[]()<>,;: \t\n\r\"'/"

func isSymbol(c rune) bool {
	return strings.ContainsRune(symbolChars, c)
}

// Tokenizer scans a character buffer into RawTokens. It is not safe for
// concurrent use; each parse owns its own instance.
type Tokenizer struct {
	chars []rune
	pos   int
}

// NewTokenizer returns a tokenizer positioned at the start of chars.
func NewTokenizer(chars []rune) *Tokenizer {
	return &Tokenizer{chars: chars}
}

// Pos returns the current cursor offset.
func (t *Tokenizer) Pos() int { return t.pos }

func (t *Tokenizer) peek() (rune, bool) {
	if t.pos >= len(t.chars) {
		return 0, false
	}
	return t.chars[t.pos], true
}

func (t *Tokenizer) advance() (rune, bool) {
	c, ok := t.peek()
	if ok {
		t.pos++
	}
	return c, ok
}

// Next returns the next token and moves the cursor past it. Once the input
// is exhausted every call returns an EOS token.
func (t *Tokenizer) Next() RawToken {
	start := t.pos
	c, ok := t.advance()
	if !ok {
		return RawToken{Pos: start, Kind: TokenEOS}
	}

	tok := RawToken{Pos: start}
	switch c {
	case '\'':
		tok.Kind, tok.Quote = TokenQuote, QuoteSingle
	case '"':
		tok.Kind, tok.Quote = TokenQuote, QuoteDouble
	case ',':
		tok.Kind, tok.Sep = TokenSeparator, SepComma
	case ':':
		tok.Kind, tok.Sep = TokenSeparator, SepColon
	case '\n':
		tok.Kind, tok.Sep, tok.Text = TokenSeparator, SepNewLine, "\n"
	case '\r':
		tok.Kind, tok.Sep, tok.Text = TokenSeparator, SepNewLine, "\r"
		if n, ok := t.peek(); ok && n == '\n' {
			t.pos++
			tok.Text = "\r\n"
		}
	case ' ', '\t':
		tok.Kind, tok.Sep, tok.Text = TokenSeparator, SepWhitespace, t.scanWhitespace()
	case '[', ']', '{', '}', '(', ')', '<', '>':
		tok.Kind = TokenBracket
		tok.Role, tok.Bracket = bracketOf(c)
	case '/':
		tok = t.afterSlash(start)
	case '*':
		tok = t.afterAsterisk(start)
	default:
		tok.Kind, tok.Text = TokenSimpleString, t.scanWord(c)
	}
	return tok
}

// All drains the tokenizer and returns every token before EOS.
func (t *Tokenizer) All() []RawToken {
	var out []RawToken
	for {
		tok := t.Next()
		if tok.Kind == TokenEOS {
			return out
		}
		out = append(out, tok)
	}
}

// Rest returns the cursor offset and every character not yet consumed,
// without tokenizing them.
func (t *Tokenizer) Rest() (int, []rune) {
	if t.pos >= len(t.chars) {
		return t.pos, nil
	}
	rest := make([]rune, len(t.chars)-t.pos)
	copy(rest, t.chars[t.pos:])
	return t.pos, rest
}

func bracketOf(c rune) (BracketRole, BracketKind) {
	for role := range bracketChars {
		for kind, b := range bracketChars[role] {
			if b == c {
				return BracketRole(role), BracketKind(kind)
			}
		}
	}
	return BracketStart, BracketNormal
}

// scanWhitespace consumes the rest of a space/tab run; the first character
// has already been read.
func (t *Tokenizer) scanWhitespace() string {
	start := t.pos - 1
	for {
		c, ok := t.peek()
		if !ok || (c != ' ' && c != '\t') {
			break
		}
		t.pos++
	}
	return string(t.chars[start:t.pos])
}

func (t *Tokenizer) afterSlash(start int) RawToken {
	switch n, _ := t.peek(); n {
	case '/':
		t.pos++
		return RawToken{Pos: start, Kind: TokenComment, Comment: CommentLineBegin}
	case '*':
		t.pos++
		return RawToken{Pos: start, Kind: TokenComment, Comment: CommentBlockBegin}
	}
	return RawToken{Pos: start, Kind: TokenSimpleString, Text: "/"}
}

func (t *Tokenizer) afterAsterisk(start int) RawToken {
	if n, _ := t.peek(); n == '/' {
		t.pos++
		return RawToken{Pos: start, Kind: TokenComment, Comment: CommentBlockEnd}
	}
	return RawToken{Pos: start, Kind: TokenSimpleString, Text: "*"}
}

// scanWord reads a plain word starting with first. A backslash takes the
// following character verbatim, "*/" and symbol characters end the word.
// A ';' ends the word before it but starts the next one, so "a;b" reads as
// "a" and ";b".
func (t *Tokenizer) scanWord(first rune) string {
	var b strings.Builder
	b.WriteRune(first)
	if first == '\\' {
		if c, ok := t.advance(); ok {
			b.WriteRune(c)
		}
	}

	for {
		c, ok := t.peek()
		if !ok || isSymbol(c) {
			break
		}
		switch c {
		case '\\':
			t.pos++
			b.WriteRune(c)
			if e, ok := t.advance(); ok {
				b.WriteRune(e)
			}
			continue
		case '*':
			if t.pos+1 < len(t.chars) && t.chars[t.pos+1] == '/' {
				return b.String()
			}
		}
		b.WriteRune(c)
		t.pos++
	}
	return b.String()
}
