package ingot

// TokenKind identifies the lexical class of a RawToken.
type TokenKind uint8

const (
	TokenEOS TokenKind = iota
	TokenQuote
	TokenSimpleString
	TokenSeparator
	TokenBracket
	TokenComment
)

// String returns the token kind name.
func (k TokenKind) String() string {
	switch k {
	case TokenEOS:
		return "EOS"
	case TokenQuote:
		return "QUOTE"
	case TokenSimpleString:
		return "STRING"
	case TokenSeparator:
		return "SEP"
	case TokenBracket:
		return "BRACKET"
	case TokenComment:
		return "COMMENT"
	default:
		return "UNKNOWN"
	}
}

// Quote is the delimiter of a quoted string.
type Quote uint8

const (
	QuoteSingle Quote = iota
	QuoteDouble
)

// Char returns the quote character.
func (q Quote) Char() rune {
	if q == QuoteSingle {
		return '\''
	}
	return '"'
}

// SepKind is the flavour of a separator token.
type SepKind uint8

const (
	SepComma SepKind = iota
	SepColon
	SepWhitespace
	SepNewLine
)

type BracketRole uint8

const (
	BracketStart BracketRole = iota
	BracketEnd
)

type BracketKind uint8

const (
	BracketCurly BracketKind = iota
	BracketSquare
	BracketAngle
	BracketNormal
)

var bracketChars = [2][4]rune{
	BracketStart: {BracketCurly: '{', BracketSquare: '[', BracketAngle: '<', BracketNormal: '('},
	BracketEnd:   {BracketCurly: '}', BracketSquare: ']', BracketAngle: '>', BracketNormal: ')'},
}

// CommentMark is one of the three comment delimiters.
type CommentMark uint8

const (
	CommentLineBegin  CommentMark = iota // //
	CommentBlockBegin                    // /*
	CommentBlockEnd                      // */
)

// String returns the two characters of the mark.
func (m CommentMark) String() string {
	switch m {
	case CommentLineBegin:
		return "//"
	case CommentBlockBegin:
		return "/*"
	default:
		return "*/"
	}
}

// RawToken is one lexical unit produced by the Tokenizer. Only the fields
// relevant to Kind are set. Text carries the verbatim source for
// SimpleString, Whitespace and NewLine tokens.
type RawToken struct {
	Pos     int
	Kind    TokenKind
	Quote   Quote
	Sep     SepKind
	Role    BracketRole
	Bracket BracketKind
	Comment CommentMark
	Text    string
}

// IsSep reports whether t is a separator of the given kind.
func (t RawToken) IsSep(kind SepKind) bool {
	return t.Kind == TokenSeparator && t.Sep == kind
}

// String renders the token back to the characters it was read from.
func (t RawToken) String() string {
	switch t.Kind {
	case TokenQuote:
		return string(t.Quote.Char())
	case TokenSimpleString:
		return t.Text
	case TokenSeparator:
		switch t.Sep {
		case SepComma:
			return ","
		case SepColon:
			return ":"
		case SepNewLine:
			if t.Text == "" {
				return "\n"
			}
			return t.Text
		default:
			return t.Text
		}
	case TokenBracket:
		return string(bracketChars[t.Role][t.Bracket])
	case TokenComment:
		return t.Comment.String()
	default:
		return ""
	}
}
