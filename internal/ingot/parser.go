package ingot

import "strings"

// Parser groups a flat RawToken sequence into a tree of Nodes by recursive
// descent over a cursor. A Parser is single-use and not safe for concurrent
// use.
type Parser struct {
	tokens []RawToken
	pos    int
}

// NewParser returns a parser over tokens. EOS tokens inside the slice are
// honoured as end of input.
func NewParser(tokens []RawToken) *Parser {
	return &Parser{tokens: tokens}
}

// Next returns the next top-level node, or nil once the tokens are
// exhausted.
func (p *Parser) Next() *Node {
	return p.parseNode(true)
}

// KeyValues drains the parser and returns only the KeyValue nodes, in order.
func (p *Parser) KeyValues() []*Node {
	var out []*Node
	for n := p.Next(); n != nil; n = p.Next() {
		if n.Kind == NodeKeyValue {
			out = append(out, n)
		}
	}
	return out
}

func (p *Parser) peek() (RawToken, bool) {
	if p.pos >= len(p.tokens) || p.tokens[p.pos].Kind == TokenEOS {
		return RawToken{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) next() (RawToken, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

// parseNode reads one node. keys controls whether a scalar followed by a
// colon opens a KeyValue; values are parsed with it off.
func (p *Parser) parseNode(keys bool) *Node {
	for {
		tok, ok := p.next()
		if !ok {
			return nil
		}
		switch tok.Kind {
		case TokenQuote:
			return p.parseQuoted(tok, keys)
		case TokenSimpleString:
			return p.parseScalar(tok.Pos, tok.Text, keys)
		case TokenComment:
			return p.parseComment(tok)
		case TokenSeparator:
			// separators carry no node
			continue
		case TokenBracket:
			if tok.Role == BracketEnd {
				// stray close bracket
				keys = true
				continue
			}
			return p.parseArray(tok)
		}
	}
}

// seekUntil concatenates the rendering of every token up to, but not
// including, the first one matching stop.
func (p *Parser) seekUntil(stop func(RawToken) bool) string {
	var b strings.Builder
	for {
		t, ok := p.peek()
		if !ok || stop(t) {
			return b.String()
		}
		b.WriteString(t.String())
		p.pos++
	}
}

func (p *Parser) parseQuoted(open RawToken, keys bool) *Node {
	closing := func(t RawToken) bool {
		return t.Kind == TokenQuote && t.Quote == open.Quote
	}
	text := p.seekUntil(func(t RawToken) bool {
		return closing(t) || t.IsSep(SepNewLine)
	})
	if t, ok := p.peek(); ok && closing(t) {
		p.pos++
	}

	if t, ok := p.peek(); ok {
		switch {
		case t.IsSep(SepNewLine):
			p.pos++
		case t.IsSep(SepColon) && keys:
			p.pos++
			return p.parseKeyValue(open.Pos, text)
		}
	}
	return newQuoted(open.Pos, open.Quote, text)
}

// parseScalar joins adjacent words and whitespace into one string. With keys
// on, any separator ends the run and a colon turns it into a key. With keys
// off the run extends to the end of the line, keeping colons, quote
// characters and commas, except a comma that opens another key: the comma
// is consumed and the value ends there.
func (p *Parser) parseScalar(pos int, first string, keys bool) *Node {
	var b strings.Builder
	b.WriteString(first)
	isKey := false

loop:
	for {
		t, ok := p.peek()
		if !ok {
			break
		}
		switch t.Kind {
		case TokenSimpleString:
			b.WriteString(t.Text)
		case TokenSeparator:
			switch {
			case t.Sep == SepWhitespace:
				b.WriteString(t.Text)
			case keys:
				isKey = t.Sep == SepColon
				p.pos++
				break loop
			case t.Sep == SepNewLine:
				p.pos++
				break loop
			case t.Sep == SepComma && p.keyAt(p.pos+1):
				p.pos++
				break loop
			default:
				b.WriteString(t.String())
			}
		case TokenQuote:
			if keys {
				break loop
			}
			b.WriteString(t.String())
		default:
			break loop
		}
		p.pos++
	}

	text := strings.TrimRight(b.String(), " \t")
	if isKey {
		return p.parseKeyValue(pos, text)
	}
	return newScalar(pos, text)
}

// keyAt reports whether the tokens from i on read as a key: optional
// whitespace, then a word run or a quoted string, then a colon.
func (p *Parser) keyAt(i int) bool {
	at := func(i int) (RawToken, bool) {
		if i >= len(p.tokens) || p.tokens[i].Kind == TokenEOS {
			return RawToken{}, false
		}
		return p.tokens[i], true
	}

	for t, ok := at(i); ok && t.IsSep(SepWhitespace); t, ok = at(i) {
		i++
	}
	first, ok := at(i)
	if !ok {
		return false
	}
	i++
	switch first.Kind {
	case TokenSimpleString:
		for t, ok := at(i); ok && (t.Kind == TokenSimpleString || t.IsSep(SepWhitespace)); t, ok = at(i) {
			i++
		}
	case TokenQuote:
		for {
			t, ok := at(i)
			if !ok || t.IsSep(SepNewLine) {
				return false
			}
			i++
			if t.Kind == TokenQuote && t.Quote == first.Quote {
				break
			}
		}
	default:
		return false
	}
	t, ok := at(i)
	return ok && t.IsSep(SepColon)
}

func (p *Parser) parseKeyValue(pos int, key string) *Node {
	value := p.parseNode(false)
	if value != nil && value.Kind == NodeComment {
		value = p.parseNode(false)
	}
	return newKeyValue(pos, strings.TrimRight(key, " \t"), value)
}

func (p *Parser) parseComment(tok RawToken) *Node {
	switch tok.Comment {
	case CommentLineBegin:
		text := p.seekUntil(func(t RawToken) bool { return t.IsSep(SepNewLine) })
		return &Node{Pos: tok.Pos, Kind: NodeComment, Text: text}
	case CommentBlockBegin:
		text := p.seekUntil(func(t RawToken) bool {
			return t.Kind == TokenComment && t.Comment == CommentBlockEnd
		})
		if _, ok := p.peek(); ok {
			p.pos++
		}
		return &Node{Pos: tok.Pos, Kind: NodeComment, Text: text}
	default:
		// unmatched "*/" is ordinary text
		return p.parseScalar(tok.Pos, tok.Comment.String(), true)
	}
}

// parseArray collects children until an End bracket of any kind. The kind
// of the closing bracket is not checked against the opener.
func (p *Parser) parseArray(open RawToken) *Node {
	arr := &Node{Pos: open.Pos, Kind: NodeArray}
	for {
		t, ok := p.peek()
		if !ok {
			return arr
		}
		switch t.Kind {
		case TokenBracket:
			p.pos++
			if t.Role == BracketEnd {
				return arr
			}
			arr.Children = append(arr.Children, p.parseArray(t))
		case TokenSeparator:
			p.pos++
		default:
			child := p.parseNode(true)
			if child == nil {
				return arr
			}
			arr.Children = append(arr.Children, child)
		}
	}
}
