package ingot

import "unicode"

// takeFrontMatter reads tokens from t until end of input or a blank line,
// i.e. a second NewLine directly after another. The terminating NewLine is
// consumed but not returned.
func takeFrontMatter(t *Tokenizer) []RawToken {
	var out []RawToken
	prevNewLine := false
	for {
		tok := t.Next()
		switch {
		case tok.Kind == TokenEOS:
			return out
		case tok.IsSep(SepNewLine):
			if prevNewLine {
				return out
			}
			prevNewLine = true
		default:
			prevNewLine = false
		}
		out = append(out, tok)
	}
}

// SplitBackMatter scans chars backwards for the last blank line. Everything
// from that point on is the back-matter candidate; everything before it is
// content. A CRLF pair counts as one line break, whitespace between breaks
// is ignored and any other character resets the count. Without a blank line
// back is nil.
func SplitBackMatter(chars []rune) (content, back []rune) {
	breaks := 0
	for i := len(chars) - 1; i >= 0; i-- {
		c := chars[i]
		switch {
		case c == '\n':
			if i > 0 && chars[i-1] == '\r' {
				i--
			}
			breaks++
		case c == '\r':
			breaks++
		case unicode.IsSpace(c):
			continue
		default:
			breaks = 0
			continue
		}
		if breaks >= 2 {
			return chars[:i], chars[i:]
		}
	}
	return chars, nil
}
