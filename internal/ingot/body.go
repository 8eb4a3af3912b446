package ingot

import "strings"

// nextLine splits s at its first line break (LF, CRLF or a lone CR).
// found is false when s holds no line break.
func nextLine(s string) (line, rest string, found bool) {
	i := strings.IndexAny(s, "\r\n")
	if i < 0 {
		return s, "", false
	}
	n := 1
	if s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n' {
		n = 2
	}
	return s[:i], s[i+n:], true
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// splitTitle applies the title convention to the text left once both
// matter blocks are gone: leading blank lines are skipped and the first
// non-blank line is the title, taken as written, when the line after it is
// blank or absent.
// The body is then whatever follows that blank line. Otherwise found is
// false and body is the text from the first non-blank line on. Text with
// no non-blank line comes back unchanged as both title and body.
func splitTitle(text string) (title, body string, found bool) {
	rest := text
	for {
		line, after, ok := nextLine(rest)
		if isBlank(line) {
			if !ok {
				return text, text, false
			}
			rest = after
			continue
		}

		title = line
		if !ok {
			return title, "", true
		}
		next, afterNext, ok := nextLine(after)
		if !isBlank(next) {
			return "", rest, false
		}
		if !ok {
			return title, "", true
		}
		return title, afterNext, true
	}
}
