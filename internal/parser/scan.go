package parser

import (
	"strings"
	"unicode/utf8"
)

// protected marks bytes inside strings, chars, comments and closure
// parameter lists in a depth map.
const protected = -1

// depthMap returns, for every byte of s, the bracket nesting depth at that
// byte, or protected when the byte is inside a quoted string, a char
// literal, a comment or a closure parameter list. Opening brackets carry the
// depth outside them, and so do their matching closing brackets. `::<`
// turbofish argument lists nest like brackets.
func depthMap(s string) []int {
	dm := make([]int, len(s))
	var stack []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || (c == 'r' && isRawStringStart(s, i)):
			end := stringEnd(s, i)
			for j := i; j <= end && j < len(s); j++ {
				dm[j] = protected
			}
			i = end
			continue
		case c == '\'':
			if end := charEnd(s, i); end > i {
				for j := i; j <= end; j++ {
					dm[j] = protected
				}
				i = end
				continue
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				end = len(s) - i
			}
			for j := i; j < i+end; j++ {
				dm[j] = protected
			}
			i += end - 1
			continue
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			stop := len(s)
			if end >= 0 {
				stop = i + 2 + end + 2
			}
			for j := i; j < stop; j++ {
				dm[j] = protected
			}
			i = stop - 1
			continue
		case c == '|' && closureStart(s, i):
			end := strings.IndexByte(s[i+1:], '|')
			if end >= 0 {
				for j := i; j <= i+1+end; j++ {
					dm[j] = protected
				}
				i += 1 + end
				continue
			}
		}

		switch c {
		case '(', '[', '{':
			dm[i] = len(stack)
			stack = append(stack, c)
		case '<':
			if strings.HasSuffix(s[:i], "::") || (len(stack) > 0 && stack[len(stack)-1] == '<') {
				dm[i] = len(stack)
				stack = append(stack, c)
			} else {
				dm[i] = len(stack)
			}
		case '>':
			if len(stack) > 0 && stack[len(stack)-1] == '<' && !(i > 0 && s[i-1] == '-') {
				stack = stack[:len(stack)-1]
			}
			dm[i] = len(stack)
		case ')', ']', '}':
			open := openerOf(c)
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top == open {
					break
				}
			}
			dm[i] = len(stack)
		default:
			dm[i] = len(stack)
		}
	}
	return dm
}

func openerOf(c byte) byte {
	switch c {
	case ')':
		return '('
	case ']':
		return '['
	default:
		return '{'
	}
}

func isRawStringStart(s string, i int) bool {
	if i > 0 && isIdentByte(s[i-1]) {
		return false
	}
	j := i + 1
	for j < len(s) && s[j] == '#' {
		j++
	}
	return j < len(s) && s[j] == '"'
}

// stringEnd returns the index of the closing quote of the string literal
// starting at i, or len(s)-1 when it never closes.
func stringEnd(s string, i int) int {
	if s[i] == 'r' {
		hashes := 0
		j := i + 1
		for j < len(s) && s[j] == '#' {
			hashes++
			j++
		}
		closing := "\"" + strings.Repeat("#", hashes)
		end := strings.Index(s[j+1:], closing)
		if end < 0 {
			return len(s) - 1
		}
		return j + 1 + end + len(closing) - 1
	}
	escaped := false
	for j := i + 1; j < len(s); j++ {
		switch {
		case escaped:
			escaped = false
		case s[j] == '\\':
			escaped = true
		case s[j] == '"':
			return j
		}
	}
	return len(s) - 1
}

// charEnd returns the closing quote index of a char literal at i, or -1 when
// the quote starts a lifetime instead.
func charEnd(s string, i int) int {
	if i+2 >= len(s) {
		return -1
	}
	if s[i+1] == '\\' {
		end := strings.IndexByte(s[i+2:], '\'')
		if end < 0 || end > 8 {
			return -1
		}
		return i + 2 + end
	}
	limit := i + 1 + utf8.UTFMax + 1
	if limit > len(s) {
		limit = len(s)
	}
	end := strings.IndexByte(s[i+1:limit], '\'')
	if end <= 0 || utf8.RuneCountInString(s[i+1:i+1+end]) != 1 {
		return -1
	}
	return i + 1 + end
}

// closureStart reports whether the bar at i opens a closure parameter list:
// it sits where an expression may begin and is not the empty list `||`.
func closureStart(s string, i int) bool {
	if i+1 < len(s) && s[i+1] == '|' {
		return false
	}
	prev := strings.TrimRight(s[:i], " \t\n")
	if prev == "" || strings.HasSuffix(prev, "move") {
		return true
	}
	switch prev[len(prev)-1] {
	case '(', ',', '=', '$', '{', '[', ':', '>', ';':
		return true
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isIdent reports whether s is a single identifier.
func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}

// isPath reports whether s is a `::`-separated identifier path.
func isPath(s string) bool {
	for _, seg := range strings.Split(s, "::") {
		if !isIdent(seg) {
			return false
		}
	}
	return true
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

// bracketDelta returns the number of unprotected opening brackets minus
// closing brackets in s.
func bracketDelta(s string) (opens, closes int) {
	dm := depthMap(s)
	for i := 0; i < len(s); i++ {
		if dm[i] == protected {
			continue
		}
		switch s[i] {
		case '(', '[', '{':
			opens++
		case ')', ']', '}':
			closes++
		}
	}
	return opens, closes
}

// matchingClose returns the index of the bracket closing the one at open,
// or -1.
func matchingClose(s string, dm []int, open int) int {
	for j := open + 1; j < len(s); j++ {
		if dm[j] == dm[open] && (s[j] == ')' || s[j] == ']' || s[j] == '}' || (s[open] == '<' && s[j] == '>')) {
			return j
		}
	}
	return -1
}

// matchingOpen returns the index of the bracket opened for the one at close,
// or -1.
func matchingOpen(s string, dm []int, close int) int {
	for j := close - 1; j >= 0; j-- {
		if dm[j] == dm[close] && (s[j] == '(' || s[j] == '[' || s[j] == '{') {
			return j
		}
	}
	return -1
}

// firstTop returns the first index of b at depth zero, or -1.
func firstTop(s string, dm []int, b byte) int {
	for i := 0; i < len(s); i++ {
		if dm[i] == 0 && s[i] == b {
			return i
		}
	}
	return -1
}

// findTopWord returns the first depth-zero index of word delimited by
// spaces, or -1.
func findTopWord(s string, dm []int, word string) int {
	target := " " + word + " "
	for i := 0; i+len(target) <= len(s); i++ {
		if dm[i] != 0 {
			continue
		}
		if s[i:i+len(target)] == target && dm[i+len(target)-1] == 0 {
			return i
		}
	}
	return -1
}

// segment is one piece of a split, with the separator that ended it.
type segment struct {
	text   string
	offset int
	semi   bool
}

// splitTop splits s at depth-zero occurrences of any byte in seps,
// trimming each piece and dropping empty pieces.
func splitTop(s string, seps string) []segment {
	dm := depthMap(s)
	var out []segment
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && (dm[i] != 0 || strings.IndexByte(seps, s[i]) < 0) {
			continue
		}
		piece := s[start:i]
		trimmed := strings.TrimSpace(piece)
		if trimmed != "" {
			lead := len(piece) - len(strings.TrimLeft(piece, " \t\n\r"))
			out = append(out, segment{
				text:   trimmed,
				offset: start + lead,
				semi:   i < len(s) && s[i] == ';',
			})
		}
		start = i + 1
	}
	return out
}

// splitList splits a comma-separated list at depth zero.
func splitList(s string) []string {
	var out []string
	for _, seg := range splitTop(s, ",") {
		out = append(out, seg.text)
	}
	return out
}

// splitTypeList splits a comma-separated list of types or parameters,
// treating angle brackets as nesting.
func splitTypeList(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[', '{':
			depth++
		case '>':
			if i > 0 && s[i-1] == '-' {
				continue
			}
			depth--
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				if piece := strings.TrimSpace(s[start:i]); piece != "" {
					out = append(out, piece)
				}
				start = i + 1
			}
		}
	}
	if piece := strings.TrimSpace(s[start:]); piece != "" {
		out = append(out, piece)
	}
	return out
}

// angleClose returns the index of the `>` closing the `<` at open.
func angleClose(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if i > 0 && s[i-1] == '-' {
				continue
			}
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// stripTrailingComment removes a `//` comment following code on a line.
// Lines that are entirely a comment are returned unchanged.
func stripTrailingComment(text string) string {
	if strings.HasPrefix(strings.TrimSpace(text), "//") {
		return text
	}
	dm := depthMap(text)
	for i := 0; i+1 < len(text); i++ {
		// a protected run that starts with "//" is a comment; strings start with a quote
		if dm[i] == protected && text[i] == '/' && text[i+1] == '/' && (i == 0 || dm[i-1] != protected) {
			return strings.TrimRight(text[:i], " \t")
		}
	}
	return text
}

// leadingColumn returns the 1-based column of the first non-blank byte.
func leadingColumn(text string) int {
	return len(text) - len(strings.TrimLeft(text, " \t")) + 1
}
