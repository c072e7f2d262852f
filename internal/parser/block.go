package parser

import "strings"

// line is one physical source line
type line struct {
	text string
	num  int
}

func splitLines(source string, firstNum int) []line {
	raw := strings.Split(source, "\n")
	lines := make([]line, len(raw))
	for i, r := range raw {
		lines[i] = line{text: stripTrailingComment(strings.TrimRight(r, "\r")), num: firstNum + i}
	}
	return lines
}

// consumeBalanced collects lines starting at start until the bracket depth
// opened on them returns to zero at a line end. A following line that
// continues the construct (an `else` branch or a `.method` chain) extends
// the region. It returns the consumed lines, the index of the first line
// after them, and whether every opened bracket was closed.
func consumeBalanced(lines []line, start int) (region []line, next int, closed bool) {
	depth := 0
	for i := start; i < len(lines); i++ {
		opens, closes := bracketDelta(lines[i].text)
		depth += opens - closes
		if depth > 0 {
			continue
		}
		if i+1 < len(lines) && continuesConstruct(lines[i+1].text) {
			depth = 0
			continue
		}
		return lines[start : i+1], i + 1, true
	}
	return lines[start:], len(lines), depth <= 0
}

// continuesConstruct reports whether a line only makes sense as the
// continuation of the previous construct.
func continuesConstruct(text string) bool {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "else") {
		return len(t) == 4 || !isIdentByte(t[4])
	}
	return strings.HasPrefix(t, ".") && !strings.HasPrefix(t, "..")
}

// region is a multi-line construct joined back into one text
type region struct {
	text string
	num  int
	col  int
}

// collect returns the construct starting at lines[i] and the index after
// it. Headers whose opening brace sits alone on the following line are
// joined with their body.
func (p *Parser) collect(lines []line, i int) (region, int) {
	start := lines[i]
	r := region{num: start.num, col: leadingColumn(start.text)}

	from := i
	if needsBlockOnNextLine(start.text) {
		if j := nextNonBlank(lines, i+1); j > 0 && strings.HasPrefix(strings.TrimSpace(lines[j].text), "{") {
			from = j
		}
	}

	consumed, next, closed := consumeBalanced(lines, from)
	var parts []string
	if from != i {
		parts = append(parts, strings.TrimSpace(start.text))
	}
	for _, l := range consumed {
		parts = append(parts, l.text)
	}
	r.text = strings.TrimSpace(strings.Join(parts, "\n"))
	if !closed {
		p.unclosed(r)
	}
	return r, next
}

func nextNonBlank(lines []line, i int) int {
	for ; i < len(lines); i++ {
		if strings.TrimSpace(lines[i].text) != "" {
			return i
		}
	}
	return -1
}

// needsBlockOnNextLine reports whether a definition header ends without
// its body on the same line.
func needsBlockOnNextLine(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" || strings.HasSuffix(t, ";") || strings.HasSuffix(t, "{") || strings.HasSuffix(t, "}") || strings.HasSuffix(t, ",") {
		return false
	}
	c := Classify(t)
	if c.Decision != Definition {
		return false
	}
	switch c.Marker {
	case FuncMarker, StructMarker, EnumMarker, ImplMarker, TraitMarker, ModMarker,
		LoopMarker, IfMarker, MatchMarker:
		return !strings.Contains(t, "{")
	}
	return false
}

// block is a construct split at its first depth-zero brace pair
type block struct {
	header  string
	body    string
	tail    string
	bodyNum int // line number of the first body line
	found   bool
	closed  bool
}

// splitBlock splits text at its first depth-zero `{` and the matching `}`.
func splitBlock(text string, num int) block {
	dm := depthMap(text)
	open := firstTop(text, dm, '{')
	if open < 0 {
		return block{header: strings.TrimSpace(text)}
	}
	b := block{
		header:  strings.TrimSpace(text[:open]),
		bodyNum: num + strings.Count(text[:open], "\n"),
		found:   true,
	}
	close := matchingClose(text, dm, open)
	if close < 0 {
		b.body = text[open+1:]
		return b
	}
	b.closed = true
	b.body = text[open+1 : close]
	b.tail = strings.TrimSpace(text[close+1:])
	return b
}
