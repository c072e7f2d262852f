package parser

import (
	"fmt"
	"strings"

	"github.com/lhaig/nu/internal/diagnostic"
)

// UnclosedBlockError reports a multi-line construct whose brackets never
// close before the end of input. The construct is still parsed as far as it
// goes.
type UnclosedBlockError struct {
	Line      int
	Column    int
	Construct string
}

func (e *UnclosedBlockError) Error() string {
	return fmt.Sprintf("%d:%d: %s block is never closed", e.Line, e.Column, e.Construct)
}

// unclosed records an unclosed region. Only the first one becomes the
// parser's error value; every one gets a diagnostic.
func (p *Parser) unclosed(r region) {
	if p.reported[r.num] {
		return
	}
	p.reported[r.num] = true
	construct := Classify(r.text).Marker
	name := "statement"
	if construct != NoMarker {
		name = construct.String()
	}
	p.diags.Add(diagnostic.Diagnostic{
		Severity: diagnostic.Error,
		Message:  fmt.Sprintf("%s block is never closed", name),
		Line:     r.num,
		Column:   r.col,
		Snippet:  firstLine(r.text),
		Hint:     "add the missing closing bracket",
	})
	if p.err == nil {
		p.err = &UnclosedBlockError{Line: r.num, Column: r.col, Construct: name}
	}
}

// passthrough records a construct kept verbatim.
func (p *Parser) passthrough(line, col int, kind, text string) {
	p.diags.Passthrough(line, col, kind, firstLine(text))
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i] + " ..."
	}
	return text
}
