package lower

import (
	"strconv"
	"strings"

	"github.com/lhaig/nu/internal/ast"
)

// FormatPiece is a run of literal text or one placeholder of a print or
// format macro string.
type FormatPiece struct {
	Text  string // literal text with `{{` and `}}` already unescaped
	Arg   bool
	Name  string // inline argument name such as {count}
	Index int    // argument position for positional placeholders
	Spec  string // text after the colon with debug markers removed
}

// ParseFormat splits the inside of a format string literal. Backslash
// escapes are left as written.
func ParseFormat(s string) []FormatPiece {
	var pieces []FormatPiece
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			pieces = append(pieces, FormatPiece{Text: text.String()})
			text.Reset()
		}
	}

	next := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			text.WriteByte('{')
			i++
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			text.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				text.WriteString(s[i:])
				i = len(s)
				continue
			}
			flush()
			pieces = append(pieces, placeholder(s[i+1:i+end], &next))
			i += end
		default:
			text.WriteByte(c)
		}
	}
	flush()
	return pieces
}

func placeholder(body string, next *int) FormatPiece {
	name, spec, _ := strings.Cut(body, ":")
	spec = strings.TrimSuffix(spec, "?")
	spec = strings.TrimSuffix(spec, "#")
	p := FormatPiece{Arg: true, Spec: spec}
	switch {
	case name == "":
		p.Index = *next
		*next++
	case isNumber(name):
		p.Index, _ = strconv.Atoi(name)
	default:
		p.Name = name
		p.Index = -1
	}
	return p
}

func isNumber(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// FormatCall is a print or format macro split into its template and the
// expression each placeholder refers to.
type FormatCall struct {
	Pieces []FormatPiece
	Args   []ast.Expr // parallel to the Arg pieces
}

// SplitFormat reads the leading string literal of a macro argument list.
// It reports false when the first argument is not a string literal.
func SplitFormat(args []ast.Expr) (*FormatCall, bool) {
	if len(args) == 0 {
		return &FormatCall{}, true
	}
	lit, ok := args[0].(*ast.Literal)
	if !ok || lit.Kind != ast.StringLit || !strings.HasPrefix(lit.Value, `"`) {
		return nil, false
	}
	rest := args[1:]
	call := &FormatCall{Pieces: ParseFormat(lit.Value[1 : len(lit.Value)-1])}
	for _, p := range call.Pieces {
		if !p.Arg {
			continue
		}
		switch {
		case p.Name != "":
			call.Args = append(call.Args, &ast.Ident{Name: p.Name})
		case p.Index < len(rest):
			call.Args = append(call.Args, rest[p.Index])
		default:
			call.Args = append(call.Args, &ast.RawExpr{Text: "/* missing argument */"})
		}
	}
	return call, true
}
