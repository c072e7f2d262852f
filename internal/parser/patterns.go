package parser

import (
	"strings"

	"github.com/lhaig/nu/internal/ast"
)

// ParsePattern parses the pattern of a match arm. Shapes the lowering does
// not model (tuples, ranges, nested payloads, variant alternation) become a
// RawPattern.
func ParsePattern(text string) ast.Pattern {
	s := strings.TrimSpace(text)
	switch s {
	case "_":
		return &ast.WildcardPattern{}
	case "None":
		return &ast.OptionNonePattern{}
	case "":
		return &ast.RawPattern{Text: s}
	}

	if alts := splitTop(s, "|"); len(alts) > 1 {
		lp := &ast.LiteralPattern{}
		for _, alt := range alts {
			lit, ok := literalPatternValue(alt.text)
			if !ok {
				return &ast.RawPattern{Text: s}
			}
			lp.Values = append(lp.Values, lit)
		}
		return lp
	}

	if lit, ok := literalPatternValue(s); ok {
		return &ast.LiteralPattern{Values: []*ast.Literal{lit}}
	}

	if strings.HasSuffix(s, ")") {
		return tuplePattern(s)
	}
	if strings.HasSuffix(s, "}") {
		return recordPattern(s)
	}

	if segs := splitPath(s); len(segs) > 0 && isUpper(segs[len(segs)-1][0]) {
		return &ast.EnumVariantPattern{Path: segs}
	}
	if name := stripBindingMode(s); isIdent(name) {
		return &ast.IdentPattern{Name: name}
	}
	return &ast.RawPattern{Text: s}
}

// tuplePattern reads `Ok(v)`, `Some(_)` and `Path::Variant(a, b)`.
func tuplePattern(s string) ast.Pattern {
	open := strings.IndexByte(s, '(')
	if open <= 0 || matchingClose(s, depthMap(s), open) != len(s)-1 {
		return &ast.RawPattern{Text: s}
	}
	head := strings.TrimSpace(s[:open])
	var bindings []string
	for _, b := range splitList(s[open+1 : len(s)-1]) {
		name := stripBindingMode(b)
		if !isIdent(name) {
			return &ast.RawPattern{Text: s}
		}
		bindings = append(bindings, name)
	}

	switch head {
	case "Ok", "Err", "Some":
		if len(bindings) != 1 {
			return &ast.RawPattern{Text: s}
		}
		switch head {
		case "Ok":
			return &ast.ResultOkPattern{Binding: bindings[0]}
		case "Err":
			return &ast.ResultErrPattern{Binding: bindings[0]}
		default:
			return &ast.OptionSomePattern{Binding: bindings[0]}
		}
	}

	segs := splitPath(head)
	if len(segs) == 0 || !isUpper(segs[len(segs)-1][0]) {
		return &ast.RawPattern{Text: s}
	}
	return &ast.EnumVariantPattern{Path: segs, Bindings: bindings}
}

// recordPattern reads `Variant { x, y: alias, .. }`.
func recordPattern(s string) ast.Pattern {
	open := strings.IndexByte(s, '{')
	if open <= 0 {
		return &ast.RawPattern{Text: s}
	}
	segs := splitPath(strings.TrimSpace(s[:open]))
	if len(segs) == 0 || !isUpper(segs[len(segs)-1][0]) {
		return &ast.RawPattern{Text: s}
	}
	pat := &ast.EnumVariantPattern{Path: segs, Record: true}
	for _, f := range splitList(s[open+1 : len(s)-1]) {
		if f == ".." {
			continue
		}
		field, binding, ok := splitColon(f)
		if !ok {
			binding = field
		}
		field, binding = stripBindingMode(field), stripBindingMode(binding)
		if !isIdent(field) || !isIdent(binding) {
			return &ast.RawPattern{Text: s}
		}
		pat.Fields = append(pat.Fields, field)
		pat.Bindings = append(pat.Bindings, binding)
	}
	return pat
}

func stripBindingMode(s string) string {
	t := strings.TrimSpace(s)
	for _, mode := range []string{"ref mut ", "ref ", "mut "} {
		t = strings.TrimPrefix(t, mode)
	}
	return t
}

func literalPatternValue(text string) (*ast.Literal, bool) {
	t := strings.TrimSpace(text)
	negative := strings.HasPrefix(t, "-")
	if negative {
		t = strings.TrimSpace(t[1:])
	}
	if t == "" || t == "()" {
		return nil, false
	}
	lit, ok := literalOf(t)
	if !ok {
		return nil, false
	}
	if negative {
		if lit.Kind != ast.IntLit && lit.Kind != ast.FloatLit {
			return nil, false
		}
		lit.Value = "-" + lit.Value
	}
	return lit, true
}
