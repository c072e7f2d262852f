package parser

import (
	"strings"

	"github.com/lhaig/nu/internal/ast"
)

// ParseType parses a written type. Abbreviations such as `V` and `HM` are
// kept as written; backends expand them.
func ParseType(text string) ast.Type {
	s := strings.TrimSpace(text)
	switch {
	case s == "" || s == "()":
		return &ast.NamedType{Name: "()"}

	case strings.HasPrefix(s, "&!"):
		return &ast.ReferenceType{IsMut: true, Inner: ParseType(s[2:])}

	case strings.HasPrefix(s, "&"):
		rest := strings.TrimSpace(s[1:])
		if strings.HasPrefix(rest, "'") {
			_, rest, _ = strings.Cut(rest, " ")
		}
		if strings.HasPrefix(rest, "mut ") {
			return &ast.ReferenceType{IsMut: true, Inner: ParseType(rest[4:])}
		}
		return &ast.ReferenceType{Inner: ParseType(rest)}

	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		inner := strings.TrimSpace(s[1 : len(s)-1])
		elems := splitTypeList(inner)
		if len(elems) == 1 && !strings.HasSuffix(inner, ",") {
			return ParseType(elems[0])
		}
		tt := &ast.TupleType{}
		for _, e := range elems {
			tt.Elems = append(tt.Elems, ParseType(e))
		}
		return tt

	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		inner := s[1 : len(s)-1]
		if semi := firstTop(inner, depthMap(inner), ';'); semi >= 0 {
			return &ast.ArrayType{Elem: ParseType(inner[:semi]), Len: strings.TrimSpace(inner[semi+1:])}
		}
		return &ast.ArrayType{Elem: ParseType(inner)}

	case strings.HasPrefix(s, "dyn ") || strings.HasPrefix(s, "impl "):
		_, inner, _ := strings.Cut(s, " ")
		inner = firstBound(inner)
		if ft, ok := functionType(inner); ok {
			return ft
		}
		return &ast.NamedType{Name: strings.Fields(s)[0] + " " + inner}
	}

	if ft, ok := functionType(s); ok {
		return ft
	}

	if open := strings.IndexByte(s, '<'); open > 0 && strings.HasSuffix(s, ">") && angleClose(s, open) == len(s)-1 {
		gt := &ast.GenericType{Base: strings.TrimSpace(s[:open])}
		for _, arg := range splitTypeList(s[open+1 : len(s)-1]) {
			if strings.HasPrefix(arg, "'") {
				continue
			}
			gt.Args = append(gt.Args, ParseType(arg))
		}
		if len(gt.Args) == 0 {
			return &ast.NamedType{Name: gt.Base}
		}
		return gt
	}
	return &ast.NamedType{Name: s}
}

// firstBound keeps the first bound of `A + B + 'a`.
func firstBound(s string) string {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			if s[i] == '>' && i > 0 && s[i-1] == '-' {
				continue
			}
			depth--
		case '+':
			if depth == 0 {
				return strings.TrimSpace(s[:i])
			}
		}
	}
	return strings.TrimSpace(s)
}

// functionType reads `fn(A, B) -> R` and the `Fn`, `FnMut` and `FnOnce`
// trait spellings.
func functionType(s string) (*ast.FunctionType, bool) {
	var rest string
	for _, kw := range []string{"fn", "FnOnce", "FnMut", "Fn"} {
		if strings.HasPrefix(s, kw+"(") {
			rest = s[len(kw):]
			break
		}
	}
	if rest == "" {
		return nil, false
	}
	end := matchingClose(rest, depthMap(rest), 0)
	if end < 0 {
		return nil, false
	}
	ft := &ast.FunctionType{}
	for _, p := range splitTypeList(rest[1:end]) {
		ft.Params = append(ft.Params, ParseType(p))
	}
	tail := strings.TrimSpace(rest[end+1:])
	if strings.HasPrefix(tail, "->") {
		ret := ParseType(tail[2:])
		if n, ok := ret.(*ast.NamedType); !ok || n.Name != "()" {
			ft.Return = ret
		}
	}
	return ft, true
}
