package tsbe

import (
	"strings"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/typemap"
)

// tsType spells a written type in TypeScript. Ownership wrappers collapse
// to their argument and Option becomes a nullable union.
func (g *generator) tsType(t ast.Type) string {
	switch n := t.(type) {
	case nil:
		return "unknown"
	case *ast.NamedType:
		name := g.tracker.ResolveSelf(n.Name)
		switch name {
		case "()":
			return "void"
		case "_":
			return "any"
		}
		spelled, _ := typemap.Lookup(typemap.TypeScript, name)
		return spelled
	case *ast.GenericType:
		return g.genericType(n)
	case *ast.TupleType:
		if len(n.Elems) == 0 {
			return "void"
		}
		return "[" + strings.Join(g.tsTypes(n.Elems), ", ") + "]"
	case *ast.FunctionType:
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = "a" + string(rune('0'+i%10)) + ": " + g.tsType(p)
		}
		ret := "void"
		if n.Return != nil {
			ret = g.tsType(n.Return)
		}
		return "(" + strings.Join(params, ", ") + ") => " + ret
	case *ast.ReferenceType:
		return g.tsType(n.Inner)
	case *ast.ArrayType:
		return "Array<" + g.tsType(n.Elem) + ">"
	}
	return "unknown"
}

func (g *generator) tsTypes(ts []ast.Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = g.tsType(t)
	}
	return out
}

func (g *generator) genericType(n *ast.GenericType) string {
	base := typemap.Canonical(g.tracker.ResolveSelf(n.Base))
	args := g.tsTypes(n.Args)
	if typemap.IsTransparent(typemap.TypeScript, base) && len(args) == 1 {
		return args[0]
	}
	switch base {
	case "Option":
		if len(args) == 1 {
			return args[0] + " | null"
		}
	case "Result":
		if len(args) == 1 {
			args = append(args, "string")
		}
	}
	spelled, _ := typemap.Lookup(typemap.TypeScript, base)
	return spelled + "<" + strings.Join(args, ", ") + ">"
}

// returnsOption reports whether the current function returns an Option.
func (g *generator) returnsOption() bool {
	gt, ok := g.fnReturn.(*ast.GenericType)
	return ok && typemap.Canonical(gt.Base) == "Option"
}

var tsKeywords = map[string]bool{
	"new": true, "delete": true, "class": true, "function": true, "var": true, "const": true,
	"let": true, "this": true, "typeof": true, "instanceof": true, "void": true, "with": true,
	"yield": true, "default": true, "switch": true, "case": true, "catch": true, "finally": true,
	"throw": true, "try": true, "debugger": true, "export": true, "import": true, "extends": true,
	"super": true, "null": true, "undefined": true, "interface": true, "package": true,
	"private": true, "protected": true, "public": true, "enum": true, "arguments": true, "eval": true,
}

// ident renames identifiers that are reserved in TypeScript.
func ident(name string) string {
	if tsKeywords[name] {
		return name + "_"
	}
	return name
}
