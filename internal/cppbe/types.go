package cppbe

import (
	"strings"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/cppast"
	"github.com/lhaig/nu/internal/typemap"
)

// cppType maps a written type through the C++ spelling table. Template
// arguments stay structured so the printer can space nested closers.
func (g *generator) cppType(t ast.Type) cppast.Type {
	switch n := t.(type) {
	case nil:
		return &cppast.Auto{}
	case *ast.NamedType:
		return g.namedType(n.Name)
	case *ast.GenericType:
		return g.genericType(n)
	case *ast.TupleType:
		if len(n.Elems) == 0 {
			return &cppast.Void{}
		}
		return &cppast.Template{Base: "std::tuple", Args: g.cppTypes(n.Elems)}
	case *ast.FunctionType:
		ret := "void"
		if n.Return != nil {
			ret = cppast.TypeString(g.cppType(n.Return))
		}
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = cppast.TypeString(g.cppType(p))
		}
		sig := &cppast.RawType{Text: ret + "(" + strings.Join(params, ", ") + ")"}
		return &cppast.Template{Base: "std::function", Args: []cppast.Type{sig}}
	case *ast.ReferenceType:
		return g.referenceType(n)
	case *ast.ArrayType:
		if n.Len == "" {
			return &cppast.Template{Base: "std::vector", Args: []cppast.Type{g.cppType(n.Elem)}}
		}
		return &cppast.Template{Base: "std::array", Args: []cppast.Type{g.cppType(n.Elem), &cppast.RawType{Text: n.Len}}}
	}
	return &cppast.RawType{Text: t.String()}
}

func (g *generator) cppTypes(ts []ast.Type) []cppast.Type {
	out := make([]cppast.Type, len(ts))
	for i, t := range ts {
		out[i] = g.cppType(t)
	}
	return out
}

func (g *generator) namedType(name string) cppast.Type {
	name = g.tracker.ResolveSelf(name)
	switch name {
	case "()":
		return &cppast.Void{}
	case "_":
		return &cppast.Auto{}
	}
	spelled, known := typemap.Lookup(typemap.Cpp, name)
	if known && typemap.IsPrimitive(typemap.Canonical(name)) {
		return &cppast.Primitive{Name: spelled}
	}
	return &cppast.Named{Name: spelled}
}

func (g *generator) genericType(n *ast.GenericType) cppast.Type {
	base := typemap.Canonical(g.tracker.ResolveSelf(n.Base))
	args := g.cppTypes(n.Args)
	switch base {
	case "Result":
		if len(args) == 1 {
			args = append(args, &cppast.Named{Name: "std::string"})
		}
		return &cppast.Template{Base: g.resultTemplate(), Args: args}
	}
	spelled, _ := typemap.Lookup(typemap.Cpp, base)
	return &cppast.Template{Base: spelled, Args: args}
}

func (g *generator) resultTemplate() string {
	if g.opts.Cpp23 {
		return "std::expected"
	}
	return "nu::Result"
}

func (g *generator) unexpected() string {
	if g.opts.Cpp23 {
		return "std::unexpected"
	}
	return "nu::unexpected"
}

// referenceType lowers `&T` to `const T&` and `&mut T` to `T&`. Borrowed
// strings become string views.
func (g *generator) referenceType(r *ast.ReferenceType) cppast.Type {
	if named, ok := r.Inner.(*ast.NamedType); ok && named.Name == "str" && !r.IsMut {
		return &cppast.Named{Name: "std::string_view"}
	}
	return &cppast.Reference{Inner: g.cppType(r.Inner), Const: !r.IsMut}
}

// letType returns the declared type of a local, or auto. Untyped string
// literals are held as std::string.
func (g *generator) letType(l *ast.LetStmt) cppast.Type {
	if l.Type != nil {
		return g.cppType(l.Type)
	}
	if lit, ok := l.Value.(*ast.Literal); ok && lit.Kind == ast.StringLit {
		return &cppast.Named{Name: "std::string"}
	}
	return &cppast.Auto{}
}

// returnsOption reports whether the current function returns an Option, so
// early returns from a failed try produce std::nullopt.
func (g *generator) returnsOption() bool {
	gt, ok := g.fnReturn.(*ast.GenericType)
	return ok && typemap.Canonical(gt.Base) == "Option"
}

var cppKeywords = map[string]bool{
	"new": true, "delete": true, "class": true, "template": true, "typename": true,
	"namespace": true, "operator": true, "private": true, "public": true, "protected": true,
	"this": true, "default": true, "register": true, "union": true, "friend": true,
	"virtual": true, "explicit": true, "int": true, "char": true, "double": true,
	"float": true, "long": true, "short": true, "signed": true, "unsigned": true,
	"auto": true, "sizeof": true, "switch": true, "case": true, "goto": true, "volatile": true,
	"inline": true, "export": true, "typeid": true, "throw": true, "try": true, "catch": true,
	"and": true, "or": true, "not": true, "xor": true, "bool": true, "void": true,
}

// ident renames identifiers that are reserved in C++.
func ident(name string) string {
	if cppKeywords[name] {
		return name + "_"
	}
	return name
}
