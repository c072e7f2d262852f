// Package cppbe lowers the canonical AST to the C++ backend AST and renders
// it with the cppast printer.
package cppbe

import (
	_ "embed"
	"strconv"
	"strings"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/cppast"
	"github.com/lhaig/nu/internal/lower"
	"github.com/lhaig/nu/internal/scope"
	"github.com/lhaig/nu/internal/sourcemap"
)

//go:embed nu_core.hpp
var supportHeader string

// SupportHeaderName is the include path used when the support header is
// shared instead of inlined.
const SupportHeaderName = "nu_core.hpp"

// SupportHeader returns the text of the support header.
func SupportHeader() string { return supportHeader }

// Options controls dialect-dependent spelling
type Options struct {
	Cpp23         bool // std::expected and std::println instead of nu::Result and streams
	ImportSupport bool // include nu_core.hpp instead of inlining it
	Strict        bool // emit passthrough text as comments only
	NoFormat      bool // lower print macros to stream insertion
	LineMarks     bool // mark declarations and statements with their source line
}

// Generate produces C++ source text for file.
func Generate(file *ast.File, opts Options) string {
	return cppast.Print(Lower(file, opts))
}

// GenerateMapped is Generate plus the output line of each marked declaration
// and statement.
func GenerateMapped(file *ast.File, opts Options) (string, []sourcemap.Mapping) {
	opts.LineMarks = true
	return cppast.PrintMapped(Lower(file, opts))
}

// Lower builds the translation unit for file.
func Lower(file *ast.File, opts Options) *cppast.TranslationUnit {
	g := newGenerator(file, opts)
	unit := &cppast.TranslationUnit{Includes: cppast.StandardIncludes(opts.Cpp23)}
	unit.Includes = append(unit.Includes,
		&cppast.Include{Path: "cmath", System: true},
		&cppast.Include{Path: "cassert", System: true},
		&cppast.Include{Path: "tuple", System: true},
		&cppast.Include{Path: "array", System: true},
		&cppast.Include{Path: "limits", System: true},
	)
	if !opts.Cpp23 {
		unit.Includes = append(unit.Includes, &cppast.Include{Path: "format", System: true})
	}
	if opts.ImportSupport {
		unit.Includes = append(unit.Includes, &cppast.Include{Path: SupportHeaderName})
	} else {
		unit.Preamble = supportHeader
	}
	unit.Items = g.items(file.Items)
	return unit
}

type generator struct {
	opts    Options
	planner *lower.Planner
	enums   *lower.EnumIndex
	tracker *scope.Tracker

	structs map[string]*ast.StructDef
	traits  map[string]*ast.TraitDef
	impls   map[string][]*ast.ImplDef

	// per-function state
	fnReturn ast.Type
	inMain   bool
	selfVar  string // receiver name for free functions standing in for enum methods
	subst    map[string]cppast.Expr
	notes    []string
	temps    int
	locals   map[string]ast.Type    // declared types of params and typed lets
	matched  map[string]matchedEnum // match temporary -> generic enum it holds
	hoisted  []cppast.Item
	inits    int // static initializers emitted so far
}

func newGenerator(file *ast.File, opts Options) *generator {
	enums := lower.NewEnumIndex(file.Items)
	tracker := scope.New()
	g := &generator{
		opts:    opts,
		enums:   enums,
		tracker: tracker,
		planner: lower.NewPlanner(enums, tracker),
		structs: make(map[string]*ast.StructDef),
		traits:  make(map[string]*ast.TraitDef),
		impls:   make(map[string][]*ast.ImplDef),
	}
	g.index(file.Items)
	return g
}

func (g *generator) index(items []ast.Item) {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.StructDef:
			g.structs[it.Name] = it
		case *ast.TraitDef:
			g.traits[it.Name] = it
		case *ast.ImplDef:
			g.impls[it.Target] = append(g.impls[it.Target], it)
		case *ast.ModDecl:
			g.index(it.Items)
		}
	}
}

// note queues an annotation comment for the statement being lowered.
func (g *generator) note(text string) {
	g.notes = append(g.notes, text)
}

func (g *generator) temp(prefix string) string {
	name := prefix + strconv.Itoa(g.temps)
	g.temps++
	return name
}

// --- Items ---

func (g *generator) items(items []ast.Item) []cppast.Item {
	var out []cppast.Item
	for _, item := range items {
		g.tracker.Reset()
		lowered := g.item(item)
		if g.opts.LineMarks && len(lowered) > 0 {
			line, _ := item.Pos()
			out = append(out, &cppast.Mark{Line: line})
		}
		out = append(out, g.hoisted...)
		g.hoisted = nil
		out = append(out, lowered...)
	}
	return out
}

func (g *generator) item(item ast.Item) []cppast.Item {
	switch it := item.(type) {
	case *ast.UseDecl:
		return []cppast.Item{&cppast.CommentItem{Text: "use " + it.Path}}
	case *ast.FunctionDef:
		return []cppast.Item{g.function(it)}
	case *ast.StructDef:
		return []cppast.Item{g.structDef(it)}
	case *ast.EnumDef:
		return g.enumDef(it)
	case *ast.ImplDef:
		if _, merged := g.structs[it.Target]; merged {
			return nil
		}
		if _, isEnum := g.enums.Lookup(it.Target); isEnum {
			return nil
		}
		return g.detachedImpl(it)
	case *ast.TraitDef:
		return []cppast.Item{g.traitDef(it)}
	case *ast.ModDecl:
		if !it.Inline {
			return []cppast.Item{&cppast.Include{Path: it.Name + ".hpp"}}
		}
		return []cppast.Item{&cppast.Namespace{Name: ident(it.Name), Items: g.items(it.Items)}}
	case *ast.TypeAlias:
		return []cppast.Item{&cppast.TypeAlias{Name: it.Name, Template: genericNames(it.Generics), Target: g.cppType(it.Type)}}
	case *ast.ConstDecl:
		return []cppast.Item{g.constDecl(it)}
	case *ast.StmtItem:
		return g.topLevelStmt(it)
	case *ast.CommentItem:
		return []cppast.Item{&cppast.CommentItem{Text: it.Text}}
	case *ast.RawItem:
		if g.opts.Strict {
			return []cppast.Item{&cppast.CommentItem{Text: "unsupported: " + it.Text}}
		}
		return []cppast.Item{
			&cppast.CommentItem{Text: "passthrough: unrecognized construct"},
			&cppast.RawItem{Text: it.Text},
		}
	}
	return nil
}

func genericNames(params []*ast.GenericParam) []string {
	var names []string
	for _, p := range params {
		if strings.HasPrefix(p.Name, "'") {
			continue
		}
		names = append(names, p.Name)
	}
	return names
}

func (g *generator) constDecl(c *ast.ConstDecl) cppast.Item {
	v := &cppast.GlobalVar{Name: c.Name, Type: g.cppType(c.Type), Static: c.IsStatic}
	if c.Type == nil {
		v.Type = &cppast.Auto{}
	}
	v.Init = g.expr(c.Value)
	switch v.Type.(type) {
	case *cppast.Primitive, *cppast.Auto:
		v.Constexpr = true
	case *cppast.Named:
		v.Constexpr = cppast.TypeString(v.Type) == "std::string_view"
		v.Const = !v.Constexpr
	default:
		v.Const = true
	}
	return v
}

func (g *generator) topLevelStmt(it *ast.StmtItem) []cppast.Item {
	if let, ok := it.Stmt.(*ast.LetStmt); ok && let.Value != nil && !strings.HasPrefix(let.Name, "(") {
		v := &cppast.GlobalVar{Name: ident(let.Name), Type: g.letType(let), Init: g.expr(let.Value), Const: !let.IsMut}
		return []cppast.Item{v}
	}
	// Other statements run once during static initialization.
	body := append(g.stmt(it.Stmt), &cppast.Return{Value: &cppast.Literal{Text: "true"}})
	g.inits++
	return []cppast.Item{&cppast.GlobalVar{
		Name:   "_init" + strconv.Itoa(g.inits),
		Type:   &cppast.Primitive{Name: "bool"},
		Init:   &cppast.Call{Callee: &cppast.Lambda{Body: body}},
		Const:  true,
		Static: true,
	}}
}

// --- Functions ---

func (g *generator) function(fn *ast.FunctionDef) *cppast.Function {
	g.fnReturn = fn.ReturnType
	g.inMain = fn.Name == "main" && fn.Owner == ""
	g.planner.Reset()
	g.temps = 0
	g.locals = make(map[string]ast.Type)
	g.matched = make(map[string]matchedEnum)
	for _, p := range fn.Params {
		if p.Type != nil {
			g.locals[p.Name] = p.Type
		}
	}
	defer func() {
		g.fnReturn = nil
		g.inMain = false
		g.locals = nil
		g.matched = nil
	}()

	out := &cppast.Function{
		Name:     ident(fn.Name),
		Template: genericNames(fn.Generics),
		Params:   g.params(fn.Params),
		Return:   g.returnType(fn.ReturnType),
	}
	if g.inMain {
		out.Return = &cppast.Primitive{Name: "int"}
	}
	out.Body = g.body(fn)
	if fn.IsAsync {
		out.Body = append([]cppast.Stmt{&cppast.Comment{Text: "async function lowered as synchronous"}}, out.Body...)
	}
	return out
}

func (g *generator) params(params []*ast.Param) []*cppast.Param {
	var out []*cppast.Param
	for _, p := range params {
		if p.Self != ast.NotSelf {
			continue
		}
		var t cppast.Type = &cppast.Auto{}
		if p.Type != nil {
			t = g.cppType(p.Type)
		}
		out = append(out, &cppast.Param{Name: ident(p.Name), Type: t})
	}
	return out
}

func (g *generator) returnType(t ast.Type) cppast.Type {
	if t == nil {
		return &cppast.Void{}
	}
	return g.cppType(t)
}

// body lowers a function body. The trailing expression becomes the return
// value unless the function returns nothing.
func (g *generator) body(fn *ast.FunctionDef) []cppast.Stmt {
	if fn.Body == nil {
		return nil
	}
	want := lower.Return
	if fn.ReturnType == nil || isUnit(fn.ReturnType) {
		want = lower.Void
	}
	stmts := g.blockInto(fn.Body, want, "")
	if g.inMain && !endsInReturn(stmts) {
		stmts = append(stmts, &cppast.Return{Value: &cppast.Literal{Text: "0"}})
	}
	return stmts
}

func isUnit(t ast.Type) bool {
	n, ok := t.(*ast.NamedType)
	return ok && n.Name == "()"
}

func endsInReturn(stmts []cppast.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	_, ok := stmts[len(stmts)-1].(*cppast.Return)
	return ok
}

// --- Structs, impls and traits ---

func (g *generator) structDef(s *ast.StructDef) *cppast.Class {
	cls := &cppast.Class{
		Name:     s.Name,
		Struct:   true,
		Template: genericNames(s.Generics),
		Derives:  s.Derives,
	}
	for _, f := range s.Fields {
		cls.Fields = append(cls.Fields, &cppast.Field{Name: ident(f.Name), Type: g.cppType(f.Type), Visibility: cppast.Public})
	}

	g.tracker.Enter(s.Name, cppast.Public)
	defer g.tracker.Leave()
	for _, impl := range g.impls[s.Name] {
		override := false
		if impl.Trait != "" {
			if _, local := g.traits[impl.Trait]; local {
				cls.Bases = append(cls.Bases, cppast.Base{Name: impl.Trait, Visibility: cppast.Public})
				override = true
			}
		}
		for _, m := range impl.Methods {
			method := g.method(m)
			method.Override = override
			cls.Methods = append(cls.Methods, method)
		}
		for _, other := range impl.Other {
			cls.Nested = append(cls.Nested, g.item(other)...)
		}
	}
	return cls
}

func (g *generator) method(m *ast.FunctionDef) *cppast.Function {
	fn := g.function(m)
	fn.Visibility = cppast.Public
	recv := m.Receiver()
	switch {
	case recv == nil:
		fn.Static = true
	case recv.Self == ast.SelfRef:
		fn.Const = true
	}
	return fn
}

func (g *generator) traitDef(t *ast.TraitDef) *cppast.Class {
	cls := &cppast.Class{Name: t.Name, Template: genericNames(t.Generics)}
	g.tracker.Enter(t.Name, cppast.Private)
	defer g.tracker.Leave()

	cls.Methods = append(cls.Methods, &cppast.Function{
		Name: "~" + t.Name, Virtual: true, Defaulted: true, Visibility: cppast.Public,
	})
	for _, m := range t.Methods {
		fn := g.method(m)
		if fn.Static {
			fn.Body = []cppast.Stmt{&cppast.Comment{Text: "associated function without receiver cannot be virtual"}}
			cls.Methods = append(cls.Methods, fn)
			continue
		}
		fn.Virtual = true
		if m.Abstract || m.Body == nil {
			fn.Abstract = true
			fn.Body = nil
		}
		cls.Methods = append(cls.Methods, fn)
	}
	return cls
}

// detachedImpl lowers an impl whose target is not a local struct. Methods
// become free functions in a namespace named after the target, taking the
// receiver as an explicit `self` parameter.
func (g *generator) detachedImpl(impl *ast.ImplDef) []cppast.Item {
	ns := &cppast.Namespace{Name: impl.Target + "_impl"}
	g.tracker.Enter(impl.Target, cppast.Public)
	defer g.tracker.Leave()

	for _, m := range impl.Methods {
		g.selfVar = ""
		recv := m.Receiver()
		if recv != nil {
			g.selfVar = "self"
		}
		fn := g.function(m)
		fn.Template = append(genericNames(impl.Generics), fn.Template...)
		if recv != nil {
			var self cppast.Type = &cppast.Named{Name: impl.Target}
			switch recv.Self {
			case ast.SelfRef:
				self = &cppast.Reference{Inner: self, Const: true}
			case ast.SelfMutRef:
				self = &cppast.Reference{Inner: self}
			}
			fn.Params = append([]*cppast.Param{{Name: "self", Type: self}}, fn.Params...)
		}
		ns.Items = append(ns.Items, fn)
		g.selfVar = ""
	}
	items := []cppast.Item{}
	if impl.Trait != "" {
		items = append(items, &cppast.CommentItem{Text: "impl " + impl.Trait + " for " + impl.Target})
	}
	return append(items, ns)
}

// --- Enums ---

// enumDef lowers a unit-only enum to an enum class, and a payload enum to
// one struct per variant plus a std::variant alias.
func (g *generator) enumDef(e *ast.EnumDef) []cppast.Item {
	plan := lower.PlanEnum(e)
	if plan.Native {
		out := &cppast.Enum{Name: e.Name, Class: true}
		for _, v := range plan.Variants {
			out.Values = append(out.Values, cppast.EnumValue{Name: v.Name, Value: v.Discriminant})
		}
		items := []cppast.Item{out}
		return append(items, g.enumMethods(e)...)
	}

	template := genericNames(e.Generics)
	var items []cppast.Item
	var alts []cppast.Type
	for _, v := range plan.Variants {
		cls := &cppast.Class{Name: v.Name, Struct: true, Template: template, Derives: e.Derives}
		for _, f := range v.Fields {
			cls.Fields = append(cls.Fields, &cppast.Field{Name: ident(f.Name), Type: g.cppType(f.Type), Visibility: cppast.Public})
		}
		items = append(items, cls)
		alts = append(alts, g.templateRef(v.Name, template))
	}
	items = append(items, &cppast.TypeAlias{
		Name:     e.Name,
		Template: template,
		Target:   &cppast.Template{Base: "std::variant", Args: alts},
	})
	return append(items, g.enumMethods(e)...)
}

func (g *generator) templateRef(name string, params []string) cppast.Type {
	if len(params) == 0 {
		return &cppast.Named{Name: name}
	}
	args := make([]cppast.Type, len(params))
	for i, p := range params {
		args[i] = &cppast.Named{Name: p}
	}
	return &cppast.Template{Base: name, Args: args}
}

func (g *generator) enumMethods(e *ast.EnumDef) []cppast.Item {
	var out []cppast.Item
	for _, impl := range g.impls[e.Name] {
		out = append(out, g.detachedImpl(impl)...)
	}
	return out
}
