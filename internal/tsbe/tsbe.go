// Package tsbe emits TypeScript from the canonical AST.
package tsbe

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/lower"
	"github.com/lhaig/nu/internal/scope"
	"github.com/lhaig/nu/internal/sourcemap"
)

//go:embed nu_runtime.ts
var runtime string

// Runtime returns the text of the support runtime module.
func Runtime() string { return runtime }

// RuntimeFile is the file name the runtime is written to in import mode.
const RuntimeFile = "nu_runtime.ts"

// Options controls dialect-dependent output
type Options struct {
	Dialect       string // node, browser or deno
	ImportRuntime bool   // import nu_runtime instead of inlining it
	Strict        bool   // emit passthrough text as comments only
	NoFormat      bool   // lower print macros to template literals
}

// RuntimePath returns the module specifier of the runtime for dialect.
func RuntimePath(dialect string) string {
	return "./nu_runtime" + moduleSuffix(dialect)
}

func moduleSuffix(dialect string) string {
	switch dialect {
	case "browser":
		return ".js"
	case "deno":
		return ".ts"
	}
	return ""
}

// Generate produces TypeScript source for file.
func Generate(file *ast.File, opts Options) string {
	return render(file, opts, false)
}

// GenerateMapped is Generate plus the output line of each item and statement.
func GenerateMapped(file *ast.File, opts Options) (string, []sourcemap.Mapping) {
	return sourcemap.Extract(render(file, opts, true))
}

func render(file *ast.File, opts Options, marking bool) string {
	g := newGenerator(file, opts)
	g.marking = marking

	g.emitLine("// Generated TypeScript code from nu")
	g.emitLine("")
	if opts.ImportRuntime {
		g.emitLinef("import { $ok, $err, $panic, $unwrap, $unwrapOr, $isOk, $get, $contains, $range, $repeat, $clone, $fmt, type Result, type Option } from '%s';", RuntimePath(opts.Dialect))
	} else {
		g.emit(strings.TrimRight(runtime, "\n") + "\n")
	}
	g.emitLine("")

	g.items(file.Items)

	if g.hasMain {
		g.emitLine("// Entry point invocation")
		g.emitLine("main();")
	}
	return strings.TrimRight(g.sb.String(), "\n") + "\n"
}

type generator struct {
	sb      *strings.Builder
	indent  int
	opts    Options
	planner *lower.Planner
	enums   *lower.EnumIndex
	tracker *scope.Tracker

	structs     map[string]*ast.StructDef
	traits      map[string]*ast.TraitDef
	impls       map[string][]*ast.ImplDef
	enumMethods map[string]string // method name -> owning enum, when unambiguous

	// per-function state
	fnReturn ast.Type
	inMain   bool
	hasMain  bool
	selfVar  string
	subst    map[string]string
	notes    []string
	temps    int

	marking bool
	pending int // source line for the next emitted line
}

func newGenerator(file *ast.File, opts Options) *generator {
	enums := lower.NewEnumIndex(file.Items)
	tracker := scope.New()
	g := &generator{
		sb:          &strings.Builder{},
		opts:        opts,
		enums:       enums,
		tracker:     tracker,
		planner:     lower.NewPlanner(enums, tracker),
		structs:     make(map[string]*ast.StructDef),
		traits:      make(map[string]*ast.TraitDef),
		impls:       make(map[string][]*ast.ImplDef),
		enumMethods: make(map[string]string),
	}
	g.index(file.Items)
	g.indexEnumMethods()
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

// indexEnumMethods records receiver methods that only one enum declares and
// no struct shadows, so calls on enum values can be routed to the enum's
// constructor object.
func (g *generator) indexEnumMethods() {
	taken := make(map[string]bool)
	for target, impls := range g.impls {
		_, isEnum := g.enums.Lookup(target)
		for _, impl := range impls {
			for _, m := range impl.Methods {
				if m.Receiver() == nil {
					continue
				}
				if !isEnum || taken[m.Name] {
					taken[m.Name] = true
					delete(g.enumMethods, m.Name)
					continue
				}
				g.enumMethods[m.Name] = target
				taken[m.Name] = true
			}
		}
	}
}

func (g *generator) emit(s string) {
	g.sb.WriteString(s)
}

func (g *generator) emitLinef(format string, args ...any) {
	g.emitLine(fmt.Sprintf(format, args...))
}

func (g *generator) emitLine(s string) {
	if s == "" {
		g.sb.WriteString("\n")
	} else {
		if g.pending > 0 {
			g.sb.WriteString(sourcemap.Marker(g.pending))
			g.pending = 0
		}
		g.sb.WriteString(g.indentStr())
		g.sb.WriteString(s)
		g.sb.WriteString("\n")
	}
}

// mark tags the next emitted line with n's source line.
func (g *generator) mark(n ast.Node) {
	if g.marking {
		g.pending, _ = n.Pos()
	}
}

func (g *generator) incIndent() { g.indent++ }
func (g *generator) decIndent() { g.indent-- }

func (g *generator) indentStr() string {
	return strings.Repeat("  ", g.indent)
}

func (g *generator) note(text string) {
	g.notes = append(g.notes, text)
}

// flush writes the annotations queued while lowering the next line.
func (g *generator) flush() {
	for _, n := range g.notes {
		g.emitLine("// " + n)
	}
	g.notes = nil
}

func (g *generator) temp(prefix string) string {
	name := fmt.Sprintf("%s%d", prefix, g.temps)
	g.temps++
	return name
}

func (g *generator) comment(text string) {
	for _, l := range strings.Split(text, "\n") {
		g.emitLine(strings.TrimRight("// "+l, " "))
	}
}

func (g *generator) doc(text string) {
	if text == "" {
		return
	}
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		g.emitLinef("/** %s */", lines[0])
		return
	}
	g.emitLine("/**")
	for _, l := range lines {
		g.emitLine(strings.TrimRight(" * "+l, " "))
	}
	g.emitLine(" */")
}

func export(public bool) string {
	if public {
		return "export "
	}
	return ""
}

// --- Items ---

func (g *generator) items(items []ast.Item) {
	for i, item := range items {
		g.tracker.Reset()
		g.mark(item)
		if !g.item(item) {
			g.pending = 0
			continue
		}
		if _, isComment := item.(*ast.CommentItem); isComment {
			continue
		}
		if i < len(items)-1 {
			g.emitLine("")
		}
	}
}

// item emits one item and reports whether it produced output.
func (g *generator) item(item ast.Item) bool {
	switch it := item.(type) {
	case *ast.UseDecl:
		g.emitLine("// use " + it.Path)
	case *ast.FunctionDef:
		g.function(it)
	case *ast.StructDef:
		g.structDef(it)
	case *ast.EnumDef:
		g.enumDef(it)
	case *ast.ImplDef:
		if _, merged := g.structs[it.Target]; merged {
			return false
		}
		if _, isEnum := g.enums.Lookup(it.Target); isEnum {
			return false
		}
		g.detachedImpl(it)
	case *ast.TraitDef:
		g.traitDef(it)
	case *ast.ModDecl:
		if !it.Inline {
			g.emitLinef("import * as %s from './%s%s';", it.Name, it.Name, moduleSuffix(g.opts.Dialect))
			return true
		}
		g.emitLinef("%snamespace %s {", export(it.IsPublic), it.Name)
		g.incIndent()
		g.items(it.Items)
		g.decIndent()
		g.emitLine("}")
	case *ast.TypeAlias:
		g.emitLinef("%stype %s%s = %s;", export(it.IsPublic), it.Name, generics(it.Generics), g.tsType(it.Type))
	case *ast.ConstDecl:
		g.constDecl(it)
	case *ast.StmtItem:
		g.stmt(it.Stmt)
	case *ast.CommentItem:
		g.comment(it.Text)
	case *ast.RawItem:
		if g.opts.Strict {
			g.comment("unsupported: " + it.Text)
			return true
		}
		g.emitLine("// passthrough: unrecognized construct")
		for _, l := range strings.Split(it.Text, "\n") {
			g.emitLine(l)
		}
	default:
		return false
	}
	return true
}

func generics(params []*ast.GenericParam) string {
	var names []string
	for _, p := range params {
		if strings.HasPrefix(p.Name, "'") {
			continue
		}
		names = append(names, p.Name)
	}
	if len(names) == 0 {
		return ""
	}
	return "<" + strings.Join(names, ", ") + ">"
}

func (g *generator) constDecl(c *ast.ConstDecl) {
	value := g.expr(c.Value)
	g.flush()
	kw := "const"
	if c.IsStatic {
		kw = "let"
	}
	typ := ""
	if c.Type != nil {
		typ = ": " + g.tsType(c.Type)
	}
	g.emitLinef("%s%s %s%s = %s;", export(c.IsPublic), kw, c.Name, typ, value)
}

// --- Functions ---

func (g *generator) function(fn *ast.FunctionDef) {
	g.beginFunction(fn)
	defer g.endFunction()

	g.doc(fn.Doc)
	name := ident(fn.Name)
	if g.inMain {
		g.hasMain = true
	}
	g.emitLinef("%s%sfunction %s%s(%s)%s {", export(fn.IsPublic && !g.inMain), async(fn), name,
		generics(fn.Generics), g.params(fn.Params), g.returnAnnotation(fn))
	g.body(fn)
	g.emitLine("}")
}

func (g *generator) beginFunction(fn *ast.FunctionDef) {
	g.fnReturn = fn.ReturnType
	g.inMain = fn.Name == "main" && fn.Owner == ""
	g.planner.Reset()
	g.temps = 0
}

func (g *generator) endFunction() {
	g.fnReturn = nil
	g.inMain = false
}

func async(fn *ast.FunctionDef) string {
	if fn.IsAsync {
		return "async "
	}
	return ""
}

func (g *generator) params(params []*ast.Param) string {
	var parts []string
	for _, p := range params {
		if p.Self != ast.NotSelf {
			continue
		}
		if p.Type == nil {
			parts = append(parts, ident(p.Name))
			continue
		}
		parts = append(parts, ident(p.Name)+": "+g.tsType(p.Type))
	}
	return strings.Join(parts, ", ")
}

func (g *generator) returnAnnotation(fn *ast.FunctionDef) string {
	ret := "void"
	if fn.ReturnType != nil {
		ret = g.tsType(fn.ReturnType)
	}
	if fn.IsAsync {
		ret = "Promise<" + ret + ">"
	}
	return ": " + ret
}

func (g *generator) body(fn *ast.FunctionDef) {
	if fn.Body == nil {
		return
	}
	want := lower.Return
	if fn.ReturnType == nil || isUnit(fn.ReturnType) {
		want = lower.Void
	}
	g.incIndent()
	g.blockInto(fn.Body, want, "")
	g.decIndent()
}

func isUnit(t ast.Type) bool {
	n, ok := t.(*ast.NamedType)
	return ok && n.Name == "()"
}

// --- Structs, impls and traits ---

// structDef emits an interface for plain data and a class when the struct
// has methods.
func (g *generator) structDef(s *ast.StructDef) {
	impls := g.impls[s.Name]
	g.doc(s.Doc)
	if len(impls) == 0 {
		g.emitLinef("%sinterface %s%s {", export(s.IsPublic), s.Name, generics(s.Generics))
		g.incIndent()
		for _, f := range s.Fields {
			g.emitLinef("%s: %s;", ident(f.Name), g.tsType(f.Type))
		}
		g.decIndent()
		g.emitLine("}")
		return
	}

	var implements []string
	for _, impl := range impls {
		if _, local := g.traits[impl.Trait]; local {
			implements = append(implements, impl.Trait)
		}
	}
	head := fmt.Sprintf("%sclass %s%s", export(s.IsPublic), s.Name, generics(s.Generics))
	if len(implements) > 0 {
		head += " implements " + strings.Join(implements, ", ")
	}
	g.emitLine(head + " {")
	g.incIndent()
	g.tracker.Enter(s.Name, scope.Public)

	for _, f := range s.Fields {
		g.emitLinef("%s: %s;", ident(f.Name), g.tsType(f.Type))
	}
	if len(s.Fields) > 0 {
		g.emitLine("")
		var params []string
		for _, f := range s.Fields {
			params = append(params, ident(f.Name)+": "+g.tsType(f.Type))
		}
		g.emitLinef("constructor(%s) {", strings.Join(params, ", "))
		g.incIndent()
		for _, f := range s.Fields {
			g.emitLinef("this.%s = %s;", ident(f.Name), ident(f.Name))
		}
		g.decIndent()
		g.emitLine("}")
	}

	for _, impl := range impls {
		for _, m := range impl.Methods {
			g.emitLine("")
			g.method(m, "", classMember)
		}
		for _, other := range impl.Other {
			g.emitLine("")
			g.comment("associated item: " + itemText(other))
		}
	}
	if hasDerive(s.Derives, "Clone") {
		g.emitLine("")
		g.emitLinef("clone(): %s%s {", s.Name, generics(s.Generics))
		g.incIndent()
		g.emitLine("return Object.assign(Object.create(Object.getPrototypeOf(this)), this);")
		g.decIndent()
		g.emitLine("}")
	}

	g.tracker.Leave()
	g.decIndent()
	g.emitLine("}")
}

func hasDerive(derives []string, name string) bool {
	for _, d := range derives {
		if d == name {
			return true
		}
	}
	return false
}

func itemText(it ast.Item) string {
	switch n := it.(type) {
	case *ast.TypeAlias:
		return "type " + n.Name
	case *ast.ConstDecl:
		return "const " + n.Name
	case *ast.RawItem:
		return n.Text
	}
	return "item"
}

// memberStyle selects how a method is declared
type memberStyle int

const (
	classMember     memberStyle = iota // associated functions become static
	objectMember                       // object literal entry, receiver explicit
	namespaceMember                    // exported function, receiver explicit
)

// method emits one method. For object and namespace members selfType is
// the type of the explicit `self` parameter.
func (g *generator) method(m *ast.FunctionDef, selfType string, style memberStyle) {
	g.beginFunction(m)
	defer g.endFunction()

	recv := m.Receiver()
	params := g.params(m.Params)
	prefix, closer := "", "}"
	switch style {
	case classMember:
		if recv == nil {
			prefix = "static "
		}
	case objectMember:
		closer = "},"
	case namespaceMember:
		prefix = "export function "
	}
	if style != classMember && recv != nil {
		g.selfVar = "self"
		defer func() { g.selfVar = "" }()
		self := "self: " + selfType
		if params != "" {
			self += ", "
		}
		params = self + params
	}

	g.doc(m.Doc)
	sig := fmt.Sprintf("%s%s%s%s(%s)%s", prefix, async(m), ident(m.Name), generics(m.Generics), params, g.returnAnnotation(m))
	if m.Abstract || m.Body == nil {
		g.emitLine(sig + ";")
		return
	}
	g.emitLine(sig + " {")
	g.body(m)
	g.emitLine(closer)
}

func (g *generator) traitDef(t *ast.TraitDef) {
	g.doc(t.Doc)
	g.emitLinef("%sinterface %s%s {", export(t.IsPublic), t.Name, generics(t.Generics))
	g.incIndent()
	g.tracker.Enter(t.Name, scope.Public)
	for _, m := range t.Methods {
		if m.Receiver() == nil {
			g.emitLinef("// associated function %s has no interface counterpart", m.Name)
			continue
		}
		if m.Body != nil && !m.Abstract {
			g.emitLinef("// default body of %s is not carried into the interface", m.Name)
		}
		g.emitLinef("%s%s(%s)%s;", ident(m.Name), generics(m.Generics), g.params(m.Params), g.returnAnnotation(m))
	}
	g.tracker.Leave()
	g.decIndent()
	g.emitLine("}")
}

// detachedImpl emits methods of a non-local target as a namespace of
// functions taking the receiver explicitly.
func (g *generator) detachedImpl(impl *ast.ImplDef) {
	if impl.Trait != "" {
		g.emitLinef("// impl %s for %s", impl.Trait, impl.Target)
	}
	g.emitLinef("export const %s = {", implObject(impl.Target))
	g.incIndent()
	g.tracker.Enter(impl.Target, scope.Public)
	for i, m := range impl.Methods {
		if i > 0 {
			g.emitLine("")
		}
		g.method(m, g.tsType(&ast.NamedType{Name: impl.Target}), objectMember)
	}
	g.tracker.Leave()
	g.decIndent()
	g.emitLine("};")
}

func implObject(target string) string {
	return strings.NewReplacer("<", "_", ">", "", ",", "_", " ", "", "&", "", "[", "", "]", "").Replace(target) + "_impl"
}

// --- Enums ---

// enumDef emits a native enum for unit-only enums. Payload enums become one
// tagged object type per variant, a union alias and a constructor object.
func (g *generator) enumDef(e *ast.EnumDef) {
	plan := lower.PlanEnum(e)
	g.doc(e.Doc)
	if plan.Native {
		g.emitLinef("%senum %s {", export(e.IsPublic), e.Name)
		g.incIndent()
		for _, v := range plan.Variants {
			if v.Discriminant != "" {
				g.emitLinef("%s = %s,", v.Name, v.Discriminant)
			} else {
				g.emitLinef("%s,", v.Name)
			}
		}
		g.decIndent()
		g.emitLine("}")
		if methods := g.enumImplMethods(e.Name); len(methods) > 0 {
			g.emitLine("")
			g.emitLinef("%snamespace %s {", export(e.IsPublic), e.Name)
			g.incIndent()
			g.tracker.Enter(e.Name, scope.Public)
			for i, m := range methods {
				if i > 0 {
					g.emitLine("")
				}
				g.method(m, e.Name, namespaceMember)
			}
			g.tracker.Leave()
			g.decIndent()
			g.emitLine("}")
		}
		return
	}

	tparams := generics(e.Generics)
	self := e.Name + tparams
	var alts []string
	for _, v := range plan.Variants {
		fields := []string{fmt.Sprintf("tag: '%s'", v.Name)}
		for _, f := range v.Fields {
			fields = append(fields, ident(f.Name)+": "+g.tsType(f.Type))
		}
		g.emitLinef("%stype %s%s = { %s };", export(e.IsPublic), v.Name, tparams, strings.Join(fields, "; "))
		alts = append(alts, v.Name+tparams)
	}
	g.emitLinef("%stype %s = %s;", export(e.IsPublic), self, strings.Join(alts, " | "))
	g.emitLine("")

	g.emitLinef("%sconst %s = {", export(e.IsPublic), e.Name)
	g.incIndent()
	g.tracker.Enter(e.Name, scope.Public)
	for _, v := range plan.Variants {
		if len(v.Fields) == 0 {
			g.emitLinef("%s: { tag: '%s' } as %s,", v.Name, v.Name, e.Name+neverArgs(e.Generics))
			continue
		}
		var params, names []string
		for _, f := range v.Fields {
			params = append(params, ident(f.Name)+": "+g.tsType(f.Type))
			names = append(names, ident(f.Name))
		}
		g.emitLinef("%s: %s(%s): %s => ({ tag: '%s', %s }),", v.Name, tparams, strings.Join(params, ", "), self,
			v.Name, strings.Join(names, ", "))
	}
	for _, m := range g.enumImplMethods(e.Name) {
		g.emitLine("")
		g.method(m, self, objectMember)
	}
	g.tracker.Leave()
	g.decIndent()
	g.emitLine("};")
}

// neverArgs instantiates every type parameter with never, so a unit variant
// constant fits each instantiation of a generic enum.
func neverArgs(params []*ast.GenericParam) string {
	var args []string
	for _, p := range params {
		if !strings.HasPrefix(p.Name, "'") {
			args = append(args, "never")
		}
	}
	if len(args) == 0 {
		return ""
	}
	return "<" + strings.Join(args, ", ") + ">"
}

func (g *generator) enumImplMethods(name string) []*ast.FunctionDef {
	var out []*ast.FunctionDef
	for _, impl := range g.impls[name] {
		out = append(out, impl.Methods...)
	}
	return out
}
