package rustbe

import (
	"fmt"
	"strings"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/lower"
	"github.com/lhaig/nu/internal/sourcemap"
	"github.com/lhaig/nu/internal/typemap"
)

// Options controls Rust output
type Options struct {
	Strict bool // emit passthrough text as comments only
}

// Generate produces Rust source code from file. Abbreviations are expanded
// to their standard names and everything else keeps its shape.
func Generate(file *ast.File, opts Options) string {
	return render(file, opts, false)
}

// GenerateMapped is Generate plus the output line of each item and statement.
func GenerateMapped(file *ast.File, opts Options) (string, []sourcemap.Mapping) {
	return sourcemap.Extract(render(file, opts, true))
}

func render(file *ast.File, opts Options, marking bool) string {
	g := &generator{sb: &strings.Builder{}, opts: opts, marking: marking}

	g.emitLine("// Generated Rust code from nu")
	g.emitLine("")
	g.items(file.Items)

	return strings.TrimRight(g.sb.String(), "\n") + "\n"
}

type generator struct {
	sb     *strings.Builder
	indent int
	opts   Options

	marking bool
	pending int // source line for the next emitted line
}

// mark tags the next emitted line with n's source line.
func (g *generator) mark(n ast.Node) {
	if g.marking {
		g.pending, _ = n.Pos()
	}
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

func (g *generator) incIndent() { g.indent++ }
func (g *generator) decIndent() { g.indent-- }

func (g *generator) indentStr() string {
	return strings.Repeat("    ", g.indent)
}

// nested renders f one level deeper and returns the lines it wrote.
func (g *generator) nested(f func()) string {
	saved, pending := g.sb, g.pending
	g.sb = &strings.Builder{}
	g.pending = 0
	g.incIndent()
	f()
	g.decIndent()
	out := g.sb.String()
	g.sb, g.pending = saved, pending
	return out
}

func (g *generator) comment(text string) {
	g.emitLine(strings.TrimRight("// "+text, " "))
}

func (g *generator) doc(text string) {
	if text == "" {
		return
	}
	for _, l := range strings.Split(text, "\n") {
		g.emitLine(strings.TrimRight("/// "+l, " "))
	}
}

func (g *generator) attrs(attrs []string, derives []string) {
	if len(derives) > 0 {
		g.emitLinef("#[derive(%s)]", strings.Join(derives, ", "))
	}
	for _, a := range attrs {
		g.emitLine(a)
	}
}

func (g *generator) raw(text string) {
	if g.opts.Strict {
		for _, l := range strings.Split(text, "\n") {
			g.comment("unsupported: " + l)
		}
		return
	}
	for _, l := range strings.Split(text, "\n") {
		g.emitLine(l)
	}
}

func pub(public bool) string {
	if public {
		return "pub "
	}
	return ""
}

// --- Items ---

func (g *generator) items(items []ast.Item) {
	for i, item := range items {
		g.mark(item)
		g.item(item)
		if _, isComment := item.(*ast.CommentItem); isComment {
			continue
		}
		if i < len(items)-1 {
			g.emitLine("")
		}
	}
}

func (g *generator) item(item ast.Item) {
	switch it := item.(type) {
	case *ast.UseDecl:
		g.emitLinef("%suse %s;", pub(it.IsPublic), it.Path)
	case *ast.FunctionDef:
		g.function(it)
	case *ast.StructDef:
		g.structDef(it)
	case *ast.EnumDef:
		g.enumDef(it)
	case *ast.ImplDef:
		g.implDef(it)
	case *ast.TraitDef:
		g.traitDef(it)
	case *ast.ModDecl:
		if !it.Inline {
			g.emitLinef("%smod %s;", pub(it.IsPublic), it.Name)
			return
		}
		g.emitLinef("%smod %s {", pub(it.IsPublic), it.Name)
		g.incIndent()
		g.items(it.Items)
		g.decIndent()
		g.emitLine("}")
	case *ast.TypeAlias:
		g.emitLinef("%stype %s%s = %s;", pub(it.IsPublic), it.Name, generics(it.Generics), rustType(it.Type))
	case *ast.ConstDecl:
		kw := "const"
		if it.IsStatic {
			kw = "static"
		}
		typ := ""
		if it.Type != nil {
			typ = ": " + rustType(it.Type)
		}
		g.emitLinef("%s%s %s%s = %s;", pub(it.IsPublic), kw, it.Name, typ, g.expr(it.Value))
	case *ast.StmtItem:
		g.stmt(it.Stmt)
	case *ast.CommentItem:
		g.comment(it.Text)
	case *ast.RawItem:
		g.raw(it.Text)
	}
}

func generics(params []*ast.GenericParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name
		if p.Bounds != "" {
			parts[i] += ": " + p.Bounds
		}
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func (g *generator) signature(fn *ast.FunctionDef) string {
	var b strings.Builder
	b.WriteString(pub(fn.IsPublic))
	if fn.IsAsync {
		b.WriteString("async ")
	}
	b.WriteString("fn " + fn.Name + generics(fn.Generics) + "(" + params(fn.Params) + ")")
	if fn.ReturnType != nil {
		b.WriteString(" -> " + rustType(fn.ReturnType))
	}
	if fn.Where != "" {
		b.WriteString(" where " + fn.Where)
	}
	return b.String()
}

func params(ps []*ast.Param) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		switch p.Self {
		case ast.SelfValue:
			parts[i] = "self"
		case ast.SelfRef:
			parts[i] = "&self"
		case ast.SelfMutRef:
			parts[i] = "&mut self"
		default:
			parts[i] = p.Name
			if p.Type != nil {
				parts[i] += ": " + rustType(p.Type)
			}
		}
	}
	return strings.Join(parts, ", ")
}

func (g *generator) function(fn *ast.FunctionDef) {
	g.doc(fn.Doc)
	g.attrs(fn.Attributes, nil)
	if fn.Abstract || fn.Body == nil {
		g.emitLine(g.signature(fn) + ";")
		return
	}
	g.emitLine(g.signature(fn) + " " + g.block(fn.Body))
}

func (g *generator) structDef(s *ast.StructDef) {
	g.doc(s.Doc)
	g.attrs(s.Attributes, s.Derives)
	head := pub(s.IsPublic) + "struct " + s.Name + generics(s.Generics)
	switch {
	case len(s.Fields) == 0:
		g.emitLine(head + ";")
	case s.Tuple:
		parts := make([]string, len(s.Fields))
		for i, f := range s.Fields {
			parts[i] = pub(s.IsPublic || f.IsPublic) + rustType(f.Type)
		}
		g.emitLinef("%s(%s);", head, strings.Join(parts, ", "))
	default:
		g.emitLine(head + " {")
		g.incIndent()
		for _, f := range s.Fields {
			g.emitLinef("%s%s: %s,", pub(s.IsPublic || f.IsPublic), f.Name, rustType(f.Type))
		}
		g.decIndent()
		g.emitLine("}")
	}
}

func (g *generator) enumDef(e *ast.EnumDef) {
	g.doc(e.Doc)
	g.attrs(e.Attributes, e.Derives)
	g.emitLinef("%senum %s%s {", pub(e.IsPublic), e.Name, generics(e.Generics))
	g.incIndent()
	for _, v := range e.Variants {
		switch v.Kind {
		case ast.TupleVariant:
			g.emitLinef("%s(%s),", v.Name, strings.Join(rustTypes(v.Types), ", "))
		case ast.RecordVariant:
			fields := make([]string, len(v.Fields))
			for i, f := range v.Fields {
				fields[i] = f.Name + ": " + rustType(f.Type)
			}
			g.emitLinef("%s { %s },", v.Name, strings.Join(fields, ", "))
		default:
			if v.Discriminant != "" {
				g.emitLinef("%s = %s,", v.Name, v.Discriminant)
			} else {
				g.emitLinef("%s,", v.Name)
			}
		}
	}
	g.decIndent()
	g.emitLine("}")
}

func (g *generator) implDef(impl *ast.ImplDef) {
	head := "impl" + generics(impl.Generics) + " "
	if impl.Trait != "" {
		head += expandPath(impl.Trait) + " for "
	}
	g.emitLine(head + expandPath(impl.Target) + " {")
	g.incIndent()
	for _, other := range impl.Other {
		g.item(other)
	}
	for i, m := range impl.Methods {
		if i > 0 || len(impl.Other) > 0 {
			g.emitLine("")
		}
		g.mark(m)
		g.function(m)
	}
	g.decIndent()
	g.emitLine("}")
}

func (g *generator) traitDef(t *ast.TraitDef) {
	g.doc(t.Doc)
	g.emitLinef("%strait %s%s {", pub(t.IsPublic), t.Name, generics(t.Generics))
	g.incIndent()
	for i, m := range t.Methods {
		if i > 0 {
			g.emitLine("")
		}
		g.function(m)
	}
	g.decIndent()
	g.emitLine("}")
}

// --- Types ---

func rustType(t ast.Type) string {
	switch n := t.(type) {
	case nil:
		return "()"
	case *ast.NamedType:
		return expandPath(n.Name)
	case *ast.GenericType:
		return expandPath(n.Base) + "<" + strings.Join(rustTypes(n.Args), ", ") + ">"
	case *ast.TupleType:
		if len(n.Elems) == 1 {
			return "(" + rustType(n.Elems[0]) + ",)"
		}
		return "(" + strings.Join(rustTypes(n.Elems), ", ") + ")"
	case *ast.FunctionType:
		s := "fn(" + strings.Join(rustTypes(n.Params), ", ") + ")"
		if n.Return != nil {
			s += " -> " + rustType(n.Return)
		}
		return s
	case *ast.ReferenceType:
		if n.IsMut {
			return "&mut " + rustType(n.Inner)
		}
		return "&" + rustType(n.Inner)
	case *ast.ArrayType:
		if n.Len == "" {
			return "[" + rustType(n.Elem) + "]"
		}
		return "[" + rustType(n.Elem) + "; " + n.Len + "]"
	}
	return t.String()
}

func rustTypes(ts []ast.Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = rustType(t)
	}
	return out
}

// expandPath expands the abbreviation in the last segment of a type path.
func expandPath(name string) string {
	head, last := "", name
	if i := strings.LastIndex(name, "::"); i >= 0 {
		head, last = name[:i+2], name[i+2:]
	}
	spelled, _ := typemap.Lookup(typemap.Rust, last)
	return head + spelled
}

// --- Statements ---

func (g *generator) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		mut := ""
		if n.IsMut {
			mut = "mut "
		}
		typ := ""
		if n.Type != nil {
			typ = ": " + rustType(n.Type)
		}
		if n.Value == nil {
			g.emitLinef("let %s%s%s;", mut, n.Name, typ)
			return
		}
		g.emitLinef("let %s%s%s = %s;", mut, n.Name, typ, g.expr(n.Value))
	case *ast.ExprStmt:
		text := g.expr(n.Expr)
		if n.Semi || !blockLike(n.Expr) {
			text += ";"
		}
		g.emitLine(text)
	case *ast.ItemStmt:
		g.item(n.Item)
	case *ast.CommentStmt:
		g.comment(n.Text)
	case *ast.RawStmt:
		g.raw(n.Text)
	}
}

func blockLike(e ast.Expr) bool {
	switch e.(type) {
	case *ast.BlockExpr, *ast.IfExpr, *ast.MatchExpr, *ast.LoopExpr, *ast.WhileExpr, *ast.ForExpr:
		return true
	}
	return false
}

// block renders b as a braced block whose closing brace sits at the current
// indentation.
func (g *generator) block(b *ast.BlockExpr) string {
	if len(b.Stmts) == 0 && b.Tail == nil {
		return "{}"
	}
	body := g.nested(func() {
		for _, s := range b.Stmts {
			g.mark(s)
			g.stmt(s)
		}
		if b.Tail != nil {
			g.mark(b.Tail)
			g.emitLine(g.expr(b.Tail))
		}
	})
	return "{\n" + body + g.indentStr() + "}"
}

// --- Expressions ---

func (g *generator) expr(e ast.Expr) string {
	switch n := e.(type) {
	case nil:
		return "()"
	case *ast.Literal:
		if n.Kind == ast.UnitLit {
			return "()"
		}
		return n.Value + n.Suffix
	case *ast.Ident:
		return n.Name
	case *ast.PathExpr:
		segs := append([]string(nil), n.Segments...)
		if len(segs) > 1 {
			segs[0] = expandPath(segs[0])
		}
		return strings.Join(segs, "::")
	case *ast.CallExpr:
		return g.postfix(n.Func) + "(" + g.list(n.Args) + ")"
	case *ast.MethodCallExpr:
		method := n.Method
		if n.Turbofish != "" {
			method += "::<" + n.Turbofish + ">"
		}
		return g.postfix(n.Receiver) + "." + method + "(" + g.list(n.Args) + ")"
	case *ast.FieldExpr:
		return g.postfix(n.Object) + "." + n.Field
	case *ast.IndexExpr:
		return g.postfix(n.Object) + "[" + g.expr(n.Index) + "]"
	case *ast.UnaryExpr:
		op := n.Op
		if op == "&mut" {
			op = "&mut "
		}
		return op + g.operand(n.Operand, lower.PrecUnary, false)
	case *ast.BinaryExpr:
		p := lower.BinaryPrecedence(n.Op)
		if p == 0 {
			p = lower.PrecAssign
		}
		return g.operand(n.Left, p, p == lower.PrecAssign) + " " + n.Op + " " + g.operand(n.Right, p, p != lower.PrecAssign)
	case *ast.BlockExpr:
		return g.block(n)
	case *ast.IfExpr:
		return g.ifExpr(n)
	case *ast.MatchExpr:
		return g.match(n)
	case *ast.LoopExpr:
		return "loop " + g.block(n.Body)
	case *ast.WhileExpr:
		return "while " + g.head(n.Cond) + " " + g.block(n.Body)
	case *ast.ForExpr:
		name := n.Names[0]
		if len(n.Names) > 1 {
			name = "(" + strings.Join(n.Names, ", ") + ")"
		}
		return "for " + name + " in " + g.head(n.Iter) + " " + g.block(n.Body)
	case *ast.ReturnExpr:
		if n.Value == nil {
			return "return"
		}
		return "return " + g.expr(n.Value)
	case *ast.BreakExpr:
		if n.Value == nil {
			return "break"
		}
		return "break " + g.expr(n.Value)
	case *ast.ContinueExpr:
		return "continue"
	case *ast.TryExpr:
		return g.postfix(n.Operand) + "?"
	case *ast.AwaitExpr:
		return g.postfix(n.Operand) + ".await"
	case *ast.ClosureExpr:
		return g.closure(n)
	case *ast.StructInitExpr:
		return g.structInit(n.Name, n.Fields, n.Base)
	case *ast.EnumVariantExpr:
		return g.variant(n)
	case *ast.MacroExpr:
		return g.macro(n)
	case *ast.TupleExpr:
		if len(n.Elems) == 1 {
			return "(" + g.expr(n.Elems[0]) + ",)"
		}
		return "(" + g.list(n.Elems) + ")"
	case *ast.ArrayExpr:
		return "[" + g.list(n.Elems) + "]"
	case *ast.ArrayRepeatExpr:
		return "[" + g.expr(n.Value) + "; " + g.expr(n.Count) + "]"
	case *ast.RangeExpr:
		op := ".."
		if n.Inclusive {
			op = "..="
		}
		s := ""
		if n.Start != nil {
			s = g.operand(n.Start, lower.PrecRange, false)
		}
		s += op
		if n.End != nil {
			s += g.operand(n.End, lower.PrecRange, true)
		}
		return s
	case *ast.CastExpr:
		return g.operand(n.Expr, lower.PrecCast, false) + " as " + rustType(n.Type)
	case *ast.RawExpr:
		if g.opts.Strict {
			return "unimplemented!(/* unsupported: " + strings.ReplaceAll(n.Text, "*/", "* /") + " */)"
		}
		return n.Text
	}
	return "unimplemented!()"
}

func (g *generator) list(es []ast.Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = g.expr(e)
	}
	return strings.Join(parts, ", ")
}

func (g *generator) operand(child ast.Expr, parent int, right bool) string {
	if lower.NeedsParens(parent, child, right) {
		return "(" + g.expr(child) + ")"
	}
	return g.expr(child)
}

func (g *generator) postfix(e ast.Expr) string {
	if lower.OperandNeedsParens(e) {
		return "(" + g.expr(e) + ")"
	}
	return g.expr(e)
}

// head renders the expression before a block opener, where a bare struct
// literal would be read as the block.
func (g *generator) head(e ast.Expr) string {
	bare := false
	switch n := e.(type) {
	case *ast.StructInitExpr:
		bare = true
	case *ast.BinaryExpr:
		_, l := n.Left.(*ast.StructInitExpr)
		_, r := n.Right.(*ast.StructInitExpr)
		bare = l || r
	}
	if bare {
		return "(" + g.expr(e) + ")"
	}
	return g.expr(e)
}

func (g *generator) ifExpr(n *ast.IfExpr) string {
	s := "if " + g.head(n.Cond) + " " + g.block(n.Then)
	switch els := n.Else.(type) {
	case nil:
	case *ast.IfExpr:
		s += " else " + g.ifExpr(els)
	case *ast.BlockExpr:
		s += " else " + g.block(els)
	default:
		s += " else { " + g.expr(els) + " }"
	}
	return s
}

func (g *generator) match(m *ast.MatchExpr) string {
	arms := g.nested(func() {
		for _, arm := range m.Arms {
			head := arm.Pattern.String()
			if arm.Guard != nil {
				head += " if " + g.expr(arm.Guard)
			}
			if b, ok := arm.Body.(*ast.BlockExpr); ok {
				g.emitLine(head + " => " + g.block(b))
				continue
			}
			g.emitLine(head + " => " + g.expr(arm.Body) + ",")
		}
	})
	return "match " + g.head(m.Scrutinee) + " {\n" + arms + g.indentStr() + "}"
}

func (g *generator) closure(c *ast.ClosureExpr) string {
	var b strings.Builder
	if c.IsMove {
		b.WriteString("move ")
	}
	b.WriteString("|" + params(c.Params) + "|")
	if c.ReturnType != nil {
		b.WriteString(" -> " + rustType(c.ReturnType) + " ")
		if body, ok := c.Body.(*ast.BlockExpr); ok {
			b.WriteString(g.block(body))
		} else {
			b.WriteString("{ " + g.expr(c.Body) + " }")
		}
		return b.String()
	}
	b.WriteString(" " + g.expr(c.Body))
	return b.String()
}

func (g *generator) structInit(name string, fields []*ast.FieldInit, base ast.Expr) string {
	var parts []string
	for _, f := range fields {
		if id, ok := f.Value.(*ast.Ident); ok && id.Name == f.Name {
			parts = append(parts, f.Name)
			continue
		}
		parts = append(parts, f.Name+": "+g.expr(f.Value))
	}
	if base != nil {
		parts = append(parts, ".."+g.expr(base))
	}
	if len(parts) == 0 {
		return name + " {}"
	}
	return name + " { " + strings.Join(parts, ", ") + " }"
}

func (g *generator) variant(v *ast.EnumVariantExpr) string {
	name := v.Variant
	if v.Enum != "" {
		name = v.Enum + "::" + v.Variant
	}
	switch {
	case len(v.Fields) > 0:
		return g.structInit(name, v.Fields, nil)
	case len(v.Args) > 0:
		return name + "(" + g.list(v.Args) + ")"
	case v.Variant == "Ok" || v.Variant == "Err" || v.Variant == "Some":
		return name + "(())"
	}
	return name
}

func (g *generator) macro(m *ast.MacroExpr) string {
	if m.Args == nil {
		return m.Name + "!(" + m.Text + ")"
	}
	if m.Name == "vec" {
		if len(m.Args) == 1 {
			if r, ok := m.Args[0].(*ast.ArrayRepeatExpr); ok {
				return "vec![" + g.expr(r.Value) + "; " + g.expr(r.Count) + "]"
			}
		}
		return "vec![" + g.list(m.Args) + "]"
	}
	return m.Name + "!(" + g.list(m.Args) + ")"
}
