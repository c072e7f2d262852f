package tsbe

import (
	"fmt"
	"strings"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/lower"
	"github.com/lhaig/nu/internal/typemap"
)

// --- Expressions ---

func (g *generator) expr(e ast.Expr) string {
	switch n := e.(type) {
	case nil:
		return "undefined"
	case *ast.Literal:
		return g.literal(n)
	case *ast.Ident:
		if sub, ok := g.subst[n.Name]; ok {
			return sub
		}
		if n.Name == "self" {
			return g.self()
		}
		return ident(n.Name)
	case *ast.PathExpr:
		return g.path(n.Segments)
	case *ast.CallExpr:
		return g.call(n)
	case *ast.MethodCallExpr:
		return g.methodCall(n)
	case *ast.FieldExpr:
		return g.field(n)
	case *ast.IndexExpr:
		obj := g.receiver(n.Object)
		if r, ok := n.Index.(*ast.RangeExpr); ok {
			return g.slice(obj, r)
		}
		return obj + "[" + g.expr(n.Index) + "]"
	case *ast.UnaryExpr:
		if n.Op == "&" || n.Op == "&mut" || n.Op == "*" {
			return g.expr(n.Operand)
		}
		return n.Op + g.operand(n.Operand, lower.PrecUnary, false)
	case *ast.BinaryExpr:
		return g.binary(n)
	case *ast.IfExpr:
		if lower.IsPlain(n) {
			return g.ternary(n)
		}
		return g.iife(n)
	case *ast.BlockExpr:
		if len(n.Stmts) == 0 && n.Tail != nil {
			return g.expr(n.Tail)
		}
		return g.iife(n)
	case *ast.MatchExpr, *ast.LoopExpr, *ast.WhileExpr, *ast.ForExpr,
		*ast.ReturnExpr, *ast.BreakExpr, *ast.ContinueExpr:
		return g.iife(n)
	case *ast.TryExpr:
		return g.try(n)
	case *ast.AwaitExpr:
		return "await " + g.operand(n.Operand, lower.PrecUnary, false)
	case *ast.ClosureExpr:
		return g.closure(n)
	case *ast.StructInitExpr:
		return g.structInit(n)
	case *ast.EnumVariantExpr:
		return g.variant(n)
	case *ast.MacroExpr:
		return g.macro(n)
	case *ast.TupleExpr:
		return "[" + strings.Join(g.exprs(n.Elems), ", ") + "]"
	case *ast.ArrayExpr:
		return "[" + strings.Join(g.exprs(n.Elems), ", ") + "]"
	case *ast.ArrayRepeatExpr:
		return "$repeat(" + g.expr(n.Value) + ", " + g.expr(n.Count) + ")"
	case *ast.RangeExpr:
		return g.rangeValue(n)
	case *ast.CastExpr:
		return g.cast(n)
	case *ast.RawExpr:
		return g.rawExpr(n.Text)
	}
	return g.rawExpr("/* unsupported expression */")
}

func (g *generator) exprs(es []ast.Expr) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = g.expr(e)
	}
	return out
}

// prec is the binding level of e once rendered in TypeScript. Casts and
// ranges become calls and references disappear.
func (g *generator) prec(e ast.Expr) int {
	switch n := e.(type) {
	case *ast.UnaryExpr:
		if n.Op == "&" || n.Op == "&mut" || n.Op == "*" {
			return g.prec(n.Operand)
		}
	case *ast.CastExpr:
		if isFloatType(n.Type) {
			return g.prec(n.Expr)
		}
		return lower.PrecAtom
	case *ast.RangeExpr, *ast.TryExpr:
		return lower.PrecAtom
	case *ast.AwaitExpr:
		return lower.PrecUnary
	case *ast.BlockExpr:
		if len(n.Stmts) == 0 && n.Tail != nil {
			return g.prec(n.Tail)
		}
		return lower.PrecAtom
	case *ast.MatchExpr, *ast.LoopExpr, *ast.WhileExpr, *ast.ForExpr:
		return lower.PrecAtom
	case *ast.IfExpr:
		if !lower.IsPlain(n) {
			return lower.PrecAtom
		}
	}
	return lower.Precedence(e)
}

// operand renders child as an operand at level parent, parenthesized when
// it binds looser.
func (g *generator) operand(child ast.Expr, parent int, right bool) string {
	s := g.expr(child)
	p := g.prec(child)
	if p < parent || (p == parent && right && parent != lower.PrecAssign) {
		return "(" + s + ")"
	}
	return s
}

// receiver renders e as the object of a member access or call.
func (g *generator) receiver(e ast.Expr) string {
	return g.operand(e, lower.PrecPostfix, false)
}

func (g *generator) binary(b *ast.BinaryExpr) string {
	op := b.Op
	switch op {
	case "==":
		op = "==="
	case "!=":
		op = "!=="
	}
	p := lower.BinaryPrecedence(b.Op)
	if p == 0 {
		p = lower.PrecAssign
	}
	return g.operand(b.Left, p, p == lower.PrecAssign) + " " + op + " " + g.operand(b.Right, p, p != lower.PrecAssign)
}

func (g *generator) ternary(n *ast.IfExpr) string {
	then := g.operand(lower.Unwrap(n.Then), lower.PrecOr, false)
	els := g.expr(lower.Unwrap(n.Else))
	return g.operand(n.Cond, lower.PrecOr, false) + " ? " + then + " : " + els
}

// iife evaluates a statement-shaped expression inside an immediately
// invoked arrow function.
func (g *generator) iife(e ast.Expr) string {
	if lower.Returns(e) {
		g.note("return inside a value expression exits only the enclosing arrow function")
	}
	if lower.BreaksOut(e) {
		g.note("break or continue inside a value expression is not supported")
	}
	saved := g.saveFunction()
	defer g.restoreFunction(saved)
	g.inMain = false
	return "(() => " + g.capture(func() { g.bodyInto(e, lower.Return, "") }) + ")()"
}

// capture renders f into a braced block, indented one level deeper than
// the current line.
func (g *generator) capture(f func()) string {
	saved, pending := g.sb, g.pending
	savedNotes := g.notes
	g.sb = &strings.Builder{}
	g.notes = nil
	g.pending = 0
	g.incIndent()
	f()
	g.flush()
	g.decIndent()
	body := g.sb.String()
	g.sb, g.pending = saved, pending
	g.notes = savedNotes
	return "{\n" + body + g.indentStr() + "}"
}

func (g *generator) self() string {
	if g.selfVar != "" {
		return g.selfVar
	}
	return "this"
}

func isSelf(e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == "self"
}

func (g *generator) rawExpr(text string) string {
	if g.opts.Strict {
		return "undefined /* unsupported: " + strings.ReplaceAll(text, "*/", "* /") + " */"
	}
	g.note("passthrough: unrecognized expression")
	return text
}

// --- Literals ---

func (g *generator) literal(l *ast.Literal) string {
	switch l.Kind {
	case ast.IntLit, ast.FloatLit:
		return strings.ReplaceAll(l.Value, "_", "")
	case ast.StringLit:
		switch {
		case strings.HasPrefix(l.Value, "r"):
			body := strings.TrimRight(strings.TrimLeft(l.Value[1:], "#"), "#")
			return templateText(body[1 : len(body)-1])
		case strings.HasPrefix(l.Value, "b"):
			return l.Value[1:]
		}
		return l.Value
	case ast.CharLit:
		if strings.HasPrefix(l.Value, "b") {
			return l.Value[1:] + ".charCodeAt(0)"
		}
		return l.Value
	case ast.UnitLit:
		return "undefined"
	}
	return l.Value
}

// templateText quotes raw text as a template literal.
func templateText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "`", "\\`")
	s = strings.ReplaceAll(s, "${", "\\${")
	return "`" + s + "`"
}

// --- Paths and calls ---

var numericLimits = map[string]string{
	"i8::MAX": "127", "i8::MIN": "-128", "u8::MAX": "255",
	"i16::MAX": "32767", "i16::MIN": "-32768", "u16::MAX": "65535",
	"i32::MAX": "2147483647", "i32::MIN": "-2147483648", "u32::MAX": "4294967295",
	"i64::MAX": "Number.MAX_SAFE_INTEGER", "i64::MIN": "Number.MIN_SAFE_INTEGER",
	"u64::MAX": "Number.MAX_SAFE_INTEGER", "usize::MAX": "Number.MAX_SAFE_INTEGER",
	"isize::MAX": "Number.MAX_SAFE_INTEGER", "isize::MIN": "Number.MIN_SAFE_INTEGER",
	"f64::MAX": "Number.MAX_VALUE", "f64::MIN": "-Number.MAX_VALUE", "f64::EPSILON": "Number.EPSILON",
	"f32::MAX": "3.4028235e38", "f32::MIN": "-3.4028235e38",
	"f64::INFINITY": "Infinity", "f64::NEG_INFINITY": "-Infinity", "f64::NAN": "NaN",
	"f32::INFINITY": "Infinity", "f32::NEG_INFINITY": "-Infinity", "f32::NAN": "NaN",
	"u8::MIN": "0", "u16::MIN": "0", "u32::MIN": "0", "u64::MIN": "0", "usize::MIN": "0",
}

var mathConstants = map[string]string{
	"PI": "Math.PI", "E": "Math.E", "TAU": "(2 * Math.PI)", "SQRT_2": "Math.SQRT2", "LN_2": "Math.LN2", "LN_10": "Math.LN10",
}

func (g *generator) path(segs []string) string {
	if len(segs) >= 2 {
		tail := segs[len(segs)-2] + "::" + segs[len(segs)-1]
		if v, ok := numericLimits[tail]; ok {
			return v
		}
		if segs[len(segs)-2] == "consts" {
			if v, ok := mathConstants[segs[len(segs)-1]]; ok {
				return v
			}
		}
	}
	out := make([]string, len(segs))
	for i, s := range segs {
		switch {
		case i == 0:
			out[i] = g.tracker.ResolveSelf(s)
		case i == len(segs)-1:
			out[i] = ident(s)
		default:
			out[i] = s
		}
	}
	if out[0] == "crate" || out[0] == "super" {
		out = out[1:]
	}
	return strings.Join(out, ".")
}

// wrapperConstructors erase ownership wrappers around their argument.
var wrapperConstructors = map[string]bool{
	"Box": true, "Rc": true, "Arc": true, "Mutex": true, "RwLock": true, "RefCell": true, "Cell": true,
}

func (g *generator) call(c *ast.CallExpr) string {
	args := g.exprs(c.Args)
	if p, ok := c.Func.(*ast.PathExpr); ok && len(p.Segments) == 2 {
		typ := typemap.Canonical(p.Segments[0])
		switch fn := p.Segments[1]; {
		case typ == "String" && fn == "new":
			return "''"
		case typ == "String" && fn == "from" && len(args) == 1:
			if lit, ok := c.Args[0].(*ast.Literal); ok && lit.Kind == ast.StringLit {
				return args[0]
			}
			return "String(" + args[0] + ")"
		case (typ == "Vec" || typ == "VecDeque") && (fn == "new" || fn == "with_capacity"):
			return "[]"
		case (typ == "HashMap" || typ == "BTreeMap") && (fn == "new" || fn == "with_capacity"):
			return "new Map()"
		case (typ == "HashSet" || typ == "BTreeSet") && (fn == "new" || fn == "with_capacity"):
			return "new Set()"
		case wrapperConstructors[typ] && fn == "new" && len(args) == 1:
			return args[0]
		}
	}
	if id, ok := c.Func.(*ast.Ident); ok {
		if s, isStruct := g.structs[id.Name]; isStruct && s.Tuple {
			return g.construct(s, args)
		}
	}
	return g.receiver(c.Func) + "(" + strings.Join(args, ", ") + ")"
}

// construct builds an aggregate from values in declaration order.
func (g *generator) construct(s *ast.StructDef, values []string) string {
	if len(g.impls[s.Name]) > 0 {
		return "new " + s.Name + "(" + strings.Join(values, ", ") + ")"
	}
	parts := make([]string, 0, len(values))
	for i, v := range values {
		if i < len(s.Fields) {
			parts = append(parts, ident(s.Fields[i].Name)+": "+v)
		}
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (g *generator) field(f *ast.FieldExpr) string {
	name := f.Field
	if isDigits(name) {
		if isSelf(f.Object) {
			return g.self() + "._" + name
		}
		return g.receiver(f.Object) + "[" + name + "]"
	}
	return g.receiver(f.Object) + "." + ident(name)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func (g *generator) slice(obj string, r *ast.RangeExpr) string {
	start := "0"
	if r.Start != nil {
		start = g.expr(r.Start)
	}
	if r.End == nil {
		return obj + ".slice(" + start + ")"
	}
	end := g.expr(r.End)
	if r.Inclusive {
		end = g.operand(r.End, lower.PrecAdd, false) + " + 1"
	}
	return obj + ".slice(" + start + ", " + end + ")"
}

func (g *generator) rangeValue(r *ast.RangeExpr) string {
	start := "0"
	if r.Start != nil {
		start = g.expr(r.Start)
	}
	if r.End == nil {
		g.note("open range has no array form")
		return "$range(" + start + ", " + start + ")"
	}
	if r.Inclusive {
		return "$range(" + start + ", " + g.expr(r.End) + ", true)"
	}
	return "$range(" + start + ", " + g.expr(r.End) + ")"
}

func isFloatType(t ast.Type) bool {
	n, ok := t.(*ast.NamedType)
	return ok && (n.Name == "f64" || n.Name == "f32")
}

func isIntType(t ast.Type) bool {
	n, ok := t.(*ast.NamedType)
	if !ok {
		return false
	}
	switch n.Name {
	case "i8", "i16", "i32", "i64", "i128", "isize", "u8", "u16", "u32", "u64", "u128", "usize":
		return true
	}
	return false
}

func (g *generator) cast(c *ast.CastExpr) string {
	switch {
	case isFloatType(c.Type):
		return g.expr(c.Expr)
	case isIntType(c.Type):
		if lit, ok := c.Expr.(*ast.Literal); ok && lit.Kind == ast.CharLit {
			return g.literal(lit) + ".codePointAt(0)!"
		}
		return "Math.trunc(" + g.expr(c.Expr) + ")"
	}
	if n, ok := c.Type.(*ast.NamedType); ok && n.Name == "char" {
		return "String.fromCodePoint(" + g.expr(c.Expr) + ")"
	}
	return "(" + g.expr(c.Expr) + " as " + g.tsType(c.Type) + ")"
}

// --- Methods ---

// renamedMethods map to a TypeScript method of the same shape.
var renamedMethods = map[string]string{
	"push":         "push",
	"to_uppercase": "toUpperCase",
	"to_lowercase": "toLowerCase",
	"starts_with":  "startsWith",
	"ends_with":    "endsWith",
	"trim_start":   "trimStart",
	"trim_end":     "trimEnd",
	"replace":      "replaceAll",
	"any":          "some",
	"all":          "every",
	"for_each":     "forEach",
	"position":     "findIndex",
	"contains_key": "has",
	"push_str":     "concat",
}

// identityMethods vanish because the value already has the wanted shape.
var identityMethods = map[string]bool{
	"iter": true, "into_iter": true, "iter_mut": true, "as_str": true, "as_ref": true, "as_mut": true,
	"copied": true, "borrow": true, "borrow_mut": true, "lock": true, "read": true, "write": true,
	"collect": true, "into": true, "as_slice": true, "get_mut": true,
}

var mathMethods = map[string]string{
	"abs": "Math.abs", "sqrt": "Math.sqrt", "floor": "Math.floor", "ceil": "Math.ceil", "round": "Math.round",
	"trunc": "Math.trunc", "sin": "Math.sin", "cos": "Math.cos", "tan": "Math.tan", "ln": "Math.log",
	"log10": "Math.log10", "log2": "Math.log2", "exp": "Math.exp", "signum": "Math.sign", "cbrt": "Math.cbrt",
	"powi": "Math.pow", "powf": "Math.pow", "pow": "Math.pow", "min": "Math.min", "max": "Math.max",
	"atan2": "Math.atan2", "hypot": "Math.hypot",
}

func (g *generator) methodCall(m *ast.MethodCallExpr) string {
	if enum, ok := g.enumMethods[m.Method]; ok && (!isSelf(m.Receiver) || g.selfVar != "") {
		args := append([]string{g.expr(m.Receiver)}, g.exprs(m.Args)...)
		return enum + "." + ident(m.Method) + "(" + strings.Join(args, ", ") + ")"
	}

	recv := g.receiver(m.Receiver)
	args := g.exprs(m.Args)
	call := func(name string) string {
		return recv + "." + name + "(" + strings.Join(args, ", ") + ")"
	}
	if userMethod(g, m) {
		return call(ident(m.Method))
	}

	if identityMethods[m.Method] && len(args) == 0 {
		return recv
	}
	if name, ok := renamedMethods[m.Method]; ok {
		if m.Method == "push_str" {
			g.note("push_str builds a new string; assign the result")
		}
		return call(name)
	}
	if fn, ok := mathMethods[m.Method]; ok && len(args) <= 1 {
		return fn + "(" + strings.Join(append([]string{g.expr(m.Receiver)}, args...), ", ") + ")"
	}

	switch m.Method {
	case "len", "count":
		if len(args) == 0 {
			return recv + ".length"
		}
	case "is_empty":
		return "(" + recv + ".length === 0)"
	case "clone", "to_owned", "to_vec", "cloned":
		return "$clone(" + g.expr(m.Receiver) + ")"
	case "to_string":
		return "String(" + g.expr(m.Receiver) + ")"
	case "unwrap":
		return "$unwrap(" + g.expr(m.Receiver) + ")"
	case "expect":
		return "$unwrap(" + g.expr(m.Receiver) + ", " + strings.Join(args, ", ") + ")"
	case "unwrap_or":
		return "$unwrapOr(" + g.expr(m.Receiver) + ", " + strings.Join(args, ", ") + ")"
	case "is_some", "is_ok":
		return "$isOk(" + g.expr(m.Receiver) + ")"
	case "is_none", "is_err":
		return "!$isOk(" + g.expr(m.Receiver) + ")"
	case "get":
		if len(args) == 1 {
			return "$get(" + g.expr(m.Receiver) + ", " + args[0] + ")"
		}
	case "contains":
		if len(args) == 1 {
			return "$contains(" + g.expr(m.Receiver) + ", " + args[0] + ")"
		}
	case "insert":
		if len(args) == 2 {
			return call("set")
		}
		return call("add")
	case "remove":
		return call("delete")
	case "pop":
		return "(" + recv + ".pop() ?? null)"
	case "chars":
		return "[..." + g.expr(m.Receiver) + "]"
	case "keys", "values":
		return "[..." + recv + "." + m.Method + "()]"
	case "rev":
		return "[..." + g.expr(m.Receiver) + "].reverse()"
	case "enumerate":
		return "[..." + recv + ".entries()]"
	case "sum":
		return recv + ".reduce((a, b) => a + b, 0)"
	case "product":
		return recv + ".reduce((a, b) => a * b, 1)"
	case "fold":
		if len(args) == 2 {
			return recv + ".reduce(" + args[1] + ", " + args[0] + ")"
		}
	case "extend":
		if len(args) == 1 {
			return recv + ".push(..." + args[0] + ")"
		}
	case "sort", "sort_unstable":
		return recv + ".sort((a, b) => (a < b ? -1 : a > b ? 1 : 0))"
	case "trim":
		return call("trim")
	case "split_whitespace":
		return recv + ".trim().split(/\\s+/)"
	case "parse":
		return "Number(" + g.expr(m.Receiver) + ")"
	case "first":
		return "(" + recv + "[0] ?? null)"
	case "last":
		return "(" + recv + ".at(-1) ?? null)"
	case "join", "map", "filter", "find", "split", "some", "every", "includes":
		return call(m.Method)
	}
	return call(ident(m.Method))
}

// userMethod reports whether the receiver is a local aggregate with a method
// of that name, so builtin renaming must not apply.
func userMethod(g *generator, m *ast.MethodCallExpr) bool {
	if isSelf(m.Receiver) {
		for _, impl := range g.impls[g.tracker.Current()] {
			for _, fn := range impl.Methods {
				if fn.Name == m.Method {
					return true
				}
			}
		}
	}
	return false
}

// --- Constructors ---

func (g *generator) structInit(s *ast.StructInitExpr) string {
	name := g.tracker.ResolveSelf(s.Name)
	def, known := g.structs[name]
	if known && len(g.impls[name]) > 0 {
		if s.Base != nil {
			var fields []string
			for _, f := range s.Fields {
				fields = append(fields, ident(f.Name)+": "+g.expr(f.Value))
			}
			return "Object.assign($clone(" + g.expr(s.Base) + "), { " + strings.Join(fields, ", ") + " })"
		}
		values := make([]string, len(def.Fields))
		for i, f := range def.Fields {
			values[i] = "undefined"
			for _, init := range s.Fields {
				if init.Name == f.Name {
					values[i] = g.expr(init.Value)
				}
			}
		}
		return "new " + name + "(" + strings.Join(values, ", ") + ")"
	}

	var parts []string
	if s.Base != nil {
		parts = append(parts, "..."+g.expr(s.Base))
	}
	for _, f := range s.Fields {
		parts = append(parts, ident(f.Name)+": "+g.expr(f.Value))
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (g *generator) variant(v *ast.EnumVariantExpr) string {
	args := g.exprs(v.Args)
	if v.Enum == "" {
		switch v.Variant {
		case "Ok", "Err":
			value := "undefined"
			if len(args) > 0 {
				value = args[0]
			}
			return "$" + strings.ToLower(v.Variant) + "(" + value + ")"
		case "Some":
			if len(args) > 0 {
				return args[0]
			}
		case "None":
			return "null"
		}
	}

	enum := g.enums.Resolve(g.tracker.ResolveSelf(v.Enum), v.Variant)
	if enum == "" {
		return ident(v.Variant) + "(" + strings.Join(args, ", ") + ")"
	}
	ref := enum + "." + v.Variant
	if g.enums.IsNative(enum) {
		return ref
	}
	decl, ok := g.enums.Variant(enum, v.Variant)
	switch {
	case ok && decl.Kind == ast.UnitVariant:
		return ref
	case ok && decl.Kind == ast.RecordVariant:
		values := make([]string, len(decl.Fields))
		for i, f := range decl.Fields {
			values[i] = "undefined"
			for _, init := range v.Fields {
				if init.Name == f.Name {
					values[i] = g.expr(init.Value)
				}
			}
		}
		return ref + "(" + strings.Join(values, ", ") + ")"
	case len(args) == 0 && len(v.Fields) == 0:
		return ref
	}
	return ref + "(" + strings.Join(args, ", ") + ")"
}

func (g *generator) closure(c *ast.ClosureExpr) string {
	params := g.params(c.Params)
	head := "(" + params + ")"
	if c.ReturnType != nil {
		head += ": " + g.tsType(c.ReturnType)
	}
	body := lower.Unwrap(c.Body)
	if lower.IsPlain(body) {
		s := g.expr(body)
		if strings.HasPrefix(s, "{") {
			s = "(" + s + ")"
		}
		return head + " => " + s
	}
	saved := g.saveFunction()
	defer g.restoreFunction(saved)
	g.fnReturn = c.ReturnType
	g.inMain = false
	return head + " => " + g.capture(func() { g.bodyInto(c.Body, lower.Return, "") })
}

// --- Macros ---

func (g *generator) macro(m *ast.MacroExpr) string {
	switch m.Name {
	case "println", "print", "eprintln", "eprint":
		return g.printMacro(m)
	case "format":
		return g.format(m.Args)
	case "panic":
		if len(m.Args) == 0 {
			return "$panic('explicit panic')"
		}
		return "$panic(" + g.format(m.Args) + ")"
	case "unreachable", "todo", "unimplemented":
		return fmt.Sprintf("$panic('%s')", strings.ReplaceAll(m.Name, "_", " "))
	case "assert":
		if len(m.Args) > 0 {
			return "console.assert(" + g.expr(m.Args[0]) + ")"
		}
	case "assert_eq", "assert_ne":
		if len(m.Args) >= 2 {
			op := " === "
			if m.Name == "assert_ne" {
				op = " !== "
			}
			return "console.assert(" + g.operand(m.Args[0], lower.PrecCompare, false) + op + g.operand(m.Args[1], lower.PrecCompare, true) + ")"
		}
	case "vec":
		if len(m.Args) == 1 {
			if r, ok := m.Args[0].(*ast.ArrayRepeatExpr); ok {
				return "$repeat(" + g.expr(r.Value) + ", " + g.expr(r.Count) + ")"
			}
		}
		return "[" + strings.Join(g.exprs(m.Args), ", ") + "]"
	case "write", "writeln":
		if len(m.Args) >= 1 {
			text := g.format(m.Args[1:])
			if m.Name == "writeln" {
				text = g.format(m.Args[1:]) + " + '\\n'"
			}
			return g.receiver(m.Args[0]) + ".write(" + text + ")"
		}
	}
	if g.opts.Strict {
		return "undefined /* unsupported: " + m.Name + "! */"
	}
	g.note("passthrough: unknown macro " + m.Name)
	return m.Name + "!(" + m.Text + ")"
}

func (g *generator) printMacro(m *ast.MacroExpr) string {
	text := g.format(m.Args)
	if len(m.Args) == 0 {
		text = ""
	}
	stderr := strings.HasPrefix(m.Name, "e")
	newline := strings.HasSuffix(m.Name, "ln")
	if !newline && g.opts.Dialect == "node" {
		stream := "process.stdout"
		if stderr {
			stream = "process.stderr"
		}
		return stream + ".write(" + text + ")"
	}
	if stderr {
		return "console.error(" + text + ")"
	}
	return "console.log(" + text + ")"
}

// format renders a format macro argument list as a string expression.
func (g *generator) format(args []ast.Expr) string {
	call, ok := lower.SplitFormat(args)
	if !ok {
		return "String(" + strings.Join(g.exprs(args), ", ") + ")"
	}
	if len(call.Args) == 0 {
		var text strings.Builder
		for _, p := range call.Pieces {
			text.WriteString(p.Text)
		}
		return `"` + text.String() + `"`
	}
	values := g.exprs(call.Args)
	if g.opts.NoFormat {
		return templateLiteral(call, values)
	}
	var tmpl strings.Builder
	for _, p := range call.Pieces {
		if !p.Arg {
			tmpl.WriteString(strings.NewReplacer("{", "{{", "}", "}}").Replace(p.Text))
			continue
		}
		tmpl.WriteString("{")
		if p.Spec != "" {
			tmpl.WriteString(":" + p.Spec)
		}
		tmpl.WriteString("}")
	}
	return `$fmt("` + tmpl.String() + `", ` + strings.Join(values, ", ") + ")"
}

// templateLiteral interpolates values directly. Precision specs become
// toFixed calls and other specs are dropped.
func templateLiteral(call *lower.FormatCall, values []string) string {
	var b strings.Builder
	b.WriteString("`")
	next := 0
	for _, p := range call.Pieces {
		if !p.Arg {
			text := strings.ReplaceAll(p.Text, "`", "\\`")
			b.WriteString(strings.ReplaceAll(text, "${", "\\${"))
			continue
		}
		v := values[next]
		next++
		if i := strings.Index(p.Spec, "."); i >= 0 && isDigits(p.Spec[i+1:]) {
			v = "(" + v + ").toFixed(" + p.Spec[i+1:] + ")"
		}
		b.WriteString("${" + v + "}")
	}
	b.WriteString("`")
	return b.String()
}
