package cppbe

import (
	"strconv"
	"strings"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/cppast"
	"github.com/lhaig/nu/internal/lower"
	"github.com/lhaig/nu/internal/typemap"
)

// --- Expressions ---

func (g *generator) expr(e ast.Expr) cppast.Expr {
	switch n := e.(type) {
	case nil:
		return &cppast.RawExpr{}
	case *ast.Literal:
		return g.literal(n)
	case *ast.Ident:
		if sub, ok := g.subst[n.Name]; ok {
			return sub
		}
		if n.Name == "self" {
			return g.self()
		}
		return &cppast.Var{Name: ident(n.Name)}
	case *ast.PathExpr:
		return g.path(n.Segments)
	case *ast.CallExpr:
		return g.call(n)
	case *ast.MethodCallExpr:
		return g.methodCall(n)
	case *ast.FieldExpr:
		return g.field(n)
	case *ast.IndexExpr:
		if r, ok := n.Index.(*ast.RangeExpr); ok {
			return g.slice(g.expr(n.Object), r)
		}
		return &cppast.Index{Object: g.expr(n.Object), Index: g.expr(n.Index)}
	case *ast.UnaryExpr:
		if n.Op == "&" || n.Op == "&mut" {
			return g.expr(n.Operand)
		}
		return &cppast.UnaryOp{Op: n.Op, Operand: g.expr(n.Operand)}
	case *ast.BinaryExpr:
		return &cppast.BinOp{Op: n.Op, Left: g.expr(n.Left), Right: g.expr(n.Right)}
	case *ast.IfExpr:
		if lower.IsPlain(n) {
			return &cppast.Ternary{Cond: g.expr(n.Cond), Then: g.expr(lower.Unwrap(n.Then)), Else: g.expr(lower.Unwrap(n.Else))}
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
		g.note("nested try unwraps with value(), which throws on failure")
		return &cppast.MethodCall{Object: g.expr(n.Operand), Method: "value"}
	case *ast.AwaitExpr:
		return &cppast.MethodCall{Object: g.expr(n.Operand), Method: "get"}
	case *ast.ClosureExpr:
		return g.closure(n)
	case *ast.StructInitExpr:
		return g.structInit(n)
	case *ast.EnumVariantExpr:
		return g.variant(n)
	case *ast.MacroExpr:
		return g.macro(n)
	case *ast.TupleExpr:
		return &cppast.Call{Callee: &cppast.Var{Name: "std::make_tuple"}, Args: g.exprs(n.Elems)}
	case *ast.ArrayExpr:
		if len(n.Elems) == 0 {
			return &cppast.BraceInit{}
		}
		return &cppast.BraceInit{Type: &cppast.Named{Name: "std::array"}, Fields: positional(g.exprs(n.Elems))}
	case *ast.ArrayRepeatExpr:
		return &cppast.Call{Callee: &cppast.Var{Name: "nu::repeat"}, Args: []cppast.Expr{g.expr(n.Count), g.expr(n.Value)}}
	case *ast.RangeExpr:
		return g.rangeValue(n)
	case *ast.CastExpr:
		return &cppast.Cast{Kind: "static_cast", Target: g.cppType(n.Type), Expr: g.expr(n.Expr)}
	case *ast.RawExpr:
		return g.rawExpr(n.Text)
	}
	return g.rawExpr("/* unsupported expression */")
}

func (g *generator) exprs(es []ast.Expr) []cppast.Expr {
	out := make([]cppast.Expr, len(es))
	for i, e := range es {
		out[i] = g.expr(e)
	}
	return out
}

func positional(values []cppast.Expr) []cppast.FieldInit {
	out := make([]cppast.FieldInit, len(values))
	for i, v := range values {
		out[i] = cppast.FieldInit{Value: v}
	}
	return out
}

// iife evaluates a statement-shaped expression inside an immediately
// invoked lambda.
func (g *generator) iife(e ast.Expr) cppast.Expr {
	if lower.Returns(e) {
		g.note("return inside a value expression exits only the enclosing lambda")
	}
	if lower.BreaksOut(e) {
		g.note("break or continue inside a value expression is not supported")
	}
	body := g.withNotes(g.into(e, lower.Return, ""))
	return &cppast.Call{Callee: &cppast.Lambda{Mode: cppast.CaptureRef, Body: body}}
}

func (g *generator) self() cppast.Expr {
	if g.selfVar != "" {
		return &cppast.Var{Name: g.selfVar}
	}
	return &cppast.UnaryOp{Op: "*", Operand: &cppast.This{}}
}

func isSelf(e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == "self"
}

func (g *generator) rawExpr(text string) cppast.Expr {
	if g.opts.Strict {
		return &cppast.Literal{Text: "/* unsupported: " + strings.ReplaceAll(text, "*/", "* /") + " */"}
	}
	g.note("passthrough: unrecognized expression")
	return &cppast.RawExpr{Text: text}
}

// --- Literals ---

func (g *generator) literal(l *ast.Literal) cppast.Expr {
	switch l.Kind {
	case ast.IntLit:
		v := strings.ReplaceAll(l.Value, "_", "")
		if strings.HasPrefix(v, "0o") {
			v = "0" + v[2:]
		}
		return &cppast.Literal{Text: v}
	case ast.FloatLit:
		v := strings.ReplaceAll(l.Value, "_", "")
		if !strings.ContainsAny(v, ".eE") {
			v += ".0"
		}
		if l.Suffix == "f32" {
			v += "f"
		}
		return &cppast.Literal{Text: v}
	case ast.StringLit:
		if strings.HasPrefix(l.Value, "r") {
			body := strings.TrimLeft(l.Value[1:], "#")
			body = strings.TrimRight(body, "#")
			return &cppast.Literal{Text: `R"(` + body[1:len(body)-1] + `)"`}
		}
		return &cppast.Literal{Text: l.Value}
	case ast.CharLit:
		return &cppast.Literal{Text: "U" + l.Value}
	case ast.UnitLit:
		return &cppast.BraceInit{}
	}
	return &cppast.Literal{Text: l.Value}
}

// --- Paths and calls ---

func (g *generator) path(segs []string) cppast.Expr {
	if len(segs) == 2 && typemap.IsPrimitive(segs[0]) && (segs[1] == "MAX" || segs[1] == "MIN") {
		spelled, _ := typemap.Lookup(typemap.Cpp, segs[0])
		fn := "max"
		if segs[1] == "MIN" {
			fn = "lowest"
		}
		return &cppast.Call{Callee: &cppast.Var{Name: "std::numeric_limits<" + spelled + ">::" + fn}}
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
	return &cppast.Var{Name: strings.Join(out, "::")}
}

func (g *generator) call(c *ast.CallExpr) cppast.Expr {
	args := g.exprs(c.Args)
	p, ok := c.Func.(*ast.PathExpr)
	if !ok || len(p.Segments) != 2 {
		return &cppast.Call{Callee: g.expr(c.Func), Args: args}
	}

	switch typemap.Canonical(p.Segments[0]) + "::" + p.Segments[1] {
	case "String::new", "String::from":
		return &cppast.Call{Callee: &cppast.Var{Name: "std::string"}, Args: args}
	case "Vec::new", "Vec::with_capacity", "HashMap::new", "HashSet::new", "BTreeMap::new", "BTreeSet::new":
		return &cppast.BraceInit{}
	case "Box::new":
		return &cppast.Call{Callee: &cppast.Var{Name: "nu::make_box"}, Args: args}
	case "Rc::new", "Arc::new":
		return &cppast.Call{Callee: &cppast.Var{Name: "nu::make_shared"}, Args: args}
	case "Mutex::new":
		return &cppast.BraceInit{Type: &cppast.Named{Name: "nu::Mutex"}, Fields: positional(args)}
	case "RefCell::new":
		return &cppast.BraceInit{Type: &cppast.Named{Name: "nu::RefCell"}, Fields: positional(args)}
	}
	return &cppast.Call{Callee: g.path(p.Segments), Args: args}
}

func (g *generator) field(f *ast.FieldExpr) cppast.Expr {
	tupleIndex := isDigits(f.Field)
	if isSelf(f.Object) {
		name := ident(f.Field)
		if tupleIndex {
			i, _ := strconv.Atoi(f.Field)
			name = lower.PositionalField(i)
		}
		if g.selfVar != "" {
			return &cppast.MemberAccess{Object: &cppast.Var{Name: g.selfVar}, Member: name}
		}
		return &cppast.ArrowAccess{Object: &cppast.This{}, Member: name}
	}
	obj := g.expr(f.Object)
	if tupleIndex {
		return &cppast.Call{Callee: &cppast.Var{Name: "std::get<" + f.Field + ">"}, Args: []cppast.Expr{obj}}
	}
	return &cppast.MemberAccess{Object: obj, Member: ident(f.Field)}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func (g *generator) slice(obj cppast.Expr, r *ast.RangeExpr) cppast.Expr {
	var start cppast.Expr = &cppast.Literal{Text: "0"}
	if r.Start != nil {
		start = g.expr(r.Start)
	}
	var end cppast.Expr = &cppast.MethodCall{Object: obj, Method: "size"}
	if r.End != nil {
		end = g.expr(r.End)
		if r.Inclusive {
			end = &cppast.BinOp{Op: "+", Left: end, Right: &cppast.Literal{Text: "1"}}
		}
	}
	return &cppast.Call{Callee: &cppast.Var{Name: "nu::slice"}, Args: []cppast.Expr{obj, start, end}}
}

func (g *generator) rangeValue(r *ast.RangeExpr) cppast.Expr {
	var start cppast.Expr = &cppast.Literal{Text: "0"}
	if r.Start != nil {
		start = g.expr(r.Start)
	}
	if r.End == nil {
		g.note("open-ended range has no C++ counterpart")
		return &cppast.Literal{Text: "/* unbounded range */"}
	}
	args := []cppast.Expr{start, g.expr(r.End)}
	if r.Inclusive {
		args = append(args, &cppast.Literal{Text: "true"})
	}
	return &cppast.Call{Callee: &cppast.Var{Name: "nu::range"}, Args: args}
}

// --- Methods ---

var renamedMethods = map[string]string{
	"len":        "size",
	"push":       "push_back",
	"push_str":   "append",
	"is_empty":   "empty",
	"unwrap":     "value",
	"unwrap_or":  "value_or",
	"is_some":    "has_value",
	"is_ok":      "has_value",
	"to_vec":     "",
	"clone":      "",
	"to_owned":   "",
	"as_str":     "",
	"as_ref":     "",
	"iter":       "",
	"into_iter":  "",
	"copied":     "",
	"cloned":     "",
	"borrow_mut": "borrow_mut",
}

var mathFunctions = map[string]string{
	"abs": "std::abs", "sqrt": "std::sqrt", "sin": "std::sin", "cos": "std::cos", "tan": "std::tan",
	"floor": "std::floor", "ceil": "std::ceil", "round": "std::round", "exp": "std::exp", "ln": "std::log",
	"powi": "std::pow", "powf": "std::pow",
}

// methodCall maps standard library methods onto their C++ spelling. Unknown
// methods are called by name.
func (g *generator) methodCall(m *ast.MethodCallExpr) cppast.Expr {
	args := g.exprs(m.Args)
	onSelf := isSelf(m.Receiver) && g.selfVar == ""
	var obj cppast.Expr
	if onSelf {
		obj = &cppast.This{}
	} else {
		obj = g.expr(m.Receiver)
	}
	call := func(method string, args ...cppast.Expr) cppast.Expr {
		return &cppast.MethodCall{Object: obj, Method: method, Args: args, Arrow: onSelf}
	}
	free := func(name string) cppast.Expr {
		if onSelf {
			obj = &cppast.UnaryOp{Op: "*", Operand: obj}
		}
		return &cppast.Call{Callee: &cppast.Var{Name: name}, Args: append([]cppast.Expr{obj}, args...)}
	}

	if fn, ok := mathFunctions[m.Method]; ok {
		return free(fn)
	}
	if renamed, ok := renamedMethods[m.Method]; ok {
		if renamed == "" {
			if onSelf {
				return &cppast.UnaryOp{Op: "*", Operand: obj}
			}
			return obj
		}
		return call(renamed, args...)
	}

	switch m.Method {
	case "is_none", "is_err":
		return &cppast.UnaryOp{Op: "!", Operand: call("has_value")}
	case "insert":
		if len(args) == 2 {
			return call("insert_or_assign", args...)
		}
	case "min", "max":
		if len(args) == 1 {
			return free("std::" + m.Method)
		}
	case "pop":
		return free("nu::pop")
	case "contains":
		return free("nu::contains")
	case "to_string":
		return free("nu::to_string")
	case "expect":
		return free("nu::expect")
	}

	method := ident(m.Method)
	if m.Turbofish != "" {
		method += "<" + g.typeList(m.Turbofish) + ">"
	}
	return call(method, args...)
}

// --- Constructors ---

func (g *generator) structInit(s *ast.StructInitExpr) cppast.Expr {
	name := g.tracker.ResolveSelf(s.Name)
	fields := g.fieldInits(name, s.Fields)
	if s.Base == nil {
		return &cppast.BraceInit{Type: &cppast.Named{Name: name}, Fields: fields}
	}

	// Functional update: copy the base, then overwrite the listed fields.
	tmp := &cppast.Var{Name: "_base"}
	body := []cppast.Stmt{&cppast.VarDecl{Name: tmp.Name, Type: &cppast.Named{Name: name}, Init: g.expr(s.Base)}}
	for _, f := range fields {
		body = append(body, &cppast.ExprStmt{Expr: &cppast.BinOp{
			Op: "=", Left: &cppast.MemberAccess{Object: tmp, Member: f.Name}, Right: f.Value,
		}})
	}
	body = append(body, &cppast.Return{Value: tmp})
	return &cppast.Call{Callee: &cppast.Lambda{Mode: cppast.CaptureRef, Body: body}}
}

// fieldInits orders designated initializers as the struct declares them.
func (g *generator) fieldInits(name string, inits []*ast.FieldInit) []cppast.FieldInit {
	byName := make(map[string]ast.Expr, len(inits))
	for _, f := range inits {
		byName[f.Name] = f.Value
	}
	var order []string
	if def, ok := g.structs[name]; ok {
		for _, f := range def.Fields {
			order = append(order, f.Name)
		}
	}
	out := make([]cppast.FieldInit, 0, len(inits))
	seen := make(map[string]bool, len(inits))
	for _, n := range order {
		if v, ok := byName[n]; ok {
			out = append(out, cppast.FieldInit{Name: ident(n), Value: g.expr(v)})
			seen[n] = true
		}
	}
	for _, f := range inits {
		if !seen[f.Name] {
			out = append(out, cppast.FieldInit{Name: ident(f.Name), Value: g.expr(f.Value)})
		}
	}
	return out
}

func (g *generator) variant(v *ast.EnumVariantExpr) cppast.Expr {
	args := g.exprs(v.Args)
	if v.Enum == "" {
		switch v.Variant {
		case "Ok":
			if len(args) == 0 {
				return &cppast.BraceInit{}
			}
			return args[0]
		case "Err":
			return &cppast.Call{Callee: &cppast.Var{Name: g.unexpected()}, Args: args}
		case "Some":
			return &cppast.Call{Callee: &cppast.Var{Name: "std::make_optional"}, Args: args}
		case "None":
			return &cppast.Var{Name: "std::nullopt"}
		}
	}

	enum := g.enums.Resolve(g.tracker.ResolveSelf(v.Enum), v.Variant)
	if _, known := g.enums.Lookup(enum); !known {
		callee := &cppast.Var{Name: enum + "::" + v.Variant}
		if len(args) == 0 && len(v.Fields) == 0 {
			return callee
		}
		return &cppast.Call{Callee: callee, Args: args}
	}
	if g.enums.IsNative(enum) {
		return &cppast.Var{Name: enum + "::" + v.Variant}
	}
	if len(v.Fields) > 0 {
		return &cppast.BraceInit{Type: &cppast.Named{Name: v.Variant}, Fields: g.variantFields(enum, v)}
	}
	return &cppast.BraceInit{Type: &cppast.Named{Name: v.Variant}, Fields: positional(args)}
}

func (g *generator) variantFields(enum string, v *ast.EnumVariantExpr) []cppast.FieldInit {
	decl, ok := g.enums.Variant(enum, v.Variant)
	if !ok {
		out := make([]cppast.FieldInit, len(v.Fields))
		for i, f := range v.Fields {
			out[i] = cppast.FieldInit{Name: ident(f.Name), Value: g.expr(f.Value)}
		}
		return out
	}
	byName := make(map[string]ast.Expr, len(v.Fields))
	for _, f := range v.Fields {
		byName[f.Name] = f.Value
	}
	var out []cppast.FieldInit
	for _, f := range decl.Fields {
		if val, ok := byName[f.Name]; ok {
			out = append(out, cppast.FieldInit{Name: ident(f.Name), Value: g.expr(val)})
		}
	}
	return out
}

func (g *generator) closure(c *ast.ClosureExpr) cppast.Expr {
	lambda := &cppast.Lambda{Mode: cppast.CaptureRef, Params: g.params(c.Params)}
	if c.IsMove {
		lambda.Mode = cppast.CaptureCopy
	}
	if c.ReturnType != nil {
		lambda.Return = g.cppType(c.ReturnType)
	}
	body := lower.Unwrap(c.Body)
	if lower.IsPlain(body) {
		lambda.Body = []cppast.Stmt{&cppast.Return{Value: g.expr(body)}}
	} else {
		lambda.Body = g.withNotes(g.into(c.Body, lower.Return, ""))
	}
	return lambda
}

// --- Macros ---

func (g *generator) macro(m *ast.MacroExpr) cppast.Expr {
	switch m.Name {
	case "println", "print", "eprintln", "eprint":
		return g.printMacro(m)
	case "format":
		return g.format(m.Args)
	case "panic":
		msg := cppast.Expr(&cppast.Literal{Text: `"explicit panic"`})
		if len(m.Args) > 0 {
			msg = g.format(m.Args)
		}
		return throw("std::runtime_error", msg)
	case "unreachable", "todo", "unimplemented":
		return throw("std::logic_error", &cppast.Literal{Text: `"` + m.Name + `"`})
	case "assert":
		if len(m.Args) > 0 {
			return &cppast.Call{Callee: &cppast.Var{Name: "assert"}, Args: []cppast.Expr{g.expr(m.Args[0])}}
		}
	case "assert_eq", "assert_ne":
		if len(m.Args) >= 2 {
			op := "=="
			if m.Name == "assert_ne" {
				op = "!="
			}
			cmp := &cppast.BinOp{Op: op, Left: g.expr(m.Args[0]), Right: g.expr(m.Args[1])}
			return &cppast.Call{Callee: &cppast.Var{Name: "assert"}, Args: []cppast.Expr{cmp}}
		}
	case "vec":
		if len(m.Args) == 1 {
			if rep, ok := m.Args[0].(*ast.ArrayRepeatExpr); ok {
				return &cppast.Call{Callee: &cppast.Var{Name: "std::vector"}, Args: []cppast.Expr{g.expr(rep.Count), g.expr(rep.Value)}}
			}
		}
		if len(m.Args) == 0 {
			return &cppast.BraceInit{}
		}
		return &cppast.BraceInit{Type: &cppast.Named{Name: "std::vector"}, Fields: positional(g.exprs(m.Args))}
	case "write", "writeln":
		if len(m.Args) > 0 {
			return &cppast.BinOp{Op: "<<", Left: g.expr(m.Args[0]), Right: g.format(m.Args[1:])}
		}
	}
	if g.opts.Strict {
		return &cppast.Literal{Text: "/* unsupported macro: " + m.Name + "! */"}
	}
	g.note("passthrough: unrecognized macro " + m.Name + "!")
	return &cppast.RawExpr{Text: m.Name + "!(" + m.Text + ")"}
}

// typeList respells a comma-separated list of simple type names.
func (g *generator) typeList(list string) string {
	parts := strings.Split(list, ",")
	for i, p := range parts {
		parts[i] = cppast.TypeString(g.namedType(strings.TrimSpace(p)))
	}
	return strings.Join(parts, ", ")
}

func throw(exception string, msg cppast.Expr) cppast.Expr {
	return &cppast.UnaryOp{Op: "throw ", Operand: &cppast.Call{Callee: &cppast.Var{Name: exception}, Args: []cppast.Expr{msg}}}
}

// format builds a std::string from format macro arguments, or a stream
// concatenation when std::format is disabled.
func (g *generator) format(args []ast.Expr) cppast.Expr {
	call, ok := lower.SplitFormat(args)
	if !ok {
		return &cppast.Call{Callee: &cppast.Var{Name: "nu::concat"}, Args: g.exprs(args)}
	}
	if g.opts.NoFormat {
		return &cppast.Call{Callee: &cppast.Var{Name: "nu::concat"}, Args: g.pieces(call)}
	}
	if len(call.Args) == 0 {
		return &cppast.Call{Callee: &cppast.Var{Name: "std::string"}, Args: []cppast.Expr{plainString(call)}}
	}
	return &cppast.Call{Callee: &cppast.Var{Name: "std::format"}, Args: append([]cppast.Expr{formatString(call)}, g.exprs(call.Args)...)}
}

// formatString rebuilds the literal with every placeholder positional.
func formatString(call *lower.FormatCall) cppast.Expr {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, p := range call.Pieces {
		if !p.Arg {
			sb.WriteString(strings.NewReplacer("{", "{{", "}", "}}").Replace(p.Text))
			continue
		}
		sb.WriteByte('{')
		if p.Spec != "" {
			sb.WriteString(":" + p.Spec)
		}
		sb.WriteByte('}')
	}
	sb.WriteByte('"')
	return &cppast.Literal{Text: sb.String()}
}

// plainString joins the literal text of a call without placeholders.
func plainString(call *lower.FormatCall) cppast.Expr {
	var sb strings.Builder
	for _, p := range call.Pieces {
		sb.WriteString(p.Text)
	}
	return &cppast.Literal{Text: `"` + sb.String() + `"`}
}

// pieces interleaves literal text and argument values in output order.
func (g *generator) pieces(call *lower.FormatCall) []cppast.Expr {
	var out []cppast.Expr
	arg := 0
	for _, p := range call.Pieces {
		if !p.Arg {
			out = append(out, &cppast.Literal{Text: `"` + p.Text + `"`})
			continue
		}
		out = append(out, g.expr(call.Args[arg]))
		arg++
	}
	return out
}

func (g *generator) printMacro(m *ast.MacroExpr) cppast.Expr {
	newline := strings.HasSuffix(m.Name, "ln")
	stderr := strings.HasPrefix(m.Name, "e")
	call, ok := lower.SplitFormat(m.Args)

	if g.opts.Cpp23 && !g.opts.NoFormat && ok {
		fn := "std::print"
		if newline {
			fn = "std::println"
		}
		var args []cppast.Expr
		if stderr {
			args = append(args, &cppast.Var{Name: "stderr"})
		}
		args = append(args, formatString(call))
		return &cppast.Call{Callee: &cppast.Var{Name: fn}, Args: append(args, g.exprs(call.Args)...)}
	}

	stream := "std::cout"
	if stderr {
		stream = "std::cerr"
	}
	var parts []cppast.Expr
	switch {
	case !ok:
		parts = g.exprs(m.Args)
	case g.opts.NoFormat:
		parts = g.pieces(call)
	case len(call.Pieces) > 0:
		parts = []cppast.Expr{g.format(m.Args)}
	}
	var out cppast.Expr = &cppast.Var{Name: stream}
	for _, p := range parts {
		out = &cppast.BinOp{Op: "<<", Left: out, Right: p}
	}
	if newline {
		out = &cppast.BinOp{Op: "<<", Left: out, Right: &cppast.Var{Name: "std::endl"}}
	}
	return out
}
