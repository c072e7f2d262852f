package cppbe

import (
	"strings"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/cppast"
	"github.com/lhaig/nu/internal/lower"
)

// --- Statements ---

func (g *generator) stmt(s ast.Stmt) []cppast.Stmt {
	var out []cppast.Stmt
	switch n := s.(type) {
	case *ast.LetStmt:
		out = g.let(n)
	case *ast.ExprStmt:
		if b, ok := n.Expr.(*ast.BlockExpr); ok {
			out = []cppast.Stmt{&cppast.Block{Body: g.blockInto(b, lower.Void, "")}}
		} else {
			out = g.into(n.Expr, lower.Void, "")
		}
	case *ast.ItemStmt:
		out = g.localItem(n.Item)
	case *ast.CommentStmt:
		out = []cppast.Stmt{&cppast.Comment{Text: n.Text}}
	case *ast.RawStmt:
		if g.opts.Strict {
			out = []cppast.Stmt{&cppast.Comment{Text: "unsupported: " + n.Text}}
		} else {
			out = []cppast.Stmt{&cppast.Comment{Text: "passthrough: unrecognized statement"}, &cppast.RawStmt{Text: n.Text}}
		}
	}
	return g.withNotes(out)
}

// withNotes prefixes stmts with the annotations queued while lowering them.
func (g *generator) withNotes(stmts []cppast.Stmt) []cppast.Stmt {
	if len(g.notes) == 0 {
		return stmts
	}
	out := make([]cppast.Stmt, 0, len(g.notes)+len(stmts))
	for _, n := range g.notes {
		out = append(out, &cppast.Comment{Text: n})
	}
	g.notes = nil
	return append(out, stmts...)
}

func (g *generator) blockInto(b *ast.BlockExpr, want lower.Want, dest string) []cppast.Stmt {
	if b == nil {
		return nil
	}
	var out []cppast.Stmt
	for _, s := range b.Stmts {
		out = append(out, g.mark(s)...)
		out = append(out, g.stmt(s)...)
	}
	if b.Tail != nil {
		out = append(out, g.mark(b.Tail)...)
		out = append(out, g.withNotes(g.into(b.Tail, want, dest))...)
	}
	return out
}

func (g *generator) mark(n ast.Node) []cppast.Stmt {
	if !g.opts.LineMarks {
		return nil
	}
	line, _ := n.Pos()
	return []cppast.Stmt{&cppast.Mark{Line: line}}
}

func (g *generator) let(l *ast.LetStmt) []cppast.Stmt {
	if l.Type != nil && g.locals != nil {
		g.locals[l.Name] = l.Type
	}
	name := ident(l.Name)
	if strings.HasPrefix(l.Name, "(") {
		name = "[" + strings.TrimSuffix(strings.TrimPrefix(l.Name, "("), ")") + "]"
	}
	if l.Value == nil {
		if l.Type == nil {
			g.note("declaration without type or initializer")
		}
		return []cppast.Stmt{&cppast.VarDecl{Name: name, Type: g.letType(l)}}
	}

	if try, ok := l.Value.(*ast.TryExpr); ok {
		stmts, value := g.tryUnwrap(try)
		return append(stmts, &cppast.VarDecl{Name: name, Type: g.letType(l), Init: value, Const: !l.IsMut})
	}

	if !lower.IsPlain(l.Value) && l.Type != nil {
		decl := &cppast.VarDecl{Name: name, Type: g.cppType(l.Type)}
		return append([]cppast.Stmt{decl}, g.into(l.Value, lower.Value, name)...)
	}
	return []cppast.Stmt{&cppast.VarDecl{Name: name, Type: g.letType(l), Init: g.expr(l.Value), Const: !l.IsMut}}
}

// localItem lowers an item declared inside a block. Nested functions become
// lambdas; other items are hoisted in front of the enclosing declaration.
func (g *generator) localItem(item ast.Item) []cppast.Stmt {
	fn, ok := item.(*ast.FunctionDef)
	if !ok {
		g.hoisted = append(g.hoisted, g.item(item)...)
		return nil
	}

	savedReturn, savedMain := g.fnReturn, g.inMain
	g.fnReturn, g.inMain = fn.ReturnType, false
	lambda := &cppast.Lambda{Mode: cppast.CaptureRef, Params: g.params(fn.Params), Body: g.body(fn)}
	if fn.ReturnType != nil {
		lambda.Return = g.cppType(fn.ReturnType)
	}
	g.fnReturn, g.inMain = savedReturn, savedMain
	return []cppast.Stmt{&cppast.VarDecl{Name: ident(fn.Name), Type: &cppast.Auto{}, Init: lambda, Const: true}}
}

// --- Result delivery ---

// into lowers e so that its result reaches the context described by want:
// discarded, assigned to dest, or returned.
func (g *generator) into(e ast.Expr, want lower.Want, dest string) []cppast.Stmt {
	switch n := e.(type) {
	case nil:
		return nil
	case *ast.BlockExpr:
		return g.blockInto(n, want, dest)
	case *ast.IfExpr:
		return []cppast.Stmt{g.ifInto(n, want, dest)}
	case *ast.MatchExpr:
		return g.matchInto(n, want, dest)
	case *ast.LoopExpr, *ast.WhileExpr, *ast.ForExpr:
		if want != lower.Void {
			g.note("loop used as a value; its result is discarded")
		}
		return []cppast.Stmt{g.loop(n)}
	case *ast.ReturnExpr:
		return g.ret(n)
	case *ast.BreakExpr:
		if n.Value != nil {
			g.note("break with a value is not supported")
		}
		return []cppast.Stmt{&cppast.Break{}}
	case *ast.ContinueExpr:
		return []cppast.Stmt{&cppast.Continue{}}
	case *ast.TryExpr:
		stmts, value := g.tryUnwrap(n)
		if want == lower.Void {
			return stmts
		}
		return append(stmts, g.deliver(value, want, dest)...)
	case *ast.Literal:
		if n.Kind == ast.UnitLit {
			if want == lower.Return {
				return g.ret(&ast.ReturnExpr{})
			}
			return nil
		}
	case *ast.MacroExpr:
		if isDiverging(n.Name) {
			return []cppast.Stmt{&cppast.ExprStmt{Expr: g.macro(n)}}
		}
	}
	return g.deliver(g.expr(e), want, dest)
}

func isDiverging(macro string) bool {
	switch macro {
	case "panic", "unreachable", "todo", "unimplemented":
		return true
	}
	return false
}

func (g *generator) deliver(v cppast.Expr, want lower.Want, dest string) []cppast.Stmt {
	switch want {
	case lower.Value:
		return []cppast.Stmt{&cppast.ExprStmt{Expr: &cppast.BinOp{Op: "=", Left: &cppast.Var{Name: dest}, Right: v}}}
	case lower.Return:
		return []cppast.Stmt{&cppast.Return{Value: v}}
	}
	return []cppast.Stmt{&cppast.ExprStmt{Expr: v}}
}

func (g *generator) ret(r *ast.ReturnExpr) []cppast.Stmt {
	if r.Value == nil {
		if g.inMain {
			return []cppast.Stmt{&cppast.Return{Value: &cppast.Literal{Text: "0"}}}
		}
		return []cppast.Stmt{&cppast.Return{}}
	}
	if !lower.IsPlain(r.Value) {
		return g.into(r.Value, lower.Return, "")
	}
	return []cppast.Stmt{&cppast.Return{Value: g.expr(r.Value)}}
}

func (g *generator) ifInto(n *ast.IfExpr, want lower.Want, dest string) *cppast.If {
	out := &cppast.If{Cond: g.expr(n.Cond), Then: g.blockInto(n.Then, want, dest)}
	switch e := n.Else.(type) {
	case *ast.IfExpr:
		out.Else = []cppast.Stmt{g.ifInto(e, want, dest)}
	case *ast.BlockExpr:
		out.Else = g.blockInto(e, want, dest)
	}
	return out
}

// tryUnwrap evaluates the operand of `expr!` into a temporary and returns
// early on failure. The second result reads the success value.
func (g *generator) tryUnwrap(t *ast.TryExpr) ([]cppast.Stmt, cppast.Expr) {
	tmp := g.temp("_t")
	v := &cppast.Var{Name: tmp}
	decl := &cppast.VarDecl{Name: tmp, Type: &cppast.Auto{}, Init: g.expr(t.Operand)}

	var failure []cppast.Stmt
	switch {
	case g.inMain:
		failure = []cppast.Stmt{&cppast.Return{Value: &cppast.Literal{Text: "1"}}}
	case g.fnReturn == nil:
		g.note("error propagated out of a function without a return type")
		failure = []cppast.Stmt{&cppast.Return{}}
	case g.returnsOption():
		failure = []cppast.Stmt{&cppast.Return{Value: &cppast.Var{Name: "std::nullopt"}}}
	default:
		failure = []cppast.Stmt{&cppast.Return{Value: &cppast.Call{
			Callee: &cppast.Var{Name: g.unexpected()},
			Args:   []cppast.Expr{&cppast.MethodCall{Object: v, Method: "error"}},
		}}}
	}
	check := &cppast.If{
		Cond: &cppast.UnaryOp{Op: "!", Operand: &cppast.MethodCall{Object: v, Method: "has_value"}},
		Then: failure,
	}
	return []cppast.Stmt{decl, check}, &cppast.UnaryOp{Op: "*", Operand: v}
}

// --- Loops ---

func (g *generator) loop(e ast.Expr) cppast.Stmt {
	switch n := e.(type) {
	case *ast.LoopExpr:
		return &cppast.While{Cond: &cppast.Literal{Text: "true"}, Body: g.blockInto(n.Body, lower.Void, "")}
	case *ast.WhileExpr:
		return &cppast.While{Cond: g.expr(n.Cond), Body: g.blockInto(n.Body, lower.Void, "")}
	case *ast.ForExpr:
		return g.forLoop(n)
	}
	return &cppast.RawStmt{Text: "/* unsupported loop */"}
}

func (g *generator) forLoop(n *ast.ForExpr) cppast.Stmt {
	body := g.blockInto(n.Body, lower.Void, "")

	if len(n.Names) == 1 {
		if r, ok := n.Iter.(*ast.RangeExpr); ok && r.End != nil {
			return g.countedLoop(ident(n.Names[0]), r, false, body)
		}
		if m, ok := n.Iter.(*ast.MethodCallExpr); ok && m.Method == "rev" {
			if r, ok := m.Receiver.(*ast.RangeExpr); ok && r.End != nil {
				return g.countedLoop(ident(n.Names[0]), r, true, body)
			}
		}
	}

	if len(n.Names) == 2 {
		if m, ok := n.Iter.(*ast.MethodCallExpr); ok && m.Method == "enumerate" {
			return &cppast.ForEnumerate{
				Index:      ident(n.Names[0]),
				Value:      ident(n.Names[1]),
				Collection: g.expr(iterSource(m.Receiver)),
				Body:       body,
			}
		}
	}

	name := ident(n.Names[0])
	if len(n.Names) > 1 {
		names := make([]string, len(n.Names))
		for i, nm := range n.Names {
			names[i] = ident(nm)
		}
		name = "[" + strings.Join(names, ", ") + "]"
	}
	elem := &cppast.Reference{Inner: &cppast.Auto{}, Const: true}
	if m, ok := n.Iter.(*ast.MethodCallExpr); ok && m.Method == "iter_mut" {
		elem.Const = false
	}
	return &cppast.ForRange{Var: name, Type: elem, Range: g.expr(iterSource(n.Iter)), Body: body}
}

func (g *generator) countedLoop(name string, r *ast.RangeExpr, reverse bool, body []cppast.Stmt) cppast.Stmt {
	v := &cppast.Var{Name: name}
	var start cppast.Expr = &cppast.Literal{Text: "0"}
	if r.Start != nil {
		start = g.expr(r.Start)
	}
	end := g.expr(r.End)

	if reverse {
		first := end
		if !r.Inclusive {
			first = &cppast.BinOp{Op: "-", Left: end, Right: &cppast.Literal{Text: "1"}}
		}
		return &cppast.For{
			Init:   &cppast.VarDecl{Name: name, Type: &cppast.Auto{}, Init: first},
			Cond:   &cppast.BinOp{Op: ">=", Left: v, Right: start},
			Update: &cppast.UnaryOp{Op: "--", Operand: v, Postfix: true},
			Body:   body,
		}
	}
	op := "<"
	if r.Inclusive {
		op = "<="
	}
	return &cppast.For{
		Init:   &cppast.VarDecl{Name: name, Type: &cppast.Auto{}, Init: start},
		Cond:   &cppast.BinOp{Op: op, Left: v, Right: end},
		Update: &cppast.UnaryOp{Op: "++", Operand: v, Postfix: true},
		Body:   body,
	}
}

// iterSource strips adapters that only borrow a collection for iteration.
func iterSource(e ast.Expr) ast.Expr {
	for {
		m, ok := e.(*ast.MethodCallExpr)
		if !ok || len(m.Args) > 0 {
			return e
		}
		switch m.Method {
		case "iter", "iter_mut", "into_iter", "chars":
			e = m.Receiver
		default:
			return e
		}
	}
}

// --- Match ---

// matchInto lowers m as an if/else-if chain over a temporary holding the
// scrutinee, or as a switch when every arm is a flat comparison.
func (g *generator) matchInto(m *ast.MatchExpr, want lower.Want, dest string) []cppast.Stmt {
	plan := g.planner.PlanMatch(m, want)
	if plan.UseSwitch {
		return g.switchInto(plan, dest)
	}
	if held, ok := g.heldEnum(plan.Scrutinee); ok && g.matched != nil {
		g.matched[plan.Temp] = held
	}

	out := []cppast.Stmt{&cppast.VarDecl{
		Name: plan.Temp,
		Type: &cppast.Reference{Inner: &cppast.Auto{}, Const: true},
		Init: g.expr(plan.Scrutinee),
	}}

	var tail *[]cppast.Stmt
	for i, arm := range plan.Arms {
		cond := g.condition(plan.Temp, arm)
		body := g.armBody(plan, arm, dest)
		last := i == len(plan.Arms)-1

		if cond == nil && last {
			if tail == nil {
				out = append(out, &cppast.Block{Body: body})
			} else {
				*tail = body
			}
			break
		}
		if cond == nil {
			cond = &cppast.Literal{Text: "true"}
		}
		node := &cppast.If{Cond: cond, Then: body}
		if tail == nil {
			out = append(out, node)
		} else {
			*tail = []cppast.Stmt{node}
		}
		tail = &node.Else
	}

	if want == lower.Return && !plan.HasDefault() {
		out = append(out, noMatch())
	}
	return out
}

func noMatch() cppast.Stmt {
	return &cppast.ExprStmt{Expr: &cppast.UnaryOp{Op: "throw ", Operand: &cppast.Call{
		Callee: &cppast.Var{Name: "std::logic_error"},
		Args:   []cppast.Expr{&cppast.Literal{Text: `"no match arm applies"`}},
	}}}
}

func (g *generator) switchInto(plan *lower.MatchPlan, dest string) []cppast.Stmt {
	sw := &cppast.Switch{Expr: g.expr(plan.Scrutinee)}
	for _, arm := range plan.Arms {
		body := g.into(arm.Body, plan.Want, dest)
		if arm.Cond.Kind == lower.CondTrue {
			sw.Default = body
			sw.HasDefault = true
			continue
		}
		c := cppast.Case{Body: body}
		if arm.Cond.Kind == lower.CondVariant {
			c.Values = []cppast.Expr{&cppast.Var{Name: arm.Cond.Enum + "::" + arm.Cond.Variant}}
		} else {
			for _, lit := range arm.Cond.Literals {
				c.Values = append(c.Values, g.literal(lit))
			}
		}
		sw.Cases = append(sw.Cases, c)
	}
	out := []cppast.Stmt{sw}
	if plan.Want == lower.Return && !sw.HasDefault {
		out = append(out, noMatch())
	}
	return out
}

// condition compiles an arm's test; nil means the arm always applies.
func (g *generator) condition(temp string, arm lower.ArmPlan) cppast.Expr {
	t := &cppast.Var{Name: temp}
	hasValue := &cppast.MethodCall{Object: t, Method: "has_value"}

	var c cppast.Expr
	switch arm.Cond.Kind {
	case lower.CondOk, lower.CondSome:
		c = hasValue
	case lower.CondErr, lower.CondNone:
		c = &cppast.UnaryOp{Op: "!", Operand: hasValue}
	case lower.CondVariant:
		if arm.Cond.Native {
			c = &cppast.BinOp{Op: "==", Left: t, Right: &cppast.Var{Name: arm.Cond.Enum + "::" + arm.Cond.Variant}}
		} else {
			c = &cppast.Call{Callee: &cppast.Var{Name: "std::holds_alternative<" + g.alternative(temp, arm.Cond) + ">"}, Args: []cppast.Expr{t}}
		}
	case lower.CondLiteral:
		for _, lit := range arm.Cond.Literals {
			eq := &cppast.BinOp{Op: "==", Left: t, Right: g.literal(lit)}
			if c == nil {
				c = eq
			} else {
				c = &cppast.BinOp{Op: "||", Left: c, Right: eq}
			}
		}
	case lower.CondRaw:
		if g.opts.Strict {
			g.note("unsupported pattern: " + arm.Cond.Raw)
			c = &cppast.Literal{Text: "false"}
		} else {
			g.note("passthrough: unrecognized pattern")
			c = &cppast.RawExpr{Text: arm.Cond.Raw}
		}
	}

	if arm.Guard != nil {
		guard := g.withBindings(temp, arm, func() cppast.Expr { return g.expr(arm.Guard) })
		if c == nil {
			c = guard
		} else {
			c = &cppast.BinOp{Op: "&&", Left: c, Right: guard}
		}
	}
	return c
}

// withBindings lowers a guard with each bound name replaced by the
// expression that extracts it, since bindings are declared only in the body.
func (g *generator) withBindings(temp string, arm lower.ArmPlan, f func() cppast.Expr) cppast.Expr {
	saved := g.subst
	g.subst = make(map[string]cppast.Expr, len(saved)+len(arm.Bindings))
	for k, v := range saved {
		g.subst[k] = v
	}
	for _, b := range arm.Bindings {
		g.subst[b.Name] = g.extract(temp, arm.Cond, b)
	}
	defer func() { g.subst = saved }()
	return f()
}

func (g *generator) extract(temp string, cond lower.Condition, b lower.Binding) cppast.Expr {
	t := &cppast.Var{Name: temp}
	switch {
	case b.Whole:
		return t
	case cond.Kind == lower.CondErr:
		return &cppast.MethodCall{Object: t, Method: "error"}
	case cond.Kind == lower.CondOk || cond.Kind == lower.CondSome:
		return &cppast.UnaryOp{Op: "*", Operand: t}
	}
	get := &cppast.Call{Callee: &cppast.Var{Name: "std::get<" + g.alternative(temp, cond) + ">"}, Args: []cppast.Expr{t}}
	return &cppast.MemberAccess{Object: get, Member: ident(b.Field)}
}

// matchedEnum is a generic payload enum instantiation, with its template
// arguments spelled as in `<int32_t>`.
type matchedEnum struct {
	enum string
	args string
}

// heldEnum reports the generic enum instantiation a scrutinee holds, when it
// is a local whose declared type names one.
func (g *generator) heldEnum(e ast.Expr) (matchedEnum, bool) {
	id, ok := e.(*ast.Ident)
	if !ok {
		return matchedEnum{}, false
	}
	t := g.locals[id.Name]
	for {
		ref, isRef := t.(*ast.ReferenceType)
		if !isRef {
			break
		}
		t = ref.Inner
	}
	gt, ok := t.(*ast.GenericType)
	if !ok {
		return matchedEnum{}, false
	}
	def, ok := g.enums.Lookup(gt.Base)
	if !ok || len(gt.Args) == 0 || len(genericNames(def.Generics)) != len(gt.Args) {
		return matchedEnum{}, false
	}
	args := make([]string, len(gt.Args))
	for i, a := range gt.Args {
		args[i] = cppast.TypeString(g.cppType(a))
	}
	return matchedEnum{enum: gt.Base, args: "<" + strings.Join(args, ", ") + ">"}, true
}

// alternative names the variant struct a condition tests for.
func (g *generator) alternative(temp string, cond lower.Condition) string {
	if held, ok := g.matched[temp]; ok && held.enum == cond.Enum {
		return cond.Variant + held.args
	}
	return cond.Variant
}

func (g *generator) armBody(plan *lower.MatchPlan, arm lower.ArmPlan, dest string) []cppast.Stmt {
	var out []cppast.Stmt
	for _, b := range arm.Bindings {
		out = append(out, &cppast.VarDecl{
			Name: ident(b.Name),
			Type: &cppast.Reference{Inner: &cppast.Auto{}, Const: true},
			Init: g.extract(plan.Temp, arm.Cond, b),
		})
	}
	return append(out, g.withNotes(g.into(arm.Body, plan.Want, dest))...)
}
