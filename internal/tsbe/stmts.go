package tsbe

import (
	"strings"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/lower"
)

// --- Statements ---

func (g *generator) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		g.let(n)
	case *ast.ExprStmt:
		if b, ok := n.Expr.(*ast.BlockExpr); ok {
			g.emitLine("{")
			g.incIndent()
			g.blockInto(b, lower.Void, "")
			g.decIndent()
			g.emitLine("}")
			return
		}
		g.into(n.Expr, lower.Void, "")
	case *ast.ItemStmt:
		g.localItem(n.Item)
	case *ast.CommentStmt:
		g.comment(n.Text)
	case *ast.RawStmt:
		if g.opts.Strict {
			g.comment("unsupported: " + n.Text)
			return
		}
		g.emitLine("// passthrough: unrecognized statement")
		g.emitLine(n.Text)
	}
}

// blockInto emits the statements of b and delivers its tail as want asks.
func (g *generator) blockInto(b *ast.BlockExpr, want lower.Want, dest string) {
	for _, s := range b.Stmts {
		g.mark(s)
		g.stmt(s)
	}
	if b.Tail != nil {
		g.mark(b.Tail)
		g.into(b.Tail, want, dest)
	}
}

// needsStatements reports whether e must be lowered as statements rather
// than rendered as one expression.
func needsStatements(e ast.Expr) bool {
	switch n := lower.Unwrap(e).(type) {
	case *ast.BlockExpr, *ast.MatchExpr, *ast.LoopExpr, *ast.WhileExpr, *ast.ForExpr,
		*ast.ReturnExpr, *ast.BreakExpr, *ast.ContinueExpr:
		return true
	case *ast.IfExpr:
		return !lower.IsPlain(n)
	}
	return false
}

func (g *generator) let(l *ast.LetStmt) {
	kw := "const"
	if l.IsMut {
		kw = "let"
	}
	name := ident(l.Name)
	if strings.HasPrefix(l.Name, "(") {
		var parts []string
		for _, p := range strings.Split(strings.Trim(l.Name, "()"), ",") {
			parts = append(parts, ident(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p), "mut "))))
		}
		name = "[" + strings.Join(parts, ", ") + "]"
	}
	typ := ""
	if l.Type != nil {
		typ = ": " + g.tsType(l.Type)
	}

	switch {
	case l.Value == nil:
		g.emitLinef("let %s%s;", name, typ)
	case needsStatements(l.Value) && !strings.HasPrefix(name, "["):
		g.emitLinef("let %s%s;", name, typ)
		g.into(l.Value, lower.Value, name)
	default:
		value := g.expr(l.Value)
		g.flush()
		g.emitLinef("%s %s%s = %s;", kw, name, typ, value)
	}
}

// localItem emits an item declared inside a block in place. Nested
// functions keep function declaration form so they hoist.
func (g *generator) localItem(item ast.Item) {
	fn, ok := item.(*ast.FunctionDef)
	if !ok {
		g.item(item)
		return
	}
	saved := g.saveFunction()
	defer g.restoreFunction(saved)
	g.fnReturn = fn.ReturnType
	g.inMain = false
	g.emitLinef("%sfunction %s%s(%s)%s {", async(fn), ident(fn.Name), generics(fn.Generics), g.params(fn.Params), g.returnAnnotation(fn))
	g.body(fn)
	g.emitLine("}")
}

type functionState struct {
	fnReturn ast.Type
	inMain   bool
}

func (g *generator) saveFunction() functionState {
	return functionState{fnReturn: g.fnReturn, inMain: g.inMain}
}

func (g *generator) restoreFunction(s functionState) {
	g.fnReturn, g.inMain = s.fnReturn, s.inMain
}

// --- Result delivery ---

// into lowers e in statement position. A Value want assigns the result to
// dest and a Return want returns it.
func (g *generator) into(e ast.Expr, want lower.Want, dest string) {
	switch n := lower.Unwrap(e).(type) {
	case *ast.BlockExpr:
		g.emitLine("{")
		g.incIndent()
		g.blockInto(n, want, dest)
		g.decIndent()
		g.emitLine("}")
	case *ast.IfExpr:
		if want != lower.Void && lower.IsPlain(n) {
			g.deliver(g.expr(n), want, dest)
			return
		}
		g.ifInto(n, want, dest, false)
	case *ast.MatchExpr:
		g.matchInto(n, want, dest)
	case *ast.LoopExpr, *ast.WhileExpr, *ast.ForExpr:
		if want == lower.Value {
			g.note("loop value is not carried; " + dest + " stays unassigned")
		}
		g.loop(n)
	case *ast.ReturnExpr:
		g.ret(n)
	case *ast.BreakExpr:
		if n.Value != nil {
			g.note("break value is not supported")
		}
		g.flush()
		g.emitLine("break;")
	case *ast.ContinueExpr:
		g.flush()
		g.emitLine("continue;")
	case *ast.Literal:
		if n.Kind == ast.UnitLit {
			if want == lower.Return {
				g.emitLine("return;")
			}
			return
		}
		g.deliver(g.expr(n), want, dest)
	case *ast.MacroExpr:
		if diverges(n) {
			value := g.expr(n)
			g.flush()
			g.emitLine(value + ";")
			return
		}
		g.deliver(g.expr(n), want, dest)
	default:
		g.deliver(g.expr(n), want, dest)
	}
}

// bodyInto lowers e as the body of an already opened construct.
func (g *generator) bodyInto(e ast.Expr, want lower.Want, dest string) {
	if b, ok := e.(*ast.BlockExpr); ok {
		g.blockInto(b, want, dest)
		return
	}
	g.into(e, want, dest)
}

func diverges(m *ast.MacroExpr) bool {
	switch m.Name {
	case "panic", "unreachable", "todo", "unimplemented":
		return true
	}
	return false
}

func (g *generator) deliver(value string, want lower.Want, dest string) {
	g.flush()
	switch want {
	case lower.Value:
		g.emitLinef("%s = %s;", dest, value)
	case lower.Return:
		if g.inMain {
			g.emitLine(value + ";")
			return
		}
		g.emitLinef("return %s;", value)
	default:
		g.emitLine(value + ";")
	}
}

func (g *generator) ret(r *ast.ReturnExpr) {
	if r.Value == nil || g.inMain {
		g.flush()
		g.emitLine("return;")
		return
	}
	if needsStatements(r.Value) {
		g.into(r.Value, lower.Return, "")
		return
	}
	g.deliver(g.expr(r.Value), lower.Return, "")
}

func (g *generator) ifInto(n *ast.IfExpr, want lower.Want, dest string, chained bool) {
	cond := g.expr(n.Cond)
	g.flush()
	if chained {
		g.emitLinef("} else if (%s) {", cond)
	} else {
		g.emitLinef("if (%s) {", cond)
	}
	g.incIndent()
	g.blockInto(n.Then, want, dest)
	g.decIndent()
	switch els := n.Else.(type) {
	case nil:
		g.emitLine("}")
	case *ast.IfExpr:
		g.ifInto(els, want, dest, true)
	default:
		g.emitLine("} else {")
		g.incIndent()
		g.bodyInto(els, want, dest)
		g.decIndent()
		g.emitLine("}")
	}
}

// try binds the operand of a propagation operator to a temporary and
// returns early on failure. It yields the success value expression.
func (g *generator) try(t *ast.TryExpr) string {
	operand := g.expr(t.Operand)
	tmp := g.temp("_t")
	g.flush()
	g.emitLinef("const %s = %s;", tmp, operand)
	switch {
	case g.inMain:
		g.emitLinef("if (!$isOk(%s)) $panic('main failed');", tmp)
		return "$unwrap(" + tmp + ")"
	case g.fnReturn == nil:
		g.emitLinef("// propagation in a function without a return type stops it silently")
		g.emitLinef("if (!$isOk(%s)) return;", tmp)
		return "$unwrap(" + tmp + ")"
	case g.returnsOption():
		g.emitLinef("if (%s === null) return null;", tmp)
		return tmp
	}
	g.emitLinef("if (%s.tag === 'err') return %s;", tmp, tmp)
	return tmp + ".val"
}

// --- Loops ---

func (g *generator) loop(e ast.Expr) {
	switch n := e.(type) {
	case *ast.LoopExpr:
		g.flush()
		g.emitLine("while (true) {")
		g.loopBody(n.Body)
	case *ast.WhileExpr:
		cond := g.expr(n.Cond)
		g.flush()
		g.emitLinef("while (%s) {", cond)
		g.loopBody(n.Body)
	case *ast.ForExpr:
		g.forLoop(n)
	}
}

func (g *generator) loopBody(b *ast.BlockExpr) {
	g.incIndent()
	g.blockInto(b, lower.Void, "")
	g.decIndent()
	g.emitLine("}")
}

func (g *generator) forLoop(n *ast.ForExpr) {
	if len(n.Names) == 1 {
		if r, ok := n.Iter.(*ast.RangeExpr); ok && r.Start != nil && r.End != nil {
			g.countedLoop(ident(n.Names[0]), r, false, n.Body)
			return
		}
		if m, ok := n.Iter.(*ast.MethodCallExpr); ok && m.Method == "rev" {
			if r, ok := m.Receiver.(*ast.RangeExpr); ok && r.Start != nil && r.End != nil {
				g.countedLoop(ident(n.Names[0]), r, true, n.Body)
				return
			}
		}
	}
	if m, ok := n.Iter.(*ast.MethodCallExpr); ok && m.Method == "enumerate" && len(n.Names) == 2 {
		src := g.iterSource(m.Receiver)
		g.flush()
		g.emitLinef("for (const [%s, %s] of %s.entries()) {", ident(n.Names[0]), ident(n.Names[1]), src)
		g.loopBody(n.Body)
		return
	}

	src := g.iterSource(n.Iter)
	g.flush()
	name := ident(n.Names[0])
	if len(n.Names) > 1 {
		parts := make([]string, len(n.Names))
		for i, nm := range n.Names {
			parts[i] = ident(nm)
		}
		name = "[" + strings.Join(parts, ", ") + "]"
	}
	g.emitLinef("for (const %s of %s) {", name, src)
	g.loopBody(n.Body)
}

func (g *generator) countedLoop(name string, r *ast.RangeExpr, reverse bool, body *ast.BlockExpr) {
	start, end := g.expr(r.Start), g.expr(r.End)
	g.flush()
	switch {
	case reverse && r.Inclusive:
		g.emitLinef("for (let %s = %s; %s >= %s; %s--) {", name, end, name, start, name)
	case reverse:
		g.emitLinef("for (let %s = %s - 1; %s >= %s; %s--) {", name, g.operand(r.End, lower.PrecAdd, false), name, start, name)
	case r.Inclusive:
		g.emitLinef("for (let %s = %s; %s <= %s; %s++) {", name, start, name, end, name)
	default:
		g.emitLinef("for (let %s = %s; %s < %s; %s++) {", name, start, name, end, name)
	}
	g.loopBody(body)
}

// iterSource strips iterator adapters that TypeScript iteration performs
// implicitly.
func (g *generator) iterSource(e ast.Expr) string {
	if m, ok := e.(*ast.MethodCallExpr); ok && len(m.Args) == 0 {
		switch m.Method {
		case "iter", "into_iter", "iter_mut", "drain":
			return g.iterSource(m.Receiver)
		}
	}
	return g.expr(e)
}

// --- Match ---

func (g *generator) matchInto(m *ast.MatchExpr, want lower.Want, dest string) {
	plan := g.planner.PlanMatch(m, want)
	scrut := g.expr(plan.Scrutinee)
	g.flush()
	g.emitLinef("const %s = %s;", plan.Temp, scrut)

	if plan.UseSwitch {
		g.switchInto(plan, dest)
		return
	}

	last := len(plan.Arms) - 1
	open := false
	for i, arm := range plan.Arms {
		unconditional := arm.Cond.Kind == lower.CondTrue && arm.Guard == nil
		switch {
		case unconditional && i == last && open:
			g.emitLine("} else {")
		case unconditional && i == last:
			g.emitLine("{")
		default:
			cond := g.condition(plan.Temp, arm)
			g.flush()
			if open {
				g.emitLinef("} else if (%s) {", cond)
			} else {
				g.emitLinef("if (%s) {", cond)
			}
		}
		open = true
		g.incIndent()
		g.armBody(plan, arm, dest)
		g.decIndent()
	}
	if open {
		g.emitLine("}")
	}
	if want == lower.Return && !plan.HasDefault() && !g.inMain {
		g.emitLine("throw new Error('no match arm applies');")
	}
}

func (g *generator) switchInto(plan *lower.MatchPlan, dest string) {
	g.emitLinef("switch (%s) {", plan.Temp)
	g.incIndent()
	for _, arm := range plan.Arms {
		switch arm.Cond.Kind {
		case lower.CondTrue:
			g.emitLine("default: {")
		case lower.CondVariant:
			g.emitLinef("case %s.%s: {", arm.Cond.Enum, arm.Cond.Variant)
		case lower.CondLiteral:
			for i, lit := range arm.Cond.Literals {
				if i < len(arm.Cond.Literals)-1 {
					g.emitLinef("case %s:", g.literal(lit))
				} else {
					g.emitLinef("case %s: {", g.literal(lit))
				}
			}
		}
		g.incIndent()
		g.bodyInto(arm.Body, plan.Want, dest)
		if plan.Want != lower.Return || g.inMain {
			g.emitLine("break;")
		}
		g.decIndent()
		g.emitLine("}")
	}
	g.decIndent()
	g.emitLine("}")
	if plan.Want == lower.Return && !plan.HasDefault() && !g.inMain {
		g.emitLine("throw new Error('no match arm applies');")
	}
}

// condition renders the test of arm, with the guard evaluated over the
// arm's bindings.
func (g *generator) condition(temp string, arm lower.ArmPlan) string {
	var test string
	c := arm.Cond
	switch c.Kind {
	case lower.CondTrue:
		test = "true"
	case lower.CondOk:
		test = temp + ".tag === 'ok'"
	case lower.CondErr:
		test = temp + ".tag === 'err'"
	case lower.CondSome:
		test = temp + " !== null"
	case lower.CondNone:
		test = temp + " === null"
	case lower.CondVariant:
		if c.Native && c.Enum != "" {
			test = temp + " === " + c.Enum + "." + c.Variant
		} else {
			test = temp + ".tag === '" + c.Variant + "'"
		}
	case lower.CondLiteral:
		var parts []string
		for _, lit := range c.Literals {
			parts = append(parts, temp+" === "+g.literal(lit))
		}
		test = strings.Join(parts, " || ")
		if len(parts) > 1 && arm.Guard != nil {
			test = "(" + test + ")"
		}
	case lower.CondRaw:
		if g.opts.Strict {
			g.note("unsupported pattern: " + c.Raw)
			test = "false"
		} else {
			g.note("passthrough: unrecognized pattern")
			test = c.Raw
		}
	}
	if arm.Guard == nil {
		return test
	}
	guard := g.withBindings(temp, arm, func() string { return g.operand(arm.Guard, lower.PrecAnd, true) })
	if c.Kind == lower.CondTrue {
		return guard
	}
	return test + " && " + guard
}

// withBindings renders f with the arm's bound names replaced by their
// extraction expressions.
func (g *generator) withBindings(temp string, arm lower.ArmPlan, f func() string) string {
	saved := g.subst
	g.subst = make(map[string]string, len(saved)+len(arm.Bindings))
	for k, v := range saved {
		g.subst[k] = v
	}
	for _, b := range arm.Bindings {
		g.subst[b.Name] = extract(temp, arm.Cond, b)
	}
	defer func() { g.subst = saved }()
	return f()
}

func extract(temp string, cond lower.Condition, b lower.Binding) string {
	switch {
	case b.Whole:
		return temp
	case cond.Kind == lower.CondOk:
		return temp + ".val"
	case cond.Kind == lower.CondErr:
		return temp + ".err"
	case cond.Kind == lower.CondSome:
		return temp
	}
	return temp + "." + ident(b.Field)
}

func (g *generator) armBody(plan *lower.MatchPlan, arm lower.ArmPlan, dest string) {
	for _, b := range arm.Bindings {
		g.emitLinef("const %s = %s;", ident(b.Name), extract(plan.Temp, arm.Cond, b))
	}
	g.bodyInto(arm.Body, plan.Want, dest)
}
