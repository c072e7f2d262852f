package lower

import "github.com/lhaig/nu/internal/ast"

// BreaksOut reports whether e contains a break or continue that targets a
// loop enclosing e. Loops and closures inside e are not searched.
func BreaksOut(e ast.Expr) bool {
	found := false
	walkShallow(e, func(n ast.Expr) {
		switch n.(type) {
		case *ast.BreakExpr, *ast.ContinueExpr:
			found = true
		}
	})
	return found
}

// Returns reports whether e contains a return outside any closure.
func Returns(e ast.Expr) bool {
	found := false
	walk(e, false, func(n ast.Expr) {
		if _, ok := n.(*ast.ReturnExpr); ok {
			found = true
		}
	})
	return found
}

// IsPlain reports whether e lowers to a single target expression with no
// statements: no blocks, matches, loops, control transfers or Raw text.
func IsPlain(e ast.Expr) bool {
	plain := true
	walk(e, false, func(n ast.Expr) {
		switch x := n.(type) {
		case *ast.BlockExpr:
			if len(x.Stmts) > 0 || x.Tail == nil {
				plain = false
			}
		case *ast.IfExpr:
			if x.Else == nil {
				plain = false
			}
		case *ast.MatchExpr, *ast.LoopExpr, *ast.WhileExpr, *ast.ForExpr,
			*ast.ReturnExpr, *ast.BreakExpr, *ast.ContinueExpr, *ast.TryExpr, *ast.RawExpr:
			plain = false
		}
	})
	return plain
}

// Unwrap returns the value of a block that holds only a trailing
// expression, or e itself.
func Unwrap(e ast.Expr) ast.Expr {
	for {
		b, ok := e.(*ast.BlockExpr)
		if !ok || len(b.Stmts) > 0 || b.Tail == nil {
			return e
		}
		e = b.Tail
	}
}

func walkShallow(e ast.Expr, visit func(ast.Expr)) {
	walk(e, true, visit)
}

// walk visits e and its subexpressions. Closure bodies are never entered;
// loop bodies are skipped when shallow is set.
func walk(e ast.Expr, shallow bool, visit func(ast.Expr)) {
	if e == nil {
		return
	}
	visit(e)
	rec := func(x ast.Expr) { walk(x, shallow, visit) }
	switch n := e.(type) {
	case *ast.CallExpr:
		rec(n.Func)
		for _, a := range n.Args {
			rec(a)
		}
	case *ast.MethodCallExpr:
		rec(n.Receiver)
		for _, a := range n.Args {
			rec(a)
		}
	case *ast.FieldExpr:
		rec(n.Object)
	case *ast.IndexExpr:
		rec(n.Object)
		rec(n.Index)
	case *ast.UnaryExpr:
		rec(n.Operand)
	case *ast.BinaryExpr:
		rec(n.Left)
		rec(n.Right)
	case *ast.BlockExpr:
		walkBlock(n, shallow, visit)
	case *ast.IfExpr:
		rec(n.Cond)
		if n.Then != nil {
			rec(n.Then)
		}
		rec(n.Else)
	case *ast.MatchExpr:
		rec(n.Scrutinee)
		for _, arm := range n.Arms {
			rec(arm.Guard)
			rec(arm.Body)
		}
	case *ast.LoopExpr:
		if !shallow {
			rec(n.Body)
		}
	case *ast.WhileExpr:
		rec(n.Cond)
		if !shallow {
			rec(n.Body)
		}
	case *ast.ForExpr:
		rec(n.Iter)
		if !shallow {
			rec(n.Body)
		}
	case *ast.ReturnExpr:
		rec(n.Value)
	case *ast.BreakExpr:
		rec(n.Value)
	case *ast.TryExpr:
		rec(n.Operand)
	case *ast.AwaitExpr:
		rec(n.Operand)
	case *ast.StructInitExpr:
		for _, f := range n.Fields {
			rec(f.Value)
		}
		rec(n.Base)
	case *ast.EnumVariantExpr:
		for _, a := range n.Args {
			rec(a)
		}
		for _, f := range n.Fields {
			rec(f.Value)
		}
	case *ast.MacroExpr:
		for _, a := range n.Args {
			rec(a)
		}
	case *ast.TupleExpr:
		for _, x := range n.Elems {
			rec(x)
		}
	case *ast.ArrayExpr:
		for _, x := range n.Elems {
			rec(x)
		}
	case *ast.ArrayRepeatExpr:
		rec(n.Value)
		rec(n.Count)
	case *ast.RangeExpr:
		rec(n.Start)
		rec(n.End)
	case *ast.CastExpr:
		rec(n.Expr)
	}
}

func walkBlock(b *ast.BlockExpr, shallow bool, visit func(ast.Expr)) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		switch st := s.(type) {
		case *ast.LetStmt:
			walk(st.Value, shallow, visit)
		case *ast.ExprStmt:
			walk(st.Expr, shallow, visit)
		}
	}
	walk(b.Tail, shallow, visit)
}
