package linter

import (
	"strings"
	"unicode"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/diagnostic"
	"github.com/lhaig/nu/internal/lower"
)

// Linter performs style and reachability checks on a canonical file.
// It reports warnings (never errors) using the diagnostic system.
type Linter struct {
	file *ast.File
	diag *diagnostic.Diagnostics
}

// Lint runs all lint rules on the given file and returns diagnostics.
func Lint(file *ast.File) *diagnostic.Diagnostics {
	l := &Linter{
		file: file,
		diag: diagnostic.New(),
	}
	l.items(file.Items)
	return l.diag
}

func (l *Linter) items(items []ast.Item) {
	for _, it := range items {
		l.item(it)
	}
}

func (l *Linter) item(it ast.Item) {
	switch n := it.(type) {
	case *ast.FunctionDef:
		l.function(n, "")
	case *ast.StructDef:
		l.checkTypeNaming("struct", n.Name, n.Line, n.Column)
	case *ast.EnumDef:
		l.checkTypeNaming("enum", n.Name, n.Line, n.Column)
		for _, v := range n.Variants {
			l.checkVariantNaming(n.Name, v.Name, v.Line, v.Column)
		}
	case *ast.ImplDef:
		for _, m := range n.Methods {
			l.function(m, n.Target)
		}
		l.items(n.Other)
	case *ast.TraitDef:
		l.checkTypeNaming("trait", n.Name, n.Line, n.Column)
		for _, m := range n.Methods {
			l.function(m, n.Name)
		}
	case *ast.ModDecl:
		l.items(n.Items)
	case *ast.ConstDecl:
		l.expr(n.Value)
	case *ast.StmtItem:
		l.stmt(n.Stmt)
	case *ast.RawItem:
		l.checkPassthrough("item", n.Text, n.Line, n.Column)
	}
}

// function checks one function or method. owner is empty for free functions.
func (l *Linter) function(fn *ast.FunctionDef, owner string) {
	name := fn.Name
	if owner != "" {
		name = owner + "." + fn.Name
	}
	l.checkFunctionNaming(name, fn.Name, fn.Line, fn.Column)
	if fn.Abstract {
		return
	}
	l.checkEmptyFunctionBody(name, fn.Body, fn.Line, fn.Column)
	l.checkMutableNeverMutated(fn.Body)
	l.block(fn.Body)
}

// --- Traversal ---

func (l *Linter) block(b *ast.BlockExpr) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		l.stmt(s)
	}
	l.expr(b.Tail)
}

func (l *Linter) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		l.expr(n.Value)
	case *ast.ExprStmt:
		l.expr(n.Expr)
	case *ast.ItemStmt:
		l.item(n.Item)
	case *ast.RawStmt:
		l.checkPassthrough("statement", n.Text, n.Line, n.Column)
	}
}

func (l *Linter) expr(e ast.Expr) {
	forEachExpr(e, func(x ast.Expr) {
		switch n := x.(type) {
		case *ast.MatchExpr:
			l.checkShadowedArms(n)
		case *ast.RawExpr:
			l.checkPassthrough("expression", n.Text, n.Line, n.Column)
		case *ast.BlockExpr:
			for _, s := range n.Stmts {
				switch st := s.(type) {
				case *ast.ItemStmt:
					l.item(st.Item)
				case *ast.RawStmt:
					l.checkPassthrough("statement", st.Text, st.Line, st.Column)
				}
			}
		}
	})
}

// forEachExpr visits e and every expression nested in it, closure and loop
// bodies included. Items nested in blocks are left to the caller.
func forEachExpr(e ast.Expr, visit func(ast.Expr)) {
	if e == nil {
		return
	}
	visit(e)
	rec := func(xs ...ast.Expr) {
		for _, x := range xs {
			forEachExpr(x, visit)
		}
	}
	recBlock := func(b *ast.BlockExpr) {
		if b != nil {
			forEachExpr(b, visit)
		}
	}
	switch n := e.(type) {
	case *ast.CallExpr:
		rec(n.Func)
		rec(n.Args...)
	case *ast.MethodCallExpr:
		rec(n.Receiver)
		rec(n.Args...)
	case *ast.FieldExpr:
		rec(n.Object)
	case *ast.IndexExpr:
		rec(n.Object, n.Index)
	case *ast.UnaryExpr:
		rec(n.Operand)
	case *ast.BinaryExpr:
		rec(n.Left, n.Right)
	case *ast.BlockExpr:
		for _, s := range n.Stmts {
			switch st := s.(type) {
			case *ast.LetStmt:
				rec(st.Value)
			case *ast.ExprStmt:
				rec(st.Expr)
			}
		}
		rec(n.Tail)
	case *ast.IfExpr:
		rec(n.Cond)
		recBlock(n.Then)
		rec(n.Else)
	case *ast.MatchExpr:
		rec(n.Scrutinee)
		for _, arm := range n.Arms {
			rec(arm.Guard, arm.Body)
		}
	case *ast.LoopExpr:
		recBlock(n.Body)
	case *ast.WhileExpr:
		rec(n.Cond)
		recBlock(n.Body)
	case *ast.ForExpr:
		rec(n.Iter)
		recBlock(n.Body)
	case *ast.ReturnExpr:
		rec(n.Value)
	case *ast.BreakExpr:
		rec(n.Value)
	case *ast.TryExpr:
		rec(n.Operand)
	case *ast.AwaitExpr:
		rec(n.Operand)
	case *ast.ClosureExpr:
		rec(n.Body)
	case *ast.StructInitExpr:
		for _, f := range n.Fields {
			rec(f.Value)
		}
		rec(n.Base)
	case *ast.EnumVariantExpr:
		rec(n.Args...)
		for _, f := range n.Fields {
			rec(f.Value)
		}
	case *ast.MacroExpr:
		rec(n.Args...)
	case *ast.TupleExpr:
		rec(n.Elems...)
	case *ast.ArrayExpr:
		rec(n.Elems...)
	case *ast.ArrayRepeatExpr:
		rec(n.Value, n.Count)
	case *ast.RangeExpr:
		rec(n.Start, n.End)
	case *ast.CastExpr:
		rec(n.Expr)
	}
}

// --- Lint rules ---

// checkEmptyFunctionBody warns if a function/method body has no statements.
func (l *Linter) checkEmptyFunctionBody(name string, body *ast.BlockExpr, line, col int) {
	if body == nil || (len(body.Stmts) == 0 && body.Tail == nil) {
		l.diag.Warningf(line, col, "function '%s' has an empty body", name)
	}
}

// checkShadowedArms warns about arms that can never run because an earlier
// arm matches everything.
func (l *Linter) checkShadowedArms(m *ast.MatchExpr) {
	for _, i := range lower.Shadowed(m) {
		arm := m.Arms[i]
		l.diag.WarningWithHint(arm.Line, arm.Column,
			"match arm '"+arm.Pattern.String()+"' is unreachable",
			"an earlier arm matches every value; move it last")
	}
	for _, arm := range m.Arms {
		if raw, ok := arm.Pattern.(*ast.RawPattern); ok {
			l.checkPassthrough("pattern", raw.Text, arm.Line, arm.Column)
		}
	}
}

// checkPassthrough warns about text that will be copied into the output
// unconverted.
func (l *Linter) checkPassthrough(kind, text string, line, col int) {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i] + " ..."
	}
	l.diag.WarningWithHint(line, col,
		"unrecognized "+kind+" '"+text+"' is passed through unconverted",
		"rewrite it in nu notation or convert with --strict to comment it out")
}

// checkFunctionNaming warns if a function/method name is not snake_case.
func (l *Linter) checkFunctionNaming(qualified, name string, line, col int) {
	if !isSnakeCase(name) {
		l.diag.Warningf(line, col,
			"function '%s' should use snake_case naming", qualified)
	}
}

// checkTypeNaming warns if a struct, enum or trait name is not PascalCase.
func (l *Linter) checkTypeNaming(kind, name string, line, col int) {
	if !isPascalCase(name) {
		l.diag.Warningf(line, col,
			"%s '%s' should use PascalCase naming", kind, name)
	}
}

// checkVariantNaming warns if a variant name is not PascalCase.
func (l *Linter) checkVariantNaming(enumName, variantName string, line, col int) {
	if !isPascalCase(variantName) {
		l.diag.Warningf(line, col,
			"variant '%s' in enum '%s' should use PascalCase naming", variantName, enumName)
	}
}

// checkMutableNeverMutated warns about `v` bindings in body that are never
// assigned, borrowed mutably or used as a method receiver.
func (l *Linter) checkMutableNeverMutated(body *ast.BlockExpr) {
	if body == nil {
		return
	}
	mutated := make(map[string]bool)
	var lets []*ast.LetStmt
	forEachExpr(body, func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.BlockExpr:
			for _, s := range n.Stmts {
				if let, ok := s.(*ast.LetStmt); ok && let.IsMut {
					lets = append(lets, let)
				}
			}
		case *ast.BinaryExpr:
			if isAssignOp(n.Op) {
				mutated[rootName(n.Left)] = true
			}
		case *ast.UnaryExpr:
			if n.Op == "&mut" {
				mutated[rootName(n.Operand)] = true
			}
		case *ast.MethodCallExpr:
			mutated[rootName(n.Receiver)] = true
		case *ast.MacroExpr:
			// write!/writeln! take their sink as the first argument
			if len(n.Args) > 0 && (n.Name == "write" || n.Name == "writeln") {
				mutated[rootName(n.Args[0])] = true
			}
		}
	})
	for _, let := range lets {
		if strings.HasPrefix(let.Name, "(") || mutated[let.Name] {
			continue
		}
		l.diag.WarningWithHint(let.Line, let.Column,
			"variable '"+let.Name+"' is declared mutable but never mutated",
			"declare it with l instead of v")
	}
}

func isAssignOp(op string) bool {
	switch op {
	case "=", "+=", "-=", "*=", "/=", "%=", "|=", "&=", "^=", "<<=", ">>=":
		return true
	}
	return false
}

// rootName returns the variable at the base of a place expression such as
// `a.b[i].c`, or "" when there is none.
func rootName(e ast.Expr) string {
	for {
		switch n := e.(type) {
		case *ast.Ident:
			return n.Name
		case *ast.FieldExpr:
			e = n.Object
		case *ast.IndexExpr:
			e = n.Object
		case *ast.UnaryExpr:
			if n.Op != "*" {
				return ""
			}
			e = n.Operand
		default:
			return ""
		}
	}
}

// --- Naming convention helpers ---

// isSnakeCase returns true if the name follows snake_case conventions:
// lowercase letters, digits, and underscores only, not starting with a digit.
func isSnakeCase(name string) bool {
	if len(name) == 0 || unicode.IsDigit([]rune(name)[0]) {
		return false
	}
	for _, r := range name {
		if !unicode.IsLower(r) && r != '_' && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isPascalCase returns true if the name starts with an uppercase letter
// and contains no underscores.
func isPascalCase(name string) bool {
	if len(name) == 0 {
		return false
	}
	runes := []rune(name)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	return !strings.ContainsRune(name, '_')
}
