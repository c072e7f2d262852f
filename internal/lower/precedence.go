package lower

import "github.com/lhaig/nu/internal/ast"

// Precedence levels shared by the C-family targets, loosest first. Parser
// grouping parentheses are not kept in the tree, so backends re-derive them
// from these levels.
const (
	PrecAssign = iota + 1
	PrecRange
	PrecOr
	PrecAnd
	PrecCompare
	PrecBitOr
	PrecBitXor
	PrecBitAnd
	PrecShift
	PrecAdd
	PrecMul
	PrecCast
	PrecUnary
	PrecPostfix
	PrecAtom
)

var binaryPrec = map[string]int{
	"=": PrecAssign, "+=": PrecAssign, "-=": PrecAssign, "*=": PrecAssign, "/=": PrecAssign,
	"%=": PrecAssign, "|=": PrecAssign, "&=": PrecAssign, "^=": PrecAssign, "<<=": PrecAssign, ">>=": PrecAssign,
	"||": PrecOr,
	"&&": PrecAnd,
	"==": PrecCompare, "!=": PrecCompare, "<": PrecCompare, ">": PrecCompare, "<=": PrecCompare, ">=": PrecCompare,
	"|":  PrecBitOr,
	"^":  PrecBitXor,
	"&":  PrecBitAnd,
	"<<": PrecShift, ">>": PrecShift,
	"+": PrecAdd, "-": PrecAdd,
	"*": PrecMul, "/": PrecMul, "%": PrecMul,
}

// BinaryPrecedence returns the level of a binary operator, or 0 when the
// operator is unknown.
func BinaryPrecedence(op string) int {
	return binaryPrec[op]
}

// Precedence returns the binding level of e as an operand.
func Precedence(e ast.Expr) int {
	switch n := e.(type) {
	case *ast.BinaryExpr:
		if p := binaryPrec[n.Op]; p > 0 {
			return p
		}
		return PrecAssign
	case *ast.RangeExpr:
		return PrecRange
	case *ast.CastExpr:
		return PrecCast
	case *ast.UnaryExpr:
		return PrecUnary
	case *ast.ClosureExpr, *ast.IfExpr, *ast.MatchExpr, *ast.ReturnExpr, *ast.BreakExpr:
		return PrecAssign
	case *ast.Literal:
		if len(n.Value) > 0 && n.Value[0] == '-' {
			return PrecUnary
		}
	}
	return PrecAtom
}

// NeedsParens reports whether child must be parenthesized as an operand of
// a binary operator at level parent. Right operands of left-associative
// operators need parentheses at equal level too.
func NeedsParens(parent int, child ast.Expr, right bool) bool {
	p := Precedence(child)
	if p < parent {
		return true
	}
	if p == parent && right && parent != PrecAssign {
		return true
	}
	return false
}

// OperandNeedsParens reports whether e must be parenthesized as the
// receiver of a postfix form such as a call, index or member access.
func OperandNeedsParens(e ast.Expr) bool {
	return Precedence(e) < PrecPostfix
}
