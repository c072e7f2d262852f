// Package cppast is a typed model of the C++ subset the C++ backend emits.
// Lowering builds a TranslationUnit and Print renders it, so nested template
// arguments and access sections are spelled by one printer only.
package cppast

import "github.com/lhaig/nu/internal/scope"

// Visibility is a member access section
type Visibility = scope.Visibility

const (
	Public    = scope.Public
	Private   = scope.Private
	Protected = scope.Protected
)

// --- Types ---

// Type is a C++ type expression
type Type interface{ typeNode() }

// Void is `void`
type Void struct{}

// Primitive is a builtin scalar such as `int32_t` or `bool`
type Primitive struct{ Name string }

// Named is a class, alias or qualified library name
type Named struct{ Name string }

// Pointer is `T*`
type Pointer struct{ Inner Type }

// Reference is `T&` or `const T&`
type Reference struct {
	Inner  Type
	Const  bool
	Rvalue bool
}

// Template is an instantiation `Base<Args...>`
type Template struct {
	Base string
	Args []Type
}

// Auto is `auto`
type Auto struct{}

// Decltype is `decltype(expr)`
type Decltype struct{ Expr Expr }

// RawType is type text passed through unchanged
type RawType struct{ Text string }

func (*Void) typeNode()      {}
func (*Primitive) typeNode() {}
func (*Named) typeNode()     {}
func (*Pointer) typeNode()   {}
func (*Reference) typeNode() {}
func (*Template) typeNode()  {}
func (*Auto) typeNode()      {}
func (*Decltype) typeNode()  {}
func (*RawType) typeNode()   {}

// --- Expressions ---

// Expr is a C++ expression
type Expr interface{ exprNode() }

// Literal keeps its C++ spelling
type Literal struct{ Text string }

// Var is a name reference
type Var struct{ Name string }

// BinOp is `Left Op Right`, assignments included
type BinOp struct {
	Op    string
	Left  Expr
	Right Expr
}

// UnaryOp is a prefix operator, or a postfix one when Postfix is set
type UnaryOp struct {
	Op      string
	Operand Expr
	Postfix bool
}

// Call is `Callee(Args...)`
type Call struct {
	Callee Expr
	Args   []Expr
}

// MethodCall is `Object.Method(Args...)`, or `Object->Method` when Arrow is set
type MethodCall struct {
	Object Expr
	Method string
	Args   []Expr
	Arrow  bool
}

// MemberAccess is `Object.Member`
type MemberAccess struct {
	Object Expr
	Member string
}

// ArrowAccess is `Object->Member`
type ArrowAccess struct {
	Object Expr
	Member string
}

// Index is `Object[Index]`
type Index struct {
	Object Expr
	Index  Expr
}

// Ternary is `Cond ? Then : Else`
type Ternary struct {
	Cond Expr
	Then Expr
	Else Expr
}

// CaptureMode selects a lambda's default capture
type CaptureMode int

const (
	CaptureNone CaptureMode = iota
	CaptureCopy
	CaptureRef
	CaptureExplicit
)

// Capture is one entry of an explicit capture list
type Capture struct {
	Name  string
	ByRef bool
	Moved bool
}

// Lambda is `[captures](params) -> Return { Body }`
type Lambda struct {
	Mode     CaptureMode
	Captures []Capture
	Params   []*Param
	Return   Type // nil lets the compiler deduce it
	Body     []Stmt
}

// FieldInit is one designated or positional brace initializer
type FieldInit struct {
	Name  string // "" for positional
	Value Expr
}

// BraceInit is `Type{...}`; Type may be nil for a bare init list
type BraceInit struct {
	Type   Type
	Fields []FieldInit
}

// Cast is `Kind<Target>(Expr)` such as static_cast
type Cast struct {
	Kind   string
	Target Type
	Expr   Expr
}

// Move is `std::move(Expr)`
type Move struct{ Expr Expr }

// This is `this`
type This struct{}

// Nullptr is `nullptr`
type Nullptr struct{}

// RawExpr is expression text passed through unchanged
type RawExpr struct{ Text string }

func (*Literal) exprNode()      {}
func (*Var) exprNode()          {}
func (*BinOp) exprNode()        {}
func (*UnaryOp) exprNode()      {}
func (*Call) exprNode()         {}
func (*MethodCall) exprNode()   {}
func (*MemberAccess) exprNode() {}
func (*ArrowAccess) exprNode()  {}
func (*Index) exprNode()        {}
func (*Ternary) exprNode()      {}
func (*Lambda) exprNode()       {}
func (*BraceInit) exprNode()    {}
func (*Cast) exprNode()         {}
func (*Move) exprNode()         {}
func (*This) exprNode()         {}
func (*Nullptr) exprNode()      {}
func (*RawExpr) exprNode()      {}

// --- Statements ---

// Stmt is a C++ statement
type Stmt interface{ stmtNode() }

// VarDecl is `[const] Type Name [= Init];`
type VarDecl struct {
	Name  string
	Type  Type
	Init  Expr
	Const bool
}

// ExprStmt is `Expr;`
type ExprStmt struct{ Expr Expr }

// Return is `return [Value];`
type Return struct{ Value Expr }

// If is `if (Cond) { Then } else { Else }`. An Else holding a single If
// prints as `else if`.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// While is `while (Cond) { Body }`
type While struct {
	Cond Expr
	Body []Stmt
}

// For is the three-clause loop. Init is a VarDecl or ExprStmt, or nil.
type For struct {
	Init   Stmt
	Cond   Expr
	Update Expr
	Body   []Stmt
}

// ForRange is `for (Type Var : Range) { Body }`
type ForRange struct {
	Var   string
	Type  Type
	Range Expr
	Body  []Stmt
}

// ForEnumerate walks Collection with a running index counter
type ForEnumerate struct {
	Index      string
	Value      string
	Collection Expr
	Body       []Stmt
}

// Case is one switch label group
type Case struct {
	Values []Expr
	Body   []Stmt
}

// Switch is `switch (Expr) { cases default }`
type Switch struct {
	Expr       Expr
	Cases      []Case
	Default    []Stmt
	HasDefault bool
}

// Break is `break;`
type Break struct{}

// Continue is `continue;`
type Continue struct{}

// Block is a nested `{ ... }` scope
type Block struct{ Body []Stmt }

// Comment is a `//` line
type Comment struct{ Text string }

// RawStmt is statement text passed through unchanged
type RawStmt struct{ Text string }

// Mark prints nothing. It records that the next printed line came from
// source line Line, as a statement or as a declaration.
type Mark struct{ Line int }

func (*VarDecl) stmtNode()      {}
func (*ExprStmt) stmtNode()     {}
func (*Return) stmtNode()       {}
func (*If) stmtNode()           {}
func (*While) stmtNode()        {}
func (*For) stmtNode()          {}
func (*ForRange) stmtNode()     {}
func (*ForEnumerate) stmtNode() {}
func (*Switch) stmtNode()       {}
func (*Break) stmtNode()        {}
func (*Continue) stmtNode()     {}
func (*Block) stmtNode()        {}
func (*Comment) stmtNode()      {}
func (*RawStmt) stmtNode()      {}
func (*Mark) stmtNode()         {}

// --- Declarations ---

// Item is a namespace-level declaration
type Item interface{ itemNode() }

// Include is `#include <Path>` or `#include "Path"`
type Include struct {
	Path   string
	System bool
}

// Namespace is `namespace Name { Items }`
type Namespace struct {
	Name  string
	Items []Item
}

// Param is a function or lambda parameter
type Param struct {
	Name    string
	Type    Type
	Default Expr
}

// Field is a data member
type Field struct {
	Name       string
	Type       Type
	Visibility Visibility
	Default    Expr
}

// Function is a free function or a member function. A nil Return prints no
// return type, as for constructors and destructors.
type Function struct {
	Name       string
	Template   []string
	Params     []*Param
	Return     Type
	Body       []Stmt
	Const      bool
	Static     bool
	Virtual    bool
	Override   bool
	Noexcept   bool
	Abstract   bool // `= 0;`
	Defaulted  bool // `= default;`
	Visibility Visibility
}

// Base is one entry of a class base list
type Base struct {
	Name       string
	Visibility Visibility
}

// Class is a struct or class definition
type Class struct {
	Name     string
	Struct   bool
	Template []string
	Bases    []Base
	Fields   []*Field
	Methods  []*Function
	Nested   []Item
	Derives  []string
}

// EnumValue is one enumerator
type EnumValue struct {
	Name  string
	Value string
}

// Enum is a plain enumeration, scoped when Class is set
type Enum struct {
	Name       string
	Class      bool
	Underlying Type
	Values     []EnumValue
}

// TypeAlias is `using Name = Target;`
type TypeAlias struct {
	Name     string
	Template []string
	Target   Type
}

// GlobalVar is a namespace-scope variable or constant
type GlobalVar struct {
	Name      string
	Type      Type
	Init      Expr
	Const     bool
	Static    bool
	Constexpr bool
}

// CommentItem is a `//` line between declarations
type CommentItem struct{ Text string }

// RawItem is declaration text passed through unchanged
type RawItem struct{ Text string }

func (*Include) itemNode()     {}
func (*Namespace) itemNode()   {}
func (*Class) itemNode()       {}
func (*Enum) itemNode()        {}
func (*Function) itemNode()    {}
func (*TypeAlias) itemNode()   {}
func (*GlobalVar) itemNode()   {}
func (*CommentItem) itemNode() {}
func (*RawItem) itemNode()     {}
func (*Mark) itemNode()        {}

// TranslationUnit is one generated source file. Preamble is verbatim text
// placed after the includes, such as an inlined support header.
type TranslationUnit struct {
	HeaderGuard string
	Includes    []*Include
	Preamble    string
	Items       []Item
}

// StandardIncludes returns the library headers every generated file uses.
func StandardIncludes(cpp23 bool) []*Include {
	names := []string{"cstdint", "string", "string_view", "vector", "memory", "optional",
		"variant", "unordered_map", "unordered_set", "functional", "utility", "stdexcept"}
	if cpp23 {
		names = append(names, "expected", "print", "format")
	} else {
		names = append(names, "iostream")
	}
	out := make([]*Include, 0, len(names))
	for _, n := range names {
		out = append(out, &Include{Path: n, System: true})
	}
	return out
}
