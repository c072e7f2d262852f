package ast

// Node is the base interface for all AST nodes
type Node interface {
	Pos() (line, col int)
}

// Item nodes appear at the top level of a file or inside a module body
type Item interface {
	Node
	itemNode()
}

// Statement nodes
type Stmt interface {
	Node
	stmtNode()
}

// Expression nodes
type Expr interface {
	Node
	exprNode()
}

// Pattern nodes appear on the left of a match arm
type Pattern interface {
	patternNode()
	String() string
}

// Type nodes describe written type annotations
type Type interface {
	typeNode()
	String() string
}

// Span records where a node starts in the source.
type Span struct {
	Line   int
	Column int
}

func (s Span) Pos() (int, int) { return s.Line, s.Column }

// File is the canonical tree for one source unit
type File struct {
	Items []Item
}

func (f *File) Pos() (int, int) {
	if len(f.Items) > 0 {
		return f.Items[0].Pos()
	}
	return 0, 0
}

// --- Items ---

// UseDecl represents `u path;` / `U path;`
type UseDecl struct {
	Span
	Path     string
	IsPublic bool
}

// GenericParam is one entry of a `<T: Bound>` list
type GenericParam struct {
	Name   string
	Bounds string
}

// SelfKind tells how a method receives its receiver
type SelfKind int

const (
	NotSelf SelfKind = iota
	SelfValue
	SelfRef
	SelfMutRef
)

// Param represents a function, method or closure parameter
type Param struct {
	Span
	Name string
	Type Type // nil for untyped closure params and receivers
	Self SelfKind
}

// FunctionDef represents a function or method definition
type FunctionDef struct {
	Span
	Name       string
	Generics   []*GenericParam
	Params     []*Param
	ReturnType Type
	Where      string
	Body       *BlockExpr
	IsPublic   bool
	IsAsync    bool
	Abstract   bool // signature only, as in a trait
	Attributes []string
	Doc        string
	Owner      string // enclosing impl or trait, empty for free functions
}

// Receiver returns the receiver parameter, or nil for associated functions.
func (f *FunctionDef) Receiver() *Param {
	if len(f.Params) > 0 && f.Params[0].Self != NotSelf {
		return f.Params[0]
	}
	return nil
}

// Field is a named struct or record-variant field
type Field struct {
	Span
	Name     string
	Type     Type
	IsPublic bool
}

// StructDef represents `S Name { fields }`, `S Name(T, U);` or `S Name;`
type StructDef struct {
	Span
	Name       string
	Generics   []*GenericParam
	Fields     []*Field
	Tuple      bool // fields are positional and named _0, _1, ...
	Derives    []string
	Attributes []string
	Doc        string
	IsPublic   bool
}

// VariantKind distinguishes the three enum variant shapes
type VariantKind int

const (
	UnitVariant VariantKind = iota
	TupleVariant
	RecordVariant
)

// EnumVariant is a single enum variant. Exactly one of Types and Fields is
// populated, depending on Kind.
type EnumVariant struct {
	Span
	Name         string
	Kind         VariantKind
	Types        []Type
	Fields       []*Field
	Discriminant string
}

// EnumDef represents `E Name { variants }`
type EnumDef struct {
	Span
	Name       string
	Generics   []*GenericParam
	Variants   []*EnumVariant
	Derives    []string
	Attributes []string
	Doc        string
	IsPublic   bool
}

// IsUnitOnly reports whether no variant carries a payload.
func (e *EnumDef) IsUnitOnly() bool {
	for _, v := range e.Variants {
		if v.Kind != UnitVariant {
			return false
		}
	}
	return true
}

// ImplDef represents `I Type {` or `I Trait for Type {`
type ImplDef struct {
	Span
	Target   string
	Generics []*GenericParam
	Trait    string
	Methods  []*FunctionDef
	Other    []Item // associated types, consts and unrecognized members
}

// TraitDef represents `TR Name {`
type TraitDef struct {
	Span
	Name     string
	Generics []*GenericParam
	Methods  []*FunctionDef
	IsPublic bool
	Doc      string
}

// ModDecl represents `D name;` or an inline `D name { items }`
type ModDecl struct {
	Span
	Name     string
	IsPublic bool
	Inline   bool
	Items    []Item
}

// TypeAlias represents `t Name = Type`
type TypeAlias struct {
	Span
	Name     string
	Generics []*GenericParam
	Type     Type
	IsPublic bool
}

// ConstDecl represents `C NAME: T = value` and `CP ...`
type ConstDecl struct {
	Span
	Name     string
	Type     Type
	Value    Expr
	IsPublic bool
	IsStatic bool
}

// StmtItem wraps a statement that appears at the top level
type StmtItem struct {
	Span
	Stmt Stmt
}

// CommentItem is a line comment kept between items
type CommentItem struct {
	Span
	Text string
}

// RawItem is a top-level construct the parser could not classify
type RawItem struct {
	Span
	Text string
}

func (*UseDecl) itemNode()     {}
func (*FunctionDef) itemNode() {}
func (*StructDef) itemNode()   {}
func (*EnumDef) itemNode()     {}
func (*ImplDef) itemNode()     {}
func (*TraitDef) itemNode()    {}
func (*ModDecl) itemNode()     {}
func (*TypeAlias) itemNode()   {}
func (*ConstDecl) itemNode()   {}
func (*StmtItem) itemNode()    {}
func (*CommentItem) itemNode() {}
func (*RawItem) itemNode()     {}

// --- Statements ---

// LetStmt represents `l name = value` and `v name = value`
type LetStmt struct {
	Span
	Name  string // a binding name or a tuple pattern such as "(a, b)"
	Type  Type
	Value Expr // nil for a declaration without initializer
	IsMut bool
}

// ExprStmt is an expression evaluated as a statement
type ExprStmt struct {
	Span
	Expr Expr
	Semi bool
}

// ItemStmt is an item declared inside a block, such as a nested function
type ItemStmt struct {
	Span
	Item Item
}

// CommentStmt is a line comment inside a block
type CommentStmt struct {
	Span
	Text string
}

// RawStmt is a statement line the parser could not classify
type RawStmt struct {
	Span
	Text string
}

func (*LetStmt) stmtNode()     {}
func (*ExprStmt) stmtNode()    {}
func (*ItemStmt) stmtNode()    {}
func (*CommentStmt) stmtNode() {}
func (*RawStmt) stmtNode()     {}

// --- Expressions ---

// LitKind tells which literal form a Literal has
type LitKind int

const (
	IntLit LitKind = iota
	FloatLit
	StringLit
	CharLit
	BoolLit
	UnitLit
)

// Literal keeps the literal's source text; strings and chars keep their quotes
type Literal struct {
	Span
	Kind   LitKind
	Value  string
	Suffix string // numeric type suffix such as "u8"
}

// Ident is a bare identifier
type Ident struct {
	Span
	Name string
}

// PathExpr is a `::`-separated path
type PathExpr struct {
	Span
	Segments []string
}

// CallExpr is a call of an arbitrary callee
type CallExpr struct {
	Span
	Func Expr
	Args []Expr
}

// MethodCallExpr is `receiver.method(args)`
type MethodCallExpr struct {
	Span
	Receiver  Expr
	Method    string
	Turbofish string // explicit `::<T>` arguments, without the brackets
	Args      []Expr
}

// FieldExpr is `object.field`, including tuple indices
type FieldExpr struct {
	Span
	Object Expr
	Field  string
}

// IndexExpr is `object[index]`
type IndexExpr struct {
	Span
	Object Expr
	Index  Expr
}

// UnaryExpr is a prefix operator: "!", "-", "*", "&" or "&mut"
type UnaryExpr struct {
	Span
	Op      string
	Operand Expr
}

// BinaryExpr includes assignment and compound assignment operators
type BinaryExpr struct {
	Span
	Op    string
	Left  Expr
	Right Expr
}

// BlockExpr holds ordered statements and an optional trailing value
type BlockExpr struct {
	Span
	Stmts []Stmt
	Tail  Expr
}

// IfExpr is `? cond { } else { }`; Else is a *BlockExpr or *IfExpr
type IfExpr struct {
	Span
	Cond Expr
	Then *BlockExpr
	Else Expr
}

// MatchArm is one `pattern [if guard] => body` arm
type MatchArm struct {
	Span
	Pattern Pattern
	Guard   Expr
	Body    Expr
}

// MatchExpr is `M scrutinee { arms }`
type MatchExpr struct {
	Span
	Scrutinee Expr
	Arms      []*MatchArm
}

// LoopExpr is the infinite `L {` loop
type LoopExpr struct {
	Span
	Body *BlockExpr
}

// WhileExpr is `L cond {`
type WhileExpr struct {
	Span
	Cond Expr
	Body *BlockExpr
}

// ForExpr is `L x in iter {`; several names mean tuple destructuring
type ForExpr struct {
	Span
	Names []string
	Iter  Expr
	Body  *BlockExpr
}

// ReturnExpr is `< value`
type ReturnExpr struct {
	Span
	Value Expr
}

// BreakExpr is `br`
type BreakExpr struct {
	Span
	Value Expr
}

// ContinueExpr is `ct`
type ContinueExpr struct {
	Span
}

// TryExpr is the postfix error propagation operator
type TryExpr struct {
	Span
	Operand Expr
}

// AwaitExpr is `expr.~`
type AwaitExpr struct {
	Span
	Operand Expr
}

// ClosureExpr is `|params| body`, `$|params| body` when IsMove
type ClosureExpr struct {
	Span
	Params     []*Param
	ReturnType Type
	Body       Expr
	IsMove     bool
}

// FieldInit is `name: value` inside a struct literal
type FieldInit struct {
	Name  string
	Value Expr
}

// StructInitExpr is `Name { a: x, b }`
type StructInitExpr struct {
	Span
	Name   string
	Fields []*FieldInit
	Base   Expr // `..base`
}

// EnumVariantExpr constructs an enum value. Enum is empty for the built-in
// Ok, Err, Some and None constructors.
type EnumVariantExpr struct {
	Span
	Enum    string
	Variant string
	Args    []Expr
	Fields  []*FieldInit
}

// MacroExpr is `name!(...)`; Args is nil when the body is not an argument list
type MacroExpr struct {
	Span
	Name string
	Args []Expr
	Text string
}

// TupleExpr is `(a, b)`
type TupleExpr struct {
	Span
	Elems []Expr
}

// ArrayExpr is `[a, b]`
type ArrayExpr struct {
	Span
	Elems []Expr
}

// ArrayRepeatExpr is `[value; count]`
type ArrayRepeatExpr struct {
	Span
	Value Expr
	Count Expr
}

// RangeExpr is `start..end` or `start..=end`; either bound may be nil
type RangeExpr struct {
	Span
	Start     Expr
	End       Expr
	Inclusive bool
}

// CastExpr is `expr as Type`
type CastExpr struct {
	Span
	Expr Expr
	Type Type
}

// RawExpr is expression text the parser could not classify
type RawExpr struct {
	Span
	Text string
}

func (*Literal) exprNode()         {}
func (*Ident) exprNode()           {}
func (*PathExpr) exprNode()        {}
func (*CallExpr) exprNode()        {}
func (*MethodCallExpr) exprNode()  {}
func (*FieldExpr) exprNode()       {}
func (*IndexExpr) exprNode()       {}
func (*UnaryExpr) exprNode()       {}
func (*BinaryExpr) exprNode()      {}
func (*BlockExpr) exprNode()       {}
func (*IfExpr) exprNode()          {}
func (*MatchExpr) exprNode()       {}
func (*LoopExpr) exprNode()        {}
func (*WhileExpr) exprNode()       {}
func (*ForExpr) exprNode()         {}
func (*ReturnExpr) exprNode()      {}
func (*BreakExpr) exprNode()       {}
func (*ContinueExpr) exprNode()    {}
func (*TryExpr) exprNode()         {}
func (*AwaitExpr) exprNode()       {}
func (*ClosureExpr) exprNode()     {}
func (*StructInitExpr) exprNode()  {}
func (*EnumVariantExpr) exprNode() {}
func (*MacroExpr) exprNode()       {}
func (*TupleExpr) exprNode()       {}
func (*ArrayExpr) exprNode()       {}
func (*ArrayRepeatExpr) exprNode() {}
func (*RangeExpr) exprNode()       {}
func (*CastExpr) exprNode()        {}
func (*RawExpr) exprNode()         {}

// IsControlTransfer reports whether e leaves the enclosing construct, so it
// must never be wrapped as a produced value.
func IsControlTransfer(e Expr) bool {
	switch e.(type) {
	case *ReturnExpr, *BreakExpr, *ContinueExpr:
		return true
	}
	return false
}

// --- Patterns ---

// Wildcard is the binding placeholder that extracts nothing
const Wildcard = "_"

// ResultOkPattern is `Ok(binding)`
type ResultOkPattern struct{ Binding string }

// ResultErrPattern is `Err(binding)`
type ResultErrPattern struct{ Binding string }

// OptionSomePattern is `Some(binding)`
type OptionSomePattern struct{ Binding string }

// OptionNonePattern is `None`
type OptionNonePattern struct{}

// EnumVariantPattern is `Path::Variant(a, b)` or `Variant { x, y }`
type EnumVariantPattern struct {
	Path     []string
	Bindings []string
	Fields   []string // record field names, parallel to Bindings
	Record   bool
}

// Variant returns the last path segment.
func (p *EnumVariantPattern) Variant() string { return p.Path[len(p.Path)-1] }

// Enum returns the qualifying enum name, or "" when the path is a bare variant.
func (p *EnumVariantPattern) Enum() string {
	if len(p.Path) < 2 {
		return ""
	}
	return p.Path[len(p.Path)-2]
}

// LiteralPattern matches any of its values
type LiteralPattern struct{ Values []*Literal }

// WildcardPattern is `_`
type WildcardPattern struct{}

// IdentPattern binds the whole scrutinee
type IdentPattern struct{ Name string }

// RawPattern is pattern text the parser could not classify
type RawPattern struct{ Text string }

func (*ResultOkPattern) patternNode()    {}
func (*ResultErrPattern) patternNode()   {}
func (*OptionSomePattern) patternNode()  {}
func (*OptionNonePattern) patternNode()  {}
func (*EnumVariantPattern) patternNode() {}
func (*LiteralPattern) patternNode()     {}
func (*WildcardPattern) patternNode()    {}
func (*IdentPattern) patternNode()       {}
func (*RawPattern) patternNode()         {}

// IsIrrefutable reports whether p matches every value.
func IsIrrefutable(p Pattern) bool {
	switch p.(type) {
	case *WildcardPattern, *IdentPattern:
		return true
	}
	return false
}

// --- Types ---

// NamedType is a plain or path type name, written as in the source
type NamedType struct{ Name string }

// GenericType is `Base<Args...>`
type GenericType struct {
	Base string
	Args []Type
}

// TupleType is `(A, B)`
type TupleType struct{ Elems []Type }

// FunctionType is `fn(A) -> B`
type FunctionType struct {
	Params []Type
	Return Type // nil means unit
}

// ReferenceType is `&T`, `&!T` or `&mut T`
type ReferenceType struct {
	IsMut bool
	Inner Type
}

// ArrayType is `[T; N]`, or the slice `[T]` when Len is empty
type ArrayType struct {
	Elem Type
	Len  string
}

func (*NamedType) typeNode()     {}
func (*GenericType) typeNode()   {}
func (*TupleType) typeNode()     {}
func (*FunctionType) typeNode()  {}
func (*ReferenceType) typeNode() {}
func (*ArrayType) typeNode()     {}
