package ast

import (
	"fmt"
	"strings"
)

// Print returns a tree-like string representation of the AST for debugging
func Print(node Node) string {
	var sb strings.Builder
	printNode(&sb, node, 0)
	return sb.String()
}

func printNode(sb *strings.Builder, node Node, indent int) {
	if node == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)
	line := func(format string, args ...any) {
		sb.WriteString(prefix)
		sb.WriteString(fmt.Sprintf(format, args...))
		sb.WriteString("\n")
	}

	switch n := node.(type) {
	case *File:
		line("File")
		for _, item := range n.Items {
			printNode(sb, item, indent+1)
		}

	case *UseDecl:
		line("Use: %s%s", pubPrefix(n.IsPublic), n.Path)

	case *FunctionDef:
		modifiers := pubPrefix(n.IsPublic)
		if n.IsAsync {
			modifiers += "async "
		}
		if n.Abstract {
			modifiers += "abstract "
		}
		line("Function: %s%s%s", modifiers, n.Name, genericList(n.Generics))
		for _, p := range n.Params {
			line("  Param: %s", paramString(p))
		}
		if n.ReturnType != nil {
			line("  Returns: %s", n.ReturnType)
		}
		if n.Body != nil && !n.Abstract {
			printNode(sb, n.Body, indent+1)
		}

	case *StructDef:
		line("Struct: %s%s%s", pubPrefix(n.IsPublic), n.Name, genericList(n.Generics))
		if len(n.Derives) > 0 {
			line("  Derives: %s", strings.Join(n.Derives, ", "))
		}
		for _, f := range n.Fields {
			line("  Field: %s: %s", f.Name, f.Type)
		}

	case *EnumDef:
		line("Enum: %s%s%s", pubPrefix(n.IsPublic), n.Name, genericList(n.Generics))
		for _, v := range n.Variants {
			switch v.Kind {
			case TupleVariant:
				line("  Variant: %s(%s)", v.Name, joinTypes(v.Types))
			case RecordVariant:
				var parts []string
				for _, f := range v.Fields {
					parts = append(parts, f.Name+": "+f.Type.String())
				}
				line("  Variant: %s { %s }", v.Name, strings.Join(parts, ", "))
			default:
				line("  Variant: %s", v.Name)
			}
		}

	case *ImplDef:
		if n.Trait != "" {
			line("Impl: %s for %s", n.Trait, n.Target)
		} else {
			line("Impl: %s", n.Target)
		}
		for _, m := range n.Methods {
			printNode(sb, m, indent+1)
		}
		for _, o := range n.Other {
			printNode(sb, o, indent+1)
		}

	case *TraitDef:
		line("Trait: %s%s", pubPrefix(n.IsPublic), n.Name)
		for _, m := range n.Methods {
			printNode(sb, m, indent+1)
		}

	case *ModDecl:
		line("Mod: %s%s", pubPrefix(n.IsPublic), n.Name)
		for _, item := range n.Items {
			printNode(sb, item, indent+1)
		}

	case *TypeAlias:
		line("TypeAlias: %s = %s", n.Name, n.Type)

	case *ConstDecl:
		line("Const: %s", n.Name)
		printNode(sb, n.Value, indent+1)

	case *StmtItem:
		printNode(sb, n.Stmt, indent)

	case *CommentItem:
		line("Comment: %s", n.Text)

	case *RawItem:
		line("Raw: %s", n.Text)

	case *LetStmt:
		kw := "Let"
		if n.IsMut {
			kw = "LetMut"
		}
		if n.Type != nil {
			line("%s: %s: %s", kw, n.Name, n.Type)
		} else {
			line("%s: %s", kw, n.Name)
		}
		printNode(sb, n.Value, indent+1)

	case *ExprStmt:
		line("ExprStmt")
		printNode(sb, n.Expr, indent+1)

	case *ItemStmt:
		printNode(sb, n.Item, indent)

	case *CommentStmt:
		line("Comment: %s", n.Text)

	case *RawStmt:
		line("Raw: %s", n.Text)

	case *Literal:
		line("Literal: %s%s", n.Value, n.Suffix)

	case *Ident:
		line("Ident: %s", n.Name)

	case *PathExpr:
		line("Path: %s", strings.Join(n.Segments, "::"))

	case *CallExpr:
		line("Call")
		printNode(sb, n.Func, indent+1)
		for _, a := range n.Args {
			printNode(sb, a, indent+1)
		}

	case *MethodCallExpr:
		if n.Turbofish != "" {
			line("MethodCall: .%s::<%s>", n.Method, n.Turbofish)
		} else {
			line("MethodCall: .%s", n.Method)
		}
		printNode(sb, n.Receiver, indent+1)
		for _, a := range n.Args {
			printNode(sb, a, indent+1)
		}

	case *FieldExpr:
		line("Field: .%s", n.Field)
		printNode(sb, n.Object, indent+1)

	case *IndexExpr:
		line("Index")
		printNode(sb, n.Object, indent+1)
		printNode(sb, n.Index, indent+1)

	case *UnaryExpr:
		line("Unary: %s", n.Op)
		printNode(sb, n.Operand, indent+1)

	case *BinaryExpr:
		line("Binary: %s", n.Op)
		printNode(sb, n.Left, indent+1)
		printNode(sb, n.Right, indent+1)

	case *BlockExpr:
		line("Block")
		for _, s := range n.Stmts {
			printNode(sb, s, indent+1)
		}
		if n.Tail != nil {
			line("  Tail")
			printNode(sb, n.Tail, indent+2)
		}

	case *IfExpr:
		line("If")
		printNode(sb, n.Cond, indent+1)
		printNode(sb, n.Then, indent+1)
		if n.Else != nil {
			line("  Else")
			printNode(sb, n.Else, indent+2)
		}

	case *MatchExpr:
		line("Match")
		printNode(sb, n.Scrutinee, indent+1)
		for _, arm := range n.Arms {
			line("  Arm: %s", arm.Pattern)
			if arm.Guard != nil {
				line("    Guard")
				printNode(sb, arm.Guard, indent+3)
			}
			printNode(sb, arm.Body, indent+2)
		}

	case *LoopExpr:
		line("Loop")
		printNode(sb, n.Body, indent+1)

	case *WhileExpr:
		line("While")
		printNode(sb, n.Cond, indent+1)
		printNode(sb, n.Body, indent+1)

	case *ForExpr:
		line("For: %s", strings.Join(n.Names, ", "))
		printNode(sb, n.Iter, indent+1)
		printNode(sb, n.Body, indent+1)

	case *ReturnExpr:
		line("Return")
		printNode(sb, n.Value, indent+1)

	case *BreakExpr:
		line("Break")
		printNode(sb, n.Value, indent+1)

	case *ContinueExpr:
		line("Continue")

	case *TryExpr:
		line("Try")
		printNode(sb, n.Operand, indent+1)

	case *AwaitExpr:
		line("Await")
		printNode(sb, n.Operand, indent+1)

	case *ClosureExpr:
		var params []string
		for _, p := range n.Params {
			params = append(params, paramString(p))
		}
		move := ""
		if n.IsMove {
			move = "move "
		}
		line("Closure: %s|%s|", move, strings.Join(params, ", "))
		printNode(sb, n.Body, indent+1)

	case *StructInitExpr:
		line("StructInit: %s", n.Name)
		for _, f := range n.Fields {
			line("  %s:", f.Name)
			printNode(sb, f.Value, indent+2)
		}

	case *EnumVariantExpr:
		if n.Enum != "" {
			line("Variant: %s::%s", n.Enum, n.Variant)
		} else {
			line("Variant: %s", n.Variant)
		}
		for _, a := range n.Args {
			printNode(sb, a, indent+1)
		}

	case *MacroExpr:
		line("Macro: %s!", n.Name)
		for _, a := range n.Args {
			printNode(sb, a, indent+1)
		}

	case *TupleExpr:
		line("Tuple")
		for _, e := range n.Elems {
			printNode(sb, e, indent+1)
		}

	case *ArrayExpr:
		line("Array")
		for _, e := range n.Elems {
			printNode(sb, e, indent+1)
		}

	case *ArrayRepeatExpr:
		line("ArrayRepeat")
		printNode(sb, n.Value, indent+1)
		printNode(sb, n.Count, indent+1)

	case *RangeExpr:
		if n.Inclusive {
			line("Range: inclusive")
		} else {
			line("Range")
		}
		printNode(sb, n.Start, indent+1)
		printNode(sb, n.End, indent+1)

	case *CastExpr:
		line("Cast: %s", n.Type)
		printNode(sb, n.Expr, indent+1)

	case *RawExpr:
		line("Raw: %s", n.Text)

	default:
		line("Unknown node: %T", n)
	}
}

func pubPrefix(pub bool) string {
	if pub {
		return "pub "
	}
	return ""
}

func genericList(params []*GenericParam) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
		if p.Bounds != "" {
			names[i] += ": " + p.Bounds
		}
	}
	return "<" + strings.Join(names, ", ") + ">"
}

func paramString(p *Param) string {
	switch p.Self {
	case SelfValue:
		return "self"
	case SelfRef:
		return "&self"
	case SelfMutRef:
		return "&mut self"
	}
	if p.Type == nil {
		return p.Name
	}
	return p.Name + ": " + p.Type.String()
}

func joinTypes(types []Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// --- Pattern rendering ---

func bindingList(names []string) string { return strings.Join(names, ", ") }

func (p *ResultOkPattern) String() string   { return "Ok(" + p.Binding + ")" }
func (p *ResultErrPattern) String() string  { return "Err(" + p.Binding + ")" }
func (p *OptionSomePattern) String() string { return "Some(" + p.Binding + ")" }
func (*OptionNonePattern) String() string   { return "None" }
func (*WildcardPattern) String() string     { return Wildcard }
func (p *IdentPattern) String() string      { return p.Name }
func (p *RawPattern) String() string        { return p.Text }

func (p *EnumVariantPattern) String() string {
	path := strings.Join(p.Path, "::")
	switch {
	case p.Record:
		parts := make([]string, len(p.Bindings))
		for i, b := range p.Bindings {
			parts[i] = b
			if i < len(p.Fields) && p.Fields[i] != b {
				parts[i] = p.Fields[i] + ": " + b
			}
		}
		return path + " { " + bindingList(parts) + " }"
	case len(p.Bindings) > 0:
		return path + "(" + bindingList(p.Bindings) + ")"
	default:
		return path
	}
}

func (p *LiteralPattern) String() string {
	parts := make([]string, len(p.Values))
	for i, v := range p.Values {
		parts[i] = v.Value + v.Suffix
	}
	return strings.Join(parts, " | ")
}

// --- Type rendering (surface spelling) ---

func (t *NamedType) String() string { return t.Name }

func (t *GenericType) String() string {
	return t.Base + "<" + joinTypes(t.Args) + ">"
}

func (t *TupleType) String() string {
	if len(t.Elems) == 1 {
		return "(" + t.Elems[0].String() + ",)"
	}
	return "(" + joinTypes(t.Elems) + ")"
}

func (t *FunctionType) String() string {
	s := "fn(" + joinTypes(t.Params) + ")"
	if t.Return != nil {
		s += " -> " + t.Return.String()
	}
	return s
}

func (t *ReferenceType) String() string {
	if t.IsMut {
		return "&mut " + t.Inner.String()
	}
	return "&" + t.Inner.String()
}

func (t *ArrayType) String() string {
	if t.Len == "" {
		return "[" + t.Elem.String() + "]"
	}
	return "[" + t.Elem.String() + "; " + t.Len + "]"
}
