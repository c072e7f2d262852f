package cppast

import (
	"fmt"
	"strings"

	"github.com/lhaig/nu/internal/lower"
	"github.com/lhaig/nu/internal/scope"
	"github.com/lhaig/nu/internal/sourcemap"
)

// Print renders tu as C++ source text.
func Print(tu *TranslationUnit) string {
	out, _ := PrintMapped(tu)
	return out
}

// PrintMapped renders tu and resolves its Mark nodes to output lines.
func PrintMapped(tu *TranslationUnit) (string, []sourcemap.Mapping) {
	p := &printer{tracker: scope.New(), mapping: true}

	if tu.HeaderGuard != "" {
		p.emitLinef("#ifndef %s", tu.HeaderGuard)
		p.emitLinef("#define %s", tu.HeaderGuard)
		p.emitLine("")
	}
	for _, inc := range tu.Includes {
		p.include(inc)
	}
	if len(tu.Includes) > 0 {
		p.emitLine("")
	}
	if tu.Preamble != "" {
		p.emit(strings.TrimRight(tu.Preamble, "\n") + "\n")
		p.emitLine("")
	}
	p.items(tu.Items)
	if tu.HeaderGuard != "" {
		p.emitLinef("#endif // %s", tu.HeaderGuard)
	}

	return strings.TrimRight(p.sb.String(), "\n") + "\n", p.marks
}

// TypeString renders a type. Nested template arguments that end in `>` get
// a separating space before the enclosing `>`.
func TypeString(t Type) string {
	switch n := t.(type) {
	case nil, *Void:
		return "void"
	case *Primitive:
		return n.Name
	case *Named:
		return n.Name
	case *Pointer:
		return TypeString(n.Inner) + "*"
	case *Reference:
		s := TypeString(n.Inner)
		if n.Const {
			s = "const " + s
		}
		if n.Rvalue {
			return s + "&&"
		}
		return s + "&"
	case *Template:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = TypeString(a)
		}
		inner := strings.Join(args, ", ")
		if strings.HasSuffix(inner, ">") {
			inner += " "
		}
		return n.Base + "<" + inner + ">"
	case *Auto:
		return "auto"
	case *Decltype:
		return "decltype(" + ExprString(n.Expr) + ")"
	case *RawType:
		return n.Text
	}
	return fmt.Sprintf("/* unknown type %T */", t)
}

// ExprString renders an expression on a single line. Lambdas with several
// statements are laid out as if they started at column zero.
func ExprString(e Expr) string {
	p := &printer{tracker: scope.New()}
	return p.expr(e)
}

type printer struct {
	sb      strings.Builder
	indent  int
	tracker *scope.Tracker

	// line mapping; lambda sub-printers leave it off
	mapping bool
	marks   []sourcemap.Mapping
	lines   int // newlines counted up to scanned
	scanned int
}

// mark maps the next output line to source line src.
func (p *printer) mark(src int) {
	if !p.mapping || src <= 0 {
		return
	}
	out := p.sb.String()
	p.lines += strings.Count(out[p.scanned:], "\n")
	p.scanned = len(out)
	target := p.lines + 1
	if n := len(p.marks); n > 0 && p.marks[n-1].TargetLine == target {
		p.marks[n-1].NuLine = src
		return
	}
	p.marks = append(p.marks, sourcemap.Mapping{TargetLine: target, NuLine: src})
}

func (p *printer) emit(s string) {
	p.sb.WriteString(s)
}

func (p *printer) emitLine(s string) {
	if s == "" {
		p.sb.WriteString("\n")
		return
	}
	p.sb.WriteString(p.indentStr())
	p.sb.WriteString(s)
	p.sb.WriteString("\n")
}

func (p *printer) emitLinef(format string, args ...any) {
	p.emitLine(fmt.Sprintf(format, args...))
}

func (p *printer) incIndent() { p.indent++ }
func (p *printer) decIndent() { p.indent-- }

func (p *printer) indentStr() string {
	return strings.Repeat("    ", p.indent)
}

// --- Declarations ---

func (p *printer) include(inc *Include) {
	if inc.System {
		p.emitLinef("#include <%s>", inc.Path)
	} else {
		p.emitLinef("#include \"%s\"", inc.Path)
	}
}

func (p *printer) items(items []Item) {
	for i, it := range items {
		p.item(it)
		_, comment := it.(*CommentItem)
		if !comment && i < len(items)-1 {
			p.emitLine("")
		}
	}
}

func (p *printer) item(it Item) {
	switch n := it.(type) {
	case *Include:
		p.include(n)
	case *Namespace:
		p.emitLinef("namespace %s {", n.Name)
		p.emitLine("")
		p.items(n.Items)
		p.emitLine("")
		p.emitLinef("} // namespace %s", n.Name)
	case *Class:
		p.class(n)
	case *Enum:
		p.enum(n)
	case *Function:
		p.function(n)
	case *TypeAlias:
		p.template(n.Template)
		p.emitLinef("using %s = %s;", n.Name, TypeString(n.Target))
	case *GlobalVar:
		p.globalVar(n)
	case *CommentItem:
		p.comment(n.Text)
	case *RawItem:
		p.raw(n.Text)
	}
}

func (p *printer) template(params []string) {
	if len(params) == 0 {
		return
	}
	parts := make([]string, len(params))
	for i, t := range params {
		parts[i] = "typename " + t
	}
	p.emitLinef("template<%s>", strings.Join(parts, ", "))
}

func (p *printer) class(c *Class) {
	p.template(c.Template)

	keyword := "class"
	section := Private
	if c.Struct {
		keyword = "struct"
		section = Public
	}
	header := keyword + " " + c.Name
	if len(c.Bases) > 0 {
		bases := make([]string, len(c.Bases))
		for i, b := range c.Bases {
			bases[i] = b.Visibility.String() + " " + b.Name
		}
		header += " : " + strings.Join(bases, ", ")
	}
	p.emitLine(header + " {")

	p.tracker.Enter(c.Name, section)
	p.incIndent()
	for _, nested := range c.Nested {
		p.item(nested)
		p.emitLine("")
	}
	for _, f := range c.Fields {
		p.section(f.Visibility)
		p.field(f)
	}
	for i, m := range c.Methods {
		if i > 0 || len(c.Fields) > 0 {
			p.emitLine("")
		}
		p.section(m.Visibility)
		p.function(m)
	}
	p.derives(c)
	p.decIndent()
	p.tracker.Leave()

	p.emitLine("};")
}

// section prints an access label when v differs from the current section.
func (p *printer) section(v Visibility) {
	if v == scope.Unset {
		return
	}
	if p.tracker.SwitchSection(v) {
		p.decIndent()
		p.emitLinef("%s:", v)
		p.incIndent()
	}
}

func (p *printer) field(f *Field) {
	if f.Default != nil {
		p.emitLinef("%s %s = %s;", TypeString(f.Type), f.Name, p.expr(f.Default))
		return
	}
	p.emitLinef("%s %s;", TypeString(f.Type), f.Name)
}

// derives prints the defaulted special members standing in for derived
// capabilities. Capabilities with no C++ counterpart are annotated.
func (p *printer) derives(c *Class) {
	if len(c.Derives) == 0 {
		return
	}
	if len(c.Fields) > 0 || len(c.Methods) > 0 {
		p.emitLine("")
	}
	p.section(Public)
	seen := make(map[string]bool)
	for _, d := range c.Derives {
		var lines []string
		switch d {
		case "PartialEq", "Eq":
			lines = []string{fmt.Sprintf("bool operator==(const %s&) const = default;", c.Name)}
		case "PartialOrd", "Ord":
			lines = []string{fmt.Sprintf("auto operator<=>(const %s&) const = default;", c.Name)}
		case "Clone", "Copy":
			lines = []string{
				fmt.Sprintf("%s(const %s&) = default;", c.Name, c.Name),
				fmt.Sprintf("%s& operator=(const %s&) = default;", c.Name, c.Name),
			}
		case "Default":
			lines = []string{fmt.Sprintf("%s() = default;", c.Name)}
		default:
			lines = []string{fmt.Sprintf("// derive(%s) has no C++ counterpart", d)}
		}
		for _, l := range lines {
			if !seen[l] {
				seen[l] = true
				p.emitLine(l)
			}
		}
	}
}

func (p *printer) signature(f *Function) string {
	var sb strings.Builder
	if f.Static {
		sb.WriteString("static ")
	}
	if f.Virtual {
		sb.WriteString("virtual ")
	}
	if f.Return != nil {
		sb.WriteString(TypeString(f.Return))
		sb.WriteString(" ")
	}
	sb.WriteString(f.Name)
	sb.WriteString("(")
	sb.WriteString(p.params(f.Params))
	sb.WriteString(")")
	if f.Const {
		sb.WriteString(" const")
	}
	if f.Noexcept {
		sb.WriteString(" noexcept")
	}
	if f.Override {
		sb.WriteString(" override")
	}
	return sb.String()
}

func (p *printer) params(params []*Param) string {
	parts := make([]string, len(params))
	for i, prm := range params {
		s := TypeString(prm.Type) + " " + prm.Name
		if prm.Default != nil {
			s += " = " + p.expr(prm.Default)
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}

func (p *printer) function(f *Function) {
	p.template(f.Template)
	sig := p.signature(f)
	switch {
	case f.Abstract:
		p.emitLine(sig + " = 0;")
	case f.Defaulted:
		p.emitLine(sig + " = default;")
	default:
		p.emitLine(sig + " {")
		p.block(f.Body)
		p.emitLine("}")
	}
}

func (p *printer) enum(e *Enum) {
	header := "enum "
	if e.Class {
		header = "enum class "
	}
	header += e.Name
	if e.Underlying != nil {
		header += " : " + TypeString(e.Underlying)
	}
	p.emitLine(header + " {")
	p.incIndent()
	for i, v := range e.Values {
		s := v.Name
		if v.Value != "" {
			s += " = " + v.Value
		}
		if i < len(e.Values)-1 {
			s += ","
		}
		p.emitLine(s)
	}
	p.decIndent()
	p.emitLine("};")
}

func (p *printer) globalVar(g *GlobalVar) {
	var prefix string
	switch {
	case g.Constexpr:
		prefix = "constexpr "
	default:
		if g.Static {
			prefix += "static "
		}
		if g.Const {
			prefix += "const "
		}
	}
	s := prefix + TypeString(g.Type) + " " + g.Name
	if g.Init != nil {
		s += " = " + p.expr(g.Init)
	}
	p.emitLine(s + ";")
}

func (p *printer) comment(text string) {
	for _, l := range strings.Split(text, "\n") {
		p.emitLine(strings.TrimRight("// "+l, " "))
	}
}

func (p *printer) raw(text string) {
	for _, l := range strings.Split(text, "\n") {
		p.emitLine(l)
	}
}

// --- Statements ---

func (p *printer) block(stmts []Stmt) {
	p.incIndent()
	for _, s := range stmts {
		p.stmt(s)
	}
	p.decIndent()
}

func (p *printer) stmt(s Stmt) {
	switch n := s.(type) {
	case *Mark:
		p.mark(n.Line)
	case *VarDecl:
		p.emitLine(p.varDecl(n) + ";")
	case *ExprStmt:
		p.emitLine(p.expr(n.Expr) + ";")
	case *Return:
		if n.Value == nil {
			p.emitLine("return;")
		} else {
			p.emitLinef("return %s;", p.expr(n.Value))
		}
	case *If:
		p.ifStmt(n, "")
	case *While:
		p.emitLinef("while (%s) {", p.expr(n.Cond))
		p.block(n.Body)
		p.emitLine("}")
	case *For:
		init := ""
		switch i := n.Init.(type) {
		case *VarDecl:
			init = p.varDecl(i)
		case *ExprStmt:
			init = p.expr(i.Expr)
		}
		var cond, update string
		if n.Cond != nil {
			cond = " " + p.expr(n.Cond)
		}
		if n.Update != nil {
			update = " " + p.expr(n.Update)
		}
		p.emitLinef("for (%s;%s;%s) {", init, cond, update)
		p.block(n.Body)
		p.emitLine("}")
	case *ForRange:
		p.emitLinef("for (%s %s : %s) {", TypeString(n.Type), n.Var, p.expr(n.Range))
		p.block(n.Body)
		p.emitLine("}")
	case *ForEnumerate:
		// the index wraps to 0 on the first step, so continue never skips it
		p.emitLine("{")
		p.incIndent()
		p.emitLinef("size_t %s = SIZE_MAX;", n.Index)
		p.emitLinef("for (const auto& %s : %s) {", n.Value, p.expr(n.Collection))
		p.incIndent()
		p.emitLinef("++%s;", n.Index)
		p.decIndent()
		p.block(n.Body)
		p.emitLine("}")
		p.decIndent()
		p.emitLine("}")
	case *Switch:
		p.switchStmt(n)
	case *Break:
		p.emitLine("break;")
	case *Continue:
		p.emitLine("continue;")
	case *Block:
		p.emitLine("{")
		p.block(n.Body)
		p.emitLine("}")
	case *Comment:
		p.comment(n.Text)
	case *RawStmt:
		p.raw(n.Text)
	}
}

func (p *printer) varDecl(v *VarDecl) string {
	s := TypeString(v.Type) + " " + v.Name
	if v.Const {
		s = "const " + s
	}
	if v.Init != nil {
		s += " = " + p.expr(v.Init)
	}
	return s
}

// ifStmt prints an if chain; lead is "} else " for chained branches.
func (p *printer) ifStmt(n *If, lead string) {
	p.emitLinef("%sif (%s) {", lead, p.expr(n.Cond))
	p.block(n.Then)
	if len(n.Else) == 1 {
		if next, ok := n.Else[0].(*If); ok {
			p.ifStmt(next, "} else ")
			return
		}
	}
	if len(n.Else) > 0 {
		p.emitLine("} else {")
		p.block(n.Else)
	}
	p.emitLine("}")
}

func (p *printer) switchStmt(n *Switch) {
	p.emitLinef("switch (%s) {", p.expr(n.Expr))
	for _, c := range n.Cases {
		for _, v := range c.Values {
			p.emitLinef("case %s:", p.expr(v))
		}
		p.caseBody(c.Body)
	}
	if n.HasDefault {
		p.emitLine("default:")
		p.caseBody(n.Default)
	}
	p.emitLine("}")
}

// caseBody prints a case body followed by a break unless the body already
// leaves the switch. Bodies that declare variables get their own scope.
func (p *printer) caseBody(body []Stmt) {
	p.incIndent()
	if declares(body) {
		p.emitLine("{")
		p.block(body)
		p.emitLine("}")
	} else {
		for _, s := range body {
			p.stmt(s)
		}
	}
	if !terminates(body) {
		p.emitLine("break;")
	}
	p.decIndent()
}

func declares(body []Stmt) bool {
	for _, s := range body {
		if _, ok := s.(*VarDecl); ok {
			return true
		}
	}
	return false
}

func terminates(body []Stmt) bool {
	if len(body) == 0 {
		return false
	}
	switch body[len(body)-1].(type) {
	case *Return, *Break, *Continue:
		return true
	}
	return false
}

// --- Expressions ---

func precedence(e Expr) int {
	switch n := e.(type) {
	case *BinOp:
		if prec := lower.BinaryPrecedence(n.Op); prec > 0 {
			return prec
		}
		return lower.PrecAssign
	case *Ternary:
		return lower.PrecAssign
	case *UnaryOp:
		if n.Postfix {
			return lower.PrecPostfix
		}
		return lower.PrecUnary
	case *Literal:
		if strings.HasPrefix(n.Text, "-") {
			return lower.PrecUnary
		}
	case *RawExpr:
		return lower.PrecAssign
	}
	return lower.PrecAtom
}

// operand renders child of a binary operator at level parent, adding
// parentheses where C++ would otherwise regroup it.
func (p *printer) operand(parent int, child Expr, right bool) string {
	s := p.expr(child)
	prec := precedence(child)
	if prec < parent || (prec == parent && right && parent != lower.PrecAssign) {
		return "(" + s + ")"
	}
	return s
}

func (p *printer) receiver(e Expr) string {
	s := p.expr(e)
	if _, ok := e.(*Lambda); ok {
		return "(" + s + ")"
	}
	if precedence(e) < lower.PrecPostfix {
		return "(" + s + ")"
	}
	return s
}

func (p *printer) args(args []Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = p.expr(a)
	}
	return strings.Join(parts, ", ")
}

func (p *printer) expr(e Expr) string {
	switch n := e.(type) {
	case nil:
		return ""
	case *Literal:
		return n.Text
	case *Var:
		return n.Name
	case *BinOp:
		prec := precedence(n)
		return p.operand(prec, n.Left, false) + " " + n.Op + " " + p.operand(prec, n.Right, true)
	case *UnaryOp:
		if n.Postfix {
			return p.receiver(n.Operand) + n.Op
		}
		inner := p.expr(n.Operand)
		if precedence(n.Operand) < lower.PrecUnary {
			inner = "(" + inner + ")"
		} else if strings.HasPrefix(inner, n.Op[len(n.Op)-1:]) {
			inner = "(" + inner + ")"
		}
		return n.Op + inner
	case *Call:
		if _, ok := n.Callee.(*Lambda); ok {
			return p.expr(n.Callee) + "(" + p.args(n.Args) + ")"
		}
		return p.receiver(n.Callee) + "(" + p.args(n.Args) + ")"
	case *MethodCall:
		sep := "."
		if n.Arrow {
			sep = "->"
		}
		return p.receiver(n.Object) + sep + n.Method + "(" + p.args(n.Args) + ")"
	case *MemberAccess:
		return p.receiver(n.Object) + "." + n.Member
	case *ArrowAccess:
		return p.receiver(n.Object) + "->" + n.Member
	case *Index:
		return p.receiver(n.Object) + "[" + p.expr(n.Index) + "]"
	case *Ternary:
		cond := p.operand(lower.PrecOr, n.Cond, false)
		return cond + " ? " + p.expr(n.Then) + " : " + p.expr(n.Else)
	case *Lambda:
		return p.lambda(n)
	case *BraceInit:
		parts := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			if f.Name != "" {
				parts[i] = "." + f.Name + " = " + p.expr(f.Value)
			} else {
				parts[i] = p.expr(f.Value)
			}
		}
		prefix := ""
		if n.Type != nil {
			prefix = TypeString(n.Type)
		}
		return prefix + "{" + strings.Join(parts, ", ") + "}"
	case *Cast:
		return fmt.Sprintf("%s<%s>(%s)", n.Kind, TypeString(n.Target), p.expr(n.Expr))
	case *Move:
		return "std::move(" + p.expr(n.Expr) + ")"
	case *This:
		return "this"
	case *Nullptr:
		return "nullptr"
	case *RawExpr:
		return n.Text
	}
	return fmt.Sprintf("/* unknown expression %T */", e)
}

func (p *printer) captures(l *Lambda) string {
	switch l.Mode {
	case CaptureCopy:
		return "="
	case CaptureRef:
		return "&"
	case CaptureExplicit:
		parts := make([]string, len(l.Captures))
		for i, c := range l.Captures {
			switch {
			case c.Moved:
				parts[i] = fmt.Sprintf("%s = std::move(%s)", c.Name, c.Name)
			case c.ByRef:
				parts[i] = "&" + c.Name
			default:
				parts[i] = c.Name
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func unmarked(stmts []Stmt) []Stmt {
	out := stmts[:0:0]
	for _, s := range stmts {
		if _, ok := s.(*Mark); !ok {
			out = append(out, s)
		}
	}
	return out
}

func (p *printer) lambda(l *Lambda) string {
	head := "[" + p.captures(l) + "](" + p.params(l.Params) + ")"
	if l.Return != nil {
		head += " -> " + TypeString(l.Return)
	}
	body := unmarked(l.Body)
	if len(body) == 0 {
		return head + " {}"
	}
	if len(body) == 1 {
		switch s := body[0].(type) {
		case *Return:
			if s.Value != nil {
				return head + " { return " + p.expr(s.Value) + "; }"
			}
		case *ExprStmt:
			return head + " { " + p.expr(s.Expr) + "; }"
		}
	}
	sub := &printer{indent: p.indent, tracker: scope.New()}
	sub.block(body)
	return head + " {\n" + sub.sb.String() + p.indentStr() + "}"
}
