package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lhaig/nu/internal/ast"
)

// parseExpr parses expression text. It returns nil for empty text and a
// RawExpr when nothing recognizes the text.
func (p *Parser) parseExpr(s string, sp ast.Span) ast.Expr {
	text := strings.TrimSpace(s)
	if text == "" {
		return nil
	}
	if e := p.parseKeywordExpr(text, sp); e != nil {
		return e
	}
	if e := p.parseBinary(text, sp); e != nil {
		return e
	}
	if e := p.parseCast(text, sp); e != nil {
		return e
	}
	if e := p.parseUnary(text, sp); e != nil {
		return e
	}
	if lit, ok := literalOf(text); ok {
		lit.Span = sp
		return lit
	}
	if e := p.parsePostfix(text, sp); e != nil {
		return e
	}
	if e := p.parseAccess(text, sp); e != nil {
		return e
	}
	return p.rawExpr(text, sp)
}

func (p *Parser) rawExpr(text string, sp ast.Span) *ast.RawExpr {
	p.passthrough(sp.Line, sp.Column, "expression", text)
	return &ast.RawExpr{Span: sp, Text: text}
}

// parseOptional parses text that may be empty, as after `<` or `br`.
func (p *Parser) parseOptional(text string, sp ast.Span) ast.Expr {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return p.parseExpr(text, sp)
}

func (p *Parser) parseArgs(inner string, sp ast.Span) []ast.Expr {
	args := []ast.Expr{}
	for _, seg := range splitTop(inner, ",") {
		if e := p.parseExpr(seg.text, advance(sp, inner[:seg.offset])); e != nil {
			args = append(args, e)
		}
	}
	return args
}

// --- Keyword forms ---

func (p *Parser) parseKeywordExpr(text string, sp ast.Span) ast.Expr {
	switch {
	case strings.HasPrefix(text, "|"), strings.HasPrefix(text, "$|"),
		strings.HasPrefix(text, "move |"), strings.HasPrefix(text, "move||"):
		return p.parseClosure(text, sp)
	case text[0] == '{':
		if matchingClose(text, depthMap(text), 0) == len(text)-1 {
			return p.parseBlock(text[1:len(text)-1], sp)
		}
	}

	c := Classify(text)
	if c.Decision != Definition {
		return nil
	}
	rest := restOf(text, c)
	switch c.Marker {
	case IfMarker:
		return p.parseIf(rest, c.Negated, sp)
	case MatchMarker:
		return p.parseMatch(rest, sp)
	case LoopMarker:
		return p.parseLoop(rest, sp)
	case ReturnMarker:
		return &ast.ReturnExpr{Span: sp, Value: p.parseOptional(rest, advance(sp, text[:len(text)-len(rest)]))}
	case BreakMarker:
		if strings.HasPrefix(rest, "'") {
			_, rest, _ = strings.Cut(rest, " ")
		}
		return &ast.BreakExpr{Span: sp, Value: p.parseOptional(rest, sp)}
	case ContinueMarker:
		return &ast.ContinueExpr{Span: sp}
	case PrintMarker:
		return &ast.MacroExpr{Span: sp, Name: "println", Args: p.parseArgs(rest, sp), Text: rest}
	}
	return nil
}

func (p *Parser) parseIf(rest string, negated bool, sp ast.Span) ast.Expr {
	if strings.HasPrefix(rest, "let ") || strings.HasPrefix(rest, "l ") {
		return p.parseIfLet(rest, sp)
	}
	b := splitBlock(rest, sp.Line)
	if !b.found || b.header == "" {
		return p.rawExpr(rest, sp)
	}
	cond := p.parseExpr(b.header, sp)
	if negated {
		cond = &ast.UnaryExpr{Span: sp, Op: "!", Operand: cond}
	}
	ife := &ast.IfExpr{Span: sp, Cond: cond, Then: p.parseBlock(b.body, ast.Span{Line: b.bodyNum, Column: sp.Column})}
	ife.Else = p.parseElse(b.tail, sp)
	return ife
}

// parseElse parses the text after an if block: `else { }` or `else ? ...`.
func (p *Parser) parseElse(tail string, sp ast.Span) ast.Expr {
	if !strings.HasPrefix(tail, "else") {
		return nil
	}
	t := strings.TrimSpace(tail[4:])
	if strings.HasPrefix(t, "{") {
		eb := splitBlock(t, sp.Line)
		return p.parseBlock(eb.body, ast.Span{Line: eb.bodyNum, Column: sp.Column})
	}
	return p.parseExpr(t, sp)
}

// parseIfLet lowers `? l Pat = x { a } else { b }` to a two-arm match.
func (p *Parser) parseIfLet(rest string, sp ast.Span) ast.Expr {
	t := strings.TrimPrefix(strings.TrimPrefix(rest, "let "), "l ")
	b := splitBlock(t, sp.Line)
	i := findAssign(b.header)
	if !b.found || i < 0 {
		return p.rawExpr(rest, sp)
	}
	then := p.parseBlock(b.body, ast.Span{Line: b.bodyNum, Column: sp.Column})
	var otherwise ast.Expr = &ast.BlockExpr{Span: sp}
	if e := p.parseElse(b.tail, sp); e != nil {
		otherwise = e
	}
	return &ast.MatchExpr{
		Span:      sp,
		Scrutinee: p.parseExpr(b.header[i+1:], sp),
		Arms: []*ast.MatchArm{
			{Span: sp, Pattern: ParsePattern(b.header[:i]), Body: then},
			{Span: sp, Pattern: &ast.WildcardPattern{}, Body: otherwise},
		},
	}
}

func (p *Parser) parseMatch(rest string, sp ast.Span) ast.Expr {
	b := splitBlock(rest, sp.Line)
	if !b.found || b.header == "" {
		return p.rawExpr(rest, sp)
	}
	return &ast.MatchExpr{
		Span:      sp,
		Scrutinee: p.parseExpr(b.header, sp),
		Arms:      p.parseArms(b.body, ast.Span{Line: b.bodyNum, Column: sp.Column}),
	}
}

// parseArms splits a match body into `pattern [if guard] => body` arms.
// Pieces without an arrow continue the previous arm.
func (p *Parser) parseArms(body string, sp ast.Span) []*ast.MatchArm {
	type piece struct {
		text string
		sp   ast.Span
	}
	var pieces []piece
	for _, seg := range splitTop(body, ",\n") {
		if strings.HasPrefix(seg.text, "//") {
			continue
		}
		if topArrow(seg.text) < 0 && len(pieces) > 0 {
			pieces[len(pieces)-1].text += "\n" + seg.text
			continue
		}
		pieces = append(pieces, piece{text: seg.text, sp: advance(sp, body[:seg.offset])})
	}

	var arms []*ast.MatchArm
	for _, pc := range pieces {
		i := topArrow(pc.text)
		if i < 0 {
			p.passthrough(pc.sp.Line, pc.sp.Column, "match arm", pc.text)
			continue
		}
		arm := &ast.MatchArm{Span: pc.sp}
		pat := strings.TrimSpace(pc.text[:i])
		if g := findTopWord(pat, depthMap(pat), "if"); g >= 0 {
			arm.Guard = p.parseExpr(pat[g+4:], pc.sp)
			pat = strings.TrimSpace(pat[:g])
		}
		arm.Pattern = ParsePattern(pat)
		if _, raw := arm.Pattern.(*ast.RawPattern); raw {
			p.passthrough(pc.sp.Line, pc.sp.Column, "pattern", pat)
		}
		arm.Body = p.parseExpr(pc.text[i+2:], advance(pc.sp, pc.text[:i+2]))
		if arm.Body == nil {
			arm.Body = &ast.BlockExpr{Span: pc.sp}
		}
		arms = append(arms, arm)
	}
	return arms
}

// topArrow returns the index of the first depth-zero `=>`, or -1.
func topArrow(s string) int {
	dm := depthMap(s)
	for i := 0; i+1 < len(s); i++ {
		if dm[i] == 0 && s[i] == '=' && s[i+1] == '>' {
			return i
		}
	}
	return -1
}

func (p *Parser) parseLoop(rest string, sp ast.Span) ast.Expr {
	b := splitBlock(rest, sp.Line)
	if !b.found {
		return p.rawExpr(rest, sp)
	}
	bodySp := ast.Span{Line: b.bodyNum, Column: sp.Column}
	header := b.header
	if header == "" {
		return &ast.LoopExpr{Span: sp, Body: p.parseBlock(b.body, bodySp)}
	}

	// `L l Pat = x {` loops while the pattern matches
	if strings.HasPrefix(header, "let ") || strings.HasPrefix(header, "l ") {
		h := strings.TrimPrefix(strings.TrimPrefix(header, "let "), "l ")
		i := findAssign(h)
		if i < 0 {
			return p.rawExpr(rest, sp)
		}
		match := &ast.MatchExpr{
			Span:      sp,
			Scrutinee: p.parseExpr(h[i+1:], sp),
			Arms: []*ast.MatchArm{
				{Span: sp, Pattern: ParsePattern(h[:i]), Body: p.parseBlock(b.body, bodySp)},
				{Span: sp, Pattern: &ast.WildcardPattern{}, Body: &ast.BreakExpr{Span: sp}},
			},
		}
		return &ast.LoopExpr{Span: sp, Body: &ast.BlockExpr{Span: sp, Stmts: []ast.Stmt{&ast.ExprStmt{Span: sp, Expr: match}}}}
	}

	// `L (x in it) {` wraps the whole header; `(i, x) in it` only the pattern
	if strings.HasPrefix(header, "(") && matchingClose(header, depthMap(header), 0) == len(header)-1 &&
		strings.Contains(header, " in ") {
		header = strings.TrimSpace(header[1 : len(header)-1])
	}
	if i := findTopWord(header, depthMap(header), "in"); i >= 0 {
		pattern := strings.TrimSpace(header[:i])
		var names []string
		if strings.HasPrefix(pattern, "(") && strings.HasSuffix(pattern, ")") {
			names = splitList(pattern[1 : len(pattern)-1])
		} else {
			names = []string{pattern}
		}
		for j, n := range names {
			names[j] = strings.TrimPrefix(strings.TrimPrefix(n, "&"), "mut ")
		}
		return &ast.ForExpr{
			Span:  sp,
			Names: names,
			Iter:  p.parseExpr(header[i+4:], sp),
			Body:  p.parseBlock(b.body, bodySp),
		}
	}
	return &ast.WhileExpr{Span: sp, Cond: p.parseExpr(header, sp), Body: p.parseBlock(b.body, bodySp)}
}

// parseClosure reads `|a, b: T| body`, `$|x| body`, `move |x| body` and
// `|| body`, with an optional `-> T` before a block body.
func (p *Parser) parseClosure(text string, sp ast.Span) ast.Expr {
	cl := &ast.ClosureExpr{Span: sp}
	t := text
	switch {
	case strings.HasPrefix(t, "move"):
		cl.IsMove = true
		t = strings.TrimSpace(t[4:])
	case strings.HasPrefix(t, "$"):
		cl.IsMove = true
		t = t[1:]
	}

	if strings.HasPrefix(t, "||") {
		t = strings.TrimSpace(t[2:])
	} else {
		end := strings.IndexByte(t[1:], '|')
		if end < 0 {
			return p.rawExpr(text, sp)
		}
		for _, param := range splitTypeList(t[1 : 1+end]) {
			name, typ, ok := splitColon(param)
			prm := &ast.Param{Span: sp, Name: strings.TrimPrefix(name, "mut ")}
			if ok {
				prm.Type = ParseType(typ)
			}
			cl.Params = append(cl.Params, prm)
		}
		t = strings.TrimSpace(t[end+2:])
	}

	if strings.HasPrefix(t, "->") {
		brace := firstTop(t, depthMap(t), '{')
		if brace < 0 {
			return p.rawExpr(text, sp)
		}
		cl.ReturnType = ParseType(t[2:brace])
		t = t[brace:]
	}
	cl.Body = p.parseExpr(t, sp)
	if cl.Body == nil {
		return p.rawExpr(text, sp)
	}
	return cl
}

// --- Binary operators ---

// operatorTokens lists every operator spelling, longest first, so a scan
// never splits `<=` into `<` and `=`.
var operatorTokens = func() []string {
	ops := []string{
		"<<=", ">>=", "..=", "...", "==", "!=", "<=", ">=", "&&", "||", "<<", ">>",
		"+=", "-=", "*=", "/=", "%=", "|=", "&=", "^=", "->", "=>", "::", "..",
		"=", "<", ">", "+", "-", "*", "/", "%", "|", "&", "^", "!",
	}
	sort.SliceStable(ops, func(i, j int) bool { return len(ops[i]) > len(ops[j]) })
	return ops
}()

// binaryTiers orders operators from the loosest binding to the tightest.
// Assignment and ranges split at their first occurrence; every other tier
// splits at its last, which makes them left-associative.
var binaryTiers = []struct {
	ops   []string
	first bool
}{
	{[]string{"=", "+=", "-=", "*=", "/=", "%=", "|=", "&=", "^=", "<<=", ">>="}, true},
	{[]string{"..", "..="}, true},
	{[]string{"||"}, false},
	{[]string{"&&"}, false},
	{[]string{"==", "!=", "<", ">", "<=", ">="}, false},
	{[]string{"|"}, false},
	{[]string{"^"}, false},
	{[]string{"&"}, false},
	{[]string{"<<", ">>"}, false},
	{[]string{"+", "-"}, false},
	{[]string{"*", "/", "%"}, false},
}

type opAt struct {
	pos int
	op  string
}

// topOperators tokenizes the depth-zero binary operators of s. Numbers and
// identifiers are skipped whole and turbofish argument lists are skipped.
func topOperators(s string) []opAt {
	dm := depthMap(s)
	var ops []opAt
	for i := 0; i < len(s); {
		if dm[i] != 0 {
			i++
			continue
		}
		c := s[i]
		if c >= '0' && c <= '9' && (i == 0 || !isIdentByte(s[i-1])) {
			i = numberEnd(s, i)
			continue
		}
		if isIdentByte(c) {
			for i < len(s) && isIdentByte(s[i]) {
				i++
			}
			continue
		}
		tok := matchOperator(s[i:])
		if tok == "" {
			i++
			continue
		}
		if tok == "<" && strings.HasSuffix(s[:i], "::") {
			if end := angleClose(s, i); end > 0 {
				i = end + 1
				continue
			}
		}
		if tok == ".." || tok == "..=" || binaryContext(s, i) {
			ops = append(ops, opAt{pos: i, op: tok})
		}
		i += len(tok)
	}
	return ops
}

func matchOperator(s string) string {
	for _, op := range operatorTokens {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

// binaryContext reports whether an operator at i has an operand before it.
func binaryContext(s string, i int) bool {
	prev := strings.TrimRight(s[:i], " \t\n")
	if prev == "" {
		return false
	}
	c := prev[len(prev)-1]
	return isIdentByte(c) || strings.IndexByte(")]}\"'?!~", c) >= 0
}

// numberEnd returns the index just past the numeric literal at i.
func numberEnd(s string, i int) int {
	hex := strings.HasPrefix(s[i:], "0x")
	j := i
	for j < len(s) {
		c := s[j]
		switch {
		case isIdentByte(c):
			j++
		case c == '.' && j+1 < len(s) && s[j+1] >= '0' && s[j+1] <= '9':
			j++
		case (c == '+' || c == '-') && !hex && j > i && (s[j-1] == 'e' || s[j-1] == 'E'):
			j++
		default:
			return j
		}
	}
	return j
}

func (p *Parser) parseBinary(text string, sp ast.Span) ast.Expr {
	ops := topOperators(text)
	if len(ops) == 0 {
		return nil
	}
	for _, tier := range binaryTiers {
		var pick *opAt
		for k := range ops {
			if !contains(tier.ops, ops[k].op) {
				continue
			}
			pick = &ops[k]
			if tier.first {
				break
			}
		}
		if pick == nil {
			continue
		}

		left := text[:pick.pos]
		right := text[pick.pos+len(pick.op):]
		rightSp := advance(sp, text[:pick.pos+len(pick.op)])
		if pick.op == ".." || pick.op == "..=" {
			return &ast.RangeExpr{
				Span:      sp,
				Start:     p.parseOptional(left, sp),
				End:       p.parseOptional(right, rightSp),
				Inclusive: pick.op == "..=",
			}
		}
		if strings.TrimSpace(left) == "" || strings.TrimSpace(right) == "" {
			continue
		}
		return &ast.BinaryExpr{
			Span:  sp,
			Op:    pick.op,
			Left:  p.parseExpr(left, sp),
			Right: p.parseExpr(right, rightSp),
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// parseCast reads `expr as Type`, splitting at the last depth-zero `as`.
func (p *Parser) parseCast(text string, sp ast.Span) ast.Expr {
	dm := depthMap(text)
	at := -1
	for i := 0; i+4 <= len(text); i++ {
		if dm[i] == 0 && text[i:i+4] == " as " {
			at = i
		}
	}
	if at < 0 {
		return nil
	}
	return &ast.CastExpr{Span: sp, Expr: p.parseExpr(text[:at], sp), Type: ParseType(text[at+4:])}
}

func (p *Parser) parseUnary(text string, sp ast.Span) ast.Expr {
	var op, operand string
	switch {
	case strings.HasPrefix(text, "&mut "):
		op, operand = "&mut", text[5:]
	case strings.HasPrefix(text, "&!"):
		op, operand = "&mut", text[2:]
	case text[0] == '&' || text[0] == '!' || text[0] == '-' || text[0] == '*':
		op, operand = text[:1], text[1:]
	default:
		return nil
	}
	inner := p.parseExpr(operand, advance(sp, text[:len(text)-len(operand)]))
	if inner == nil {
		return p.rawExpr(text, sp)
	}
	if lit, ok := inner.(*ast.Literal); ok && op == "-" && (lit.Kind == ast.IntLit || lit.Kind == ast.FloatLit) {
		lit.Value = "-" + lit.Value
		lit.Span = sp
		return lit
	}
	return &ast.UnaryExpr{Span: sp, Op: op, Operand: inner}
}

// --- Postfix forms ---

func (p *Parser) parsePostfix(text string, sp ast.Span) ast.Expr {
	dm := depthMap(text)
	last := len(text) - 1
	if dm[last] == protected {
		return nil
	}
	switch {
	case strings.HasSuffix(text, ".await"):
		return p.wrapOperand(text[:len(text)-6], sp, func(e ast.Expr) ast.Expr { return &ast.AwaitExpr{Span: sp, Operand: e} })
	case strings.HasSuffix(text, ".~"):
		return p.wrapOperand(text[:len(text)-2], sp, func(e ast.Expr) ast.Expr { return &ast.AwaitExpr{Span: sp, Operand: e} })
	case text[last] == '?' || text[last] == '!':
		return p.wrapOperand(text[:last], sp, func(e ast.Expr) ast.Expr { return &ast.TryExpr{Span: sp, Operand: e} })
	case text[last] == ')':
		return p.parseCallLike(text, dm, sp)
	case text[last] == ']':
		return p.parseIndexLike(text, dm, sp)
	case text[last] == '}':
		return p.parseBraceLike(text, dm, sp)
	}
	return nil
}

func (p *Parser) wrapOperand(text string, sp ast.Span, wrap func(ast.Expr) ast.Expr) ast.Expr {
	inner := p.parseExpr(text, sp)
	if inner == nil {
		return nil
	}
	return wrap(inner)
}

func (p *Parser) parseCallLike(text string, dm []int, sp ast.Span) ast.Expr {
	last := len(text) - 1
	open := matchingOpen(text, dm, last)
	if open < 0 {
		return nil
	}
	inner := text[open+1 : last]
	innerSp := advance(sp, text[:open+1])
	callee := strings.TrimSpace(text[:open])

	if callee == "" {
		trimmed := strings.TrimSpace(inner)
		if trimmed == "" {
			return &ast.Literal{Span: sp, Kind: ast.UnitLit, Value: "()"}
		}
		elems := p.parseArgs(inner, innerSp)
		if len(elems) == 1 && !strings.HasSuffix(trimmed, ",") {
			return elems[0]
		}
		return &ast.TupleExpr{Span: sp, Elems: elems}
	}

	if strings.HasSuffix(callee, "!") && isPath(callee[:len(callee)-1]) {
		return &ast.MacroExpr{Span: sp, Name: macroName(callee[:len(callee)-1]), Args: p.parseArgs(inner, innerSp), Text: inner}
	}
	args := p.parseArgs(inner, innerSp)
	switch callee {
	case "Ok", "Err", "Some":
		return &ast.EnumVariantExpr{Span: sp, Variant: callee, Args: args}
	}

	if dot := lastTopDot(callee); dot > 0 {
		method := callee[dot+1:]
		turbofish := ""
		if i := strings.Index(method, "::<"); i >= 0 && strings.HasSuffix(method, ">") {
			turbofish = method[i+3 : len(method)-1]
			method = method[:i]
		}
		if isIdent(method) {
			return &ast.MethodCallExpr{
				Span:      sp,
				Receiver:  p.parseExpr(callee[:dot], sp),
				Method:    method,
				Turbofish: turbofish,
				Args:      args,
			}
		}
	}

	if segs := splitPath(callee); len(segs) >= 2 {
		variant, enum := segs[len(segs)-1], segs[len(segs)-2]
		if isUpper(variant[0]) && isUpper(enum[0]) && isIdent(enum) {
			return &ast.EnumVariantExpr{Span: sp, Enum: enum, Variant: variant, Args: args}
		}
	}

	fn := p.parseExpr(callee, sp)
	if fn == nil {
		return nil
	}
	return &ast.CallExpr{Span: sp, Func: fn, Args: args}
}

// macroName maps a macro path to its plain name; `V` is the vec shorthand.
func macroName(path string) string {
	name := path
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	if name == "V" {
		return "vec"
	}
	return name
}

func (p *Parser) parseIndexLike(text string, dm []int, sp ast.Span) ast.Expr {
	last := len(text) - 1
	open := matchingOpen(text, dm, last)
	if open < 0 {
		return nil
	}
	inner := text[open+1 : last]
	innerSp := advance(sp, text[:open+1])
	prefix := strings.TrimSpace(text[:open])

	elems := func() []ast.Expr {
		idm := depthMap(inner)
		if semi := firstTop(inner, idm, ';'); semi >= 0 {
			return []ast.Expr{&ast.ArrayRepeatExpr{
				Span:  sp,
				Value: p.parseExpr(inner[:semi], innerSp),
				Count: p.parseExpr(inner[semi+1:], innerSp),
			}}
		}
		return p.parseArgs(inner, innerSp)
	}

	switch {
	case prefix == "":
		list := elems()
		if len(list) == 1 {
			if rep, ok := list[0].(*ast.ArrayRepeatExpr); ok {
				return rep
			}
		}
		return &ast.ArrayExpr{Span: sp, Elems: list}
	case strings.HasSuffix(prefix, "!") && isPath(prefix[:len(prefix)-1]):
		return &ast.MacroExpr{Span: sp, Name: macroName(prefix[:len(prefix)-1]), Args: elems(), Text: inner}
	}

	obj := p.parseExpr(prefix, sp)
	idx := p.parseExpr(inner, innerSp)
	if obj == nil || idx == nil {
		return nil
	}
	return &ast.IndexExpr{Span: sp, Object: obj, Index: idx}
}

func (p *Parser) parseBraceLike(text string, dm []int, sp ast.Span) ast.Expr {
	last := len(text) - 1
	open := matchingOpen(text, dm, last)
	if open < 0 {
		return nil
	}
	inner := text[open+1 : last]
	innerSp := advance(sp, text[:open+1])
	prefix := strings.TrimSpace(text[:open])

	if prefix == "" || prefix == "unsafe" {
		return p.parseBlock(inner, innerSp)
	}
	segs := splitPath(prefix)
	if len(segs) == 0 || !isUpper(segs[len(segs)-1][0]) {
		return nil
	}

	fields, base := p.parseFieldInits(inner, innerSp)
	if len(segs) >= 2 && isUpper(segs[len(segs)-2][0]) && isIdent(segs[len(segs)-2]) {
		return &ast.EnumVariantExpr{Span: sp, Enum: segs[len(segs)-2], Variant: segs[len(segs)-1], Fields: fields}
	}
	return &ast.StructInitExpr{Span: sp, Name: strings.Join(segs, "::"), Fields: fields, Base: base}
}

// parseFieldInits reads `a: x, b, ..base`.
func (p *Parser) parseFieldInits(inner string, sp ast.Span) ([]*ast.FieldInit, ast.Expr) {
	var fields []*ast.FieldInit
	var base ast.Expr
	for _, seg := range splitTop(inner, ",") {
		fsp := advance(sp, inner[:seg.offset])
		if strings.HasPrefix(seg.text, "..") {
			base = p.parseExpr(seg.text[2:], fsp)
			continue
		}
		name, value, ok := splitColon(seg.text)
		if !ok {
			fields = append(fields, &ast.FieldInit{Name: name, Value: &ast.Ident{Span: fsp, Name: name}})
			continue
		}
		fields = append(fields, &ast.FieldInit{Name: name, Value: p.parseExpr(value, fsp)})
	}
	return fields, base
}

// --- Access, paths and names ---

func (p *Parser) parseAccess(text string, sp ast.Span) ast.Expr {
	if text == "None" {
		return &ast.EnumVariantExpr{Span: sp, Variant: "None"}
	}
	if isIdent(text) {
		return &ast.Ident{Span: sp, Name: text}
	}
	if dot := lastTopDot(text); dot > 0 {
		field := text[dot+1:]
		if isIdent(field) || isDigits(field) {
			obj := p.parseExpr(text[:dot], sp)
			if obj == nil {
				return nil
			}
			return &ast.FieldExpr{Span: sp, Object: obj, Field: field}
		}
	}
	if segs := splitPath(text); len(segs) >= 2 {
		variant, enum := segs[len(segs)-1], segs[len(segs)-2]
		if isUpper(variant[0]) && isUpper(enum[0]) && isIdent(enum) && !isAllCaps(variant) {
			return &ast.EnumVariantExpr{Span: sp, Enum: enum, Variant: variant}
		}
		return &ast.PathExpr{Span: sp, Segments: segs}
	}
	return nil
}

// lastTopDot returns the index of the last depth-zero member-access dot,
// ignoring range operators and dots inside number literals.
func lastTopDot(s string) int {
	dm := depthMap(s)
	for i := len(s) - 1; i > 0; i-- {
		if dm[i] != 0 || s[i] != '.' {
			continue
		}
		if s[i-1] == '.' || (i+1 < len(s) && s[i+1] == '.') {
			i--
			continue
		}
		if inNumber(s, i) {
			continue
		}
		return i
	}
	return -1
}

// inNumber reports whether the dot at i is the decimal point of a literal.
func inNumber(s string, i int) bool {
	j := i - 1
	for j >= 0 && s[j] >= '0' && s[j] <= '9' {
		j--
	}
	if j == i-1 {
		return false
	}
	return j < 0 || !(isIdentByte(s[j]) || s[j] == '.')
}

// splitPath splits `a::B::<T>::c` into segments, folding turbofish arguments
// into the preceding segment as `B<T>`. It returns nil when s is not a path.
func splitPath(s string) []string {
	var segs []string
	rest := strings.TrimSpace(s)
	for rest != "" {
		end := 0
		for end < len(rest) && isIdentByte(rest[end]) {
			end++
		}
		if end == 0 || !isIdentStart(rest[0]) {
			return nil
		}
		seg := rest[:end]
		rest = rest[end:]
		if strings.HasPrefix(rest, "::<") {
			close := angleClose(rest, 2)
			if close < 0 {
				return nil
			}
			seg += rest[2 : close+1]
			rest = rest[close+1:]
		}
		segs = append(segs, seg)
		if rest == "" {
			break
		}
		if !strings.HasPrefix(rest, "::") {
			return nil
		}
		rest = rest[2:]
	}
	return segs
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isAllCaps(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			return false
		}
	}
	return len(s) > 1
}

// --- Literals ---

var numberPattern = regexp.MustCompile(`^(0x[0-9a-fA-F_]+|0b[01_]+|0o[0-7_]+|[0-9][0-9_]*(\.[0-9][0-9_]*)?([eE][+-]?[0-9_]+)?)(i8|i16|i32|i64|i128|isize|u8|u16|u32|u64|u128|usize|f32|f64)?$`)

// literalOf recognizes number, string, char, bool and unit literals.
func literalOf(text string) (*ast.Literal, bool) {
	switch text {
	case "true", "false":
		return &ast.Literal{Kind: ast.BoolLit, Value: text}, true
	case "()":
		return &ast.Literal{Kind: ast.UnitLit, Value: text}, true
	}

	t := text
	if strings.HasPrefix(t, "b\"") || strings.HasPrefix(t, "b'") {
		t = t[1:]
	}
	switch {
	case t[0] == '"' || (t[0] == 'r' && isRawStringStart(t, 0)):
		if stringEnd(t, 0) == len(t)-1 && len(t) > 1 {
			return &ast.Literal{Kind: ast.StringLit, Value: t}, true
		}
		return nil, false
	case t[0] == '\'':
		if charEnd(t, 0) == len(t)-1 {
			return &ast.Literal{Kind: ast.CharLit, Value: t}, true
		}
		return nil, false
	}

	m := numberPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	value, suffix := m[1], m[4]
	kind := ast.IntLit
	isHex := strings.HasPrefix(value, "0x")
	if !isHex && (m[2] != "" || m[3] != "") || suffix == "f32" || suffix == "f64" {
		kind = ast.FloatLit
	}
	return &ast.Literal{Kind: kind, Value: value, Suffix: suffix}, true
}
