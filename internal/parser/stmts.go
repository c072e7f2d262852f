package parser

import (
	"strings"

	"github.com/lhaig/nu/internal/ast"
)

// parseBlock parses the inside of a brace pair. The last expression
// statement without a semicolon becomes the block's value.
func (p *Parser) parseBlock(body string, sp ast.Span) *ast.BlockExpr {
	block := &ast.BlockExpr{Span: sp}
	lines := splitLines(body, sp.Line)
	for i := 0; i < len(lines); {
		text := strings.TrimSpace(lines[i].text)
		if text == "" {
			i++
			continue
		}
		lsp := ast.Span{Line: lines[i].num, Column: leadingColumn(lines[i].text)}
		c := Classify(text)
		if p.takeMeta(c) {
			i++
			continue
		}
		if c.Marker == CommentMarker {
			block.Stmts = append(block.Stmts, &ast.CommentStmt{Span: lsp, Text: c.Rest})
			i++
			continue
		}

		r, next := p.collect(lines, i)
		i = next
		if IsItemMarker(c.Marker) && c.Decision == Definition {
			if item := p.parseDefinition(r, c); item != nil {
				block.Stmts = append(block.Stmts, &ast.ItemStmt{Span: lsp, Item: item})
				continue
			}
		}
		block.Stmts = append(block.Stmts, p.parseStmtRegion(r)...)
	}
	extractTail(block)
	return block
}

// parseStmtRegion splits a collected region at depth-zero semicolons.
func (p *Parser) parseStmtRegion(r region) []ast.Stmt {
	sp := ast.Span{Line: r.num, Column: r.col}
	var stmts []ast.Stmt
	for _, seg := range splitTop(r.text, ";") {
		if stmt := p.parseStmt(seg.text, seg.semi, advance(sp, r.text[:seg.offset])); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func (p *Parser) parseStmt(text string, semi bool, sp ast.Span) ast.Stmt {
	c := Classify(text)
	if c.Decision == Definition {
		switch {
		case c.Marker == LetMarker:
			return p.parseLet(text, c, sp)
		case c.Marker == CommentMarker:
			return &ast.CommentStmt{Span: sp, Text: c.Rest}
		case IsItemMarker(c.Marker):
			r := region{text: text, num: sp.Line, col: sp.Column}
			if item := p.parseDefinition(r, c); item != nil {
				return &ast.ItemStmt{Span: sp, Item: item}
			}
		}
	}

	expr := p.parseExpr(text, sp)
	if expr == nil {
		return nil
	}
	if raw, ok := expr.(*ast.RawExpr); ok {
		t := raw.Text
		if semi {
			t += ";"
		}
		return &ast.RawStmt{Span: sp, Text: t}
	}
	return &ast.ExprStmt{Span: sp, Expr: expr, Semi: semi}
}

// parseLet reads `l name: T = value`, `v name = value` and `l (a, b) = value`.
func (p *Parser) parseLet(text string, c Classification, sp ast.Span) ast.Stmt {
	rest := restOf(text, c)
	stmt := &ast.LetStmt{Span: sp, IsMut: c.Mutable}
	if strings.HasPrefix(rest, "mut ") {
		stmt.IsMut = true
		rest = strings.TrimSpace(rest[4:])
	}

	lhs, value := rest, ""
	if i := findAssign(rest); i >= 0 {
		lhs, value = rest[:i], rest[i+1:]
	}
	name, typ, hasType := splitColon(lhs)
	if name == "" || isLetElse(value) {
		return &ast.RawStmt{Span: sp, Text: text}
	}
	stmt.Name = name
	if hasType {
		stmt.Type = ParseType(typ)
	}
	if strings.TrimSpace(value) != "" {
		stmt.Value = p.parseExpr(value, advance(sp, text[:len(text)-len(value)]))
	}
	return stmt
}

// isLetElse reports a `let pattern = value else { ... }` binding. An if
// expression with an else branch is an ordinary value.
func isLetElse(value string) bool {
	v := strings.TrimSpace(value)
	if strings.HasPrefix(v, "? ") || strings.HasPrefix(v, "if ") {
		return false
	}
	return strings.Contains(v, " else {")
}

// findAssign returns the index of the first depth-zero plain `=`, or -1.
func findAssign(s string) int {
	dm := depthMap(s)
	for i := 0; i < len(s); i++ {
		if dm[i] != 0 || s[i] != '=' {
			continue
		}
		if i+1 < len(s) && (s[i+1] == '=' || s[i+1] == '>') {
			i++
			continue
		}
		if i > 0 && strings.IndexByte("=!<>+-*/%&|^", s[i-1]) >= 0 {
			continue
		}
		return i
	}
	return -1
}

// restOf returns everything after a classified marker, including any
// following lines of a multi-line region.
func restOf(text string, c Classification) string {
	t := strings.TrimSpace(text)
	first := t
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	first = strings.TrimRight(first, " \t\r")
	if c.Rest != "" && strings.HasSuffix(first, c.Rest) {
		return strings.TrimSpace(t[len(first)-len(c.Rest):])
	}
	if c.Rest == "" && strings.IndexByte(t, '\n') >= 0 {
		return strings.TrimSpace(t[len(first):])
	}
	return c.Rest
}

// extractTail moves a trailing value expression into the block's tail.
func extractTail(b *ast.BlockExpr) {
	if len(b.Stmts) == 0 {
		return
	}
	es, ok := b.Stmts[len(b.Stmts)-1].(*ast.ExprStmt)
	if !ok || es.Semi || !producesValue(es.Expr) {
		return
	}
	b.Tail = es.Expr
	b.Stmts = b.Stmts[:len(b.Stmts)-1]
}

func producesValue(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.ForExpr, *ast.WhileExpr, *ast.LoopExpr, *ast.ReturnExpr, *ast.BreakExpr, *ast.ContinueExpr:
		return false
	case *ast.BinaryExpr:
		return !isAssignOp(n.Op)
	case *ast.MacroExpr:
		return !isPrintMacro(n.Name)
	}
	return true
}

func isAssignOp(op string) bool {
	switch op {
	case "=", "+=", "-=", "*=", "/=", "%=", "|=", "&=", "^=", "<<=", ">>=":
		return true
	}
	return false
}

func isPrintMacro(name string) bool {
	switch name {
	case "println", "print", "eprintln", "eprint":
		return true
	}
	return false
}

// advance returns the position reached after prefix, starting at sp.
func advance(sp ast.Span, prefix string) ast.Span {
	if n := strings.Count(prefix, "\n"); n > 0 {
		return ast.Span{Line: sp.Line + n, Column: len(prefix) - strings.LastIndexByte(prefix, '\n')}
	}
	return ast.Span{Line: sp.Line, Column: sp.Column + len(prefix)}
}
