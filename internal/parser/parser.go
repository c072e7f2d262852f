package parser

import (
	"strings"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/diagnostic"
	"github.com/lhaig/nu/internal/scope"
)

// Parser holds the parser state
type Parser struct {
	source   string
	diags    *diagnostic.Diagnostics
	tracker  *scope.Tracker
	err      error
	reported map[int]bool // lines already reported as unclosed
	meta     pendingMeta
}

// pendingMeta collects derives, attributes and doc lines until the item
// they precede is parsed
type pendingMeta struct {
	derives []string
	attrs   []string
	doc     []string
}

func (m *pendingMeta) take() pendingMeta {
	out := *m
	*m = pendingMeta{}
	return out
}

// New creates a new parser
func New(source string) *Parser {
	return &Parser{
		source:   source,
		diags:    diagnostic.New(),
		tracker:  scope.New(),
		reported: make(map[int]bool),
	}
}

// Diagnostics returns the parser's diagnostics
func (p *Parser) Diagnostics() *diagnostic.Diagnostics {
	return p.diags
}

// Err returns the first unrecoverable problem, an *UnclosedBlockError, or
// nil. The tree returned by Parse is usable either way.
func (p *Parser) Err() error {
	return p.err
}

// Parse parses the whole source into a canonical file. It never fails:
// unrecognized constructs become Raw nodes.
func (p *Parser) Parse() *ast.File {
	lines := splitLines(p.source, 1)
	return &ast.File{Items: p.parseItems(lines, true)}
}

// parseItems parses a sequence of item lines. At the top level the scope
// tracker is reset between items.
func (p *Parser) parseItems(lines []line, topLevel bool) []ast.Item {
	var items []ast.Item
	for i := 0; i < len(lines); {
		text := strings.TrimSpace(lines[i].text)
		if text == "" {
			i++
			continue
		}
		sp := ast.Span{Line: lines[i].num, Column: leadingColumn(lines[i].text)}
		c := Classify(text)
		if p.takeMeta(c) {
			i++
			continue
		}
		if c.Marker == CommentMarker {
			items = append(items, &ast.CommentItem{Span: sp, Text: c.Rest})
			i++
			continue
		}

		r, next := p.collect(lines, i)
		i = next
		items = append(items, p.parseItem(r, c)...)
		if topLevel {
			p.tracker.Reset()
		}
	}
	return items
}

// takeMeta stores derive, attribute and doc lines for the next item.
func (p *Parser) takeMeta(c Classification) bool {
	switch c.Marker {
	case DeriveMarker:
		for _, d := range splitList(c.Rest) {
			p.meta.derives = append(p.meta.derives, d)
		}
		return true
	case AttrMarker:
		p.meta.attrs = append(p.meta.attrs, c.Rest)
		return true
	case DocMarker:
		p.meta.doc = append(p.meta.doc, c.Rest)
		return true
	}
	return false
}

// parseItem dispatches one collected region on its marker. Regions that are
// not items become top-level statements, or Raw items when nothing
// recognizes them.
func (p *Parser) parseItem(r region, c Classification) []ast.Item {
	sp := ast.Span{Line: r.num, Column: r.col}
	if c.Decision == Definition {
		if item := p.parseDefinition(r, c); item != nil {
			return []ast.Item{item}
		}
	}

	var items []ast.Item
	for _, stmt := range p.parseStmtRegion(r) {
		switch s := stmt.(type) {
		case *ast.RawStmt:
			items = append(items, &ast.RawItem{Span: s.Span, Text: s.Text})
		case *ast.ItemStmt:
			items = append(items, s.Item)
		default:
			items = append(items, &ast.StmtItem{Span: sp, Stmt: stmt})
		}
	}
	return items
}

// parseDefinition parses item markers and returns nil for statement markers.
func (p *Parser) parseDefinition(r region, c Classification) ast.Item {
	sp := ast.Span{Line: r.num, Column: r.col}
	rest := restOf(r.text, c)
	switch c.Marker {
	case FuncMarker:
		return p.parseFunction(sp, rest, c)
	case StructMarker:
		return p.parseStruct(sp, rest, c)
	case EnumMarker:
		return p.parseEnum(sp, rest, c)
	case ImplMarker:
		return p.parseImpl(sp, rest)
	case TraitMarker:
		return p.parseTrait(sp, rest, c)
	case ModMarker:
		return p.parseMod(sp, rest, c)
	case UseMarker:
		return &ast.UseDecl{Span: sp, Path: strings.TrimSuffix(strings.TrimSpace(rest), ";"), IsPublic: c.Public}
	case TypeAliasMarker:
		return p.parseTypeAlias(sp, rest, c)
	case ConstMarker:
		return p.parseConst(sp, rest, c)
	}
	return nil
}

// ParseExpr parses a single expression.
func ParseExpr(text string) ast.Expr {
	return New(text).parseExpr(text, ast.Span{Line: 1, Column: 1})
}
