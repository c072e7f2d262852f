package parser

import (
	"fmt"
	"strings"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/scope"
)

// --- Functions ---

func (p *Parser) parseFunction(sp ast.Span, text string, c Classification) *ast.FunctionDef {
	meta := p.meta.take()
	fn := &ast.FunctionDef{
		Span:       sp,
		IsPublic:   c.Public,
		IsAsync:    c.Async,
		Attributes: meta.attrs,
		Doc:        strings.Join(meta.doc, "\n"),
		Owner:      p.tracker.Current(),
	}

	b := splitBlock(text, sp.Line)
	p.parseSignature(fn, strings.TrimSuffix(b.header, ";"))
	if !b.found {
		fn.Abstract = true
		fn.Body = &ast.BlockExpr{Span: sp}
		return fn
	}

	p.tracker.Open(1)
	fn.Body = p.parseBlock(b.body, ast.Span{Line: b.bodyNum, Column: sp.Column})
	p.tracker.Close(1)
	return fn
}

// parseSignature reads `name<G>(params) -> Ret wh bounds`.
func (p *Parser) parseSignature(fn *ast.FunctionDef, sig string) {
	sig = strings.Join(strings.Fields(sig), " ")
	nameEnd := strings.IndexAny(sig, "<(")
	if nameEnd < 0 {
		fn.Name = sig
		return
	}
	fn.Name = strings.TrimSpace(sig[:nameEnd])
	rest := sig[nameEnd:]

	if rest[0] == '<' {
		if end := angleClose(rest, 0); end > 0 {
			fn.Generics = parseGenerics(rest[1:end])
			rest = strings.TrimSpace(rest[end+1:])
		}
	}

	if strings.HasPrefix(rest, "(") {
		dm := depthMap(rest)
		end := matchingClose(rest, dm, 0)
		if end < 0 {
			end = len(rest)
			rest += ")"
		}
		for _, param := range splitTypeList(rest[1:end]) {
			fn.Params = append(fn.Params, parseParam(param, fn.Span))
		}
		rest = strings.TrimSpace(rest[end+1:])
	}

	rest, fn.Where = splitWhere(rest)
	if strings.HasPrefix(rest, "->") {
		fn.ReturnType = ParseType(rest[2:])
	}
}

func parseParam(text string, sp ast.Span) *ast.Param {
	t := strings.TrimSpace(text)
	switch t {
	case "self", "mut self":
		return &ast.Param{Span: sp, Name: "self", Self: ast.SelfValue}
	case "&self":
		return &ast.Param{Span: sp, Name: "self", Self: ast.SelfRef}
	case "&mut self", "&!self":
		return &ast.Param{Span: sp, Name: "self", Self: ast.SelfMutRef}
	}
	if strings.HasPrefix(t, "&'") && strings.HasSuffix(t, " self") {
		kind := ast.SelfRef
		if strings.Contains(t, " mut ") {
			kind = ast.SelfMutRef
		}
		return &ast.Param{Span: sp, Name: "self", Self: kind}
	}

	name, typ, ok := splitColon(t)
	if !ok {
		return &ast.Param{Span: sp, Name: strings.TrimPrefix(t, "mut ")}
	}
	return &ast.Param{Span: sp, Name: strings.TrimPrefix(name, "mut "), Type: ParseType(typ)}
}

// parseGenerics reads the inside of a `<...>` parameter list. Lifetimes are
// dropped.
func parseGenerics(text string) []*ast.GenericParam {
	var params []*ast.GenericParam
	for _, g := range splitTypeList(text) {
		if strings.HasPrefix(g, "'") {
			continue
		}
		if strings.HasPrefix(g, "const ") {
			name, typ, _ := splitColon(strings.TrimPrefix(g, "const "))
			params = append(params, &ast.GenericParam{Name: name, Bounds: "const " + typ})
			continue
		}
		name, bounds, _ := splitColon(g)
		if i := strings.IndexByte(name, '='); i >= 0 {
			name = strings.TrimSpace(name[:i])
		}
		params = append(params, &ast.GenericParam{Name: name, Bounds: bounds})
	}
	return params
}

// nameAndGenerics splits `Name<T: B> rest` into its parts.
func nameAndGenerics(header string) (string, []*ast.GenericParam, string) {
	h := strings.TrimSpace(header)
	end := 0
	for end < len(h) && (isIdentByte(h[end]) || h[end] == ':') {
		end++
	}
	name := h[:end]
	rest := strings.TrimSpace(h[end:])
	var generics []*ast.GenericParam
	if strings.HasPrefix(rest, "<") {
		if close := angleClose(rest, 0); close > 0 {
			generics = parseGenerics(rest[1:close])
			rest = strings.TrimSpace(rest[close+1:])
		}
	}
	return name, generics, rest
}

// splitWhere separates a trailing `wh` / `where` clause.
func splitWhere(s string) (string, string) {
	padded := " " + s + " "
	dm := depthMap(padded)
	for _, kw := range []string{"where", "wh"} {
		if i := findTopWord(padded, dm, kw); i >= 0 {
			head := strings.TrimSpace(padded[:i])
			clause := strings.TrimSpace(padded[i+len(kw)+2:])
			return head, clause
		}
	}
	return strings.TrimSpace(s), ""
}

// splitColon splits `name: Type` at the first depth-zero single colon.
func splitColon(s string) (string, string, bool) {
	dm := depthMap(s)
	for i := 0; i < len(s); i++ {
		if dm[i] != 0 || s[i] != ':' {
			continue
		}
		if i+1 < len(s) && s[i+1] == ':' {
			i++
			continue
		}
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), true
	}
	return strings.TrimSpace(s), "", false
}

// --- Structs and enums ---

func (p *Parser) parseStruct(sp ast.Span, text string, c Classification) *ast.StructDef {
	meta := p.meta.take()
	def := &ast.StructDef{
		Span:       sp,
		IsPublic:   c.Public,
		Derives:    meta.derives,
		Attributes: meta.attrs,
		Doc:        strings.Join(meta.doc, "\n"),
	}

	b := splitBlock(strings.TrimSuffix(strings.TrimSpace(text), ";"), sp.Line)
	name, generics, rest := nameAndGenerics(b.header)
	def.Name, def.Generics = name, generics
	rest, _ = splitWhere(rest)

	if b.found {
		def.Fields = p.parseFields(b.body, b.bodyNum)
		return def
	}
	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		def.Tuple = true
		for i, typ := range splitTypeList(rest[1 : len(rest)-1]) {
			pub := strings.HasPrefix(typ, "pub ")
			def.Fields = append(def.Fields, &ast.Field{
				Span:     sp,
				Name:     fmt.Sprintf("_%d", i),
				Type:     ParseType(strings.TrimPrefix(typ, "pub ")),
				IsPublic: pub,
			})
		}
	}
	return def
}

// memberSegments splits a brace body into comma or newline separated
// members, dropping comments and attributes.
func memberSegments(body string) []segment {
	var out []segment
	for _, seg := range splitTop(body, ",\n") {
		if strings.HasPrefix(seg.text, "//") || strings.HasPrefix(seg.text, "#[") || strings.HasPrefix(seg.text, "#D(") {
			continue
		}
		out = append(out, seg)
	}
	return out
}

func (p *Parser) parseFields(body string, firstLine int) []*ast.Field {
	var fields []*ast.Field
	for _, seg := range memberSegments(body) {
		sp := ast.Span{Line: firstLine + strings.Count(body[:seg.offset], "\n"), Column: 1}
		t := seg.text
		pub := false
		for _, vis := range []string{"pub(crate) ", "pub "} {
			if strings.HasPrefix(t, vis) {
				pub = true
				t = strings.TrimSpace(t[len(vis):])
			}
		}
		name, typ, ok := splitColon(t)
		if !ok {
			p.passthrough(sp.Line, sp.Column, "field", seg.text)
			continue
		}
		fields = append(fields, &ast.Field{Span: sp, Name: name, Type: ParseType(typ), IsPublic: pub})
	}
	return fields
}

func (p *Parser) parseEnum(sp ast.Span, text string, c Classification) *ast.EnumDef {
	meta := p.meta.take()
	def := &ast.EnumDef{
		Span:       sp,
		IsPublic:   c.Public,
		Derives:    meta.derives,
		Attributes: meta.attrs,
		Doc:        strings.Join(meta.doc, "\n"),
	}

	b := splitBlock(text, sp.Line)
	def.Name, def.Generics, _ = nameAndGenerics(b.header)

	for _, seg := range memberSegments(b.body) {
		vsp := ast.Span{Line: b.bodyNum + strings.Count(b.body[:seg.offset], "\n"), Column: 1}
		def.Variants = append(def.Variants, p.parseVariant(seg.text, vsp))
	}
	return def
}

func (p *Parser) parseVariant(text string, sp ast.Span) *ast.EnumVariant {
	v := &ast.EnumVariant{Span: sp}
	t := text
	if name, disc, ok := strings.Cut(t, "="); ok {
		t = strings.TrimSpace(name)
		v.Discriminant = strings.TrimSpace(disc)
	}

	end := 0
	for end < len(t) && isIdentByte(t[end]) {
		end++
	}
	v.Name = t[:end]
	rest := strings.TrimSpace(t[end:])
	switch {
	case strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")"):
		v.Kind = ast.TupleVariant
		for _, typ := range splitTypeList(rest[1 : len(rest)-1]) {
			v.Types = append(v.Types, ParseType(typ))
		}
	case strings.HasPrefix(rest, "{") && strings.HasSuffix(rest, "}"):
		v.Kind = ast.RecordVariant
		v.Fields = p.parseFields(rest[1:len(rest)-1], sp.Line)
	case rest != "":
		p.passthrough(sp.Line, sp.Column, "variant", text)
	}
	return v
}

// --- Impl, trait and module bodies ---

func (p *Parser) parseImpl(sp ast.Span, text string) *ast.ImplDef {
	p.meta.take()
	def := &ast.ImplDef{Span: sp}
	b := splitBlock(text, sp.Line)

	header := b.header
	if strings.HasPrefix(header, "<") {
		if end := angleClose(header, 0); end > 0 {
			def.Generics = parseGenerics(header[1:end])
			header = strings.TrimSpace(header[end+1:])
		}
	}
	header, _ = splitWhere(header)
	if i := findTopWord(header, depthMap(header), "for"); i >= 0 {
		def.Trait = baseName(header[:i])
		header = header[i+5:]
	}
	def.Target = baseName(header)

	p.tracker.Enter(def.Target, scope.Private)
	for _, item := range p.parseItems(splitLines(b.body, b.bodyNum), false) {
		if fn, ok := item.(*ast.FunctionDef); ok {
			def.Methods = append(def.Methods, fn)
		} else {
			def.Other = append(def.Other, item)
		}
	}
	p.tracker.Leave()
	return def
}

// baseName strips generic arguments and reference sigils from a type name.
func baseName(s string) string {
	t := strings.TrimSpace(s)
	t = strings.TrimLeft(t, "&")
	if i := strings.IndexByte(t, '<'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

func (p *Parser) parseTrait(sp ast.Span, text string, c Classification) *ast.TraitDef {
	meta := p.meta.take()
	def := &ast.TraitDef{Span: sp, IsPublic: c.Public, Doc: strings.Join(meta.doc, "\n")}
	b := splitBlock(text, sp.Line)
	name, generics, _ := nameAndGenerics(b.header)
	def.Name, def.Generics = name, generics

	p.tracker.Enter(def.Name, scope.Public)
	for _, item := range p.parseItems(splitLines(b.body, b.bodyNum), false) {
		switch it := item.(type) {
		case *ast.FunctionDef:
			def.Methods = append(def.Methods, it)
		case *ast.CommentItem:
		default:
			line, col := item.Pos()
			p.diags.Warningf(line, col, "trait member of %s not translated", def.Name)
		}
	}
	p.tracker.Leave()
	return def
}

func (p *Parser) parseMod(sp ast.Span, text string, c Classification) *ast.ModDecl {
	p.meta.take()
	b := splitBlock(text, sp.Line)
	def := &ast.ModDecl{Span: sp, IsPublic: c.Public, Name: strings.TrimSuffix(b.header, ";")}
	if !b.found {
		return def
	}
	def.Inline = true
	p.tracker.Open(1)
	def.Items = p.parseItems(splitLines(b.body, b.bodyNum), false)
	p.tracker.Close(1)
	return def
}

func (p *Parser) parseTypeAlias(sp ast.Span, text string, c Classification) *ast.TypeAlias {
	p.meta.take()
	t := strings.TrimSuffix(strings.TrimSpace(text), ";")
	head, typ, _ := strings.Cut(t, "=")
	name, generics, _ := nameAndGenerics(head)
	return &ast.TypeAlias{Span: sp, Name: name, Generics: generics, Type: ParseType(typ), IsPublic: c.Public}
}

func (p *Parser) parseConst(sp ast.Span, text string, c Classification) *ast.ConstDecl {
	p.meta.take()
	t := strings.TrimSuffix(strings.TrimSpace(text), ";")
	decl := &ast.ConstDecl{Span: sp, IsPublic: c.Public, IsStatic: c.Static}
	head, value := t, ""
	if i := findAssign(t); i >= 0 {
		head, value = t[:i], t[i+1:]
	}
	name, typ, ok := splitColon(head)
	decl.Name = strings.TrimPrefix(name, "mut ")
	if ok {
		decl.Type = ParseType(typ)
	}
	if strings.TrimSpace(value) != "" {
		decl.Value = p.parseExpr(value, sp)
	}
	return decl
}
