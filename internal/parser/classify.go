package parser

import "strings"

// Marker identifies the construct a line's leading prefix introduces
type Marker int

const (
	NoMarker Marker = iota
	FuncMarker
	StructMarker
	EnumMarker
	ImplMarker
	TraitMarker
	ModMarker
	UseMarker
	LetMarker
	ReturnMarker
	BreakMarker
	ContinueMarker
	LoopMarker
	IfMarker
	MatchMarker
	PrintMarker
	DeriveMarker
	AttrMarker
	TypeAliasMarker
	ConstMarker
	DocMarker
	CommentMarker
)

var markerNames = map[Marker]string{
	NoMarker:        "none",
	FuncMarker:      "function",
	StructMarker:    "struct",
	EnumMarker:      "enum",
	ImplMarker:      "impl",
	TraitMarker:     "trait",
	ModMarker:       "mod",
	UseMarker:       "use",
	LetMarker:       "let",
	ReturnMarker:    "return",
	BreakMarker:     "break",
	ContinueMarker:  "continue",
	LoopMarker:      "loop",
	IfMarker:        "if",
	MatchMarker:     "match",
	PrintMarker:     "print",
	DeriveMarker:    "derive",
	AttrMarker:      "attribute",
	TypeAliasMarker: "type alias",
	ConstMarker:     "const",
	DocMarker:       "doc comment",
	CommentMarker:   "comment",
}

func (m Marker) String() string {
	if name, ok := markerNames[m]; ok {
		return name
	}
	return "unknown"
}

// Decision is the classifier's reading of an ambiguous marker
type Decision int

const (
	Unknown Decision = iota
	Definition
	Call
)

func (d Decision) String() string {
	switch d {
	case Definition:
		return "definition"
	case Call:
		return "call"
	default:
		return "unknown"
	}
}

// Classification is the tagged result of inspecting one line's leading marker.
// Rest holds the text after the marker, trimmed.
type Classification struct {
	Marker   Marker
	Decision Decision
	Rest     string
	Public   bool
	Async    bool
	Mutable  bool
	Negated  bool
	Static   bool
}

func definition(m Marker, rest string) Classification {
	return Classification{Marker: m, Decision: Definition, Rest: strings.TrimSpace(rest)}
}

// Classify inspects the leading marker of a line. A definition reading wins
// whenever it is plausible; a parenthesis glued to a marker means a call.
func Classify(text string) Classification {
	t := strings.TrimSpace(text)
	switch {
	case t == "":
		return Classification{}
	case strings.HasPrefix(t, "///"):
		return definition(DocMarker, t[3:])
	case strings.HasPrefix(t, "//"):
		return definition(CommentMarker, t[2:])
	case strings.HasPrefix(t, "#D("):
		inner := strings.TrimPrefix(t, "#D(")
		return definition(DeriveMarker, strings.TrimSuffix(strings.TrimSpace(inner), ")"))
	case strings.HasPrefix(t, "#[derive("):
		inner := strings.TrimSuffix(strings.TrimPrefix(t, "#[derive("), "]")
		return definition(DeriveMarker, strings.TrimSuffix(strings.TrimSpace(inner), ")"))
	case strings.HasPrefix(t, "#["):
		return definition(AttrMarker, t)
	case strings.HasPrefix(t, ">") && !strings.HasPrefix(t, ">>") && !strings.HasPrefix(t, ">="):
		return definition(PrintMarker, t[1:])
	case strings.HasPrefix(t, "?!"):
		c := definition(IfMarker, t[2:])
		c.Negated = true
		return c
	case strings.HasPrefix(t, "?"):
		return definition(IfMarker, t[1:])
	case t == "<" || strings.HasPrefix(t, "< "):
		return definition(ReturnMarker, t[1:])
	}

	if c, ok := classifyLongForm(t); ok {
		return c
	}
	return classifyShort(t)
}

// wordAfter reports whether t starts with the marker m followed by a space
// and returns the remaining text.
func wordAfter(t, m string) (string, bool) {
	if !strings.HasPrefix(t, m) || len(t) <= len(m) {
		return "", false
	}
	if t[len(m)] != ' ' && t[len(m)] != '\t' {
		return "", false
	}
	return strings.TrimSpace(t[len(m):]), true
}

// bare reports whether t is exactly the marker m, optionally followed by a
// semicolon or a space.
func bare(t, m string) (string, bool) {
	if t == m {
		return "", true
	}
	if strings.HasPrefix(t, m) && (t[len(m)] == ';' || t[len(m)] == ' ') {
		return strings.TrimSpace(t[len(m):]), true
	}
	return "", false
}

// classifyFunc reads `F name(`/`F name<`: a definition. `F(` is a call.
func classifyFunc(t, m string, public, async bool) (Classification, bool) {
	if strings.HasPrefix(t, m+"(") {
		return Classification{Marker: FuncMarker, Decision: Call}, true
	}
	rest, ok := wordAfter(t, m)
	if !ok {
		if strings.HasPrefix(t, m+" (") {
			return Classification{Marker: FuncMarker, Decision: Call}, true
		}
		return Classification{}, false
	}
	end := 0
	for end < len(rest) && isIdentByte(rest[end]) {
		end++
	}
	if end == 0 || end == len(rest) || (rest[end] != '(' && rest[end] != '<') {
		if strings.HasPrefix(rest, "(") {
			return Classification{Marker: FuncMarker, Decision: Call}, true
		}
		return Classification{}, false
	}
	c := definition(FuncMarker, rest)
	c.Public, c.Async = public, async
	return c, true
}

// classifyNamed reads `M Name` where Name starts with a letter or `_`.
func classifyNamed(t, m string, marker Marker, public bool) (Classification, bool) {
	rest, ok := wordAfter(t, m)
	if !ok || rest == "" || !isIdentStart(rest[0]) {
		return Classification{}, false
	}
	c := definition(marker, rest)
	c.Public = public
	return c, true
}

// classifyBinding reads `l x = ...` and `v x = ...`; the name may be a
// tuple pattern in parentheses. A dot or operator after the marker means it
// is an ordinary identifier.
func classifyBinding(t, m string, mutable bool) (Classification, bool) {
	rest, ok := wordAfter(t, m)
	if !ok || rest == "" || (!isIdentStart(rest[0]) && rest[0] != '(') {
		return Classification{}, false
	}
	cut := 0
	for cut < len(rest) && isIdentByte(rest[cut]) {
		cut++
	}
	if word := rest[:cut]; word == "in" || word == "as" {
		return Classification{}, false
	}
	c := definition(LetMarker, rest)
	c.Mutable = mutable
	return c, true
}

func isAssignmentStart(s string) bool {
	for _, op := range []string{"=", "+=", "-=", "*=", "/=", "%=", "|=", "&=", "^="} {
		if strings.HasPrefix(s, op) && !strings.HasPrefix(s, "==") {
			return true
		}
	}
	return false
}

func classifyShort(t string) Classification {
	for _, m := range []struct {
		text          string
		public, async bool
	}{{"~F", true, true}, {"~f", false, true}, {"F", true, false}, {"f", false, false}} {
		if c, ok := classifyFunc(t, m.text, m.public, m.async); ok {
			return c
		}
	}

	if c, ok := classifyNamed(t, "S", StructMarker, true); ok {
		return c
	}
	if c, ok := classifyNamed(t, "s", StructMarker, false); ok {
		return c
	}
	if !strings.Contains(t, "=>") {
		if c, ok := classifyNamed(t, "E", EnumMarker, true); ok {
			return c
		}
		if c, ok := classifyNamed(t, "e", EnumMarker, false); ok {
			return c
		}
	}
	if c, ok := classifyNamed(t, "TR", TraitMarker, true); ok {
		return c
	}
	if c, ok := classifyNamed(t, "tr", TraitMarker, false); ok {
		return c
	}
	if rest, ok := wordAfter(t, "I"); ok && rest != "" && (isIdentStart(rest[0]) || rest[0] == '<') {
		return definition(ImplMarker, rest)
	}
	if strings.HasPrefix(t, "I<") {
		return definition(ImplMarker, t[1:])
	}
	if c, ok := classifyNamed(t, "DM", ModMarker, true); ok {
		return c
	}
	if c, ok := classifyNamed(t, "D", ModMarker, false); ok {
		return c
	}
	if c, ok := classifyNamed(t, "U", UseMarker, true); ok {
		return c
	}
	if c, ok := classifyNamed(t, "u", UseMarker, false); ok {
		return c
	}
	if c, ok := classifyBinding(t, "l", false); ok {
		return c
	}
	if c, ok := classifyBinding(t, "v", true); ok {
		return c
	}
	if rest, ok := bare(t, "br"); ok {
		return definition(BreakMarker, strings.TrimSuffix(rest, ";"))
	}
	if rest, ok := bare(t, "ct"); ok {
		return definition(ContinueMarker, strings.TrimSuffix(rest, ";"))
	}
	if c, ok := classifyLoop(t, "L"); ok {
		return c
	}
	if c, ok := classifyMatch(t, "M"); ok {
		return c
	}
	if rest, ok := wordAfter(t, "t"); ok && rest != "" && !isAssignmentStart(rest) {
		return definition(TypeAliasMarker, rest)
	}
	if c, ok := classifyNamed(t, "CP", ConstMarker, true); ok {
		return c
	}
	if c, ok := classifyNamed(t, "C", ConstMarker, false); ok {
		return c
	}
	return Classification{}
}

func classifyLoop(t, m string) (Classification, bool) {
	if rest, ok := wordAfter(t, m); ok {
		return definition(LoopMarker, rest), true
	}
	if strings.HasPrefix(t, m+"{") {
		return definition(LoopMarker, t[len(m):]), true
	}
	// `L(x in it) {` is a loop, `L(x)` a call
	if strings.HasPrefix(t, m+"(") && strings.Contains(t, " in ") && strings.Contains(t, "{") {
		return definition(LoopMarker, t[len(m):]), true
	}
	if strings.HasPrefix(t, m+"(") {
		return Classification{Marker: LoopMarker, Decision: Call}, true
	}
	return Classification{}, false
}

func classifyMatch(t, m string) (Classification, bool) {
	if rest, ok := wordAfter(t, m); ok && rest != "" && !strings.ContainsRune("+/%<>|^.=:", rune(rest[0])) {
		return definition(MatchMarker, rest), true
	}
	if strings.HasPrefix(t, m+"(") {
		if strings.HasSuffix(t, "{") || strings.Contains(t, "=>") {
			return definition(MatchMarker, t[len(m):]), true
		}
		return Classification{Marker: MatchMarker, Decision: Call}, true
	}
	return Classification{}, false
}

// classifyLongForm accepts the host language's keywords as aliases.
func classifyLongForm(t string) (Classification, bool) {
	public := false
	for _, vis := range []string{"pub(crate) ", "pub(super) ", "pub "} {
		if strings.HasPrefix(t, vis) {
			public = true
			t = strings.TrimSpace(t[len(vis):])
			break
		}
	}
	async := false
	if rest, ok := wordAfter(t, "async"); ok && strings.HasPrefix(rest, "fn ") {
		async = true
		t = rest
	}

	set := func(c Classification) (Classification, bool) {
		c.Public = c.Public || public
		c.Async = c.Async || async
		return c, true
	}

	switch {
	case strings.HasPrefix(t, "fn "):
		return classifyFunc(t, "fn", public, async)
	case strings.HasPrefix(t, "struct "):
		if c, ok := classifyNamed(t, "struct", StructMarker, public); ok {
			return c, true
		}
	case strings.HasPrefix(t, "enum "):
		if c, ok := classifyNamed(t, "enum", EnumMarker, public); ok {
			return c, true
		}
	case strings.HasPrefix(t, "trait "):
		if c, ok := classifyNamed(t, "trait", TraitMarker, public); ok {
			return c, true
		}
	case strings.HasPrefix(t, "impl ") || strings.HasPrefix(t, "impl<"):
		return set(definition(ImplMarker, t[4:]))
	case strings.HasPrefix(t, "mod "):
		return set(definition(ModMarker, t[4:]))
	case strings.HasPrefix(t, "use "):
		return set(definition(UseMarker, t[4:]))
	case strings.HasPrefix(t, "type "):
		return set(definition(TypeAliasMarker, t[5:]))
	case strings.HasPrefix(t, "const "):
		return set(definition(ConstMarker, t[6:]))
	case strings.HasPrefix(t, "static "):
		c := definition(ConstMarker, strings.TrimPrefix(t[7:], "mut "))
		c.Static = true
		return set(c)
	}
	if public {
		return Classification{}, false
	}

	switch {
	case strings.HasPrefix(t, "let mut "):
		c := definition(LetMarker, t[8:])
		c.Mutable = true
		return c, true
	case strings.HasPrefix(t, "let "):
		return definition(LetMarker, t[4:]), true
	case t == "loop" || strings.HasPrefix(t, "loop {") || strings.HasPrefix(t, "loop{"):
		return definition(LoopMarker, t[4:]), true
	case strings.HasPrefix(t, "while "):
		return definition(LoopMarker, t[6:]), true
	case strings.HasPrefix(t, "for "):
		return definition(LoopMarker, t[4:]), true
	case strings.HasPrefix(t, "if "):
		return definition(IfMarker, t[3:]), true
	case strings.HasPrefix(t, "match "):
		return definition(MatchMarker, t[6:]), true
	}
	if rest, ok := bare(t, "return"); ok {
		return definition(ReturnMarker, rest), true
	}
	if rest, ok := bare(t, "break"); ok {
		return definition(BreakMarker, strings.TrimSuffix(rest, ";")), true
	}
	if rest, ok := bare(t, "continue"); ok {
		return definition(ContinueMarker, strings.TrimSuffix(rest, ";")), true
	}
	return Classification{}, false
}

// IsItemMarker reports whether m introduces an item rather than a statement.
func IsItemMarker(m Marker) bool {
	switch m {
	case FuncMarker, StructMarker, EnumMarker, ImplMarker, TraitMarker, ModMarker,
		UseMarker, TypeAliasMarker, ConstMarker:
		return true
	}
	return false
}
