package lower

import (
	"testing"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/parser"
	"github.com/lhaig/nu/internal/scope"
)

func parseFile(t *testing.T, input string) *ast.File {
	t.Helper()
	p := parser.New(input)
	file := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("unexpected errors: %s", p.Diagnostics().Format("test"))
	}
	return file
}

func parseMatch(t *testing.T, input string) *ast.MatchExpr {
	t.Helper()
	m, ok := parser.ParseExpr(input).(*ast.MatchExpr)
	if !ok {
		t.Fatalf("expected a match expression from %q", input)
	}
	return m
}

func TestPlanMatchResult(t *testing.T) {
	m := parseMatch(t, "M r { Ok(v) => v, Err(_) => 0 }")
	plan := NewPlanner(nil, nil).PlanMatch(m, Return)

	if plan.Temp != "_m0" {
		t.Errorf("expected temp _m0, got %s", plan.Temp)
	}
	if len(plan.Arms) != 2 {
		t.Fatalf("expected 2 arms, got %d", len(plan.Arms))
	}
	if plan.Arms[0].Cond.Kind != CondOk || plan.Arms[1].Cond.Kind != CondErr {
		t.Errorf("expected Ok then Err conditions in source order")
	}
	if len(plan.Arms[0].Bindings) != 1 || plan.Arms[0].Bindings[0].Name != "v" {
		t.Errorf("expected binding v, got %+v", plan.Arms[0].Bindings)
	}
	if len(plan.Arms[1].Bindings) != 0 {
		t.Errorf("wildcard payload must not bind, got %+v", plan.Arms[1].Bindings)
	}
	if plan.UseSwitch {
		t.Error("payload extraction requires an if/else-if chain")
	}
	if plan.Want != Return {
		t.Errorf("expected want return, got %s", plan.Want)
	}
}

func TestPlanMatchTempsAreFresh(t *testing.T) {
	p := NewPlanner(nil, nil)
	m := parseMatch(t, "M x { _ => 1 }")
	first := p.PlanMatch(m, Void)
	second := p.PlanMatch(m, Void)
	if first.Temp == second.Temp {
		t.Errorf("expected distinct temporaries, both were %s", first.Temp)
	}
	p.Reset()
	if again := p.PlanMatch(m, Void); again.Temp != "_m0" {
		t.Errorf("expected numbering to restart, got %s", again.Temp)
	}
}

func TestPlanMatchVariantBindings(t *testing.T) {
	file := parseFile(t, `E Shape { Circle(f32), Rect(f32, f32), Named { w: f32, h: f32 } }`)
	enums := NewEnumIndex(file.Items)
	m := parseMatch(t, "M s { Shape::Rect(w, _) => w, Named { w, h: height } => height, Circle(r) => r }")
	plan := NewPlanner(enums, nil).PlanMatch(m, Value)

	rect := plan.Arms[0]
	if rect.Cond.Kind != CondVariant || rect.Cond.Enum != "Shape" || rect.Cond.Variant != "Rect" {
		t.Errorf("unexpected condition %+v", rect.Cond)
	}
	if len(rect.Bindings) != 1 || rect.Bindings[0].Field != "_0" {
		t.Errorf("expected one positional binding, got %+v", rect.Bindings)
	}

	named := plan.Arms[1]
	if named.Cond.Enum != "Shape" {
		t.Errorf("expected bare record variant to resolve to Shape, got %q", named.Cond.Enum)
	}
	if len(named.Bindings) != 2 || named.Bindings[1].Field != "h" || named.Bindings[1].Name != "height" {
		t.Errorf("unexpected record bindings %+v", named.Bindings)
	}

	if circle := plan.Arms[2]; circle.Cond.Enum != "Shape" || circle.Bindings[0].Field != "_0" {
		t.Errorf("unexpected circle arm %+v", circle)
	}
	if plan.Arms[0].Cond.Native {
		t.Error("payload enum is not native")
	}
}

func TestPlanMatchSelfResolvesToAggregate(t *testing.T) {
	enums := NewEnumIndex(parseFile(t, "E Dir { Up, Down }").Items)
	tracker := scope.New()
	tracker.Enter("Dir", scope.Private)
	plan := NewPlanner(enums, tracker).PlanMatch(parseMatch(t, "M self { Self::Up => 1, _ => 0 }"), Return)
	if plan.Arms[0].Cond.Enum != "Dir" || !plan.Arms[0].Cond.Native {
		t.Errorf("expected Self::Up to resolve to native Dir, got %+v", plan.Arms[0].Cond)
	}
}

func TestPlanMatchSwitchEligibility(t *testing.T) {
	enums := NewEnumIndex(parseFile(t, "E Color { Red, Green, Blue }").Items)
	tests := []struct {
		name   string
		input  string
		expect bool
	}{
		{"int literals with default", "M n { 1 => a(), 2 | 3 => b(), _ => c() }", true},
		{"native enum", "M c { Color::Red => 1, Color::Green => 2, Color::Blue => 3 }", true},
		{"string literals", `M s { "a" => 1, _ => 0 }`, false},
		{"guard", "M n { 1 if ok => a(), _ => c() }", false},
		{"binding", "M o { Some(x) => x, None => 0 }", false},
		{"early default", "M n { _ => 0, 1 => 1 }", false},
		{"break in arm", "M n { 1 => br, _ => c() }", false},
		{"only default", "M n { _ => 0 }", false},
		{"ident binding", "M n { 1 => 0, other => other }", false},
	}

	for _, tt := range tests {
		plan := NewPlanner(enums, nil).PlanMatch(parseMatch(t, tt.input), Void)
		if plan.UseSwitch != tt.expect {
			t.Errorf("%s: expected UseSwitch=%v, got %v", tt.name, tt.expect, plan.UseSwitch)
		}
	}
}

func TestPlanMatchKeepsShadowedArms(t *testing.T) {
	m := parseMatch(t, "M x { _ => 0, 1 => 1, 2 => 2 }")
	plan := NewPlanner(nil, nil).PlanMatch(m, Value)
	if len(plan.Arms) != 3 {
		t.Fatalf("expected every arm to be kept, got %d", len(plan.Arms))
	}
	if plan.Arms[0].Cond.Kind != CondTrue {
		t.Errorf("expected the early wildcard to stay first")
	}
	shadowed := Shadowed(m)
	if len(shadowed) != 2 || shadowed[0] != 1 || shadowed[1] != 2 {
		t.Errorf("expected arms 1 and 2 shadowed, got %v", shadowed)
	}
	if got := Shadowed(parseMatch(t, "M x { n if n > 0 => 1, _ => 0 }")); len(got) != 0 {
		t.Errorf("a guarded binding shadows nothing, got %v", got)
	}
}

func TestPlanMatchIdentAndRaw(t *testing.T) {
	plan := NewPlanner(nil, nil).PlanMatch(parseMatch(t, "M x { (a, b) => a, n => n }"), Value)
	if plan.Arms[0].Cond.Kind != CondRaw || plan.Arms[0].Cond.Raw != "(a, b)" {
		t.Errorf("expected raw condition, got %+v", plan.Arms[0].Cond)
	}
	whole := plan.Arms[1].Bindings
	if len(whole) != 1 || !whole[0].Whole || whole[0].Name != "n" {
		t.Errorf("expected whole-scrutinee binding, got %+v", whole)
	}
	if !plan.HasDefault() {
		t.Error("a trailing binding arm matches everything")
	}
}

func TestPlanEnum(t *testing.T) {
	file := parseFile(t, "E Shape { Circle(f32), Square(f32), Pair(i32, Str), Empty, Box { w: f32 } }")
	plan := PlanEnum(file.Items[0].(*ast.EnumDef))

	if plan.Native {
		t.Error("payload enum must not be native")
	}
	expected := map[string][]string{
		"Circle": {"_0"},
		"Square": {"_0"},
		"Pair":   {"_0", "_1"},
		"Empty":  nil,
		"Box":    {"w"},
	}
	if len(plan.Variants) != len(expected) {
		t.Fatalf("expected %d variant types, got %d", len(expected), len(plan.Variants))
	}
	for name, fields := range expected {
		v, ok := plan.Variant(name)
		if !ok {
			t.Errorf("missing variant %s", name)
			continue
		}
		if len(v.Fields) != len(fields) {
			t.Errorf("%s: expected %d fields, got %d", name, len(fields), len(v.Fields))
			continue
		}
		for i, f := range fields {
			if v.Fields[i].Name != f {
				t.Errorf("%s: expected field %s, got %s", name, f, v.Fields[i].Name)
			}
		}
	}
	if pair, _ := plan.Variant("Pair"); pair.Fields[1].Type.String() != "Str" {
		t.Errorf("expected Pair._1 of type Str, got %s", pair.Fields[1].Type)
	}

	unit := PlanEnum(parseFile(t, "E Color { Red = 1, Green }").Items[0].(*ast.EnumDef))
	if !unit.Native || unit.Variants[0].Discriminant != "1" {
		t.Errorf("expected native enum with discriminant, got %+v", unit)
	}
}

func TestBreaksOut(t *testing.T) {
	tests := []struct {
		input  string
		expect bool
	}{
		{"br", true},
		{"ct", true},
		{"{ l x = 1; ? x > 0 { br } }", true},
		{"{ L { br; } }", false},
		{"|x| { br }", false},
		{"f(x)", false},
	}
	for _, tt := range tests {
		if got := BreaksOut(parser.ParseExpr(tt.input)); got != tt.expect {
			t.Errorf("BreaksOut(%q) = %v, expected %v", tt.input, got, tt.expect)
		}
	}
}

func TestIsPlain(t *testing.T) {
	tests := []struct {
		input  string
		expect bool
	}{
		{"a + b", true},
		{"f(x).g()", true},
		{"? a { 1 } else { 2 }", true},
		{"? a { l y = 1; y } else { 2 }", false},
		{"? a { 1 }", false},
		{"M x { _ => 1 }", false},
		{"f()?", false},
		{"|x| { l y = x; y }", true},
	}
	for _, tt := range tests {
		if got := IsPlain(parser.ParseExpr(tt.input)); got != tt.expect {
			t.Errorf("IsPlain(%q) = %v, expected %v", tt.input, got, tt.expect)
		}
	}
}

func TestNeedsParens(t *testing.T) {
	sum := parser.ParseExpr("a + b")
	if !NeedsParens(PrecMul, sum, false) {
		t.Error("a sum under multiplication needs parentheses")
	}
	if NeedsParens(PrecAdd, sum, false) {
		t.Error("a left operand at equal level needs none")
	}
	if !NeedsParens(PrecAdd, sum, true) {
		t.Error("a right operand at equal level needs parentheses")
	}
	if NeedsParens(PrecAdd, parser.ParseExpr("a * b"), true) {
		t.Error("a product under addition needs none")
	}
	if !OperandNeedsParens(parser.ParseExpr("x as f64")) || OperandNeedsParens(parser.ParseExpr("f(x)")) {
		t.Error("unexpected postfix operand parenthesization")
	}
}

func TestParseFormat(t *testing.T) {
	pieces := ParseFormat(`x = {}, {name:>5} {{literal}} {0:.2} {:?}`)
	var args, texts []FormatPiece
	for _, p := range pieces {
		if p.Arg {
			args = append(args, p)
		} else {
			texts = append(texts, p)
		}
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 placeholders, got %d: %+v", len(args), pieces)
	}
	if args[0].Index != 0 || args[1].Name != "name" || args[1].Spec != ">5" {
		t.Errorf("unexpected placeholders %+v", args[:2])
	}
	if args[2].Index != 0 || args[2].Spec != ".2" {
		t.Errorf("expected explicit index 0 with precision, got %+v", args[2])
	}
	if args[3].Index != 1 || args[3].Spec != "" {
		t.Errorf("expected debug marker stripped from second positional, got %+v", args[3])
	}
	if texts[2].Text != " {literal} " {
		t.Errorf("expected unescaped braces, got %q", texts[2].Text)
	}
}

func TestSplitFormat(t *testing.T) {
	m, ok := parser.ParseExpr(`println!("{} and {count}", a)`).(*ast.MacroExpr)
	if !ok {
		t.Fatal("expected a macro expression")
	}
	call, ok := SplitFormat(m.Args)
	if !ok {
		t.Fatal("expected a literal format string")
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 arguments, got %d", len(call.Args))
	}
	if id, ok := call.Args[1].(*ast.Ident); !ok || id.Name != "count" {
		t.Errorf("expected inline argument count, got %#v", call.Args[1])
	}
	if _, ok := SplitFormat([]ast.Expr{&ast.Ident{Name: "x"}}); ok {
		t.Error("a non-literal format string must be rejected")
	}
}
