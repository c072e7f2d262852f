package tsbe

import (
	"strings"
	"testing"

	"github.com/lhaig/nu/internal/parser"
	"github.com/lhaig/nu/internal/sourcemap"
)

func generate(t *testing.T, input string, opts Options) string {
	t.Helper()
	p := parser.New(input)
	file := p.Parse()
	if err := p.Err(); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return Generate(file, opts)
}

var node = Options{Dialect: "node", ImportRuntime: true}

func expectAll(t *testing.T, out string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestMatchResult(t *testing.T) {
	out := generate(t, `f pick(r: R<i32, Str>) -> i32 {
    M r { Ok(v) => v, Err(_) => 0 }
}`, node)

	expectAll(t, out, []string{
		"function pick(r: Result<number, string>): number {",
		"const _m0 = r;",
		"if (_m0.tag === 'ok') {",
		"const v = _m0.val;",
		"return v;",
		"} else if (_m0.tag === 'err') {",
		"return 0;",
		"throw new Error('no match arm applies');",
	})
	if strings.Count(out, "_m0 = ") != 1 {
		t.Errorf("Expected the scrutinee to be bound once, got:\n%s", out)
	}
}

func TestOptionGuard(t *testing.T) {
	out := generate(t, `f check(o: O<i32>) -> i32 {
    M o { Some(x) if x > 0 => x, _ => 0 }
}`, node)

	expectAll(t, out, []string{
		"function check(o: number | null): number {",
		"if (_m0 !== null && _m0 > 0) {",
		"const x = _m0;",
		"} else {",
	})
	if strings.Contains(out, "no match arm applies") {
		t.Errorf("Expected no fallthrough throw after a default arm, got:\n%s", out)
	}
}

func TestNativeEnumSwitch(t *testing.T) {
	out := generate(t, `E Color { Red, Green }

f code(c: Color) -> i32 {
    M c { Color::Red => 1, Color::Green => 2 }
}`, node)

	expectAll(t, out, []string{
		"enum Color {",
		"Red,",
		"switch (_m0) {",
		"case Color.Red: {",
		"case Color.Green: {",
		"return 2;",
	})
}

func TestPayloadEnumTaggedUnion(t *testing.T) {
	out := generate(t, `E Shape { Circle(f64), Square(f64) }

f area(s: Shape) -> f64 {
    M s { Shape::Circle(r) => r * r, Shape::Square(w) => w * w }
}

f unit() -> Shape {
    Shape::Circle(1.0)
}`, node)

	expectAll(t, out, []string{
		"type Circle = { tag: 'Circle'; _0: number };",
		"type Shape = Circle | Square;",
		"const Shape = {",
		"Circle: (_0: number): Shape => ({ tag: 'Circle', _0 }),",
		"if (_m0.tag === 'Circle') {",
		"const r = _m0._0;",
		"return r * r;",
		"return Shape.Circle(1.0);",
	})
}

func TestEnumMethodsRouteThroughNamespace(t *testing.T) {
	out := generate(t, `E Color { Red, Green }

I Color {
    f name(&self) -> Str {
        M self { Color::Red => "red".to_string(), Color::Green => "green".to_string() }
    }
}

f show(c: Color) -> Str {
    c.name()
}`, node)

	expectAll(t, out, []string{
		"namespace Color {",
		"export function name(self: Color): string {",
		"const _m0 = self;",
		`return String("red");`,
		"return Color.name(c);",
	})
}

func TestStructWithMethodsBecomesClass(t *testing.T) {
	out := generate(t, `S Point { x: f64, y: f64 }

I Point {
    F new(x: f64, y: f64) -> Self { Point { y: y, x: x } }
    f norm(&self) -> f64 { (self.x * self.x + self.y * self.y).sqrt() }
}`, node)

	expectAll(t, out, []string{
		"class Point {",
		"x: number;",
		"constructor(x: number, y: number) {",
		"this.x = x;",
		"static new_(x: number, y: number): Point {",
		"return new Point(x, y);",
		"norm(): number {",
		"return Math.sqrt(this.x * this.x + this.y * this.y);",
	})
}

func TestPlainStructBecomesInterface(t *testing.T) {
	out := generate(t, `S P { a: i32 }

f make() -> P {
    P { a: 1 }
}`, node)

	expectAll(t, out, []string{
		"interface P {",
		"a: number;",
		"return { a: 1 };",
	})
}

func TestTryPropagatesError(t *testing.T) {
	out := generate(t, `f twice(s: i32) -> R<i32, Str> {
    l n = half(s)!;
    Ok(n * 2)
}`, node)

	expectAll(t, out, []string{
		"const _t0 = half(s);",
		"if (_t0.tag === 'err') return _t0;",
		"const n = _t0.val;",
		"return $ok(n * 2);",
	})
}

func TestUserFunctionsNamedOkAndErr(t *testing.T) {
	input := `f ok(n: i32) -> i32 { n }
f err() -> i32 { 0 }
f wrap(n: i32) -> R<i32, Str> {
    Ok(ok(n) + err())
}`
	for _, opts := range []Options{node, {Dialect: "node"}} {
		out := generate(t, input, opts)
		expectAll(t, out, []string{
			"function ok(n: number): number {",
			"function err(): number {",
			"return $ok(ok(n) + err());",
		})
		for _, clash := range []string{"{ ok,", " ok = ", " err = "} {
			if strings.Contains(out, clash) {
				t.Errorf("Expected no runtime binding %q to clash with user functions, got:\n%s", clash, out)
			}
		}
	}
}

func TestMainInvocation(t *testing.T) {
	out := generate(t, `f main() {
    > "hi {}", 5
}`, node)

	expectAll(t, out, []string{
		"function main(): void {",
		`console.log($fmt("hi {}", 5));`,
		"// Entry point invocation",
		"main();",
	})
	if strings.Contains(out, "export function main") {
		t.Errorf("Expected main not to be exported, got:\n%s", out)
	}
}

func TestNoFormatUsesTemplateLiteral(t *testing.T) {
	out := generate(t, `f main() {
    > "hi {} {:.2}", 5, x
}`, Options{Dialect: "node", ImportRuntime: true, NoFormat: true})

	if !strings.Contains(out, "console.log(`hi ${5} ${(x).toFixed(2)}`);") {
		t.Errorf("Expected template literal, got:\n%s", out)
	}
}

func TestRuntimePlacement(t *testing.T) {
	tests := []struct {
		opts Options
		want string
	}{
		{Options{Dialect: "node", ImportRuntime: true}, "from './nu_runtime';"},
		{Options{Dialect: "browser", ImportRuntime: true}, "from './nu_runtime.js';"},
		{Options{Dialect: "deno", ImportRuntime: true}, "from './nu_runtime.ts';"},
		{Options{Dialect: "node"}, "export function $fmt("},
	}
	for _, tt := range tests {
		out := generate(t, `f f() {}`, tt.opts)
		if !strings.Contains(out, tt.want) {
			t.Errorf("%s: Expected %q, got:\n%s", tt.opts.Dialect, tt.want, out)
		}
	}
}

func TestLoops(t *testing.T) {
	out := generate(t, `f run(items: V<i32>) {
    L i in 0..10 { > "{}", i }
    L (i, x) in items.iter().enumerate() { > "{} {}", i, x }
    L x in items.iter() { > "{}", x }
}`, node)

	expectAll(t, out, []string{
		"function run(items: Array<number>): void {",
		"for (let i = 0; i < 10; i++) {",
		"for (const [i, x] of items.entries()) {",
		"for (const x of items) {",
	})
}

func TestValueIfBecomesTernary(t *testing.T) {
	out := generate(t, `f sign(n: i32) -> i32 {
    l s = ? n > 0 { 1 } else { 0 };
    s
}`, node)

	if !strings.Contains(out, "const s = n > 0 ? 1 : 0;") {
		t.Errorf("Expected ternary, got:\n%s", out)
	}
}

func TestRawPassthrough(t *testing.T) {
	input := `@@weird stuff
f ok() {}`

	out := generate(t, input, node)
	if !strings.Contains(out, "// passthrough: unrecognized construct") {
		t.Errorf("Expected passthrough annotation, got:\n%s", out)
	}
	if !strings.Contains(out, "\n@@weird stuff\n") {
		t.Errorf("Expected raw text verbatim, got:\n%s", out)
	}

	strict := generate(t, input, Options{Dialect: "node", ImportRuntime: true, Strict: true})
	if !strings.Contains(strict, "// unsupported: @@weird stuff") {
		t.Errorf("Expected unsupported comment in strict mode, got:\n%s", strict)
	}
}

func TestReservedWordsRenamed(t *testing.T) {
	out := generate(t, `f delete(class: i32) -> i32 { class }`, node)
	if !strings.Contains(out, "function delete_(class_: number): number {") {
		t.Errorf("Expected renamed identifiers, got:\n%s", out)
	}
}

func TestGenerateMappedTracksLines(t *testing.T) {
	p := parser.New(`f add(a: i32, b: i32) -> i32 {
    l s = a + b;
    s
}`)
	file := p.Parse()
	if err := p.Err(); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out, marks := GenerateMapped(file, node)
	if plain := Generate(file, node); plain != out {
		t.Errorf("Expected mapped output to match Generate, got:\n%s\nwant:\n%s", out, plain)
	}
	m := &sourcemap.SourceMap{Mappings: marks}

	lines := strings.Split(out, "\n")
	for needle, nuLine := range map[string]int{"function add(": 1, "a + b;": 2, "return s;": 3} {
		target := 0
		for i, l := range lines {
			if strings.Contains(l, needle) {
				target = i + 1
				break
			}
		}
		if target == 0 {
			t.Errorf("Expected %q in output, got:\n%s", needle, out)
			continue
		}
		if got, ok := m.NuLine(target); !ok || got != nuLine {
			t.Errorf("Expected %q (line %d) to map to source line %d, got %d", needle, target, nuLine, got)
		}
	}
	if _, ok := m.NuLine(1); ok {
		t.Error("Expected the generated header to stay unmapped")
	}
}
