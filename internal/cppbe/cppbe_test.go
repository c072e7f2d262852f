package cppbe

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

var modern = Options{Cpp23: true, ImportSupport: true}

func TestMatchResultEvaluatesScrutineeOnce(t *testing.T) {
	out := generate(t, `f pick(r: R<i32, Str>) -> i32 {
    M r { Ok(v) => v, Err(_) => 0 }
}`, modern)

	expected := []string{
		"int32_t pick(std::expected<int32_t, std::string> r) {",
		"const auto& _m0 = r;",
		"if (_m0.has_value()) {",
		"const auto& v = *_m0;",
		"return v;",
		"} else if (!_m0.has_value()) {",
		"return 0;",
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "_m0 = "); n != 1 {
		t.Errorf("Expected the scrutinee to be bound once, got %d bindings:\n%s", n, out)
	}
}

func TestMatchEarlyWildcardKeepsOrder(t *testing.T) {
	out := generate(t, `f first(n: i32) -> i32 {
    M n { _ => 1, 2 => 3 }
}`, modern)

	if !strings.Contains(out, "if (true) {") {
		t.Errorf("Expected the wildcard arm to stay first, got:\n%s", out)
	}
	one, three := strings.Index(out, "return 1;"), strings.Index(out, "return 3;")
	if one < 0 || three < 0 || one > three {
		t.Errorf("Expected arms in source order, got:\n%s", out)
	}
	if strings.Contains(out, "switch") {
		t.Errorf("Expected no switch for an early wildcard, got:\n%s", out)
	}
}

func TestNativeEnumMatchUsesSwitch(t *testing.T) {
	out := generate(t, `E Color { Red, Green }

f code(c: Color) -> i32 {
    M c { Color::Red => 1, Color::Green => 2 }
}`, modern)

	expected := []string{
		"enum class Color {",
		"switch (c) {",
		"case Color::Red:",
		"case Color::Green:",
		"return 2;",
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestPayloadEnumBecomesVariant(t *testing.T) {
	out := generate(t, `E Shape { Circle(f64), Square(f64) }

f area(s: Shape) -> f64 {
    M s { Shape::Circle(r) => r * r, Shape::Square(w) => w * w }
}

f unit() -> Shape {
    Shape::Circle(1.0)
}`, modern)

	expected := []string{
		"struct Circle {",
		"double _0;",
		"struct Square {",
		"using Shape = std::variant<Circle, Square>;",
		"if (std::holds_alternative<Circle>(_m0)) {",
		"const auto& r = std::get<Circle>(_m0)._0;",
		"return r * r;",
		"return Circle{1.0};",
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestGenericPayloadMatchSpellsTemplateArgs(t *testing.T) {
	out := generate(t, `E Opt<T> { Got(T), Nothing }

f or_default(o: &Opt<i32>, d: i32) -> i32 {
    M o { Opt::Got(v) => v, Opt::Nothing => d }
}

f first(s: Str) -> Str {
    l p: Opt<Str> = Opt::Got(s);
    M p { Opt::Got(v) => v, _ => s }
}`, modern)

	expected := []string{
		"std::holds_alternative<Got<int32_t>>(_m0)",
		"const auto& v = std::get<Got<int32_t>>(_m0)._0;",
		"std::holds_alternative<Nothing<int32_t>>(_m0)",
		"std::holds_alternative<Got<std::string>>(_m0)",
		"std::get<Got<std::string>>(_m0)._0",
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "std::holds_alternative<Got>(") {
		t.Errorf("Expected no bare generic alternative, got:\n%s", out)
	}
}

func TestGuardSeesBindings(t *testing.T) {
	out := generate(t, `f check(o: O<i32>) -> i32 {
    M o { Some(x) if x > 0 => x, _ => 0 }
}`, modern)

	if !strings.Contains(out, "if (_m0.has_value() && *_m0 > 0) {") {
		t.Errorf("Expected guard over the extracted value, got:\n%s", out)
	}
	if !strings.Contains(out, "} else {") {
		t.Errorf("Expected trailing wildcard as else, got:\n%s", out)
	}
}

func TestNestedTemplateSpacing(t *testing.T) {
	out := generate(t, `f take(x: V<O<i32>>) {}`, modern)
	if !strings.Contains(out, "std::vector<std::optional<int32_t> > x") {
		t.Errorf("Expected spaced template closers, got:\n%s", out)
	}
	if strings.Contains(out, ">>") {
		t.Errorf("Expected no adjacent closers, got:\n%s", out)
	}
}

func TestTryPropagatesError(t *testing.T) {
	out := generate(t, `f twice(s: i32) -> R<i32, Str> {
    l n = half(s)!;
    Ok(n * 2)
}`, modern)

	expected := []string{
		"auto _t0 = half(s);",
		"if (!_t0.has_value()) {",
		"return std::unexpected(_t0.error());",
		"const auto n = *_t0;",
		"return n * 2;",
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestStructWithMethods(t *testing.T) {
	out := generate(t, `#D(PartialEq)
S Point { x: f64, y: f64 }

I Point {
    F new(x: f64, y: f64) -> Self { Point { y: y, x: x } }
    f norm(&self) -> f64 { (self.x * self.x + self.y * self.y).sqrt() }
}`, modern)

	expected := []string{
		"struct Point {",
		"static Point new_(double x, double y) {",
		"return Point{.x = x, .y = y};",
		"double norm() const {",
		"return std::sqrt(this->x * this->x + this->y * this->y);",
		"bool operator==(const Point&) const = default;",
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestMainReturnsZero(t *testing.T) {
	out := generate(t, `f main() {
    > "hi {}", 5
}`, modern)

	if !strings.Contains(out, "int main() {") {
		t.Errorf("Expected int main, got:\n%s", out)
	}
	if !strings.Contains(out, `std::println("hi {}", 5);`) {
		t.Errorf("Expected std::println, got:\n%s", out)
	}
	if !strings.Contains(out, "return 0;") {
		t.Errorf("Expected return 0, got:\n%s", out)
	}
}

func TestPrintByDialect(t *testing.T) {
	input := `f main() {
    > "hi {}", 5
}`
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"cpp23", Options{Cpp23: true, ImportSupport: true}, `std::println("hi {}", 5);`},
		{"cpp20", Options{ImportSupport: true}, `std::cout << std::format("hi {}", 5) << std::endl;`},
		{"no format", Options{Cpp23: true, ImportSupport: true, NoFormat: true}, `std::cout << "hi " << 5 << std::endl;`},
	}
	for _, tt := range tests {
		out := generate(t, input, tt.opts)
		if !strings.Contains(out, tt.want) {
			t.Errorf("%s: Expected %q, got:\n%s", tt.name, tt.want, out)
		}
	}
}

func TestResultSpellingByDialect(t *testing.T) {
	input := `f half(n: i32) -> R<i32, Str> {
    ? n % 2 == 0 { Ok(n / 2) } else { Err("odd".to_string()) }
}`
	out := generate(t, input, Options{ImportSupport: true})
	if !strings.Contains(out, "nu::Result<int32_t, std::string> half(int32_t n)") {
		t.Errorf("Expected nu::Result for C++20, got:\n%s", out)
	}
	if !strings.Contains(out, "nu::unexpected(") {
		t.Errorf("Expected nu::unexpected for C++20, got:\n%s", out)
	}

	out = generate(t, input, modern)
	if !strings.Contains(out, "std::expected<int32_t, std::string> half(int32_t n)") {
		t.Errorf("Expected std::expected for C++23, got:\n%s", out)
	}
}

func TestSupportHeaderPlacement(t *testing.T) {
	inline := generate(t, `f f() {}`, Options{Cpp23: true})
	if !strings.Contains(inline, "namespace nu {") {
		t.Errorf("Expected inlined support header, got:\n%s", inline)
	}
	imported := generate(t, `f f() {}`, modern)
	if !strings.Contains(imported, `#include "nu_core.hpp"`) || strings.Contains(imported, "namespace nu {") {
		t.Errorf("Expected support header include only, got:\n%s", imported)
	}
}

func TestRawPassthrough(t *testing.T) {
	input := `@@weird stuff
f ok() {}`

	out := generate(t, input, modern)
	if !strings.Contains(out, "// passthrough: unrecognized construct") {
		t.Errorf("Expected passthrough annotation, got:\n%s", out)
	}
	if !containsLine(out, "@@weird stuff") {
		t.Errorf("Expected raw text verbatim, got:\n%s", out)
	}

	strict := generate(t, input, Options{Cpp23: true, ImportSupport: true, Strict: true})
	if !strings.Contains(strict, "// unsupported: @@weird stuff") {
		t.Errorf("Expected unsupported comment in strict mode, got:\n%s", strict)
	}
	if containsLine(strict, "@@weird stuff") {
		t.Errorf("Expected no raw text in strict mode, got:\n%s", strict)
	}
}

func TestLoops(t *testing.T) {
	out := generate(t, `f run(items: V<i32>) {
    L i in 0..10 { > "{}", i }
    L (i, x) in items.iter().enumerate() { > "{} {}", i, x }
    L x in items.iter() { > "{}", x }
}`, modern)

	expected := []string{
		"for (auto i = 0; i < 10; i++) {",
		"size_t i = SIZE_MAX;",
		"for (const auto& x : items) {",
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestEnumerateIndexSurvivesContinue(t *testing.T) {
	out := generate(t, `f run(items: V<i32>) {
    L (i, x) in items.iter().enumerate() {
        ? x == 0 { ct }
        > "{} {}", i, x
    }
    L (i, x) in items.iter().enumerate() { > "{}", i }
}`, modern)

	if strings.Count(out, "    {\n        size_t i = SIZE_MAX;\n        for (const auto& x : items) {\n            ++i;") != 2 {
		t.Errorf("Expected each enumerate loop in its own scope with the index advanced first, got:\n%s", out)
	}
	step, skip := strings.Index(out, "++i;"), strings.Index(out, "continue;")
	if step < 0 || skip < 0 || step > skip {
		t.Errorf("Expected the index to advance before continue, got:\n%s", out)
	}
	if strings.Contains(out, "passthrough") {
		t.Errorf("Expected no passthrough, got:\n%s", out)
	}
}

func TestValueIfBecomesTernary(t *testing.T) {
	out := generate(t, `f sign(n: i32) -> i32 {
    l s = ? n > 0 { 1 } else { 0 };
    s
}`, modern)
	if !strings.Contains(out, "const auto s = n > 0 ? 1 : 0;") {
		t.Errorf("Expected ternary, got:\n%s", out)
	}
}

func containsLine(out, line string) bool {
	for _, l := range strings.Split(out, "\n") {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}

func TestLineMarksMapOutputToSource(t *testing.T) {
	input := `f add(a: i32, b: i32) -> i32 {
    l s = a + b;
    s
}

f main() {
    l x = add(1, 2);
}`
	p := parser.New(input)
	file := p.Parse()
	if err := p.Err(); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out, marks := GenerateMapped(file, modern)
	if plain := Generate(file, modern); plain != out {
		t.Errorf("Expected marks to leave the text unchanged, got:\n%s\nwant:\n%s", out, plain)
	}
	m := &sourcemap.SourceMap{Mappings: marks}

	lines := strings.Split(out, "\n")
	tests := []struct {
		needle string
		nuLine int
	}{
		{"int32_t add(", 1},
		{"a + b;", 2},
		{"return s;", 3},
		{"int main(", 6},
		{"add(1, 2);", 7},
	}
	for _, tt := range tests {
		target := 0
		for i, l := range lines {
			if strings.Contains(l, tt.needle) {
				target = i + 1
				break
			}
		}
		if target == 0 {
			t.Errorf("Expected %q in output, got:\n%s", tt.needle, out)
			continue
		}
		if got, ok := m.NuLine(target); !ok || got != tt.nuLine {
			t.Errorf("Expected %q (line %d) to map to source line %d, got %d", tt.needle, target, tt.nuLine, got)
		}
	}
}
