package rustbe

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

func TestExpandsItems(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "function",
			input: `F add(a: i32, b: i32) -> i32 { a + b }`,
			want:  []string{"pub fn add(a: i32, b: i32) -> i32 {", "    a + b\n}"},
		},
		{
			name:  "abbreviated types",
			input: `f take(x: V<O<i32>>, m: HM<Str, V<i32>>) {}`,
			want:  []string{"fn take(x: Vec<Option<i32>>, m: HashMap<String, Vec<i32>>) {}"},
		},
		{
			name: "struct",
			input: `#D(Debug, Clone)
S Point { x: f64, y: f64 }`,
			want: []string{"#[derive(Debug, Clone)]", "pub struct Point {", "    pub x: f64,", "    pub y: f64,"},
		},
		{
			name:  "enum",
			input: `E Shape { Circle(f64), Square { w: f64 } }`,
			want:  []string{"pub enum Shape {", "    Circle(f64),", "    Square { w: f64 },"},
		},
		{
			name:  "comment",
			input: `// hello there`,
			want:  []string{"// hello there"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := generate(t, tt.input, Options{})
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("Expected %q, got:\n%s", want, out)
				}
			}
		})
	}
}

func TestMatchStaysNative(t *testing.T) {
	out := generate(t, `f pick(r: R<i32, Str>) -> i32 {
    M r { Ok(v) => v, Err(_) => 0 }
}`, Options{})

	expected := []string{
		"fn pick(r: Result<i32, String>) -> i32 {",
		"    match r {",
		"        Ok(v) => v,",
		"        Err(_) => 0,",
		"    }",
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q, got:\n%s", want, out)
		}
	}
}

func TestStatements(t *testing.T) {
	out := generate(t, `f main() {
    l n = half(4)!;
    v total = 0;
    l add = |a, b| a + b;
    > "n = {}", n
}`, Options{})

	expected := []string{
		"let n = half(4)?;",
		"let mut total = 0;",
		"let add = |a, b| a + b;",
		`println!("n = {}", n);`,
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q, got:\n%s", want, out)
		}
	}
}

func TestImplBlock(t *testing.T) {
	out := generate(t, `S Point { x: f64, y: f64 }

I Point {
    F new(x: f64) -> Self { Point { x: x, y: 0.0 } }
    f norm(&self) -> f64 { self.x }
}`, Options{})

	expected := []string{
		"impl Point {",
		"    pub fn new(x: f64) -> Self {",
		"        Point { x, y: 0.0 }",
		"    fn norm(&self) -> f64 {",
		"        self.x",
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q, got:\n%s", want, out)
		}
	}
}

func TestRawPassthrough(t *testing.T) {
	input := `@@weird stuff
f ok() {}`

	out := generate(t, input, Options{})
	if !strings.Contains(out, "\n@@weird stuff\n") {
		t.Errorf("Expected raw text verbatim, got:\n%s", out)
	}
	if !strings.Contains(out, "fn ok() {}") {
		t.Errorf("Expected conversion to continue after raw text, got:\n%s", out)
	}

	strict := generate(t, input, Options{Strict: true})
	if !strings.Contains(strict, "// unsupported: @@weird stuff") {
		t.Errorf("Expected unsupported comment in strict mode, got:\n%s", strict)
	}
}

func TestGenerateMappedTracksNestedLines(t *testing.T) {
	p := parser.New(`f main() {
    v n = 0;
    ? n > 0 {
        > "pos"
    }
}`)
	file := p.Parse()
	if err := p.Err(); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out, marks := GenerateMapped(file, Options{})
	if plain := Generate(file, Options{}); plain != out {
		t.Errorf("Expected mapped output to match Generate, got:\n%s\nwant:\n%s", out, plain)
	}
	m := &sourcemap.SourceMap{Mappings: marks}

	lines := strings.Split(out, "\n")
	tests := []struct {
		needle string
		nuLine int
	}{
		{"fn main() {", 1},
		{"let mut n = 0;", 2},
		{"if n > 0 {", 3},
		{`println!("pos")`, 4},
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
			t.Errorf("Expected %q, got:\n%s", tt.needle, out)
			continue
		}
		if got, ok := m.NuLine(target); !ok || got != tt.nuLine {
			t.Errorf("Expected %q (line %d) to map to source line %d, got %d", tt.needle, target, tt.nuLine, got)
		}
	}
}
