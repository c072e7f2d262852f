package backend

import (
	"strings"
	"testing"

	"github.com/lhaig/nu/internal/ast"
	"github.com/lhaig/nu/internal/parser"
)

func parse(t *testing.T, input string) *ast.File {
	t.Helper()
	p := parser.New(input)
	file := p.Parse()
	if err := p.Err(); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return file
}

func TestBackendNames(t *testing.T) {
	tests := []struct {
		be   Backend
		name string
		ext  string
		def  string
	}{
		{&CppBackend{}, "cpp", ".cpp", "cpp23"},
		{&TSBackend{}, "ts", ".ts", "node"},
		{&RustBackend{}, "rust", ".rs", "2021"},
	}
	for _, tt := range tests {
		if tt.be.Name() != tt.name {
			t.Errorf("Expected name %q, got %q", tt.name, tt.be.Name())
		}
		if got := Extension(tt.be.Name()); got != tt.ext {
			t.Errorf("%s: Expected extension %q, got %q", tt.name, tt.ext, got)
		}
		if got := tt.be.Dialects()[0]; got != tt.def {
			t.Errorf("%s: Expected default dialect %q, got %q", tt.name, tt.def, got)
		}
	}
}

func TestGenerateByTarget(t *testing.T) {
	file := parse(t, `f main() {
    > "hi {}", 5
}`)

	tests := []struct {
		be   Backend
		cfg  Config
		want string
	}{
		{&CppBackend{}, Config{}, `std::println("hi {}", 5);`},
		{&CppBackend{}, Config{Dialect: "cpp20"}, `std::cout << std::format("hi {}", 5) << std::endl;`},
		{&TSBackend{}, Config{Support: SupportImport}, "from './nu_runtime';"},
		{&TSBackend{}, Config{Dialect: "deno", Support: SupportImport}, "from './nu_runtime.ts';"},
		{&TSBackend{}, Config{NoFormat: true}, "console.log(`hi ${5}`);"},
		{&RustBackend{}, Config{}, `println!("hi {}", 5);`},
	}
	for _, tt := range tests {
		out, err := tt.be.Generate(file, tt.cfg)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.be.Name(), err)
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("%s: Expected %q, got:\n%s", tt.be.Name(), tt.want, out)
		}
	}
}

func TestUnknownDialect(t *testing.T) {
	file := parse(t, `f f() {}`)
	for _, be := range []Backend{&CppBackend{}, &TSBackend{}, &RustBackend{}} {
		_, err := be.Generate(file, Config{Dialect: "cobol"})
		if err == nil {
			t.Errorf("%s: Expected an error for an unknown dialect", be.Name())
			continue
		}
		if !strings.Contains(err.Error(), "cobol") {
			t.Errorf("%s: Expected the dialect in the error, got %v", be.Name(), err)
		}
	}
}

func TestLineMappers(t *testing.T) {
	file := parse(t, `f main() {
    > "hi"
}`)
	for _, be := range []Backend{&CppBackend{}, &TSBackend{}, &RustBackend{}} {
		lm, ok := be.(LineMapper)
		if !ok {
			t.Errorf("%s: Expected a LineMapper", be.Name())
			continue
		}
		out, marks, err := lm.GenerateMapped(file, Config{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", be.Name(), err)
		}
		plain, _ := be.Generate(file, Config{})
		if out != plain {
			t.Errorf("%s: Expected mapped text to match Generate", be.Name())
		}
		if len(marks) < 2 {
			t.Errorf("%s: Expected the function and its statement mapped, got %v", be.Name(), marks)
		}
		if _, _, err := lm.GenerateMapped(file, Config{Dialect: "cobol"}); err == nil {
			t.Errorf("%s: Expected an error for an unknown dialect", be.Name())
		}
	}
}

func TestSupportFiles(t *testing.T) {
	tests := []struct {
		be   SupportFiler
		name string
		want string
	}{
		{&CppBackend{}, "nu_core.hpp", "namespace nu"},
		{&TSBackend{}, "nu_runtime.ts", "export function $fmt("},
	}
	for _, tt := range tests {
		name, text := tt.be.SupportFile()
		if name != tt.name {
			t.Errorf("Expected support file %q, got %q", tt.name, name)
		}
		if !strings.Contains(text, tt.want) {
			t.Errorf("%s: Expected %q in support text", name, tt.want)
		}
	}
	if _, ok := Backend(&RustBackend{}).(SupportFiler); ok {
		t.Errorf("Expected the Rust backend to need no support file")
	}
}

func TestParseSupportMode(t *testing.T) {
	tests := []struct {
		in      string
		want    SupportMode
		wantErr bool
	}{
		{"", SupportInline, false},
		{"inline", SupportInline, false},
		{"import", SupportImport, false},
		{"vendor", SupportInline, true},
	}
	for _, tt := range tests {
		got, err := ParseSupportMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSupportMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseSupportMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
