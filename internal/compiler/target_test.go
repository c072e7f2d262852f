package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lhaig/nu/internal/backend"
	"github.com/lhaig/nu/internal/sourcemap"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, outDir, target, want string
	}{
		{"src/main.nu", "", "cpp", filepath.Join("src", "main.cpp")},
		{"src/main.nu", "out", "ts", filepath.Join("out", "main.ts")},
		{"lib.nu", "", "rust", "lib.rs"},
		{"lib.nu", "", "typescript", "lib.ts"},
	}
	for _, tt := range tests {
		got, err := OutputPath(tt.input, tt.outDir, tt.target)
		if err != nil {
			t.Fatalf("OutputPath(%q) failed: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("OutputPath(%q, %q, %q) = %q, want %q", tt.input, tt.outDir, tt.target, got, tt.want)
		}
	}
	if _, err := OutputPath("a.nu", "", "wasm"); err == nil {
		t.Error("Expected error for unknown target")
	}
}

func TestWriteOutput(t *testing.T) {
	res, err := Convert(hello, "ts", backend.Config{})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "nested", "main.ts")
	if err := WriteOutput(res, path); err != nil {
		t.Fatalf("WriteOutput failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}
	if string(data) != res.Source {
		t.Error("Expected written file to match the generated source")
	}
}

func TestWriteSourceMap(t *testing.T) {
	res, err := Convert(hello, "rust", backend.Config{SourceMap: true})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "main.rs")
	mapPath, err := WriteSourceMap(res, path)
	if err != nil {
		t.Fatalf("WriteSourceMap failed: %v", err)
	}
	if mapPath != path+".map" {
		t.Errorf("Expected map at %s, got %s", path+".map", mapPath)
	}
	m, err := sourcemap.Load(mapPath)
	if err != nil {
		t.Fatalf("Failed to load the map: %v", err)
	}
	if m.TargetFile != "main.rs" {
		t.Errorf("Expected target main.rs, got %q", m.TargetFile)
	}
	if _, ok := m.TargetLine(2); !ok {
		t.Errorf("Expected the print statement mapped, got %+v", m.Mappings)
	}

	plain, err := Convert(hello, "rust", backend.Config{})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if plain.SourceMap != nil {
		t.Error("Expected no map unless requested")
	}
	if got, err := WriteSourceMap(plain, path); err != nil || got != "" {
		t.Errorf("Expected nothing written without a map, got %q, %v", got, err)
	}
}

func TestWriteSupportFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		target string
		want   string
	}{
		{"cpp", "nu_core.hpp"},
		{"ts", "nu_runtime.ts"},
		{"rust", ""},
	}
	for _, tt := range tests {
		path, err := WriteSupportFile(tt.target, dir)
		if err != nil {
			t.Fatalf("%s: WriteSupportFile failed: %v", tt.target, err)
		}
		if tt.want == "" {
			if path != "" {
				t.Errorf("%s: Expected no support file, got %s", tt.target, path)
			}
			continue
		}
		if filepath.Base(path) != tt.want {
			t.Errorf("%s: Expected %s, got %s", tt.target, tt.want, path)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s: support file missing: %v", tt.target, err)
		}
	}
}
