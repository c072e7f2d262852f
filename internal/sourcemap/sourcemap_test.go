package sourcemap

import (
	"path/filepath"
	"testing"
)

func TestLookups(t *testing.T) {
	m := New("test.nu", "test.cpp")
	m.Add(1, 1)
	m.Add(2, 2)
	m.Add(5, 3)

	if m.Len() != 3 {
		t.Fatalf("Expected 3 mappings, got %d", m.Len())
	}
	if got, ok := m.NuLine(5); !ok || got != 3 {
		t.Errorf("Expected NuLine(5) = 3, got %d (%v)", got, ok)
	}
	if got, ok := m.TargetLine(3); !ok || got != 5 {
		t.Errorf("Expected TargetLine(3) = 5, got %d (%v)", got, ok)
	}
	// lines between mappings belong to the earlier one
	if got, ok := m.NuLine(4); !ok || got != 2 {
		t.Errorf("Expected NuLine(4) = 2, got %d (%v)", got, ok)
	}
	if _, ok := m.TargetLine(9); ok {
		t.Error("Expected no target line for an unmapped source line")
	}
}

func TestAddSkipsInvalidAndRepeatedLines(t *testing.T) {
	m := New("a.nu", "a.rs")
	m.Add(0, 1)
	m.Add(3, 0)
	m.Add(4, 2)
	m.Add(4, 3)
	if m.Len() != 1 {
		t.Fatalf("Expected 1 mapping, got %+v", m.Mappings)
	}
	if _, ok := m.NuLine(1); ok {
		t.Error("Expected no source line before the first mapping")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.cpp.map")
	m := New("main.nu", "main.cpp")
	m.Add(10, 2)
	if err := m.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.SourceFile != "main.nu" || got.TargetFile != "main.cpp" {
		t.Errorf("Expected file names to survive, got %q -> %q", got.SourceFile, got.TargetFile)
	}
	if line, ok := got.NuLine(10); !ok || line != 2 {
		t.Errorf("Expected NuLine(10) = 2 after reload, got %d", line)
	}
}

func TestExtract(t *testing.T) {
	text := "// header\n" + Marker(1) + "fn main() {\n    " + Marker(2) + "let x = " + Marker(9) + "1;\n}\n"
	clean, marks := Extract(text)

	want := "// header\nfn main() {\n    let x = 1;\n}\n"
	if clean != want {
		t.Errorf("Expected markers stripped, got:\n%q", clean)
	}
	m := &SourceMap{Mappings: marks}
	if got, ok := m.NuLine(2); !ok || got != 1 {
		t.Errorf("Expected line 2 to map to 1, got %d", got)
	}
	if got, ok := m.NuLine(3); !ok || got != 2 {
		t.Errorf("Expected the first marker on line 3 to win, got %d", got)
	}
	if _, ok := m.NuLine(1); ok {
		t.Error("Expected the unmarked header to stay unmapped")
	}
}

func TestExtractWithoutMarkers(t *testing.T) {
	clean, marks := Extract("a\nb\n")
	if clean != "a\nb\n" || marks != nil {
		t.Errorf("Expected plain text untouched, got %q %v", clean, marks)
	}
}
